// internal/element/content.go
package element

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Insertion positions, in processing order.
const (
	Before = "before"
	Top    = "top"
	Bottom = "bottom"
	After  = "after"
)

var insertionOrder = []string{Before, Top, Bottom, After}

// Insertions maps positions to content for InsertContent.
type Insertions map[string]any

// UpdateContent replaces the children of n with content. Script blocks in
// markup are stripped and handed to the scheduler once the tree is updated.
func (e *Engine) UpdateContent(n *html.Node, content any) (*html.Node, error) {
	if !isElement(n) {
		return n, nil
	}
	node, markup := normalize(content)
	if node != nil {
		e.clearChildren(n)
		if err := e.host.AppendChild(n, node); err != nil {
			return n, fmt.Errorf("failed to append content to <%s>: %w", n.Data, err)
		}
		return n, nil
	}

	if n.DataAtom == atom.Script && e.ops.scriptAsText {
		if err := e.host.SetText(n, markup); err != nil {
			return n, fmt.Errorf("failed to set script text: %w", err)
		}
		return n, nil
	}

	if err := e.ops.update(e, n, stripScripts(markup)); err != nil {
		return n, err
	}
	e.deferScripts(extractScripts(markup))
	return n, nil
}

func (e *Engine) clearChildren(n *html.Node) {
	for n.FirstChild != nil {
		if err := e.host.RemoveChild(n, n.FirstChild); err != nil {
			n.RemoveChild(n.FirstChild)
		}
	}
}

func (e *Engine) updateInnerHTML(n *html.Node, markup string) error {
	if err := e.host.SetInnerHTML(n, markup); err != nil {
		return fmt.Errorf("failed to set innerHTML of <%s>: %w", n.Data, err)
	}
	return nil
}

// updateTranslated parses markup for table and select targets in a scratch
// container instead of assigning it to the target.
func (e *Engine) updateTranslated(n *html.Node, markup string) error {
	if !translated(n) {
		return e.updateInnerHTML(n, markup)
	}
	nodes, err := e.contentFromAnonymous(n.Data, markup)
	if err != nil {
		return err
	}
	e.clearChildren(n)
	for _, c := range nodes {
		if err := e.host.AppendChild(n, c); err != nil {
			return fmt.Errorf("failed to append to <%s>: %w", n.Data, err)
		}
	}
	return nil
}

// ReplaceContent replaces n with content and returns n, now detached.
func (e *Engine) ReplaceContent(n *html.Node, content any) (*html.Node, error) {
	if !isElement(n) {
		return n, nil
	}
	parent := n.Parent
	if parent == nil {
		return n, fmt.Errorf("%w: <%s>", ErrDetached, n.Data)
	}

	node, markup := normalize(content)
	if node != nil {
		if err := e.host.ReplaceChild(parent, node, n); err != nil {
			return n, fmt.Errorf("failed to replace <%s>: %w", n.Data, err)
		}
		return n, nil
	}

	if err := e.ops.replace(e, n, stripScripts(markup)); err != nil {
		return n, err
	}
	e.deferScripts(extractScripts(markup))
	return n, nil
}

// replaceOuterHTML assigns outerHTML unless the parent needs a wrapper, in
// which case the parsed children are moved into the parent at n's position.
func (e *Engine) replaceOuterHTML(n *html.Node, markup string) error {
	parent := n.Parent
	if !translated(parent) {
		if err := e.host.SetOuterHTML(n, markup); err != nil {
			return fmt.Errorf("failed to set outerHTML of <%s>: %w", n.Data, err)
		}
		return nil
	}

	nodes, err := e.contentFromAnonymous(parent.Data, markup)
	if err != nil {
		return err
	}
	next := n.NextSibling
	if err := e.host.RemoveChild(parent, n); err != nil {
		return fmt.Errorf("failed to detach <%s>: %w", n.Data, err)
	}
	for _, c := range nodes {
		if err := e.host.InsertBefore(parent, c, next); err != nil {
			return fmt.Errorf("failed to insert into <%s>: %w", parent.Data, err)
		}
	}
	return nil
}

// replaceRange parses markup as a contextual fragment of the parent. Hosts
// that refuse the parent as a context get one retry with the root element.
func (e *Engine) replaceRange(n *html.Node, markup string) error {
	parent := n.Parent
	nodes, err := e.host.CreateContextualFragment(parent, markup)
	if err != nil {
		e.logger.Debug("Contextual fragment refused, retrying with the document element.",
			zap.String("context", parent.Data), zap.Error(err))
		nodes, err = e.host.CreateContextualFragment(e.host.DocumentElement(), markup)
		if err != nil {
			return fmt.Errorf("%w: replacing <%s>: %v", ErrMarkupRejected, n.Data, err)
		}
	}
	for _, c := range nodes {
		if err := e.host.InsertBefore(parent, c, n); err != nil {
			return fmt.Errorf("failed to insert into <%s>: %w", parent.Data, err)
		}
	}
	if err := e.host.RemoveChild(parent, n); err != nil {
		return fmt.Errorf("failed to detach <%s>: %w", n.Data, err)
	}
	return nil
}

// InsertContent inserts content around or inside n. insertions is an
// Insertions map keyed by position; any other value is inserted at the
// bottom. Positions are processed in the order before, top, bottom, after.
func (e *Engine) InsertContent(n *html.Node, insertions any) (*html.Node, error) {
	if !isElement(n) {
		return n, nil
	}
	var positions map[string]any
	switch v := insertions.(type) {
	case Insertions:
		positions = v
	case map[string]any:
		positions = v
	default:
		positions = map[string]any{Bottom: v}
	}

	byPosition := make(map[string]any, len(positions))
	for _, key := range slices.Sorted(maps.Keys(positions)) {
		pos := strings.ToLower(key)
		if !slices.Contains(insertionOrder, pos) {
			return n, fmt.Errorf("%w: %q", ErrUnknownPosition, key)
		}
		byPosition[pos] = positions[key]
	}

	for _, pos := range insertionOrder {
		content, ok := byPosition[pos]
		if !ok {
			continue
		}
		if err := e.insertAt(n, pos, content); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (e *Engine) insertAt(n *html.Node, pos string, content any) error {
	if (pos == Before || pos == After) && n.Parent == nil {
		return fmt.Errorf("%w: cannot insert %s <%s>", ErrDetached, pos, n.Data)
	}

	node, markup := normalize(content)
	if node != nil {
		return e.insertNode(n, pos, node)
	}

	context := n
	if pos == Before || pos == After {
		context = n.Parent
	}
	nodes, err := e.contentFromAnonymous(context.Data, stripScripts(markup))
	if err != nil {
		return err
	}
	if pos == Top || pos == After {
		slices.Reverse(nodes)
	}
	for _, c := range nodes {
		if err := e.insertNode(n, pos, c); err != nil {
			return err
		}
	}
	e.deferScripts(extractScripts(markup))
	return nil
}

func (e *Engine) insertNode(n *html.Node, pos string, c *html.Node) error {
	var err error
	switch pos {
	case Before:
		err = e.host.InsertBefore(n.Parent, c, n)
	case Top:
		err = e.host.InsertBefore(n, c, n.FirstChild)
	case Bottom:
		err = e.host.AppendChild(n, c)
	case After:
		err = e.host.InsertBefore(n.Parent, c, n.NextSibling)
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s <%s>: %w", pos, n.Data, err)
	}
	return nil
}

// Remove detaches n from its parent.
func (e *Engine) Remove(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil {
		return n
	}
	if err := e.host.RemoveChild(n.Parent, n); err != nil {
		e.logger.Debug("Failed to remove node.", zap.Error(err))
	}
	return n
}

// Wrap puts n inside wrapper and returns the wrapper. wrapper is an element,
// a tag name, or nil for a div.
func (e *Engine) Wrap(n *html.Node, wrapper any, attrs map[string]any) (*html.Node, error) {
	if !isElement(n) {
		return n, nil
	}
	var w *html.Node
	switch v := wrapper.(type) {
	case *html.Node:
		if !isElement(v) {
			return n, fmt.Errorf("%w: wrapper must be an element", ErrInvalidArgument)
		}
		w = e.Extend(v)
		e.WriteAttributes(w, attrs)
	case string:
		var err error
		if w, err = e.NewElement(v, attrs); err != nil {
			return n, err
		}
	case nil:
		w, _ = e.NewElement("div", attrs)
	default:
		return n, fmt.Errorf("%w: wrapper %T", ErrInvalidArgument, wrapper)
	}

	if n.Parent != nil {
		if err := e.host.ReplaceChild(n.Parent, w, n); err != nil {
			return n, fmt.Errorf("failed to wrap <%s>: %w", n.Data, err)
		}
	}
	if err := e.host.AppendChild(w, n); err != nil {
		return n, fmt.Errorf("failed to wrap <%s>: %w", n.Data, err)
	}
	return w, nil
}

// CleanWhitespace removes whitespace-only text children of n.
func (e *Engine) CleanWhitespace(n *html.Node) *html.Node {
	if !isElement(n) {
		return n
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			e.Remove(c)
		}
		c = next
	}
	return n
}

// Empty reports whether the inner markup of n is blank.
func (e *Engine) Empty(n *html.Node) bool {
	if !isElement(n) {
		return true
	}
	inner, err := e.host.InnerHTML(n)
	if err != nil {
		return false
	}
	return strings.TrimSpace(inner) == ""
}

// Clone copies n. The copy is extended and carries no metadata.
func (e *Engine) Clone(n *html.Node, deep bool) *html.Node {
	if !isElement(n) {
		return nil
	}
	return e.Extend(e.host.CloneNode(n, deep))
}

// Identify returns the id of n, assigning an unused anonymous_element_N id
// when it has none.
func (e *Engine) Identify(n *html.Node) string {
	if !isElement(n) {
		return ""
	}
	if id, ok := e.ReadAttribute(n, "id"); ok && id != "" {
		return id
	}
	var id string
	for {
		id = "anonymous_element_" + strconv.Itoa(e.idCounter)
		e.idCounter++
		if e.host.GetElementByID(id) == nil {
			break
		}
	}
	e.WriteAttribute(n, "id", id)
	return id
}

