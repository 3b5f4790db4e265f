// internal/element/traversal.go
package element

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Match reports whether n is selected by expr.
func (e *Engine) Match(n *html.Node, expr string) (bool, error) {
	if !isElement(n) {
		return false, nil
	}
	ok, err := e.selector.Match(n, expr)
	if err != nil {
		return false, fmt.Errorf("failed to match %q: %w", expr, err)
	}
	return ok, nil
}

// pick returns the index-th node of nodes matched by expr. An empty expr
// indexes nodes directly.
func (e *Engine) pick(nodes []*html.Node, expr string, index int) (*html.Node, error) {
	if expr == "" {
		if index < 0 || index >= len(nodes) {
			return nil, nil
		}
		return e.Extend(nodes[index]), nil
	}
	found, err := e.selector.FindElement(nodes, expr, index)
	if err != nil {
		return nil, fmt.Errorf("failed to find %q: %w", expr, err)
	}
	if found == nil {
		return nil, nil
	}
	return e.Extend(found), nil
}

// Up returns the index-th ancestor of n matched by expr.
func (e *Engine) Up(n *html.Node, expr string, index int) (*html.Node, error) {
	if !isElement(n) {
		return nil, nil
	}
	return e.pick(e.Ancestors(n), expr, index)
}

// Down returns the index-th descendant of n matched by expr.
func (e *Engine) Down(n *html.Node, expr string, index int) (*html.Node, error) {
	if !isElement(n) {
		return nil, nil
	}
	if expr == "" {
		return e.pick(e.Descendants(n), "", index)
	}
	found, err := e.Select(n, expr)
	if err != nil {
		return nil, err
	}
	return e.pick(found, "", index)
}

// Next returns the index-th following sibling of n matched by expr.
func (e *Engine) Next(n *html.Node, expr string, index int) (*html.Node, error) {
	if !isElement(n) {
		return nil, nil
	}
	return e.pick(e.NextSiblings(n), expr, index)
}

// Previous returns the index-th preceding sibling of n matched by expr,
// nearest first.
func (e *Engine) Previous(n *html.Node, expr string, index int) (*html.Node, error) {
	if !isElement(n) {
		return nil, nil
	}
	return e.pick(e.PreviousSiblings(n), expr, index)
}

// Select returns the descendants of n matched by any of exprs, in document
// order.
func (e *Engine) Select(n *html.Node, exprs ...string) ([]*html.Node, error) {
	if !isElement(n) || len(exprs) == 0 {
		return nil, nil
	}
	found, err := e.selector.FindChildElements(n, exprs...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %q: %w", strings.Join(exprs, ", "), err)
	}
	return e.extendAll(found), nil
}

// Adjacent returns the siblings of n matched by any of exprs.
func (e *Engine) Adjacent(n *html.Node, exprs ...string) ([]*html.Node, error) {
	var out []*html.Node
	for _, s := range e.Siblings(n) {
		for _, expr := range exprs {
			ok, err := e.Match(s, expr)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

// Ancestors returns the element ancestors of n, nearest first.
func (e *Engine) Ancestors(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for p := n.Parent; isElement(p); p = p.Parent {
		out = append(out, p)
	}
	return e.extendAll(out)
}

// Descendants returns every element below n in document order.
func (e *Engine) Descendants(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if isElement(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return e.extendAll(out)
}

// FirstDescendant returns the first element child of n.
func (e *Engine) FirstDescendant(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			return e.Extend(c)
		}
	}
	return nil
}

// ChildElements returns the element children of n.
func (e *Engine) ChildElements(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c) {
			out = append(out, c)
		}
	}
	return e.extendAll(out)
}

// PreviousSiblings returns the element siblings before n, nearest first.
func (e *Engine) PreviousSiblings(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if isElement(s) {
			out = append(out, s)
		}
	}
	return e.extendAll(out)
}

// NextSiblings returns the element siblings after n.
func (e *Engine) NextSiblings(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if isElement(s) {
			out = append(out, s)
		}
	}
	return e.extendAll(out)
}

// Siblings returns the element siblings of n in document order.
func (e *Engine) Siblings(n *html.Node) []*html.Node {
	prev := e.PreviousSiblings(n)
	out := make([]*html.Node, 0, len(prev))
	for i := len(prev) - 1; i >= 0; i-- {
		out = append(out, prev[i])
	}
	return append(out, e.NextSiblings(n)...)
}

// DescendantOf reports whether ancestor contains n.
func (e *Engine) DescendantOf(n, ancestor *html.Node) bool {
	if n == nil || ancestor == nil {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// ClassNames returns the classes of n.
func (e *Engine) ClassNames(n *html.Node) []string {
	if !isElement(n) {
		return nil
	}
	class, _ := e.host.Property(n, "className")
	return strings.Fields(class)
}

func classPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(^|\s)` + regexp.QuoteMeta(name) + `(\s|$)`)
}

// HasClassName reports whether n carries the class name.
func (e *Engine) HasClassName(n *html.Node, name string) bool {
	if !isElement(n) || name == "" {
		return false
	}
	class, _ := e.host.Property(n, "className")
	return class == name || classPattern(name).MatchString(class)
}

func (e *Engine) AddClassName(n *html.Node, name string) *html.Node {
	if !isElement(n) || name == "" || e.HasClassName(n, name) {
		return n
	}
	class, _ := e.host.Property(n, "className")
	if class != "" {
		class += " "
	}
	return e.WriteAttribute(n, "className", class+name)
}

func (e *Engine) RemoveClassName(n *html.Node, name string) *html.Node {
	if !isElement(n) || name == "" {
		return n
	}
	class, _ := e.host.Property(n, "className")
	// Adjacent duplicates share a separator, so one pass can leave a match.
	for re := classPattern(name); re.MatchString(class); {
		class = re.ReplaceAllString(class, " ")
	}
	return e.WriteAttribute(n, "className", strings.TrimSpace(class))
}

// ToggleClassName adds or removes the class name. With force, the class is
// added when force[0] is true and removed otherwise.
func (e *Engine) ToggleClassName(n *html.Node, name string, force ...bool) *html.Node {
	if !isElement(n) {
		return n
	}
	add := !e.HasClassName(n, name)
	if len(force) > 0 {
		add = force[0]
	}
	if add {
		return e.AddClassName(n, name)
	}
	return e.RemoveClassName(n, name)
}
