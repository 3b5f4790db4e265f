// internal/browser/host/document.go
package host

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/layout"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/parser"
)

const (
	DefaultViewportWidth  = 1024.0
	DefaultViewportHeight = 768.0
)

// Document is an in-memory Host over an x/net/html tree. Layout is computed
// lazily and cached until the next mutation.
type Document struct {
	root    *html.Node
	window  *html.Node
	profile Profile
	logger  *zap.Logger

	viewportWidth  float64
	viewportHeight float64
	pageScroll     Point
	scroll         map[*html.Node]Point

	sharedProto map[string]bool
	tagProto    map[string]map[string]bool
	// Elements whose style attribute came from parsed markup.
	markupStyled map[*html.Node]bool

	ua          parser.StyleSheet
	version     uint64
	tree        *layout.Tree
	treeVersion uint64
}

var _ Host = (*Document)(nil)

// Option configures a Document.
type Option func(*Document)

func WithProfile(p Profile) Option {
	return func(d *Document) { d.profile = p }
}

func WithViewport(width, height float64) Option {
	return func(d *Document) {
		if width > 0 {
			d.viewportWidth = width
		}
		if height > 0 {
			d.viewportHeight = height
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithoutBody removes the body element after parsing, reproducing a document
// that is still loading.
func WithoutBody() Option {
	return func(d *Document) {
		if body := d.Body(); body != nil {
			body.Parent.RemoveChild(body)
		}
	}
}

// NewDocument parses markup as a complete HTML document.
func NewDocument(markup string, opts ...Option) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return FromNode(root, opts...), nil
}

// FromNode wraps an already parsed document node.
func FromNode(root *html.Node, opts ...Option) *Document {
	d := &Document{
		root:           root,
		window:         &html.Node{Type: html.RawNode, Data: "window"},
		profile:        Profile{Name: "standard"},
		logger:         zap.NewNop(),
		viewportWidth:  DefaultViewportWidth,
		viewportHeight: DefaultViewportHeight,
		scroll:         make(map[*html.Node]Point),
		sharedProto:    make(map[string]bool),
		tagProto:       make(map[string]map[string]bool),
		markupStyled:   make(map[*html.Node]bool),
		ua:             parser.NewParser(userAgentSheet).Parse(),
	}
	// Options run after the defaults so WithoutBody sees the parsed tree.
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("host")
	d.markMarkup(root)
	return d
}

func (d *Document) Profile() Profile { return d.profile }

func (d *Document) Window() *html.Node { return d.window }

func (d *Document) Document() *html.Node { return d.root }

func (d *Document) DocumentElement() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func (d *Document) Body() *html.Node {
	docEl := d.DocumentElement()
	if docEl == nil {
		return nil
	}
	for c := docEl.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Body {
			return c
		}
	}
	return nil
}

// EnsureBody creates the body element if the document has none.
func (d *Document) EnsureBody() *html.Node {
	if body := d.Body(); body != nil {
		return body
	}
	docEl := d.DocumentElement()
	if docEl == nil {
		docEl = d.CreateElement("html")
		d.root.AppendChild(docEl)
	}
	body := d.CreateElement("body")
	docEl.AppendChild(body)
	d.touch()
	return body
}

func (d *Document) GetElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && rawAttr(c, "", "id") == id {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(d.root)
	return found
}

func (d *Document) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func (d *Document) CreateTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func (d *Document) CloneNode(n *html.Node, deep bool) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	if d.markupStyled[n] {
		d.markupStyled[clone] = true
	}
	if deep {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			clone.AppendChild(d.CloneNode(c, true))
		}
	}
	return clone
}

func (d *Document) AppendChild(parent, child *html.Node) error {
	return d.InsertBefore(parent, child, nil)
}

func (d *Document) InsertBefore(parent, child, ref *html.Node) error {
	if parent == nil || child == nil {
		return fmt.Errorf("%w: nil node", ErrHierarchy)
	}
	if ref != nil && ref.Parent != parent {
		return fmt.Errorf("%w: reference node is not a child of %s", ErrHierarchy, nodeName(parent))
	}
	if child == ref {
		return nil
	}
	for p := parent; p != nil; p = p.Parent {
		if p == child {
			return fmt.Errorf("%w: %s would become its own ancestor", ErrHierarchy, nodeName(child))
		}
	}
	if d.profile.ScriptRejectsTextChild && parent.DataAtom == atom.Script && child.Type == html.TextNode {
		return fmt.Errorf("%w: script rejects text children", ErrHierarchy)
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	if ref == nil {
		parent.AppendChild(child)
	} else {
		parent.InsertBefore(child, ref)
	}
	d.touch()
	return nil
}

func (d *Document) RemoveChild(parent, child *html.Node) error {
	if parent == nil || child == nil || child.Parent != parent {
		return fmt.Errorf("%w: node is not a child of %s", ErrHierarchy, nodeName(parent))
	}
	parent.RemoveChild(child)
	d.touch()
	return nil
}

func (d *Document) ReplaceChild(parent, newChild, oldChild *html.Node) error {
	if newChild == oldChild {
		return nil
	}
	if err := d.InsertBefore(parent, newChild, oldChild); err != nil {
		return err
	}
	return d.RemoveChild(parent, oldChild)
}

// -- Markup --

func (d *Document) InnerHTML(n *html.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("%w: nil node", ErrHierarchy)
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render %s: %w", nodeName(c), err)
		}
	}
	return buf.String(), nil
}

func (d *Document) SetInnerHTML(n *html.Node, markup string) error {
	if n == nil || n.Type != html.ElementNode {
		return fmt.Errorf("%w: innerHTML needs an element", ErrHierarchy)
	}
	nodes, err := d.parseInto(n, markup)
	if err != nil {
		return err
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	d.touch()
	return nil
}

func (d *Document) SetOuterHTML(n *html.Node, markup string) error {
	if d.profile.NoOuterHTML {
		return fmt.Errorf("%w: outerHTML", ErrNotSupported)
	}
	if n == nil || n.Parent == nil {
		return ErrDetached
	}
	parent := n.Parent
	if parent.Type != html.ElementNode {
		return fmt.Errorf("%w: cannot replace the document element", ErrHierarchy)
	}
	nodes, err := d.parseInto(parent, markup)
	if err != nil {
		return err
	}
	for _, c := range nodes {
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
	d.touch()
	return nil
}

var tableFamily = map[atom.Atom]bool{
	atom.Table: true, atom.Tbody: true, atom.Thead: true, atom.Tfoot: true, atom.Tr: true,
}

func (d *Document) CreateContextualFragment(context *html.Node, markup string) ([]*html.Node, error) {
	if context == nil || context.Type != html.ElementNode {
		return nil, fmt.Errorf("%w: fragment context", ErrDetached)
	}
	if d.profile.StrictContextualFragment && tableFamily[context.DataAtom] {
		return nil, fmt.Errorf("%w: <%s>", ErrSyntax, context.Data)
	}
	// The root element parses its fragments as body content.
	if context.DataAtom == atom.Html {
		context = d.CreateElement("body")
	}
	return d.parseFragment(context, markup)
}

func (d *Document) SetText(n *html.Node, text string) error {
	if n == nil || n.Type != html.ElementNode {
		return fmt.Errorf("%w: text needs an element", ErrHierarchy)
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	if text != "" {
		n.AppendChild(d.CreateTextNode(text))
	}
	d.touch()
	return nil
}

// parseInto parses markup as the children of n, reproducing the profile's
// innerHTML defects.
func (d *Document) parseInto(n *html.Node, markup string) ([]*html.Node, error) {
	context := n
	switch {
	case d.profile.TableInnerHTMLBroken && tableFamily[n.DataAtom]:
		d.logger.Debug("Parsing table content in a div context.", zap.String("tag", n.Data))
		context = d.CreateElement("div")
	case d.profile.SelectInnerHTMLBroken && n.DataAtom == atom.Select:
		d.logger.Debug("Dropping option tags from select content.")
		nodes, err := d.parseFragment(d.CreateElement("div"), markup)
		if err != nil {
			return nil, err
		}
		return flattenOptions(nodes), nil
	}
	return d.parseFragment(context, markup)
}

func (d *Document) parseFragment(context *html.Node, markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	for _, c := range nodes {
		d.markMarkup(c)
	}
	return nodes, nil
}

// flattenOptions replaces option elements with their children.
func flattenOptions(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			var kids []*html.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				kids = append(kids, c)
			}
			for _, c := range kids {
				n.RemoveChild(c)
			}
			out = append(out, flattenOptions(kids)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func (d *Document) markMarkup(n *html.Node) {
	if n.Type == html.ElementNode && rawAttr(n, "", "style") != "" {
		d.markupStyled[n] = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.markMarkup(c)
	}
}

func (d *Document) touch() {
	d.version++
}

// attached reports whether n is connected to the document.
func (d *Document) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

func nodeName(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Type == html.ElementNode {
		return "<" + n.Data + ">"
	}
	return "#node"
}
