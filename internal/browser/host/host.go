// internal/browser/host/host.go
package host

import (
	"errors"

	"golang.org/x/net/html"
)

var (
	// ErrNotSupported is returned for capabilities the emulated environment lacks.
	ErrNotSupported = errors.New("host: operation not supported")
	// ErrHierarchy is returned for tree mutations the host refuses.
	ErrHierarchy = errors.New("host: hierarchy request error")
	// ErrDetached is returned when an operation needs a node with a parent.
	ErrDetached = errors.New("host: node is detached")
	// ErrSyntax is returned when markup cannot be parsed in the requested context.
	ErrSyntax = errors.New("host: markup rejected in this context")
)

// Box is an offset box: position relative to the offset parent plus border-box size.
type Box struct {
	Left, Top, Width, Height float64
}

// Point is a pair of document coordinates.
type Point struct {
	X, Y float64
}

// Attr is an attribute node as the host reports it.
type Attr struct {
	Name      string
	Value     string
	Specified bool
}

// Style is a live inline style declaration. Property names are camel-cased
// DOM names ("borderLeftWidth", "cssFloat").
type Style interface {
	// Supports reports whether the declaration exposes the property at all.
	Supports(prop string) bool
	Get(prop string) string
	// Set assigns a value; the empty string removes the declaration.
	Set(prop, value string)
	CSSText() string
	SetCSSText(text string)
}

// Host is the structured-document API the element engine runs against.
// Implementations are single-threaded: callers must not share one across goroutines.
type Host interface {
	Profile() Profile

	// Tree
	Window() *html.Node
	Document() *html.Node
	DocumentElement() *html.Node
	Body() *html.Node
	GetElementByID(id string) *html.Node
	CreateElement(tag string) *html.Node
	CreateTextNode(text string) *html.Node
	CloneNode(n *html.Node, deep bool) *html.Node
	AppendChild(parent, child *html.Node) error
	InsertBefore(parent, child, ref *html.Node) error
	RemoveChild(parent, child *html.Node) error
	ReplaceChild(parent, newChild, oldChild *html.Node) error

	// Markup
	InnerHTML(n *html.Node) (string, error)
	SetInnerHTML(n *html.Node, markup string) error
	SetOuterHTML(n *html.Node, markup string) error
	CreateContextualFragment(context *html.Node, markup string) ([]*html.Node, error)
	SetText(n *html.Node, text string) error

	// Attributes
	GetAttribute(n *html.Node, name string) (string, bool)
	SetAttribute(n *html.Node, name, value string)
	RemoveAttribute(n *html.Node, name string)
	HasAttribute(n *html.Node, name string) (bool, error)
	AttributeNode(n *html.Node, name string) (Attr, bool)
	Property(n *html.Node, name string) (string, bool)

	// Style
	Style(n *html.Node) Style
	ComputedStyle(n *html.Node, prop string) string

	// Geometry
	OffsetParent(n *html.Node) (*html.Node, error)
	Offset(n *html.Node) Box
	ClientSize(n *html.Node) (width, height float64)
	ScrollOffset(n *html.Node) Point
	SetScrollOffset(n *html.Node, p Point)
	Viewport() (width, height float64)
	ScrollTo(x, y float64)
	PageScroll() Point

	// Prototype surface, only meaningful to capability probes.
	SetPrototypeProperty(tag, name string) error
	DeletePrototypeProperty(tag, name string)
	LookupProperty(n *html.Node, name string) bool
}
