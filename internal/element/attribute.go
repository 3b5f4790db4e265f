// internal/element/attribute.go
package element

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// booleanAttributes read back as their own name when present.
var booleanAttributes = map[string]bool{
	"checked":  true,
	"disabled": true,
	"readonly": true,
	"multiple": true,
	"selected": true,
	"defer":    true,
	"nowrap":   true,
	"noshade":  true,
	"ismap":    true,
	"compact":  true,
	"declare":  true,
	"noresize": true,
}

func (e *Engine) attrName(name string) string {
	if translated, ok := e.attrNames[name]; ok {
		return translated
	}
	return name
}

// ReadAttribute returns the value of the named attribute, or false when it
// is absent.
func (e *Engine) ReadAttribute(n *html.Node, name string) (string, bool) {
	if !isElement(n) {
		return "", false
	}
	switch {
	case name == "type" && n.DataAtom == atom.Iframe:
		return e.host.GetAttribute(n, "type")
	case name == "title":
		return e.ops.readTitle(e, n)
	case booleanAttributes[strings.ToLower(name)]:
		if e.HasAttribute(n, name) {
			return strings.ToLower(name), true
		}
		return "", false
	}
	return e.host.GetAttribute(n, e.attrName(name))
}

func (e *Engine) readTitleAttribute(n *html.Node) (string, bool) {
	return e.host.GetAttribute(n, "title")
}

// readTitleProperty reads the reflected title, which stays present when the
// attribute is empty.
func (e *Engine) readTitleProperty(n *html.Node) (string, bool) {
	if _, ok := e.host.AttributeNode(n, "title"); !ok {
		return "", false
	}
	return e.host.Property(n, "title")
}

// WriteAttribute sets an attribute. true sets the attribute to its own name,
// false and nil remove it, anything else is written in its string form.
func (e *Engine) WriteAttribute(n *html.Node, name string, value any) *html.Node {
	if !isElement(n) {
		return n
	}
	name = e.attrName(name)
	switch v := value.(type) {
	case nil:
		e.host.RemoveAttribute(n, name)
	case bool:
		if v {
			e.host.SetAttribute(n, name, name)
		} else {
			e.host.RemoveAttribute(n, name)
		}
	case string:
		e.host.SetAttribute(n, name, v)
	default:
		e.host.SetAttribute(n, name, fmt.Sprint(v))
	}
	return n
}

// WriteAttributes writes every entry of attrs in name order.
func (e *Engine) WriteAttributes(n *html.Node, attrs map[string]any) *html.Node {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		e.WriteAttribute(n, name, attrs[name])
	}
	return n
}

// HasAttribute reports whether the attribute is present and specified.
func (e *Engine) HasAttribute(n *html.Node, name string) bool {
	if !isElement(n) {
		return false
	}
	return e.ops.hasAttribute(e, n, e.attrName(name))
}

func (e *Engine) hasAttributeNative(n *html.Node, name string) bool {
	ok, err := e.host.HasAttribute(n, name)
	if err != nil {
		return e.hasAttributeSimulated(n, name)
	}
	return ok
}

func (e *Engine) hasAttributeSimulated(n *html.Node, name string) bool {
	attr, ok := e.host.AttributeNode(n, name)
	return ok && attr.Specified
}
