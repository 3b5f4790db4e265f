// internal/browser/host/attributes.go
package host

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Literal "class"/"for" writes on legacy hosts land here and never reach the
// real attribute.
const expandoNamespace = "expando"

func (d *Document) attrKey(name string) (namespace, key string) {
	key = strings.ToLower(name)
	if d.profile.LegacyAttributeNames {
		switch key {
		case "classname":
			return "", "class"
		case "htmlfor":
			return "", "for"
		case "class", "for":
			return expandoNamespace, key
		}
	}
	return "", key
}

func rawAttr(n *html.Node, namespace, key string) string {
	v, _ := lookupAttr(n, namespace, key)
	return v
}

func lookupAttr(n *html.Node, namespace, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == namespace && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setRawAttr(n *html.Node, namespace, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == namespace && n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Namespace: namespace, Key: key, Val: value})
}

func removeRawAttr(n *html.Node, namespace, key string) bool {
	for i := range n.Attr {
		if n.Attr[i].Namespace == namespace && n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Document) GetAttribute(n *html.Node, name string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	ns, key := d.attrKey(name)
	v, ok := lookupAttr(n, ns, key)
	if ok && v == "" && key == "title" && d.profile.TitleEmptyReadsNull {
		return "", false
	}
	return v, ok
}

func (d *Document) SetAttribute(n *html.Node, name, value string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	ns, key := d.attrKey(name)
	setRawAttr(n, ns, key, value)
	if ns == "" && key == "style" {
		delete(d.markupStyled, n)
	}
	d.touch()
}

func (d *Document) RemoveAttribute(n *html.Node, name string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	ns, key := d.attrKey(name)
	if removeRawAttr(n, ns, key) {
		if ns == "" && key == "style" {
			delete(d.markupStyled, n)
		}
		d.touch()
	}
}

func (d *Document) HasAttribute(n *html.Node, name string) (bool, error) {
	if d.profile.NoNativeHasAttribute {
		return false, fmt.Errorf("%w: hasAttribute", ErrNotSupported)
	}
	ns, key := d.attrKey(name)
	_, ok := lookupAttr(n, ns, key)
	return ok, nil
}

// AttributeNode mirrors getAttributeNode. Hosts without a native hasAttribute
// return an unspecified node for absent attributes instead of none.
func (d *Document) AttributeNode(n *html.Node, name string) (Attr, bool) {
	if n == nil || n.Type != html.ElementNode {
		return Attr{}, false
	}
	ns, key := d.attrKey(name)
	if v, ok := lookupAttr(n, ns, key); ok {
		return Attr{Name: key, Value: v, Specified: true}, true
	}
	if d.profile.NoNativeHasAttribute {
		return Attr{Name: key}, true
	}
	return Attr{}, false
}

// Property reads a reflected DOM property.
func (d *Document) Property(n *html.Node, name string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	switch name {
	case "className":
		return rawAttr(n, "", "class"), true
	case "htmlFor":
		return rawAttr(n, "", "for"), true
	case "id", "title", "lang", "dir":
		return rawAttr(n, "", name), true
	case "tagName", "nodeName":
		return strings.ToUpper(n.Data), true
	case "text", "textContent":
		return textContent(n), true
	}
	return lookupAttr(n, "", strings.ToLower(name))
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// -- Prototype surface --

func (d *Document) SetPrototypeProperty(tag, name string) error {
	tag = strings.ToLower(tag)
	if tag != "" && tag != "*" && !d.profile.NoTagPrototypes {
		if d.tagProto[tag] == nil {
			d.tagProto[tag] = make(map[string]bool)
		}
		d.tagProto[tag][name] = true
		return nil
	}
	// Without per-tag prototypes every element shares the one prototype.
	if d.profile.NoSharedPrototypes {
		return fmt.Errorf("%w: element prototypes", ErrNotSupported)
	}
	d.sharedProto[name] = true
	return nil
}

func (d *Document) DeletePrototypeProperty(tag, name string) {
	tag = strings.ToLower(tag)
	if m := d.tagProto[tag]; m != nil {
		delete(m, name)
	}
	delete(d.sharedProto, name)
}

func (d *Document) LookupProperty(n *html.Node, name string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return d.tagProto[n.Data][name] || d.sharedProto[name]
}
