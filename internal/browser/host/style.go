// internal/browser/host/style.go
package host

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/layout"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/parser"
)

const userAgentSheet = `
html, body, div, p, ul, ol, form, section, article, header, footer, nav, main,
aside, blockquote, pre, address, fieldset, dl, dt, dd, hr, center, figure,
h1, h2, h3, h4, h5, h6 { display: block }
li { display: list-item }
table { display: table }
thead { display: table-header-group }
tbody { display: table-row-group }
tfoot { display: table-footer-group }
tr { display: table-row }
td, th { display: table-cell }
caption { display: table-caption }
select, button, input, textarea, img, iframe { display: inline-block }
head, script, style, title, meta, link, template, noscript, base { display: none }
body { margin: 8px }
`

var initialValues = map[string]string{
	"display":    "inline",
	"position":   "static",
	"visibility": "visible",
	"overflow":   "visible",
	"float":      "none",
	"opacity":    "1",
	"width":      "auto",
	"height":     "auto",
	"top":        "auto",
	"right":      "auto",
	"bottom":     "auto",
	"left":       "auto",
	"z-index":    "auto",
	"zoom":       "normal",
	"font-size":  "16px",
}

var inherited = map[string]bool{
	"font-size":  true,
	"visibility": true,
	"color":      true,
}

var pixelProperties = map[string]bool{
	"top": true, "right": true, "bottom": true, "left": true,
	"margin-top": true, "margin-right": true, "margin-bottom": true, "margin-left": true,
	"padding-top": true, "padding-right": true, "padding-bottom": true, "padding-left": true,
	"border-top-width": true, "border-right-width": true, "border-bottom-width": true, "border-left-width": true,
}

var upperRun = regexp.MustCompile(`[A-Z]`)

// cssName maps a DOM style property to its CSS name, or reports that this
// environment does not expose it.
func (d *Document) cssName(prop string) (string, bool) {
	switch prop {
	case "cssFloat":
		return "float", !d.profile.StyleFloat
	case "styleFloat":
		return "float", d.profile.StyleFloat
	case "float":
		return "", false
	case "opacity":
		return "opacity", !d.profile.OpacityViaFilter
	case "":
		return "", false
	}
	if strings.Contains(prop, "-") {
		return strings.ToLower(prop), true
	}
	return upperRun.ReplaceAllStringFunc(prop, func(s string) string {
		return "-" + strings.ToLower(s)
	}), true
}

type inlineStyle struct {
	d *Document
	n *html.Node
}

// Style returns the live inline declaration of n.
func (d *Document) Style(n *html.Node) Style {
	return inlineStyle{d: d, n: n}
}

func (s inlineStyle) declarations() []parser.Declaration {
	return parser.ParseInline(rawAttr(s.n, "", "style"))
}

func (s inlineStyle) Supports(prop string) bool {
	_, ok := s.d.cssName(prop)
	return ok
}

func (s inlineStyle) Get(prop string) string {
	name, ok := s.d.cssName(prop)
	if !ok || s.n == nil {
		return ""
	}
	decls := s.declarations()
	if v, ok := parser.Lookup(decls, parser.Property(name)); ok {
		return string(v)
	}
	v, _ := parser.Lookup(parser.Expand(decls), parser.Property(name))
	return string(v)
}

func (s inlineStyle) Set(prop, value string) {
	name, ok := s.d.cssName(prop)
	if !ok || s.n == nil || s.n.Type != html.ElementNode {
		return
	}
	decls := s.declarations()
	if name == "overflow" && s.d.profile.OverflowResistsOverride && s.d.markupStyled[s.n] {
		if _, declared := parser.Lookup(decls, "overflow"); declared {
			s.d.logger.Debug("Ignoring overflow write on markup-styled element.")
			return
		}
	}
	s.write(parser.Set(decls, parser.Property(name), parser.Value(strings.TrimSpace(value))))
}

func (s inlineStyle) CSSText() string {
	return parser.Serialize(s.declarations())
}

func (s inlineStyle) SetCSSText(text string) {
	if s.n == nil || s.n.Type != html.ElementNode {
		return
	}
	delete(s.d.markupStyled, s.n)
	s.write(parser.ParseInline(text))
}

func (s inlineStyle) write(decls []parser.Declaration) {
	if len(decls) == 0 {
		removeRawAttr(s.n, "", "style")
	} else {
		setRawAttr(s.n, "", "style", parser.Serialize(decls))
	}
	s.d.touch()
}

// -- Cascade --

// cascade resolves the specified value of a CSS property: inline style, then
// the user agent sheet, then inheritance, then the initial value.
func (d *Document) cascade(n *html.Node, prop string) string {
	if n == nil || n.Type != html.ElementNode {
		return initialValues[prop]
	}
	if v, ok := parser.Lookup(parser.Expand(parser.ParseInline(rawAttr(n, "", "style"))), parser.Property(prop)); ok {
		return d.resolveSpecified(n, prop, string(v))
	}
	if v, ok := d.userAgentValue(n, prop); ok {
		return d.resolveSpecified(n, prop, v)
	}
	if inherited[prop] && n.Parent != nil && n.Parent.Type == html.ElementNode {
		return d.cascade(n.Parent, prop)
	}
	if v, ok := initialValues[prop]; ok {
		return v
	}
	if pixelProperties[prop] {
		return "0px"
	}
	return ""
}

func (d *Document) resolveSpecified(n *html.Node, prop, v string) string {
	if v == "inherit" {
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			return d.cascade(n.Parent, prop)
		}
		return initialValues[prop]
	}
	if prop == "font-size" {
		parentSize := layout.BaseFontSize
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			if px, ok := layout.ParseLength(d.cascade(n.Parent, prop), layout.BaseFontSize, layout.BaseFontSize); ok {
				parentSize = px
			}
		}
		if px, ok := layout.ParseLength(v, parentSize, parentSize); ok {
			return formatPx(px)
		}
	}
	return v
}

func (d *Document) userAgentValue(n *html.Node, prop string) (string, bool) {
	id := rawAttr(n, "", "id")
	classes := strings.Fields(rawAttr(n, "", "class"))
	var (
		best      string
		found     bool
		bestSpecs [3]int
	)
	for _, rule := range d.ua.Rules {
		v, ok := parser.Lookup(parser.Expand(rule.Declarations), parser.Property(prop))
		if !ok {
			continue
		}
		for _, sel := range rule.Selectors {
			if !sel.Matches(n.Data, id, classes) {
				continue
			}
			a, b, c := sel.Specificity()
			spec := [3]int{a, b, c}
			if !found || !less(spec, bestSpecs) {
				best, bestSpecs, found = string(v), spec, true
			}
		}
	}
	return best, found
}

func less(x, y [3]int) bool {
	for i := range x {
		if x[i] != y[i] {
			return x[i] < y[i]
		}
	}
	return false
}

// styleSource adapts the cascade for the layout engine.
type styleSource struct{ d *Document }

func (s styleSource) Lookup(n *html.Node, property, fallback string) string {
	if v := s.d.cascade(n, property); v != "" {
		return v
	}
	return fallback
}

// ComputedStyle returns the resolved value of a DOM style property, the way
// the emulated environment reports it. Unsupported properties read as "".
func (d *Document) ComputedStyle(n *html.Node, prop string) string {
	name, ok := d.cssName(prop)
	if !ok || n == nil || n.Type != html.ElementNode {
		return ""
	}
	switch name {
	case "width", "height":
		return d.computedSize(n, name)
	}
	v := d.cascade(n, name)
	if pixelProperties[name] {
		if v == "auto" {
			return v
		}
		fontSize, _ := layout.ParseLength(d.cascade(n, "font-size"), layout.BaseFontSize, layout.BaseFontSize)
		if px, ok := layout.ParseLength(v, fontSize, 0); ok {
			return formatPx(px)
		}
	}
	return v
}

func (d *Document) computedSize(n *html.Node, name string) string {
	specified := d.cascade(n, name)
	if d.profile.ComputedSizeAuto {
		return specified
	}
	box := d.layoutBox(n)
	if box == nil {
		if d.profile.HiddenComputedZero && d.attached(n) {
			return "0px"
		}
		return specified
	}
	dims := box.Dimensions
	switch {
	case d.profile.ComputedBorderBox && name == "width":
		return formatPx(dims.BorderBox().Width)
	case d.profile.ComputedBorderBox:
		return formatPx(dims.BorderBox().Height)
	case name == "width":
		return formatPx(dims.Content.Width)
	default:
		return formatPx(dims.Content.Height)
	}
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
