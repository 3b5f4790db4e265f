// internal/element/style.go
package element

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

var (
	reAlpha       = regexp.MustCompile(`alpha\(opacity=(.*)\)`)
	reAlphaStrip  = regexp.MustCompile(`(?i)alpha\([^\)]*\)`)
	reOverflow    = regexp.MustCompile(`overflow\s*:\s*[^;]+;?`)
	reOpacityText = regexp.MustCompile(`opacity:\s*(\d?\.?\d*)`)
)

// Edges subtracted from a border-box size, in lookup order.
var (
	heightEdges = []string{"borderTopWidth", "paddingTop", "paddingBottom", "borderBottomWidth"}
	widthEdges  = []string{"borderLeftWidth", "paddingLeft", "paddingRight", "borderRightWidth"}
)

// camelize turns "border-left-width" into "borderLeftWidth".
func camelize(prop string) string {
	if !strings.Contains(prop, "-") {
		return prop
	}
	parts := strings.Split(prop, "-")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}

// parseInt reads the leading integer of a CSS value.
func parseInt(v string) (int, bool) {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && (v[end] >= '0' && v[end] <= '9' || end == 0 && (v[0] == '-' || v[0] == '+')) {
		end++
	}
	i, err := strconv.Atoi(v[:end])
	return i, err == nil
}

// parseFloat reads the leading number of a CSS value, zero when there is none.
func parseFloat(v string) float64 {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && strings.IndexByte("+-.0123456789eE", v[end]) >= 0 {
		end++
	}
	for end > 0 {
		if f, err := strconv.ParseFloat(v[:end], 64); err == nil {
			return f
		}
		end--
	}
	return 0
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string {
	return formatNumber(v) + "px"
}

func offsetDimension(b host.Box, prop string) float64 {
	if prop == "height" {
		return b.Height
	}
	return b.Width
}

// GetStyle returns the value of a style property, hyphenated or camel-cased.
// It reports false for values that cannot be resolved, such as the size of
// an element that is not rendered.
func (e *Engine) GetStyle(n *html.Node, prop string) (string, bool) {
	if !isElement(n) {
		return "", false
	}
	if prop == "float" || prop == "cssFloat" {
		prop = e.ops.floatName
	} else {
		prop = camelize(prop)
	}

	switch prop {
	case "opacity":
		return formatNumber(e.GetOpacity(n)), true
	case "width", "height":
		if v, ok, done := e.ops.size.Get()(e, n, prop); done {
			return v, ok
		}
	}

	value := e.host.Style(n).Get(prop)
	if value == "" || value == "auto" {
		value = e.host.ComputedStyle(n, prop)
	}
	if value == "auto" {
		return e.ops.autoSize(e, n, prop)
	}
	return value, value != ""
}

// sizeHiddenNull settles the size of elements hidden by display:none, which
// this host computes as 0px.
func (e *Engine) sizeHiddenNull(n *html.Node, _ string) (string, bool, bool) {
	if !e.Visible(n) {
		return "", false, true
	}
	return "", false, false
}

// sizeContentBox recovers the content-box size from a host that computes
// border-box sizes.
func (e *Engine) sizeContentBox(n *html.Node, prop string) (string, bool, bool) {
	dim, ok := parseInt(e.host.ComputedStyle(n, prop))
	if !ok {
		return "", false, false
	}
	if float64(dim) != math.Round(offsetDimension(e.host.Offset(n), prop)) {
		return px(float64(dim)), true, true
	}
	edges := widthEdges
	if prop == "height" {
		edges = heightEdges
	}
	total := dim
	for _, edge := range edges {
		if v, ok := parseInt(e.host.ComputedStyle(n, edge)); ok {
			total -= v
		}
	}
	return px(float64(total)), true, true
}

// autoFromOffset resolves an auto width or height from the rendered box.
func (e *Engine) autoFromOffset(n *html.Node, prop string) (string, bool) {
	if prop != "width" && prop != "height" {
		return "", false
	}
	if display, _ := e.GetStyle(n, "display"); display == "none" {
		return "", false
	}
	return px(offsetDimension(e.host.Offset(n), prop)), true
}

// GetOpacity returns the opacity of n between 0 and 1.
func (e *Engine) GetOpacity(n *html.Node) float64 {
	if !isElement(n) {
		return 1
	}
	return e.ops.getOpacity(e, n)
}

func (e *Engine) opacityFromProperty(n *html.Node) float64 {
	value := e.host.Style(n).Get("opacity")
	if value == "" {
		value = e.host.ComputedStyle(n, "opacity")
	}
	if value == "" {
		return 1
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 1
	}
	return f
}

func (e *Engine) opacityFromFilter(n *html.Node) float64 {
	filter, _ := e.GetStyle(n, "filter")
	if m := reAlpha.FindStringSubmatch(filter); m != nil && m[1] != "" {
		return parseFloat(m[1]) / 100
	}
	return 1
}

// SetOpacity sets the opacity of n. 1 clears any explicit opacity and values
// below 0.00001 are written as 0.
func (e *Engine) SetOpacity(n *html.Node, value float64) *html.Node {
	return e.setOpacity(n, formatNumber(value))
}

// setOpacity takes the raw value from a style map, where "" also clears.
func (e *Engine) setOpacity(n *html.Node, raw string) *html.Node {
	if !isElement(n) {
		return n
	}
	raw = strings.TrimSpace(raw)
	if raw != "" {
		v := parseFloat(raw)
		switch {
		case v == 1:
			raw = ""
		case v < 0.00001:
			raw = "0"
		}
	}
	e.ops.setOpacity(e, n, raw)
	return n
}

func (e *Engine) setOpacityProperty(n *html.Node, value string) {
	e.host.Style(n).Set("opacity", value)
}

func (e *Engine) setOpacityFilter(n *html.Node, value string) {
	style := e.host.Style(n)
	// Alpha filters only apply to elements with layout.
	if e.host.ComputedStyle(n, "zoom") == "normal" {
		style.Set("zoom", "1")
	}
	filter, _ := e.GetStyle(n, "filter")
	stripped := reAlphaStrip.ReplaceAllString(filter, "")
	if value == "" {
		style.Set("filter", strings.TrimSpace(stripped))
		return
	}
	style.Set("filter", stripped+"alpha(opacity="+formatNumber(parseFloat(value)*100)+")")
}

// SetStyle merges styles onto the inline style of n, in property order.
func (e *Engine) SetStyle(n *html.Node, styles map[string]string) *html.Node {
	if !isElement(n) {
		return n
	}
	props := make([]string, 0, len(styles))
	for prop := range styles {
		props = append(props, prop)
	}
	slices.Sort(props)

	style := e.host.Style(n)
	for _, prop := range props {
		value := styles[prop]
		switch prop {
		case "opacity":
			e.setOpacity(n, value)
		case "overflow":
			e.ops.setOverflow(e, n, value)
		case "float", "cssFloat":
			style.Set(e.ops.floatName, value)
		default:
			style.Set(camelize(prop), value)
		}
	}
	return n
}

// SetStyleText appends raw declarations to the inline style of n.
func (e *Engine) SetStyleText(n *html.Node, text string) *html.Node {
	if !isElement(n) {
		return n
	}
	style := e.host.Style(n)
	style.SetCSSText(style.CSSText() + ";" + text)
	if strings.Contains(text, "opacity") {
		if m := reOpacityText.FindStringSubmatch(text); m != nil {
			e.setOpacity(n, m[1])
		}
	}
	return n
}

func (e *Engine) setOverflowStyle(n *html.Node, value string) {
	e.host.Style(n).Set("overflow", value)
}

// setOverflowAttribute rewrites the style attribute, for hosts where overflow
// set from markup ignores style writes.
func (e *Engine) setOverflowAttribute(n *html.Node, value string) {
	current, _ := e.ReadAttribute(n, "style")
	next := "overflow: " + value + "; "
	if loc := reOverflow.FindStringIndex(current); loc != nil {
		next = current[:loc[0]] + next + current[loc[1]:]
	} else {
		next += current
	}
	e.WriteAttribute(n, "style", next)
}
