// internal/element/probe/probes.go
package probe

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

const (
	SelectInnerHTMLBuggy       Name = "select-innerhtml-buggy"
	TableInnerHTMLBuggy        Name = "table-innerhtml-buggy"
	ScriptRejectsTextNode      Name = "script-rejects-textnode"
	TitleEmptyReadsNull        Name = "title-empty-reads-null"
	OverflowStyleBuggy         Name = "overflow-style-buggy"
	OffsetParentThrowsOnOrphan Name = "offset-parent-throws-on-orphan"
	OuterHTML                  Name = "outer-html"
	NativeHasAttribute         Name = "native-has-attribute"
	ClassAttributeName         Name = "class-attribute-name"
	ForAttributeName           Name = "for-attribute-name"
	FloatProperty              Name = "float-property"
	OpacityProperty            Name = "opacity-property"
	FilterProperty             Name = "filter-property"
	ComputedSizeAlwaysAuto     Name = "computed-size-always-auto"
	ElementExtensions          Name = "element-extensions"
	SpecificElementExtensions  Name = "specific-element-extensions"

	// Lazy: these need a live body.
	ComputedHiddenZero Name = "computed-hidden-zero"
	ComputedBorderBox  Name = "computed-border-box"
	StaticOffsetBuggy  Name = "static-offset-buggy"
	BodyMarginArtifact Name = "body-margin-artifact"
)

// DefaultProbes returns the built-in probe set in evaluation order.
func DefaultProbes() []Probe {
	return []Probe{
		{Name: SelectInnerHTMLBuggy, Run: selectInnerHTMLBuggy},
		{Name: TableInnerHTMLBuggy, Run: tableInnerHTMLBuggy},
		{Name: ScriptRejectsTextNode, Run: scriptRejectsTextNode},
		{Name: TitleEmptyReadsNull, Run: titleEmptyReadsNull},
		{Name: OverflowStyleBuggy, Run: overflowStyleBuggy},
		{Name: OffsetParentThrowsOnOrphan, Run: offsetParentThrowsOnOrphan},
		{Name: OuterHTML, Run: outerHTML},
		{Name: NativeHasAttribute, Run: nativeHasAttribute},
		{Name: ClassAttributeName, Run: classAttributeName},
		{Name: ForAttributeName, Run: forAttributeName},
		{Name: FloatProperty, Run: floatProperty},
		{Name: OpacityProperty, Run: styleSupports("opacity")},
		{Name: FilterProperty, Run: styleSupports("filter")},
		{Name: ComputedSizeAlwaysAuto, Run: computedSizeAlwaysAuto},
		{Name: ElementExtensions, Run: elementExtensions},
		{Name: SpecificElementExtensions, Run: specificElementExtensions},
		{Name: ComputedHiddenZero, NeedsBody: true, Run: computedHiddenZero},
		{Name: ComputedBorderBox, NeedsBody: true, Run: computedBorderBox},
		{Name: StaticOffsetBuggy, NeedsBody: true, Run: staticOffsetBuggy},
		{Name: BodyMarginArtifact, NeedsBody: true, Run: bodyMarginArtifact},
	}
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func selectInnerHTMLBuggy(h host.Host) any {
	el := h.CreateElement("select")
	if err := h.SetInnerHTML(el, `<option value="test">test</option>`); err != nil {
		return true
	}
	first := firstElementChild(el)
	return first == nil || first.DataAtom != atom.Option
}

func tableInnerHTMLBuggy(h host.Host) any {
	el := h.CreateElement("table")
	if err := h.SetInnerHTML(el, `<tbody><tr><td>test</td></tr></tbody>`); err != nil {
		return true
	}
	first := firstElementChild(el)
	return first == nil || first.DataAtom != atom.Tbody
}

func scriptRejectsTextNode(h host.Host) any {
	s := h.CreateElement("script")
	if err := h.AppendChild(s, h.CreateTextNode("")); err != nil {
		return true
	}
	return s.FirstChild == nil || s.FirstChild.Type != html.TextNode
}

func titleEmptyReadsNull(h host.Host) any {
	el := h.CreateElement("div")
	h.SetAttribute(el, "title", "")
	_, present := h.GetAttribute(el, "title")
	return !present
}

func overflowStyleBuggy(h host.Host) any {
	el := h.CreateElement("div")
	if err := h.SetInnerHTML(el, `<p style="overflow: visible;">x</p>`); err != nil {
		return false
	}
	first := el.FirstChild
	if first == nil || first.Type != html.ElementNode {
		return false
	}
	style := h.Style(first)
	style.Set("overflow", "hidden")
	return style.Get("overflow") != "hidden"
}

func offsetParentThrowsOnOrphan(h host.Host) any {
	_, err := h.OffsetParent(h.CreateElement("div"))
	return err != nil
}

func outerHTML(h host.Host) any {
	parent := h.CreateElement("div")
	child := h.CreateElement("span")
	if err := h.AppendChild(parent, child); err != nil {
		return false
	}
	return h.SetOuterHTML(child, `<span></span>`) == nil
}

func nativeHasAttribute(h host.Host) any {
	_, err := h.HasAttribute(h.CreateElement("div"), "id")
	return err == nil
}

// classAttributeName reports which attribute name writes reach className.
func classAttributeName(h host.Host) any {
	el := h.CreateElement("div")
	h.SetAttribute(el, "className", "x")
	if v, _ := h.Property(el, "className"); v == "x" {
		return "className"
	}
	return "class"
}

// forAttributeName reports which attribute name writes reach htmlFor.
func forAttributeName(h host.Host) any {
	el := h.CreateElement("label")
	h.SetAttribute(el, "for", "x")
	if v, _ := h.Property(el, "htmlFor"); v == "x" {
		return "for"
	}
	h.SetAttribute(el, "htmlFor", "x")
	if v, _ := h.Property(el, "htmlFor"); v == "x" {
		return "htmlFor"
	}
	return "for"
}

func floatProperty(h host.Host) any {
	if h.Style(h.CreateElement("div")).Supports("styleFloat") {
		return "styleFloat"
	}
	return "cssFloat"
}

func styleSupports(prop string) Func {
	return func(h host.Host) any {
		return h.Style(h.CreateElement("div")).Supports(prop)
	}
}

func computedSizeAlwaysAuto(h host.Host) any {
	docEl := h.DocumentElement()
	if docEl == nil {
		return false
	}
	return h.ComputedStyle(docEl, "width") == "auto"
}

func scratchName() string {
	return "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func elementExtensions(h host.Host) any {
	name := scratchName()
	if err := h.SetPrototypeProperty("*", name); err != nil {
		return false
	}
	defer h.DeletePrototypeProperty("*", name)
	return h.LookupProperty(h.CreateElement("div"), name)
}

// specificElementExtensions reports whether a property set on one tag's
// prototype stays scoped to that tag.
func specificElementExtensions(h host.Host) any {
	name := scratchName()
	if err := h.SetPrototypeProperty("div", name); err != nil {
		return false
	}
	defer h.DeletePrototypeProperty("div", name)
	return h.LookupProperty(h.CreateElement("div"), name) && !h.LookupProperty(h.CreateElement("p"), name)
}

// withScratch inserts el as the first child of body for the duration of fn.
func withScratch(h host.Host, el *html.Node, fn func()) {
	body := h.Body()
	if err := h.InsertBefore(body, el, body.FirstChild); err != nil {
		return
	}
	defer func() { _ = h.RemoveChild(body, el) }()
	fn()
}

func computedHiddenZero(h host.Host) any {
	el := h.CreateElement("div")
	h.Style(el).Set("display", "none")
	var buggy bool
	withScratch(h, el, func() {
		buggy = h.ComputedStyle(el, "width") == "0px"
	})
	return buggy
}

func computedBorderBox(h host.Host) any {
	el := h.CreateElement("div")
	style := h.Style(el)
	style.Set("width", "10px")
	style.Set("borderLeft", "10px solid transparent")
	var buggy bool
	withScratch(h, el, func() {
		buggy = h.ComputedStyle(el, "width") == "20px"
	})
	return buggy
}

// staticOffsetBuggy lays out a static element after a 10px spacer inside a
// relatively positioned box. Hosts that misreport it as 20px but measure 10px
// once the element itself is relative have the defect.
func staticOffsetBuggy(h host.Host) any {
	id := "x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	const clearance = "margin:0;padding:0;border:0;visibility:hidden;"
	payload := `<div style="position:absolute;top:10px;` + clearance + `">` +
		`<div style="position:relative;top:10px;` + clearance + `">` +
		`<div style="height:10px;font-size:1px;` + clearance + `"></div>` +
		`<div id="` + id + `">x</div>` +
		`</div></div>`

	wrapper := h.CreateElement("div")
	if err := h.SetInnerHTML(wrapper, payload); err != nil {
		return false
	}
	var buggy bool
	withScratch(h, wrapper, func() {
		el := h.GetElementByID(id)
		if el == nil || h.Offset(el).Top == 10 {
			return
		}
		h.Style(el).Set("position", "relative")
		buggy = h.Offset(el).Top == 10
	})
	return buggy
}

// bodyMarginArtifact detects hosts whose body reports its own margin as an
// offset even for absolutely positioned children pinned to the page origin.
func bodyMarginArtifact(h host.Host) any {
	el := h.CreateElement("div")
	style := h.Style(el)
	style.SetCSSText("position:absolute;top:0;left:0;margin:0;padding:0;border:0;width:1px;height:1px")
	var buggy bool
	withScratch(h, el, func() {
		buggy = h.Offset(el).Top+h.Offset(h.Body()).Top != 0
	})
	return buggy
}
