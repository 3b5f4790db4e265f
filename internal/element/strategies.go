// internal/element/strategies.go
package element

import (
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/element/probe"
	"github.com/xkilldash9x/scalpel-dom/internal/element/strategy"
)

type (
	orphanCheck   func(n *html.Node) bool
	attrReader    func(e *Engine, n *html.Node) (string, bool)
	attrTester    func(e *Engine, n *html.Node, name string) bool
	opacityReader func(e *Engine, n *html.Node) float64
	styleWriter   func(e *Engine, n *html.Node, value string)
	autoResolver  func(e *Engine, n *html.Node, prop string) (string, bool)
	markupWriter  func(e *Engine, n *html.Node, markup string) error
	offsetFunc    func(e *Engine, n *html.Node) Offset
	// sizeFunc reports done when it settled the width or height lookup.
	sizeFunc func(e *Engine, n *html.Node, prop string) (value string, ok, done bool)
)

// operations holds the implementation bound to each ambiguous operation.
type operations struct {
	orphaned     orphanCheck
	readTitle    attrReader
	hasAttribute attrTester
	floatName    string
	getOpacity   opacityReader
	setOpacity   styleWriter
	setOverflow  styleWriter
	autoSize     autoResolver
	scriptAsText bool
	update       markupWriter
	replace      markupWriter
	extendMode   extendMode

	// Bound once the host has a body.
	size       *strategy.Slot[sizeFunc]
	cumulative *strategy.Slot[offsetFunc]
	positioned *strategy.Slot[offsetFunc]
	viewport   *strategy.Slot[offsetFunc]
}

func (e *Engine) bind() {
	t, f := e.table, e.probes

	e.ops.orphaned = strategy.Select(t, f, "offsetParent.orphan",
		strategy.Variant[orphanCheck]{Name: "short-circuit", When: strategy.Flag(probe.OffsetParentThrowsOnOrphan), Impl: func(n *html.Node) bool { return n.Parent == nil }},
		strategy.Variant[orphanCheck]{Name: "native", Impl: func(*html.Node) bool { return false }},
	)

	e.ops.readTitle = strategy.Select(t, f, "readAttribute.title",
		strategy.Variant[attrReader]{Name: "property", When: strategy.Flag(probe.TitleEmptyReadsNull), Impl: (*Engine).readTitleProperty},
		strategy.Variant[attrReader]{Name: "attribute", Impl: (*Engine).readTitleAttribute},
	)
	e.ops.hasAttribute = strategy.Select(t, f, "hasAttribute",
		strategy.Variant[attrTester]{Name: "native", When: strategy.Flag(probe.NativeHasAttribute), Impl: (*Engine).hasAttributeNative},
		strategy.Variant[attrTester]{Name: "simulated", Impl: (*Engine).hasAttributeSimulated},
	)
	e.attrNames = attributeNames(f)

	e.ops.floatName = strategy.Select(t, f, "getStyle.float",
		strategy.Variant[string]{Name: "styleFloat", When: strategy.Equals(probe.FloatProperty, "styleFloat"), Impl: "styleFloat"},
		strategy.Variant[string]{Name: "cssFloat", Impl: "cssFloat"},
	)
	e.ops.getOpacity = strategy.Select(t, f, "getOpacity",
		strategy.Variant[opacityReader]{Name: "opacity", When: strategy.Flag(probe.OpacityProperty), Impl: (*Engine).opacityFromProperty},
		strategy.Variant[opacityReader]{Name: "filter", When: strategy.Flag(probe.FilterProperty), Impl: (*Engine).opacityFromFilter},
		strategy.Variant[opacityReader]{Name: "opaque", Impl: func(*Engine, *html.Node) float64 { return 1 }},
	)
	e.ops.setOpacity = strategy.Select(t, f, "setOpacity",
		strategy.Variant[styleWriter]{Name: "opacity", When: strategy.Flag(probe.OpacityProperty), Impl: (*Engine).setOpacityProperty},
		strategy.Variant[styleWriter]{Name: "filter", When: strategy.Flag(probe.FilterProperty), Impl: (*Engine).setOpacityFilter},
		strategy.Variant[styleWriter]{Name: "unsupported", Impl: func(*Engine, *html.Node, string) {}},
	)
	e.ops.setOverflow = strategy.Select(t, f, "setStyle.overflow",
		strategy.Variant[styleWriter]{Name: "attribute", When: strategy.Flag(probe.OverflowStyleBuggy), Impl: (*Engine).setOverflowAttribute},
		strategy.Variant[styleWriter]{Name: "style", Impl: (*Engine).setOverflowStyle},
	)
	e.ops.autoSize = strategy.Select(t, f, "getStyle.auto",
		strategy.Variant[autoResolver]{Name: "offset-dimension", When: strategy.Flag(probe.ComputedSizeAlwaysAuto), Impl: (*Engine).autoFromOffset},
		strategy.Variant[autoResolver]{Name: "null", Impl: func(*Engine, *html.Node, string) (string, bool) { return "", false }},
	)
	e.ops.size = strategy.Lazy(t, f, "getStyle.size", []probe.Name{probe.ComputedHiddenZero, probe.ComputedBorderBox},
		strategy.Variant[sizeFunc]{Name: "hidden-null+border-box", When: strategy.All(strategy.Flag(probe.ComputedHiddenZero), strategy.Flag(probe.ComputedBorderBox)), Impl: sizeChain((*Engine).sizeHiddenNull, (*Engine).sizeContentBox)},
		strategy.Variant[sizeFunc]{Name: "border-box", When: strategy.Flag(probe.ComputedBorderBox), Impl: (*Engine).sizeContentBox},
		strategy.Variant[sizeFunc]{Name: "hidden-null", When: strategy.Flag(probe.ComputedHiddenZero), Impl: (*Engine).sizeHiddenNull},
		strategy.Variant[sizeFunc]{Name: "computed", Impl: func(*Engine, *html.Node, string) (string, bool, bool) { return "", false, false }},
	)

	e.ops.scriptAsText = strategy.Select(t, f, "update.script",
		strategy.Variant[bool]{Name: "text", When: strategy.Flag(probe.ScriptRejectsTextNode), Impl: true},
		strategy.Variant[bool]{Name: "markup", Impl: false},
	)
	e.ops.update = strategy.Select(t, f, "update",
		strategy.Variant[markupWriter]{Name: "translated", When: strategy.Any(strategy.Flag(probe.SelectInnerHTMLBuggy), strategy.Flag(probe.TableInnerHTMLBuggy)), Impl: (*Engine).updateTranslated},
		strategy.Variant[markupWriter]{Name: "innerHTML", Impl: (*Engine).updateInnerHTML},
	)
	e.ops.replace = strategy.Select(t, f, "replace",
		strategy.Variant[markupWriter]{Name: "outerHTML", When: strategy.Flag(probe.OuterHTML), Impl: (*Engine).replaceOuterHTML},
		strategy.Variant[markupWriter]{Name: "range", Impl: (*Engine).replaceRange},
	)

	e.ops.cumulative = strategy.Lazy(t, f, "cumulativeOffset", []probe.Name{probe.BodyMarginArtifact},
		strategy.Variant[offsetFunc]{Name: "body-margin", When: strategy.Flag(probe.BodyMarginArtifact), Impl: (*Engine).cumulativeStopAtBody},
		strategy.Variant[offsetFunc]{Name: "walk", Impl: (*Engine).cumulativeWalk},
	)
	e.ops.positioned = strategy.Lazy(t, f, "positionedOffset", []probe.Name{probe.StaticOffsetBuggy},
		strategy.Variant[offsetFunc]{Name: "relative-correction", When: strategy.Flag(probe.StaticOffsetBuggy), Impl: withRelativeCorrection((*Engine).positionedWalk)},
		strategy.Variant[offsetFunc]{Name: "walk", Impl: (*Engine).positionedWalk},
	)
	e.ops.viewport = strategy.Lazy(t, f, "viewportOffset", []probe.Name{probe.StaticOffsetBuggy},
		strategy.Variant[offsetFunc]{Name: "relative-correction", When: strategy.Flag(probe.StaticOffsetBuggy), Impl: withRelativeCorrection((*Engine).viewportWalk)},
		strategy.Variant[offsetFunc]{Name: "walk", Impl: (*Engine).viewportWalk},
	)

	e.ops.extendMode = strategy.Select(t, f, "extend",
		strategy.Variant[extendMode]{Name: "shared-prototype", When: strategy.All(strategy.Flag(probe.ElementExtensions), strategy.Flag(probe.SpecificElementExtensions)), Impl: modeShared},
		strategy.Variant[extendMode]{Name: "element-prototype", When: strategy.Flag(probe.ElementExtensions), Impl: modeElementPrototype},
		strategy.Variant[extendMode]{Name: "per-instance", Impl: modeSnapshot},
	)
}

// attributeNames maps the logical class and for names onto the names this
// host's setAttribute and getAttribute understand.
func attributeNames(f strategy.Flags) map[string]string {
	class, ok := f.String(probe.ClassAttributeName)
	if !ok || class == "" {
		class = "class"
	}
	forName, ok := f.String(probe.ForAttributeName)
	if !ok || forName == "" {
		forName = "for"
	}
	return map[string]string{
		"class":     class,
		"className": class,
		"for":       forName,
		"htmlFor":   forName,
	}
}

func sizeChain(fns ...sizeFunc) sizeFunc {
	return func(e *Engine, n *html.Node, prop string) (string, bool, bool) {
		for _, fn := range fns {
			if v, ok, done := fn(e, n, prop); done {
				return v, ok, true
			}
		}
		return "", false, false
	}
}
