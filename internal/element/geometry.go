// internal/element/geometry.go
package element

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

// Offset is a position in document pixels.
type Offset struct {
	Left, Top float64
}

// Dimensions is a rendered size in pixels.
type Dimensions struct {
	Width, Height float64
}

// ClonePositionOptions selects what ClonePosition copies. A nil options
// value copies everything with no offsets.
type ClonePositionOptions struct {
	SetLeft, SetTop, SetWidth, SetHeight bool
	OffsetTop, OffsetLeft                float64
}

// DefaultClonePositionOptions copies position and size without offsets.
func DefaultClonePositionOptions() ClonePositionOptions {
	return ClonePositionOptions{SetLeft: true, SetTop: true, SetWidth: true, SetHeight: true}
}

// holdStyle snapshots inline properties and returns a func restoring them.
func holdStyle(style host.Style, props ...string) func() {
	saved := make([]string, len(props))
	for i, p := range props {
		saved[i] = style.Get(p)
	}
	return func() {
		for i := len(props) - 1; i >= 0; i-- {
			style.Set(props[i], saved[i])
		}
	}
}

func (e *Engine) position(n *html.Node) string {
	v, _ := e.GetStyle(n, "position")
	return v
}

func (e *Engine) offsetParent(n *html.Node) *html.Node {
	p, err := e.host.OffsetParent(n)
	if err != nil {
		return nil
	}
	return p
}

func (e *Engine) isBody(n *html.Node) bool {
	return n != nil && n == e.host.Body()
}

// GetDimensions returns the rendered size of n. Elements hidden with
// display:none are measured in a temporary hidden, absolutely positioned
// block state that is always undone.
func (e *Engine) GetDimensions(n *html.Node) Dimensions {
	if !isElement(n) {
		return Dimensions{}
	}
	if display, ok := e.GetStyle(n, "display"); ok && display != "none" {
		b := e.host.Offset(n)
		return Dimensions{Width: b.Width, Height: b.Height}
	}

	style := e.host.Style(n)
	restore := holdStyle(style, "visibility", "position", "display")
	defer restore()

	fixed := style.Get("position") == "fixed"
	style.Set("visibility", "hidden")
	if !fixed {
		style.Set("position", "absolute")
	}
	style.Set("display", "block")
	w, h := e.host.ClientSize(n)
	return Dimensions{Width: w, Height: h}
}

func (e *Engine) GetWidth(n *html.Node) float64 { return e.GetDimensions(n).Width }

func (e *Engine) GetHeight(n *html.Node) float64 { return e.GetDimensions(n).Height }

// CumulativeOffset sums offsets along the offset parent chain: the page
// position of n.
func (e *Engine) CumulativeOffset(n *html.Node) Offset {
	if !isElement(n) || e.ops.orphaned(n) {
		return Offset{}
	}
	return e.ops.cumulative.Get()(e, n)
}

func (e *Engine) cumulativeWalk(n *html.Node) Offset {
	var off Offset
	for el := n; el != nil; el = e.offsetParent(el) {
		b := e.host.Offset(el)
		off.Left += b.Left
		off.Top += b.Top
	}
	return off
}

// cumulativeStopAtBody ends the walk at absolutely positioned children of
// body, whose offsets on this host already include the body margin.
func (e *Engine) cumulativeStopAtBody(n *html.Node) Offset {
	var off Offset
	for el := n; el != nil; {
		b := e.host.Offset(el)
		off.Left += b.Left
		off.Top += b.Top
		parent := e.offsetParent(el)
		if e.isBody(parent) && e.position(el) == "absolute" {
			break
		}
		el = parent
	}
	return off
}

// CumulativeScrollOffset sums scroll offsets along the parent chain.
func (e *Engine) CumulativeScrollOffset(n *html.Node) Offset {
	var off Offset
	for el := n; el != nil; el = el.Parent {
		p := e.host.ScrollOffset(el)
		off.Left += p.X
		off.Top += p.Y
	}
	return off
}

// GetOffsetParent returns the nearest positioned ancestor of n, or body.
func (e *Engine) GetOffsetParent(n *html.Node) *html.Node {
	body := e.host.Body()
	if !isElement(n) || e.ops.orphaned(n) {
		return e.Extend(body)
	}
	if op := e.offsetParent(n); op != nil && e.position(op) != "static" {
		return e.Extend(op)
	}
	if n == body {
		return e.Extend(n)
	}
	for p := n.Parent; isElement(p) && p != body; p = p.Parent {
		if e.position(p) != "static" {
			return e.Extend(p)
		}
	}
	return e.Extend(body)
}

// PositionedOffset returns the offset of n relative to its positioned
// ancestor.
func (e *Engine) PositionedOffset(n *html.Node) Offset {
	if !isElement(n) || e.ops.orphaned(n) {
		return Offset{}
	}
	return e.ops.positioned.Get()(e, n)
}

func (e *Engine) positionedWalk(n *html.Node) Offset {
	var off Offset
	for el := n; el != nil; {
		b := e.host.Offset(el)
		off.Left += b.Left
		off.Top += b.Top
		el = e.offsetParent(el)
		if el != nil && (el.DataAtom == atom.Body || e.position(el) != "static") {
			break
		}
	}
	return off
}

// withRelativeCorrection measures static elements as relatively positioned,
// for hosts that misreport static descendants of positioned elements.
func withRelativeCorrection(measure offsetFunc) offsetFunc {
	return func(e *Engine, n *html.Node) Offset {
		if e.position(n) != "static" {
			return measure(e, n)
		}
		// A fixed offset parent needs layout before it reports offsets.
		if op := e.GetOffsetParent(n); op != nil && e.position(op) == "fixed" {
			e.host.Style(op).Set("zoom", "1")
		}
		style := e.host.Style(n)
		restore := holdStyle(style, "position")
		defer restore()
		style.Set("position", "relative")
		return measure(e, n)
	}
}

// ViewportOffset returns the position of n relative to the viewport.
func (e *Engine) ViewportOffset(n *html.Node) Offset {
	if !isElement(n) || e.ops.orphaned(n) {
		return Offset{}
	}
	return e.ops.viewport.Get()(e, n)
}

func (e *Engine) viewportWalk(n *html.Node) Offset {
	var off Offset
	for el := n; el != nil; el = e.offsetParent(el) {
		b := e.host.Offset(el)
		off.Left += b.Left
		off.Top += b.Top
		if e.isBody(e.offsetParent(el)) && e.position(el) == "absolute" {
			break
		}
	}
	for el := n; el != nil; el = el.Parent {
		p := e.host.ScrollOffset(el)
		off.Left -= p.X
		off.Top -= p.Y
	}
	return off
}

// ClonePosition copies the viewport position and size of source onto target.
func (e *Engine) ClonePosition(target, source *html.Node, opts *ClonePositionOptions) *html.Node {
	if !isElement(target) || !isElement(source) {
		return target
	}
	o := DefaultClonePositionOptions()
	if opts != nil {
		o = *opts
	}

	p := e.ViewportOffset(source)
	var delta Offset
	var parent *html.Node
	if e.position(target) == "absolute" {
		parent = e.GetOffsetParent(target)
		delta = e.ViewportOffset(parent)
	}
	if parent != nil && e.isBody(parent) {
		b := e.host.Offset(parent)
		delta.Left -= b.Left
		delta.Top -= b.Top
	}

	style := e.host.Style(target)
	src := e.host.Offset(source)
	if o.SetLeft {
		style.Set("left", px(p.Left-delta.Left+o.OffsetLeft))
	}
	if o.SetTop {
		style.Set("top", px(p.Top-delta.Top+o.OffsetTop))
	}
	if o.SetWidth {
		style.Set("width", px(src.Width))
	}
	if o.SetHeight {
		style.Set("height", px(src.Height))
	}
	return target
}

// Visible reports whether the inline display of n is not none.
func (e *Engine) Visible(n *html.Node) bool {
	if !isElement(n) {
		return false
	}
	return e.host.Style(n).Get("display") != "none"
}

func (e *Engine) Show(n *html.Node) *html.Node {
	if isElement(n) {
		e.host.Style(n).Set("display", "")
	}
	return n
}

func (e *Engine) Hide(n *html.Node) *html.Node {
	if isElement(n) {
		e.host.Style(n).Set("display", "none")
	}
	return n
}

func (e *Engine) Toggle(n *html.Node) *html.Node {
	if e.Visible(n) {
		return e.Hide(n)
	}
	return e.Show(n)
}

// MakePositioned makes a static element relatively positioned, remembering
// that it did so.
func (e *Engine) MakePositioned(n *html.Node) *html.Node {
	if !isElement(n) {
		return n
	}
	if pos := e.position(n); pos == "static" || pos == "" {
		e.Store(n, keyMadePositioned, true)
		e.host.Style(n).Set("position", "relative")
	}
	return n
}

func (e *Engine) UndoPositioned(n *html.Node) *html.Node {
	if !isElement(n) {
		return n
	}
	if made, _ := e.Retrieve(n, keyMadePositioned).(bool); made {
		e.forget(n, keyMadePositioned)
		style := e.host.Style(n)
		for _, prop := range []string{"position", "top", "left", "bottom", "right"} {
			style.Set(prop, "")
		}
	}
	return n
}

// MakeClipping hides overflow, remembering the previous value.
func (e *Engine) MakeClipping(n *html.Node) *html.Node {
	if !isElement(n) {
		return n
	}
	if _, ok := e.GetStorage(n)[keyOverflow]; ok {
		return n
	}
	overflow, ok := e.GetStyle(n, "overflow")
	if !ok {
		overflow = "auto"
	}
	e.Store(n, keyOverflow, overflow)
	if overflow != "hidden" {
		e.SetStyle(n, map[string]string{"overflow": "hidden"})
	}
	return n
}

func (e *Engine) UndoClipping(n *html.Node) *html.Node {
	if !isElement(n) {
		return n
	}
	overflow, ok := e.GetStorage(n)[keyOverflow].(string)
	if !ok {
		return n
	}
	if overflow == "auto" {
		overflow = ""
	}
	e.SetStyle(n, map[string]string{"overflow": overflow})
	e.forget(n, keyOverflow)
	return n
}

// Absolutize turns n into an absolutely positioned element at its current
// position and size.
func (e *Engine) Absolutize(n *html.Node) *html.Node {
	if !isElement(n) || e.position(n) == "absolute" {
		return n
	}
	off := e.PositionedOffset(n)
	w, h := e.host.ClientSize(n)
	style := e.host.Style(n)

	e.StoreAll(n, map[string]any{
		keyOriginalLeft:   off.Left - parseFloat(style.Get("left")),
		keyOriginalTop:    off.Top - parseFloat(style.Get("top")),
		keyOriginalWidth:  style.Get("width"),
		keyOriginalHeight: style.Get("height"),
	})

	style.Set("position", "absolute")
	style.Set("top", px(off.Top))
	style.Set("left", px(off.Left))
	style.Set("width", px(w))
	style.Set("height", px(h))
	return n
}

// Relativize reverts Absolutize.
func (e *Engine) Relativize(n *html.Node) *html.Node {
	if !isElement(n) || e.position(n) == "relative" {
		return n
	}
	style := e.host.Style(n)
	style.Set("position", "relative")

	m := e.GetStorage(n)
	origTop, _ := m[keyOriginalTop].(float64)
	origLeft, _ := m[keyOriginalLeft].(float64)
	origWidth, _ := m[keyOriginalWidth].(string)
	origHeight, _ := m[keyOriginalHeight].(string)

	style.Set("top", px(parseFloat(style.Get("top"))-origTop))
	style.Set("left", px(parseFloat(style.Get("left"))-origLeft))
	style.Set("height", origHeight)
	style.Set("width", origWidth)
	return n
}

// ScrollTo scrolls the page to the position of n.
func (e *Engine) ScrollTo(n *html.Node) *html.Node {
	if !isElement(n) {
		return n
	}
	off := e.CumulativeOffset(n)
	e.host.ScrollTo(off.Left, off.Top)
	return n
}

// ViewportDimensions returns the size of the viewport.
func (e *Engine) ViewportDimensions() Dimensions {
	w, h := e.host.ClientSize(e.host.DocumentElement())
	return Dimensions{Width: w, Height: h}
}

// ViewportScrollOffsets returns the page scroll position.
func (e *Engine) ViewportScrollOffsets() Offset {
	p := e.host.PageScroll()
	return Offset{Left: p.X, Top: p.Y}
}
