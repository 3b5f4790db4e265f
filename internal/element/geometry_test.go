// internal/element/geometry_test.go
package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

const positionedMarkup = `<div id="rel" style="position: relative; top: 10px; left: 5px"><p id="inner">x</p></div>` +
	`<div id="abs" style="position: absolute; top: 0; left: 0; margin: 0"></div>` +
	`<div id="fixed" style="position: fixed; top: 0"></div>`

func TestCumulativeOffset(t *testing.T) {
	tests := []struct {
		profile string
		id      string
		want    Offset
	}{
		{"standard", "rel", Offset{13, 18}},
		{"standard", "inner", Offset{13, 18}},
		{"standard", "abs", Offset{0, 0}},
		{"webkit", "rel", Offset{13, 18}},
		{"webkit", "abs", Offset{0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.profile+"/"+tc.id, func(t *testing.T) {
			e, d, _ := newEngine(t, positionedMarkup, tc.profile)
			assert.Equal(t, tc.want, e.CumulativeOffset(byID(t, d, tc.id)))
		})
	}
}

func TestCumulativeOffset_Orphan(t *testing.T) {
	for _, profile := range []string{"standard", "trident"} {
		t.Run(profile, func(t *testing.T) {
			e, _, _ := newEngine(t, ``, profile)
			orphan, err := e.NewElement("div", nil)
			require.NoError(t, err)
			assert.Equal(t, Offset{}, e.CumulativeOffset(orphan))
			assert.Equal(t, Offset{}, e.PositionedOffset(orphan))
			assert.Equal(t, Offset{}, e.ViewportOffset(orphan))
		})
	}
}

func TestCumulativeScrollOffset(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "standard")
	inner, rel := byID(t, d, "inner"), byID(t, d, "rel")

	d.SetScrollOffset(rel, host.Point{X: 2, Y: 30})
	d.ScrollTo(0, 5)
	assert.Equal(t, Offset{2, 35}, e.CumulativeScrollOffset(inner))
}

func TestGetOffsetParent(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "trident")
	body := d.Body()

	assert.Same(t, byID(t, d, "rel"), e.GetOffsetParent(byID(t, d, "inner")))
	assert.Same(t, body, e.GetOffsetParent(byID(t, d, "rel")))
	assert.Same(t, body, e.GetOffsetParent(body))

	orphan := d.CreateElement("div")
	assert.Same(t, body, e.GetOffsetParent(orphan), "orphans short-circuit to body")
	assert.True(t, e.IsExtended(e.GetOffsetParent(byID(t, d, "inner"))))
}

func TestPositionedOffset(t *testing.T) {
	tests := []struct {
		profile string
		id      string
		want    Offset
	}{
		{"standard", "inner", Offset{0, 0}},
		{"trident", "inner", Offset{0, 0}},
		{"standard", "rel", Offset{13, 18}},
	}
	for _, tc := range tests {
		t.Run(tc.profile+"/"+tc.id, func(t *testing.T) {
			e, d, _ := newEngine(t, positionedMarkup, tc.profile)
			n := byID(t, d, tc.id)
			before := d.Style(n).CSSText()

			assert.Equal(t, tc.want, e.PositionedOffset(n))
			assert.Equal(t, before, d.Style(n).CSSText(), "temporary position is restored")
		})
	}
}

func TestViewportOffset(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "standard")
	rel := byID(t, d, "rel")

	assert.Equal(t, Offset{13, 18}, e.ViewportOffset(rel))
	d.ScrollTo(0, 5)
	assert.Equal(t, Offset{13, 13}, e.ViewportOffset(rel))
	assert.Equal(t, Offset{0, 5}, e.ViewportScrollOffsets())
}

func TestClonePosition(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "standard")
	abs, rel := byID(t, d, "abs"), byID(t, d, "rel")

	e.ClonePosition(abs, rel, nil)
	style := d.Style(abs)
	assert.Equal(t, "13px", style.Get("left"))
	assert.Equal(t, "18px", style.Get("top"))
	assert.Equal(t, "1008px", style.Get("width"))
	assert.NotEmpty(t, style.Get("height"))

	e.ClonePosition(abs, rel, &ClonePositionOptions{SetLeft: true, OffsetLeft: 2})
	assert.Equal(t, "15px", style.Get("left"))
	assert.Equal(t, "18px", style.Get("top"), "unset fields are left alone")
}

func TestGetDimensions(t *testing.T) {
	e, d, _ := newEngine(t, `<div id="shown" style="width: 50px; height: 20px"></div>`+
		`<div id="hidden" style="display: none; width: 50px; height: 20px; padding: 5px"></div>`, "standard")

	assert.Equal(t, Dimensions{50, 20}, e.GetDimensions(byID(t, d, "shown")))
	assert.InDelta(t, 50, e.GetWidth(byID(t, d, "shown")), 1e-9)
	assert.InDelta(t, 20, e.GetHeight(byID(t, d, "shown")), 1e-9)

	hidden := byID(t, d, "hidden")
	style := d.Style(hidden)
	before := style.CSSText()

	// Measure the way GetDimensions does, by hand.
	style.Set("visibility", "hidden")
	style.Set("position", "absolute")
	style.Set("display", "block")
	w, h := d.ClientSize(hidden)
	style.SetCSSText(before)

	got := e.GetDimensions(hidden)
	assert.Equal(t, Dimensions{w, h}, got)
	assert.Positive(t, got.Width)
	assert.Equal(t, before, style.CSSText())
}

// hostDocument lets panickingHost embed *host.Document without the embedded
// field name shadowing the promoted Document() method.
type hostDocument = host.Document

// panickingHost fails measurements once armed.
type panickingHost struct {
	*hostDocument
	armed bool
}

func (p *panickingHost) ClientSize(n *html.Node) (float64, float64) {
	if p.armed {
		panic("measurement failed")
	}
	return p.hostDocument.ClientSize(n)
}

func TestGetDimensions_RestoresOnPanic(t *testing.T) {
	d := newDocument(t, `<div id="hidden" style="display: none; position: fixed">x</div>`, "standard")
	h := &panickingHost{hostDocument: d}
	e := New(h, WithScheduler(&recordingScheduler{}))

	hidden := byID(t, d, "hidden")
	before := d.Style(hidden).CSSText()
	h.armed = true

	assert.Panics(t, func() { e.GetDimensions(hidden) })
	assert.Equal(t, before, d.Style(hidden).CSSText())
}

func TestVisibility(t *testing.T) {
	e, d, _ := newEngine(t, `<p id="p">x</p>`, "standard")
	p := byID(t, d, "p")

	assert.True(t, e.Visible(p))
	e.Hide(p)
	assert.False(t, e.Visible(p))
	e.Toggle(p)
	assert.True(t, e.Visible(p))
	e.Toggle(p)
	assert.Equal(t, "none", d.Style(p).Get("display"))
	e.Show(p)
	assert.Equal(t, "", d.Style(p).Get("display"))

	assert.Nil(t, e.Show(nil))
	assert.False(t, e.Visible(nil))
}

func TestMakePositioned(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "standard")
	inner, rel := byID(t, d, "inner"), byID(t, d, "rel")

	e.MakePositioned(inner)
	assert.Equal(t, "relative", d.Style(inner).Get("position"))
	d.Style(inner).Set("top", "4px")
	e.UndoPositioned(inner)
	assert.Equal(t, "", d.Style(inner).CSSText())

	e.MakePositioned(rel)
	e.UndoPositioned(rel)
	assert.Equal(t, "relative", d.Style(rel).Get("position"), "already positioned elements are left alone")
}

func TestMakeClipping(t *testing.T) {
	e, d, _ := newEngine(t, `<div id="d">x</div>`, "standard")
	n := byID(t, d, "d")

	e.MakeClipping(n)
	assert.Equal(t, "hidden", d.Style(n).Get("overflow"))
	e.MakeClipping(n)
	e.UndoClipping(n)
	assert.Equal(t, "visible", d.Style(n).Get("overflow"))
	_, ok := e.GetStorage(n)[keyOverflow]
	assert.False(t, ok)
}

func TestAbsolutizeRelativize(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "standard")
	rel := byID(t, d, "rel")
	style := d.Style(rel)

	e.Absolutize(rel)
	assert.Equal(t, "absolute", style.Get("position"))
	assert.Equal(t, "13px", style.Get("left"))
	assert.Equal(t, "18px", style.Get("top"))
	assert.Equal(t, "1008px", style.Get("width"))

	e.Relativize(rel)
	assert.Equal(t, "relative", style.Get("position"))
	assert.Equal(t, "5px", style.Get("left"))
	assert.Equal(t, "10px", style.Get("top"))
	assert.Equal(t, "", style.Get("width"))
	assert.Equal(t, "", style.Get("height"))
}

func TestScrollTo(t *testing.T) {
	e, d, _ := newEngine(t, positionedMarkup, "standard")
	e.ScrollTo(byID(t, d, "rel"))
	assert.Equal(t, host.Point{X: 13, Y: 18}, d.PageScroll())
}

func TestViewportDimensions(t *testing.T) {
	e, _, _ := newEngine(t, ``, "standard", host.WithViewport(800, 600))
	assert.Equal(t, Dimensions{800, 600}, e.ViewportDimensions())
}
