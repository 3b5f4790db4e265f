// internal/browser/host/geometry_test.go
package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

const positionedDoc = `<div id="rel" style="position: relative; top: 10px; left: 5px"><p id="inner">x</p></div>` +
	`<div id="abs" style="position: absolute; top: 0; left: 0; margin: 0"></div>` +
	`<div id="fixed" style="position: fixed; top: 0"></div>`

func TestOffsetParent(t *testing.T) {
	d := newDoc(t, positionedDoc, "standard")

	op, err := d.OffsetParent(d.GetElementByID("inner"))
	require.NoError(t, err)
	assert.Same(t, d.GetElementByID("rel"), op)

	op, err = d.OffsetParent(d.GetElementByID("rel"))
	require.NoError(t, err)
	assert.Same(t, d.Body(), op)

	op, err = d.OffsetParent(d.GetElementByID("fixed"))
	require.NoError(t, err)
	assert.Nil(t, op)

	op, err = d.OffsetParent(d.Body())
	require.NoError(t, err)
	assert.Nil(t, op)

	op, err = d.OffsetParent(d.CreateElement("div"))
	require.NoError(t, err)
	assert.Nil(t, op)

	legacy := newDoc(t, ``, "trident")
	_, err = legacy.OffsetParent(legacy.CreateElement("div"))
	assert.ErrorIs(t, err, host.ErrDetached)
}

func TestOffset(t *testing.T) {
	tests := []struct {
		profile  string
		node     string
		wantLeft float64
		wantTop  float64
	}{
		{"standard", "inner", 0, 0},
		{"standard", "rel", 13, 18},
		{"standard", "abs", 0, 0},
		{"standard", "body", 0, 0},
		{"webkit", "rel", 5, 10},
		{"webkit", "abs", 0, 0},
		{"webkit", "body", 8, 8},
		{"trident", "inner", 5, 10},
	}
	for _, tc := range tests {
		t.Run(tc.profile+"/"+tc.node, func(t *testing.T) {
			d := newDoc(t, positionedDoc, tc.profile)
			n := d.GetElementByID(tc.node)
			if tc.node == "body" {
				n = d.Body()
			}
			box := d.Offset(n)
			assert.InDelta(t, tc.wantLeft, box.Left, 0.001)
			assert.InDelta(t, tc.wantTop, box.Top, 0.001)
		})
	}
}

func TestOffset_Unrendered(t *testing.T) {
	d := newDoc(t, `<div id="h" style="display: none"><b id="b">x</b></div>`, "standard")
	assert.Equal(t, host.Box{}, d.Offset(d.GetElementByID("b")))
	assert.Equal(t, host.Box{}, d.Offset(d.CreateElement("div")))
}

func TestClientSize(t *testing.T) {
	d := newDoc(t, positionedDoc, "standard", host.WithViewport(800, 600))

	w, h := d.ClientSize(d.DocumentElement())
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)

	w, h = d.ClientSize(d.GetElementByID("rel"))
	assert.InDelta(t, 784.0, w, 0.001)
	assert.Greater(t, h, 0.0)

	w, h = d.ClientSize(d.CreateElement("div"))
	assert.Zero(t, w)
	assert.Zero(t, h)

	vw, vh := d.Viewport()
	assert.Equal(t, 800.0, vw)
	assert.Equal(t, 600.0, vh)
}

func TestScrollOffsets(t *testing.T) {
	d := newDoc(t, positionedDoc, "standard")
	rel := d.GetElementByID("rel")

	d.SetScrollOffset(rel, host.Point{X: 3, Y: 4})
	assert.Equal(t, host.Point{X: 3, Y: 4}, d.ScrollOffset(rel))
	d.SetScrollOffset(rel, host.Point{})
	assert.Equal(t, host.Point{}, d.ScrollOffset(rel))

	d.ScrollTo(0, 50)
	assert.Equal(t, host.Point{Y: 50}, d.PageScroll())
	assert.Equal(t, host.Point{Y: 50}, d.ScrollOffset(d.DocumentElement()))

	d.SetScrollOffset(d.DocumentElement(), host.Point{X: 1})
	assert.Equal(t, host.Point{X: 1}, d.PageScroll())
}
