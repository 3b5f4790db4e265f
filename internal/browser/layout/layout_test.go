// internal/browser/layout/layout_test.go
package layout_test

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/layout"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/parser"
)

// -- Test Helpers --

// inlineStyles is a minimal StyleSource: block display for a handful of
// tags plus whatever the style attribute declares.
type inlineStyles struct{}

var blockTags = map[string]bool{"html": true, "body": true, "div": true, "p": true}

func (inlineStyles) Lookup(n *html.Node, property, fallback string) string {
	decls := parser.Expand(parser.ParseInline(htmlquery.SelectAttr(n, "style")))
	if v, ok := parser.Lookup(decls, parser.Property(property)); ok {
		return string(v)
	}
	switch property {
	case "display":
		if n.Data == "head" {
			return "none"
		}
		if blockTags[n.Data] {
			return "block"
		}
	case "font-size":
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			return inlineStyles{}.Lookup(n.Parent, property, fallback)
		}
	}
	return fallback
}

func setupLayoutTest(t *testing.T, htmlString string) (*html.Node, *layout.Tree) {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(htmlString))
	require.NoError(t, err, "Failed to parse test HTML")

	root := htmlquery.FindOne(doc, "//html")
	require.NotNil(t, root)

	tree := layout.NewEngine(inlineStyles{}, 800, 600).BuildAndLayoutTree(root)
	require.NotNil(t, tree.Root, "Layout root should not be nil")
	return doc, tree
}

func boxOf(t *testing.T, doc *html.Node, tree *layout.Tree, id string) *layout.LayoutBox {
	t.Helper()
	n := htmlquery.FindOne(doc, "//*[@id='"+id+"']")
	require.NotNil(t, n, "missing #%s", id)
	b := tree.Box(n)
	require.NotNil(t, b, "#%s is not rendered", id)
	return b
}

// -- Test Cases --

func TestBlockFlowStacksChildren(t *testing.T) {
	doc, tree := setupLayoutTest(t, `<html><body style="margin:0">
		<div id="a" style="height:10px"></div>
		<div id="b">x</div>
	</body></html>`)

	a := boxOf(t, doc, tree, "a").Dimensions.BorderBox()
	b := boxOf(t, doc, tree, "b").Dimensions.BorderBox()

	assert.Equal(t, layout.Rect{X: 0, Y: 0, Width: 800, Height: 10}, a)
	assert.Equal(t, 10.0, b.Y)
	assert.InDelta(t, 16*layout.DefaultLineHeight, b.Height, 0.001)
	assert.Equal(t, 800.0, b.Width)
}

func TestBoxModelEdges(t *testing.T) {
	doc, tree := setupLayoutTest(t, `<html><body style="margin:8px">
		<div id="a" style="width:10px; border-left:10px solid transparent; padding:5px; margin: 2px 0 0 3px"></div>
	</body></html>`)

	d := boxOf(t, doc, tree, "a").Dimensions
	assert.Equal(t, 10.0, d.Content.Width)
	assert.Equal(t, 30.0, d.BorderBox().Width)
	assert.Equal(t, 10.0, d.BorderBox().Height)
	assert.Equal(t, 11.0, d.BorderBox().X)
	assert.Equal(t, 10.0, d.BorderBox().Y)
}

func TestDisplayNoneIsNotRendered(t *testing.T) {
	doc, tree := setupLayoutTest(t, `<html><body>
		<div id="hidden" style="display:none"><div id="inner">x</div></div>
	</body></html>`)

	for _, id := range []string{"hidden", "inner"} {
		n := htmlquery.FindOne(doc, "//*[@id='"+id+"']")
		require.NotNil(t, n)
		assert.Nil(t, tree.Box(n), id)
	}
}

func TestRelativePositioningShiftsSubtree(t *testing.T) {
	doc, tree := setupLayoutTest(t, `<html><body style="margin:0">
		<div id="rel" style="position:relative; top:5px; left:7px">
			<div id="child" style="height:4px"></div>
		</div>
		<div id="after" style="height:1px"></div>
	</body></html>`)

	rel := boxOf(t, doc, tree, "rel").Dimensions.BorderBox()
	child := boxOf(t, doc, tree, "child").Dimensions.BorderBox()
	after := boxOf(t, doc, tree, "after").Dimensions.BorderBox()

	assert.Equal(t, 5.0, rel.Y)
	assert.Equal(t, 7.0, rel.X)
	assert.Equal(t, 5.0, child.Y)
	assert.Equal(t, 7.0, child.X)
	// Relative offsets do not affect the flow.
	assert.Equal(t, 4.0, after.Y)
}

func TestAbsoluteUsesPositionedAncestor(t *testing.T) {
	doc, tree := setupLayoutTest(t, `<html><body style="margin:0">
		<div style="height:50px"></div>
		<div id="cb" style="position:relative; padding:10px; border-top:2px solid; height:100px">
			<div id="abs" style="position:absolute; top:3px; left:4px; width:20px; height:20px"></div>
		</div>
	</body></html>`)

	cb := boxOf(t, doc, tree, "cb").Dimensions.PaddingBox()
	abs := boxOf(t, doc, tree, "abs").Dimensions.BorderBox()

	assert.Equal(t, 52.0, cb.Y)
	assert.Equal(t, layout.Rect{X: cb.X + 4, Y: cb.Y + 3, Width: 20, Height: 20}, abs)
}

func TestAbsoluteShrinksToFitAndKeepsStaticPosition(t *testing.T) {
	doc, tree := setupLayoutTest(t, `<html><body style="margin:8px">
		<div style="height:12px"></div>
		<div id="abs" style="position:absolute">xxxx</div>
	</body></html>`)

	abs := boxOf(t, doc, tree, "abs").Dimensions.BorderBox()
	assert.Equal(t, 8.0, abs.X)
	assert.Equal(t, 20.0, abs.Y)
	assert.Equal(t, 4*16*layout.AverageCharWidth, abs.Width)
}

func TestNestedPositionedPayload(t *testing.T) {
	clearance := "margin:0;padding:0;border:0;visibility:hidden;"
	doc, tree := setupLayoutTest(t, `<html><body>
		<div style="position:absolute;top:10px;`+clearance+`">
			<div id="rel" style="position:relative;top:10px;`+clearance+`">
				<div style="height:10px;font-size:1px;`+clearance+`"></div>
				<div id="target">x</div>
			</div>
		</div>
	</body></html>`)

	rel := boxOf(t, doc, tree, "rel").Dimensions.PaddingBox()
	target := boxOf(t, doc, tree, "target").Dimensions.BorderBox()
	assert.Equal(t, 20.0, rel.Y)
	assert.Equal(t, 10.0, target.Y-rel.Y)
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10px", 10, true},
		{"0", 0, true},
		{"1.5em", 24, true},
		{"2rem", 32, true},
		{"50%", 100, true},
		{"-3px", -3, true},
		{"12pt", 16, true},
		{"auto", 0, false},
		{"", 0, false},
		{"10qq", 0, false},
		{"px", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := layout.ParseLength(tt.in, 16, 200)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}
