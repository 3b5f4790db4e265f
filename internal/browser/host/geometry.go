// internal/browser/host/geometry.go
package host

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/layout"
)

// layoutTree returns the layout for the current document version.
func (d *Document) layoutTree() *layout.Tree {
	if d.tree == nil || d.treeVersion != d.version {
		engine := layout.NewEngine(styleSource{d: d}, d.viewportWidth, d.viewportHeight)
		d.tree = engine.BuildAndLayoutTree(d.DocumentElement())
		d.treeVersion = d.version
	}
	return d.tree
}

func (d *Document) layoutBox(n *html.Node) *layout.LayoutBox {
	if n == nil || !d.attached(n) {
		return nil
	}
	return d.layoutTree().Box(n)
}

func (d *Document) OffsetParent(n *html.Node) (*html.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Parent == nil && d.profile.OffsetParentThrowsOnOrphan {
		return nil, ErrDetached
	}
	return d.offsetParent(n), nil
}

func (d *Document) offsetParent(n *html.Node) *html.Node {
	box := d.layoutBox(n)
	if box == nil || n.DataAtom == atom.Body || n == d.DocumentElement() || box.Position == layout.PositionFixed {
		return nil
	}
	for p := n.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if p.DataAtom == atom.Body {
			return p
		}
		pbox := d.layoutBox(p)
		if pbox == nil {
			continue
		}
		if pbox.Position != layout.PositionStatic {
			return p
		}
		if box.Position == layout.PositionStatic {
			switch p.DataAtom {
			case atom.Td, atom.Th, atom.Table:
				return p
			}
		}
	}
	return nil
}

// Offset mirrors offsetLeft/offsetTop/offsetWidth/offsetHeight. Non-rendered
// nodes measure zero.
func (d *Document) Offset(n *html.Node) Box {
	box := d.layoutBox(n)
	if box == nil {
		return Box{}
	}
	bb := box.Dimensions.BorderBox()
	if n.DataAtom == atom.Body {
		b := Box{Width: bb.Width, Height: bb.Height}
		if d.profile.BodyMarginArtifact {
			b.Left, b.Top = box.Dimensions.Margin.Left, box.Dimensions.Margin.Top
		}
		return b
	}

	originX, originY := 0.0, 0.0
	op := d.offsetParent(n)
	if op != nil {
		opBox := d.layoutBox(op)
		switch {
		case op.DataAtom != atom.Body:
			pb := opBox.Dimensions.PaddingBox()
			originX, originY = pb.X, pb.Y
		case d.profile.BodyMarginArtifact && box.Position != layout.PositionAbsolute:
			bodyBox := opBox.Dimensions.BorderBox()
			originX, originY = bodyBox.X, bodyBox.Y
		}
	}
	b := Box{Left: bb.X - originX, Top: bb.Y - originY, Width: bb.Width, Height: bb.Height}

	if d.profile.StaticOffsetBug && op != nil && box.Position == layout.PositionStatic &&
		layout.ParsePosition(d.cascade(op, "position")) == layout.PositionRelative {
		fontSize, _ := layout.ParseLength(d.cascade(op, "font-size"), layout.BaseFontSize, layout.BaseFontSize)
		if top, ok := layout.ParseLength(d.cascade(op, "top"), fontSize, 0); ok {
			b.Top += top
		}
		if left, ok := layout.ParseLength(d.cascade(op, "left"), fontSize, 0); ok {
			b.Left += left
		}
	}
	return b
}

// ClientSize mirrors clientWidth/clientHeight. The document element reports
// the viewport.
func (d *Document) ClientSize(n *html.Node) (float64, float64) {
	if n != nil && n == d.DocumentElement() {
		return d.viewportWidth, d.viewportHeight
	}
	box := d.layoutBox(n)
	if box == nil || box.Inline {
		return 0, 0
	}
	pb := box.Dimensions.PaddingBox()
	return pb.Width, pb.Height
}

func (d *Document) ScrollOffset(n *html.Node) Point {
	if n == nil {
		return Point{}
	}
	if n == d.DocumentElement() {
		return d.pageScroll
	}
	return d.scroll[n]
}

func (d *Document) SetScrollOffset(n *html.Node, p Point) {
	if n == nil {
		return
	}
	if n == d.DocumentElement() {
		d.pageScroll = p
		return
	}
	if p == (Point{}) {
		delete(d.scroll, n)
		return
	}
	d.scroll[n] = p
}

func (d *Document) Viewport() (float64, float64) {
	return d.viewportWidth, d.viewportHeight
}

func (d *Document) ScrollTo(x, y float64) {
	d.pageScroll = Point{X: x, Y: y}
}

func (d *Document) PageScroll() Point {
	return d.pageScroll
}
