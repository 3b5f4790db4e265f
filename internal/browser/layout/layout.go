// internal/browser/layout/layout.go
package layout

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// -- Constants and Configuration --

const (
	BaseFontSize      = 16.0 // Default root font size.
	DefaultLineHeight = 1.2  // Default multiplier for 'line-height: normal'.
	AverageCharWidth  = 0.5  // Advance of one character, in ems.
)

// -- Core Structures: Box Model and Dimensions --

// Dimensions defines the geometry of a layout box.
type Dimensions struct {
	// Content area (x, y) relative to the document origin.
	Content Rect

	Padding Edges
	Border  Edges
	Margin  Edges
}

// MarginBox returns the rectangle enclosing the margin area.
func (d Dimensions) MarginBox() Rect {
	return d.BorderBox().ExpandedBy(d.Margin)
}

// BorderBox returns the rectangle enclosing the border area.
func (d Dimensions) BorderBox() Rect {
	return d.PaddingBox().ExpandedBy(d.Border)
}

// PaddingBox returns the rectangle enclosing the padding area.
func (d Dimensions) PaddingBox() Rect {
	return d.Content.ExpandedBy(d.Padding)
}

func (d Dimensions) horizontalStatic() float64 {
	return d.Padding.Left + d.Padding.Right + d.Border.Left + d.Border.Right
}

func (d Dimensions) verticalStatic() float64 {
	return d.Padding.Top + d.Padding.Bottom + d.Border.Top + d.Border.Bottom
}

type Rect struct {
	X, Y, Width, Height float64
}

// ExpandedBy returns a new rectangle expanded by the edge sizes.
func (r Rect) ExpandedBy(e Edges) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

type Edges struct {
	Top, Right, Bottom, Left float64
}

// Position is the resolved 'position' of a box.
type Position int

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

// ParsePosition maps a CSS keyword; unknown keywords are static.
func ParsePosition(v string) Position {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	}
	return PositionStatic
}

// IsOutOfFlow reports whether the box is taken out of normal flow.
func (p Position) IsOutOfFlow() bool {
	return p == PositionAbsolute || p == PositionFixed
}

// StyleSource supplies computed (cascaded and inherited) values. Property
// names are the hyphenated CSS names; font-size must already be in px.
type StyleSource interface {
	Lookup(n *html.Node, property, fallback string) string
}

// LayoutBox is the rendered box of one element.
type LayoutBox struct {
	Node       *html.Node
	Dimensions Dimensions
	Position   Position
	Inline     bool
	FontSize   float64
	Parent     *LayoutBox
	Children   []*LayoutBox

	// Where the box would sit in flow; used by out-of-flow boxes with auto offsets.
	staticX, staticY float64
}

// Tree is the result of one layout pass.
type Tree struct {
	Root     *LayoutBox
	Viewport Rect
	boxes    map[*html.Node]*LayoutBox
}

// Box returns the box generated by n, or nil when n is not rendered.
func (t *Tree) Box(n *html.Node) *LayoutBox {
	if t == nil {
		return nil
	}
	return t.boxes[n]
}

// Engine performs block layout over a node tree.
type Engine struct {
	styles         StyleSource
	viewportWidth  float64
	viewportHeight float64
}

func NewEngine(styles StyleSource, viewportWidth, viewportHeight float64) *Engine {
	return &Engine{styles: styles, viewportWidth: viewportWidth, viewportHeight: viewportHeight}
}

// BuildAndLayoutTree lays out the subtree rooted at root (normally the
// document element) against the viewport.
func (e *Engine) BuildAndLayoutTree(root *html.Node) *Tree {
	t := &Tree{
		Viewport: Rect{Width: e.viewportWidth, Height: e.viewportHeight},
		boxes:    make(map[*html.Node]*LayoutBox),
	}
	if root == nil {
		return t
	}
	t.Root = e.build(t, root, nil)
	if t.Root == nil {
		return t
	}

	var positioned []*LayoutBox
	if t.Root.Position.IsOutOfFlow() {
		positioned = append(positioned, t.Root)
	} else {
		e.layoutBlock(t.Root, t.Viewport, 0, &positioned)
		e.applyRelativePositioning(t.Root, t.Viewport)
	}
	// Out-of-flow boxes discovered while laying out others are appended, so
	// containing blocks are always final before their dependents.
	for i := 0; i < len(positioned); i++ {
		e.layoutPositioned(t, positioned[i], &positioned)
	}
	return t
}

func (e *Engine) build(t *Tree, n *html.Node, parent *LayoutBox) *LayoutBox {
	if n.Type != html.ElementNode {
		return nil
	}
	display := strings.ToLower(e.styles.Lookup(n, "display", "inline"))
	if display == "none" {
		return nil
	}
	b := &LayoutBox{
		Node:     n,
		Position: ParsePosition(e.styles.Lookup(n, "position", "static")),
		Inline:   display == "inline",
		FontSize: e.fontSize(n),
		Parent:   parent,
	}
	// A positioned box is always block-level.
	if b.Position.IsOutOfFlow() {
		b.Inline = false
	}
	t.boxes[n] = b
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := e.build(t, c, b); child != nil {
			b.Children = append(b.Children, child)
		}
	}
	return b
}

func (e *Engine) fontSize(n *html.Node) float64 {
	v := e.styles.Lookup(n, "font-size", "16px")
	if px, ok := ParseLength(v, BaseFontSize, BaseFontSize); ok && px > 0 {
		return px
	}
	return BaseFontSize
}

func (b *LayoutBox) lineHeight() float64 {
	return b.FontSize * DefaultLineHeight
}

// -- Normal Flow --

// layoutBlock places an in-flow block box whose margin edge starts at y.
func (e *Engine) layoutBlock(b *LayoutBox, containing Rect, y float64, positioned *[]*LayoutBox) {
	e.resolveEdges(b, containing.Width)
	d := &b.Dimensions

	width, hasWidth := e.length(b, "width", containing.Width)
	if hasWidth {
		width = math.Max(0, width)
		remaining := containing.Width - width - d.horizontalStatic() - d.Margin.Left - d.Margin.Right
		if e.isAuto(b, "margin-left") && e.isAuto(b, "margin-right") && remaining > 0 {
			d.Margin.Left += remaining / 2
			d.Margin.Right += remaining / 2
		}
	} else {
		width = math.Max(0, containing.Width-d.horizontalStatic()-d.Margin.Left-d.Margin.Right)
	}

	d.Content.Width = width
	d.Content.X = containing.X + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = y + d.Margin.Top + d.Border.Top + d.Padding.Top

	contentHeight := e.layoutChildren(b, positioned)
	if height, ok := e.length(b, "height", math.NaN()); ok && !math.IsNaN(height) {
		d.Content.Height = math.Max(0, height)
	} else {
		d.Content.Height = contentHeight
	}
}

// layoutChildren stacks block children and collects inline content into line
// boxes. It returns the height of the content.
func (e *Engine) layoutChildren(b *LayoutBox, positioned *[]*LayoutBox) float64 {
	d := &b.Dimensions
	cursorY := d.Content.Y
	runX, inRun := d.Content.X, false

	startRun := func() {
		if !inRun {
			inRun = true
			runX = d.Content.X
		}
	}
	endRun := func() {
		if inRun {
			cursorY += b.lineHeight()
			inRun = false
		}
	}

	boxes := childBoxes(b)
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if text := collapseWhitespace(c.Data); text != "" {
				startRun()
				runX += textWidth(text, b.FontSize)
			}
			continue
		}
		child, ok := boxes[c]
		if !ok {
			continue
		}
		switch {
		case child.Position.IsOutOfFlow():
			child.staticX, child.staticY = d.Content.X, cursorY
			if inRun {
				child.staticX = runX
			}
			*positioned = append(*positioned, child)
		case child.Inline:
			startRun()
			runX += e.layoutInline(child, runX, cursorY, positioned)
			e.applyRelativePositioning(child, d.Content)
		default:
			endRun()
			e.layoutBlock(child, d.Content, cursorY, positioned)
			cursorY = child.Dimensions.MarginBox().Y + child.Dimensions.MarginBox().Height
			e.applyRelativePositioning(child, d.Content)
		}
	}
	endRun()
	return cursorY - d.Content.Y
}

// layoutInline places an inline box on the current line and returns its
// margin-box width. Nested boxes are treated as inline as well.
func (e *Engine) layoutInline(b *LayoutBox, x, y float64, positioned *[]*LayoutBox) float64 {
	e.resolveEdges(b, 0)
	d := &b.Dimensions
	d.Margin.Top, d.Margin.Bottom = 0, 0
	d.Content.X = x + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = y
	d.Content.Height = b.lineHeight()

	cursorX := d.Content.X
	boxes := childBoxes(b)
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			cursorX += textWidth(collapseWhitespace(c.Data), b.FontSize)
			continue
		}
		child, ok := boxes[c]
		if !ok {
			continue
		}
		if child.Position.IsOutOfFlow() {
			child.staticX, child.staticY = cursorX, y
			*positioned = append(*positioned, child)
			continue
		}
		cursorX += e.layoutInline(child, cursorX, y, positioned)
	}
	d.Content.Width = cursorX - d.Content.X
	return d.MarginBox().Width
}

// -- Positioned Layout --

func (e *Engine) containingBlock(t *Tree, b *LayoutBox) Rect {
	if b.Position == PositionFixed {
		return t.Viewport
	}
	for p := b.Parent; p != nil; p = p.Parent {
		if p.Position != PositionStatic {
			return p.Dimensions.PaddingBox()
		}
	}
	return t.Viewport
}

func (e *Engine) layoutPositioned(t *Tree, b *LayoutBox, positioned *[]*LayoutBox) {
	cb := e.containingBlock(t, b)
	e.resolveEdges(b, cb.Width)
	d := &b.Dimensions

	left, hasLeft := e.length(b, "left", cb.Width)
	right, hasRight := e.length(b, "right", cb.Width)
	top, hasTop := e.length(b, "top", cb.Height)
	bottom, hasBottom := e.length(b, "bottom", cb.Height)

	hStatic := d.horizontalStatic() + d.Margin.Left + d.Margin.Right
	width, hasWidth := e.length(b, "width", cb.Width)
	switch {
	case hasWidth:
	case hasLeft && hasRight:
		width = cb.Width - left - right - hStatic
	default:
		available := cb.Width - hStatic
		if hasLeft {
			available -= left
		}
		width = math.Min(e.preferredWidth(b), math.Max(0, available))
	}
	width = math.Max(0, width)
	d.Content.Width = width

	switch {
	case hasLeft:
		d.Content.X = cb.X + left + d.Margin.Left + d.Border.Left + d.Padding.Left
	case hasRight:
		d.Content.X = cb.X + cb.Width - right - d.Margin.Right - d.Border.Right - d.Padding.Right - width
	default:
		d.Content.X = b.staticX + d.Margin.Left + d.Border.Left + d.Padding.Left
	}

	startY := b.staticY
	if hasTop {
		startY = cb.Y + top
	}
	d.Content.Y = startY + d.Margin.Top + d.Border.Top + d.Padding.Top

	contentHeight := e.layoutChildren(b, positioned)
	height, hasHeight := e.length(b, "height", cb.Height)
	switch {
	case hasHeight:
	case hasTop && hasBottom:
		height = cb.Height - top - bottom - d.verticalStatic() - d.Margin.Top - d.Margin.Bottom
	default:
		height = contentHeight
	}
	d.Content.Height = math.Max(0, height)

	if hasBottom && !hasTop {
		wantBottom := cb.Y + cb.Height - bottom
		shiftSubtree(b, 0, wantBottom-(d.MarginBox().Y+d.MarginBox().Height))
	}
}

// preferredWidth is the shrink-to-fit content width of a box.
func (e *Engine) preferredWidth(b *LayoutBox) float64 {
	if w, ok := e.length(b, "width", 0); ok {
		return w
	}
	widest, run := 0.0, 0.0
	boxes := childBoxes(b)
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			run += textWidth(collapseWhitespace(c.Data), b.FontSize)
			continue
		}
		child, ok := boxes[c]
		if !ok || child.Position.IsOutOfFlow() {
			continue
		}
		e.resolveEdges(child, 0)
		outer := e.preferredWidth(child) + child.Dimensions.horizontalStatic() + child.Dimensions.Margin.Left + child.Dimensions.Margin.Right
		if child.Inline {
			run += outer
			continue
		}
		widest = math.Max(widest, math.Max(run, outer))
		run = 0
	}
	return math.Max(widest, run)
}

// applyRelativePositioning shifts a relatively positioned box together with
// everything laid out inside it.
func (e *Engine) applyRelativePositioning(b *LayoutBox, containing Rect) {
	if b.Position != PositionRelative {
		return
	}
	dx, dy := 0.0, 0.0
	if top, ok := e.length(b, "top", containing.Height); ok {
		dy = top
	} else if bottom, ok := e.length(b, "bottom", containing.Height); ok {
		dy = -bottom
	}
	if left, ok := e.length(b, "left", containing.Width); ok {
		dx = left
	} else if right, ok := e.length(b, "right", containing.Width); ok {
		dx = -right
	}
	if dx != 0 || dy != 0 {
		shiftSubtree(b, dx, dy)
	}
}

func shiftSubtree(b *LayoutBox, dx, dy float64) {
	b.Dimensions.Content.X += dx
	b.Dimensions.Content.Y += dy
	b.staticX += dx
	b.staticY += dy
	for _, c := range b.Children {
		shiftSubtree(c, dx, dy)
	}
}

// -- Property Resolution --

func (e *Engine) resolveEdges(b *LayoutBox, refWidth float64) {
	side := func(prefix, suffix string) (top, right, bottom, left float64) {
		get := func(s string) float64 {
			v, ok := ParseLength(e.styles.Lookup(b.Node, prefix+s+suffix, "0"), b.FontSize, refWidth)
			if !ok {
				return 0
			}
			return v
		}
		return get("top"), get("right"), get("bottom"), get("left")
	}
	d := &b.Dimensions
	d.Margin.Top, d.Margin.Right, d.Margin.Bottom, d.Margin.Left = side("margin-", "")
	d.Padding.Top, d.Padding.Right, d.Padding.Bottom, d.Padding.Left = side("padding-", "")
	d.Border.Top, d.Border.Right, d.Border.Bottom, d.Border.Left = side("border-", "-width")
	d.Padding.Top, d.Padding.Right = math.Max(0, d.Padding.Top), math.Max(0, d.Padding.Right)
	d.Padding.Bottom, d.Padding.Left = math.Max(0, d.Padding.Bottom), math.Max(0, d.Padding.Left)
}

// length resolves a length property of b; ok is false for auto or garbage.
func (e *Engine) length(b *LayoutBox, property string, ref float64) (float64, bool) {
	v := e.styles.Lookup(b.Node, property, "auto")
	px, ok := ParseLength(v, b.FontSize, ref)
	if !ok || math.IsNaN(px) {
		return 0, false
	}
	return px, true
}

func (e *Engine) isAuto(b *LayoutBox, property string) bool {
	return strings.TrimSpace(e.styles.Lookup(b.Node, property, "0")) == "auto"
}

// ParseLength converts px, em, rem, pt and percentage values to pixels.
// Unitless zero is accepted, as are bare numbers.
func ParseLength(v string, fontSize, ref float64) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "auto" || v == "none" || v == "normal" {
		return 0, false
	}
	unit := strings.TrimLeft(v, "+-.0123456789")
	num, err := strconv.ParseFloat(v[:len(v)-len(unit)], 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "", "px":
		return num, true
	case "em":
		return num * fontSize, true
	case "ex":
		return num * fontSize / 2, true
	case "rem":
		return num * BaseFontSize, true
	case "pt":
		return num * 96 / 72, true
	case "%":
		return num * ref / 100, true
	}
	return 0, false
}

func childBoxes(b *LayoutBox) map[*html.Node]*LayoutBox {
	m := make(map[*html.Node]*LayoutBox, len(b.Children))
	for _, c := range b.Children {
		m[c.Node] = c
	}
	return m
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textWidth(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * fontSize * AverageCharWidth
}
