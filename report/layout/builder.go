package layout

import (
	pr "github.com/benoitkugler/reportlayout/css/properties"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/utils"
)

type Fl = utils.Fl

// BuildLogicalPage computes the styles of the tree rooted at [root] and
// lays out its children as the top-level bands of a logical page,
// using the usable page width.
//
// Bands repeated on each page (see the 'repeat' style key) are stored
// in the Marginals of the returned box, not in its flow.
func BuildLogicalPage(ctx *Context, root *tree.Element) (*bo.Box, error) {
	if ctx.closed {
		return nil, ErrClosedContext
	}
	if root == nil {
		return nil, &FatalLayoutError{Reason: "missing root element"}
	}
	ctx.computeStyles(root, nil)

	width := ctx.geometry.UsableWidth()
	page := &bo.Box{Kind: bo.KLogicalPage, Element: root, Style: ctx.styleFor[root], Width: width}
	for _, child := range ctx.buildChildren(root.Children, width) {
		if child.Repeat != bo.RepeatNone {
			page.Marginals = append(page.Marginals, child)
			continue
		}
		page.Children = append(page.Children, child)
	}
	page.Height = stack(page.Children, 0)
	return page, nil
}

// Build returns the box for [element], whose style is [style],
// at the given available width.
// Text and image elements return an inline box, which is only
// positioned when flowed in a paragraph (see [Flow]).
func Build(ctx *Context, element *tree.Element, style *tree.ComputedStyle, availableWidth Unit) *bo.Box {
	if _, known := ctx.styleFor[element]; !known {
		ctx.styleFor[element] = style
		for _, child := range element.Children {
			ctx.computeStyles(child, style)
		}
	}
	return ctx.build(element, style, availableWidth)
}

func (c *Context) build(e *tree.Element, style *tree.ComputedStyle, availableWidth Unit) *bo.Box {
	switch e.Kind {
	case tree.KindPageBreak:
		return &bo.Box{Kind: bo.KBlock, Element: e, Style: style, Width: availableWidth, BreakBefore: bo.BreakPage}
	case tree.KindText, tree.KindImage:
		return &bo.Box{Kind: bo.KInline, Element: e, Style: style}
	default: // band, container, subreport
		return c.buildBlock(e, style, availableWidth, bo.KBlock)
	}
}

// buildChildren groups consecutive inline elements in paragraphs.
// Hidden elements are skipped.
func (c *Context) buildChildren(elements []*tree.Element, width Unit) []*bo.Box {
	var (
		out     []*bo.Box
		pending []*tree.Element
	)
	flush := func() {
		if len(pending) != 0 {
			out = append(out, c.buildParagraph(pending, width))
			pending = nil
		}
	}
	for _, e := range elements {
		style := c.styleFor[e]
		if style.GetVisibility() == "hidden" {
			continue
		}
		if e.Kind.IsInline() {
			pending = append(pending, e)
			continue
		}
		flush()
		out = append(out, c.build(e, style, width))
	}
	flush()
	return out
}

// buildParagraph returns a paragraph pool, whose children are
// the lines of the flowed elements.
// The pool uses the style of its first element.
func (c *Context) buildParagraph(elements []*tree.Element, width Unit) *bo.Box {
	pool := &bo.Box{Kind: bo.KParagraphPool, Style: c.styleFor[elements[0]], Width: width}
	for _, e := range elements {
		pool.Children = append(pool.Children, c.build(e, c.styleFor[e], width))
	}
	pool.Children = Flow(c, pool, width)
	pool.Height = stack(pool.Children, 0)
	return pool
}

// buildBlock lays out block and table cell boxes. For blocks, [width] is the
// available width, overridden by an explicit width; for cells
// it is the final border box width.
func (c *Context) buildBlock(e *tree.Element, style *tree.ComputedStyle, width Unit, kind bo.Kind) *bo.Box {
	box := &bo.Box{Kind: kind, Element: e, Style: style}
	setEdges(box, style.Properties)
	edges := box.Padding.Horizontal() + box.Border.Horizontal()
	box.Width = width
	if w := style.GetWidth(); w >= 0 && kind == bo.KBlock {
		box.Width = bo.FromPoints(Fl(w)) + edges
	}
	if box.Width < edges {
		box.Width = edges
	}
	contentWidth := box.ContentWidth()

	var children []*bo.Box
	switch {
	case e.Kind.IsInline(): // only for cells
		children = []*bo.Box{c.buildParagraph([]*tree.Element{e}, contentWidth)}
	case style.GetLayout() == "row":
		if row := c.buildRow(e, contentWidth); row != nil {
			children = []*bo.Box{row}
		}
	default:
		children = c.buildChildren(e.Children, contentWidth)
	}
	for _, child := range children {
		child.X = box.ContentX()
	}
	contentHeight := stack(children, box.ContentY())

	target := bo.FromPoints(Fl(style.GetMinHeight()))
	if h := style.GetHeight(); h >= 0 && bo.FromPoints(Fl(h)) > target {
		target = bo.FromPoints(Fl(h))
	}
	if target > contentHeight {
		spacer := bo.NewSpacer(contentWidth, target-contentHeight)
		spacer.X, spacer.Y = box.ContentX(), box.ContentY()+contentHeight
		children = append(children, spacer)
		contentHeight = target
	}
	box.Children = children
	box.Height = contentHeight + box.Padding.Vertical() + box.Border.Vertical()

	box.BreakBefore = newBreak(style.GetBreakBefore())
	box.BreakAfter = newBreak(style.GetBreakAfter())
	box.AvoidBreakInside = bool(style.GetAvoidBreakInside())
	switch style.GetRepeat() {
	case "header":
		box.Repeat = bo.RepeatHeader
	case "footer":
		box.Repeat = bo.RepeatFooter
	}
	return box
}

// buildRow lays out the children of [e] side by side, as table cells
// in a line box. Cells without explicit width share the remaining space.
// It returns nil if there is no visible child.
func (c *Context) buildRow(e *tree.Element, width Unit) *bo.Box {
	var (
		elements []*tree.Element
		widths   []Unit // -1 for auto
		fixed    Unit
		autos    int
	)
	for _, child := range e.Children {
		style := c.styleFor[child]
		if style.GetVisibility() == "hidden" {
			continue
		}
		elements = append(elements, child)
		w := Unit(-1)
		if sw := style.GetWidth(); sw >= 0 {
			var tmp bo.Box
			setEdges(&tmp, style.Properties)
			w = bo.FromPoints(Fl(sw)) + tmp.Padding.Horizontal() + tmp.Border.Horizontal()
			fixed += w
		} else {
			autos++
		}
		widths = append(widths, w)
	}
	if len(elements) == 0 {
		return nil
	}

	remaining := width - fixed
	if remaining < 0 {
		c.recordOverflow(Overflow{Element: e.ID, Kind: RowOverflow, Extent: fixed, Available: width})
		remaining = 0
	}
	var per, rest Unit
	if autos != 0 {
		per, rest = remaining/Unit(autos), remaining%Unit(autos)
	}
	lastAuto := -1
	for i, w := range widths {
		if w < 0 {
			widths[i] = per
			lastAuto = i
		}
	}
	if lastAuto != -1 {
		widths[lastAuto] += rest
	}

	row := &bo.Box{Kind: bo.KLine}
	for i, child := range elements {
		cell := c.buildBlock(child, c.styleFor[child], widths[i], bo.KTableCell)
		cell.X = row.Width
		row.Width += cell.Width
		if cell.Height > row.Height {
			row.Height = cell.Height
		}
		row.Children = append(row.Children, cell)
	}
	for _, cell := range row.Children {
		stretchCell(cell, row.Height)
	}
	return row
}

// stretchCell pads [cell] to [height], according to its vertical alignment.
func stretchCell(cell *bo.Box, height Unit) {
	extra := height - cell.Height
	if extra <= 0 {
		return
	}
	var before Unit
	switch cell.Style.GetVerticalAlign() {
	case "middle":
		before = extra / 2
	case "bottom":
		before = extra
	}
	after := extra - before

	var children []*bo.Box
	if before > 0 {
		children = append(children, bo.NewSpacer(cell.ContentWidth(), before))
	}
	children = append(children, cell.Children...)
	if after > 0 {
		children = append(children, bo.NewSpacer(cell.ContentWidth(), after))
	}
	for _, child := range children {
		child.X = cell.ContentX()
	}
	stack(children, cell.ContentY())
	cell.Children = children
	cell.Height = height
}

func setEdges(box *bo.Box, style pr.Properties) {
	for side := pr.STop; side <= pr.SLeft; side++ {
		box.Padding[side] = bo.FromPoints(Fl(style.GetPadding(side)))
		if style.HasVisibleBorder(side) {
			box.Border[side] = bo.FromPoints(Fl(style.GetBorderWidth(side)))
		}
	}
}

func newBreak(s pr.String) bo.Break {
	switch s {
	case "page":
		return bo.BreakPage
	case "avoid":
		return bo.BreakAvoid
	default:
		return bo.BreakAuto
	}
}

// stack places [children] one below the other, starting at [y],
// and returns their total height.
func stack(children []*bo.Box, y Unit) Unit {
	var total Unit
	for _, child := range children {
		child.Y = y + total
		total += child.Height
	}
	return total
}
