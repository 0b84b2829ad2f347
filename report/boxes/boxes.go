// Package boxes defines the render tree produced by the layout:
// a closed set of box kinds, whose behavior is described by a fixed table.
package boxes

import (
	"fmt"
	"math"
	"strconv"

	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/reportlayout/matrix"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/utils"
)

// Unit is a length in micro-points.
type Unit int64

// Point is one point, expressed in [Unit].
const Point Unit = 1000

// FromPoints rounds [v] to the nearest micro-point.
func FromPoints(v utils.Fl) Unit { return Unit(math.Round(float64(v) * float64(Point))) }

// Points converts back to points.
func (u Unit) Points() utils.Fl { return utils.Fl(u) / utils.Fl(Point) }

func (u Unit) String() string { return strconv.FormatFloat(float64(u)/float64(Point), 'f', -1, 64) }

// Kind is the type of a box.
type Kind uint8

const (
	_ Kind = iota
	KBlock
	KInline
	KParagraphPool
	KLine
	KTableCell
	KLogicalPage

	// leaves

	KText
	KSpacer
	KImage
	KShape
)

// Axis is the direction along which children are stacked.
type Axis uint8

const (
	NoFlow Axis = iota
	Vertical
	Horizontal
)

type behavior struct {
	name     string
	leaf     bool
	flow     Axis
	projects bool // on a table grid
}

var behaviors = [...]behavior{
	KBlock:         {name: "Block", flow: Vertical, projects: true},
	KInline:        {name: "Inline", flow: NoFlow},
	KParagraphPool: {name: "ParagraphPool", flow: Vertical},
	KLine:          {name: "Line", flow: Horizontal},
	KTableCell:     {name: "TableCell", flow: Vertical, projects: true},
	KLogicalPage:   {name: "LogicalPage", flow: Vertical},
	KText:          {name: "Text", leaf: true},
	KSpacer:        {name: "Spacer", leaf: true},
	KImage:         {name: "Image", leaf: true},
	KShape:         {name: "Shape", leaf: true},
}

func (k Kind) String() string {
	if int(k) < len(behaviors) && behaviors[k].name != "" {
		return behaviors[k].name
	}
	return fmt.Sprintf("<invalid kind %d>", k)
}

// IsLeaf returns true for the kinds which never have children.
func (k Kind) IsLeaf() bool { return behaviors[k].leaf }

// FlowAxis returns the axis along which the children of a box are stacked.
func (k Kind) FlowAxis() Axis { return behaviors[k].flow }

// ProjectsOnGrid returns true if the edges of the box are
// reported to a table grid.
func (k Kind) ProjectsOnGrid() bool { return behaviors[k].projects }

// Edges stores per side values, in the [top, right, bottom, left] order.
type Edges [4]Unit

func (e Edges) Horizontal() Unit { return e[pr.SRight] + e[pr.SLeft] }
func (e Edges) Vertical() Unit   { return e[pr.STop] + e[pr.SBottom] }

// Break is a pagination constraint before or after a box.
type Break uint8

const (
	BreakAuto Break = iota
	BreakPage       // forced page break
	BreakAvoid      // keep with the adjacent box
)

// Repeat marks the bands replicated on each page.
type Repeat uint8

const (
	RepeatNone Repeat = iota
	RepeatHeader
	RepeatFooter
)

// Box is a node of the render tree. Coordinates are relative to the parent
// border box, extents include padding and border.
//
// Boxes are immutable once returned by a layout pass.
type Box struct {
	Element *tree.Element // nil for anonymous boxes
	// Anonymous paragraph pools use the style of their first element,
	// other anonymous boxes have no style.
	Style *tree.ComputedStyle

	Children []*Box

	// Marginals are the bands repeated on every page, for logical pages.
	// They are not part of the flow.
	Marginals []*Box

	// Text content of [KText] leaves.
	Text string

	// Transform is set for rotated leaves. It maps the unrotated
	// run into the box.
	Transform *matrix.Transform

	X, Y          Unit
	Width, Height Unit

	// Distance from the top of the box to the baseline,
	// for lines and inline leaves.
	Baseline Unit

	Padding, Border Edges

	Kind Kind

	Repeat Repeat

	// Pagination constraints
	BreakBefore, BreakAfter Break
	AvoidBreakInside        bool

	// Set on lines stretched to the available width.
	Justified bool
	// Set on lines terminated by a forced line break.
	HardBreak bool
}

// ID returns the identifier of the source element, or an empty string.
func (b *Box) ID() string {
	if b.Element == nil {
		return ""
	}
	return b.Element.ID
}

// ContentWidth returns the width without padding and border.
func (b *Box) ContentWidth() Unit { return b.Width - b.Padding.Horizontal() - b.Border.Horizontal() }

// ContentHeight returns the height without padding and border.
func (b *Box) ContentHeight() Unit { return b.Height - b.Padding.Vertical() - b.Border.Vertical() }

// Extent returns the width or height of the box.
func (b *Box) Extent(axis Axis) Unit {
	if axis == Horizontal {
		return b.Width
	}
	return b.Height
}

// ContentExtent returns the content width or height.
func (b *Box) ContentExtent(axis Axis) Unit {
	if axis == Horizontal {
		return b.ContentWidth()
	}
	return b.ContentHeight()
}

// ContentX returns the position of the content area,
// relative to the border box.
func (b *Box) ContentX() Unit { return b.Padding[pr.SLeft] + b.Border[pr.SLeft] }

// ContentY returns the position of the content area,
// relative to the border box.
func (b *Box) ContentY() Unit { return b.Padding[pr.STop] + b.Border[pr.STop] }

// IsContent returns true for leaves which are not spacers.
func (b *Box) IsContent() bool { return b.Kind.IsLeaf() && b.Kind != KSpacer }

// NewSpacer returns an empty leaf of the given size.
func NewSpacer(width, height Unit) *Box {
	return &Box{Kind: KSpacer, Width: width, Height: height}
}

// Walk calls [fn] for [b] and its descendants, in depth first order,
// with the absolute position of each box.
// Children are skipped when [fn] returns false.
func (b *Box) Walk(x, y Unit, fn func(box *Box, absX, absY Unit) bool) {
	x, y = x+b.X, y+b.Y
	if !fn(b, x, y) {
		return
	}
	for _, child := range b.Children {
		child.Walk(x, y, fn)
	}
}

// Count returns the number of boxes in the tree rooted at [b].
func (b *Box) Count() int {
	n := 0
	b.Walk(0, 0, func(*Box, Unit, Unit) bool { n++; return true })
	return n
}
