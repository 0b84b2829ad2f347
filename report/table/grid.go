// Package table projects the boxes of a logical page onto a sparse
// grid of line hints, as needed by spreadsheet-like outputs.
//
// Each block and table cell claims its four edges; claims at the same
// coordinate must agree, otherwise a [conflict.Record] is produced.
package table

import (
	"fmt"
	"sort"

	bo "github.com/benoitkugler/reportlayout/report/boxes"
)

type Unit = bo.Unit

// Axis is the axis of a grid coordinate : vertical lines
// are placed on the x axis, horizontal lines on the y axis.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
)

func (a Axis) String() string {
	if a == YAxis {
		return "y"
	}
	return "x"
}

// LineType is the kind of line drawn at a grid coordinate.
type LineType uint8

const (
	LineNone LineType = iota
	LineHorizontal
	LineVertical
)

func (l LineType) String() string {
	switch l {
	case LineNone:
		return "NONE"
	case LineHorizontal:
		return "HORIZONTAL"
	case LineVertical:
		return "VERTICAL"
	default:
		return fmt.Sprintf("<invalid line %d>", l)
	}
}

// BorderSpec describes the line drawn, and is zero for [LineNone].
type BorderSpec struct {
	Style string
	Width Unit
	Color string
}

// Entry is one line hint.
type Entry struct {
	Coordinate Unit
	Axis       Axis
	Line       LineType
	Border     BorderSpec
	Owner      string // identity of the element which made the retained claim
}

func (e Entry) String() string {
	s := fmt.Sprintf("%s=%s %s", e.Axis, e.Coordinate, e.Line)
	if e.Line != LineNone {
		s += fmt.Sprintf(" %s %s %s", e.Border.Style, e.Border.Width, e.Border.Color)
	}
	return s
}

// same returns true for claims which deduplicate.
func (e Entry) same(other Entry) bool {
	return e.Line == other.Line && e.Border == other.Border
}

type gridKey struct {
	coordinate Unit
	axis       Axis
}

type rect struct {
	element        string
	x0, y0, x1, y1 Unit
}

// Grid is a sparse set of line hints, at most one per (coordinate, axis).
type Grid struct {
	entries map[gridKey]Entry
	cells   []rect // innermost projected boxes

	Width, Height Unit
}

func newGrid(width, height Unit) *Grid {
	return &Grid{entries: make(map[gridKey]Entry), Width: width, Height: height}
}

// Len returns the number of entries.
func (g *Grid) Len() int { return len(g.entries) }

// Entry returns the line hint at the given coordinate, if any.
func (g *Grid) Entry(axis Axis, coordinate Unit) (Entry, bool) {
	e, ok := g.entries[gridKey{coordinate, axis}]
	return e, ok
}

// Entries returns the line hints of one axis, sorted by coordinate.
func (g *Grid) Entries(axis Axis) []Entry {
	var out []Entry
	for k, e := range g.entries {
		if k.axis == axis {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coordinate < out[j].Coordinate })
	return out
}

// Cuts returns the sorted coordinates of one axis.
func (g *Grid) Cuts(axis Axis) []Unit {
	entries := g.Entries(axis)
	out := make([]Unit, len(entries))
	for i, e := range entries {
		out[i] = e.Coordinate
	}
	return out
}

// Cell is the rectangle covered by a box, in grid indices.
type Cell struct {
	Element          string
	Column, Row      int
	ColSpan, RowSpan int
	X, Y             Unit
	Width, Height    Unit
}

// Cells returns the rectangles of the innermost projected boxes,
// expressed as column and row spans between the grid cuts,
// sorted by row then column.
func (g *Grid) Cells() []Cell {
	xs, ys := g.Cuts(XAxis), g.Cuts(YAxis)
	index := func(cuts []Unit, v Unit) int {
		return sort.Search(len(cuts), func(i int) bool { return cuts[i] >= v })
	}
	out := make([]Cell, 0, len(g.cells))
	for _, r := range g.cells {
		col, row := index(xs, r.x0), index(ys, r.y0)
		out = append(out, Cell{
			Element: r.element,
			Column:  col,
			Row:     row,
			ColSpan: index(xs, r.x1) - col,
			RowSpan: index(ys, r.y1) - row,
			X:       r.x0,
			Y:       r.y0,
			Width:   r.x1 - r.x0,
			Height:  r.y1 - r.y0,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}
