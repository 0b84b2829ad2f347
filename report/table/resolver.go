package table

import (
	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/reportlayout/logger"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/conflict"
	"github.com/benoitkugler/reportlayout/report/layout"
)

// Resolver projects logical pages onto grids, resolving
// conflicting claims with its policy.
type Resolver struct {
	policy conflict.Policy
}

func NewResolver(policy conflict.Policy) *Resolver { return &Resolver{policy: policy} }

// Resolve projects every block and table cell of [page] onto a new grid.
// Boxes are visited in document order, so that the "first" claim
// is the one of the box coming first.
func (r *Resolver) Resolve(page *bo.Box) (*Grid, []conflict.Record) {
	grid := newGrid(page.Width, page.Height)
	var records []conflict.Record
	r.project(grid, page, 0, 0, &records)
	return grid, records
}

// project returns true if [box] or one of its descendants has been projected.
func (r *Resolver) project(grid *Grid, box *bo.Box, x, y Unit, records *[]conflict.Record) bool {
	x, y = x+box.X, y+box.Y
	projects := box.Kind.ProjectsOnGrid() && box.Width > 0 && box.Height > 0
	if projects {
		for _, side := range [4]pr.Side{pr.STop, pr.SRight, pr.SBottom, pr.SLeft} {
			r.claim(grid, sideEntry(box, side, x, y), records)
		}
	}
	inner := false
	for _, child := range box.Children {
		if r.project(grid, child, x, y, records) {
			inner = true
		}
	}
	if projects && !inner {
		grid.cells = append(grid.cells, rect{element: box.ID(), x0: x, y0: y, x1: x + box.Width, y1: y + box.Height})
	}
	return projects || inner
}

// sideEntry returns the claim of one side of [box], positioned at (x, y).
func sideEntry(box *bo.Box, side pr.Side, x, y Unit) Entry {
	e := Entry{Owner: box.ID()}
	switch side {
	case pr.STop:
		e.Axis, e.Coordinate = YAxis, y
	case pr.SBottom:
		e.Axis, e.Coordinate = YAxis, y+box.Height
	case pr.SLeft:
		e.Axis, e.Coordinate = XAxis, x
	case pr.SRight:
		e.Axis, e.Coordinate = XAxis, x+box.Width
	}
	if box.Border[side] <= 0 { // only visible borders have a width
		return e
	}
	if e.Axis == XAxis {
		e.Line = LineVertical
	} else {
		e.Line = LineHorizontal
	}
	e.Border = BorderSpec{Style: "solid", Width: box.Border[side]}
	if box.Style != nil {
		e.Border.Style = string(box.Style.GetBorderStyle(side))
		e.Border.Color = box.Style.GetBorderColor(side).String()
	}
	return e
}

func (r *Resolver) claim(grid *Grid, e Entry, records *[]conflict.Record) {
	key := gridKey{e.Coordinate, e.Axis}
	existing, ok := grid.entries[key]
	if !ok {
		grid.entries[key] = e
		return
	}
	if existing.same(e) {
		return
	}

	kind := conflict.Border
	if existing.Line != e.Line {
		kind = conflict.LineHint
	}
	record := conflict.Record{
		First:    conflict.Location{Element: existing.Owner, Detail: existing.String()},
		Second:   conflict.Location{Element: e.Owner, Detail: e.String()},
		Kind:     kind,
		Severity: r.policy.Severity(),
	}
	*records = append(*records, record)
	logger.ProgressLogger.Debugf("grid: %s", record)

	if r.policy == conflict.Union && existing.Line == LineNone {
		grid.entries[key] = e
	}
}

// TableLayout accumulates the grids and conflicts of the pages of a report.
type TableLayout struct {
	resolver *Resolver
	geometry layout.PageGeometry

	grid      *Grid
	conflicts []conflict.Record
}

func NewTableLayout(policy conflict.Policy, geometry layout.PageGeometry) *TableLayout {
	return &TableLayout{resolver: NewResolver(policy), geometry: geometry}
}

// PerformLayouting projects [page] onto a new grid.
// It returns false only when the page geometry is invalid, in which case
// nothing is projected. Conflicts never make it fail.
func (tl *TableLayout) PerformLayouting(page *bo.Box) bool {
	if err := tl.geometry.Validate(); err != nil {
		logger.WarningLogger.Warnf("table layout: %s", err)
		return false
	}
	grid, records := tl.resolver.Resolve(page)
	tl.grid = grid
	tl.conflicts = append(tl.conflicts, records...)
	return true
}

// Grid returns the grid of the last page, or nil.
func (tl *TableLayout) Grid() *Grid { return tl.grid }

// Conflicts returns every conflict found so far.
func (tl *TableLayout) Conflicts() []conflict.Record {
	return append([]conflict.Record(nil), tl.conflicts...)
}
