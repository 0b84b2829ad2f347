package layout

import (
	"context"
	"fmt"

	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/tree"
)

// PagerState is the state of a [PageIterator].
type PagerState uint8

const (
	// Flowing : bands are being assigned to the current page.
	// This is the initial state of a non empty pagination.
	Flowing PagerState = iota
	// PageBoundary : a page has just been emitted.
	PageBoundary
	// Finished : every band has been emitted, or the pass was cancelled.
	Finished
)

func (s PagerState) String() string {
	switch s {
	case Flowing:
		return "flowing"
	case PageBoundary:
		return "page-boundary"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("<invalid state %d>", s)
	}
}

// PhysicalPageBox is a window on a logical page.
// Blocks made of bands, like report sections, are split between their
// children; the other bands, text paragraphs and images are never split.
type PhysicalPageBox struct {
	Index int

	// Offset and Height delimit the window, in logical page coordinates.
	Offset, Height Unit

	// Bands are the boxes shown in the window, in flow order.
	// They may be nested in a split block.
	Bands []*bo.Box

	// Repeated bands, stacked above and below the flow.
	Header, Footer []*bo.Box

	Geometry PageGeometry
}

// pageUnit is a box never split across pages.
type pageUnit struct {
	box *bo.Box
	// in logical page coordinates, including the padding and border
	// of the split ancestors
	y, height Unit

	breakBefore, breakAfter bo.Break
}

// PageIterator slices a logical page into physical pages, lazily.
type PageIterator struct {
	ctx     *Context
	logical *bo.Box
	units   []pageUnit

	header, footer []*bo.Box
	usable         Unit // page height available for the flow

	next  int // index of the next unit to place
	index int // index of the next page
	state PagerState
}

// Paginate returns an iterator over the physical pages of [logical],
// as returned by [BuildLogicalPage].
func Paginate(ctx *Context, logical *bo.Box) *PageIterator {
	it := &PageIterator{ctx: ctx, logical: logical, state: Flowing}
	var reserved Unit
	for _, band := range logical.Marginals {
		switch band.Repeat {
		case bo.RepeatHeader:
			it.header = append(it.header, band)
		case bo.RepeatFooter:
			it.footer = append(it.footer, band)
		}
		reserved += band.Height
	}
	it.usable = ctx.geometry.UsableHeight() - reserved
	if it.usable < 0 {
		ctx.recordOverflow(Overflow{
			Element: logical.ID(), Kind: PageOverflow,
			Extent: reserved, Available: ctx.geometry.UsableHeight(),
		})
		it.usable = 0
	}
	for _, band := range logical.Children {
		it.units = appendUnits(it.units, band, band.Y)
	}
	if len(it.units) == 0 {
		it.state = Finished
	}
	return it
}

// splittable returns true for the blocks whose children are
// bands, paragraphs and spacers, with at least one band.
func splittable(box *bo.Box) bool {
	if box.Kind != bo.KBlock || box.AvoidBreakInside {
		return false
	}
	hasBand := false
	for _, child := range box.Children {
		switch child.Kind {
		case bo.KBlock:
			hasBand = true
		case bo.KParagraphPool, bo.KSpacer:
		default:
			return false
		}
	}
	return hasBand
}

// appendUnits adds the units of [box], positioned at [y] in the logical page.
// The edges of a split block go to its first and last units, and so do
// its break flags.
func appendUnits(units []pageUnit, box *bo.Box, y Unit) []pageUnit {
	if !splittable(box) {
		u := pageUnit{box: box, y: y, height: box.Height, breakBefore: box.BreakBefore, breakAfter: box.BreakAfter}
		if hasNestedPageBreak(box) {
			u.breakAfter = bo.BreakPage
		}
		return append(units, u)
	}

	first := len(units)
	for _, child := range box.Children {
		if child.Kind == bo.KSpacer {
			continue
		}
		units = appendUnits(units, child, y+child.Y)
	}
	head := &units[first]
	head.height += head.y - y
	head.y = y
	head.breakBefore = mergeBreaks(box.BreakBefore, head.breakBefore)
	tail := &units[len(units)-1]
	tail.height = y + box.Height - tail.y
	tail.breakAfter = mergeBreaks(box.BreakAfter, tail.breakAfter)
	return units
}

// hasNestedPageBreak returns true if an unsplit box holds a page break element.
func hasNestedPageBreak(box *bo.Box) (found bool) {
	for _, child := range box.Children {
		child.Walk(0, 0, func(b *bo.Box, _, _ Unit) bool {
			if b.Element != nil && b.Element.Kind == tree.KindPageBreak {
				found = true
			}
			return !found
		})
	}
	return found
}

func mergeBreaks(outer, inner bo.Break) bo.Break {
	if outer == bo.BreakPage || inner == bo.BreakPage {
		return bo.BreakPage
	}
	if outer == bo.BreakAvoid || inner == bo.BreakAvoid {
		return bo.BreakAvoid
	}
	return bo.BreakAuto
}

func (it *PageIterator) State() PagerState { return it.state }

// Next returns the next physical page, or false when every band has been
// emitted. The context is checked before each band: once it is cancelled
// its error is returned and no other page is emitted.
func (it *PageIterator) Next(ctx context.Context) (PhysicalPageBox, bool, error) {
	if it.state == Finished {
		return PhysicalPageBox{}, false, nil
	}
	units := it.units
	it.state = Flowing

	start, end := it.next, it.next
	var used Unit
	for end < len(units) {
		if err := ctx.Err(); err != nil {
			it.state = Finished
			return PhysicalPageBox{}, false, err
		}
		unit := units[end]
		if end == start {
			if unit.height > it.usable {
				it.ctx.recordOverflow(Overflow{
					Element: unit.box.ID(), Kind: PageOverflow,
					Extent: unit.height, Available: it.usable,
				})
			}
		} else {
			previous := units[end-1]
			if unit.breakBefore == bo.BreakPage || previous.breakAfter == bo.BreakPage {
				break
			}
			if used+unit.height > it.usable {
				// keep [previous] with [unit] when possible
				if keepTogether(previous, unit) && end-1 > start {
					end--
					used -= previous.height
				}
				break
			}
		}
		used += unit.height
		end++
	}

	page := PhysicalPageBox{
		Index:    it.index,
		Offset:   units[start].y,
		Height:   used,
		Header:   it.header,
		Footer:   it.footer,
		Geometry: it.ctx.geometry,
	}
	for _, unit := range units[start:end] {
		page.Bands = append(page.Bands, unit.box)
	}
	it.index++
	it.next = end
	if it.next >= len(units) {
		it.state = Finished
	} else {
		it.state = PageBoundary
	}
	return page, true, nil
}

func keepTogether(previous, unit pageUnit) bool {
	return previous.breakAfter == bo.BreakAvoid || unit.breakBefore == bo.BreakAvoid
}

// PaginateAll consumes a [PageIterator] for [logical].
func PaginateAll(ctx context.Context, lctx *Context, logical *bo.Box) ([]PhysicalPageBox, error) {
	it := Paginate(lctx, logical)
	var pages []PhysicalPageBox
	for {
		page, ok, err := it.Next(ctx)
		if err != nil {
			return pages, err
		}
		if !ok {
			return pages, nil
		}
		pages = append(pages, page)
	}
}
