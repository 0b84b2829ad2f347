package layout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/tree"
	tu "github.com/benoitkugler/reportlayout/utils/testutils"
	"github.com/stretchr/testify/require"
)

// fixed returns a band of the given height
func fixed(id, height string, style ...string) *tree.Element {
	m := map[string]string{"height": height}
	for i := 0; i+1 < len(style); i += 2 {
		m[style[i]] = style[i+1]
	}
	return band(id, m)
}

func pageIDs(pages []PhysicalPageBox) [][]string {
	var out [][]string
	for _, page := range pages {
		var ids []string
		for _, b := range page.Bands {
			ids = append(ids, b.ID())
		}
		out = append(out, ids)
	}
	return out
}

func paginate(t *testing.T, ctx *Context, root *tree.Element) (*bo.Box, []PhysicalPageBox) {
	t.Helper()
	logical := layoutRoot(t, ctx, root)
	pages, err := PaginateAll(context.Background(), ctx, logical)
	require.NoError(t, err)
	return logical, pages
}

// every unit appears exactly once, in order, and the windows are contiguous
func assertComplete(t *testing.T, ctx *Context, logical *bo.Box, pages []PhysicalPageBox) {
	t.Helper()
	var (
		bands  []*bo.Box
		offset Unit
	)
	for i, page := range pages {
		tu.AssertEqual(t, page.Index, i)
		tu.AssertEqual(t, page.Offset, offset)
		offset += page.Height
		bands = append(bands, page.Bands...)
	}
	units := Paginate(ctx, logical).units
	tu.AssertEqual(t, len(bands), len(units))
	for i := range bands {
		if bands[i] != units[i].box {
			t.Fatalf("band %d: expected %s, got %s", i, units[i].box.ID(), bands[i].ID())
		}
	}
	tu.AssertEqual(t, offset, logical.Height)
}

func TestPaginate(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil, fixed("b0", "40"), fixed("b1", "40"), fixed("b2", "40"), fixed("b3", "40"), fixed("b4", "40"))
	logical, pages := paginate(t, ctx, root)

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"b0", "b1"}, {"b2", "b3"}, {"b4"}})
	tu.AssertEqual(t, pages[2].Height, pt(40))
	assertComplete(t, ctx, logical, pages)
}

func TestPaginateIdempotent(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil, fixed("b0", "30"), txt("t", "aa bb cc"), fixed("b1", "70"), fixed("b2", "10"))
	logical, pages := paginate(t, ctx, root)
	assertComplete(t, ctx, logical, pages)

	again, err := PaginateAll(context.Background(), ctx, logical)
	require.NoError(t, err)
	tu.AssertEqual(t, pageIDs(again), pageIDs(pages))
}

func TestPaginateMarginals(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil,
		fixed("header", "20", "repeat", "header"),
		fixed("b0", "40"), fixed("b1", "40"), fixed("b2", "40"),
		fixed("footer", "20", "repeat", "footer"),
	)
	logical, pages := paginate(t, ctx, root)

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"b0"}, {"b1"}, {"b2"}})
	for _, page := range pages {
		tu.AssertEqual(t, len(page.Header), 1)
		tu.AssertEqual(t, page.Header[0].ID(), "header")
		tu.AssertEqual(t, len(page.Footer), 1)
		tu.AssertEqual(t, page.Footer[0].ID(), "footer")
	}
	assertComplete(t, ctx, logical, pages)
}

func TestPaginateForcedBreaks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil,
		fixed("b0", "20"),
		fixed("b1", "20", "break-before", "page"),
		fixed("b2", "20", "break-after", "page"),
		fixed("b3", "20"),
		&tree.Element{ID: "pb", Kind: tree.KindPageBreak},
		fixed("b4", "20"),
	)
	logical, pages := paginate(t, ctx, root)

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"b0"}, {"b1", "b2"}, {"b3"}, {"pb", "b4"}})
	assertComplete(t, ctx, logical, pages)
}

func TestPaginateAvoid(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil,
		fixed("b0", "40"),
		fixed("b1", "40", "break-after", "avoid"),
		fixed("b2", "40"),
		fixed("b3", "40"),
		fixed("b4", "40", "break-before", "avoid"),
	)
	logical, pages := paginate(t, ctx, root)

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"b0"}, {"b1", "b2"}, {"b3", "b4"}})
	assertComplete(t, ctx, logical, pages)
}

// oversized bands are placed alone, and pagination moves on
func TestPaginateOverflow(t *testing.T) {
	logs := tu.CaptureLogs()

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil, fixed("b0", "150"), fixed("b1", "20"), fixed("b2", "20"))
	logical, pages := paginate(t, ctx, root)

	logs.CheckLogs(t, 1)
	tu.AssertEqual(t, pageIDs(pages), [][]string{{"b0"}, {"b1", "b2"}})
	tu.AssertEqual(t, ctx.Overflows(), []Overflow{
		{Element: "b0", Kind: PageOverflow, Extent: pt(150), Available: pt(100)},
	})
	assertComplete(t, ctx, logical, pages)
}

func TestPaginateEmpty(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	logical, pages := paginate(t, ctx, band("root", nil))
	tu.AssertEqual(t, len(logical.Children), 0)
	tu.AssertEqual(t, len(pages), 0)
	tu.AssertEqual(t, Paginate(ctx, logical).State(), Finished)
}

func TestPaginateCancel(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	logical := layoutRoot(t, ctx, band("root", nil, fixed("b0", "60"), fixed("b1", "60"), fixed("b2", "60")))

	it := Paginate(ctx, logical)
	tu.AssertEqual(t, it.State(), Flowing)
	c, cancel := context.WithCancel(context.Background())
	page, ok, err := it.Next(c)
	require.NoError(t, err)
	tu.AssertEqual(t, ok, true)
	tu.AssertEqual(t, page.Bands[0].ID(), "b0")
	tu.AssertEqual(t, it.State(), PageBoundary)

	cancel()
	_, ok, err = it.Next(c)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	tu.AssertEqual(t, ok, false)
	tu.AssertEqual(t, it.State(), Finished)

	// no page after cancellation, even with a live context
	_, ok, err = it.Next(context.Background())
	require.NoError(t, err)
	tu.AssertEqual(t, ok, false)

	pages, err := PaginateAll(c, ctx, logical)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	tu.AssertEqual(t, len(pages), 0)
}

func TestPaginateNestedBreaks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(1000), pt(1000))
	root := band("root", nil,
		band("section", nil,
			fixed("a", "10"),
			&tree.Element{ID: "pb", Kind: tree.KindPageBreak},
			fixed("b", "10"),
			fixed("c", "10", "break-before", "page"),
		),
		fixed("d", "10"),
	)
	logical, pages := paginate(t, ctx, root)

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"a"}, {"pb", "b"}, {"c", "d"}})
	assertComplete(t, ctx, logical, pages)
}

// a section taller than a page is split between its rows
func TestPaginateSplitsSections(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	var rows []*tree.Element
	for i := 0; i < 10; i++ {
		rows = append(rows, fixed(fmt.Sprintf("r%d", i), "30"))
	}
	logical, pages := paginate(t, ctx, band("root", nil, band("section", nil, rows...)))

	tu.AssertEqual(t, pageIDs(pages), [][]string{
		{"r0", "r1", "r2"}, {"r3", "r4", "r5"}, {"r6", "r7", "r8"}, {"r9"},
	})
	tu.AssertEqual(t, len(ctx.Overflows()), 0)
	assertComplete(t, ctx, logical, pages)
}

// padding and border of a split section stay with its first and last rows
func TestPaginateSectionEdges(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	section := band("section", map[string]string{"padding-top": "10", "padding-bottom": "10"},
		fixed("r0", "40"), fixed("r1", "40"), fixed("r2", "40"),
	)
	logical, pages := paginate(t, ctx, band("root", nil, fixed("title", "20"), section))

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"title", "r0"}, {"r1", "r2"}})
	tu.AssertEqual(t, pages[0].Height, pt(70))
	tu.AssertEqual(t, pages[1].Offset, pt(70))
	tu.AssertEqual(t, pages[1].Height, pt(90))
	assertComplete(t, ctx, logical, pages)
}

// avoid-break-inside keeps a section in one piece, even when
// it holds a page break
func TestPaginateAtomicSection(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ctx := newTestContext(t, pt(100), pt(100))
	root := band("root", nil,
		fixed("b0", "30"),
		band("section", map[string]string{"avoid-break-inside": "true"},
			fixed("r0", "30"), &tree.Element{ID: "pb", Kind: tree.KindPageBreak}, fixed("r1", "30"),
		),
		fixed("b1", "30"),
	)
	logical, pages := paginate(t, ctx, root)

	tu.AssertEqual(t, pageIDs(pages), [][]string{{"b0", "section"}, {"b1"}})
	assertComplete(t, ctx, logical, pages)
}
