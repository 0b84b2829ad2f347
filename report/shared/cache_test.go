package shared

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/benoitkugler/reportlayout/config"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/conflict"
	"github.com/benoitkugler/reportlayout/report/layout"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/text"
	tu "github.com/benoitkugler/reportlayout/utils/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var page = layout.PageGeometry{Width: 100 * bo.Point, Height: 100 * bo.Point}

func state(id string) ContextState {
	return ContextState{ID: id, Zoom: 1, Page: page}
}

// layoutElement lays out [element] alone on a logical page.
func layoutElement(calls *int32) LayoutFunc {
	resolver, err := tree.NewResolver()
	if err != nil {
		panic(err)
	}
	measurer := text.CellMeasurer{CellWidth: 10, LineHeight: 20, Baseline: 15}
	return func(_ context.Context, element *tree.Element, state ContextState) (*bo.Box, error) {
		atomic.AddInt32(calls, 1)
		ctx := layout.NewContextWith(resolver, measurer, state.Page, config.LayoutConfig{})
		defer ctx.Close()
		root := &tree.Element{ID: "root", Kind: tree.KindContainer, Children: []*tree.Element{element}}
		return layout.BuildLogicalPage(ctx, root)
	}
}

// header returns a page header with two labels, the second one
// with a random anchor name
func header(string, ContextState) (*tree.Element, error) {
	return &tree.Element{ID: "header", Kind: tree.KindBand, Children: []*tree.Element{
		{ID: "title", Kind: tree.KindText, Text: "Title"},
		{ID: "page", Kind: tree.KindText, Text: "Page", Style: map[string]string{"anchor-name": uuid.NewString()}},
	}}, nil
}

func newTestCache(t *testing.T, detection bool, instantiate Instantiator, calls *int32) *Cache {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Layout.ConflictDetection = detection
	c, err := NewCache(cfg.Cache, cfg.Layout, instantiate, layoutElement(calls))
	require.NoError(t, err)
	return c
}

func TestCacheHit(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	element := &tree.Element{ID: "label", Kind: tree.KindText, Text: "hello"}
	var calls int32
	c := newTestCache(t, true, func(string, ContextState) (*tree.Element, error) { return element, nil }, &calls)
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	c.SetMetrics(m)

	first, records, err := c.LayoutShared(context.Background(), "label", state("ctx"))
	require.NoError(t, err)
	assert.Empty(t, records)
	second, _, err := c.LayoutShared(context.Background(), "label", state("ctx"))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("miss")))

	// explicit invalidation
	c.Invalidate("label")
	assert.Equal(t, 0, c.Len())
	third, _, err := c.LayoutShared(context.Background(), "label", state("ctx"))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.EqualValues(t, 2, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("stale")))

	// content change, detected by fingerprint
	element.Text = "hello world"
	_, _, err = c.LayoutShared(context.Background(), "label", state("ctx"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls)

	// another context state is another entry
	other := state("ctx")
	other.Zoom = 2
	_, _, err = c.LayoutShared(context.Background(), "label", other)
	require.NoError(t, err)
	assert.EqualValues(t, 4, calls)
	assert.Equal(t, 2, c.Len())
}

func TestSharedConflicts(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	var calls int32
	c := newTestCache(t, true, header, &calls)

	box1, records, err := c.LayoutShared(context.Background(), "header", state("ctx1"))
	require.NoError(t, err)
	require.NotNil(t, box1)
	assert.Empty(t, records)

	box2, records, err := c.LayoutShared(context.Background(), "header", state("ctx2"))
	require.NoError(t, err)
	require.NotNil(t, box2)
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, conflict.Style, r.Kind)
		assert.Equal(t, conflict.Informational, r.Severity)
		assert.Equal(t, "ctx1", r.First.Context)
		assert.Equal(t, "ctx2", r.Second.Context)
		assert.True(t, strings.HasPrefix(r.First.Detail, "anchor-name"))
	}
	// identical geometry
	tu.AssertEqual(t, bo.DumpString(box1), bo.DumpString(box2))
}

func TestSharedConflictsDisabled(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	var calls int32
	c := newTestCache(t, false, header, &calls)
	for _, id := range []string{"ctx1", "ctx2", "ctx3"} {
		box, records, err := c.LayoutShared(context.Background(), "header", state(id))
		require.NoError(t, err)
		require.NotNil(t, box)
		assert.Empty(t, records)
	}
	assert.EqualValues(t, 3, calls)
}

func TestGeometryConflicts(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	instantiate := func(_ string, state ContextState) (*tree.Element, error) {
		return &tree.Element{ID: "field", Kind: tree.KindText, Text: state.Fields["value"]}, nil
	}
	var calls int32
	c := newTestCache(t, true, instantiate, &calls)

	short, long := state("ctx1"), state("ctx2")
	short.Fields = map[string]string{"value": "abc"}
	long.Fields = map[string]string{"value": "abc def ghi jkl"}

	_, _, err := c.LayoutShared(context.Background(), "field", short)
	require.NoError(t, err)
	_, records, err := c.LayoutShared(context.Background(), "field", long)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, conflict.Geometry, records[0].Kind)
}

func TestCacheErrors(t *testing.T) {
	_, err := NewCache(config.CacheConfig{Buckets: 1, SharedStyles: []string{"no-such-key"}}, config.LayoutConfig{}, header, nil)
	assert.Error(t, err)

	errBoom := errors.New("boom")
	var calls int32
	c := newTestCache(t, true, func(string, ContextState) (*tree.Element, error) { return nil, errBoom }, &calls)
	_, _, err = c.LayoutShared(context.Background(), "x", state("ctx"))
	assert.ErrorIs(t, err, errBoom)

	failing, err := NewCache(config.CacheConfig{Buckets: 4}, config.LayoutConfig{}, header,
		func(context.Context, *tree.Element, ContextState) (*bo.Box, error) { return nil, errBoom })
	require.NoError(t, err)
	_, _, err = failing.LayoutShared(context.Background(), "header", state("ctx"))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, failing.Len())
}

func TestConcurrentLookups(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	element := &tree.Element{ID: "label", Kind: tree.KindText, Text: "shared"}
	var calls int32
	c := newTestCache(t, true, func(string, ContextState) (*tree.Element, error) { return element, nil }, &calls)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "ctx1"
			if i%2 == 1 {
				id = "ctx2"
			}
			box, _, err := c.LayoutShared(context.Background(), "label", state(id))
			assert.NoError(t, err)
			assert.NotNil(t, box)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 2, c.Len())
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(16))
}

// an invalidation arriving while the layout is computed is not lost
func TestInvalidateDuringLayout(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	element := &tree.Element{ID: "label", Kind: tree.KindText, Text: "hello"}
	var calls int32
	inner := layoutElement(&calls)
	started, release := make(chan struct{}), make(chan struct{})
	blocking := func(ctx context.Context, e *tree.Element, s ContextState) (*bo.Box, error) {
		if atomic.LoadInt32(&calls) == 0 {
			close(started)
			<-release
		}
		return inner(ctx, e, s)
	}
	cfg := config.NewDefaultConfig()
	c, err := NewCache(cfg.Cache, cfg.Layout, func(string, ContextState) (*tree.Element, error) { return element, nil }, blocking)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		_, _, err := c.LayoutShared(context.Background(), "label", state("ctx"))
		done <- err
	}()
	<-started
	c.Invalidate("label")
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, 0, c.Len())
	_, _, err = c.LayoutShared(context.Background(), "label", state("ctx"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentInvalidate(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	var calls int32
	c := newTestCache(t, true, header, &calls)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _, err := c.LayoutShared(context.Background(), "header", state([]string{"a", "b", "c"}[i%3]))
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			c.Invalidate("header")
			c.Len()
		}()
	}
	wg.Wait()

	c.Invalidate("header")
	assert.Equal(t, 0, c.Len())
}
