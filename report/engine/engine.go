// Package engine wires the layout components together: style resolution,
// box tree construction, pagination, table grids and the shared
// layout cache.
//
// An [Engine] may be used from several goroutines: each call
// runs its own layout pass.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benoitkugler/reportlayout/config"
	"github.com/benoitkugler/reportlayout/logger"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/conflict"
	"github.com/benoitkugler/reportlayout/report/layout"
	"github.com/benoitkugler/reportlayout/report/shared"
	"github.com/benoitkugler/reportlayout/report/table"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/text"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// ErrNoInstantiator is returned by shared layouts when the engine
// has been created without [shared.Instantiator].
var ErrNoInstantiator = errors.New("no shared element instantiator")

// Result is the output of one layout pass.
type Result struct {
	Context   string
	Logical   *bo.Box
	Pages     []layout.PhysicalPageBox
	Grid      *table.Grid
	Overflows []layout.Overflow
	Conflicts []conflict.Record // grid conflicts
}

type Engine struct {
	cfg      *config.Config
	resolver *tree.Resolver
	measurer text.Measurer
	geometry layout.PageGeometry
	policy   conflict.Policy
	cache    *shared.Cache // nil without instantiator

	lock      sync.Mutex
	conflicts []conflict.Record

	preview atomic.Pointer[Result]
}

// New validates the configuration and prepares the engine.
// A nil [measurer] defaults to a cached [text.BasicMeasurer].
// [instantiate] is only required by shared layouts and may be nil.
func New(cfg *config.Config, measurer text.Measurer, instantiate shared.Instantiator) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolver, err := tree.NewResolver()
	if err != nil {
		return nil, &layout.FatalLayoutError{Reason: "invalid style declarations", Err: err}
	}
	geometry, err := layout.NewPageGeometry(cfg.Page)
	if err != nil {
		return nil, err
	}
	policy, err := conflict.ParsePolicy(cfg.Layout.ConflictPolicy)
	if err != nil {
		return nil, err
	}
	if measurer == nil {
		measurer = text.NewCache(text.BasicMeasurer{})
	}

	e := &Engine{cfg: cfg, resolver: resolver, measurer: measurer, geometry: geometry, policy: policy}
	if instantiate != nil {
		e.cache, err = shared.NewCache(cfg.Cache, cfg.Layout, instantiate, e.layoutElement)
		if err != nil {
			return nil, fmt.Errorf("invalid cache configuration: %w", err)
		}
		if cfg.Cache.Metrics {
			m, err := shared.NewMetrics(prometheus.DefaultRegisterer)
			if err != nil {
				return nil, fmt.Errorf("registering cache metrics: %w", err)
			}
			e.cache.SetMetrics(m)
		}
	}
	return e, nil
}

// Geometry returns the default page geometry.
func (e *Engine) Geometry() layout.PageGeometry { return e.geometry }

// normalize fills the zero fields of [state] with the engine defaults.
func (e *Engine) normalize(state shared.ContextState) shared.ContextState {
	if state.Zoom == 0 {
		state.Zoom = e.cfg.Layout.Zoom
	}
	if state.Page == (layout.PageGeometry{}) {
		state.Page = e.geometry
	}
	return state
}

func (e *Engine) newContext(state shared.ContextState) *layout.Context {
	return layout.NewContextWith(e.resolver, e.measurer, state.Page, e.cfg.Layout)
}

func (e *Engine) addConflicts(records []conflict.Record) {
	if len(records) == 0 {
		return
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	e.conflicts = append(e.conflicts, records...)
}

// Conflicts returns the conflicts accumulated by the passes run so far.
func (e *Engine) Conflicts() []conflict.Record {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]conflict.Record(nil), e.conflicts...)
}

// Layout runs a complete pass on the report [root], in the context [state]:
// logical page, physical pages and table grid.
func (e *Engine) Layout(ctx context.Context, root *tree.Element, state shared.ContextState) (*Result, error) {
	state = e.normalize(state)
	if err := state.Page.Validate(); err != nil {
		return nil, err
	}
	lctx := e.newContext(state)
	defer lctx.Close()

	logical, err := layout.BuildLogicalPage(lctx, root)
	if err != nil {
		return nil, err
	}
	pages, err := layout.PaginateAll(ctx, lctx, logical)
	if err != nil {
		return nil, err
	}
	out := &Result{Context: state.ID, Logical: logical, Pages: pages}

	grid := table.NewTableLayout(e.policy, state.Page)
	grid.PerformLayouting(logical)
	out.Grid = grid.Grid()
	if e.cfg.Layout.ConflictDetection {
		out.Conflicts = grid.Conflicts()
		e.addConflicts(out.Conflicts)
	}
	out.Overflows = lctx.Overflows()
	logger.ProgressLogger.Debugf("context %q: %d page(s), %d overflow(s)", state.ID, len(pages), len(out.Overflows))
	return out, nil
}

// LayoutContexts runs [Engine.Layout] for each state, concurrently.
// [root] returns the report tree of a context; results are in the order of [states].
func (e *Engine) LayoutContexts(ctx context.Context, root func(shared.ContextState) *tree.Element, states []shared.ContextState) ([]*Result, error) {
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Layout.Workers)

	out := make([]*Result, len(states))
	for i, state := range states {
		i, state := i, state
		g.Go(func() error {
			res, err := e.Layout(groupCtx, root(state), state)
			if err != nil {
				return fmt.Errorf("context %q: %w", state.ID, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// layoutElement lays out an element instance alone on a logical page.
func (e *Engine) layoutElement(_ context.Context, element *tree.Element, state shared.ContextState) (*bo.Box, error) {
	lctx := e.newContext(state)
	defer lctx.Close()
	root := &tree.Element{ID: element.ID, Kind: tree.KindContainer, Children: []*tree.Element{element}}
	return layout.BuildLogicalPage(lctx, root)
}

// LayoutShared returns the layout of the shared element [identity] in the
// context [state], recording its conflicts with the other contexts.
func (e *Engine) LayoutShared(ctx context.Context, identity string, state shared.ContextState) (*bo.Box, error) {
	if e.cache == nil {
		return nil, ErrNoInstantiator
	}
	box, records, err := e.cache.LayoutShared(ctx, identity, e.normalize(state))
	if err != nil {
		return nil, err
	}
	e.addConflicts(records)
	return box, nil
}

// Invalidate forwards a change notification for [identity] to the shared cache.
func (e *Engine) Invalidate(identity string) {
	if e.cache != nil {
		e.cache.Invalidate(identity)
	}
}

// PerformLayouting lays out the shared elements [identities] in each
// context of [states], in order. It returns false only if a layout
// could not be produced; conflicts are reported by [Engine.Conflicts].
func (e *Engine) PerformLayouting(ctx context.Context, identities []string, states []shared.ContextState) bool {
	for _, state := range states {
		for _, identity := range identities {
			if _, err := e.LayoutShared(ctx, identity, state); err != nil {
				logger.WarningLogger.Warnf("shared layout of %s in context %q: %s", identity, state.ID, err)
				return false
			}
		}
	}
	return true
}

// StartPreview lays out [root] in the background. Once complete, the result
// replaces the one returned by [Engine.Preview]. The returned channel
// receives the error of the pass and is then closed.
func (e *Engine) StartPreview(ctx context.Context, root *tree.Element, state shared.ContextState) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		res, err := e.Layout(ctx, root, state)
		if err == nil {
			e.preview.Store(res)
		}
		done <- err
	}()
	return done
}

// Preview returns the last complete preview, or nil.
func (e *Engine) Preview() *Result { return e.preview.Load() }
