// Package layout turns a report content tree into geometry:
// block and line boxes on a logical page, then physical pages.
//
// Each pass uses one [Context], created at the start of the pass
// and closed at its end. Nothing is shared between passes.
package layout

import (
	"errors"

	"github.com/benoitkugler/reportlayout/config"
	"github.com/benoitkugler/reportlayout/logger"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/text"
)

// ErrClosedContext is returned when a closed [Context] is used.
var ErrClosedContext = errors.New("layout context is closed")

// Context stores the state of one layout pass.
// It is not safe for concurrent use.
type Context struct {
	resolver *tree.Resolver
	measurer text.Measurer
	geometry PageGeometry

	styleFor tree.StyleFor

	overflows []Overflow

	epsilon Unit
	closed  bool
}

// NewContext starts a pass with the given settings.
// Configuration errors are reported as [FatalLayoutError].
func NewContext(cfg *config.Config, measurer text.Measurer) (*Context, error) {
	resolver, err := tree.NewResolver()
	if err != nil {
		return nil, &FatalLayoutError{Reason: "invalid style declarations", Err: err}
	}
	geometry, err := NewPageGeometry(cfg.Page)
	if err != nil {
		return nil, err
	}
	return NewContextWith(resolver, measurer, geometry, cfg.Layout), nil
}

// NewContextWith starts a pass reusing an existing style resolver
// and an already validated page geometry.
func NewContextWith(resolver *tree.Resolver, measurer text.Measurer, geometry PageGeometry, cfg config.LayoutConfig) *Context {
	if measurer == nil {
		measurer = text.BasicMeasurer{}
	}
	return &Context{
		resolver: resolver,
		measurer: measurer,
		geometry: geometry,
		styleFor: make(tree.StyleFor),
		epsilon:  Unit(cfg.Epsilon),
	}
}

func (c *Context) Geometry() PageGeometry { return c.geometry }

func (c *Context) Epsilon() Unit { return c.epsilon }

// Overflows returns the warnings recorded so far.
func (c *Context) Overflows() []Overflow { return append([]Overflow(nil), c.overflows...) }

// Style returns the computed style of an element laid out in this pass.
func (c *Context) Style(e *tree.Element) *tree.ComputedStyle { return c.styleFor[e] }

// Close ends the pass, releasing the computed styles.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.styleFor = nil
	logger.ProgressLogger.Debugf("layout pass closed with %d overflow(s)", len(c.overflows))
}

// computeStyles resolves the style of the tree rooted at [root],
// with [parent] as the style of its parent (nil for a root).
func (c *Context) computeStyles(root *tree.Element, parent *tree.ComputedStyle) {
	var visit func(e *tree.Element, parent *tree.ComputedStyle)
	visit = func(e *tree.Element, parent *tree.ComputedStyle) {
		style := c.resolver.ComputeStyle(e, parent)
		c.styleFor[e] = style
		for _, child := range e.Children {
			visit(child, style)
		}
	}
	visit(root, parent)
}

func (c *Context) measure(s string, fd text.FontDescription) text.Metrics {
	return c.measurer.Measure(s, fd)
}
