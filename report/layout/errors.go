package layout

import (
	"errors"
	"fmt"

	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/logger"
)

// ErrFatalLayout is matched by every error aborting a layout pass.
var ErrFatalLayout = errors.New("fatal layout error")

// FatalLayoutError is returned for configuration problems
// making a pass impossible : invalid page geometry or
// style dependency cycles.
type FatalLayoutError struct {
	Reason string
	Err    error // optional
}

func (e *FatalLayoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal layout error: %s: %s", e.Reason, e.Err)
	}
	return "fatal layout error: " + e.Reason
}

func (e *FatalLayoutError) Unwrap() error { return e.Err }

func (e *FatalLayoutError) Is(target error) bool { return target == ErrFatalLayout }

// OverflowKind tells which constraint was exceeded.
type OverflowKind uint8

const (
	// A run of text or an image wider than its line.
	LineOverflow OverflowKind = iota
	// A band taller than the usable page height.
	PageOverflow
	// Fixed width cells wider than their row.
	RowOverflow
)

func (k OverflowKind) String() string {
	switch k {
	case LineOverflow:
		return "line"
	case PageOverflow:
		return "page"
	case RowOverflow:
		return "row"
	default:
		return fmt.Sprintf("<invalid overflow %d>", k)
	}
}

// Overflow is a non fatal warning: the content does not fit
// and has been placed anyway.
type Overflow struct {
	Element   string // identity of the overflowing element, if any
	Kind      OverflowKind
	Extent    bo.Unit // size of the content
	Available bo.Unit // available size
}

func (o Overflow) String() string {
	return fmt.Sprintf("%s overflow for %q: %s > %s", o.Kind, o.Element, o.Extent, o.Available)
}

func (c *Context) recordOverflow(o Overflow) {
	c.overflows = append(c.overflows, o)
	logger.WarningLogger.Warn(o.String())
}
