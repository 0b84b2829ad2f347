package tree

import (
	"errors"
	"fmt"
	"sort"

	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/reportlayout/logger"
)

// ErrStyleCycle is returned when the style keys dependency graph
// is not acyclic.
var ErrStyleCycle = errors.New("cycle in style dependencies")

// ComputedStyle is the resolved style of one element.
// It is immutable once returned by the [Resolver].
type ComputedStyle struct {
	pr.Properties

	Parent  *ComputedStyle // nil for the root
	Element *Element
}

// StyleFor maps elements to their computed style.
type StyleFor map[*Element]*ComputedStyle

// Resolver computes styles. It is safe for concurrent use.
type Resolver struct {
	table computerTable
	order []pr.KnownProp // dependencies first
}

// NewResolver returns a resolver for the built-in style keys.
func NewResolver() (*Resolver, error) { return newResolver(computerFunctions) }

func newResolver(table computerTable) (*Resolver, error) {
	order, err := sortKeys(table)
	if err != nil {
		return nil, err
	}
	return &Resolver{table: table, order: order}, nil
}

// sortKeys returns a topological order of all the known properties,
// according to the requirements declared in [table].
func sortKeys(table computerTable) ([]pr.KnownProp, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[pr.KnownProp]uint8)
	var (
		order []pr.KnownProp
		visit func(p pr.KnownProp, path []pr.KnownProp) error
	)
	visit = func(p pr.KnownProp, path []pr.KnownProp) error {
		switch state[p] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrStyleCycle, append(path, p))
		}
		state[p] = visiting
		path = append(path[:len(path):len(path)], p)
		requires := table[p].requires
		sorted := append([]pr.KnownProp(nil), requires...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for _, dep := range sorted {
			if err := visit(dep, path); err != nil {
				return err
			}
		}
		state[p] = done
		order = append(order, p)
		return nil
	}
	for _, p := range pr.AllProps() {
		if err := visit(p, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Order returns the order in which the style keys are resolved.
func (r *Resolver) Order() []pr.KnownProp { return append([]pr.KnownProp(nil), r.order...) }

// ComputeStyle resolves all the keys for [element].
// [parent] is nil for the root element.
func (r *Resolver) ComputeStyle(element *Element, parent *ComputedStyle) *ComputedStyle {
	out := &ComputedStyle{Properties: make(pr.Properties, len(r.order)), Parent: parent, Element: element}
	for _, key := range r.order {
		r.resolveInto(out, key)
	}
	return out
}

// Resolve returns the computed value of [key] for [element]. It never fails:
// invalid declarations are replaced by default values and a warning is logged.
func (r *Resolver) Resolve(element *Element, parent *ComputedStyle, key pr.KnownProp) pr.CssProperty {
	partial := &ComputedStyle{Properties: make(pr.Properties), Parent: parent, Element: element}
	return r.resolveInto(partial, key)
}

// ComputeAll resolves the style of every element of the tree rooted at [root].
func (r *Resolver) ComputeAll(root *Element) StyleFor {
	out := make(StyleFor)
	var visit func(e *Element, parent *ComputedStyle)
	visit = func(e *Element, parent *ComputedStyle) {
		style := r.ComputeStyle(e, parent)
		out[e] = style
		for _, child := range e.Children {
			visit(child, style)
		}
	}
	visit(root, nil)
	return out
}

// resolveInto computes [key] (and its requirements) if needed,
// storing the results in [style].
func (r *Resolver) resolveInto(style *ComputedStyle, key pr.KnownProp) pr.CssProperty {
	if v, ok := style.Properties[key]; ok {
		return v
	}
	comp := r.table[key]
	for _, dep := range comp.requires {
		r.resolveInto(style, dep)
	}

	value, err := r.compute(style, key, comp)
	if err != nil {
		value = fallbackValue(key)
		id := "<nil>"
		if style.Element != nil {
			id = style.Element.ID
		}
		logger.WarningLogger.Warnf("element %s: ignored %s: %s", id, key, err)
	}
	if c, isColor := value.(pr.Color); isColor && c == pr.CurrentColor {
		// only for keys other than color
		value = style.Properties[pr.PColor]
	}
	style.Properties[key] = value
	return value
}

func (r *Resolver) compute(style *ComputedStyle, key pr.KnownProp, comp computer) (pr.CssProperty, error) {
	var (
		raw      string
		declared bool
	)
	if style.Element != nil {
		raw, declared = style.Element.Style[key.String()]
	}
	if !declared {
		if pr.Inherited[key] && style.Parent != nil {
			return style.Parent.Properties[key], nil
		}
		return pr.InitialValues[key], nil
	}
	switch pr.NewDefaultValue(raw) {
	case pr.Inherit:
		if style.Parent != nil {
			return style.Parent.Properties[key], nil
		}
		return pr.InitialValues[key], nil
	case pr.Initial:
		return pr.InitialValues[key], nil
	}
	if comp.fn == nil {
		return nil, fmt.Errorf("no evaluator for %q", raw)
	}
	return comp.fn(style, key, raw)
}

// fallbackValue is used when a declaration can't be evaluated.
func fallbackValue(key pr.KnownProp) pr.CssProperty {
	if _, isColor := pr.InitialValues[key].(pr.Color); isColor {
		return pr.InitialValues[pr.PColor] // black
	}
	return pr.InitialValues[key]
}
