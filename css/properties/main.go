// This package defines the style keys understood by the layout engine and
// the types of their computed values.
//
// Raw declarations are plain strings (as found in report definitions);
// they are turned into [CssProperty] values by the cascade resolver.
package properties

import (
	"github.com/benoitkugler/reportlayout/utils"
)

type Fl = utils.Fl

// CssProperty is the final form of a style input, a.k.a. the computed value.
type CssProperty interface {
	isCssProperty()
}

type DefaultValue uint8

const (
	Inherit DefaultValue = iota + 1
	Initial
)

// NewDefaultValue returns the special keyword encoded by s, or 0.
func NewDefaultValue(s string) DefaultValue {
	switch s {
	case "inherit":
		return Inherit
	case "initial":
		return Initial
	default:
		return 0
	}
}

func (d DefaultValue) String() string {
	switch d {
	case Inherit:
		return "<inherit>"
	case Initial:
		return "<initial>"
	default:
		return "invalid value"
	}
}

// KnownProp efficiently encode a known style key
type KnownProp uint8

func (p KnownProp) String() string { return propsNames[p] }

// Properties is a general container for computed properties.
//
// The typed GetXXX accessors rely on the convention that all the keys are
// present and values never nil.
type Properties map[KnownProp]CssProperty

// Copy return a shallow copy.
func (p Properties) Copy() Properties {
	out := make(Properties, len(p))
	for name, v := range p {
		out[name] = v
	}
	return out
}
