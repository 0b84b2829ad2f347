// Package conflict defines the records reported when two parts of a layout
// claim incompatible geometry or visuals.
package conflict

import (
	"fmt"

	"github.com/benoitkugler/reportlayout/config"
)

type Severity uint8

const (
	Informational Severity = iota
	Blocking
)

func (s Severity) String() string {
	if s == Blocking {
		return "blocking"
	}
	return "informational"
}

type Kind uint8

const (
	Geometry Kind = iota
	Style
	LineHint
	Border
)

func (k Kind) String() string {
	switch k {
	case Geometry:
		return "geometry"
	case Style:
		return "style"
	case LineHint:
		return "line-hint"
	case Border:
		return "border"
	default:
		return fmt.Sprintf("<invalid kind %d>", k)
	}
}

// Location identifies one of the two sides of a conflict.
type Location struct {
	Context string // rendering context, empty for single context conflicts
	Element string // element identity
	Detail  string // human readable description of the claim
}

func (l Location) String() string {
	if l.Context == "" {
		return fmt.Sprintf("%s (%s)", l.Element, l.Detail)
	}
	return fmt.Sprintf("%s@%s (%s)", l.Element, l.Context, l.Detail)
}

// Record describes two incompatible claims.
type Record struct {
	First, Second Location
	Kind          Kind
	Severity      Severity
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s conflict: %s vs %s", r.Severity, r.Kind, r.First, r.Second)
}

// HasBlocking returns true if one of the records is blocking.
func HasBlocking(records []Record) bool {
	for _, r := range records {
		if r.Severity == Blocking {
			return true
		}
	}
	return false
}

// Policy decides which claim wins when two claims differ.
type Policy uint8

const (
	FirstWins  Policy = iota // keep the first claim
	StrictFail               // keep the first claim and mark the conflict as blocking
	Union                    // prefer the claim drawing a line
)

// ParsePolicy maps the configuration values to policies.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case config.PolicyFirstWins, "":
		return FirstWins, nil
	case config.PolicyStrictFail:
		return StrictFail, nil
	case config.PolicyUnion:
		return Union, nil
	default:
		return 0, fmt.Errorf("unknown conflict policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case StrictFail:
		return config.PolicyStrictFail
	case Union:
		return config.PolicyUnion
	default:
		return config.PolicyFirstWins
	}
}

// Severity returns the severity of conflicts resolved with this policy.
func (p Policy) Severity() Severity {
	if p == StrictFail {
		return Blocking
	}
	return Informational
}
