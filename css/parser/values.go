// Package parser turns raw style declarations (as found in report
// definitions) into typed values: colors, lengths and functional notations.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Function is a functional notation like rgb(10, 20, 30).
type Function struct {
	Name string   // lower cased
	Args []string // trimmed, never empty strings
}

var errNotAFunction = errors.New("not a function")

// IsNotAFunction returns true if err was returned by [ParseFunction]
// for an input without parenthesis.
func IsNotAFunction(err error) bool { return errors.Is(err, errNotAFunction) }

// ParseFunction splits `name(arg1, arg2 ...)`. Arguments may be separated by commas,
// whitespace or a slash (alpha separator of the modern color syntax).
func ParseFunction(raw string) (Function, error) {
	s := strings.TrimSpace(raw)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Function{}, fmt.Errorf("%q: %w", raw, errNotAFunction)
	}
	name := strings.TrimSpace(s[:open])
	for _, r := range name {
		if !(r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return Function{}, fmt.Errorf("invalid function name %q", name)
		}
	}
	body := s[open+1 : len(s)-1]
	if strings.ContainsAny(body, "()") {
		return Function{}, fmt.Errorf("nested functions are not supported in %q", raw)
	}
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '\t'
	})
	return Function{Name: strings.ToLower(name), Args: fields}, nil
}

type Unit uint8

const (
	Scalar Unit = iota + 1 // no unit
	Perc
	Em
	Pt
	Px
	In
	Cm
	Mm
)

// how many points is one <unit> ?
var unitToPoints = map[Unit]Fl{
	Pt: 1,
	Px: 0.75,
	In: 72,
	Cm: 72 / 2.54,
	Mm: 72 / 25.4,
}

var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"%", Perc}, {"em", Em}, {"pt", Pt}, {"px", Px}, {"in", In}, {"cm", Cm}, {"mm", Mm},
}

// Dimension is a number with a unit.
type Dimension struct {
	Value Fl
	Unit  Unit
}

// ToPoints converts absolute lengths to points.
// Relative units (%, em) are resolved against [reference].
func (d Dimension) ToPoints(reference Fl) Fl {
	switch d.Unit {
	case Perc:
		return d.Value * reference / 100
	case Em:
		return d.Value * reference
	case Scalar:
		return d.Value
	default:
		return d.Value * unitToPoints[d.Unit]
	}
}

// ParseDimension parses `12`, `12pt`, `1.5em`, `50%` ...
func ParseDimension(raw string) (Dimension, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	unit := Scalar
	for _, u := range unitSuffixes {
		if strings.HasSuffix(s, u.suffix) {
			unit = u.unit
			s = strings.TrimSuffix(s, u.suffix)
			break
		}
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return Dimension{}, fmt.Errorf("invalid length %q", raw)
	}
	return Dimension{Value: Fl(v), Unit: unit}, nil
}

// ParseKeyword checks that raw is one of the allowed keywords, returning it lower cased.
func ParseKeyword(raw string, allowed ...string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid keyword %q, expected one of %v", raw, allowed)
}
