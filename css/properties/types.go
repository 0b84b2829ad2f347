package properties

import (
	"fmt"

	pa "github.com/benoitkugler/reportlayout/css/parser"
)

// ------------- Top levels types, implementing CssProperty ------------

type Color pa.Color

func (c Color) String() string { return pa.Color(c).String() }

// CurrentColor is the unresolved 'currentColor' keyword.
// It never appears in a computed style.
var CurrentColor = Color{Type: pa.ColorCurrentColor}

// Float is a length in points, or a plain number.
type Float Fl

type Int int

type Bool bool

type String string

// Rotation is a quarter turn of text, in degrees: 0, 90 or -90.
type Rotation int

// NewRotation validates the rotation angle.
func NewRotation(deg int) (Rotation, error) {
	switch deg {
	case 0, 90, -90:
		return Rotation(deg), nil
	case 270:
		return -90, nil
	case -270:
		return 90, nil
	default:
		return 0, fmt.Errorf("unsupported rotation %d (only quarter turns are supported)", deg)
	}
}

// IsVertical returns true for 90 and -90.
func (r Rotation) IsVertical() bool { return r != 0 }

func (Color) isCssProperty()    {}
func (Float) isCssProperty()    {}
func (Int) isCssProperty()      {}
func (Bool) isCssProperty()     {}
func (String) isCssProperty()   {}
func (Rotation) isCssProperty() {}
