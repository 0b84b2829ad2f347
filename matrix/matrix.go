// Package matrix provides the 2D affine transformations
// attached to rotated boxes.
package matrix

import (
	"math"

	"github.com/benoitkugler/reportlayout/utils"
)

type fl = utils.Fl

// Transform encode a (2D) linear transformation
//
// The encoded transformation is given by :
//
//	x_new = a * x + c * y + e
//	y_new = b * x + d * y + f
type Transform struct {
	A, B, C, D, E, F fl
}

func New(a, b, c, d, e, f fl) Transform {
	return Transform{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Identity returns a new matrix initialized to the identity.
func Identity() Transform {
	return New(1, 0, 0, 1, 0, 0)
}

// Translation returns the translation by (tx, ty).
func Translation(tx, ty fl) Transform {
	return Transform{1, 0, 0, 1, tx, ty}
}

// Rotation returns a rotation by [degrees], rotating from
// the positive X axis toward the positive Y axis (clockwise on a page).
// Quarter turns are exact.
func Rotation(degrees int) Transform {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return Identity()
	case 90:
		return Transform{0, 1, -1, 0, 0, 0}
	case 180:
		return Transform{-1, 0, 0, -1, 0, 0}
	case 270:
		return Transform{0, -1, 1, 0, 0, 0}
	}
	rad := float64(degrees) * math.Pi / 180
	cos, sin := fl(math.Cos(rad)), fl(math.Sin(rad))
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// QuarterTurn returns the transform drawing a run of size
// ([width], [height]) rotated by [degrees] (90 or -90) inside
// its rotated bounding box, whose top-left corner is the origin.
func QuarterTurn(degrees int, width, height fl) Transform {
	var tx, ty fl
	switch degrees {
	case 90:
		tx = height
	case -90:
		ty = width
	}
	return Mul(Translation(tx, ty), Rotation(degrees))
}

// Mul returns the transform T * U,
// which apply U then T.
func Mul(T, U Transform) Transform {
	return Transform{
		A: T.A*U.A + T.C*U.B,
		B: T.B*U.A + T.D*U.B,
		C: T.A*U.C + T.C*U.D,
		D: T.B*U.C + T.D*U.D,
		E: T.A*U.E + T.C*U.F + T.E,
		F: T.B*U.E + T.D*U.F + T.F,
	}
}

// Apply transforms the point `(x, y)` by this matrix.
func (T Transform) Apply(x, y fl) (outX, outY fl) {
	outX = T.A*x + T.C*y + T.E
	outY = T.B*x + T.D*y + T.F
	return
}

// Bounds returns the bounding box of the transformed
// rectangle (0, 0, width, height).
func (T Transform) Bounds(width, height fl) (minX, minY, maxX, maxY fl) {
	minX, minY = fl(math.Inf(1)), fl(math.Inf(1))
	maxX, maxY = fl(math.Inf(-1)), fl(math.Inf(-1))
	for _, corner := range [4][2]fl{{0, 0}, {width, 0}, {0, height}, {width, height}} {
		x, y := T.Apply(corner[0], corner[1])
		minX, maxX = utils.MinF(minX, x), utils.MaxF(maxX, x)
		minY, maxY = utils.MinF(minY, y), utils.MaxF(maxY, y)
	}
	return
}
