// Package text provides the text measurement services used by the layout:
// font descriptions, line break opportunities and measurers.
//
// The layout never shapes text itself: everything goes through a [Measurer].
package text

import (
	"encoding/binary"
	"math"

	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/reportlayout/utils"
	"github.com/benoitkugler/textlayout/language"
)

type Fl = utils.Fl

// FontDescription stores the settings influencing
// font resolution and metrics.
type FontDescription struct {
	Family        string
	Size          Fl
	Bold, Italic  bool
	LetterSpacing Fl // added after each rune
	Lang          language.Language
}

// NewFontDescription extracts the font settings from a computed style.
func NewFontDescription(style pr.Properties) FontDescription {
	return FontDescription{
		Family:        string(style.GetFontFamily()),
		Size:          Fl(style.GetFontSize()),
		Bold:          bool(style.GetFontWeight()),
		Italic:        bool(style.GetFontStyle()),
		LetterSpacing: Fl(style.GetLetterSpacing()),
		Lang:          language.Language(style.GetLang()),
	}
}

func (fd FontDescription) binary(dst []byte) []byte {
	dst = append(dst, fd.Family...)
	dst = append(dst, 0)
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(fd.Size))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(fd.LetterSpacing))
	var flags byte
	if fd.Bold {
		flags |= 1
	}
	if fd.Italic {
		flags |= 2
	}
	dst = append(dst, flags)
	return append(dst, fd.Lang...)
}

// Metrics are the dimensions of a run of text, in points.
type Metrics struct {
	Width      Fl
	LineHeight Fl
	// Distance from the top of the line to the baseline.
	Baseline Fl
}

// Measurer computes the extents of text runs.
// Implementations must be deterministic and safe for concurrent use.
type Measurer interface {
	Measure(text string, font FontDescription) Metrics
}
