package text

import (
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/width"
)

var (
	_ Measurer = BasicMeasurer{}
	_ Measurer = CellMeasurer{}
	_ Measurer = (*Cache)(nil)
)

// BasicMeasurer measures text with the metrics of the fixed
// 7x13 face of golang.org/x/image, scaled to the font size.
// East Asian wide runes take two advances.
//
// It does not need any font file, and is the default measurer.
type BasicMeasurer struct{}

var face font.Face = basicfont.Face7x13

func (BasicMeasurer) Measure(text string, fd FontDescription) Metrics {
	metrics := face.Metrics()
	scale := fd.Size / (Fl(metrics.Height) / 64)
	var (
		advance fixed.Int26_6
		count   int
		prev    rune = -1
	)
	for _, r := range text {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('?')
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			adv *= 2
		}
		if fd.Bold {
			adv += fixed.I(1)
		}
		if prev >= 0 {
			advance += face.Kern(prev, r)
		}
		advance += adv
		prev = r
		count++
	}
	return Metrics{
		Width:      Fl(advance)/64*scale + fd.LetterSpacing*Fl(count),
		LineHeight: Fl(metrics.Height) / 64 * scale,
		Baseline:   Fl(metrics.Ascent) / 64 * scale,
	}
}

// CellMeasurer measures text on a grid of character cells,
// the way terminal and plain text outputs display it.
// Each rune takes one or two cells, as reported by go-runewidth.
type CellMeasurer struct {
	CellWidth  Fl // if zero, half of the font size
	LineHeight Fl // if zero, 1.2 times the font size
	Baseline   Fl // if zero, 0.8 times the line height
}

func (cm CellMeasurer) Measure(text string, fd FontDescription) Metrics {
	cellWidth, lineHeight, baseline := cm.CellWidth, cm.LineHeight, cm.Baseline
	if cellWidth == 0 {
		cellWidth = fd.Size / 2
	}
	if lineHeight == 0 {
		lineHeight = fd.Size * 1.2
	}
	if baseline == 0 {
		baseline = lineHeight * 0.8
	}
	cells, count := 0, 0
	for _, r := range text {
		cells += runewidth.RuneWidth(r)
		count++
	}
	return Metrics{
		Width:      Fl(cells)*cellWidth + fd.LetterSpacing*Fl(count),
		LineHeight: lineHeight,
		Baseline:   baseline,
	}
}

// Cache memoizes the results of a [Measurer].
// It is safe for concurrent use.
type Cache struct {
	measurer Measurer

	lock    sync.Mutex
	entries map[string]Metrics
}

// NewCache wraps [measurer]. The cache is cleared with [Cache.Reset].
func NewCache(measurer Measurer) *Cache {
	return &Cache{measurer: measurer, entries: make(map[string]Metrics)}
}

func (c *Cache) Measure(text string, fd FontDescription) Metrics {
	key := string(fd.binary([]byte(text + "\x00")))
	c.lock.Lock()
	m, ok := c.entries[key]
	c.lock.Unlock()
	if ok {
		return m
	}
	m = c.measurer.Measure(text, fd)
	c.lock.Lock()
	c.entries[key] = m
	c.lock.Unlock()
	return m
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}

// Reset clears the cache.
func (c *Cache) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = make(map[string]Metrics)
}
