package layout

import (
	"strings"

	"github.com/benoitkugler/reportlayout/matrix"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/text"
)

// atom is an unbreakable piece of inline content, with
// the break opportunity following it.
type atom struct {
	// leaves without break opportunity between them,
	// empty for a segment made only of whitespace
	parts     []*bo.Box
	space     *bo.Box // collapsible space after content, or nil
	hardBreak bool
	strut     *bo.Box // zero width spacer giving the height of an empty line

	// opening is true if a break opportunity precedes the atom,
	// even without whitespace
	opening bool
}

func (a atom) width() Unit {
	var w Unit
	for _, part := range a.parts {
		w += part.Width
	}
	return w
}

// glue merges the atoms of consecutive elements which are not
// separated by whitespace: "foo" followed by "bar" is one word.
func glue(atoms []atom) []atom {
	var out []atom
	for _, a := range atoms {
		if n := len(out); n != 0 && len(a.parts) != 0 && !a.opening {
			last := &out[n-1]
			if len(last.parts) != 0 && last.space == nil && !last.hardBreak {
				last.parts = append(last.parts, a.parts...)
				last.space, last.hardBreak, last.strut = a.space, a.hardBreak, a.strut
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Flow breaks the inline children of [pool] into line boxes
// of at most [availableWidth], using a greedy first-fit strategy.
//
// Lines are only broken at whitespace, forced breaks and the line break
// opportunities of the text. Runs wider than the available width are
// placed alone on their line and reported as [LineOverflow].
// Justified lines are widened by stretching the spacers between their
// words; the last line and lines ended by a forced break are never justified.
func Flow(ctx *Context, pool *bo.Box, availableWidth Unit) []*bo.Box {
	align := "left"
	if pool.Style != nil {
		align = string(pool.Style.GetTextAlign())
	}
	var atoms []atom
	for _, inline := range pool.Children {
		atoms = ctx.appendAtoms(atoms, inline)
	}
	atoms = glue(atoms)
	glued := make(map[*bo.Box]bool) // leaves without opportunity before them

	var (
		lines   []*bo.Box
		items   []*bo.Box
		width   Unit
		pending *bo.Box // space waiting for the next content
		hasText bool
	)
	emit := func(soft, hard bool, strut *bo.Box) {
		if len(items) == 0 {
			if !hard || strut == nil {
				return
			}
			items = []*bo.Box{strut}
		}
		justify := align == "justify" && soft
		lines = append(lines, newLine(items, availableWidth, align, justify, hard, glued))
		items, width, pending, hasText = nil, 0, nil, false
	}

	for _, a := range atoms {
		if len(a.parts) != 0 {
			w := a.width()
			extent := width + w
			if hasText && pending != nil {
				extent += pending.Width
			}
			if hasText && extent > availableWidth {
				emit(true, false, nil)
			}
			if hasText && pending != nil {
				items = append(items, pending)
				width += pending.Width
			}
			pending = nil
			items = append(items, a.parts...)
			for _, part := range a.parts[1:] {
				glued[part] = true
			}
			width += w
			if !hasText && w > availableWidth {
				ctx.recordOverflow(Overflow{
					Element: a.parts[0].ID(), Kind: LineOverflow,
					Extent: w, Available: availableWidth,
				})
			}
			hasText = true
		}
		if a.space != nil && hasText {
			pending = a.space
		}
		if a.hardBreak {
			emit(false, true, a.strut)
		}
	}
	emit(false, false, nil)
	return lines
}

// appendAtoms measures the content of an inline box.
func (c *Context) appendAtoms(atoms []atom, inline *bo.Box) []atom {
	e, style := inline.Element, inline.Style
	if e.Kind == tree.KindImage {
		image := &bo.Box{Kind: bo.KImage, Element: e, Style: style}
		image.Width, image.Height = bo.FromPoints(e.ImageWidth), bo.FromPoints(e.ImageHeight)
		if w := style.GetWidth(); w >= 0 {
			image.Width = bo.FromPoints(Fl(w))
		}
		if h := style.GetHeight(); h >= 0 {
			image.Height = bo.FromPoints(Fl(h))
		}
		image.Baseline = image.Height
		return append(atoms, atom{parts: []*bo.Box{image}})
	}

	fd := text.NewFontDescription(style.Properties)
	lineHeight, baseline := c.lineMetrics(style, fd)

	if rot := style.GetRotation(); rot.IsVertical() {
		content := strings.Join(strings.Fields(e.Text), " ")
		if content == "" {
			return atoms
		}
		w, h := c.measure(content, fd).Width, lineHeight.Points()
		tr := matrix.QuarterTurn(int(rot), w, h)
		minX, minY, maxX, maxY := tr.Bounds(w, h)
		leaf := &bo.Box{
			Kind: bo.KText, Element: e, Style: style, Text: content,
			Width: bo.FromPoints(maxX - minX), Height: bo.FromPoints(maxY - minY), Transform: &tr,
		}
		leaf.Baseline = leaf.Height
		return append(atoms, atom{parts: []*bo.Box{leaf}})
	}

	spaceWidth := bo.FromPoints(c.measure(" ", fd).Width)
	for i, seg := range text.Segments(e.Text) {
		a := atom{hardBreak: seg.HardBreak, opening: i != 0}
		if seg.Word != "" {
			a.parts = []*bo.Box{{
				Kind: bo.KText, Element: e, Style: style, Text: seg.Word,
				Width: bo.FromPoints(c.measure(seg.Word, fd).Width), Height: lineHeight, Baseline: baseline,
			}}
		}
		if seg.Space {
			a.space = &bo.Box{Kind: bo.KSpacer, Width: spaceWidth, Height: lineHeight, Baseline: baseline}
		}
		if seg.HardBreak {
			a.strut = &bo.Box{Kind: bo.KSpacer, Height: lineHeight, Baseline: baseline}
		}
		atoms = append(atoms, a)
	}
	return atoms
}

// lineMetrics returns the height of a line of text and the position of its
// baseline. An explicit line height spreads the leading evenly above and below.
func (c *Context) lineMetrics(style *tree.ComputedStyle, fd text.FontDescription) (height, baseline Unit) {
	m := c.measure(" ", fd)
	height, baseline = bo.FromPoints(m.LineHeight), bo.FromPoints(m.Baseline)
	if lh := style.GetLineHeight(); lh > 0 {
		explicit := bo.FromPoints(Fl(lh))
		baseline += (explicit - height) / 2
		height = explicit
	}
	return height, baseline
}

// newLine positions [items] on a line box, aligned on their baselines.
// [glued] leaves are kept next to the previous one when justifying.
func newLine(items []*bo.Box, availableWidth Unit, align string, justify, hard bool, glued map[*bo.Box]bool) *bo.Box {
	line := &bo.Box{Kind: bo.KLine, HardBreak: hard}

	var contentWidth Unit
	for _, item := range items {
		contentWidth += item.Width
	}
	if extra := availableWidth - contentWidth; justify && extra >= 0 {
		if justified, ok := justifyItems(items, extra, glued); ok {
			items = justified
			line.Justified = true
		}
	}

	var ascent, descent Unit
	for _, item := range items {
		ascent = max(ascent, item.Baseline)
		descent = max(descent, item.Height-item.Baseline)
	}
	var x Unit
	for _, item := range items {
		item.X, item.Y = x, ascent-item.Baseline
		x += item.Width
	}
	line.Children = items
	line.Width, line.Height, line.Baseline = x, ascent+descent, ascent

	if free := availableWidth - x; free > 0 {
		switch align {
		case "center":
			line.X = free / 2
		case "right":
			line.X = free
		}
	}
	return line
}

// justifyItems distributes [extra] among the gaps between words.
// Adjacent leaves separated by a break opportunity but no space get
// an empty spacer, so that no spacer is ever inserted next to another one.
// The rounding remainder goes to the last gap.
// It returns false if the line has no gap.
func justifyItems(items []*bo.Box, extra Unit, glued map[*bo.Box]bool) ([]*bo.Box, bool) {
	var out, gaps []*bo.Box
	for i, item := range items {
		if i > 0 && item.IsContent() && out[len(out)-1].IsContent() && !glued[item] {
			gap := bo.NewSpacer(0, 0)
			out = append(out, gap)
			gaps = append(gaps, gap)
		}
		if item.Kind == bo.KSpacer {
			gaps = append(gaps, item)
		}
		out = append(out, item)
	}
	if len(gaps) == 0 {
		return items, false
	}
	n := Unit(len(gaps))
	per, rest := extra/n, extra%n
	for _, gap := range gaps {
		gap.Width += per
	}
	gaps[len(gaps)-1].Width += rest
	return out, true
}
