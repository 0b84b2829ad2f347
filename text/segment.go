package text

import (
	"strings"
	"unicode"

	"github.com/go-text/typesetting/segmenter"
)

// Segment is the text between two line break opportunities.
type Segment struct {
	Word string // without the trailing whitespace, may be empty

	// Space is true if the word is followed by collapsible whitespace.
	Space bool

	// HardBreak is true if the segment ends with a forced line break.
	HardBreak bool
}

// Segments splits [text] at the line break opportunities
// defined by the Unicode line breaking algorithm.
// Runs of whitespace collapse to a single space and '\n' is a forced break.
func Segments(text string) []Segment {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var (
		seg segmenter.Segmenter
		out []Segment
	)
	seg.Init(runes)
	iter := seg.LineIterator()
	for iter.Next() {
		line := iter.Line()
		out = append(out, splitLineSegment(line.Text)...)
	}
	return out
}

// splitLineSegment handles one chunk returned by the segmenter,
// made of a word, optional whitespace and an optional forced break.
func splitLineSegment(chunk []rune) []Segment {
	var (
		out     []Segment
		current Segment
		word    []rune
	)
	flushWord := func() {
		if len(word) != 0 {
			if current.Space || current.HardBreak {
				out = append(out, current)
				current = Segment{}
			}
			current.Word += string(word)
			word = word[:0]
		}
	}
	for _, r := range chunk {
		switch {
		case r == '\n' || r == '\u2028' || r == '\u2029':
			flushWord()
			current.HardBreak = true
			out = append(out, current)
			current = Segment{}
		case unicode.IsSpace(r) && r != '\u00a0' && r != '\u202f':
			flushWord()
			current.Space = true
		default:
			word = append(word, r)
		}
	}
	flushWord()
	if current != (Segment{}) {
		out = append(out, current)
	}
	return out
}
