// Package tree implements the content tree consumed by the layout engine
// and the style cascade computing the style of each element.
package tree

import (
	"fmt"
	"strconv"

	"github.com/benoitkugler/reportlayout/utils"
)

type Fl = utils.Fl

// ElementKind is the type of a report element.
type ElementKind uint8

const (
	_ ElementKind = iota
	KindText
	KindImage
	KindBand
	KindContainer
	KindSubreport // placeholder for a sub-report instance
	KindPageBreak
)

var kindNames = [...]string{
	KindText:      "text",
	KindImage:     "image",
	KindBand:      "band",
	KindContainer: "container",
	KindSubreport: "subreport",
	KindPageBreak: "page-break",
}

func (k ElementKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("<invalid kind %d>", k)
}

// ParseElementKind is the inverse of [ElementKind.String].
func ParseElementKind(s string) (ElementKind, error) {
	for k, name := range kindNames {
		if name != "" && name == s {
			return ElementKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown element kind %q", s)
}

// IsInline returns true for elements flowed inside paragraphs.
func (k ElementKind) IsInline() bool { return k == KindText || k == KindImage }

// Element is a node of the report content tree.
// It is owned by the caller and must not be mutated during a layout pass.
type Element struct {
	// ID identifies the element across passes and rendering contexts.
	ID   string
	Kind ElementKind

	// Style stores the declared (raw) values, by style key.
	Style map[string]string

	Text string // for [KindText]

	// Intrinsic size of images, in points.
	ImageWidth, ImageHeight Fl

	Children []*Element
}

// Fingerprint hashes everything affecting the layout of the element
// and its descendants : kind, declared style, content and children.
// It is used to detect stale cached layouts.
func (e *Element) Fingerprint() uint64 {
	h := utils.NewHasher()
	e.writeFingerprint(h)
	return h.Sum64()
}

func (e *Element) writeFingerprint(h utils.Hasher) {
	h.WriteString(e.Kind.String(), e.Text,
		strconv.FormatFloat(float64(e.ImageWidth), 'g', -1, 32),
		strconv.FormatFloat(float64(e.ImageHeight), 'g', -1, 32),
		strconv.Itoa(len(e.Style)))
	h.WriteMap(e.Style)
	h.WriteString(strconv.Itoa(len(e.Children)))
	for _, child := range e.Children {
		child.writeFingerprint(h)
	}
}

// Walk calls fn for e and all its descendants, in document order.
// The walk stops early if fn returns false.
func (e *Element) Walk(fn func(e *Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, child := range e.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first element with the given ID, or nil.
func (e *Element) Find(id string) *Element {
	var out *Element
	e.Walk(func(c *Element) bool {
		if c.ID == id {
			out = c
			return false
		}
		return true
	})
	return out
}
