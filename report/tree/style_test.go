package tree

import (
	"errors"
	"testing"

	pa "github.com/benoitkugler/reportlayout/css/parser"
	pr "github.com/benoitkugler/reportlayout/css/properties"
	tu "github.com/benoitkugler/reportlayout/utils/testutils"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver()
	require.NoError(t, err)
	return r
}

func red() pr.Color { c, _ := pa.ParseColorString("red"); return pr.Color(c) }

func TestOrderRespectsRequirements(t *testing.T) {
	r := newTestResolver(t)
	position := map[pr.KnownProp]int{}
	for i, p := range r.Order() {
		position[p] = i
	}
	tu.AssertEqual(t, len(position), int(pr.NbProperties)-1)
	for key, comp := range computerFunctions {
		for _, dep := range comp.requires {
			if position[dep] >= position[key] {
				t.Fatalf("%s resolved before its requirement %s", key, dep)
			}
		}
	}
}

func TestCycle(t *testing.T) {
	table := computerTable{
		pr.PColor:    {fn: color, requires: []pr.KnownProp{pr.PFontSize}},
		pr.PFontSize: {fn: fontSize, requires: []pr.KnownProp{pr.PLineHeight}},
		pr.PLineHeight: {
			fn: lineHeight, requires: []pr.KnownProp{pr.PColor},
		},
	}
	_, err := newResolver(table)
	if !errors.Is(err, ErrStyleCycle) {
		t.Fatalf("expected a cycle error, got %v", err)
	}
}

func TestInheritance(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	child := &Element{ID: "child", Kind: KindText, Text: "a"}
	root := &Element{ID: "root", Kind: KindBand, Style: map[string]string{
		"color":       "red",
		"font-size":   "12pt",
		"padding-top": "4pt",
		"text-align":  "justify",
	}, Children: []*Element{child}}

	styles := newTestResolver(t).ComputeAll(root)
	cs := styles[child]
	tu.AssertEqual(t, cs.GetColor(), red())
	tu.AssertEqual(t, cs.GetFontSize(), pr.Float(12))
	tu.AssertEqual(t, cs.GetTextAlign(), pr.String("justify"))
	// padding is not inherited
	tu.AssertEqual(t, cs.GetPadding(pr.STop), pr.Float(0))
	tu.AssertEqual(t, styles[root].GetPadding(pr.STop), pr.Float(4))
	tu.AssertEqual(t, cs.Parent, styles[root])
}

func TestCurrentColor(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	r := newTestResolver(t)
	parent := r.ComputeStyle(&Element{Style: map[string]string{"color": "red"}}, nil)

	// on color, currentColor is the parent color
	e := &Element{Style: map[string]string{
		"color":            "currentColor",
		"background-color": "blue",
	}}
	tu.AssertEqual(t, r.Resolve(e, parent, pr.PColor), red())

	// on other keys, it is the element color
	e = &Element{Style: map[string]string{
		"color":             "rgb(0, 0, 255)",
		"border-top-color":  "currentColor",
		"background-color":  "currentColor",
		"border-left-style": "solid",
	}}
	cs := r.ComputeStyle(e, parent)
	blue, _ := pa.ParseColorString("blue")
	tu.AssertEqual(t, cs.GetBorderColor(pr.STop), pr.Color(blue))
	tu.AssertEqual(t, cs.GetBackgroundColor(), pr.Color(blue))
	// implicit currentColor
	tu.AssertEqual(t, cs.GetBorderColor(pr.SLeft), pr.Color(blue))

	// at the root, currentColor on color is black
	tu.AssertEqual(t, r.Resolve(&Element{Style: map[string]string{"color": "currentcolor"}}, nil, pr.PColor), pr.Color(pa.Black))
}

func TestInheritInitial(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	r := newTestResolver(t)
	parent := r.ComputeStyle(&Element{Style: map[string]string{"color": "red", "padding-left": "3pt"}}, nil)
	cs := r.ComputeStyle(&Element{Style: map[string]string{"color": "initial", "padding-left": "inherit"}}, parent)
	tu.AssertEqual(t, cs.GetColor(), pr.Color(pa.Black))
	tu.AssertEqual(t, cs.GetPadding(pr.SLeft), pr.Float(3))
}

func TestInvalidValues(t *testing.T) {
	logs := tu.CaptureLogs()

	r := newTestResolver(t)
	cs := r.ComputeStyle(&Element{ID: "label", Style: map[string]string{
		"color":            "lab(10, 20, 30)", // unknown function
		"background-color": "not-a-color",
		"font-size":        "big",
		"text-align":       "middle",
		"rotation":         "45",
		"padding-top":      "12%",
	}}, nil)

	tu.AssertEqual(t, cs.GetColor(), pr.Color(pa.Black))
	tu.AssertEqual(t, cs.GetBackgroundColor(), pr.Color(pa.Black))
	tu.AssertEqual(t, cs.GetFontSize(), pr.InitialValues.GetFontSize())
	tu.AssertEqual(t, cs.GetTextAlign(), pr.String("left"))
	tu.AssertEqual(t, cs.GetRotation(), pr.Rotation(0))
	tu.AssertEqual(t, cs.GetPadding(pr.STop), pr.Float(0))

	logs.CheckLogs(t, 6)
}

func TestRelativeLengths(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	r := newTestResolver(t)
	parent := r.ComputeStyle(&Element{Style: map[string]string{"font-size": "10pt"}}, nil)
	cs := r.ComputeStyle(&Element{Style: map[string]string{
		"font-size":        "2em",
		"line-height":      "1.5",
		"padding-bottom":   "0.5em",
		"border-top-width": "thin",
		"width":            "auto",
		"height":           "1in",
		"font-weight":      "700",
		"font-style":       "italic",
		"lang":             "fr_FR",
		"rotation":         "-90",
	}}, parent)
	tu.AssertEqual(t, cs.GetFontSize(), pr.Float(20))
	tu.AssertEqual(t, cs.GetLineHeight(), pr.Float(30))
	tu.AssertEqual(t, cs.GetPadding(pr.SBottom), pr.Float(10))
	tu.AssertEqual(t, cs.GetBorderWidth(pr.STop), pr.Float(1))
	tu.AssertEqual(t, cs.GetWidth(), pr.Float(-1))
	tu.AssertEqual(t, cs.GetHeight(), pr.Float(72))
	tu.AssertEqual(t, cs.GetFontWeight(), pr.Bool(true))
	tu.AssertEqual(t, cs.GetFontStyle(), pr.Bool(true))
	tu.AssertEqual(t, cs.GetLang(), pr.String("fr-fr"))
	tu.AssertEqual(t, cs.GetRotation(), pr.Rotation(-90))
}

func TestFingerprint(t *testing.T) {
	build := func(text string) *Element {
		return &Element{ID: "root", Kind: KindBand, Style: map[string]string{"color": "red"}, Children: []*Element{
			{ID: "l1", Kind: KindText, Text: text},
		}}
	}
	tu.AssertEqual(t, build("a").Fingerprint(), build("a").Fingerprint())
	if build("a").Fingerprint() == build("b").Fingerprint() {
		t.Fatal("fingerprint should depend on descendants content")
	}
	e := build("a")
	before := e.Fingerprint()
	e.Style["color"] = "blue"
	if e.Fingerprint() == before {
		t.Fatal("fingerprint should depend on style")
	}
	tu.AssertEqual(t, e.Find("l1").Text, "a")
	tu.AssertEqual(t, e.Find("missing") == nil, true)
}

func TestElementKind(t *testing.T) {
	for k := KindText; k <= KindPageBreak; k++ {
		parsed, err := ParseElementKind(k.String())
		require.NoError(t, err)
		tu.AssertEqual(t, parsed, k)
	}
	_, err := ParseElementKind("chart")
	require.Error(t, err)
}
