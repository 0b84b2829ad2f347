package parser

import (
	"testing"

	tu "github.com/benoitkugler/reportlayout/utils/testutils"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		input string
		exp   Color
	}{
		{"red", rgb(255, 0, 0)},
		{"  BLUE ", rgb(0, 0, 255)},
		{"#f00", rgb(255, 0, 0)},
		{"#00ff00", rgb(0, 255, 0)},
		{"#0000ff80", Color{Type: ColorRGBA, RGBA: RGBA{0, 0, 1, 128. / 255}}},
		{"rgb(255, 0, 0)", rgb(255, 0, 0)},
		{"rgb(0 0 255)", rgb(0, 0, 255)},
		{"rgba(0, 0, 0, 0.5)", Color{Type: ColorRGBA, RGBA: RGBA{0, 0, 0, 0.5}}},
		{"rgb(100%, 0%, 0%)", rgb(255, 0, 0)},
		{"hsl(0, 100%, 50%)", rgb(255, 0, 0)},
		{"hsl(120deg, 100%, 50%)", rgb(0, 255, 0)},
		{"currentColor", Color{Type: ColorCurrentColor}},
		{"transparent", Color{Type: ColorRGBA}},
	} {
		got, err := ParseColorString(test.input)
		if err != nil {
			t.Fatalf("%s: %s", test.input, err)
		}
		tu.AssertEqual(t, got.Type, test.exp.Type)
		for i, v := range [4]Fl{got.RGBA.R, got.RGBA.G, got.RGBA.B, got.RGBA.A} {
			e := [4]Fl{test.exp.RGBA.R, test.exp.RGBA.G, test.exp.RGBA.B, test.exp.RGBA.A}[i]
			if d := v - e; d > 1e-5 || d < -1e-5 {
				t.Fatalf("%s: channel %d: expected %g, got %g", test.input, i, e, v)
			}
		}
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, input := range []string{
		"", "reddish", "#12", "#ggg", "rgb(1, 2)", "lab(1, 2, 3)", "rgb(a, b, c)",
		"hsl(0, 10, 10)", "rgb(rgb(1,2,3), 1, 1)",
	} {
		if _, err := ParseColorString(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestParseFunction(t *testing.T) {
	fn, err := ParseFunction("RGBA( 1, 2 3 / 0.4 )")
	if err != nil {
		t.Fatal(err)
	}
	tu.AssertEqual(t, fn, Function{Name: "rgba", Args: []string{"1", "2", "3", "0.4"}})

	_, err = ParseFunction("plain")
	if !IsNotAFunction(err) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDimension(t *testing.T) {
	for _, test := range []struct {
		input     string
		reference Fl
		exp       Fl
	}{
		{"12", 0, 12},
		{"12pt", 0, 12},
		{"16px", 0, 12},
		{"1in", 0, 72},
		{"2.54cm", 0, 72},
		{"50%", 200, 100},
		{"1.5em", 10, 15},
	} {
		d, err := ParseDimension(test.input)
		if err != nil {
			t.Fatal(err)
		}
		if got := d.ToPoints(test.reference); got-test.exp > 1e-3 || test.exp-got > 1e-3 {
			t.Fatalf("%s: expected %g, got %g", test.input, test.exp, got)
		}
	}
	if _, err := ParseDimension("12 apples"); err == nil {
		t.Fatal("expected error")
	}
}

func TestKeyword(t *testing.T) {
	kw, err := ParseKeyword(" Justify", "left", "justify")
	if err != nil {
		t.Fatal(err)
	}
	tu.AssertEqual(t, kw, "justify")
	if _, err = ParseKeyword("middle", "left"); err == nil {
		t.Fatal("expected error")
	}
}
