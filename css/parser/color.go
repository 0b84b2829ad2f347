package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/reportlayout/utils"
)

type Fl = utils.Fl

type ColorType uint8

const (
	ColorInvalid ColorType = iota
	ColorCurrentColor
	ColorRGBA
)

// RGBA values are in [0, 1]
type RGBA struct {
	R, G, B, A Fl
}

func (c RGBA) IsNone() bool {
	return c == RGBA{}
}

type Color struct {
	Type ColorType
	RGBA RGBA
}

func (c Color) IsNone() bool {
	return c.Type == ColorInvalid
}

func (c Color) String() string {
	switch c.Type {
	case ColorCurrentColor:
		return "currentColor"
	case ColorRGBA:
		return fmt.Sprintf("rgba(%d, %d, %d, %g)",
			int(math.Round(float64(c.RGBA.R*255))), int(math.Round(float64(c.RGBA.G*255))),
			int(math.Round(float64(c.RGBA.B*255))), c.RGBA.A)
	default:
		return "<invalid color>"
	}
}

func rgb(r, g, b uint8) Color {
	return Color{Type: ColorRGBA, RGBA: RGBA{Fl(r) / 255, Fl(g) / 255, Fl(b) / 255, 1}}
}

// the sixteen HTML 4 colors, plus a few common extended keywords
var namedColors = map[string]Color{
	"black":       rgb(0, 0, 0),
	"silver":      rgb(192, 192, 192),
	"gray":        rgb(128, 128, 128),
	"grey":        rgb(128, 128, 128),
	"white":       rgb(255, 255, 255),
	"maroon":      rgb(128, 0, 0),
	"red":         rgb(255, 0, 0),
	"purple":      rgb(128, 0, 128),
	"fuchsia":     rgb(255, 0, 255),
	"magenta":     rgb(255, 0, 255),
	"green":       rgb(0, 128, 0),
	"lime":        rgb(0, 255, 0),
	"olive":       rgb(128, 128, 0),
	"yellow":      rgb(255, 255, 0),
	"navy":        rgb(0, 0, 128),
	"blue":        rgb(0, 0, 255),
	"teal":        rgb(0, 128, 128),
	"aqua":        rgb(0, 255, 255),
	"cyan":        rgb(0, 255, 255),
	"orange":      rgb(255, 165, 0),
	"darkgray":    rgb(169, 169, 169),
	"lightgray":   rgb(211, 211, 211),
	"transparent": {Type: ColorRGBA},
}

// Black is the fallback used whenever a color can't be resolved.
var Black = namedColors["black"]

// ParseColorString parses a color keyword, an hexadecimal color (#rgb, #rrggbb,
// #rrggbbaa) or a color function (rgb, rgba, hsl, hsla).
// It returns an error for unknown keywords and malformed input.
func ParseColorString(raw string) (Color, error) {
	s := strings.TrimSpace(raw)
	lower := utils.AsciiLower(s)
	if lower == "currentcolor" {
		return Color{Type: ColorCurrentColor}, nil
	}
	if c, ok := namedColors[lower]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHash(s[1:])
	}
	fn, err := ParseFunction(s)
	if err != nil {
		return Color{}, err
	}
	return EvalColorFunction(fn)
}

func parseHash(hex string) (Color, error) {
	expand := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String()
	}
	switch len(hex) {
	case 3, 4:
		hex = expand(hex)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("invalid hash color #%s", hex)
	}
	var channels [4]Fl
	channels[3] = 1
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hash color #%s: %w", hex, err)
		}
		channels[i] = Fl(v) / 255
	}
	return Color{Type: ColorRGBA, RGBA: RGBA{channels[0], channels[1], channels[2], channels[3]}}, nil
}

// EvalColorFunction evaluates rgb(), rgba(), hsl() and hsla().
func EvalColorFunction(fn Function) (Color, error) {
	switch fn.Name {
	case "rgb", "rgba":
		if len(fn.Args) != 3 && len(fn.Args) != 4 {
			return Color{}, fmt.Errorf("%s() expects 3 or 4 arguments, got %d", fn.Name, len(fn.Args))
		}
		var out RGBA
		for i, dst := range []*Fl{&out.R, &out.G, &out.B} {
			v, err := parseChannel(fn.Args[i], 255)
			if err != nil {
				return Color{}, err
			}
			*dst = v
		}
		alpha, err := parseAlpha(fn.Args[3:])
		if err != nil {
			return Color{}, err
		}
		out.A = alpha
		return Color{Type: ColorRGBA, RGBA: out}, nil
	case "hsl", "hsla":
		if len(fn.Args) != 3 && len(fn.Args) != 4 {
			return Color{}, fmt.Errorf("%s() expects 3 or 4 arguments, got %d", fn.Name, len(fn.Args))
		}
		hue, err := strconv.ParseFloat(strings.TrimSuffix(fn.Args[0], "deg"), 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hue %q", fn.Args[0])
		}
		sat, err := parsePercentage(fn.Args[1])
		if err != nil {
			return Color{}, err
		}
		light, err := parsePercentage(fn.Args[2])
		if err != nil {
			return Color{}, err
		}
		alpha, err := parseAlpha(fn.Args[3:])
		if err != nil {
			return Color{}, err
		}
		r, g, b := hslToRGB(Fl(hue), sat, light)
		return Color{Type: ColorRGBA, RGBA: RGBA{r, g, b, alpha}}, nil
	default:
		return Color{}, fmt.Errorf("unknown color function %s()", fn.Name)
	}
}

// parseChannel accepts a number in [0, max] or a percentage.
func parseChannel(arg string, max Fl) (Fl, error) {
	if strings.HasSuffix(arg, "%") {
		return parsePercentage(arg)
	}
	v, err := strconv.ParseFloat(arg, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color channel %q", arg)
	}
	return utils.Clamp(Fl(v)/max, 0, 1), nil
}

func parsePercentage(arg string) (Fl, error) {
	if !strings.HasSuffix(arg, "%") {
		return 0, fmt.Errorf("expected a percentage, got %q", arg)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 32)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", arg)
	}
	return utils.Clamp(Fl(v)/100, 0, 1), nil
}

func parseAlpha(args []string) (Fl, error) {
	if len(args) == 0 {
		return 1, nil
	}
	return parseChannel(args[0], 1)
}

func hslToRGB(hue, sat, light Fl) (r, g, b Fl) {
	hue = Fl(math.Mod(float64(hue), 360))
	if hue < 0 {
		hue += 360
	}
	hue /= 360
	var m2 Fl
	if light <= 0.5 {
		m2 = light * (sat + 1)
	} else {
		m2 = light + sat - light*sat
	}
	m1 := light*2 - m2
	return hueToRGB(m1, m2, hue+1./3), hueToRGB(m1, m2, hue), hueToRGB(m1, m2, hue-1./3)
}

func hueToRGB(m1, m2, h Fl) Fl {
	if h < 0 {
		h += 1
	}
	if h > 1 {
		h -= 1
	}
	switch {
	case h*6 < 1:
		return m1 + (m2-m1)*h*6
	case h*2 < 1:
		return m2
	case h*3 < 2:
		return m1 + (m2-m1)*(2./3-h)*6
	default:
		return m1
	}
}
