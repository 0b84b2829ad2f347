package tree

import (
	"fmt"
	"strconv"
	"strings"

	pa "github.com/benoitkugler/reportlayout/css/parser"
	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/textlayout/language"
)

// computerFunc evaluates a declared value. The values of the keys
// listed as requirements are available in [style].
type computerFunc = func(style *ComputedStyle, key pr.KnownProp, raw string) (pr.CssProperty, error)

type computer struct {
	fn       computerFunc
	requires []pr.KnownProp
}

type computerTable = map[pr.KnownProp]computer

var borderWidthKeywords = map[string]pr.Float{
	"thin":   1,
	"medium": 3,
	"thick":  5,
}

var (
	fontRelative = []pr.KnownProp{pr.PFontSize}
	colorBased   = []pr.KnownProp{pr.PColor}
)

// Maps style keys to the functions returning the computed values
var computerFunctions = computerTable{
	pr.PColor:           {fn: color},
	pr.PBackgroundColor: {fn: color, requires: colorBased},
	pr.PFontFamily:      {fn: fontFamily},
	pr.PFontSize:        {fn: fontSize},
	pr.PFontWeight:      {fn: fontWeight},
	pr.PFontStyle:       {fn: fontStyle},
	pr.PLang:            {fn: lang},
	pr.PTextAlign:       {fn: keyword("left", "center", "right", "justify")},
	pr.PVerticalAlign:   {fn: keyword("top", "middle", "bottom")},
	pr.PRotation:        {fn: rotation},
	pr.PLineHeight:      {fn: lineHeight, requires: fontRelative},
	pr.PLetterSpacing:   {fn: length, requires: fontRelative},

	pr.PPaddingTop:        {fn: length, requires: fontRelative},
	pr.PBorderTopWidth:    {fn: borderWidth, requires: fontRelative},
	pr.PBorderTopStyle:    {fn: borderStyle},
	pr.PBorderTopColor:    {fn: color, requires: colorBased},
	pr.PPaddingRight:      {fn: length, requires: fontRelative},
	pr.PBorderRightWidth:  {fn: borderWidth, requires: fontRelative},
	pr.PBorderRightStyle:  {fn: borderStyle},
	pr.PBorderRightColor:  {fn: color, requires: colorBased},
	pr.PPaddingBottom:     {fn: length, requires: fontRelative},
	pr.PBorderBottomWidth: {fn: borderWidth, requires: fontRelative},
	pr.PBorderBottomStyle: {fn: borderStyle},
	pr.PBorderBottomColor: {fn: color, requires: colorBased},
	pr.PPaddingLeft:       {fn: length, requires: fontRelative},
	pr.PBorderLeftWidth:   {fn: borderWidth, requires: fontRelative},
	pr.PBorderLeftStyle:   {fn: borderStyle},
	pr.PBorderLeftColor:   {fn: color, requires: colorBased},

	pr.PWidth:            {fn: autoLength, requires: fontRelative},
	pr.PHeight:           {fn: autoLength, requires: fontRelative},
	pr.PMinHeight:        {fn: length, requires: fontRelative},
	pr.PBreakBefore:      {fn: keyword("auto", "page", "avoid")},
	pr.PBreakAfter:       {fn: keyword("auto", "page", "avoid")},
	pr.PAvoidBreakInside: {fn: boolean},
	pr.PRepeat:           {fn: keyword("none", "header", "footer")},
	pr.PAnchorName:       {fn: str},
	pr.PVisibility:       {fn: keyword("visible", "hidden")},
	pr.PLayout:           {fn: keyword("block", "row")},
}

// color resolves named colors, hash notations, color functions and
// 'currentColor'.
func color(style *ComputedStyle, key pr.KnownProp, raw string) (pr.CssProperty, error) {
	c, err := pa.ParseColorString(raw)
	if err != nil {
		return nil, err
	}
	if c.Type != pa.ColorCurrentColor {
		return pr.Color(c), nil
	}
	if key != pr.PColor {
		return style.Properties[pr.PColor], nil
	}
	// for the color key, currentColor is the parent foreground color
	if style.Parent != nil {
		return style.Parent.Properties[pr.PColor], nil
	}
	return pr.Color(pa.Black), nil
}

func fontFamily(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	family := strings.Trim(strings.TrimSpace(raw), `"'`)
	if family == "" {
		return nil, fmt.Errorf("empty font family")
	}
	return pr.String(family), nil
}

// fontSize resolves relative sizes against the parent font size.
func fontSize(style *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	parentSize := pr.InitialValues.GetFontSize()
	if style.Parent != nil {
		parentSize = style.Parent.GetFontSize()
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "smaller":
		return parentSize / 1.2, nil
	case "larger":
		return parentSize * 1.2, nil
	}
	dim, err := pa.ParseDimension(raw)
	if err != nil {
		return nil, err
	}
	v := dim.ToPoints(Fl(parentSize))
	if v <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %g", v)
	}
	return pr.Float(v), nil
}

func fontWeight(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "bold", "bolder", "true":
		return pr.Bool(true), nil
	case "normal", "lighter", "false":
		return pr.Bool(false), nil
	}
	w, err := strconv.Atoi(s)
	if err != nil || w < 1 || w > 1000 {
		return nil, fmt.Errorf("invalid font weight %q", raw)
	}
	return pr.Bool(w >= 600), nil
}

func fontStyle(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	s, err := pa.ParseKeyword(raw, "normal", "italic", "oblique", "true", "false")
	if err != nil {
		return nil, err
	}
	return pr.Bool(s == "italic" || s == "oblique" || s == "true"), nil
}

// lang normalizes the language tag
func lang(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return pr.String(""), nil
	}
	for _, r := range s {
		if !(r == '-' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return nil, fmt.Errorf("invalid language tag %q", raw)
		}
	}
	return pr.String(language.NewLanguage(s)), nil
}

func keyword(allowed ...string) computerFunc {
	return func(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
		s, err := pa.ParseKeyword(raw, allowed...)
		if err != nil {
			return nil, err
		}
		return pr.String(s), nil
	}
}

func rotation(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "none" {
		return pr.Rotation(0), nil
	}
	deg, err := strconv.Atoi(strings.TrimSuffix(s, "deg"))
	if err != nil {
		return nil, fmt.Errorf("invalid rotation %q", raw)
	}
	return pr.NewRotation(deg)
}

// lineHeight accepts 'normal', a multiplier of the font size or a length.
func lineHeight(style *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	if strings.ToLower(strings.TrimSpace(raw)) == "normal" {
		return pr.Float(0), nil
	}
	dim, err := pa.ParseDimension(raw)
	if err != nil {
		return nil, err
	}
	fontSize := Fl(style.GetFontSize())
	var v Fl
	if dim.Unit == pa.Scalar {
		v = dim.Value * fontSize
	} else {
		v = dim.ToPoints(fontSize)
	}
	if v < 0 {
		return nil, fmt.Errorf("negative line height %q", raw)
	}
	return pr.Float(v), nil
}

// length accepts absolute lengths and lengths relative to the font size.
func length(style *ComputedStyle, key pr.KnownProp, raw string) (pr.CssProperty, error) {
	dim, err := pa.ParseDimension(raw)
	if err != nil {
		return nil, err
	}
	if dim.Unit == pa.Perc {
		return nil, fmt.Errorf("percentages are not supported for %s", key)
	}
	v := dim.ToPoints(Fl(style.GetFontSize()))
	if v < 0 && key != pr.PLetterSpacing {
		return nil, fmt.Errorf("negative length %q", raw)
	}
	return pr.Float(v), nil
}

func autoLength(style *ComputedStyle, key pr.KnownProp, raw string) (pr.CssProperty, error) {
	if strings.ToLower(strings.TrimSpace(raw)) == "auto" {
		return pr.Float(-1), nil
	}
	return length(style, key, raw)
}

func borderWidth(style *ComputedStyle, key pr.KnownProp, raw string) (pr.CssProperty, error) {
	if v, ok := borderWidthKeywords[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v, nil
	}
	return length(style, key, raw)
}

func borderStyle(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	s, err := pa.ParseKeyword(raw, "none", "hidden", "solid", "dashed", "dotted", "double")
	if err != nil {
		return nil, err
	}
	return pr.String(s), nil
}

func boolean(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}
	return pr.Bool(b), nil
}

func str(_ *ComputedStyle, _ pr.KnownProp, raw string) (pr.CssProperty, error) {
	return pr.String(raw), nil
}
