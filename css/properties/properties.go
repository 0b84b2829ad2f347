package properties

import (
	"github.com/benoitkugler/reportlayout/css/parser"
)

const (
	_ KnownProp = iota
	PColor
	PBackgroundColor
	PFontFamily
	PFontSize
	PFontWeight
	PFontStyle
	PLang
	PTextAlign
	PVerticalAlign
	PRotation
	PLineHeight
	PLetterSpacing

	// the following properties are grouped by side,
	// in the [top, right, bottom, left] order,
	// so that, if side in an index (0, 1, 2 or 3),
	// the property is a PPaddingTop + side * 4
	// DO NOT CHANGE the order
	PPaddingTop
	PBorderTopWidth
	PBorderTopStyle
	PBorderTopColor

	PPaddingRight
	PBorderRightWidth
	PBorderRightStyle
	PBorderRightColor

	PPaddingBottom
	PBorderBottomWidth
	PBorderBottomStyle
	PBorderBottomColor

	PPaddingLeft
	PBorderLeftWidth
	PBorderLeftStyle
	PBorderLeftColor

	PWidth
	PHeight
	PMinHeight
	PBreakBefore
	PBreakAfter
	PAvoidBreakInside
	PRepeat
	PAnchorName
	PVisibility
	PLayout

	NbProperties
)

// Side is an index in [top, right, bottom, left]
type Side uint8

const (
	STop Side = iota
	SRight
	SBottom
	SLeft
)

// Padding returns the padding property for the side.
func (s Side) Padding() KnownProp { return PPaddingTop + KnownProp(s)*4 }

// BorderWidth returns the border-xxx-width property for the side.
func (s Side) BorderWidth() KnownProp { return PBorderTopWidth + KnownProp(s)*4 }

// BorderStyle returns the border-xxx-style property for the side.
func (s Side) BorderStyle() KnownProp { return PBorderTopStyle + KnownProp(s)*4 }

// BorderColor returns the border-xxx-color property for the side.
func (s Side) BorderColor() KnownProp { return PBorderTopColor + KnownProp(s)*4 }

var propsNames = [NbProperties]string{
	PColor:             "color",
	PBackgroundColor:   "background-color",
	PFontFamily:        "font-family",
	PFontSize:          "font-size",
	PFontWeight:        "font-weight",
	PFontStyle:         "font-style",
	PLang:              "lang",
	PTextAlign:         "text-align",
	PVerticalAlign:     "vertical-align",
	PRotation:          "rotation",
	PLineHeight:        "line-height",
	PLetterSpacing:     "letter-spacing",
	PPaddingTop:        "padding-top",
	PBorderTopWidth:    "border-top-width",
	PBorderTopStyle:    "border-top-style",
	PBorderTopColor:    "border-top-color",
	PPaddingRight:      "padding-right",
	PBorderRightWidth:  "border-right-width",
	PBorderRightStyle:  "border-right-style",
	PBorderRightColor:  "border-right-color",
	PPaddingBottom:     "padding-bottom",
	PBorderBottomWidth: "border-bottom-width",
	PBorderBottomStyle: "border-bottom-style",
	PBorderBottomColor: "border-bottom-color",
	PPaddingLeft:       "padding-left",
	PBorderLeftWidth:   "border-left-width",
	PBorderLeftStyle:   "border-left-style",
	PBorderLeftColor:   "border-left-color",
	PWidth:             "width",
	PHeight:            "height",
	PMinHeight:         "min-height",
	PBreakBefore:       "break-before",
	PBreakAfter:        "break-after",
	PAvoidBreakInside:  "avoid-break-inside",
	PRepeat:            "repeat",
	PAnchorName:        "anchor-name",
	PVisibility:        "visibility",
	PLayout:            "layout",
}

var propsByName = func() map[string]KnownProp {
	out := make(map[string]KnownProp, len(propsNames))
	for p, name := range propsNames {
		if name != "" {
			out[name] = KnownProp(p)
		}
	}
	return out
}()

// PropsFromNames returns the known property with the given name,
// or 0 if the name is unknown.
func PropsFromNames(name string) KnownProp { return propsByName[name] }

// AllProps returns the known properties, in declaration order.
func AllProps() []KnownProp {
	out := make([]KnownProp, 0, NbProperties-1)
	for p := KnownProp(1); p < NbProperties; p++ {
		out = append(out, p)
	}
	return out
}

// Inherited are the properties taken from the parent when not declared.
var Inherited = map[KnownProp]bool{
	PColor:         true,
	PFontFamily:    true,
	PFontSize:      true,
	PFontWeight:    true,
	PFontStyle:     true,
	PLang:          true,
	PTextAlign:     true,
	PLineHeight:    true,
	PLetterSpacing: true,
	PVisibility:    true,
}

// InitialValues stores the default values for the style keys.
// They are also the values substituted when a declaration can't be resolved.
var InitialValues = Properties{
	PColor:           Color(parser.Black),
	PBackgroundColor: Color{Type: parser.ColorRGBA}, // transparent
	PFontFamily:      String("SansSerif"),
	PFontSize:        Float(10),
	PFontWeight:      Bool(false), // bold
	PFontStyle:       Bool(false), // italic
	PLang:            String(""),
	PTextAlign:       String("left"),
	PVerticalAlign:   String("top"),
	PRotation:        Rotation(0),
	PLineHeight:      Float(0), // computed value for "normal"
	PLetterSpacing:   Float(0),

	PPaddingTop:        Float(0),
	PBorderTopWidth:    Float(0),
	PBorderTopStyle:    String("none"),
	PBorderTopColor:    CurrentColor,
	PPaddingRight:      Float(0),
	PBorderRightWidth:  Float(0),
	PBorderRightStyle:  String("none"),
	PBorderRightColor:  CurrentColor,
	PPaddingBottom:     Float(0),
	PBorderBottomWidth: Float(0),
	PBorderBottomStyle: String("none"),
	PBorderBottomColor: CurrentColor,
	PPaddingLeft:       Float(0),
	PBorderLeftWidth:   Float(0),
	PBorderLeftStyle:   String("none"),
	PBorderLeftColor:   CurrentColor,

	PWidth:            Float(-1), // computed value for "auto"
	PHeight:           Float(-1), // computed value for "auto"
	PMinHeight:        Float(0),
	PBreakBefore:      String("auto"),
	PBreakAfter:       String("auto"),
	PAvoidBreakInside: Bool(false),
	PRepeat:           String("none"),
	PAnchorName:       String(""),
	PVisibility:       String("visible"),
	PLayout:           String("block"), // or "row"
}
