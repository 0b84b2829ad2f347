package properties

// Typed accessors. They panic if the key is missing or has an unexpected
// type, which is a programming error: computed styles are always complete.

func (s Properties) GetColor() Color           { return s[PColor].(Color) }
func (s Properties) GetBackgroundColor() Color { return s[PBackgroundColor].(Color) }
func (s Properties) GetFontFamily() String     { return s[PFontFamily].(String) }
func (s Properties) GetFontSize() Float        { return s[PFontSize].(Float) }
func (s Properties) GetFontWeight() Bool       { return s[PFontWeight].(Bool) }
func (s Properties) GetFontStyle() Bool        { return s[PFontStyle].(Bool) }
func (s Properties) GetLang() String           { return s[PLang].(String) }
func (s Properties) GetTextAlign() String      { return s[PTextAlign].(String) }
func (s Properties) GetVerticalAlign() String  { return s[PVerticalAlign].(String) }
func (s Properties) GetRotation() Rotation     { return s[PRotation].(Rotation) }
func (s Properties) GetLineHeight() Float      { return s[PLineHeight].(Float) }
func (s Properties) GetLetterSpacing() Float   { return s[PLetterSpacing].(Float) }

func (s Properties) GetPadding(side Side) Float      { return s[side.Padding()].(Float) }
func (s Properties) GetBorderWidth(side Side) Float  { return s[side.BorderWidth()].(Float) }
func (s Properties) GetBorderStyle(side Side) String { return s[side.BorderStyle()].(String) }
func (s Properties) GetBorderColor(side Side) Color  { return s[side.BorderColor()].(Color) }

func (s Properties) GetWidth() Float           { return s[PWidth].(Float) }
func (s Properties) GetHeight() Float          { return s[PHeight].(Float) }
func (s Properties) GetMinHeight() Float       { return s[PMinHeight].(Float) }
func (s Properties) GetBreakBefore() String    { return s[PBreakBefore].(String) }
func (s Properties) GetBreakAfter() String     { return s[PBreakAfter].(String) }
func (s Properties) GetAvoidBreakInside() Bool { return s[PAvoidBreakInside].(Bool) }
func (s Properties) GetRepeat() String         { return s[PRepeat].(String) }
func (s Properties) GetAnchorName() String     { return s[PAnchorName].(String) }
func (s Properties) GetVisibility() String     { return s[PVisibility].(String) }
func (s Properties) GetLayout() String         { return s[PLayout].(String) }

// HasVisibleBorder returns true if the border of the given side is drawn.
func (s Properties) HasVisibleBorder(side Side) bool {
	style := s.GetBorderStyle(side)
	return style != "none" && style != "hidden" && s.GetBorderWidth(side) > 0
}
