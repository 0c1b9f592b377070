package stagecraft

import (
	"math"
	"strings"
)

// --- Font ---

// SetFont applies a composite descriptor such as "bold 20px Nanum Gothic".
// Missing tokens keep the current value for size and family. Unparseable
// descriptors and unchanged fonts are ignored.
func (e *Entity) SetFont(font string) {
	if !e.isText() || !e.alive("SetFont") {
		return
	}
	if font == e.Font() {
		return
	}
	f, err := ParseFontStyle(font)
	if err != nil {
		Logger().Debug("stagecraft: ignoring font", "entity", e.id, "font", font, "err", err)
		return
	}
	e.font.Bold = f.Bold
	e.font.Italic = f.Italic
	if f.Size > 0 {
		e.SetFontSize(f.Size)
	}
	if f.Family != "" {
		e.SetFontType(f.Family)
	}
	e.syncFontStyle()
	if !e.lineBreak {
		e.SetWidth(e.surface.MeasuredWidth(e.textObject))
	}
	e.updateBG()
}

// Font returns the composed descriptor. Sprites have no font and return "".
func (e *Entity) Font() string {
	if !e.isText() {
		return ""
	}
	return e.font.String()
}

// FontName returns the family without weight, style or size tokens.
func (e *Entity) FontName() string { return e.font.Family }

// SetFontSize sets the font size in pixels.
func (e *Entity) SetFontSize(size float64) {
	if !e.isText() || !e.alive("SetFontSize") || !finite(size) {
		return
	}
	if e.font.Size == size {
		return
	}
	e.font.Size = size
	e.syncFont()
	e.alignTextBox()
}

// FontSize returns the font size in pixels.
func (e *Entity) FontSize() float64 { return e.font.Size }

// SetFontType sets the font family.
func (e *Entity) SetFontType(family string) {
	if !e.isText() || !e.alive("SetFontType") {
		return
	}
	if family == "" && e.stage != nil {
		family = e.stage.cfg.defaultFont().Family
	}
	e.font.Family = family
	e.syncFont()
}

// FontType returns the font family.
func (e *Entity) FontType() string { return e.font.Family }

// SetFontBold sets the bold flag.
func (e *Entity) SetFontBold(bold bool) {
	if !e.isText() || !e.alive("SetFontBold") {
		return
	}
	e.font.Bold = bold
	e.syncFont()
}

// FontBold reports the bold flag.
func (e *Entity) FontBold() bool { return e.font.Bold }

// ToggleFontBold flips the bold flag and returns the new value.
func (e *Entity) ToggleFontBold() bool {
	e.SetFontBold(!e.font.Bold)
	return e.font.Bold
}

// SetFontItalic sets the italic flag.
func (e *Entity) SetFontItalic(italic bool) {
	if !e.isText() || !e.alive("SetFontItalic") {
		return
	}
	e.font.Italic = italic
	e.syncFont()
}

// FontItalic reports the italic flag.
func (e *Entity) FontItalic() bool { return e.font.Italic }

// ToggleFontItalic flips the italic flag and returns the new value.
func (e *Entity) ToggleFontItalic() bool {
	e.SetFontItalic(!e.font.Italic)
	return e.font.Italic
}

func (e *Entity) codingFont() bool {
	return e.stage != nil && e.font.Family == e.stage.cfg.CodingFont
}

func (e *Entity) syncFontStyle() {
	e.surface.SetFont(e.textObject, e.font)
}

// syncFont re-applies style and line height. Unwrapped boxes are re-measured;
// wrapped boxes keep their width.
func (e *Entity) syncFont() {
	e.syncFontStyle()
	e.setLineHeight()
	e.markDirty()
	if e.lineBreak {
		if e.codingFont() {
			e.alignTextBox()
		}
	} else {
		e.SetWidth(e.surface.MeasuredWidth(e.textObject))
		e.SetHeight(e.surface.MeasuredHeight(e.textObject))
	}
	e.emit(EventUpdateObject)
}

func (e *Entity) setLineHeight() {
	if e.codingFont() {
		e.lineHeight = e.font.Size
	} else {
		e.lineHeight = 0
	}
	e.surface.SetLineHeight(e.textObject, e.lineHeight)
}

// --- Content ---

// SetText replaces the text. Unwrapped boxes resize to the measured width.
func (e *Entity) SetText(text string) {
	if !e.isText() || !e.alive("SetText") {
		return
	}
	e.text = text
	e.surface.SetText(e.textObject, text)
	if !e.lineBreak {
		e.SetWidth(e.surface.MeasuredWidth(e.textObject))
		e.updateCoordinateView()
	}
	e.updateBG()
	e.emit(EventUpdateObject)
	e.markDirty()
}

// Text returns the text of a text box.
func (e *Entity) Text() string { return e.text }

// SetTextAlign sets the horizontal alignment.
func (e *Entity) SetTextAlign(align TextAlign) {
	if !e.isText() || !e.alive("SetTextAlign") {
		return
	}
	if align > TextAlignRight {
		align = TextAlignCenter
	}
	e.textAlign = align
	e.alignTextBox()
	e.updateBG()
	e.emit(EventUpdateObject)
	e.markDirty()
}

// TextAlign returns the horizontal alignment.
func (e *Entity) TextAlign() TextAlign { return e.textAlign }

// SetColour sets the text color. An empty value selects black.
func (e *Entity) SetColour(colour string) {
	if e.removed {
		return
	}
	if colour == "" {
		colour = "#000000"
	}
	e.colour = colour
	if e.isText() {
		e.surface.SetTextColor(e.textObject, colour)
	}
	e.emit(EventUpdateObject)
	e.markDirty()
}

// Colour returns the text color.
func (e *Entity) Colour() string { return e.colour }

// SetBGColour sets the background color. An empty value selects
// "transparent".
func (e *Entity) SetBGColour(colour string) {
	if e.removed {
		return
	}
	if colour == "" {
		colour = "transparent"
	}
	e.bgColour = colour
	e.updateBG()
	e.emit(EventUpdateObject)
	e.markDirty()
}

// BGColour returns the background color.
func (e *Entity) BGColour() string { return e.bgColour }

// SetUnderLine toggles underline decoration.
func (e *Entity) SetUnderLine(underline bool) {
	if !e.isText() || !e.alive("SetUnderLine") {
		return
	}
	e.underline = underline
	e.surface.SetTextDecoration(e.textObject, e.underline, e.strike)
	e.emit(EventUpdateObject)
	e.markDirty()
}

// UnderLine reports the underline decoration.
func (e *Entity) UnderLine() bool { return e.underline }

// SetStrike toggles strike-through decoration.
func (e *Entity) SetStrike(strike bool) {
	if !e.isText() || !e.alive("SetStrike") {
		return
	}
	e.strike = strike
	e.surface.SetTextDecoration(e.textObject, e.underline, e.strike)
	e.emit(EventUpdateObject)
	e.markDirty()
}

// Strike reports the strike-through decoration.
func (e *Entity) Strike() bool { return e.strike }

// --- Line break ---

// SetLineBreak switches between auto-sized single-line text and wrapped
// text in a fixed box.
//
// The first switch to wrapped mode absorbs the current scale into the font
// size and box width and resets scale to 1. Switching back collapses the box
// to one line height and drops embedded newlines; the original height is not
// restored.
func (e *Entity) SetLineBreak(enabled bool) {
	if !e.isText() || !e.alive("SetLineBreak") {
		return
	}
	prev, known := e.lineBreak, e.lineBreakKnown
	e.lineBreak = enabled
	e.lineBreakKnown = true

	switch {
	case prev && !enabled:
		e.alignTextBox()
		e.SetHeight(e.surface.MeasuredLineHeight(e.textObject))
		e.SetText(strings.ReplaceAll(e.text, "\n", ""))
	case enabled:
		if known && !prev {
			e.SetFontSize(e.font.Size * e.scaleX)
			e.SetHeight(e.surface.MeasuredLineHeight(e.textObject) * 3)
			e.SetWidth(e.width * e.scaleX)
			e.SetScaleX(1)
			e.SetScaleY(1)
		}
		e.wrapWidth = math.Ceil(e.width)
	}
	e.alignTextBox()
	e.emit(EventUpdateObject)
	e.markDirty()
}

// LineBreak reports whether wrapped mode is active.
func (e *Entity) LineBreak() bool { return e.lineBreak }

// --- Layout ---

// textFrame computes where the text primitive sits inside the box. Wrapped
// text hangs from the top edge and is anchored by alignment. Unwrapped text
// sits at the origin, vertically centered.
func (e *Entity) textFrame() TextFrame {
	f := TextFrame{Align: e.textAlign}
	if !e.lineBreak {
		return f
	}
	f.Wrapped = true
	f.WrapWidth = e.wrapWidth
	f.MaxHeight = e.height
	f.Y = -e.height / 2
	if e.codingFont() {
		f.Y += e.stage.cfg.CodingFontOffset
	}
	switch e.textAlign {
	case TextAlignLeft:
		f.X = -e.width / 2
	case TextAlignRight:
		f.X = e.width / 2
	}
	return f
}

func (e *Entity) alignTextBox() {
	if !e.isText() || e.textObject == NoHandle {
		return
	}
	e.surface.LayoutText(e.textObject, e.textFrame())
}

// bgOffset is the horizontal offset of the background rect. Unwrapped text
// grows from x=0 in the direction its anchor implies.
func (e *Entity) bgOffset() float64 {
	if e.lineBreak {
		return 0
	}
	switch e.textAlign {
	case TextAlignLeft:
		return e.width / 2
	case TextAlignRight:
		return -e.width / 2
	default:
		return 0
	}
}

func (e *Entity) updateBG() {
	if !e.isText() || e.bgObject == NoHandle {
		return
	}
	e.surface.ClearGraphic(e.bgObject)
	e.surface.FillRect(e.bgObject, -e.width/2, -e.height/2, e.width, e.height, e.bgColour)
	alpha := 0.0
	if strings.HasPrefix(e.bgColour, "#") {
		alpha = 1
	}
	e.surface.SetAlpha(e.bgObject, alpha)
	e.surface.SetPosition(e.bgObject, e.bgOffset(), 0)
	e.markDirty()
}
