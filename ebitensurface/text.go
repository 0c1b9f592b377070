package ebitensurface

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/stagecraft"
	"github.com/phanxgames/stagecraft/internal/fonts"
)

// --- Face sources ---

// faceSources caches parsed fonts by family and style. Access is
// single-threaded like the rest of the surface.
var faceSources = map[string]*text.GoTextFaceSource{}

// loadFaceSource parses the TTF data registered for font's family and
// style.
func loadFaceSource(font stagecraft.FontStyle) (*text.GoTextFaceSource, error) {
	key := fmt.Sprintf("%s|%t|%t", strings.ToLower(font.Family), font.Bold, font.Italic)
	if src, ok := faceSources[key]; ok {
		return src, nil
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(fonts.TTF(font.Family, font.Bold, font.Italic)))
	if err != nil {
		return nil, fmt.Errorf("ebitensurface: parse font %q: %w", font.String(), err)
	}
	faceSources[key] = src
	return src, nil
}

// newFace returns a face for font, or nil when the font data cannot be
// parsed or the size is not positive.
func newFace(font stagecraft.FontStyle) *text.GoTextFace {
	if font.Size <= 0 {
		return nil
	}
	src, err := loadFaceSource(font)
	if err != nil {
		stagecraft.Logger().Warn("ebitensurface: font unavailable", "font", font.String(), "err", err)
		return nil
	}
	return &text.GoTextFace{Source: src, Size: font.Size}
}

// faceLineHeight is the distance between baselines the font's metrics give.
func faceLineHeight(face *text.GoTextFace) float64 {
	m := face.Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// --- textBlock ---

// textBlock holds text content, styling, the frame it is placed in and the
// cached layout and rendered image.
type textBlock struct {
	content    string
	font       stagecraft.FontStyle
	face       *text.GoTextFace
	color      string
	underline  bool
	strike     bool
	lineHeight float64 // override; 0 = font metrics
	frame      stagecraft.TextFrame

	// Cached layout
	dirty     bool
	lines     []string
	widths    []float64
	measuredW float64
	measuredH float64

	// Rendered text, redrawn when imageDirty is set.
	image      *ebiten.Image
	imageDirty bool
}

func (tb *textBlock) invalidate() {
	tb.dirty = true
	tb.imageDirty = true
}

// lh returns the effective line height.
func (tb *textBlock) lh() float64 {
	if tb.lineHeight > 0 {
		return tb.lineHeight
	}
	if tb.face == nil {
		return 0
	}
	return faceLineHeight(tb.face)
}

// layout recomputes line breaks and the measured size when dirty.
func (tb *textBlock) layout() {
	if !tb.dirty {
		return
	}
	tb.dirty = false
	tb.imageDirty = true
	tb.lines = tb.lines[:0]
	tb.widths = tb.widths[:0]
	tb.measuredW, tb.measuredH = 0, 0
	if tb.face == nil {
		return
	}

	if tb.frame.Wrapped && tb.frame.WrapWidth > 0 {
		tb.lines = wrapText(tb.content, tb.face, tb.frame.WrapWidth, tb.lines)
	} else {
		tb.lines = append(tb.lines, strings.Split(tb.content, "\n")...)
	}
	for _, line := range tb.lines {
		w := text.Advance(line, tb.face)
		tb.widths = append(tb.widths, w)
		tb.measuredW = math.Max(tb.measuredW, w)
	}
	tb.measuredH = float64(len(tb.lines)) * tb.lh()
}

// visibleLines returns how many lines are drawn. A wrapped block with a
// MaxHeight drops lines that start below it.
func (tb *textBlock) visibleLines() int {
	n := len(tb.lines)
	if !tb.frame.Wrapped || tb.frame.MaxHeight <= 0 {
		return n
	}
	lh := tb.lh()
	if lh <= 0 {
		return n
	}
	fit := int(math.Ceil(tb.frame.MaxHeight / lh))
	return min(max(fit, 0), n)
}

// origin returns the top-left corner of the block in the text node's local
// space. The block is anchored horizontally by the alignment fraction;
// wrapped blocks hang from frame.Y, single lines are centered on it.
func (tb *textBlock) origin() (float64, float64) {
	tb.layout()
	x := tb.frame.X - tb.frame.Align.Anchor()*tb.measuredW
	if tb.frame.Wrapped {
		return x, tb.frame.Y
	}
	return x, tb.frame.Y - tb.measuredH/2
}

func (tb *textBlock) bounds() rect {
	tb.layout()
	if tb.measuredW == 0 || tb.measuredH == 0 {
		return rect{}
	}
	x, y := tb.origin()
	return rect{x, y, tb.measuredW, float64(tb.visibleLines()) * tb.lh()}
}

// render draws the block into its cached image and returns it, or nil for
// empty text.
func (tb *textBlock) render() *ebiten.Image {
	tb.layout()
	if tb.face == nil || tb.measuredW == 0 || tb.measuredH == 0 {
		return nil
	}
	if !tb.imageDirty && tb.image != nil {
		return tb.image
	}
	tb.imageDirty = false

	lh := tb.lh()
	count := tb.visibleLines()
	w := int(math.Ceil(tb.measuredW)) + 1
	h := int(math.Ceil(float64(count)*lh)) + 1
	if tb.image != nil {
		b := tb.image.Bounds()
		if b.Dx() != w || b.Dy() != h {
			tb.image.Deallocate()
			tb.image = ebiten.NewImage(w, h)
		} else {
			tb.image.Clear()
		}
	} else {
		tb.image = ebiten.NewImage(w, h)
	}

	clr, ok := stagecraft.ParseColor(tb.color)
	if !ok {
		return tb.image
	}
	anchor := tb.frame.Align.Anchor()
	metrics := tb.face.Metrics()
	thickness := float32(math.Max(1, tb.font.Size/15))

	op := &text.DrawOptions{}
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = lh
	for i := 0; i < count; i++ {
		lx := (tb.measuredW - tb.widths[i]) * anchor
		ly := float64(i) * lh
		op.GeoM.Reset()
		op.GeoM.Translate(lx, ly)
		text.Draw(tb.image, tb.lines[i], tb.face, op)

		if tb.widths[i] == 0 {
			continue
		}
		x0, x1 := float32(lx), float32(lx+tb.widths[i])
		if tb.underline {
			y := float32(ly + metrics.HAscent + float64(thickness)*2)
			vector.StrokeLine(tb.image, x0, y, x1, y, thickness, clr, false)
		}
		if tb.strike {
			y := float32(ly + metrics.HAscent*0.65)
			vector.StrokeLine(tb.image, x0, y, x1, y, thickness, clr, false)
		}
	}
	return tb.image
}

func (tb *textBlock) release() {
	if tb.image != nil {
		tb.image.Deallocate()
		tb.image = nil
	}
}

// --- Wrapping ---

// wrapText breaks s into lines no wider than maxW and appends them to dst.
// Explicit newlines always break. Words wider than maxW are split between
// characters.
func wrapText(s string, face text.Face, maxW float64, dst []string) []string {
	for _, para := range strings.Split(s, "\n") {
		dst = wrapParagraph(para, face, maxW, dst)
	}
	return dst
}

func wrapParagraph(para string, face text.Face, maxW float64, dst []string) []string {
	if para == "" {
		return append(dst, "")
	}
	var line strings.Builder
	for _, word := range splitWords(para) {
		candidate := line.String() + word
		if text.Advance(strings.TrimRightFunc(candidate, unicode.IsSpace), face) <= maxW {
			line.WriteString(word)
			continue
		}
		if line.Len() > 0 {
			dst = append(dst, strings.TrimRightFunc(line.String(), unicode.IsSpace))
			line.Reset()
			word = strings.TrimLeftFunc(word, unicode.IsSpace)
		}
		if text.Advance(strings.TrimRightFunc(word, unicode.IsSpace), face) <= maxW {
			line.WriteString(word)
			continue
		}
		// Break an over-long word between characters.
		for _, r := range word {
			next := line.String() + string(r)
			if line.Len() > 0 && text.Advance(next, face) > maxW {
				dst = append(dst, line.String())
				line.Reset()
				if unicode.IsSpace(r) {
					continue
				}
			}
			line.WriteRune(r)
		}
	}
	return append(dst, strings.TrimRightFunc(line.String(), unicode.IsSpace))
}

// splitWords splits s after each run of spaces, keeping the spaces with the
// preceding word so joining the parts yields s.
func splitWords(s string) []string {
	var words []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if inSpace && !space {
			words = append(words, s[start:i])
			start = i
		}
		inSpace = space
	}
	return append(words, s[start:])
}
