package ggsurface

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/phanxgames/stagecraft"
	"github.com/phanxgames/stagecraft/internal/fonts"
)

// fontSources caches parsed fonts per family and style.
var fontSources = map[string]*text.FontSource{}

func fontSource(font stagecraft.FontStyle) (*text.FontSource, error) {
	key := fmt.Sprintf("%s/%v/%v", strings.ToLower(font.Family), font.Bold, font.Italic)
	if src := fontSources[key]; src != nil {
		return src, nil
	}
	src, err := text.NewFontSource(fonts.TTF(font.Family, font.Bold, font.Italic))
	if err != nil {
		return nil, fmt.Errorf("ggsurface: font %q: %w", font.String(), err)
	}
	fontSources[key] = src
	return src, nil
}

// faceFor returns the face for font, or nil if it has no size or cannot
// be parsed.
func faceFor(font stagecraft.FontStyle) text.Face {
	if font.Size <= 0 {
		return nil
	}
	src, err := fontSource(font)
	if err != nil {
		stagecraft.Logger().Warn("ggsurface: font unavailable", "font", font.String(), "err", err)
		return nil
	}
	return src.Face(font.Size)
}

// textBlock lays text out the canvas way: every line is positioned by its
// middle baseline and aligned on its own against frame.X.
type textBlock struct {
	content    string
	font       stagecraft.FontStyle
	face       text.Face
	color      string
	underline  bool
	strike     bool
	lineHeight float64
	frame      stagecraft.TextFrame

	dirty     bool
	lines     []string
	widths    []float64
	measuredW float64

	bmp *bitmap
}

func (tb *textBlock) invalidate() {
	tb.dirty = true
	tb.bmp = nil
}

// lh is the distance between line middles: the override when set, the
// font's line height otherwise.
func (tb *textBlock) lh() float64 {
	switch {
	case tb.lineHeight > 0:
		return tb.lineHeight
	case tb.face == nil:
		return 0
	}
	return tb.face.Metrics().LineHeight()
}

func (tb *textBlock) layout() {
	if !tb.dirty {
		return
	}
	tb.dirty = false
	tb.lines, tb.widths, tb.measuredW = tb.lines[:0], tb.widths[:0], 0
	if tb.face == nil {
		return
	}
	if tb.frame.Wrapped && tb.frame.WrapWidth > 0 {
		for _, r := range text.WrapText(tb.content, tb.face, tb.frame.WrapWidth, text.WrapWordChar) {
			tb.lines = append(tb.lines, strings.TrimRightFunc(r.Text, unicode.IsSpace))
		}
	} else {
		tb.lines = append(tb.lines, strings.Split(tb.content, "\n")...)
	}
	for _, line := range tb.lines {
		w := tb.face.Advance(line)
		tb.widths = append(tb.widths, w)
		tb.measuredW = math.Max(tb.measuredW, w)
	}
}

func (tb *textBlock) measuredH() float64 {
	tb.layout()
	return float64(len(tb.lines)) * tb.lh()
}

// visible is the number of lines drawn. Wrapped text with a MaxHeight
// stops at the first line starting below it.
func (tb *textBlock) visible() int {
	tb.layout()
	n := len(tb.lines)
	lh := tb.lh()
	if !tb.frame.Wrapped || tb.frame.MaxHeight <= 0 || lh <= 0 {
		return n
	}
	return min(int(math.Ceil(tb.frame.MaxHeight/lh)), n)
}

// middle returns the y of line i's middle baseline. Unwrapped text puts
// the first line's middle on frame.Y; wrapped text hangs from it.
func (tb *textBlock) middle(i int) float64 {
	lh := tb.lh()
	y := tb.frame.Y + float64(i)*lh
	if tb.frame.Wrapped {
		y += lh / 2
	}
	return y
}

// lineX returns the left edge of line i.
func (tb *textBlock) lineX(i int) float64 {
	return tb.frame.X - tb.frame.Align.Anchor()*tb.widths[i]
}

func (tb *textBlock) bounds() rect {
	n := tb.visible()
	lh := tb.lh()
	var r rect
	for i := 0; i < n; i++ {
		r = r.union(rect{tb.lineX(i), tb.middle(i) - lh/2, tb.widths[i], lh})
	}
	return r
}

// render returns the rasterized text, rebuilding it after changes.
func (tb *textBlock) render() *bitmap {
	if tb.bmp != nil {
		return tb.bmp
	}
	b := tb.bounds().pixelAligned()
	if b.empty() || tb.face == nil {
		return nil
	}
	clr, ok := stagecraft.ParseColor(tb.color)
	if !ok {
		return nil
	}
	pm := newPixmap(b)
	dst := rgba(pm)
	m := tb.face.Metrics()
	// Middle baseline to alphabetic baseline.
	shift := (m.Ascent - m.Descent) / 2
	thickness := math.Max(1, tb.font.Size/15)

	dc := gg.NewContext(pm.Width(), pm.Height(), gg.WithPixmap(pm))
	defer func() { _ = dc.Close() }()
	dc.SetColor(clr)
	dc.SetLineWidth(thickness)
	for i := 0; i < tb.visible(); i++ {
		x := tb.lineX(i) - b.x
		base := tb.middle(i) + shift - b.y
		text.Draw(dst, tb.lines[i], tb.face, x, base, clr)
		if tb.widths[i] == 0 {
			continue
		}
		if tb.underline {
			y := base + thickness*2
			dc.DrawLine(x, y, x+tb.widths[i], y)
			_ = dc.Stroke()
		}
		if tb.strike {
			y := tb.middle(i) - b.y
			dc.DrawLine(x, y, x+tb.widths[i], y)
			_ = dc.Stroke()
		}
	}
	tb.bmp = &bitmap{pm: pm, x: b.x, y: b.y}
	return tb.bmp
}
