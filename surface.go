package stagecraft

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle identifies a render primitive owned by a RenderSurface. The zero
// Handle is never issued.
type Handle uint32

// NoHandle is the absent primitive.
const NoHandle Handle = 0

// ResourceID identifies one resource load issued by a surface. Every request
// receives a fresh id, so a completion can be matched against the primitive's
// current image.
type ResourceID uint64

// FontStyle is a composed font: weight and style flags, pixel size and family.
type FontStyle struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// String returns the CSS-like descriptor, e.g. "bold 20px Nanum Gothic".
func (f FontStyle) String() string {
	var b strings.Builder
	if f.Bold {
		b.WriteString("bold ")
	}
	if f.Italic {
		b.WriteString("italic ")
	}
	b.WriteString(strconv.FormatFloat(f.Size, 'f', -1, 64))
	b.WriteString("px ")
	b.WriteString(f.Family)
	return b.String()
}

// ParseFontStyle parses a descriptor produced by FontStyle.String. The size
// token is optional; a missing size reports zero.
func ParseFontStyle(s string) (FontStyle, error) {
	var f FontStyle
	var family []string
	sized := false
	for _, tok := range strings.Fields(s) {
		switch {
		case tok == "bold":
			f.Bold = true
		case tok == "italic":
			f.Italic = true
		case !sized && strings.HasSuffix(tok, "px"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(tok, "px"), 64)
			if err != nil {
				return FontStyle{}, fmt.Errorf("stagecraft: font size %q: %w", tok, err)
			}
			f.Size = v
			sized = true
		default:
			family = append(family, tok)
		}
	}
	f.Family = strings.Join(family, " ")
	return f, nil
}

// TextFrame places a text primitive inside its entity. X is the horizontal
// anchor position; the surface anchors the text by Align. When Wrapped is set,
// Y is the top edge of the text block and lines break at WrapWidth. Otherwise
// Y is the vertical center of a single line.
type TextFrame struct {
	X, Y      float64
	Align     TextAlign
	Wrapped   bool
	WrapWidth float64
	MaxHeight float64
}

// FilterKind selects a backend filter.
type FilterKind uint8

const (
	FilterBrightness FilterKind = iota
	FilterHue
	FilterColorMatrix
	FilterContrast
	FilterSaturation
	FilterBlur
)

// FilterSpec is a backend-agnostic filter description. Matrix is only read
// for FilterColorMatrix.
type FilterSpec struct {
	Kind   FilterKind
	Value  float64
	Matrix ColorMatrix
}

// ColorMatrix returns the 5x5 matrix this filter applies, or false for
// filters that are not color transforms (blur).
func (f FilterSpec) ColorMatrix() (ColorMatrix, bool) {
	switch f.Kind {
	case FilterBrightness:
		return BrightnessMatrix(f.Value), true
	case FilterHue:
		return HueMatrix(f.Value), true
	case FilterColorMatrix:
		return f.Matrix, true
	case FilterContrast:
		return ContrastMatrix(f.Value), true
	case FilterSaturation:
		return SaturationMatrix(f.Value), true
	default:
		return ColorMatrix{}, false
	}
}

// PointerEventType is the phase of a pointer interaction.
type PointerEventType uint8

const (
	PointerDown PointerEventType = iota
	PointerMove
	PointerUp
)

// PointerEvent is delivered by a surface for a primitive that was marked
// interactive. StageX and StageY are canvas pixels.
type PointerEvent struct {
	Type           PointerEventType
	Target         Handle
	StageX, StageY float64
}

// Primitives creates and arranges render primitives.
type Primitives interface {
	NewSprite() Handle
	NewContainer() Handle
	NewText(font FontStyle) Handle
	NewGraphic() Handle
	AddChild(parent, child Handle)
}

// Transformer writes logical transform values. Surfaces map the pivot to
// their own convention (pivot object, anchor fraction or reg fields).
type Transformer interface {
	SetPosition(h Handle, x, y float64)
	SetPivot(h Handle, x, y float64)
	SetScale(h Handle, sx, sy float64)
	SetRotation(h Handle, degrees float64)
	SetDirection(h Handle, degrees float64)
	SetSize(h Handle, w, ht float64)
	SetVisible(h Handle, visible bool)
	SetAlpha(h Handle, alpha float64)
}

// TextRenderer styles text primitives and reports their metrics.
type TextRenderer interface {
	SetFont(h Handle, font FontStyle)
	SetText(h Handle, s string)
	SetTextColor(h Handle, c string)
	SetTextDecoration(h Handle, underline, strike bool)
	SetLineHeight(h Handle, lh float64)
	LayoutText(h Handle, f TextFrame)
	MeasuredWidth(h Handle) float64
	MeasuredHeight(h Handle) float64
	MeasuredLineHeight(h Handle) float64
}

// Painter draws into graphic primitives.
type Painter interface {
	FillRect(h Handle, x, y, w, ht float64, c string)
	StrokeLine(h Handle, x0, y0, x1, y1, thickness float64, c string)
	ClearGraphic(h Handle)
}

// Filterer applies filters and manages pixel caches. CacheBitmap is a no-op
// on surfaces that do not need explicit caching.
type Filterer interface {
	ApplyFilters(h Handle, filters []FilterSpec)
	HasFilters(h Handle) bool
	CacheBitmap(h Handle)
	SetFilterCache(h Handle, enabled bool)
}

// ResourceLoader loads pictures asynchronously. done runs on the loop
// goroutine during the surface's Update.
type ResourceLoader interface {
	RequestResource(h Handle, sceneID string, pic Picture, done func(ResourceID)) ResourceID
	CurrentResource(h Handle) ResourceID
	RefreshScale(h Handle)
	Update()
}

// PointerSource reports pointer interactions on interactive primitives.
type PointerSource interface {
	SetPointerHandler(fn func(PointerEvent))
	SetInteractive(h Handle, interactive bool)
}

// DisplayList orders primitives and manages their lifetime.
type DisplayList interface {
	IndexOf(h Handle) int
	Insert(h Handle, index int)
	Detach(h Handle)
	Rasterize(h Handle) Handle
	Destroy(h Handle)
}

// RenderSurface is the capability set an entity needs from a rendering
// backend.
type RenderSurface interface {
	Primitives
	Transformer
	TextRenderer
	Painter
	Filterer
	ResourceLoader
	PointerSource
	DisplayList
}
