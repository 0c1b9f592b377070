package ebitensurface

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/stagecraft"
)

type shapeKind uint8

const (
	shapeRect shapeKind = iota
	shapeLine
)

// shape is one drawing command recorded on a graphic primitive.
type shape struct {
	kind           shapeKind
	x0, y0, x1, y1 float64 // rect: x, y, w, h
	thickness      float64
	color          string
}

func (s shape) bounds() rect {
	switch s.kind {
	case shapeLine:
		half := s.thickness / 2
		x0, x1 := math.Min(s.x0, s.x1), math.Max(s.x0, s.x1)
		y0, y1 := math.Min(s.y0, s.y1), math.Max(s.y0, s.y1)
		return rect{x0 - half, y0 - half, x1 - x0 + s.thickness, y1 - y0 + s.thickness}
	default:
		return rect{s.x0, s.y0, s.x1, s.y1}
	}
}

// graphicBounds returns the union of the shapes with a visible color.
func graphicBounds(shapes []shape) rect {
	var r rect
	for _, s := range shapes {
		if _, ok := stagecraft.ParseColor(s.color); !ok {
			continue
		}
		r = rectUnion(r, s.bounds())
	}
	return r
}

// renderGraphic redraws n's shapes into its cached image when they changed
// and returns the image, or nil when nothing is visible.
func renderGraphic(n *node) *ebiten.Image {
	if !n.graphicDirty {
		return n.graphicImage
	}
	n.graphicDirty = false
	if n.graphicImage != nil {
		n.graphicImage.Deallocate()
		n.graphicImage = nil
	}
	b := graphicBounds(n.shapes)
	if b.empty() {
		return nil
	}
	b.x, b.y = math.Floor(b.x), math.Floor(b.y)
	w := int(math.Ceil(b.w)) + 1
	h := int(math.Ceil(b.h)) + 1
	n.graphicRect = rect{b.x, b.y, float64(w), float64(h)}
	img := ebiten.NewImage(w, h)
	for _, s := range n.shapes {
		clr, ok := stagecraft.ParseColor(s.color)
		if !ok {
			continue
		}
		switch s.kind {
		case shapeRect:
			vector.FillRect(img, float32(s.x0-b.x), float32(s.y0-b.y), float32(s.x1), float32(s.y1), clr, false)
		case shapeLine:
			vector.StrokeLine(img,
				float32(s.x0-b.x), float32(s.y0-b.y), float32(s.x1-b.x), float32(s.y1-b.y),
				float32(s.thickness), clr, true)
		}
	}
	n.graphicImage = img
	return img
}
