package ggsurface

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

const degToRad = math.Pi / 180

// rect is an axis-aligned rectangle. A rect with no area is empty.
type rect struct {
	x, y, w, h float64
}

func (r rect) empty() bool { return r.w <= 0 || r.h <= 0 }

func (r rect) contains(px, py float64) bool {
	return px >= r.x && px < r.x+r.w && py >= r.y && py < r.y+r.h
}

func (r rect) union(o rect) rect {
	switch {
	case r.empty():
		return o
	case o.empty():
		return r
	}
	x0, y0 := math.Min(r.x, o.x), math.Min(r.y, o.y)
	x1, y1 := math.Max(r.x+r.w, o.x+o.w), math.Max(r.y+r.h, o.y+o.h)
	return rect{x0, y0, x1 - x0, y1 - y0}
}

// grow pads r by n on every side.
func (r rect) grow(n float64) rect {
	return rect{r.x - n, r.y - n, r.w + 2*n, r.h + 2*n}
}

// pixelAligned expands r outward to whole pixels.
func (r rect) pixelAligned() rect {
	x0, y0 := math.Floor(r.x), math.Floor(r.y)
	x1, y1 := math.Ceil(r.x+r.w), math.Ceil(r.y+r.h)
	return rect{x0, y0, x1 - x0, y1 - y0}
}

func (r rect) sceneRect() scene.Rect {
	return scene.Rect{
		MinX: float32(r.x), MinY: float32(r.y),
		MaxX: float32(r.x + r.w), MaxY: float32(r.y + r.h),
	}
}

// transformRect returns the bounding box of r under m.
func transformRect(m gg.Matrix, r rect) rect {
	if r.empty() {
		return rect{}
	}
	corners := [4]gg.Point{
		m.TransformPoint(gg.Pt(r.x, r.y)),
		m.TransformPoint(gg.Pt(r.x+r.w, r.y)),
		m.TransformPoint(gg.Pt(r.x, r.y+r.h)),
		m.TransformPoint(gg.Pt(r.x+r.w, r.y+r.h)),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	return rect{minX, minY, maxX - minX, maxY - minY}
}

// rgba views pm's pixels as an image.RGBA without copying. Both use
// premultiplied 8-bit RGBA rows.
func rgba(pm *gg.Pixmap) *image.RGBA {
	return &image.RGBA{
		Pix:    pm.Data(),
		Stride: pm.Width() * 4,
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
}

// newPixmap allocates a pixmap covering r, which must be pixel aligned.
func newPixmap(r rect) *gg.Pixmap {
	return gg.NewPixmap(max(int(r.w), 1), max(int(r.h), 1))
}
