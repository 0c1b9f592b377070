package ggsurface

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/phanxgames/stagecraft"
)

type shapeKind uint8

const (
	shapeRect shapeKind = iota
	shapeLine
)

// shape is one recorded drawing command. Rects keep x, y, w, h in
// a, b, c, d; lines keep their end points.
type shape struct {
	kind       shapeKind
	a, b, c, d float64
	thickness  float64
	color      string
}

func (s shape) bounds() rect {
	if _, ok := stagecraft.ParseColor(s.color); !ok {
		return rect{}
	}
	if s.kind == shapeRect {
		return rect{s.a, s.b, s.c, s.d}
	}
	r := rect{math.Min(s.a, s.c), math.Min(s.b, s.d), math.Abs(s.c - s.a), math.Abs(s.d - s.b)}
	// Round caps reach half the thickness past each end.
	return r.grow(s.thickness / 2)
}

func shapesBounds(shapes []shape) rect {
	var r rect
	for _, s := range shapes {
		r = r.union(s.bounds())
	}
	return r
}

// paintShapes replays shapes into a pixmap sized to their bounds.
func paintShapes(shapes []shape) *bitmap {
	b := shapesBounds(shapes).pixelAligned()
	if b.empty() {
		return nil
	}
	pm := newPixmap(b)
	dc := gg.NewContext(pm.Width(), pm.Height(), gg.WithPixmap(pm))
	defer func() { _ = dc.Close() }()
	dc.Translate(-b.x, -b.y)
	dc.SetLineCap(gg.LineCapRound)
	for _, s := range shapes {
		clr, ok := stagecraft.ParseColor(s.color)
		if !ok {
			continue
		}
		dc.SetColor(clr)
		switch s.kind {
		case shapeRect:
			dc.DrawRectangle(s.a, s.b, s.c, s.d)
			_ = dc.Fill()
		case shapeLine:
			dc.SetLineWidth(s.thickness)
			dc.DrawLine(s.a, s.b, s.c, s.d)
			_ = dc.Stroke()
		}
	}
	return &bitmap{pm: pm, x: b.x, y: b.y}
}
