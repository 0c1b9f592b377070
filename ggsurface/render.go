package ggsurface

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// composite draws b onto dst. m maps b's owner's local space to dst
// pixels.
func composite(dst *image.RGBA, b *bitmap, m gg.Matrix, alpha float64) {
	if b == nil || b.pm == nil || alpha <= 0 {
		return
	}
	m = m.Multiply(gg.Translate(b.x, b.y))
	var opts *xdraw.Options
	if alpha < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(alpha * 0xffff)})}
	}
	src := rgba(b.pm)
	xdraw.BiLinear.Transform(dst, f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}, src, src.Bounds(), xdraw.Over, opts)
}

// content returns the pixels o paints itself, without children, and the
// transform from the bitmap's space to o's local space.
func (s *Surface) content(o *object) (*bitmap, gg.Matrix) {
	switch o.kind {
	case kindBitmap:
		if o.image == nil {
			return nil, gg.Identity()
		}
		return &bitmap{pm: o.image}, imageFit(o)
	case kindText:
		return o.text.render(), gg.Identity()
	case kindShape:
		if o.shapeDirty {
			o.shapeCache = paintShapes(o.shapes)
			o.shapeDirty = false
		}
		return o.shapeCache, gg.Identity()
	case kindStamp:
		return o.stamp, gg.Identity()
	}
	return nil, gg.Identity()
}

// imageFit stretches a picture over the object's width and height. A zero
// size keeps the picture's own.
func imageFit(o *object) gg.Matrix {
	iw, ih := float64(o.image.Width()), float64(o.image.Height())
	sx, sy := 1.0, 1.0
	if o.width > 0 && iw > 0 {
		sx = o.width / iw
	}
	if o.height > 0 && ih > 0 {
		sy = o.height / ih
	}
	return gg.Scale(sx, sy)
}

// paint draws o and its subtree. parent maps o's parent space to dst
// pixels.
func (s *Surface) paint(dst *image.RGBA, o *object, parent gg.Matrix, alpha float64) {
	if !o.visible {
		return
	}
	alpha *= o.alpha
	if alpha <= 0 {
		return
	}
	m := parent.Multiply(o.matrix())
	if o.cached {
		if o.cache == nil || o.cacheStale {
			s.refreshCache(o)
		}
		composite(dst, o.cache, m, alpha)
		return
	}
	s.paintSubtree(dst, o, m, alpha)
}

// paintSubtree draws o's own pixels and its children through m, skipping
// o's transform, visibility and cache.
func (s *Surface) paintSubtree(dst *image.RGBA, o *object, m gg.Matrix, alpha float64) {
	if b, fit := s.content(o); b != nil {
		composite(dst, b, m.Multiply(fit), alpha)
	}
	for _, c := range o.children {
		s.paint(dst, c, m, alpha)
	}
}

// snapshot rasterizes o's subtree in o's local space and runs its filters.
// It returns nil when nothing would be drawn.
func (s *Surface) snapshot(o *object) *bitmap {
	b := subtreeBounds(o)
	if b.empty() {
		return nil
	}
	b = b.grow(chainPadding(o.chain)).pixelAligned()
	pm := newPixmap(b)
	s.paintSubtree(rgba(pm), o, gg.Translate(-b.x, -b.y), 1)
	if o.chain != nil {
		out := newPixmap(b)
		o.chain.Apply(pm, out, rect{0, 0, b.w, b.h}.sceneRect())
		pm = out
	}
	return &bitmap{pm: pm, x: b.x, y: b.y}
}

func (s *Surface) refreshCache(o *object) {
	o.cache = s.snapshot(o)
	o.cacheStale = false
}

// --- Bounds ---

// contentBounds is the area o paints itself, in its local space.
func contentBounds(o *object) rect {
	switch o.kind {
	case kindBitmap:
		w, h := o.width, o.height
		if o.image != nil {
			if w <= 0 {
				w = float64(o.image.Width())
			}
			if h <= 0 {
				h = float64(o.image.Height())
			}
		}
		return rect{0, 0, w, h}
	case kindText:
		return o.text.bounds()
	case kindShape:
		return shapesBounds(o.shapes)
	case kindStamp:
		return o.stamp.rect()
	}
	return rect{}
}

// subtreeBounds is the area o and its visible descendants paint, in o's
// local space.
func subtreeBounds(o *object) rect {
	r := contentBounds(o)
	for _, c := range o.children {
		if c.visible {
			r = r.union(transformRect(c.matrix(), subtreeBounds(c)))
		}
	}
	return r
}
