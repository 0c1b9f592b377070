package ggsurface

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/phanxgames/stagecraft"
)

// pointerSample is one queued pointer reading in canvas pixels.
type pointerSample struct {
	x, y    float64
	pressed bool
}

// Pointer queues a pointer reading in canvas pixels. Hosts call it from
// their own event loop; the samples are processed in order on Update.
func (s *Surface) Pointer(x, y float64, pressed bool) {
	s.samples = append(s.samples, pointerSample{x, y, pressed})
}

// Click queues a press and a release at (x, y).
func (s *Surface) Click(x, y float64) {
	s.Pointer(x, y, true)
	s.Pointer(x, y, false)
}

func (s *Surface) processPointer() {
	for _, p := range s.samples {
		s.sample(p)
	}
	s.samples = s.samples[:0]
}

// sample advances the press state machine. The object under a press
// receives the moves and the release that follow it.
func (s *Surface) sample(p pointerSample) {
	switch {
	case p.pressed && !s.down:
		s.down = true
		s.lastX, s.lastY = p.x, p.y
		s.target = s.objectAt(p.x, p.y)
		s.dispatch(stagecraft.PointerDown, p)
	case p.pressed:
		if p.x == s.lastX && p.y == s.lastY {
			return
		}
		s.lastX, s.lastY = p.x, p.y
		s.dispatch(stagecraft.PointerMove, p)
	case s.down:
		s.down = false
		s.dispatch(stagecraft.PointerUp, p)
		s.target = nil
	}
}

func (s *Surface) dispatch(t stagecraft.PointerEventType, p pointerSample) {
	o := s.target
	if o == nil || o.destroyed || !o.mouseEnabled || s.handler == nil {
		return
	}
	s.handler(stagecraft.PointerEvent{Type: t, Target: o.handle, StageX: p.x, StageY: p.y})
}

// --- Hit testing ---

// objectAt returns the topmost mouse-enabled object painting the canvas
// pixel (x, y).
func (s *Surface) objectAt(x, y float64) *object {
	return s.pick(s.root, gg.Identity(), x, y)
}

func (s *Surface) pick(o *object, parent gg.Matrix, x, y float64) *object {
	if !o.visible {
		return nil
	}
	m := parent.Multiply(o.matrix())
	for i := len(o.children) - 1; i >= 0; i-- {
		if hit := s.pick(o.children[i], m, x, y); hit != nil {
			return hit
		}
	}
	if !o.mouseEnabled {
		return nil
	}
	inv, ok := invert(m)
	if !ok {
		return nil
	}
	p := inv.TransformPoint(gg.Pt(x, y))
	if s.hits(o, p.X, p.Y) {
		return o
	}
	return nil
}

// hits reports whether o or a descendant paints the local point (x, y).
// Pictures, shapes and caches test pixel alpha; text tests its line boxes.
func (s *Surface) hits(o *object, x, y float64) bool {
	if !o.visible {
		return false
	}
	if o.cached && o.cache != nil && !o.cacheStale {
		return opaqueAt(o.cache, x, y)
	}
	switch o.kind {
	case kindBitmap:
		if o.image == nil {
			if contentBounds(o).contains(x, y) {
				return true
			}
			break
		}
		fit, _ := invert(imageFit(o))
		p := fit.TransformPoint(gg.Pt(x, y))
		if opaqueAt(&bitmap{pm: o.image}, p.X, p.Y) {
			return true
		}
	case kindText:
		if o.text.bounds().contains(x, y) {
			return true
		}
	case kindShape, kindStamp:
		if b, _ := s.content(o); opaqueAt(b, x, y) {
			return true
		}
	}
	for i := len(o.children) - 1; i >= 0; i-- {
		c := o.children[i]
		inv, ok := invert(c.matrix())
		if !ok {
			continue
		}
		p := inv.TransformPoint(gg.Pt(x, y))
		if s.hits(c, p.X, p.Y) {
			return true
		}
	}
	return false
}

// opaqueAt reports whether b has a non-transparent pixel at the local
// point (x, y).
func opaqueAt(b *bitmap, x, y float64) bool {
	if b == nil || b.pm == nil {
		return false
	}
	px, py := int(math.Floor(x-b.x)), int(math.Floor(y-b.y))
	if px < 0 || py < 0 || px >= b.pm.Width() || py >= b.pm.Height() {
		return false
	}
	return b.pm.Data()[(py*b.pm.Width()+px)*4+3] > 0
}

// invert is gg.Matrix.Invert that reports singular matrices instead of
// returning the identity.
func invert(m gg.Matrix) (gg.Matrix, bool) {
	if math.Abs(m.A*m.E-m.B*m.D) < 1e-10 {
		return gg.Matrix{}, false
	}
	return m.Invert(), true
}
