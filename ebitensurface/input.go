package ebitensurface

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stagecraft"
)

// pointerState tracks the press in progress. The node hit on press
// receives every move and the release, wherever the pointer goes.
type pointerState struct {
	down         bool
	hit          *node
	lastX, lastY float64
}

// --- Hit testing ---

// collectInteractive walks the tree in painter order, appending visible
// interactive nodes to buf.
func collectInteractive(n *node, buf []*node) []*node {
	if !n.visible {
		return buf
	}
	if n.interactive {
		buf = append(buf, n)
	}
	for _, child := range n.children {
		buf = collectInteractive(child, buf)
	}
	return buf
}

// hitTest returns the topmost interactive node at the canvas point (x, y),
// or nil. World transforms must be current.
func (s *Surface) hitTest(x, y float64) *node {
	s.hitBuf = collectInteractive(s.root, s.hitBuf[:0])
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		lx, ly := n.worldToLocal(x, y)
		if subtreeBounds(n).contains(lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// processInput feeds one pointer sample into the state machine. Injected
// events take precedence over the cursor and are consumed one per call.
func (s *Surface) processInput() {
	updateWorldTransform(s.root, identityTransform, 1, false)
	if s.processInjectedInput() {
		return
	}
	if s.noCursor {
		return
	}
	mx, my := ebiten.CursorPosition()
	s.processPointer(float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// processPointer runs the press/move/release state machine for the
// primary pointer at canvas coordinates (x, y).
func (s *Surface) processPointer(x, y float64, pressed bool) {
	ps := &s.pointer
	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.lastX, ps.lastY = x, y
		ps.hit = s.hitTest(x, y)
		if ps.hit != nil {
			s.fire(stagecraft.PointerDown, ps.hit, x, y)
		}
	case pressed && ps.down:
		if x == ps.lastX && y == ps.lastY {
			return
		}
		ps.lastX, ps.lastY = x, y
		if ps.hit != nil {
			s.fire(stagecraft.PointerMove, ps.hit, x, y)
		}
	case !pressed && ps.down:
		hit := ps.hit
		ps.down = false
		ps.hit = nil
		if hit != nil {
			s.fire(stagecraft.PointerUp, hit, x, y)
		}
	}
}

func (s *Surface) fire(t stagecraft.PointerEventType, n *node, x, y float64) {
	if s.handler == nil || n.disposed || !n.interactive {
		return
	}
	s.handler(stagecraft.PointerEvent{Type: t, Target: n.handle, StageX: x, StageY: y})
}
