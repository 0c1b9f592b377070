package ebitensurface

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Render texture pool ---

// renderTexturePool manages reusable offscreen images keyed by power-of-two
// dimensions.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool. It is cleared on the next Acquire.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	key := poolKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// --- Offscreen rendering ---

// paddedBounds returns n's subtree bounds grown by its filter padding.
func paddedBounds(n *node) rect {
	r := subtreeBounds(n)
	if r.empty() {
		return r
	}
	pad := float64(filterChainPadding(n.filters))
	return rect{r.x - pad, r.y - pad, r.w + 2*pad, r.h + 2*pad}
}

// renderFiltered renders n's subtree in its local space, applies its
// filters and returns the result together with the local rectangle the
// image's origin maps to. The caller owns the returned image, which comes
// from the pool.
func (r *renderer) renderFiltered(n *node) (*ebiten.Image, rect) {
	bounds := paddedBounds(n)
	w := int(math.Ceil(bounds.w))
	h := int(math.Ceil(bounds.h))
	if w <= 0 || h <= 0 {
		return nil, rect{}
	}
	rt := r.pool.Acquire(w, h)
	r.renderSubtree(rt, n, bounds)
	return applyFilters(n.filters, rt, &r.pool), rect{bounds.x, bounds.y, float64(w), float64(h)}
}

// renderSubtree draws n and its descendants into target so that local
// (bounds.x, bounds.y) lands on the target's origin. n's own alpha is left
// for the caller to apply when compositing.
func (r *renderer) renderSubtree(target *ebiten.Image, n *node, bounds rect) {
	offset := [6]float64{1, 0, 0, 1, -bounds.x, -bounds.y}
	r.drawNode(target, n, offset, 1)
	for _, child := range n.children {
		r.walk(target, child, offset, 1)
	}
}

// rasterize returns a frozen copy of n's subtree with its filters applied,
// plus the local offset of the copy. The copy is not pooled.
func (r *renderer) rasterize(n *node) (*ebiten.Image, rect) {
	result, bounds := r.renderFiltered(n)
	if result == nil {
		return nil, rect{}
	}
	w, h := int(bounds.w), int(bounds.h)
	img := ebiten.NewImage(w, h)
	img.DrawImage(result, nil)
	r.pool.Release(result)
	return img, bounds
}
