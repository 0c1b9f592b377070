package ebitensurface

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// renderer draws a node tree. It owns the offscreen pool used by filtered
// and cached primitives.
type renderer struct {
	pool  renderTexturePool
	imgOp ebiten.DrawImageOptions
}

// walk draws n and its subtree with the given parent transform and alpha.
func (r *renderer) walk(dst *ebiten.Image, n *node, parent [6]float64, parentAlpha float64) {
	if !n.visible {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(n))
	alpha := parentAlpha * n.alpha

	if n.cacheEnabled || len(n.filters) > 0 {
		r.drawSpecial(dst, n, m, alpha)
		return
	}
	r.drawNode(dst, n, m, alpha)
	for _, child := range n.children {
		r.walk(dst, child, m, alpha)
	}
}

// drawSpecial draws a filtered or cached node through an offscreen image.
// A clean cache is reused as is.
func (r *renderer) drawSpecial(dst *ebiten.Image, n *node, m [6]float64, alpha float64) {
	if n.cacheEnabled && n.cacheTexture != nil && !n.cacheDirty {
		r.drawImage(dst, n.cacheTexture, m, n.cacheRect.x, n.cacheRect.y, alpha)
		return
	}

	result, bounds := r.renderFiltered(n)
	if result == nil {
		return
	}
	if !n.cacheEnabled {
		r.drawImage(dst, result, m, bounds.x, bounds.y, alpha)
		r.pool.Release(result)
		return
	}

	if n.cacheTexture != nil {
		n.cacheTexture.Deallocate()
	}
	n.cacheTexture = ebiten.NewImage(int(bounds.w), int(bounds.h))
	n.cacheTexture.DrawImage(result, nil)
	n.cacheRect = bounds
	n.cacheDirty = false
	r.pool.Release(result)
	r.drawImage(dst, n.cacheTexture, m, bounds.x, bounds.y, alpha)
}

// drawNode draws n's own content, without children.
func (r *renderer) drawNode(dst *ebiten.Image, n *node, m [6]float64, alpha float64) {
	switch n.typ {
	case nodeSprite:
		if n.image == nil {
			return
		}
		b := n.image.Bounds()
		sx, sy := 1.0, 1.0
		if n.width > 0 && n.height > 0 {
			sx = n.width / float64(b.Dx())
			sy = n.height / float64(b.Dy())
		}
		op := &r.imgOp
		op.GeoM.Reset()
		op.GeoM.Scale(sx, sy)
		op.GeoM.Concat(geoM(m))
		op.ColorScale.Reset()
		op.ColorScale.ScaleAlpha(float32(alpha))
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(n.image, op)
	case nodeStamp:
		if n.image != nil {
			r.drawImage(dst, n.image, m, n.imageX, n.imageY, alpha)
		}
	case nodeText:
		if img := n.text.render(); img != nil {
			x, y := n.text.origin()
			r.drawImage(dst, img, m, x, y, alpha)
		}
	case nodeGraphic:
		if img := renderGraphic(n); img != nil {
			r.drawImage(dst, img, m, n.graphicRect.x, n.graphicRect.y, alpha)
		}
	}
}

// drawImage draws img with its origin at local (x, y) under m.
func (r *renderer) drawImage(dst, img *ebiten.Image, m [6]float64, x, y, alpha float64) {
	op := &r.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(geoM(m))
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}
