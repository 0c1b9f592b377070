package ebitensurface

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix of n. Returns
// [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *node) [6]float64 {
	sx, sy := n.scaleX, n.scaleY
	sin, cos := math.Sincos(n.rotation * math.Pi / 180)

	preTx := -n.pivotX * sx
	preTy := -n.pivotY * sy

	return [6]float64{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		cos*preTx - sin*preTy + n.x,
		sin*preTx + cos*preTy + n.y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns the inverse of m, or the identity when m is
// singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform recomputes worldTransform and worldAlpha for n and
// its subtree. parentRecomputed forces recomputation of clean children.
func updateWorldTransform(n *node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
		n.worldAlpha = parentAlpha * n.alpha
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// worldToLocal converts a world-space point to n's local space.
func (n *node) worldToLocal(wx, wy float64) (float64, float64) {
	return transformPoint(invertAffine(n.worldTransform), wx, wy)
}

// geoM converts an affine matrix to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// --- Bounds ---

// rect is an axis-aligned rectangle.
type rect struct {
	x, y, w, h float64
}

func (r rect) empty() bool { return r.w <= 0 || r.h <= 0 }

func (r rect) contains(x, y float64) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

func rectUnion(a, b rect) rect {
	if a.empty() {
		return b
	}
	if b.empty() {
		return a
	}
	x0 := math.Min(a.x, b.x)
	y0 := math.Min(a.y, b.y)
	x1 := math.Max(a.x+a.w, b.x+b.w)
	y1 := math.Max(a.y+a.h, b.y+b.h)
	return rect{x0, y0, x1 - x0, y1 - y0}
}

// transformRect returns the AABB of r after applying m.
func transformRect(m [6]float64, r rect) rect {
	xs := [4]float64{r.x, r.x + r.w, r.x, r.x + r.w}
	ys := [4]float64{r.y, r.y, r.y + r.h, r.y + r.h}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		px, py := transformPoint(m, xs[i], ys[i])
		minX = math.Min(minX, px)
		minY = math.Min(minY, py)
		maxX = math.Max(maxX, px)
		maxY = math.Max(maxY, py)
	}
	return rect{minX, minY, maxX - minX, maxY - minY}
}

// nodeBounds returns the local-space rectangle n itself draws into.
func nodeBounds(n *node) rect {
	switch n.typ {
	case nodeSprite:
		return rect{0, 0, n.width, n.height}
	case nodeStamp:
		if n.image == nil {
			return rect{}
		}
		b := n.image.Bounds()
		return rect{n.imageX, n.imageY, float64(b.Dx()), float64(b.Dy())}
	case nodeText:
		return n.text.bounds()
	case nodeGraphic:
		return graphicBounds(n.shapes)
	default:
		return rect{}
	}
}

// subtreeBounds returns the bounds of n and its visible descendants in n's
// local space.
func subtreeBounds(n *node) rect {
	return subtreeBoundsWalk(n, identityTransform)
}

func subtreeBoundsWalk(n *node, m [6]float64) rect {
	r := nodeBounds(n)
	if !r.empty() {
		r = transformRect(m, r)
	}
	for _, child := range n.children {
		if !child.visible {
			continue
		}
		r = rectUnion(r, subtreeBoundsWalk(child, multiplyAffine(m, computeLocalTransform(child))))
	}
	return r
}
