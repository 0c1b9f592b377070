package ebitensurface

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stagecraft"
)

// nodeType identifies what a node draws.
type nodeType uint8

const (
	nodeContainer nodeType = iota
	nodeSprite
	nodeText
	nodeGraphic
	nodeStamp
)

func (t nodeType) String() string {
	switch t {
	case nodeContainer:
		return "container"
	case nodeSprite:
		return "sprite"
	case nodeText:
		return "text"
	case nodeGraphic:
		return "graphic"
	case nodeStamp:
		return "stamp"
	default:
		return "unknown"
	}
}

// node is one primitive in the display tree. A single flat struct is used
// for every primitive type, mirroring the handle table the stage addresses.
type node struct {
	handle stagecraft.Handle
	typ    nodeType

	// Hierarchy
	parent   *node
	children []*node

	// Transform (local). Rotation is in degrees; the pivot is in unscaled
	// pixels from the top-left corner.
	x, y           float64
	scaleX, scaleY float64
	rotation       float64
	direction      float64
	pivotX, pivotY float64
	width, height  float64

	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	alpha       float64
	visible     bool
	interactive bool

	// Sprite and stamp payload. Stamps carry the local offset of their
	// rasterized image.
	image          *ebiten.Image
	imageX, imageY float64
	resource       stagecraft.ResourceID
	file           string

	// Text payload
	text *textBlock

	// Graphic payload
	shapes       []shape
	graphicImage *ebiten.Image
	graphicRect  rect
	graphicDirty bool

	// Filters
	specs        []stagecraft.FilterSpec
	filters      []Filter
	cacheEnabled bool
	cacheTexture *ebiten.Image
	cacheRect    rect
	cacheDirty   bool

	disposed bool
}

// nodeDefaults sets the field values shared by every constructor.
func nodeDefaults(n *node) {
	n.scaleX = 1
	n.scaleY = 1
	n.alpha = 1
	n.worldAlpha = 1
	n.visible = true
	n.direction = 90
	n.transformDirty = true
	n.worldTransform = identityTransform
}

func newNode(h stagecraft.Handle, typ nodeType) *node {
	n := &node{handle: h, typ: typ}
	nodeDefaults(n)
	switch typ {
	case nodeText:
		n.text = &textBlock{color: "#000000", dirty: true}
	case nodeGraphic:
		n.graphicDirty = true
	}
	return n
}

// --- Tree manipulation ---

// addChild appends child, detaching it from any previous parent first.
// Panics on nil or when child is an ancestor of n.
func (n *node) addChild(child *node) {
	n.addChildAt(child, len(n.children))
}

// addChildAt inserts child at index. An index past the end appends.
func (n *node) addChildAt(child *node, index int) {
	if child == nil {
		panic("ebitensurface: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("ebitensurface: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
	invalidateAncestorCache(n)
}

// removeFromParent detaches n. No-op without a parent.
func (n *node) removeFromParent() {
	if n.parent == nil {
		return
	}
	p := n.parent
	p.removeChildByPtr(n)
	n.parent = nil
	markSubtreeDirty(n)
	invalidateAncestorCache(p)
}

// indexOf returns child's position among n's children, or -1.
func (n *node) indexOf(child *node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// --- Disposal ---

// dispose detaches n and releases it and every descendant. Only the first
// call has an effect.
func (n *node) dispose() {
	if n.disposed {
		return
	}
	n.removeFromParent()
	n.release()
}

func (n *node) release() {
	n.disposed = true
	for _, child := range n.children {
		child.parent = nil
		child.release()
	}
	n.children = nil
	n.parent = nil
	n.specs = nil
	n.filters = nil
	n.cacheEnabled = false
	if n.cacheTexture != nil {
		n.cacheTexture.Deallocate()
		n.cacheTexture = nil
	}
	if n.graphicImage != nil {
		n.graphicImage.Deallocate()
		n.graphicImage = nil
	}
	if n.typ == nodeStamp && n.image != nil {
		n.image.Deallocate()
	}
	if n.text != nil {
		n.text.release()
		n.text = nil
	}
	n.image = nil
	n.shapes = nil
	n.interactive = false
}

// --- Helpers ---

// isAncestor reports whether candidate is n or one of its ancestors.
func isAncestor(candidate, n *node) bool {
	for p := n; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.parent.
func (n *node) removeChildByPtr(child *node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on n and all its descendants.
func markSubtreeDirty(n *node) {
	n.transformDirty = true
	for _, child := range n.children {
		markSubtreeDirty(child)
	}
}

// invalidateAncestorCache marks the cached texture of n and every ancestor
// stale.
func invalidateAncestorCache(n *node) {
	for p := n; p != nil; p = p.parent {
		if p.cacheEnabled {
			p.cacheDirty = true
		}
	}
}
