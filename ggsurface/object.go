package ggsurface

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/phanxgames/stagecraft"
)

// kind identifies what a display object paints.
type kind uint8

const (
	kindContainer kind = iota
	kindBitmap
	kindText
	kindShape
	kindStamp
)

func (k kind) String() string {
	switch k {
	case kindContainer:
		return "container"
	case kindBitmap:
		return "bitmap"
	case kindText:
		return "text"
	case kindShape:
		return "shape"
	case kindStamp:
		return "stamp"
	default:
		return "unknown"
	}
}

// bitmap is a premultiplied pixel buffer placed at (x, y) in its owner's
// local space.
type bitmap struct {
	pm   *gg.Pixmap
	x, y float64
}

func (b *bitmap) rect() rect {
	if b == nil || b.pm == nil {
		return rect{}
	}
	return rect{b.x, b.y, float64(b.pm.Width()), float64(b.pm.Height())}
}

// object is one retained display object. Transforms follow the canvas
// model: the registration point (regX, regY) is written directly and
// rotation and scale are applied around it.
type object struct {
	handle stagecraft.Handle
	kind   kind

	parent   *object
	children []*object

	x, y           float64
	regX, regY     float64
	scaleX, scaleY float64
	rotation       float64
	direction      float64
	width, height  float64
	alpha          float64
	visible        bool
	mouseEnabled   bool

	// Bitmap payload: the decoded picture, shared between objects showing
	// the same file.
	image    *gg.Pixmap
	resource stagecraft.ResourceID
	file     string

	text *textBlock

	shapes     []shape
	shapeCache *bitmap
	shapeDirty bool

	// stamp is the frozen rasterization a stamp object shows.
	stamp *bitmap

	// Filters only take effect through the cache. cached is set by
	// CacheBitmap and cleared by uncache; cacheStale asks the next render
	// to rebuild the bitmap.
	specs      []stagecraft.FilterSpec
	chain      *scene.FilterChain
	cached     bool
	cache      *bitmap
	cacheStale bool

	destroyed bool
}

func newObject(h stagecraft.Handle, k kind) *object {
	o := &object{
		handle:    h,
		kind:      k,
		scaleX:    1,
		scaleY:    1,
		alpha:     1,
		visible:   true,
		direction: 90,
	}
	switch k {
	case kindText:
		o.text = &textBlock{color: "#000000", dirty: true}
	case kindShape:
		o.shapeDirty = true
	}
	return o
}

// matrix returns the local transform: translate(x, y) · rotate · scale ·
// translate(-regX, -regY).
func (o *object) matrix() gg.Matrix {
	m := gg.Translate(o.x, o.y)
	if o.rotation != 0 {
		m = m.Multiply(gg.Rotate(o.rotation * degToRad))
	}
	if o.scaleX != 1 || o.scaleY != 1 {
		m = m.Multiply(gg.Scale(o.scaleX, o.scaleY))
	}
	if o.regX != 0 || o.regY != 0 {
		m = m.Multiply(gg.Translate(-o.regX, -o.regY))
	}
	return m
}

// --- Tree ---

// addChildAt inserts child at index, taking it from its previous parent.
// An out-of-range index appends.
func (o *object) addChildAt(child *object, index int) {
	if child == nil {
		panic("ggsurface: nil child")
	}
	for p := o; p != nil; p = p.parent {
		if p == child {
			panic("ggsurface: child is an ancestor of its new parent")
		}
	}
	if child.parent != nil {
		child.parent.unlink(child)
	}
	if index < 0 || index > len(o.children) {
		index = len(o.children)
	}
	o.children = append(o.children, nil)
	copy(o.children[index+1:], o.children[index:])
	o.children[index] = child
	child.parent = o
	o.touch()
}

func (o *object) addChild(child *object) { o.addChildAt(child, len(o.children)) }

func (o *object) unlink(child *object) {
	i := o.indexOf(child)
	if i < 0 {
		return
	}
	o.children = append(o.children[:i], o.children[i+1:]...)
	child.parent = nil
	o.touch()
}

func (o *object) detach() {
	if o.parent != nil {
		o.parent.unlink(o)
	}
}

func (o *object) indexOf(child *object) int {
	for i, c := range o.children {
		if c == child {
			return i
		}
	}
	return -1
}

// touch marks every cache that contains o's pixels stale, o's own
// included.
func (o *object) touch() {
	for p := o; p != nil; p = p.parent {
		if p.cached {
			p.cacheStale = true
		}
	}
}

// touchParent is touch for changes that only move o: its own cache stays
// valid.
func (o *object) touchParent() {
	if o.parent != nil {
		o.parent.touch()
	}
}

func (o *object) uncache() {
	o.cached = false
	o.cache = nil
	o.cacheStale = false
}

// destroy detaches o and releases it with its whole subtree.
func (o *object) destroy() {
	if o.destroyed {
		return
	}
	o.detach()
	o.release()
}

func (o *object) release() {
	o.destroyed = true
	for _, c := range o.children {
		c.parent = nil
		c.release()
	}
	o.children = nil
	o.image = nil
	o.text = nil
	o.shapes = nil
	o.shapeCache = nil
	o.stamp = nil
	o.specs = nil
	o.chain = nil
	o.mouseEnabled = false
	o.uncache()
}
