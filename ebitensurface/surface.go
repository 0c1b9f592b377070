// Package ebitensurface renders stagecraft entities with Ebitengine.
//
// It follows the GPU convention: pivots are pixel offsets on each
// primitive, text is placed by an anchor fraction and wrapped text hangs
// from the top of its box, and filters run every frame without an explicit
// bitmap cache. Color filters run in a Kage shader; blur uses Kawase
// downscale/upscale passes.
//
// The surface draws into a canvas of Config.StageWidth / PointerScale by
// Config.StageHeight / PointerScale pixels with the stage origin at its
// center. Pointer events report canvas pixels.
//
//	surface, err := ebitensurface.New(ebitensurface.Options{Config: cfg})
//	stage := stagecraft.NewStage(surface, cfg)
//	// in Game.Update: stage.Update(1.0 / 60)
//	// in Game.Draw:   surface.Draw(screen)
package ebitensurface

import (
	"image"
	"io/fs"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stagecraft"
	"github.com/phanxgames/stagecraft/internal/resource"
)

// Options configures a Surface.
type Options struct {
	// Config supplies the stage size, pointer scale and picture settings.
	// Zero fields take the values of stagecraft.DefaultConfig.
	Config stagecraft.Config
	// FS, when set, is read for picture files instead of
	// Config.PictureRoot.
	FS fs.FS
	// Workers bounds concurrent picture decodes. Zero means 4.
	Workers int
	// NoCursor disables polling the mouse in Update. Pointer input then
	// comes only from the Inject methods.
	NoCursor bool
}

// Surface is an Ebitengine RenderSurface. It is not safe for concurrent
// use; every method must run on the game loop goroutine.
type Surface struct {
	cfg  stagecraft.Config
	root *node

	nodes map[stagecraft.Handle]*node
	next  stagecraft.Handle

	loader       *resource.Loader
	textures     map[string]*ebiten.Image
	nextResource stagecraft.ResourceID

	r renderer

	handler     func(stagecraft.PointerEvent)
	pointer     pointerState
	injectQueue []syntheticPointerEvent
	hitBuf      []*node
	noCursor    bool
}

var _ stagecraft.RenderSurface = (*Surface)(nil)

// New creates a surface. When Config.WatchPictures is set, changed picture
// files under Config.PictureRoot are reloaded.
func New(opts Options) (*Surface, error) {
	cfg := withDefaults(opts.Config)
	s := &Surface{
		cfg:      cfg,
		nodes:    make(map[stagecraft.Handle]*node),
		textures: make(map[string]*ebiten.Image),
		noCursor: opts.NoCursor,
		loader: resource.NewLoader(resource.Options{
			Root:    cfg.PictureRoot,
			FS:      opts.FS,
			Workers: opts.Workers,
		}),
	}
	s.root = newNode(stagecraft.NoHandle, nodeContainer)
	w, h := s.CanvasSize()
	s.root.x, s.root.y = float64(w)/2, float64(h)/2
	s.root.scaleX = 1 / cfg.PointerScale
	s.root.scaleY = s.root.scaleX

	if cfg.WatchPictures && cfg.PictureRoot != "" && opts.FS == nil {
		if err := s.loader.Watch(cfg.PictureRoot); err != nil {
			_ = s.loader.Close()
			return nil, err
		}
		s.loader.OnReload(s.reloadPicture)
	}
	return s, nil
}

func withDefaults(c stagecraft.Config) stagecraft.Config {
	d := stagecraft.DefaultConfig()
	if c.StageWidth <= 0 {
		c.StageWidth = d.StageWidth
	}
	if c.StageHeight <= 0 {
		c.StageHeight = d.StageHeight
	}
	if c.PointerScale <= 0 {
		c.PointerScale = d.PointerScale
	}
	return c
}

// CanvasSize returns the canvas size in pixels, for ebiten.Game.Layout.
func (s *Surface) CanvasSize() (int, int) {
	return int(math.Round(s.cfg.StageWidth / s.cfg.PointerScale)),
		int(math.Round(s.cfg.StageHeight / s.cfg.PointerScale))
}

// Close stops picture decoding and watching.
func (s *Surface) Close() error {
	return s.loader.Close()
}

// Draw renders the display list onto screen.
func (s *Surface) Draw(screen *ebiten.Image) {
	s.r.walk(screen, s.root, identityTransform, 1)
}

func (s *Surface) node(h stagecraft.Handle) *node {
	n := s.nodes[h]
	if n == nil || n.disposed {
		return nil
	}
	return n
}

func (s *Surface) add(typ nodeType) *node {
	s.next++
	n := newNode(s.next, typ)
	s.nodes[n.handle] = n
	return n
}

// changed marks n's pixels stale in every enclosing cache.
func changed(n *node) {
	if n.typ == nodeText {
		n.text.invalidate()
	}
	invalidateAncestorCache(n)
}

// moved marks n's transform dirty. n's own cache survives; ancestors'
// caches do not.
func moved(n *node) {
	markSubtreeDirty(n)
	invalidateAncestorCache(n.parent)
}

// --- Primitives ---

func (s *Surface) NewSprite() stagecraft.Handle    { return s.add(nodeSprite).handle }
func (s *Surface) NewContainer() stagecraft.Handle { return s.add(nodeContainer).handle }
func (s *Surface) NewGraphic() stagecraft.Handle   { return s.add(nodeGraphic).handle }

func (s *Surface) NewText(font stagecraft.FontStyle) stagecraft.Handle {
	n := s.add(nodeText)
	n.text.font = font
	n.text.face = newFace(font)
	return n.handle
}

func (s *Surface) AddChild(parent, child stagecraft.Handle) {
	p, c := s.node(parent), s.node(child)
	if p == nil || c == nil {
		return
	}
	p.addChild(c)
}

// --- Transformer ---

func (s *Surface) SetPosition(h stagecraft.Handle, x, y float64) {
	if n := s.node(h); n != nil {
		n.x, n.y = x, y
		moved(n)
	}
}

func (s *Surface) SetPivot(h stagecraft.Handle, x, y float64) {
	if n := s.node(h); n != nil {
		n.pivotX, n.pivotY = x, y
		moved(n)
	}
}

func (s *Surface) SetScale(h stagecraft.Handle, sx, sy float64) {
	if n := s.node(h); n != nil {
		n.scaleX, n.scaleY = sx, sy
		moved(n)
	}
}

func (s *Surface) SetRotation(h stagecraft.Handle, degrees float64) {
	if n := s.node(h); n != nil {
		n.rotation = degrees
		moved(n)
	}
}

// SetDirection records the heading. Direction does not affect drawing.
func (s *Surface) SetDirection(h stagecraft.Handle, degrees float64) {
	if n := s.node(h); n != nil {
		n.direction = degrees
	}
}

func (s *Surface) SetSize(h stagecraft.Handle, w, ht float64) {
	if n := s.node(h); n != nil {
		n.width, n.height = w, ht
		changed(n)
	}
}

func (s *Surface) SetVisible(h stagecraft.Handle, visible bool) {
	if n := s.node(h); n != nil {
		n.visible = visible
		invalidateAncestorCache(n.parent)
	}
}

func (s *Surface) SetAlpha(h stagecraft.Handle, alpha float64) {
	if n := s.node(h); n != nil {
		n.alpha = alpha
		moved(n)
	}
}

// --- TextRenderer ---

func (s *Surface) text(h stagecraft.Handle) *node {
	n := s.node(h)
	if n == nil || n.typ != nodeText {
		return nil
	}
	return n
}

func (s *Surface) SetFont(h stagecraft.Handle, font stagecraft.FontStyle) {
	if n := s.text(h); n != nil {
		n.text.font = font
		n.text.face = newFace(font)
		changed(n)
	}
}

func (s *Surface) SetText(h stagecraft.Handle, str string) {
	if n := s.text(h); n != nil {
		n.text.content = str
		changed(n)
	}
}

func (s *Surface) SetTextColor(h stagecraft.Handle, c string) {
	if n := s.text(h); n != nil {
		n.text.color = c
		changed(n)
	}
}

func (s *Surface) SetTextDecoration(h stagecraft.Handle, underline, strike bool) {
	if n := s.text(h); n != nil {
		n.text.underline, n.text.strike = underline, strike
		changed(n)
	}
}

func (s *Surface) SetLineHeight(h stagecraft.Handle, lh float64) {
	if n := s.text(h); n != nil {
		n.text.lineHeight = lh
		changed(n)
	}
}

func (s *Surface) LayoutText(h stagecraft.Handle, f stagecraft.TextFrame) {
	if n := s.text(h); n != nil {
		n.text.frame = f
		changed(n)
	}
}

func (s *Surface) MeasuredWidth(h stagecraft.Handle) float64 {
	n := s.text(h)
	if n == nil {
		return 0
	}
	n.text.layout()
	return n.text.measuredW
}

func (s *Surface) MeasuredHeight(h stagecraft.Handle) float64 {
	n := s.text(h)
	if n == nil {
		return 0
	}
	n.text.layout()
	return n.text.measuredH
}

func (s *Surface) MeasuredLineHeight(h stagecraft.Handle) float64 {
	n := s.text(h)
	if n == nil {
		return 0
	}
	return n.text.lh()
}

// --- Painter ---

func (s *Surface) graphic(h stagecraft.Handle) *node {
	n := s.node(h)
	if n == nil || n.typ != nodeGraphic {
		return nil
	}
	return n
}

func (s *Surface) FillRect(h stagecraft.Handle, x, y, w, ht float64, c string) {
	if n := s.graphic(h); n != nil {
		n.shapes = append(n.shapes, shape{kind: shapeRect, x0: x, y0: y, x1: w, y1: ht, color: c})
		n.graphicDirty = true
		changed(n)
	}
}

func (s *Surface) StrokeLine(h stagecraft.Handle, x0, y0, x1, y1, thickness float64, c string) {
	if n := s.graphic(h); n != nil {
		n.shapes = append(n.shapes, shape{kind: shapeLine, x0: x0, y0: y0, x1: x1, y1: y1, thickness: thickness, color: c})
		n.graphicDirty = true
		changed(n)
	}
}

func (s *Surface) ClearGraphic(h stagecraft.Handle) {
	if n := s.graphic(h); n != nil {
		n.shapes = n.shapes[:0]
		n.graphicDirty = true
		changed(n)
	}
}

// --- Filterer ---

// ApplyFilters replaces the filter chain of h.
func (s *Surface) ApplyFilters(h stagecraft.Handle, filters []stagecraft.FilterSpec) {
	n := s.node(h)
	if n == nil {
		return
	}
	disposeFilters(n.filters)
	n.specs = append(n.specs[:0], filters...)
	n.filters = buildFilters(n.specs)
	if n.cacheEnabled {
		n.cacheDirty = true
	}
	invalidateAncestorCache(n)
}

func (s *Surface) HasFilters(h stagecraft.Handle) bool {
	n := s.node(h)
	return n != nil && len(n.specs) > 0
}

// CacheBitmap does nothing; filters are re-run whenever content changes.
func (s *Surface) CacheBitmap(stagecraft.Handle) {}

// SetFilterCache keeps the filtered output of h in a texture that is only
// redrawn after h or its subtree changes.
func (s *Surface) SetFilterCache(h stagecraft.Handle, enabled bool) {
	n := s.node(h)
	if n == nil || n.cacheEnabled == enabled {
		return
	}
	n.cacheEnabled = enabled
	if !enabled && n.cacheTexture != nil {
		n.cacheTexture.Deallocate()
		n.cacheTexture = nil
	}
	n.cacheDirty = enabled
	invalidateAncestorCache(n.parent)
}

// --- ResourceLoader ---

// RequestResource starts loading pic for the sprite h. done runs during a
// later Update once the image is shown. Failed loads are logged and never
// complete.
func (s *Surface) RequestResource(h stagecraft.Handle, sceneID string, pic stagecraft.Picture, done func(stagecraft.ResourceID)) stagecraft.ResourceID {
	n := s.node(h)
	if n == nil {
		return 0
	}
	s.nextResource++
	id := s.nextResource
	n.resource = id
	n.file = pic.FileURL

	file := pic.FileURL
	s.loader.Load(file, func(img image.Image, err error) {
		if err != nil {
			stagecraft.Logger().Warn("ebitensurface: picture load failed",
				"picture", pic.ID, "scene", sceneID, "err", err)
			return
		}
		if !n.disposed && n.resource == id {
			n.image = s.texture(file, img)
			changed(n)
		}
		if done != nil {
			done(id)
		}
	})
	return id
}

// texture returns the uploaded image for file, uploading img on first use.
func (s *Surface) texture(file string, img image.Image) *ebiten.Image {
	if t, ok := s.textures[file]; ok {
		return t
	}
	t := ebiten.NewImageFromImage(img)
	s.textures[file] = t
	return t
}

func (s *Surface) CurrentResource(h stagecraft.Handle) stagecraft.ResourceID {
	if n := s.node(h); n != nil {
		return n.resource
	}
	return 0
}

// RefreshScale re-derives the drawn size after a picture change.
func (s *Surface) RefreshScale(h stagecraft.Handle) {
	if n := s.node(h); n != nil {
		moved(n)
		changed(n)
	}
}

// Update delivers finished picture loads and processes pointer input. The
// stage calls it once per tick.
func (s *Surface) Update() {
	s.loader.Drain()
	s.processInput()
}

// reloadPicture re-decodes path for every sprite showing it.
func (s *Surface) reloadPicture(path string) {
	delete(s.textures, path)
	for _, n := range s.nodes {
		if n.disposed || n.typ != nodeSprite || n.file != path {
			continue
		}
		id := n.resource
		s.loader.Load(path, func(img image.Image, err error) {
			if err != nil {
				stagecraft.Logger().Warn("ebitensurface: picture reload failed", "file", path, "err", err)
				return
			}
			if !n.disposed && n.resource == id {
				n.image = s.texture(path, img)
				changed(n)
			}
		})
	}
}

// --- PointerSource ---

func (s *Surface) SetPointerHandler(fn func(stagecraft.PointerEvent)) { s.handler = fn }

func (s *Surface) SetInteractive(h stagecraft.Handle, interactive bool) {
	if n := s.node(h); n != nil {
		n.interactive = interactive
	}
}

// --- DisplayList ---

// IndexOf returns the display list position of h, or -1 when h is not in
// the list.
func (s *Surface) IndexOf(h stagecraft.Handle) int {
	n := s.node(h)
	if n == nil || n.parent != s.root {
		return -1
	}
	return s.root.indexOf(n)
}

// Insert places h at index in the display list, moving it if it is
// already there. A negative index puts it on top.
func (s *Surface) Insert(h stagecraft.Handle, index int) {
	n := s.node(h)
	if n == nil {
		return
	}
	if n.parent == s.root {
		if cur := s.root.indexOf(n); cur < index {
			index--
		}
	}
	s.root.addChildAt(n, index)
}

func (s *Surface) Detach(h stagecraft.Handle) {
	if n := s.node(h); n != nil {
		n.removeFromParent()
	}
}

// Rasterize returns a new primitive showing a frozen copy of h, filters
// included, with h's transform. The copy is not in the display list.
func (s *Surface) Rasterize(h stagecraft.Handle) stagecraft.Handle {
	n := s.node(h)
	if n == nil {
		return stagecraft.NoHandle
	}
	img, bounds := s.r.rasterize(n)
	if img == nil {
		return stagecraft.NoHandle
	}
	st := s.add(nodeStamp)
	st.image = img
	st.imageX, st.imageY = bounds.x, bounds.y
	st.x, st.y = n.x, n.y
	st.pivotX, st.pivotY = n.pivotX, n.pivotY
	st.scaleX, st.scaleY = n.scaleX, n.scaleY
	st.rotation = n.rotation
	st.alpha = n.alpha
	st.visible = n.visible
	return st.handle
}

// Destroy releases h and its descendants. Their handles become invalid.
func (s *Surface) Destroy(h stagecraft.Handle) {
	n := s.node(h)
	if n == nil {
		return
	}
	s.forget(n)
	n.dispose()
}

func (s *Surface) forget(n *node) {
	delete(s.nodes, n.handle)
	disposeFilters(n.filters)
	if s.pointer.hit == n {
		s.pointer.hit = nil
	}
	for _, child := range n.children {
		s.forget(child)
	}
}
