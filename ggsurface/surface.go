// Package ggsurface renders stagecraft entities on the CPU with gogpu/gg.
//
// It follows the canvas convention. Registration points are written to
// each display object directly. Text is positioned by middle baselines,
// one line at a time. Filters only show once the object is cached with
// CacheBitmap or SetFilterCache, and run through a gg scene.FilterChain.
//
// The canvas is Config.StageWidth / PointerScale by Config.StageHeight /
// PointerScale pixels with the stage origin at its center. Pointer
// readings are canvas pixels too.
//
//	surface, err := ggsurface.New(ggsurface.Options{Config: cfg})
//	stage := stagecraft.NewStage(surface, cfg)
//	stage.Update(1.0 / 60)
//	err = surface.Render().SavePNG("frame.png")
package ggsurface

import (
	"image"
	"io/fs"
	"math"

	"github.com/gogpu/gg"

	"github.com/phanxgames/stagecraft"
	"github.com/phanxgames/stagecraft/internal/resource"
)

// Options configures a Surface.
type Options struct {
	// Config supplies the stage size, pointer scale and picture settings.
	Config stagecraft.Config
	// FS, when set, replaces Config.PictureRoot as the picture source.
	FS fs.FS
	// Workers bounds concurrent picture decodes.
	Workers int
}

// Surface is a CPU RenderSurface. Methods must be called from one
// goroutine.
type Surface struct {
	cfg     stagecraft.Config
	root    *object
	objects map[stagecraft.Handle]*object
	last    stagecraft.Handle
	canvas  *gg.Pixmap

	loader    *resource.Loader
	pictures  map[string]*gg.Pixmap
	resources stagecraft.ResourceID

	handler      func(stagecraft.PointerEvent)
	samples      []pointerSample
	down         bool
	target       *object
	lastX, lastY float64
}

var _ stagecraft.RenderSurface = (*Surface)(nil)

// New creates a surface. With Config.WatchPictures set, edits to files
// under Config.PictureRoot are picked up on the next Update.
func New(opts Options) (*Surface, error) {
	cfg := opts.Config
	def := stagecraft.DefaultConfig()
	if cfg.StageWidth <= 0 || cfg.StageHeight <= 0 {
		cfg.StageWidth, cfg.StageHeight = def.StageWidth, def.StageHeight
	}
	if cfg.PointerScale <= 0 {
		cfg.PointerScale = def.PointerScale
	}

	s := &Surface{
		cfg:      cfg,
		objects:  make(map[stagecraft.Handle]*object),
		pictures: make(map[string]*gg.Pixmap),
		loader:   resource.NewLoader(resource.Options{Root: cfg.PictureRoot, FS: opts.FS, Workers: opts.Workers}),
	}
	w, h := s.CanvasSize()
	s.canvas = gg.NewPixmap(w, h)
	s.root = newObject(stagecraft.NoHandle, kindContainer)
	s.root.x, s.root.y = float64(w)/2, float64(h)/2
	s.root.scaleX = 1 / cfg.PointerScale
	s.root.scaleY = s.root.scaleX

	if cfg.WatchPictures && cfg.PictureRoot != "" && opts.FS == nil {
		if err := s.loader.Watch(cfg.PictureRoot); err != nil {
			_ = s.loader.Close()
			return nil, err
		}
		s.loader.OnReload(s.reload)
	}
	return s, nil
}

// CanvasSize returns the canvas size in pixels.
func (s *Surface) CanvasSize() (int, int) {
	return int(math.Round(s.cfg.StageWidth / s.cfg.PointerScale)),
		int(math.Round(s.cfg.StageHeight / s.cfg.PointerScale))
}

// Render paints the display list and returns the canvas. The pixmap is
// reused by the next call.
func (s *Surface) Render() *gg.Pixmap {
	s.canvas.Clear(gg.Transparent)
	s.paint(rgba(s.canvas), s.root, gg.Identity(), 1)
	return s.canvas
}

// Image renders the display list into a new image.
func (s *Surface) Image() *image.RGBA {
	return s.Render().ToImage()
}

// Close stops picture decoding and watching.
func (s *Surface) Close() error {
	return s.loader.Close()
}

func (s *Surface) get(h stagecraft.Handle) *object {
	o := s.objects[h]
	if o == nil || o.destroyed {
		return nil
	}
	return o
}

func (s *Surface) getKind(h stagecraft.Handle, k kind) *object {
	if o := s.get(h); o != nil && o.kind == k {
		return o
	}
	return nil
}

func (s *Surface) create(k kind) *object {
	s.last++
	o := newObject(s.last, k)
	s.objects[o.handle] = o
	return o
}

// --- Primitives ---

func (s *Surface) NewSprite() stagecraft.Handle    { return s.create(kindBitmap).handle }
func (s *Surface) NewContainer() stagecraft.Handle { return s.create(kindContainer).handle }
func (s *Surface) NewGraphic() stagecraft.Handle   { return s.create(kindShape).handle }

func (s *Surface) NewText(font stagecraft.FontStyle) stagecraft.Handle {
	o := s.create(kindText)
	o.text.font = font
	o.text.face = faceFor(font)
	return o.handle
}

func (s *Surface) AddChild(parent, child stagecraft.Handle) {
	if p, c := s.get(parent), s.get(child); p != nil && c != nil {
		p.addChild(c)
	}
}

// --- Transformer ---

// move applies fn to h's transform. Only enclosing caches go stale.
func (s *Surface) move(h stagecraft.Handle, fn func(o *object)) {
	if o := s.get(h); o != nil {
		fn(o)
		o.touchParent()
	}
}

func (s *Surface) SetPosition(h stagecraft.Handle, x, y float64) {
	s.move(h, func(o *object) { o.x, o.y = x, y })
}

// SetPivot sets the registration point.
func (s *Surface) SetPivot(h stagecraft.Handle, x, y float64) {
	s.move(h, func(o *object) { o.regX, o.regY = x, y })
}

func (s *Surface) SetScale(h stagecraft.Handle, sx, sy float64) {
	s.move(h, func(o *object) { o.scaleX, o.scaleY = sx, sy })
}

func (s *Surface) SetRotation(h stagecraft.Handle, degrees float64) {
	s.move(h, func(o *object) { o.rotation = degrees })
}

// SetDirection records the heading; it has no visual effect.
func (s *Surface) SetDirection(h stagecraft.Handle, degrees float64) {
	if o := s.get(h); o != nil {
		o.direction = degrees
	}
}

func (s *Surface) SetSize(h stagecraft.Handle, w, ht float64) {
	if o := s.get(h); o != nil {
		o.width, o.height = w, ht
		o.touch()
	}
}

func (s *Surface) SetVisible(h stagecraft.Handle, visible bool) {
	s.move(h, func(o *object) { o.visible = visible })
}

func (s *Surface) SetAlpha(h stagecraft.Handle, alpha float64) {
	s.move(h, func(o *object) { o.alpha = alpha })
}

// --- TextRenderer ---

// restyle applies fn to a text object's block and drops its layout.
func (s *Surface) restyle(h stagecraft.Handle, fn func(tb *textBlock)) {
	if o := s.getKind(h, kindText); o != nil {
		fn(o.text)
		o.text.invalidate()
		o.touch()
	}
}

func (s *Surface) SetFont(h stagecraft.Handle, font stagecraft.FontStyle) {
	s.restyle(h, func(tb *textBlock) { tb.font, tb.face = font, faceFor(font) })
}

func (s *Surface) SetText(h stagecraft.Handle, str string) {
	s.restyle(h, func(tb *textBlock) { tb.content = str })
}

func (s *Surface) SetTextColor(h stagecraft.Handle, c string) {
	s.restyle(h, func(tb *textBlock) { tb.color = c })
}

func (s *Surface) SetTextDecoration(h stagecraft.Handle, underline, strike bool) {
	s.restyle(h, func(tb *textBlock) { tb.underline, tb.strike = underline, strike })
}

func (s *Surface) SetLineHeight(h stagecraft.Handle, lh float64) {
	s.restyle(h, func(tb *textBlock) { tb.lineHeight = lh })
}

func (s *Surface) LayoutText(h stagecraft.Handle, f stagecraft.TextFrame) {
	s.restyle(h, func(tb *textBlock) { tb.frame = f })
}

func (s *Surface) MeasuredWidth(h stagecraft.Handle) float64 {
	o := s.getKind(h, kindText)
	if o == nil {
		return 0
	}
	o.text.layout()
	return o.text.measuredW
}

func (s *Surface) MeasuredHeight(h stagecraft.Handle) float64 {
	if o := s.getKind(h, kindText); o != nil {
		return o.text.measuredH()
	}
	return 0
}

func (s *Surface) MeasuredLineHeight(h stagecraft.Handle) float64 {
	if o := s.getKind(h, kindText); o != nil {
		return o.text.lh()
	}
	return 0
}

// --- Painter ---

func (s *Surface) draw(h stagecraft.Handle, fn func(o *object)) {
	if o := s.getKind(h, kindShape); o != nil {
		fn(o)
		o.shapeDirty = true
		o.touch()
	}
}

func (s *Surface) FillRect(h stagecraft.Handle, x, y, w, ht float64, c string) {
	s.draw(h, func(o *object) {
		o.shapes = append(o.shapes, shape{kind: shapeRect, a: x, b: y, c: w, d: ht, color: c})
	})
}

func (s *Surface) StrokeLine(h stagecraft.Handle, x0, y0, x1, y1, thickness float64, c string) {
	s.draw(h, func(o *object) {
		o.shapes = append(o.shapes, shape{kind: shapeLine, a: x0, b: y0, c: x1, d: y1, thickness: thickness, color: c})
	})
}

func (s *Surface) ClearGraphic(h stagecraft.Handle) {
	s.draw(h, func(o *object) { o.shapes = nil })
}

// --- Filterer ---

// ApplyFilters sets the filters h shows once cached.
func (s *Surface) ApplyFilters(h stagecraft.Handle, filters []stagecraft.FilterSpec) {
	o := s.get(h)
	if o == nil {
		return
	}
	o.specs = append(o.specs[:0], filters...)
	o.chain = buildChain(o.specs)
	o.touch()
}

func (s *Surface) HasFilters(h stagecraft.Handle) bool {
	o := s.get(h)
	return o != nil && len(o.specs) > 0
}

// CacheBitmap rasterizes h with its filters now. Until it is uncached, h
// is drawn from that bitmap, rebuilt whenever its subtree changes.
func (s *Surface) CacheBitmap(h stagecraft.Handle) {
	if o := s.get(h); o != nil {
		o.cached = true
		s.refreshCache(o)
		o.touchParent()
	}
}

// SetFilterCache caches h like CacheBitmap, or drops its cache.
func (s *Surface) SetFilterCache(h stagecraft.Handle, enabled bool) {
	o := s.get(h)
	if o == nil {
		return
	}
	if enabled {
		s.CacheBitmap(h)
		return
	}
	if o.cached {
		o.uncache()
		o.touchParent()
	}
}

// --- ResourceLoader ---

// RequestResource decodes pic for the sprite h in the background. done
// runs during a later Update. Failed loads are logged and never complete.
func (s *Surface) RequestResource(h stagecraft.Handle, sceneID string, pic stagecraft.Picture, done func(stagecraft.ResourceID)) stagecraft.ResourceID {
	o := s.get(h)
	if o == nil {
		return 0
	}
	s.resources++
	id := s.resources
	o.resource, o.file = id, pic.FileURL
	s.load(o, pic.FileURL, func(err error) {
		if err != nil {
			stagecraft.Logger().Warn("ggsurface: picture load failed", "picture", pic.ID, "scene", sceneID, "err", err)
			return
		}
		if done != nil {
			done(id)
		}
	})
	return id
}

// load decodes file and shows it on o if o still wants it.
func (s *Surface) load(o *object, file string, then func(error)) {
	id := o.resource
	s.loader.Load(file, func(img image.Image, err error) {
		if err == nil && !o.destroyed && o.resource == id {
			pm := s.pictures[file]
			if pm == nil {
				pm = gg.FromImage(img)
				s.pictures[file] = pm
			}
			o.image = pm
			o.touch()
		}
		then(err)
	})
}

func (s *Surface) CurrentResource(h stagecraft.Handle) stagecraft.ResourceID {
	if o := s.get(h); o != nil {
		return o.resource
	}
	return 0
}

// RefreshScale redraws h after its picture or size changed.
func (s *Surface) RefreshScale(h stagecraft.Handle) {
	if o := s.get(h); o != nil {
		o.touch()
	}
}

// Update runs finished picture loads and queued pointer readings.
func (s *Surface) Update() {
	s.loader.Drain()
	s.processPointer()
}

func (s *Surface) reload(file string) {
	delete(s.pictures, file)
	for _, o := range s.objects {
		if o.destroyed || o.kind != kindBitmap || o.file != file {
			continue
		}
		s.load(o, file, func(err error) {
			if err != nil {
				stagecraft.Logger().Warn("ggsurface: picture reload failed", "file", file, "err", err)
			}
		})
	}
}

// --- PointerSource ---

func (s *Surface) SetPointerHandler(fn func(stagecraft.PointerEvent)) { s.handler = fn }

func (s *Surface) SetInteractive(h stagecraft.Handle, interactive bool) {
	if o := s.get(h); o != nil {
		o.mouseEnabled = interactive
	}
}

// --- DisplayList ---

func (s *Surface) IndexOf(h stagecraft.Handle) int {
	if o := s.get(h); o != nil && o.parent == s.root {
		return s.root.indexOf(o)
	}
	return -1
}

// Insert puts h at index in the display list. Negative indexes append.
func (s *Surface) Insert(h stagecraft.Handle, index int) {
	o := s.get(h)
	if o == nil {
		return
	}
	if cur := s.IndexOf(h); cur >= 0 && cur < index {
		index--
	}
	s.root.addChildAt(o, index)
}

func (s *Surface) Detach(h stagecraft.Handle) {
	if o := s.get(h); o != nil {
		o.detach()
	}
}

// Rasterize freezes h, filters included, into a new stamp object carrying
// h's transform. The stamp starts outside the display list.
func (s *Surface) Rasterize(h stagecraft.Handle) stagecraft.Handle {
	o := s.get(h)
	if o == nil {
		return stagecraft.NoHandle
	}
	b := s.snapshot(o)
	if b == nil {
		return stagecraft.NoHandle
	}
	st := s.create(kindStamp)
	st.stamp = b
	st.x, st.y = o.x, o.y
	st.regX, st.regY = o.regX, o.regY
	st.scaleX, st.scaleY = o.scaleX, o.scaleY
	st.rotation = o.rotation
	st.alpha = o.alpha
	st.visible = o.visible
	return st.handle
}

// Destroy releases h and its subtree.
func (s *Surface) Destroy(h stagecraft.Handle) {
	o := s.get(h)
	if o == nil {
		return
	}
	s.forget(o)
	o.destroy()
}

func (s *Surface) forget(o *object) {
	delete(s.objects, o.handle)
	if s.target == o {
		s.target = nil
	}
	for _, c := range o.children {
		s.forget(c)
	}
}
