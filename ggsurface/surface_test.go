package ggsurface

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/phanxgames/stagecraft"
)

func newTestSurface(t *testing.T, fsys fstest.MapFS) *Surface {
	t.Helper()
	opts := Options{Config: stagecraft.DefaultConfig()}
	if fsys != nil {
		opts.FS = fsys
	}
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// placeSquare puts an interactive red 20x20 square centered on the stage
// origin on top of the display list.
func placeSquare(s *Surface) stagecraft.Handle {
	g := s.NewGraphic()
	s.FillRect(g, -10, -10, 20, 20, "#ff0000")
	s.SetInteractive(g, true)
	s.Insert(g, -1)
	return g
}

type eventLog struct {
	events []stagecraft.PointerEvent
}

func (l *eventLog) handle(ev stagecraft.PointerEvent) { l.events = append(l.events, ev) }

// --- Canvas ---

func TestCanvasFollowsPointerScale(t *testing.T) {
	s := newTestSurface(t, nil)
	w, h := s.CanvasSize()
	if w != 640 || h != 360 {
		t.Errorf("canvas = %dx%d, want 640x360", w, h)
	}
	if pm := s.Render(); pm.Width() != 640 || pm.Height() != 360 {
		t.Errorf("Render() = %dx%d", pm.Width(), pm.Height())
	}
	assertNear(t, "root x", s.root.x, 320)
	assertNear(t, "root y", s.root.y, 180)
	assertNear(t, "root scale", s.root.scaleY, 1/0.75)
}

func TestRenderPaintsAtStageOrigin(t *testing.T) {
	s := newTestSurface(t, nil)
	placeSquare(s)
	pm := s.Render()
	if got := pixel(pm, 320, 180); got[0] < 250 || got[3] < 250 {
		t.Errorf("center pixel = %v, want red", got)
	}
	if got := pixel(pm, 0, 0); got[3] != 0 {
		t.Errorf("corner pixel = %v, want transparent", got)
	}
	// The square spans 20 stage units, about 26.7 canvas pixels.
	if got := pixel(pm, 320+16, 180); got[3] != 0 {
		t.Errorf("pixel past the edge = %v, want transparent", got)
	}
}

func TestHiddenAndTransparentSkipPainting(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	s.SetVisible(g, false)
	if got := pixel(s.Render(), 320, 180); got[3] != 0 {
		t.Errorf("hidden pixel = %v", got)
	}
	s.SetVisible(g, true)
	s.SetAlpha(g, 0.5)
	if got := pixel(s.Render(), 320, 180); got[3] < 125 || got[3] > 131 {
		t.Errorf("half alpha = %d, want about 128", got[3])
	}
}

// --- Display list ---

func TestInsertOrdersDisplayList(t *testing.T) {
	s := newTestSurface(t, nil)
	a, b := placeSquare(s), placeSquare(s)
	if s.IndexOf(a) != 0 || s.IndexOf(b) != 1 {
		t.Fatalf("indexes = %d, %d", s.IndexOf(a), s.IndexOf(b))
	}
	c := s.NewSprite()
	if s.IndexOf(c) != -1 {
		t.Error("unattached object should report -1")
	}
	s.Insert(c, s.IndexOf(a))
	if s.IndexOf(c) != 0 || s.IndexOf(a) != 1 {
		t.Errorf("insert below: c=%d a=%d", s.IndexOf(c), s.IndexOf(a))
	}
	s.Insert(c, 3)
	if s.IndexOf(c) != 2 {
		t.Errorf("move to top: c=%d, want 2", s.IndexOf(c))
	}
	s.Detach(c)
	if s.IndexOf(c) != -1 || len(s.root.children) != 2 {
		t.Error("Detach should leave the display list")
	}
}

func TestDestroyReleasesSubtree(t *testing.T) {
	s := newTestSurface(t, nil)
	box := s.NewContainer()
	child := s.NewGraphic()
	s.AddChild(box, child)
	s.Insert(box, -1)

	s.Destroy(box)
	if s.get(box) != nil || s.get(child) != nil {
		t.Error("destroyed objects should be forgotten")
	}
	if len(s.root.children) != 0 {
		t.Error("destroyed object still in the display list")
	}
	s.SetPosition(child, 1, 1)
	s.Destroy(box)
}

func TestAddChildRejectsCycle(t *testing.T) {
	s := newTestSurface(t, nil)
	a, b := s.NewContainer(), s.NewContainer()
	s.AddChild(a, b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a cycle")
		}
	}()
	s.AddChild(b, a)
}

// --- Text ---

func TestTextCallsIgnoreOtherKinds(t *testing.T) {
	s := newTestSurface(t, nil)
	sp := s.NewSprite()
	s.SetText(sp, "nope")
	if got := s.MeasuredWidth(sp); got != 0 {
		t.Errorf("MeasuredWidth(sprite) = %v", got)
	}
	s.FillRect(sp, 0, 0, 1, 1, "#000000")
	if len(s.get(sp).shapes) != 0 {
		t.Error("FillRect should ignore sprites")
	}
}

func TestMeasuredMetrics(t *testing.T) {
	s := newTestSurface(t, nil)
	h := s.NewText(monoFont)
	s.SetText(h, "ab\nabcd")
	face := faceFor(monoFont)
	assertNear(t, "width", s.MeasuredWidth(h), face.Advance("abcd"))
	s.SetLineHeight(h, 12)
	assertNear(t, "line height", s.MeasuredLineHeight(h), 12)
	assertNear(t, "height", s.MeasuredHeight(h), 24)
}

// --- Filters and caching ---

func halfAlpha() []stagecraft.FilterSpec {
	m := stagecraft.IdentityMatrix()
	m[18] = 0.5
	return []stagecraft.FilterSpec{{Kind: stagecraft.FilterColorMatrix, Matrix: m}}
}

func TestFiltersShowOnlyWhenCached(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	s.ApplyFilters(g, halfAlpha())
	if !s.HasFilters(g) {
		t.Fatal("HasFilters = false")
	}
	if got := pixel(s.Render(), 320, 180); got[3] != 255 {
		t.Errorf("uncached alpha = %d, want 255", got[3])
	}

	s.CacheBitmap(g)
	if got := pixel(s.Render(), 320, 180); got[3] < 126 || got[3] > 130 {
		t.Errorf("cached alpha = %d, want about 128", got[3])
	}

	s.SetFilterCache(g, false)
	if got := pixel(s.Render(), 320, 180); got[3] != 255 {
		t.Errorf("uncached again alpha = %d, want 255", got[3])
	}
}

func TestCacheGoesStaleOnContentChange(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	s.CacheBitmap(g)
	o := s.get(g)
	if o.cache == nil || o.cacheStale {
		t.Fatal("CacheBitmap should build a fresh cache")
	}

	s.SetPosition(g, 5, 5)
	if o.cacheStale {
		t.Error("moving an object should keep its own cache")
	}
	s.FillRect(g, 10, 10, 5, 5, "#00ff00")
	if !o.cacheStale {
		t.Error("drawing should mark the cache stale")
	}
	s.Render()
	if o.cacheStale {
		t.Error("Render should rebuild a stale cache")
	}
	assertNear(t, "cache width", float64(o.cache.pm.Width()), 25)
}

func TestBlurCachePadsBounds(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	s.ApplyFilters(g, []stagecraft.FilterSpec{{Kind: stagecraft.FilterBlur, Value: 4}})
	s.SetFilterCache(g, true)
	c := s.get(g).cache
	if c == nil {
		t.Fatal("no cache")
	}
	assertNear(t, "cache x", c.x, -14)
	assertNear(t, "cache width", float64(c.pm.Width()), 28)
}

func TestFilterCacheOnChildStalesParent(t *testing.T) {
	s := newTestSurface(t, nil)
	box := s.NewContainer()
	g := s.NewGraphic()
	s.AddChild(box, g)
	s.Insert(box, -1)
	s.CacheBitmap(box)
	s.FillRect(g, 0, 0, 4, 4, "#000000")
	if !s.get(box).cacheStale {
		t.Error("child drawing should stale the parent cache")
	}
}

// --- Pointer ---

func TestClickHitsOpaquePixels(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	var log eventLog
	s.SetPointerHandler(log.handle)

	s.Click(320, 180)
	s.Update()
	if len(log.events) != 2 {
		t.Fatalf("events = %d, want 2", len(log.events))
	}
	if log.events[0].Type != stagecraft.PointerDown || log.events[1].Type != stagecraft.PointerUp {
		t.Errorf("types = %v, %v", log.events[0].Type, log.events[1].Type)
	}
	if log.events[0].Target != g {
		t.Errorf("target = %d, want %d", log.events[0].Target, g)
	}

	log.events = nil
	s.Click(340, 180)
	s.Update()
	if len(log.events) != 0 {
		t.Errorf("click outside delivered %d events", len(log.events))
	}
}

func TestClickIgnoresTransparentBoundsArea(t *testing.T) {
	s := newTestSurface(t, nil)
	g := s.NewGraphic()
	s.StrokeLine(g, -20, -20, 20, 20, 2, "#000000")
	s.SetInteractive(g, true)
	s.Insert(g, -1)
	var log eventLog
	s.SetPointerHandler(log.handle)

	// Stage (15, -15) is inside the line's box but far from the line.
	s.Click(340, 160)
	s.Update()
	if len(log.events) != 0 {
		t.Errorf("off-line click delivered %d events", len(log.events))
	}
	s.Click(340, 200)
	s.Update()
	if len(log.events) != 2 {
		t.Errorf("on-line click delivered %d events, want 2", len(log.events))
	}
}

func TestTopmostInteractiveWins(t *testing.T) {
	s := newTestSurface(t, nil)
	a := placeSquare(s)
	b := placeSquare(s)
	var log eventLog
	s.SetPointerHandler(log.handle)

	s.Click(320, 180)
	s.Update()
	if len(log.events) == 0 || log.events[0].Target != b {
		t.Fatalf("events = %+v, want target %d", log.events, b)
	}

	log.events = nil
	s.SetInteractive(b, false)
	s.Click(320, 180)
	s.Update()
	if len(log.events) == 0 || log.events[0].Target != a {
		t.Errorf("events = %+v, want target %d", log.events, a)
	}
}

func TestPressTargetReceivesMoves(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	var log eventLog
	s.SetPointerHandler(log.handle)

	s.Pointer(320, 180, true)
	s.Pointer(320, 180, true)
	s.Pointer(500, 300, true)
	s.Pointer(500, 300, false)
	s.Update()

	want := []stagecraft.PointerEventType{stagecraft.PointerDown, stagecraft.PointerMove, stagecraft.PointerUp}
	if len(log.events) != len(want) {
		t.Fatalf("events = %+v", log.events)
	}
	for i, ev := range log.events {
		if ev.Type != want[i] || ev.Target != g {
			t.Errorf("event %d = %+v", i, ev)
		}
	}
	assertNear(t, "move x", log.events[1].StageX, 500)
}

func TestDestroyDuringPressDropsEvents(t *testing.T) {
	s := newTestSurface(t, nil)
	g := placeSquare(s)
	var log eventLog
	s.SetPointerHandler(log.handle)

	s.Pointer(320, 180, true)
	s.Update()
	s.Destroy(g)
	s.Pointer(320, 180, false)
	s.Update()
	if len(log.events) != 1 {
		t.Errorf("events = %d, want only the press", len(log.events))
	}
}

// --- Resources ---

func TestRequestResourceCompletesOnUpdate(t *testing.T) {
	s := newTestSurface(t, fstest.MapFS{"cat.png": {Data: pngData(t, 8, 4)}})
	h := s.NewSprite()

	var got []stagecraft.ResourceID
	id := s.RequestResource(h, "scene", stagecraft.Picture{ID: "p", FileURL: "cat.png"}, func(id stagecraft.ResourceID) {
		got = append(got, id)
	})
	if s.CurrentResource(h) != id {
		t.Fatalf("CurrentResource = %d, want %d", s.CurrentResource(h), id)
	}
	s.loader.Wait()
	s.Update()
	if len(got) != 1 || got[0] != id {
		t.Fatalf("completions = %v, want [%d]", got, id)
	}
	img := s.get(h).image
	if img == nil || img.Width() != 8 {
		t.Fatal("sprite image not set")
	}

	other := s.NewSprite()
	s.RequestResource(other, "scene", stagecraft.Picture{FileURL: "cat.png"}, nil)
	s.loader.Wait()
	s.Update()
	if s.get(other).image != img {
		t.Error("sprites showing one file should share its pixmap")
	}
}

func TestStaleResourceDoesNotReplaceImage(t *testing.T) {
	s := newTestSurface(t, fstest.MapFS{
		"a.png": {Data: pngData(t, 2, 2)},
		"b.png": {Data: pngData(t, 6, 6)},
	})
	h := s.NewSprite()

	var got []stagecraft.ResourceID
	done := func(id stagecraft.ResourceID) { got = append(got, id) }
	first := s.RequestResource(h, "", stagecraft.Picture{FileURL: "a.png"}, done)
	second := s.RequestResource(h, "", stagecraft.Picture{FileURL: "b.png"}, done)
	s.loader.Wait()
	s.Update()

	if len(got) != 2 || first == second {
		t.Fatalf("completions = %v", got)
	}
	if img := s.get(h).image; img == nil || img.Width() != 6 {
		t.Error("sprite should show the newest picture")
	}
}

func TestFailedResourceNeverCompletes(t *testing.T) {
	s := newTestSurface(t, fstest.MapFS{})
	h := s.NewSprite()
	called := false
	s.RequestResource(h, "", stagecraft.Picture{FileURL: "missing.png"}, func(stagecraft.ResourceID) { called = true })
	s.loader.Wait()
	s.Update()
	if called || s.get(h).image != nil {
		t.Error("failed load should not complete")
	}
}

func TestSpritePictureStretchesToSize(t *testing.T) {
	s := newTestSurface(t, fstest.MapFS{"dot.png": {Data: pngData(t, 4, 4)}})
	h := s.NewSprite()
	s.SetSize(h, 40, 20)
	s.RequestResource(h, "", stagecraft.Picture{FileURL: "dot.png"}, nil)
	s.loader.Wait()
	s.Update()
	assertNear(t, "fit x", imageFit(s.get(h)).A, 10)
	assertNear(t, "fit y", imageFit(s.get(h)).E, 5)
	b := contentBounds(s.get(h))
	assertNear(t, "bounds w", b.w, 40)
	assertNear(t, "bounds h", b.h, 20)
}

// --- Stamps ---

func TestRasterizeCopiesTransform(t *testing.T) {
	s := newTestSurface(t, nil)
	g := s.NewGraphic()
	s.FillRect(g, -10, -5, 20, 10, "#ff0000")
	s.SetPosition(g, 12, -7)
	s.SetRotation(g, 30)
	s.SetAlpha(g, 0.5)

	st := s.Rasterize(g)
	if st == stagecraft.NoHandle {
		t.Fatal("Rasterize returned no handle")
	}
	o := s.get(st)
	if o.kind != kindStamp || o.stamp == nil {
		t.Fatal("stamp has no pixels")
	}
	assertNear(t, "x", o.x, 12)
	assertNear(t, "y", o.y, -7)
	assertNear(t, "rotation", o.rotation, 30)
	assertNear(t, "alpha", o.alpha, 0.5)
	assertNear(t, "stamp x", o.stamp.x, -10)
	if s.IndexOf(st) != -1 {
		t.Error("stamp should start outside the display list")
	}

	empty := s.NewGraphic()
	if s.Rasterize(empty) != stagecraft.NoHandle {
		t.Error("Rasterize of an empty graphic should return NoHandle")
	}
}

// --- Stage integration ---

func newTextBoxStage(t *testing.T) (*Surface, *stagecraft.Stage, *stagecraft.Entity) {
	t.Helper()
	s := newTestSurface(t, nil)
	st := stagecraft.NewStage(s, stagecraft.DefaultConfig())
	obj := &stagecraft.StageObject{ObjectID: "obj-text", ObjectName: "label", ObjectKind: stagecraft.KindTextBox}
	e := stagecraft.NewEntity(st, obj)
	m := stagecraft.DefaultModel()
	m.Text = "hello"
	m.Font = "20px Nanum Gothic"
	m.Width, m.Height = 50, 25
	e.InjectModel(nil, &m)
	st.LoadEntity(e, -1)
	return s, st, e
}

func TestStageDragsTextBox(t *testing.T) {
	s, st, e := newTextBoxStage(t)
	hist := stagecraft.NewHistory(st, 0)
	st.SetCommandHost(hist)

	s.Pointer(320, 180, true)
	s.Pointer(400, 100, true)
	s.Pointer(400, 100, false)
	st.Update(1.0 / 60)

	assertNear(t, "X()", e.X(), 60)
	assertNear(t, "Y()", e.Y(), 60)
	o := s.get(e.Object())
	assertNear(t, "object x", o.x, 60)
	assertNear(t, "object y", o.y, -60)
	if st.Selected() != "obj-text" {
		t.Errorf("Selected() = %q", st.Selected())
	}
	if hist.Len() != 1 {
		t.Fatalf("history Len() = %d, want 1", hist.Len())
	}
	hist.Undo()
	assertNear(t, "X() after undo", e.X(), 0)
}

func TestStageHueCachesEntity(t *testing.T) {
	s, _, e := newTextBoxStage(t)
	e.SetEffect(stagecraft.EffectHue, 90)
	e.ApplyFilter(false)
	o := s.get(e.Object())
	if !o.cached || o.chain == nil || o.chain.Len() != 1 {
		t.Fatalf("cached = %v, chain = %v", o.cached, o.chain)
	}
	if img := s.Render(); img == nil {
		t.Fatal("Render() = nil")
	}

	e.ResetFilter()
	if o.cached || s.HasFilters(e.Object()) {
		t.Error("ResetFilter should drop filters and the cache")
	}
}

func TestStageStampRendersBelowEntity(t *testing.T) {
	s, _, e := newTextBoxStage(t)
	e.AddStamp()
	if len(e.Stamps()) != 1 {
		t.Fatalf("stamps = %d, want 1", len(e.Stamps()))
	}
	stamp := e.Stamps()[0].Handle()
	if s.IndexOf(stamp) != 0 || s.IndexOf(e.Object()) != 1 {
		t.Errorf("stamp index = %d, entity index = %d", s.IndexOf(stamp), s.IndexOf(e.Object()))
	}
	if s.get(stamp).stamp == nil {
		t.Error("stamp has no pixels")
	}
}
