package stagecraft

import "testing"

// --- Construction ---

func TestNewEntityDefaults(t *testing.T) {
	s, fs := newTestStage()
	obj := &StageObject{ObjectID: "o", ObjectKind: KindSprite}
	e := NewEntity(s, obj)

	assertNear(t, "ScaleX()", e.ScaleX(), 1)
	assertNear(t, "ScaleY()", e.ScaleY(), 1)
	assertNear(t, "Direction()", e.Direction(), 90)
	if !e.Visible() {
		t.Error("Visible() = false, want true")
	}
	if e.ID() == "" {
		t.Error("ID() is empty")
	}
	if e.Voice().Speaker != "kyuri" {
		t.Errorf("Voice().Speaker = %q", e.Voice().Speaker)
	}
	if s.Entity(e.ID()) != e {
		t.Error("entity not registered by id")
	}
	if !fs.prim(e.Object()).interactive {
		t.Error("primitive not interactive")
	}
	if fs.IndexOf(e.Object()) != -1 {
		t.Error("entity should not be in the display list before LoadEntity")
	}
}

func TestNewEntityTextBoxPrimitives(t *testing.T) {
	s, fs := newTestStage()
	obj := &StageObject{ObjectID: "o", ObjectKind: KindTextBox}
	e := NewEntity(s, obj)
	root := fs.prim(e.Object())
	if root.kind != "container" || len(root.children) != 2 {
		t.Fatalf("root = %s with %d children", root.kind, len(root.children))
	}
	if fs.prim(root.children[0]).kind != "graphic" || fs.prim(root.children[1]).kind != "text" {
		t.Error("background must sit below the text")
	}
	assertNear(t, "FontSize()", e.FontSize(), 20)
	if e.FontName() != "Nanum Gothic" {
		t.Errorf("FontName() = %q", e.FontName())
	}
}

func TestNewEntityPanicsOnNil(t *testing.T) {
	s, _ := newTestStage()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil parent")
		}
	}()
	NewEntity(s, nil)
}

func TestInjectModelTextFallback(t *testing.T) {
	s, _ := newTestStage()
	obj := &StageObject{ObjectID: "o", ObjectName: "label", ObjectKind: KindTextBox}
	e := NewEntity(s, obj)
	e.InjectModel(nil, nil)
	if e.Text() != "label" {
		t.Errorf("Text() = %q, want parent name", e.Text())
	}
	assertNear(t, "Width()", e.Width(), 50)

	obj2 := &StageObject{ObjectID: "p", ObjectName: "n", Label: "hi", ObjectKind: KindTextBox}
	e2 := NewEntity(s, obj2)
	e2.InjectModel(nil, nil)
	if e2.Text() != "hi" {
		t.Errorf("Text() = %q, want parent text", e2.Text())
	}
}

func TestInjectModelAppliesTransform(t *testing.T) {
	s, _ := newTestStage()
	obj := &StageObject{ObjectID: "o", ObjectKind: KindSprite}
	e := NewEntity(s, obj)
	m := DefaultModel()
	m.X, m.Y, m.Rotation = 12, -8, 45
	e.InjectModel(&Picture{Name: "cat", Dimension: Dimension{Width: 40, Height: 20}}, &m)
	assertNear(t, "X()", e.X(), 12)
	assertNear(t, "Y()", e.Y(), -8)
	assertNear(t, "Rotation()", e.Rotation(), 45)
	if e.Picture() == nil || e.Picture().Name != "cat" {
		t.Error("picture not applied")
	}
}

// --- Pictures ---

func TestSetImageKeepsPivotOffset(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetImage(&Picture{Dimension: Dimension{Width: 100, Height: 50}})
	assertNear(t, "RegX()", e.RegX(), 50)
	assertNear(t, "RegY()", e.RegY(), 25)

	e.SetRegX(60)
	e.SetImage(&Picture{Dimension: Dimension{Width: 200, Height: 100}})
	assertNear(t, "RegX()", e.RegX(), 110)
	assertNear(t, "RegY()", e.RegY(), 50)
	assertNear(t, "Width()", e.Width(), 200)
}

func TestSetImageAdoptsScale(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetScaleX(3)
	pic := &Picture{Dimension: Dimension{Width: 10, Height: 10}}
	e.SetImage(pic)
	assertNear(t, "picture ScaleX", pic.Dimension.ScaleX, 3)
	assertNear(t, "ScaleX()", e.ScaleX(), 3)
	if pic.ID == "" {
		t.Error("picture should receive an id")
	}
}

func TestSetImagePanicsOnTextBox(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newTextBox(t, s)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	e.SetImage(&Picture{})
}

func TestResourceLoadEnablesFilterCache(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetEffect(EffectBlur, 2)
	e.ApplyFilter(false)
	e.SetImage(&Picture{Dimension: Dimension{Width: 10, Height: 10}})
	s.Update(0)
	if !fs.prim(e.Object()).filterCache {
		t.Error("filter cache should be enabled after load")
	}
}

func TestStaleResourceLoadDropped(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetEffect(EffectBlur, 2)
	e.ApplyFilter(false)
	e.SetImage(&Picture{Dimension: Dimension{Width: 10, Height: 10}})
	fs.prim(e.Object()).resource = 99
	s.Update(0)
	if fs.prim(e.Object()).filterCache {
		t.Error("stale load must not touch the primitive")
	}
}

func TestResourceLoadAfterDestroy(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetImage(&Picture{Dimension: Dimension{Width: 10, Height: 10}})
	e.Destroy()
	s.Update(0)
	if fs.prim(e.Object()).filterCache {
		t.Error("load after destroy must be dropped")
	}
}

// --- Stamps ---

func TestAddStampBelowEntity(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetX(7)
	st := e.AddStamp()
	if st == nil {
		t.Fatal("AddStamp() = nil")
	}
	if fs.IndexOf(st.Handle()) != fs.IndexOf(e.Object())-1 {
		t.Errorf("stamp index %d, entity index %d", fs.IndexOf(st.Handle()), fs.IndexOf(e.Object()))
	}
	if st.Model() != e.ToModel() {
		t.Error("stamp model differs from entity state")
	}

	e.RemoveStamps()
	if !fs.prim(st.Handle()).destroyed {
		t.Error("stamp primitive not destroyed")
	}
	if len(e.Stamps()) != 0 {
		t.Errorf("len(Stamps()) = %d, want 0", len(e.Stamps()))
	}
	st.Destroy()
}

// --- Clones ---

type executorObject struct {
	*StageObject
	cleared []*Entity
}

func (o *executorObject) ClearExecutorsByEntity(e *Entity) {
	o.cleared = append(o.cleared, e)
}

func TestCloneCopiesState(t *testing.T) {
	s, fs := newTestStage()
	e, obj := newSprite(t, s, RotateFree)
	e.SetImage(&Picture{Name: "cat", Dimension: Dimension{Width: 20, Height: 20}})
	e.SetX(10)
	e.SetEffect(EffectHue, 20)
	e.ApplyFilter(false)

	c := e.Clone()
	if !c.IsClone() || c.ID() == e.ID() {
		t.Fatal("clone identity wrong")
	}
	assertNear(t, "clone X()", c.X(), 10)
	if c.Picture() == e.Picture() || c.Picture().Name != "cat" {
		t.Error("clone should own a copy of the picture")
	}
	if got := fs.prim(c.Object()).filters; len(got) != 1 || got[0].Kind != FilterHue {
		t.Errorf("clone filters = %+v", got)
	}
	if obj.Clones().Len() != 1 || obj.Clones().At(0) != c {
		t.Error("clone not added to parent list")
	}
	if fs.IndexOf(c.Object()) != fs.IndexOf(e.Object())-1 {
		t.Error("clone should sit directly below the original")
	}
}

func TestRemoveClone(t *testing.T) {
	s, _ := newTestStage()
	obj := &executorObject{StageObject: &StageObject{ObjectID: "o", ObjectKind: KindSprite}}
	e := NewEntity(s, obj)
	s.LoadEntity(e, -1)

	a := e.Clone()
	b := e.Clone()
	a.RemoveClone(false)
	if obj.Clones().Len() != 1 || obj.Clones().At(0) != b {
		t.Error("wrong clone removed")
	}
	if !a.Removed() || s.Entity(a.ID()) != nil {
		t.Error("clone not destroyed")
	}
	if len(obj.cleared) != 1 || obj.cleared[0] != a {
		t.Error("executors not cleared")
	}

	b.RemoveClone(true)
	if obj.Clones().Len() != 0 {
		t.Error("last clone not popped")
	}

	e.RemoveClone(false)
	if e.Removed() {
		t.Error("RemoveClone on an original must be a no-op")
	}
}

// --- Destruction ---

func TestDestroyIsIdempotent(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	d := &fakeDialog{}
	e.SetDialog(d)
	e.SetBrush(NewBrush("#ff0000", 2))
	shape := e.Stroke(0, 0, 10, 10)
	st := e.AddStamp()

	e.Destroy()
	e.Destroy()

	if !e.Removed() {
		t.Error("Removed() = false")
	}
	if s.Len() != 0 {
		t.Errorf("stage Len() = %d, want 0", s.Len())
	}
	if !d.removed {
		t.Error("dialog not removed")
	}
	for name, h := range map[string]Handle{"object": e.Object(), "shape": shape, "stamp": st.Handle()} {
		if !fs.prim(h).destroyed {
			t.Errorf("%s not destroyed", name)
		}
	}
	if len(fs.order) != 0 {
		t.Errorf("display list = %v, want empty", fs.order)
	}
}

func TestDestroyPartialEntity(t *testing.T) {
	(&Entity{}).Destroy()
	var e *Entity
	e.Destroy()
}

func TestMutationAfterDestroyIgnored(t *testing.T) {
	s, _ := newTestStage()
	s.SetDebugMode(true)
	e, _ := newSprite(t, s, RotateFree)
	e.SetX(3)
	e.Destroy()
	e.SetX(30)
	e.SetEffect(EffectHue, 10)
	e.ApplyFilter(true)
	if e.AddStamp() != nil || e.Clone() != nil {
		t.Error("destroyed entity produced new objects")
	}
	assertNear(t, "X()", e.X(), 3)
}

// --- Reset ---

func TestResetRestoresSnapshot(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetX(5)
	e.SetCollision(CollisionLeft)
	e.TakeSnapshot()
	if e.Collision() != CollisionNone {
		t.Error("TakeSnapshot should clear the collision tag")
	}

	e.SetX(50)
	e.SetEffect(EffectBrightness, 30)
	e.ApplyFilter(false)
	d := &fakeDialog{}
	e.SetDialog(d)
	e.SetBrush(NewBrush("#000000", 1))
	e.Stroke(0, 0, 1, 1)

	e.Reset()
	assertNear(t, "X()", e.X(), 5)
	if e.Effect() != DefaultEffect() {
		t.Error("effects not reset")
	}
	if len(fs.prim(e.Object()).filters) != 0 {
		t.Error("filters not cleared")
	}
	if !d.removed || e.Dialog() != nil {
		t.Error("dialog not removed")
	}
	if len(e.Shapes()) != 0 || e.Brush() != nil {
		t.Error("brush not removed")
	}
}

func TestLoadSnapshotUsesParentPicture(t *testing.T) {
	s, _ := newTestStage()
	e, obj := newSprite(t, s, RotateFree)
	e.SetImage(&Picture{Name: "a", Dimension: Dimension{Width: 10, Height: 10}})
	e.TakeSnapshot()
	obj.Pic = &Picture{Name: "b", Dimension: Dimension{Width: 30, Height: 30}}
	e.LoadSnapshot()
	if e.Picture().Name != "b" {
		t.Errorf("Picture().Name = %q, want b", e.Picture().Name)
	}
	assertNear(t, "Width()", e.Width(), 30)
}

// --- Attachments ---

func TestSetDialogReplaces(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	a, b := &fakeDialog{}, &fakeDialog{}
	e.SetDialog(a)
	e.SetDialog(b)
	if !a.removed || b.removed {
		t.Errorf("removed = %v, %v, want true, false", a.removed, b.removed)
	}
}

func TestSetVoiceKeepsSpeaker(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetVoice(Voice{Speed: 2, Volume: 0.5})
	v := e.Voice()
	if v.Speaker != "kyuri" || v.Speed != 2 || v.Volume != 0.5 {
		t.Errorf("Voice() = %+v", v)
	}
}

// --- Brush ---

func TestStroke(t *testing.T) {
	s, fs := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	if e.Stroke(0, 0, 1, 1) != NoHandle {
		t.Error("Stroke without brush should return NoHandle")
	}

	b := NewBrush("#00ff00", 3)
	b.Opacity = 0.4
	e.SetBrush(b)
	h := e.Stroke(0, 0, 10, 10)
	if h == NoHandle {
		t.Fatal("Stroke() = NoHandle")
	}
	p := fs.prim(h)
	if p.lines != 1 {
		t.Errorf("lines = %d, want 1", p.lines)
	}
	assertNear(t, "shape alpha", p.alpha, 0.4)
	if fs.IndexOf(h) >= fs.IndexOf(e.Object()) {
		t.Error("shape should be below the entity")
	}

	b.Stopped = true
	if e.Stroke(0, 0, 1, 1) != NoHandle {
		t.Error("stopped brush should not draw")
	}

	e.EraseBrush()
	if len(e.Shapes()) != 0 || e.Brush() == nil {
		t.Error("EraseBrush should keep the brush and drop shapes")
	}
	if !p.destroyed {
		t.Error("shape not destroyed")
	}

	e.RemoveBrush()
	if e.Brush() != nil {
		t.Error("RemoveBrush should detach the brush")
	}
}

func TestCloneListPop(t *testing.T) {
	var l CloneList
	if l.Pop() != nil {
		t.Error("Pop() on empty list should return nil")
	}
	a, b := &Entity{}, &Entity{}
	l.Add(a)
	l.Add(b)
	if l.Pop() != b || l.Len() != 1 {
		t.Error("Pop() did not return the tail")
	}
	if l.Remove(b) {
		t.Error("Remove of a missing entity reported true")
	}
}
