package stagecraft

import "github.com/google/uuid"

// NewEntity creates an entity of the parent's kind on stage s. The entity
// owns fresh primitives and listens for pointer input, but is not in the
// display list until Stage.LoadEntity.
func NewEntity(s *Stage, parent Object) *Entity {
	if s == nil {
		panic("stagecraft: NewEntity with nil stage")
	}
	if parent == nil {
		panic("stagecraft: NewEntity with nil parent")
	}
	e := &Entity{
		id:        uuid.NewString(),
		kind:      parent.Kind(),
		parent:    parent,
		stage:     s,
		surface:   s.surface,
		scaleX:    1,
		scaleY:    1,
		direction: 90,
		visible:   true,
		effect:    DefaultEffect(),
		applied:   DefaultEffect(),
		voice:     DefaultVoice(),
		colour:    "#000000",
		bgColour:  "transparent",
	}
	switch e.kind {
	case KindTextBox:
		e.font = s.cfg.defaultFont()
		e.object = e.surface.NewContainer()
		e.bgObject = e.surface.NewGraphic()
		e.textObject = e.surface.NewText(e.font)
		e.surface.AddChild(e.object, e.bgObject)
		e.surface.AddChild(e.object, e.textObject)
		e.surface.SetTextColor(e.textObject, e.colour)
	default:
		e.object = e.surface.NewSprite()
	}
	s.track(e)
	return e
}

// InjectModel populates a freshly created entity. Sprites take pic; text
// boxes take their text from m, falling back to the parent's text and then
// its name. Transform fields from m are applied last.
func (e *Entity) InjectModel(pic *Picture, m *Model) {
	if !e.alive("InjectModel") {
		return
	}
	var model Model
	if m != nil {
		model = *m
	}
	switch e.kind {
	case KindSprite:
		if pic != nil {
			e.SetImage(pic)
		}
	case KindTextBox:
		if model.Text == "" {
			model.Text = e.parent.Text()
		}
		if model.Text == "" {
			model.Text = e.parent.Name()
		}
		font := model.Font
		if font == "" {
			font = e.stage.cfg.DefaultFont
		}
		e.SetFont(font)
		e.SetBGColour(model.BGColor)
		e.SetColour(model.Colour)
		e.SetUnderLine(model.UnderLine)
		e.SetStrike(model.Strike)
		e.SetText(model.Text)
	}
	if m != nil {
		e.syncModel(model)
	}
}

// SetImage shows pic on a sprite. The pivot keeps its offset from the
// center across the resize, and a picture without a scale adopts the
// current one. The pixels arrive asynchronously.
//
// SetImage panics when called on a text box.
func (e *Entity) SetImage(pic *Picture) {
	if e.kind != KindSprite {
		panic("stagecraft: SetImage on a non-sprite entity")
	}
	if !e.alive("SetImage") || pic == nil {
		return
	}
	if pic.ID == "" {
		pic.ID = uuid.NewString()
	}
	absRegX := e.regX - e.width/2
	absRegY := e.regY - e.height/2
	e.picture = pic
	e.SetWidth(pic.Dimension.Width)
	e.SetHeight(pic.Dimension.Height)
	if pic.Dimension.ScaleX == 0 {
		pic.Dimension.ScaleX = e.scaleX
	}
	if pic.Dimension.ScaleY == 0 {
		pic.Dimension.ScaleY = e.scaleY
	}
	e.SetScaleX(e.scaleX)
	e.SetScaleY(e.scaleY)
	e.SetRegX(e.width/2 + absRegX)
	e.SetRegY(e.height/2 + absRegY)

	e.resource = e.surface.RequestResource(e.object, e.parent.SceneID(), *pic, e.resourceLoaded)
	e.surface.RefreshScale(e.object)
	e.emit(EventUpdateObject)
	e.markDirty()
}

// Picture returns the picture shown by a sprite.
func (e *Entity) Picture() *Picture { return e.picture }

// resourceLoaded runs when a picture finishes loading. Loads that finish
// after destruction or after a newer SetImage are dropped.
func (e *Entity) resourceLoaded(id ResourceID) {
	if e.removed {
		Logger().Debug("stagecraft: dropping load for removed entity", "entity", e.id, "resource", id)
		return
	}
	if id != e.surface.CurrentResource(e.object) {
		Logger().Debug("stagecraft: dropping stale load", "entity", e.id, "resource", id)
		return
	}
	e.surface.SetFilterCache(e.object, e.surface.HasFilters(e.object))
	e.markDirty()
}

// --- Stamps ---

// Stamp is a frozen rasterized copy of an entity. It stays in the display
// list until its entity is destroyed or RemoveStamps runs.
type Stamp struct {
	handle  Handle
	surface RenderSurface
	model   Model
	removed bool
}

// Handle returns the stamp's primitive.
func (st *Stamp) Handle() Handle { return st.handle }

// Model returns the entity state captured when the stamp was taken.
func (st *Stamp) Model() Model { return st.model }

// Destroy releases the stamp. Calling it again is a no-op.
func (st *Stamp) Destroy() {
	if st.removed {
		return
	}
	st.removed = true
	st.surface.Destroy(st.handle)
}

// AddStamp rasterizes e and inserts the copy directly below it.
func (e *Entity) AddStamp() *Stamp {
	if !e.alive("AddStamp") {
		return nil
	}
	h := e.surface.Rasterize(e.object)
	if h == NoHandle {
		return nil
	}
	e.surface.Insert(h, e.surface.IndexOf(e.object))
	st := &Stamp{handle: h, surface: e.surface, model: e.ToModel()}
	e.stamps = append(e.stamps, st)
	e.markDirty()
	return st
}

// RemoveStamps destroys every stamp owned by e.
func (e *Entity) RemoveStamps() {
	if !e.alive("RemoveStamps") {
		return
	}
	e.removeStamps()
	e.markDirty()
}

func (e *Entity) removeStamps() {
	for _, st := range e.stamps {
		st.Destroy()
	}
	e.stamps = nil
}

// --- Clones ---

// Clone creates a runtime copy of e directly below it and adds the copy to
// the parent's clone list.
func (e *Entity) Clone() *Entity {
	if !e.alive("Clone") {
		return nil
	}
	c := NewEntity(e.stage, e.parent)
	c.isClone = true
	c.voice = e.voice
	m := e.ToModel()
	var pic *Picture
	if e.picture != nil {
		p := *e.picture
		pic = &p
	}
	c.InjectModel(pic, &m)
	c.effect = e.effect
	c.ApplyFilter(true)
	e.stage.LoadEntity(c, e.surface.IndexOf(e.object))
	e.parent.Clones().Add(c)
	return c
}

// RemoveClone destroys a clone and drops it from the parent's clone list.
// When isLast is set the clone is assumed to be the tail of the list.
func (e *Entity) RemoveClone(isLast bool) {
	if !e.isClone || e.removed {
		return
	}
	clones := e.parent.Clones()
	if isLast {
		clones.Pop()
	} else {
		clones.Remove(e)
	}
	if host, ok := e.parent.(ExecutorHost); ok {
		host.ClearExecutorsByEntity(e)
	}
	e.Destroy()
}

// --- Destruction ---

// Destroy releases everything e owns and unregisters it from its stage.
// Only the first call has an effect, and it is safe on a partially built
// entity.
func (e *Entity) Destroy() {
	if e == nil || e.removed {
		return
	}
	e.removed = true
	e.before = nil
	e.dragOffset = nil
	if e.surface == nil {
		return
	}
	if e.object != NoHandle {
		e.surface.SetFilterCache(e.object, false)
		e.surface.SetInteractive(e.object, false)
	}
	e.picture = nil
	e.removeStamps()
	if e.dialog != nil {
		e.dialog.Remove()
		e.dialog = nil
	}
	e.removeShapes()
	e.brush = nil
	if e.stage != nil {
		e.stage.UnloadEntity(e)
	}
	if e.object != NoHandle {
		e.surface.Destroy(e.object)
	}
	Logger().Debug("stagecraft: entity destroyed", "entity", e.id, "clone", e.isClone)
}

// Reset returns e to its last snapshot with default effects, no dialog and
// no freehand drawing.
func (e *Entity) Reset() {
	if !e.alive("Reset") {
		return
	}
	e.LoadSnapshot()
	e.ResetFilter()
	if e.dialog != nil {
		e.dialog.Remove()
		e.dialog = nil
	}
	if len(e.shapes) > 0 {
		e.RemoveBrush()
	}
}
