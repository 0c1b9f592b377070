package stagecraft

// Entity is one placed sprite or text box on the stage. A single flat struct
// holds both variants; text fields are ignored for sprites and the picture is
// ignored for text boxes.
//
// Entities are not safe for concurrent use. Every method must run on the
// goroutine that drives Stage.Update.
type Entity struct {
	// Identity
	id      string
	kind    Kind
	parent  Object
	stage   *Stage
	surface RenderSurface
	removed bool
	isClone bool

	// Primitives
	object     Handle
	textObject Handle
	bgObject   Handle

	// Transform
	x, y          float64
	regX, regY    float64
	scaleX        float64
	scaleY        float64
	rotation      float64
	direction     float64
	width, height float64
	visible       bool
	flip          bool

	// Sprite payload
	picture  *Picture
	resource ResourceID

	// Text payload
	text           string
	font           FontStyle
	lineHeight     float64
	underline      bool
	strike         bool
	textAlign      TextAlign
	lineBreak      bool
	lineBreakKnown bool
	wrapWidth      float64
	colour         string
	bgColour       string

	// Effects
	effect  Effect
	applied Effect

	// Owned collections
	stamps []*Stamp
	shapes []Handle
	brush  *Brush
	dialog Dialog

	voice     Voice
	collision CollisionState

	// Snapshots
	snapshot *Model
	before   *Model

	// Drag
	dragOffset *Vec2
}

// ID returns the entity's unique id.
func (e *Entity) ID() string { return e.id }

// Kind returns whether e is a sprite or a text box.
func (e *Entity) Kind() Kind { return e.kind }

// Parent returns the owning stage object.
func (e *Entity) Parent() Object { return e.parent }

// Stage returns the stage e was created on.
func (e *Entity) Stage() *Stage { return e.stage }

// Object returns the primitive that carries e's transform.
func (e *Entity) Object() Handle { return e.object }

// Removed reports whether e has been destroyed.
func (e *Entity) Removed() bool { return e.removed }

// IsClone reports whether e is a runtime clone.
func (e *Entity) IsClone() bool { return e.isClone }

// Flipped reports the horizontal flip toggle recorded by SetDirection.
func (e *Entity) Flipped() bool { return e.flip }

// Voice returns the text-to-speech settings.
func (e *Entity) Voice() Voice { return e.voice }

// SetVoice replaces the text-to-speech settings. An empty speaker keeps the
// current one.
func (e *Entity) SetVoice(v Voice) {
	if e.removed {
		return
	}
	if v.Speaker == "" {
		v.Speaker = e.voice.Speaker
	}
	e.voice = v
}

// Collision returns the collision tag.
func (e *Entity) Collision() CollisionState { return e.collision }

// SetCollision sets the collision tag.
func (e *Entity) SetCollision(c CollisionState) { e.collision = c }

// Dialog returns the attached dialog, or nil.
func (e *Entity) Dialog() Dialog { return e.dialog }

// SetDialog attaches d, replacing and removing any previous dialog.
func (e *Entity) SetDialog(d Dialog) {
	if e.removed {
		return
	}
	if e.dialog != nil && e.dialog != d {
		e.dialog.Remove()
	}
	e.dialog = d
	if d != nil {
		d.SetVisible(e.visible)
		d.Update()
	}
}

// Stamps returns the stamps owned by e.
func (e *Entity) Stamps() []*Stamp { return e.stamps }

// --- Notification helpers ---

func (e *Entity) markDirty() {
	if e.stage != nil {
		e.stage.MarkDirty()
	}
}

func (e *Entity) updateCoordinateView() {
	if !e.isClone && e.parent != nil {
		e.parent.UpdateCoordinateView()
	}
}

func (e *Entity) updateRotationView() {
	if !e.isClone && e.parent != nil {
		e.parent.UpdateRotationView()
	}
}

func (e *Entity) updateDialog() {
	if e.dialog != nil {
		e.dialog.Update()
	}
}

func (e *Entity) emit(t EventType) {
	if e.stage == nil {
		return
	}
	ev := Event{Type: t, EntityID: e.id}
	if e.parent != nil {
		ev.ObjectID = e.parent.ID()
	}
	e.stage.emit(ev)
}

func (e *Entity) isText() bool {
	return e.kind == KindTextBox
}

// alive reports whether e accepts mutation. In debug mode it logs attempts to
// mutate a destroyed entity.
func (e *Entity) alive(op string) bool {
	if !e.removed {
		return true
	}
	if e.stage != nil && e.stage.debug {
		debugRemovedEntity(e, op)
	}
	return false
}
