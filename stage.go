package stagecraft

// RenderLoop owns the "redraw owed" signal. Setters mark it; the renderer
// consumes it once per tick and skips the draw when nothing changed.
type RenderLoop struct {
	dirty bool
}

// MarkDirty records that the next tick must redraw.
func (l *RenderLoop) MarkDirty() { l.dirty = true }

// Dirty reports whether a redraw is owed.
func (l *RenderLoop) Dirty() bool { return l.dirty }

// ConsumeDirty reports whether a redraw is owed and clears the signal.
func (l *RenderLoop) ConsumeDirty() bool {
	d := l.dirty
	l.dirty = false
	return d
}

// Stage owns the entity registry, the render loop signal and the editing
// state entities consult: engine state, selection permission and the
// command host. Pointer events from the surface are routed to entities by
// looking up the target primitive in the registry.
type Stage struct {
	surface RenderSurface
	cfg     Config
	loop    RenderLoop
	debug   bool

	byHandle map[Handle]*Entity
	byID     map[string]*Entity

	engine     EngineState
	selectable bool
	commands   CommandHost
	sink       EventSink
	tweens     []*TweenGroup

	objectClick bool
	selected    string
	onSelect    func(objectID string)
}

// NewStage creates a stage drawing to surface and subscribes to its
// pointer events.
func NewStage(surface RenderSurface, cfg Config) *Stage {
	if surface == nil {
		panic("stagecraft: NewStage with nil surface")
	}
	s := &Stage{
		surface:    surface,
		cfg:        cfg.withDefaults(),
		debug:      cfg.Debug,
		byHandle:   make(map[Handle]*Entity),
		byID:       make(map[string]*Entity),
		selectable: true,
	}
	surface.SetPointerHandler(s.handlePointer)
	return s
}

// Surface returns the stage's render surface.
func (s *Stage) Surface() RenderSurface { return s.surface }

// Config returns the stage configuration.
func (s *Stage) Config() Config { return s.cfg }

// Loop returns the render loop signal.
func (s *Stage) Loop() *RenderLoop { return &s.loop }

// MarkDirty records that the stage needs a redraw.
func (s *Stage) MarkDirty() { s.loop.MarkDirty() }

// SetDebugMode enables logging of misuse such as mutating destroyed
// entities.
func (s *Stage) SetDebugMode(enabled bool) { s.debug = enabled }

// --- Registry ---

func (s *Stage) track(e *Entity) {
	s.byHandle[e.object] = e
	s.byID[e.id] = e
	s.surface.SetInteractive(e.object, true)
}

// LoadEntity inserts e into the display list at index. A negative index
// appends on top.
func (s *Stage) LoadEntity(e *Entity, index int) {
	if e == nil || e.removed {
		return
	}
	if _, ok := s.byHandle[e.object]; !ok {
		s.track(e)
	}
	s.surface.Insert(e.object, index)
	s.MarkDirty()
}

// UnloadEntity removes e from the display list and the registry.
func (s *Stage) UnloadEntity(e *Entity) {
	if e == nil {
		return
	}
	if s.byHandle[e.object] == e {
		delete(s.byHandle, e.object)
	}
	if s.byID[e.id] == e {
		delete(s.byID, e.id)
	}
	s.surface.Detach(e.object)
	s.MarkDirty()
}

// Entity returns the live entity with the given id, or nil.
func (s *Stage) Entity(id string) *Entity { return s.byID[id] }

// EntityAt returns the entity whose primitive is h, or nil.
func (s *Stage) EntityAt(h Handle) *Entity { return s.byHandle[h] }

// Len returns the number of live entities.
func (s *Stage) Len() int { return len(s.byID) }

// --- Editing state ---

// SetEngineState records the script engine state. Undo commands are only
// produced while stopped.
func (s *Stage) SetEngineState(state EngineState) { s.engine = state }

// EngineState returns the script engine state.
func (s *Stage) EngineState() EngineState { return s.engine }

// SetSelectable allows or forbids selecting and dragging entities.
func (s *Stage) SetSelectable(selectable bool) { s.selectable = selectable }

// IsEntitySelectable reports whether pointer input may select and drag
// entities: the engine is stopped and selection is allowed.
func (s *Stage) IsEntitySelectable() bool {
	return s.engine == EngineStopped && s.selectable
}

// SetCommandHost sets the receiver of undoable edits.
func (s *Stage) SetCommandHost(h CommandHost) { s.commands = h }

// CommandHost returns the receiver of undoable edits.
func (s *Stage) CommandHost() CommandHost { return s.commands }

// SetEventSink sets the receiver of entity notifications.
func (s *Stage) SetEventSink(sink EventSink) { s.sink = sink }

// OnSelect registers a callback run when pointer input selects an object.
func (s *Stage) OnSelect(fn func(objectID string)) { s.onSelect = fn }

// SelectObject marks the object with the given id as selected.
func (s *Stage) SelectObject(objectID string) {
	s.selected = objectID
	if s.onSelect != nil {
		s.onSelect(objectID)
	}
}

// Selected returns the selected object id.
func (s *Stage) Selected() string { return s.selected }

// ObjectClicked reports whether an entity received a pointer press since
// the last ClearObjectClick.
func (s *Stage) ObjectClicked() bool { return s.objectClick }

// ClearObjectClick resets ObjectClicked.
func (s *Stage) ClearObjectClick() { s.objectClick = false }

func (s *Stage) emit(ev Event) {
	if s.sink != nil {
		s.sink.Emit(ev)
	}
}

// --- Tick ---

// AddTweens schedules g to advance on every Update until it finishes.
func (s *Stage) AddTweens(g *TweenGroup) {
	if g != nil {
		s.tweens = append(s.tweens, g)
	}
}

// Update delivers finished resource loads and advances tweens by dt
// seconds. Call it once per tick from the loop goroutine.
func (s *Stage) Update(dt float64) {
	s.surface.Update()
	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(float32(dt))
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live
}

func (s *Stage) handlePointer(ev PointerEvent) {
	e := s.byHandle[ev.Target]
	if e == nil || e.removed {
		return
	}
	switch ev.Type {
	case PointerDown:
		e.pointerDown(ev.StageX, ev.StageY)
	case PointerMove:
		e.pointerMove(ev.StageX, ev.StageY)
	case PointerUp:
		e.pointerUp()
	}
}
