package stagecraft

// Object is the stage object that owns an entity. It supplies naming, the
// rotation convention, lock state and the clone list, and receives view
// refresh requests.
type Object interface {
	ID() string
	Name() string
	Kind() Kind
	Text() string
	SceneID() string
	RotateMethod() RotateMethod
	Locked() bool
	Picture() *Picture
	Clones() *CloneList
	UpdateCoordinateView()
	UpdateRotationView()
}

// ExecutorHost is implemented by objects that run scripts bound to their
// clones. RemoveClone clears those executors before destroying a clone.
type ExecutorHost interface {
	ClearExecutorsByEntity(e *Entity)
}

// CommandHost receives undoable state changes. The core never inspects the
// host's stack.
type CommandHost interface {
	Do(entityID string, newState, oldState Model)
}

// Dialog is a speech bubble or similar overlay attached to an entity.
type Dialog interface {
	Update()
	SetVisible(visible bool)
	Remove()
}

// EventType identifies an entity notification.
type EventType uint8

const (
	EventEntityClick EventType = iota
	EventEntityClickCanceled
	EventUpdateObject
)

func (t EventType) String() string {
	switch t {
	case EventEntityClick:
		return "entityClick"
	case EventEntityClickCanceled:
		return "entityClickCanceled"
	case EventUpdateObject:
		return "updateObject"
	default:
		return "unknown"
	}
}

// Event is emitted to the stage's EventSink.
type Event struct {
	Type     EventType
	EntityID string
	ObjectID string
}

// EventSink receives entity notifications.
type EventSink interface {
	Emit(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// Emit calls f(ev).
func (f EventSinkFunc) Emit(ev Event) { f(ev) }

// CloneList is the parent-owned list of runtime clones.
type CloneList struct {
	entities []*Entity
}

// Add appends e.
func (l *CloneList) Add(e *Entity) {
	l.entities = append(l.entities, e)
}

// Remove deletes e by identity. It reports whether e was found.
func (l *CloneList) Remove(e *Entity) bool {
	for i, c := range l.entities {
		if c == e {
			l.entities = append(l.entities[:i], l.entities[i+1:]...)
			return true
		}
	}
	return false
}

// Pop removes and returns the last clone, or nil when the list is empty.
func (l *CloneList) Pop() *Entity {
	n := len(l.entities)
	if n == 0 {
		return nil
	}
	e := l.entities[n-1]
	l.entities[n-1] = nil
	l.entities = l.entities[:n-1]
	return e
}

// Len returns the number of clones.
func (l *CloneList) Len() int { return len(l.entities) }

// At returns the i-th clone.
func (l *CloneList) At(i int) *Entity { return l.entities[i] }

// StageObject is a plain Object implementation for hosts that do not carry
// their own object model.
type StageObject struct {
	ObjectID   string
	ObjectName string
	ObjectKind Kind
	Label      string
	Scene      string
	Rotate     RotateMethod
	Lock       bool
	Pic        *Picture

	// OnCoordinateView and OnRotationView, when set, run on view refresh
	// requests.
	OnCoordinateView func()
	OnRotationView   func()

	clones CloneList
}

func (o *StageObject) ID() string                 { return o.ObjectID }
func (o *StageObject) Name() string               { return o.ObjectName }
func (o *StageObject) Kind() Kind                 { return o.ObjectKind }
func (o *StageObject) Text() string               { return o.Label }
func (o *StageObject) SceneID() string            { return o.Scene }
func (o *StageObject) RotateMethod() RotateMethod { return o.Rotate }
func (o *StageObject) Locked() bool               { return o.Lock }
func (o *StageObject) Picture() *Picture          { return o.Pic }
func (o *StageObject) Clones() *CloneList         { return &o.clones }

func (o *StageObject) UpdateCoordinateView() {
	if o.OnCoordinateView != nil {
		o.OnCoordinateView()
	}
}

func (o *StageObject) UpdateRotationView() {
	if o.OnRotationView != nil {
		o.OnRotationView()
	}
}
