package stagecraft

// Command is one undoable entity edit.
type Command struct {
	EntityID string
	Before   Model
	After    Model
}

// History is an in-memory CommandHost with linear undo and redo. Entities
// are resolved through the stage, so commands for destroyed entities are
// skipped.
type History struct {
	stage  *Stage
	done   []Command
	undone []Command
	limit  int
}

// NewHistory returns a history bound to s that keeps at most limit
// commands. A limit of 0 keeps everything.
func NewHistory(s *Stage, limit int) *History {
	return &History{stage: s, limit: limit}
}

// Do records a command and clears the redo stack.
func (h *History) Do(entityID string, newState, oldState Model) {
	h.done = append(h.done, Command{EntityID: entityID, Before: oldState, After: newState})
	if h.limit > 0 && len(h.done) > h.limit {
		h.done = append(h.done[:0], h.done[len(h.done)-h.limit:]...)
	}
	h.undone = h.undone[:0]
}

// Undo restores the state before the last command. It reports whether a
// command was undone.
func (h *History) Undo() bool {
	for len(h.done) > 0 {
		c := h.done[len(h.done)-1]
		h.done = h.done[:len(h.done)-1]
		if e := h.stage.Entity(c.EntityID); e != nil {
			e.SetModel(c.Before)
			h.undone = append(h.undone, c)
			return true
		}
	}
	return false
}

// Redo re-applies the last undone command.
func (h *History) Redo() bool {
	for len(h.undone) > 0 {
		c := h.undone[len(h.undone)-1]
		h.undone = h.undone[:len(h.undone)-1]
		if e := h.stage.Entity(c.EntityID); e != nil {
			e.SetModel(c.After)
			h.done = append(h.done, c)
			return true
		}
	}
	return false
}

// Len returns the number of commands that can be undone.
func (h *History) Len() int { return len(h.done) }

// CanRedo reports whether Redo has something to apply.
func (h *History) CanRedo() bool { return len(h.undone) > 0 }
