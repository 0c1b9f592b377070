package stagecraft

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Model is the serialized state of an entity. It is comparable, so two
// snapshots are equal exactly when == holds. Text fields are zero for
// sprites.
type Model struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	RegX      float64 `json:"regX" yaml:"regX"`
	RegY      float64 `json:"regY" yaml:"regY"`
	ScaleX    float64 `json:"scaleX" yaml:"scaleX"`
	ScaleY    float64 `json:"scaleY" yaml:"scaleY"`
	Rotation  float64 `json:"rotation" yaml:"rotation"`
	Direction float64 `json:"direction" yaml:"direction"`
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
	Font      string  `json:"font" yaml:"font"`
	Visible   bool    `json:"visible" yaml:"visible"`

	Colour    string    `json:"colour,omitempty" yaml:"colour,omitempty"`
	Text      string    `json:"text,omitempty" yaml:"text,omitempty"`
	TextAlign TextAlign `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
	LineBreak bool      `json:"lineBreak,omitempty" yaml:"lineBreak,omitempty"`
	BGColor   string    `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	UnderLine bool      `json:"underLine,omitempty" yaml:"underLine,omitempty"`
	Strike    bool      `json:"strike,omitempty" yaml:"strike,omitempty"`
	FontSize  float64   `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
}

// DefaultModel returns the state of an entity nobody has touched.
func DefaultModel() Model {
	return Model{ScaleX: 1, ScaleY: 1, Direction: 90, Visible: true}
}

// ParseModel decodes a YAML or JSON entity model. Fields missing from data
// keep their DefaultModel value.
func ParseModel(data []byte) (Model, error) {
	m := DefaultModel()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("stagecraft: parse model: %w", err)
	}
	return m, nil
}

// ToModel serializes e. Numeric fields are rounded to four decimals.
func (e *Entity) ToModel() Model {
	m := Model{
		X:         cutDecimal(e.x),
		Y:         cutDecimal(e.y),
		RegX:      cutDecimal(e.regX),
		RegY:      cutDecimal(e.regY),
		ScaleX:    cutDecimal(e.scaleX),
		ScaleY:    cutDecimal(e.scaleY),
		Rotation:  cutDecimal(e.rotation),
		Direction: cutDecimal(e.direction),
		Width:     cutDecimal(e.width),
		Height:    cutDecimal(e.height),
		Font:      e.Font(),
		Visible:   e.visible,
	}
	if e.isText() {
		m.Colour = e.colour
		m.Text = e.text
		m.TextAlign = e.textAlign
		m.LineBreak = e.lineBreak
		m.BGColor = e.bgColour
		m.UnderLine = e.underline
		m.Strike = e.strike
		m.FontSize = e.font.Size
	}
	return m
}

// MarshalJSON encodes ToModel.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToModel())
}

// SetModel applies m and notifies observers. Undo and redo use it.
func (e *Entity) SetModel(m Model) {
	if !e.alive("SetModel") {
		return
	}
	e.syncModel(m)
	e.emit(EventUpdateObject)
	e.markDirty()
}

// syncModel applies m in dependency order: transform, then line break before
// the box so wrapping sees the final width, then text content.
func (e *Entity) syncModel(m Model) {
	e.SetX(m.X)
	e.SetY(m.Y)
	e.SetRegX(m.RegX)
	e.SetRegY(m.RegY)
	e.SetScaleX(m.ScaleX)
	e.SetScaleY(m.ScaleY)
	e.SetRotation(m.Rotation)
	e.SetDirection(m.Direction, true)
	e.SetLineBreak(m.LineBreak)
	e.SetWidth(m.Width)
	e.SetHeight(m.Height)
	e.SetText(m.Text)
	e.SetTextAlign(m.TextAlign)
	if m.Font != "" {
		e.SetFont(m.Font)
	}
	size := m.FontSize
	if size == 0 {
		size = e.font.Size
	}
	e.SetFontSize(size)
	e.SetVisible(m.Visible)
}

// --- Command history ---

// InitCommand records the state before an interactive edit. It only runs
// while the engine is stopped.
func (e *Entity) InitCommand() {
	if e.removed || e.stage == nil || e.stage.EngineState() != EngineStopped {
		return
	}
	m := e.ToModel()
	e.before = &m
}

// CheckCommand closes an interactive edit. If the state changed since
// InitCommand, one command carrying both states goes to the stage's
// CommandHost.
func (e *Entity) CheckCommand() {
	if e.removed || e.stage == nil || e.stage.EngineState() != EngineStopped {
		return
	}
	before := e.before
	e.before = nil
	if before == nil {
		return
	}
	now := e.ToModel()
	if now == *before {
		return
	}
	host := e.stage.CommandHost()
	if host == nil {
		return
	}
	Logger().Debug("stagecraft: entity command", "entity", e.id)
	host.Do(e.id, now, *before)
}

// --- Restore snapshot ---

// TakeSnapshot stores the current state for LoadSnapshot and clears the
// collision tag.
func (e *Entity) TakeSnapshot() {
	m := e.ToModel()
	e.snapshot = &m
	e.collision = CollisionNone
}

// Snapshot returns the stored snapshot, or nil.
func (e *Entity) Snapshot() *Model { return e.snapshot }

// LoadSnapshot restores the state stored by TakeSnapshot. Sprites also
// return to the parent's current picture.
func (e *Entity) LoadSnapshot() {
	if !e.alive("LoadSnapshot") {
		return
	}
	if e.snapshot != nil {
		e.syncModel(*e.snapshot)
	}
	if e.kind == KindSprite {
		if pic := e.parent.Picture(); pic != nil {
			e.SetImage(pic)
		}
	}
	e.markDirty()
}
