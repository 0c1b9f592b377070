package stagecraft

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// --- Model ---

func TestToModelRoundsNumbers(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetX(1.234567)
	e.SetY(-9.87654)
	m := e.ToModel()
	assertNear(t, "X", m.X, 1.2346)
	assertNear(t, "Y", m.Y, -9.8765)
	if m.Font != "" || m.Text != "" || m.FontSize != 0 {
		t.Errorf("sprite model carries text fields: %+v", m)
	}
}

func TestToModelTextFields(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newTextBox(t, s)
	e.SetTextAlign(TextAlignRight)
	e.SetBGColour("#ffffff")
	e.SetUnderLine(true)
	m := e.ToModel()
	if m.Text != "hello" || m.Font != "20px Nanum Gothic" || m.FontSize != 20 {
		t.Errorf("text fields = %q %q %v", m.Text, m.Font, m.FontSize)
	}
	if m.TextAlign != TextAlignRight || m.BGColor != "#ffffff" || !m.UnderLine || m.Colour != "#000000" {
		t.Errorf("style fields = %+v", m)
	}
}

func TestModelJSONFieldNames(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newSprite(t, s, RotateFree)
	e.SetRegX(3)
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"x", "y", "regX", "regY", "scaleX", "scaleY", "rotation", "direction", "width", "height", "font", "visible"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("missing field %q in %s", k, data)
		}
	}
	if _, ok := fields["text"]; ok {
		t.Error("sprite JSON should omit text")
	}
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel([]byte("x: 3\nregX: 4\nlineBreak: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "X", m.X, 3)
	assertNear(t, "RegX", m.RegX, 4)
	assertNear(t, "ScaleX default", m.ScaleX, 1)
	assertNear(t, "Direction default", m.Direction, 90)
	if !m.LineBreak || !m.Visible {
		t.Errorf("LineBreak, Visible = %v, %v", m.LineBreak, m.Visible)
	}

	m, err = ParseModel([]byte(`{"x": -2, "visible": false}`))
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "X", m.X, -2)
	if m.Visible {
		t.Error("Visible = true, want false")
	}

	if _, err := ParseModel([]byte("x: [")); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestSetModelRoundTrip(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newTextBox(t, s)
	e.SetX(40)
	e.SetLineBreak(true)
	e.SetText("two\nlines")
	want := e.ToModel()

	e2, _ := newTextBox(t, s)
	var events []Event
	s.SetEventSink(EventSinkFunc(func(ev Event) { events = append(events, ev) }))
	e2.SetModel(want)
	if got := e2.ToModel(); got != want {
		t.Errorf("ToModel() = %+v\nwant %+v", got, want)
	}
	if len(events) == 0 || events[len(events)-1].Type != EventUpdateObject {
		t.Error("SetModel should emit updateObject")
	}
}

func TestSetModelRestoresFontStyle(t *testing.T) {
	s, _ := newTestStage()
	e, _ := newTextBox(t, s)
	e.SetFont("bold italic 30px Nanum Gothic Coding")
	want := e.ToModel()

	e.SetFont("20px Nanum Gothic")
	e.SetModel(want)
	if !e.FontBold() || !e.FontItalic() || e.FontName() != "Nanum Gothic Coding" {
		t.Errorf("Font() = %q, want %q", e.Font(), want.Font)
	}
	assertNear(t, "FontSize()", e.FontSize(), 30)
}

// --- Commands ---

func TestCheckCommandRecordsChange(t *testing.T) {
	s, _ := newTestStage()
	host := &recordingHost{}
	s.SetCommandHost(host)
	e, _ := newSprite(t, s, RotateFree)

	e.InitCommand()
	e.CheckCommand()
	if len(host.commands) != 0 {
		t.Fatalf("unchanged edit produced %d commands", len(host.commands))
	}

	e.InitCommand()
	e.SetX(25)
	e.CheckCommand()
	if len(host.commands) != 1 {
		t.Fatalf("len(commands) = %d, want 1", len(host.commands))
	}
	c := host.commands[0]
	if c.EntityID != e.ID() {
		t.Errorf("EntityID = %q, want %q", c.EntityID, e.ID())
	}
	assertNear(t, "Before.X", c.Before.X, 0)
	assertNear(t, "After.X", c.After.X, 25)

	e.CheckCommand()
	if len(host.commands) != 1 {
		t.Error("CheckCommand without InitCommand should do nothing")
	}
}

func TestCommandsOnlyWhileStopped(t *testing.T) {
	s, _ := newTestStage()
	host := &recordingHost{}
	s.SetCommandHost(host)
	e, _ := newSprite(t, s, RotateFree)

	s.SetEngineState(EngineRunning)
	e.InitCommand()
	e.SetX(5)
	e.CheckCommand()
	if len(host.commands) != 0 {
		t.Error("commands produced while running")
	}
}

// --- History ---

func TestHistoryUndoRedo(t *testing.T) {
	s, _ := newTestStage()
	h := NewHistory(s, 0)
	s.SetCommandHost(h)
	e, _ := newSprite(t, s, RotateFree)

	for _, x := range []float64{10, 20} {
		e.InitCommand()
		e.SetX(x)
		e.CheckCommand()
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	if !h.Undo() {
		t.Fatal("Undo() = false")
	}
	assertNear(t, "X() after undo", e.X(), 10)
	if !h.CanRedo() {
		t.Error("CanRedo() = false")
	}
	h.Undo()
	assertNear(t, "X() after second undo", e.X(), 0)
	if h.Undo() {
		t.Error("Undo() on empty history = true")
	}

	h.Redo()
	assertNear(t, "X() after redo", e.X(), 10)

	e.InitCommand()
	e.SetX(99)
	e.CheckCommand()
	if h.CanRedo() {
		t.Error("a new command should clear redo")
	}
}

func TestHistoryLimitAndDestroyedEntities(t *testing.T) {
	s, _ := newTestStage()
	h := NewHistory(s, 2)
	a, _ := newSprite(t, s, RotateFree)
	b, _ := newSprite(t, s, RotateFree)

	h.Do(a.ID(), Model{X: 1}, Model{})
	h.Do(b.ID(), Model{X: 2}, Model{})
	h.Do(b.ID(), Model{X: 3}, Model{X: 2})
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	b.Destroy()
	if h.Undo() {
		t.Error("Undo() should skip destroyed entities")
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

// --- Config ---

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("stage_width: 640\nminimized: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "StageWidth", cfg.StageWidth, 640)
	assertNear(t, "StageHeight", cfg.StageHeight, 270)
	assertNear(t, "PointerScale", cfg.PointerScale, 0.75)
	if !cfg.Minimized {
		t.Error("Minimized = false")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.yaml")
	if err := os.WriteFile(path, []byte("coding_font: Go Mono\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CodingFont != "Go Mono" {
		t.Errorf("CodingFont = %q", cfg.CodingFont)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestStageAppliesConfigDefaults(t *testing.T) {
	s := NewStage(newFakeSurface(), Config{DefaultFont: "bogus"})
	cfg := s.Config()
	assertNear(t, "StageWidth", cfg.StageWidth, 480)
	assertNear(t, "CodingFontOffset", cfg.CodingFontOffset, 10)
	if f := cfg.defaultFont(); f.Family != "Nanum Gothic" || f.Size != 20 {
		t.Errorf("defaultFont() = %+v", f)
	}
}
