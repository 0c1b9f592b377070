package stagecraft

// Brush is the pen an entity draws freehand lines with.
type Brush struct {
	Color     string
	Thickness float64
	Opacity   float64
	Stopped   bool
}

// NewBrush returns an opaque brush.
func NewBrush(color string, thickness float64) *Brush {
	return &Brush{Color: color, Thickness: thickness, Opacity: 1}
}

// SetBrush attaches b. A nil brush stops drawing but keeps existing shapes.
func (e *Entity) SetBrush(b *Brush) {
	if !e.alive("SetBrush") {
		return
	}
	e.brush = b
}

// Brush returns the attached brush, or nil.
func (e *Entity) Brush() *Brush { return e.brush }

// Shapes returns the freehand primitives drawn by e.
func (e *Entity) Shapes() []Handle { return e.shapes }

// Stroke draws a line in stage units with the current brush, below the
// entity. It returns NoHandle when there is no brush or it is stopped.
func (e *Entity) Stroke(x0, y0, x1, y1 float64) Handle {
	if !e.alive("Stroke") || e.brush == nil || e.brush.Stopped {
		return NoHandle
	}
	h := e.surface.NewGraphic()
	e.surface.StrokeLine(h, x0, -y0, x1, -y1, e.brush.Thickness, e.brush.Color)
	e.surface.SetAlpha(h, clamp(e.brush.Opacity, 0, 1))
	e.surface.Insert(h, e.surface.IndexOf(e.object))
	e.shapes = append(e.shapes, h)
	e.markDirty()
	return h
}

// EraseBrush removes every drawn shape and keeps the brush.
func (e *Entity) EraseBrush() {
	if !e.alive("EraseBrush") {
		return
	}
	e.removeShapes()
	e.markDirty()
}

// RemoveBrush removes every drawn shape and detaches the brush.
func (e *Entity) RemoveBrush() {
	if !e.alive("RemoveBrush") {
		return
	}
	e.removeShapes()
	e.brush = nil
	e.markDirty()
}

func (e *Entity) removeShapes() {
	for _, h := range e.shapes {
		e.surface.Destroy(h)
	}
	e.shapes = nil
}
