package stagecraft

import "math"

// --- Position ---

// SetX moves e horizontally. Non-finite values are ignored.
func (e *Entity) SetX(x float64) {
	if !e.alive("SetX") || !finite(x) {
		return
	}
	e.x = x
	e.writePosition()
	e.updateCoordinateView()
	e.updateDialog()
	e.markDirty()
}

// X returns the horizontal position, optionally rounded to digits.
func (e *Entity) X(digits ...int) float64 { return fixed(e.x, digits) }

// SetY moves e vertically. Stage y grows upward; surfaces receive it negated.
func (e *Entity) SetY(y float64) {
	if !e.alive("SetY") || !finite(y) {
		return
	}
	e.y = y
	e.writePosition()
	e.updateCoordinateView()
	e.updateDialog()
	e.markDirty()
}

// Y returns the vertical position, optionally rounded to digits.
func (e *Entity) Y(digits ...int) float64 { return fixed(e.y, digits) }

func (e *Entity) writePosition() {
	e.surface.SetPosition(e.object, e.x, -e.y)
}

// --- Registration point ---

// SetRegX sets the horizontal pivot in unscaled pixels from the top-left.
// Text boxes always pivot at their center and keep 0.
func (e *Entity) SetRegX(regX float64) {
	if !e.alive("SetRegX") || !finite(regX) {
		return
	}
	if e.isText() {
		regX = 0
	}
	e.regX = regX
	e.surface.SetPivot(e.object, e.regX, e.regY)
	e.markDirty()
}

// RegX returns the horizontal pivot.
func (e *Entity) RegX(digits ...int) float64 { return fixed(e.regX, digits) }

// SetRegY sets the vertical pivot.
func (e *Entity) SetRegY(regY float64) {
	if !e.alive("SetRegY") || !finite(regY) {
		return
	}
	if e.isText() {
		regY = 0
	}
	e.regY = regY
	e.surface.SetPivot(e.object, e.regX, e.regY)
	e.markDirty()
}

// RegY returns the vertical pivot.
func (e *Entity) RegY(digits ...int) float64 { return fixed(e.regY, digits) }

// --- Scale ---

// SetScaleX sets the horizontal scale. A negative scale mirrors the entity.
func (e *Entity) SetScaleX(s float64) {
	if !e.alive("SetScaleX") || !finite(s) {
		return
	}
	e.scaleX = s
	e.surface.SetScale(e.object, e.scaleX, e.scaleY)
	e.updateCoordinateView()
	e.updateDialog()
	e.markDirty()
}

// ScaleX returns the horizontal scale.
func (e *Entity) ScaleX(digits ...int) float64 { return fixed(e.scaleX, digits) }

// SetScaleY sets the vertical scale.
func (e *Entity) SetScaleY(s float64) {
	if !e.alive("SetScaleY") || !finite(s) {
		return
	}
	e.scaleY = s
	e.surface.SetScale(e.object, e.scaleX, e.scaleY)
	e.updateCoordinateView()
	e.updateDialog()
	e.markDirty()
}

// ScaleY returns the vertical scale.
func (e *Entity) ScaleY(digits ...int) float64 { return fixed(e.scaleY, digits) }

// Size returns the size metric (w·|sx| + h·|sy|) / 2.
func (e *Entity) Size(digits ...int) float64 {
	s := (e.width*math.Abs(e.scaleX) + e.height*math.Abs(e.scaleY)) / 2
	return fixed(s, digits)
}

// SetSize rescales e so that Size returns max(1, size). Mirroring is kept.
func (e *Entity) SetSize(size float64) {
	if !e.alive("SetSize") || !finite(size) {
		return
	}
	cur := e.Size()
	if cur == 0 {
		return
	}
	ratio := math.Max(1, size) / cur
	e.SetScaleX(e.scaleX * ratio)
	e.SetScaleY(e.scaleY * ratio)
}

// --- Rotation and direction ---

// SetRotation sets the rotation in degrees. Objects whose rotate method is
// not free always keep rotation 0.
func (e *Entity) SetRotation(rotation float64) {
	if !e.alive("SetRotation") || !finite(rotation) {
		return
	}
	if e.parent != nil && e.parent.RotateMethod() != RotateFree {
		rotation = 0
	}
	e.rotation = mod360(rotation)
	e.surface.SetRotation(e.object, e.rotation)
	e.updateDialog()
	e.updateRotationView()
	e.emit(EventUpdateObject)
	e.markDirty()
}

// Rotation returns the rotation in degrees.
func (e *Entity) Rotation(digits ...int) float64 { return fixed(e.rotation, digits) }

// SetDirection sets the heading in degrees. For vertically rotating objects
// a move between the right half-plane [0, 180) and the left one mirrors the
// entity, unless flippable is set.
func (e *Entity) SetDirection(direction float64, flippable bool) {
	if !e.alive("SetDirection") || !finite(direction) {
		return
	}
	direction = math.Mod(direction, 360)
	if e.parent != nil && e.parent.RotateMethod() == RotateVertical && !flippable {
		wasRight := e.direction >= 0 && e.direction < 180
		isRight := direction >= 0 && direction < 180
		if wasRight != isRight {
			e.SetScaleX(-e.scaleX)
			e.emit(EventUpdateObject)
			e.flip = !e.flip
		}
	}
	e.direction = mod360(direction)
	e.surface.SetDirection(e.object, e.direction)
	e.updateRotationView()
	e.emit(EventUpdateObject)
	e.markDirty()
}

// Direction returns the heading in degrees, always in [0, 360).
func (e *Entity) Direction(digits ...int) float64 { return fixed(e.direction, digits) }

// --- Box ---

// SetWidth sets the unscaled width. For wrapped text boxes it is also the
// wrap width.
func (e *Entity) SetWidth(width float64) {
	if !e.alive("SetWidth") || !finite(width) {
		return
	}
	e.width = width
	e.surface.SetSize(e.object, e.width, e.height)
	if e.isText() && e.lineBreak {
		e.wrapWidth = width
		e.alignTextBox()
	}
	e.updateDialog()
	e.updateBG()
	e.markDirty()
}

// Width returns the unscaled width.
func (e *Entity) Width(digits ...int) float64 { return fixed(e.width, digits) }

// SetHeight sets the unscaled height.
func (e *Entity) SetHeight(height float64) {
	if !e.alive("SetHeight") || !finite(height) {
		return
	}
	e.height = height
	e.surface.SetSize(e.object, e.width, e.height)
	if e.isText() {
		e.alignTextBox()
	}
	e.updateDialog()
	e.updateBG()
	e.markDirty()
}

// Height returns the unscaled height.
func (e *Entity) Height(digits ...int) float64 { return fixed(e.height, digits) }

// --- Visibility ---

// SetVisible shows or hides e and any attached dialog. It returns the new
// visibility.
func (e *Entity) SetVisible(visible bool) bool {
	if !e.alive("SetVisible") {
		return e.visible
	}
	e.visible = visible
	e.surface.SetVisible(e.object, visible)
	if e.dialog != nil {
		e.dialog.SetVisible(visible)
	}
	e.markDirty()
	return e.visible
}

// Visible reports whether e is shown.
func (e *Entity) Visible() bool { return e.visible }
