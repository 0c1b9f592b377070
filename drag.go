package stagecraft

// toStage converts canvas pixels to stage units: the canvas is scaled by
// the pointer scale and the origin moves to the stage center.
func (s *Stage) toStage(px, py float64) (float64, float64) {
	c := s.cfg
	return px*c.PointerScale - c.StageWidth/2, py*c.PointerScale - c.StageHeight/2
}

func (e *Entity) pointerDown(px, py float64) {
	e.emit(EventEntityClick)
	s := e.stage
	s.objectClick = true
	if s.cfg.Minimized || !s.IsEntitySelectable() {
		return
	}
	sx, sy := s.toStage(px, py)
	e.dragOffset = &Vec2{X: e.x - sx, Y: -e.y - sy}
	e.InitCommand()
	s.SelectObject(e.parent.ID())
}

func (e *Entity) pointerMove(px, py float64) {
	s := e.stage
	if s.cfg.Minimized || !s.IsEntitySelectable() || e.dragOffset == nil {
		return
	}
	if e.parent.Locked() {
		return
	}
	sx, sy := s.toStage(px, py)
	e.SetX(sx + e.dragOffset.X)
	e.SetY(-sy - e.dragOffset.Y)
	e.emit(EventUpdateObject)
}

func (e *Entity) pointerUp() {
	e.emit(EventEntityClickCanceled)
	e.dragOffset = nil
	e.CheckCommand()
}
