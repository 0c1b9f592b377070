package stagecraft

// debugRemovedEntity reports a setter called on a destroyed entity. Only
// called when the stage is in debug mode; the call itself is still ignored.
func debugRemovedEntity(e *Entity, op string) {
	Logger().Warn("stagecraft debug: mutation of removed entity",
		"op", op, "entity", e.id, "kind", e.kind.String())
}
