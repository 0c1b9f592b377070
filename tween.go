package stagecraft

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 entity properties together. Values are
// written through the entity's setters, so every step marks the stage dirty
// and keeps views and dialogs in sync. If the entity is destroyed the group
// stops immediately.
//
// Schedule a group with Stage.AddTweens, or call Update yourself.
type TweenGroup struct {
	tweens  [4]*gween.Tween
	setters [4]func(float64)
	count   int
	target  *Entity
	after   func()
	Done    bool

	// OnComplete runs once, on the step that finishes the group. It does
	// not run when the entity is removed first.
	OnComplete func()
}

func (g *TweenGroup) add(from, to float64, duration float32, fn ease.TweenFunc, set func(float64)) {
	g.tweens[g.count] = gween.New(float32(from), float32(to), duration, fn)
	g.setters[g.count] = set
	g.count++
}

// Update advances all tweens by dt seconds and writes the values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.Removed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.setters[i](float64(val))
		if !finished {
			allDone = false
		}
	}
	if g.after != nil {
		g.after()
	}
	g.Done = allDone
	if g.Done && g.OnComplete != nil {
		g.OnComplete()
	}
}

// TweenPosition moves e to (toX, toY).
func TweenPosition(e *Entity, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: e}
	g.add(e.X(), toX, duration, fn, e.SetX)
	g.add(e.Y(), toY, duration, fn, e.SetY)
	return g
}

// TweenScale animates both scale axes.
func TweenScale(e *Entity, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: e}
	g.add(e.ScaleX(), toSX, duration, fn, e.SetScaleX)
	g.add(e.ScaleY(), toSY, duration, fn, e.SetScaleY)
	return g
}

// TweenSize animates the size metric.
func TweenSize(e *Entity, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: e}
	g.add(e.Size(), to, duration, fn, e.SetSize)
	return g
}

// TweenRotation animates rotation. Objects that cannot rotate stay at 0.
func TweenRotation(e *Entity, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: e}
	g.add(e.Rotation(), to, duration, fn, e.SetRotation)
	return g
}

// TweenEffect animates one effect value and applies filters every step.
func TweenEffect(e *Entity, k EffectKey, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: e}
	g.add(e.Effect().Get(k), to, duration, fn, func(v float64) { e.SetEffect(k, v) })
	g.after = func() { e.ApplyFilter(false) }
	return g
}
