// Package stagecraft is the entity model of a 2D authoring stage.
//
// An [Entity] is one placed sprite or text box. It owns its transform, text
// layout, visual effects and lifecycle, and writes every change through a
// [RenderSurface]. Two surfaces ship with the module: ebitensurface draws
// with [Ebitengine] on the GPU, and ggsurface is a CPU canvas on [gg].
// Entity code never branches on which one is in use.
//
// # Quick start
//
//	surface := ebitensurface.New(ebitensurface.Options{})
//	stage := stagecraft.NewStage(surface, stagecraft.DefaultConfig())
//	stage.SetCommandHost(stagecraft.NewHistory(stage, 100))
//
//	obj := &stagecraft.StageObject{ObjectID: "cat", ObjectKind: stagecraft.KindSprite}
//	cat := stagecraft.NewEntity(stage, obj)
//	cat.InjectModel(&stagecraft.Picture{
//		Name:      "cat",
//		FileURL:   "cat.png",
//		Dimension: stagecraft.Dimension{Width: 100, Height: 80},
//	}, nil)
//	stage.LoadEntity(cat, -1)
//
// Call [Stage.Update] once per tick and redraw when [RenderLoop.ConsumeDirty]
// reports a change.
//
// # Coordinates
//
// Stage coordinates have their origin at the stage center with y growing
// upward. Surfaces receive y negated. The registration point (regX, regY)
// is measured in unscaled pixels from the top-left of a sprite; text boxes
// always pivot at their center.
//
// # Text boxes
//
// Unwrapped text boxes size themselves to the measured text. In line-break
// mode the width is fixed, text wraps, and the height is three lines tall
// when the mode is first entered. Leaving line-break mode collapses the box
// to one line; the previous height is not restored.
//
// # Effects
//
// [Entity.SetEffect] stores values and [Entity.ApplyFilter] pushes them to
// the surface. ApplyFilter is a no-op while the vector is unchanged. The hsv
// effect is a three-branch channel rotation, not a continuous hue shift;
// see [HSVMatrix].
//
// # Undo
//
// Pointer drags are bracketed by [Entity.InitCommand] and
// [Entity.CheckCommand]. When the state differs, one command carrying both
// [Model] values goes to the stage's [CommandHost]. [History] is a ready
// made host.
//
// # Threading
//
// Entities and stages are single-threaded. Surfaces decode pictures on
// worker goroutines and deliver completions during [Stage.Update].
//
// [Ebitengine]: https://ebitengine.org
// [gg]: https://github.com/gogpu/gg
package stagecraft
