// Package ecs bridges stagecraft entity notifications into a [Donburi]
// world.
//
// [NewEventBridge] returns a stagecraft.EventSink that publishes every
// entity click, click cancel and object update as an [EntityEventType]
// event. Subscribe to it in your systems and drain it with ProcessEvents.
//
// Usage:
//
//	bridge := ecs.NewEventBridge(world, nil)
//	stage.SetEventSink(bridge)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
