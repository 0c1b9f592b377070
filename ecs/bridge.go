package ecs

import (
	"github.com/phanxgames/stagecraft"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EntityEventType is the Donburi event type for stagecraft entity events.
var EntityEventType = events.NewEventType[stagecraft.Event]()

// EventBridge publishes stagecraft entity events into a Donburi world.
type EventBridge struct {
	world donburi.World
	next  stagecraft.EventSink
}

var _ stagecraft.EventSink = (*EventBridge)(nil)

// NewEventBridge creates a bridge for world. Events are also forwarded to
// next when it is non-nil, so an existing sink keeps working.
func NewEventBridge(world donburi.World, next stagecraft.EventSink) *EventBridge {
	return &EventBridge{world: world, next: next}
}

// Emit implements stagecraft.EventSink. Published events are queued until
// EntityEventType.ProcessEvents runs.
func (b *EventBridge) Emit(ev stagecraft.Event) {
	EntityEventType.Publish(b.world, ev)
	if b.next != nil {
		b.next.Emit(ev)
	}
}

// World returns the world events are published to.
func (b *EventBridge) World() donburi.World { return b.world }
