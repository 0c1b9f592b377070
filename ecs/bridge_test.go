package ecs

import (
	"testing"

	"github.com/phanxgames/stagecraft"
	"github.com/phanxgames/stagecraft/ggsurface"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestEventBridgePublishes(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewEventBridge(world, nil)

	var received []stagecraft.Event
	EntityEventType.Subscribe(world, func(w donburi.World, e stagecraft.Event) {
		received = append(received, e)
	})

	bridge.Emit(stagecraft.Event{Type: stagecraft.EventEntityClick, EntityID: "e1", ObjectID: "o1"})
	bridge.Emit(stagecraft.Event{Type: stagecraft.EventUpdateObject, ObjectID: "o1"})

	if len(received) != 0 {
		t.Fatal("events should stay queued until processed")
	}
	EntityEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("received %d events, want 2", len(received))
	}
	if received[0].Type != stagecraft.EventEntityClick || received[0].EntityID != "e1" {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Type != stagecraft.EventUpdateObject || received[1].ObjectID != "o1" {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestEventBridgeForwards(t *testing.T) {
	world := donburi.NewWorld()
	var forwarded []stagecraft.Event
	bridge := NewEventBridge(world, stagecraft.EventSinkFunc(func(ev stagecraft.Event) {
		forwarded = append(forwarded, ev)
	}))

	bridge.Emit(stagecraft.Event{Type: stagecraft.EventEntityClickCanceled})
	if len(forwarded) != 1 || forwarded[0].Type != stagecraft.EventEntityClickCanceled {
		t.Errorf("forwarded = %+v", forwarded)
	}
	if bridge.World() != world {
		t.Error("World() should return the bridged world")
	}
}

func TestEventBridgeMultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewEventBridge(world, nil)

	var count1, count2 int
	EntityEventType.Subscribe(world, func(w donburi.World, e stagecraft.Event) { count1++ })
	EntityEventType.Subscribe(world, func(w donburi.World, e stagecraft.Event) { count2++ })

	bridge.Emit(stagecraft.Event{Type: stagecraft.EventEntityClick})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("subscribers called %d and %d times, want 1 each", count1, count2)
	}
}

func TestStageEventsReachWorld(t *testing.T) {
	surface, err := ggsurface.New(ggsurface.Options{Config: stagecraft.DefaultConfig()})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = surface.Close() }()

	stage := stagecraft.NewStage(surface, stagecraft.DefaultConfig())
	world := donburi.NewWorld()
	stage.SetEventSink(NewEventBridge(world, nil))

	var received []stagecraft.Event
	EntityEventType.Subscribe(world, func(w donburi.World, e stagecraft.Event) {
		received = append(received, e)
	})

	obj := &stagecraft.StageObject{ObjectID: "obj-1", ObjectName: "hero", ObjectKind: stagecraft.KindSprite}
	e := stagecraft.NewEntity(stage, obj)
	e.SetModel(stagecraft.DefaultModel())
	EntityEventType.ProcessEvents(world)

	if len(received) == 0 {
		t.Fatal("no events reached the world")
	}
	last := received[len(received)-1]
	if last.Type != stagecraft.EventUpdateObject || last.ObjectID != "obj-1" {
		t.Errorf("last event = %+v", last)
	}
}
