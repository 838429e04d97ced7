package core

import (
	"testing"

	"github.com/signalsfoundry/factory-simulator/model"
)

func TestConveyorMovesItemAfterInterval(t *testing.T) {
	w := newTestWorld(t, 4, 1)
	a := mustPlace(t, w, 0, 0, KindBasicConveyor, model.East)
	b := mustPlace(t, w, 1, 0, KindBasicConveyor, model.East)
	a.AddInternalItem(model.ItemCoal, 1)

	w.Step(0.25)
	if a.Inventory().Count(model.ItemCoal) != 1 {
		t.Fatalf("item moved before the interval elapsed")
	}
	w.Step(0.25)
	if !a.Inventory().Empty() || b.Inventory().Count(model.ItemCoal) != 1 {
		t.Fatalf("expected item to move to the next conveyor")
	}
}

func TestConveyorBlockedKeepsProgress(t *testing.T) {
	w := newTestWorld(t, 4, 1)
	a := mustPlace(t, w, 0, 0, KindBasicConveyor, model.East)
	b := mustPlace(t, w, 1, 0, KindBasicConveyor, model.East)
	a.AddInternalItem(model.ItemCoal, 1)
	b.AddInternalItem(model.ItemIron, 1)

	w.Step(0.5)
	if a.Inventory().Count(model.ItemCoal) != 1 {
		t.Fatalf("source lost its item while downstream was full")
	}
	if b.Inventory().Count(model.ItemIron) != 1 || b.Inventory().Total() != 1 {
		t.Fatalf("downstream changed while full: %v", b.Inventory().Snapshot())
	}

	b.Inventory().Remove(model.ItemIron, 1)
	w.Step(0)
	if !a.Inventory().Empty() || b.Inventory().Count(model.ItemCoal) != 1 {
		t.Fatalf("expected blocked conveyor to push as soon as downstream frees up")
	}
}

func TestConveyorsFacingEachOtherDoNotSwap(t *testing.T) {
	w := newTestWorld(t, 2, 1)
	a := mustPlace(t, w, 0, 0, KindBasicConveyor, model.East)
	b := mustPlace(t, w, 1, 0, KindBasicConveyor, model.West)
	a.AddInternalItem(model.ItemCoal, 1)

	w.Step(0.5)
	if a.Inventory().Count(model.ItemCoal) != 1 || !b.Inventory().Empty() {
		t.Fatalf("head-on conveyors exchanged an item")
	}
}

func TestConveyorChainDeliversToCore(t *testing.T) {
	sink := &recordingSink{}
	w := newTestWorld(t, 6, 6, WithSink(sink))
	mustPlace(t, w, 0, 0, KindCore, model.North)
	belt := mustPlace(t, w, 1, 3, KindFastConveyor, model.South)
	belt.AddInternalItem(model.ItemCopper, 1)

	w.Step(0.2)
	if !belt.Inventory().Empty() {
		t.Fatalf("expected belt to hand its item to the core")
	}
	w.Step(0.2)
	if sink.got[model.ItemCopper] != 1 {
		t.Fatalf("sink received %v, want 1 copper", sink.got)
	}
}
