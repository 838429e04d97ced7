package core

import (
	"testing"

	"github.com/signalsfoundry/factory-simulator/model"
)

func TestDrillBindsFirstOreAndScalesInterval(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	w.Tile(0, 0).Ore = model.OreCopper
	w.Tile(0, 1).Ore = model.OreIron
	w.Tile(1, 1).Ore = model.OreCopper

	b := mustPlace(t, w, 0, 0, KindLargeDrill, model.North)
	d := b.(*Drill)
	ore, ok := d.Ore()
	if !ok || ore != model.ItemCopperOre {
		t.Fatalf("drill bound to %v,%v want copper_ore", ore, ok)
	}
	if !approx(d.Interval(), 1.6) {
		t.Fatalf("Interval = %v, want 1.6", d.Interval())
	}
}

func TestDrillWithoutOreIsInert(t *testing.T) {
	w := newTestWorld(t, 2, 2)
	b := mustPlace(t, w, 0, 0, KindBasicDrill, model.North)
	for i := 0; i < 5; i++ {
		w.Step(1)
	}
	if _, ok := b.(*Drill).Ore(); ok {
		t.Fatalf("drill on bare ground should not bind")
	}
	if !b.Inventory().Empty() {
		t.Fatalf("inert drill produced items")
	}
}

func TestDrillRespectsStorageLimit(t *testing.T) {
	w := newTestWorld(t, 1, 1)
	w.Tile(0, 0).Ore = model.OreCoal
	b := mustPlace(t, w, 0, 0, KindBasicDrill, model.North)

	for i := 0; i < 15; i++ {
		w.Step(1)
	}
	if got := b.Inventory().Count(model.ItemCoal); got != 10 {
		t.Fatalf("drill holds %d coal, want storage limit 10", got)
	}
	if b.AddItem(model.ItemCoal, 1, model.East) {
		t.Fatalf("drill accepted an external item")
	}
}

func TestDrillPushesIntoConveyor(t *testing.T) {
	w := newTestWorld(t, 1, 3)
	w.Tile(0, 0).Ore = model.OreIron
	drill := mustPlace(t, w, 0, 0, KindBasicDrill, model.North)
	belt := mustPlace(t, w, 0, 1, KindBasicConveyor, model.North)

	w.Step(1)
	if !drill.Inventory().Empty() {
		t.Fatalf("drill kept its ore: %v", drill.Inventory().Snapshot())
	}
	if belt.Inventory().Count(model.ItemIronOre) != 1 {
		t.Fatalf("conveyor did not receive iron ore")
	}
}

func TestRebindDrainsPreviousOre(t *testing.T) {
	sink := &recordingSink{}
	w := newTestWorld(t, 3, 4, WithSink(sink))
	w.Tile(0, 0).Ore = model.OreCopper
	d := mustPlace(t, w, 0, 0, KindBasicDrill, model.North).(*Drill)

	w.Step(1)
	w.Step(1)
	if got := d.Inventory().Count(model.ItemCopperOre); got != 2 {
		t.Fatalf("drill holds %d copper ore, want 2", got)
	}

	w.Tile(0, 0).Ore = model.OreCoal
	d.OnPlaced(w)
	mustPlace(t, w, 0, 1, KindCore, model.North)
	for i := 0; i < 4; i++ {
		w.Step(1)
	}
	if got := d.Inventory().Count(model.ItemCopperOre); got != 0 {
		t.Fatalf("drill still holds %d copper ore after rebinding", got)
	}
	if sink.got[model.ItemCopperOre] != 2 {
		t.Fatalf("sink received %v, want 2 copper ore", sink.got)
	}
	if sink.got[model.ItemCoal] == 0 {
		t.Fatalf("rebound drill never delivered coal: %v", sink.got)
	}
}
