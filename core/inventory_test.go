package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/factory-simulator/model"
)

func TestInventoryTotalTracksCounts(t *testing.T) {
	inv := NewInventory()
	inv.SetItemCap(model.ItemCoal, 5)

	ops := []struct {
		add    bool
		kind   model.ItemKind
		amount int
	}{
		{true, model.ItemCoal, 3},
		{true, model.ItemIron, 7},
		{false, model.ItemCoal, 1},
		{true, model.ItemCoal, 4}, // exceeds cap
		{false, model.ItemIron, 8},
		{false, model.ItemIron, 7},
		{true, model.ItemCopper, 2},
	}
	for i, op := range ops {
		if op.add {
			inv.add(op.kind, op.amount)
		} else {
			inv.Remove(op.kind, op.amount)
		}
		if err := inv.Verify(); err != nil {
			t.Fatalf("op %d: Verify error: %v", i, err)
		}
	}
	if inv.Count(model.ItemCoal) != 2 || inv.Count(model.ItemIron) != 0 || inv.Count(model.ItemCopper) != 2 {
		t.Fatalf("unexpected counts: %v", inv.Snapshot())
	}
	if inv.Total() != 4 {
		t.Fatalf("Total = %d, want 4", inv.Total())
	}
}

func TestInventoryCaps(t *testing.T) {
	inv := NewInventory()
	inv.SetGlobalCap(1)
	if !inv.add(model.ItemCoal, 1) {
		t.Fatalf("expected first item to fit")
	}
	if inv.add(model.ItemIron, 1) {
		t.Fatalf("expected global cap to reject second item")
	}
	if inv.Space(model.ItemIron) != 0 {
		t.Fatalf("Space = %d, want 0", inv.Space(model.ItemIron))
	}

	unbounded := NewInventory()
	if unbounded.Space(model.ItemIron) != math.MaxInt {
		t.Fatalf("expected unbounded space")
	}
	if unbounded.add(model.ItemIron, 0) || unbounded.add(model.ItemIron, -1) {
		t.Fatalf("expected non-positive inserts to be refused")
	}
	unbounded.SetGlobalCap(10)
	unbounded.add(model.ItemIron, 5)
	if unbounded.Fits(model.ItemIron, math.MaxInt) {
		t.Fatalf("expected huge insert not to fit")
	}
}

func TestInventoryRemoveInsufficient(t *testing.T) {
	inv := NewInventory()
	inv.add(model.ItemCoal, 2)
	if inv.Remove(model.ItemCoal, 3) {
		t.Fatalf("expected remove of 3 from 2 to fail")
	}
	if inv.Count(model.ItemCoal) != 2 || inv.Total() != 2 {
		t.Fatalf("failed remove must not change state")
	}
}

func TestInventoryDrainAndFirst(t *testing.T) {
	inv := NewInventory()
	inv.add(model.ItemCoal, 2)
	inv.add(model.ItemCopperOre, 1)

	first, ok := inv.First()
	if !ok || first != model.ItemCopperOre {
		t.Fatalf("First = %v,%v want copper_ore", first, ok)
	}
	stacks := inv.Drain()
	if len(stacks) != 2 || stacks[0].Kind != model.ItemCopperOre || stacks[1].Count != 2 {
		t.Fatalf("unexpected drained stacks: %+v", stacks)
	}
	if !inv.Empty() {
		t.Fatalf("expected empty inventory after drain")
	}
	if _, ok := inv.First(); ok {
		t.Fatalf("expected First on empty inventory to report false")
	}
}

func TestInventoryVerifyDetectsDivergence(t *testing.T) {
	inv := NewInventory()
	inv.add(model.ItemCoal, 2)
	inv.total = 5
	if err := inv.Verify(); !errors.Is(err, ErrInventoryCorrupt) {
		t.Fatalf("expected ErrInventoryCorrupt, got %v", err)
	}
}

func TestInventoryAcceptance(t *testing.T) {
	inv := NewInventory()
	if inv.Accepts(model.ItemCoal) {
		t.Fatalf("new inventory should accept nothing")
	}
	inv.Accept(model.ItemCoal)
	if !inv.Accepts(model.ItemCoal) || inv.Accepts(model.ItemIron) {
		t.Fatalf("accepted set not honoured")
	}
	inv.SetAcceptsAll(true)
	if !inv.Accepts(model.ItemIron) {
		t.Fatalf("accepts-all should accept any item")
	}
}
