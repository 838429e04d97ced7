package core

import (
	"testing"

	"github.com/signalsfoundry/factory-simulator/model"
)

func TestSmelterConservesItems(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	b := mustPlace(t, w, 0, 0, KindSmelter, model.North)
	f := b.(*Factory)

	if !f.AddItem(model.ItemCopperOre, 1, model.North) || !f.AddItem(model.ItemCoal, 1, model.East) {
		t.Fatalf("smelter refused its recipe inputs")
	}
	if f.AddItem(model.ItemCopper, 1, model.North) {
		t.Fatalf("smelter accepted a recipe output as input")
	}

	w.Step(0.5)
	if f.ActiveRecipe() == nil || f.ActiveRecipe().Name != RecipeSmeltCopper {
		t.Fatalf("expected smelt_copper in progress, got %v", f.ActiveRecipe())
	}
	if !approx(f.Progress(), 0.5) {
		t.Fatalf("Progress = %v, want 0.5", f.Progress())
	}

	w.Step(0.5)
	inv := f.Inventory()
	if inv.Count(model.ItemCopper) != 1 || inv.Count(model.ItemCopperOre) != 0 || inv.Count(model.ItemCoal) != 0 {
		t.Fatalf("unexpected inventory after craft: %v", inv.Snapshot())
	}
	if f.ActiveRecipe() != nil || f.Progress() != 0 {
		t.Fatalf("factory should be idle after completion")
	}
	if w.Crafts()[RecipeSmeltCopper] != 1 {
		t.Fatalf("craft count = %v", w.Crafts())
	}
}

func TestSmelterInterruptedCraftProducesNothing(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	f := mustPlace(t, w, 0, 0, KindSmelter, model.North).(*Factory)
	f.AddInternalItem(model.ItemIronOre, 1)
	f.AddInternalItem(model.ItemCoal, 1)

	w.Step(0.5)
	f.Inventory().Remove(model.ItemCoal, 1)
	w.Step(0.5)

	if f.ActiveRecipe() != nil || f.Progress() != 0 {
		t.Fatalf("interrupted craft was not abandoned")
	}
	if f.Inventory().Count(model.ItemIron) != 0 || f.Inventory().Count(model.ItemIronOre) != 1 {
		t.Fatalf("interrupted craft changed items: %v", f.Inventory().Snapshot())
	}
}

func TestSmelterPicksFirstDeclaredRecipe(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	f := mustPlace(t, w, 0, 0, KindSmelter, model.North).(*Factory)
	f.AddInternalItem(model.ItemIronOre, 1)
	f.AddInternalItem(model.ItemCopperOre, 1)
	f.AddInternalItem(model.ItemCoal, 1)

	w.Step(0.1)
	if f.ActiveRecipe() == nil || f.ActiveRecipe().Name != RecipeSmeltCopper {
		t.Fatalf("expected smelt_copper to win, got %v", f.ActiveRecipe())
	}
}

func TestSmelterWaitsForOutputSpace(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	f := mustPlace(t, w, 0, 0, KindSmelter, model.North).(*Factory)
	f.AddInternalItem(model.ItemCopper, 10)
	f.AddInternalItem(model.ItemCopperOre, 1)
	f.AddInternalItem(model.ItemCoal, 1)

	w.Step(1)
	if f.ActiveRecipe() != nil || f.Inventory().Count(model.ItemCopper) != 10 {
		t.Fatalf("smelter crafted into a full output slot")
	}
}

func TestSmelterPushesOutput(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	f := mustPlace(t, w, 0, 0, KindSmelter, model.North).(*Factory)
	belt := mustPlace(t, w, 1, 2, KindBasicConveyor, model.North)
	f.AddInternalItem(model.ItemCopper, 1)

	w.Step(0.1)
	if f.Inventory().Count(model.ItemCopper) != 0 || belt.Inventory().Count(model.ItemCopper) != 1 {
		t.Fatalf("expected smelter output on the belt")
	}
}

func TestUnpoweredFactoryDoesNothing(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	f := mustPlace(t, w, 0, 0, KindIndustrialSmelter, model.North).(*Factory)
	if f.Power().Satisfied {
		t.Fatalf("isolated consumer should be unsatisfied")
	}
	f.AddInternalItem(model.ItemCopperOre, 1)
	f.AddInternalItem(model.ItemCoal, 1)

	w.Step(1)
	if f.ActiveRecipe() != nil || f.Inventory().Count(model.ItemCopper) != 0 {
		t.Fatalf("unpowered factory made progress")
	}
}

func TestGeneratorPowersIndustrialSmelter(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	gen := mustPlace(t, w, 0, 0, KindCoalGenerator, model.North).(*Generator)
	f := mustPlace(t, w, 2, 0, KindIndustrialSmelter, model.North).(*Factory)
	if gen.Power().Network == 0 || gen.Power().Network != f.Power().Network {
		t.Fatalf("generator and smelter should share a network")
	}

	if !gen.AddItem(model.ItemCoal, 2, model.North) {
		t.Fatalf("generator refused coal")
	}
	f.AddInternalItem(model.ItemCopperOre, 1)
	f.AddInternalItem(model.ItemCoal, 1)

	w.Step(0.1)
	if !f.Power().Satisfied {
		t.Fatalf("smelter should be satisfied once the generator burns")
	}
	w.Step(0.1)
	if f.Inventory().Count(model.ItemCopper) != 0 {
		t.Fatalf("craft finished too early")
	}
	w.Step(0.1)
	if f.Inventory().Count(model.ItemCopper) != 1 {
		t.Fatalf("powered smelter did not craft: %v", f.Inventory().Snapshot())
	}
}

func TestGeneratorBurnCycle(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	g := mustPlace(t, w, 0, 0, KindCoalGenerator, model.North).(*Generator)
	g.AddInternalItem(model.ItemCoal, 1)

	w.Step(0.5)
	if !g.Burning() || g.Power().Production != 100 {
		t.Fatalf("generator should burn after receiving coal")
	}
	if g.Inventory().Count(model.ItemCoal) != 0 {
		t.Fatalf("coal not consumed")
	}
	if !approx(g.BurnFraction(), 0.5) {
		t.Fatalf("BurnFraction = %v, want 0.5", g.BurnFraction())
	}
	if !approx(g.Power().Stored, 50) {
		t.Fatalf("surplus stored = %v, want 50", g.Power().Stored)
	}

	w.Step(0.5)
	w.Step(0.5)
	if g.Burning() || g.Power().Production != 0 {
		t.Fatalf("generator should stop once fuel runs out")
	}
}
