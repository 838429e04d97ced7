package core

import "github.com/signalsfoundry/factory-simulator/model"

// Factory turns recipe inputs into outputs and pushes the results out of its
// facing edge.
type Factory struct {
	base
	crafter
	outputs []model.ItemKind
}

func newFactory(id model.BuildingID, def *Def, anchor model.Point) *Factory {
	f := &Factory{base: newBase(id, def, anchor)}
	f.crafter = newCrafter(f.inv, def.Recipes, def.CraftingSpeed, def.ItemCapacity)
	f.outputs = f.crafter.outputKinds()
	return f
}

// ActiveRecipe returns the recipe in progress, or nil when idle.
func (f *Factory) ActiveRecipe() *model.Recipe { return f.active }

// Progress returns the accumulated crafting progress in recipe seconds.
func (f *Factory) Progress() float64 { return f.progress }

// Update is skipped entirely while a powered factory lacks power; the flag
// reflects the previous tick's settlement.
func (f *Factory) Update(dt float64, w *World) {
	if f.power.Consumption > 0 && !f.power.Satisfied {
		return
	}
	if r := f.step(dt); r != nil {
		w.craftCompleted(r)
	}
	for _, kind := range f.outputs {
		if f.inv.Count(kind) > 0 {
			f.tryPush(w, kind)
		}
	}
}
