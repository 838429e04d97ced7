package core

import "github.com/signalsfoundry/factory-simulator/model"

// Generator burns fuel to produce power. It reuses the crafting component
// for fuel bookkeeping; the fuel recipe's craft time is the burn duration.
type Generator struct {
	base
	crafter
	fuel          *model.Recipe
	burnRemaining float64
	burnDuration  float64
}

func newGenerator(id model.BuildingID, def *Def, anchor model.Point) *Generator {
	g := &Generator{base: newBase(id, def, anchor)}
	g.crafter = newCrafter(g.inv, def.Recipes, def.CraftingSpeed, def.ItemCapacity)
	g.fuel = def.Recipes[0]
	return g
}

// Burning reports whether fuel is currently being consumed.
func (g *Generator) Burning() bool { return g.burnRemaining > 0 }

// BurnFraction returns the remaining share of the current fuel unit in [0,1].
func (g *Generator) BurnFraction() float64 {
	if g.burnDuration <= 0 || g.burnRemaining <= 0 {
		return 0
	}
	return min(g.burnRemaining/g.burnDuration, 1)
}

func (g *Generator) Update(dt float64, w *World) {
	if g.burnRemaining <= 0 {
		g.power.Production = 0
		if g.hasInputs(g.fuel) {
			g.consumeInputs(g.fuel)
			g.burnRemaining += g.fuel.CraftTime
			g.burnDuration = g.fuel.CraftTime
		}
	}
	if g.burnRemaining > 0 {
		g.burnRemaining -= dt
		g.power.Production = g.def.PowerOutput
	}
}
