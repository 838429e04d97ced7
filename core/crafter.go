package core

import "github.com/signalsfoundry/factory-simulator/model"

// crafter is the recipe state machine shared by factories and generators.
// It operates on the inventory of the building that owns it.
type crafter struct {
	items    *Inventory
	recipes  []*model.Recipe
	speed    float64
	active   *model.Recipe
	progress float64
}

// newCrafter configures inv for recipes: every input is accepted and every
// input and output kind is capped at capacity.
func newCrafter(inv *Inventory, recipes []*model.Recipe, speed float64, capacity int) crafter {
	inv.SetGlobalCap(Unbounded)
	for _, r := range recipes {
		for _, in := range r.Inputs {
			inv.Accept(in.Kind)
			inv.SetItemCap(in.Kind, capacity)
		}
		for _, out := range r.Outputs {
			inv.SetItemCap(out.Kind, capacity)
		}
	}
	return crafter{items: inv, recipes: recipes, speed: speed}
}

// hasInputs reports whether every input of r is held.
func (c *crafter) hasInputs(r *model.Recipe) bool {
	for _, in := range r.Inputs {
		if c.items.Count(in.Kind) < in.Count {
			return false
		}
	}
	return true
}

// canCraft reports whether r has its inputs and room for every output.
func (c *crafter) canCraft(r *model.Recipe) bool {
	if !c.hasInputs(r) {
		return false
	}
	for _, out := range r.Outputs {
		limit, ok := c.items.ItemCap(out.Kind)
		if ok && c.items.Count(out.Kind)+out.Count > limit {
			return false
		}
	}
	return true
}

func (c *crafter) consumeInputs(r *model.Recipe) {
	for _, in := range r.Inputs {
		c.items.Remove(in.Kind, in.Count)
	}
}

// step advances the state machine by dt and returns the recipe that
// completed, if any.
func (c *crafter) step(dt float64) *model.Recipe {
	if c.active == nil {
		for _, r := range c.recipes {
			if c.canCraft(r) {
				c.active = r
				c.progress = 0
				break
			}
		}
	}
	if c.active == nil {
		return nil
	}
	if !c.canCraft(c.active) {
		c.active = nil
		c.progress = 0
		return nil
	}

	c.progress += dt * c.speed
	if c.progress < c.active.CraftTime {
		return nil
	}
	r := c.active
	c.consumeInputs(r)
	for _, out := range r.Outputs {
		c.items.add(out.Kind, out.Count)
	}
	c.active = nil
	c.progress = 0
	return r
}

// outputKinds lists every output kind across recipes, first occurrence wins.
func (c *crafter) outputKinds() []model.ItemKind {
	var kinds []model.ItemKind
	seen := make(map[model.ItemKind]bool)
	for _, r := range c.recipes {
		for _, out := range r.Outputs {
			if !seen[out.Kind] {
				seen[out.Kind] = true
				kinds = append(kinds, out.Kind)
			}
		}
	}
	return kinds
}
