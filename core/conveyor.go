package core

import "github.com/signalsfoundry/factory-simulator/model"

// Conveyor carries a single item towards its facing.
type Conveyor struct {
	base
	moveTimer float64
}

func newConveyor(id model.BuildingID, def *Def, anchor model.Point) *Conveyor {
	c := &Conveyor{base: newBase(id, def, anchor)}
	c.inv.SetGlobalCap(1)
	c.inv.SetAcceptsAll(true)
	return c
}

// Update pushes the held item once the move interval has elapsed. A blocked
// conveyor keeps its accumulated time so it moves as soon as it is unblocked.
func (c *Conveyor) Update(dt float64, w *World) {
	kind, ok := c.inv.First()
	if !ok {
		c.moveTimer = 0
		return
	}
	c.moveTimer += dt
	if c.moveTimer >= c.def.MoveInterval {
		if c.tryPush(w, kind) {
			c.moveTimer -= c.def.MoveInterval
		}
	}
}
