package core

import "github.com/signalsfoundry/factory-simulator/model"

// ResourceSink receives items delivered to the core. The player ledger
// implements it; its own accounting is outside the simulation.
type ResourceSink interface {
	AddResource(kind model.ItemKind, amount int)
}

// CoreSink is the player's base. It accepts any item from any side and
// forwards everything it holds to the world's ResourceSink every tick.
type CoreSink struct {
	base
}

func newCoreSink(id model.BuildingID, def *Def, anchor model.Point) *CoreSink {
	c := &CoreSink{base: newBase(id, def, anchor)}
	c.inv.SetAcceptsAll(true)
	c.inv.SetGlobalCap(Unbounded)
	return c
}

// AddItem ignores the directional filter.
func (c *CoreSink) AddItem(kind model.ItemKind, amount int, _ model.Direction) bool {
	return c.AddInternalItem(kind, amount)
}

func (c *CoreSink) Update(_ float64, w *World) {
	if c.inv.Empty() {
		return
	}
	for _, s := range c.inv.Drain() {
		w.deliver(s.Kind, s.Count)
	}
}
