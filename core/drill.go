package core

import "github.com/signalsfoundry/factory-simulator/model"

// Drill mines the ore beneath its footprint.
type Drill struct {
	base
	ore      model.ItemKind
	bound    bool
	matches  int
	interval float64
	timer    float64
}

func newDrill(id model.BuildingID, def *Def, anchor model.Point) *Drill {
	return &Drill{base: newBase(id, def, anchor)}
}

// OnPlaced binds the drill to the first ore found under its footprint. The
// mining interval shrinks in proportion to the matching deposit tiles.
func (d *Drill) OnPlaced(w *World) {
	d.bound = false
	d.matches = 0
	var found model.Ore
	for _, c := range footprint(d.anchor, d.width, d.height) {
		t := w.Grid().At(c.X, c.Y)
		if t == nil || t.Ore == model.OreNone {
			continue
		}
		if found == model.OreNone {
			found = t.Ore
		}
		if t.Ore == found {
			d.matches++
		}
	}
	item, ok := found.MinedItem()
	if !ok {
		return
	}
	d.ore = item
	d.bound = true
	d.interval = d.def.MiningInterval / float64(d.matches)
	d.inv.SetItemCap(item, d.def.StorageLimit)
}

// Ore returns the mined item and whether the drill sits on a deposit.
func (d *Drill) Ore() (model.ItemKind, bool) { return d.ore, d.bound }

// Interval returns the effective seconds per mining cycle.
func (d *Drill) Interval() float64 { return d.interval }

// Update mines on the bound deposit, then pushes one held unit. Ore left over
// from an earlier binding drains out before the current one.
func (d *Drill) Update(dt float64, w *World) {
	if d.bound {
		d.timer += dt
		if d.timer >= d.interval {
			d.timer -= d.interval
			if n := min(d.def.MiningQuantity, d.inv.Space(d.ore)); n > 0 {
				d.AddInternalItem(d.ore, n)
			}
		}
	}
	for _, s := range d.inv.Stacks() {
		if d.bound && s.Kind == d.ore {
			continue
		}
		if d.tryPush(w, s.Kind) {
			return
		}
	}
	if d.bound {
		d.tryPush(w, d.ore)
	}
}
