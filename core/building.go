package core

import (
	"github.com/signalsfoundry/factory-simulator/model"
)

// NetworkID identifies a power network for the lifetime of one rebuild.
// Zero means the building belongs to no network.
type NetworkID int

// PowerState carries the electrical attributes of a building. Network and
// Satisfied are written only by the PowerSystem.
type PowerState struct {
	Capacity    float64 // joules
	Stored      float64 // joules
	Production  float64 // watts, current tick
	Consumption float64 // watts
	Network     NetworkID
	Satisfied   bool

	// producer marks buildings able to generate power even while idle.
	producer bool
	relay    bool
}

// Relevant reports whether the building takes part in network formation.
func (p *PowerState) Relevant() bool {
	return p.producer || p.Production > 0 || p.Consumption > 0 || p.Capacity > 0 || p.relay
}

// Building is the contract shared by every placeable machine. Variants embed
// *base for the inventory, footprint and transport plumbing and implement
// Update with their own behaviour.
type Building interface {
	ID() model.BuildingID
	Def() *Def
	Anchor() model.Point
	Size() (width, height int)
	Facing() model.Direction
	SetFacing(d model.Direction)
	Inventory() *Inventory
	Power() *PowerState

	// AddItem is the directional insert used by transport.
	AddItem(kind model.ItemKind, amount int, from model.Direction) bool
	// AddInternalItem bypasses direction and acceptance filters; caps still apply.
	AddInternalItem(kind model.ItemKind, amount int) bool

	CanBuildOn(t model.Terrain) bool
	ConnectionRadius() float64

	// OnPlaced runs once after the footprint has been written to the grid.
	OnPlaced(w *World)
	// Update advances the building by dt seconds.
	Update(dt float64, w *World)
}

// base implements the shared part of Building.
type base struct {
	id            model.BuildingID
	def           *Def
	anchor        model.Point
	width, height int
	facing        model.Direction
	inv           *Inventory
	power         PowerState
}

func newBase(id model.BuildingID, def *Def, anchor model.Point) base {
	b := base{
		id:     id,
		def:    def,
		anchor: anchor,
		width:  def.Width,
		height: def.Height,
		facing: model.North,
		inv:    NewInventory(),
	}
	b.power.Capacity = def.EnergyCapacity
	b.power.Consumption = def.PowerConsumption
	b.power.producer = def.PowerOutput > 0
	b.power.relay = def.Relay
	b.power.Satisfied = true
	return b
}

func (b *base) ID() model.BuildingID    { return b.id }
func (b *base) Def() *Def               { return b.def }
func (b *base) Anchor() model.Point     { return b.anchor }
func (b *base) Size() (int, int)        { return b.width, b.height }
func (b *base) Facing() model.Direction { return b.facing }
func (b *base) Inventory() *Inventory   { return b.inv }
func (b *base) Power() *PowerState      { return &b.power }
func (b *base) OnPlaced(*World)         {}

// SetFacing turns the building. Switching between a vertical and a horizontal
// facing swaps the footprint around the anchor.
func (b *base) SetFacing(d model.Direction) {
	if d.Vertical() != b.facing.Vertical() {
		b.width, b.height = b.height, b.width
	}
	b.facing = d
}

// AddItem rejects items travelling against the output port (from equals the
// opposite of the facing), kinds outside the accepted set, and inserts that
// would exceed a cap.
func (b *base) AddItem(kind model.ItemKind, amount int, from model.Direction) bool {
	if from == b.facing.Opposite() {
		return false
	}
	if !b.inv.Accepts(kind) {
		return false
	}
	return b.inv.add(kind, amount)
}

func (b *base) AddInternalItem(kind model.ItemKind, amount int) bool {
	return b.inv.add(kind, amount)
}

func (b *base) CanBuildOn(t model.Terrain) bool {
	allowed := b.def.BuildableOn
	if len(allowed) == 0 {
		return t == model.TerrainDirt
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// ConnectionRadius is near-contact for ordinary buildings.
func (b *base) ConnectionRadius() float64 {
	if b.def.ConnectionRadius > 0 {
		return b.def.ConnectionRadius
	}
	return float64(max(b.width, b.height)) + 0.5
}

// OutputCells lists the cells adjacent to the facing edge of the footprint:
// left to right for north/south facings, bottom to top for east/west.
func (b *base) OutputCells() []model.Point {
	x, y := b.anchor.X, b.anchor.Y
	var cells []model.Point
	switch b.facing {
	case model.North:
		for i := 0; i < b.width; i++ {
			cells = append(cells, model.Point{X: x + i, Y: y + b.height})
		}
	case model.South:
		for i := 0; i < b.width; i++ {
			cells = append(cells, model.Point{X: x + i, Y: y - 1})
		}
	case model.East:
		for j := 0; j < b.height; j++ {
			cells = append(cells, model.Point{X: x + b.width, Y: y + j})
		}
	case model.West:
		for j := 0; j < b.height; j++ {
			cells = append(cells, model.Point{X: x - 1, Y: y + j})
		}
	}
	return cells
}

// tryPush moves one unit of kind into the first neighbour along the output
// edge that accepts it.
func (b *base) tryPush(w *World, kind model.ItemKind) bool {
	if b.inv.Count(kind) <= 0 {
		return false
	}
	for _, c := range b.OutputCells() {
		target := w.BuildingAt(c.X, c.Y)
		if target == nil || target.ID() == b.id {
			continue
		}
		if target.AddItem(kind, 1, b.facing) {
			b.inv.Remove(kind, 1)
			return true
		}
	}
	return false
}

// footprint lists every covered cell, x outer and y inner.
func footprint(anchor model.Point, width, height int) []model.Point {
	cells := make([]model.Point, 0, width*height)
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			cells = append(cells, model.Point{X: anchor.X + i, Y: anchor.Y + j})
		}
	}
	return cells
}
