package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/model"
)

var (
	ErrOutOfBounds     = errors.New("footprint out of bounds")
	ErrOccupied        = errors.New("cell occupied")
	ErrTerrain         = errors.New("terrain not buildable")
	ErrUnknownBuilding = errors.New("unknown building")
)

// PlacementError describes why a building could not be placed or rotated.
// It wraps one of ErrOutOfBounds, ErrOccupied, ErrTerrain or ErrUnknownKind.
type PlacementError struct {
	Kind string
	Cell model.Point
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s at (%d,%d): %v", e.Kind, e.Cell.X, e.Cell.Y, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// World owns the grid, the ordered building list and the power system. It is
// not safe for concurrent use.
type World struct {
	grid      *grid.Grid
	catalog   *Catalog
	buildings []Building
	byID      map[model.BuildingID]Building
	power     *PowerSystem
	sink      ResourceSink
	log       logging.Logger
	nextID    model.BuildingID
	crafts    map[string]int

	// StrictInvariants makes Step panic when an inventory fails Verify.
	StrictInvariants bool
}

// WorldOption customises World construction.
type WorldOption func(*World)

// WithCatalog replaces the default building catalog.
func WithCatalog(c *Catalog) WorldOption {
	return func(w *World) {
		if c != nil {
			w.catalog = c
		}
	}
}

// WithSink routes items delivered to the core into s.
func WithSink(s ResourceSink) WorldOption {
	return func(w *World) { w.sink = s }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) WorldOption {
	return func(w *World) { w.log = logging.OrNoop(l) }
}

// WithStrictInvariants enables inventory verification after every step.
func WithStrictInvariants() WorldOption {
	return func(w *World) { w.StrictInvariants = true }
}

// NewWorld wraps g. The default catalog is used unless WithCatalog is given.
func NewWorld(g *grid.Grid, opts ...WorldOption) *World {
	w := &World{
		grid:    g,
		catalog: DefaultCatalog(),
		byID:    make(map[model.BuildingID]Building),
		power:   NewPowerSystem(),
		log:     logging.Noop(),
		crafts:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Grid() *grid.Grid         { return w.grid }
func (w *World) Catalog() *Catalog        { return w.catalog }
func (w *World) Power() *PowerSystem      { return w.power }
func (w *World) Tile(x, y int) *grid.Tile { return w.grid.At(x, y) }

// Building looks up a placed building by handle.
func (w *World) Building(id model.BuildingID) (Building, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// Buildings returns the placed buildings in update order.
func (w *World) Buildings() []Building {
	out := make([]Building, len(w.buildings))
	copy(out, w.buildings)
	return out
}

// BuildingAt returns the building covering (x, y), or nil.
func (w *World) BuildingAt(x, y int) Building {
	t := w.grid.At(x, y)
	if t == nil || !t.Occupied() {
		return nil
	}
	return w.byID[t.Building]
}

// Networks summarises every power network.
func (w *World) Networks() []NetworkStats {
	nets := w.power.Networks()
	out := make([]NetworkStats, len(nets))
	for i, n := range nets {
		out[i] = n.Stats()
	}
	return out
}

// Crafts returns completed crafts per recipe name.
func (w *World) Crafts() map[string]int {
	out := make(map[string]int, len(w.crafts))
	for k, v := range w.crafts {
		out[k] = v
	}
	return out
}

// Place builds kind with its anchor at (x, y) turned towards facing. The
// whole footprint must be in bounds, unoccupied and on allowed terrain.
func (w *World) Place(x, y int, kind string, facing model.Direction) (Building, error) {
	anchor := model.Point{X: x, Y: y}
	def, err := w.catalog.Def(kind)
	if err != nil {
		return nil, &PlacementError{Kind: kind, Cell: anchor, Err: ErrUnknownKind}
	}

	b, err := newBuilding(w.nextID+1, def, anchor)
	if err != nil {
		return nil, err
	}
	b.SetFacing(facing)
	width, height := b.Size()
	if err := w.checkFootprint(b, anchor, width, height); err != nil {
		return nil, err
	}

	w.nextID++
	w.stamp(anchor, width, height, b.ID())
	w.buildings = append(w.buildings, b)
	w.byID[b.ID()] = b
	b.OnPlaced(w)
	w.power.Rebuild(w.buildings)

	w.log.Debug(context.Background(), "building placed",
		logging.String("kind", kind),
		logging.Int("x", x),
		logging.Int("y", y),
		logging.String("facing", facing.String()),
		logging.Any("id", uint64(b.ID())),
	)
	return b, nil
}

// Remove deletes a building, clears its footprint and rebuilds the power
// networks.
func (w *World) Remove(id model.BuildingID) error {
	b, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuilding, id)
	}
	width, height := b.Size()
	w.stamp(b.Anchor(), width, height, 0)
	delete(w.byID, id)
	for i, other := range w.buildings {
		if other.ID() == id {
			w.buildings = append(w.buildings[:i], w.buildings[i+1:]...)
			break
		}
	}
	w.power.Rebuild(w.buildings)

	w.log.Debug(context.Background(), "building removed",
		logging.String("kind", b.Def().Name),
		logging.Any("id", uint64(id)),
	)
	return nil
}

// Rotate turns a placed building in place around its anchor. A rotation that
// swaps the footprint must fit on the grid like a fresh placement.
func (w *World) Rotate(id model.BuildingID, facing model.Direction) error {
	b, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuilding, id)
	}
	width, height := b.Size()
	newW, newH := width, height
	if facing.Vertical() != b.Facing().Vertical() {
		newW, newH = height, width
	}
	if err := w.checkFootprint(b, b.Anchor(), newW, newH); err != nil {
		return err
	}

	w.stamp(b.Anchor(), width, height, 0)
	b.SetFacing(facing)
	w.stamp(b.Anchor(), newW, newH, id)
	if newW != width {
		b.OnPlaced(w)
	}
	w.power.Rebuild(w.buildings)
	return nil
}

// Step advances every building by dt in list order and then settles power
// once. Consumers therefore see the previous settlement's flags.
func (w *World) Step(dt float64) {
	for _, b := range w.buildings {
		b.Update(dt, w)
	}
	w.power.Settle(dt)

	if w.StrictInvariants {
		for _, b := range w.buildings {
			if err := b.Inventory().Verify(); err != nil {
				panic(fmt.Sprintf("building %d (%s): %v", b.ID(), b.Def().Name, err))
			}
		}
	}
}

// checkFootprint validates the cells b would cover. Cells already covered by
// b itself count as free.
func (w *World) checkFootprint(b Building, anchor model.Point, width, height int) error {
	kind := b.Def().Name
	for _, c := range footprint(anchor, width, height) {
		t := w.grid.At(c.X, c.Y)
		if t == nil {
			return &PlacementError{Kind: kind, Cell: c, Err: ErrOutOfBounds}
		}
		if t.Occupied() && t.Building != b.ID() {
			return &PlacementError{Kind: kind, Cell: c, Err: ErrOccupied}
		}
		if !b.CanBuildOn(t.Terrain) {
			return &PlacementError{Kind: kind, Cell: c, Err: ErrTerrain}
		}
	}
	return nil
}

func (w *World) stamp(anchor model.Point, width, height int, id model.BuildingID) {
	for _, c := range footprint(anchor, width, height) {
		if t := w.grid.At(c.X, c.Y); t != nil {
			t.Building = id
		}
	}
}

func (w *World) deliver(kind model.ItemKind, amount int) {
	if w.sink != nil {
		w.sink.AddResource(kind, amount)
	}
}

func (w *World) craftCompleted(r *model.Recipe) {
	w.crafts[r.Name]++
}
