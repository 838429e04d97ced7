// Package state wraps a simulation World in a session that is safe to share
// between the tick driver and inspection surfaces, and that charges building
// costs against the player's ledger.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/internal/observability"
	"github.com/signalsfoundry/factory-simulator/ledger"
	"github.com/signalsfoundry/factory-simulator/model"
)

// Re-export sentinel errors so callers can depend on state.* alone.
var (
	// ErrInsufficient indicates the ledger cannot cover a building's cost.
	ErrInsufficient = ledger.ErrInsufficient
	// ErrUnknownBuilding indicates a handle that names no placed building.
	ErrUnknownBuilding = core.ErrUnknownBuilding
	// ErrUnknownKind indicates a building kind missing from the catalog.
	ErrUnknownKind = core.ErrUnknownKind
	// ErrOutOfBounds indicates a cell outside the grid.
	ErrOutOfBounds = core.ErrOutOfBounds
	// ErrCoreProtected indicates an attempt to remove the core or to build
	// a second one.
	ErrCoreProtected = errors.New("the core is placed once and never removed")
)

// Placement outcomes reported to the metrics recorder.
const (
	ResultPlaced       = "placed"
	ResultRejected     = "rejected"
	ResultUnaffordable = "unaffordable"
)

// MetricsRecorder receives session measurements. observability.SimCollector
// implements it.
type MetricsRecorder interface {
	core.TickRecorder
	ObserveNetworks(stats []core.NetworkStats)
	SetBuildingCount(n int)
	RecordPlacement(result string)
	RecordDelivery(item string, amount int)
}

// Session coordinates one running world, its ledger and its clock.
type Session struct {
	// mu guards the world and engine. Ledger and telemetry carry their own locks.
	mu sync.RWMutex

	id        string
	world     *core.World
	engine    *core.SimulationEngine
	ledger    *ledger.Ledger
	telemetry *Telemetry
	coreID    model.BuildingID

	log     logging.Logger
	metrics MetricsRecorder

	catalog *core.Catalog
	strict  bool
	unsub   func()
}

// SessionOption customises Session construction.
type SessionOption func(*Session)

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithLedger replaces the default empty ledger.
func WithLedger(l *ledger.Ledger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithCatalog replaces the default building catalog.
func WithCatalog(c *core.Catalog) SessionOption {
	return func(s *Session) { s.catalog = c }
}

// WithStrictInvariants enables inventory verification after every tick.
func WithStrictInvariants() SessionOption {
	return func(s *Session) { s.strict = true }
}

// WithMaxStep overrides the per-tick clamp of the simulation engine.
func WithMaxStep(seconds float64) SessionOption {
	return func(s *Session) {
		if seconds > 0 {
			s.engine.MaxStep = seconds
		}
	}
}

// NewSession builds a world over g and places the core at the map centre,
// clearing the terrain beneath it.
func NewSession(ctx context.Context, g *grid.Grid, log logging.Logger, opts ...SessionOption) (*Session, error) {
	ctx, log = logging.WithSessionLogger(ctx, log)
	s := &Session{
		id:        logging.SessionIDFromContext(ctx),
		ledger:    ledger.New(),
		telemetry: NewTelemetry(DefaultThroughputWindow),
		log:       log,
	}
	// Engine-level options need an engine, so apply options against a
	// placeholder and rebuild once the world exists.
	s.engine = core.NewSimulationEngine(nil)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	maxStep := s.engine.MaxStep

	worldOpts := []core.WorldOption{
		core.WithSink(s.ledger),
		core.WithLogger(log),
		core.WithCatalog(s.catalog),
	}
	if s.strict {
		worldOpts = append(worldOpts, core.WithStrictInvariants())
	}
	s.world = core.NewWorld(g, worldOpts...)
	s.engine = core.NewSimulationEngine(s.world)
	s.engine.MaxStep = maxStep
	if s.metrics != nil {
		s.engine.SetRecorder(s.metrics)
	}

	s.unsub = s.ledger.Subscribe(s.onLedgerEvent)

	if err := s.bootstrapCore(); err != nil {
		s.unsub()
		return nil, err
	}
	s.updateMetricsLocked()
	log.Info(ctx, "session started",
		logging.Int("width", g.Width()),
		logging.Int("height", g.Height()),
		logging.Any("core_id", uint64(s.coreID)),
	)
	return s, nil
}

// bootstrapCore clears the centre and places the core there.
func (s *Session) bootstrapCore() error {
	def, err := s.world.Catalog().Def(core.KindCore)
	if err != nil {
		return err
	}
	g := s.world.Grid()
	x := g.Width()/2 - def.Width/2
	y := g.Height()/2 - def.Height/2
	for dx := 0; dx < def.Width; dx++ {
		for dy := 0; dy < def.Height; dy++ {
			if t := g.At(x+dx, y+dy); t != nil {
				t.Terrain = model.TerrainDirt
				t.Ore = model.OreNone
			}
		}
	}
	b, err := s.world.Place(x, y, core.KindCore, model.North)
	if err != nil {
		return fmt.Errorf("place core: %w", err)
	}
	s.coreID = b.ID()
	return nil
}

func (s *Session) onLedgerEvent(e ledger.Event) {
	if e.Type != ledger.EventCredited {
		return
	}
	s.telemetry.Record(e.Kind, e.Amount, s.engine.SimTime())
	if s.metrics != nil {
		s.metrics.RecordDelivery(e.Kind.String(), e.Amount)
	}
}

// ID returns the session identifier attached to its logs.
func (s *Session) ID() string { return s.id }

// Ledger returns the player's resource ledger.
func (s *Session) Ledger() *ledger.Ledger { return s.ledger }

// CoreID returns the handle of the core building.
func (s *Session) CoreID() model.BuildingID { return s.coreID }

// Close releases the ledger subscription.
func (s *Session) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// WithReadLock runs fn while holding the session read lock. fn must not
// retain w or mutate it.
func (s *Session) WithReadLock(fn func(w *core.World) error) error {
	if fn == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.world)
}

// Place builds kind at (x, y) after checking the ledger can pay for it. The
// cost is only deducted when placement succeeds. The core is only placed by
// NewSession.
func (s *Session) Place(ctx context.Context, x, y int, kind string, facing model.Direction) (BuildingView, error) {
	ctx, span := observability.StartSpan(ctx, "session.Place",
		attribute.String("kind", kind),
		attribute.Int("x", x),
		attribute.Int("y", y),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.world.Catalog().Def(kind)
	if err != nil {
		s.recordPlacement(ResultRejected)
		span.SetStatus(codes.Error, err.Error())
		return BuildingView{}, err
	}
	if def.Variant == core.VariantCore {
		s.recordPlacement(ResultRejected)
		span.SetStatus(codes.Error, ErrCoreProtected.Error())
		return BuildingView{}, ErrCoreProtected
	}
	if !s.ledger.CanAfford(def.Cost) {
		s.recordPlacement(ResultUnaffordable)
		err := fmt.Errorf("%w: %s costs %v", ErrInsufficient, kind, def.Cost)
		span.SetStatus(codes.Error, err.Error())
		return BuildingView{}, err
	}
	b, err := s.world.Place(x, y, kind, facing)
	if err != nil {
		s.recordPlacement(ResultRejected)
		span.SetStatus(codes.Error, err.Error())
		s.log.Debug(ctx, "placement rejected", logging.String("kind", kind), logging.Err(err))
		return BuildingView{}, err
	}
	if err := s.ledger.Pay(def.Cost); err != nil {
		// The write lock serialises spenders, so this only fires if the ledger
		// is shared with another writer.
		_ = s.world.Remove(b.ID())
		s.recordPlacement(ResultUnaffordable)
		return BuildingView{}, err
	}
	s.recordPlacement(ResultPlaced)
	s.updateMetricsLocked()
	s.log.Info(ctx, "building placed",
		logging.String("kind", kind),
		logging.Int("x", x),
		logging.Int("y", y),
		logging.Any("id", uint64(b.ID())),
	)
	return viewOf(b), nil
}

// Remove deletes a building. The core is permanent.
func (s *Session) Remove(ctx context.Context, id model.BuildingID) error {
	ctx, span := observability.StartSpan(ctx, "session.Remove", attribute.Int64("id", int64(id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.coreID {
		return ErrCoreProtected
	}
	if err := s.world.Remove(id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.updateMetricsLocked()
	s.log.Info(ctx, "building removed", logging.Any("id", uint64(id)))
	return nil
}

// Rotate turns a building to face facing.
func (s *Session) Rotate(ctx context.Context, id model.BuildingID, facing model.Direction) (BuildingView, error) {
	_, span := observability.StartSpan(ctx, "session.Rotate",
		attribute.Int64("id", int64(id)),
		attribute.String("facing", facing.String()),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.world.Rotate(id, facing); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return BuildingView{}, err
	}
	b, _ := s.world.Building(id)
	s.updateMetricsLocked()
	return viewOf(b), nil
}

// RunTick advances the simulation by dt seconds, clamped by the engine.
func (s *Session) RunTick(dt float64) core.TickInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := s.engine.Step(dt)
	if s.metrics != nil {
		s.metrics.ObserveNetworks(s.world.Networks())
	}
	return info
}

// Snapshot captures a consistent view of the session.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buildings := s.world.Buildings()
	views := make([]BuildingView, len(buildings))
	for i, b := range buildings {
		views[i] = viewOf(b)
	}
	g := s.world.Grid()
	return &Snapshot{
		SessionID:  s.id,
		Tick:       s.engine.Ticks(),
		SimTime:    s.engine.SimTime(),
		Width:      g.Width(),
		Height:     g.Height(),
		Buildings:  views,
		Networks:   s.world.Networks(),
		Ledger:     stackViews(s.ledger.Snapshot()),
		Crafts:     s.world.Crafts(),
		Throughput: s.telemetry.Throughput(s.engine.SimTime()),
	}
}

// Building returns a view of one building.
func (s *Session) Building(id model.BuildingID) (BuildingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.world.Building(id)
	if !ok {
		return BuildingView{}, fmt.Errorf("%w: %d", ErrUnknownBuilding, id)
	}
	return viewOf(b), nil
}

// Tile returns a view of the cell at (x, y).
func (s *Session) Tile(x, y int) (TileView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.world.Tile(x, y)
	if t == nil {
		return TileView{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return TileView{
		X:        t.X,
		Y:        t.Y,
		Terrain:  t.Terrain.String(),
		Ore:      t.Ore.String(),
		Building: uint64(t.Building),
	}, nil
}

// Networks summarises the power networks.
func (s *Session) Networks() []core.NetworkStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Networks()
}

// Catalog lists the placeable building kinds with their costs.
func (s *Session) Catalog() []KindView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cat := s.world.Catalog()
	var out []KindView
	for _, name := range cat.Names() {
		def, _ := cat.Def(name)
		out = append(out, KindView{
			Name:    def.Name,
			Variant: def.Variant.String(),
			Width:   def.Width,
			Height:  def.Height,
			Cost:    stackViews(def.Cost),
		})
	}
	return out
}

func (s *Session) recordPlacement(result string) {
	if s.metrics != nil {
		s.metrics.RecordPlacement(result)
	}
}

func (s *Session) updateMetricsLocked() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetBuildingCount(len(s.world.Buildings()))
	s.metrics.ObserveNetworks(s.world.Networks())
}
