package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/model"
)

// Layout is a starter arrangement expressed relative to the core's centre
// cell: ore deposits to stamp onto the map and buildings to place.
type Layout struct {
	Deposits   []Deposit
	Placements []Placement
}

// Deposit seeds an ore on the cell at the given offset.
type Deposit struct {
	DX, DY int
	Ore    model.Ore
}

// Placement describes one building to place.
type Placement struct {
	Kind   string
	DX, DY int
	Facing model.Direction
}

// LayoutResult summarises an applied layout.
type LayoutResult struct {
	Placed   []BuildingView
	Failures []string
}

type layoutJSON struct {
	Deposits []struct {
		DX  int    `json:"dx"`
		DY  int    `json:"dy"`
		Ore string `json:"ore"`
	} `json:"deposits"`
	Placements []struct {
		Kind   string `json:"kind"`
		DX     int    `json:"dx"`
		DY     int    `json:"dy"`
		Facing string `json:"facing"`
	} `json:"placements"`
}

// LoadLayout decodes a JSON layout. It fails only on malformed input;
// placement problems surface when the layout is applied.
func LoadLayout(r io.Reader) (*Layout, error) {
	var payload layoutJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}

	l := &Layout{}
	for i, d := range payload.Deposits {
		ore, err := parseOre(d.Ore)
		if err != nil {
			return nil, fmt.Errorf("deposit %d: %w", i, err)
		}
		l.Deposits = append(l.Deposits, Deposit{DX: d.DX, DY: d.DY, Ore: ore})
	}
	for i, p := range payload.Placements {
		facing, err := model.ParseDirection(p.Facing)
		if err != nil {
			return nil, fmt.Errorf("placement %d: %w", i, err)
		}
		l.Placements = append(l.Placements, Placement{Kind: p.Kind, DX: p.DX, DY: p.DY, Facing: facing})
	}
	return l, nil
}

func parseOre(s string) (model.Ore, error) {
	for _, o := range model.AllOres {
		if o.String() == s {
			return o, nil
		}
	}
	return model.OreNone, fmt.Errorf("unknown ore %q", s)
}

// ApplyLayout stamps the deposits and places the buildings of l around the
// core. Failed placements are reported rather than aborting the layout.
func (s *Session) ApplyLayout(ctx context.Context, l *Layout) LayoutResult {
	var res LayoutResult
	if l == nil {
		return res
	}
	cx, cy := s.coreCentre()

	s.mu.Lock()
	for _, d := range l.Deposits {
		t := s.world.Tile(cx+d.DX, cy+d.DY)
		if t == nil || t.Occupied() {
			res.Failures = append(res.Failures, fmt.Sprintf("deposit %s at (%d,%d): cell unavailable", d.Ore, d.DX, d.DY))
			continue
		}
		t.Terrain = model.TerrainDirt
		t.Ore = d.Ore
	}
	s.mu.Unlock()

	for _, p := range l.Placements {
		view, err := s.Place(ctx, cx+p.DX, cy+p.DY, p.Kind, p.Facing)
		if err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("%s at (%d,%d): %v", p.Kind, p.DX, p.DY, err))
			continue
		}
		res.Placed = append(res.Placed, view)
	}
	if len(res.Failures) > 0 {
		s.log.Warn(ctx, "layout applied with failures",
			logging.Int("placed", len(res.Placed)),
			logging.Int("failed", len(res.Failures)),
		)
	}
	return res
}

// coreCentre returns the centre cell of the core's footprint.
func (s *Session) coreCentre() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.world.Building(s.coreID)
	if !ok {
		return s.world.Grid().Width() / 2, s.world.Grid().Height() / 2
	}
	w, h := b.Size()
	return b.Anchor().X + w/2, b.Anchor().Y + h/2
}
