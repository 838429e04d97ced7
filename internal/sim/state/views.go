package state

import (
	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/model"
)

// StackView is the JSON form of an item stack.
type StackView struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// PowerView is the JSON form of a building's electrical state.
type PowerView struct {
	Network     int     `json:"network,omitempty"`
	Production  float64 `json:"production"`
	Consumption float64 `json:"consumption"`
	Stored      float64 `json:"stored"`
	Capacity    float64 `json:"capacity"`
	Satisfied   bool    `json:"satisfied"`
}

// BuildingView is a detached copy of one building's observable state.
type BuildingView struct {
	ID        uint64      `json:"id"`
	Kind      string      `json:"kind"`
	Variant   string      `json:"variant"`
	X         int         `json:"x"`
	Y         int         `json:"y"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Facing    string      `json:"facing"`
	Inventory []StackView `json:"inventory"`
	Power     PowerView   `json:"power"`

	Recipe   string  `json:"recipe,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	Ore      string  `json:"ore,omitempty"`
	Burning  bool    `json:"burning,omitempty"`
}

// TileView is the JSON form of one grid cell.
type TileView struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Terrain  string `json:"terrain"`
	Ore      string `json:"ore"`
	Building uint64 `json:"building,omitempty"`
}

// KindView describes a placeable building kind.
type KindView struct {
	Name    string      `json:"name"`
	Variant string      `json:"variant"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Cost    []StackView `json:"cost"`
}

// Snapshot is a consistent copy of a session taken under one read lock.
type Snapshot struct {
	SessionID  string              `json:"session_id"`
	Tick       uint64              `json:"tick"`
	SimTime    float64             `json:"sim_time"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Buildings  []BuildingView      `json:"buildings"`
	Networks   []core.NetworkStats `json:"networks"`
	Ledger     []StackView         `json:"ledger"`
	Crafts     map[string]int      `json:"crafts"`
	Throughput []ItemThroughput    `json:"throughput"`
}

func stackViews(stacks []model.ItemStack) []StackView {
	out := make([]StackView, len(stacks))
	for i, s := range stacks {
		out[i] = StackView{Item: s.Kind.String(), Count: s.Count}
	}
	return out
}

func viewOf(b core.Building) BuildingView {
	w, h := b.Size()
	p := b.Power()
	v := BuildingView{
		ID:        uint64(b.ID()),
		Kind:      b.Def().Name,
		Variant:   b.Def().Variant.String(),
		X:         b.Anchor().X,
		Y:         b.Anchor().Y,
		Width:     w,
		Height:    h,
		Facing:    b.Facing().String(),
		Inventory: stackViews(b.Inventory().Stacks()),
		Power: PowerView{
			Network:     int(p.Network),
			Production:  p.Production,
			Consumption: p.Consumption,
			Stored:      p.Stored,
			Capacity:    p.Capacity,
			Satisfied:   p.Satisfied,
		},
	}
	switch bb := b.(type) {
	case *core.Factory:
		if r := bb.ActiveRecipe(); r != nil {
			v.Recipe = r.Name
			v.Progress = bb.Progress()
		}
	case *core.Drill:
		if ore, ok := bb.Ore(); ok {
			v.Ore = ore.String()
		}
	case *core.Generator:
		v.Burning = bb.Burning()
	}
	return v
}
