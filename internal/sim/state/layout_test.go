package state

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/ledger"
	"github.com/signalsfoundry/factory-simulator/model"
)

func TestLoadLayoutRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"syntax":        `{"placements": [`,
		"unknown field": `{"buildings": []}`,
		"bad ore":       `{"deposits": [{"dx": 0, "dy": 0, "ore": "gold"}]}`,
		"bad facing":    `{"placements": [{"kind": "core", "dx": 0, "dy": 0, "facing": "up"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadLayout(strings.NewReader(body)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestShippedLayoutFeedsTheCore(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "..", "configs", "layout.json"))
	if err != nil {
		t.Fatalf("open layout: %v", err)
	}
	defer f.Close()
	layout, err := LoadLayout(f)
	if err != nil {
		t.Fatalf("LoadLayout error: %v", err)
	}

	l := ledger.New(model.ItemStack{Kind: model.ItemCopper, Count: 50})
	s := newTestSession(t, grid.New(21, 21), WithLedger(l))
	res := s.ApplyLayout(context.Background(), layout)
	if len(res.Failures) != 0 {
		t.Fatalf("layout failures: %v", res.Failures)
	}
	if len(res.Placed) != len(layout.Placements) {
		t.Fatalf("placed %d of %d", len(res.Placed), len(layout.Placements))
	}

	// Drill, two belts and the core each take a full cycle.
	for i := 0; i < 40; i++ {
		s.RunTick(0.25)
	}
	for _, kind := range []model.ItemKind{model.ItemCoal, model.ItemCopperOre, model.ItemIronOre} {
		if l.Count(kind) == 0 {
			t.Fatalf("no %s delivered; ledger=%v", kind, l.Snapshot())
		}
	}
}

func TestApplyLayoutReportsFailures(t *testing.T) {
	s := newTestSession(t, nil)
	layout := &Layout{
		Deposits:   []Deposit{{DX: 0, DY: 0, Ore: model.OreCoal}},
		Placements: []Placement{{Kind: core.KindBasicConveyor, DX: 3, DY: 3}},
	}
	res := s.ApplyLayout(context.Background(), layout)
	if len(res.Failures) != 2 {
		t.Fatalf("failures = %v, want deposit on core and unaffordable belt", res.Failures)
	}
	if len(s.ApplyLayout(context.Background(), nil).Failures) != 0 {
		t.Fatalf("nil layout should be a no-op")
	}
}
