package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/model"
)

func TestApplyDefaultsZeroValue(t *testing.T) {
	got := Config{}.ApplyDefaults()
	want := Default()
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("size = %dx%d, want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	if got.Tick != 100*time.Millisecond || got.Mode != "realtime" || got.MaxStep != core.DefaultMaxStep {
		t.Fatalf("unexpected timing defaults: %+v", got)
	}
	if len(got.StartingStock) != 2 {
		t.Fatalf("expected default starting stock, got %+v", got.StartingStock)
	}
}

func TestApplyDefaultsKeepsOverrides(t *testing.T) {
	cfg := Config{Width: 10, Height: 12, Mode: "accelerated", StartingStock: []model.ItemStack{}}
	got := cfg.ApplyDefaults()
	if got.Width != 10 || got.Height != 12 || got.Mode != "accelerated" {
		t.Fatalf("overrides lost: %+v", got)
	}
	if len(got.StartingStock) != 0 {
		t.Fatalf("explicit empty stock replaced: %+v", got.StartingStock)
	}
}

func TestApplyDefaultsRejectsUnknownMode(t *testing.T) {
	if got := (Config{Mode: "warp"}).ApplyDefaults().Mode; got != "realtime" {
		t.Fatalf("mode = %q, want realtime", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("FACTORY_WIDTH", "32")
	t.Setenv("FACTORY_HEIGHT", "24")
	t.Setenv("FACTORY_SEED", "-7")
	t.Setenv("FACTORY_TICK", "50ms")
	t.Setenv("FACTORY_MODE", "Accelerated")
	t.Setenv("FACTORY_HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("FACTORY_STARTING_STOCK", "copper=5, coal=2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Width != 32 || cfg.Height != 24 || cfg.Seed != -7 {
		t.Fatalf("unexpected world settings: %+v", cfg)
	}
	if cfg.Tick != 50*time.Millisecond || cfg.Mode != "accelerated" {
		t.Fatalf("unexpected timing: tick=%v mode=%q", cfg.Tick, cfg.Mode)
	}
	if cfg.HTTPAddr != "127.0.0.1:0" || cfg.GRPCAddr != ":50051" {
		t.Fatalf("unexpected addrs: %+v", cfg)
	}
	want := []model.ItemStack{{Kind: model.ItemCopper, Count: 5}, {Kind: model.ItemCoal, Count: 2}}
	if len(cfg.StartingStock) != len(want) {
		t.Fatalf("stock = %+v, want %+v", cfg.StartingStock, want)
	}
	for i := range want {
		if cfg.StartingStock[i] != want[i] {
			t.Fatalf("stock[%d] = %+v, want %+v", i, cfg.StartingStock[i], want[i])
		}
	}
}

func TestFromEnvInvalid(t *testing.T) {
	cases := map[string]string{
		"FACTORY_WIDTH":          "wide",
		"FACTORY_TICK":           "soon",
		"FACTORY_MODE":           "paused",
		"FACTORY_STARTING_STOCK": "gold=1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := FromEnv(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid for %s=%s, got %v", key, val, err)
			}
		})
	}
}

func TestParseStock(t *testing.T) {
	stock, err := ParseStock("")
	if err != nil || len(stock) != 0 {
		t.Fatalf("empty stock = %+v, %v", stock, err)
	}
	for _, bad := range []string{"copper", "copper=-1", "copper=x"} {
		if _, err := ParseStock(bad); !errors.Is(err, ErrInvalid) {
			t.Fatalf("ParseStock(%q) error = %v, want ErrInvalid", bad, err)
		}
	}
}

func TestCatalog(t *testing.T) {
	cat, err := Config{}.Catalog()
	if err != nil {
		t.Fatalf("default catalog error: %v", err)
	}
	if _, err := cat.Def(core.KindCore); err != nil {
		t.Fatalf("default catalog lacks the core: %v", err)
	}

	cat, err = Config{CatalogPath: filepath.Join("..", "..", "configs", "catalog.json")}.Catalog()
	if err != nil {
		t.Fatalf("file catalog error: %v", err)
	}
	if len(cat.Names()) != len(core.DefaultCatalog().Names()) {
		t.Fatalf("file catalog has %d kinds", len(cat.Names()))
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"buildings": 3}`), 0o600); err != nil {
		t.Fatalf("write temp catalog: %v", err)
	}
	if _, err := (Config{CatalogPath: bad}).Catalog(); err == nil {
		t.Fatalf("expected error for malformed catalog")
	}
	if _, err := (Config{CatalogPath: filepath.Join(t.TempDir(), "missing.json")}).Catalog(); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}

func TestWorldgenSettings(t *testing.T) {
	cfg := Default()
	cfg.Width, cfg.Height, cfg.Seed = 40, 30, 9
	wc := cfg.Worldgen()
	if wc.Width != 40 || wc.Height != 30 || wc.Seed != 9 {
		t.Fatalf("unexpected worldgen size/seed: %+v", wc)
	}
	if wc.ClearRadius != 6 {
		t.Fatalf("clear radius = %d, want 6", wc.ClearRadius)
	}
	if err := wc.Validate(); err != nil {
		t.Fatalf("worldgen config invalid: %v", err)
	}
}
