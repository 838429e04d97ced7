// Package config holds the runtime settings shared by the binaries: world
// size and seed, the tick driver, listen addresses and the player's starting
// stock.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/model"
	"github.com/signalsfoundry/factory-simulator/worldgen"
)

// ErrInvalid reports a malformed setting.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings for one simulation process.
type Config struct {
	// Width and Height size the generated map.
	// Default: 64x64
	Width  int
	Height int
	// Seed drives world generation.
	Seed int64
	// ClearRadius keeps a square around the spawn free of obstacles and ore.
	// Default: 6
	ClearRadius int

	// Tick is the simulated length of one step.
	// Default: 100ms
	Tick time.Duration
	// Mode is "realtime" or "accelerated".
	Mode string
	// Duration bounds the run in simulated time; zero runs until stopped.
	Duration time.Duration
	// MaxStep clamps a single engine step, in seconds.
	// Default: 0.25
	MaxStep float64

	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	// CatalogPath points at a JSON catalog; empty uses the built-in one.
	CatalogPath string
	// StartingStock seeds the player's ledger.
	StartingStock []model.ItemStack
}

// Default returns the settings used when nothing is overridden.
func Default() Config {
	return Config{
		Width:       64,
		Height:      64,
		Seed:        1,
		ClearRadius: 6,
		Tick:        100 * time.Millisecond,
		Mode:        "realtime",
		MaxStep:     core.DefaultMaxStep,
		HTTPAddr:    ":8080",
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",
		StartingStock: []model.ItemStack{
			{Kind: model.ItemCopper, Count: 50},
			{Kind: model.ItemIron, Count: 20},
		},
	}
}

// ApplyDefaults fills zero or invalid fields from Default.
func (c Config) ApplyDefaults() Config {
	d := Default()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.ClearRadius < 0 {
		c.ClearRadius = 0
	}
	if c.Tick <= 0 {
		c.Tick = d.Tick
	}
	if c.Mode != "realtime" && c.Mode != "accelerated" {
		c.Mode = d.Mode
	}
	if c.Duration < 0 {
		c.Duration = 0
	}
	if c.MaxStep <= 0 {
		c.MaxStep = d.MaxStep
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = d.HTTPAddr
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = d.GRPCAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = d.MetricsAddr
	}
	if c.StartingStock == nil {
		c.StartingStock = d.StartingStock
	}
	return c
}

// FromEnv overlays FACTORY_* environment variables onto Default.
func FromEnv() (Config, error) {
	c := Default()
	var err error
	set := func(key string, apply func(string) error) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" || err != nil {
			return
		}
		if e := apply(v); e != nil {
			err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, e)
		}
	}

	set("FACTORY_WIDTH", intInto(&c.Width))
	set("FACTORY_HEIGHT", intInto(&c.Height))
	set("FACTORY_SEED", func(v string) (e error) {
		c.Seed, e = strconv.ParseInt(v, 10, 64)
		return e
	})
	set("FACTORY_CLEAR_RADIUS", intInto(&c.ClearRadius))
	set("FACTORY_TICK", durationInto(&c.Tick))
	set("FACTORY_DURATION", durationInto(&c.Duration))
	set("FACTORY_MODE", func(v string) error {
		v = strings.ToLower(v)
		if v != "realtime" && v != "accelerated" {
			return errors.New("want realtime or accelerated")
		}
		c.Mode = v
		return nil
	})
	set("FACTORY_MAX_STEP", func(v string) (e error) {
		c.MaxStep, e = strconv.ParseFloat(v, 64)
		return e
	})
	set("FACTORY_HTTP_ADDR", stringInto(&c.HTTPAddr))
	set("FACTORY_GRPC_ADDR", stringInto(&c.GRPCAddr))
	set("FACTORY_METRICS_ADDR", stringInto(&c.MetricsAddr))
	set("FACTORY_CATALOG", stringInto(&c.CatalogPath))
	set("FACTORY_STARTING_STOCK", func(v string) (e error) {
		c.StartingStock, e = ParseStock(v)
		return e
	})
	if err != nil {
		return Config{}, err
	}
	return c.ApplyDefaults(), nil
}

// ParseStock reads "item=count" pairs separated by commas, for example
// "copper=50,iron=20".
func ParseStock(s string) ([]model.ItemStack, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []model.ItemStack{}, nil
	}
	var out []model.ItemStack
	for _, part := range strings.Split(s, ",") {
		name, count, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("%w: stock entry %q lacks '='", ErrInvalid, part)
		}
		kind, err := model.ParseItemKind(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: stock count %q", ErrInvalid, count)
		}
		out = append(out, model.ItemStack{Kind: kind, Count: n})
	}
	return out, nil
}

// Catalog loads CatalogPath, or returns the built-in catalog when unset.
func (c Config) Catalog() (*core.Catalog, error) {
	if c.CatalogPath == "" {
		return core.DefaultCatalog(), nil
	}
	f, err := os.Open(c.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	cat, err := core.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", c.CatalogPath, err)
	}
	return cat, nil
}

// Worldgen returns the generator settings for this map.
func (c Config) Worldgen() worldgen.Config {
	wc := worldgen.DefaultConfig(c.Width, c.Height, c.Seed)
	wc.ClearRadius = c.ClearRadius
	return wc
}

func intInto(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func durationInto(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func stringInto(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}
