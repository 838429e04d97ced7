package state

import (
	"context"
	"fmt"
	"os"

	"github.com/signalsfoundry/factory-simulator/internal/config"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/ledger"
	"github.com/signalsfoundry/factory-simulator/worldgen"
)

// Bootstrap generates the map described by cfg, loads its catalog and opens
// a session with the configured starting stock. Extra options are applied
// after the configured ones.
func Bootstrap(ctx context.Context, cfg config.Config, log logging.Logger, opts ...SessionOption) (*Session, error) {
	cfg = cfg.ApplyDefaults()
	log = logging.OrNoop(log)

	g, err := worldgen.New(cfg.Worldgen(), log).Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	base := []SessionOption{
		WithLedger(ledger.New(cfg.StartingStock...)),
		WithCatalog(cat),
		WithMaxStep(cfg.MaxStep),
	}
	return NewSession(ctx, g, log, append(base, opts...)...)
}

// LoadLayoutFile reads a layout from path.
func LoadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()
	return LoadLayout(f)
}
