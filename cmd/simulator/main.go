package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/signalsfoundry/factory-simulator/internal/config"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	sim "github.com/signalsfoundry/factory-simulator/internal/sim/state"
	"github.com/signalsfoundry/factory-simulator/timectrl"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	flag.IntVar(&cfg.Width, "width", cfg.Width, "map width in tiles")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "map height in tiles")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world generation seed")
	flag.DurationVar(&cfg.Tick, "tick", cfg.Tick, "simulated length of one tick")
	duration := flag.Duration("duration", 60*time.Second, "total simulated duration")
	accelerated := flag.Bool("accelerated", true, "run as fast as possible instead of in real time")
	flag.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "JSON building catalog (empty uses the built-in one)")
	layoutPath := flag.String("layout", "configs/layout.json", "starter layout placed around the core (empty skips it)")
	report := flag.Duration("report", 5*time.Second, "simulated interval between progress lines")
	flag.Parse()

	cfg.Duration = *duration
	cfg.Mode = "realtime"
	if *accelerated {
		cfg.Mode = "accelerated"
	}

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := run(ctx, cfg, *layoutPath, *report, os.Stdout, log); err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		os.Exit(1)
	}
}

// run generates a world, applies the layout and drives the session until the
// configured duration elapses or ctx is cancelled.
func run(ctx context.Context, cfg config.Config, layoutPath string, report time.Duration, out io.Writer, log logging.Logger) (*sim.Snapshot, error) {
	cfg = cfg.ApplyDefaults()
	sess, err := sim.Bootstrap(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if layoutPath != "" {
		layout, err := sim.LoadLayoutFile(layoutPath)
		if err != nil {
			return nil, err
		}
		res := sess.ApplyLayout(ctx, layout)
		fmt.Fprintf(out, "Applied layout %s: %d placed, %d failed\n", layoutPath, len(res.Placed), len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(out, "  ! %s\n", f)
		}
	}

	tc := timectrl.NewTimeController(time.Unix(0, 0).UTC(), cfg.Tick, timectrl.ParseMode(cfg.Mode))
	var sinceReport time.Duration
	tc.AddListener(func(_ time.Time, dt time.Duration) {
		sess.RunTick(dt.Seconds())
		sinceReport += dt
		if report > 0 && sinceReport >= report {
			sinceReport = 0
			printProgress(out, sess.Snapshot())
		}
	})

	fmt.Fprintf(out, "Starting simulation: %dx%d seed=%d duration=%s tick=%s mode=%s\n",
		cfg.Width, cfg.Height, cfg.Seed, cfg.Duration, cfg.Tick, cfg.Mode)
	<-tc.Start(ctx, cfg.Duration)

	snap := sess.Snapshot()
	printProgress(out, snap)
	fmt.Fprintln(out, "Simulation complete.")
	return snap, nil
}

func printProgress(out io.Writer, snap *sim.Snapshot) {
	var stock []string
	for _, s := range snap.Ledger {
		if s.Count > 0 {
			stock = append(stock, fmt.Sprintf("%s=%d", s.Item, s.Count))
		}
	}
	fmt.Fprintf(out, "[t=%7.1fs] buildings=%d networks=%d ledger{%s}\n",
		snap.SimTime, len(snap.Buildings), len(snap.Networks), strings.Join(stock, " "))
	for _, n := range snap.Networks {
		fmt.Fprintf(out, "  ↳ network %-3d members=%-3d prod=%6.1fW cons=%6.1fW stored=%8.1fJ satisfaction=%.2f\n",
			n.ID, len(n.Members), n.Production, n.Consumption, n.Stored, n.Satisfaction)
	}
}
