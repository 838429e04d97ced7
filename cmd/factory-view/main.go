package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/internal/config"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	sim "github.com/signalsfoundry/factory-simulator/internal/sim/state"
	"github.com/signalsfoundry/factory-simulator/internal/view"
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
	layoutPath := flag.String("layout", "configs/layout.json", "starter layout placed around the core (empty skips it)")
	flag.Parse()
	cfg.Mode = "realtime"

	// Log lines would corrupt the terminal screen.
	log := logging.Noop()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := sim.Bootstrap(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()
	if *layoutPath != "" {
		layout, err := sim.LoadLayoutFile(*layoutPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "layout: %v\n", err)
			os.Exit(1)
		}
		sess.ApplyLayout(ctx, layout)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen init: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := newViewer(screen, sess)
	v.run(ctx, timectrl.NewTimeController(time.Now(), cfg.Tick, timectrl.RealTime))
}

// viewer couples a session with a terminal renderer.
type viewer struct {
	screen   tcell.Screen
	sess     *sim.Session
	renderer *view.Renderer
	paused   atomic.Bool
}

func newViewer(screen tcell.Screen, sess *sim.Session) *viewer {
	v := &viewer{screen: screen, sess: sess, renderer: view.NewRenderer(screen)}
	if c, err := sess.Building(sess.CoreID()); err == nil {
		v.renderer.Center(c.X+c.Width/2, c.Y+c.Height/2)
	}
	return v
}

// run steps the session on every tick and redraws until the user quits or
// ctx is cancelled.
func (v *viewer) run(ctx context.Context, tc *timectrl.TimeController) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	redraw := make(chan struct{}, 1)
	tc.AddListener(func(_ time.Time, dt time.Duration) {
		if !v.paused.Load() {
			v.sess.RunTick(dt.Seconds())
		}
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	done := tc.Start(ctx, 0)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.render()
	for {
		select {
		case <-ctx.Done():
			<-done
			return
		case <-redraw:
			v.render()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.handleKey(ev) {
					cancel()
					continue
				}
				v.render()
			case *tcell.EventResize:
				v.screen.Sync()
				v.render()
			}
		}
	}
}

// handleKey applies a key press and reports whether the viewer keeps running.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.renderer.Pan(-1, 0)
	case tcell.KeyRight:
		v.renderer.Pan(1, 0)
	case tcell.KeyUp:
		v.renderer.Pan(0, 1)
	case tcell.KeyDown:
		v.renderer.Pan(0, -1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.paused.Store(!v.paused.Load())
		case 'h':
			v.renderer.Pan(-8, 0)
		case 'l':
			v.renderer.Pan(8, 0)
		case 'k':
			v.renderer.Pan(0, 8)
		case 'j':
			v.renderer.Pan(0, -8)
		}
	}
	return true
}

func (v *viewer) render() {
	snap := v.sess.Snapshot()
	status := statusLine(snap, v.paused.Load())
	_ = v.sess.WithReadLock(func(w *core.World) error {
		v.renderer.Draw(w, status)
		return nil
	})
}

func statusLine(snap *sim.Snapshot, paused bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, " t=%.1fs buildings=%d", snap.SimTime, len(snap.Buildings))
	for _, s := range snap.Ledger {
		if s.Count > 0 {
			fmt.Fprintf(&b, " %s=%d", s.Item, s.Count)
		}
	}
	if paused {
		b.WriteString(" [paused]")
	}
	b.WriteString("  q:quit space:pause arrows/hjkl:pan")
	return b.String()
}
