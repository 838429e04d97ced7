package state

import (
	"sync"

	"github.com/signalsfoundry/factory-simulator/model"
)

// DefaultThroughputWindow is the simulated span, in seconds, over which
// delivery rates are averaged.
const DefaultThroughputWindow = 60.0

// ItemThroughput summarises deliveries of one item kind.
type ItemThroughput struct {
	Item      string  `json:"item"`
	Total     int     `json:"total"`
	PerMinute float64 `json:"per_minute"`
}

type delivery struct {
	at     float64
	amount int
}

// Telemetry is a concurrency-safe record of items delivered to the core.
type Telemetry struct {
	mu     sync.RWMutex
	window float64
	recent map[model.ItemKind][]delivery
	totals map[model.ItemKind]int
}

// NewTelemetry returns a store averaging over window simulated seconds.
func NewTelemetry(window float64) *Telemetry {
	if window <= 0 {
		window = DefaultThroughputWindow
	}
	return &Telemetry{
		window: window,
		recent: make(map[model.ItemKind][]delivery),
		totals: make(map[model.ItemKind]int),
	}
}

// Record notes amount of kind delivered at simulated time at.
func (t *Telemetry) Record(kind model.ItemKind, amount int, at float64) {
	if amount <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals[kind] += amount
	t.recent[kind] = append(t.prune(t.recent[kind], at), delivery{at: at, amount: amount})
}

// Throughput reports totals and windowed rates at simulated time now, in
// item declaration order. Kinds never delivered are omitted.
func (t *Telemetry) Throughput(now float64) []ItemThroughput {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []ItemThroughput
	for _, kind := range model.AllItems {
		total, ok := t.totals[kind]
		if !ok {
			continue
		}
		t.recent[kind] = t.prune(t.recent[kind], now)
		sum := 0
		for _, d := range t.recent[kind] {
			sum += d.amount
		}
		span := min(t.window, max(now, 0))
		rate := 0.0
		if span > 0 {
			rate = float64(sum) / span * 60
		}
		out = append(out, ItemThroughput{Item: kind.String(), Total: total, PerMinute: rate})
	}
	return out
}

// prune drops deliveries older than the window; caller holds mu.
func (t *Telemetry) prune(ds []delivery, now float64) []delivery {
	cut := 0
	for cut < len(ds) && ds[cut].at <= now-t.window {
		cut++
	}
	return ds[cut:]
}
