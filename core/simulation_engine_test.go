package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/factory-simulator/model"
)

type tickCounter struct {
	ticks     int
	buildings int
	networks  int
}

func (c *tickCounter) ObserveTick(_ time.Duration, buildings, networks int) {
	c.ticks++
	c.buildings = buildings
	c.networks = networks
}

func TestSimulationEngineClampsStep(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	se := NewSimulationEngine(w)
	se.MaxStep = 0.1

	info := se.Step(5)
	if !approx(info.Dt, 0.1) || !approx(se.SimTime(), 0.1) {
		t.Fatalf("step not clamped: %+v", info)
	}
	if info := se.Step(-1); info.Dt != 0 {
		t.Fatalf("negative dt should clamp to zero, got %v", info.Dt)
	}
	if se.Ticks() != 2 {
		t.Fatalf("Ticks = %d, want 2", se.Ticks())
	}
}

func TestSimulationEngineNotifiesListeners(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	mustPlace(t, w, 0, 0, KindBattery, model.North)
	se := NewSimulationEngine(w)
	rec := &tickCounter{}
	se.SetRecorder(rec)

	var seen []uint64
	se.RegisterTickListener(func(info TickInfo) {
		seen = append(seen, info.Tick)
	})
	se.Run(3, 0.05)

	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("listener ticks = %v", seen)
	}
	if rec.ticks != 3 || rec.buildings != 1 || rec.networks != 1 {
		t.Fatalf("recorder saw %+v", rec)
	}
	if !approx(se.SimTime(), 0.15) {
		t.Fatalf("SimTime = %v, want 0.15", se.SimTime())
	}
}
