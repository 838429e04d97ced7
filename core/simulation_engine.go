package core

import "time"

// DefaultMaxStep bounds a single step so a stalled driver cannot make
// buildings skip whole cycles.
const DefaultMaxStep = 0.25

// TickInfo describes a completed engine step.
type TickInfo struct {
	Tick    uint64
	Dt      float64
	SimTime float64
}

// TickRecorder receives per-step measurements.
type TickRecorder interface {
	ObserveTick(elapsed time.Duration, buildings, networks int)
}

// SimulationEngine drives a World with clamped steps and notifies tick
// listeners after each one.
type SimulationEngine struct {
	World   *World
	MaxStep float64

	simTime       float64
	ticks         uint64
	tickListeners []func(TickInfo)
	recorder      TickRecorder
}

func NewSimulationEngine(w *World) *SimulationEngine {
	return &SimulationEngine{
		World:   w,
		MaxStep: DefaultMaxStep,
	}
}

// SetRecorder attaches an optional metrics recorder.
func (se *SimulationEngine) SetRecorder(r TickRecorder) {
	se.recorder = r
}

func (se *SimulationEngine) RegisterTickListener(fn func(TickInfo)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// SimTime returns the simulated seconds elapsed.
func (se *SimulationEngine) SimTime() float64 { return se.simTime }

// Ticks returns the number of completed steps.
func (se *SimulationEngine) Ticks() uint64 { return se.ticks }

// Step advances the world by dt, clamped to [0, MaxStep].
func (se *SimulationEngine) Step(dt float64) TickInfo {
	if dt < 0 {
		dt = 0
	}
	if se.MaxStep > 0 && dt > se.MaxStep {
		dt = se.MaxStep
	}

	start := time.Now()
	se.World.Step(dt)
	se.simTime += dt
	se.ticks++

	if se.recorder != nil {
		se.recorder.ObserveTick(time.Since(start), len(se.World.buildings), len(se.World.power.Networks()))
	}

	info := TickInfo{Tick: se.ticks, Dt: dt, SimTime: se.simTime}
	for _, fn := range se.tickListeners {
		fn(info)
	}
	return info
}

// Run performs ticks fixed steps of dt.
func (se *SimulationEngine) Run(ticks int, dt float64) {
	for i := 0; i < ticks; i++ {
		se.Step(dt)
	}
}
