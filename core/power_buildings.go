package core

import "github.com/signalsfoundry/factory-simulator/model"

// Battery stores surplus energy for its network. Charging and draining are
// handled by the PowerSystem.
type Battery struct {
	base
}

func newBattery(id model.BuildingID, def *Def, anchor model.Point) *Battery {
	return &Battery{base: newBase(id, def, anchor)}
}

func (b *Battery) Update(float64, *World) {}

// Charge returns stored energy as a fraction of capacity.
func (b *Battery) Charge() float64 {
	if b.power.Capacity <= 0 {
		return 0
	}
	return b.power.Stored / b.power.Capacity
}

// PowerPole relays power over a long radius.
type PowerPole struct {
	base
}

func newPowerPole(id model.BuildingID, def *Def, anchor model.Point) *PowerPole {
	return &PowerPole{base: newBase(id, def, anchor)}
}

func (p *PowerPole) Update(float64, *World) {}
