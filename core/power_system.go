package core

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/signalsfoundry/factory-simulator/model"
)

// SatisfactionThreshold is the satisfaction above which consumers run.
const SatisfactionThreshold = 0.10

// Network is one connected component of power-relevant buildings.
type Network struct {
	ID           NetworkID
	Members      []Building
	Production   float64 // watts, last settlement
	Consumption  float64 // watts, last settlement
	Satisfaction float64 // [0,1], last settlement
}

// Stored returns the energy held across members.
func (n *Network) Stored() float64 {
	var s float64
	for _, m := range n.Members {
		s += m.Power().Stored
	}
	return s
}

// Capacity returns the storage capacity across members.
func (n *Network) Capacity() float64 {
	var c float64
	for _, m := range n.Members {
		c += m.Power().Capacity
	}
	return c
}

// NetworkStats is a read-only summary of a network.
type NetworkStats struct {
	ID           NetworkID          `json:"id"`
	Members      []model.BuildingID `json:"members"`
	Production   float64            `json:"production"`
	Consumption  float64            `json:"consumption"`
	Stored       float64            `json:"stored"`
	Capacity     float64            `json:"capacity"`
	Satisfaction float64            `json:"satisfaction"`
}

// Stats summarises the network.
func (n *Network) Stats() NetworkStats {
	ids := make([]model.BuildingID, len(n.Members))
	for i, m := range n.Members {
		ids[i] = m.ID()
	}
	return NetworkStats{
		ID:           n.ID,
		Members:      ids,
		Production:   n.Production,
		Consumption:  n.Consumption,
		Stored:       n.Stored(),
		Capacity:     n.Capacity(),
		Satisfaction: n.Satisfaction,
	}
}

// PowerSystem partitions buildings into networks and settles energy flow.
type PowerSystem struct {
	networks []*Network
	nextID   NetworkID
}

// NewPowerSystem returns a power system with no networks.
func NewPowerSystem() *PowerSystem {
	return &PowerSystem{}
}

// Networks returns the current networks in formation order.
func (ps *PowerSystem) Networks() []*Network { return ps.networks }

// Rebuild discards every network and forms new ones from buildings. Each
// unvisited relevant building seeds a breadth-first search over pairs within
// range. A zero-duration settlement follows so the flags are valid at once.
func (ps *PowerSystem) Rebuild(buildings []Building) {
	ps.networks = nil
	ps.nextID = 0

	var nodes []Building
	for _, b := range buildings {
		p := b.Power()
		p.Network = 0
		p.Satisfied = true
		if p.Relevant() {
			nodes = append(nodes, b)
		}
	}

	visited := mapset.New[model.BuildingID]()
	for _, seed := range nodes {
		if visited.Has(seed.ID()) {
			continue
		}
		ps.nextID++
		net := &Network{ID: ps.nextID}
		visited.Put(seed.ID())
		queue := []Building{seed}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cur.Power().Network = net.ID
			net.Members = append(net.Members, cur)
			for _, other := range nodes {
				if visited.Has(other.ID()) || !inPowerRange(cur, other) {
					continue
				}
				visited.Put(other.ID())
				queue = append(queue, other)
			}
		}
		ps.networks = append(ps.networks, net)
	}
	ps.Settle(0)
}

// Settle balances production against consumption over dt seconds for every
// network and updates member flags.
func (ps *PowerSystem) Settle(dt float64) {
	for _, n := range ps.networks {
		settle(n, dt)
	}
}

func settle(n *Network, dt float64) {
	var production, consumption float64
	for _, m := range n.Members {
		p := m.Power()
		production += p.Production
		consumption += p.Consumption
	}
	n.Production = production
	n.Consumption = consumption

	switch {
	case dt <= 0:
		n.Satisfaction = instantSatisfaction(production, consumption, n.Stored())
	default:
		net := (production - consumption) * dt
		if net >= 0 {
			n.Satisfaction = 1
			charge(n.Members, net)
		} else {
			deficit := -net
			if n.Stored() >= deficit {
				discharge(n.Members, deficit)
				n.Satisfaction = 1
			} else {
				available := production*dt + n.Stored()
				n.Satisfaction = clamp01(available / (consumption * dt))
				for _, m := range n.Members {
					m.Power().Stored = 0
				}
			}
		}
	}

	for _, m := range n.Members {
		p := m.Power()
		p.Satisfied = p.producer || p.Consumption <= 0 || n.Satisfaction > SatisfactionThreshold
	}
}

func instantSatisfaction(production, consumption, stored float64) float64 {
	if production >= consumption || stored > 0 {
		return 1
	}
	return clamp01(production / consumption)
}

// charge stores energy first-fit in member order; overflow is lost.
func charge(members []Building, energy float64) {
	for _, m := range members {
		if energy <= 0 {
			return
		}
		p := m.Power()
		room := p.Capacity - p.Stored
		if room <= 0 {
			continue
		}
		take := min(room, energy)
		p.Stored += take
		energy -= take
	}
}

// discharge drains energy first-fit in member order.
func discharge(members []Building, energy float64) {
	for _, m := range members {
		if energy <= 0 {
			return
		}
		p := m.Power()
		if p.Stored <= 0 {
			continue
		}
		take := min(p.Stored, energy)
		p.Stored -= take
		energy -= take
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
