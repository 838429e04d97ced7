package core

import (
	"math"

	"github.com/signalsfoundry/factory-simulator/model"
)

// AnchorDistance returns the Euclidean distance between two anchor cells.
func AnchorDistance(a, b model.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// inPowerRange reports whether two buildings are linked: their anchors must
// lie within the larger of the two connection radii.
func inPowerRange(a, b Building) bool {
	r := math.Max(a.ConnectionRadius(), b.ConnectionRadius())
	return AnchorDistance(a.Anchor(), b.Anchor()) <= r
}

