package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/factory-simulator/model"
)

func TestAnchorDistance(t *testing.T) {
	d := AnchorDistance(model.Point{X: 0, Y: 0}, model.Point{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Fatalf("expected distance 5, got %v", d)
	}
	if AnchorDistance(model.Point{X: 2, Y: 2}, model.Point{X: 2, Y: 2}) != 0 {
		t.Fatalf("expected zero distance for identical anchors")
	}
}

func TestInPowerRangeUsesLargerRadius(t *testing.T) {
	cat := DefaultCatalog()
	poleDef, _ := cat.Def(KindPowerPole)
	batteryDef, _ := cat.Def(KindBattery)

	pole := newPowerPole(1, poleDef, model.Point{X: 0, Y: 0})
	far := newBattery(2, batteryDef, model.Point{X: 5, Y: 0})
	tooFar := newBattery(3, batteryDef, model.Point{X: 6, Y: 0})

	if !inPowerRange(pole, far) || !inPowerRange(far, pole) {
		t.Fatalf("expected battery at distance 5 to be within pole radius")
	}
	if inPowerRange(pole, tooFar) {
		t.Fatalf("expected battery at distance 6 to be out of range")
	}
	if inPowerRange(far, newBattery(4, batteryDef, model.Point{X: 7, Y: 0})) {
		t.Fatalf("expected batteries two cells apart to be out of near-contact range")
	}
	if !inPowerRange(far, tooFar) {
		t.Fatalf("expected adjacent batteries to connect")
	}
}
