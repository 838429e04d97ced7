package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/model"
)

type recordingSink struct {
	got map[model.ItemKind]int
}

func (s *recordingSink) AddResource(kind model.ItemKind, amount int) {
	if s.got == nil {
		s.got = make(map[model.ItemKind]int)
	}
	s.got[kind] += amount
}

func newTestWorld(t *testing.T, width, height int, opts ...WorldOption) *World {
	t.Helper()
	opts = append([]WorldOption{WithStrictInvariants()}, opts...)
	return NewWorld(grid.New(width, height), opts...)
}

func mustPlace(t *testing.T, w *World, x, y int, kind string, facing model.Direction) Building {
	t.Helper()
	b, err := w.Place(x, y, kind, facing)
	if err != nil {
		t.Fatalf("Place(%d,%d,%s) error: %v", x, y, kind, err)
	}
	return b
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
