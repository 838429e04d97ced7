package view

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/model"
)

func TestCellTerrainAndOre(t *testing.T) {
	cases := []struct {
		tile grid.Tile
		want rune
	}{
		{grid.Tile{Terrain: model.TerrainDirt}, '.'},
		{grid.Tile{Terrain: model.TerrainWater}, '~'},
		{grid.Tile{Terrain: model.TerrainLava}, '%'},
		{grid.Tile{Terrain: model.TerrainWall}, '#'},
		{grid.Tile{Terrain: model.TerrainDirt, Ore: model.OreIron}, 'i'},
		{grid.Tile{Terrain: model.TerrainDirt, Ore: model.OreCoal}, 'k'},
	}
	for _, tc := range cases {
		tile := tc.tile
		if got, _ := Cell(&tile, nil); got != tc.want {
			t.Fatalf("Cell(%+v) = %q, want %q", tc.tile, got, tc.want)
		}
	}
	if got, _ := Cell(nil, nil); got != ' ' {
		t.Fatalf("Cell(nil) = %q, want blank", got)
	}
}

func TestCellBuildings(t *testing.T) {
	w := core.NewWorld(grid.New(10, 10))
	belt, err := w.Place(0, 0, core.KindBasicConveyor, model.West)
	if err != nil {
		t.Fatalf("Place conveyor: %v", err)
	}
	if got, _ := Cell(w.Tile(0, 0), belt); got != '◀' {
		t.Fatalf("west conveyor glyph = %q", got)
	}

	smelter, err := w.Place(4, 4, core.KindIndustrialSmelter, model.North)
	if err != nil {
		t.Fatalf("Place smelter: %v", err)
	}
	got, style := Cell(w.Tile(5, 5), smelter)
	if got != 'F' {
		t.Fatalf("factory glyph = %q", got)
	}
	if style != styleUnpowered {
		t.Fatalf("unpowered factory should use the warning style")
	}
}

func TestDrawMapsRowsUpwards(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(10, 6)

	w := core.NewWorld(grid.New(10, 5))
	w.Grid().At(3, 4).Terrain = model.TerrainWall
	if _, err := w.Place(0, 0, core.KindBasicConveyor, model.East); err != nil {
		t.Fatalf("Place: %v", err)
	}

	r := NewRenderer(screen)
	r.Draw(w, "tick 1")

	cells, width, _ := screen.GetContents()
	at := func(x, y int) rune {
		c := cells[y*width+x]
		if len(c.Runes) == 0 {
			return ' '
		}
		return c.Runes[0]
	}
	if got := at(0, 4); got != '▶' {
		t.Fatalf("bottom-left cell = %q, want conveyor", got)
	}
	if got := at(3, 0); got != '#' {
		t.Fatalf("top row x=3 = %q, want wall", got)
	}
	if got := at(0, 5); got != 't' {
		t.Fatalf("status line starts with %q", got)
	}

	if x, y := r.ScreenToMap(0, 0); x != 0 || y != 4 {
		t.Fatalf("ScreenToMap(0,0) = (%d,%d), want (0,4)", x, y)
	}
	r.Pan(2, 1)
	if x, y := r.ScreenToMap(0, 4); x != 2 || y != 1 {
		t.Fatalf("after pan ScreenToMap(0,4) = (%d,%d), want (2,1)", x, y)
	}
	r.Center(5, 5)
	if r.OriginX != 0 || r.OriginY != 3 {
		t.Fatalf("Center origin = (%d,%d), want (0,3)", r.OriginX, r.OriginY)
	}
}
