// Package grid holds the tile layer shared by the world generator and the
// simulation core.
package grid

import "github.com/signalsfoundry/factory-simulator/model"

// Tile is one cell of the map: terrain, an optional ore deposit, and the
// handle of the building covering it (zero when empty).
type Tile struct {
	X, Y     int
	Terrain  model.Terrain
	Ore      model.Ore
	Building model.BuildingID
}

// Occupied reports whether a building covers the tile.
func (t *Tile) Occupied() bool {
	return t.Building != 0
}

// Grid is a width x height array of tiles stored column-major so that
// At(x, y) matches the [x][y] addressing used throughout the simulation.
type Grid struct {
	width, height int
	tiles         []Tile
}

// New creates a grid of bare dirt.
func New(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			g.tiles[x*height+y] = Tile{X: x, Y: y, Terrain: model.TerrainDirt}
		}
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) addresses a tile.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the tile at (x, y), or nil when out of bounds.
func (g *Grid) At(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.tiles[x*g.height+y]
}

// Each visits every tile in x-major order.
func (g *Grid) Each(fn func(t *Tile)) {
	for i := range g.tiles {
		fn(&g.tiles[i])
	}
}

// CountOre returns how many tiles carry ore o.
func (g *Grid) CountOre(o model.Ore) int {
	n := 0
	for i := range g.tiles {
		if g.tiles[i].Ore == o {
			n++
		}
	}
	return n
}

// Neighbors8 counts the in-bounds 8-neighbours of (x, y) whose terrain is t.
func (g *Grid) Neighbors8(x, y int, t model.Terrain) int {
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if nt := g.At(x+dx, y+dy); nt != nil && nt.Terrain == t {
				n++
			}
		}
	}
	return n
}

// Equal reports whether both grids have identical dimensions, terrain, ore
// and occupancy.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.tiles {
		if g.tiles[i] != other.tiles[i] {
			return false
		}
	}
	return true
}
