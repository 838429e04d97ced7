package model

import (
	"fmt"
	"strings"
)

// Terrain is the base layer of a tile.
type Terrain int

const (
	TerrainDirt Terrain = iota
	TerrainWater
	TerrainLava
	TerrainWall
)

func (t Terrain) String() string {
	switch t {
	case TerrainDirt:
		return "dirt"
	case TerrainWater:
		return "water"
	case TerrainLava:
		return "lava"
	case TerrainWall:
		return "wall"
	default:
		return fmt.Sprintf("terrain(%d)", int(t))
	}
}

// Buildable reports whether ore and ordinary buildings may sit on t.
func (t Terrain) Buildable() bool {
	return t == TerrainDirt
}

// Ore is the optional resource overlay of a tile.
type Ore int

const (
	OreNone Ore = iota
	OreCopper
	OreIron
	OreCoal
)

// AllOres lists the placeable ores in generation order.
var AllOres = []Ore{OreCopper, OreIron, OreCoal}

func (o Ore) String() string {
	switch o {
	case OreNone:
		return "none"
	case OreCopper:
		return "copper_ore"
	case OreIron:
		return "iron_ore"
	case OreCoal:
		return "coal"
	default:
		return fmt.Sprintf("ore(%d)", int(o))
	}
}

// MinedItem returns the item a drill extracts from the deposit.
func (o Ore) MinedItem() (ItemKind, bool) {
	switch o {
	case OreCopper:
		return ItemCopperOre, true
	case OreIron:
		return ItemIronOre, true
	case OreCoal:
		return ItemCoal, true
	default:
		return 0, false
	}
}

// ParseTerrain maps a terrain name back to its value.
func ParseTerrain(s string) (Terrain, error) {
	for _, t := range []Terrain{TerrainDirt, TerrainWater, TerrainLava, TerrainWall} {
		if t.String() == strings.ToLower(strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", s)
}
