package model

import (
	"fmt"
	"strings"
)

// ItemKind identifies a transportable item type.
type ItemKind int

const (
	ItemCopperOre ItemKind = iota
	ItemCopper
	ItemIronOre
	ItemIron
	ItemCoal
)

// AllItems lists every item kind in declaration order. Inventory iteration
// and ledger snapshots use this order so results are reproducible.
var AllItems = []ItemKind{ItemCopperOre, ItemCopper, ItemIronOre, ItemIron, ItemCoal}

var itemNames = map[ItemKind]string{
	ItemCopperOre: "copper_ore",
	ItemCopper:    "copper",
	ItemIronOre:   "iron_ore",
	ItemIron:      "iron",
	ItemCoal:      "coal",
}

func (k ItemKind) String() string {
	if name, ok := itemNames[k]; ok {
		return name
	}
	return fmt.Sprintf("item(%d)", int(k))
}

// ParseItemKind maps a catalog name such as "iron_ore" to its ItemKind.
func ParseItemKind(s string) (ItemKind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for k, name := range itemNames {
		if name == v {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown item kind %q", s)
}

// ItemStack is a quantity of a single item kind.
type ItemStack struct {
	Kind  ItemKind
	Count int
}
