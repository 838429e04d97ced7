package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/factory-simulator/model"
)

// unexported JSON shapes so the file format can evolve independently.
type catalogJSON struct {
	Recipes   []recipeJSON   `json:"recipes"`
	Buildings []buildingJSON `json:"buildings"`
}

type stackJSON struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type recipeJSON struct {
	Name      string      `json:"name"`
	Inputs    []stackJSON `json:"inputs"`
	Outputs   []stackJSON `json:"outputs"`
	CraftTime float64     `json:"craft_time"`
}

type buildingJSON struct {
	Name        string      `json:"name"`
	Variant     string      `json:"variant"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Cost        []stackJSON `json:"cost"`
	BuildableOn []string    `json:"buildable_on"`

	MoveInterval   float64 `json:"move_interval"`
	MiningInterval float64 `json:"mining_interval"`
	MiningQuantity int     `json:"mining_quantity"`
	StorageLimit   int     `json:"storage_limit"`

	CraftingSpeed float64  `json:"crafting_speed"`
	ItemCapacity  int      `json:"item_capacity"`
	Recipes       []string `json:"recipes"`

	PowerConsumption float64 `json:"power_consumption"`
	PowerOutput      float64 `json:"power_output"`
	EnergyCapacity   float64 `json:"energy_capacity"`
	ConnectionRadius float64 `json:"connection_radius"`
	Relay            bool    `json:"relay"`
}

// LoadCatalog decodes a JSON catalog from r. Recipes are registered first so
// buildings can reference them by name.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var payload catalogJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	c := NewCatalog()
	for _, rj := range payload.Recipes {
		inputs, err := parseStacks(rj.Inputs)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: recipe %q inputs: %w", rj.Name, err)
		}
		outputs, err := parseStacks(rj.Outputs)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: recipe %q outputs: %w", rj.Name, err)
		}
		if err := c.AddRecipe(&model.Recipe{
			Name:      rj.Name,
			Inputs:    inputs,
			Outputs:   outputs,
			CraftTime: rj.CraftTime,
		}); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
	}

	for _, bj := range payload.Buildings {
		def, err := bj.toDef(c)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: building %q: %w", bj.Name, err)
		}
		if err := c.AddDef(def); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
	}
	return c, nil
}

func (bj buildingJSON) toDef(c *Catalog) (*Def, error) {
	variant, err := parseVariant(bj.Variant)
	if err != nil {
		return nil, err
	}
	cost, err := parseStacks(bj.Cost)
	if err != nil {
		return nil, err
	}
	def := &Def{
		Name:             bj.Name,
		Variant:          variant,
		Width:            bj.Width,
		Height:           bj.Height,
		Cost:             cost,
		MoveInterval:     bj.MoveInterval,
		MiningInterval:   bj.MiningInterval,
		MiningQuantity:   bj.MiningQuantity,
		StorageLimit:     bj.StorageLimit,
		CraftingSpeed:    bj.CraftingSpeed,
		ItemCapacity:     bj.ItemCapacity,
		PowerConsumption: bj.PowerConsumption,
		PowerOutput:      bj.PowerOutput,
		EnergyCapacity:   bj.EnergyCapacity,
		ConnectionRadius: bj.ConnectionRadius,
		Relay:            bj.Relay,
	}
	for _, name := range bj.BuildableOn {
		t, err := model.ParseTerrain(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDefInvalid, err)
		}
		def.BuildableOn = append(def.BuildableOn, t)
	}
	for _, name := range bj.Recipes {
		r, err := c.Recipe(name)
		if err != nil {
			return nil, err
		}
		def.Recipes = append(def.Recipes, r)
	}
	return def, nil
}

func parseStacks(in []stackJSON) ([]model.ItemStack, error) {
	var out []model.ItemStack
	for _, s := range in {
		kind, err := model.ParseItemKind(s.Item)
		if err != nil {
			return nil, err
		}
		if s.Count <= 0 {
			return nil, fmt.Errorf("%w: %s count %d", ErrDefInvalid, s.Item, s.Count)
		}
		out = append(out, model.ItemStack{Kind: kind, Count: s.Count})
	}
	return out, nil
}
