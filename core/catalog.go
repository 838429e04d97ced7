package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signalsfoundry/factory-simulator/model"
)

var (
	ErrUnknownKind   = errors.New("unknown building kind")
	ErrUnknownRecipe = errors.New("unknown recipe")
	ErrDefInvalid    = errors.New("invalid building definition")
)

// Variant selects the behaviour implementing a building definition.
type Variant int

const (
	VariantConveyor Variant = iota
	VariantDrill
	VariantFactory
	VariantGenerator
	VariantCore
	VariantBattery
	VariantPowerPole
)

var variantNames = map[Variant]string{
	VariantConveyor:  "conveyor",
	VariantDrill:     "drill",
	VariantFactory:   "factory",
	VariantGenerator: "generator",
	VariantCore:      "core",
	VariantBattery:   "battery",
	VariantPowerPole: "power_pole",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

func parseVariant(s string) (Variant, error) {
	for v, name := range variantNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: variant %q", ErrDefInvalid, s)
}

// Def is the static, data-driven description of a placeable building kind.
// Width and Height describe the north-facing footprint.
type Def struct {
	Name        string
	Variant     Variant
	Width       int
	Height      int
	Cost        []model.ItemStack
	BuildableOn []model.Terrain

	// Conveyor
	MoveInterval float64

	// Drill
	MiningInterval float64
	MiningQuantity int
	StorageLimit   int

	// Factory / Generator
	CraftingSpeed float64
	ItemCapacity  int
	Recipes       []*model.Recipe

	// Power
	PowerConsumption float64 // watts drawn while running
	PowerOutput      float64 // watts produced while burning
	EnergyCapacity   float64 // joules
	ConnectionRadius float64 // 0 means near-contact
	Relay            bool
}

func (d *Def) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrDefInvalid)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %s has footprint %dx%d", ErrDefInvalid, d.Name, d.Width, d.Height)
	}
	switch d.Variant {
	case VariantConveyor:
		if d.MoveInterval <= 0 {
			return fmt.Errorf("%w: %s needs a positive move interval", ErrDefInvalid, d.Name)
		}
	case VariantDrill:
		if d.MiningInterval <= 0 || d.MiningQuantity <= 0 || d.StorageLimit <= 0 {
			return fmt.Errorf("%w: %s needs mining interval, quantity and storage", ErrDefInvalid, d.Name)
		}
	case VariantFactory:
		if len(d.Recipes) == 0 || d.CraftingSpeed <= 0 || d.ItemCapacity <= 0 {
			return fmt.Errorf("%w: %s needs recipes, crafting speed and capacity", ErrDefInvalid, d.Name)
		}
	case VariantGenerator:
		if len(d.Recipes) != 1 || d.PowerOutput <= 0 || d.ItemCapacity <= 0 {
			return fmt.Errorf("%w: %s needs one fuel recipe, output and capacity", ErrDefInvalid, d.Name)
		}
	}
	return nil
}

// Catalog holds the recipe and building definitions of a world. It is
// read-only once handed to a World.
type Catalog struct {
	recipes map[string]*model.Recipe
	defs    map[string]*Def
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		recipes: make(map[string]*model.Recipe),
		defs:    make(map[string]*Def),
	}
}

// AddRecipe registers r, replacing any recipe with the same name.
func (c *Catalog) AddRecipe(r *model.Recipe) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("%w: nil or unnamed recipe", ErrDefInvalid)
	}
	if r.CraftTime <= 0 {
		return fmt.Errorf("%w: recipe %s has craft time %v", ErrDefInvalid, r.Name, r.CraftTime)
	}
	c.recipes[r.Name] = r
	return nil
}

// AddDef registers d, replacing any definition with the same name.
func (c *Catalog) AddDef(d *Def) error {
	if d == nil {
		return fmt.Errorf("%w: nil definition", ErrDefInvalid)
	}
	if err := d.validate(); err != nil {
		return err
	}
	c.defs[d.Name] = d
	return nil
}

// Recipe looks up a recipe by name.
func (c *Catalog) Recipe(name string) (*model.Recipe, error) {
	r, ok := c.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return r, nil
}

// Def looks up a building definition by name.
func (c *Catalog) Def(name string) (*Def, error) {
	d, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return d, nil
}

// Names returns every building kind name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.defs))
	for name := range c.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Built-in recipe and building names.
const (
	RecipeSmeltCopper = "smelt_copper"
	RecipeSmeltIron   = "smelt_iron"
	RecipeBurnCoal    = "burn_coal"

	KindBasicConveyor     = "basic_conveyor"
	KindFastConveyor      = "fast_conveyor"
	KindBasicDrill        = "basic_drill"
	KindLargeDrill        = "large_drill"
	KindSmelter           = "smelter"
	KindIndustrialSmelter = "industrial_smelter"
	KindCoalGenerator     = "coal_generator"
	KindPowerPole         = "power_pole"
	KindBattery           = "battery"
	KindCore              = "core"
)

// DefaultCatalog returns the stock recipes and buildings.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	smeltCopper := &model.Recipe{
		Name:      RecipeSmeltCopper,
		Inputs:    []model.ItemStack{{Kind: model.ItemCopperOre, Count: 1}, {Kind: model.ItemCoal, Count: 1}},
		Outputs:   []model.ItemStack{{Kind: model.ItemCopper, Count: 1}},
		CraftTime: 1.0,
	}
	smeltIron := &model.Recipe{
		Name:      RecipeSmeltIron,
		Inputs:    []model.ItemStack{{Kind: model.ItemIronOre, Count: 1}, {Kind: model.ItemCoal, Count: 1}},
		Outputs:   []model.ItemStack{{Kind: model.ItemIron, Count: 1}},
		CraftTime: 1.0,
	}
	burnCoal := &model.Recipe{
		Name:      RecipeBurnCoal,
		Inputs:    []model.ItemStack{{Kind: model.ItemCoal, Count: 1}},
		CraftTime: 1.0,
	}
	for _, r := range []*model.Recipe{smeltCopper, smeltIron, burnCoal} {
		mustAdd(c.AddRecipe(r))
	}

	defs := []*Def{
		{
			Name: KindBasicConveyor, Variant: VariantConveyor, Width: 1, Height: 1,
			Cost:         []model.ItemStack{{Kind: model.ItemCopper, Count: 1}},
			MoveInterval: 0.5,
		},
		{
			Name: KindFastConveyor, Variant: VariantConveyor, Width: 1, Height: 1,
			Cost:         []model.ItemStack{{Kind: model.ItemIron, Count: 1}},
			MoveInterval: 0.2,
		},
		{
			Name: KindBasicDrill, Variant: VariantDrill, Width: 1, Height: 1,
			Cost:           []model.ItemStack{{Kind: model.ItemCopper, Count: 5}},
			MiningInterval: 1.0, MiningQuantity: 1, StorageLimit: 10,
		},
		{
			Name: KindLargeDrill, Variant: VariantDrill, Width: 2, Height: 2,
			Cost:           []model.ItemStack{{Kind: model.ItemCopper, Count: 10}, {Kind: model.ItemIron, Count: 5}},
			MiningInterval: 3.2, MiningQuantity: 4, StorageLimit: 10,
		},
		{
			Name: KindSmelter, Variant: VariantFactory, Width: 2, Height: 2,
			Cost:          []model.ItemStack{{Kind: model.ItemCopper, Count: 10}},
			CraftingSpeed: 1.0, ItemCapacity: 10,
			Recipes: []*model.Recipe{smeltCopper, smeltIron},
		},
		{
			Name: KindIndustrialSmelter, Variant: VariantFactory, Width: 3, Height: 3,
			Cost:          []model.ItemStack{{Kind: model.ItemCopper, Count: 30}, {Kind: model.ItemIron, Count: 15}},
			CraftingSpeed: 5.0, ItemCapacity: 50, PowerConsumption: 60,
			Recipes: []*model.Recipe{smeltCopper, smeltIron},
		},
		{
			Name: KindCoalGenerator, Variant: VariantGenerator, Width: 2, Height: 2,
			Cost:          []model.ItemStack{{Kind: model.ItemCopper, Count: 10}, {Kind: model.ItemIron, Count: 5}},
			CraftingSpeed: 1.0, ItemCapacity: 10, PowerOutput: 100, EnergyCapacity: 1000,
			Recipes: []*model.Recipe{burnCoal},
		},
		{
			Name: KindPowerPole, Variant: VariantPowerPole, Width: 1, Height: 1,
			Cost:             []model.ItemStack{{Kind: model.ItemCopper, Count: 1}},
			ConnectionRadius: 5.5, Relay: true,
		},
		{
			Name: KindBattery, Variant: VariantBattery, Width: 1, Height: 1,
			Cost:           []model.ItemStack{{Kind: model.ItemCopper, Count: 5}},
			EnergyCapacity: 10000,
		},
		{
			Name: KindCore, Variant: VariantCore, Width: 3, Height: 3,
		},
	}
	for _, d := range defs {
		mustAdd(c.AddDef(d))
	}
	return c
}

func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}

// newBuilding instantiates the behaviour for def.
func newBuilding(id model.BuildingID, def *Def, anchor model.Point) (Building, error) {
	switch def.Variant {
	case VariantConveyor:
		return newConveyor(id, def, anchor), nil
	case VariantDrill:
		return newDrill(id, def, anchor), nil
	case VariantFactory:
		return newFactory(id, def, anchor), nil
	case VariantGenerator:
		return newGenerator(id, def, anchor), nil
	case VariantCore:
		return newCoreSink(id, def, anchor), nil
	case VariantBattery:
		return newBattery(id, def, anchor), nil
	case VariantPowerPole:
		return newPowerPole(id, def, anchor), nil
	}
	return nil, fmt.Errorf("%w: %s has variant %v", ErrDefInvalid, def.Name, def.Variant)
}
