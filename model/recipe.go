package model

// Recipe describes a crafting transformation. Recipes are immutable once
// registered and shared by pointer across every machine that can run them.
type Recipe struct {
	Name      string
	Inputs    []ItemStack
	Outputs   []ItemStack
	CraftTime float64 // seconds; a generator treats it as burn duration
}

// InputCount returns the required quantity of kind, or 0.
func (r *Recipe) InputCount(kind ItemKind) int {
	for _, s := range r.Inputs {
		if s.Kind == kind {
			return s.Count
		}
	}
	return 0
}

// OutputCount returns the produced quantity of kind, or 0.
func (r *Recipe) OutputCount(kind ItemKind) int {
	for _, s := range r.Outputs {
		if s.Kind == kind {
			return s.Count
		}
	}
	return 0
}
