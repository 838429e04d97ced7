package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/signalsfoundry/factory-simulator/model"
)

// ErrInventoryCorrupt is reported when the running total diverges from the
// per-kind counts. It always indicates a programming error.
var ErrInventoryCorrupt = errors.New("inventory running total diverged")

// Unbounded disables the global item cap.
const Unbounded = -1

// Inventory is the item store owned by every building. Counts only hold
// positive entries; total mirrors their sum.
type Inventory struct {
	counts     map[model.ItemKind]int
	total      int
	globalCap  int
	itemCaps   map[model.ItemKind]int
	accepted   mapset.Set[model.ItemKind]
	acceptsAll bool
}

// NewInventory returns an empty inventory with no caps that accepts nothing
// through the directional path.
func NewInventory() *Inventory {
	return &Inventory{
		counts:    make(map[model.ItemKind]int),
		globalCap: Unbounded,
		itemCaps:  make(map[model.ItemKind]int),
		accepted:  mapset.New[model.ItemKind](),
	}
}

// SetGlobalCap limits the total number of held items. Unbounded disables it.
func (inv *Inventory) SetGlobalCap(n int) { inv.globalCap = n }

// GlobalCap returns the total item limit, or Unbounded.
func (inv *Inventory) GlobalCap() int { return inv.globalCap }

// SetItemCap limits how many of kind may be held.
func (inv *Inventory) SetItemCap(kind model.ItemKind, n int) { inv.itemCaps[kind] = n }

// ItemCap returns the per-kind limit for kind and whether one is set.
func (inv *Inventory) ItemCap(kind model.ItemKind) (int, bool) {
	n, ok := inv.itemCaps[kind]
	return n, ok
}

// Accept adds kinds to the accepted set used by directional inserts.
func (inv *Inventory) Accept(kinds ...model.ItemKind) {
	for _, k := range kinds {
		inv.accepted.Put(k)
	}
}

// SetAcceptsAll toggles the accepts-any-item flag.
func (inv *Inventory) SetAcceptsAll(v bool) { inv.acceptsAll = v }

// Accepts reports whether kind may enter through the directional path.
func (inv *Inventory) Accepts(kind model.ItemKind) bool {
	return inv.acceptsAll || inv.accepted.Has(kind)
}

// Count returns how many of kind are held.
func (inv *Inventory) Count(kind model.ItemKind) int { return inv.counts[kind] }

// Total returns the running total.
func (inv *Inventory) Total() int { return inv.total }

// Empty reports whether nothing is held.
func (inv *Inventory) Empty() bool { return inv.total == 0 }

// Fits reports whether amount more of kind stays within both caps.
func (inv *Inventory) Fits(kind model.ItemKind, amount int) bool {
	if amount <= 0 {
		return false
	}
	if limit, ok := inv.itemCaps[kind]; ok && inv.counts[kind]+amount > limit {
		return false
	}
	if inv.globalCap != Unbounded && inv.total > inv.globalCap-amount {
		return false
	}
	return true
}

// Space returns how many more of kind fit, capped at math.MaxInt.
func (inv *Inventory) Space(kind model.ItemKind) int {
	space := math.MaxInt
	if limit, ok := inv.itemCaps[kind]; ok {
		space = limit - inv.counts[kind]
	}
	if inv.globalCap != Unbounded && inv.globalCap-inv.total < space {
		space = inv.globalCap - inv.total
	}
	if space < 0 {
		return 0
	}
	return space
}

// add inserts without any acceptance check. It refuses inserts that break a cap.
func (inv *Inventory) add(kind model.ItemKind, amount int) bool {
	if !inv.Fits(kind, amount) {
		return false
	}
	inv.counts[kind] += amount
	inv.total += amount
	return true
}

// Remove takes amount of kind out. It fails without side effects when fewer
// are held.
func (inv *Inventory) Remove(kind model.ItemKind, amount int) bool {
	if amount <= 0 || inv.counts[kind] < amount {
		return false
	}
	inv.counts[kind] -= amount
	if inv.counts[kind] == 0 {
		delete(inv.counts, kind)
	}
	inv.total -= amount
	return true
}

// Drain removes every held item and returns what was held, in item order.
func (inv *Inventory) Drain() []model.ItemStack {
	out := inv.Stacks()
	for k := range inv.counts {
		delete(inv.counts, k)
	}
	inv.total = 0
	return out
}

// Stacks returns the held items in item declaration order.
func (inv *Inventory) Stacks() []model.ItemStack {
	out := make([]model.ItemStack, 0, len(inv.counts))
	for _, k := range model.AllItems {
		if n := inv.counts[k]; n > 0 {
			out = append(out, model.ItemStack{Kind: k, Count: n})
		}
	}
	return out
}

// Snapshot returns a copy of the per-kind counts.
func (inv *Inventory) Snapshot() map[model.ItemKind]int {
	out := make(map[model.ItemKind]int, len(inv.counts))
	for k, n := range inv.counts {
		out[k] = n
	}
	return out
}

// First returns the first held item in declaration order.
func (inv *Inventory) First() (model.ItemKind, bool) {
	for _, k := range model.AllItems {
		if inv.counts[k] > 0 {
			return k, true
		}
	}
	return 0, false
}

// Verify checks the running total against the per-kind counts and caps.
func (inv *Inventory) Verify() error {
	sum := 0
	for k, n := range inv.counts {
		if n <= 0 {
			return fmt.Errorf("%w: non-positive entry %s=%d", ErrInventoryCorrupt, k, n)
		}
		if limit, ok := inv.itemCaps[k]; ok && n > limit {
			return fmt.Errorf("%w: %s=%d exceeds cap %d", ErrInventoryCorrupt, k, n, limit)
		}
		sum += n
	}
	if sum != inv.total {
		return fmt.Errorf("%w: total=%d sum=%d", ErrInventoryCorrupt, inv.total, sum)
	}
	if inv.globalCap != Unbounded && inv.total > inv.globalCap {
		return fmt.Errorf("%w: total=%d exceeds global cap %d", ErrInventoryCorrupt, inv.total, inv.globalCap)
	}
	return nil
}
