package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
)

// Item is a single-use consumable held in a player's bag.
type Item uint8

const (
	Beer Item = iota
	Glass
	Smoke
	Inverter
	Cuffs
	Saw

	NumItems = int(Saw) + 1
)

// DefaultItemCapacity is how many items a bag holds.
const DefaultItemCapacity = 8

var itemNames = [NumItems]string{"beer", "glass", "smoke", "inverter", "cuffs", "saw"}

func (it Item) String() string {
	if int(it) < NumItems {
		return itemNames[it]
	}
	return fmt.Sprintf("item(%d)", uint8(it))
}

// Valid reports whether it is one of the six known items.
func (it Item) Valid() bool {
	return int(it) < NumItems
}

// ParseItem converts a name such as "beer" or "Glass" to an Item.
func ParseItem(s string) (Item, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range itemNames {
		if name == s {
			return Item(i), nil
		}
	}
	return 0, fmt.Errorf("unknown item %q", s)
}

// AllItems lists every item kind in declaration order.
func AllItems() []Item {
	items := make([]Item, NumItems)
	for i := range items {
		items[i] = Item(i)
	}
	return items
}

// RandomItem draws an item kind uniformly.
func RandomItem(rng *rand.Rand) Item {
	return Item(rng.IntN(NumItems))
}

// Inventory is a multiset of items stored as per-kind counts. Order is
// irrelevant; duplicates are allowed.
type Inventory [NumItems]int

// InventoryOf builds an inventory from a list of items.
func InventoryOf(items ...Item) Inventory {
	var inv Inventory
	for _, it := range items {
		inv[it]++
	}
	return inv
}

// Count returns how many of it the bag holds.
func (inv Inventory) Count(it Item) int { return inv[it] }

// Has reports whether at least one it is held.
func (inv Inventory) Has(it Item) bool { return inv[it] > 0 }

// Total returns the number of items in the bag.
func (inv Inventory) Total() int {
	n := 0
	for _, c := range inv {
		n += c
	}
	return n
}

// Add puts one it in the bag unless the bag already holds capacity items.
func (inv *Inventory) Add(it Item, capacity int) bool {
	if inv.Total() >= capacity {
		return false
	}
	inv[it]++
	return true
}

// Remove takes one it out of the bag.
func (inv *Inventory) Remove(it Item) bool {
	if inv[it] == 0 {
		return false
	}
	inv[it]--
	return true
}

func (inv Inventory) String() string {
	var parts []string
	for i, c := range inv {
		if c > 0 {
			parts = append(parts, fmt.Sprintf("%s×%d", Item(i), c))
		}
	}
	if len(parts) == 0 {
		return "[]"
	}
	return "[" + strings.Join(parts, " ") + "]"
}
