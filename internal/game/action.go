package game

import (
	"fmt"
	"strings"
)

// Action is one entry of the fixed discrete action set. The first NumItems
// values use the item with the same index.
type Action uint8

const (
	UseBeer Action = iota
	UseGlass
	UseSmoke
	UseInverter
	UseCuffs
	UseSaw
	ShootSelf
	ShootOpponent

	NumActions = int(ShootOpponent) + 1
)

var actionNames = [NumActions]string{
	"use-beer", "use-glass", "use-smoke", "use-inverter", "use-cuffs", "use-saw",
	"shoot-self", "shoot-opponent",
}

func (a Action) String() string {
	if a.Valid() {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Valid reports whether a belongs to the action set.
func (a Action) Valid() bool { return int(a) < NumActions }

// Item returns the item an item action uses.
func (a Action) Item() (Item, bool) {
	if int(a) < NumItems {
		return Item(a), true
	}
	return 0, false
}

// IsShot reports whether a fires the shotgun and so ends the action sequence
// of a turn.
func (a Action) IsShot() bool { return a == ShootSelf || a == ShootOpponent }

// UseItem returns the action that uses it.
func UseItem(it Item) Action { return Action(it) }

// ParseAction accepts the canonical names ("use-beer", "shoot-self") as well
// as bare item names and a few short aliases.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	switch s {
	case "self", "shoot_self":
		return ShootSelf, nil
	case "opponent", "dealer", "shoot_opponent":
		return ShootOpponent, nil
	}
	if it, err := ParseItem(strings.TrimPrefix(s, "use_")); err == nil {
		return UseItem(it), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}
