package game

import "fmt"

// DefaultMaxHP is both the starting hp and the smoke cap.
const DefaultMaxHP = 4

// Seat identifies one of the two contestants.
type Seat uint8

const (
	AI Seat = iota
	Dealer
)

func (s Seat) String() string {
	switch s {
	case AI:
		return "ai"
	case Dealer:
		return "dealer"
	default:
		return fmt.Sprintf("seat(%d)", uint8(s))
	}
}

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	if s == AI {
		return Dealer
	}
	return AI
}

// Player is one contestant's mutable state.
type Player struct {
	HP    int
	Items Inventory
	// CanPlay is cleared by the opponent's cuffs and consumed at the start of
	// the next turn opportunity.
	CanPlay bool
	// Sawed doubles the damage of this player's next shot.
	Sawed bool
}

// NewPlayer returns a player at full health with an empty bag.
func NewPlayer(hp int) Player {
	return Player{HP: hp, CanPlay: true}
}

// Alive reports whether the player still has hp.
func (p Player) Alive() bool { return p.HP > 0 }
