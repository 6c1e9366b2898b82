package game

import (
	"fmt"

	"github.com/lox/buckshot/internal/shotgun"
)

// State is the whole game as a value. Copying a State snapshots it, which is
// what the engine hands to opponents and what tests compare against.
type State struct {
	Shotgun shotgun.Shotgun
	Players [2]Player
	// Round counts reloads; it is 1 during the first load.
	Round int
	// Turn is the seat currently holding the shotgun.
	Turn Seat
	// Turns counts turn opportunities, skipped ones included.
	Turns int
	Over  bool
	// Winner is meaningful only once Over is set.
	Winner Seat

	MaxHP        int
	ItemCapacity int
}

// Player returns a copy of seat's player.
func (s State) Player(seat Seat) Player { return s.Players[seat] }

// Done reports whether either player is at 0 hp.
func (s State) Done() bool {
	return !s.Players[AI].Alive() || !s.Players[Dealer].Alive()
}

func (s State) String() string {
	ai, dl := s.Players[AI], s.Players[Dealer]
	return fmt.Sprintf("round=%d turn=%s ai(hp=%d items=%s) dealer(hp=%d items=%s) %s",
		s.Round, s.Turn, ai.HP, ai.Items, dl.HP, dl.Items, s.Shotgun.String())
}
