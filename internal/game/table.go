package game

import (
	"fmt"

	"github.com/lox/buckshot/internal/shotgun"
)

// Table is the opponent's handle on a game during its turn. Act goes through
// the same rules as the AI's actions. Rig is the privileged capability that
// the AI side never receives: it fixes the chambered shell without a draw.
type Table interface {
	// State returns a snapshot of the game.
	State() State
	// Act resolves one action for the opponent's seat.
	Act(a Action) (Result, error)
	// Rig asserts the identity of the chambered shell.
	Rig(s shotgun.Shell) error
}

// Opponent plays the Dealer seat. PlayTurn is called whenever the Dealer
// holds the shotgun; it must fire at least once unless the game ends first.
type Opponent interface {
	PlayTurn(t Table) error
}

// OpponentFunc adapts a function to the Opponent interface.
type OpponentFunc func(t Table) error

func (f OpponentFunc) PlayTurn(t Table) error { return f(t) }

type dealerTable struct {
	e *Engine
}

func (t dealerTable) State() State { return t.e.state }

func (t dealerTable) Act(a Action) (Result, error) {
	return t.e.act(Dealer, a)
}

func (t dealerTable) Rig(s shotgun.Shell) error {
	e := t.e
	if e.state.Over {
		return ErrGameOver
	}
	if e.state.Turn != Dealer {
		return fmt.Errorf("%w: rig outside the dealer's turn", ErrNotYourTurn)
	}
	if err := e.state.Shotgun.ForceResolve(s); err != nil {
		return err
	}
	e.logger.Debug("Chamber rigged", "shell", s)
	return nil
}
