package game

import "errors"

var (
	// ErrGameOver is returned for actions after a player reached 0 hp.
	ErrGameOver = errors.New("game is over")
	// ErrUnknownAction is returned for actions outside the discrete set.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNotYourTurn is returned when a seat acts out of turn.
	ErrNotYourTurn = errors.New("not this seat's turn")
	// ErrStepLimit is returned by Play when a decider exhausts its action budget.
	ErrStepLimit = errors.New("step limit reached")
	// ErrOpponentStalled is returned when the opponent's turn ends without a
	// shot while it still holds the turn.
	ErrOpponentStalled = errors.New("opponent returned without firing")
)
