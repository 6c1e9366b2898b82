package env

import (
	"encoding/json"

	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/game"
)

// Episode summarises one game from the AI's point of view.
type Episode struct {
	Seed    int64
	GameID  string
	Done    bool
	Winner  game.Seat
	Rounds  int
	Turns   int
	Actions int
	Reward  float64
	HP      [2]int // final hp indexed by seat

	// Outcomes counts the AI's resolved actions by category.
	Outcomes [game.NumOutcomes]int
	// Tiers counts the dealer's plans by tier.
	Tiers [dealer.NumTiers]int
	// Skips counts turns lost to cuffs, indexed by seat.
	Skips [2]int
}

// Won reports whether the AI won a finished game.
func (ep Episode) Won() bool { return ep.Done && ep.Winner == game.AI }

func (ep *Episode) countResult(res game.Result) {
	if res.Skipped {
		ep.Skips[res.Seat]++
		return
	}
	if res.Seat == game.AI {
		ep.Outcomes[res.Outcome]++
	}
}

func (ep *Episode) countTier(t dealer.Tier) { ep.Tiers[t]++ }

type episodeJSON struct {
	Seed     int64          `json:"seed"`
	GameID   string         `json:"game_id"`
	Done     bool           `json:"done"`
	Winner   string         `json:"winner,omitempty"`
	Rounds   int            `json:"rounds"`
	Turns    int            `json:"turns"`
	Actions  int            `json:"actions"`
	Reward   float64        `json:"reward"`
	AIHP     int            `json:"ai_hp"`
	DealerHP int            `json:"dealer_hp"`
	Outcomes map[string]int `json:"outcomes"`
	Tiers    map[string]int `json:"tiers"`
}

// MarshalJSON writes counts keyed by outcome and tier name.
func (ep Episode) MarshalJSON() ([]byte, error) {
	out := episodeJSON{
		Seed:     ep.Seed,
		GameID:   ep.GameID,
		Done:     ep.Done,
		Rounds:   ep.Rounds,
		Turns:    ep.Turns,
		Actions:  ep.Actions,
		Reward:   ep.Reward,
		AIHP:     ep.HP[game.AI],
		DealerHP: ep.HP[game.Dealer],
		Outcomes: make(map[string]int, game.NumOutcomes),
		Tiers:    make(map[string]int, dealer.NumTiers),
	}
	if ep.Done {
		out.Winner = ep.Winner.String()
	}
	for i, n := range ep.Outcomes {
		out.Outcomes[game.Outcome(i).String()] = n
	}
	for i, n := range ep.Tiers {
		out.Tiers[dealer.Tier(i).String()] = n
	}
	return json.Marshal(out)
}
