package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/game"
)

// GameResult is the outcome of a single game for the AI seat.
type GameResult struct {
	Seed    int64   // game seed, for replay
	Won     bool    // AI won
	Reward  float64 // total reward over the game
	Rounds  int     // rounds started, the first included
	Turns   int     // turn opportunities, skipped ones included
	Actions int     // AI actions, illegal ones included
	AIHP    int     // AI hp at the end

	Outcomes [game.NumOutcomes]int
	Tiers    [dealer.NumTiers]int
}

// Statistics accumulates game results.
type Statistics struct {
	Games      int
	Wins       int
	SumReward  float64
	SumReward2 float64   // sum of squares for variance
	Values     []float64 // every game's reward, for median and percentiles

	Rounds  int
	Turns   int
	Actions int

	// WinsByHP counts wins by the AI's remaining hp.
	WinsByHP map[int]int

	Outcomes [game.NumOutcomes]int
	Tiers    [dealer.NumTiers]int
}

// Add incorporates one game result.
func (s *Statistics) Add(r GameResult) {
	s.Games++
	s.SumReward += r.Reward
	s.SumReward2 += r.Reward * r.Reward
	s.Values = append(s.Values, r.Reward)
	s.Rounds += r.Rounds
	s.Turns += r.Turns
	s.Actions += r.Actions

	if r.Won {
		s.Wins++
		if s.WinsByHP == nil {
			s.WinsByHP = make(map[int]int)
		}
		s.WinsByHP[r.AIHP]++
	}
	for i, n := range r.Outcomes {
		s.Outcomes[i] += n
	}
	for i, n := range r.Tiers {
		s.Tiers[i] += n
	}
}

// Merge folds other into s. Values are appended in other's order.
func (s *Statistics) Merge(other *Statistics) {
	s.Games += other.Games
	s.Wins += other.Wins
	s.SumReward += other.SumReward
	s.SumReward2 += other.SumReward2
	s.Values = append(s.Values, other.Values...)
	s.Rounds += other.Rounds
	s.Turns += other.Turns
	s.Actions += other.Actions
	for hp, n := range other.WinsByHP {
		if s.WinsByHP == nil {
			s.WinsByHP = make(map[int]int)
		}
		s.WinsByHP[hp] += n
	}
	for i, n := range other.Outcomes {
		s.Outcomes[i] += n
	}
	for i, n := range other.Tiers {
		s.Tiers[i] += n
	}
}

// WinRate returns the fraction of games the AI won.
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// WinRateCI95 returns the Wilson score interval for the win rate.
func (s *Statistics) WinRateCI95() (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	const z = 1.96
	n := float64(s.Games)
	p := s.WinRate()
	denom := 1 + z*z/n
	centre := (p + z*z/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n)) / denom
	return math.Max(0, centre-margin), math.Min(1, centre+margin)
}

// Mean returns the mean reward per game.
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumReward / float64(s.Games)
}

// Variance returns the sample variance of the per-game reward.
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumReward2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
	return math.Max(0, v)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
// reward.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median reward.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the reward at p in [0,1], interpolating linearly.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// MeanRounds returns the average number of rounds per game.
func (s *Statistics) MeanRounds() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Games)
}

// MeanActions returns the average number of AI actions per game.
func (s *Statistics) MeanActions() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Actions) / float64(s.Games)
}

// OutcomeShare returns the fraction of AI actions that ended in o.
func (s *Statistics) OutcomeShare(o game.Outcome) float64 {
	if s.Actions == 0 {
		return 0
	}
	return float64(s.Outcomes[o]) / float64(s.Actions)
}

// TierShare returns the fraction of dealer plans drawn at tier t.
func (s *Statistics) TierShare(t dealer.Tier) float64 {
	total := 0
	for _, n := range s.Tiers {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(s.Tiers[t]) / float64(total)
}

// Validate checks that the accumulated counts agree with each other.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)", len(s.Values), s.Games)
	}
	if s.Wins > s.Games {
		return fmt.Errorf("wins (%d) exceed games (%d)", s.Wins, s.Games)
	}
	wins := 0
	for _, n := range s.WinsByHP {
		wins += n
	}
	if wins != s.Wins {
		return fmt.Errorf("wins by hp total (%d) does not match wins (%d)", wins, s.Wins)
	}
	outcomes := 0
	for _, n := range s.Outcomes {
		outcomes += n
	}
	if outcomes != s.Actions {
		return fmt.Errorf("outcome total (%d) does not match actions (%d)", outcomes, s.Actions)
	}
	if s.Rounds < s.Games {
		return fmt.Errorf("rounds (%d) fewer than games (%d)", s.Rounds, s.Games)
	}
	return nil
}
