package simulator

import (
	"encoding/json"
	"time"

	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/fileutil"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/statistics"
)

// Report is the result of one simulation run.
type Report struct {
	Agent    string
	Seed     int64
	Workers  int
	Elapsed  time.Duration
	Stats    *statistics.Statistics
	Episodes []env.Episode
}

// GamesPerSecond returns the throughput of the run.
func (r *Report) GamesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Stats.Games) / r.Elapsed.Seconds()
}

// Summary is the flattened, serialisable view of a report.
type Summary struct {
	Agent          string             `json:"agent"`
	Seed           int64              `json:"seed"`
	Workers        int                `json:"workers"`
	Games          int                `json:"games"`
	Wins           int                `json:"wins"`
	WinRate        float64            `json:"win_rate"`
	WinRateCI95    [2]float64         `json:"win_rate_ci95"`
	MeanReward     float64            `json:"mean_reward"`
	MedianReward   float64            `json:"median_reward"`
	StdDevReward   float64            `json:"stddev_reward"`
	RewardCI95     [2]float64         `json:"reward_ci95"`
	MeanRounds     float64            `json:"mean_rounds"`
	MeanActions    float64            `json:"mean_actions"`
	Outcomes       map[string]float64 `json:"outcomes"`
	Tiers          map[string]float64 `json:"tiers"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	GamesPerSecond float64            `json:"games_per_second"`
	Episodes       []env.Episode      `json:"episodes,omitempty"`
}

// Summary computes the derived figures of the report.
func (r *Report) Summary() Summary {
	s := r.Stats
	winLo, winHi := s.WinRateCI95()
	lo, hi := s.ConfidenceInterval95()
	sum := Summary{
		Agent:          r.Agent,
		Seed:           r.Seed,
		Workers:        r.Workers,
		Games:          s.Games,
		Wins:           s.Wins,
		WinRate:        s.WinRate(),
		WinRateCI95:    [2]float64{winLo, winHi},
		MeanReward:     s.Mean(),
		MedianReward:   s.Median(),
		StdDevReward:   s.StdDev(),
		RewardCI95:     [2]float64{lo, hi},
		MeanRounds:     s.MeanRounds(),
		MeanActions:    s.MeanActions(),
		Outcomes:       make(map[string]float64, game.NumOutcomes),
		Tiers:          make(map[string]float64, dealer.NumTiers),
		ElapsedSeconds: r.Elapsed.Seconds(),
		GamesPerSecond: r.GamesPerSecond(),
		Episodes:       r.Episodes,
	}
	for i := range game.NumOutcomes {
		sum.Outcomes[game.Outcome(i).String()] = s.OutcomeShare(game.Outcome(i))
	}
	for i := range dealer.NumTiers {
		sum.Tiers[dealer.Tier(i).String()] = s.TierShare(dealer.Tier(i))
	}
	return sum
}

// MarshalJSON encodes the report as its Summary.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Summary())
}

// WriteFile writes the report as JSON, atomically.
func (r *Report) WriteFile(path string) error {
	return fileutil.WriteJSON(path, r)
}
