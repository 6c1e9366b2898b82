package simulator

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/statistics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	return Config{
		Games:   40,
		Workers: 4,
		Seed:    42,
		Agent:   "greedy",
		Weights: dealer.DefaultWeights(),
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
		Clock:   quartz.NewMock(t),
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	var calls atomic.Int64
	cfg.Progress = func(done, total int) {
		calls.Add(1)
		assert.LessOrEqual(t, done, total)
	}

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	s := report.Stats
	assert.Equal(t, 40, s.Games)
	assert.Equal(t, int64(40), calls.Load())
	assert.Len(t, s.Values, 40)
	assert.GreaterOrEqual(t, s.MeanRounds(), 1.0)
	assert.Positive(t, s.Actions)
	require.NoError(t, s.Validate())
	assert.Nil(t, report.Episodes)
	assert.Zero(t, report.Elapsed, "mock clock never advanced")
	assert.Zero(t, report.GamesPerSecond())
}

func TestRunReproducible(t *testing.T) {
	t.Parallel()

	one := testConfig(t)
	one.Workers = 1
	many := testConfig(t)
	many.Workers = 8

	a, err := New(one).Run(context.Background())
	require.NoError(t, err)
	b, err := New(many).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Stats.Values, b.Stats.Values)
	assert.Equal(t, a.Stats.Wins, b.Stats.Wins)
	assert.Equal(t, a.Stats.Outcomes, b.Stats.Outcomes)
	assert.Equal(t, a.Stats.Tiers, b.Stats.Tiers)
}

func TestRunHonestDealer(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Weights = dealer.Weights{}
	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.Stats.TierShare(dealer.Honest))
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	t.Run("no games", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Games = 0
		_, err := New(cfg).Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("unknown agent", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Agent = "oracle"
		_, err := New(cfg).Run(context.Background())
		assert.ErrorContains(t, err, "unknown agent")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(testConfig(t)).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("stuck agent hits the step limit", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Agent = "uniform"
		cfg.GameOptions = []game.Option{game.WithStepLimit(1)}
		_, err := New(cfg).Run(context.Background())
		assert.ErrorIs(t, err, game.ErrStepLimit)
	})
}

func TestGameTimeout(t *testing.T) {
	t.Parallel()

	t.Run("timer never fires on a mock clock", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GameTimeout = time.Second
		report, err := New(cfg).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, cfg.Games, report.Stats.Games)
	})

	t.Run("expired games are reported", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Clock = quartz.NewReal()
		cfg.GameTimeout = time.Nanosecond
		_, err := New(cfg).Run(context.Background())
		// a fast game can still beat the timer
		if err != nil {
			assert.ErrorContains(t, err, "timed out")
		}
	})
}

func TestReportJSON(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Games = 5
	cfg.KeepEpisodes = true
	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Episodes, 5)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var sum struct {
		Agent    string             `json:"agent"`
		Games    int                `json:"games"`
		WinRate  float64            `json:"win_rate"`
		Outcomes map[string]float64 `json:"outcomes"`
		Tiers    map[string]float64 `json:"tiers"`
		Episodes []map[string]any   `json:"episodes"`
	}
	require.NoError(t, json.Unmarshal(data, &sum))
	assert.Len(t, sum.Episodes, 5)
	assert.Equal(t, "greedy", sum.Agent)
	assert.Equal(t, 5, sum.Games)
	assert.Equal(t, report.Stats.WinRate(), sum.WinRate)
	assert.Len(t, sum.Outcomes, game.NumOutcomes)
	assert.Len(t, sum.Tiers, dealer.NumTiers)

	var total float64
	for _, share := range sum.Outcomes {
		total += share
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRunMergesInGameOrder(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Games = 3*blockSize + 5
	cfg.Workers = 3
	cfg.KeepEpisodes = true

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Episodes, cfg.Games)

	var want statistics.Statistics
	for _, ep := range report.Episodes {
		want.Add(Result(ep))
	}
	assert.Equal(t, want.Values, report.Stats.Values)
	assert.Equal(t, want.Wins, report.Stats.Wins)
	assert.Equal(t, want.Actions, report.Stats.Actions)
	assert.Equal(t, want.WinsByHP, report.Stats.WinsByHP)
	assert.Equal(t, 3, report.Workers)
}
