package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// shootAI is an opponent that fires at the AI every turn.
func shootAI() Opponent {
	return OpponentFunc(func(t Table) error {
		_, err := t.Act(ShootOpponent)
		return err
	})
}

// neverCalled fails the test if the opponent ever gets a turn.
func neverCalled(t *testing.T) Opponent {
	return OpponentFunc(func(Table) error {
		t.Fatal("opponent should not have been given a turn")
		return nil
	})
}

// recorder collects every result the engine emits.
type recorder struct {
	results []Result
}

func (r *recorder) listen(res Result) { r.results = append(r.results, res) }

func (r *recorder) bySeat(seat Seat) []Result {
	var out []Result
	for _, res := range r.results {
		if res.Seat == seat {
			out = append(out, res)
		}
	}
	return out
}

// blankFirstSeed returns a seed whose first draw on a one-live/one-blank
// load comes out blank.
func blankFirstSeed(t *testing.T) int64 {
	t.Helper()
	for seed := int64(0); seed < 1000; seed++ {
		if randutil.New(seed).IntN(2) == 1 {
			return seed
		}
	}
	t.Fatal("no seed found")
	return 0
}

func newTestEngine(seed int64, opponent Opponent, opts ...Option) *Engine {
	opts = append([]Option{WithLogger(testLogger())}, opts...)
	return NewEngine(randutil.New(seed), opponent, opts...)
}
