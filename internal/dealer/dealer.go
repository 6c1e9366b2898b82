// Package dealer implements the scripted opponent that plays the Dealer seat.
//
// Each time it takes the shotgun the dealer draws a tier. SuperCheat and
// NormalCheat rig the chamber before acting; Honest guesses the shell with a
// fair coin and plays the odds like anyone else. The draw happens again when
// a plan ends with the dealer still holding the shotgun.
package dealer

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/randutil"
	"github.com/lox/buckshot/internal/shotgun"
)

// Tier is the dealer's behaviour for one plan.
type Tier uint8

const (
	Honest Tier = iota
	NormalCheat
	SuperCheat

	NumTiers = int(SuperCheat) + 1
)

var tierNames = [NumTiers]string{"honest", "normal-cheat", "super-cheat"}

func (t Tier) String() string {
	if int(t) < NumTiers {
		return tierNames[t]
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// Weights are the per-plan cheat probabilities. SuperCheat is checked first;
// NormalCheat only applies when the SuperCheat draw fails.
type Weights struct {
	SuperCheat  float64
	NormalCheat float64
}

// DefaultWeights returns the standard 10% / 30% cheat odds.
func DefaultWeights() Weights {
	return Weights{SuperCheat: 0.10, NormalCheat: 0.30}
}

var ErrInvalidWeights = errors.New("dealer: invalid weights")

// Validate checks that both weights are probabilities.
func (w Weights) Validate() error {
	if w.SuperCheat < 0 || w.SuperCheat > 1 {
		return fmt.Errorf("%w: super cheat %v not in [0,1]", ErrInvalidWeights, w.SuperCheat)
	}
	if w.NormalCheat < 0 || w.NormalCheat > 1 {
		return fmt.Errorf("%w: normal cheat %v not in [0,1]", ErrInvalidWeights, w.NormalCheat)
	}
	return nil
}

// Option configures a Dealer.
type Option func(*Dealer)

// WithWeights overrides the cheat odds.
func WithWeights(w Weights) Option {
	return func(d *Dealer) { d.weights = w }
}

// WithLogger sets the logger. Tier choices are logged at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dealer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTierHook registers fn to be called with every tier drawn.
func WithTierHook(fn func(Tier)) Option {
	return func(d *Dealer) { d.onTier = fn }
}

// Dealer is a game.Opponent. It owns its RNG, so its choices never disturb
// the engine's shell draws.
type Dealer struct {
	rng     *rand.Rand
	weights Weights
	logger  *log.Logger
	onTier  func(Tier)
}

var _ game.Opponent = (*Dealer)(nil)

// New creates a dealer drawing from rng. It panics on a nil RNG or invalid
// weights.
func New(rng *rand.Rand, opts ...Option) *Dealer {
	if rng == nil {
		panic("rng is required for dealer creation")
	}
	d := &Dealer{
		rng:     rng,
		weights: DefaultWeights(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.weights.Validate(); err != nil {
		panic(err.Error())
	}
	d.logger = d.logger.WithPrefix("dealer")
	return d
}

// SelectTier draws the tier for the next plan. Both cheat coins are always
// drawn so the dealer's stream advances the same way whatever the shotgun
// holds. Cheating needs a live and a blank shell in the supply.
func (d *Dealer) SelectTier(st game.State) Tier {
	super := randutil.Chance(d.rng, d.weights.SuperCheat)
	normal := randutil.Chance(d.rng, d.weights.NormalCheat)

	if st.Shotgun.Live() == 0 || st.Shotgun.Blank() == 0 {
		return Honest
	}
	switch {
	case super:
		return SuperCheat
	case normal:
		return NormalCheat
	default:
		return Honest
	}
}

// PlayTurn draws a tier and runs its plan on t.
func (d *Dealer) PlayTurn(t game.Table) error {
	st := t.State()
	tier := d.SelectTier(st)

	belief := shotgun.Live
	if tier == Honest && d.rng.IntN(2) == 1 {
		belief = shotgun.Blank
	}

	d.logger.Debug("Plan selected",
		"tier", tier,
		"belief", belief,
		"live", st.Shotgun.Live(),
		"blank", st.Shotgun.Blank(),
		"items", st.Player(game.Dealer).Items.String())
	if d.onTier != nil {
		d.onTier(tier)
	}
	return Execute(t, Plan(tier, belief))
}

// Execute runs plan on t. It stops early once the dealer loses the shotgun
// or the game ends; optional item uses are skipped when the item is not held.
func Execute(t game.Table, plan []Step) error {
	for _, step := range plan {
		st := t.State()
		if st.Over || st.Turn != game.Dealer {
			return nil
		}
		if err := run(t, st, step); err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
	}
	return nil
}

func run(t game.Table, st game.State, step Step) error {
	me := st.Player(game.Dealer)
	switch step.Kind {
	case StepRig:
		return t.Rig(step.Shell)
	case StepUse:
		if !me.Items.Has(step.Item) {
			return nil
		}
		_, err := t.Act(game.UseItem(step.Item))
		return err
	case StepSmokeToCap:
		for me.HP < st.MaxHP && me.Items.Has(game.Smoke) {
			if _, err := t.Act(game.UseSmoke); err != nil {
				return err
			}
			me = t.State().Player(game.Dealer)
		}
		return nil
	case StepShoot:
		if !step.Action.IsShot() {
			return fmt.Errorf("%s does not fire the shotgun", step.Action)
		}
		_, err := t.Act(step.Action)
		return err
	default:
		return fmt.Errorf("unknown step kind %d", uint8(step.Kind))
	}
}
