package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/shotgun"
)

// maxOpponentPlans bounds how many plans the opponent may run in one turn
// before the engine treats it as stuck.
const maxOpponentPlans = 256

// Engine owns one game and drives both seats. The AI side acts through Step;
// the opponent runs synchronously inside Step whenever the turn passes to it.
type Engine struct {
	state    State
	rng      *rand.Rand
	opponent Opponent
	logger   *log.Logger
	cfg      engineConfig
	shots    int
}

// NewEngine creates an engine and starts the first round. The RNG is required
// so every game is reproducible from its seed; the opponent draws its own
// randomness.
func NewEngine(rng *rand.Rand, opponent Opponent, opts ...Option) *Engine {
	if rng == nil {
		panic("rng is required for engine creation")
	}
	if opponent == nil {
		panic("opponent is required for engine creation")
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxHP < 1 {
		panic("max hp must be positive")
	}
	if cfg.itemCapacity < 0 {
		panic("item capacity must not be negative")
	}

	logger := cfg.logger.WithPrefix("engine")
	if cfg.gameID != "" {
		logger = logger.With("game", cfg.gameID)
	}

	e := &Engine{
		rng:      rng,
		opponent: opponent,
		logger:   logger,
		cfg:      cfg,
	}
	e.Reset()
	return e
}

// Reset discards the current game and starts a new one on the same RNG stream.
func (e *Engine) Reset() {
	e.state = State{
		Players:      [2]Player{NewPlayer(e.cfg.maxHP), NewPlayer(e.cfg.maxHP)},
		Turn:         AI,
		Turns:        1,
		MaxHP:        e.cfg.maxHP,
		ItemCapacity: e.cfg.itemCapacity,
	}
	e.shots = 0
	for seat, items := range e.cfg.startItems {
		for _, it := range items {
			e.state.Players[seat].Items.Add(it, e.cfg.itemCapacity)
		}
	}
	e.startRound()
}

// State returns a snapshot of the game.
func (e *Engine) State() State { return e.state }

// Done reports whether the game has ended.
func (e *Engine) Done() bool { return e.state.Over }

// Winner returns the winning seat once the game is over.
func (e *Engine) Winner() (Seat, bool) { return e.state.Winner, e.state.Over }

// StepLimit returns the action budget Play enforces.
func (e *Engine) StepLimit() int { return e.cfg.stepLimit }

// Step applies one AI action. If the action passes the turn, the opponent
// plays until the AI holds the shotgun again or the game ends. Illegal
// actions return an Illegal result and change nothing.
func (e *Engine) Step(a Action) (Result, error) {
	res, err := e.act(AI, a)
	if err != nil {
		return res, err
	}
	if res.TurnOver && !e.state.Over {
		if err := e.advance(); err != nil {
			return res, err
		}
	}
	res.Done = e.state.Over
	return res, nil
}

// act resolves one action for seat without running the other seat's turn.
func (e *Engine) act(seat Seat, a Action) (Result, error) {
	if e.state.Over {
		return Result{}, ErrGameOver
	}
	if !a.Valid() {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}
	if e.state.Turn != seat {
		return Result{}, fmt.Errorf("%w: %s acted on %s's turn", ErrNotYourTurn, seat, e.state.Turn)
	}

	var (
		res Result
		err error
	)
	if it, ok := a.Item(); ok {
		res, err = e.useItem(seat, it)
	} else {
		res, err = e.shoot(seat, a)
	}
	if err != nil {
		return res, fmt.Errorf("%s %s: %w", seat, a, err)
	}
	res.Done = e.state.Over

	e.logger.Debug("Action resolved",
		"seat", seat,
		"action", a,
		"outcome", res.Outcome,
		"shell", res.Shell,
		"damage", res.Damage,
		"aiHP", e.state.Players[AI].HP,
		"dealerHP", e.state.Players[Dealer].HP)
	e.emit(res)
	return res, nil
}

// shoot fires the chambered shell at the actor or the opponent.
func (e *Engine) shoot(seat Seat, a Action) (Result, error) {
	res := Result{Seat: seat, Action: a}
	gun := &e.state.Shotgun

	s, err := gun.Resolve(e.rng)
	if err != nil {
		return res, err
	}
	if err := gun.Consume(s); err != nil {
		return res, err
	}
	e.shots++
	res.Shell = shotgun.KnowledgeOf(s)

	shooter := &e.state.Players[seat]
	target := seat
	if a == ShootOpponent {
		target = seat.Opponent()
	}
	sawed := shooter.Sawed
	shooter.Sawed = false

	if s == shotgun.Live {
		res.Damage = 1
		if sawed {
			res.Damage = 2
		}
		victim := &e.state.Players[target]
		victim.HP = max(0, victim.HP-res.Damage)
	}

	switch {
	case target == seat && s == shotgun.Live:
		res.Outcome = SelfHarm
	case target == seat && sawed:
		res.Outcome = Neutral
	case target == seat:
		res.Outcome = Beneficial
	case s == shotgun.Live:
		res.Outcome = OpponentDamage
	default:
		res.Outcome = Neutral
	}

	if e.state.Done() {
		e.finish()
		return res, nil
	}

	// A blank at yourself keeps the shotgun; everything else passes it.
	if !(target == seat && s == shotgun.Blank) {
		res.TurnOver = true
		e.state.Turn = seat.Opponent()
	}
	if gun.Empty() {
		e.startRound()
		res.Reloaded = true
	}
	return res, nil
}

// startRound reloads the shotgun, restocks both bags and clears per-round
// flags.
func (e *Engine) startRound() {
	if e.state.Round == 0 && e.cfg.firstLive+e.cfg.firstBlank > 0 {
		e.state.Shotgun = shotgun.New(e.cfg.firstLive, e.cfg.firstBlank)
	} else {
		e.state.Shotgun.Reload(e.rng)
	}

	draws := e.cfg.restockPerRound * e.state.Round
	for range draws {
		for _, seat := range []Seat{AI, Dealer} {
			p := &e.state.Players[seat]
			if p.Items.Total() < e.cfg.itemCapacity {
				p.Items.Add(RandomItem(e.rng), e.cfg.itemCapacity)
			}
		}
	}

	e.state.Round++
	e.state.Players[AI].Sawed = false
	e.state.Players[Dealer].Sawed = false

	e.logger.Debug("Round started",
		"round", e.state.Round,
		"live", e.state.Shotgun.Live(),
		"blank", e.state.Shotgun.Blank(),
		"aiItems", e.state.Players[AI].Items.String(),
		"dealerItems", e.state.Players[Dealer].Items.String())
}

func (e *Engine) finish() {
	e.state.Over = true
	e.state.Winner = AI
	if !e.state.Players[AI].Alive() {
		e.state.Winner = Dealer
	}
	e.logger.Debug("Game over", "winner", e.state.Winner, "round", e.state.Round, "turns", e.state.Turns)
}

// advance runs turn opportunities after the AI passed the shotgun, until the
// AI can act again or the game ends.
func (e *Engine) advance() error {
	for !e.state.Over {
		seat := e.state.Turn
		e.state.Turns++
		if !e.beginTurn(seat) {
			e.state.Turn = seat.Opponent()
			continue
		}
		if seat == AI {
			return nil
		}
		if err := e.opponentTurn(); err != nil {
			return err
		}
	}
	return nil
}

// beginTurn consumes a pending skip. It reports false when the turn is lost.
func (e *Engine) beginTurn(seat Seat) bool {
	p := &e.state.Players[seat]
	if p.CanPlay {
		return true
	}
	p.CanPlay = true
	e.logger.Debug("Turn skipped", "seat", seat)
	e.emit(Result{Seat: seat, Skipped: true, Outcome: Neutral, TurnOver: true})
	return false
}

// opponentTurn hands the table to the opponent until it gives up the turn.
// A plan that ends on a blank self-shot leaves the opponent holding the
// shotgun, so it is asked for another plan.
func (e *Engine) opponentTurn() error {
	t := dealerTable{e: e}
	for plans := 0; e.state.Turn == Dealer && !e.state.Over; plans++ {
		if plans >= maxOpponentPlans {
			return fmt.Errorf("%w: %d plans in one turn", ErrOpponentStalled, plans)
		}
		shots := e.shots
		if err := e.opponent.PlayTurn(t); err != nil {
			return fmt.Errorf("opponent turn: %w", err)
		}
		if e.shots == shots && e.state.Turn == Dealer && !e.state.Over {
			return ErrOpponentStalled
		}
	}
	return nil
}

func (e *Engine) emit(res Result) {
	for _, l := range e.cfg.listeners {
		l(res)
	}
}
