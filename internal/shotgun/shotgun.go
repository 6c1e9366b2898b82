// Package shotgun tracks the shell supply of a shared shotgun and what is known
// about the chambered shell.
//
// The supply is two counters. Nothing records the physical order of shells;
// instead the identity of the chambered shell is resolved lazily, either by a
// draw weighted by the remaining live/blank ratio or by an explicit assertion
// (a rig). Once resolved the identity is sticky until the shell leaves the gun.
package shotgun

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// MaxShells bounds a load. Each of live and blank is drawn from [1, MaxShells/2].
const MaxShells = 8

// ErrInvalidState reports that the counters and the chamber knowledge disagree.
// It means an invariant was broken upstream and is never a normal game outcome.
var ErrInvalidState = errors.New("shotgun: invalid state")

// Shell is the physical identity of a shell.
type Shell uint8

const (
	Blank Shell = iota
	Live
)

func (s Shell) String() string {
	switch s {
	case Blank:
		return "blank"
	case Live:
		return "live"
	default:
		return "unknown"
	}
}

// Opposite returns the other shell identity.
func (s Shell) Opposite() Shell {
	if s == Live {
		return Blank
	}
	return Live
}

// Knowledge is what the table knows about the chambered shell.
type Knowledge uint8

const (
	Unknown Knowledge = iota
	KnownLive
	KnownBlank
)

func (k Knowledge) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case KnownLive:
		return "known-live"
	case KnownBlank:
		return "known-blank"
	default:
		return fmt.Sprintf("knowledge(%d)", uint8(k))
	}
}

// Shell returns the known identity. ok is false when the chamber is Unknown.
func (k Knowledge) Shell() (s Shell, ok bool) {
	switch k {
	case KnownLive:
		return Live, true
	case KnownBlank:
		return Blank, true
	case Unknown:
		return 0, false
	default:
		panic(fmt.Sprintf("shotgun: unhandled knowledge %d", uint8(k)))
	}
}

// KnowledgeOf returns the Known state for s.
func KnowledgeOf(s Shell) Knowledge {
	if s == Live {
		return KnownLive
	}
	return KnownBlank
}

// Shotgun is a value type; copying it snapshots the supply.
type Shotgun struct {
	live       int
	blank      int
	chamber    Knowledge
	invertOdds bool
	fired      int
}

// New returns a shotgun holding exactly the given counts. It is meant for
// scripted scenarios; games load through Reload.
func New(live, blank int) Shotgun {
	if live < 0 || blank < 0 {
		panic("shotgun: negative shell count")
	}
	return Shotgun{live: live, blank: blank}
}

// Reload draws a fresh load. Both counts land in [1, MaxShells/2] so a load
// always holds at least one of each.
func (g *Shotgun) Reload(rng *rand.Rand) {
	g.live = 1 + rng.IntN(MaxShells/2)
	g.blank = 1 + rng.IntN(MaxShells/2)
	g.chamber = Unknown
	g.invertOdds = false
	g.fired = 0
}

// Live returns the number of live shells left.
func (g Shotgun) Live() int { return g.live }

// Blank returns the number of blank shells left.
func (g Shotgun) Blank() int { return g.blank }

// Remaining returns the number of shells left in the load.
func (g Shotgun) Remaining() int { return g.live + g.blank }

func (g Shotgun) Empty() bool { return g.Remaining() == 0 }

// Chamber returns what is known about the chambered shell.
func (g Shotgun) Chamber() Knowledge { return g.chamber }

// InvertOdds reports whether an inverter is pending on an unknown chamber.
func (g Shotgun) InvertOdds() bool { return g.invertOdds }

// Fired returns how many shells have left the gun since the last reload.
func (g Shotgun) Fired() int { return g.fired }

func (g Shotgun) count(s Shell) int {
	if s == Live {
		return g.live
	}
	return g.blank
}

func (g Shotgun) String() string {
	return fmt.Sprintf("live=%d blank=%d chamber=%s", g.live, g.blank, g.chamber)
}

// Resolve returns the identity of the chambered shell, drawing it if unknown.
// The draw is Live with probability live/(live+blank). A pending inverter
// swaps the drawn shell for its opposite. The shell stays loaded.
func (g *Shotgun) Resolve(rng *rand.Rand) (Shell, error) {
	if s, ok := g.chamber.Shell(); ok {
		return s, nil
	}
	total := g.Remaining()
	if total == 0 {
		return 0, fmt.Errorf("%w: resolve on empty shotgun", ErrInvalidState)
	}

	s := Blank
	if rng.IntN(total) < g.live {
		s = Live
	}
	if g.invertOdds {
		g.invertOdds = false
		g.swap(s)
		s = s.Opposite()
	}
	g.chamber = KnowledgeOf(s)
	return s, nil
}

// ForceResolve asserts the chambered shell without a draw. The matching count
// must be non-zero: a rig still has to be backed by a shell in the supply.
func (g *Shotgun) ForceResolve(s Shell) error {
	if g.count(s) == 0 {
		return fmt.Errorf("%w: cannot chamber %s with %s", ErrInvalidState, s, g)
	}
	g.chamber = KnowledgeOf(s)
	g.invertOdds = false
	return nil
}

// Consume removes one shell of the given identity. The next chamber is Unknown.
func (g *Shotgun) Consume(s Shell) error {
	switch s {
	case Live:
		if g.live == 0 {
			return fmt.Errorf("%w: consume live with %s", ErrInvalidState, g)
		}
		g.live--
	case Blank:
		if g.blank == 0 {
			return fmt.Errorf("%w: consume blank with %s", ErrInvalidState, g)
		}
		g.blank--
	default:
		return fmt.Errorf("%w: shell %d", ErrInvalidState, uint8(s))
	}
	g.chamber = Unknown
	g.fired++
	return nil
}

// Eject resolves and removes the chambered shell without firing it.
func (g *Shotgun) Eject(rng *rand.Rand) (Shell, error) {
	s, err := g.Resolve(rng)
	if err != nil {
		return 0, err
	}
	if err := g.Consume(s); err != nil {
		return 0, err
	}
	return s, nil
}

// Invert flips the chambered shell. When the shell is known the counts follow
// the physical swap and flipped is true. When unknown, the next draw is
// inverted instead.
func (g *Shotgun) Invert() (flipped bool, err error) {
	switch g.chamber {
	case KnownLive, KnownBlank:
		s, _ := g.chamber.Shell()
		if g.count(s) == 0 {
			return false, fmt.Errorf("%w: invert %s with %s", ErrInvalidState, s, g)
		}
		g.swap(s)
		g.chamber = KnowledgeOf(s.Opposite())
		return true, nil
	case Unknown:
		if g.Remaining() == 0 {
			return false, fmt.Errorf("%w: invert on empty shotgun", ErrInvalidState)
		}
		g.invertOdds = true
		return false, nil
	default:
		panic(fmt.Sprintf("shotgun: unhandled knowledge %d", uint8(g.chamber)))
	}
}

// swap turns one shell of identity s into its opposite.
func (g *Shotgun) swap(s Shell) {
	if s == Live {
		g.live--
		g.blank++
	} else {
		g.blank--
		g.live++
	}
}
