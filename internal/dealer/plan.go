package dealer

import (
	"fmt"

	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/shotgun"
)

// StepKind is one instruction type in a dealer plan.
type StepKind uint8

const (
	// StepRig fixes the chambered shell.
	StepRig StepKind = iota
	// StepUse uses one item if the dealer holds it.
	StepUse
	// StepSmokeToCap uses smokes until hp is full or none are left.
	StepSmokeToCap
	// StepShoot fires the shotgun.
	StepShoot
)

// Step is a single instruction of a plan.
type Step struct {
	Kind   StepKind
	Shell  shotgun.Shell // StepRig
	Item   game.Item     // StepUse
	Action game.Action   // StepShoot
}

func rig(s shotgun.Shell) Step { return Step{Kind: StepRig, Shell: s} }
func use(it game.Item) Step    { return Step{Kind: StepUse, Item: it} }
func shoot(a game.Action) Step { return Step{Kind: StepShoot, Action: a} }
func smokeToCap() Step         { return Step{Kind: StepSmokeToCap} }

func (s Step) String() string {
	switch s.Kind {
	case StepRig:
		return "rig " + s.Shell.String()
	case StepUse:
		return "use " + s.Item.String() + "?"
	case StepSmokeToCap:
		return "smoke-to-cap"
	case StepShoot:
		return s.Action.String()
	default:
		return fmt.Sprintf("step(%d)", uint8(s.Kind))
	}
}

// Plan returns the ordered steps for a tier. belief is the honest dealer's
// guess about the chambered shell and is ignored by the cheating tiers.
func Plan(tier Tier, belief shotgun.Shell) []Step {
	switch tier {
	case SuperCheat:
		return []Step{
			rig(shotgun.Blank),
			use(game.Glass),
			smokeToCap(),
			shoot(game.ShootSelf),
			rig(shotgun.Live),
			use(game.Glass),
			use(game.Saw),
			use(game.Cuffs),
			shoot(game.ShootOpponent),
		}
	case NormalCheat:
		return []Step{
			rig(shotgun.Live),
			use(game.Glass),
			smokeToCap(),
			use(game.Cuffs),
			shoot(game.ShootOpponent),
		}
	case Honest:
		if belief == shotgun.Live {
			return []Step{
				use(game.Beer),
				use(game.Inverter),
				smokeToCap(),
				use(game.Cuffs),
				use(game.Saw),
				shoot(game.ShootOpponent),
			}
		}
		return []Step{
			use(game.Beer),
			use(game.Inverter),
			smokeToCap(),
			shoot(game.ShootSelf),
		}
	default:
		panic(fmt.Sprintf("dealer: unhandled tier %d", uint8(tier)))
	}
}
