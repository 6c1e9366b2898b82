// Package game implements the rules of a two-seat shotgun duel.
//
// The main type is Engine, which owns a single game: the shotgun's shell
// supply, both players' hp and item bags, and whose turn it is. The AI seat is
// driven from outside one action at a time; the Dealer seat is an Opponent
// that the engine runs synchronously whenever the turn passes to it.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	e := game.NewEngine(rng, dealer.New(randutil.Derive(42, randutil.StreamDealer)))
//	for !e.Done() {
//	    res, err := e.Step(chooseAction(e.Observe()))
//	    ...
//	}
//
// Or hand the whole game to a Decider:
//
//	final, err := e.Play(ctx, myDecider)
//
// # Turns
//
// A turn is any number of item actions followed by one shot. A blank fired at
// yourself keeps the turn; every other shot passes it. Cuffs make the
// opponent lose their next turn opportunity. When the shotgun empties a new
// round starts: the gun is reloaded, bags are restocked with 2×round items and
// saw flags are cleared.
//
// # Deterministic Testing
//
// All engine randomness comes from the RNG passed to NewEngine. Options such
// as WithFirstLoad and WithItems pin a scenario down further:
//
//	e := game.NewEngine(rng, opponent,
//	    game.WithFirstLoad(1, 1),
//	    game.WithItems(game.AI, game.Glass, game.Saw))
package game
