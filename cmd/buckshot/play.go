package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/buckshot/internal/agent"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/randutil"
	"github.com/muesli/termenv"
)

var (
	aiStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dealerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// PlayCmd prints the transcript of a single game.
type PlayCmd struct {
	Seed    *int64 `help:"Game seed (defaults to the current time)"`
	Agent   string `short:"a" default:"greedy" help:"Agent in the AI seat"`
	Honest  bool   `help:"Never let the dealer cheat"`
	NoColor bool   `help:"Disable colour"`
}

func (c *PlayCmd) Run(g *Globals) error {
	logger := g.Logger()
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	if c.NoColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	decider, err := agent.New(c.Agent, randutil.Derive(seed, randutil.StreamAgent), logger)
	if err != nil {
		return err
	}

	weights := cfg.Dealer
	if c.Honest {
		weights = dealer.Weights{}
	}

	round := 1
	e := env.New(
		env.WithRewards(cfg.Rewards),
		env.WithDealerWeights(weights),
		env.WithLogger(logger),
		env.WithGameOptions(append(cfg.GameOptions(), game.WithListener(func(res game.Result) {
			style := aiStyle
			if res.Seat == game.Dealer {
				style = dealerStyle
			}
			fmt.Println(style.Render(res.String()))
			if res.Reloaded && !res.Done {
				round++
				fmt.Println(headerStyle.Render(fmt.Sprintf("-- reload, round %d --", round)))
			}
		}))...),
	)

	obs := e.Reset(seed)
	fmt.Println(headerStyle.Render(fmt.Sprintf("game %s, seed %d: %d live, %d blank, %d hp each",
		e.Episode().GameID, seed, obs.Live, obs.Blank, obs.HP)))

	for !obs.Done {
		if e.Episode().Actions >= cfg.Game.StepLimit {
			return fmt.Errorf("%w: %d actions", game.ErrStepLimit, e.Episode().Actions)
		}
		obs, _, _, _, err = e.Step(decider.SelectAction(obs))
		if err != nil {
			return err
		}
	}
	ep := e.Episode()

	result := badStyle.Render("dealer wins")
	if ep.Won() {
		result = goodStyle.Render("ai wins")
	}
	fmt.Printf("\n%s after %d rounds, %d actions, reward %.1f\n", result, ep.Rounds, ep.Actions, ep.Reward)
	return nil
}
