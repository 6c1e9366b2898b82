package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/regression"
	"github.com/muesli/termenv"
)

// CompareCmd plays several agents over the same seeds and tests each against
// the first.
type CompareCmd struct {
	Agents  []string `arg:"" help:"Agents to compare; the first is the baseline"`
	Games   int      `short:"n" help:"Games per agent (overrides config)"`
	Workers int      `short:"w" help:"Parallel workers (overrides config)"`
	Seed    *int64   `help:"Base seed (overrides config)"`
	Alpha   float64  `default:"0.05" help:"Significance level"`
	Honest  bool     `help:"Never let the dealer cheat"`
	NoColor bool     `help:"Disable colour"`
}

func (c *CompareCmd) Run(g *Globals) error {
	logger := g.Logger()
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	if c.NoColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	rc := regression.Config{
		Agents:      c.Agents,
		Games:       cfg.Simulation.Games,
		Workers:     cfg.Simulation.Workers,
		Seed:        cfg.Simulation.Seed,
		Rewards:     cfg.Rewards,
		Weights:     cfg.Dealer,
		GameOptions: cfg.GameOptions(),
		GameTimeout: cfg.Simulation.GameTimeout,
		Alpha:       c.Alpha,
		Logger:      logger,
	}
	if c.Games > 0 {
		rc.Games = c.Games
	}
	if c.Workers > 0 {
		rc.Workers = c.Workers
	}
	if c.Seed != nil {
		rc.Seed = *c.Seed
	}
	if c.Honest {
		rc.Weights = dealer.Weights{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := regression.Run(ctx, rc)
	if err != nil {
		return err
	}
	fmt.Println(renderComparison(res))
	return nil
}

func renderComparison(res *regression.Result) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("baseline: %s", res.Baseline)) + "\n")
	base := res.Reports[res.Baseline].Stats
	b.WriteString(labelStyle.Render("win rate") + fmt.Sprintf("%.2f%%\n", 100*base.WinRate()))
	b.WriteString(labelStyle.Render("mean reward") + fmt.Sprintf("%.3f\n", base.Mean()))

	for _, row := range res.Rows {
		s := res.Reports[row.Agent].Stats
		b.WriteString("\n" + headerStyle.Render(row.Agent) + "\n")
		b.WriteString(labelStyle.Render("win rate") + fmt.Sprintf("%.2f%% %s\n",
			100*s.WinRate(), comparisonText(row.WinRate, res.Alpha, 100)))
		b.WriteString(labelStyle.Render("mean reward") + fmt.Sprintf("%.3f %s\n",
			s.Mean(), comparisonText(row.Reward, res.Alpha, 1)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func comparisonText(c regression.Comparison, alpha, scale float64) string {
	text := fmt.Sprintf("(%+.2f, CI [%+.2f, %+.2f], p=%.4f, %s, %s effect)",
		scale*c.Difference, scale*c.CI95Low, scale*c.CI95High, c.PValue,
		regression.InterpretPValue(c.PValue, alpha), regression.InterpretEffectSize(c.EffectSize))
	switch {
	case !c.Significant(alpha):
		return dimStyle.Render(text)
	case c.Difference > 0:
		return goodStyle.Render(text)
	default:
		return badStyle.Render(text)
	}
}
