package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/simulator"
	"github.com/muesli/termenv"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(16)

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func renderSummary(s simulator.Summary, noColor bool) string {
	if noColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s agent vs dealer", s.Agent)) + "\n\n")
	row("games", fmt.Sprintf("%d %s", s.Games, dimStyle.Render(fmt.Sprintf("(seed %d, %d workers)", s.Seed, s.Workers))))

	rate := fmt.Sprintf("%.2f%%", 100*s.WinRate)
	if s.WinRate >= 0.5 {
		rate = goodStyle.Render(rate)
	} else {
		rate = badStyle.Render(rate)
	}
	row("win rate", fmt.Sprintf("%s %s", rate,
		dimStyle.Render(fmt.Sprintf("95%% CI [%.2f%%, %.2f%%]", 100*s.WinRateCI95[0], 100*s.WinRateCI95[1]))))
	row("mean reward", fmt.Sprintf("%.3f %s", s.MeanReward,
		dimStyle.Render(fmt.Sprintf("± %.3f, median %.1f", s.StdDevReward, s.MedianReward))))
	row("rounds / game", fmt.Sprintf("%.2f", s.MeanRounds))
	row("actions / game", fmt.Sprintf("%.2f", s.MeanActions))
	if s.GamesPerSecond > 0 {
		row("throughput", fmt.Sprintf("%.0f games/s %s", s.GamesPerSecond,
			dimStyle.Render(fmt.Sprintf("(%.2fs)", s.ElapsedSeconds))))
	}

	b.WriteString("\n" + headerStyle.Render("outcomes") + "\n")
	for i := range game.NumOutcomes {
		name := game.Outcome(i).String()
		row(name, fmt.Sprintf("%6.2f%%", 100*s.Outcomes[name]))
	}

	b.WriteString("\n" + headerStyle.Render("dealer tiers") + "\n")
	for i := range dealer.NumTiers {
		name := dealer.Tier(i).String()
		row(name, fmt.Sprintf("%6.2f%%", 100*s.Tiers[name]))
	}
	return strings.TrimRight(b.String(), "\n")
}

// progress logs simulation progress every tenth of the run.
type progress struct {
	mu     sync.Mutex
	logger *log.Logger
	step   int
	next   int
}

func newProgress(logger *log.Logger, total int) *progress {
	step := max(total/10, 1)
	return &progress{logger: logger, step: step, next: step}
}

func (p *progress) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if done < p.next {
		return
	}
	p.next = done + p.step
	p.logger.Info("Progress", "games", done, "total", total,
		"pct", fmt.Sprintf("%.0f%%", 100*float64(done)/float64(total)))
}
