package game

import (
	"io"

	"github.com/charmbracelet/log"
)

// Option configures an Engine during creation.
type Option func(*engineConfig)

// Listener receives every resolved action, the opponent's included, in order.
type Listener func(Result)

type engineConfig struct {
	logger          *log.Logger
	gameID          string
	maxHP           int
	itemCapacity    int
	restockPerRound int
	stepLimit       int
	firstLive       int
	firstBlank      int
	startItems      [2][]Item
	listeners       []Listener
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger:          log.NewWithOptions(io.Discard, log.Options{}),
		maxHP:           DefaultMaxHP,
		itemCapacity:    DefaultItemCapacity,
		restockPerRound: 2,
		stepLimit:       10_000,
	}
}

// WithLogger sets the logger. Engine events are logged at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGameID tags log lines with id.
func WithGameID(id string) Option {
	return func(c *engineConfig) { c.gameID = id }
}

// WithMaxHP sets the starting hp, which is also the smoke cap.
// Default is 4.
func WithMaxHP(hp int) Option {
	return func(c *engineConfig) { c.maxHP = hp }
}

// WithItemCapacity sets how many items a bag holds. Default is 8.
func WithItemCapacity(n int) Option {
	return func(c *engineConfig) { c.itemCapacity = n }
}

// WithRestockPerRound sets how many items each player draws per elapsed
// round at every reload. Default is 2, so the first load carries no items.
func WithRestockPerRound(n int) Option {
	return func(c *engineConfig) { c.restockPerRound = n }
}

// WithStepLimit bounds how many actions Play requests from a decider.
func WithStepLimit(n int) Option {
	return func(c *engineConfig) { c.stepLimit = n }
}

// WithFirstLoad replaces the random draw of the first load with exact counts.
// Later reloads are random.
func WithFirstLoad(live, blank int) Option {
	return func(c *engineConfig) {
		c.firstLive = live
		c.firstBlank = blank
	}
}

// WithItems grants seat the given items at game start, in addition to the
// regular restock.
func WithItems(seat Seat, items ...Item) Option {
	return func(c *engineConfig) {
		c.startItems[seat] = append(c.startItems[seat], items...)
	}
}

// WithListener registers l for every resolved action.
func WithListener(l Listener) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}
