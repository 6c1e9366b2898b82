// Package config loads buckshot settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/lox/buckshot/internal/agent"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "buckshot.hcl"

// Config is the effective configuration after defaults are applied.
type Config struct {
	Game       GameSettings
	Dealer     dealer.Weights
	Rewards    env.Rewards
	Simulation SimulationSettings
	Server     ServerSettings
}

// GameSettings are the rules knobs.
type GameSettings struct {
	MaxHP           int
	ItemCapacity    int
	RestockPerRound int
	StepLimit       int
}

// SimulationSettings configure `buckshot simulate`.
type SimulationSettings struct {
	Games       int
	Workers     int
	Seed        int64
	Agent       string
	GameTimeout time.Duration
	Report      string
}

// ServerSettings configure `buckshot serve`.
type ServerSettings struct {
	Address     string
	Port        int
	IdleTimeout time.Duration
	MaxSessions int
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// file is the HCL schema. Every block is optional; inside the dealer and
// rewards blocks every attribute is required, since zero is a meaningful
// value there.
type file struct {
	Game       *gameBlock       `hcl:"game,block"`
	Dealer     *dealerBlock     `hcl:"dealer,block"`
	Rewards    *rewardsBlock    `hcl:"rewards,block"`
	Simulation *simulationBlock `hcl:"simulation,block"`
	Server     *serverBlock     `hcl:"server,block"`
}

type gameBlock struct {
	MaxHP           int  `hcl:"max_hp,optional"`
	ItemCapacity    int  `hcl:"item_capacity,optional"`
	RestockPerRound *int `hcl:"restock_per_round,optional"`
	StepLimit       int  `hcl:"step_limit,optional"`
}

type dealerBlock struct {
	SuperCheat  float64 `hcl:"super_cheat"`
	NormalCheat float64 `hcl:"normal_cheat"`
}

type rewardsBlock struct {
	Illegal        float64 `hcl:"illegal"`
	SelfHarm       float64 `hcl:"self_harm"`
	Neutral        float64 `hcl:"neutral"`
	Beneficial     float64 `hcl:"beneficial"`
	OpponentDamage float64 `hcl:"opponent_damage"`
	Win            float64 `hcl:"win"`
	Loss           float64 `hcl:"loss"`
}

type simulationBlock struct {
	Games       int    `hcl:"games,optional"`
	Workers     int    `hcl:"workers,optional"`
	Seed        int64  `hcl:"seed,optional"`
	Agent       string `hcl:"agent,optional"`
	GameTimeout string `hcl:"game_timeout,optional"`
	Report      string `hcl:"report,optional"`
}

type serverBlock struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	IdleTimeout string `hcl:"idle_timeout,optional"`
	MaxSessions int    `hcl:"max_sessions,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Game: GameSettings{
			MaxHP:           game.DefaultMaxHP,
			ItemCapacity:    game.DefaultItemCapacity,
			RestockPerRound: 2,
			StepLimit:       10_000,
		},
		Dealer:  dealer.DefaultWeights(),
		Rewards: env.DefaultRewards(),
		Simulation: SimulationSettings{
			Games:       10_000,
			Seed:        1,
			Agent:       "random",
			GameTimeout: 5 * time.Second,
		},
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			IdleTimeout: 5 * time.Minute,
			MaxSessions: 64,
		},
	}
}

// Load reads filename and applies defaults for anything it leaves out. A
// missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(f.Body)
}

// Parse decodes HCL source held in memory. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(f.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var f file
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if b := f.Game; b != nil {
		if b.MaxHP != 0 {
			cfg.Game.MaxHP = b.MaxHP
		}
		if b.ItemCapacity != 0 {
			cfg.Game.ItemCapacity = b.ItemCapacity
		}
		if b.RestockPerRound != nil {
			cfg.Game.RestockPerRound = *b.RestockPerRound
		}
		if b.StepLimit != 0 {
			cfg.Game.StepLimit = b.StepLimit
		}
	}
	if b := f.Dealer; b != nil {
		cfg.Dealer = dealer.Weights{SuperCheat: b.SuperCheat, NormalCheat: b.NormalCheat}
	}
	if b := f.Rewards; b != nil {
		cfg.Rewards = env.Rewards(*b)
	}
	if b := f.Simulation; b != nil {
		if b.Games != 0 {
			cfg.Simulation.Games = b.Games
		}
		cfg.Simulation.Workers = b.Workers
		if b.Seed != 0 {
			cfg.Simulation.Seed = b.Seed
		}
		if b.Agent != "" {
			cfg.Simulation.Agent = b.Agent
		}
		if b.GameTimeout != "" {
			d, err := time.ParseDuration(b.GameTimeout)
			if err != nil {
				return nil, fmt.Errorf("simulation.game_timeout: %w", err)
			}
			cfg.Simulation.GameTimeout = d
		}
		cfg.Simulation.Report = b.Report
	}
	if b := f.Server; b != nil {
		if b.Address != "" {
			cfg.Server.Address = b.Address
		}
		if b.Port != 0 {
			cfg.Server.Port = b.Port
		}
		if b.IdleTimeout != "" {
			d, err := time.ParseDuration(b.IdleTimeout)
			if err != nil {
				return nil, fmt.Errorf("server.idle_timeout: %w", err)
			}
			cfg.Server.IdleTimeout = d
		}
		if b.MaxSessions != 0 {
			cfg.Server.MaxSessions = b.MaxSessions
		}
	}
	return cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	g := c.Game
	if g.MaxHP < 1 || g.MaxHP > game.DefaultMaxHP {
		return fmt.Errorf("game: max_hp must be between 1 and %d, got %d", game.DefaultMaxHP, g.MaxHP)
	}
	if g.ItemCapacity < 0 || g.ItemCapacity > game.DefaultItemCapacity {
		return fmt.Errorf("game: item_capacity must be between 0 and %d, got %d", game.DefaultItemCapacity, g.ItemCapacity)
	}
	if g.RestockPerRound < 0 {
		return fmt.Errorf("game: restock_per_round must not be negative, got %d", g.RestockPerRound)
	}
	if g.StepLimit < 1 {
		return fmt.Errorf("game: step_limit must be positive, got %d", g.StepLimit)
	}
	if err := c.Dealer.Validate(); err != nil {
		return err
	}
	if err := c.Rewards.Validate(); err != nil {
		return err
	}

	s := c.Simulation
	if s.Games < 1 {
		return fmt.Errorf("simulation: games must be positive, got %d", s.Games)
	}
	if s.Workers < 0 {
		return fmt.Errorf("simulation: workers must not be negative, got %d", s.Workers)
	}
	if !agent.Known(s.Agent) {
		return fmt.Errorf("simulation: unknown agent %q", s.Agent)
	}
	if s.GameTimeout < 0 {
		return fmt.Errorf("simulation: game_timeout must not be negative, got %v", s.GameTimeout)
	}

	srv := c.Server
	if srv.Port < 1 || srv.Port > 65535 {
		return fmt.Errorf("server: invalid port: %d", srv.Port)
	}
	if srv.IdleTimeout <= 0 {
		return fmt.Errorf("server: idle_timeout must be positive, got %v", srv.IdleTimeout)
	}
	if srv.MaxSessions < 1 {
		return fmt.Errorf("server: max_sessions must be positive, got %d", srv.MaxSessions)
	}
	return nil
}

// GameOptions returns the engine options for the game block.
func (c *Config) GameOptions() []game.Option {
	return []game.Option{
		game.WithMaxHP(c.Game.MaxHP),
		game.WithItemCapacity(c.Game.ItemCapacity),
		game.WithRestockPerRound(c.Game.RestockPerRound),
		game.WithStepLimit(c.Game.StepLimit),
	}
}

// EnvOptions returns the environment options for the game, dealer and
// rewards blocks.
func (c *Config) EnvOptions() []env.Option {
	return []env.Option{
		env.WithRewards(c.Rewards),
		env.WithDealerWeights(c.Dealer),
		env.WithGameOptions(c.GameOptions()...),
	}
}

// HCL renders the effective configuration as an HCL document that Load
// reads back unchanged.
func (c *Config) HCL() []byte {
	restock := c.Game.RestockPerRound
	rw := rewardsBlock(c.Rewards)
	doc := file{
		Game: &gameBlock{
			MaxHP:           c.Game.MaxHP,
			ItemCapacity:    c.Game.ItemCapacity,
			RestockPerRound: &restock,
			StepLimit:       c.Game.StepLimit,
		},
		Dealer:  &dealerBlock{SuperCheat: c.Dealer.SuperCheat, NormalCheat: c.Dealer.NormalCheat},
		Rewards: &rw,
		Simulation: &simulationBlock{
			Games:       c.Simulation.Games,
			Workers:     c.Simulation.Workers,
			Seed:        c.Simulation.Seed,
			Agent:       c.Simulation.Agent,
			GameTimeout: c.Simulation.GameTimeout.String(),
			Report:      c.Simulation.Report,
		},
		Server: &serverBlock{
			Address:     c.Server.Address,
			Port:        c.Server.Port,
			IdleTimeout: c.Server.IdleTimeout.String(),
			MaxSessions: c.Server.MaxSessions,
		},
	}

	out := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(&doc, out.Body())
	return out.Bytes()
}
