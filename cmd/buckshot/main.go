package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Debug      bool   `help:"Enable debug logging"`
	LogFormat  string `enum:"text,json,logfmt" default:"text" help:"Log format (text, json, logfmt)"`
	ConfigFile string `name:"config" short:"c" default:"${config_file}" type:"path" help:"HCL config file; a missing file means defaults"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Simulate SimulateCmd      `cmd:"" help:"Play many games against the dealer and report statistics"`
	Compare  CompareCmd       `cmd:"" help:"Compare agents over the same seeds"`
	Play     PlayCmd          `cmd:"" help:"Play one game and print every action"`
	Serve    ServeCmd         `cmd:"" help:"Serve the environment over websockets"`
	Config   ConfigCmd        `cmd:"" help:"Print the effective configuration"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("buckshot"),
		kong.Description("Shotgun duel environment with a cheating dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Logger builds the process logger from the global flags.
func (g *Globals) Logger() *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	}
	if g.Debug {
		opts.Level = log.DebugLevel
	}
	switch g.LogFormat {
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		opts.Formatter = log.TextFormatter
	}
	return log.NewWithOptions(os.Stderr, opts)
}

// LoadConfig reads and validates the config file.
func (g *Globals) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
