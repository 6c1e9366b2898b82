package main

import (
	"fmt"
	"os"
)

// ConfigCmd prints the effective configuration as HCL, or just validates it.
type ConfigCmd struct {
	Check bool `help:"Only validate the config file"`
}

func (c *ConfigCmd) Run(g *Globals) error {
	cfg, err := g.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s: %w", g.ConfigFile, err)
	}
	if c.Check {
		g.Logger().Info("Config is valid", "file", g.ConfigFile)
		return nil
	}
	_, err = os.Stdout.Write(cfg.HCL())
	return err
}
