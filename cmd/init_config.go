package cmd

import (
	"log/slog"

	"github.com/lepinkainen/bibly/internal/config"
)

// InitConfigCmd writes the default configuration to disk
type InitConfigCmd struct {
	Path string `arg:"" optional:"" help:"Where to write the file" default:"config.yaml"`
}

func (c *InitConfigCmd) Run() error {
	if err := config.WriteDefault(c.Path); err != nil {
		return err
	}
	slog.Info("Config file written", "path", c.Path)
	return nil
}
