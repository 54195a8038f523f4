package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/workspace-console/internal/config"
	"github.com/teemow/workspace-console/internal/logging"
	"github.com/teemow/workspace-console/internal/server"
)

const (
	envConfigDir = "WORKSPACE_CONSOLE_CONFIG_DIR"
	envName      = "WORKSPACE_CONSOLE_ENV"
)

// loadConfig loads the configuration layers and applies the persistent flags on top.
// apply may override more fields from command flags before validation.
func loadConfig(cmd *cobra.Command, opts *globalOptions, apply func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(opts.configDir, opts.env)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if apply != nil {
		apply(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, w)
}

// newCLIContext builds the components for a one-shot command. Logs go to the
// command's error stream so stdout carries only the result.
func newCLIContext(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*server.ServerContext, error) {
	cfg, err := loadConfig(cmd, opts, nil)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return server.NewServerContext(ctx, server.Options{Config: cfg, Logger: logger})
}
