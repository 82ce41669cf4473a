// Package cli implements the resumectl command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"resumerefresh/config"
	"resumerefresh/internal/bootstrap"
)

// Config controls where the CLI writes and how it builds the application.
type Config struct {
	OutputWriter io.Writer
	// Open builds the application. Defaults to loading env config and bootstrap.New.
	Open func(ctx context.Context, opts bootstrap.Options) (*bootstrap.App, error)
}

type runtimeState struct {
	open         func(ctx context.Context, opts bootstrap.Options) (*bootstrap.App, error)
	writer       io.Writer
	outputFormat string
}

type runtimeKey struct{}

// DefaultConfig writes to stdout and wires from the environment.
func DefaultConfig() Config {
	return Config{OutputWriter: os.Stdout, Open: openFromEnv}
}

func openFromEnv(ctx context.Context, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLoggerTo(os.Stderr)
	slog.SetDefault(logger)
	return bootstrap.New(ctx, cfg, logger, opts)
}

// NewRootCommand builds the resumectl root command.
func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{open: cfg.Open, writer: cfg.OutputWriter}
	if rt.open == nil {
		rt.open = openFromEnv
	}
	if rt.writer == nil {
		rt.writer = os.Stdout
	}

	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "Send resume refresh emails and manage the mail channel",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "table", "Output format: table, json")
	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))
	root.SetOut(rt.writer)

	root.AddCommand(
		NewSendCommand(),
		NewBulkCommand(),
		NewVerifyCommand(),
		NewMigrateCommand(),
	)
	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}
