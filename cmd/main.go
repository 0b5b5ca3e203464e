package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/carekeep/internal/shared"
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("CAREKEEP_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "carekeep",
		Usage:    "Offline-tolerant memories, journals, reminders and places for caregivers",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   runner.before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := reportError(logger, os.Stderr, app.Run(ctx, os.Args)); code != 0 {
		runner.Close()
		os.Exit(code)
	}
}

// reportError prints err for the user and returns the process exit code.
func reportError(logger *log.Logger, stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, shared.ErrAuthMissing):
		fmt.Fprintln(stderr, "Not signed in: run `carekeep auth login` first.")
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Error("not implemented", "error", err)
	default:
		logger.Error("application error", "error", err)
	}
	return 1
}
