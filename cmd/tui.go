package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/carekeep/internal/localstore"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
	"github.com/desertthunder/carekeep/internal/ui"
)

// TUI launches the interactive browser for one dataset.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	dataset, err := requireArg(cmd, 0, "dataset")
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	events := make(chan syncer.Event, 64)
	h, err := r.open(dataset, events)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := ui.Options{Events: events}
	if path := r.config.Storage.Path; path != "" && path != ":memory:" {
		changes := make(chan struct{}, 1)
		opts.Changes = changes
		go r.watchStore(ctx, shared.ExpandPath(path), changes)
	}

	model := ui.NewModel(ctx, h, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// watchStore signals changes whenever the local store file is written. Pending signals coalesce.
func (r *Runner) watchStore(ctx context.Context, path string, changes chan<- struct{}) {
	err := localstore.Watch(ctx, path, func(fsnotify.Event) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		r.logger.Warn("local store watch stopped", "path", path, "error", err)
	}
}
