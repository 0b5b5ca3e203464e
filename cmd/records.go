package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/carekeep/internal/formatter"
	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
)

func isStorageError(err error) bool {
	return errors.Is(err, shared.ErrLocalStorage)
}

// parseSet turns repeated key=value assignments into fields. Values that parse as JSON keep
// their JSON type, anything else is a string.
func parseSet(assignments []string) (models.Fields, error) {
	fields := models.Fields{}
	for _, a := range assignments {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q is not key=value", shared.ErrInvalidArgument, a)
		}

		var value any
		if err := json.Unmarshal([]byte(v), &value); err != nil {
			value = v
		}
		fields[k] = value
	}
	return fields, nil
}

// requireArg returns positional argument n, named name in errors.
func requireArg(cmd *cli.Command, n int, name string) (string, error) {
	v := strings.TrimSpace(cmd.Args().Get(n))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// loadArg loads the dataset named by the "dataset" argument.
func (r *Runner) loadArg(ctx context.Context, cmd *cli.Command) (syncer.Handle, error) {
	dataset, err := requireArg(cmd, 0, "dataset")
	if err != nil {
		return nil, err
	}
	return r.load(ctx, dataset)
}

// Sync loads every dataset concurrently and reports how each one was served.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.store(); err != nil {
		return err
	}
	r.remoteClient()

	var mu sync.Mutex
	results := make(map[string]syncer.Handle, len(models.Datasets))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range models.Datasets {
		g.Go(func() error {
			h, err := r.load(gctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			results[name] = h
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, name := range models.Datasets {
		h := results[name]
		if err := r.writePlain("%-10s %d records (%s)\n", name+":", h.Stats().Total, h.Mode()); err != nil {
			return err
		}
	}
	return nil
}

// List renders the records of a dataset in the requested format.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	h, err := r.loadArg(ctx, cmd)
	if err != nil {
		return err
	}

	data, err := formatter.Render(format, h.Name(), h.Entries())
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", h.Name(), err)
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, data); err != nil {
			return err
		}
		r.logger.Info("exported records", "dataset", h.Name(), "path", path, "count", len(h.Entries()))
		return r.writePlain("✓ Wrote %d %s to %s\n", len(h.Entries()), h.Name(), path)
	}
	return r.writeBytes(data)
}

// Add creates a record from --set assignments.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	fields, err := parseSet(cmd.StringSlice("set"))
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: at least one --set key=value", shared.ErrMissingArgument)
	}

	h, err := r.loadArg(ctx, cmd)
	if err != nil {
		return err
	}

	rec, err := h.CreateFields(ctx, fields)
	if rec == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("record created but not saved on this device", "id", rec.ID(), "error", err)
	}

	if shared.IsLocalID(rec.ID()) {
		return r.writePlain("✓ Added %s %s (local only, not sent)\n", h.Name(), rec.ID())
	}
	return r.writePlain("✓ Added %s %s\n", h.Name(), rec.ID())
}

// Edit applies --set assignments on top of an existing record.
func (r *Runner) Edit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 1, "id")
	if err != nil {
		return err
	}
	fields, err := parseSet(cmd.StringSlice("set"))
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: at least one --set key=value", shared.ErrMissingArgument)
	}

	h, err := r.loadArg(ctx, cmd)
	if err != nil {
		return err
	}

	rec, err := h.UpdateFields(ctx, id, fields)
	if rec == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("record updated but not saved on this device", "id", id, "error", err)
	}
	return r.writePlain("✓ Updated %s %s (%s)\n", h.Name(), rec.ID(), h.Mode())
}

// Remove deletes a record locally and, when reachable, on the collaborator.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 1, "id")
	if err != nil {
		return err
	}

	h, err := r.loadArg(ctx, cmd)
	if err != nil {
		return err
	}

	if _, ok := h.Find(id); !ok {
		r.logger.Debug("record not cached, deleting anyway", "dataset", h.Name(), "id", id)
	}
	if err := h.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s %s (%s)\n", h.Name(), id, h.Mode())
}

// Stats prints totals derived from the cache.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	h, err := r.loadArg(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(h.Stats(), true)
	}
	return r.writeBytes(formatter.ExportStats(h.Name(), h.Mode(), h.Stats()))
}

// Open shows a cached location on OpenStreetMap.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 0, "id")
	if err != nil {
		return err
	}

	h, err := r.load(ctx, models.DatasetLocations)
	if err != nil {
		return err
	}

	rec, ok := h.Find(id)
	if !ok {
		return fmt.Errorf("%w: location %q", shared.ErrNotFound, id)
	}
	loc, ok := rec.(models.Location)
	if !ok {
		return fmt.Errorf("%w: %s is not a location", shared.ErrInvalidArgument, id)
	}

	link := loc.MapURL()
	if cmd.Bool("print") {
		return r.writePlain("%s\n", link)
	}
	if err := r.browse(link); err != nil {
		return err
	}
	return r.writePlain("✓ Opened %s in your browser\n", loc.Label)
}
