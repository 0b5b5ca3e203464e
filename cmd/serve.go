package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/carekeep/internal/server"
	"github.com/desertthunder/carekeep/internal/shared"
)

const defaultSecret = "change-me"

// Serve runs the reference collaborator until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cfg.JWTSecret == "" {
		return fmt.Errorf("%w: server.jwt_secret", shared.ErrInvalidConfig)
	}
	if cfg.JWTSecret == defaultSecret {
		r.logger.Warn("server.jwt_secret is the example value; tokens are forgeable")
	}

	db, err := shared.OpenMigrated(shared.ExpandPath(cfg.DatabasePath), r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open collaborator database: %w", err)
	}
	defer db.Close()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.ListenAddr()
	}

	srv := server.New(db, server.Options{
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: time.Duration(cfg.TokenTTLHour) * time.Hour,
		Logger:   shared.WithLogger(r.logger, "component", "server"),
	})
	return srv.ListenAndServe(ctx, addr)
}
