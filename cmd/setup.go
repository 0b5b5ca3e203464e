package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
)

// SetupConfig writes the embedded example config to --config unless the file already exists.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if _, err := os.Stat(path); err == nil {
		r.logger.Info("config file already exists", "path", path)
		return r.writePlain("Config already present at %s\n", path)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Config written to %s\n", path)
}

// SetupDatabase initializes the local store database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Storage.Path)

	if _, err := r.database(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Storage.Path)
	return r.writePlain("✓ Local store ready at %s\n", r.config.Storage.Path)
}

// SetupMigrateLegacy copies un-namespaced keys into the signed-in identity's namespace.
//
// Each legacy key is claimed by the first identity that migrates it.
func (r *Runner) SetupMigrateLegacy(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.authProvider().Session(ctx); err != nil {
		return err
	}

	store, err := r.store()
	if err != nil {
		return err
	}

	names := legacyKeys()
	copied, err := store.MigrateOldData(names...)
	if err != nil {
		return err
	}

	r.logger.Info("legacy migration finished", "namespace", store.Namespace(), "copied", copied)
	if copied == 0 {
		return r.writePlain("No legacy data to migrate.\n")
	}
	return r.writePlain("✓ Migrated %d legacy key(s) into %s\n", copied, store.Namespace())
}

// legacyKeys lists every dataset key and its seeded flag.
func legacyKeys() []string {
	names := make([]string, 0, len(models.Datasets)*2)
	for _, name := range models.Datasets {
		names = append(names, name, syncer.SeededKeyFor(name))
	}
	return names
}
