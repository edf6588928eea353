package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// With --status it only reports, with --rollback it reverts the latest applied migration.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("opening database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, max(r.config.Database.MaxOpenConns, 1), max(r.config.Database.MaxIdleConns, 1))

	switch {
	case cmd.Bool("status"):
	case cmd.Bool("rollback"):
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	default:
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	r.writePlainHeader("Database: " + path)
	for _, s := range states {
		mark := " "
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("[%s] %04d %s\n", mark, s.Version, s.Name)
	}
	return nil
}

// SetupConfig writes the built-in config template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			r.writePlain("Config already exists at %s, leaving it untouched\n", path)
			return nil
		}
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlain("Set credentials.spotify.client_id/client_secret and auth.jwt_secret, or export SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and JWT_SECRET.\n")
	return nil
}
