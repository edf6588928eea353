package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/audiobox/internal/repositories"
	"github.com/desertthunder/audiobox/internal/server"
	"github.com/desertthunder/audiobox/internal/services"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Server.LogFile != "" {
		fileLogger, err := shared.NewFileLogger(cfg.Server.LogFile)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	favorites := repositories.NewFavoriteRepository(db)

	accounts, err := services.NewAccountService(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	if err != nil {
		return err
	}

	api := server.NewAPI(server.Dependencies{
		Workflows:   engine,
		Accounts:    accounts,
		Verifier:    accounts,
		Preferences: services.NewLibrary(users, favorites),
		Probe:       r.probe,
		Origins:     cmd.StringSlice("origin"),
		Logger:      shared.WithLogger(r.logger, "component", "http"),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg.Server.Addr(), api, r.logger).Run(ctx)
}
