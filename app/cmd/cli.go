package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-classifieds/app/configs"
	"github.com/Rakhulsr/go-classifieds/app/db/seeders"
	"github.com/Rakhulsr/go-classifieds/app/models/migrations"
	"github.com/Rakhulsr/go-classifieds/app/routes"
	"github.com/Rakhulsr/go-classifieds/app/storage"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// RunCli runs the command line. With no sub-command it serves the API.
func RunCli(ctx context.Context, args []string) error {
	env, err := configs.LoadEnv()
	if err != nil {
		return err
	}
	logger := configs.NewLogger(env.Debug)

	connect := func() (*gorm.DB, error) {
		return configs.OpenConnection(env, logger)
	}

	cmd := &cli.Command{
		Name:  "ads",
		Usage: "Classified ads listing service",
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, env, logger, connect)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the HTTP API",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, env, logger, connect)
				},
			},
			{
				Name:  "migrate",
				Usage: "Create or update the database tables",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := connect()
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					logger.Info().Msg("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Fill the database with fake categories, users and ads",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "categories", Value: seeders.DefaultCounts.Categories, Usage: "number of categories"},
					&cli.IntFlag{Name: "users", Value: seeders.DefaultCounts.Users, Usage: "number of users"},
					&cli.IntFlag{Name: "ads-per-user", Value: seeders.DefaultCounts.AdsPerUser, Usage: "ads created for each user"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := connect()
					if err != nil {
						return err
					}
					counts := seeders.Counts{
						Categories: int(c.Int("categories")),
						Users:      int(c.Int("users")),
						AdsPerUser: int(c.Int("ads-per-user")),
					}
					return seeders.DBSeed(ctx, db, counts, logger)
				},
			},
		},
	}

	return cmd.Run(ctx, args)
}

func serve(ctx context.Context, env configs.ENV, logger zerolog.Logger, connect func() (*gorm.DB, error)) error {
	db, err := connect()
	if err != nil {
		return err
	}

	store := storage.NewLocalStore(env.MediaRoot, env.MediaURL)

	server := &http.Server{
		Addr:         env.Port,
		Handler:      routes.NewRouter(db, env, store, logger),
		ReadTimeout:  env.ReadTimeoutDuration(),
		WriteTimeout: env.WriteTimeoutDuration(),
		IdleTimeout:  env.IdleTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Bool("debug", env.Debug).Msg("server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
