// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/api"
	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/config"
	"github.com/tomtom215/zero2prod/internal/database"
	"github.com/tomtom215/zero2prod/internal/distlock"
	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/newsletter"
	"github.com/tomtom215/zero2prod/internal/newsletter/delivery"
	"github.com/tomtom215/zero2prod/internal/supervisor"
	"github.com/tomtom215/zero2prod/internal/supervisor/services"
)

func main() {
	seedUser := flag.String("seed-user", "", "create or update a publisher account, formatted username:password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	if err := run(cfg, logger, *seedUser); err != nil {
		logger.Fatal().Err(err).Msg("Server exited with error")
	}
	logger.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // Sequential startup wiring
func run(cfg *config.Config, logger zerolog.Logger, seedUser string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("base_url", cfg.App.BaseURL).
		Str("email_provider", cfg.Email.Provider).
		Msg("Starting zero2prod")

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()

	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params())
	if seedUser != "" {
		if err := seedPublisher(ctx, db, hasher, seedUser, logger); err != nil {
			return err
		}
	}

	var locker distlock.Locker
	if cfg.Security.PublishLockEnabled {
		var redisClient *redis.Client
		if cfg.Redis.URL != "" {
			opts, err := redis.ParseURL(cfg.Redis.URL)
			if err != nil {
				return fmt.Errorf("invalid REDIS_URL: %w", err)
			}
			redisClient = redis.NewClient(opts)
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Error().Err(err).Msg("Error closing redis client")
				}
			}()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Warn().Err(err).Msg("Redis not reachable yet, publishes run unlocked until it is")
			}
		}
		locker = distlock.NewLocker(redisClient, db.Conn(), cfg.Security.PublishLockTTL)
		logger.Info().Str("backend", locker.Backend()).Msg("Publish lock backend selected")
	}

	channel, err := delivery.NewChannel(ctx, &cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize email channel: %w", err)
	}

	pool := auth.NewVerifierPool(cfg.Security.HashWorkers, hasher)
	defer pool.Close()
	validator := auth.NewCredentialValidator(db, pool, logger)

	handler, err := api.NewHandler(api.HandlerDeps{
		Registrar: newsletter.NewRegistrar(db, channel, newsletter.NewTemplateEngine(), cfg.App.BaseURL),
		Confirmer: newsletter.NewConfirmer(db),
		Publisher: newsletter.NewPublisher(validator, db, delivery.NewManager(channel), locker),
		Login:     validator,
		Flash:     api.NewFlashSigner(cfg.Security.HMACSecret),
	})
	if err != nil {
		return fmt.Errorf("failed to build handlers: %w", err)
	}
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg), logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + supervisor.DefaultTreeConfig().ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.Addr(), cfg.Server.ShutdownTimeout, logger))

	logger.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}
	return nil
}

// seedPublisher parses "username:password" and upserts the account.
func seedPublisher(ctx context.Context, db *database.DB, hasher *auth.PasswordHasher, pair string, logger zerolog.Logger) error {
	username, password, ok := strings.Cut(pair, ":")
	if !ok || username == "" || password == "" {
		return errors.New("-seed-user must be formatted username:password")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	id, err := db.UpsertUser(ctx, username, hash)
	if err != nil {
		return fmt.Errorf("failed to seed publisher: %w", err)
	}
	logger.Info().
		Str("user_id", id.String()).
		Str("username", logging.SanitizeUsername(username)).
		Msg("Publisher account seeded")
	return nil
}
