// SPDX-License-Identifier: MIT

// Command contactd runs the contacts API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/contactbook/contactd/internal/api"
	"github.com/contactbook/contactd/internal/auth"
	"github.com/contactbook/contactd/internal/avatar"
	"github.com/contactbook/contactd/internal/cache"
	"github.com/contactbook/contactd/internal/config"
	"github.com/contactbook/contactd/internal/health"
	xlog "github.com/contactbook/contactd/internal/log"
	"github.com/contactbook/contactd/internal/mailer"
	"github.com/contactbook/contactd/internal/store"
	"github.com/contactbook/contactd/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	verifyDB := flag.String("verify-db", "", "verify database integrity (quick|full) and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("contactd %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.BuildDate)
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	xlog.Configure(xlog.Config{Level: "info", Service: "contactd", Version: version.Version})
	logger := xlog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version.Version,
	})

	if *verifyDB != "" {
		os.Exit(runVerifyDB(logger, cfg.DBPath, *verifyDB))
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("addr", cfg.ListenAddr).
		Str("db_path", cfg.DBPath).
		Msg("starting contactd")

	db, err := store.Open(cfg.DBPath, store.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Str("event", "db.open_failed").Msg("failed to open database")
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Str("event", "db.migrate_failed").Msg("failed to migrate database")
	}

	healthMgr := health.NewManager(version.Version)
	healthMgr.RegisterChecker(health.NewDBChecker(db))

	// Cache: Redis when configured, in-memory otherwise.
	var contactCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, xlog.WithComponent("cache"))
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
			contactCache = cache.NewMemory(time.Minute)
		} else {
			defer func() { _ = redisCache.Close() }()
			healthMgr.RegisterChecker(health.NewPingChecker("redis", redisCache.HealthCheck))
			contactCache = redisCache
		}
	} else {
		contactCache = cache.NewMemory(time.Minute)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.VerifyTokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize token manager")
	}

	// Outbound mail is optional; without a mail host users are created
	// unverified and no mail is sent.
	var dispatcher *mailer.Dispatcher
	if cfg.MailHost != "" {
		sender := mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
			StartTLS: cfg.MailStartTLS,
		})
		dispatcher = mailer.NewDispatcher(sender, 64, xlog.WithComponent("mailer"))
		dispatcher.Start()
		defer dispatcher.Close()
		logger.Info().Str("host", cfg.MailHost).Msg("→ Mail: enabled")
	} else {
		logger.Warn().Msg("→ Mail: NOT configured, verification mails disabled")
	}

	// Avatar storage: Cloudinary when configured, local disk otherwise.
	var (
		uploader  avatar.Uploader
		avatarDir string
	)
	if cfg.CloudinaryCloud != "" {
		uploader, err = avatar.NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize Cloudinary uploader")
		}
		logger.Info().Str("cloud", cfg.CloudinaryCloud).Msg("→ Avatars: Cloudinary")
	} else {
		local, err := avatar.NewLocal(cfg.AvatarDir, cfg.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize local avatar store")
		}
		uploader = local
		avatarDir = local.Dir()
		logger.Info().Str("dir", avatarDir).Msg("→ Avatars: local directory")
	}

	srv := api.New(cfg, api.Deps{
		Contacts:  store.NewContactStore(db),
		Users:     store.NewUserStore(db),
		Tokens:    tokens,
		Cache:     contactCache,
		Mail:      dispatcher,
		Uploader:  uploader,
		Health:    healthMgr,
		AvatarDir: avatarDir,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener started")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("API listener started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api listener: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener started")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
	}

	// gctx ends on SIGINT/SIGTERM or when either listener fails, so one
	// broken listener tears down the whole process cleanly.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str("event", "shutdown.begin").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
	logger.Info().Msg("server exiting")
}

// runVerifyDB checks database integrity and reports the result.
func runVerifyDB(logger zerolog.Logger, path, mode string) int {
	if mode != "quick" && mode != "full" {
		logger.Error().Str("mode", mode).Msg("verify-db mode must be quick or full")
		return 2
	}
	problems, err := store.VerifyIntegrity(path, mode)
	if err != nil {
		logger.Error().Err(err).Str("db_path", path).Msg("integrity check failed to run")
		return 2
	}
	if len(problems) > 0 {
		for _, p := range problems {
			logger.Error().Str("db_path", path).Str("problem", p).Msg("integrity violation")
		}
		return 1
	}
	logger.Info().Str("db_path", path).Str("mode", mode).Msg("database integrity ok")
	return 0
}
