// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/gatehouse-go/internal/config"
	"github.com/olegiv/gatehouse-go/internal/eventlog"
	"github.com/olegiv/gatehouse-go/internal/geoip"
	"github.com/olegiv/gatehouse-go/internal/handler"
	"github.com/olegiv/gatehouse-go/internal/logging"
	"github.com/olegiv/gatehouse-go/internal/middleware"
	"github.com/olegiv/gatehouse-go/internal/session"
	"github.com/olegiv/gatehouse-go/internal/store"
	"github.com/olegiv/gatehouse-go/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("gatehouse %s (commit: %s, built: %s)\n",
			info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := logging.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword, cfg.Peppers); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sessionManager := session.New(db, cfg.SessionLifetime, !cfg.IsDevelopment())

	geo, err := geoip.NewLookup(cfg.GeoIPDBPath)
	if err != nil {
		// Country lookups fail open; captures record an empty country.
		slog.Warn("geoip database unavailable", "error", err)
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing geoip database", "error", err)
		}
	}()

	scheduler := cron.New()
	if geo.IsEnabled() {
		if _, err := scheduler.AddFunc("@daily", func() {
			if err := geo.Reload(); err != nil {
				slog.Warn("geoip reload failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("scheduling geoip reload: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	events := eventlog.NewLogger(db)
	protection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		Threshold: cfg.LoginThreshold,
	})

	accountHandler := handler.NewAccount(db, events, sessionManager, protection, cfg.Peppers)
	adminHandler := handler.NewAdmin(db, events)
	contactHandler := handler.NewContact(db, events, geo)
	healthHandler := handler.NewHealth(db)

	apiLimiter := middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	r.Get("/healthz", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLimiter.Middleware())

		r.Route("/account", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware())
				r.Post("/signup", accountHandler.Signup)
				r.Post("/login", accountHandler.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser(sessionManager, db))
				r.Post("/logout", accountHandler.Logout)
				r.Post("/name", accountHandler.UpdateName)
				r.Post("/password", accountHandler.ChangePassword)
			})
		})

		r.Post("/contact", contactHandler.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireUser(sessionManager, db))
			r.Use(middleware.RequireStaff())

			r.Post("/block", adminHandler.Block)
			r.Post("/unblock", adminHandler.Unblock)
			r.Post("/delete", adminHandler.Delete)
			r.Post("/flag", adminHandler.Flag)
			r.Post("/access", adminHandler.AccessLevel)
			r.Post("/spam", adminHandler.MarkSpam)

			r.Get("/users", adminHandler.ListUsers)
			r.Get("/events", adminHandler.ListEvents)
			r.Get("/bots", adminHandler.ListBots)
			r.Get("/stats", adminHandler.Stats)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env,
			"version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
