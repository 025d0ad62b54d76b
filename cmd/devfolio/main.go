// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the devfolio server.
// It loads configuration, connects to the optional backing services, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devfolio/internal/blog"
	"devfolio/internal/cache"
	"devfolio/internal/config"
	"devfolio/internal/contentapi"
	"devfolio/internal/database"
	"devfolio/internal/feed"
	"devfolio/internal/handlers"
	"devfolio/internal/middleware"
	"devfolio/internal/render"
	"devfolio/internal/revalidate"
	"devfolio/internal/router"
	"devfolio/internal/search"
	"devfolio/internal/storage"
	"devfolio/internal/store"
)

// feedMirrorDelay collapses bursts of webhook deliveries into one upload.
const feedMirrorDelay = 5 * time.Second

func main() {
	// Load configuration from the environment (and .env when present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"publication", cfg.PublicationHost,
	)
	if cfg.PublicationHost == "" {
		slog.Warn("HASHNODE_PUBLICATION_HOST is not set; blog pages will report upstream errors")
	}

	// Content platform client and data access.
	client := contentapi.New(contentapi.Config{
		Endpoint:    cfg.HashnodeAPIURL,
		AccessToken: cfg.HashnodeAccessToken,
		Policy:      contentapi.DefaultPolicy(),
	})
	blogService := blog.NewService(client, cfg.PublicationHost)

	// Page cache: shared in Valkey when configured, in-process otherwise.
	var pages cache.Store
	if cfg.HasValkey() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		pages = cache.NewValkeyStore(valkeyClient, cfg.PageCacheTTL)
		slog.Info("page cache: valkey", "host", cfg.ValkeyHost, "ttl", cfg.PageCacheTTL)
	} else {
		pages = cache.NewMemoryStore(cfg.PageCacheTTL)
		slog.Info("page cache: in-memory", "ttl", cfg.PageCacheTTL)
	}

	// PostgreSQL (optional): revalidation audit log and newsletter subscribers.
	var (
		audit       revalidate.Auditor
		subscribers handlers.Subscriber
	)
	if cfg.HasDatabase() {
		db := mustOpenDatabase(cfg.DSN())
		defer db.Close()
		audit = store.NewRevalidationLogStore(db)
		subscribers = store.NewSubscriberStore(db)
	} else {
		slog.Warn("database not configured; revalidations are not audited and newsletter sign-ups are not stored")
	}

	feeds := feed.NewGenerator(blogService, feed.Site{
		URL:         cfg.SiteURL,
		Name:        cfg.SiteName,
		Description: cfg.SiteDescription,
		Author:      cfg.SiteAuthor,
		Language:    "en",
	})

	// S3-compatible feed mirror (optional).
	var (
		mirror    *feed.Mirror
		scheduler revalidate.Scheduler
	)
	if cfg.HasFeedMirror() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		mirror = feed.NewMirror(feeds, storageClient, search.NewDebouncer(feedMirrorDelay, nil))
		scheduler = mirror
		slog.Info("feed mirror enabled", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	}

	renderer, err := render.New(render.Site{
		Name:            cfg.SiteName,
		URL:             cfg.SiteURL,
		Author:          cfg.SiteAuthor,
		Description:     cfg.SiteDescription,
		GAMeasurementID: cfg.GAMeasurementID,
	})
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	publicHandlers := handlers.NewPublic(handlers.Config{
		Blog:        blogService,
		Renderer:    renderer,
		Cache:       pages,
		Feeds:       feeds,
		Subscribers: subscribers,
		SiteURL:     cfg.SiteURL,
	})
	revalidateHandler := revalidate.New(revalidate.Config{
		Invalidator:      pages,
		WebhookSecret:    cfg.WebhookSecret,
		RevalidateSecret: cfg.RevalidateSecret,
		Audit:            audit,
		Mirror:           scheduler,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Public:         publicHandlers,
		Revalidate:     revalidateHandler,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSOrigins,
	})

	// WriteTimeout covers a full retry cycle against the content API.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if mirror != nil && mirror.Flush() {
		slog.Info("pending feed mirror sync flushed")
	}

	slog.Info("server stopped gracefully")
}

// mustOpenDatabase connects to PostgreSQL and applies pending migrations.
func mustOpenDatabase(dsn string) *sql.DB {
	db, err := database.Connect(dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")
	return db
}
