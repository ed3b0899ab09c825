// Package main is the entry point for the vintage photo blog server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vintageblog/internal/cache"
	"vintageblog/internal/config"
	"vintageblog/internal/database"
	"vintageblog/internal/handlers"
	"vintageblog/internal/render"
	"vintageblog/internal/router"
	"vintageblog/internal/session"
	"vintageblog/internal/storage"
	"vintageblog/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the initial admin account and default settings (no-op once
	// they exist).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis (sessions + page cache).
	redisClient, err := cache.Connect(cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessionStore := session.NewStore(redisClient)

	// Parse all page templates up front so errors surface before the
	// server accepts traffic.
	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Local disk storage for featured images and avatars.
	uploads, err := storage.NewLocal(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)
	categoryStore := store.NewCategoryStore(db)
	settingStore := store.NewSiteSettingStore(db)

	// Full-page HTML cache for anonymous traffic.
	pageCache := cache.NewPageCache(redisClient, cache.DefaultPageTTL)

	// Handler groups.
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, uploads)
	publicHandlers := handlers.NewPublic(renderer, postStore, commentStore, categoryStore, settingStore, pageCache)
	postHandlers := handlers.NewPosts(renderer, postStore, categoryStore, uploads, pageCache)
	adminHandlers := handlers.NewAdmin(renderer, sessionStore, postStore, commentStore, categoryStore, userStore, settingStore, pageCache)

	r := router.New(sessionStore, settingStore, uploads, authHandlers, publicHandlers, postHandlers, adminHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown
	// signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain
	// connections.
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

	slog.Info("server stopped gracefully")
}
