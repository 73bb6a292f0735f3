package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/mogg-backend/internal/api"
	"github.com/mcoot/mogg-backend/internal/config"
	"github.com/mcoot/mogg-backend/internal/factory"
	"github.com/mcoot/mogg-backend/internal/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("MOGG_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Expired rooms are swept until shutdown
	go app.Rooms.Run(ctx)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Rooms:       app.Rooms,
		Leaderboard: app.Leaderboard,
		Profiles:    app.Profiles,
		Storage:     app.Storage,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:      logger,
		Leaderboard: app.Leaderboard,
		StaticDir:   staticDir(cfg.Server.StaticDir, logger),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, api.ServerConfigFrom(cfg), logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return
		}
	}

	logger.Info("server stopped")
}

// staticDir returns dir if it exists, or "" to disable static serving
func staticDir(dir string, logger *slog.Logger) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warn("static directory not found, static files disabled", slog.String("dir", dir))
		return ""
	}
	return dir
}
