package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gumballrun/gumballrun/internal/api"
	"github.com/gumballrun/gumballrun/internal/config"
	"github.com/gumballrun/gumballrun/internal/factory"
	"github.com/gumballrun/gumballrun/internal/services/reaper"
	redisstorage "github.com/gumballrun/gumballrun/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config
	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.StorageType,
		MatchDuration: cfg.MatchDuration,
		ReaperConfig: reaper.Config{
			Interval:      cfg.ReaperInterval,
			MaxLobbyAge:   cfg.MaxLobbyAge,
			FinishedGrace: cfg.FinishedGrace,
		},
	}

	if factoryCfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.RoomTTL = cfg.RoomTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start background workers
	go func() {
		if err := app.SubManager.Run(ctx); err != nil {
			logger.Error("subscription manager error", slog.String("error", err.Error()))
			cancel()
		}
	}()
	go app.Reaper.Run(ctx)

	// Create API router and server
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		RoomController: app.RoomController,
		SubManager:     app.SubManager,
		Clock:          app.Clock,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
