package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chefroulette/chefroulette/internal/api"
	"github.com/chefroulette/chefroulette/internal/auth"
	"github.com/chefroulette/chefroulette/internal/config"
	"github.com/chefroulette/chefroulette/internal/observability"
	"github.com/chefroulette/chefroulette/internal/roulette"
	"github.com/chefroulette/chefroulette/internal/source"
)

func main() {
	lookup, err := config.DotEnvLookup(".env")
	if err != nil {
		slog.Error("failed to read .env", slog.Any("error", err))
		os.Exit(1)
	}
	cfg, err := config.Load("chefroulette-api", lookup)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	service := roulette.NewService(cfg, source.NewFetcher(cfg.Upstream.Timeout), logger)

	deps := api.Dependencies{
		Logger:            logger,
		Restaurants:       service,
		Renderer:          roulette.NewRenderer(cfg),
		Readiness:         service.Ready,
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticTokenValidator(cfg.Auth.StaticTokens)
		if err != nil {
			logger.Error("failed to parse static auth tokens", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
