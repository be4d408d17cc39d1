package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/chefroulette/chefroulette/internal/auth"
	"github.com/chefroulette/chefroulette/internal/config"
	"github.com/chefroulette/chefroulette/internal/lambdafn"
	"github.com/chefroulette/chefroulette/internal/observability"
	"github.com/chefroulette/chefroulette/internal/roulette"
	"github.com/chefroulette/chefroulette/internal/source"
)

func main() {
	cfg, err := config.LoadFromEnv("chefroulette-lambda")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	handler := &lambdafn.Handler{
		Restaurants:    roulette.NewService(cfg, source.NewFetcher(cfg.Upstream.Timeout), logger),
		Renderer:       roulette.NewRenderer(cfg),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticTokenValidator(cfg.Auth.StaticTokens)
		if err != nil {
			logger.Error("failed to parse static auth tokens", slog.Any("error", err))
			os.Exit(1)
		}
		handler.Validator = validator
	}

	lambda.Start(handler.Handle)
}
