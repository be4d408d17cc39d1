package roulette

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chefroulette/chefroulette/internal/config"
	"github.com/chefroulette/chefroulette/internal/observability"
	"github.com/chefroulette/chefroulette/internal/source"
)

var ErrSourceNotConfigured = errors.New("restaurant source is not configured")

type Service struct {
	source    source.Source
	configErr error
	logger    *slog.Logger
}

// NewService builds the service for cfg. A configuration problem does not
// fail construction: it is logged once and reported by every List call, so
// clients get a descriptive 500 instead of a dead endpoint.
func NewService(cfg config.Config, fetcher *source.Fetcher, logger *slog.Logger) *Service {
	src, err := NewSource(cfg, fetcher)
	if err != nil {
		if logger != nil {
			logger.Error("restaurant source misconfigured",
				slog.String("source", string(cfg.Source.Kind)),
				slog.Any("error", err),
			)
		}
		return &Service{configErr: err, logger: logger}
	}
	return &Service{source: src, logger: logger}
}

// NewServiceWithSource wires an explicit source.
func NewServiceWithSource(src source.Source, logger *slog.Logger) *Service {
	if src == nil {
		return &Service{configErr: ErrSourceNotConfigured, logger: logger}
	}
	return &Service{source: src, logger: logger}
}

// Ready reports whether the service can reach for data at all.
func (s *Service) Ready(_ context.Context) error {
	return s.configErr
}

// List fetches the table once, maps it and returns the envelope.
func (s *Service) List(ctx context.Context) (Envelope, error) {
	if s.configErr != nil {
		return Envelope{}, s.configErr
	}

	name := s.source.Name()
	start := time.Now()
	table, err := s.source.FetchTable(ctx)
	observability.ObserveUpstreamFetch(name, fetchOutcome(err), time.Since(start))
	if err != nil {
		return Envelope{}, fmt.Errorf("fetch %s table: %w", name, err)
	}

	result, err := MapTable(table)
	if err != nil {
		return Envelope{}, err
	}
	observability.ObserveRows(name, len(result.Restaurants), result.Dropped)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "restaurants mapped",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("source", name),
			slog.Int("columns", len(table.Columns)),
			slog.Int("rows", len(table.Rows)),
			slog.Int("emitted", len(result.Restaurants)),
			slog.Int("dropped", result.Dropped),
		)
	}

	return Envelope{
		Source:      name,
		Count:       len(result.Restaurants),
		Restaurants: result.Restaurants,
	}, nil
}

func fetchOutcome(err error) string {
	var upstream *source.UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &upstream):
		return "upstream_error"
	default:
		return "error"
	}
}
