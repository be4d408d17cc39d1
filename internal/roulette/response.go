package roulette

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chefroulette/chefroulette/internal/config"
	"github.com/chefroulette/chefroulette/internal/observability"
	"github.com/chefroulette/chefroulette/internal/source"
)

const (
	CodeConfigMissing  = "CONFIG_MISSING"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeMissingColumns = "MISSING_COLUMNS"
	CodeUnexpected     = "UNEXPECTED"
)

// Response is a transport-neutral HTTP answer.
type Response struct {
	Status  int
	Headers map[string]string
	Body    any
}

// Renderer turns List results into responses.
type Renderer struct {
	CacheMaxAge time.Duration
}

func NewRenderer(cfg config.Config) Renderer {
	return Renderer{CacheMaxAge: cfg.Response.CacheMaxAge}
}

func (r Renderer) cacheControl() string {
	return fmt.Sprintf("public, max-age=%d", int(r.CacheMaxAge/time.Second))
}

// Render builds the success envelope or classifies err. Only successful
// responses carry Cache-Control.
func (r Renderer) Render(ctx context.Context, envelope Envelope, err error) Response {
	if err == nil {
		if envelope.Restaurants == nil {
			envelope.Restaurants = []Restaurant{}
		}
		return Response{
			Status: http.StatusOK,
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Cache-Control": r.cacheControl(),
			},
			Body: envelope,
		}
	}

	status, body := ErrorBody(err)
	body["trace_id"] = observability.TraceIDFromContext(ctx)
	return Response{
		Status:  status,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}
}

// ErrorBody classifies err into a status and a body carrying "error" plus
// diagnostics.
func ErrorBody(err error) (int, map[string]any) {
	var missingEnv *config.MissingEnvError
	var upstream *source.UpstreamError
	var missingColumns *MissingColumnsError

	switch {
	case errors.As(err, &missingEnv):
		body := map[string]any{
			"error":      missingEnv.Error(),
			"error_code": CodeConfigMissing,
			"missing":    missingEnv.Vars,
		}
		for key, value := range missingEnv.Diagnostics {
			body[key] = value
		}
		return http.StatusInternalServerError, body
	case errors.As(err, &upstream):
		return upstream.ResponseStatus(), map[string]any{
			"error":      upstream.Message,
			"error_code": CodeUpstream,
			"source":     upstream.Source,
			"status":     upstream.Status,
			"statusText": upstream.StatusText,
			"urlUsed":    upstream.URL,
			"details":    upstream.Details,
		}
	case errors.As(err, &missingColumns):
		fields := make([]string, 0, len(missingColumns.Missing))
		for _, field := range missingColumns.Missing {
			fields = append(fields, string(field))
		}
		return http.StatusInternalServerError, map[string]any{
			"error":           missingColumns.Error(),
			"error_code":      CodeMissingColumns,
			"missingFields":   fields,
			"detectedColumns": missingColumns.Detected,
		}
	default:
		return http.StatusInternalServerError, map[string]any{
			"error":      "Unexpected error",
			"error_code": CodeUnexpected,
			"details":    err.Error(),
		}
	}
}
