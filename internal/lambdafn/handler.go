// Package lambdafn serves the restaurant feed as an API Gateway proxy
// function, sharing response assembly with the HTTP server.
package lambdafn

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/chefroulette/chefroulette/internal/auth"
	"github.com/chefroulette/chefroulette/internal/observability"
	"github.com/chefroulette/chefroulette/internal/roulette"
)

const route = "lambda:restaurants"

type RestaurantLister interface {
	List(ctx context.Context) (roulette.Envelope, error)
}

type Handler struct {
	Restaurants    RestaurantLister
	Renderer       roulette.Renderer
	Validator      auth.TokenValidator
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Handle never returns a Go error: every failure is rendered as a proxy
// response so API Gateway passes the JSON body through.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	get := headerGetter(req)

	traceID := observability.IncomingTraceID(get)
	if traceID == "" {
		traceID = req.RequestContext.RequestID
	}
	if traceID == "" {
		traceID = observability.NewTraceID()
	}
	ctx = observability.ContextWithTraceID(ctx, traceID)

	resp := h.respond(ctx, req, get)
	resp.Headers[observability.TraceHeader] = traceID
	if origin := h.allowOrigin(get("Origin")); origin != "" {
		resp.Headers["Access-Control-Allow-Origin"] = origin
		resp.Headers["Access-Control-Expose-Headers"] = observability.TraceHeader
	}

	observability.ObserveHTTPRequest(req.HTTPMethod, route, resp.StatusCode, time.Since(start))
	if h.Logger != nil {
		level := slog.LevelInfo
		if resp.StatusCode >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		h.Logger.LogAttrs(ctx, level, "lambda_request",
			slog.String("trace_id", traceID),
			slog.String("method", req.HTTPMethod),
			slog.String("path", req.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("duration", time.Since(start).String()),
		)
	}
	return resp, nil
}

func (h *Handler) respond(ctx context.Context, req events.APIGatewayProxyRequest, get func(string) string) events.APIGatewayProxyResponse {
	switch req.HTTPMethod {
	case http.MethodOptions:
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusNoContent,
			Headers: map[string]string{
				"Access-Control-Allow-Methods": "GET, OPTIONS",
				"Access-Control-Allow-Headers": "Authorization, X-API-Key, Content-Type, " + observability.TraceHeader,
			},
		}
	case http.MethodGet, "":
	default:
		return encode(roulette.Response{
			Status:  http.StatusMethodNotAllowed,
			Headers: map[string]string{"Content-Type": "application/json", "Allow": "GET, OPTIONS"},
			Body: map[string]any{
				"error":      "method not allowed",
				"error_code": "METHOD_NOT_ALLOWED",
				"trace_id":   observability.TraceIDFromContext(ctx),
			},
		})
	}

	if h.Validator != nil {
		if _, message, ok := auth.Check(ctx, h.Validator, get); !ok {
			return encode(roulette.Response{
				Status:  http.StatusUnauthorized,
				Headers: map[string]string{"Content-Type": "application/json"},
				Body:    auth.UnauthorizedBody(ctx, message),
			})
		}
	}

	envelope, err := h.Restaurants.List(ctx)
	if err != nil && h.Logger != nil {
		h.Logger.ErrorContext(ctx, "restaurant listing failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.Any("error", err),
		)
	}
	return encode(h.Renderer.Render(ctx, envelope, err))
}

func (h *Handler) allowOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	for _, allowed := range h.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func encode(response roulette.Response) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(response.Headers)+2)
	for key, value := range response.Headers {
		headers[key] = value
	}
	body, err := json.Marshal(response.Body)
	if err != nil {
		headers["Content-Type"] = "application/json"
		delete(headers, "Cache-Control")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"Unexpected error","error_code":"UNEXPECTED"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: response.Status,
		Headers:    headers,
		Body:       string(body),
	}
}

// headerGetter looks headers up case-insensitively; API Gateway forwards
// them with whatever casing the client used.
func headerGetter(req events.APIGatewayProxyRequest) func(string) string {
	return func(name string) string {
		for key, value := range req.Headers {
			if strings.EqualFold(key, name) {
				return value
			}
		}
		for key, values := range req.MultiValueHeaders {
			if strings.EqualFold(key, name) && len(values) > 0 {
				return values[0]
			}
		}
		return ""
	}
}
