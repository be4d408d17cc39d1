package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chefroulette/chefroulette/internal/observability"
)

type contextKey string

const identityKey contextKey = "auth_identity"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// Check authenticates a request given a header getter. It returns the
// rejection message when the token is missing or unknown.
func Check(ctx context.Context, validator TokenValidator, get func(string) string) (Identity, string, bool) {
	token := ExtractToken(get)
	if token == "" {
		return Identity{}, "missing bearer token", false
	}
	identity, ok := validator.Validate(ctx, token)
	if !ok {
		return Identity{}, "invalid bearer token", false
	}
	return identity, "", true
}

func Middleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, message, ok := Check(r.Context(), validator, r.Header.Get)
			if !ok {
				if logger != nil {
					logger.WarnContext(r.Context(), "authentication failed",
						slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
						slog.String("path", r.URL.Path),
						slog.String("reason", message),
					)
				}
				writeUnauthorized(w, r, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// ExtractToken reads X-API-Key first, then an Authorization bearer token.
func ExtractToken(get func(string) string) string {
	if key := strings.TrimSpace(get("X-API-Key")); key != "" {
		return key
	}
	authorization := strings.TrimSpace(get("Authorization"))
	if authorization == "" {
		return ""
	}
	const bearerPrefix = "Bearer "
	if len(authorization) > len(bearerPrefix) && strings.EqualFold(authorization[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(authorization[len(bearerPrefix):])
	}
	return ""
}

// UnauthorizedBody is the 401 payload shared by the HTTP and Lambda transports.
func UnauthorizedBody(ctx context.Context, message string) map[string]any {
	return map[string]any{
		"error":      message,
		"error_code": "UNAUTHORIZED",
		"trace_id":   observability.TraceIDFromContext(ctx),
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="chefroulette"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(UnauthorizedBody(r.Context(), message))
}
