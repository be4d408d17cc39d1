package api

import (
	"log/slog"
	"net/http"

	"github.com/chefroulette/chefroulette/internal/observability"
	"github.com/chefroulette/chefroulette/internal/roulette"
)

func handleRestaurants(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Restaurants == nil {
		writeError(r.Context(), w, http.StatusInternalServerError, roulette.CodeUnexpected, "restaurant service is not configured")
		return
	}

	envelope, err := deps.Restaurants.List(r.Context())
	response := deps.Renderer.Render(r.Context(), envelope, err)
	if err != nil && deps.Logger != nil {
		deps.Logger.ErrorContext(r.Context(), "restaurant listing failed",
			slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
			slog.Int("status", response.Status),
			slog.Any("error", err),
		)
	}
	writeResponse(w, response)
}

func writeResponse(w http.ResponseWriter, response roulette.Response) {
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	writeJSON(w, response.Status, response.Body)
}
