// Package middleware holds the HTTP middleware of the voicegate server.
//
// Cross-cutting wrappers (recovery, request IDs, CORS, body limits, rate
// limiting and request logging) are plain net/http Middleware applied around
// the whole handler. Auth and metrics need the matched gin route and run as
// gin handlers.
package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/voicegate/errors"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware. The first in the list is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// writeError renders appErr the same way server.RespondWithError does.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
