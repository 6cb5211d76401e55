package middleware

import (
	"net/http"

	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID takes the caller's request id or generates one, then makes
// it available to both the log context and the response headers.
func (h *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := types.WithRequestIDContext(r.Context(), requestID)
		ctx = wrap.WithRequestID(ctx, requestID)

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
