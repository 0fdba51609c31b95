package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Boyan92/SalaryCalculatorNew/internal/requestctx"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses a sane incoming X-Request-ID or generates a UUID, and echoes it back.
// The id and the peer address are stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return RequestIDWithClientIP(ClientIP)(next)
}

// RequestIDWithClientIP is RequestID with a custom client IP resolver, used behind a proxy.
func RequestIDWithClientIP(clientIP RateLimitKeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			meta := requestctx.Meta{RequestID: id, ClientIP: clientIP(r)}
			next.ServeHTTP(w, r.WithContext(requestctx.With(r.Context(), meta)))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
