package middleware

import (
	"log/slog"
	"net/http"
)

// NewRequestLogger logs every request as it enters the chain.
func NewRequestLogger(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var origin string
			if meta, ok := MetadataFrom(r.Context()); ok {
				origin = meta.Origin
			}

			log.Info("Incoming HTTP request",
				slog.String("method", r.Method),
				slog.String("uri", r.RequestURI),
				slog.String("origin", origin),
			)
			next.ServeHTTP(w, r)
		})
	}
}
