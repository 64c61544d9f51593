package middleware

import (
	"context"
	"net"
	"net/http"

	"driftway/domain"
)

type contextKey string

const reqMetaKey = contextKey("request-metadata")

// RequestMetadata travels with the request through the chain. Origin is
// the client address sessions are pinned to; Identity is filled in by
// the session middleware.
type RequestMetadata struct {
	Origin   string
	Identity domain.Identity
}

func MetadataFrom(ctx context.Context) (*RequestMetadata, bool) {
	meta, ok := ctx.Value(reqMetaKey).(*RequestMetadata)
	return meta, ok
}

// WithMetadata resolves the client origin and injects the metadata
// struct. It must be the first middleware in the chain.
func WithMetadata() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				origin = r.RemoteAddr
			}

			meta := &RequestMetadata{Origin: origin}
			ctx := context.WithValue(r.Context(), reqMetaKey, meta)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
