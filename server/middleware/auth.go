package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"driftway/services"
)

// SessionCookie is the cookie browser clients carry their credential in.
const SessionCookie = "session-credential"

// NewSessionAuth validates the presented session credential against the
// origin the request arrived from and resolves the caller's identity.
// The credential is read from the session cookie, falling back to a
// bearer token for non-browser clients.
func NewSessionAuth(log *slog.Logger, sessions services.IAuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			meta, ok := MetadataFrom(r.Context())
			if !ok {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			credential := CredentialFrom(r)
			if credential == "" {
				log.Warn("Request without session credential", "origin", meta.Origin)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := sessions.ValidateSession(credential, meta.Origin)
			if err != nil {
				log.Warn("Session validation failed",
					slog.String("origin", meta.Origin),
					slog.Any("error", err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			meta.Identity = identity
			next.ServeHTTP(w, r)
		})
	}
}

// CredentialFrom extracts the session credential a request presents,
// cookie first, bearer token second. Empty means none.
func CredentialFrom(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
