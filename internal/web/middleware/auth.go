package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/logging"
)

// Authenticator checks portal credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (core.Identity, error)
}

const realm = `Basic realm="company-portal", charset="UTF-8"`

// BasicAuth authenticates every request with HTTP Basic credentials and
// stores the resulting identity in the request context. The submitter is
// also attached to every log line written for the request.
func BasicAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", realm)
				writeJSONError(w, http.StatusUnauthorized, "missing credentials", "AUTH001")
				return
			}

			id, err := auth.Authenticate(r.Context(), username, password)
			if errors.Is(err, core.ErrInvalidCredentials) {
				logging.FromContext(r.Context()).Warn("auth: invalid credentials",
					"username", username,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("WWW-Authenticate", realm)
				writeJSONError(w, http.StatusUnauthorized, "invalid credentials", "AUTH001")
				return
			}
			if err != nil {
				logging.FromContext(r.Context()).Error("auth: lookup failed", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "authentication unavailable", "ERR000")
				return
			}

			ctx := core.ContextWithIdentity(r.Context(), id)
			ctx = logging.ContextWithAttrs(ctx, "submitter", id.Submitter)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers that are not administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := core.IdentityFromContext(r.Context())
		if !ok || !id.Admin {
			writeJSONError(w, http.StatusForbidden, "administrator access required", "AUTH002")
			return
		}
		next.ServeHTTP(w, r)
	})
}
