package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for audit events.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}

// identity returns the caller authenticated by BasicAuth.
func identity(r *http.Request) core.Identity {
	id, _ := core.IdentityFromContext(r.Context())
	return id
}
