package httpapi

import (
	"context"
	"net/http"

	"github.com/aclgate/aclgate/label"
)

type principalKey struct{}

// principalFromContext returns the Principal Context stashed by the Basic
// auth middleware (spec.md §5 "Request-scoped ambient state": per-task,
// never global).
func principalFromContext(ctx context.Context) (label.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(label.Principal)
	return p, ok
}

// basicAuthMiddleware resolves the HTTP Basic auth username/password pair
// to a Principal via srv.Permissions, per spec.md §6: credential
// verification itself is out of scope (§1), this middleware only covers
// what happens once a username is authenticated. Rejected or unresolvable
// credentials fail with 401; downstream admission failures are always 403.
func basicAuthMiddleware(srv *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, _, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="aclgate"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			principal, err := srv.Permissions.Lookup(r.Context(), username)
			if err != nil {
				srv.Log.Warn("http: principal lookup failed", "user", username, "err", err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
