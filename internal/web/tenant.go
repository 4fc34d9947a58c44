package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type tenantKey struct{}

// requireTenant resolves the tenant from the X-Tenant-ID header and stores
// it in the request context. Every data route is tenant scoped, so requests
// without a valid tenant are rejected before any handler runs.
func requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Tenant-ID")
		if raw == "" {
			writeError(w, http.StatusBadRequest, "missing X-Tenant-ID header")
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid X-Tenant-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantID returns the tenant stored by requireTenant. The zero UUID means
// the middleware did not run, which only happens on misrouted requests.
func tenantID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(tenantKey{}).(uuid.UUID)
	return id
}
