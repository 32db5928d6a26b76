package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gosuda/orderfacts/internal/domain"
)

type contextKey string

const (
	ContextKeyTenantID contextKey = "tenant_id"
	ContextKeyUserID   contextKey = "user_id"
	ContextKeyUserRole contextKey = "role"
)

func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyTenantID).(uuid.UUID)
	return v, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

// IdentityFromContext assembles the caller identity the fact sources are
// read with. It reports false when no usable tenant is present.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	tenantID, ok := TenantIDFromContext(ctx)
	if !ok {
		return domain.Identity{}, false
	}
	id := domain.Identity{TenantID: tenantID}
	id.UserID, _ = UserIDFromContext(ctx)
	id.Role, _ = RoleFromContext(ctx)
	return id, id.Valid()
}

func RequireTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"valid tenant required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
