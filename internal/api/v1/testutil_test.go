package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/orderfacts/internal/domain"
	"github.com/gosuda/orderfacts/internal/orderfacts"
	"github.com/gosuda/orderfacts/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject tenant/user/role into context for GetCtx
// ---------------------------------------------------------------------------

func tenantCtx(tenantID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyTenantID, tenantID)
	return ctx
}

func viewerCtx(tenantID, userID uuid.UUID) context.Context {
	ctx := tenantCtx(tenantID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, middleware.RoleViewer)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock FactService
// ---------------------------------------------------------------------------

type mockFactService struct {
	getOrderFactsFunc func(ctx context.Context, id domain.Identity, orderID string) (*orderfacts.OrderFactsResponse, error)
}

func (m *mockFactService) GetOrderFacts(ctx context.Context, id domain.Identity, orderID string) (*orderfacts.OrderFactsResponse, error) {
	return m.getOrderFactsFunc(ctx, id, orderID)
}
