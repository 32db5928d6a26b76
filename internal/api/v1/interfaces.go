package v1

import (
	"context"

	"github.com/gosuda/orderfacts/internal/domain"
	"github.com/gosuda/orderfacts/internal/orderfacts"
)

// FactService abstracts the order facts facade for handler testing.
// *orderfacts.Service satisfies this interface.
type FactService interface {
	GetOrderFacts(ctx context.Context, id domain.Identity, orderID string) (*orderfacts.OrderFactsResponse, error)
}
