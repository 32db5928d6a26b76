package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/orderfacts/internal/domain"
	"github.com/gosuda/orderfacts/internal/facts"
	"github.com/gosuda/orderfacts/internal/orderfacts"
	"github.com/gosuda/orderfacts/internal/server/middleware"
)

type GetOrderFactsInput struct {
	OrderID string `path:"id" minLength:"1" maxLength:"128" doc:"Order ID"`
}

type GetOrderFactsOutput struct {
	Body *orderfacts.OrderFactsResponse
}

// ContractViolationError is the body returned when the recorded facts are
// structurally malformed. It keeps the success/error envelope of the facts
// response instead of a problem document.
type ContractViolationError struct {
	Success bool     `json:"success"`
	Message string   `json:"error"`
	Details []string `json:"details"`
}

func (e *ContractViolationError) Error() string { return e.Message }

func (e *ContractViolationError) GetStatus() int { return http.StatusUnprocessableEntity }

func RegisterOrderFactRoutes(api huma.API, svc FactService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-order-facts",
		Method:      http.MethodGet,
		Path:        "/orders/{id}/facts",
		Summary:     "Get governed facts for an order",
		Description: "Returns the order, its assets and traces, the merged timeline, and every detected inconsistency as a warning. Warnings never fail the request.",
		Tags:        []string{"Orders"},
		Errors:      []int{http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *GetOrderFactsInput) (*GetOrderFactsOutput, error) {
		id, ok := middleware.IdentityFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing tenant context")
		}

		resp, err := svc.GetOrderFacts(ctx, id, input.OrderID)
		if err != nil {
			return nil, factsError(err, input.OrderID)
		}

		return &GetOrderFactsOutput{Body: resp}, nil
	})
}

func factsError(err error, orderID string) error {
	var ce *facts.ContractError
	switch {
	case errors.As(err, &ce):
		return &ContractViolationError{
			Message: "order facts violate their contract",
			Details: ce.Details,
		}
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("order not found")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("valid tenant required")
	case errors.Is(err, domain.ErrSourceUnavailable):
		return huma.Error503ServiceUnavailable("order source unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("request canceled")
	default:
		log.Error().Err(err).Str("order_id", orderID).Msg("v1: get order facts failed")
		return huma.Error500InternalServerError("failed to get order facts")
	}
}
