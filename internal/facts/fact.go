// Package facts defines the typed fact shapes the governance engine reads,
// their structural contracts, and the merged order timeline.
package facts

import (
	"time"

	"github.com/gosuda/orderfacts/internal/domain"
)

// OrderFact is the order record as observed. Timestamps other than CreatedAt
// are only set when the source recorded them.
type OrderFact struct {
	OrderID      string              `json:"order_id"`
	RestaurantID string              `json:"restaurant_id"`
	Status       domain.OrderStatus  `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	WorkerID     Nullable[string]    `json:"worker_id"`
	AcceptedAt   Nullable[time.Time] `json:"accepted_at"`
	CompletedAt  Nullable[time.Time] `json:"completed_at"`
}

// TraceFact is one asset action. OrderID is null when the action is not
// correlated to an order, which is itself a valid fact.
type TraceFact struct {
	ID         string             `json:"id"`
	AssetID    string             `json:"asset_id"`
	ActionType domain.TraceAction `json:"action_type"`
	OperatorID string             `json:"operator_id"`
	OrderID    Nullable[string]   `json:"order_id"`
	CreatedAt  time.Time          `json:"created_at"`
}

// CorrelatedTo reports whether the trace explicitly names orderID.
func (t TraceFact) CorrelatedTo(orderID string) bool {
	id, ok := t.OrderID.Get()
	return ok && id == orderID
}

// AssetFact summarises an asset and its most recent trace. LastAction is
// empty when no trace exists; LastActionAt is null when unknown.
type AssetFact struct {
	AssetID      string              `json:"asset_id"`
	Status       string              `json:"status"`
	LastAction   string              `json:"last_action"`
	LastActionAt Nullable[time.Time] `json:"last_action_at"`
}

// OrderFromRow builds an OrderFact. Every nullable column maps to present or
// null, so a fact built from a row can only fail its contract on empty
// required values.
func OrderFromRow(r domain.OrderRow) OrderFact {
	return OrderFact{
		OrderID:      r.ID,
		RestaurantID: r.RestaurantID,
		Status:       r.Status,
		CreatedAt:    utc(r.CreatedAt),
		WorkerID:     FromPtr(r.WorkerID),
		AcceptedAt:   utcNullable(r.AcceptedAt),
		CompletedAt:  utcNullable(r.CompletedAt),
	}
}

func TraceFromRow(r domain.TraceRow) TraceFact {
	return TraceFact{
		ID:         r.ID,
		AssetID:    r.AssetID,
		ActionType: r.ActionType,
		OperatorID: r.OperatorID,
		OrderID:    FromPtr(r.OrderID),
		CreatedAt:  utc(r.CreatedAt),
	}
}

func TracesFromRows(rows []domain.TraceRow) []TraceFact {
	out := make([]TraceFact, 0, len(rows))
	for _, r := range rows {
		out = append(out, TraceFromRow(r))
	}
	return out
}

// AssetFromRow combines an asset with its last trace, which may be nil.
func AssetFromRow(r domain.AssetRow, last *domain.TraceRow) AssetFact {
	a := AssetFact{
		AssetID:      r.ID,
		Status:       r.Status,
		LastActionAt: Null[time.Time](),
	}
	if last != nil {
		a.LastAction = string(last.ActionType)
		if !last.CreatedAt.IsZero() {
			a.LastActionAt = Some(utc(last.CreatedAt))
		}
	}
	return a
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func utcNullable(t *time.Time) Nullable[time.Time] {
	if t == nil {
		return Null[time.Time]()
	}
	return Some(t.UTC())
}
