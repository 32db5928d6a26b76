package domain

import (
	"context"
	"time"
)

type TraceAction string

const (
	TraceActionCreated   TraceAction = "CREATED"
	TraceActionFilled    TraceAction = "FILLED"
	TraceActionDelivered TraceAction = "DELIVERED"
	TraceActionReturned  TraceAction = "RETURNED"
	TraceActionInspected TraceAction = "INSPECTED"
)

// TraceActions lists the closed set of asset trace actions.
func TraceActions() []TraceAction {
	return []TraceAction{
		TraceActionCreated,
		TraceActionFilled,
		TraceActionDelivered,
		TraceActionReturned,
		TraceActionInspected,
	}
}

// Valid reports whether a is in the closed set. Comparison is exact.
func (a TraceAction) Valid() bool {
	switch a {
	case TraceActionCreated, TraceActionFilled, TraceActionDelivered,
		TraceActionReturned, TraceActionInspected:
		return true
	default:
		return false
	}
}

// TraceRow is an asset trace record. OrderID is nil when the action was not
// correlated to any order.
type TraceRow struct {
	ID         string
	AssetID    string
	ActionType TraceAction
	OperatorID string
	OrderID    *string
	CreatedAt  time.Time
}

type TraceReader interface {
	// ReadTraces returns every trace correlated to orderID, oldest first.
	// A reader scoped by order id only ever yields correlated traces, so the
	// uncorrelated FACT_TIMELINE_ANOMALY path is reached only by a reader
	// that also returns traces of the order's assets.
	ReadTraces(ctx context.Context, id Identity, orderID string) ([]TraceRow, error)
	// ReadLastTrace returns the most recent trace for an asset, or nil when
	// the asset has none.
	ReadLastTrace(ctx context.Context, id Identity, assetID string) (*TraceRow, error)
}
