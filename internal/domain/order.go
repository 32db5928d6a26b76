package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderRow is an orders table record as the store returns it. Nullable
// columns are nil when the database holds NULL.
type OrderRow struct {
	ID           string
	RestaurantID string
	Status       OrderStatus
	WorkerID     *string
	CreatedAt    time.Time
	AcceptedAt   *time.Time
	CompletedAt  *time.Time
}

type OrderReader interface {
	ReadOrder(ctx context.Context, id Identity, orderID string) (*OrderRow, error)
}
