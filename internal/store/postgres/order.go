package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/orderfacts/internal/domain"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) ReadOrder(ctx context.Context, id domain.Identity, orderID string) (*domain.OrderRow, error) {
	var (
		o            domain.OrderRow
		restaurantID *string
		status       *string
		createdAt    *time.Time
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, restaurant_id, status, worker_id, created_at, accepted_at, completed_at
		 FROM orders WHERE tenant_id = $1 AND id = $2`,
		id.TenantID, orderID,
	).Scan(
		&o.ID, &restaurantID, &status, &o.WorkerID,
		&createdAt, &o.AcceptedAt, &o.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("orderRepo.ReadOrder: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("orderRepo.ReadOrder: %w", err)
	}

	// Required columns are nullable in the legacy schema; an empty value
	// is left for the contract validator to reject.
	if restaurantID != nil {
		o.RestaurantID = *restaurantID
	}
	if status != nil {
		o.Status = domain.OrderStatus(*status)
	}
	if createdAt != nil {
		o.CreatedAt = *createdAt
	}

	return &o, nil
}
