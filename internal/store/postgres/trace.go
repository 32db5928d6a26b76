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

type TraceRepo struct {
	pool *pgxpool.Pool
}

func NewTraceRepo(pool *pgxpool.Pool) *TraceRepo {
	return &TraceRepo{pool: pool}
}

// Required columns are nullable in the legacy schema. They are read as empty
// values so the fact contract reports the offending trace instead of one bad
// row failing the whole read.
const traceColumns = `id, COALESCE(asset_id, ''), COALESCE(action_type, ''), COALESCE(operator_id, ''), order_id, created_at`

// traceScan holds one scanned trace; created_at may be NULL.
type traceScan struct {
	row       domain.TraceRow
	createdAt *time.Time
}

func (s *traceScan) dest() []any {
	return []any{&s.row.ID, &s.row.AssetID, &s.row.ActionType, &s.row.OperatorID, &s.row.OrderID, &s.createdAt}
}

func (s *traceScan) trace() domain.TraceRow {
	t := s.row
	if s.createdAt != nil {
		t.CreatedAt = *s.createdAt
	}
	return t
}

// ReadTraces is order-scoped: every returned trace names orderID.
func (r *TraceRepo) ReadTraces(ctx context.Context, id domain.Identity, orderID string) ([]domain.TraceRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+traceColumns+`
		 FROM asset_traces WHERE tenant_id = $1 AND order_id = $2
		 ORDER BY created_at ASC, id ASC`,
		id.TenantID, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("traceRepo.ReadTraces: %w", err)
	}
	defer rows.Close()

	return scanTraces(rows, "traceRepo.ReadTraces")
}

func (r *TraceRepo) ReadLastTrace(ctx context.Context, id domain.Identity, assetID string) (*domain.TraceRow, error) {
	var scan traceScan

	err := r.pool.QueryRow(ctx,
		`SELECT `+traceColumns+`
		 FROM asset_traces WHERE tenant_id = $1 AND asset_id = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		id.TenantID, assetID,
	).Scan(scan.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // no trace is a valid answer
	}
	if err != nil {
		return nil, fmt.Errorf("traceRepo.ReadLastTrace: %w", err)
	}

	t := scan.trace()
	return &t, nil
}

func scanTraces(rows pgx.Rows, caller string) ([]domain.TraceRow, error) {
	var traces []domain.TraceRow
	for rows.Next() {
		var scan traceScan
		if err := rows.Scan(scan.dest()...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		traces = append(traces, scan.trace())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return traces, nil
}
