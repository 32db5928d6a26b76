package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/orderfacts/internal/domain"
)

// Store exposes read-only repositories over the orders, action log, asset
// and trace tables. It never writes.
type Store struct {
	pool   *pgxpool.Pool
	orders *OrderRepo
	audit  *AuditRepo
	traces *TraceRepo
	assets *AssetRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:   pool,
		orders: NewOrderRepo(pool),
		audit:  NewAuditRepo(pool),
		traces: NewTraceRepo(pool),
		assets: NewAssetRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Orders() domain.OrderReader     { return s.orders }
func (s *Store) AuditTrail() domain.AuditReader { return s.audit }
func (s *Store) Traces() domain.TraceReader     { return s.traces }
func (s *Store) Assets() domain.AssetReader     { return s.assets }

// Ping reports whether the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Store.Ping: %w", err)
	}
	return nil
}
