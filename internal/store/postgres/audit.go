package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/orderfacts/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// ReadAuditTrail returns the full trail for a target. It is deliberately
// unpaginated: callers rely on seeing every row.
func (r *AuditRepo) ReadAuditTrail(ctx context.Context, id domain.Identity, targetType, targetID string) ([]domain.AuditRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, action, COALESCE(actor_id, ''), created_at
		 FROM action_logs WHERE tenant_id = $1 AND target_type = $2 AND target_id = $3
		 ORDER BY created_at ASC, id ASC`,
		id.TenantID, targetType, targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ReadAuditTrail: %w", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows, "auditRepo.ReadAuditTrail")
}

func scanAuditRecords(rows pgx.Rows, caller string) ([]domain.AuditRecord, error) {
	var records []domain.AuditRecord
	for rows.Next() {
		var scan auditScan
		if err := rows.Scan(scan.dest()...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		rec, ok := scan.record()
		if !ok {
			log.Debug().Str("audit_id", scan.id).Msg("skipping audit record without action")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return records, nil
}

// auditScan holds one scanned action log row. action and created_at are
// nullable in the legacy schema.
type auditScan struct {
	id        string
	action    *string
	actorID   string
	createdAt *time.Time
}

func (s *auditScan) dest() []any {
	return []any{&s.id, &s.action, &s.actorID, &s.createdAt}
}

// record drops rows with no action, which carry no evidence. A row with no
// timestamp is kept with a zero CreatedAt: it still proves the action was
// logged, and time-based checks skip it.
func (s *auditScan) record() (domain.AuditRecord, bool) {
	if s.action == nil || strings.TrimSpace(*s.action) == "" {
		return domain.AuditRecord{}, false
	}
	rec := domain.AuditRecord{ID: s.id, Action: *s.action, ActorID: s.actorID}
	if s.createdAt != nil {
		rec.CreatedAt = *s.createdAt
	}
	return rec, true
}
