package domain

import (
	"context"
	"time"
)

// AuditTargetOrder is the target type under which order actions are logged.
const AuditTargetOrder = "order"

// AuditRecord is one raw row of the append-only action log. Action is free
// text written by whichever component logged it, so it is untrusted evidence.
type AuditRecord struct {
	ID        string
	Action    string
	ActorID   string
	CreatedAt time.Time
}

// AuditReader returns the complete action trail for a target, ordered by
// created_at ascending.
type AuditReader interface {
	ReadAuditTrail(ctx context.Context, id Identity, targetType, targetID string) ([]AuditRecord, error)
}
