// Package governance inspects order facts for contradictions between
// sources. Findings are reported as warnings; the facts are never altered.
package governance

import (
	"time"

	"github.com/gosuda/orderfacts/internal/domain"
	"github.com/gosuda/orderfacts/internal/facts"
)

// Input is the immutable snapshot a check inspects.
type Input struct {
	Order  facts.OrderFact
	Traces []facts.TraceFact
	Audit  []domain.AuditRecord
	// Devices maps asset ids to bound device ids. May be nil.
	Devices    map[string]string
	DetectedAt time.Time
}

// Check is a pure function over the snapshot. It must not modify its input.
type Check func(in Input) []facts.FactWarning

// DefaultChecks returns the fixed battery, in reporting order.
func DefaultChecks() []Check {
	return []Check{
		CheckAcceptedWithoutAudit,
		CheckOrderTimeInversion,
		CheckAuditCompletionInversion,
		CheckAuditAcceptanceInversion,
		CheckTraceEnumValidity,
		CheckTraceBeforeOrder,
	}
}

type Guard struct {
	checks []Check
}

// NewGuard builds a guard over checks, or over DefaultChecks when none are
// given.
func NewGuard(checks ...Check) *Guard {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	return &Guard{checks: checks}
}

// Inspect runs every check and concatenates the results. Checks never
// short-circuit each other.
func (g *Guard) Inspect(in Input) []facts.FactWarning {
	var out []facts.FactWarning
	for _, check := range g.checks {
		out = append(out, check(in)...)
	}
	return out
}
