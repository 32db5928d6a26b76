package governance

import (
	"fmt"
	"time"

	"github.com/gosuda/orderfacts/internal/domain"
	"github.com/gosuda/orderfacts/internal/facts"
)

// CheckAcceptedWithoutAudit flags an order carrying accepted_at when the
// audit trail has no accept action at all.
func CheckAcceptedWithoutAudit(in Input) []facts.FactWarning {
	acceptedAt, ok := in.Order.AcceptedAt.Get()
	if !ok {
		return nil
	}
	for _, rec := range in.Audit {
		if NormalizeAction(rec.Action) == ActionAccept {
			return nil
		}
	}

	return []facts.FactWarning{in.warning(
		facts.CodeAcceptedAtMissingAuditLog, facts.LevelMedium, facts.DomainAudit,
		"accepted_at is recorded but the audit trail holds no accept action",
		[]string{"order.accepted_at"},
		map[string]any{
			"order_id":      in.Order.OrderID,
			"accepted_at":   stamp(acceptedAt),
			"audit_records": len(in.Audit),
		},
		"",
	)}
}

// CheckOrderTimeInversion flags completed_at earlier than created_at.
func CheckOrderTimeInversion(in Input) []facts.FactWarning {
	completedAt, ok := in.Order.CompletedAt.Get()
	if !ok || !completedAt.Before(in.Order.CreatedAt) {
		return nil
	}

	return []facts.FactWarning{in.warning(
		facts.CodeTimeInversion, facts.LevelHigh, facts.DomainOrder,
		fmt.Sprintf("completed_at %s is earlier than created_at %s", stamp(completedAt), stamp(in.Order.CreatedAt)),
		[]string{"order.completed_at", "order.created_at"},
		map[string]any{
			"order_id":      in.Order.OrderID,
			"created_at":    stamp(in.Order.CreatedAt),
			"completed_at":  stamp(completedAt),
			"delta_seconds": delta(completedAt, in.Order.CreatedAt),
		},
		"",
	)}
}

// CheckAuditCompletionInversion flags every completion record logged before
// the order existed, whether or not it ever surfaced as completed_at.
func CheckAuditCompletionInversion(in Input) []facts.FactWarning {
	return in.auditBeforeOrder(ActionComplete, facts.CodeTimeInversion, "completion")
}

// CheckAuditAcceptanceInversion flags every acceptance record logged before
// the order existed.
func CheckAuditAcceptanceInversion(in Input) []facts.FactWarning {
	return in.auditBeforeOrder(ActionAccept, facts.CodeTimelineBreak, "acceptance")
}

func (in Input) auditBeforeOrder(class ActionClass, code facts.WarningCode, label string) []facts.FactWarning {
	var out []facts.FactWarning
	for i, rec := range in.Audit {
		if rec.CreatedAt.IsZero() || NormalizeAction(rec.Action) != class {
			continue
		}
		if !rec.CreatedAt.Before(in.Order.CreatedAt) {
			continue
		}
		out = append(out, in.warning(
			code, facts.LevelHigh, facts.DomainAudit,
			fmt.Sprintf("audit %s record %q at %s predates order creation at %s",
				label, rec.Action, stamp(rec.CreatedAt), stamp(in.Order.CreatedAt)),
			[]string{fmt.Sprintf("audit[%d].created_at", i), "order.created_at"},
			map[string]any{
				"order_id":         in.Order.OrderID,
				"audit_id":         rec.ID,
				"action":           rec.Action,
				"actor_id":         rec.ActorID,
				"audit_created_at": stamp(rec.CreatedAt),
				"order_created_at": stamp(in.Order.CreatedAt),
				"delta_seconds":    delta(rec.CreatedAt, in.Order.CreatedAt),
			},
			"",
		))
	}
	return out
}

// CheckTraceEnumValidity flags trace actions outside the closed set.
func CheckTraceEnumValidity(in Input) []facts.FactWarning {
	var out []facts.FactWarning
	for i, t := range in.Traces {
		if t.ActionType.Valid() {
			continue
		}
		out = append(out, in.warning(
			facts.CodeEnumValueInvalid, facts.LevelMedium, facts.DomainTrace,
			fmt.Sprintf("trace %s has action_type %q outside the known set", t.ID, t.ActionType),
			[]string{fmt.Sprintf("traces[%d].action_type", i)},
			map[string]any{
				"trace_id":    t.ID,
				"asset_id":    t.AssetID,
				"action_type": string(t.ActionType),
				"allowed":     allowedActions(),
			},
			t.AssetID,
		))
	}
	return out
}

// CheckTraceBeforeOrder looks at traces older than the order. A trace that
// names this order cannot predate it, so that is a break. An uncorrelated or
// foreign trace only looks odd (assets are handled before assignment), so it
// is reported as a low anomaly.
func CheckTraceBeforeOrder(in Input) []facts.FactWarning {
	var out []facts.FactWarning
	for i, t := range in.Traces {
		if t.CreatedAt.IsZero() || !t.CreatedAt.Before(in.Order.CreatedAt) {
			continue
		}

		correlated := t.CorrelatedTo(in.Order.OrderID)
		code, level := facts.CodeTimelineAnomaly, facts.LevelLow
		msg := fmt.Sprintf("trace %s at %s precedes order creation at %s", t.ID, stamp(t.CreatedAt), stamp(in.Order.CreatedAt))
		if correlated {
			code, level = facts.CodeTimelineBreak, facts.LevelHigh
			msg = fmt.Sprintf("trace %s is correlated to order %s but precedes its creation", t.ID, in.Order.OrderID)
		}

		var traceOrderID any
		if id, ok := t.OrderID.Get(); ok {
			traceOrderID = id
		}

		out = append(out, in.warning(
			code, level, facts.DomainTrace, msg,
			[]string{fmt.Sprintf("traces[%d].created_at", i), "order.created_at"},
			map[string]any{
				"order_id":         in.Order.OrderID,
				"trace_id":         t.ID,
				"asset_id":         t.AssetID,
				"trace_order_id":   traceOrderID,
				"correlated":       correlated,
				"trace_created_at": stamp(t.CreatedAt),
				"order_created_at": stamp(in.Order.CreatedAt),
				"delta_seconds":    delta(t.CreatedAt, in.Order.CreatedAt),
			},
			t.AssetID,
		))
	}
	return out
}

// warning fills in detection time and the best-effort correlation keys.
func (in Input) warning(
	code facts.WarningCode,
	level facts.WarningLevel,
	dom facts.WarningDomain,
	msg string,
	fields []string,
	evidence map[string]any,
	assetID string,
) facts.FactWarning {
	w := facts.FactWarning{
		Code:       code,
		Level:      level,
		Domain:     dom,
		Message:    msg,
		Fields:     fields,
		Evidence:   evidence,
		DetectedAt: in.DetectedAt,
		WorkerID:   in.Order.WorkerID.Ptr(),
	}
	if in.Order.RestaurantID != "" {
		restaurantID := in.Order.RestaurantID
		w.RestaurantID = &restaurantID
	}
	if assetID != "" {
		if deviceID, ok := in.Devices[assetID]; ok && deviceID != "" {
			w.DeviceID = &deviceID
		}
	}
	return w
}

func allowedActions() []string {
	actions := domain.TraceActions()
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// delta is a minus b in seconds; negative when a is earlier.
func delta(a, b time.Time) float64 {
	return a.Sub(b).Seconds()
}
