package facts

import "time"

type WarningCode string

const (
	CodeAcceptedAtMissingAuditLog WarningCode = "FACT_ACCEPTED_AT_MISSING_AUDIT_LOG"
	CodeTimeInversion             WarningCode = "FACT_TIME_INVERSION"
	CodeTimelineBreak             WarningCode = "FACT_TIMELINE_BREAK"
	CodeTimelineAnomaly           WarningCode = "FACT_TIMELINE_ANOMALY"
	CodeEnumValueInvalid          WarningCode = "FACT_ENUM_VALUE_INVALID"
)

type WarningLevel string

const (
	LevelLow    WarningLevel = "low"
	LevelMedium WarningLevel = "medium"
	LevelHigh   WarningLevel = "high"
)

type WarningDomain string

const (
	DomainOrder WarningDomain = "order"
	DomainTrace WarningDomain = "trace"
	DomainAudit WarningDomain = "audit"
)

// FactWarning reports a contradiction between recorded facts. Evidence holds
// the values needed to locate the offending records and is meant for
// diagnostics only. The correlation keys are best-effort and may be nil.
type FactWarning struct {
	Code         WarningCode    `json:"code"`
	Level        WarningLevel   `json:"level"`
	Domain       WarningDomain  `json:"domain"`
	Message      string         `json:"message"`
	Fields       []string       `json:"fields"`
	Evidence     map[string]any `json:"evidence"`
	DetectedAt   time.Time      `json:"detected_at"`
	RestaurantID *string        `json:"restaurant_id"`
	WorkerID     *string        `json:"worker_id"`
	DeviceID     *string        `json:"device_id"`
}
