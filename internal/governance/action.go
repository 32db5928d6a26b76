package governance

import "strings"

// ActionClass is the normalized meaning of a free-text audit action.
type ActionClass string

const (
	ActionAccept   ActionClass = "ACCEPT"
	ActionComplete ActionClass = "COMPLETE"
	ActionOther    ActionClass = "OTHER"
)

// actionAliases maps uppercased audit actions to their class. Audit actions
// are free text written by several producers; this table is the known set.
var actionAliases = map[string]ActionClass{
	"ACCEPT":            ActionAccept,
	"ACCEPTED":          ActionAccept,
	"ORDER_ACCEPT":      ActionAccept,
	"ORDER_ACCEPTED":    ActionAccept,
	"ACCEPT_ORDER":      ActionAccept,
	"WORKER_ACCEPT":     ActionAccept,
	"COMPLETE":          ActionComplete,
	"COMPLETED":         ActionComplete,
	"ORDER_COMPLETE":    ActionComplete,
	"ORDER_COMPLETED":   ActionComplete,
	"COMPLETE_ORDER":    ActionComplete,
	"DELIVERY_COMPLETE": ActionComplete,
}

// NormalizeAction classifies an audit action case-insensitively. Exact alias
// matches win; otherwise any action containing ACCEPT or COMPLETE is
// classified by substring, so "INCOMPLETE_DELIVERY" counts as COMPLETE. That
// substring rule is a known fragility kept for compatibility with existing
// producers; new spellings belong in actionAliases with a test.
func NormalizeAction(raw string) ActionClass {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	if norm == "" {
		return ActionOther
	}
	if class, ok := actionAliases[norm]; ok {
		return class
	}
	switch {
	case strings.Contains(norm, string(ActionAccept)):
		return ActionAccept
	case strings.Contains(norm, string(ActionComplete)):
		return ActionComplete
	default:
		return ActionOther
	}
}
