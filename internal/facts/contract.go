package facts

import (
	"fmt"
	"strings"

	"github.com/gosuda/orderfacts/internal/domain"
)

// ContractResult is the outcome of a structural contract check.
type ContractResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ContractError carries every contract failure of a request. It wraps
// domain.ErrContractViolation.
type ContractError struct {
	Details []string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("fact contract violation: %s", strings.Join(e.Details, "; "))
}

func (e *ContractError) Unwrap() error {
	return domain.ErrContractViolation
}

type contractCheck struct {
	errs []string
}

func (c *contractCheck) required(field string, empty bool) {
	if empty {
		c.errs = append(c.errs, field+" is required")
	}
}

func (c *contractCheck) declared(field string, missing bool) {
	if missing {
		c.errs = append(c.errs, field+" must be present (null when the fact is absent)")
	}
}

func (c *contractCheck) result() ContractResult {
	return ContractResult{Valid: len(c.errs) == 0, Errors: c.errs}
}

// ValidateOrderFactContract checks the required shape of an order fact.
// Optional fields may be null but never missing.
func ValidateOrderFactContract(o OrderFact) ContractResult {
	var c contractCheck
	c.required("order_id", strings.TrimSpace(o.OrderID) == "")
	c.required("restaurant_id", strings.TrimSpace(o.RestaurantID) == "")
	c.required("status", strings.TrimSpace(string(o.Status)) == "")
	c.required("created_at", o.CreatedAt.IsZero())
	c.declared("worker_id", o.WorkerID.Missing())
	c.declared("accepted_at", o.AcceptedAt.Missing())
	c.declared("completed_at", o.CompletedAt.Missing())
	return c.result()
}

// ValidateTraceFactContract checks the required shape of a trace fact. The
// action type only has to be non-empty here; membership in the enum is a
// governance concern, not a contract one.
func ValidateTraceFactContract(t TraceFact) ContractResult {
	var c contractCheck
	c.required("id", strings.TrimSpace(t.ID) == "")
	c.required("asset_id", strings.TrimSpace(t.AssetID) == "")
	c.required("action_type", strings.TrimSpace(string(t.ActionType)) == "")
	c.required("created_at", t.CreatedAt.IsZero())
	c.declared("order_id", t.OrderID.Missing())
	return c.result()
}

func ValidateAssetFactContract(a AssetFact) ContractResult {
	var c contractCheck
	c.required("asset_id", strings.TrimSpace(a.AssetID) == "")
	c.declared("last_action_at", a.LastActionAt.Missing())
	return c.result()
}

// ValidateAll runs every contract and returns a *ContractError listing all
// failures with their location, or nil when the snapshot is well-formed.
func ValidateAll(order OrderFact, traces []TraceFact, assets []AssetFact) error {
	var details []string
	for _, e := range ValidateOrderFactContract(order).Errors {
		details = append(details, "order: "+e)
	}
	for i, t := range traces {
		for _, e := range ValidateTraceFactContract(t).Errors {
			details = append(details, fmt.Sprintf("traces[%d]: %s", i, e))
		}
	}
	for i, a := range assets {
		for _, e := range ValidateAssetFactContract(a).Errors {
			details = append(details, fmt.Sprintf("assets[%d]: %s", i, e))
		}
	}
	if len(details) > 0 {
		return &ContractError{Details: details}
	}
	return nil
}
