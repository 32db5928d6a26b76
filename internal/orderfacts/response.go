package orderfacts

import (
	"github.com/gosuda/orderfacts/internal/facts"
	"github.com/gosuda/orderfacts/internal/governance"
)

// OrderFactsResponse is the assembled view of one order. Warning fields are
// omitted when nothing was detected; health is always reported.
type OrderFactsResponse struct {
	Success                bool                          `json:"success"`
	Order                  facts.OrderFact               `json:"order"`
	Assets                 []facts.AssetFact             `json:"assets"`
	Traces                 []facts.TraceFact             `json:"traces"`
	Timeline               []facts.TimelineNode          `json:"timeline"`
	FactWarnings           []string                      `json:"fact_warnings,omitempty"`
	FactWarningsStructured []facts.FactWarning           `json:"fact_warnings_structured,omitempty"`
	FactHealth             *governance.FactHealthSummary `json:"fact_health,omitempty"`
}
