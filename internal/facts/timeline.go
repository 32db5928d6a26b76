package facts

import (
	"cmp"
	"slices"
	"time"
)

type TimelineSource string

const (
	SourceOrder TimelineSource = "order"
	SourceTrace TimelineSource = "trace"
)

// priority orders nodes that share a timestamp: order lifecycle first.
func (s TimelineSource) priority() int {
	if s == SourceOrder {
		return 0
	}
	return 1
}

type TimelineKind string

const (
	KindOrderCreated   TimelineKind = "order_created"
	KindOrderAccepted  TimelineKind = "order_accepted"
	KindOrderCompleted TimelineKind = "order_completed"
	KindTrace          TimelineKind = "trace"
)

// TimelineNode is one event of the merged view. Lifecycle nodes carry the
// order id; trace nodes carry a copy of the trace they came from.
type TimelineNode struct {
	Kind    TimelineKind   `json:"kind"`
	Source  TimelineSource `json:"source"`
	At      time.Time      `json:"at"`
	OrderID string         `json:"order_id,omitempty"`
	Trace   *TraceFact     `json:"trace,omitempty"`
}

// MergeTimeline interleaves order lifecycle events with trace events in
// ascending time. Nothing is dropped or collapsed: every recorded lifecycle
// timestamp and every trace yields exactly one node. Ties go to the order
// source, then to input order.
func MergeTimeline(order OrderFact, traces []TraceFact) []TimelineNode {
	nodes := make([]TimelineNode, 0, 3+len(traces))

	nodes = append(nodes, TimelineNode{
		Kind:    KindOrderCreated,
		Source:  SourceOrder,
		At:      order.CreatedAt,
		OrderID: order.OrderID,
	})
	if at, ok := order.AcceptedAt.Get(); ok {
		nodes = append(nodes, TimelineNode{Kind: KindOrderAccepted, Source: SourceOrder, At: at, OrderID: order.OrderID})
	}
	if at, ok := order.CompletedAt.Get(); ok {
		nodes = append(nodes, TimelineNode{Kind: KindOrderCompleted, Source: SourceOrder, At: at, OrderID: order.OrderID})
	}

	for _, t := range traces {
		trace := t
		nodes = append(nodes, TimelineNode{
			Kind:   KindTrace,
			Source: SourceTrace,
			At:     t.CreatedAt,
			Trace:  &trace,
		})
	}

	slices.SortStableFunc(nodes, func(a, b TimelineNode) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return cmp.Compare(a.Source.priority(), b.Source.priority())
	})

	return nodes
}
