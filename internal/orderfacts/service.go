// Package orderfacts assembles the governed fact view of a single order.
package orderfacts

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/orderfacts/internal/domain"
	"github.com/gosuda/orderfacts/internal/facts"
	"github.com/gosuda/orderfacts/internal/governance"
	"github.com/gosuda/orderfacts/internal/metrics"
)

// maxAssetReads bounds concurrent last-trace lookups per request.
const maxAssetReads = 8

type Service struct {
	sources domain.FactSources
	devices domain.DeviceResolver
	guard   *governance.Guard
	clock   func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Service)

// WithDeviceResolver enables best-effort device correlation on warnings.
func WithDeviceResolver(r domain.DeviceResolver) Option {
	return func(s *Service) { s.devices = r }
}

// WithClock stamps warnings with wall-clock detection time. Without it,
// warnings carry the snapshot watermark so identical data yields identical
// output.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithGuard(g *governance.Guard) Option {
	return func(s *Service) { s.guard = g }
}

func NewService(sources domain.FactSources, opts ...Option) *Service {
	s := &Service{sources: sources}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = governance.NewGuard()
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

// GetOrderFacts returns the governed view of an order. It fails only when the
// order cannot be read or a fact contract is violated; every detected
// inconsistency is returned as a warning on a successful response.
func (s *Service) GetOrderFacts(ctx context.Context, id domain.Identity, orderID string) (*OrderFactsResponse, error) {
	start := time.Now()
	resp, err := s.getOrderFacts(ctx, id, orderID)
	s.observe(start, resp, err)
	if err != nil {
		return nil, fmt.Errorf("orderfacts.GetOrderFacts: %w", err)
	}
	return resp, nil
}

func (s *Service) getOrderFacts(ctx context.Context, id domain.Identity, orderID string) (*OrderFactsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !id.Valid() {
		return nil, domain.ErrForbidden
	}

	logger := log.With().
		Str("component", "orderfacts").
		Str("tenant_id", id.TenantID.String()).
		Str("order_id", orderID).
		Logger()

	snap, err := s.readSnapshot(ctx, id, orderID, &logger)
	if err != nil {
		return nil, err
	}

	order := facts.OrderFromRow(snap.order)
	traces := facts.TracesFromRows(snap.traces)
	if err := facts.ValidateAll(order, traces, nil); err != nil {
		return nil, err
	}

	assets, devices, err := s.readAssets(ctx, id, traces, &logger)
	if err != nil {
		return nil, err
	}
	if err := facts.ValidateAll(order, nil, assets); err != nil {
		return nil, err
	}

	detectedAt := watermark(order, traces, snap.audit)
	if s.clock != nil {
		detectedAt = s.clock().UTC()
	}

	timeline := facts.MergeTimeline(order, traces)
	warnings := s.guard.Inspect(governance.Input{
		Order:      order,
		Traces:     traces,
		Audit:      snap.audit,
		Devices:    devices,
		DetectedAt: detectedAt,
	})
	health := governance.Score(warnings)

	resp := &OrderFactsResponse{
		Success:    true,
		Order:      order,
		Assets:     assets,
		Traces:     traces,
		Timeline:   timeline,
		FactHealth: &health,
	}
	if len(warnings) > 0 {
		resp.FactWarningsStructured = warnings
		resp.FactWarnings = make([]string, len(warnings))
		for i, w := range warnings {
			resp.FactWarnings[i] = w.Message
		}
		logger.Info().
			Int("warnings", len(warnings)).
			Int("score", health.Score).
			Msg("fact warnings detected")
	}

	return resp, nil
}

type snapshot struct {
	order  domain.OrderRow
	audit  []domain.AuditRecord
	traces []domain.TraceRow
}

// readSnapshot issues the three primary reads concurrently and waits for all
// of them. Only the order read is fatal; a failed audit or trace read is the
// absence of that evidence.
func (s *Service) readSnapshot(ctx context.Context, id domain.Identity, orderID string, logger *zerolog.Logger) (*snapshot, error) {
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := s.sources.Orders().ReadOrder(gctx, id, orderID)
		if err != nil {
			return fmt.Errorf("read order: %w", err)
		}
		if row == nil {
			return fmt.Errorf("read order: %w", domain.ErrNotFound)
		}
		snap.order = *row
		return nil
	})
	g.Go(func() error {
		recs, err := s.sources.AuditTrail().ReadAuditTrail(gctx, id, domain.AuditTargetOrder, orderID)
		if err != nil {
			s.degraded(gctx, logger, "audit", err)
			return nil
		}
		snap.audit = recs
		return nil
	})
	g.Go(func() error {
		rows, err := s.sources.Traces().ReadTraces(gctx, id, orderID)
		if err != nil {
			s.degraded(gctx, logger, "traces", err)
			return nil
		}
		snap.traces = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A read cut short by cancellation is not evidence of absence.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// readAssets resolves every asset touched by the order's traces. All reads
// here are best-effort.
func (s *Service) readAssets(ctx context.Context, id domain.Identity, traces []facts.TraceFact, logger *zerolog.Logger) ([]facts.AssetFact, map[string]string, error) {
	assetIDs := distinctAssetIDs(traces)
	if len(assetIDs) == 0 {
		return []facts.AssetFact{}, nil, nil
	}

	var (
		rows    []domain.AssetRow
		devices map[string]string
		last    = make([]*domain.TraceRow, len(assetIDs))
	)

	var g errgroup.Group
	g.SetLimit(maxAssetReads)
	g.Go(func() error {
		r, err := s.sources.Assets().ReadAssetsByIDs(ctx, id, assetIDs)
		if err != nil {
			s.degraded(ctx, logger, "assets", err)
			return nil
		}
		rows = r
		return nil
	})
	if s.devices != nil {
		g.Go(func() error {
			d, err := s.devices.ResolveDevices(ctx, id, assetIDs)
			if err != nil {
				s.degraded(ctx, logger, "devices", err)
				return nil
			}
			devices = d
			return nil
		})
	}
	for i, assetID := range assetIDs {
		g.Go(func() error {
			t, err := s.sources.Traces().ReadLastTrace(ctx, id, assetID)
			if err != nil {
				s.degraded(ctx, logger, "last_trace", err)
				return nil
			}
			last[i] = t
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	index := make(map[string]int, len(assetIDs))
	for i, assetID := range assetIDs {
		index[assetID] = i
	}

	slices.SortFunc(rows, func(a, b domain.AssetRow) int {
		return cmp.Compare(a.ID, b.ID)
	})

	assets := make([]facts.AssetFact, 0, len(rows))
	for _, row := range rows {
		var lt *domain.TraceRow
		if i, ok := index[row.ID]; ok {
			lt = last[i]
		}
		assets = append(assets, facts.AssetFromRow(row, lt))
	}

	return assets, devices, nil
}

// degraded records a failed best-effort read. A read cut short by
// cancellation, whether the caller's or a failed sibling's, is not a source
// failure and is not counted.
func (s *Service) degraded(ctx context.Context, logger *zerolog.Logger, src string, err error) {
	if ctx.Err() != nil {
		return
	}
	s.metrics.SourceFailures.WithLabelValues(src).Inc()
	logger.Warn().Err(err).Str("source", src).Msg("source read failed; treating as no evidence")
}

func (s *Service) observe(start time.Time, resp *OrderFactsResponse, err error) {
	s.metrics.Duration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		s.metrics.Requests.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrContractViolation):
		s.metrics.Requests.WithLabelValues("contract_violation").Inc()
		return
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.Requests.WithLabelValues("not_found").Inc()
		return
	default:
		s.metrics.Requests.WithLabelValues("error").Inc()
		return
	}

	for _, w := range resp.FactWarningsStructured {
		s.metrics.Warnings.WithLabelValues(string(w.Code), string(w.Level)).Inc()
	}
	if resp.FactHealth != nil {
		s.metrics.HealthScore.Observe(float64(resp.FactHealth.Score))
	}
}

func distinctAssetIDs(traces []facts.TraceFact) []string {
	ids := make([]string, 0, len(traces))
	for _, t := range traces {
		ids = append(ids, t.AssetID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// watermark is the latest timestamp recorded anywhere in the snapshot.
func watermark(order facts.OrderFact, traces []facts.TraceFact, audit []domain.AuditRecord) time.Time {
	latest := order.CreatedAt
	bump := func(t time.Time) {
		if t.After(latest) {
			latest = t
		}
	}
	if t, ok := order.AcceptedAt.Get(); ok {
		bump(t)
	}
	if t, ok := order.CompletedAt.Get(); ok {
		bump(t)
	}
	for _, t := range traces {
		bump(t.CreatedAt)
	}
	for _, rec := range audit {
		bump(rec.CreatedAt)
	}
	return latest.UTC()
}
