// Package source wraps fact readers with a circuit breaker and bounded
// retries. A tripped breaker is reported as domain.ErrSourceUnavailable.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"

	"github.com/gosuda/orderfacts/internal/domain"
)

type Settings struct {
	// Attempts per read, including the first.
	Attempts uint
	// FailureThreshold is the number of consecutive failures that opens a
	// breaker.
	FailureThreshold uint32
	// OpenTimeout is how long an open breaker rejects reads before probing.
	OpenTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Attempts:         3,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

type guard struct {
	cb       *gobreaker.CircuitBreaker
	attempts uint
}

func newGuard(name string, s Settings) *guard {
	attempts := s.Attempts
	if attempts == 0 {
		attempts = 1
	}
	threshold := s.FailureThreshold

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		// Absent rows and caller cancellation say nothing about source health.
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
	})

	return &guard{cb: cb, attempts: attempts}
}

func retryable(err error) bool {
	return !errors.Is(err, domain.ErrNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// call runs fn under the breaker and retry policy and returns fn's own last
// error, not a retry aggregate, so sentinel checks keep working.
func call[T any](ctx context.Context, g *guard, fn func(context.Context) (T, error)) (T, error) {
	var (
		out     T
		lastErr error
	)

	_, err := g.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(g.attempts),
			retry.RetryIf(retryable),
		)
		retryErr := r.Do(func() error {
			out, lastErr = fn(ctx)
			return lastErr
		})
		if retryErr != nil && lastErr != nil {
			return nil, lastErr
		}
		return nil, retryErr
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w", g.cb.Name(), domain.ErrSourceUnavailable)
		}
		return zero, err
	}

	return out, nil
}

// Sources is a domain.FactSources whose readers are individually guarded, so
// a failing audit log does not trip reads of the orders table.
type Sources struct {
	orders *orderReader
	audit  *auditReader
	traces *traceReader
	assets *assetReader
}

func Wrap(upstream domain.FactSources, s Settings) *Sources {
	return &Sources{
		orders: &orderReader{next: upstream.Orders(), g: newGuard("orders", s)},
		audit:  &auditReader{next: upstream.AuditTrail(), g: newGuard("audit", s)},
		traces: &traceReader{next: upstream.Traces(), g: newGuard("traces", s)},
		assets: &assetReader{next: upstream.Assets(), g: newGuard("assets", s)},
	}
}

func (s *Sources) Orders() domain.OrderReader     { return s.orders }
func (s *Sources) AuditTrail() domain.AuditReader { return s.audit }
func (s *Sources) Traces() domain.TraceReader     { return s.traces }
func (s *Sources) Assets() domain.AssetReader     { return s.assets }

type orderReader struct {
	next domain.OrderReader
	g    *guard
}

func (r *orderReader) ReadOrder(ctx context.Context, id domain.Identity, orderID string) (*domain.OrderRow, error) {
	return call(ctx, r.g, func(ctx context.Context) (*domain.OrderRow, error) {
		return r.next.ReadOrder(ctx, id, orderID)
	})
}

type auditReader struct {
	next domain.AuditReader
	g    *guard
}

func (r *auditReader) ReadAuditTrail(ctx context.Context, id domain.Identity, targetType, targetID string) ([]domain.AuditRecord, error) {
	return call(ctx, r.g, func(ctx context.Context) ([]domain.AuditRecord, error) {
		return r.next.ReadAuditTrail(ctx, id, targetType, targetID)
	})
}

type traceReader struct {
	next domain.TraceReader
	g    *guard
}

func (r *traceReader) ReadTraces(ctx context.Context, id domain.Identity, orderID string) ([]domain.TraceRow, error) {
	return call(ctx, r.g, func(ctx context.Context) ([]domain.TraceRow, error) {
		return r.next.ReadTraces(ctx, id, orderID)
	})
}

func (r *traceReader) ReadLastTrace(ctx context.Context, id domain.Identity, assetID string) (*domain.TraceRow, error) {
	return call(ctx, r.g, func(ctx context.Context) (*domain.TraceRow, error) {
		return r.next.ReadLastTrace(ctx, id, assetID)
	})
}

type assetReader struct {
	next domain.AssetReader
	g    *guard
}

func (r *assetReader) ReadAssetsByIDs(ctx context.Context, id domain.Identity, assetIDs []string) ([]domain.AssetRow, error) {
	return call(ctx, r.g, func(ctx context.Context) ([]domain.AssetRow, error) {
		return r.next.ReadAssetsByIDs(ctx, id, assetIDs)
	})
}

type deviceResolver struct {
	next domain.DeviceResolver
	g    *guard
}

// WrapDevices guards a device resolver with its own breaker.
func WrapDevices(next domain.DeviceResolver, s Settings) domain.DeviceResolver {
	return &deviceResolver{next: next, g: newGuard("devices", s)}
}

func (r *deviceResolver) ResolveDevices(ctx context.Context, id domain.Identity, assetIDs []string) (map[string]string, error) {
	return call(ctx, r.g, func(ctx context.Context) (map[string]string, error) {
		return r.next.ResolveDevices(ctx, id, assetIDs)
	})
}
