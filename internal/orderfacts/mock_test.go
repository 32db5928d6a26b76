package orderfacts_test

import (
	"context"

	"github.com/gosuda/orderfacts/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock FactSources
// ---------------------------------------------------------------------------

type mockSources struct {
	orders *mockOrderReader
	audit  *mockAuditReader
	traces *mockTraceReader
	assets *mockAssetReader
}

func (m *mockSources) Orders() domain.OrderReader     { return m.orders }
func (m *mockSources) AuditTrail() domain.AuditReader { return m.audit }
func (m *mockSources) Traces() domain.TraceReader     { return m.traces }
func (m *mockSources) Assets() domain.AssetReader     { return m.assets }

type mockOrderReader struct {
	readOrderFunc func(ctx context.Context, id domain.Identity, orderID string) (*domain.OrderRow, error)
}

func (m *mockOrderReader) ReadOrder(ctx context.Context, id domain.Identity, orderID string) (*domain.OrderRow, error) {
	return m.readOrderFunc(ctx, id, orderID)
}

type mockAuditReader struct {
	readAuditTrailFunc func(ctx context.Context, id domain.Identity, targetType, targetID string) ([]domain.AuditRecord, error)
}

func (m *mockAuditReader) ReadAuditTrail(ctx context.Context, id domain.Identity, targetType, targetID string) ([]domain.AuditRecord, error) {
	return m.readAuditTrailFunc(ctx, id, targetType, targetID)
}

type mockTraceReader struct {
	readTracesFunc    func(ctx context.Context, id domain.Identity, orderID string) ([]domain.TraceRow, error)
	readLastTraceFunc func(ctx context.Context, id domain.Identity, assetID string) (*domain.TraceRow, error)
}

func (m *mockTraceReader) ReadTraces(ctx context.Context, id domain.Identity, orderID string) ([]domain.TraceRow, error) {
	return m.readTracesFunc(ctx, id, orderID)
}

func (m *mockTraceReader) ReadLastTrace(ctx context.Context, id domain.Identity, assetID string) (*domain.TraceRow, error) {
	return m.readLastTraceFunc(ctx, id, assetID)
}

type mockAssetReader struct {
	readAssetsByIDsFunc func(ctx context.Context, id domain.Identity, assetIDs []string) ([]domain.AssetRow, error)
}

func (m *mockAssetReader) ReadAssetsByIDs(ctx context.Context, id domain.Identity, assetIDs []string) ([]domain.AssetRow, error) {
	return m.readAssetsByIDsFunc(ctx, id, assetIDs)
}

type mockDeviceResolver struct {
	resolveDevicesFunc func(ctx context.Context, id domain.Identity, assetIDs []string) (map[string]string, error)
}

func (m *mockDeviceResolver) ResolveDevices(ctx context.Context, id domain.Identity, assetIDs []string) (map[string]string, error) {
	return m.resolveDevicesFunc(ctx, id, assetIDs)
}

// newSources returns sources that serve order, audit and traces as given.
// Assets are derived from the traces and last traces from the latest trace
// per asset.
func newSources(order *domain.OrderRow, audit []domain.AuditRecord, traces []domain.TraceRow) *mockSources {
	return &mockSources{
		orders: &mockOrderReader{
			readOrderFunc: func(_ context.Context, _ domain.Identity, orderID string) (*domain.OrderRow, error) {
				if order == nil || order.ID != orderID {
					return nil, domain.ErrNotFound
				}
				o := *order
				return &o, nil
			},
		},
		audit: &mockAuditReader{
			readAuditTrailFunc: func(context.Context, domain.Identity, string, string) ([]domain.AuditRecord, error) {
				return audit, nil
			},
		},
		traces: &mockTraceReader{
			readTracesFunc: func(context.Context, domain.Identity, string) ([]domain.TraceRow, error) {
				return traces, nil
			},
			readLastTraceFunc: func(_ context.Context, _ domain.Identity, assetID string) (*domain.TraceRow, error) {
				var last *domain.TraceRow
				for i := range traces {
					if traces[i].AssetID != assetID {
						continue
					}
					if last == nil || traces[i].CreatedAt.After(last.CreatedAt) {
						last = &traces[i]
					}
				}
				return last, nil
			},
		},
		assets: &mockAssetReader{
			readAssetsByIDsFunc: func(_ context.Context, _ domain.Identity, ids []string) ([]domain.AssetRow, error) {
				rows := make([]domain.AssetRow, 0, len(ids))
				// Reverse order to show the service sorts.
				for i := len(ids) - 1; i >= 0; i-- {
					rows = append(rows, domain.AssetRow{ID: ids[i], Status: "in_use"})
				}
				return rows, nil
			},
		},
	}
}
