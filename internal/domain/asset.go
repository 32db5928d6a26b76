package domain

import "context"

type AssetRow struct {
	ID     string
	Status string
}

type AssetReader interface {
	ReadAssetsByIDs(ctx context.Context, id Identity, assetIDs []string) ([]AssetRow, error)
}

// DeviceResolver maps asset ids to the IoT device currently bound to them.
// The mapping is best-effort: assets without a binding are simply absent.
type DeviceResolver interface {
	ResolveDevices(ctx context.Context, id Identity, assetIDs []string) (map[string]string, error)
}

// FactSources groups the independent readers the facts engine consumes.
// *postgres.Store satisfies this interface.
type FactSources interface {
	Orders() OrderReader
	AuditTrail() AuditReader
	Traces() TraceReader
	Assets() AssetReader
}
