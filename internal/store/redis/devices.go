package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gosuda/orderfacts/internal/domain"
)

// DeviceMap reads the asset→device binding hash maintained by the IoT
// ingestion side. It is only read here.
type DeviceMap struct {
	client *redis.Client
	prefix string
}

func New(ctx context.Context, addr, password string, db int, prefix string) (*DeviceMap, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &DeviceMap{client: client, prefix: prefix}, nil
}

func (m *DeviceMap) Close() error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("redis.DeviceMap.Close: %w", err)
	}
	return nil
}

func (m *DeviceMap) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.DeviceMap.Ping: %w", err)
	}
	return nil
}

// ResolveDevices returns the device bound to each asset. Assets with no
// binding are left out of the result.
func (m *DeviceMap) ResolveDevices(ctx context.Context, id domain.Identity, assetIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}

	vals, err := m.client.HMGet(ctx, DeviceMapKey(m.prefix, id.TenantID), assetIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.DeviceMap.ResolveDevices: %w", err)
	}

	return zipDevices(assetIDs, vals), nil
}

// zipDevices pairs HMGET results with their fields, skipping nil and empty
// values.
func zipDevices(assetIDs []string, vals []any) map[string]string {
	out := make(map[string]string, len(assetIDs))
	for i, v := range vals {
		if i >= len(assetIDs) {
			break
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		out[assetIDs[i]] = s
	}
	return out
}

// DeviceMapKey returns the hash key holding a tenant's asset bindings.
func DeviceMapKey(prefix string, tenantID uuid.UUID) string {
	return prefix + ":" + tenantID.String()
}
