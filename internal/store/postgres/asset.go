package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/orderfacts/internal/domain"
)

type AssetRepo struct {
	pool *pgxpool.Pool
}

func NewAssetRepo(pool *pgxpool.Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

func (r *AssetRepo) ReadAssetsByIDs(ctx context.Context, id domain.Identity, assetIDs []string) ([]domain.AssetRow, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(status, '')
		 FROM assets WHERE tenant_id = $1 AND id = ANY($2)
		 ORDER BY id`,
		id.TenantID, assetIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("assetRepo.ReadAssetsByIDs: %w", err)
	}
	defer rows.Close()

	var assets []domain.AssetRow
	for rows.Next() {
		var a domain.AssetRow
		if err := rows.Scan(&a.ID, &a.Status); err != nil {
			return nil, fmt.Errorf("assetRepo.ReadAssetsByIDs: scan: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assetRepo.ReadAssetsByIDs: rows: %w", err)
	}

	return assets, nil
}
