package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/velto/animatic/internal/models"
)

func (db *DB) CreateAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, project_id, scene_id, type, storage_bucket, storage_path, content_type, byte_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		asset.ID, asset.ProjectID, asset.SceneID, asset.Type,
		asset.StorageBucket, asset.StoragePath, asset.ContentType, asset.ByteSize,
	).Scan(&asset.CreatedAt)
}

func (db *DB) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	query := `
		SELECT id, project_id, scene_id, type, storage_bucket, storage_path,
		       content_type, byte_size, created_at
		FROM assets
		WHERE id = $1
	`

	asset := &models.Asset{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&asset.ID, &asset.ProjectID, &asset.SceneID, &asset.Type,
		&asset.StorageBucket, &asset.StoragePath,
		&asset.ContentType, &asset.ByteSize, &asset.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// GetAssetPaths bulk-resolves asset ids to storage paths. The build
// loader uses this to avoid one query per asset pointer.
func (db *DB) GetAssetPaths(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	query := `SELECT id, storage_path FROM assets WHERE id = ANY($1)`

	rows, err := db.QueryContext(ctx, query, pqUUIDArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query asset paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, fmt.Errorf("failed to scan asset path: %w", err)
		}
		paths[id] = path
	}

	return paths, rows.Err()
}

func pqUUIDArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}
