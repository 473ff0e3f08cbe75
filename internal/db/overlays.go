package db

import (
	"context"
	"fmt"

	"github.com/velto/animatic/internal/models"
)

func (db *DB) GetSceneBalloons(ctx context.Context, sceneID int64) ([]models.Balloon, error) {
	query := `
		SELECT id, scene_id, utterance_id, center_x, center_y, width, height,
		       tail_x, tail_y, shape, style, policy, start_ms, end_ms,
		       baked_image_asset_id, baked_width_px, baked_height_px,
		       created_at, updated_at
		FROM balloons
		WHERE scene_id = $1
		ORDER BY id
	`

	rows, err := db.QueryContext(ctx, query, sceneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balloons: %w", err)
	}
	defer rows.Close()

	var balloons []models.Balloon
	for rows.Next() {
		var b models.Balloon
		err := rows.Scan(
			&b.ID, &b.SceneID, &b.UtteranceID, &b.CenterX, &b.CenterY,
			&b.Width, &b.Height, &b.TailX, &b.TailY, &b.Shape, &b.Style,
			&b.Policy, &b.StartMs, &b.EndMs,
			&b.BakedImageAssetID, &b.BakedWidthPx, &b.BakedHeightPx,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balloon: %w", err)
		}
		balloons = append(balloons, b)
	}

	return balloons, rows.Err()
}

func (db *DB) GetSceneTelops(ctx context.Context, sceneID int64) ([]models.Telop, error) {
	query := `
		SELECT id, scene_id, utterance_id, text, style, policy,
		       start_ms, end_ms, created_at, updated_at
		FROM telops
		WHERE scene_id = $1
		ORDER BY id
	`

	rows, err := db.QueryContext(ctx, query, sceneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query telops: %w", err)
	}
	defer rows.Close()

	var telops []models.Telop
	for rows.Next() {
		var t models.Telop
		err := rows.Scan(
			&t.ID, &t.SceneID, &t.UtteranceID, &t.Text, &t.Style,
			&t.Policy, &t.StartMs, &t.EndMs, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan telop: %w", err)
		}
		telops = append(telops, t)
	}

	return telops, rows.Err()
}
