package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

const sceneColumns = `
	id, project_id, scene_index, hidden, display_kind, duration_override_ms,
	motion_preset, motion_params, image_asset_id, page_asset_id,
	clip_asset_id, clip_state, clip_duration_sec,
	voice_asset_id, voice_duration_ms, created_at, updated_at
`

func scanScene(row interface{ Scan(...interface{}) error }) (*models.Scene, error) {
	scene := &models.Scene{}
	err := row.Scan(
		&scene.ID, &scene.ProjectID, &scene.SceneIndex, &scene.Hidden,
		&scene.DisplayKind, &scene.DurationOverrideMs,
		&scene.MotionPreset, &scene.MotionParams,
		&scene.ImageAssetID, &scene.PageAssetID,
		&scene.ClipAssetID, &scene.ClipState, &scene.ClipDurationSec,
		&scene.VoiceAssetID, &scene.VoiceDurationMs,
		&scene.CreatedAt, &scene.UpdatedAt,
	)
	return scene, err
}

func (db *DB) GetScene(ctx context.Context, id int64) (*models.Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE id = $1`

	scene, err := scanScene(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}
	return scene, nil
}

// GetProjectScenes returns every scene of a project, hidden ones
// included, ordered by index (hidden scenes sort first with their
// negative indices).
func (db *DB) GetProjectScenes(ctx context.Context, projectID uuid.UUID) ([]models.Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE project_id = $1 ORDER BY scene_index`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		scenes = append(scenes, *scene)
	}

	return scenes, rows.Err()
}

// Sequencer store methods — see internal/sequencer.

func (db *DB) ListVisibleSceneIDs(ctx context.Context, projectID uuid.UUID) ([]int64, error) {
	query := `
		SELECT id FROM scenes
		WHERE project_id = $1 AND hidden = FALSE
		ORDER BY scene_index
	`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visible scenes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan scene id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (db *DB) MaxVisibleIndex(ctx context.Context, projectID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(MAX(scene_index), 0) FROM scenes
		WHERE project_id = $1 AND hidden = FALSE
	`

	var max int
	err := db.QueryRowContext(ctx, query, projectID).Scan(&max)
	return max, err
}

func (db *DB) SetSceneIndex(ctx context.Context, sceneID int64, index int) error {
	query := `UPDATE scenes SET scene_index = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, index, sceneID)
	return err
}

func (db *DB) SetSceneHidden(ctx context.Context, sceneID int64, hidden bool, index int) error {
	query := `UPDATE scenes SET hidden = $1, scene_index = $2, updated_at = NOW() WHERE id = $3`
	_, err := db.ExecContext(ctx, query, hidden, index, sceneID)
	return err
}

// Worker-side asset pointer updates.

func (db *DB) UpdateSceneImage(ctx context.Context, sceneID int64, assetID uuid.UUID) error {
	query := `UPDATE scenes SET image_asset_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, assetID, sceneID)
	return err
}

func (db *DB) UpdateSceneClip(ctx context.Context, sceneID int64, assetID uuid.UUID, state models.ClipState, durationSec float64) error {
	query := `
		UPDATE scenes
		SET clip_asset_id = $1, clip_state = $2, clip_duration_sec = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, assetID, state, durationSec, sceneID)
	return err
}

func (db *DB) UpdateSceneClipState(ctx context.Context, sceneID int64, state models.ClipState) error {
	query := `UPDATE scenes SET clip_state = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, state, sceneID)
	return err
}
