package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

const utteranceColumns = `
	id, scene_id, order_index, role, character_key, text, voice_id,
	audio_asset_id, audio_duration_ms, created_at, updated_at
`

func scanUtterance(row interface{ Scan(...interface{}) error }) (*models.Utterance, error) {
	u := &models.Utterance{}
	err := row.Scan(
		&u.ID, &u.SceneID, &u.OrderIndex, &u.Role, &u.CharacterKey,
		&u.Text, &u.VoiceID, &u.AudioAssetID, &u.AudioDurationMs,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (db *DB) GetUtterance(ctx context.Context, id int64) (*models.Utterance, error) {
	query := `SELECT ` + utteranceColumns + ` FROM utterances WHERE id = $1`

	u, err := scanUtterance(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("utterance not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get utterance: %w", err)
	}
	return u, nil
}

func (db *DB) GetSceneUtterances(ctx context.Context, sceneID int64) ([]models.Utterance, error) {
	query := `SELECT ` + utteranceColumns + ` FROM utterances WHERE scene_id = $1 ORDER BY order_index`

	rows, err := db.QueryContext(ctx, query, sceneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query utterances: %w", err)
	}
	defer rows.Close()

	var utterances []models.Utterance
	for rows.Next() {
		u, err := scanUtterance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan utterance: %w", err)
		}
		utterances = append(utterances, *u)
	}

	return utterances, rows.Err()
}

// GetPageUtterances returns the legacy utterances attached to a
// pre-composited page asset (back-compat path of the duration cascade).
func (db *DB) GetPageUtterances(ctx context.Context, pageAssetID uuid.UUID) ([]models.Utterance, error) {
	query := `SELECT ` + utteranceColumns + ` FROM page_utterances WHERE page_asset_id = $1 ORDER BY order_index`

	rows, err := db.QueryContext(ctx, query, pageAssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page utterances: %w", err)
	}
	defer rows.Close()

	var utterances []models.Utterance
	for rows.Next() {
		u, err := scanUtterance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page utterance: %w", err)
		}
		utterances = append(utterances, *u)
	}

	return utterances, rows.Err()
}

func (db *DB) UpdateUtteranceAudio(ctx context.Context, id int64, assetID uuid.UUID, durationMs int) error {
	query := `
		UPDATE utterances
		SET audio_asset_id = $1, audio_duration_ms = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, assetID, durationMs, id)
	return err
}
