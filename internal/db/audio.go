package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

func (db *DB) GetSceneCues(ctx context.Context, sceneID int64) ([]models.AudioCue, error) {
	query := `
		SELECT id, scene_id, asset_id, start_ms, end_ms, source_duration_ms,
		       loop, volume, fade_in_ms, fade_out_ms, created_at
		FROM audio_cues
		WHERE scene_id = $1
		ORDER BY start_ms, id
	`

	rows, err := db.QueryContext(ctx, query, sceneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio cues: %w", err)
	}
	defer rows.Close()

	var cues []models.AudioCue
	for rows.Next() {
		var c models.AudioCue
		err := rows.Scan(
			&c.ID, &c.SceneID, &c.AssetID, &c.StartMs, &c.EndMs,
			&c.SourceDurationMs, &c.Loop, &c.Volume,
			&c.FadeInMs, &c.FadeOutMs, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audio cue: %w", err)
		}
		cues = append(cues, c)
	}

	return cues, rows.Err()
}

// GetActiveAudioTrack returns the project's active background track,
// or nil when none is active.
func (db *DB) GetActiveAudioTrack(ctx context.Context, projectID uuid.UUID) (*models.AudioTrack, error) {
	query := `
		SELECT id, project_id, asset_id, active, volume, loop,
		       fade_in_ms, fade_out_ms, duck_volume, duck_attack_ms, duck_release_ms,
		       video_start_ms, video_end_ms, source_offset_ms, created_at
		FROM audio_tracks
		WHERE project_id = $1 AND active = TRUE
		LIMIT 1
	`

	track := &models.AudioTrack{}
	err := db.QueryRowContext(ctx, query, projectID).Scan(
		&track.ID, &track.ProjectID, &track.AssetID, &track.Active,
		&track.Volume, &track.Loop, &track.FadeInMs, &track.FadeOutMs,
		&track.DuckVolume, &track.DuckAttackMs, &track.DuckReleaseMs,
		&track.VideoStartMs, &track.VideoEndMs, &track.SourceOffsetMs,
		&track.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio track: %w", err)
	}

	return track, nil
}
