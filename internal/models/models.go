package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Enums
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusGenerating ProjectStatus = "generating"
	ProjectStatusSubmitted  ProjectStatus = "submitted"
	ProjectStatusRendering  ProjectStatus = "rendering"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusFailed     ProjectStatus = "failed"
)

// DisplayKind selects which asset slot backs a scene visually.
type DisplayKind string

const (
	DisplayKindImage DisplayKind = "image" // plain image, Ken Burns eligible
	DisplayKindPage  DisplayKind = "page"  // pre-composited page, no motion
	DisplayKindClip  DisplayKind = "clip"  // video clip, no motion
)

// TextMode controls how balloon text reaches the renderer.
type TextMode string

const (
	TextModeDrawn TextMode = "drawn" // renderer draws the text
	TextModeBaked TextMode = "baked" // text pre-rendered into balloon images
	TextModeNone  TextMode = "none"
)

// DisplayPolicy governs when an overlay (balloon/telop) is visible.
type DisplayPolicy string

const (
	PolicyAlwaysOn     DisplayPolicy = "always_on"
	PolicyVoiceWindow  DisplayPolicy = "voice_window"
	PolicyManualWindow DisplayPolicy = "manual_window"
)

type UtteranceRole string

const (
	RoleNarration UtteranceRole = "narration"
	RoleDialogue  UtteranceRole = "dialogue"
)

// ClipState tracks generated motion clips. Only completed clips are
// usable as scene visuals.
type ClipState string

const (
	ClipStatePending    ClipState = "pending"
	ClipStateProcessing ClipState = "processing"
	ClipStateCompleted  ClipState = "completed"
	ClipStateFailed     ClipState = "failed"
)

type AssetType string

const (
	AssetTypeImage     AssetType = "image"
	AssetTypePage      AssetType = "page"
	AssetTypeClipVideo AssetType = "clip_video"
	AssetTypeVoice     AssetType = "voice"
	AssetTypeBalloon   AssetType = "balloon_image"
	AssetTypeSound     AssetType = "sound"
	AssetTypeMusic     AssetType = "music"
	AssetTypeBuildJSON AssetType = "build_json"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Models

type Project struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Status        ProjectStatus `json:"status"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	FPS           int           `json:"fps"`
	Codec         string        `json:"codec"`
	TextMode      TextMode      `json:"text_mode"`
	LastBuildHash *string       `json:"last_build_hash,omitempty"`
	ErrorMessage  *string       `json:"error_message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Scene is one unit of the timeline. SceneIndex is the project-scoped
// ordering slot: visible scenes occupy the contiguous range 1..N, hidden
// scenes carry -ID so they can never collide with each other or with a
// visible slot. Hiding is an index flip, never a delete — dependent
// utterances/balloons/cues survive.
type Scene struct {
	ID                 int64       `json:"id"`
	ProjectID          uuid.UUID   `json:"project_id"`
	SceneIndex         int         `json:"scene_index"`
	Hidden             bool        `json:"hidden"`
	DisplayKind        DisplayKind `json:"display_kind"`
	DurationOverrideMs *int        `json:"duration_override_ms,omitempty"`
	MotionPreset       *string     `json:"motion_preset,omitempty"` // Ken Burns preset id, images only
	MotionParams       JSONB       `json:"motion_params,omitempty"` // zoom factor, pan center
	ImageAssetID       *uuid.UUID  `json:"image_asset_id,omitempty"`
	PageAssetID        *uuid.UUID  `json:"page_asset_id,omitempty"`
	ClipAssetID        *uuid.UUID  `json:"clip_asset_id,omitempty"`
	ClipState          *ClipState  `json:"clip_state,omitempty"`
	ClipDurationSec    *float64    `json:"clip_duration_sec,omitempty"`
	// Legacy single voice asset, predates per-utterance audio
	VoiceAssetID    *uuid.UUID `json:"voice_asset_id,omitempty"`
	VoiceDurationMs *int       `json:"voice_duration_ms,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Utterance is one unit of spoken text within a scene. AudioAssetID and
// AudioDurationMs stay nil until narration has been generated.
type Utterance struct {
	ID              int64         `json:"id"`
	SceneID         int64         `json:"scene_id"`
	OrderIndex      int           `json:"order_index"` // 1-based, unique within the scene
	Role            UtteranceRole `json:"role"`
	CharacterKey    *string       `json:"character_key,omitempty"` // expected for dialogue, may be unresolved
	Text            string        `json:"text"`
	VoiceID         *string       `json:"voice_id,omitempty"`
	AudioAssetID    *uuid.UUID    `json:"audio_asset_id,omitempty"`
	AudioDurationMs *int          `json:"audio_duration_ms,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Balloon is a speech/thought bubble overlay. UtteranceID is a weak
// reference: it may be nil (manually placed) or point at an utterance
// that no longer yields a voice window.
type Balloon struct {
	ID                int64         `json:"id"`
	SceneID           int64         `json:"scene_id"`
	UtteranceID       *int64        `json:"utterance_id,omitempty"`
	CenterX           float64       `json:"center_x"` // normalized 0..1
	CenterY           float64       `json:"center_y"`
	Width             float64       `json:"width"`
	Height            float64       `json:"height"`
	TailX             *float64      `json:"tail_x,omitempty"`
	TailY             *float64      `json:"tail_y,omitempty"`
	Shape             string        `json:"shape"` // "speech", "thought", "shout", "caption"
	Style             JSONB         `json:"style,omitempty"`
	Policy            DisplayPolicy `json:"policy"`
	StartMs           *int          `json:"start_ms,omitempty"` // manual_window only
	EndMs             *int          `json:"end_ms,omitempty"`
	BakedImageAssetID *uuid.UUID    `json:"baked_image_asset_id,omitempty"`
	BakedWidthPx      *int          `json:"baked_width_px,omitempty"`
	BakedHeightPx     *int          `json:"baked_height_px,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Telop is an on-screen caption independent of balloons.
type Telop struct {
	ID          int64         `json:"id"`
	SceneID     int64         `json:"scene_id"`
	UtteranceID *int64        `json:"utterance_id,omitempty"`
	Text        string        `json:"text"`
	Style       JSONB         `json:"style,omitempty"`
	Policy      DisplayPolicy `json:"policy"`
	StartMs     *int          `json:"start_ms,omitempty"`
	EndMs       *int          `json:"end_ms,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// AudioCue is a scene-level sound effect entry.
type AudioCue struct {
	ID               int64     `json:"id"`
	SceneID          int64     `json:"scene_id"`
	AssetID          uuid.UUID `json:"asset_id"`
	StartMs          int       `json:"start_ms"` // scene-relative
	EndMs            *int      `json:"end_ms,omitempty"`
	SourceDurationMs *int      `json:"source_duration_ms,omitempty"`
	Loop             bool      `json:"loop"`
	Volume           float64   `json:"volume"`
	FadeInMs         int       `json:"fade_in_ms"`
	FadeOutMs        int       `json:"fade_out_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// AudioTrack is the project background music. At most one row per
// project has Active=true.
type AudioTrack struct {
	ID        int64     `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	AssetID   uuid.UUID `json:"asset_id"`
	Active    bool      `json:"active"`
	Volume    float64   `json:"volume"`
	Loop      bool      `json:"loop"`
	FadeInMs  int       `json:"fade_in_ms"`
	FadeOutMs int       `json:"fade_out_ms"`
	// Ducking profile — passed through to the renderer, never applied here
	DuckVolume    *float64 `json:"duck_volume,omitempty"`
	DuckAttackMs  *int     `json:"duck_attack_ms,omitempty"`
	DuckReleaseMs *int     `json:"duck_release_ms,omitempty"`
	// Window within the video, distinct from the source playback offset
	VideoStartMs   *int      `json:"video_start_ms,omitempty"`
	VideoEndMs     *int      `json:"video_end_ms,omitempty"`
	SourceOffsetMs *int      `json:"source_offset_ms,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Asset struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	SceneID       *int64    `json:"scene_id,omitempty"`
	Type          AssetType `json:"type"`
	StorageBucket string    `json:"storage_bucket"`
	StoragePath   string    `json:"storage_path"`
	ContentType   *string   `json:"content_type,omitempty"`
	ByteSize      *int64    `json:"byte_size,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Job struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	SceneID      *int64     `json:"scene_id,omitempty"`
	Type         string     `json:"type"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DTOs for the authoring surface

type CreateProjectRequest struct {
	Title    string   `json:"title"`
	Width    *int     `json:"width,omitempty"`
	Height   *int     `json:"height,omitempty"`
	FPS      *int     `json:"fps,omitempty"`
	Codec    *string  `json:"codec,omitempty"`
	TextMode TextMode `json:"text_mode,omitempty"`
}

type CreateProjectResponse struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Status    ProjectStatus `json:"status"`
}

// ProjectResponse bundles a project with its scenes for the editor.
type ProjectResponse struct {
	Project
	Scenes []Scene `json:"scenes"`
}

// ReorderScenesRequest carries the full target order of visible scene ids.
type ReorderScenesRequest struct {
	SceneIDs []int64 `json:"scene_ids"`
}

type BuildAcceptedResponse struct {
	ProjectID uuid.UUID `json:"project_id"`
	JobID     uuid.UUID `json:"job_id"`
	Hash      string    `json:"hash"`
}
