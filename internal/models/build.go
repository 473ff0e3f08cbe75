package models

import "github.com/google/uuid"

// BuildSchemaVersion tags every emitted BuildRequest. Bump on any
// field-shape change so the renderer can reject documents it doesn't
// understand.
const BuildSchemaVersion = "1.5"

// BuildRequest is the versioned, immutable timeline document handed to
// the external renderer. Every asset reference in it must be an
// absolute URL. Field order is fixed by these struct definitions, which
// is what makes json.Marshal output canonical for hashing.
type BuildRequest struct {
	SchemaVersion string         `json:"schema_version"`
	Project       BuildProject   `json:"project"`
	Output        OutputSettings `json:"output"`
	Timeline      BuildTimeline  `json:"timeline"`
	BGM           *BGMBlock      `json:"bgm,omitempty"`
	Summary       BuildSummary   `json:"summary"`
}

type BuildProject struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type OutputSettings struct {
	Resolution Resolution `json:"resolution"`
	FPS        int        `json:"fps"`
	Codec      string     `json:"codec"`
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type BuildTimeline struct {
	Scenes []BuildScene `json:"scenes"`
}

type BuildScene struct {
	SceneID    int64          `json:"scene_id"`
	Order      int            `json:"order"`
	StartMs    int            `json:"start_ms"` // absolute within the video
	DurationMs int            `json:"duration_ms"`
	DurationReason string     `json:"duration_reason"`
	Visual     BuildVisual    `json:"visual"`
	Voices     []VoiceEntry   `json:"voices"`
	Balloons   []BalloonEntry `json:"balloons"`
	Telops     []TelopEntry   `json:"telops"`
	SFX        []CueEntry     `json:"sfx"`
}

type BuildVisual struct {
	Kind   DisplayKind  `json:"kind"`
	Source string       `json:"source"` // absolute URL
	Effect MotionEffect `json:"effect"`
}

// MotionEffect describes Ken Burns motion for plain images. Kind "none"
// for pages and clips.
type MotionEffect struct {
	Kind       string   `json:"kind"` // "none" or "ken_burns"
	ZoomFactor *float64 `json:"zoom_factor,omitempty"`
	PanX       *float64 `json:"pan_x,omitempty"`
	PanY       *float64 `json:"pan_y,omitempty"`
}

// VoiceEntry intervals are scene-relative and non-overlapping by
// construction (cumulative cursor).
type VoiceEntry struct {
	UtteranceID  int64         `json:"utterance_id"`
	Role         UtteranceRole `json:"role"`
	CharacterKey *string       `json:"character_key,omitempty"`
	Text         string        `json:"text"`
	AudioURL     string        `json:"audio_url"`
	StartMs      int           `json:"start_ms"`
	EndMs        int           `json:"end_ms"`
}

type BalloonEntry struct {
	BalloonID     int64    `json:"balloon_id"`
	UtteranceID   *int64   `json:"utterance_id,omitempty"`
	Text          string   `json:"text"`
	StartMs       int      `json:"start_ms"`
	EndMs         int      `json:"end_ms"`
	Position      Point    `json:"position"`
	Size          Dim      `json:"size"`
	Tail          *Point   `json:"tail,omitempty"`
	Shape         string   `json:"shape"`
	Style         JSONB    `json:"style,omitempty"`
	BakedImageURL *string  `json:"baked_image_url,omitempty"`
	BakedSizePx   *PixelDim `json:"baked_size_px,omitempty"`
}

type TelopEntry struct {
	TelopID     int64  `json:"telop_id"`
	UtteranceID *int64 `json:"utterance_id,omitempty"`
	Text        string `json:"text"`
	StartMs     int    `json:"start_ms"`
	EndMs       int    `json:"end_ms"`
	Style       JSONB  `json:"style,omitempty"`
}

type CueEntry struct {
	CueID     int64   `json:"cue_id"`
	URL       string  `json:"url"`
	StartMs   int     `json:"start_ms"`
	EndMs     int     `json:"end_ms"`
	Volume    float64 `json:"volume"`
	Loop      bool    `json:"loop"`
	FadeInMs  int     `json:"fade_in_ms"`
	FadeOutMs int     `json:"fade_out_ms"`
}

type BGMBlock struct {
	URL            string        `json:"url"`
	Volume         float64       `json:"volume"`
	Loop           bool          `json:"loop"`
	FadeInMs       int           `json:"fade_in_ms"`
	FadeOutMs      int           `json:"fade_out_ms"`
	VideoStartMs   *int          `json:"video_start_ms,omitempty"`
	VideoEndMs     *int          `json:"video_end_ms,omitempty"`
	SourceOffsetMs *int          `json:"source_offset_ms,omitempty"`
	Ducking        *DuckingBlock `json:"ducking,omitempty"`
}

// DuckingBlock carries the ducking profile verbatim; envelope
// application is the renderer's job.
type DuckingBlock struct {
	Volume    float64 `json:"volume"`
	AttackMs  int     `json:"attack_ms"`
	ReleaseMs int     `json:"release_ms"`
}

type BuildSummary struct {
	TotalScenes     int  `json:"total_scenes"`
	TotalDurationMs int  `json:"total_duration_ms"`
	HasAudio        bool `json:"has_audio"`
	ScenesWithVoice int  `json:"scenes_with_voice"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Dim struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type PixelDim struct {
	W int `json:"w"`
	H int `json:"h"`
}
