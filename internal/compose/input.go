package compose

import "github.com/velto/animatic/internal/models"

// Input is the read-only snapshot the composition pipeline runs on.
// The loader (internal/db) assembles it and resolves every storage
// reference to an absolute public URL before composition starts —
// compose itself never touches the database or the network.
type Input struct {
	Project models.Project
	Scenes  []SceneInput // visible scenes, ordered by SceneIndex
	Track   *TrackInput  // active background track, nil when none
}

type SceneInput struct {
	Scene      models.Scene
	Utterances []UtteranceInput // ordered by OrderIndex
	// Legacy utterances attached to a pre-composited page asset.
	// Only consulted by the page-kind duration fallback.
	PageUtterances []UtteranceInput
	Balloons       []BalloonInput
	Telops         []models.Telop
	Cues           []CueInput

	// Resolved active-asset URLs, "" when the slot is empty.
	ImageURL string
	PageURL  string
	ClipURL  string
	VoiceURL string // legacy single scene voice asset
}

type UtteranceInput struct {
	Utterance models.Utterance
	AudioURL  string // "" until narration has been generated
}

type BalloonInput struct {
	Balloon       models.Balloon
	BakedImageURL string // "" when no pre-rendered image exists
}

type CueInput struct {
	Cue models.AudioCue
	URL string
}

type TrackInput struct {
	Track models.AudioTrack
	URL   string
}
