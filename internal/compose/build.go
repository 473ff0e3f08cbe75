package compose

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/velto/animatic/internal/models"
)

// Result is one full composition pass. Build is only safe to submit
// when Critical is empty; Advisory never blocks.
type Result struct {
	Build    *models.BuildRequest
	Hash     string
	Critical []Issue
	Advisory []Issue
}

// CanGenerate reports whether the build may be handed to the renderer.
func (r *Result) CanGenerate() bool {
	return len(r.Critical) == 0
}

// Compose runs the whole pipeline over a loaded snapshot: per scene it
// resolves duration, selects the visual, lays out voices, synchronizes
// balloons and telops, composes the audio layer, and verifies URL
// absoluteness. It visits every scene and collects every issue — a
// scene with a critical failure is excluded from the document but never
// stops the pass, because the authoring UI needs the complete report.
func Compose(in *Input) (*Result, error) {
	res := &Result{}

	scenes := visibleScenes(in.Scenes)

	build := &models.BuildRequest{
		SchemaVersion: models.BuildSchemaVersion,
		Project:       models.BuildProject{ID: in.Project.ID, Title: in.Project.Title},
		Output: models.OutputSettings{
			Resolution: models.Resolution{Width: in.Project.Width, Height: in.Project.Height},
			FPS:        in.Project.FPS,
			Codec:      in.Project.Codec,
		},
		Timeline: models.BuildTimeline{Scenes: []models.BuildScene{}},
	}

	videoCursor := 0
	hasAudio := false
	scenesWithVoice := 0

	for order, s := range scenes {
		sceneID := s.Scene.ID

		visual, err := SelectVisual(&s)
		if err != nil {
			res.Critical = append(res.Critical, issueFromError(err))
			// Composition halts for this scene; keep validating the rest.
			continue
		}
		checkAbsolute(res, sceneID, "visual.source", visual.Source)

		duration := ResolveDuration(&s)
		track := BuildVoiceTrack(s.Utterances)
		balloons, balloonWarnings := SyncBalloons(&s, track, duration.Ms, in.Project.TextMode)
		telops, telopWarnings := SyncTelops(&s, track, duration.Ms)
		cues, cueWarnings := ComposeCues(&s, duration.Ms)

		res.Advisory = append(res.Advisory, balloonWarnings...)
		res.Advisory = append(res.Advisory, telopWarnings...)
		res.Advisory = append(res.Advisory, cueWarnings...)

		for _, v := range track.Entries {
			checkAbsolute(res, sceneID, "voices.audio_url", v.AudioURL)
		}
		for _, b := range balloons {
			if b.BakedImageURL != nil {
				checkAbsolute(res, sceneID, "balloons.baked_image_url", *b.BakedImageURL)
			}
		}
		for _, c := range cues {
			checkAbsolute(res, sceneID, "sfx.url", c.URL)
		}

		// Layer 2 advisories for this scene.
		if hasDialogueText(s.Utterances) && len(track.Entries) == 0 {
			res.Advisory = append(res.Advisory, Issue{
				SceneID: sceneID,
				Field:   "voices",
				Reason:  ReasonSilentDialogue,
				Detail:  "dialogue text present but no narration has been generated",
			})
		}
		if len(track.Entries) == 0 && len(cues) == 0 {
			res.Advisory = append(res.Advisory, Issue{
				SceneID: sceneID,
				Field:   "audio",
				Reason:  ReasonNoAudio,
			})
		}

		if len(track.Entries) > 0 {
			hasAudio = true
			scenesWithVoice++
		}
		if len(cues) > 0 {
			hasAudio = true
		}

		build.Timeline.Scenes = append(build.Timeline.Scenes, models.BuildScene{
			SceneID:        sceneID,
			Order:          order + 1,
			StartMs:        videoCursor,
			DurationMs:     duration.Ms,
			DurationReason: duration.Reason,
			Visual:         visual,
			Voices:         track.Entries,
			Balloons:       balloons,
			Telops:         telops,
			SFX:            cues,
		})
		videoCursor += duration.Ms
	}

	build.BGM = ComposeBGM(in.Track)
	if build.BGM != nil {
		checkAbsolute(res, 0, "bgm.url", build.BGM.URL)
		hasAudio = true
	}

	build.Summary = models.BuildSummary{
		TotalScenes:     len(build.Timeline.Scenes),
		TotalDurationMs: videoCursor,
		HasAudio:        hasAudio,
		ScenesWithVoice: scenesWithVoice,
	}

	hash, err := Fingerprint(build)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint build: %w", err)
	}

	res.Build = build
	res.Hash = hash
	return res, nil
}

// Fingerprint computes the content hash used as the idempotency key for
// render submission. Serialization is canonical because struct field
// order is fixed — the same state always yields the same bytes.
func Fingerprint(b *models.BuildRequest) (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to serialize build request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Serialize emits the submission document bytes.
func Serialize(b *models.BuildRequest) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize build request: %w", err)
	}
	return data, nil
}

// visibleScenes filters out hidden scenes and orders the rest by index.
func visibleScenes(scenes []SceneInput) []SceneInput {
	out := make([]SceneInput, 0, len(scenes))
	for _, s := range scenes {
		if !s.Scene.Hidden && s.Scene.SceneIndex > 0 {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Scene.SceneIndex < out[j].Scene.SceneIndex
	})
	return out
}

func hasDialogueText(utts []UtteranceInput) bool {
	for _, u := range utts {
		if u.Utterance.Role == models.RoleDialogue && u.Utterance.Text != "" {
			return true
		}
	}
	return false
}

// checkAbsolute records a critical issue when ref is not an absolute
// URL. The renderer has no base to resolve relative paths against.
func checkAbsolute(res *Result, sceneID int64, field, ref string) {
	if isAbsoluteURL(ref) {
		return
	}
	res.Critical = append(res.Critical, Issue{
		SceneID: sceneID,
		Field:   field,
		Reason:  ReasonRelativeURL,
		Detail:  fmt.Sprintf("%q is not an absolute URL", ref),
	})
}

func isAbsoluteURL(ref string) bool {
	if ref == "" {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func issueFromError(err error) Issue {
	if missing, ok := err.(*MissingAssetError); ok {
		return Issue{
			SceneID: missing.SceneID,
			Field:   missing.Field,
			Reason:  ReasonMissingAsset,
			Detail:  missing.Error(),
		}
	}
	return Issue{Reason: ReasonMissingAsset, Detail: err.Error()}
}
