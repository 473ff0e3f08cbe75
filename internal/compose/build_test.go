package compose

import (
	"testing"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

func testInput() *Input {
	return &Input{
		Project: models.Project{
			ID:       uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			Title:    "test project",
			Width:    1920,
			Height:   1080,
			FPS:      30,
			Codec:    "h264",
			TextMode: models.TextModeDrawn,
		},
		Scenes: []SceneInput{
			{
				Scene:      models.Scene{ID: 1, SceneIndex: 1, DisplayKind: models.DisplayKindImage},
				ImageURL:   "https://cdn.example.com/s1.png",
				Utterances: []UtteranceInput{voicedUtterance(1, "hello", 2000, "https://cdn.example.com/u1.mp3")},
			},
			{
				Scene:    models.Scene{ID: 2, SceneIndex: 2, DisplayKind: models.DisplayKindImage, DurationOverrideMs: intP(4000)},
				ImageURL: "https://cdn.example.com/s2.png",
			},
		},
	}
}

func TestComposeSceneWindows(t *testing.T) {
	res, err := Compose(testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.CanGenerate() {
		t.Fatalf("expected a clean build, critical: %v", res.Critical)
	}

	scenes := res.Build.Timeline.Scenes
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(scenes))
	}

	// Scene 1: voice rule, 2000 + padding
	if scenes[0].DurationMs != 2500 || scenes[0].DurationReason != ReasonVoice {
		t.Errorf("scene 1: expected 2500ms/%s, got %dms/%s", ReasonVoice, scenes[0].DurationMs, scenes[0].DurationReason)
	}
	// Scene 2: manual override
	if scenes[1].DurationMs != 4000 || scenes[1].DurationReason != ReasonManual {
		t.Errorf("scene 2: expected 4000ms/%s, got %dms/%s", ReasonManual, scenes[1].DurationMs, scenes[1].DurationReason)
	}

	// Windows tile the video with no gap or overlap
	if scenes[0].StartMs != 0 || scenes[1].StartMs != scenes[0].StartMs+scenes[0].DurationMs {
		t.Errorf("scene windows do not tile: %d, %d", scenes[0].StartMs, scenes[1].StartMs)
	}
	if scenes[0].Order != 1 || scenes[1].Order != 2 {
		t.Errorf("unexpected order values: %d, %d", scenes[0].Order, scenes[1].Order)
	}

	s := res.Build.Summary
	if s.TotalScenes != 2 || s.TotalDurationMs != 6500 || !s.HasAudio || s.ScenesWithVoice != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestComposeSkipsHiddenScenes(t *testing.T) {
	in := testInput()
	in.Scenes = append(in.Scenes, SceneInput{
		Scene:    models.Scene{ID: 3, SceneIndex: -3, Hidden: true, DisplayKind: models.DisplayKindImage},
		ImageURL: "https://cdn.example.com/s3.png",
	})

	res, err := Compose(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Build.Timeline.Scenes) != 2 {
		t.Errorf("hidden scene leaked into the document")
	}
}

func TestComposeHashDeterministic(t *testing.T) {
	first, err := Compose(testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compose(testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Hash == "" || len(first.Hash) != 64 {
		t.Fatalf("expected a sha256 hex hash, got %q", first.Hash)
	}
	if first.Hash != second.Hash {
		t.Errorf("same input produced different hashes: %s vs %s", first.Hash, second.Hash)
	}

	// Any content change must move the hash
	in := testInput()
	*in.Scenes[1].Scene.DurationOverrideMs = 4100
	changed, err := Compose(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed.Hash == first.Hash {
		t.Errorf("content change did not change the hash")
	}
}

func TestComposeCriticalSceneExcludedButPassContinues(t *testing.T) {
	in := testInput()
	// Break scene 1 and add a relative URL on scene 2's cue: both
	// issues must be reported in one pass.
	in.Scenes[0].ImageURL = ""
	in.Scenes[1].Cues = []CueInput{{
		Cue: models.AudioCue{ID: 1, StartMs: 0, EndMs: intP(1000), Volume: 1.0},
		URL: "sfx/door.mp3",
	}}

	res, err := Compose(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.CanGenerate() {
		t.Fatal("expected a blocked build")
	}
	if len(res.Critical) != 2 {
		t.Fatalf("expected 2 critical issues, got %d: %v", len(res.Critical), res.Critical)
	}

	reasons := map[string]bool{}
	for _, iss := range res.Critical {
		reasons[iss.Reason] = true
	}
	if !reasons[ReasonMissingAsset] || !reasons[ReasonRelativeURL] {
		t.Errorf("expected missing_asset and relative_url, got %v", res.Critical)
	}

	// The broken scene is excluded; the valid one still composes.
	if len(res.Build.Timeline.Scenes) != 1 || res.Build.Timeline.Scenes[0].SceneID != 2 {
		t.Errorf("expected only scene 2 in the document")
	}
}

func TestComposeAdvisories(t *testing.T) {
	in := testInput()
	// Scene with dialogue text but no narration, and no cues either.
	in.Scenes = []SceneInput{{
		Scene:    models.Scene{ID: 5, SceneIndex: 1, DisplayKind: models.DisplayKindImage},
		ImageURL: "https://cdn.example.com/s5.png",
		Utterances: []UtteranceInput{{
			Utterance: models.Utterance{ID: 1, Role: models.RoleDialogue, Text: "unheard line"},
		}},
	}}

	res, err := Compose(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.CanGenerate() {
		t.Fatalf("advisories must not block, critical: %v", res.Critical)
	}

	reasons := map[string]int{}
	for _, iss := range res.Advisory {
		reasons[iss.Reason]++
	}
	if reasons[ReasonSilentDialogue] != 1 {
		t.Errorf("expected a silent_dialogue advisory, got %v", res.Advisory)
	}
	if reasons[ReasonNoAudio] != 1 {
		t.Errorf("expected a no_audio advisory, got %v", res.Advisory)
	}
}

func TestComposeBGMBlock(t *testing.T) {
	in := testInput()
	in.Track = &TrackInput{
		Track: models.AudioTrack{
			ID:            1,
			Volume:        0.4,
			Loop:          true,
			FadeInMs:      1000,
			FadeOutMs:     2000,
			DuckVolume:    f64P(0.15),
			DuckAttackMs:  intP(200),
			DuckReleaseMs: intP(400),
		},
		URL: "https://cdn.example.com/bgm.mp3",
	}

	res, err := Compose(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bgm := res.Build.BGM
	if bgm == nil {
		t.Fatal("expected a BGM block")
	}
	if bgm.Volume != 0.4 || !bgm.Loop {
		t.Errorf("unexpected BGM block: %+v", bgm)
	}
	if bgm.Ducking == nil || bgm.Ducking.Volume != 0.15 || bgm.Ducking.AttackMs != 200 || bgm.Ducking.ReleaseMs != 400 {
		t.Errorf("ducking profile did not pass through: %+v", bgm.Ducking)
	}
	if !res.Build.Summary.HasAudio {
		t.Error("BGM alone should set has_audio")
	}
}

func TestPreflightShapes(t *testing.T) {
	in := testInput()
	in.Scenes[0].ImageURL = "" // one critical

	readiness, generate, err := Preflight(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if readiness.IsReady {
		t.Error("expected not ready")
	}
	if len(readiness.Missing) != 1 {
		t.Errorf("expected 1 missing issue, got %d", len(readiness.Missing))
	}
	if readiness.Warnings == nil {
		t.Error("warnings must be [] not nil")
	}
	if generate.CanGenerate {
		t.Error("expected can_generate=false")
	}
	if generate.Summary.TotalScenes != 1 {
		t.Errorf("expected summary over the surviving scene, got %+v", generate.Summary)
	}
}

func TestComposeCuesEndResolution(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{ID: 7},
		Cues: []CueInput{
			{Cue: models.AudioCue{ID: 1, StartMs: 100, EndMs: intP(900), Volume: 1}, URL: "https://cdn.example.com/a.mp3"},
			{Cue: models.AudioCue{ID: 2, StartMs: 200, SourceDurationMs: intP(300), Volume: 1}, URL: "https://cdn.example.com/b.mp3"},
			{Cue: models.AudioCue{ID: 3, StartMs: 400, Volume: 1}, URL: "https://cdn.example.com/c.mp3"},
		},
	}

	entries, warnings := ComposeCues(s, 3000)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantEnds := []int{900, 500, 3000}
	for i, e := range entries {
		if e.EndMs != wantEnds[i] {
			t.Errorf("cue %d: expected end %d, got %d", e.CueID, wantEnds[i], e.EndMs)
		}
	}
}
