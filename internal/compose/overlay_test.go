package compose

import (
	"testing"

	"github.com/velto/animatic/internal/models"
)

func i64P(i int64) *int64 { return &i }

func TestSyncBalloonsVoiceWindow(t *testing.T) {
	utt := voicedUtterance(10, "Watch out!", 1200, "https://cdn.example.com/u10.mp3")
	s := &SceneInput{
		Scene:      models.Scene{ID: 1},
		Utterances: []UtteranceInput{utt},
		Balloons: []BalloonInput{{
			Balloon: models.Balloon{
				ID:          1,
				UtteranceID: i64P(10),
				Policy:      models.PolicyVoiceWindow,
				Shape:       "speech",
			},
		}},
	}
	track := BuildVoiceTrack(s.Utterances)

	entries, warnings := SyncBalloons(s, track, 5000, models.TextModeDrawn)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.StartMs != 0 || e.EndMs != 1200 {
		t.Errorf("expected [0, 1200), got [%d, %d)", e.StartMs, e.EndMs)
	}
	if e.Text != "Watch out!" {
		t.Errorf("expected balloon text from the voice entry, got %q", e.Text)
	}
}

func TestSyncBalloonsDanglingDegrades(t *testing.T) {
	// voice_window balloon pointing at an utterance that produced no
	// voice entry: the balloon survives as always_on, with a warning.
	s := &SceneInput{
		Scene: models.Scene{ID: 2},
		Balloons: []BalloonInput{{
			Balloon: models.Balloon{
				ID:          1,
				UtteranceID: i64P(99),
				Policy:      models.PolicyVoiceWindow,
				Shape:       "speech",
			},
		}},
	}

	entries, warnings := SyncBalloons(s, VoiceTrack{}, 4000, models.TextModeDrawn)
	if len(entries) != 1 {
		t.Fatalf("expected the balloon to survive, got %d entries", len(entries))
	}
	if entries[0].StartMs != 0 || entries[0].EndMs != 4000 {
		t.Errorf("expected full-scene window [0, 4000), got [%d, %d)", entries[0].StartMs, entries[0].EndMs)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Reason != ReasonDanglingReference {
		t.Errorf("expected reason %q, got %q", ReasonDanglingReference, warnings[0].Reason)
	}
}

func TestSyncBalloonsInvalidIntervalDropped(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{ID: 3},
		Balloons: []BalloonInput{{
			Balloon: models.Balloon{
				ID:      1,
				Policy:  models.PolicyManualWindow,
				StartMs: intP(2000),
				EndMs:   intP(1000),
				Shape:   "speech",
			},
		}},
	}

	entries, warnings := SyncBalloons(s, VoiceTrack{}, 5000, models.TextModeDrawn)
	if len(entries) != 0 {
		t.Fatalf("expected the balloon to be dropped, got %d entries", len(entries))
	}
	if len(warnings) != 1 || warnings[0].Reason != ReasonInvalidInterval {
		t.Fatalf("expected one invalid_interval warning, got %v", warnings)
	}
}

func TestSyncBalloonsBakedMode(t *testing.T) {
	withImage := BalloonInput{
		Balloon:       models.Balloon{ID: 1, Policy: models.PolicyAlwaysOn, Shape: "speech", BakedWidthPx: intP(320), BakedHeightPx: intP(180)},
		BakedImageURL: "https://cdn.example.com/b1.png",
	}
	withoutImage := BalloonInput{
		Balloon: models.Balloon{ID: 2, Policy: models.PolicyAlwaysOn, Shape: "speech"},
	}
	s := &SceneInput{
		Scene:    models.Scene{ID: 4},
		Balloons: []BalloonInput{withImage, withoutImage},
	}

	entries, warnings := SyncBalloons(s, VoiceTrack{}, 3000, models.TextModeBaked)
	if len(entries) != 1 {
		t.Fatalf("expected 1 surviving balloon, got %d", len(entries))
	}
	if entries[0].BakedImageURL == nil || *entries[0].BakedImageURL != withImage.BakedImageURL {
		t.Errorf("expected baked image URL on the surviving balloon")
	}
	if entries[0].BakedSizePx == nil || entries[0].BakedSizePx.W != 320 {
		t.Errorf("expected baked pixel size to carry through")
	}
	if len(warnings) != 1 || warnings[0].Reason != ReasonBakedImageMissing {
		t.Fatalf("expected one baked_image_missing warning, got %v", warnings)
	}
}

func TestSyncTelopsManualWindow(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{ID: 5},
		Telops: []models.Telop{{
			ID:      1,
			Text:    "Three years later",
			Policy:  models.PolicyManualWindow,
			StartMs: intP(500),
			EndMs:   intP(2500),
		}},
	}

	entries, warnings := SyncTelops(s, VoiceTrack{}, 6000)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StartMs != 500 || entries[0].EndMs != 2500 {
		t.Errorf("expected [500, 2500), got [%d, %d)", entries[0].StartMs, entries[0].EndMs)
	}
	if entries[0].Text != "Three years later" {
		t.Errorf("telop must keep its own text, got %q", entries[0].Text)
	}
}

func TestSyncTelopsVoiceWindowKeepsOwnText(t *testing.T) {
	utt := voicedUtterance(20, "spoken line", 1800, "https://cdn.example.com/u20.mp3")
	s := &SceneInput{
		Scene:      models.Scene{ID: 6},
		Utterances: []UtteranceInput{utt},
		Telops: []models.Telop{{
			ID:          1,
			UtteranceID: i64P(20),
			Text:        "caption text",
			Policy:      models.PolicyVoiceWindow,
		}},
	}
	track := BuildVoiceTrack(s.Utterances)

	entries, _ := SyncTelops(s, track, 5000)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].EndMs != 1800 {
		t.Errorf("expected timing borrowed from the voice entry, got end %d", entries[0].EndMs)
	}
	if entries[0].Text != "caption text" {
		t.Errorf("telop text must not be replaced by utterance text, got %q", entries[0].Text)
	}
}
