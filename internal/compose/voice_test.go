package compose

import (
	"testing"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

func voicedUtterance(id int64, text string, durationMs int, audioURL string) UtteranceInput {
	assetID := uuid.New()
	return UtteranceInput{
		Utterance: models.Utterance{
			ID:              id,
			Role:            models.RoleDialogue,
			Text:            text,
			AudioAssetID:    &assetID,
			AudioDurationMs: intP(durationMs),
		},
		AudioURL: audioURL,
	}
}

func TestBuildVoiceTrackCumulativeOffsets(t *testing.T) {
	track := BuildVoiceTrack([]UtteranceInput{
		voicedUtterance(1, "first", 1000, "https://cdn.example.com/u1.mp3"),
		voicedUtterance(2, "second", 2000, "https://cdn.example.com/u2.mp3"),
		voicedUtterance(3, "third", 1500, "https://cdn.example.com/u3.mp3"),
	})

	if len(track.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(track.Entries))
	}

	wantStarts := []int{0, 1000, 3000}
	wantEnds := []int{1000, 3000, 4500}
	for i, e := range track.Entries {
		if e.StartMs != wantStarts[i] || e.EndMs != wantEnds[i] {
			t.Errorf("entry %d: expected [%d, %d), got [%d, %d)", i, wantStarts[i], wantEnds[i], e.StartMs, e.EndMs)
		}
	}

	// No overlap by construction
	for i := 1; i < len(track.Entries); i++ {
		if track.Entries[i].StartMs < track.Entries[i-1].EndMs {
			t.Errorf("entries %d and %d overlap", i-1, i)
		}
	}

	if track.TotalMs != 4500 {
		t.Errorf("expected total 4500ms, got %d", track.TotalMs)
	}
}

func TestBuildVoiceTrackVoicelessAdvancesCursor(t *testing.T) {
	// The middle utterance has no audio: it must emit no entry but
	// still push the third utterance later by its text estimate.
	track := BuildVoiceTrack([]UtteranceInput{
		voicedUtterance(1, "first", 1000, "https://cdn.example.com/u1.mp3"),
		utterance(2, "0123456789", nil), // estimates to 1500ms
		voicedUtterance(3, "third", 2000, "https://cdn.example.com/u3.mp3"),
	})

	if len(track.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(track.Entries))
	}

	third := track.Entries[1]
	if third.UtteranceID != 3 {
		t.Fatalf("expected second entry to be utterance 3, got %d", third.UtteranceID)
	}
	if third.StartMs != 2500 {
		t.Errorf("expected utterance 3 to start at 2500ms, got %d", third.StartMs)
	}

	if track.TotalMs != 4500 {
		t.Errorf("expected cursor total 4500ms, got %d", track.TotalMs)
	}
}

func TestBuildVoiceTrackNoURLNoEntry(t *testing.T) {
	// An audio asset that resolved to no URL cannot be referenced by
	// the renderer; the slot is held but nothing is emitted.
	in := voicedUtterance(1, "orphaned", 1000, "")

	track := BuildVoiceTrack([]UtteranceInput{in})
	if len(track.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(track.Entries))
	}
	if track.TotalMs != 1000 {
		t.Errorf("expected cursor at 1000ms, got %d", track.TotalMs)
	}
}

func TestBuildVoiceTrackEmpty(t *testing.T) {
	track := BuildVoiceTrack(nil)
	if len(track.Entries) != 0 || track.TotalMs != 0 {
		t.Errorf("expected empty track, got %d entries, total %d", len(track.Entries), track.TotalMs)
	}
}
