package compose

import "github.com/velto/animatic/internal/models"

// VoiceTrack is the cumulative-offset voice timeline for one scene.
// TotalMs is the cursor position after the last utterance — it counts
// voiceless utterances too, so it can exceed the span of Entries.
type VoiceTrack struct {
	Entries []models.VoiceEntry
	TotalMs int
}

// BuildVoiceTrack walks the scene's utterances in order and lays them
// out on one shared offset space. Every utterance advances the cursor
// by its effective duration; only utterances with generated audio emit
// a track entry — the renderer rejects entries without an audio source,
// but the silent ones must still hold their slot so later utterances
// stay aligned with the full text sequence.
func BuildVoiceTrack(utts []UtteranceInput) VoiceTrack {
	var track VoiceTrack
	cursor := 0

	for _, u := range utts {
		d := effectiveUtteranceMs(u.Utterance)

		if u.Utterance.AudioAssetID != nil && u.AudioURL != "" {
			track.Entries = append(track.Entries, models.VoiceEntry{
				UtteranceID:  u.Utterance.ID,
				Role:         u.Utterance.Role,
				CharacterKey: u.Utterance.CharacterKey,
				Text:         u.Utterance.Text,
				AudioURL:     u.AudioURL,
				StartMs:      cursor,
				EndMs:        cursor + d,
			})
		}

		cursor += d
	}

	track.TotalMs = cursor
	return track
}

// effectiveUtteranceMs is the utterance's own audio duration when it
// exists, else a character-count estimate.
func effectiveUtteranceMs(u models.Utterance) int {
	if u.AudioDurationMs != nil && *u.AudioDurationMs > 0 {
		return *u.AudioDurationMs
	}
	return estimateTextMs(u.Text)
}

// voiceCursorMs is the cursor total without building entries. Used by
// the duration cascade.
func voiceCursorMs(utts []UtteranceInput) int {
	total := 0
	for _, u := range utts {
		total += effectiveUtteranceMs(u.Utterance)
	}
	return total
}
