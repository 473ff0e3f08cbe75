package compose

import (
	"fmt"

	"github.com/velto/animatic/internal/models"
)

// SyncBalloons maps each balloon's display policy onto an absolute,
// scene-relative interval.
//
// voice_window balloons consult the voice track; a dangling utterance
// reference (or none at all) degrades to the always_on interval with an
// advisory warning — the balloon is never dropped for that. Balloons
// are only dropped for intervals where end <= start, or in baked text
// mode when the pre-rendered image is missing.
func SyncBalloons(s *SceneInput, track VoiceTrack, sceneDurationMs int, textMode models.TextMode) ([]models.BalloonEntry, []Issue) {
	voiceByUtterance := indexVoices(track)
	textByUtterance := indexTexts(s.Utterances)

	var entries []models.BalloonEntry
	var warnings []Issue

	for _, bi := range s.Balloons {
		b := bi.Balloon

		start, end := 0, sceneDurationMs
		text := ""
		if b.UtteranceID != nil {
			text = textByUtterance[*b.UtteranceID]
		}

		switch b.Policy {
		case models.PolicyManualWindow:
			if b.StartMs != nil {
				start = *b.StartMs
			}
			if b.EndMs != nil {
				end = *b.EndMs
			}

		case models.PolicyVoiceWindow:
			entry, ok := models.VoiceEntry{}, false
			if b.UtteranceID != nil {
				entry, ok = voiceByUtterance[*b.UtteranceID]
			}
			if ok {
				start, end = entry.StartMs, entry.EndMs
				text = entry.Text
			} else {
				warnings = append(warnings, Issue{
					SceneID: s.Scene.ID,
					Field:   "balloons",
					Reason:  ReasonDanglingReference,
					Detail:  danglingDetail("balloon", b.ID, b.UtteranceID),
				})
			}

		default: // always_on
		}

		if end <= start {
			warnings = append(warnings, Issue{
				SceneID: s.Scene.ID,
				Field:   "balloons",
				Reason:  ReasonInvalidInterval,
				Detail:  fmt.Sprintf("balloon %d: interval [%d, %d) is empty", b.ID, start, end),
			})
			continue
		}

		entry := models.BalloonEntry{
			BalloonID:   b.ID,
			UtteranceID: b.UtteranceID,
			Text:        text,
			StartMs:     start,
			EndMs:       end,
			Position:    models.Point{X: b.CenterX, Y: b.CenterY},
			Size:        models.Dim{W: b.Width, H: b.Height},
			Shape:       b.Shape,
			Style:       b.Style,
		}
		if b.TailX != nil && b.TailY != nil {
			entry.Tail = &models.Point{X: *b.TailX, Y: *b.TailY}
		}

		if textMode == models.TextModeBaked {
			// Baked mode sends images, not text. Without one the
			// balloon cannot render at all.
			if bi.BakedImageURL == "" {
				warnings = append(warnings, Issue{
					SceneID: s.Scene.ID,
					Field:   "balloons",
					Reason:  ReasonBakedImageMissing,
					Detail:  fmt.Sprintf("balloon %d has no baked image", b.ID),
				})
				continue
			}
			entry.BakedImageURL = &bi.BakedImageURL
			if b.BakedWidthPx != nil && b.BakedHeightPx != nil {
				entry.BakedSizePx = &models.PixelDim{W: *b.BakedWidthPx, H: *b.BakedHeightPx}
			}
		}

		entries = append(entries, entry)
	}

	return entries, warnings
}

// SyncTelops applies the same policy mapping to captions. Telops carry
// their own text, so a voice_window telop only borrows timing.
func SyncTelops(s *SceneInput, track VoiceTrack, sceneDurationMs int) ([]models.TelopEntry, []Issue) {
	voiceByUtterance := indexVoices(track)

	var entries []models.TelopEntry
	var warnings []Issue

	for _, t := range s.Telops {
		start, end := 0, sceneDurationMs

		switch t.Policy {
		case models.PolicyManualWindow:
			if t.StartMs != nil {
				start = *t.StartMs
			}
			if t.EndMs != nil {
				end = *t.EndMs
			}

		case models.PolicyVoiceWindow:
			entry, ok := models.VoiceEntry{}, false
			if t.UtteranceID != nil {
				entry, ok = voiceByUtterance[*t.UtteranceID]
			}
			if ok {
				start, end = entry.StartMs, entry.EndMs
			} else {
				warnings = append(warnings, Issue{
					SceneID: s.Scene.ID,
					Field:   "telops",
					Reason:  ReasonDanglingReference,
					Detail:  danglingDetail("telop", t.ID, t.UtteranceID),
				})
			}

		default: // always_on
		}

		if end <= start {
			warnings = append(warnings, Issue{
				SceneID: s.Scene.ID,
				Field:   "telops",
				Reason:  ReasonInvalidInterval,
				Detail:  fmt.Sprintf("telop %d: interval [%d, %d) is empty", t.ID, start, end),
			})
			continue
		}

		entries = append(entries, models.TelopEntry{
			TelopID:     t.ID,
			UtteranceID: t.UtteranceID,
			Text:        t.Text,
			StartMs:     start,
			EndMs:       end,
			Style:       t.Style,
		})
	}

	return entries, warnings
}

func indexVoices(track VoiceTrack) map[int64]models.VoiceEntry {
	m := make(map[int64]models.VoiceEntry, len(track.Entries))
	for _, e := range track.Entries {
		m[e.UtteranceID] = e
	}
	return m
}

func indexTexts(utts []UtteranceInput) map[int64]string {
	m := make(map[int64]string, len(utts))
	for _, u := range utts {
		m[u.Utterance.ID] = u.Utterance.Text
	}
	return m
}

func danglingDetail(kind string, id int64, utteranceID *int64) string {
	if utteranceID == nil {
		return fmt.Sprintf("%s %d has voice_window policy but no linked utterance", kind, id)
	}
	return fmt.Sprintf("%s %d references utterance %d which produced no voice entry", kind, id, *utteranceID)
}
