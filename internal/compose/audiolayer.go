package compose

import (
	"fmt"

	"github.com/velto/animatic/internal/models"
)

// ComposeCues turns the scene's sound-effect rows into timeline
// entries. End resolution: explicit end, else start + source duration,
// else the scene end (looping cues simply fill the remainder).
func ComposeCues(s *SceneInput, sceneDurationMs int) ([]models.CueEntry, []Issue) {
	var entries []models.CueEntry
	var warnings []Issue

	for _, ci := range s.Cues {
		c := ci.Cue

		end := sceneDurationMs
		switch {
		case c.EndMs != nil:
			end = *c.EndMs
		case c.SourceDurationMs != nil:
			end = c.StartMs + *c.SourceDurationMs
		}

		if end <= c.StartMs {
			warnings = append(warnings, Issue{
				SceneID: s.Scene.ID,
				Field:   "sfx",
				Reason:  ReasonInvalidInterval,
				Detail:  fmt.Sprintf("cue %d: interval [%d, %d) is empty", c.ID, c.StartMs, end),
			})
			continue
		}

		entries = append(entries, models.CueEntry{
			CueID:     c.ID,
			URL:       ci.URL,
			StartMs:   c.StartMs,
			EndMs:     end,
			Volume:    c.Volume,
			Loop:      c.Loop,
			FadeInMs:  c.FadeInMs,
			FadeOutMs: c.FadeOutMs,
		})
	}

	return entries, warnings
}

// ComposeBGM maps the active background track onto the document block.
// Ducking parameters pass through unmodified — envelope application is
// the renderer's responsibility.
func ComposeBGM(t *TrackInput) *models.BGMBlock {
	if t == nil {
		return nil
	}

	block := &models.BGMBlock{
		URL:            t.URL,
		Volume:         t.Track.Volume,
		Loop:           t.Track.Loop,
		FadeInMs:       t.Track.FadeInMs,
		FadeOutMs:      t.Track.FadeOutMs,
		VideoStartMs:   t.Track.VideoStartMs,
		VideoEndMs:     t.Track.VideoEndMs,
		SourceOffsetMs: t.Track.SourceOffsetMs,
	}

	if t.Track.DuckVolume != nil {
		duck := &models.DuckingBlock{Volume: *t.Track.DuckVolume}
		if t.Track.DuckAttackMs != nil {
			duck.AttackMs = *t.Track.DuckAttackMs
		}
		if t.Track.DuckReleaseMs != nil {
			duck.ReleaseMs = *t.Track.DuckReleaseMs
		}
		block.Ducking = duck
	}

	return block
}
