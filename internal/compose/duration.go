package compose

import (
	"strings"
	"unicode/utf8"

	"github.com/velto/animatic/internal/models"
)

// Timing constants shared across the pipeline.
const (
	// AudioPaddingMs is trailing breathing room after the last voiced
	// utterance of a scene.
	AudioPaddingMs = 500

	MinDurationMs          = 1000
	MaxDurationMs          = 180000
	DefaultSceneDurationMs = 3000

	// MsPerChar drives character-count duration estimates for text
	// that has no generated audio yet.
	MsPerChar = 150
)

// Duration reasons — machine-readable provenance for "why this
// duration", surfaced to the authoring UI.
const (
	ReasonClip         = "clip"
	ReasonVoice        = "voice"
	ReasonManual       = "manual"
	ReasonPageVoice    = "page_voice"
	ReasonPageText     = "page_text"
	ReasonLegacyVoice  = "legacy_voice"
	ReasonTextEstimate = "text_estimate"
	ReasonDefault      = "default"
)

// ResolvedDuration is the Duration Resolver output: one value plus the
// rule that produced it.
type ResolvedDuration struct {
	Ms     int
	Reason string
}

// durationRule is one step of the priority cascade. apply returns
// (value, true) when the rule matches; rules are evaluated in order,
// first match wins. Keeping the cascade as data keeps the fallback
// chain inspectable and testable.
type durationRule struct {
	reason string
	apply  func(s *SceneInput) (int, bool)
}

var durationRules = []durationRule{
	{ReasonClip, func(s *SceneInput) (int, bool) {
		if s.Scene.DisplayKind != models.DisplayKindClip {
			return 0, false
		}
		if s.Scene.ClipState == nil || *s.Scene.ClipState != models.ClipStateCompleted {
			return 0, false
		}
		if s.Scene.ClipDurationSec == nil || *s.Scene.ClipDurationSec <= 0 {
			return 0, false
		}
		return int(*s.Scene.ClipDurationSec * 1000), true
	}},
	{ReasonVoice, func(s *SceneInput) (int, bool) {
		if voicedTotalMs(s.Utterances) <= 0 {
			return 0, false
		}
		// The full cursor, not just the voiced sum: voiceless
		// utterances still occupy timeline space.
		return voiceCursorMs(s.Utterances) + AudioPaddingMs, true
	}},
	{ReasonManual, func(s *SceneInput) (int, bool) {
		if s.Scene.DurationOverrideMs == nil || *s.Scene.DurationOverrideMs <= 0 {
			return 0, false
		}
		return *s.Scene.DurationOverrideMs, true
	}},
	{ReasonPageVoice, func(s *SceneInput) (int, bool) {
		if s.Scene.DisplayKind != models.DisplayKindPage {
			return 0, false
		}
		if total := voicedTotalMs(s.PageUtterances); total > 0 {
			return total + AudioPaddingMs, true
		}
		return 0, false
	}},
	{ReasonPageText, func(s *SceneInput) (int, bool) {
		if s.Scene.DisplayKind != models.DisplayKindPage {
			return 0, false
		}
		if text := combinedText(s.PageUtterances); text != "" {
			return estimateTextMs(text) + AudioPaddingMs, true
		}
		return 0, false
	}},
	{ReasonLegacyVoice, func(s *SceneInput) (int, bool) {
		if s.Scene.VoiceDurationMs == nil || *s.Scene.VoiceDurationMs <= 0 {
			return 0, false
		}
		return *s.Scene.VoiceDurationMs + AudioPaddingMs, true
	}},
	{ReasonTextEstimate, func(s *SceneInput) (int, bool) {
		if text := combinedText(s.Utterances); text != "" {
			return estimateTextMs(text) + AudioPaddingMs, true
		}
		return 0, false
	}},
}

// ResolveDuration derives a scene's duration from the rule cascade.
// It never returns a value outside [MinDurationMs, MaxDurationMs] and
// always carries a reason.
func ResolveDuration(s *SceneInput) ResolvedDuration {
	for _, rule := range durationRules {
		if ms, ok := rule.apply(s); ok {
			return ResolvedDuration{Ms: clampDuration(ms), Reason: rule.reason}
		}
	}
	return ResolvedDuration{Ms: DefaultSceneDurationMs, Reason: ReasonDefault}
}

func clampDuration(ms int) int {
	if ms < MinDurationMs {
		return MinDurationMs
	}
	if ms > MaxDurationMs {
		return MaxDurationMs
	}
	return ms
}

// voicedTotalMs sums generated-audio durations; entries without audio
// contribute nothing.
func voicedTotalMs(utts []UtteranceInput) int {
	total := 0
	for _, u := range utts {
		if u.Utterance.AudioDurationMs != nil && *u.Utterance.AudioDurationMs > 0 {
			total += *u.Utterance.AudioDurationMs
		}
	}
	return total
}

func combinedText(utts []UtteranceInput) string {
	var b strings.Builder
	for _, u := range utts {
		b.WriteString(strings.TrimSpace(u.Utterance.Text))
	}
	return b.String()
}

// estimateTextMs estimates speaking time from character count, floored
// at MinDurationMs.
func estimateTextMs(text string) int {
	ms := utf8.RuneCountInString(text) * MsPerChar
	if ms < MinDurationMs {
		return MinDurationMs
	}
	return ms
}
