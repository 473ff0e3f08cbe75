package compose

import (
	"testing"

	"github.com/velto/animatic/internal/models"
)

func intP(i int) *int          { return &i }
func f64P(f float64) *float64  { return &f }
func strP(s string) *string    { return &s }
func clipStateP(s models.ClipState) *models.ClipState { return &s }

func utterance(id int64, text string, audioMs *int) UtteranceInput {
	u := models.Utterance{ID: id, Role: models.RoleNarration, Text: text}
	u.AudioDurationMs = audioMs
	return UtteranceInput{Utterance: u}
}

func TestResolveDurationClipWins(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{
			ID:              1,
			DisplayKind:     models.DisplayKindClip,
			ClipState:       clipStateP(models.ClipStateCompleted),
			ClipDurationSec: f64P(8.0),
			// Voice and override present too; clip must still win
			DurationOverrideMs: intP(5000),
		},
		Utterances: []UtteranceInput{utterance(1, "hello", intP(1200))},
	}

	d := ResolveDuration(s)
	if d.Reason != ReasonClip {
		t.Fatalf("expected reason %q, got %q", ReasonClip, d.Reason)
	}
	if d.Ms != 8000 {
		t.Errorf("expected 8000ms, got %d", d.Ms)
	}
}

func TestResolveDurationClipIncomplete(t *testing.T) {
	// A clip scene whose clip is still processing falls through the
	// clip rule entirely.
	s := &SceneInput{
		Scene: models.Scene{
			ID:              1,
			DisplayKind:     models.DisplayKindClip,
			ClipState:       clipStateP(models.ClipStateProcessing),
			ClipDurationSec: f64P(8.0),
		},
		Utterances: []UtteranceInput{utterance(1, "hello", intP(2000))},
	}

	d := ResolveDuration(s)
	if d.Reason != ReasonVoice {
		t.Fatalf("expected reason %q, got %q", ReasonVoice, d.Reason)
	}
}

func TestResolveDurationVoiceIncludesVoicelessSlots(t *testing.T) {
	// One voiced utterance (1200ms) followed by a voiceless one whose
	// 10-char text estimates to 1500ms. The scene must cover both plus
	// trailing padding, not just the voiced sum.
	s := &SceneInput{
		Scene: models.Scene{ID: 2, DisplayKind: models.DisplayKindImage},
		Utterances: []UtteranceInput{
			utterance(1, "voiced", intP(1200)),
			utterance(2, "0123456789", nil),
		},
	}

	d := ResolveDuration(s)
	if d.Reason != ReasonVoice {
		t.Fatalf("expected reason %q, got %q", ReasonVoice, d.Reason)
	}
	want := 1200 + 1500 + AudioPaddingMs
	if d.Ms != want {
		t.Errorf("expected %dms, got %d", want, d.Ms)
	}
}

func TestResolveDurationManualOverride(t *testing.T) {
	// No generated audio anywhere, so the manual override applies even
	// though utterance text exists.
	s := &SceneInput{
		Scene: models.Scene{
			ID:                 3,
			DisplayKind:        models.DisplayKindImage,
			DurationOverrideMs: intP(4200),
		},
		Utterances: []UtteranceInput{utterance(1, "not yet narrated", nil)},
	}

	d := ResolveDuration(s)
	if d.Reason != ReasonManual {
		t.Fatalf("expected reason %q, got %q", ReasonManual, d.Reason)
	}
	if d.Ms != 4200 {
		t.Errorf("expected 4200ms, got %d", d.Ms)
	}
}

func TestResolveDurationPageFallbacks(t *testing.T) {
	// Page with legacy voiced page utterances
	s := &SceneInput{
		Scene:          models.Scene{ID: 4, DisplayKind: models.DisplayKindPage},
		PageUtterances: []UtteranceInput{utterance(1, "page line", intP(2000))},
	}
	d := ResolveDuration(s)
	if d.Reason != ReasonPageVoice {
		t.Fatalf("expected reason %q, got %q", ReasonPageVoice, d.Reason)
	}
	if d.Ms != 2000+AudioPaddingMs {
		t.Errorf("expected %dms, got %d", 2000+AudioPaddingMs, d.Ms)
	}

	// Same page with text only: estimate from the combined text
	s.PageUtterances = []UtteranceInput{utterance(1, "0123456789", nil)}
	d = ResolveDuration(s)
	if d.Reason != ReasonPageText {
		t.Fatalf("expected reason %q, got %q", ReasonPageText, d.Reason)
	}
	if d.Ms != 1500+AudioPaddingMs {
		t.Errorf("expected %dms, got %d", 1500+AudioPaddingMs, d.Ms)
	}
}

func TestResolveDurationLegacyVoice(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{
			ID:              5,
			DisplayKind:     models.DisplayKindImage,
			VoiceDurationMs: intP(3000),
		},
	}

	d := ResolveDuration(s)
	if d.Reason != ReasonLegacyVoice {
		t.Fatalf("expected reason %q, got %q", ReasonLegacyVoice, d.Reason)
	}
	if d.Ms != 3000+AudioPaddingMs {
		t.Errorf("expected %dms, got %d", 3000+AudioPaddingMs, d.Ms)
	}
}

func TestResolveDurationTextEstimate(t *testing.T) {
	s := &SceneInput{
		Scene:      models.Scene{ID: 6, DisplayKind: models.DisplayKindImage},
		Utterances: []UtteranceInput{utterance(1, "01234567890123456789", nil)},
	}

	d := ResolveDuration(s)
	if d.Reason != ReasonTextEstimate {
		t.Fatalf("expected reason %q, got %q", ReasonTextEstimate, d.Reason)
	}
	if d.Ms != 20*MsPerChar+AudioPaddingMs {
		t.Errorf("expected %dms, got %d", 20*MsPerChar+AudioPaddingMs, d.Ms)
	}
}

func TestResolveDurationDefault(t *testing.T) {
	// A completely empty scene still resolves: the cascade is total.
	s := &SceneInput{Scene: models.Scene{ID: 7, DisplayKind: models.DisplayKindImage}}

	d := ResolveDuration(s)
	if d.Reason != ReasonDefault {
		t.Fatalf("expected reason %q, got %q", ReasonDefault, d.Reason)
	}
	if d.Ms != DefaultSceneDurationMs {
		t.Errorf("expected %dms, got %d", DefaultSceneDurationMs, d.Ms)
	}
}

func TestResolveDurationClamped(t *testing.T) {
	// Below the floor
	short := &SceneInput{
		Scene: models.Scene{
			ID:                 8,
			DisplayKind:        models.DisplayKindImage,
			DurationOverrideMs: intP(200),
		},
	}
	if d := ResolveDuration(short); d.Ms != MinDurationMs {
		t.Errorf("expected clamp to %dms, got %d", MinDurationMs, d.Ms)
	}

	// Above the ceiling
	long := &SceneInput{
		Scene: models.Scene{
			ID:                 9,
			DisplayKind:        models.DisplayKindImage,
			DurationOverrideMs: intP(999999999),
		},
	}
	if d := ResolveDuration(long); d.Ms != MaxDurationMs {
		t.Errorf("expected clamp to %dms, got %d", MaxDurationMs, d.Ms)
	}
}
