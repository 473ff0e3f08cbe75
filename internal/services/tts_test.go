package services

import "testing"

func TestEstimateAudioDurationMs(t *testing.T) {
	// 30 chars at ~15 chars/sec is 2 seconds
	text := "012345678901234567890123456789"
	if ms := estimateAudioDurationMs(text, 1.0); ms != 2000 {
		t.Errorf("expected 2000ms, got %d", ms)
	}

	// Double speed halves the estimate
	if ms := estimateAudioDurationMs(text, 2.0); ms != 1000 {
		t.Errorf("expected 1000ms, got %d", ms)
	}

	// Floor for very short text
	if ms := estimateAudioDurationMs("hi", 1.0); ms != 500 {
		t.Errorf("expected 500ms floor, got %d", ms)
	}

	// Non-positive speed falls back to normal speed
	if ms := estimateAudioDurationMs(text, 0); ms != 2000 {
		t.Errorf("expected 2000ms at fallback speed, got %d", ms)
	}
}
