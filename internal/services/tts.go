package services

import (
	"context"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// TTSService — common interface for text-to-speech providers
// The worker narrates one utterance at a time and records the returned
// duration on the utterance row; the composition engine never calls
// providers directly.
// ---------------------------------------------------------------------------

// TTSResponse is the common response type from any TTS provider.
type TTSResponse struct {
	AudioData  []byte
	DurationMs int
	Format     string // "mp3", "wav", etc.
}

// TTSService is the interface that any TTS provider must implement.
type TTSService interface {
	// GenerateSpeech converts one utterance's text to audio.
	// voiceID selects the character voice; empty means the provider default.
	GenerateSpeech(ctx context.Context, text, voiceID string) (*TTSResponse, error)
}

// estimateAudioDurationMs approximates spoken length from character
// count when the provider doesn't report a duration. Roughly 15 chars
// per second of narration at normal speed.
func estimateAudioDurationMs(text string, speed float64) int {
	if speed <= 0 {
		speed = 1.0
	}
	chars := utf8.RuneCountInString(text)
	ms := int(float64(chars) / 15.0 / speed * 1000.0)
	if ms < 500 {
		ms = 500
	}
	return ms
}
