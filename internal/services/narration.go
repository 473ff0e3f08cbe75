package services

import (
	"context"
	"fmt"
	"io"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI Narration Service
// Synthesizes per-utterance speech via the OpenAI TTS endpoint. The
// returned duration is an estimate; the authoritative value would come
// from probing the audio, which is out of scope here — the estimate is
// close enough for timeline preview, and the renderer uses the actual
// file.
// ---------------------------------------------------------------------------

const (
	narrationSpeed        = 1.0
	narrationDefaultVoice = openai.VoiceNova
)

type NarrationService struct {
	client *openai.Client
}

// Ensure NarrationService implements TTSService at compile time.
var _ TTSService = (*NarrationService)(nil)

func NewNarrationService(apiKey string) *NarrationService {
	return &NarrationService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateSpeech converts one utterance's text to audio.
func (s *NarrationService) GenerateSpeech(ctx context.Context, text, voiceID string) (*TTSResponse, error) {
	voice := narrationDefaultVoice
	if voiceID != "" {
		voice = openai.SpeechVoice(voiceID)
	}

	log.Printf("[Narration] Generating speech (voice=%s, textLen=%d)", voice, len(text))

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1HD,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          narrationSpeed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("TTS returned empty audio")
	}

	durationMs := estimateAudioDurationMs(text, narrationSpeed)

	log.Printf("[Narration] Speech generated (%d bytes, estimated %dms)", len(audioData), durationMs)

	return &TTSResponse{
		AudioData:  audioData,
		DurationMs: durationMs,
		Format:     "mp3",
	}, nil
}
