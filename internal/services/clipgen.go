package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Veo Motion-Clip Generation Service
// Animates a scene's still image into a short video clip. Completed
// clips become the scene's "clip" display kind: the Visual Selector
// only accepts them once the clip state is completed, and the clip's
// duration becomes the top rule of the duration cascade.
// ---------------------------------------------------------------------------

const (
	defaultVeoModel    = "veo-3.1-generate-preview"
	veoPollInterval    = 10 * time.Second
	veoMaxPollDuration = 5 * time.Minute // Max time to wait for a single clip
)

// ClipGenService is optional — when nil, scenes keep their still image
// with Ken Burns motion.
type ClipGenService struct {
	apiKey string
	model  string
}

func NewClipGenService(apiKey, model string) *ClipGenService {
	if model == "" {
		model = defaultVeoModel
	}
	return &ClipGenService{
		apiKey: apiKey,
		model:  model,
	}
}

// buildClipPrompt wraps the scene's motion hint with direction that
// keeps the source artwork intact and the movement subtle.
func buildClipPrompt(motionHint string) string {
	return fmt.Sprintf(`%s

Style direction: preserve the art style, framing and color of the input image exactly — the clip should look like the drawing has come to life, not a re-render of it.

Motion direction: subtle and grounded. Gentle ambient movement (fabric, hair, smoke, light), a slow blink or breath, a barely perceptible camera drift. No sudden movements, no morphing, no style changes between frames.

No generated audio or dialogue. Silent video only.`, motionHint)
}

// GenerateClip animates a still image into a short video clip.
//
// The async operation is polled internally with a 5 minute timeout.
// Blocking the calling goroutine is intentional: each scene is animated
// inside its own worker job.
//
// Returns the raw clip bytes (MP4) and the clip duration in seconds.
func (s *ClipGenService) GenerateClip(ctx context.Context, motionHint string, imageData []byte, imageMimeType string, aspectRatio string) ([]byte, float64, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := buildClipPrompt(motionHint)

	firstFrame := &genai.Image{
		ImageBytes: imageData,
		MIMEType:   imageMimeType,
	}

	if aspectRatio == "" {
		aspectRatio = "16:9"
	}
	config := &genai.GenerateVideosConfig{
		AspectRatio:      aspectRatio,
		PersonGeneration: "allow_adult",
		NumberOfVideos:   1,
	}

	log.Printf("[ClipGen] Starting clip generation (model=%s, hintLen=%d, imageSize=%d bytes)", s.model, len(motionHint), len(imageData))

	operation, err := client.Models.GenerateVideos(ctx, s.model, prompt, firstFrame, config)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to start clip generation: %w", err)
	}

	log.Printf("[ClipGen] Operation started: %s", operation.Name)

	// Poll until done, cancelled, or timed out
	deadline := time.Now().Add(veoMaxPollDuration)
	pollCount := 0
	for !operation.Done {
		if time.Now().After(deadline) {
			return nil, 0, fmt.Errorf("clip generation timed out after %v (polled %d times)", veoMaxPollDuration, pollCount)
		}

		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("clip generation cancelled: %w", ctx.Err())
		case <-time.After(veoPollInterval):
		}

		pollCount++
		operation, err = client.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to poll operation (attempt %d): %w", pollCount, err)
		}

		log.Printf("[ClipGen] Poll %d: done=%v", pollCount, operation.Done)
	}

	if operation.Error != nil && len(operation.Error) > 0 {
		errJSON, _ := json.Marshal(operation.Error)
		return nil, 0, fmt.Errorf("clip generation operation failed: %s", string(errJSON))
	}

	if operation.Response == nil {
		return nil, 0, fmt.Errorf("no response in completed operation after %d polls (operation: %s)", pollCount, operation.Name)
	}

	if operation.Response.RAIMediaFilteredCount > 0 {
		reasons := "unknown"
		if len(operation.Response.RAIMediaFilteredReasons) > 0 {
			reasons = strings.Join(operation.Response.RAIMediaFilteredReasons, ", ")
		}
		return nil, 0, fmt.Errorf("clip blocked by safety filters: %d clip(s) filtered, reasons: %s", operation.Response.RAIMediaFilteredCount, reasons)
	}

	if len(operation.Response.GeneratedVideos) == 0 {
		return nil, 0, fmt.Errorf("no clips in response")
	}

	video := operation.Response.GeneratedVideos[0]
	if video.Video == nil {
		return nil, 0, fmt.Errorf("generated clip object is nil")
	}

	log.Printf("[ClipGen] Clip ready, downloading...")

	downloadURI := genai.NewDownloadURIFromVideo(video.Video)
	clipBytes, err := client.Files.Download(ctx, downloadURI, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download generated clip: %w", err)
	}

	if len(clipBytes) == 0 {
		return nil, 0, fmt.Errorf("downloaded clip is empty (0 bytes)")
	}

	// Veo clips default to 8 seconds; the model does not report the
	// exact duration, so record the nominal length.
	const nominalClipSec = 8.0

	log.Printf("[ClipGen] Clip generated successfully (%d bytes, %d polls)", len(clipBytes), pollCount)

	return clipBytes, nominalClipSec, nil
}
