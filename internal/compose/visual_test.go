package compose

import (
	"testing"

	"github.com/velto/animatic/internal/models"
)

func TestSelectVisualImage(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{
			ID:           1,
			DisplayKind:  models.DisplayKindImage,
			MotionPreset: strP("slow_zoom"),
			MotionParams: models.JSONB{"zoom_factor": 1.2, "pan_x": 0.1},
		},
		ImageURL: "https://cdn.example.com/s1.png",
	}

	v, err := SelectVisual(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != models.DisplayKindImage || v.Source != s.ImageURL {
		t.Errorf("unexpected visual: %+v", v)
	}
	if v.Effect.Kind != effectKenBurns {
		t.Fatalf("expected ken_burns effect, got %q", v.Effect.Kind)
	}
	if v.Effect.ZoomFactor == nil || *v.Effect.ZoomFactor != 1.2 {
		t.Errorf("expected zoom_factor 1.2, got %v", v.Effect.ZoomFactor)
	}
	if v.Effect.PanX == nil || *v.Effect.PanX != 0.1 {
		t.Errorf("expected pan_x 0.1, got %v", v.Effect.PanX)
	}
	if v.Effect.PanY != nil {
		t.Errorf("pan_y was not set, got %v", *v.Effect.PanY)
	}
}

func TestSelectVisualImageMissing(t *testing.T) {
	s := &SceneInput{Scene: models.Scene{ID: 2, DisplayKind: models.DisplayKindImage}}

	_, err := SelectVisual(s)
	missing, ok := err.(*MissingAssetError)
	if !ok {
		t.Fatalf("expected *MissingAssetError, got %T", err)
	}
	if missing.SceneID != 2 || missing.Field != "image_asset" {
		t.Errorf("unexpected error detail: %+v", missing)
	}
}

func TestSelectVisualPageNoMotion(t *testing.T) {
	s := &SceneInput{
		Scene: models.Scene{
			ID:           3,
			DisplayKind:  models.DisplayKindPage,
			MotionPreset: strP("slow_zoom"), // must be ignored for pages
		},
		PageURL: "https://cdn.example.com/p3.png",
	}

	v, err := SelectVisual(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Effect.Kind != effectNone {
		t.Errorf("pages are not Ken Burns eligible, got effect %q", v.Effect.Kind)
	}
}

func TestSelectVisualClipStates(t *testing.T) {
	// Incomplete clip state blocks, even when the URL exists
	s := &SceneInput{
		Scene: models.Scene{
			ID:          4,
			DisplayKind: models.DisplayKindClip,
			ClipState:   clipStateP(models.ClipStateProcessing),
		},
		ClipURL: "https://cdn.example.com/c4.mp4",
	}
	_, err := SelectVisual(s)
	missing, ok := err.(*MissingAssetError)
	if !ok || missing.Field != "clip_state" {
		t.Fatalf("expected clip_state error, got %v", err)
	}

	// Completed state without a URL blocks on the asset
	s.Scene.ClipState = clipStateP(models.ClipStateCompleted)
	s.ClipURL = ""
	_, err = SelectVisual(s)
	missing, ok = err.(*MissingAssetError)
	if !ok || missing.Field != "clip_asset" {
		t.Fatalf("expected clip_asset error, got %v", err)
	}

	// Both present: accepted, no motion
	s.ClipURL = "https://cdn.example.com/c4.mp4"
	v, err := SelectVisual(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != models.DisplayKindClip || v.Effect.Kind != effectNone {
		t.Errorf("unexpected clip visual: %+v", v)
	}
}
