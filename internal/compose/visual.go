package compose

import "github.com/velto/animatic/internal/models"

const (
	effectNone     = "none"
	effectKenBurns = "ken_burns"
)

// SelectVisual picks the backing asset for a scene's display kind.
// A missing requirement is a *MissingAssetError naming the scene and
// the empty field — there is no placeholder fallback.
func SelectVisual(s *SceneInput) (models.BuildVisual, error) {
	switch s.Scene.DisplayKind {
	case models.DisplayKindPage:
		if s.PageURL == "" {
			return models.BuildVisual{}, &MissingAssetError{SceneID: s.Scene.ID, Field: "page_asset"}
		}
		// Ken Burns is disallowed for fully composed pages.
		return models.BuildVisual{
			Kind:   models.DisplayKindPage,
			Source: s.PageURL,
			Effect: models.MotionEffect{Kind: effectNone},
		}, nil

	case models.DisplayKindClip:
		if s.Scene.ClipState == nil || *s.Scene.ClipState != models.ClipStateCompleted {
			return models.BuildVisual{}, &MissingAssetError{SceneID: s.Scene.ID, Field: "clip_state"}
		}
		if s.ClipURL == "" {
			return models.BuildVisual{}, &MissingAssetError{SceneID: s.Scene.ID, Field: "clip_asset"}
		}
		return models.BuildVisual{
			Kind:   models.DisplayKindClip,
			Source: s.ClipURL,
			Effect: models.MotionEffect{Kind: effectNone},
		}, nil

	default: // image
		if s.ImageURL == "" {
			return models.BuildVisual{}, &MissingAssetError{SceneID: s.Scene.ID, Field: "image_asset"}
		}
		return models.BuildVisual{
			Kind:   models.DisplayKindImage,
			Source: s.ImageURL,
			Effect: motionEffect(s.Scene),
		}, nil
	}
}

// motionEffect reads the scene's motion descriptor. Only plain images
// are Ken Burns eligible; no preset means a static shot.
func motionEffect(scene models.Scene) models.MotionEffect {
	if scene.MotionPreset == nil || *scene.MotionPreset == "" {
		return models.MotionEffect{Kind: effectNone}
	}

	effect := models.MotionEffect{Kind: effectKenBurns}
	if z, ok := numericParam(scene.MotionParams, "zoom_factor"); ok {
		effect.ZoomFactor = &z
	}
	if x, ok := numericParam(scene.MotionParams, "pan_x"); ok {
		effect.PanX = &x
	}
	if y, ok := numericParam(scene.MotionParams, "pan_y"); ok {
		effect.PanY = &y
	}
	return effect
}

func numericParam(params models.JSONB, key string) (float64, bool) {
	if params == nil {
		return 0, false
	}
	v, ok := params[key].(float64)
	return v, ok
}
