package compose

import "fmt"

// Issue reasons. The first two are critical (they block render), the
// rest are advisory and only ever appear in warning lists.
const (
	ReasonMissingAsset      = "missing_asset"
	ReasonRelativeURL       = "relative_url"
	ReasonDanglingReference = "dangling_reference"
	ReasonInvalidInterval   = "invalid_interval"
	ReasonBakedImageMissing = "baked_image_missing"
	ReasonSilentDialogue    = "silent_dialogue"
	ReasonNoAudio           = "no_audio"
)

// Issue is one preflight finding. SceneID 0 means project-level.
type Issue struct {
	SceneID int64  `json:"scene_id"`
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

// MissingAssetError means the Visual Selector could not find the
// backing asset a scene's display kind requires. Critical: the whole
// build is rejected, reported per scene.
type MissingAssetError struct {
	SceneID int64
	Field   string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("scene %d: missing required asset %q", e.SceneID, e.Field)
}

// RelativeURLError means an emitted asset reference is not an absolute
// URL. The external renderer cannot resolve it, so this is critical.
type RelativeURLError struct {
	SceneID int64
	Field   string
	URL     string
}

func (e *RelativeURLError) Error() string {
	return fmt.Sprintf("scene %d: %s is not an absolute URL: %q", e.SceneID, e.Field, e.URL)
}
