package compose

import "github.com/velto/animatic/internal/models"

// ReadinessReport is the authoring-UI shape: Missing gates the "start
// render" action, Warnings are shown as non-blocking notices.
type ReadinessReport struct {
	IsReady  bool    `json:"is_ready"`
	Missing  []Issue `json:"missing"`
	Warnings []Issue `json:"warnings"`
}

// GenerateReport is the submission-side shape consumed right before a
// build is handed to the renderer.
type GenerateReport struct {
	CanGenerate bool                `json:"can_generate"`
	Errors      []Issue             `json:"errors"`
	Summary     models.BuildSummary `json:"summary"`
}

// Preflight runs a full composition pass and splits the findings into
// the two UI result shapes. Both lists are always complete: the pass
// never stops at the first failure.
func Preflight(in *Input) (ReadinessReport, GenerateReport, error) {
	res, err := Compose(in)
	if err != nil {
		return ReadinessReport{}, GenerateReport{}, err
	}
	return reportsFromResult(res)
}

func reportsFromResult(res *Result) (ReadinessReport, GenerateReport, error) {
	readiness := ReadinessReport{
		IsReady:  res.CanGenerate(),
		Missing:  emptyIfNil(res.Critical),
		Warnings: emptyIfNil(res.Advisory),
	}
	generate := GenerateReport{
		CanGenerate: res.CanGenerate(),
		Errors:      emptyIfNil(res.Critical),
		Summary:     res.Build.Summary,
	}
	return readiness, generate, nil
}

// emptyIfNil keeps the JSON shape stable: [] rather than null.
func emptyIfNil(issues []Issue) []Issue {
	if issues == nil {
		return []Issue{}
	}
	return issues
}
