package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velto/animatic/internal/compose"
	"github.com/velto/animatic/internal/db"
	"github.com/velto/animatic/internal/models"
	"github.com/velto/animatic/internal/queue"
	"github.com/velto/animatic/internal/sequencer"
	"github.com/velto/animatic/internal/storage"
)

type Handler struct {
	db      *db.DB
	queue   *queue.Queue
	storage *storage.Storage
	seq     *sequencer.Sequencer
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Storage, seq *sequencer.Sequencer) *Handler {
	return &Handler{
		db:      database,
		queue:   q,
		storage: stor,
		seq:     seq,
	}
}

// timelineResponse is the composed document plus everything the editor
// needs to show preflight state inline.
type timelineResponse struct {
	Build    *models.BuildRequest `json:"build"`
	Hash     string               `json:"hash"`
	Critical []compose.Issue      `json:"critical"`
	Advisory []compose.Issue      `json:"advisory"`
}

type preflightResponse struct {
	Readiness compose.ReadinessReport `json:"readiness"`
	Generate  compose.GenerateReport  `json:"generate"`
}

// CreateProject handles POST /v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	// Output defaults: 1080p landscape, 30fps h264
	width, height, fps := 1920, 1080, 30
	codec := "h264"
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if req.FPS != nil {
		fps = *req.FPS
	}
	if req.Codec != nil {
		codec = *req.Codec
	}

	textMode := req.TextMode
	if textMode == "" {
		textMode = models.TextModeDrawn
	}
	switch textMode {
	case models.TextModeDrawn, models.TextModeBaked, models.TextModeNone:
	default:
		respondError(w, http.StatusBadRequest, "Invalid text_mode. Allowed: drawn, baked, none")
		return
	}

	project := &models.Project{
		ID:       uuid.New(),
		Title:    req.Title,
		Status:   models.ProjectStatusDraft,
		Width:    width,
		Height:   height,
		FPS:      fps,
		Codec:    codec,
		TextMode: textMode,
	}

	if err := h.db.CreateProject(r.Context(), project); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	respondJSON(w, http.StatusCreated, models.CreateProjectResponse{
		ProjectID: project.ID,
		Status:    project.Status,
	})
}

// GetProject handles GET /v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	scenes, err := h.db.GetProjectScenes(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get scenes")
		return
	}

	respondJSON(w, http.StatusOK, models.ProjectResponse{
		Project: *project,
		Scenes:  scenes,
	})
}

// GetTimeline handles GET /v1/projects/{id}/timeline
//
// Composes the full build document without submitting it, so the editor
// can preview exact scene timing. Critical issues don't 4xx here; they
// ride along in the response so the editor can highlight broken scenes.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	in, err := h.db.LoadBuildInput(r.Context(), projectID, h.storage)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	res, err := compose.Compose(in)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compose timeline")
		return
	}

	respondJSON(w, http.StatusOK, timelineResponse{
		Build:    res.Build,
		Hash:     res.Hash,
		Critical: emptyIssues(res.Critical),
		Advisory: emptyIssues(res.Advisory),
	})
}

// GetPreflight handles GET /v1/projects/{id}/preflight
func (h *Handler) GetPreflight(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	in, err := h.db.LoadBuildInput(r.Context(), projectID, h.storage)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	readiness, generate, err := compose.Preflight(in)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to run preflight")
		return
	}

	respondJSON(w, http.StatusOK, preflightResponse{
		Readiness: readiness,
		Generate:  generate,
	})
}

// SubmitBuild handles POST /v1/projects/{id}/build
//
// The critical gate runs synchronously: a blocked build is rejected
// with 422 and the full issue list, nothing is enqueued. A clean build
// is accepted with its content hash and submitted by the worker.
func (h *Handler) SubmitBuild(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	in, err := h.db.LoadBuildInput(r.Context(), projectID, h.storage)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	res, err := compose.Compose(in)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compose build")
		return
	}

	if !res.CanGenerate() {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    "build blocked by critical issues",
			"critical": res.Critical,
			"advisory": emptyIssues(res.Advisory),
		})
		return
	}

	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: projectID,
		Type:      "submit_build",
		Status:    models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueSubmitBuild(r.Context(), projectID, jobID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, models.BuildAcceptedResponse{
		ProjectID: projectID,
		JobID:     jobID,
		Hash:      res.Hash,
	})
}

// HideScene handles POST /v1/projects/{id}/scenes/{sceneId}/hide
func (h *Handler) HideScene(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	sceneID, ok := parseSceneID(w, r)
	if !ok {
		return
	}

	if err := h.seq.Hide(r.Context(), projectID, sceneID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hide scene")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"scene_id": sceneID, "hidden": true})
}

// RestoreScene handles POST /v1/projects/{id}/scenes/{sceneId}/restore
func (h *Handler) RestoreScene(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	sceneID, ok := parseSceneID(w, r)
	if !ok {
		return
	}

	if err := h.seq.Restore(r.Context(), projectID, sceneID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to restore scene")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"scene_id": sceneID, "hidden": false})
}

// ReorderScenes handles PUT /v1/projects/{id}/scenes/order
//
// The request must name every visible scene exactly once; a partial or
// duplicated list is rejected without touching any index.
func (h *Handler) ReorderScenes(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	var req models.ReorderScenesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.SceneIDs) == 0 {
		respondError(w, http.StatusBadRequest, "scene_ids is required")
		return
	}

	if err := h.seq.Reorder(r.Context(), projectID, req.SceneIDs); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"scene_ids": req.SceneIDs})
}

// NarrateScene handles POST /v1/projects/{id}/scenes/{sceneId}/narrate
func (h *Handler) NarrateScene(w http.ResponseWriter, r *http.Request) {
	h.enqueueSceneJob(w, r, "narrate_scene", h.queue.EnqueueNarrateScene)
}

// AnimateScene handles POST /v1/projects/{id}/scenes/{sceneId}/animate
func (h *Handler) AnimateScene(w http.ResponseWriter, r *http.Request) {
	h.enqueueSceneJob(w, r, "animate_scene", h.queue.EnqueueAnimateScene)
}

func (h *Handler) enqueueSceneJob(w http.ResponseWriter, r *http.Request, jobType string, enqueue func(ctx context.Context, projectID uuid.UUID, sceneID int64, jobID uuid.UUID) error) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	sceneID, ok := parseSceneID(w, r)
	if !ok {
		return
	}

	if _, err := h.db.GetScene(r.Context(), sceneID); err != nil {
		respondError(w, http.StatusNotFound, "Scene not found")
		return
	}

	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: projectID,
		SceneID:   &sceneID,
		Type:      jobType,
		Status:    models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := enqueue(r.Context(), projectID, sceneID, jobID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{"job_id": jobID, "scene_id": sceneID})
}

// GetProjectJobs handles GET /v1/projects/{id}/debug/jobs
func (h *Handler) GetProjectJobs(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	jobs, err := h.db.GetProjectJobs(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// Helper methods
func parseProjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return uuid.Nil, false
	}
	return projectID, true
}

func parseSceneID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sceneID, err := strconv.ParseInt(chi.URLParam(r, "sceneId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene ID")
		return 0, false
	}
	return sceneID, true
}

func emptyIssues(issues []compose.Issue) []compose.Issue {
	if issues == nil {
		return []compose.Issue{}
	}
	return issues
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
