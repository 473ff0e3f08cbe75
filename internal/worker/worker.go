package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/velto/animatic/internal/compose"
	"github.com/velto/animatic/internal/db"
	"github.com/velto/animatic/internal/models"
	"github.com/velto/animatic/internal/queue"
	"github.com/velto/animatic/internal/render"
	"github.com/velto/animatic/internal/services"
	"github.com/velto/animatic/internal/storage"
)

type Worker struct {
	db        *db.DB
	queue     *queue.Queue
	storage   *storage.Storage
	tts       services.TTSService
	clipgen   *services.ClipGenService // Optional: nil when CLIP_GEN_ENABLED=false
	render    *render.Client
	uploadSem chan struct{} // Limits concurrent storage uploads to prevent congestion
}

func New(
	database *db.DB,
	q *queue.Queue,
	stor *storage.Storage,
	ttsSvc services.TTSService,
	clipgenSvc *services.ClipGenService,
	renderClient *render.Client,
) *Worker {
	return &Worker{
		db:        database,
		queue:     q,
		storage:   stor,
		tts:       ttsSvc,
		clipgen:   clipgenSvc,
		render:    renderClient,
		uploadSem: make(chan struct{}, 4),
	}
}

// uploadWithLimit wraps an upload call with a semaphore so a burst of
// narration jobs can't saturate the object store.
func (w *Worker) uploadWithLimit(ctx context.Context, label string, fn func() error) error {
	select {
	case w.uploadSem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("upload cancelled while waiting for slot: %w", ctx.Err())
	}
	defer func() { <-w.uploadSem }()

	log.Printf("[Upload] %s uploading...", label)
	return fn()
}

// Start begins processing jobs from all queues
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueNarrateScene, w.handleNarrateScene)
		go w.processQueue(ctx, queue.QueueAnimateScene, w.handleAnimateScene)
		go w.processQueue(ctx, queue.QueueSubmitBuild, w.handleSubmitBuild)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s, project: %s)", job.ID, job.Type, job.ProjectID)

			if err := w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
				log.Printf("Failed to update job status: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				w.db.UpdateJobError(ctx, job.ID, err.Error())
			} else {
				log.Printf("Job %s completed successfully", job.ID)
				w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusSucceeded)
			}
		}
	}
}

// handleNarrateScene synthesizes audio for every un-narrated utterance
// in one scene. Each utterance gets its own voice asset and measured
// duration; utterances that already have audio are skipped so the job
// is safe to re-run.
func (w *Worker) handleNarrateScene(ctx context.Context, job *queue.Job) error {
	if job.SceneID == nil {
		return fmt.Errorf("scene ID missing")
	}
	sceneID := *job.SceneID

	utterances, err := w.db.GetSceneUtterances(ctx, sceneID)
	if err != nil {
		return fmt.Errorf("failed to get utterances: %w", err)
	}

	pending := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	for _, u := range utterances {
		if u.AudioAssetID != nil {
			continue // already narrated
		}
		if u.Text == "" {
			continue
		}
		pending++

		u := u
		g.Go(func() error {
			voiceID := ""
			if u.VoiceID != nil {
				voiceID = *u.VoiceID
			}

			speech, err := w.tts.GenerateSpeech(gctx, u.Text, voiceID)
			if err != nil {
				return fmt.Errorf("narration failed for utterance %d: %w", u.ID, err)
			}

			asset := &models.Asset{
				ID:            uuid.New(),
				ProjectID:     job.ProjectID,
				SceneID:       &sceneID,
				Type:          models.AssetTypeVoice,
				StorageBucket: w.storage.Bucket,
				StoragePath:   w.storage.ScenePath(job.ProjectID, sceneID, fmt.Sprintf("utterance_%d.%s", u.ID, speech.Format)),
				ContentType:   strPtr("audio/mpeg"),
				ByteSize:      int64Ptr(int64(len(speech.AudioData))),
			}

			if err := w.uploadWithLimit(gctx, fmt.Sprintf("utterance_%d", u.ID), func() error {
				return w.storage.Upload(gctx, asset.StoragePath, speech.AudioData, "audio/mpeg")
			}); err != nil {
				return fmt.Errorf("failed to upload utterance audio: %w", err)
			}

			if err := w.db.CreateAsset(gctx, asset); err != nil {
				return fmt.Errorf("failed to save voice asset: %w", err)
			}

			return w.db.UpdateUtteranceAudio(gctx, u.ID, asset.ID, speech.DurationMs)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("Scene %d: narrated %d utterance(s)", sceneID, pending)
	return nil
}

// handleAnimateScene turns a scene's still image into a motion clip.
// The scene's clip state tracks progress: the composition engine only
// accepts a clip visual once the state reaches completed, so a scene
// mid-animation keeps rendering as a still image.
func (w *Worker) handleAnimateScene(ctx context.Context, job *queue.Job) error {
	if job.SceneID == nil {
		return fmt.Errorf("scene ID missing")
	}
	if w.clipgen == nil {
		return fmt.Errorf("clip generation is not enabled")
	}
	sceneID := *job.SceneID

	scene, err := w.db.GetScene(ctx, sceneID)
	if err != nil {
		return fmt.Errorf("failed to get scene: %w", err)
	}
	if scene.ImageAssetID == nil {
		return fmt.Errorf("scene %d has no image to animate", sceneID)
	}

	project, err := w.db.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	imageAsset, err := w.db.GetAsset(ctx, *scene.ImageAssetID)
	if err != nil {
		return fmt.Errorf("failed to get image asset: %w", err)
	}

	imageData, err := w.storage.Download(ctx, imageAsset.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}

	if err := w.db.UpdateSceneClipState(ctx, sceneID, models.ClipStateProcessing); err != nil {
		return fmt.Errorf("failed to mark clip processing: %w", err)
	}

	motionHint := "Animate this illustration with subtle natural motion."
	if hint, ok := scene.MotionParams["motion_hint"].(string); ok && hint != "" {
		motionHint = hint
	}

	aspectRatio := "16:9"
	if project.Height > project.Width {
		aspectRatio = "9:16"
	}

	contentType := "image/png"
	if imageAsset.ContentType != nil {
		contentType = *imageAsset.ContentType
	}

	clipData, clipDurationSec, err := w.clipgen.GenerateClip(ctx, motionHint, imageData, contentType, aspectRatio)
	if err != nil {
		if stateErr := w.db.UpdateSceneClipState(ctx, sceneID, models.ClipStateFailed); stateErr != nil {
			log.Printf("Scene %d: failed to record clip failure: %v", sceneID, stateErr)
		}
		return fmt.Errorf("clip generation failed: %w", err)
	}

	clipAsset := &models.Asset{
		ID:            uuid.New(),
		ProjectID:     job.ProjectID,
		SceneID:       &sceneID,
		Type:          models.AssetTypeClipVideo,
		StorageBucket: w.storage.Bucket,
		StoragePath:   w.storage.ScenePath(job.ProjectID, sceneID, "clip.mp4"),
		ContentType:   strPtr("video/mp4"),
		ByteSize:      int64Ptr(int64(len(clipData))),
	}

	if err := w.uploadWithLimit(ctx, fmt.Sprintf("scene_%d_clip", sceneID), func() error {
		return w.storage.Upload(ctx, clipAsset.StoragePath, clipData, "video/mp4")
	}); err != nil {
		w.db.UpdateSceneClipState(ctx, sceneID, models.ClipStateFailed)
		return fmt.Errorf("failed to upload clip: %w", err)
	}

	if err := w.db.CreateAsset(ctx, clipAsset); err != nil {
		return fmt.Errorf("failed to save clip asset: %w", err)
	}

	if err := w.db.UpdateSceneClip(ctx, sceneID, clipAsset.ID, models.ClipStateCompleted, clipDurationSec); err != nil {
		return fmt.Errorf("failed to update scene clip: %w", err)
	}

	log.Printf("Scene %d: clip ready (%.1fs, %d bytes)", sceneID, clipDurationSec, len(clipData))
	return nil
}

// handleSubmitBuild composes the full timeline document and hands it
// to the render collaborator. The build is gated twice: critical
// validation failures block submission, and an unchanged content
// fingerprint short-circuits it entirely.
func (w *Worker) handleSubmitBuild(ctx context.Context, job *queue.Job) error {
	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusGenerating); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	in, err := w.db.LoadBuildInput(ctx, job.ProjectID, w.storage)
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
		return fmt.Errorf("failed to load build input: %w", err)
	}

	res, err := compose.Compose(in)
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
		return fmt.Errorf("failed to compose build: %w", err)
	}

	for _, iss := range res.Advisory {
		log.Printf("Project %s: advisory: scene=%d field=%s reason=%s", job.ProjectID, iss.SceneID, iss.Field, iss.Reason)
	}

	if !res.CanGenerate() {
		first := res.Critical[0]
		msg := fmt.Sprintf("build blocked by %d critical issue(s), first: scene=%d field=%s reason=%s",
			len(res.Critical), first.SceneID, first.Field, first.Reason)
		w.db.UpdateProjectError(ctx, job.ProjectID, msg)
		return fmt.Errorf("%s", msg)
	}

	// Idempotency gate: identical content means the previous render
	// already covers this submission.
	lastHash, err := w.queue.GetLastBuildHash(ctx, job.ProjectID)
	if err != nil {
		log.Printf("Project %s: could not read last build hash, submitting anyway: %v", job.ProjectID, err)
	}
	if lastHash != "" && lastHash == res.Hash {
		log.Printf("Project %s: build unchanged (hash=%s), skipping submission", job.ProjectID, res.Hash)
		return w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusSubmitted)
	}

	buildJSON, err := compose.Serialize(res.Build)
	if err != nil {
		return fmt.Errorf("failed to serialize build: %w", err)
	}

	// Archive the document alongside the project's other assets
	buildAsset := &models.Asset{
		ID:            uuid.New(),
		ProjectID:     job.ProjectID,
		Type:          models.AssetTypeBuildJSON,
		StorageBucket: w.storage.Bucket,
		StoragePath:   w.storage.ProjectPath(job.ProjectID, fmt.Sprintf("build_%s.json", res.Hash[:12])),
		ContentType:   strPtr("application/json"),
		ByteSize:      int64Ptr(int64(len(buildJSON))),
	}

	if err := w.uploadWithLimit(ctx, "build.json", func() error {
		return w.storage.Upload(ctx, buildAsset.StoragePath, buildJSON, "application/json")
	}); err != nil {
		return fmt.Errorf("failed to archive build document: %w", err)
	}

	if err := w.db.CreateAsset(ctx, buildAsset); err != nil {
		return fmt.Errorf("failed to save build asset: %w", err)
	}

	resp, err := w.render.Submit(ctx, buildJSON, res.Hash)
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
		return fmt.Errorf("failed to submit build: %w", err)
	}

	if err := w.queue.SetLastBuildHash(ctx, job.ProjectID, res.Hash); err != nil {
		log.Printf("Project %s: could not cache build hash: %v", job.ProjectID, err)
	}
	if err := w.db.SetProjectBuildHash(ctx, job.ProjectID, res.Hash); err != nil {
		return fmt.Errorf("failed to record build hash: %w", err)
	}

	log.Printf("Project %s: build submitted (render_id=%s, hash=%s, scenes=%d, total=%dms)",
		job.ProjectID, resp.RenderID, res.Hash, res.Build.Summary.TotalScenes, res.Build.Summary.TotalDurationMs)

	return w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusSubmitted)
}

// Helper functions
func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}
