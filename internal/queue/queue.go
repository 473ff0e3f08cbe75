package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	QueueNarrateScene = "queue:narrate_scene"
	QueueAnimateScene = "queue:animate_scene"
	QueueSubmitBuild  = "queue:submit_build"
)

// lastHashTTL bounds how long a submitted-build hash is remembered for
// idempotent resubmission detection.
const lastHashTTL = 30 * 24 * time.Hour

type Queue struct {
	client *redis.Client
}

type Job struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	ProjectID uuid.UUID  `json:"project_id"`
	SceneID   *int64     `json:"scene_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Enqueue(ctx context.Context, queueName string, job *Job) error {
	job.CreatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.RPush(ctx, queueName, data).Err()
}

func (q *Queue) Dequeue(ctx context.Context, queueName string, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, queueName).Result()
	if err == redis.Nil {
		return nil, nil // No job available
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (q *Queue) GetQueueLength(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, queueName).Result()
}

// EnqueueNarrateScene enqueues narration generation for a scene's utterances.
func (q *Queue) EnqueueNarrateScene(ctx context.Context, projectID uuid.UUID, sceneID int64, jobID uuid.UUID) error {
	job := &Job{
		ID:        jobID,
		Type:      "narrate_scene",
		ProjectID: projectID,
		SceneID:   &sceneID,
	}
	return q.Enqueue(ctx, QueueNarrateScene, job)
}

// EnqueueAnimateScene enqueues motion-clip generation for a scene.
func (q *Queue) EnqueueAnimateScene(ctx context.Context, projectID uuid.UUID, sceneID int64, jobID uuid.UUID) error {
	job := &Job{
		ID:        jobID,
		Type:      "animate_scene",
		ProjectID: projectID,
		SceneID:   &sceneID,
	}
	return q.Enqueue(ctx, QueueAnimateScene, job)
}

// EnqueueSubmitBuild enqueues a full compose-and-submit pass.
func (q *Queue) EnqueueSubmitBuild(ctx context.Context, projectID uuid.UUID, jobID uuid.UUID) error {
	job := &Job{
		ID:        jobID,
		Type:      "submit_build",
		ProjectID: projectID,
	}
	return q.Enqueue(ctx, QueueSubmitBuild, job)
}

// Idempotency keys — the hash of the last successfully submitted build
// per project. "Same hash as last submission" means no new work.

func lastHashKey(projectID uuid.UUID) string {
	return "build:last_hash:" + projectID.String()
}

func (q *Queue) GetLastBuildHash(ctx context.Context, projectID uuid.UUID) (string, error) {
	hash, err := q.client.Get(ctx, lastHashKey(projectID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last build hash: %w", err)
	}
	return hash, nil
}

func (q *Queue) SetLastBuildHash(ctx context.Context, projectID uuid.UUID, hash string) error {
	return q.client.Set(ctx, lastHashKey(projectID), hash, lastHashTTL).Err()
}
