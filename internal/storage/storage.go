package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	uploadTimeout   = 180 * time.Second
	downloadTimeout = 120 * time.Second

	maxRetries     = 4
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// Storage talks to a Supabase-style object store over HTTP. Its
// GetPublicURL is the single source of absolute asset URLs for the
// composition engine — relative paths never leave this package.
type Storage struct {
	url        string
	serviceKey string
	Bucket     string
	client     *http.Client
}

func New(url, serviceKey, bucket string) *Storage {
	return &Storage{
		url:        url,
		serviceKey: serviceKey,
		Bucket:     bucket,
		client: &http.Client{
			Timeout: uploadTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Upload writes an object with retries and exponential backoff. Uses
// PUT with x-upsert so re-running a generation job overwrites cleanly.
func (s *Storage) Upload(ctx context.Context, storagePath string, data []byte, contentType string) error {
	objectURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.url, s.Bucket, storagePath)

	_, err := s.doWithRetry(ctx, "Upload", storagePath, uploadTimeout, func(attemptCtx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(attemptCtx, "PUT", objectURL, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.serviceKey)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-Length", fmt.Sprintf("%d", len(data)))
		req.Header.Set("x-upsert", "true")
		return req, nil
	})
	return err
}

// Download reads an object with the same retry policy.
func (s *Storage) Download(ctx context.Context, storagePath string) ([]byte, error) {
	objectURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.url, s.Bucket, storagePath)

	return s.doWithRetry(ctx, "Download", storagePath, downloadTimeout, func(attemptCtx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(attemptCtx, "GET", objectURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.serviceKey)
		return req, nil
	})
}

// doWithRetry runs one HTTP exchange with exponential backoff + jitter.
// newReq builds a fresh request per attempt so the body reader is never
// reused after a failed send.
func (s *Storage) doWithRetry(ctx context.Context, op, storagePath string, timeout time.Duration, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			log.Printf("[Storage] %s retry %d/%d for %s (waiting %v)...", op, attempt, maxRetries, storagePath, delay)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s cancelled: %w", strings.ToLower(op), ctx.Err())
			case <-time.After(delay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)

		req, err := newReq(attemptCtx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("%s failed: %w", strings.ToLower(op), err)
			if isRetryableError(err) {
				log.Printf("[Storage] %s attempt %d failed (retryable): %v", op, attempt+1, err)
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read %s body: %w", strings.ToLower(op), readErr)
			continue
		}

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			if attempt > 0 {
				log.Printf("[Storage] %s succeeded on attempt %d for %s", op, attempt+1, storagePath)
			}
			return body, nil
		}

		lastErr = fmt.Errorf("%s failed with status %d: %s", strings.ToLower(op), resp.StatusCode, truncate(string(body), 200))

		if isRetryableStatus(resp.StatusCode) {
			log.Printf("[Storage] %s attempt %d returned status %d (retryable)", op, attempt+1, resp.StatusCode)
			continue
		}

		return nil, lastErr
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", strings.ToLower(op), maxRetries+1, lastErr)
}

// GetPublicURL returns the absolute public URL for a storage path.
func (s *Storage) GetPublicURL(storagePath string) string {
	if storagePath == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.url, s.Bucket, storagePath)
}

// GetSignedURL creates a signed URL for temporary access.
func (s *Storage) GetSignedURL(ctx context.Context, storagePath string, expiresIn int) (string, error) {
	signURL := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.url, s.Bucket, storagePath)

	body := fmt.Sprintf(`{"expiresIn": %d}`, expiresIn)
	req, err := http.NewRequestWithContext(ctx, "POST", signURL, bytes.NewBufferString(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get signed URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse signed URL response: %w", err)
	}

	return s.url + result.SignedURL, nil
}

// ScenePath builds the storage path for a per-scene artifact.
func (s *Storage) ScenePath(projectID uuid.UUID, sceneID int64, filename string) string {
	return path.Join(projectID.String(), fmt.Sprintf("scene_%d", sceneID), filename)
}

// ProjectPath builds the storage path for a project-level artifact.
func (s *Storage) ProjectPath(projectID uuid.UUID, filename string) string {
	return path.Join(projectID.String(), filename)
}

// retryDelay calculates exponential backoff with jitter: base * 2^attempt + random jitter
func retryDelay(attempt int) time.Duration {
	delay := float64(baseRetryDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	// Add 0–25% jitter to avoid thundering herd
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

// isRetryableError checks if a network-level error is worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "broken pipe")
}

// isRetryableStatus checks if an HTTP status code is worth retrying
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || // 429
		status == http.StatusRequestTimeout || // 408
		status == http.StatusBadGateway || // 502
		status == http.StatusServiceUnavailable || // 503
		status == http.StatusGatewayTimeout // 504
}

// truncate limits a string to maxLen characters for log output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
