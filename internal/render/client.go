package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	submitTimeout = 60 * time.Second
	statusTimeout = 15 * time.Second

	submitRetries    = 3
	submitRetryDelay = 2 * time.Second
)

// Client submits finished build documents to the render collaborator.
// The content fingerprint travels as an idempotency key so resubmitting
// an unchanged timeline never starts a second render.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: submitTimeout,
		},
	}
}

// SubmitResponse is the render collaborator's acknowledgement.
type SubmitResponse struct {
	RenderID string `json:"render_id"`
	Status   string `json:"status"`
}

// StatusResponse reports render progress for a previously submitted build.
type StatusResponse struct {
	RenderID string  `json:"render_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	VideoURL string  `json:"video_url,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Submit posts the serialized build document. buildJSON must already be
// the canonical serialization so the hash and the payload agree.
// Retrying on 429/5xx is safe: the Idempotency-Key dedupes on the far
// side.
func (c *Client) Submit(ctx context.Context, buildJSON []byte, buildHash string) (*SubmitResponse, error) {
	submitURL := fmt.Sprintf("%s/v1/renders", c.baseURL)

	log.Printf("[Render] Submitting build (hash=%s, %d bytes)", buildHash, len(buildJSON))

	var lastErr error
	for attempt := 0; attempt <= submitRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Render] Submit retry %d/%d...", attempt, submitRetries)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("submit cancelled: %w", ctx.Err())
			case <-time.After(submitRetryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", submitURL, bytes.NewReader(buildJSON))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", buildHash)
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to submit build: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read submit response: %w", err)
			continue
		}

		// 200 = already known (idempotent replay), 201/202 = accepted
		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			var result SubmitResponse
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("failed to parse submit response: %w", err)
			}
			log.Printf("[Render] Build accepted (render_id=%s, status=%s)", result.RenderID, result.Status)
			return &result, nil
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("submit failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
			continue
		default:
			return nil, fmt.Errorf("submit failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
	}

	return nil, fmt.Errorf("submit failed after %d attempts: %w", submitRetries+1, lastErr)
}

// GetStatus polls the render collaborator for progress.
func (c *Client) GetStatus(ctx context.Context, renderID string) (*StatusResponse, error) {
	statusURL := fmt.Sprintf("%s/v1/renders/%s", c.baseURL, renderID)

	attemptCtx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, "GET", statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get render status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status check failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result StatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	return &result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
