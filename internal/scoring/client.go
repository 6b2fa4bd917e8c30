// Package scoring calls the external antibiotic-resistance model server.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medportal/internal/model"
)

// ErrNotConfigured is returned when no model server URL was provided.
var ErrNotConfigured = errors.New("scoring model is not configured")

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a client posting to <baseURL>/predict. An empty baseURL
// yields a client whose Predict always fails with ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	endpoint := ""
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		endpoint = base + "/predict"
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

func (c *Client) Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResult, error) {
	if !c.Configured() {
		return model.PredictionResult{}, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("encode prediction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("build prediction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.PredictionResult{}, fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result model.PredictionResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return model.PredictionResult{}, fmt.Errorf("decode model response: %w", err)
	}

	if result.Resistant != 0 && result.Resistant != 1 {
		return model.PredictionResult{}, fmt.Errorf("model returned resistant=%d", result.Resistant)
	}
	if result.Probability < 0 || result.Probability > 1 {
		return model.PredictionResult{}, fmt.Errorf("model returned probability=%v", result.Probability)
	}

	return result, nil
}
