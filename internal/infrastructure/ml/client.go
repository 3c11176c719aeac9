package ml

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
)

const backendName = "http"

// Client talks to a sentence-embedding service over HTTP.
//
// The service accepts POST {endpoint}/embed with {"model": ..., "texts": [...]}
// and answers {"embeddings": [[...], ...]} in input order.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

var _ ports.Embedder = (*Client)(nil)

// NewClient creates a reusable HTTP client. A zero timeout means 15s.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

// ModelID identifies the vector space of produced embeddings.
func (c *Client) ModelID() string {
	return backendName + ":" + c.model
}

// EmbedOne embeds a single text.
func (c *Client) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	vectors, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedMany sends all texts in one request.
func (c *Client) EmbedMany(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"model": c.model,
		"texts": texts,
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}

	if err := c.post(ctx, "/embed", payload, &resp); err != nil {
		metrics.EmbedRequests.WithLabelValues(backendName, "error").Inc()
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		metrics.EmbedRequests.WithLabelValues(backendName, "error").Inc()
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}
	metrics.EmbedRequests.WithLabelValues(backendName, "ok").Inc()

	vectors := make([]domain.Vector, len(resp.Embeddings))
	for i, v := range resp.Embeddings {
		vectors[i] = domain.Vector(v)
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
