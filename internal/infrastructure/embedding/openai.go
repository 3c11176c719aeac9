package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sashabaranov/go-openai"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
)

// OpenAIEmbedder embeds text through any OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *slog.Logger
}

var _ ports.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder builds the client. baseURL may point at a compatible
// provider; empty keeps the OpenAI default. dimensions 0 lets the model decide.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimensions int, logger *slog.Logger) *OpenAIEmbedder {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dimensions,
		logger:     logger,
	}
}

// ModelID includes the requested dimensions, since truncated vectors form a
// different space.
func (e *OpenAIEmbedder) ModelID() string {
	if e.dimensions > 0 {
		return fmt.Sprintf("openai:%s@%d", e.model, e.dimensions)
	}
	return "openai:" + e.model
}

// EmbedOne embeds a single text.
func (e *OpenAIEmbedder) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedMany embeds texts in one request and returns vectors in input order.
func (e *OpenAIEmbedder) EmbedMany(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		metrics.EmbedRequests.WithLabelValues("openai", "error").Inc()
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		metrics.EmbedRequests.WithLabelValues("openai", "error").Inc()
		return nil, fmt.Errorf("embeddings api returned %d vectors for %d texts", len(resp.Data), len(texts))
	}
	metrics.EmbedRequests.WithLabelValues("openai", "ok").Inc()

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([]domain.Vector, len(data))
	for i, d := range data {
		vectors[i] = domain.Vector(d.Embedding)
	}

	if e.logger != nil {
		e.logger.Debug("embedded batch", "model", e.model, "texts", len(texts), "tokens", resp.Usage.TotalTokens)
	}
	return vectors, nil
}
