package ranking

import (
	"context"
	"fmt"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// EmbedBatch embeds texts in a single call and verifies the embedder kept
// its contract: one vector per text, all of the same length.
func EmbedBatch(ctx context.Context, embedder ports.Embedder, texts []string) ([]domain.Vector, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is not configured", ErrEmbeddingFailure)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := embedder.EmbedMany(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailure, len(vectors), len(texts))
	}
	if _, err := CheckDimensions(vectors...); err != nil {
		return nil, err
	}
	return vectors, nil
}
