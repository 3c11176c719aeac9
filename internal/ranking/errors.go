package ranking

import "errors"

var (
	// ErrEmbeddingFailure marks an unreachable embedder or malformed embedder output.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrDimensionMismatch marks vectors of different lengths meeting in one computation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbedderMismatch marks vectors produced by different embedder models.
	ErrEmbedderMismatch = errors.New("embedder model mismatch")
)
