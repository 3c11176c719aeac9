package ranking

import (
	"context"
	"errors"
	"fmt"

	"NewsRecommender/internal/domain"
)

// tableEmbedder maps known texts to fixed vectors.
type tableEmbedder struct {
	vectors   map[string]domain.Vector
	model     string
	err       error
	manyCalls int
	oneCalls  int
}

func newTableEmbedder(vectors map[string]domain.Vector) *tableEmbedder {
	return &tableEmbedder{vectors: vectors, model: "table-v1"}
}

func (e *tableEmbedder) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	e.oneCalls++
	out, err := e.lookup([]string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *tableEmbedder) EmbedMany(ctx context.Context, texts []string) ([]domain.Vector, error) {
	e.manyCalls++
	return e.lookup(texts)
}

func (e *tableEmbedder) ModelID() string {
	return e.model
}

func (e *tableEmbedder) lookup(texts []string) ([]domain.Vector, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([]domain.Vector, len(texts))
	for i, t := range texts {
		vec, ok := e.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", t)
		}
		out[i] = append(domain.Vector(nil), vec...)
	}
	return out, nil
}

var errEmbedderDown = errors.New("embedder down")
