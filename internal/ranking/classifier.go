package ranking

import (
	"context"
	"fmt"
	"math"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// LabelProfiles holds one embedded description per category label. Built
// once, then read-only and safe to share.
type LabelProfiles struct {
	labels  []string
	vectors []domain.Vector
	norms   []float64
	modelID string
	dim     int
}

// NewLabelProfiles embeds every category description in one batch.
func NewLabelProfiles(ctx context.Context, embedder ports.Embedder, table CategoryTable) (*LabelProfiles, error) {
	entries := table.Entries()
	texts := make([]string, len(entries))
	for i, c := range entries {
		texts[i] = c.Description
	}

	vectors, err := EmbedBatch(ctx, embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embed label profiles: %w", err)
	}
	return BuildLabelProfiles(table.Names(), vectors, embedder.ModelID())
}

// BuildLabelProfiles assembles profiles from already embedded vectors.
func BuildLabelProfiles(labels []string, vectors []domain.Vector, modelID string) (*LabelProfiles, error) {
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf("got %d vectors for %d labels", len(vectors), len(labels))
	}
	dim, err := CheckDimensions(vectors...)
	if err != nil {
		return nil, err
	}

	p := &LabelProfiles{
		labels:  append([]string(nil), labels...),
		vectors: make([]domain.Vector, len(vectors)),
		norms:   make([]float64, len(vectors)),
		modelID: modelID,
		dim:     dim,
	}
	for i, vec := range vectors {
		p.vectors[i] = append(domain.Vector(nil), vec...)
		p.norms[i] = norm(vec)
	}
	return p, nil
}

// Labels returns the labels in table order.
func (p *LabelProfiles) Labels() []string {
	return append([]string(nil), p.labels...)
}

// ModelID identifies the embedder that produced the profiles.
func (p *LabelProfiles) ModelID() string {
	return p.modelID
}

// Dim returns the vector length, 0 when empty.
func (p *LabelProfiles) Dim() int {
	return p.dim
}

// Len returns the number of labels.
func (p *LabelProfiles) Len() int {
	if p == nil {
		return 0
	}
	return len(p.labels)
}

// Classifier assigns topical labels by nearest category profile.
type Classifier struct {
	profiles  *LabelProfiles
	threshold float64
}

// NewClassifier binds precomputed profiles to a reject threshold.
func NewClassifier(profiles *LabelProfiles, threshold float64) *Classifier {
	return &Classifier{profiles: profiles, threshold: threshold}
}

// Classify labels a single article vector.
func (c *Classifier) Classify(vec domain.Vector) (string, error) {
	return Classify(vec, c.profiles, c.threshold)
}

// ClassifyAll labels vectors in order.
func (c *Classifier) ClassifyAll(vectors []domain.Vector) ([]string, error) {
	out := make([]string, len(vectors))
	for i, vec := range vectors {
		label, err := c.Classify(vec)
		if err != nil {
			return nil, fmt.Errorf("classify candidate %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}

// Classify returns the label whose profile is most similar to vec. The first
// label wins ties. A best similarity strictly below threshold yields GeneralLabel.
func Classify(vec domain.Vector, profiles *LabelProfiles, threshold float64) (string, error) {
	if profiles.Len() == 0 {
		return GeneralLabel, nil
	}
	if len(vec) != profiles.dim {
		return "", fmt.Errorf("%w: article has %d components, profiles have %d", ErrDimensionMismatch, len(vec), profiles.dim)
	}

	vn := norm(vec)
	best, bestScore := -1, math.Inf(-1)
	for i, pv := range profiles.vectors {
		score := cosineWithNorms(vec, pv, vn, profiles.norms[i])
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < threshold {
		return GeneralLabel, nil
	}
	return profiles.labels[best], nil
}
