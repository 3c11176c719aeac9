package ranking

import (
	"context"
	"fmt"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// ProfileBuilder fuses declared categories, likes and read history into one
// interest vector.
type ProfileBuilder struct {
	embedder   ports.Embedder
	categories CategoryTable
	params     Params
}

// NewProfileBuilder wires the embedder with the category table and policy.
func NewProfileBuilder(embedder ports.Embedder, categories CategoryTable, params Params) *ProfileBuilder {
	return &ProfileBuilder{
		embedder:   embedder,
		categories: categories,
		params:     params.WithDefaults(),
	}
}

// BuildProfile is Build applied to a stored profile.
func (b *ProfileBuilder) BuildProfile(ctx context.Context, profile domain.UserProfile) (domain.Vector, error) {
	return b.Build(ctx, profile.Categories, profile.Likes, profile.History)
}

// Build embeds every signal in one batch and fuses the parts. Without likes
// or history the category vector is returned unchanged.
func (b *ProfileBuilder) Build(ctx context.Context, categories []string, likes, history []domain.BehaviorItem) (domain.Vector, error) {
	descriptors := b.categories.Descriptions(categories)
	if len(descriptors) == 0 {
		descriptors = []string{b.params.DefaultDescriptor}
	}

	texts := make([]string, 0, len(descriptors)+len(likes)+len(history))
	texts = append(texts, descriptors...)
	for _, item := range likes {
		texts = append(texts, item.Text)
	}
	for _, item := range history {
		texts = append(texts, item.Text)
	}

	vectors, err := EmbedBatch(ctx, b.embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embed profile signals: %w", err)
	}

	nc, nl := len(descriptors), len(likes)
	categoryVec, err := Mean(vectors[:nc])
	if err != nil {
		return nil, fmt.Errorf("category vector: %w", err)
	}
	if len(likes) == 0 && len(history) == 0 {
		return categoryVec, nil
	}

	dim := len(categoryVec)
	likesVec := Zero(dim)
	if nl > 0 {
		if likesVec, err = Mean(vectors[nc : nc+nl]); err != nil {
			return nil, fmt.Errorf("likes vector: %w", err)
		}
	}

	historyVec := Zero(dim)
	if len(history) > 0 {
		weights := RecencyWeights(len(history), b.params.DecayRate)
		if historyVec, err = WeightedMean(vectors[nc+nl:], weights); err != nil {
			return nil, fmt.Errorf("history vector: %w", err)
		}
	}

	fused, err := Blend(
		[]domain.Vector{categoryVec, likesVec, historyVec},
		[]float64{b.params.CategoryWeight, b.params.LikesWeight, b.params.HistoryWeight},
	)
	if err != nil {
		return nil, fmt.Errorf("fuse profile: %w", err)
	}
	if isZero(fused) {
		return categoryVec, nil
	}
	return fused, nil
}
