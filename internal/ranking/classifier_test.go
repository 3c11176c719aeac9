package ranking

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRecommender/internal/domain"
)

func threeLabels(t *testing.T) *LabelProfiles {
	t.Helper()
	p, err := BuildLabelProfiles(
		[]string{"Technology", "Sports", "Health"},
		[]domain.Vector{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		"table-v1",
	)
	require.NoError(t, err)
	return p
}

func TestClassifyExactProfile(t *testing.T) {
	t.Parallel()

	p := threeLabels(t)
	label, err := Classify(domain.Vector{0, 1, 0}, p, DefaultRejectThreshold)
	require.NoError(t, err)
	assert.Equal(t, "Sports", label)
}

func TestClassifyRejectsWeakMatch(t *testing.T) {
	t.Parallel()

	p := threeLabels(t)
	// Mostly orthogonal to every profile: best cosine is 0.1.
	vec := domain.Vector{0.1, 0, 0, 0.99}
	p4, err := BuildLabelProfiles(p.Labels(), []domain.Vector{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}, "table-v1")
	require.NoError(t, err)

	label, err := Classify(vec, p4, 0.15)
	require.NoError(t, err)
	assert.Equal(t, GeneralLabel, label)

	label, err = Classify(vec, p4, 0.05)
	require.NoError(t, err)
	assert.Equal(t, "Technology", label)
}

func TestClassifyThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	p := threeLabels(t)
	label, err := Classify(domain.Vector{1, 0, 0}, p, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "Technology", label)
}

func TestClassifyTieGoesToFirstLabel(t *testing.T) {
	t.Parallel()

	p := threeLabels(t)
	label, err := Classify(domain.Vector{1, 1, 0}, p, 0)
	require.NoError(t, err)
	assert.Equal(t, "Technology", label)
}

func TestClassifyStaysInLabelSet(t *testing.T) {
	t.Parallel()

	p := threeLabels(t)
	allowed := append(p.Labels(), GeneralLabel)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		vec := domain.Vector{float32(rng.NormFloat64()), float32(rng.NormFloat64()), float32(rng.NormFloat64())}
		label, err := Classify(vec, p, DefaultRejectThreshold)
		require.NoError(t, err)
		assert.True(t, slices.Contains(allowed, label), "unexpected label %q", label)
	}
}

func TestClassifyZeroVector(t *testing.T) {
	t.Parallel()

	label, err := Classify(domain.Vector{0, 0, 0}, threeLabels(t), DefaultRejectThreshold)
	require.NoError(t, err)
	assert.Equal(t, GeneralLabel, label)
}

func TestClassifyDimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Classify(domain.Vector{1, 0}, threeLabels(t), DefaultRejectThreshold)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestClassifyWithoutProfiles(t *testing.T) {
	t.Parallel()

	label, err := Classify(domain.Vector{1}, nil, DefaultRejectThreshold)
	require.NoError(t, err)
	assert.Equal(t, GeneralLabel, label)
}

func TestNewLabelProfilesEmbedsOnce(t *testing.T) {
	t.Parallel()

	emb := newTableEmbedder(map[string]domain.Vector{
		"sports text":  {0, 1},
		"science text": {1, 0},
	})
	p, err := NewLabelProfiles(context.Background(), emb, sportsTable())
	require.NoError(t, err)

	assert.Equal(t, 1, emb.manyCalls)
	assert.Equal(t, []string{"Sports", "Science"}, p.Labels())
	assert.Equal(t, "table-v1", p.ModelID())
	assert.Equal(t, 2, p.Dim())

	c := NewClassifier(p, DefaultRejectThreshold)
	labels, err := c.ClassifyAll([]domain.Vector{{1, 0}, {0, 1}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Science", "Sports", GeneralLabel}, labels)
}

func TestDefaultCategoryTable(t *testing.T) {
	t.Parallel()

	table := DefaultCategoryTable()
	assert.Equal(t, []string{"Technology", "Business", "Science", "Health", "Politics", "Sports", "Entertainment", "Environment"}, table.Names())

	_, ok := table.Description(GeneralLabel)
	assert.False(t, ok)
}
