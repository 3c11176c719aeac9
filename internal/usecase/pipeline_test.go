package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ranking"
)

func sampleArticles() []domain.Article {
	return []domain.Article{
		{ID: "a", Title: "New chips ship", Body: "software update", URL: "https://news.example/a"},
		{ID: "b", Title: "Cup final", Body: "football match tonight", URL: "https://news.example/b"},
		{ID: "c", Title: "Weather mild", Body: "sunny days", URL: "https://news.example/c"},
		{ID: "d", Title: "NEW  chips ship", Body: "other outlet", URL: "https://other.example/d"},
		{ID: "e", Title: "", Body: "football", URL: "https://news.example/e"},
	}
}

func newTestPipeline(embedder *keywordEmbedder, deps PipelineDeps) *Pipeline {
	deps.Embedder = embedder
	deps.Categories = testCategories()
	if deps.Params == (ranking.Params{}) {
		deps.Params = ranking.Params{RejectThreshold: 0.15, Diversity: 0}
	}
	return NewPipeline(deps)
}

func TestRankOrdersLabelsAndScores(t *testing.T) {
	t.Parallel()

	embedder := newKeywordEmbedder()
	p := newTestPipeline(embedder, PipelineDeps{})
	profile := domain.UserProfile{UserID: "u1", Categories: []string{"Tech"}}

	got, err := p.Rank(context.Background(), sampleArticles(), profile, 10)
	require.NoError(t, err)
	require.Len(t, got, 3, "duplicate and keyless articles are dropped")

	assert.Equal(t, "a", got[0].Article.ID)
	assert.Equal(t, "c", got[1].Article.ID)
	assert.Equal(t, "b", got[2].Article.ID)

	assert.Equal(t, "Tech", got[0].Category)
	assert.Equal(t, ranking.GeneralLabel, got[1].Category)
	assert.Equal(t, "Sports", got[2].Category)

	assert.InDelta(t, 1.0, got[0].RelevanceScore, 1e-6)
	assert.InDelta(t, 0.01/(0.1*2.0025), got[1].RelevanceScore, 1e-4)
	assert.LessOrEqual(t, got[0].RelevanceScore, 1.0)
	for _, c := range got {
		assert.Len(t, c.Embedding, 3)
	}
}

func TestRankTruncatesToTopN(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(newKeywordEmbedder(), PipelineDeps{})
	got, err := p.Rank(context.Background(), sampleArticles(), domain.UserProfile{Categories: []string{"Tech"}}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Article.ID)
	assert.Equal(t, "c", got[1].Article.ID)
}

func TestRankBatchesEmbeddingAndCachesLabels(t *testing.T) {
	t.Parallel()

	embedder := newKeywordEmbedder()
	p := newTestPipeline(embedder, PipelineDeps{})
	ctx := context.Background()
	profile := domain.UserProfile{Categories: []string{"Sports"}}

	_, err := p.Rank(ctx, sampleArticles(), profile, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, embedder.callCount(), "candidates, labels and profile each embed once")
	assert.Equal(t, []string{"New chips ship software update", "Cup final football match tonight", "Weather mild sunny days"}, embedder.calls[0])

	_, err = p.Rank(ctx, sampleArticles(), profile, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, embedder.callCount(), "label profiles are reused")
}

func TestRankEmptyInputSkipsEmbedder(t *testing.T) {
	t.Parallel()

	embedder := newKeywordEmbedder()
	p := newTestPipeline(embedder, PipelineDeps{})

	got, err := p.Rank(context.Background(), nil, domain.UserProfile{}, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = p.Rank(context.Background(), []domain.Article{{Title: "  "}}, domain.UserProfile{}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, embedder.callCount())
}

func TestRankPropagatesEmbeddingFailure(t *testing.T) {
	t.Parallel()

	embedder := newKeywordEmbedder()
	embedder.err = errBackendDown
	p := newTestPipeline(embedder, PipelineDeps{})

	_, err := p.Rank(context.Background(), sampleArticles(), domain.UserProfile{}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ranking.ErrEmbeddingFailure)
	assert.ErrorIs(t, err, errBackendDown)
}

func TestRankRejectsChangedEmbedderModel(t *testing.T) {
	t.Parallel()

	embedder := newKeywordEmbedder()
	p := newTestPipeline(embedder, PipelineDeps{})
	ctx := context.Background()

	_, err := p.Rank(ctx, sampleArticles(), domain.UserProfile{}, 5)
	require.NoError(t, err)

	embedder.setModel("keyword-v2")
	_, err = p.Rank(ctx, sampleArticles(), domain.UserProfile{}, 5)
	assert.ErrorIs(t, err, ranking.ErrEmbedderMismatch)
}

func TestFetchAndRankConcatenatesPagesInOrder(t *testing.T) {
	t.Parallel()

	articles := sampleArticles()
	feed := &pagedFeed{
		pages: map[int][]domain.Article{
			1: {articles[0], articles[1]},
			3: {articles[2], articles[3]},
		},
		fail: map[int]bool{2: true},
	}
	p := newTestPipeline(newKeywordEmbedder(), PipelineDeps{Feed: feed, PageSize: 50})

	got, err := p.FetchAndRank(context.Background(), domain.UserProfile{Categories: []string{"Tech"}}, 3, 10)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.Article.ID
	}
	assert.Equal(t, []string{"a", "c", "b"}, ids)
	assert.Equal(t, []int{50, 50, 50}, feed.sizes)
}

func TestFetchAndRankWithoutFeed(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(newKeywordEmbedder(), PipelineDeps{})
	got, err := p.FetchAndRank(context.Background(), domain.UserProfile{}, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankBackfillsEmptyBodies(t *testing.T) {
	t.Parallel()

	downloader := &stubDownloader{}
	p := newTestPipeline(newKeywordEmbedder(), PipelineDeps{Downloader: downloader})

	raw := []domain.Article{
		{ID: "f", Title: "Derby", URL: "https://news.example/derby"},
		{ID: "g", Title: "Outage", URL: "https://news.example/broken"},
		{ID: "h", Title: "Local", Body: "already has text"},
	}
	got, err := p.Rank(context.Background(), raw, domain.UserProfile{Categories: []string{"Sports"}}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := map[string]domain.Candidate{}
	for _, c := range got {
		byID[c.Article.ID] = c
	}
	assert.Equal(t, "football match report", byID["f"].Article.Body)
	assert.Equal(t, "Sports", byID["f"].Category)
	assert.Empty(t, byID["g"].Article.Body)
	assert.Equal(t, "f", got[0].Article.ID)
	assert.ElementsMatch(t, []string{"https://news.example/derby", "https://news.example/broken"}, downloader.urls)
}

func TestNewPipelineSharesOnePolicy(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{Embedder: newKeywordEmbedder()})
	assert.Equal(t, ranking.DefaultParams(), p.params)
	assert.Equal(t, ranking.DefaultRejectThreshold, p.params.RejectThreshold)
	assert.Equal(t, ranking.DefaultDiversity, p.diversifier.Diversity())
}
