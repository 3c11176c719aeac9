package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/ranking"
)

const (
	defaultPageSize   = 100
	maxParallelPages  = 4
	maxParallelBodies = 8
)

// PipelineDeps wires all driven adapters into the ranking pipeline.
type PipelineDeps struct {
	Feed       ports.ArticleFeed
	Embedder   ports.Embedder
	Downloader ports.Downloader
	Categories ranking.CategoryTable
	Params     ranking.Params
	PageSize   int
	Logger     *slog.Logger
}

// Pipeline turns a raw candidate batch and a user profile into an ordered,
// labelled and scored list.
type Pipeline struct {
	feed        ports.ArticleFeed
	embedder    ports.Embedder
	downloader  ports.Downloader
	categories  ranking.CategoryTable
	params      ranking.Params
	pageSize    int
	logger      *slog.Logger
	dedupe      *ranking.Deduplicator
	profiles    *ranking.ProfileBuilder
	diversifier *ranking.Diversifier

	mu     sync.Mutex
	labels *ranking.LabelProfiles
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Categories.Len() == 0 {
		deps.Categories = ranking.DefaultCategoryTable()
	}
	if deps.PageSize <= 0 {
		deps.PageSize = defaultPageSize
	}
	deps.Params = deps.Params.WithDefaults()
	return &Pipeline{
		feed:        deps.Feed,
		embedder:    deps.Embedder,
		downloader:  deps.Downloader,
		categories:  deps.Categories,
		params:      deps.Params,
		pageSize:    deps.PageSize,
		logger:      deps.Logger,
		dedupe:      ranking.NewDeduplicator(ranking.TitleKey),
		profiles:    ranking.NewProfileBuilder(deps.Embedder, deps.Categories, deps.Params),
		diversifier: ranking.NewDiversifier(deps.Params.Diversity),
	}
}

// FetchAndRank reads pageCount pages from the feed, concatenates them in page
// order and ranks the result. Failing pages contribute nothing.
func (p *Pipeline) FetchAndRank(ctx context.Context, profile domain.UserProfile, pageCount, topN int) ([]domain.Candidate, error) {
	raw, err := p.fetch(ctx, pageCount)
	if err != nil {
		return nil, err
	}
	return p.Rank(ctx, raw, profile, topN)
}

func (p *Pipeline) fetch(ctx context.Context, pageCount int) ([]domain.Article, error) {
	if p.feed == nil || pageCount <= 0 {
		return nil, nil
	}

	pages := make([][]domain.Article, pageCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPages)
	for i := 0; i < pageCount; i++ {
		page := i + 1
		g.Go(func() error {
			articles, err := p.feed.FetchPage(gctx, page, p.pageSize)
			if err != nil {
				p.warn("feed page failed", "page", page, "error", err)
				return nil
			}
			pages[page-1] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch pages: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []domain.Article
	for _, articles := range pages {
		raw = append(raw, articles...)
	}
	p.debug("fetched candidates", "pages", pageCount, "articles", len(raw))
	return raw, nil
}

// Rank dedupes raw, embeds the survivors in one batch, labels every
// candidate and returns at most topN in selection order. Empty input yields
// an empty result without touching the embedder.
func (p *Pipeline) Rank(ctx context.Context, raw []domain.Article, profile domain.UserProfile, topN int) ([]domain.Candidate, error) {
	start := time.Now()
	defer func() { metrics.RankingDuration.Observe(time.Since(start).Seconds()) }()

	articles, stats := p.dedupe.Dedupe(raw)
	metrics.Candidates.WithLabelValues("fetched").Add(float64(stats.Input))
	metrics.Candidates.WithLabelValues("kept").Add(float64(stats.Kept))
	metrics.Candidates.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	metrics.Candidates.WithLabelValues("missing_key").Add(float64(stats.MissingKey))
	p.debug("deduplicated candidates", "input", stats.Input, "kept", stats.Kept, "duplicates", stats.Duplicates, "missing_key", stats.MissingKey)

	if len(articles) == 0 || topN <= 0 {
		return []domain.Candidate{}, nil
	}

	p.backfill(ctx, articles)

	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Text()
	}
	metrics.EmbedBatchSize.Observe(float64(len(texts)))

	vectors, err := ranking.EmbedBatch(ctx, p.embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}

	labels, err := p.labelProfiles(ctx)
	if err != nil {
		return nil, err
	}

	user, err := p.profiles.BuildProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("build user vector: %w", err)
	}

	categories, err := ranking.NewClassifier(labels, p.params.RejectThreshold).ClassifyAll(vectors)
	if err != nil {
		return nil, err
	}

	selected, err := p.diversifier.Select(vectors, user, topN)
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}

	relevance, err := ranking.Relevance(vectors, user)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	out := make([]domain.Candidate, 0, len(selected))
	for _, i := range selected {
		out = append(out, domain.Candidate{
			Article:        articles[i],
			Embedding:      vectors[i],
			Category:       categories[i],
			RelevanceScore: displayScore(relevance[i]),
		})
	}
	metrics.Candidates.WithLabelValues("selected").Add(float64(len(out)))
	p.debug("ranked candidates", "selected", len(out), "diversity", p.diversifier.Diversity())
	return out, nil
}

// labelProfiles builds the category profiles on first use and reuses them
// while the embedder model stays the same.
func (p *Pipeline) labelProfiles(ctx context.Context) (*ranking.LabelProfiles, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	model := p.embedder.ModelID()
	if p.labels != nil {
		if p.labels.ModelID() != model {
			return nil, fmt.Errorf("%w: label profiles from %q, embedder is %q", ranking.ErrEmbedderMismatch, p.labels.ModelID(), model)
		}
		return p.labels, nil
	}

	labels, err := ranking.NewLabelProfiles(ctx, p.embedder, p.categories)
	if err != nil {
		return nil, err
	}
	p.labels = labels
	p.debug("label profiles ready", "labels", labels.Len(), "dim", labels.Dim(), "model", model)
	return labels, nil
}

// backfill replaces empty bodies with downloaded text. Failures keep the
// article as it is.
func (p *Pipeline) backfill(ctx context.Context, articles []domain.Article) {
	if p.downloader == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(maxParallelBodies)
	for i := range articles {
		if articles[i].Body != "" || articles[i].URL == "" {
			continue
		}
		g.Go(func() error {
			text, err := p.downloader.Download(ctx, articles[i])
			if err != nil {
				p.debug("body backfill failed", "url", articles[i].URL, "error", err)
				return nil
			}
			articles[i].Body = text
			return nil
		})
	}
	_ = g.Wait()
}

func displayScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
