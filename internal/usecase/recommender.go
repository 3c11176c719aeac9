package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/ranking"
)

// RecommenderDeps wires the ranking pipeline with persistence and sinks.
type RecommenderDeps struct {
	Pipeline          *Pipeline
	Profiles          ports.ProfileStore
	Cache             ports.RecommendationCache
	Publishers        []ports.Publisher
	DefaultCategories []string
	PageCount         int
	TopN              int
	Logger            *slog.Logger
	Now               func() time.Time
}

// Recommender produces a recommendation list for a user. Ranking failures
// never reach the caller: the last cached list is served instead, then a
// static sample list.
type Recommender struct {
	pipeline          *Pipeline
	profiles          ports.ProfileStore
	cache             ports.RecommendationCache
	publishers        []ports.Publisher
	defaultCategories []string
	pageCount         int
	topN              int
	logger            *slog.Logger
	now               func() time.Time
}

// NewRecommender applies defaults: 3 pages, top 25, default interests.
func NewRecommender(deps RecommenderDeps) *Recommender {
	if deps.PageCount <= 0 {
		deps.PageCount = 3
	}
	if deps.TopN <= 0 {
		deps.TopN = 25
	}
	if len(deps.DefaultCategories) == 0 {
		deps.DefaultCategories = ranking.DefaultInterests
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Recommender{
		pipeline:          deps.Pipeline,
		profiles:          deps.Profiles,
		cache:             deps.Cache,
		publishers:        deps.Publishers,
		defaultCategories: append([]string(nil), deps.DefaultCategories...),
		pageCount:         deps.PageCount,
		topN:              deps.TopN,
		logger:            deps.Logger,
		now:               deps.Now,
	}
}

// Recommend runs one ranking pass for userID and publishes the outcome.
// An empty userID ranks with the default interests.
func (r *Recommender) Recommend(ctx context.Context, userID string) domain.RecommendationSet {
	log := r.logger.With("run_id", uuid.NewString(), "user", userID)
	started := r.now()

	profile := r.loadProfile(ctx, userID, log)

	set, err := r.rank(ctx, profile)
	switch {
	case err != nil:
		log.Warn("ranking failed, using fallback", "error", err)
		set = r.fallback(ctx, userID, log)
	case len(set.Items) == 0:
		log.Warn("ranking produced no candidates, using fallback")
		set = r.fallback(ctx, userID, log)
	default:
		r.remember(ctx, set, log)
	}
	metrics.Runs.WithLabelValues(string(set.Origin)).Inc()

	r.publish(ctx, set, log)
	log.Info("recommendations ready", "origin", set.Origin, "items", len(set.Items), "elapsed", r.now().Sub(started))
	return set
}

// RefreshAll runs Recommend for every user in order, stopping early when ctx ends.
func (r *Recommender) RefreshAll(ctx context.Context, users []string) {
	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		r.Recommend(ctx, user)
	}
}

func (r *Recommender) rank(ctx context.Context, profile domain.UserProfile) (domain.RecommendationSet, error) {
	if r.pipeline == nil {
		return domain.RecommendationSet{}, errors.New("ranking pipeline is not configured")
	}
	candidates, err := r.pipeline.FetchAndRank(ctx, profile, r.pageCount, r.topN)
	if err != nil {
		return domain.RecommendationSet{}, err
	}
	return domain.RecommendationSet{
		UserID:      profile.UserID,
		Items:       FormatRecommendations(candidates),
		Origin:      domain.OriginRanked,
		GeneratedAt: r.now().UTC(),
	}, nil
}

func (r *Recommender) loadProfile(ctx context.Context, userID string, log *slog.Logger) domain.UserProfile {
	profile := domain.UserProfile{UserID: userID}
	if userID != "" && r.profiles != nil {
		loaded, err := r.profiles.LoadProfile(ctx, userID)
		if err != nil {
			log.Warn("load profile failed, using default interests", "error", err)
		} else {
			profile = loaded
		}
	}
	if len(profile.Categories) == 0 {
		profile.Categories = append([]string(nil), r.defaultCategories...)
	}
	log.Debug("profile loaded", "categories", len(profile.Categories), "likes", len(profile.Likes), "history", len(profile.History))
	return profile
}

func (r *Recommender) fallback(ctx context.Context, userID string, log *slog.Logger) domain.RecommendationSet {
	if r.cache != nil && userID != "" {
		cached, ok, err := r.cache.LastRecommendations(ctx, userID)
		switch {
		case err != nil:
			log.Warn("read cached recommendations failed", "error", err)
		case ok && len(cached.Items) > 0:
			cached.Origin = domain.OriginCached
			return cached
		}
	}
	return domain.RecommendationSet{
		UserID:      userID,
		Items:       SampleRecommendations(),
		Origin:      domain.OriginFallback,
		GeneratedAt: r.now().UTC(),
	}
}

func (r *Recommender) remember(ctx context.Context, set domain.RecommendationSet, log *slog.Logger) {
	if r.cache == nil || set.UserID == "" {
		return
	}
	if err := r.cache.SaveRecommendations(ctx, set); err != nil {
		log.Warn("cache recommendations failed", "error", err)
	}
}

func (r *Recommender) publish(ctx context.Context, set domain.RecommendationSet, log *slog.Logger) {
	for _, p := range r.publishers {
		if err := p.Publish(ctx, set); err != nil {
			log.Warn("publish recommendations failed", "publisher", publisherName(p), "error", err)
		}
	}
}

func publisherName(p ports.Publisher) string {
	if named, ok := p.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", p)
}
