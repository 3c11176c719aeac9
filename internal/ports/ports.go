package ports

import (
	"context"
	"time"

	"NewsRecommender/internal/domain"
)

// Embedder turns text into vectors. EmbedMany preserves input order and length.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) (domain.Vector, error)
	EmbedMany(ctx context.Context, texts []string) ([]domain.Vector, error)
	ModelID() string
}

// ArticleFeed returns one page of raw articles. Short or empty pages are normal.
type ArticleFeed interface {
	FetchPage(ctx context.Context, page, size int) ([]domain.Article, error)
}

// ProfileStore reads and records user interest signals.
type ProfileStore interface {
	LoadProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	SavePreferences(ctx context.Context, userID string, categories []string) error
	RecordLike(ctx context.Context, userID, title, summary string, at time.Time) error
	RecordRead(ctx context.Context, userID, title, summary string, at time.Time) error
}

// RecommendationCache keeps the last successful result per user.
type RecommendationCache interface {
	SaveRecommendations(ctx context.Context, set domain.RecommendationSet) error
	LastRecommendations(ctx context.Context, userID string) (domain.RecommendationSet, bool, error)
}

// Downloader fetches readable full text for an article.
type Downloader interface {
	Download(ctx context.Context, article domain.Article) (string, error)
}

// Publisher delivers a finished recommendation list (file, feed, chat).
type Publisher interface {
	Publish(ctx context.Context, set domain.RecommendationSet) error
}

// Scheduler controls when refresh jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
