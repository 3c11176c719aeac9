package domain

import "time"

// Recommendation is the display record emitted for one ranked article.
type Recommendation struct {
	ID                  int     `json:"id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	URL                 string  `json:"url"`
	URLToImage          string  `json:"urlToImage"`
	Source              string  `json:"source"`
	PublishedAt         string  `json:"publishedAt"`
	Author              *string `json:"author"`
	Category            string  `json:"category"`
	RecommendationScore float64 `json:"recommendation_score"`
}

// ResultOrigin tells where a recommendation list came from.
type ResultOrigin string

const (
	OriginRanked   ResultOrigin = "ranked"
	OriginCached   ResultOrigin = "cached"
	OriginFallback ResultOrigin = "fallback"
)

// RecommendationSet is a list produced for a user in one run.
type RecommendationSet struct {
	UserID      string
	Items       []Recommendation
	Origin      ResultOrigin
	GeneratedAt time.Time
}
