package usecase

import (
	"math"
	"strings"
	"time"

	"NewsRecommender/internal/domain"
)

const (
	descriptionRunes   = 250
	placeholderImage   = "https://via.placeholder.com/150"
	missingTitle       = "No title"
	missingDescription = "No description available"
	missingSource      = "Unknown Source"
)

// FormatRecommendations converts ranked candidates into display records,
// numbered from 1 in ranking order.
func FormatRecommendations(candidates []domain.Candidate) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(candidates))
	for i, c := range candidates {
		a := c.Article

		title := strings.TrimSpace(a.Title)
		if title == "" {
			title = missingTitle
		}

		description := truncateRunes(strings.TrimSpace(a.Body), descriptionRunes)
		if description == "" {
			description = missingDescription
		}

		image := a.Image
		if image == "" {
			image = placeholderImage
		}

		source := a.Source
		if source == "" {
			source = missingSource
		}

		var published string
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}

		var author *string
		if len(a.Authors) > 0 && a.Authors[0] != "" {
			name := a.Authors[0]
			author = &name
		}

		out = append(out, domain.Recommendation{
			ID:                  i + 1,
			Title:               title,
			Description:         description,
			URL:                 a.URL,
			URLToImage:          image,
			Source:              source,
			PublishedAt:         published,
			Author:              author,
			Category:            c.Category,
			RecommendationScore: math.Round(c.RelevanceScore*100) / 100,
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
