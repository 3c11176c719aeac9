package usecase

import "NewsRecommender/internal/domain"

const sampleImage = "https://via.placeholder.com/300x150?text=Sample"

// SampleRecommendations is the static list served when neither ranking nor
// the cache can provide one. A fresh copy is returned on every call.
func SampleRecommendations() []domain.Recommendation {
	return []domain.Recommendation{
		{
			ID:                  1,
			Title:               "Sample AI News",
			Description:         "This is a sample news article used as fallback.",
			URL:                 "#",
			URLToImage:          sampleImage,
			Source:              "Sample Source",
			PublishedAt:         "2025-10-09T00:00:00Z",
			Category:            "Technology",
			RecommendationScore: 2.5,
		},
		{
			ID:                  2,
			Title:               "Machine Learning Sample Article",
			Description:         "This is another sample news article.",
			URL:                 "#",
			URLToImage:          sampleImage,
			Source:              "Sample Source",
			PublishedAt:         "2025-10-08T10:00:00Z",
			Category:            "Science",
			RecommendationScore: 3.0,
		},
	}
}
