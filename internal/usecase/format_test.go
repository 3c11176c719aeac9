package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRecommender/internal/domain"
)

func TestFormatRecommendationsDefaults(t *testing.T) {
	t.Parallel()

	got := FormatRecommendations([]domain.Candidate{
		{Article: domain.Article{}, Category: "General", RelevanceScore: 0.123},
	})
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, "No title", r.Title)
	assert.Equal(t, "No description available", r.Description)
	assert.Equal(t, "https://via.placeholder.com/150", r.URLToImage)
	assert.Equal(t, "Unknown Source", r.Source)
	assert.Empty(t, r.PublishedAt)
	assert.Nil(t, r.Author)
	assert.Equal(t, "General", r.Category)
	assert.Equal(t, 0.12, r.RecommendationScore)
}

func TestFormatRecommendationsFields(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("é", 300)
	published := time.Date(2025, 10, 9, 10, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	got := FormatRecommendations([]domain.Candidate{
		{Article: domain.Article{Title: "First"}, RelevanceScore: 0.5},
		{
			Article: domain.Article{
				Title:       " Rover lands ",
				Body:        body,
				URL:         "https://news.example/rover",
				Image:       "https://news.example/rover.jpg",
				Source:      "Example Herald",
				PublishedAt: published,
				Authors:     []string{"Jane Doe", "John Roe"},
			},
			Category:       "Science",
			RelevanceScore: 0.876,
		},
	})
	require.Len(t, got, 2)

	r := got[1]
	assert.Equal(t, 2, r.ID)
	assert.Equal(t, "Rover lands", r.Title)
	assert.Equal(t, 250, len([]rune(r.Description)))
	assert.Equal(t, "https://news.example/rover.jpg", r.URLToImage)
	assert.Equal(t, "Example Herald", r.Source)
	assert.Equal(t, "2025-10-09T08:30:00Z", r.PublishedAt)
	require.NotNil(t, r.Author)
	assert.Equal(t, "Jane Doe", *r.Author)
	assert.Equal(t, 0.88, r.RecommendationScore)
}

func TestSampleRecommendationsAreFreshCopies(t *testing.T) {
	t.Parallel()

	a := SampleRecommendations()
	a[0].Title = "mutated"
	b := SampleRecommendations()
	assert.Equal(t, "Sample AI News", b[0].Title)
	assert.Len(t, b, 2)
}
