package domain

import "time"

// Article is a raw record fetched from an article feed.
type Article struct {
	ID          string
	Title       string
	Body        string
	URL         string
	Image       string
	Source      string
	PublishedAt time.Time
	Authors     []string
}

// Text returns the combined title and body used for embedding.
func (a Article) Text() string {
	switch {
	case a.Title == "":
		return a.Body
	case a.Body == "":
		return a.Title
	}
	return a.Title + " " + a.Body
}

// Vector is an embedding produced by a single embedder model.
type Vector []float32

// Candidate is an article enriched by the ranking pipeline.
type Candidate struct {
	Article        Article
	Embedding      Vector
	Category       string
	RelevanceScore float64
}
