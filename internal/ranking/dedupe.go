package ranking

import "NewsRecommender/internal/domain"

// KeyFunc extracts the identity of an article for deduplication.
type KeyFunc func(domain.Article) string

// TitleKey is the default identity: the normalized title.
func TitleKey(a domain.Article) string {
	return NormalizeKey(a.Title)
}

// DedupeStats summarises one deduplication pass.
type DedupeStats struct {
	Input      int
	Kept       int
	Duplicates int
	MissingKey int
}

// Deduplicator filters repeated articles while preserving order.
type Deduplicator struct {
	key KeyFunc
}

// NewDeduplicator uses key, or TitleKey when key is nil.
func NewDeduplicator(key KeyFunc) *Deduplicator {
	if key == nil {
		key = TitleKey
	}
	return &Deduplicator{key: key}
}

// Dedupe keeps the first article for each key. Articles with an empty key
// have no stable identity and are dropped.
func (d *Deduplicator) Dedupe(articles []domain.Article) ([]domain.Article, DedupeStats) {
	stats := DedupeStats{Input: len(articles)}
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))

	for _, article := range articles {
		k := d.key(article)
		if k == "" {
			stats.MissingKey++
			continue
		}
		if _, ok := seen[k]; ok {
			stats.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, article)
	}

	stats.Kept = len(out)
	return out, stats
}

// Dedupe runs the default title-keyed deduplication.
func Dedupe(articles []domain.Article) []domain.Article {
	out, _ := NewDeduplicator(nil).Dedupe(articles)
	return out
}
