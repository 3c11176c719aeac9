package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ranking"
)

var errBackendDown = errors.New("backend down")

// keywordEmbedder counts topic words per dimension and adds a small bias so
// no vector is zero.
type keywordEmbedder struct {
	mu    sync.Mutex
	model string
	err   error
	calls [][]string
}

var topicWords = [][]string{
	{"software", "chips", "ai"},
	{"football", "match", "goal"},
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{model: "keyword-v1"}
}

func (e *keywordEmbedder) ModelID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

func (e *keywordEmbedder) setModel(m string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = m
}

func (e *keywordEmbedder) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	v, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e *keywordEmbedder) EmbedMany(_ context.Context, texts []string) ([]domain.Vector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([]domain.Vector, len(texts))
	for i, text := range texts {
		vec := make(domain.Vector, len(topicWords)+1)
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
		for _, w := range words {
			for d, topic := range topicWords {
				for _, t := range topic {
					if w == t {
						vec[d]++
					}
				}
			}
		}
		vec[len(topicWords)] = 0.1
		out[i] = vec
	}
	return out, nil
}

func (e *keywordEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func testCategories() ranking.CategoryTable {
	return ranking.NewCategoryTable([]ranking.Category{
		{Name: "Tech", Description: "software chips"},
		{Name: "Sports", Description: "football match"},
	})
}

type pagedFeed struct {
	mu    sync.Mutex
	pages map[int][]domain.Article
	fail  map[int]bool
	sizes []int
}

func (f *pagedFeed) FetchPage(_ context.Context, page, size int) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes = append(f.sizes, size)
	if f.fail[page] {
		return nil, fmt.Errorf("page %d: %w", page, errBackendDown)
	}
	return f.pages[page], nil
}

type memoryStore struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	sets     map[string]domain.RecommendationSet
	loadErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles: map[string]domain.UserProfile{},
		sets:     map[string]domain.RecommendationSet{},
	}
}

func (s *memoryStore) LoadProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.UserProfile{}, s.loadErr
	}
	p := s.profiles[userID]
	p.UserID = userID
	return p, nil
}

func (s *memoryStore) SavePreferences(_ context.Context, userID string, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profiles[userID]
	p.Categories = categories
	s.profiles[userID] = p
	return nil
}

func (s *memoryStore) RecordLike(_ context.Context, userID, title, summary string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profiles[userID]
	p.Likes = append([]domain.BehaviorItem{domain.NewBehaviorItem(title, summary, at)}, p.Likes...)
	s.profiles[userID] = p
	return nil
}

func (s *memoryStore) RecordRead(_ context.Context, userID, title, summary string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profiles[userID]
	p.History = append([]domain.BehaviorItem{domain.NewBehaviorItem(title, summary, at)}, p.History...)
	s.profiles[userID] = p
	return nil
}

func (s *memoryStore) SaveRecommendations(_ context.Context, set domain.RecommendationSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[set.UserID] = set
	return nil
}

func (s *memoryStore) LastRecommendations(_ context.Context, userID string) (domain.RecommendationSet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[userID]
	return set, ok, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	sets []domain.RecommendationSet
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, set domain.RecommendationSet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets = append(p.sets, set)
	return p.err
}

func (p *recordingPublisher) published() []domain.RecommendationSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.RecommendationSet(nil), p.sets...)
}

type stubDownloader struct {
	mu   sync.Mutex
	urls []string
}

func (d *stubDownloader) Download(_ context.Context, a domain.Article) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, a.URL)
	if strings.Contains(a.URL, "broken") {
		return "", errBackendDown
	}
	return "football match report", nil
}
