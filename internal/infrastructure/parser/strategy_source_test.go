package parser

import (
	"context"
	"errors"
	"testing"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/feed"
)

type fakeScanner struct {
	name     string
	articles []domain.Article
	err      error
	lastReq  feed.Request
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(ctx context.Context, req feed.Request) ([]domain.Article, error) {
	f.lastReq = req
	return f.articles, f.err
}

func TestStrategySourceFetchPage(t *testing.T) {
	t.Parallel()

	good := &fakeScanner{name: "good", articles: []domain.Article{{ID: "1", Title: "A"}, {ID: "2", Title: "B", Source: "Wire"}}}
	broken := &fakeScanner{name: "broken", err: errors.New("boom")}

	reg := feed.NewRegistry()
	reg.Register(good)
	reg.Register(broken)

	src := NewStrategySource(reg, []config.SiteConfig{
		{Name: "site-broken", Scanner: "broken"},
		{Name: "site-good", Scanner: "good", Categories: []config.CategoryConfig{{Name: "c", URL: "u"}}},
	}, nil)

	articles, err := src.FetchPage(context.Background(), 2, 25)
	if err != nil {
		t.Fatalf("FetchPage error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Source != "site-good" || articles[1].Source != "Wire" {
		t.Fatalf("unexpected sources: %q %q", articles[0].Source, articles[1].Source)
	}
	if good.lastReq.Page != 2 || good.lastReq.PageSize != 25 || len(good.lastReq.Categories) != 1 {
		t.Fatalf("unexpected request: %+v", good.lastReq)
	}
}

func TestStrategySourceUnknownScanner(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(feed.NewRegistry(), []config.SiteConfig{{Name: "x", Scanner: "missing"}}, nil)
	if _, err := src.FetchPage(context.Background(), 1, 10); err == nil {
		t.Fatal("expected error for unregistered scanner")
	}
}
