package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsRecommender/internal/feed"
)

const erFixture = `{
  "articles": {
    "results": [
      {
        "uri": "8881",
        "title": "City budget passes",
        "body": "<p>The council <b>approved</b> the plan.</p>",
        "url": "https://news.example/budget",
        "image": "https://news.example/budget.jpg",
        "dateTime": "2025-10-09T08:30:00Z",
        "source": {"title": "Example Herald"},
        "authors": [{"name": "Jane Doe"}, {"name": ""}]
      },
      {
        "uri": "",
        "title": "Markets rally",
        "body": "Stocks climbed.",
        "url": "https://news.example/markets",
        "date": "2025-10-08",
        "source": {"title": ""},
        "authors": []
      }
    ]
  }
}`

func TestEventRegistryScan(t *testing.T) {
	t.Parallel()

	var got erRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(erFixture))
	}))
	defer server.Close()

	sc := NewEventRegistryScanner(server.URL, "secret", server.Client(), nil)
	articles, err := sc.Scan(context.Background(), feed.Request{SiteName: "eventregistry", Page: 2, PageSize: 50})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if got.ArticlesPage != 2 || got.ArticlesCount != 50 || got.APIKey != "secret" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.ArticlesSortBy != "date" || len(got.Lang) != 1 || got.Lang[0] != "eng" {
		t.Fatalf("unexpected query shape: %+v", got)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.ID != "8881" || first.Source != "Example Herald" {
		t.Fatalf("unexpected first article: %+v", first)
	}
	if first.Body != "The council approved the plan." {
		t.Fatalf("body not cleaned: %q", first.Body)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "Jane Doe" {
		t.Fatalf("unexpected authors: %v", first.Authors)
	}
	if !first.PublishedAt.Equal(time.Date(2025, 10, 9, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time: %v", first.PublishedAt)
	}

	second := articles[1]
	if second.ID != "https://news.example/markets" || second.Source != "eventregistry" {
		t.Fatalf("unexpected second article: %+v", second)
	}
	if second.PublishedAt.Format("2006-01-02") != "2025-10-08" {
		t.Fatalf("unexpected date: %v", second.PublishedAt)
	}
}

func TestEventRegistryScanErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	sc := NewEventRegistryScanner(server.URL, "secret", server.Client(), nil)
	if _, err := sc.Scan(context.Background(), feed.Request{Page: 1}); err == nil {
		t.Fatal("expected error on non-200 status")
	}

	noKey := NewEventRegistryScanner(server.URL, "", server.Client(), nil)
	if _, err := noKey.Scan(context.Background(), feed.Request{Page: 1}); err == nil {
		t.Fatal("expected error without api key")
	}
}
