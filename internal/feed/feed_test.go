package feed

import (
	"context"
	"testing"

	"NewsRecommender/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(ctx context.Context, req Request) ([]domain.Article, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "arxiv"})

	if _, err := reg.Resolve("arxiv"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if _, err := reg.Resolve("missing"); err == nil {
		t.Fatal("expected error for unregistered scanner")
	}
}

func TestRequestOffset(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page, size, want int
	}{
		{0, 100, 0},
		{1, 100, 0},
		{2, 100, 100},
		{3, 25, 50},
	}
	for _, c := range cases {
		req := Request{Page: c.page, PageSize: c.size}
		if got := req.Offset(); got != c.want {
			t.Fatalf("Offset(page=%d, size=%d) = %d, want %d", c.page, c.size, got, c.want)
		}
	}
}
