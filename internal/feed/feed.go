package feed

import (
	"context"
	"fmt"

	"NewsRecommender/internal/domain"
)

// Category describes a concrete section endpoint provided by config.
type Category struct {
	Name string
	URL  string
}

// Request carries all parameters required to fetch one page from a site.
type Request struct {
	SiteName   string
	Categories []Category
	Options    map[string]string
	Page       int
	PageSize   int
}

// Offset returns the number of items preceding the requested page.
func (r Request) Offset() int {
	if r.Page <= 1 {
		return 0
	}
	return (r.Page - 1) * r.PageSize
}

// Scanner captures a single source implementation (Event Registry, arXiv, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
