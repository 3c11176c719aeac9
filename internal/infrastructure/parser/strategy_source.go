package parser

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/feed"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
)

// StrategySource implements ports.ArticleFeed via registered scanner strategies.
// A failing site contributes nothing to the page instead of failing it.
type StrategySource struct {
	registry *feed.Registry
	sites    []config.SiteConfig
	limiters map[string]*rate.Limiter
	logger   *slog.Logger
}

var _ ports.ArticleFeed = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *feed.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	limiters := make(map[string]*rate.Limiter, len(sites))
	for _, site := range sites {
		if site.RequestsPerMinute > 0 {
			limiters[site.Name] = rate.NewLimiter(rate.Limit(float64(site.RequestsPerMinute)/60), 1)
		}
	}
	return &StrategySource{
		registry: reg,
		sites:    sites,
		limiters: limiters,
		logger:   log,
	}
}

// FetchPage asks every configured site for the same page and concatenates
// the results in site order.
func (s *StrategySource) FetchPage(ctx context.Context, page, size int) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch page", "sites", len(s.sites), "page", page, "size", size)

	var aggregated []domain.Article
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		if limiter := s.limiters[site.Name]; limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return aggregated, fmt.Errorf("site %s: wait for rate limit: %w", site.Name, err)
			}
		}

		req := feed.Request{
			SiteName:   site.Name,
			Options:    site.Options,
			Categories: toFeedCategories(site.Categories),
			Page:       page,
			PageSize:   size,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			metrics.FeedPages.WithLabelValues(site.Name, "error").Inc()
			s.warn("site scan failed", "site", site.Name, "page", page, "error", err)
			continue
		}
		metrics.FeedPages.WithLabelValues(site.Name, "ok").Inc()

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = site.Name
			}
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "page", page, "total_articles", len(aggregated))
	return aggregated, nil
}

func toFeedCategories(cfg []config.CategoryConfig) []feed.Category {
	categories := make([]feed.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, feed.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
