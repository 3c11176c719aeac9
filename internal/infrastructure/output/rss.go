package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/feeds"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// RSSFile writes the recommendation list as an RSS 2.0 feed.
type RSSFile struct {
	path  string
	title string
	link  string
}

var _ ports.Publisher = (*RSSFile)(nil)

// NewRSSFile targets path with the given channel title and link.
func NewRSSFile(path, title, link string) *RSSFile {
	if title == "" {
		title = "Recommended news"
	}
	return &RSSFile{path: path, title: title, link: link}
}

// Name identifies the sink in logs.
func (r *RSSFile) Name() string {
	return "rss:" + r.path
}

// Publish replaces the file with a feed built from set.
func (r *RSSFile) Publish(ctx context.Context, set domain.RecommendationSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	feed := BuildFeed(set, r.title, r.link)
	return writeAtomic(r.path, func(w io.Writer) error {
		if err := feed.WriteRss(w); err != nil {
			return fmt.Errorf("write rss: %w", err)
		}
		return nil
	})
}

// BuildFeed maps recommendations to feed items in ranking order.
func BuildFeed(set domain.RecommendationSet, title, link string) *feeds.Feed {
	created := set.GeneratedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if set.UserID != "" {
		title = fmt.Sprintf("%s for %s", title, set.UserID)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: fmt.Sprintf("%d recommendations (%s)", len(set.Items), set.Origin),
		Created:     created,
	}

	for _, item := range set.Items {
		entry := &feeds.Item{
			Id:          item.URL,
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.URL},
			Description: item.Description,
			Source:      &feeds.Link{Href: link},
		}
		if item.Author != nil {
			entry.Author = &feeds.Author{Name: *item.Author}
		}
		if ts, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			entry.Created = ts
		}
		if item.Category != "" {
			entry.Description = fmt.Sprintf("[%s %.2f] %s", item.Category, item.RecommendationScore, item.Description)
		}
		feed.Items = append(feed.Items, entry)
	}
	return feed
}
