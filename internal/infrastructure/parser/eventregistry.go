package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	json "github.com/goccy/go-json"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/feed"
)

const (
	eventRegistryEndpoint = "https://eventregistry.org/api/v1/article/getArticles"
	defaultPageSize       = 100
)

var defaultSourceLocations = []string{
	"http://en.wikipedia.org/wiki/United_States",
	"http://en.wikipedia.org/wiki/Canada",
	"http://en.wikipedia.org/wiki/United_Kingdom",
}

// EventRegistryScanner queries the Event Registry article search API.
type EventRegistryScanner struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ feed.Scanner = (*EventRegistryScanner)(nil)

// NewEventRegistryScanner builds a scanner; an empty endpoint targets the public API.
func NewEventRegistryScanner(endpoint, apiKey string, client *http.Client, logger *slog.Logger) *EventRegistryScanner {
	if endpoint == "" {
		endpoint = eventRegistryEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &EventRegistryScanner{endpoint: endpoint, apiKey: apiKey, client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (e *EventRegistryScanner) Name() string {
	return "eventregistry"
}

type erRequest struct {
	Action               string   `json:"action"`
	Keyword              string   `json:"keyword"`
	SourceLocationURI    []string `json:"sourceLocationUri"`
	IgnoreSourceGroupURI string   `json:"ignoreSourceGroupUri"`
	ArticlesPage         int      `json:"articlesPage"`
	ArticlesCount        int      `json:"articlesCount"`
	ArticlesSortBy       string   `json:"articlesSortBy"`
	ArticlesSortByAsc    bool     `json:"articlesSortByAsc"`
	DataType             []string `json:"dataType"`
	ForceMaxDataWindow   int      `json:"forceMaxDataTimeWindow"`
	ResultType           string   `json:"resultType"`
	Lang                 []string `json:"lang"`
	APIKey               string   `json:"apiKey"`
}

type erResponse struct {
	Articles struct {
		Results []erArticle `json:"results"`
	} `json:"articles"`
}

type erArticle struct {
	URI      string `json:"uri"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
	Source   struct {
		Title string `json:"title"`
	} `json:"source"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Scan posts a single page query. Options may override "keyword" and
// "apiKey".
func (e *EventRegistryScanner) Scan(ctx context.Context, req feed.Request) ([]domain.Article, error) {
	apiKey := e.apiKey
	if v := req.Options["apiKey"]; v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("event registry api key is not configured for site %s", req.SiteName)
	}

	size := req.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	body, err := json.Marshal(erRequest{
		Action:               "getArticles",
		Keyword:              req.Options["keyword"],
		SourceLocationURI:    defaultSourceLocations,
		IgnoreSourceGroupURI: "paywall/paywalled_sources",
		ArticlesPage:         page,
		ArticlesCount:        size,
		ArticlesSortBy:       "date",
		ArticlesSortByAsc:    false,
		DataType:             []string{"news", "pr"},
		ForceMaxDataWindow:   31,
		ResultType:           "articles",
		Lang:                 []string{"eng"},
		APIKey:               apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("event registry returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded erResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]domain.Article, 0, len(decoded.Articles.Results))
	for _, raw := range decoded.Articles.Results {
		articles = append(articles, toArticle(raw, req.SiteName))
	}
	e.debug("event registry page parsed", "site", req.SiteName, "page", page, "count", len(articles))
	return articles, nil
}

func (e *EventRegistryScanner) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func toArticle(raw erArticle, siteName string) domain.Article {
	id := raw.URI
	if id == "" {
		id = raw.URL
	}

	source := strings.TrimSpace(raw.Source.Title)
	if source == "" {
		source = siteName
	}

	var authors []string
	for _, a := range raw.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	return domain.Article{
		ID:          id,
		Title:       strings.TrimSpace(raw.Title),
		Body:        cleanBody(raw.Body),
		URL:         raw.URL,
		Image:       raw.Image,
		Source:      source,
		PublishedAt: parseTimestamp(raw.DateTime, raw.Date),
		Authors:     authors,
	}
}

// cleanBody strips markup some publishers leave in the body text.
func cleanBody(body string) string {
	body = strings.TrimSpace(body)
	if !strings.ContainsRune(body, '<') {
		return body
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func parseTimestamp(values ...string) time.Time {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if ts, err := dateparse.ParseAny(v); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
