package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

const (
	userAgent         = "NewsRecommender/1.0"
	defaultMaxRunes   = 4000
	defaultHTTPTimeout = 10 * time.Second
)

// Readability fetches an article page and extracts its main text.
type Readability struct {
	client   *http.Client
	maxRunes int
}

var _ ports.Downloader = (*Readability)(nil)

// NewReadability builds a downloader. A nil client gets a 10s timeout;
// maxRunes <= 0 keeps 4000.
func NewReadability(client *http.Client, maxRunes int) *Readability {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if maxRunes <= 0 {
		maxRunes = defaultMaxRunes
	}
	return &Readability{client: client, maxRunes: maxRunes}
}

// Download returns the readable text of article.URL, truncated to the rune limit.
func (r *Readability) Download(ctx context.Context, article domain.Article) (string, error) {
	parsed, err := url.Parse(article.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid article url %q", article.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, article.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article returned %s", resp.Status)
	}

	page, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}

	text := strings.Join(strings.Fields(page.TextContent), " ")
	if utf8.RuneCountInString(text) > r.maxRunes {
		text = string([]rune(text)[:r.maxRunes])
	}
	return text, nil
}
