package output

import (
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// JSONFile writes the recommendation list as an indented JSON array.
type JSONFile struct {
	path string
}

var _ ports.Publisher = (*JSONFile)(nil)

// NewJSONFile targets path; parent directories are created on publish.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Name identifies the sink in logs.
func (j *JSONFile) Name() string {
	return "json:" + j.path
}

// Publish replaces the file with set.Items.
func (j *JSONFile) Publish(ctx context.Context, set domain.RecommendationSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(j.path, func(w io.Writer) error {
		return EncodeJSON(w, set.Items)
	})
}

// EncodeJSON writes items with two-space indent and unescaped HTML. A nil
// list is written as [].
func EncodeJSON(w io.Writer, items []domain.Recommendation) error {
	if items == nil {
		items = []domain.Recommendation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	return nil
}
