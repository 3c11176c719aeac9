package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
)

// ErrBackendUnavailable is returned while the breaker rejects calls.
var ErrBackendUnavailable = errors.New("embedding backend unavailable")

// BreakerSettings tunes BreakerEmbedder.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// BreakerEmbedder stops calling a failing backend for a while so a run falls
// back quickly instead of waiting on timeouts.
type BreakerEmbedder struct {
	inner  ports.Embedder
	cb     *gobreaker.CircuitBreaker[[]domain.Vector]
	name   string
	logger *slog.Logger
}

var _ ports.Embedder = (*BreakerEmbedder)(nil)

// NewBreakerEmbedder wraps inner. Zero settings trip after 5 consecutive
// failures and stay open for 30s.
func NewBreakerEmbedder(inner ports.Embedder, settings BreakerSettings, logger *slog.Logger) *BreakerEmbedder {
	if settings.Name == "" {
		settings.Name = "embedder"
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	b := &BreakerEmbedder{inner: inner, name: settings.Name, logger: logger}
	metrics.BreakerState.WithLabelValues(settings.Name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[[]domain.Vector](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			if b.logger != nil {
				b.logger.Warn("embedder breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
	})
	return b
}

// ModelID delegates to the wrapped embedder.
func (b *BreakerEmbedder) ModelID() string {
	return b.inner.ModelID()
}

// State exposes the breaker state.
func (b *BreakerEmbedder) State() gobreaker.State {
	return b.cb.State()
}

// EmbedOne embeds a single text through the breaker.
func (b *BreakerEmbedder) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	vectors, err := b.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedMany embeds texts through the breaker.
func (b *BreakerEmbedder) EmbedMany(ctx context.Context, texts []string) ([]domain.Vector, error) {
	vectors, err := b.cb.Execute(func() ([]domain.Vector, error) {
		return b.inner.EmbedMany(ctx, texts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, b.name, err)
	}
	return vectors, err
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
