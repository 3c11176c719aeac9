package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrec_ranking_duration_seconds",
			Help:    "Duration of one ranking pass, from dedupe to selection",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Candidates counts articles by pipeline stage: fetched, kept, duplicate, missing_key, selected.
	Candidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_candidates_total",
			Help: "Candidate articles observed per pipeline stage",
		},
		[]string{"stage"},
	)

	EmbedBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrec_embed_batch_size",
			Help:    "Number of texts sent to the embedder per call",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	EmbedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_embed_requests_total",
			Help: "Embedder calls by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	EmbedCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_embed_cache_lookups_total",
			Help: "Embedding cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsrec_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	FeedPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_feed_pages_total",
			Help: "Feed page fetches by site and outcome",
		},
		[]string{"site", "outcome"},
	)

	// Runs counts recommendation runs by result origin: ranked, cached, fallback.
	Runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_runs_total",
			Help: "Recommendation runs by origin of the returned list",
		},
		[]string{"origin"},
	)
)
