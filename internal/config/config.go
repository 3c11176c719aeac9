package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"NewsRecommender/internal/ranking"
)

const (
	defaultTimezone      = "UTC"
	configPathEnv        = "NEWS_RECOMMENDER_CONFIG"
	databaseDSNEnv       = "DATABASE_DSN"
	embedderAPIKeyEnv    = "EMBEDDER_API_KEY"
	eventRegistryKeyEnv  = "EVENT_REGISTRY_API_KEY"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	logLevelEnv          = "LOG_LEVEL"
	ProviderHTTP         = "http"
	ProviderOpenAI       = "openai"
	DriverSQLite         = "sqlite"
	DriverPostgres       = "postgres"
	defaultEmbedderModel = "all-MiniLM-L6-v2"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Ranking       RankingConfig      `yaml:"ranking"`
	Embedder      EmbedderConfig     `yaml:"embedder"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	Store         StoreConfig        `yaml:"store"`
	Output        OutputConfig       `yaml:"output"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// RankingConfig carries the scoring policy and paging of a recommendation run.
type RankingConfig struct {
	CategoryWeight    float64            `yaml:"categoryWeight" validate:"gte=0"`
	LikesWeight       float64            `yaml:"likesWeight" validate:"gte=0"`
	HistoryWeight     float64            `yaml:"historyWeight" validate:"gte=0"`
	DecayRate         float64            `yaml:"decayRate" validate:"gte=0"`
	RejectThreshold   float64            `yaml:"rejectThreshold" validate:"gte=-1,lte=1"`
	Diversity         float64            `yaml:"diversity" validate:"gte=0,lte=1"`
	TopN              int                `yaml:"topN" validate:"gte=1"`
	PageCount         int                `yaml:"pageCount" validate:"gte=1,lte=20"`
	PageSize          int                `yaml:"pageSize" validate:"gte=1,lte=100"`
	DefaultDescriptor string             `yaml:"defaultDescriptor"`
	DefaultCategories []string           `yaml:"defaultCategories"`
	Categories        []ranking.Category `yaml:"categories"`
}

// Params converts the section into ranking policy.
func (r RankingConfig) Params() ranking.Params {
	return ranking.Params{
		CategoryWeight:    r.CategoryWeight,
		LikesWeight:       r.LikesWeight,
		HistoryWeight:     r.HistoryWeight,
		DecayRate:         r.DecayRate,
		RejectThreshold:   r.RejectThreshold,
		Diversity:         r.Diversity,
		DefaultDescriptor: r.DefaultDescriptor,
	}
}

// CategoryTable returns the configured categories or the built-in table.
func (r RankingConfig) CategoryTable() ranking.CategoryTable {
	if len(r.Categories) == 0 {
		return ranking.DefaultCategoryTable()
	}
	return ranking.NewCategoryTable(r.Categories)
}

// EmbedderConfig describes how article and profile text is embedded.
type EmbedderConfig struct {
	Provider       string        `yaml:"provider" validate:"oneof=http openai"`
	Endpoint       string        `yaml:"endpoint" validate:"omitempty,url"`
	Model          string        `yaml:"model" validate:"required"`
	APIKey         string        `yaml:"apiKey"`
	Dimensions     int           `yaml:"dimensions" validate:"gte=0"`
	TimeoutSeconds int           `yaml:"timeoutSeconds" validate:"gte=0"`
	CacheDir       string        `yaml:"cacheDir"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// Timeout returns the per-request deadline for the embedding backend.
func (e EmbedderConfig) Timeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// BreakerConfig tunes the circuit breaker around the embedding backend.
type BreakerConfig struct {
	Enabled             bool   `yaml:"enabled"`
	ConsecutiveFailures uint32 `yaml:"consecutiveFailures" validate:"gte=0"`
	OpenSeconds         int    `yaml:"openSeconds" validate:"gte=0"`
}

// FeedsConfig lists article sites and the credentials their scanners need.
type FeedsConfig struct {
	EventRegistryAPIKey   string       `yaml:"eventRegistryApiKey"`
	EventRegistryEndpoint string       `yaml:"eventRegistryEndpoint" validate:"omitempty,url"`
	TimeoutSeconds        int          `yaml:"timeoutSeconds" validate:"gte=0"`
	Sites                 []SiteConfig `yaml:"sites" validate:"dive"`
}

// Timeout returns the HTTP timeout used by scanners.
func (f FeedsConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name              string            `yaml:"name" validate:"required"`
	Scanner           string            `yaml:"scanner" validate:"required"`
	Categories        []CategoryConfig  `yaml:"categories" validate:"dive"`
	Options           map[string]string `yaml:"options"`
	RequestsPerMinute int               `yaml:"requestsPerMinute" validate:"gte=0"`
}

// CategoryConfig holds the concrete endpoints to crawl (e.g., Arxiv category URLs).
type CategoryConfig struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// StoreConfig selects the SQL backend for profiles and cached results.
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// OutputConfig lists file sinks written after each run. Empty paths are skipped.
type OutputConfig struct {
	JSONPath  string `yaml:"jsonPath"`
	RSSPath   string `yaml:"rssPath"`
	FeedTitle string `yaml:"feedTitle"`
	FeedLink  string `yaml:"feedLink" validate:"omitempty,url"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken    string `yaml:"botToken"`
	ChatID      string `yaml:"chatId" validate:"omitempty,numeric"`
	APIEndpoint string `yaml:"apiEndpoint"`
	DigestSize  int    `yaml:"digestSize" validate:"gte=0"`
}

// Enabled reports whether both token and chat are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines when recommendations are refreshed and for whom.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression" validate:"required"`
	Timezone       string         `yaml:"timezone"`
	Users          []string       `yaml:"users"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig holds the Prometheus listener address; empty disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Load reads YAML from $NEWS_RECOMMENDER_CONFIG (if set) and applies environment overrides.
func Load() (Config, error) {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML from path over the defaults. An empty path uses defaults only.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Feeds.Sites) == 0 {
		cfg.Feeds.Sites = Default().Feeds.Sites
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Embedder.Provider == ProviderHTTP && c.Embedder.Endpoint == "" {
		return fmt.Errorf("invalid config: embedder.endpoint is required for provider %q", ProviderHTTP)
	}
	if c.Embedder.Provider == ProviderOpenAI && c.Embedder.APIKey == "" && c.Embedder.Endpoint == "" {
		return fmt.Errorf("invalid config: embedder.apiKey is required for provider %q", ProviderOpenAI)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Store.DSN = v
	}

	if v := os.Getenv(embedderAPIKeyEnv); v != "" {
		c.Embedder.APIKey = v
	}

	if v := os.Getenv(eventRegistryKeyEnv); v != "" {
		c.Feeds.EventRegistryAPIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// Default returns the configuration used when no file is given.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Ranking: RankingConfig{
			CategoryWeight:    ranking.DefaultCategoryWeight,
			LikesWeight:       ranking.DefaultLikesWeight,
			HistoryWeight:     ranking.DefaultHistoryWeight,
			DecayRate:         ranking.DefaultDecayRate,
			RejectThreshold:   ranking.DefaultRejectThreshold,
			Diversity:         ranking.DefaultDiversity,
			TopN:              25,
			PageCount:         3,
			PageSize:          100,
			DefaultDescriptor: ranking.DefaultDescriptor,
			DefaultCategories: append([]string(nil), ranking.DefaultInterests...),
		},
		Embedder: EmbedderConfig{
			Provider:       ProviderHTTP,
			Endpoint:       "http://localhost:8000",
			Model:          defaultEmbedderModel,
			TimeoutSeconds: 30,
			Breaker:        BreakerConfig{Enabled: true, ConsecutiveFailures: 5, OpenSeconds: 30},
		},
		Feeds: FeedsConfig{
			TimeoutSeconds: 20,
			Sites: []SiteConfig{
				{
					Name:    "eventregistry",
					Scanner: "eventregistry",
				},
			},
		},
		Store:     StoreConfig{Driver: DriverSQLite, DSN: "file:newsrecommender.db"},
		Output:    OutputConfig{FeedTitle: "Recommended news", FeedLink: "https://eventregistry.org"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{DigestSize: 5},
		},
	}
}
