package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// BehaviorCap bounds stored likes and reads per user; older entries are pruned.
	BehaviorCap = 15

	kindLike = "like"
	kindRead = "read"
)

// SQLStore persists user profiles and the last recommendation list in SQLite or Postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	logger *slog.Logger
}

var (
	_ ports.ProfileStore        = (*SQLStore)(nil)
	_ ports.RecommendationCache = (*SQLStore)(nil)
)

// Open connects to the database and verifies the connection. The matching
// driver package must be registered by the caller.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s database", driver)
	}
	return db, nil
}

// NewSQLStore wires a sql.DB for the given dialect.
func NewSQLStore(db *sql.DB, driver string, logger *slog.Logger) (*SQLStore, error) {
	var format sq.PlaceholderFormat
	switch driver {
	case DriverSQLite:
		format = sq.Question
	case DriverPostgres:
		format = sq.Dollar
	default:
		return nil, errors.Errorf("unsupported store driver %q", driver)
	}
	return &SQLStore{
		db:     db,
		driver: driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
		logger: logger,
	}, nil
}

// Migrate creates the tables when absent.
func (s *SQLStore) Migrate(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id TEXT PRIMARY KEY,
			categories TEXT NOT NULL DEFAULT '[]',
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_behavior (
			` + idColumn + `,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_behavior_user_kind ON user_behavior (user_id, kind, recorded_at)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			user_id TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			payload TEXT NOT NULL,
			generated_at BIGINT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate schema")
		}
	}
	s.debug("schema ready", "driver", s.driver)
	return nil
}

// LoadProfile returns stored preferences and behavior, most recent first.
// Unknown users get an empty profile.
func (s *SQLStore) LoadProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	profile := domain.UserProfile{UserID: userID}

	query, args, err := s.sb.Select("categories").
		From("user_preferences").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return profile, errors.Wrap(err, "build preferences query")
	}

	var raw string
	switch err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return profile, errors.Wrap(err, "load preferences")
	default:
		if err := json.Unmarshal([]byte(raw), &profile.Categories); err != nil {
			return profile, errors.Wrap(err, "decode preferences")
		}
	}

	if profile.Likes, err = s.loadBehavior(ctx, userID, kindLike); err != nil {
		return profile, err
	}
	if profile.History, err = s.loadBehavior(ctx, userID, kindRead); err != nil {
		return profile, err
	}
	return profile, nil
}

func (s *SQLStore) loadBehavior(ctx context.Context, userID, kind string) ([]domain.BehaviorItem, error) {
	query, args, err := s.sb.Select("content", "recorded_at").
		From("user_behavior").
		Where(sq.Eq{"user_id": userID, "kind": kind}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(BehaviorCap).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build behavior query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s behavior", kind)
	}
	defer rows.Close()

	var items []domain.BehaviorItem
	for rows.Next() {
		var (
			text   string
			millis int64
		)
		if err := rows.Scan(&text, &millis); err != nil {
			return nil, errors.Wrapf(err, "scan %s behavior", kind)
		}
		items = append(items, domain.BehaviorItem{Text: text, RecordedAt: time.UnixMilli(millis).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s behavior", kind)
	}
	return items, nil
}

// SavePreferences replaces the declared categories of a user.
func (s *SQLStore) SavePreferences(ctx context.Context, userID string, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	payload, err := json.Marshal(categories)
	if err != nil {
		return errors.Wrap(err, "encode preferences")
	}

	query, args, err := s.sb.Insert("user_preferences").
		Columns("user_id", "categories", "updated_at").
		Values(userID, string(payload), time.Now().UnixMilli()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET categories = EXCLUDED.categories, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build preferences upsert")
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "save preferences")
	}
	return nil
}

// RecordLike stores a liked article and prunes likes beyond BehaviorCap.
func (s *SQLStore) RecordLike(ctx context.Context, userID, title, summary string, at time.Time) error {
	return s.recordBehavior(ctx, userID, kindLike, domain.NewBehaviorItem(title, summary, at))
}

// RecordRead stores a read article and prunes history beyond BehaviorCap.
func (s *SQLStore) RecordRead(ctx context.Context, userID, title, summary string, at time.Time) error {
	return s.recordBehavior(ctx, userID, kindRead, domain.NewBehaviorItem(title, summary, at))
}

func (s *SQLStore) recordBehavior(ctx context.Context, userID, kind string, item domain.BehaviorItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin behavior tx")
	}
	defer func() { _ = tx.Rollback() }()

	insert, args, err := s.sb.Insert("user_behavior").
		Columns("user_id", "kind", "content", "recorded_at").
		Values(userID, kind, item.Text, item.RecordedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build behavior insert")
	}
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return errors.Wrapf(err, "insert %s", kind)
	}

	keep := s.sb.Select("id").
		From("user_behavior").
		Where(sq.Eq{"user_id": userID, "kind": kind}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(BehaviorCap)
	keepSQL, keepArgs, err := keep.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return errors.Wrap(err, "build behavior window")
	}

	prune, pruneArgs, err := s.sb.Delete("user_behavior").
		Where(sq.Eq{"user_id": userID, "kind": kind}).
		Where(sq.Expr("id NOT IN (SELECT id FROM ("+keepSQL+") AS newest)", keepArgs...)).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build behavior prune")
	}
	if _, err := tx.ExecContext(ctx, prune, pruneArgs...); err != nil {
		return errors.Wrapf(err, "prune %s", kind)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit behavior")
	}
	return nil
}

// SaveRecommendations replaces the cached list of a user.
func (s *SQLStore) SaveRecommendations(ctx context.Context, set domain.RecommendationSet) error {
	payload, err := json.Marshal(set.Items)
	if err != nil {
		return errors.Wrap(err, "encode recommendations")
	}

	query, args, err := s.sb.Insert("recommendations").
		Columns("user_id", "origin", "payload", "generated_at").
		Values(set.UserID, string(set.Origin), string(payload), set.GeneratedAt.UnixMilli()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET origin = EXCLUDED.origin, payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build recommendations upsert")
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "save recommendations")
	}
	return nil
}

// LastRecommendations returns the cached list of a user, if any.
func (s *SQLStore) LastRecommendations(ctx context.Context, userID string) (domain.RecommendationSet, bool, error) {
	query, args, err := s.sb.Select("origin", "payload", "generated_at").
		From("recommendations").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return domain.RecommendationSet{}, false, errors.Wrap(err, "build recommendations query")
	}

	var (
		origin  string
		payload string
		millis  int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&origin, &payload, &millis)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RecommendationSet{}, false, nil
	}
	if err != nil {
		return domain.RecommendationSet{}, false, errors.Wrap(err, "load recommendations")
	}

	set := domain.RecommendationSet{
		UserID:      userID,
		Origin:      domain.ResultOrigin(origin),
		GeneratedAt: time.UnixMilli(millis).UTC(),
	}
	if err := json.Unmarshal([]byte(payload), &set.Items); err != nil {
		return domain.RecommendationSet{}, false, errors.Wrap(err, "decode recommendations")
	}
	return set, true, nil
}

func (s *SQLStore) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
