package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dgraph-io/badger/v4"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/metrics"
	"NewsRecommender/internal/ports"
)

// OpenCache opens a badger database at dir, or an in-memory one when dir is empty.
func OpenCache(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	return db, nil
}

// CachedEmbedder keeps vectors in badger keyed by model and exact text,
// and sends only misses to the wrapped embedder. Cache read or write errors
// degrade to a miss.
type CachedEmbedder struct {
	inner  ports.Embedder
	db     *badger.DB
	logger *slog.Logger
}

var _ ports.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with db. The caller owns db.
func NewCachedEmbedder(inner ports.Embedder, db *badger.DB, logger *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, db: db, logger: logger}
}

// ModelID delegates to the wrapped embedder.
func (c *CachedEmbedder) ModelID() string {
	return c.inner.ModelID()
}

// EmbedOne embeds a single text, consulting the cache first.
func (c *CachedEmbedder) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	vectors, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedMany returns cached vectors and embeds the rest in a single call.
func (c *CachedEmbedder) EmbedMany(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := c.inner.ModelID()
	out := make([]domain.Vector, len(texts))
	keys := make([][]byte, len(texts))
	for i, text := range texts {
		keys[i] = cacheKey(model, text)
	}

	found, err := c.lookup(keys)
	if err != nil {
		c.warn("embedding cache read failed", "error", err)
		found = map[int]domain.Vector{}
	}

	var missTexts []string
	missIndex := map[string]int{}
	var missOwners [][]int
	for i, text := range texts {
		if vec, ok := found[i]; ok {
			out[i] = vec
			metrics.EmbedCacheLookups.WithLabelValues("hit").Inc()
			continue
		}
		metrics.EmbedCacheLookups.WithLabelValues("miss").Inc()
		k := string(keys[i])
		pos, ok := missIndex[k]
		if !ok {
			pos = len(missTexts)
			missIndex[k] = pos
			missTexts = append(missTexts, text)
			missOwners = append(missOwners, nil)
		}
		missOwners[pos] = append(missOwners[pos], i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.EmbedMany(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for pos, vec := range fresh {
		for _, i := range missOwners[pos] {
			out[i] = vec
		}
	}

	if err := c.store(missOwners, keys, fresh); err != nil {
		c.warn("embedding cache write failed", "error", err)
	}
	return out, nil
}

func (c *CachedEmbedder) lookup(keys [][]byte) (map[int]domain.Vector, error) {
	found := make(map[int]domain.Vector, len(keys))
	err := c.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			vec, err := decodeVector(raw)
			if err != nil {
				continue
			}
			found[i] = vec
		}
		return nil
	})
	return found, err
}

func (c *CachedEmbedder) store(owners [][]int, keys [][]byte, vectors []domain.Vector) error {
	return c.db.Update(func(txn *badger.Txn) error {
		for pos, vec := range vectors {
			if err := txn.Set(keys[owners[pos][0]], encodeVector(vec)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *CachedEmbedder) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func cacheKey(model, text string) []byte {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return []byte("emb:" + hex.EncodeToString(sum[:]))
}

func encodeVector(v domain.Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) (domain.Vector, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, fmt.Errorf("corrupt cached vector of %d bytes", len(raw))
	}
	v := make(domain.Vector, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, nil
}
