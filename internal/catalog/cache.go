// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/metrics"
	"scheme-assistant/internal/models"
)

// CachedMatcher keeps query results in redis keyed by the profile
// fingerprint. Redis failures degrade to a direct catalog query.
type CachedMatcher struct {
	catalog *Catalog
	redis   redis.Cmdable
	ttl     time.Duration
	prefix  string
	logger  logger.Logger
}

func NewCachedMatcher(c *Catalog, rdb redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *CachedMatcher {
	return &CachedMatcher{
		catalog: c,
		redis:   rdb,
		ttl:     ttl,
		prefix:  prefix,
		logger:  log.WithFields(map[string]interface{}{"component": "match_cache"}),
	}
}

type cachedResult struct {
	ID      string   `json:"id"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

func (m *CachedMatcher) key(p models.Profile) string {
	return m.prefix + p.Fingerprint()
}

func (m *CachedMatcher) Match(ctx context.Context, p models.Profile) []models.MatchResult {
	key := m.key(p)

	if results, ok := m.get(ctx, key); ok {
		metrics.MatchCacheLookups.WithLabelValues("hit").Inc()
		return results
	}
	metrics.MatchCacheLookups.WithLabelValues("miss").Inc()

	results := m.catalog.Query(p)
	m.set(ctx, key, results)
	return results
}

func (m *CachedMatcher) get(ctx context.Context, key string) ([]models.MatchResult, bool) {
	val, err := m.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.logger.Warn("match cache read failed", map[string]interface{}{"key": key, "error": err})
		}
		return nil, false
	}

	var cached []cachedResult
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		m.logger.Warn("match cache entry corrupt", map[string]interface{}{"key": key, "error": err})
		return nil, false
	}

	results := make([]models.MatchResult, 0, len(cached))
	for _, c := range cached {
		s, ok := m.catalog.Find(c.ID)
		if !ok {
			return nil, false
		}
		results = append(results, models.MatchResult{Scheme: s, Score: c.Score, Reasons: c.Reasons})
	}
	return results, true
}

func (m *CachedMatcher) set(ctx context.Context, key string, results []models.MatchResult) {
	cached := make([]cachedResult, len(results))
	for i, r := range results {
		cached[i] = cachedResult{ID: r.Scheme.ID, Score: r.Score, Reasons: r.Reasons}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := m.redis.Set(ctx, key, data, m.ttl).Err(); err != nil {
		m.logger.Warn("match cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
