// Package cache implements the cache-aside query layer in front of Postgres.
//
// A read is keyed by a hash of its SQL text and bound arguments. On a miss
// the loader runs against the database and the encoded result is written to
// Redis with a TTL picked by how volatile the data is. Writes never evict
// list or lookup entries; staleness is bounded by the TTL alone.
//
// Redis is an accelerator only. Any Redis or decode failure is logged and
// counted, then the loader runs as if the entry were missing. Calls go
// through a circuit breaker so an unreachable Redis costs one fast rejection
// per read instead of a dial timeout.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// KeyPrefix namespaces every query-cache entry so Flush never touches asynq
// or other Redis data.
const KeyPrefix = "qc:"

// Tier names a TTL class.
type Tier int

const (
	TierOptions Tier = iota
	TierLookup
	TierList
	TierSession
)

const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultError  = "error"
	resultBypass = "bypass"
)

// QueryCache is safe for concurrent use. A nil *QueryCache is valid and
// bypasses Redis on every call.
type QueryCache struct {
	client   redis.UniversalClient
	cfg      *config.CacheConfig
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *zerolog.Logger
	requests *prometheus.CounterVec
}

// New builds a QueryCache. reg may be nil, in which case the counters exist
// but are not exported.
func New(client redis.UniversalClient, cfg *config.CacheConfig, logger *zerolog.Logger, reg prometheus.Registerer) *QueryCache {
	if cfg == nil {
		cfg = config.DefaultCacheConfig()
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "consultdesk",
		Subsystem: "query_cache",
		Name:      "requests_total",
		Help:      "Query cache lookups by result.",
	}, []string{"result"})

	if reg != nil {
		reg.MustRegister(requests)
	}

	qc := &QueryCache{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		requests: requests,
	}

	qc.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "query-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A cancelled request says nothing about Redis health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("query cache circuit breaker state changed")
		},
	})

	return qc
}

// TTL returns the configured lifetime for tier. Zero means "do not cache".
func (qc *QueryCache) TTL(tier Tier) time.Duration {
	if qc == nil || !qc.cfg.Enabled {
		return 0
	}

	switch tier {
	case TierOptions:
		return qc.cfg.OptionsTTL
	case TierLookup:
		return qc.cfg.LookupTTL
	case TierList:
		return qc.cfg.ListTTL
	case TierSession:
		return qc.cfg.SessionTTL
	default:
		return 0
	}
}

// Key derives the cache key for a query. Runs of whitespace in the SQL are
// collapsed, so reformatting a query does not change its key.
func Key(query string, args ...any) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(strings.Fields(query), " ")))
	h.Write([]byte{0})

	if len(args) > 0 {
		encoded, err := json.Marshal(args)
		if err != nil {
			// Unencodable args still need a stable, distinct key.
			encoded = []byte(fmt.Sprintf("%#v", args))
		}
		h.Write(encoded)
	}

	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Fetch returns the cached result of query/args, or runs load and caches its
// result for the tier's TTL. load errors are returned as-is and never cached.
func Fetch[T any](ctx context.Context, qc *QueryCache, tier Tier, query string, args []any, load func(context.Context) (T, error)) (T, error) {
	ttl := qc.TTL(tier)
	if ttl <= 0 {
		if qc != nil {
			qc.requests.WithLabelValues(resultBypass).Inc()
		}
		return load(ctx)
	}

	key := Key(query, args...)

	data, err := qc.get(ctx, key)
	switch {
	case err != nil:
		qc.requests.WithLabelValues(resultError).Inc()
		qc.logger.Warn().Err(err).Str("key", key).Msg("query cache read failed, falling through to database")
	case data == nil:
		qc.requests.WithLabelValues(resultMiss).Inc()
	default:
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			qc.requests.WithLabelValues(resultHit).Inc()
			return cached, nil
		}

		qc.requests.WithLabelValues(resultError).Inc()
		qc.logger.Warn().Str("key", key).Msg("discarding undecodable query cache entry")
	}

	result, err := load(ctx)
	if err != nil {
		return result, err
	}

	qc.set(ctx, key, result, ttl)

	return result, nil
}

// get returns nil data and a nil error on a miss.
func (qc *QueryCache) get(ctx context.Context, key string) ([]byte, error) {
	return qc.breaker.Execute(func() ([]byte, error) {
		data, err := qc.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
}

func (qc *QueryCache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		qc.logger.Warn().Err(err).Str("key", key).Msg("query cache value not encodable")
		return
	}

	_, err = qc.breaker.Execute(func() ([]byte, error) {
		return nil, qc.client.Set(ctx, key, data, ttl).Err()
	})
	if err != nil {
		qc.requests.WithLabelValues(resultError).Inc()
		qc.logger.Warn().Err(err).Str("key", key).Msg("query cache write failed")
	}
}

// Delete evicts specific keys.
func (qc *QueryCache) Delete(ctx context.Context, keys ...string) error {
	if qc == nil || len(keys) == 0 {
		return nil
	}

	_, err := qc.breaker.Execute(func() ([]byte, error) {
		return nil, qc.client.Del(ctx, keys...).Err()
	})
	return err
}

// Flush removes every query-cache entry and reports how many were deleted.
func (qc *QueryCache) Flush(ctx context.Context) (int64, error) {
	if qc == nil {
		return 0, nil
	}

	var (
		cursor  uint64
		deleted int64
	)

	for {
		keys, next, err := qc.client.Scan(ctx, cursor, KeyPrefix+"*", 500).Result()
		if err != nil {
			return deleted, err
		}

		if len(keys) > 0 {
			n, err := qc.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	qc.logger.Info().Int64("deleted", deleted).Msg("query cache flushed")

	return deleted, nil
}
