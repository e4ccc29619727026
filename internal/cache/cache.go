// Package cache memoises predictions per model version and input row.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
)

const (
	DefaultTTL    = 10 * time.Minute
	defaultPrefix = "predict"
)

type PredictionCache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64) error
	Close() error
}

// Key hashes the raw feature values in catalogue order under the model
// version, so a retrained model never reads a stale entry.
func Key(modelVersion string, rec housing.Record) string {
	h := sha256.New()
	var buf [8]byte
	for _, c := range housing.RawColumns() {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(rec[c]))
		_, _ = h.Write(buf[:])
	}
	return modelVersion + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

type Config struct {
	Addr   string
	TTL    time.Duration
	Prefix string
}

// kv is the slice of the redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Close() error
}

type redisCache struct {
	log    *logger.Logger
	rdb    kv
	ttl    time.Duration
	prefix string
}

// New returns a Redis-backed cache, or a no-op cache when no address is set.
func New(ctx context.Context, cfg Config, log *logger.Logger) (PredictionCache, error) {
	if log == nil {
		log = logger.NewNop()
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("prediction cache disabled", "reason", "no redis address")
		return Nop{}, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisCache(rdb, cfg, log), nil
}

func newRedisCache(rdb kv, cfg Config, log *logger.Logger) *redisCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &redisCache{log: log.With("service", "RedisPredictionCache"), rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	s, err := c.rdb.Get(ctx, c.prefix+":"+key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.log.Warn("dropping malformed cache entry", "key", key, "error", err)
		return 0, false, nil
	}
	return v, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value float64) error {
	return c.rdb.Set(ctx, c.prefix+":"+key, strconv.FormatFloat(value, 'g', -1, 64), c.ttl).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string) (float64, bool, error) { return 0, false, nil }
func (Nop) Set(context.Context, string, float64) error         { return nil }
func (Nop) Close() error                                       { return nil }
