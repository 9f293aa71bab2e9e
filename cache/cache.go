// Package cache provides translation caching implementations.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ZaguanLabs/wptl"
	"go.uber.org/zap"
)

// TranslationCache is an alias to the main package interface.
type TranslationCache = wptl.TranslationCache

// Store is a TranslationCache that holds resources until closed.
type Store interface {
	TranslationCache
	Close() error
}

// Enumerable caches can list their entries for export.
type Enumerable interface {
	Entries() (map[string]string, error)
}

// Cache backends accepted by Open.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Type       string        // none, memory, file or redis
	TTL        time.Duration // Zero keeps entries forever
	MaxEntries int           // In-memory bound; zero is unbounded
	Path       string        // JSON file for the file backend
	RedisURL   string        // redis://host:port/db
	KeyPrefix  string        // Redis key prefix (default "wptl:")
}

// Open builds the configured backend. TypeNone returns a nil Store.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Type {
	case "", TypeNone:
		return nil, nil
	case TypeMemory:
		return NewInMemoryCache(cfg.TTL, cfg.MaxEntries), nil
	case TypeFile:
		return OpenFileCache(cfg.Path, cfg.TTL, cfg.MaxEntries, logger)
	case TypeRedis:
		return NewRedisCache(ctx, RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
			Logger:    logger,
		})
	}
	return nil, &wptl.CacheError{Message: fmt.Sprintf("unknown cache type %q", cfg.Type)}
}
