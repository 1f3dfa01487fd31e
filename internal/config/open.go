package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/store"
	"github.com/flowscope/flowscope/pkg/store/memory"
	"github.com/flowscope/flowscope/pkg/store/mongo"
	"github.com/flowscope/flowscope/pkg/store/postgres"
)

// appName names the per-user cache directory.
const appName = "flowscope"

// Open connects the configured store backend. Mongo and Postgres connect
// eagerly and ensure their schema; the caller owns Close.
func (c StoreConfig) Open(ctx context.Context) (store.Store, error) {
	switch c.Backend {
	case StoreMemory:
		return memory.NewStore(), nil
	case StoreMongo:
		return mongo.NewStore(ctx, c.URI, c.Database)
	case StorePostgres:
		return postgres.NewStore(ctx, c.DSN)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Backend)
	}
}

// Open creates the configured cache backend. The file backend resolves an
// empty Dir to the user cache directory; the caller owns Close.
func (c CacheConfig) Open() (cache.Cache, error) {
	switch c.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheFile:
		dir := c.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultCacheDir(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeCache, err, "resolve cache dir")
			}
		}
		return cache.NewFileCache(dir)
	case CacheRedis:
		return cache.NewRedisCache(c.Addr)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Backend)
	}
}

// DefaultCacheDir returns the file cache location following the XDG
// convention: $XDG_CACHE_HOME/flowscope, or ~/.cache/flowscope.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
