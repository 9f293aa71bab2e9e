package cache

import (
	"errors"
	"io/fs"
	"time"

	"github.com/ZaguanLabs/wptl"
	"go.uber.org/zap"
)

// FileCache is an in-memory cache loaded from and saved to a JSON export file,
// so CLI runs on one machine share translations.
type FileCache struct {
	*InMemoryCache
	path   string
	logger *zap.Logger
}

// OpenFileCache loads path if it exists. The file is rewritten on Close.
func OpenFileCache(path string, ttl time.Duration, maxEntries int, logger *zap.Logger) (*FileCache, error) {
	if path == "" {
		return nil, &wptl.CacheError{Message: "file cache needs a path"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &FileCache{
		InMemoryCache: NewInMemoryCache(ttl, maxEntries),
		path:          path,
		logger:        logger,
	}

	res, err := NewImporter(c.InMemoryCache).ImportFromFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, &wptl.CacheError{Message: "loading " + path, Cause: err}
	default:
		logger.Debug("cache loaded", zap.String("path", path), zap.Int("entries", res.Imported))
	}
	return c, nil
}

// Close writes the live entries back to the file.
func (c *FileCache) Close() error {
	if err := NewExporter(c.InMemoryCache).ExportToFile(c.path, nil); err != nil {
		return &wptl.CacheError{Message: "saving " + c.path, Cause: err}
	}
	c.logger.Debug("cache saved", zap.String("path", c.path), zap.Int("entries", c.Len()))
	return nil
}

var _ Store = (*FileCache)(nil)
