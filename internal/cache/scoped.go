package cache

import (
	"github.com/rohmanhakim/hikugen/internal/config"
	"github.com/rohmanhakim/hikugen/internal/metadata"
)

// WithCache opens a store, hands it to fn, and guarantees release on every
// exit path, panics included. Sugar over an explicit Close. A Close failure
// surfaces only when fn itself succeeded; fn's error always wins.
func WithCache(
	cfg config.Config,
	sink metadata.CacheSink,
	fn func(*ExtractionCache) error,
) (err error) {
	c, openErr := Open(cfg, sink)
	if openErr != nil {
		return openErr
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(c)
}
