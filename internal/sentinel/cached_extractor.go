package sentinel

import (
	"fmt"

	"github.com/Raf-Pimentel/PantanalBurns/internal/cache"
)

// CachedExtractor memoizes successful and no-valid-pixel outcomes per raster
// version. Unreadable outcomes are never stored so a replaced file is retried on
// the next run.
type CachedExtractor struct {
	next  Extractor
	opts  Options
	cache cache.Service[Result]
}

func NewCachedExtractor(next Extractor, opts Options, svc cache.Service[Result]) *CachedExtractor {
	return &CachedExtractor{next: next, opts: opts, cache: svc}
}

func (c *CachedExtractor) Extract(path string) Result {
	key := c.cache.Key(
		path,
		c.opts.Range.Min, c.opts.Range.Max,
		c.opts.Rescale.Enabled, c.opts.Rescale.Threshold, c.opts.Rescale.Factor,
	)

	result, hit, err := c.cache.GetOrCompute(key, path, func() (Result, bool) {
		r := c.next.Extract(path)
		return r, r.Status != StatusFileUnreadable
	})
	if err != nil {
		return Unreadable(fmt.Errorf("failed to stat raster %s: %w", path, err))
	}

	// Err is not serialized
	if hit && result.Status == StatusNoValidPixels {
		result.Err = ErrNoValidPixels
	}
	return result
}
