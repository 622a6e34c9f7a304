package loader

import "errors"

// Sentinel errors for loader operations.
var (
	// ErrClosed is returned for operations submitted after Close.
	ErrClosed = errors.New("loader: closed")

	// ErrMissingCacheDir is returned by New when no cache directory is
	// configured and no disk store was injected.
	ErrMissingCacheDir = errors.New("loader: cache directory is required")

	// ErrUnknownMemoryStrategy is returned by New for a memory strategy
	// other than "lru" or "pressure".
	ErrUnknownMemoryStrategy = errors.New("loader: unknown memory strategy")

	// ErrCacheOnlyMiss is the delivery failure for a cache-only request
	// that missed both tiers.
	ErrCacheOnlyMiss = errors.New("loader: cache-only request missed both tiers")
)
