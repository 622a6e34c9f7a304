package loader

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/imageloader/cache"
	"github.com/jonwraymond/imageloader/fetch"
	"github.com/jonwraymond/imageloader/observe"
	"github.com/jonwraymond/imageloader/request"
)

// Memory tier strategies.
const (
	// StrategyLRU bounds the memory tier by a byte budget with
	// least-recently-used eviction.
	StrategyLRU = "lru"

	// StrategyPressure is StrategyLRU plus a sampling loop that sheds
	// entries when process memory climbs toward its limit.
	StrategyPressure = "pressure"
)

// Config configures a Loader. The zero value is usable once CacheDir
// is set; every other field has a working default.
type Config struct {
	// CacheDir is the directory backing the disk tier. Required unless
	// a disk store is injected with WithDiskStore.
	CacheDir string `env:"IMAGELOADER_CACHE_DIR"`

	// ExpirationPeriod is how long disk entries are retained after
	// their last write. Expired entries are removed by CleanExpired or
	// by the background sweeper. Default: 7 days.
	ExpirationPeriod time.Duration `env:"IMAGELOADER_EXPIRATION_PERIOD" envDefault:"168h"`

	// SweepInterval enables the background sweeper when positive. Zero
	// leaves expiration to the host via CleanExpired.
	SweepInterval time.Duration `env:"IMAGELOADER_SWEEP_INTERVAL"`

	// StripQueryFromKey drops the URL query string from cache keys, so
	// URLs differing only in their query share one cache entry. By
	// default the query participates in the key.
	StripQueryFromKey bool `env:"IMAGELOADER_STRIP_QUERY_FROM_KEY"`

	// SizeInKey appends the target dimensions to cache keys, caching
	// each requested size as its own entry.
	SizeInKey bool `env:"IMAGELOADER_SIZE_IN_KEY"`

	// MemoryStrategy selects the memory tier implementation:
	// StrategyLRU (the default) or StrategyPressure.
	MemoryStrategy string `env:"IMAGELOADER_MEMORY_STRATEGY" envDefault:"lru"`

	// MemoryPercent sizes the memory budget as a share of the runtime
	// memory limit (GOMEMLIMIT). Ignored when MemoryBudgetBytes is
	// set. Default: 25.
	MemoryPercent int `env:"IMAGELOADER_MEMORY_PERCENT" envDefault:"25"`

	// MemoryBudgetBytes fixes the memory budget directly in bytes.
	MemoryBudgetBytes int64 `env:"IMAGELOADER_MEMORY_BUDGET_BYTES"`

	// FetchConcurrency caps how many origin fetches run at once.
	// Default: 8.
	FetchConcurrency int `env:"IMAGELOADER_FETCH_CONCURRENCY" envDefault:"8"`

	// FetchQueueWait is how long a load waits for a fetch slot before
	// failing with fetch.ErrLimiterFull. Default: 30s.
	FetchQueueWait time.Duration `env:"IMAGELOADER_FETCH_QUEUE_WAIT" envDefault:"30s"`

	// SaveThumbnails persists a preview-size copy of every fetched
	// image under its preview key, so the next pass over a list can
	// render previews without a network trip.
	SaveThumbnails bool `env:"IMAGELOADER_SAVE_THUMBNAILS"`

	// AllowUpsampling permits enlarging images smaller than their
	// target bounds.
	AllowUpsampling bool `env:"IMAGELOADER_ALLOW_UPSAMPLING"`

	// AlwaysUseOriginalSize disables resizing entirely.
	AlwaysUseOriginalSize bool `env:"IMAGELOADER_ALWAYS_USE_ORIGINAL_SIZE"`

	// ConnectTimeout bounds establishing an origin connection.
	// Default: 10s.
	ConnectTimeout time.Duration `env:"IMAGELOADER_CONNECT_TIMEOUT" envDefault:"10s"`

	// ReadTimeout bounds waiting for the origin's response headers.
	// Default: 10s.
	ReadTimeout time.Duration `env:"IMAGELOADER_READ_TIMEOUT" envDefault:"10s"`

	// DisconnectOnEveryCall disables connection reuse between fetches.
	DisconnectOnEveryCall bool `env:"IMAGELOADER_DISCONNECT_ON_EVERY_CALL"`

	// UserAgent, if set, replaces the default Go user agent on origin
	// requests.
	UserAgent string `env:"IMAGELOADER_USER_AGENT"`

	// Authorization, if set, decorates every origin request with
	// credentials. Not populated from the environment.
	Authorization fetch.Authorization

	// Telemetry configures tracing, metrics, and logging. ServiceName
	// defaults to "imageloader". Not populated from the environment;
	// exporter endpoints follow the usual OTEL_* variables.
	Telemetry observe.Config
}

// ConfigFromEnv loads configuration from IMAGELOADER_* environment
// variables. Unset variables fall back to the documented defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("loader: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for constructional mistakes.
func (c *Config) Validate() error {
	switch c.MemoryStrategy {
	case "", StrategyLRU, StrategyPressure:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMemoryStrategy, c.MemoryStrategy)
	}
	return nil
}

// keyPolicy maps the key-shape options onto a request.KeyPolicy.
func (c *Config) keyPolicy() request.KeyPolicy {
	return request.KeyPolicy{
		IncludeQuery: !c.StripQueryFromKey,
		SizeVariant:  c.SizeInKey,
	}
}

// cachePolicy maps the storage options onto a cache.Policy.
func (c *Config) cachePolicy() cache.Policy {
	return cache.Policy{
		MemoryBudgetBytes: c.MemoryBudgetBytes,
		MemoryPercent:     c.MemoryPercent,
		Retention:         c.ExpirationPeriod,
	}
}

// fetchConfig maps the origin options onto a fetch.Config.
func (c *Config) fetchConfig() fetch.Config {
	return fetch.Config{
		ConnectTimeout:        c.ConnectTimeout,
		ReadTimeout:           c.ReadTimeout,
		DisconnectOnEveryCall: c.DisconnectOnEveryCall,
		Authorization:         c.Authorization,
		UserAgent:             c.UserAgent,
	}
}
