package loader

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"github.com/jonwraymond/imageloader/bitmap"
	"github.com/jonwraymond/imageloader/cache"
	"github.com/jonwraymond/imageloader/display"
	"github.com/jonwraymond/imageloader/fetch"
	"github.com/jonwraymond/imageloader/health"
	"github.com/jonwraymond/imageloader/inflight"
	"github.com/jonwraymond/imageloader/observe"
	"github.com/jonwraymond/imageloader/request"
)

// Fetcher retrieves encoded image bytes from an origin.
// *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader is the coordinator for image loads. Create one with New and
// share it; it is safe for concurrent use.
type Loader struct {
	config    Config
	keys      request.KeyPolicy
	retention time.Duration

	memory  cache.MemoryStore
	disk    *cache.DiskStore
	tiered  *cache.Tiered
	fetcher Fetcher
	limiter *fetch.Limiter
	flights *inflight.Registry

	presenter display.Presenter
	scheduler display.Scheduler

	observer   observe.Observer
	logger     observe.Logger
	metrics    observe.Metrics
	middleware *observe.Middleware

	// Owned resources are released on Close; injected ones stay with
	// their caller.
	ownedObserver bool
	ownedMemory   bool
	ownedFetcher  *fetch.Fetcher

	listenerMu sync.RWMutex
	listeners  []Listener

	mu          sync.Mutex
	closed      bool
	wg          sync.WaitGroup
	stopSweeper context.CancelFunc
}

// Option customizes a Loader at construction.
type Option func(*Loader)

// WithPresenter sets where deliveries are presented.
// Default: display.NoopPresenter.
func WithPresenter(p display.Presenter) Option {
	return func(l *Loader) { l.presenter = p }
}

// WithScheduler sets how presentations are marshaled onto the host's
// rendering goroutine. Default: display.SynchronousScheduler.
func WithScheduler(s display.Scheduler) Option {
	return func(l *Loader) { l.scheduler = s }
}

// WithObserver injects a telemetry observer. An injected observer is
// not shut down by Close; its owner does that.
func WithObserver(obs observe.Observer) Option {
	return func(l *Loader) { l.observer = obs }
}

// WithFetcher replaces the origin fetcher. The caller keeps ownership.
func WithFetcher(f Fetcher) Option {
	return func(l *Loader) { l.fetcher = f }
}

// WithMemoryStore replaces the memory tier, overriding MemoryStrategy.
// The caller keeps ownership.
func WithMemoryStore(s cache.MemoryStore) Option {
	return func(l *Loader) { l.memory = s }
}

// WithDiskStore replaces the disk tier, making Config.CacheDir
// unnecessary. The caller keeps ownership.
func WithDiskStore(s *cache.DiskStore) Option {
	return func(l *Loader) { l.disk = s }
}

// New creates a Loader. The configuration is validated and the disk
// directory is created and proven writable up front, so a misconfigured
// loader fails here rather than on its first load.
func New(cfg Config, opts ...Option) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.FetchQueueWait <= 0 {
		cfg.FetchQueueWait = 30 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "imageloader"
	}

	l := &Loader{
		config:    cfg,
		keys:      cfg.keyPolicy(),
		retention: cfg.cachePolicy().EffectiveRetention(),
		flights:   inflight.NewRegistry(),
		presenter: display.NoopPresenter{},
		scheduler: display.SynchronousScheduler{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.disk == nil {
		if cfg.CacheDir == "" {
			return nil, ErrMissingCacheDir
		}
		disk, err := cache.NewDiskStore(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		l.disk = disk
	}

	if l.observer == nil {
		obs, err := observe.NewObserver(context.Background(), cfg.Telemetry)
		if err != nil {
			return nil, err
		}
		l.observer = obs
		l.ownedObserver = true
	}
	l.logger = l.observer.Logger()

	middleware, mwErr := observe.MiddlewareFromObserver(l.observer)
	metrics, mErr := observe.NewMetrics(l.observer.Meter())
	if err := errors.Join(mwErr, mErr); err != nil {
		if l.ownedObserver {
			_ = l.observer.Shutdown(context.Background())
		}
		return nil, err
	}
	l.middleware = middleware
	l.metrics = metrics

	if l.memory == nil {
		budget := cfg.cachePolicy().EffectiveBudget()
		switch cfg.MemoryStrategy {
		case StrategyPressure:
			l.memory = cache.NewPressureStore(cache.PressureConfig{Budget: budget})
		default:
			l.memory = cache.NewBoundedLRU(budget)
		}
		l.ownedMemory = true
	}
	l.tiered = &cache.Tiered{Memory: l.memory, Disk: l.disk}

	if l.fetcher == nil {
		f := fetch.New(cfg.fetchConfig())
		l.fetcher = f
		l.ownedFetcher = f
	}
	l.limiter = fetch.NewLimiter(fetch.LimiterConfig{
		MaxConcurrent: cfg.FetchConcurrency,
		MaxWait:       cfg.FetchQueueWait,
	})

	if cfg.SweepInterval > 0 {
		l.startSweeper()
	}
	return l, nil
}

// startSweeper runs the background expiration sweeper until Close.
func (l *Loader) startSweeper() {
	ctx, cancel := context.WithCancel(context.Background())
	l.stopSweeper = cancel

	sweeper := &cache.Sweeper{
		Store:     l.disk,
		Retention: l.retention,
		Interval:  l.config.SweepInterval,
		OnSweep: func(res cache.SweepResult, err error) {
			l.metrics.RecordSweep(ctx, res.Deleted, res.Reclaimed)
			if err != nil {
				l.logger.Warn(ctx, "expiration sweep failed",
					observe.Field{Key: "error", Value: err.Error()})
				return
			}
			l.logger.Debug(ctx, "expiration sweep completed",
				observe.Field{Key: "scanned", Value: res.Scanned},
				observe.Field{Key: "deleted", Value: res.Deleted},
				observe.Field{Key: "reclaimed_bytes", Value: res.Reclaimed})
		},
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		sweeper.Run(ctx)
	}()
}

// Download retrieves and decodes url at its original size, bypassing
// the caches, the key derivation, and any display binding. Unlike
// Load it blocks until the fetch finishes or ctx ends.
func (l *Loader) Download(ctx context.Context, url string) (image.Image, error) {
	if l.isClosed() {
		return nil, ErrClosed
	}

	start := time.Now()
	data, err := l.fetcher.Fetch(ctx, url)
	l.metrics.RecordFetch(ctx, time.Since(start), int64(len(data)), err)
	if err != nil {
		return nil, err
	}
	return bitmap.Decode(data, bitmap.Options{})
}

// CleanExpired removes disk entries older than the expiration period
// and reports what the pass did. Hosts running without the background
// sweeper call this on their own schedule.
func (l *Loader) CleanExpired(ctx context.Context) (cache.SweepResult, error) {
	res, err := l.disk.Sweep(ctx, l.retention)
	l.metrics.RecordSweep(ctx, res.Deleted, res.Reclaimed)
	if err != nil {
		return res, err
	}
	l.logger.Info(ctx, "expiration sweep completed",
		observe.Field{Key: "scanned", Value: res.Scanned},
		observe.Field{Key: "deleted", Value: res.Deleted},
		observe.Field{Key: "reclaimed_bytes", Value: res.Reclaimed})
	return res, nil
}

// HealthCheckers returns checkers for the loader's stores, ready to
// register with a health.Aggregator owned by the host.
func (l *Loader) HealthCheckers() []health.Checker {
	return []health.Checker{
		health.NewMemoryStoreChecker(l.memory, health.MemoryStoreCheckerConfig{}),
		health.NewDiskStoreChecker(l.disk, health.DiskStoreCheckerConfig{
			Retention:  l.retention,
			SweepSlack: l.config.SweepInterval,
		}),
	}
}

// Close stops the background sweeper, waits for in-flight loads to
// resolve, and releases resources the loader owns. Further calls to
// Load and Download fail with ErrClosed. Close is idempotent.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	if l.stopSweeper != nil {
		l.stopSweeper()
	}
	l.wg.Wait()

	if l.ownedMemory {
		if c, ok := l.memory.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if l.ownedFetcher != nil {
		l.ownedFetcher.Close()
	}
	if l.ownedObserver {
		return l.observer.Shutdown(context.Background())
	}
	return nil
}

func (l *Loader) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
