package fetch

import (
	"context"
	"sync"
	"time"
)

// LimiterConfig configures the fetch limiter.
type LimiterConfig struct {
	// MaxConcurrent is the maximum number of in-flight origin fetches.
	// Default: 8
	MaxConcurrent int

	// MaxWait is the maximum time to wait for a slot.
	// Default: 0 (no waiting, fail immediately)
	MaxWait time.Duration
}

// Limiter bounds how many origin fetches run at once.
type Limiter struct {
	config LimiterConfig
	sem    chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewLimiter creates a fetch limiter.
func NewLimiter(config LimiterConfig) *Limiter {
	// Apply defaults
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 8
	}

	return &Limiter{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Acquire claims a fetch slot.
// Returns ErrLimiterFull if no slot frees up within MaxWait.
func (l *Limiter) Acquire(ctx context.Context) error {
	// Fast path: try non-blocking acquire
	select {
	case l.sem <- struct{}{}:
		l.noteAcquired()
		return nil
	default:
	}

	if l.config.MaxWait <= 0 {
		l.noteRejected()
		return ErrLimiterFull
	}

	timer := time.NewTimer(l.config.MaxWait)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		l.noteAcquired()
		return nil
	case <-timer.C:
		l.noteRejected()
		return ErrLimiterFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a fetch slot.
func (l *Limiter) Release() {
	select {
	case <-l.sem:
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	default:
		// Release without a matching Acquire
	}
}

// Do runs op within a fetch slot.
func (l *Limiter) Do(ctx context.Context, op func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()

	return op(ctx)
}

// Metrics returns current limiter statistics.
func (l *Limiter) Metrics() LimiterMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	return LimiterMetrics{
		Active:        l.active,
		MaxActive:     l.maxActive,
		Available:     l.config.MaxConcurrent - l.active,
		MaxConcurrent: l.config.MaxConcurrent,
		Rejected:      l.rejected,
	}
}

// LimiterMetrics contains limiter statistics.
type LimiterMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

func (l *Limiter) noteAcquired() {
	l.mu.Lock()
	l.active++
	if l.active > l.maxActive {
		l.maxActive = l.active
	}
	l.mu.Unlock()
}

func (l *Limiter) noteRejected() {
	l.mu.Lock()
	l.rejected++
	l.mu.Unlock()
}
