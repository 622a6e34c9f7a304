package cache

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// PressureConfig configures the pressure-relieving memory store.
type PressureConfig struct {
	// Budget caps the underlying store in bytes. If zero, the default
	// policy budget is used.
	Budget int64

	// WarningThreshold is the fraction of the memory limit at which
	// the store sheds half its contents. Default: 0.8 (80%).
	WarningThreshold float64

	// CriticalThreshold is the fraction of the memory limit at which
	// the store empties entirely. Default: 0.95 (95%).
	CriticalThreshold float64

	// Interval is how often process memory is sampled. Default: 30s.
	Interval time.Duration
}

// PressureStore wraps a BoundedLRU and sheds entries when process
// memory climbs toward its limit. Entries survive while memory is
// plentiful and are dropped under pressure, so callers must always be
// prepared for a miss.
type PressureStore struct {
	*BoundedLRU

	warning  float64
	critical float64
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPressureStore creates a pressure-relieving memory store and
// starts its sampling loop. Close releases the loop.
func NewPressureStore(config PressureConfig) *PressureStore {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}

	s := &PressureStore{
		BoundedLRU: NewBoundedLRU(config.Budget),
		warning:    config.WarningThreshold,
		critical:   config.CriticalThreshold,
		interval:   config.Interval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go s.loop()
	return s
}

// Close stops the sampling loop. The store remains usable as a plain
// bounded LRU afterwards.
func (s *PressureStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

func (s *PressureStore) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.relieve(memoryUsage())
		}
	}
}

// relieve sheds entries according to how close the process is to its
// memory limit.
func (s *PressureStore) relieve(usage float64) {
	switch {
	case usage >= s.critical:
		s.EvictAll()
	case usage >= s.warning:
		s.TrimTo(s.Stats().Bytes / 2)
	}
}

// memoryUsage reports allocated heap as a fraction of the runtime
// memory limit, or of total obtained system memory when no limit is
// set.
func memoryUsage() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		if stats.Sys == 0 {
			return 0
		}
		return float64(stats.Alloc) / float64(stats.Sys)
	}
	return float64(stats.Alloc) / float64(limit)
}

// Ensure PressureStore implements MemoryStore
var _ MemoryStore = (*PressureStore)(nil)
