package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/imageloader/cache"
)

// MemoryStoreCheckerConfig configures the memory store checker.
type MemoryStoreCheckerConfig struct {
	// WarningThreshold is the fraction of the byte budget in use that
	// triggers degraded status.
	// Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the fraction of the byte budget in use that
	// triggers unhealthy status.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	CriticalThreshold float64
}

// MemoryStoreChecker checks occupancy of the decoded-image tier.
type MemoryStoreChecker struct {
	config MemoryStoreCheckerConfig
	store  cache.MemoryStore
}

// NewMemoryStoreChecker creates a checker over the given store.
func NewMemoryStoreChecker(store cache.MemoryStore, config MemoryStoreCheckerConfig) *MemoryStoreChecker {
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

	return &MemoryStoreChecker{config: config, store: store}
}

// Name returns the name of this checker.
func (m *MemoryStoreChecker) Name() string {
	return "memory-store"
}

// Check reports budget utilization of the memory tier.
func (m *MemoryStoreChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	stats := m.store.Stats()

	details := map[string]any{
		"entries":   stats.Entries,
		"bytes":     stats.Bytes,
		"budget":    stats.Budget,
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"evictions": stats.Evictions,
	}
	if lookups := stats.Hits + stats.Misses; lookups > 0 {
		details["hit_rate"] = float64(stats.Hits) / float64(lookups)
	}

	if stats.Budget <= 0 {
		return Healthy("memory store unbudgeted").WithDetails(details)
	}

	usageRatio := float64(stats.Bytes) / float64(stats.Budget)
	details["usage_percent"] = usageRatio * 100

	if usageRatio >= m.config.CriticalThreshold {
		return Unhealthy(
			fmt.Sprintf("memory store usage critical: %.1f%%", usageRatio*100),
			ErrCheckFailed,
		).WithDetails(details)
	}

	if usageRatio >= m.config.WarningThreshold {
		return Degraded(
			fmt.Sprintf("memory store usage high: %.1f%%", usageRatio*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("memory store usage normal: %.1f%%", usageRatio*100),
	).WithDetails(details)
}
