package cache

import (
	"math"
	"runtime/debug"
	"time"
)

// DefaultMemoryBudget is the memory-tier budget used when no explicit
// budget is configured and the runtime reports no memory limit.
const DefaultMemoryBudget = 64 << 20

// Policy configures the storage tiers.
type Policy struct {
	// MemoryBudgetBytes caps the memory tier. If zero, the budget is
	// derived from MemoryPercent and the runtime memory limit.
	MemoryBudgetBytes int64

	// MemoryPercent is the share of the runtime memory limit granted
	// to the memory tier when MemoryBudgetBytes is zero.
	// Values outside (0, 100] are clamped. Default: 25.
	MemoryPercent int

	// Retention is how long disk entries live after their last write.
	// Default: 7 days.
	Retention time.Duration
}

// DefaultPolicy returns the default tier policy.
// MemoryPercent: 25, Retention: 7 days.
func DefaultPolicy() Policy {
	return Policy{
		MemoryPercent: 25,
		Retention:     7 * 24 * time.Hour,
	}
}

// EffectiveBudget resolves the memory budget in bytes.
// An explicit MemoryBudgetBytes wins; otherwise the budget is
// MemoryPercent of the runtime memory limit (GOMEMLIMIT), falling
// back to DefaultMemoryBudget when no limit is set.
func (p Policy) EffectiveBudget() int64 {
	if p.MemoryBudgetBytes > 0 {
		return p.MemoryBudgetBytes
	}

	percent := p.MemoryPercent
	if percent <= 0 {
		percent = 25
	}
	if percent > 100 {
		percent = 100
	}

	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		return DefaultMemoryBudget
	}
	return limit / 100 * int64(percent)
}

// EffectiveRetention resolves the disk retention period, applying the
// default when unset.
func (p Policy) EffectiveRetention() time.Duration {
	if p.Retention <= 0 {
		return 7 * 24 * time.Hour
	}
	return p.Retention
}
