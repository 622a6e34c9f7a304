package health

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonwraymond/imageloader/cache"
)

// DiskStoreCheckerConfig configures the disk store checker.
type DiskStoreCheckerConfig struct {
	// Retention is the expiration period the sweeper enforces. When the
	// oldest entry is older than Retention plus SweepSlack the sweep is
	// overdue and the check degrades. Zero disables age checking.
	Retention time.Duration

	// SweepSlack is how far past Retention the oldest entry may age
	// before the check degrades. Default: 1 hour.
	SweepSlack time.Duration
}

// DiskStoreChecker checks reachability and occupancy of the on-disk tier.
type DiskStoreChecker struct {
	config DiskStoreCheckerConfig
	store  *cache.DiskStore
}

// NewDiskStoreChecker creates a checker over the given store.
func NewDiskStoreChecker(store *cache.DiskStore, config DiskStoreCheckerConfig) *DiskStoreChecker {
	if config.SweepSlack <= 0 {
		config.SweepSlack = time.Hour
	}
	return &DiskStoreChecker{config: config, store: store}
}

// Name returns the name of this checker.
func (d *DiskStoreChecker) Name() string {
	return "disk-store"
}

// Check probes the store directory for writability and scans entries
// for count, size, and age.
func (d *DiskStoreChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	dir := d.store.Dir()

	info, err := os.Stat(dir)
	if err != nil {
		return Unhealthy("store directory unreachable", err).WithDetails(map[string]any{
			"dir": dir,
		})
	}
	if !info.IsDir() {
		return Unhealthy("store path is not a directory", ErrCheckFailed).WithDetails(map[string]any{
			"dir": dir,
		})
	}

	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return Unhealthy("store directory not writable", err).WithDetails(map[string]any{
			"dir": dir,
		})
	}
	probe.Close()
	os.Remove(probe.Name())

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return Unhealthy("store directory unreadable", err).WithDetails(map[string]any{
			"dir": dir,
		})
	}

	var (
		entries    int
		totalBytes int64
		oldest     time.Time
	)
	for _, de := range dirents {
		// Dot-prefixed names are in-progress temp files, not entries.
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entries++
		totalBytes += fi.Size()
		if oldest.IsZero() || fi.ModTime().Before(oldest) {
			oldest = fi.ModTime()
		}
	}

	details := map[string]any{
		"dir":         dir,
		"entries":     entries,
		"total_bytes": totalBytes,
	}
	if !oldest.IsZero() {
		details["oldest_entry_age"] = time.Since(oldest).String()
	}

	if d.config.Retention > 0 && !oldest.IsZero() {
		if age := time.Since(oldest); age > d.config.Retention+d.config.SweepSlack {
			return Degraded(
				fmt.Sprintf("oldest entry is %s old, sweep overdue", age.Round(time.Second)),
			).WithDetails(details)
		}
	}

	return Healthy(fmt.Sprintf("%d entries on disk", entries)).WithDetails(details)
}
