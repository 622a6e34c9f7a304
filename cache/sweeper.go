package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonwraymond/imageloader/request"
)

// SweepResult summarizes one expiration pass over a disk store.
type SweepResult struct {
	Scanned   int
	Deleted   int
	Failed    int
	Reclaimed int64
}

// Sweep deletes entries whose last write is older than retention.
// Entries written exactly at the cutoff survive. In-progress temp
// files are left alone. A non-positive retention uses the default
// policy's.
func (s *DiskStore) Sweep(ctx context.Context, retention time.Duration) (SweepResult, error) {
	var res SweepResult

	if retention <= 0 {
		retention = DefaultPolicy().EffectiveRetention()
	}
	cutoff := time.Now().Add(-retention)

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return res, fmt.Errorf("cache: sweep %s: %w", s.dir, err)
	}

	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			continue
		}
		res.Scanned++

		info, err := d.Info()
		if err != nil {
			res.Failed++
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		unlock := s.lockEntry(request.Key(d.Name()))
		err = os.Remove(filepath.Join(s.dir, d.Name()))
		unlock()
		if err != nil {
			res.Failed++
			continue
		}
		res.Deleted++
		res.Reclaimed += info.Size()
	}
	return res, nil
}

// Sweeper periodically expires old disk entries.
type Sweeper struct {
	// Store is the disk store to sweep.
	Store *DiskStore

	// Retention is passed to each Sweep. Zero uses the default.
	Retention time.Duration

	// Interval between passes. Default: 1 hour.
	Interval time.Duration

	// OnSweep, if set, observes every pass and its error.
	OnSweep func(SweepResult, error)
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *Sweeper) sweepOnce(ctx context.Context) {
	res, err := w.Store.Sweep(ctx, w.Retention)
	if w.OnSweep != nil {
		w.OnSweep(res, err)
	}
}
