package loader

import (
	"context"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/imageloader/bitmap"
	"github.com/jonwraymond/imageloader/cache"
	"github.com/jonwraymond/imageloader/display"
	"github.com/jonwraymond/imageloader/fetch"
	"github.com/jonwraymond/imageloader/observe"
	"github.com/jonwraymond/imageloader/request"
)

// task carries one load request through the pipeline.
type task struct {
	requestID string
	desc      request.Descriptor
	key       request.Key
	binding   display.Binding
}

func (t *task) meta() observe.LoadMeta {
	return observe.LoadMeta{
		RequestID: t.requestID,
		URL:       t.desc.URL,
		Key:       t.key.Short(),
	}
}

// Load submits a request to show the descriptor's image on target.
//
// It never blocks on I/O. The memory tier is consulted synchronously
// (a hit is presented before Load returns); every slower stage - disk,
// network, decode - runs on a goroutine. The outcome arrives as a
// Delivery through the Presenter and any registered listeners, never
// through Load's return value: Load errors only on a malformed
// descriptor or a closed loader.
//
// The pipeline honors ctx. Cancelling it abandons this request's
// interest; a fetch shared with other requests keeps running for them.
func (l *Loader) Load(ctx context.Context, d request.Descriptor, target display.Target) error {
	if err := d.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.wg.Add(1)
	l.mu.Unlock()

	t := &task{
		requestID: uuid.NewString(),
		desc:      d,
		key:       request.Derive(d, l.keys),
		binding:   display.Bind(target, d.URL),
	}

	// The memory tier is a map lookup, cheap enough to answer on the
	// caller's goroutine.
	if img, ok := l.memory.Get(t.key); ok {
		defer l.wg.Done()
		l.metrics.RecordCacheLookup(ctx, cache.TierMemory.String(), true)
		l.complete(ctx, t, func(context.Context) display.Delivery {
			return l.terminal(t, img, display.SourceMemory, nil)
		})
		return nil
	}
	l.metrics.RecordCacheLookup(ctx, cache.TierMemory.String(), false)

	go func() {
		defer l.wg.Done()
		if t.desc.HasPreview() {
			l.tryPreview(ctx, t)
		}
		l.complete(ctx, t, func(ctx context.Context) display.Delivery {
			return l.resolve(ctx, t)
		})
	}()
	return nil
}

// complete runs the resolution under the telemetry middleware and
// hands its delivery to the presenter and listeners.
func (l *Loader) complete(ctx context.Context, t *task, resolve func(context.Context) display.Delivery) {
	run := l.middleware.Wrap(func(ctx context.Context, _ observe.LoadMeta) (observe.LoadResult, error) {
		d := resolve(ctx)
		l.deliver(d)
		return observe.LoadResult{State: d.State.String(), Source: d.Source.String()}, d.Err
	})
	_, _ = run(ctx, t.meta())
}

// resolve walks the slow stages of the pipeline: disk, the shared
// fetch, decode, and cache population. It always returns a terminal
// delivery.
func (l *Loader) resolve(ctx context.Context, t *task) display.Delivery {
	opts := l.bitmapOptions(t.desc)

	img, tier, err := l.tiered.Get(ctx, t.key, opts)
	if err != nil {
		// A broken tier degrades to a miss; the network can still
		// serve the request.
		l.logger.Warn(ctx, "cache lookup degraded to miss",
			observe.Field{Key: "cache.key", Value: t.key.Short()},
			observe.Field{Key: "error", Value: err.Error()})
	}
	if img != nil {
		l.metrics.RecordCacheLookup(ctx, tier.String(), true)
		return l.terminal(t, img, tierSource(tier), nil)
	}
	l.metrics.RecordCacheLookup(ctx, cache.TierDisk.String(), false)

	if t.desc.UseCacheOnly {
		return l.terminal(t, nil, display.SourceNone, ErrCacheOnlyMiss)
	}
	if t.desc.URL == "" {
		return l.terminal(t, nil, display.SourceNone, fetch.ErrMissingURL)
	}

	res, err := l.flights.Do(ctx, t.key, func(ctx context.Context) ([]byte, error) {
		return l.fetchOrigin(ctx, t.desc.URL)
	})
	if err != nil {
		return l.terminal(t, nil, display.SourceNone, err)
	}

	img, err = bitmap.Decode(res.Data, opts)
	if err != nil {
		return l.terminal(t, nil, display.SourceNone, err)
	}

	if err := l.tiered.Put(ctx, t.key, img, res.Data); err != nil {
		// Losing the disk copy costs a refetch later, not this load.
		l.logger.Warn(ctx, "cache write failed",
			observe.Field{Key: "cache.key", Value: t.key.Short()},
			observe.Field{Key: "error", Value: err.Error()})
	}
	l.saveThumbnail(ctx, t, img)

	return l.terminal(t, img, display.SourceNetwork, nil)
}

// fetchOrigin runs one origin fetch under the concurrency limiter.
func (l *Loader) fetchOrigin(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := l.limiter.Do(ctx, func(ctx context.Context) error {
		start := time.Now()
		b, err := l.fetcher.Fetch(ctx, url)
		l.metrics.RecordFetch(ctx, time.Since(start), int64(len(b)), err)
		data = b
		return err
	})
	return data, err
}

// tryPreview delivers a cached preview ahead of the full-size result.
// Misses are silent: a preview never triggers its own fetch.
func (l *Loader) tryPreview(ctx context.Context, t *task) {
	p := t.desc.Preview()
	key := request.DerivePreview(t.desc, l.keys)
	meta := observe.LoadMeta{
		RequestID: t.requestID,
		URL:       p.URL,
		Key:       key.Short(),
		Preview:   true,
	}

	img, tier, err := l.tiered.Get(ctx, key, l.bitmapOptions(p))
	if err != nil {
		l.logger.Debug(ctx, "preview lookup failed",
			observe.Field{Key: "cache.key", Value: key.Short()},
			observe.Field{Key: "error", Value: err.Error()})
	}
	if img == nil {
		return
	}
	l.metrics.RecordCacheLookup(ctx, tier.String(), true)

	if !t.binding.Valid() {
		l.logger.WithLoad(meta).Debug(ctx, "preview suppressed")
		return
	}

	l.present(display.Delivery{
		RequestID: t.requestID,
		URL:       p.URL,
		State:     display.StateDelivered,
		Image:     img,
		Preview:   true,
		Source:    tierSource(tier),
	})
	l.logger.WithLoad(meta).Debug(ctx, "preview delivered")
}

// saveThumbnail persists a preview-size copy of a fetched image under
// its preview key, so the next pass over a list renders the preview
// from cache.
func (l *Loader) saveThumbnail(ctx context.Context, t *task, img image.Image) {
	if !l.config.SaveThumbnails || !t.desc.HasPreview() {
		return
	}
	p := t.desc.Preview()
	if p.TargetWidth <= 0 || p.TargetHeight <= 0 {
		return
	}

	thumb := bitmap.Resize(img, bitmap.Options{
		TargetWidth:  p.TargetWidth,
		TargetHeight: p.TargetHeight,
	})
	encoded, err := bitmap.EncodePNG(thumb)
	if err != nil {
		l.logger.Debug(ctx, "thumbnail encode failed",
			observe.Field{Key: "error", Value: err.Error()})
		return
	}

	key := request.DerivePreview(t.desc, l.keys)
	if err := l.tiered.Put(ctx, key, thumb, encoded); err != nil {
		l.logger.Warn(ctx, "thumbnail write failed",
			observe.Field{Key: "cache.key", Value: key.Short()},
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// terminal builds the final delivery for a task, re-validating the
// binding last. A target rebound while the load ran wins over both
// success and failure: the delivery is suppressed and carries neither
// image nor error.
func (l *Loader) terminal(t *task, img image.Image, source display.Source, err error) display.Delivery {
	d := display.Delivery{
		RequestID: t.requestID,
		URL:       t.desc.URL,
		Source:    source,
	}
	switch {
	case !t.binding.Valid():
		d.State = display.StateSuppressed
	case err != nil:
		d.State = display.StateFailed
		d.Err = err
	default:
		d.State = display.StateDelivered
		d.Image = img
	}
	return d
}

// deliver presents a terminal delivery and notifies listeners.
// Suppressed deliveries skip the presenter.
func (l *Loader) deliver(d display.Delivery) {
	if d.State != display.StateSuppressed {
		l.present(d)
	}
	l.notify(d)
}

func (l *Loader) present(d display.Delivery) {
	l.scheduler.Schedule(func() { l.presenter.Present(d) })
}

// bitmapOptions maps a descriptor's dimensions onto decode options.
func (l *Loader) bitmapOptions(d request.Descriptor) bitmap.Options {
	return bitmap.Options{
		TargetWidth:           d.TargetWidth,
		TargetHeight:          d.TargetHeight,
		AllowUpsampling:       l.config.AllowUpsampling,
		AlwaysUseOriginalSize: l.config.AlwaysUseOriginalSize,
	}
}

// tierSource maps a cache tier to its delivery source.
func tierSource(tier cache.Tier) display.Source {
	switch tier {
	case cache.TierMemory:
		return display.SourceMemory
	case cache.TierDisk:
		return display.SourceDisk
	default:
		return display.SourceNone
	}
}
