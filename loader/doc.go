// Package loader coordinates the full life of an image request: cache
// lookups, deduplicated network fetches, decoding, and delivery to a
// display target.
//
// A Loader owns a two-tier cache (decoded images in memory, encoded
// bytes on disk), a bounded origin fetcher, and an in-flight registry
// that collapses concurrent requests for the same image into a single
// fetch. Load never blocks its caller: the memory tier is consulted
// synchronously and everything slower runs on a goroutine.
//
// Construction is plain dependency injection; hosts create as many
// loaders as they need and typically share one across every call site
// that loads images:
//
//	ld, err := loader.New(loader.Config{CacheDir: dir},
//		loader.WithPresenter(presenter),
//	)
//	if err != nil {
//		return err
//	}
//	defer ld.Close()
//
//	ld.Load(ctx, request.Descriptor{
//		URL:          "https://img.example.com/cover.jpg",
//		TargetWidth:  256,
//		TargetHeight: 256,
//	}, slot)
//
// Each load is bound to its target at submission. When the result
// arrives, the binding is checked again: if the target was rebound to
// a different URL in the meantime, the stale result is quietly
// suppressed. Recycled display slots never flash images they no
// longer want.
package loader
