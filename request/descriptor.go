package request

import "errors"

// Sentinel errors for descriptor validation.
var (
	ErrNegativeDimension = errors.New("request: negative dimension")
)

// Descriptor describes one requested image. It is a value type and is
// immutable once created: the load pipeline copies it freely between
// goroutines without synchronization.
//
// An empty URL is a legal descriptor; it fails at load time with a
// not-found flavored error so callers can distinguish "no image
// configured" from a network failure.
type Descriptor struct {
	// URL is the canonical image URL.
	URL string

	// PreviewURL optionally names a smaller variant of the same image.
	// When set, a cached preview may be delivered ahead of the full
	// size result.
	PreviewURL string

	// TargetWidth and TargetHeight are the desired display dimensions.
	// Zero means "no resizing on that axis".
	TargetWidth  int
	TargetHeight int

	// PreviewWidth and PreviewHeight are the dimensions used for the
	// preview variant and for thumbnail persistence.
	PreviewWidth  int
	PreviewHeight int

	// UseCacheOnly restricts the load to the cache tiers. A request
	// that misses both memory and disk fails without touching the
	// network.
	UseCacheOnly bool
}

// Validate checks the descriptor for constructional mistakes.
// Dimensions must not be negative; everything else is legal.
func (d Descriptor) Validate() error {
	if d.TargetWidth < 0 || d.TargetHeight < 0 || d.PreviewWidth < 0 || d.PreviewHeight < 0 {
		return ErrNegativeDimension
	}
	return nil
}

// HasPreview reports whether the descriptor declares a preview variant.
func (d Descriptor) HasPreview() bool {
	return d.PreviewURL != ""
}

// Preview returns the descriptor for the preview variant: the preview
// URL with the preview dimensions promoted to target dimensions.
func (d Descriptor) Preview() Descriptor {
	return Descriptor{
		URL:          d.PreviewURL,
		TargetWidth:  d.PreviewWidth,
		TargetHeight: d.PreviewHeight,
		UseCacheOnly: true,
	}
}
