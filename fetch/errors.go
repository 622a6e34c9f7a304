package fetch

import "errors"

// Sentinel errors for fetch operations.
var (
	// ErrMissingURL is returned when a fetch is requested with no URL.
	ErrMissingURL = errors.New("fetch: missing url")

	// ErrInvalidURL is returned for URLs that cannot be requested.
	ErrInvalidURL = errors.New("fetch: invalid url")

	// ErrNotFound is returned when the origin answers 404.
	ErrNotFound = errors.New("fetch: image not found")

	// ErrStatus is returned for any other non-2xx origin answer.
	ErrStatus = errors.New("fetch: unexpected status")

	// ErrTimeout is returned when connecting or reading times out.
	ErrTimeout = errors.New("fetch: timed out")

	// ErrRedirectLimit is returned when the origin redirects more
	// times than allowed.
	ErrRedirectLimit = errors.New("fetch: too many redirects")

	// ErrTooLarge is returned when the response body exceeds the
	// configured cap.
	ErrTooLarge = errors.New("fetch: response too large")

	// ErrLimiterFull is returned when no fetch slot is available.
	ErrLimiterFull = errors.New("fetch: limiter at capacity")
)
