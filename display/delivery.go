package display

import "image"

// State classifies the outcome of one load request.
type State int

const (
	// StateDelivered means the image reached its target.
	StateDelivered State = iota + 1

	// StateSuppressed means the target moved on before the image
	// arrived; nothing was presented.
	StateSuppressed

	// StateFailed means the load failed; Delivery.Err says why.
	StateFailed
)

// String returns the state name for logs and metrics.
func (s State) String() string {
	switch s {
	case StateDelivered:
		return "delivered"
	case StateSuppressed:
		return "suppressed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Source names where a delivered image came from.
type Source int

const (
	SourceNone Source = iota
	SourceMemory
	SourceDisk
	SourceNetwork
)

// String returns the source name for logs and metrics.
func (s Source) String() string {
	switch s {
	case SourceMemory:
		return "memory"
	case SourceDisk:
		return "disk"
	case SourceNetwork:
		return "network"
	default:
		return "none"
	}
}

// Delivery is the terminal report for one load request. Exactly one
// non-preview Delivery is produced per request.
type Delivery struct {
	// RequestID identifies the load this delivery answers.
	RequestID string

	// URL is the image URL the load was bound to.
	URL string

	// State says whether the image was presented, suppressed, or
	// failed.
	State State

	// Image is the decoded image when State is StateDelivered, nil
	// otherwise.
	Image image.Image

	// Err is the failure when State is StateFailed, nil otherwise.
	Err error

	// Preview marks deliveries of the low-cost preview variant that
	// precede the full image.
	Preview bool

	// Source names the tier that produced the image.
	Source Source
}

// Presenter receives terminal deliveries.
//
// Contract:
// - Concurrency: Present is invoked via the loader's Scheduler, one
//   delivery at a time per scheduler.
// - Blocking: Present should return promptly; slow handlers stall
//   later deliveries on the same scheduler.
type Presenter interface {
	Present(d Delivery)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(Delivery)

// Present calls f.
func (f PresenterFunc) Present(d Delivery) {
	f(d)
}

// NoopPresenter discards every delivery.
type NoopPresenter struct{}

// Present does nothing.
func (NoopPresenter) Present(Delivery) {}

var (
	_ Presenter = PresenterFunc(nil)
	_ Presenter = NoopPresenter{}
)
