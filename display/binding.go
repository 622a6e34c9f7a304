package display

import "sync"

// Target is a display slot that may be rebound while a load runs.
//
// Contract:
// - Concurrency: CurrentURL may be called from any goroutine.
// - Staleness: the slot answers with what it wants right now, not
//   what was requested earlier.
type Target interface {
	// CurrentURL returns the URL the slot wants right now.
	CurrentURL() string
}

// Binding captures which URL a target wanted when a load began.
// The zero Binding has no target and never goes stale.
type Binding struct {
	target Target
	url    string
}

// Bind snapshots target's current interest in url.
func Bind(target Target, url string) Binding {
	return Binding{target: target, url: url}
}

// URL returns the bound URL.
func (b Binding) URL() string {
	return b.url
}

// Target returns the bound target, nil for target-less loads.
func (b Binding) Target() Target {
	return b.target
}

// Valid reports whether the target still wants the bound URL. A
// binding without a target is always valid.
func (b Binding) Valid() bool {
	if b.target == nil {
		return true
	}
	return b.target.CurrentURL() == b.url
}

// Slot is a mutable Target for callers without a view system of their
// own. Rebinding a Slot to a new URL invalidates loads bound to the
// old one.
type Slot struct {
	mu  sync.Mutex
	url string
}

// NewSlot creates a slot wanting url.
func NewSlot(url string) *Slot {
	return &Slot{url: url}
}

// SetURL rebinds the slot.
func (s *Slot) SetURL(url string) {
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
}

// CurrentURL returns the URL the slot wants right now.
func (s *Slot) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

var _ Target = (*Slot)(nil)
