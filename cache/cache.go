package cache

import (
	"errors"
	"image"

	"github.com/jonwraymond/imageloader/request"
)

// Sentinel errors for store operations.
var (
	ErrNotFound       = errors.New("cache: entry not found")
	ErrEntryTooLarge  = errors.New("cache: entry exceeds memory budget")
	ErrBadKey         = errors.New("cache: malformed key")
	ErrDirNotWritable = errors.New("cache: directory is not writable")
)

// Tier identifies which storage tier served a lookup.
type Tier int

const (
	// TierNone means no tier had the entry.
	TierNone Tier = iota

	// TierMemory means the decoded-image tier served the lookup.
	TierMemory

	// TierDisk means the entry was read and decoded from disk.
	TierDisk
)

// String returns the tier name for logs and metrics.
func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierDisk:
		return "disk"
	default:
		return "none"
	}
}

// MemoryStore is the interface for the decoded-image tier.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss.
// - Budget: Put may evict older entries to stay within budget.
type MemoryStore interface {
	// Get retrieves a decoded image. Returns (nil, false) on miss.
	Get(key request.Key) (image.Image, bool)

	// Put stores a decoded image, evicting older entries as needed.
	// Images larger than the whole budget are rejected with
	// ErrEntryTooLarge.
	Put(key request.Key, img image.Image) error

	// Remove drops a single entry. Idempotent - no error on miss.
	Remove(key request.Key)

	// EvictAll drops every entry.
	EvictAll()

	// Stats reports current occupancy and lookup counters.
	Stats() Stats
}

// Stats describes memory-tier occupancy and traffic.
type Stats struct {
	Entries   int
	Bytes     int64
	Budget    int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}
