package cache

import (
	"container/list"
	"image"
	"sync"

	"github.com/jonwraymond/imageloader/bitmap"
	"github.com/jonwraymond/imageloader/request"
)

// BoundedLRU is an in-memory store with a fixed byte budget.
// The least recently used entries are evicted when an insert would
// exceed the budget.
type BoundedLRU struct {
	budget int64

	mu      sync.Mutex
	bytes   int64
	order   *list.List // front is MRU, back is LRU
	entries map[request.Key]*list.Element

	hits      uint64
	misses    uint64
	evictions uint64
}

type lruEntry struct {
	key  request.Key
	img  image.Image
	size int64
}

// NewBoundedLRU creates a memory store holding at most budget bytes of
// decoded pixel data. A non-positive budget uses the default policy's.
func NewBoundedLRU(budget int64) *BoundedLRU {
	if budget <= 0 {
		budget = DefaultPolicy().EffectiveBudget()
	}
	return &BoundedLRU{
		budget:  budget,
		order:   list.New(),
		entries: make(map[request.Key]*list.Element),
	}
}

// Get retrieves a decoded image and marks it most recently used.
func (s *BoundedLRU) Get(key request.Key) (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}
	s.order.MoveToFront(el)
	s.hits++
	return el.Value.(*lruEntry).img, true
}

// Put stores img under key, evicting from the LRU end until the store
// fits its budget again. An image larger than the whole budget is
// rejected with ErrEntryTooLarge rather than flushing the store.
func (s *BoundedLRU) Put(key request.Key, img image.Image) error {
	if img == nil {
		return nil
	}
	size := bitmap.ByteSize(img)
	if size > s.budget {
		return ErrEntryTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		entry := el.Value.(*lruEntry)
		s.bytes += size - entry.size
		entry.img = img
		entry.size = size
		s.order.MoveToFront(el)
	} else {
		el := s.order.PushFront(&lruEntry{key: key, img: img, size: size})
		s.entries[key] = el
		s.bytes += size
	}

	for s.bytes > s.budget {
		s.evictOldest()
	}
	return nil
}

// Remove drops a single entry. Idempotent - no effect on miss.
func (s *BoundedLRU) Remove(key request.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return
	}
	entry := el.Value.(*lruEntry)
	s.order.Remove(el)
	delete(s.entries, key)
	s.bytes -= entry.size
}

// EvictAll drops every entry.
func (s *BoundedLRU) EvictAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := uint64(s.order.Len())
	s.order.Init()
	s.entries = make(map[request.Key]*list.Element)
	s.bytes = 0
	s.evictions += evicted
}

// TrimTo evicts from the LRU end until the store holds at most
// maxBytes. A non-positive maxBytes empties the store.
func (s *BoundedLRU) TrimTo(maxBytes int64) {
	if maxBytes < 0 {
		maxBytes = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.bytes > maxBytes {
		s.evictOldest()
	}
}

// Stats reports current occupancy and lookup counters.
func (s *BoundedLRU) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Entries:   s.order.Len(),
		Bytes:     s.bytes,
		Budget:    s.budget,
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
}

// evictOldest removes the LRU entry. Caller holds mu.
func (s *BoundedLRU) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*lruEntry)
	s.order.Remove(el)
	delete(s.entries, entry.key)
	s.bytes -= entry.size
	s.evictions++
}

// Ensure BoundedLRU implements MemoryStore
var _ MemoryStore = (*BoundedLRU)(nil)
