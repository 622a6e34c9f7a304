package display

import "sync"

// Scheduler marshals presentation callbacks onto the goroutine that
// owns rendering.
type Scheduler interface {
	// Schedule queues fn for execution.
	Schedule(fn func())
}

// SynchronousScheduler runs callbacks inline on the calling goroutine.
// Suitable when presenters are already safe to call from anywhere.
type SynchronousScheduler struct{}

// Schedule runs fn immediately.
func (SynchronousScheduler) Schedule(fn func()) {
	fn()
}

// SerialScheduler runs callbacks one at a time, in order, on a single
// dedicated goroutine, the way a UI loop would.
type SerialScheduler struct {
	mu     sync.Mutex
	closed bool
	queue  chan func()
	done   chan struct{}
}

// NewSerialScheduler starts the scheduler goroutine. buffer bounds how
// many callbacks may queue before Schedule blocks; non-positive uses
// 64.
func NewSerialScheduler(buffer int) *SerialScheduler {
	if buffer <= 0 {
		buffer = 64
	}
	s := &SerialScheduler{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for fn := range s.queue {
			fn()
		}
	}()
	return s
}

// Schedule queues fn in FIFO order. Calls after Close are dropped.
func (s *SerialScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue <- fn
}

// Close stops accepting callbacks, runs what is already queued, and
// returns once the queue is drained. Safe to call more than once.
func (s *SerialScheduler) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return nil
}

var (
	_ Scheduler = SynchronousScheduler{}
	_ Scheduler = (*SerialScheduler)(nil)
)
