package display

import (
	"testing"
	"time"
)

func TestSynchronousScheduler(t *testing.T) {
	ran := false
	SynchronousScheduler{}.Schedule(func() { ran = true })
	if !ran {
		t.Error("callback did not run inline")
	}
}

// TestSerialScheduler_Order verifies callbacks run one at a time in
// submission order.
func TestSerialScheduler_Order(t *testing.T) {
	s := NewSerialScheduler(8)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		s.Schedule(func() { got = append(got, i) })
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if len(got) != 100 {
		t.Fatalf("ran %d callbacks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("callback %d ran out of order (saw %d)", i, v)
		}
	}
}

// TestSerialScheduler_CloseDrains verifies Close waits for queued work.
func TestSerialScheduler_CloseDrains(t *testing.T) {
	s := NewSerialScheduler(16)

	done := make(chan struct{})
	s.Schedule(func() {
		time.Sleep(50 * time.Millisecond)
		close(done)
	})

	_ = s.Close()

	select {
	case <-done:
	default:
		t.Error("Close returned before queued callback finished")
	}
}

func TestSerialScheduler_ScheduleAfterClose(t *testing.T) {
	s := NewSerialScheduler(1)
	_ = s.Close()

	// Dropped, not panicking.
	s.Schedule(func() { t.Error("callback ran after Close") })

	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
