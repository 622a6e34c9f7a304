package health

import (
	"context"
	"image"
	"testing"

	"github.com/jonwraymond/imageloader/cache"
	"github.com/jonwraymond/imageloader/request"
)

// testImage returns a decoded image costing w*h*4 bytes in the store.
func testImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestNewMemoryStoreChecker(t *testing.T) {
	checker := NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{})

	if checker.config.WarningThreshold != 0.8 {
		t.Errorf("WarningThreshold = %v, want 0.8", checker.config.WarningThreshold)
	}
	if checker.config.CriticalThreshold != 0.95 {
		t.Errorf("CriticalThreshold = %v, want 0.95", checker.config.CriticalThreshold)
	}
}

func TestNewMemoryStoreChecker_CustomThresholds(t *testing.T) {
	checker := NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{
		WarningThreshold:  0.7,
		CriticalThreshold: 0.9,
	})

	if checker.config.WarningThreshold != 0.7 {
		t.Errorf("WarningThreshold = %v, want 0.7", checker.config.WarningThreshold)
	}
	if checker.config.CriticalThreshold != 0.9 {
		t.Errorf("CriticalThreshold = %v, want 0.9", checker.config.CriticalThreshold)
	}
}

func TestNewMemoryStoreChecker_InvalidThresholds(t *testing.T) {
	// Invalid warning threshold
	checker := NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{
		WarningThreshold: 1.5, // Invalid
	})
	if checker.config.WarningThreshold != 0.8 {
		t.Errorf("Invalid warning should default to 0.8, got %v", checker.config.WarningThreshold)
	}

	// Critical less than warning
	checker = NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{
		WarningThreshold:  0.9,
		CriticalThreshold: 0.7,
	})
	if checker.config.CriticalThreshold <= checker.config.WarningThreshold {
		t.Error("Critical threshold should be adjusted to be > warning threshold")
	}
}

func TestMemoryStoreChecker_Name(t *testing.T) {
	checker := NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{})

	if checker.Name() != "memory-store" {
		t.Errorf("Name() = %v, want 'memory-store'", checker.Name())
	}
}

func TestMemoryStoreChecker_Healthy(t *testing.T) {
	store := cache.NewBoundedLRU(10000)
	_ = store.Put("aabb", testImage(10, 10)) // 400 bytes, 4%

	checker := NewMemoryStoreChecker(store, MemoryStoreCheckerConfig{})
	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy: %s", result.Status, result.Message)
	}
	if result.Details == nil {
		t.Fatal("Details should not be nil")
	}
	if result.Details["entries"] != 1 {
		t.Errorf("Details[entries] = %v, want 1", result.Details["entries"])
	}
	if result.Details["bytes"] != int64(400) {
		t.Errorf("Details[bytes] = %v, want 400", result.Details["bytes"])
	}
	if result.Details["budget"] != int64(10000) {
		t.Errorf("Details[budget] = %v, want 10000", result.Details["budget"])
	}
}

func TestMemoryStoreChecker_Degraded(t *testing.T) {
	store := cache.NewBoundedLRU(1000)
	_ = store.Put("aabb", testImage(10, 22)) // 880 bytes, 88%

	checker := NewMemoryStoreChecker(store, MemoryStoreCheckerConfig{})
	result := checker.Check(context.Background())

	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded: %s", result.Status, result.Message)
	}
}

func TestMemoryStoreChecker_Unhealthy(t *testing.T) {
	store := cache.NewBoundedLRU(1000)
	_ = store.Put("aabb", testImage(10, 24)) // 960 bytes, 96%

	checker := NewMemoryStoreChecker(store, MemoryStoreCheckerConfig{})
	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy: %s", result.Status, result.Message)
	}
	if result.Error != ErrCheckFailed {
		t.Errorf("Error = %v, want ErrCheckFailed", result.Error)
	}
}

func TestMemoryStoreChecker_HitRate(t *testing.T) {
	store := cache.NewBoundedLRU(10000)
	_ = store.Put("aabb", testImage(10, 10))
	store.Get("aabb") // hit
	store.Get("ccdd") // miss

	checker := NewMemoryStoreChecker(store, MemoryStoreCheckerConfig{})
	result := checker.Check(context.Background())

	if result.Details["hit_rate"] != 0.5 {
		t.Errorf("Details[hit_rate] = %v, want 0.5", result.Details["hit_rate"])
	}
}

func TestMemoryStoreChecker_NoLookupsOmitsHitRate(t *testing.T) {
	checker := NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{})
	result := checker.Check(context.Background())

	if _, ok := result.Details["hit_rate"]; ok {
		t.Error("hit_rate should be omitted before any lookups")
	}
}

// unbudgetedStore reports a zero budget, which a BoundedLRU never does.
type unbudgetedStore struct{}

func (unbudgetedStore) Get(request.Key) (image.Image, bool) { return nil, false }
func (unbudgetedStore) Put(request.Key, image.Image) error  { return nil }
func (unbudgetedStore) Remove(request.Key)                  {}
func (unbudgetedStore) EvictAll()                           {}
func (unbudgetedStore) Stats() cache.Stats                  { return cache.Stats{} }

func TestMemoryStoreChecker_Unbudgeted(t *testing.T) {
	checker := NewMemoryStoreChecker(unbudgetedStore{}, MemoryStoreCheckerConfig{})
	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if result.Message != "memory store unbudgeted" {
		t.Errorf("Message = %v, want 'memory store unbudgeted'", result.Message)
	}
	if _, ok := result.Details["usage_percent"]; ok {
		t.Error("usage_percent should be omitted without a budget")
	}
}

func TestMemoryStoreChecker_ContextCancelled(t *testing.T) {
	checker := NewMemoryStoreChecker(cache.NewBoundedLRU(1024), MemoryStoreCheckerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checker.Check(ctx)

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy for cancelled context", result.Status)
	}
	if result.Error != context.Canceled {
		t.Errorf("Error = %v, want context.Canceled", result.Error)
	}
}
