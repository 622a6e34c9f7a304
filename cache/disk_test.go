package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/imageloader/request"
)

func TestDiskStore_PutGet(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	ctx := context.Background()

	key := request.Derive(request.Descriptor{URL: "http://example.com/a.png"}, request.DefaultKeyPolicy())
	data := []byte("encoded image bytes")

	if err := s.Put(ctx, key, data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestDiskStore_GetMissing(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	_, err = s.Get(context.Background(), "aabbccdd")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDiskStore_Overwrite(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	ctx := context.Background()

	_ = s.Put(ctx, "aabb", []byte("first"))
	if err := s.Put(ctx, "aabb", []byte("second")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "aabb")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get() = %q, want %q", got, "second")
	}
}

func TestDiskStore_RemoveIdempotent(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	ctx := context.Background()

	_ = s.Put(ctx, "aabb", []byte("data"))
	if err := s.Remove(ctx, "aabb"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := s.Get(ctx, "aabb"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(removed) error = %v, want ErrNotFound", err)
	}

	// Second remove is a no-op.
	if err := s.Remove(ctx, "aabb"); err != nil {
		t.Errorf("Remove(missing) error = %v, want nil", err)
	}
}

// TestDiskStore_BadKey verifies non-digest keys are rejected before
// touching the filesystem.
func TestDiskStore_BadKey(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		key  request.Key
	}{
		{"empty", ""},
		{"traversal", "../../etc/passwd"},
		{"separator", "aa/bb"},
		{"uppercase", "AABB"},
		{"non-hex", "zzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Get(ctx, tt.key); !errors.Is(err, ErrBadKey) {
				t.Errorf("Get(%q) error = %v, want ErrBadKey", tt.key, err)
			}
			if err := s.Put(ctx, tt.key, []byte("x")); !errors.Is(err, ErrBadKey) {
				t.Errorf("Put(%q) error = %v, want ErrBadKey", tt.key, err)
			}
		})
	}
}

// TestDiskStore_NoTempLeftovers verifies Put leaves exactly the final
// entry behind.
func TestDiskStore_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir)
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	_ = s.Put(context.Background(), "aabbcc", []byte("data"))

	dirents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(dirents) != 1 {
		t.Fatalf("directory holds %d files, want 1", len(dirents))
	}
	if name := dirents[0].Name(); name != "aabbcc" || strings.HasPrefix(name, tempPrefix) {
		t.Errorf("leftover file %q, want final entry only", name)
	}
}

func TestNewDiskStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "images")
	if _, err := NewDiskStore(dir); err != nil {
		t.Fatalf("NewDiskStore(nested) error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("store directory not created: %v", err)
	}
}

// TestNewDiskStore_Unusable verifies construction fails up front when
// the directory cannot be used.
func TestNewDiskStore_Unusable(t *testing.T) {
	// A regular file where the directory should be.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
	}{
		{"empty path", ""},
		{"path is a file", blocked},
		{"parent is a file", filepath.Join(blocked, "sub")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDiskStore(tt.dir); !errors.Is(err, ErrDirNotWritable) {
				t.Errorf("NewDiskStore(%q) error = %v, want ErrDirNotWritable", tt.dir, err)
			}
		})
	}
}

func TestDiskStore_ContextCancelled(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Get(ctx, "aabb"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get(cancelled) error = %v, want context.Canceled", err)
	}
	if err := s.Put(ctx, "aabb", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Put(cancelled) error = %v, want context.Canceled", err)
	}
}
