package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonwraymond/imageloader/request"
)

// Temp files carry this prefix so in-progress writes are never served
// or swept.
const (
	tempPrefix  = ".img-"
	tempPattern = tempPrefix + "*"
)

// DiskStore persists encoded images under a single directory, one file
// per key. Writes go through a temp file and rename so readers never
// observe a partial entry.
type DiskStore struct {
	dir string

	mu    sync.Mutex
	locks map[request.Key]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// NewDiskStore opens (creating if needed) the store directory and
// probes that it accepts writes. A directory that cannot be created or
// written fails construction with ErrDirNotWritable.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrDirNotWritable)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cache: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}

	// Probe now so a read-only directory fails construction rather
	// than the first Put.
	probe, err := os.CreateTemp(abs, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &DiskStore{
		dir:   abs,
		locks: make(map[request.Key]*entryLock),
	}, nil
}

// Dir returns the absolute store directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Get reads the encoded bytes for key. Returns ErrNotFound when no
// entry exists.
func (s *DiskStore) Get(ctx context.Context, key request.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cache: read %s: %w", key.Short(), err)
	}
	return data, nil
}

// Put writes the encoded bytes for key atomically and stamps the entry
// with the current time for retention accounting.
func (s *DiskStore) Put(ctx context.Context, key request.Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(key)
	if err != nil {
		return err
	}

	unlock := s.lockEntry(key)
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return fmt.Errorf("cache: write %s: %w", key.Short(), err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: write %s: %w", key.Short(), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: write %s: %w", key.Short(), err)
	}

	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("cache: stamp %s: %w", key.Short(), err)
	}
	return nil
}

// Remove deletes the entry for key. Idempotent - no error on miss.
func (s *DiskStore) Remove(ctx context.Context, key request.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(key)
	if err != nil {
		return err
	}

	unlock := s.lockEntry(key)
	defer unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: remove %s: %w", key.Short(), err)
	}
	return nil
}

// lockEntry serializes writers of a single key. The returned func
// releases the lock and drops it once unreferenced.
func (s *DiskStore) lockEntry(key request.Key) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

// path maps a key to its file. Keys are hex digests; anything else is
// rejected so a hostile key can never escape the store directory.
func (s *DiskStore) path(key request.Key) (string, error) {
	if key == "" {
		return "", ErrBadKey
	}
	for _, r := range string(key) {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return "", ErrBadKey
		}
	}
	return filepath.Join(s.dir, string(key)), nil
}
