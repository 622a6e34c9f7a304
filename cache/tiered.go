package cache

import (
	"context"
	"errors"
	"image"

	"github.com/jonwraymond/imageloader/bitmap"
	"github.com/jonwraymond/imageloader/request"
)

// Tiered combines the memory and disk stores into one lookup path.
// Get consults memory first, then disk; disk hits are decoded and
// promoted into memory. Either tier may be nil.
type Tiered struct {
	Memory MemoryStore
	Disk   *DiskStore
}

// Get returns the image for key and the tier that served it. A nil
// image with TierNone is a miss. A non-nil error alongside a miss is
// diagnostic: it names why a lower tier could not serve, but the
// caller should still treat the lookup as a miss and refetch.
//
// A disk entry that no longer decodes is evicted so the next lookup
// goes straight to the network.
func (t *Tiered) Get(ctx context.Context, key request.Key, opts bitmap.Options) (image.Image, Tier, error) {
	if t.Memory != nil {
		if img, ok := t.Memory.Get(key); ok {
			return img, TierMemory, nil
		}
	}
	if t.Disk == nil {
		return nil, TierNone, nil
	}

	data, err := t.Disk.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, TierNone, nil
		}
		return nil, TierNone, err
	}

	img, err := bitmap.Decode(data, opts)
	if err != nil {
		_ = t.Disk.Remove(ctx, key)
		return nil, TierNone, err
	}

	if t.Memory != nil {
		_ = t.Memory.Put(key, img)
	}
	return img, TierDisk, nil
}

// Put stores a freshly fetched image in both tiers: the decoded form
// in memory and the encoded bytes on disk. A memory-tier rejection
// (e.g. an image over budget) is not an error; the disk write result
// is.
func (t *Tiered) Put(ctx context.Context, key request.Key, img image.Image, encoded []byte) error {
	if t.Memory != nil && img != nil {
		_ = t.Memory.Put(key, img)
	}
	if t.Disk != nil && len(encoded) > 0 {
		return t.Disk.Put(ctx, key, encoded)
	}
	return nil
}

// Remove drops key from both tiers.
func (t *Tiered) Remove(ctx context.Context, key request.Key) error {
	if t.Memory != nil {
		t.Memory.Remove(key)
	}
	if t.Disk != nil {
		return t.Disk.Remove(ctx, key)
	}
	return nil
}
