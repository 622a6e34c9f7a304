package request

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Key is the deterministic identifier derived from a Descriptor. It
// addresses both cache tiers and the in-flight registry. The value is
// the lowercase hex SHA-256 of the normalized request input, so it is
// filesystem-safe by construction and collisions between unrelated
// URLs are cryptographically negligible.
type Key string

// String returns the full 64-character hex key.
func (k Key) String() string {
	return string(k)
}

// Short returns a 12-character prefix for log and span attributes.
func (k Key) Short() string {
	if len(k) <= 12 {
		return string(k)
	}
	return string(k[:12])
}

// KeyPolicy controls which parts of a request participate in the key.
type KeyPolicy struct {
	// IncludeQuery keeps the URL query string in the key. When false,
	// http://host/img.png?v=1 and ?v=2 share one cache entry.
	IncludeQuery bool

	// SizeVariant appends the target dimensions to the key, so the
	// same URL resized to different bounds caches separately.
	SizeVariant bool
}

// DefaultKeyPolicy returns the default policy: query included,
// dimensions not part of the key.
func DefaultKeyPolicy() KeyPolicy {
	return KeyPolicy{IncludeQuery: true}
}

// Derive computes the cache key for a descriptor under a policy.
// Pure and deterministic: the same descriptor and policy always yield
// the same key.
func Derive(d Descriptor, p KeyPolicy) Key {
	return deriveFrom(d.URL, d.TargetWidth, d.TargetHeight, p)
}

// DerivePreview computes the key for the descriptor's preview variant.
// Preview and full size are always independent keys: they name
// different URLs and never share cache entries or in-flight records.
func DerivePreview(d Descriptor, p KeyPolicy) Key {
	return deriveFrom(d.PreviewURL, d.PreviewWidth, d.PreviewHeight, p)
}

func deriveFrom(url string, width, height int, p KeyPolicy) Key {
	input := url
	if !p.IncludeQuery {
		input, _, _ = strings.Cut(input, "?")
	}
	if p.SizeVariant {
		input = fmt.Sprintf("%s|%dx%d", input, width, height)
	}
	sum := sha256.Sum256([]byte(input))
	return Key(hex.EncodeToString(sum[:]))
}
