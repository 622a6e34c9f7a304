// Package request defines the immutable image request descriptor and
// the derivation of cache keys from it.
//
// A Descriptor carries everything the load pipeline needs to know about
// one requested image: the canonical URL, an optional preview URL, the
// desired dimensions, and the cache-only flag. Derive turns a
// Descriptor into a deterministic Key that addresses the memory cache,
// the disk cache, and the in-flight registry alike.
package request
