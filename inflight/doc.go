// Package inflight deduplicates concurrent fetches of the same key.
//
// At most one fetch runs per key; callers arriving while it runs
// attach as waiters and share the outcome. Completion removes the
// record, so a later request for the same key fetches again.
package inflight
