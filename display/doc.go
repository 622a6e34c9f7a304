// Package display models the delivery side of an image load.
//
// A Target is a display slot that may be rebound to a different URL
// while a load is still running. Bind captures what the slot wanted
// when the load began; at delivery time the binding is checked again
// and a stale result is suppressed instead of presented.
//
// Presenters receive the terminal Delivery for every request, and a
// Scheduler marshals presentation onto the goroutine that owns
// rendering.
package display
