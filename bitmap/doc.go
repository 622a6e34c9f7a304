// Package bitmap decodes fetched image bytes into displayable images
// and resizes them to a target bound. It is a pure transformation
// layer: no caching, no I/O.
package bitmap
