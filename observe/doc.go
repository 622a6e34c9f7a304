// Package observe provides observability primitives for image loads.
//
// It is a pure instrumentation library: no fetching, no caching, no I/O
// beyond exporter setup. Consumers wire the observer into the loader or
// wrap load functions with the middleware.
package observe
