// Package health provides health checking primitives for the image
// loader's cache tiers.
//
// This package implements a generic health checking framework used to
// monitor the components behind an image loading pipeline. It provides
// interfaces for defining health checks, diagnostics for the memory and
// disk stores, and an aggregator that combines results from multiple
// checkers.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Basic Usage
//
//	// Create a checker over the decoded-image tier
//	memCheck := health.NewMemoryStoreChecker(store, health.MemoryStoreCheckerConfig{
//	    WarningThreshold:  0.80,
//	    CriticalThreshold: 0.95,
//	})
//
//	// Check health
//	result := memCheck.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("Memory store critical: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to run a set of health checks together:
//
//	agg := health.NewAggregator()
//	agg.Register("memory-store", memChecker)
//	agg.Register("disk-store", diskChecker)
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// The package deliberately ships no HTTP handlers. The embedding host
// owns its endpoints and mounts these checkers behind whatever liveness
// or readiness surface it already serves.
package health
