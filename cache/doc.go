// Package cache provides the two storage tiers for fetched images.
//
// The memory tier holds decoded images under a byte budget, the disk
// tier holds encoded bytes with atomic writes, and a sweeper expires
// disk entries by age. Tiered combines both into one lookup path.
package cache
