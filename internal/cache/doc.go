// Package cache provides a bounded, size-aware, least-recently-used
// key/value store. It is the in-memory artifact cache for decoded
// thumbnails and previews, keeping total resident bytes under a fixed
// capacity by evicting the entries that have gone longest without access.
//
// The cache performs no locking of its own. Callers that share a cache
// across goroutines are responsible for serializing access to it.
package cache
