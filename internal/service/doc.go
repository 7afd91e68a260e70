// Package service composes the decode scheduler and the artifact cache
// into the operations a viewer layer calls: fetch an artifact now, warm
// one up for later, and invalidate what is cached for a source. It owns
// the serialization of cache access that the cache itself does not
// provide, and announces finished artifacts through the events package.
package service
