package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stmtc233/rawviewer/internal/cache"
	"github.com/stmtc233/rawviewer/internal/decode"
	"github.com/stmtc233/rawviewer/internal/events"
	"github.com/stmtc233/rawviewer/internal/task"
)

// ArtifactCache is the cache type the service manages: decoded artifacts
// keyed by CacheKey strings, accounted by payload size.
type ArtifactCache = cache.Cache[string, *decode.Artifact]

// NewArtifactCache builds a cache bounded to maxBytes of decoded image
// data.
func NewArtifactCache(maxBytes int64) *ArtifactCache {
	return cache.New(maxBytes, cache.WithSizeFunc[string](func(a *decode.Artifact) int64 {
		return a.SizeBytes()
	}))
}

// CacheKey derives the cache and dedup key for a request. Requests with
// equal keys are the same underlying work, so the scheduler collapses them
// into one decode. Thumbnails ignore the half-size hint; both hint values
// name the same artifact.
func CacheKey(req decode.Request) string {
	if req.Kind == decode.KindPreview && req.HalfSize {
		return fmt.Sprintf("%s|half|%s", req.Kind, req.Source)
	}
	return fmt.Sprintf("%s|%s", req.Kind, req.Source)
}

// ThumbnailService is the interface the viewer layer consumes for decoded
// artifacts.
type ThumbnailService interface {
	// Fetch returns the artifact for req, from cache when resident,
	// otherwise decoded at high priority. A fetch that finds the same
	// request already in flight, for example as a pre-warm, attaches to it
	// and escalates it instead of decoding twice.
	Fetch(ctx context.Context, req decode.Request) (*decode.Artifact, error)

	// Prewarm schedules a low-priority decode of req and returns its
	// handle. The artifact enters the cache when the decode finishes,
	// whether or not anyone waits on the handle. Returns ErrAlreadyCached
	// if the artifact is already resident.
	Prewarm(req decode.Request) (*task.Handle, error)

	// Invalidate drops every cached artifact derived from the source file,
	// returning how many were resident. Used when the file changes on disk.
	Invalidate(source string) int

	// ClearCache drops every cached artifact.
	ClearCache()

	// CacheStats reports the resident bytes and entry count of the cache.
	CacheStats() (bytes int64, entries int)
}

// thumbnailService implements ThumbnailService. Its mutex serializes all
// access to the cache, which performs no locking of its own.
type thumbnailService struct {
	scheduler *task.Scheduler
	emitter   events.EventEmitter
	logger    *slog.Logger

	mu    sync.Mutex
	cache *ArtifactCache
}

// NewThumbnailService creates a ThumbnailService over the given scheduler
// and artifact cache. The cache must not be shared with other users; the
// service assumes it is the only caller.
func NewThumbnailService(
	scheduler *task.Scheduler,
	artifacts *ArtifactCache,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (ThumbnailService, error) {
	if scheduler == nil {
		return nil, ErrNilScheduler
	}
	if artifacts == nil {
		return nil, ErrNilCache
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &thumbnailService{
		scheduler: scheduler,
		emitter:   emitter,
		logger:    logger.With("component", "thumbnail_service"),
		cache:     artifacts,
	}, nil
}

func (s *thumbnailService) Fetch(ctx context.Context, req decode.Request) (*decode.Artifact, error) {
	key := CacheKey(req)

	s.mu.Lock()
	a, ok := s.cache.Get(key)
	s.mu.Unlock()
	if ok {
		s.logger.Debug("cache hit", "key", key)
		return a, nil
	}

	h, err := s.scheduler.Submit(key, req, task.PriorityHigh)
	if err != nil {
		return nil, fmt.Errorf("failed to submit decode for %q: %w", key, err)
	}

	a, err = h.Result(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; withdraw the claim so the decode can be
			// skipped if nobody else wants it.
			h.Cancel()
		}
		return nil, err
	}

	s.store(ctx, key, req, a)
	return a, nil
}

func (s *thumbnailService) Prewarm(req decode.Request) (*task.Handle, error) {
	key := CacheKey(req)

	s.mu.Lock()
	resident := s.cache.Contains(key)
	s.mu.Unlock()
	if resident {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyCached, key)
	}

	h, err := s.scheduler.Submit(key, req, task.PriorityLow)
	if err != nil {
		return nil, fmt.Errorf("failed to submit pre-warm for %q: %w", key, err)
	}

	// Cache the artifact even if the caller never collects the handle.
	// Outcomes the last waiter canceled resolve with an error and are
	// simply not cached.
	go func() {
		a, err := h.Result(context.Background())
		if err != nil {
			s.logger.Debug("pre-warm did not produce an artifact", "key", key, "error", err)
			return
		}
		s.store(context.Background(), key, req, a)
	}()

	return h, nil
}

// store inserts a freshly decoded artifact and announces it.
func (s *thumbnailService) store(ctx context.Context, key string, req decode.Request, a *decode.Artifact) {
	s.mu.Lock()
	s.cache.Put(key, a)
	bytes, entries := s.cache.Size(), s.cache.Len()
	s.mu.Unlock()

	s.logger.Debug("artifact cached",
		"key", key,
		"size_bytes", a.SizeBytes(),
		"cache_bytes", bytes,
		"cache_entries", entries)

	if err := s.emitter.EmitEvent(ctx, events.NewArtifactEvent(key, req.Source, req.Kind, a.SizeBytes())); err != nil {
		s.logger.Error("failed to emit artifact event", "error", err, "key", key)
	}
}

func (s *thumbnailService) Invalidate(source string) int {
	keys := []string{
		CacheKey(decode.Request{Source: source, Kind: decode.KindThumbnail}),
		CacheKey(decode.Request{Source: source, Kind: decode.KindPreview}),
		CacheKey(decode.Request{Source: source, Kind: decode.KindPreview, HalfSize: true}),
	}

	s.mu.Lock()
	removed := 0
	for _, key := range keys {
		if s.cache.Remove(key) {
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("invalidated cached artifacts", "source", source, "removed", removed)
	}
	return removed
}

func (s *thumbnailService) ClearCache() {
	s.mu.Lock()
	s.cache.Clear()
	s.mu.Unlock()
	s.logger.Debug("artifact cache cleared")
}

func (s *thumbnailService) CacheStats() (int64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Size(), s.cache.Len()
}
