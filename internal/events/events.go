package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// ArtifactEvent announces that an artifact finished decoding and entered
// the cache. It carries enough information for progress reporting without
// a dependency on the scheduling internals.
type ArtifactEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID

	// Key is the cache key the artifact is stored under
	Key string

	// Source is the path of the RAW file the artifact came from
	Source string

	// Kind reports whether the artifact is a thumbnail or a preview
	Kind decode.Kind

	// SizeBytes is the resident size of the artifact payload
	SizeBytes int64

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time
}

// NewArtifactEvent creates a new ArtifactEvent for the given cache key.
func NewArtifactEvent(key, source string, kind decode.Kind, sizeBytes int64) *ArtifactEvent {
	return &ArtifactEvent{
		ID:        uuid.New(),
		Key:       key,
		Source:    source,
		Kind:      kind,
		SizeBytes: sizeBytes,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ArtifactEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ArtifactEvent) error
}
