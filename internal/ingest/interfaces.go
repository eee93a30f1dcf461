package ingest

import (
	"context"
	"time"
)

// DestinationStore holds emitted artifacts per bucket.
type DestinationStore interface {
	// ExistsUnderPrefix reports whether any object key in bucket starts with prefix.
	ExistsUnderPrefix(ctx context.Context, bucket, prefix string) (bool, error)
	// PutObject writes data under key and returns a URI for the stored object.
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

// StateStore persists the last ingested reference period per (series, destination).
type StateStore interface {
	// Get returns the stored state and whether an entry exists.
	Get(ctx context.Context, seriesID, target string) (IngestionState, bool, error)
	Put(ctx context.Context, state IngestionState) error
}

// Notifier announces published artifacts (Pub/Sub or similar).
type Notifier interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests of emitted payloads.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
