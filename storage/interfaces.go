package storage

import (
	"context"

	"github.com/poiesic/servitor/core"
)

// MemoryStore persists conversation messages keyed by an opaque session
// identifier. Implementations must be thread-safe and support concurrent
// access.
type MemoryStore interface {
	// Messages returns the stored message list for the session.
	// An unknown session yields an empty list, not an error.
	Messages(ctx context.Context, sessionId string) ([]core.Message, error)

	// ReplaceMessages replaces the session's message list wholesale.
	ReplaceMessages(ctx context.Context, sessionId string, messages []core.Message) error

	// DeleteMessages removes all messages for the session.
	// Deleting an unknown session is a no-op.
	DeleteMessages(ctx context.Context, sessionId string) error

	// Close closes the store and releases resources.
	Close() error
}

// VectorStore persists embedded text segments and answers relevance
// queries. Implementations must be thread-safe.
type VectorStore interface {
	// Add stores one or more segments. Segments with Id=0 get a
	// content-derived ID; InsertedAt is set if zero. Returns the segments
	// with IDs and timestamps populated.
	Add(ctx context.Context, segments ...*core.Segment) ([]*core.Segment, error)

	// FindRelevant returns segments relevant to the query vector, ordered
	// by relevance score (highest first), up to maxResults. Only segments
	// with a relevance score >= minScore (in [0,1]) are returned. A
	// non-empty filter restricts results to segments whose metadata
	// contains every given key/value pair.
	FindRelevant(ctx context.Context, vector []float32, maxResults int, minScore float32, filter map[string]string) ([]core.SegmentMatch, error)

	// Close closes the store and releases resources.
	Close() error
}
