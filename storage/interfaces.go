package storage

import (
	"context"

	"github.com/handoffhq/handoff/core"
)

// ChunkRepository is the similarity index: it owns chunks, their vectors and
// the per-document registry. Implementations must be thread-safe; readers
// must never observe a partially committed batch.
type ChunkRepository interface {
	// AddChunks stores a batch of chunks atomically: either the whole
	// batch becomes visible to queries or none of it does. Chunks carrying
	// an ID that already exists are overwritten in place. Insertion
	// sequence numbers are assigned here.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// FindSimilar scans all stored vectors, converts Euclidean distance d
	// to similarity 1/(1+d), keeps results at or above scoreThreshold and
	// returns the limit highest, ties broken by insertion order.
	// An empty index returns an empty slice, not an error.
	FindSimilar(ctx context.Context, vector []float32, scoreThreshold float64, limit int) ([]*core.ScoredMatch, error)

	// AllChunks returns every stored chunk in insertion order. Used by the
	// keyword fallback scan.
	AllChunks(ctx context.Context) ([]*core.Chunk, error)

	// DeleteDocument removes all chunks belonging to docID along with its
	// registry entry, returning the number of chunks removed. Deleting an
	// absent document succeeds with zero removals.
	DeleteDocument(ctx context.Context, docID string) (int, error)

	// Clear removes all chunks and document records. Idempotent.
	Clear(ctx context.Context) error

	// Stats reports the current chunk and document counts.
	Stats(ctx context.Context) (*core.IndexStats, error)

	// RecordDocument stores or replaces the registry entry for an
	// ingested document.
	RecordDocument(ctx context.Context, info *core.DocumentInfo) error

	// Documents lists registry entries for all ingested documents.
	Documents(ctx context.Context) ([]*core.DocumentInfo, error)

	// Close releases repository resources.
	Close() error
}

// HistoryRepository stores bounded per-session chat history. The retrieval
// core only ever consumes a short window of recent messages from it.
type HistoryRepository interface {
	// Append adds messages to the end of a session, trimming the session
	// to the configured retention limit.
	Append(ctx context.Context, sessionID string, msgs ...*core.Message) error

	// Recent returns up to limit most recent messages in chronological
	// order. An unknown session yields an empty slice.
	Recent(ctx context.Context, sessionID string, limit int) ([]*core.Message, error)

	// Clear removes a session's history. Idempotent.
	Clear(ctx context.Context, sessionID string) error

	// ClearAll removes every session.
	ClearAll(ctx context.Context) error

	// Sessions lists known session IDs.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases repository resources.
	Close() error
}
