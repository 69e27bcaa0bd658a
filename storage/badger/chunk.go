package badger

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkSeqName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the insertion sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// AddChunks stores a batch of chunks in a single transaction. A chunk whose
// ID is already stored is overwritten and keeps its original insertion
// sequence, so re-ingesting a document does not change result ordering.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.ID)

			existing, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				// Overwrite by id: keep the original insertion slot.
				chunk.Seq = existing.Seq
				if old := existing.DocID(); old != "" && old != chunk.DocID() {
					if err := tx.Delete(makeChunkDocKey(old, chunk.ID)); err != nil {
						return err
					}
				}
			} else {
				nextSeq, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextSeq == 0 {
					nextSeq, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				chunk.Seq = nextSeq

				if err := tx.Set(makeChunkSeqKey(chunk.Seq), []byte(chunk.ID)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			if docID := chunk.DocID(); docID != "" {
				if err := tx.Set(makeChunkDocKey(docID, chunk.ID), []byte(chunk.ID)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

// FindSimilar scans every stored vector, converts Euclidean distance to a
// similarity in (0,1] and returns the best matches. Ties are broken by
// insertion order, earlier chunk first.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, scoreThreshold float64, limit int) ([]*core.ScoredMatch, error) {
	var results []*core.ScoredMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}

			similarity := 1.0 / (1.0 + euclideanDistance(vector, chunk.Vector))
			if similarity >= scoreThreshold {
				results = append(results, &core.ScoredMatch{
					Chunk:  chunk,
					Score:  similarity,
					Method: core.MethodVector,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, compareMatches)

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// AllChunks returns every stored chunk in insertion order by walking the
// seq index. Seq keys are BigEndian, so key order is insertion order.
func (r *ChunkRepository) AllChunks(ctx context.Context) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkSeqPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID string
			err := iter.Item().Value(func(val []byte) error {
				chunkID = string(val)
				return nil
			})
			if err != nil {
				return err
			}
			chunk, err := r.readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteDocument removes all chunks of a document and its registry entry.
// Deleting an absent document succeeds with zero removals.
func (r *ChunkRepository) DeleteDocument(ctx context.Context, docID string) (int, error) {
	removed := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect chunk IDs from the document index first; deleting while
		// iterating the same prefix invalidates the iterator.
		var chunkIDs []string
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkDocPrefix(docID)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			chunkIDs = append(chunkIDs, chunkIDFromDocKey(iter.Item().Key(), docID))
		}
		iter.Close()

		for _, chunkID := range chunkIDs {
			key := makeChunkKey(chunkID)
			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk != nil {
				if err := tx.Delete(makeChunkSeqKey(chunk.Seq)); err != nil {
					return err
				}
				if err := tx.Delete(key); err != nil {
					return err
				}
				removed++
			}
			if err := tx.Delete(makeChunkDocKey(docID, chunkID)); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeDocInfoKey(docID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return removed, nil
}

// Clear removes every chunk, index entry and document record. Idempotent.
func (r *ChunkRepository) Clear(ctx context.Context) error {
	prefixes := []string{
		chunkPrefix + ":",
		chunkSeqPrefix + ":",
		chunkDocPrefix + ":",
		docInfoPrefix + ":",
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var keys [][]byte
		for _, prefix := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()
		}

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

// Stats reports current chunk and document counts.
func (r *ChunkRepository) Stats(ctx context.Context) (*core.IndexStats, error) {
	stats := &core.IndexStats{Status: "active"}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		stats.ChunkCount = countPrefix(tx, chunkPrefix+":")
		stats.DocumentCount = countPrefix(tx, docInfoPrefix+":")
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordDocument stores or replaces a document registry entry.
func (r *ChunkRepository) RecordDocument(ctx context.Context, info *core.DocumentInfo) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocInfoKey(info.ID), storage.MarshalDocumentInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

// Documents lists registry entries for all ingested documents.
func (r *ChunkRepository) Documents(ctx context.Context) ([]*core.DocumentInfo, error) {
	var infos []*core.DocumentInfo

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docInfoPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var info *core.DocumentInfo
			err := iter.Item().Value(func(val []byte) error {
				var err error
				info, err = storage.UnmarshalDocumentInfo(val)
				return err
			})
			if err != nil {
				return err
			}
			if info != nil {
				infos = append(infos, info)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return infos, nil
}

// readChunk reads a chunk by key, returning nil if absent.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// compareMatches orders by score descending, insertion sequence ascending.
func compareMatches(a, b *core.ScoredMatch) int {
	if a.Score > b.Score {
		return -1
	}
	if a.Score < b.Score {
		return 1
	}
	if a.Chunk.Seq < b.Chunk.Seq {
		return -1
	}
	if a.Chunk.Seq > b.Chunk.Seq {
		return 1
	}
	return 0
}

func countPrefix(tx *badger.Txn, prefix string) int {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count
}

// euclideanDistance computes the L2 distance over the shared prefix of two
// vectors. Stored vectors all share one dimension by construction.
func euclideanDistance(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var sum float64
	for i := 0; i < minLen; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
