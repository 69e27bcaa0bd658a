package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
)

// HistoryRepository implements storage.HistoryRepository for BadgerDB.
// Each session keeps at most maxMessages messages; older ones are trimmed on
// append.
type HistoryRepository struct {
	backend     *Backend
	msgSeq      *badger.Sequence
	maxMessages int
}

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new HistoryRepository with the given
// per-session retention limit.
func NewHistoryRepository(backend *Backend, maxMessages int) (*HistoryRepository, error) {
	if maxMessages < 1 {
		maxMessages = 20
	}

	msgSeq, err := backend.GetSequence(historySeqName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	return &HistoryRepository{
		backend:     backend,
		msgSeq:      msgSeq,
		maxMessages: maxMessages,
	}, nil
}

// Close releases the message sequence.
func (r *HistoryRepository) Close() error {
	return r.msgSeq.Release()
}

// Append adds messages to a session and trims it to the retention limit.
func (r *HistoryRepository) Append(ctx context.Context, sessionID string, msgs ...*core.Message) error {
	for _, msg := range msgs {
		if err := core.ValidateMessage(msg); err != nil {
			return err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, msg := range msgs {
			seq, err := r.msgSeq.Next()
			if err != nil {
				return err
			}
			if seq == 0 {
				seq, err = r.msgSeq.Next()
				if err != nil {
					return err
				}
			}
			if err := tx.Set(makeHistoryKey(sessionID, seq), storage.MarshalMessage(msg)); err != nil {
				return err
			}
		}

		// Trim oldest messages beyond the retention limit.
		var keys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeHistorySessionPrefix(sessionID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		if excess := len(keys) - r.maxMessages; excess > 0 {
			for _, key := range keys[:excess] {
				if err := tx.Delete(key); err != nil {
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

// Recent returns up to limit most recent messages in chronological order.
func (r *HistoryRepository) Recent(ctx context.Context, sessionID string, limit int) ([]*core.Message, error) {
	var msgs []*core.Message

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeHistorySessionPrefix(sessionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var msg *core.Message
			err := iter.Item().Value(func(val []byte) error {
				var err error
				msg, err = storage.UnmarshalMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			if msg != nil {
				msgs = append(msgs, msg)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// Clear removes a session's history. Clearing an unknown session is a no-op.
func (r *HistoryRepository) Clear(ctx context.Context, sessionID string) error {
	return r.deletePrefix(makeHistorySessionPrefix(sessionID))
}

// ClearAll removes every session.
func (r *HistoryRepository) ClearAll(ctx context.Context) error {
	return r.deletePrefix([]byte(historyPrefix + ":"))
}

// Sessions lists the IDs of sessions with stored history.
func (r *HistoryRepository) Sessions(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var sessions []string

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(historyPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := sessionIDFromKey(iter.Item().Key())
			if !seen[id] {
				seen[id] = true
				sessions = append(sessions, id)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *HistoryRepository) deletePrefix(prefix []byte) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var keys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

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
