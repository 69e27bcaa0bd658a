package revector

import (
	"bytes"
	"context"
	"testing"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
	"github.com/handoffhq/handoff/storage/badger"
	"github.com/handoffhq/handoff/vectorizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()

	chunkRepo, historyRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		historyRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})
	return chunkRepo
}

func seedChunks(t *testing.T, repo storage.ChunkRepository, n int) {
	t.Helper()

	ctx := context.Background()
	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			ID:       core.ChunkID("doc", i),
			Text:     "support tickets dropped after the mobile release",
			Metadata: map[string]string{core.MetaSource: "status.txt"},
		}
	}
	require.NoError(t, repo.AddChunks(ctx, chunks...))
}

func TestRevectorer_EmptyIndex(t *testing.T) {
	repo := newTestRepo(t)
	vec := vectorizer.New(config.Default())

	var out bytes.Buffer
	r := NewRevectorer(repo, vec, nil, &out)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "No chunks found")
}

func TestRevectorer_RecomputesVectors(t *testing.T) {
	repo := newTestRepo(t)
	vec := vectorizer.New(config.Default())
	ctx := context.Background()

	seedChunks(t, repo, 7)

	// Seeded chunks have no vectors yet.
	before, err := repo.AllChunks(ctx)
	require.NoError(t, err)
	for _, chunk := range before {
		assert.Empty(t, chunk.Vector)
	}

	var out bytes.Buffer
	r := NewRevectorer(repo, vec, &Config{BatchSize: 3, ReportInterval: 3}, &out)
	require.NoError(t, r.Run(ctx))

	after, err := repo.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, after, 7)
	for i, chunk := range after {
		assert.Equal(t, vec.Vectorize(chunk.Text), chunk.Vector)
		// Insertion order survives the rewrite.
		assert.Equal(t, before[i].ID, chunk.ID)
		assert.Equal(t, before[i].Seq, chunk.Seq)
	}

	assert.Contains(t, out.String(), "Revectoring complete")
}

func TestRevectorer_NilProgressWriter(t *testing.T) {
	repo := newTestRepo(t)
	vec := vectorizer.New(config.Default())
	ctx := context.Background()

	seedChunks(t, repo, 3)

	r := NewRevectorer(repo, vec, nil, nil)
	require.NoError(t, r.Run(ctx))

	after, err := repo.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, after, 3)
	for _, chunk := range after {
		assert.Equal(t, vec.Vectorize(chunk.Text), chunk.Vector)
	}
}

func TestRevectorer_ContextCancellation(t *testing.T) {
	repo := newTestRepo(t)
	vec := vectorizer.New(config.Default())

	seedChunks(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := NewRevectorer(repo, vec, &Config{BatchSize: 2, ReportInterval: 100}, &out)
	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkIterator_Batches(t *testing.T) {
	repo := newTestRepo(t)
	seedChunks(t, repo, 10)

	it := NewChunkIterator(repo, 4)
	var sizes []int
	err := it.ForEach(context.Background(), func(batch []*core.Chunk) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 2}, sizes)
}

func TestChunkIterator_EmptyRepo(t *testing.T) {
	repo := newTestRepo(t)

	it := NewChunkIterator(repo, 4)
	called := false
	err := it.ForEach(context.Background(), func([]*core.Chunk) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
