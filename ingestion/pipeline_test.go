package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
	"github.com/handoffhq/handoff/storage/badger"
	"github.com/handoffhq/handoff/vectorizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, storage.ChunkRepository) {
	t.Helper()

	chunkRepo, historyRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		historyRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})

	cfg := config.Default()
	pipeline, err := NewPipeline(chunkRepo, vectorizer.New(cfg), cfg)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, chunkRepo
}

func TestNewPipeline(t *testing.T) {
	chunkRepo, historyRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		historyRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	cfg := config.Default()
	vec := vectorizer.New(cfg)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(chunkRepo, vec, cfg)
		require.NoError(t, err)
		assert.NotNil(t, p)
		p.Release()
	})

	t.Run("with pool size", func(t *testing.T) {
		p, err := NewPipeline(chunkRepo, vec, cfg, WithPoolSize(2))
		require.NoError(t, err)
		assert.NotNil(t, p)
		p.Release()
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewPipeline(nil, vec, cfg)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil vectorizer", func(t *testing.T) {
		_, err := NewPipeline(chunkRepo, nil, cfg)
		assert.Equal(t, ErrVectorizerRequired, err)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewPipeline(chunkRepo, vec, nil)
		assert.Equal(t, ErrConfigRequired, err)
	})
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  error
	}{
		{"text file", "notes.txt", []byte("hello"), nil},
		{"markdown file", "README.md", []byte("# title"), nil},
		{"uppercase extension", "NOTES.TXT", []byte("hello"), nil},
		{"unsupported extension", "slides.pdf", []byte("%PDF"), ErrUnsupportedFileType},
		{"no extension", "Makefile", []byte("all:"), ErrUnsupportedFileType},
		{"empty content", "notes.txt", nil, ErrEmptyDocument},
		{"too large", "big.txt", make([]byte, maxDocumentSize+1), ErrDocumentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.filename, tt.content)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIngestDocument(t *testing.T) {
	pipeline, chunkRepo := newTestPipeline(t)
	ctx := context.Background()

	content := []byte("Ramesh Iyer joined the project in April as the backend developer. " +
		"He set up the mongodb cluster and the api gateway.")

	info, err := pipeline.IngestDocument(ctx, "/uploads/team.txt", content)
	require.NoError(t, err)

	assert.Equal(t, "team.txt", info.Filename)
	assert.Equal(t, core.DocumentIDFromContent("/uploads/team.txt", content), info.ID)
	assert.Greater(t, info.ChunkCount, 0)
	assert.False(t, info.HasVisualContent)
	assert.False(t, info.UploadedAt.IsZero())

	chunks, err := chunkRepo.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, info.ChunkCount)

	first := chunks[0]
	assert.Equal(t, core.ChunkID(info.ID, 0), first.ID)
	assert.Equal(t, "team.txt", first.Metadata[core.MetaSource])
	assert.Equal(t, info.ID, first.Metadata[core.MetaDocID])
	assert.Equal(t, "0", first.Metadata[core.MetaChunkIndex])
	assert.Equal(t, "false", first.Metadata[core.MetaHasVisualContext])
	assert.NotEmpty(t, first.Vector)

	docs, err := chunkRepo.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, info.ID, docs[0].ID)
}

func TestIngestDocument_Invalid(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := context.Background()

	_, err := pipeline.IngestDocument(ctx, "slides.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = pipeline.IngestDocument(ctx, "empty.txt", nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestIngestDocument_Reingest(t *testing.T) {
	pipeline, chunkRepo := newTestPipeline(t)
	ctx := context.Background()

	content := []byte("The release slipped because vendor approval came late.")

	first, err := pipeline.IngestDocument(ctx, "status.txt", content)
	require.NoError(t, err)
	second, err := pipeline.IngestDocument(ctx, "status.txt", content)
	require.NoError(t, err)

	// Same content yields the same document ID; chunks are overwritten,
	// not duplicated.
	assert.Equal(t, first.ID, second.ID)

	chunks, err := chunkRepo.AllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, first.ChunkCount)
}

func TestIngestDocument_VisualContext(t *testing.T) {
	pipeline, chunkRepo := newTestPipeline(t)
	ctx := context.Background()

	content := []byte("The architecture diagram shows the service boundaries.")
	info, err := pipeline.IngestDocument(ctx, "arch.md", content)
	require.NoError(t, err)
	assert.True(t, info.HasVisualContent)

	chunks, err := chunkRepo.AllChunks(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "true", chunks[0].Metadata[core.MetaHasVisualContext])
}

func TestIngestDocument_LongDocumentSplits(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := context.Background()

	paragraph := strings.Repeat("Adoption metrics improved through the quarter. ", 20)
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString(paragraph)
		sb.WriteString("\n\n")
	}

	info, err := pipeline.IngestDocument(ctx, "metrics.txt", []byte(sb.String()))
	require.NoError(t, err)
	assert.Greater(t, info.ChunkCount, 1)
}

func TestIngestDir(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("backend status update"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# release notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.bin"), []byte{0x00, 0x01}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644))

	infos, err := pipeline.IngestDir(ctx, dir)

	// The empty file fails but the valid documents still land.
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Len(t, infos, 2)
}

func TestIngestDir_Missing(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	_, err := pipeline.IngestDir(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}
