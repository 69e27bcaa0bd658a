package retrieval

import (
	"context"
	"testing"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSearchTerms(t *testing.T) {
	keywords := []string{"cto", "qa lead"}

	t.Run("full and single names", func(t *testing.T) {
		terms := extractSearchTerms("Who is Ramesh Iyer?", keywords)
		texts := make([]string, 0, len(terms))
		for _, term := range terms {
			texts = append(texts, term.text)
		}
		assert.Contains(t, texts, "ramesh iyer")
		assert.Contains(t, texts, "ramesh")
		assert.Contains(t, texts, "iyer")
	})

	t.Run("known keyword flagged", func(t *testing.T) {
		terms := extractSearchTerms("who is the CTO", keywords)
		found := false
		for _, term := range terms {
			if term.text == "cto" {
				found = true
				assert.True(t, term.known)
			}
		}
		assert.True(t, found)
	})

	t.Run("whole query fallback", func(t *testing.T) {
		terms := extractSearchTerms("release timeline", keywords)
		require.Len(t, terms, 1)
		assert.Equal(t, "release timeline", terms[0].text)
		assert.True(t, terms[0].known)
	})
}

func TestKeywordSearch(t *testing.T) {
	chunkRepo, historyRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		historyRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, chunkRepo.AddChunks(ctx,
		&core.Chunk{
			ID:       "doc1_chunk_0",
			Text:     "Ramesh Iyer is the backend developer on the project.",
			Metadata: map[string]string{core.MetaSource: "team.txt"},
		},
		&core.Chunk{
			ID:       "doc1_chunk_1",
			Text:     "The release was delayed by vendor approval.",
			Metadata: map[string]string{core.MetaSource: "team.txt"},
		},
		&core.Chunk{
			ID:       "doc2_chunk_0",
			Text:     "Meera Nair, the CTO, signed off on the rollout.",
			Metadata: map[string]string{core.MetaSource: "leadership.txt"},
		},
	))

	searcher := NewKeywordSearcher(chunkRepo, config.Default())

	t.Run("name match", func(t *testing.T) {
		matches, err := searcher.Search(ctx, "Who is Ramesh Iyer?")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "doc1_chunk_0", matches[0].Chunk.ID)
		assert.Equal(t, core.MethodKeyword, matches[0].Method)
		assert.Equal(t, knownTermScore, matches[0].Score)
	})

	t.Run("known term outranks name-only match", func(t *testing.T) {
		matches, err := searcher.Search(ctx, "what is the role of the CTO Zubin")
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, "doc2_chunk_0", matches[0].Chunk.ID)
		assert.Equal(t, knownTermScore, matches[0].Score)
	})

	t.Run("filename-only hit does not match", func(t *testing.T) {
		// "leadership" appears in doc2's source filename but in no chunk
		// text; the fallback scans text only.
		matches, err := searcher.Search(ctx, "show Leadership notes")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("no match", func(t *testing.T) {
		matches, err := searcher.Search(ctx, "quarterly revenue forecast")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestKeywordSearch_MaxMatches(t *testing.T) {
	chunkRepo, historyRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		historyRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	cfg := config.Default()

	chunks := make([]*core.Chunk, 0, cfg.Keyword.MaxMatches+5)
	for i := 0; i < cfg.Keyword.MaxMatches+5; i++ {
		chunks = append(chunks, &core.Chunk{
			ID:       core.ChunkID("doc", i),
			Text:     "Ramesh attended the standup.",
			Metadata: map[string]string{core.MetaSource: "standup.txt"},
		})
	}
	require.NoError(t, chunkRepo.AddChunks(ctx, chunks...))

	searcher := NewKeywordSearcher(chunkRepo, cfg)
	matches, err := searcher.Search(ctx, "Who is Ramesh?")
	require.NoError(t, err)
	assert.Len(t, matches, cfg.Keyword.MaxMatches)

	// Equal scores keep insertion order.
	for i := 1; i < len(matches); i++ {
		assert.Less(t, matches[i-1].Chunk.Seq, matches[i].Chunk.Seq)
	}
}
