package vectorizer

import (
	"testing"

	"github.com/handoffhq/handoff/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVectorizer(t *testing.T) *Vectorizer {
	t.Helper()
	return New(config.Default())
}

func TestVectorize_Deterministic(t *testing.T) {
	v := newTestVectorizer(t)

	texts := []string{
		"",
		"Ramesh Iyer is the CTO and approved the final release.",
		"The backend uses Node.js with MongoDB, migrated in April 2024.",
		"Visual description: architecture diagram showing the API gateway.",
	}

	for _, text := range texts {
		first := v.Vectorize(text)
		for i := 0; i < 3; i++ {
			again := v.Vectorize(text)
			require.Equal(t, first, again, "vector for %q changed between calls", text)
		}
	}

	// Fresh vectorizer from the same config must agree too.
	other := New(config.Default())
	for _, text := range texts {
		assert.Equal(t, v.Vectorize(text), other.Vectorize(text))
	}
}

func TestVectorize_Dimension(t *testing.T) {
	v := newTestVectorizer(t)

	assert.Len(t, v.Vectorize(""), v.Dimension())
	assert.Len(t, v.Vectorize("short"), v.Dimension())
	assert.Equal(t, 384, v.Dimension())
}

func TestVectorize_EmptyText(t *testing.T) {
	v := newTestVectorizer(t)

	vec := v.Vectorize("")
	for i, f := range vec {
		assert.Zerof(t, f, "feature %d should be zero for empty text", i)
	}
}

func TestVectorize_LengthFeaturesCapped(t *testing.T) {
	v := newTestVectorizer(t)

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	vec := v.Vectorize(string(long))

	assert.Equal(t, float32(1.0), vec[0], "length feature should cap at 1")
}

func TestVectorize_BooleanIndicators(t *testing.T) {
	v := newTestVectorizer(t)

	tests := []struct {
		name string
		text string
		slot int
		want float32
	}{
		{"digits present", "version 2 shipped", 2, 1.0},
		{"digits absent", "no numbers here", 2, 0.0},
		{"year present", "released in 2024", 3, 1.0},
		{"year absent", "released in May", 3, 0.0},
		{"percent present", "adoption grew 40%", 4, 1.0},
		{"visual keyword", "see the diagram below", 5, 1.0},
		{"visual chunk", "Visual description: login flow", 6, 1.0},
		{"visual word alone is not a visual chunk", "a visual improvement", 6, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := v.Vectorize(tt.text)
			assert.Equal(t, tt.want, vec[tt.slot])
		})
	}
}

func TestVectorize_KeywordFrequency(t *testing.T) {
	cfg := config.Default()
	cfg.Vectorizer.Keywords = []string{"backend", "mongodb"}
	cfg.Vectorizer.Bigrams = []string{"tech_stack"}
	v := New(cfg)

	// 6 words, "backend" twice, "mongodb" once.
	vec := v.Vectorize("backend talks to mongodb backend service")

	const offset = 7 // length, words, five indicators
	assert.InDelta(t, 2.0/6.0, float64(vec[offset]), 1e-6)
	assert.InDelta(t, 1.0/6.0, float64(vec[offset+1]), 1e-6)
}

func TestVectorize_BigramFrequency(t *testing.T) {
	cfg := config.Default()
	cfg.Vectorizer.Keywords = []string{"x"}
	cfg.Vectorizer.Bigrams = []string{"tech_stack", "final_approval"}
	v := New(cfg)

	// 4 words -> 3 bigrams, "tech stack" appears once.
	vec := v.Vectorize("the tech stack works")

	const offset = 7 + 1 // indicators + one keyword slot
	assert.InDelta(t, 1.0/3.0, float64(vec[offset]), 1e-6)
	assert.Zero(t, vec[offset+1])
}

func TestVectorize_TruncatesOversizedFeatureSet(t *testing.T) {
	cfg := config.Default()
	cfg.Vectorizer.Dimension = 10
	v := New(cfg)

	vec := v.Vectorize("backend api database testing")
	assert.Len(t, vec, 10)
}

func TestVectorizeAll_PreservesOrder(t *testing.T) {
	v := newTestVectorizer(t)

	texts := []string{"first chunk", "second chunk"}
	vectors := v.VectorizeAll(texts)

	require.Len(t, vectors, 2)
	assert.Equal(t, v.Vectorize("first chunk"), vectors[0])
	assert.Equal(t, v.Vectorize("second chunk"), vectors[1])
}
