package vectorizer

import (
	"regexp"
	"strings"

	"github.com/handoffhq/handoff/config"
)

var (
	wordPattern = regexp.MustCompile(`\w+`)
	yearPattern = regexp.MustCompile(`\d{4}`)
)

// Vectorizer turns raw text into a fixed-length feature vector using
// deterministic lexical statistics. It is a stand-in for a learned embedding
// model: the same text always yields the identical vector, with no external
// calls and no randomness.
//
// The feature layout is, in order: normalized length, normalized word count,
// five boolean indicators, one slot per configured keyword, one slot per
// configured bigram, one slot per configured character, zero padding up to
// the configured dimension.
type Vectorizer struct {
	dim            int
	keywords       []string
	keywordSlot    map[string]int
	bigrams        []string
	bigramSlot     map[string]int
	chars          []rune
	visualKeywords []string
}

// New builds a Vectorizer from the vocabulary in cfg.
func New(cfg *config.Config) *Vectorizer {
	v := &Vectorizer{
		dim:            cfg.Vectorizer.Dimension,
		keywords:       cfg.Vectorizer.Keywords,
		keywordSlot:    make(map[string]int, len(cfg.Vectorizer.Keywords)),
		bigrams:        cfg.Vectorizer.Bigrams,
		bigramSlot:     make(map[string]int, len(cfg.Vectorizer.Bigrams)),
		chars:          []rune(cfg.Vectorizer.Chars),
		visualKeywords: cfg.Vectorizer.VisualKeywords,
	}
	for i, kw := range v.keywords {
		v.keywordSlot[strings.ToLower(kw)] = i
	}
	for i, bg := range v.bigrams {
		v.bigramSlot[strings.ToLower(bg)] = i
	}
	return v
}

// Dimension returns the fixed output vector length.
func (v *Vectorizer) Dimension() int {
	return v.dim
}

// Vectorize computes the feature vector for text. Empty text yields a vector
// of zeros.
func (v *Vectorizer) Vectorize(text string) []float32 {
	lower := strings.ToLower(text)
	words := wordPattern.FindAllString(lower, -1)

	features := make([]float64, 0, v.dim)

	// Length statistics, capped at 1.
	features = append(features, minFloat(float64(len(text))/2000.0, 1.0))
	features = append(features, minFloat(float64(len(words))/200.0, 1.0))

	// Boolean indicators.
	features = append(features, boolFeature(strings.ContainsAny(text, "0123456789")))
	features = append(features, boolFeature(yearPattern.MatchString(text)))
	features = append(features, boolFeature(strings.Contains(text, "%")))
	features = append(features, boolFeature(v.hasVisualKeyword(lower)))
	isVisualChunk := strings.Contains(lower, "visual") &&
		(strings.Contains(lower, "description:") || strings.Contains(lower, "caption:"))
	features = append(features, boolFeature(isVisualChunk))

	// Keyword-frequency block.
	keywordCounts := make([]int, len(v.keywords))
	for _, w := range words {
		if slot, ok := v.keywordSlot[w]; ok {
			keywordCounts[slot]++
		}
	}
	totalWords := len(words)
	if totalWords == 0 {
		totalWords = 1
	}
	for _, count := range keywordCounts {
		features = append(features, float64(count)/float64(totalWords))
	}

	// Bigram-frequency block over adjacent token pairs.
	bigramCounts := make([]int, len(v.bigrams))
	for i := 0; i+1 < len(words); i++ {
		if slot, ok := v.bigramSlot[words[i]+"_"+words[i+1]]; ok {
			bigramCounts[slot]++
		}
	}
	totalBigrams := len(words) - 1
	if totalBigrams < 1 {
		totalBigrams = 1
	}
	for _, count := range bigramCounts {
		features = append(features, float64(count)/float64(totalBigrams))
	}

	// Character-frequency block over alphabetic characters.
	charCounts := make(map[rune]int)
	totalChars := 0
	for _, r := range lower {
		if r >= 'a' && r <= 'z' {
			charCounts[r]++
			totalChars++
		}
	}
	if totalChars == 0 {
		totalChars = 1
	}
	for _, r := range v.chars {
		features = append(features, float64(charCounts[r])/float64(totalChars))
	}

	// Pad or truncate to the fixed dimension.
	vector := make([]float32, v.dim)
	for i := 0; i < v.dim && i < len(features); i++ {
		vector[i] = float32(features[i])
	}
	return vector
}

// VectorizeAll computes vectors for a batch of texts in order.
func (v *Vectorizer) VectorizeAll(texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = v.Vectorize(text)
	}
	return vectors
}

func (v *Vectorizer) hasVisualKeyword(lower string) bool {
	for _, kw := range v.visualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
