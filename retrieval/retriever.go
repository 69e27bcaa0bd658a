// Copyright 2025 Handoff Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
	"github.com/handoffhq/handoff/vectorizer"
)

// mergedKeywordScore is the score reported for keyword hits in the merged
// score list handed to confidence estimation. It is intentionally distinct
// from the per-match scores the keyword searcher assigns.
const mergedKeywordScore = 0.9

// Retriever orchestrates a full retrieval pass: classify the query, run
// vector search, fall back to keyword search for name queries, merge, and
// assemble the grounding context.
type Retriever struct {
	chunks     storage.ChunkRepository
	vectorizer *vectorizer.Vectorizer
	classifier *Classifier
	keyword    *KeywordSearcher
	cfg        config.RetrievalConfig
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	chunks storage.ChunkRepository,
	vec *vectorizer.Vectorizer,
	cfg *config.Config,
	opts ...Option,
) (*Retriever, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if vec == nil {
		return nil, ErrVectorizerRequired
	}
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	r := &Retriever{
		chunks:     chunks,
		vectorizer: vec,
		classifier: NewClassifier(cfg),
		keyword:    NewKeywordSearcher(chunks, cfg),
		cfg:        cfg.Retrieval,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve runs a retrieval pass for the query given the session's recent
// history. The history is only consulted for classification and for
// conversation context; it never influences ranking.
func (r *Retriever) Retrieve(ctx context.Context, query string, history []*core.Message) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, query, history, nil)
}

// RetrieveWithMonitor runs a retrieval pass with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, history []*core.Message, monitor RetrievalMonitor) (*core.RetrievalResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	monitor.Start(query)

	intent := r.classifier.Classify(query, history)
	monitor.AfterClassification(intent)

	topK := r.topKFor(intent.Class)
	qvec := r.vectorizer.Vectorize(query)

	matches, err := r.chunks.FindSimilar(ctx, qvec, r.cfg.ScoreThreshold, topK)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	scores := make([]float64, 0, len(matches))
	for _, m := range matches {
		scores = append(scores, m.Score)
	}

	if intent.IsNameQuery {
		r.logger.Info("detected name query", "query", query)
		keywordMatches, kerr := r.keyword.Search(ctx, query)
		switch {
		case kerr != nil:
			// Degrade to vector-only results rather than failing the query.
			r.logger.Error("keyword fallback failed", "err", kerr)
		case len(keywordMatches) > 0:
			r.logger.Info("keyword fallback found matches", "count", len(keywordMatches))
			matches, scores = mergeRanked(keywordMatches, matches, scores, r.cfg.VectorMergeCap)
		default:
			r.logger.Info("keyword fallback found no matches")
		}
		monitor.AfterKeywordSearch(keywordMatches)
	}

	result := &core.RetrievalResult{
		Matches:             matches,
		Scores:              scores,
		Intent:              intent,
		Context:             r.buildContext(matches, intent.Class),
		ConversationContext: r.classifier.ConversationContext(query, history),
		Sources:             extractSources(matches),
		HasContext:          len(matches) > 0,
	}
	result.Confidence = calculateConfidence(scores, result.HasContext)

	monitor.Finish(result)
	return result, nil
}

func (r *Retriever) topKFor(class core.IntentClass) int {
	switch class {
	case core.IntentSummary:
		return r.cfg.TopKSummary
	case core.IntentDetail:
		return r.cfg.TopKDetail
	default:
		return r.cfg.TopKDefault
	}
}

// mergeRanked prioritizes keyword hits by putting them first, followed by at
// most vectorCap vector hits. The merged score list reports a flat score for
// every keyword hit, mirroring the position-based confidence weighting.
func mergeRanked(keyword, vector []*core.ScoredMatch, vectorScores []float64, vectorCap int) ([]*core.ScoredMatch, []float64) {
	if len(vector) > vectorCap {
		vector = vector[:vectorCap]
		vectorScores = vectorScores[:vectorCap]
	}

	merged := make([]*core.ScoredMatch, 0, len(keyword)+len(vector))
	merged = append(merged, keyword...)
	merged = append(merged, vector...)

	scores := make([]float64, 0, len(merged))
	for range keyword {
		scores = append(scores, mergedKeywordScore)
	}
	scores = append(scores, vectorScores...)

	return merged, scores
}

// buildContext assembles the grounding text from the ranked matches. The
// intent class picks the chunk budget: summaries take more chunks but
// truncate each one, detail answers take full chunks, default answers take
// a smaller set of full chunks.
func (r *Retriever) buildContext(matches []*core.ScoredMatch, class core.IntentClass) string {
	if len(matches) == 0 {
		return ""
	}

	var parts []string
	switch class {
	case core.IntentSummary:
		limit := min(len(matches), r.cfg.SummaryContextChunks)
		for i, m := range matches[:limit] {
			text := m.Chunk.Text
			if truncated := truncateRunes(text, r.cfg.SummaryCharLimit); len(truncated) < len(text) {
				text = truncated + "..."
			}
			parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s", i+1, m.Chunk.Source(), text))
		}
	case core.IntentDetail:
		limit := min(len(matches), r.cfg.DetailContextChunks)
		for i, m := range matches[:limit] {
			parts = append(parts, fmt.Sprintf("[Source %d: %s (relevance: %.2f)]\n%s", i+1, m.Chunk.Source(), m.Score, m.Chunk.Text))
		}
	default:
		limit := min(len(matches), r.cfg.DefaultContextChunks)
		for i, m := range matches[:limit] {
			parts = append(parts, fmt.Sprintf("[Source %d: %s (relevance: %.2f)]\n%s", i+1, m.Chunk.Source(), m.Score, m.Chunk.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}

// extractSources collects the unique source filenames from the matches,
// preserving first occurrence order.
func extractSources(matches []*core.ScoredMatch) []string {
	seen := make(map[string]bool, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		src := m.Chunk.Source()
		if seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

// calculateConfidence is a weighted average of the top three scores, with
// weight 1/(rank+1) so earlier results dominate, capped at 1.0.
func calculateConfidence(scores []float64, hasContext bool) float64 {
	if !hasContext || len(scores) == 0 {
		return 0.0
	}

	var weighted, total float64
	for i, score := range scores[:min(len(scores), 3)] {
		weight := 1.0 / float64(i+1)
		weighted += score * weight
		total += weight
	}
	if total == 0 {
		return 0.0
	}
	return min(weighted/total, 1.0)
}
