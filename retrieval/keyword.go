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
	"slices"
	"strings"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
)

const (
	knownTermScore = 0.95
	nameTermScore  = 0.9
)

// KeywordSearcher scans the full chunk set for literal term matches. It
// exists as a fallback for name-bearing queries where lexical vectors miss:
// a person's name rarely appears in the keyword vocabulary, but a substring
// scan finds it reliably.
type KeywordSearcher struct {
	chunks   storage.ChunkRepository
	keywords []string
	maxHits  int
}

// NewKeywordSearcher builds a searcher over the given chunk repository.
func NewKeywordSearcher(chunks storage.ChunkRepository, cfg *config.Config) *KeywordSearcher {
	return &KeywordSearcher{
		chunks:   chunks,
		keywords: cfg.Keyword.KnownKeywords,
		maxHits:  cfg.Keyword.MaxMatches,
	}
}

// Search extracts search terms from the query and returns the chunks whose
// text contains one of them. Known vocabulary terms score higher than
// extracted names. Each chunk is scored by the first term that matches it.
func (s *KeywordSearcher) Search(ctx context.Context, query string) ([]*core.ScoredMatch, error) {
	terms := extractSearchTerms(query, s.keywords)
	if len(terms) == 0 {
		return nil, nil
	}

	all, err := s.chunks.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	// Check known terms before extracted names so a chunk matching both
	// kinds gets the higher score.
	slices.SortStableFunc(terms, func(a, b searchTerm) int {
		switch {
		case a.known == b.known:
			return 0
		case a.known:
			return -1
		default:
			return 1
		}
	})

	matches := make([]*core.ScoredMatch, 0, s.maxHits)
	for _, chunk := range all {
		text := strings.ToLower(chunk.Text)
		for _, term := range terms {
			if !strings.Contains(text, term.text) {
				continue
			}
			score := nameTermScore
			if term.known {
				score = knownTermScore
			}
			matches = append(matches, &core.ScoredMatch{
				Chunk:  chunk,
				Score:  score,
				Method: core.MethodKeyword,
			})
			break
		}
	}

	slices.SortFunc(matches, func(a, b *core.ScoredMatch) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Chunk.Seq != b.Chunk.Seq {
			if a.Chunk.Seq < b.Chunk.Seq {
				return -1
			}
			return 1
		}
		return 0
	})

	if len(matches) > s.maxHits {
		matches = matches[:s.maxHits]
	}
	return matches, nil
}
