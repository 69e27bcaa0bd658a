package retrieval

import (
	"strings"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
)

// Classifier inspects a raw query and decides how retrieval should behave:
// the intent class, whether the query targets a named person or role,
// whether it asks about visual content, and whether it references prior
// conversation turns. Classification is pure given its inputs.
type Classifier struct {
	summaryKeywords     []string
	detailKeywords      []string
	nameIndicators      []string
	knownNames          []string
	visualIndicators    []string
	referenceIndicators []string

	contextMessages  int
	contextCharLimit int
}

// NewClassifier builds a Classifier from the keyword lists in cfg.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		summaryKeywords:     cfg.Classifier.SummaryKeywords,
		detailKeywords:      cfg.Classifier.DetailKeywords,
		nameIndicators:      cfg.Classifier.NameIndicators,
		knownNames:          cfg.Classifier.KnownNames,
		visualIndicators:    cfg.Classifier.VisualIndicators,
		referenceIndicators: cfg.Classifier.ReferenceIndicators,
		contextMessages:     cfg.History.ContextMessages,
		contextCharLimit:    cfg.History.ContextCharLimit,
	}
}

// Classify computes the QueryIntent for a query given the recent history.
func (c *Classifier) Classify(query string, history []*core.Message) core.QueryIntent {
	lower := strings.ToLower(query)

	intent := core.QueryIntent{Class: core.IntentDefault}

	if containsAny(lower, c.summaryKeywords) {
		intent.Class = core.IntentSummary
	} else if containsAny(lower, c.detailKeywords) {
		intent.Class = core.IntentDetail
	}

	intent.IsNameQuery = fullNamePattern.MatchString(query) ||
		containsAny(lower, c.nameIndicators) ||
		containsAny(lower, c.knownNames)

	intent.IsVisualQuery = containsAny(lower, c.visualIndicators)

	intent.ReferencesPriorTurn = len(history) > 0 && containsAny(lower, c.referenceIndicators)

	return intent
}

// ConversationContext renders the recent history for inclusion in the
// generation prompt: the last few messages, each truncated, one "Role:
// content" line per message. Returns "" when the query does not reference
// prior turns.
func (c *Classifier) ConversationContext(query string, history []*core.Message) string {
	if len(history) == 0 || !containsAny(strings.ToLower(query), c.referenceIndicators) {
		return ""
	}

	recent := history
	if len(recent) > c.contextMessages {
		recent = recent[len(recent)-c.contextMessages:]
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		content := truncateRunes(msg.Content, c.contextCharLimit)
		lines = append(lines, msg.Role.Title()+": "+content)
	}
	return strings.Join(lines, "\n")
}
