package retrieval

import "github.com/handoffhq/handoff/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	AfterClassification(intent core.QueryIntent)
	AfterVectorSearch(matches []*core.ScoredMatch)
	AfterKeywordSearch(matches []*core.ScoredMatch)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterClassification(_ core.QueryIntent)  {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ScoredMatch)  {}
func (n *noopMonitor) AfterKeywordSearch(_ []*core.ScoredMatch) {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult)          {}
