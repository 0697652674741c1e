package search

import (
	"github.com/poiesic/jurorlink/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(jurorID string, query *core.SearchQuery)
	SourceSkipped(name string)
	SourceFailed(name string, err error)
	SourceReturned(name string, matchCount int)
	AfterScoring(candidates []core.ScoredCandidate)
	AfterClustering(clusters []core.EntityCluster)
	BelowFloor(candidate *core.Candidate)
	Finish(result *core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ *core.SearchQuery)      {}
func (n *noopMonitor) SourceSkipped(_ string)                   {}
func (n *noopMonitor) SourceFailed(_ string, _ error)           {}
func (n *noopMonitor) SourceReturned(_ string, _ int)           {}
func (n *noopMonitor) AfterScoring(_ []core.ScoredCandidate)    {}
func (n *noopMonitor) AfterClustering(_ []core.EntityCluster)   {}
func (n *noopMonitor) BelowFloor(_ *core.Candidate)             {}
func (n *noopMonitor) Finish(_ *core.SearchResult)              {}
