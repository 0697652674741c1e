package sources

import (
	"context"

	"github.com/poiesic/jurorlink/core"
)

// Latency tiers for identity data sources.
const (
	// TierLocal is a local indexed store, expected under 100ms.
	TierLocal = 1
	// TierFast is a remote API expected to answer in 1-3s.
	TierFast = 2
	// TierModerate is a remote API expected to answer in 2-5s.
	TierModerate = 3
	// TierSlow is a remote API that may take 5-30s.
	TierSlow = 4
)

// Source is one identity data source behind the uniform search contract.
// Implementations must be safe for concurrent use.
type Source interface {
	// Search returns raw matches for the query. No results is an empty
	// slice with a nil error; errors are transport or auth failures only.
	// Implementations apply their own timeout and return empty results
	// when it expires.
	Search(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error)

	// Available reports whether the source can currently serve a search.
	// Rate-limited sources report false once their quota is exhausted.
	Available() bool

	// Name returns the stable source identifier used as the source type
	// on every match this source produces.
	Name() string

	// Tier returns the latency tier (1-4).
	Tier() int
}
