package mock

import (
	"context"
	"sync"

	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/sources"
)

// Source is a test double for sources.Source.
// It allows custom behavior injection via function fields.
type Source struct {
	// SearchFunc is called by Search if set.
	// If nil, Search returns no matches.
	SearchFunc func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error)

	// AvailableFunc is called by Available if set.
	// If nil, the source reports available.
	AvailableFunc func() bool

	name string
	tier int

	mu        sync.Mutex
	callCount int
}

var _ sources.Source = (*Source)(nil)

// NewSource creates a mock source with the given name and tier.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewSource(name string, tier int) *Source {
	return &Source{name: name, tier: tier}
}

// Search invokes SearchFunc, or returns no matches when unset.
func (s *Source) Search(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
	s.mu.Lock()
	s.callCount++
	s.mu.Unlock()

	if s.SearchFunc != nil {
		return s.SearchFunc(ctx, query)
	}
	return nil, nil
}

// Available invokes AvailableFunc, or reports true when unset.
func (s *Source) Available() bool {
	if s.AvailableFunc != nil {
		return s.AvailableFunc()
	}
	return true
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return s.name
}

// Tier returns the configured latency tier.
func (s *Source) Tier() int {
	return s.tier
}

// CallCount returns the number of times Search was called.
func (s *Source) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}
