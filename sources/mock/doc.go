// Package mock provides a test double implementation of sources.Source.
//
// The mock allows orchestrator and engine tests to run against a controlled
// set of sources without touching a database or the network. Behavior is
// injected via function fields:
//
//	src := mock.NewSource("voter_file", 1)
//	src.SearchFunc = func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
//	    return []core.RawMatch{{SourceType: "voter_file", LastName: "Smith"}}, nil
//	}
//
// By default a mock source is available and returns no matches.
package mock
