package storage

import (
	"context"

	"github.com/poiesic/jurorlink/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CandidateRepository provides operations for managing juror candidates.
type CandidateRepository interface {
	Repository
	// ReplaceCandidates atomically replaces the candidate set for a juror.
	// Deletes every existing candidate for jurorID and inserts the given
	// ones in a single transaction; a concurrent reader sees either the
	// old set or the new set, never a mix.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the inserted candidates with timestamps populated.
	ReplaceCandidates(ctx context.Context, jurorID string, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// GetCandidates retrieves all candidates for a juror, ordered by
	// confidence score descending.
	GetCandidates(ctx context.Context, jurorID string) ([]*core.Candidate, error)

	// GetCandidate retrieves a single candidate by ID.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error)

	// SetReview records a review decision on a candidate.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the candidate doesn't exist.
	SetReview(ctx context.Context, id core.ID, review core.Review) (*core.Candidate, error)
}

// JobRepository provides operations for the append-only search job history.
type JobRepository interface {
	Repository
	// CreateJob persists a new search job.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns ErrDuplicateKey if a job with the same ID already exists.
	CreateJob(ctx context.Context, job *core.SearchJob) (*core.SearchJob, error)

	// UpdateJob updates an existing search job.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateJob(ctx context.Context, job *core.SearchJob) (*core.SearchJob, error)

	// GetJob retrieves a single search job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id string) (*core.SearchJob, error)

	// GetJobs retrieves all search jobs for a juror, most recent first.
	GetJobs(ctx context.Context, jurorID string) ([]*core.SearchJob, error)
}
