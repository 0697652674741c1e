package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) *CandidateRepository {
	return &CandidateRepository{backend: backend}
}

// Close is a no-op; the backend's lifetime is owned by the caller.
func (r *CandidateRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CandidateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceCandidates atomically replaces the candidate set for a juror.
// The delete of the old set and the insert of the new one commit as a
// single transaction, so a concurrent reader never observes a mix.
func (r *CandidateRepository) ReplaceCandidates(ctx context.Context, jurorID string, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		oldIDs, err := r.readJurorIndex(tx, jurorID)
		if err != nil {
			return err
		}
		for _, id := range oldIDs {
			if err := tx.Delete(makeCandidateKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeCandidateJurorKey(jurorID, id)); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for _, candidate := range candidates {
			candidate.JurorID = jurorID
			candidate.InsertedAt = now
			candidate.UpdatedAt = now

			if err := core.ValidateCandidate(candidate); err != nil {
				return err
			}
			value, err := storage.MarshalCandidate(candidate)
			if err != nil {
				return err
			}
			if err := tx.Set(makeCandidateKey(candidate.Id), value); err != nil {
				return err
			}
			indexKey := makeCandidateJurorKey(jurorID, candidate.Id)
			if err := tx.Set(indexKey, storage.MarshalID(candidate.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// GetCandidates retrieves all candidates for a juror, highest confidence first.
func (r *CandidateRepository) GetCandidates(ctx context.Context, jurorID string) ([]*core.Candidate, error) {
	var results []*core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := r.readJurorIndex(tx, jurorID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			candidate, err := r.readCandidate(tx, makeCandidateKey(id))
			if err != nil {
				return err
			}
			if candidate != nil {
				results = append(results, candidate)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *core.Candidate) int {
		return b.ConfidenceScore - a.ConfidenceScore
	})
	return results, nil
}

// GetCandidate retrieves a single candidate by ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error) {
	var result *core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readCandidate(tx, makeCandidateKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// SetReview records a review decision on a candidate.
func (r *CandidateRepository) SetReview(ctx context.Context, id core.ID, review core.Review) (*core.Candidate, error) {
	if review.Confirmed && review.Rejected {
		return nil, core.ErrConflictingReview
	}

	var result *core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCandidateKey(id)
		candidate, err := r.readCandidate(tx, key)
		if err != nil {
			return err
		}
		if candidate == nil {
			return storage.ErrNotFound
		}

		candidate.Review = review
		candidate.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalCandidate(candidate)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		result = candidate
		return tx.Commit()
	}, true)
	return result, err
}

// readJurorIndex collects the candidate IDs indexed under a juror.
func (r *CandidateRepository) readJurorIndex(tx *badger.Txn, jurorID string) ([]core.ID, error) {
	prefix := makeCandidateJurorScanPrefix(jurorID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readCandidate reads a candidate from the transaction.
// Returns nil, nil when the key does not exist.
func (r *CandidateRepository) readCandidate(tx *badger.Txn, key []byte) (*core.Candidate, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var candidate *core.Candidate
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		candidate, unmarshalErr = storage.UnmarshalCandidate(val)
		return unmarshalErr
	})
	return candidate, err
}
