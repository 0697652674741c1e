package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
// Jobs are append-only; there is no delete path.
type JobRepository struct {
	backend *Backend
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) *JobRepository {
	return &JobRepository{backend: backend}
}

// Close is a no-op; the backend's lifetime is owned by the caller.
func (r *JobRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateJob persists a new search job and indexes it under its juror.
func (r *JobRepository) CreateJob(ctx context.Context, job *core.SearchJob) (*core.SearchJob, error) {
	if err := core.ValidateJobStatus(job.Status); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.Id)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		job.InsertedAt = time.Now().UTC()
		job.UpdatedAt = job.InsertedAt

		value, err := storage.MarshalSearchJob(job)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		indexKey := makeJobJurorKey(job.JurorID, job.InsertedAt, job.Id)
		if err := tx.Set(indexKey, []byte(job.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// UpdateJob updates an existing search job. The juror index entry keys on
// InsertedAt, which never changes, so only the record itself is rewritten.
func (r *JobRepository) UpdateJob(ctx context.Context, job *core.SearchJob) (*core.SearchJob, error) {
	if err := core.ValidateJobStatus(job.Status); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.Id)
		old, err := r.readJob(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		job.InsertedAt = old.InsertedAt
		job.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalSearchJob(job)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// GetJob retrieves a single search job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id string) (*core.SearchJob, error) {
	var result *core.SearchJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readJob(tx, makeJobKey(id))
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

// GetJobs retrieves all search jobs for a juror, most recent first.
func (r *JobRepository) GetJobs(ctx context.Context, jurorID string) ([]*core.SearchJob, error) {
	var results []*core.SearchJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeJobJurorScanPrefix(jurorID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// The index scans in insertion order; collect then reverse.
		var ids []string
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		for i := len(ids) - 1; i >= 0; i-- {
			job, err := r.readJob(tx, makeJobKey(ids[i]))
			if err != nil {
				return err
			}
			if job != nil {
				results = append(results, job)
			}
		}
		return nil
	}, false)

	return results, err
}

// readJob reads a search job from the transaction.
// Returns nil, nil when the key does not exist.
func (r *JobRepository) readJob(tx *badger.Txn, key []byte) (*core.SearchJob, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.SearchJob
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalSearchJob(val)
		return unmarshalErr
	})
	return job, err
}
