package search

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/linking"
	"github.com/poiesic/jurorlink/scoring"
	"github.com/poiesic/jurorlink/sources"
	"github.com/poiesic/jurorlink/storage"
)

// ScoreFloor is the minimum confidence score a candidate must reach to be
// persisted. Below the floor a match is noise, not merely low-confidence.
const ScoreFloor = 30

// Orchestrator runs juror identity searches end to end: source fan-out,
// scoring, entity linking, corroboration, persistence, job lifecycle.
type Orchestrator struct {
	candidateRepository storage.CandidateRepository
	jobRepository       storage.JobRepository
	sources             []sources.Source
	pool                *ants.Pool
	scoreFloor          int
	logger              *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for the source fan-out.
// Default is one worker per source, so all sources run concurrently.
// A smaller size serializes part of the fan-out.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithScoreFloor overrides the persistence floor. Intended for tests that
// need to observe sub-floor candidates; production callers keep ScoreFloor.
func WithScoreFloor(floor int) Option {
	return func(o *Orchestrator) error {
		if floor < 0 || floor > core.MaxTotalScore {
			return ErrInvalidScoreFloor
		}
		o.scoreFloor = floor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new search orchestrator.
func NewOrchestrator(
	candidateRepository storage.CandidateRepository,
	jobRepository storage.JobRepository,
	srcs []sources.Source,
	opts ...Option,
) (*Orchestrator, error) {
	if candidateRepository == nil {
		return nil, ErrCandidateRepositoryRequired
	}
	if jobRepository == nil {
		return nil, ErrJobRepositoryRequired
	}
	if len(srcs) == 0 {
		return nil, ErrNoSources
	}

	// The fan-out is I/O-bound: every source must start at the same time so
	// a slow external call never delays when its siblings begin.
	pool, err := ants.NewPool(len(srcs))
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		candidateRepository: candidateRepository,
		jobRepository:       jobRepository,
		sources:             srcs,
		pool:                pool,
		scoreFloor:          ScoreFloor,
		logger:              slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			o.Release()
			return nil, err
		}
	}

	return o, nil
}

// Release releases the fan-out worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// CreateJob validates the query and persists a new queued search job.
func (o *Orchestrator) CreateJob(ctx context.Context, jurorID string, query *core.SearchQuery) (*core.SearchJob, error) {
	if jurorID == "" {
		return nil, core.ErrEmptyJurorID
	}
	if err := core.ValidateSearchQuery(query); err != nil {
		return nil, err
	}

	job := &core.SearchJob{
		Id:        uuid.NewString(),
		JurorID:   jurorID,
		Query:     *query,
		Status:    core.JobQueued,
		StartedAt: time.Now().UTC(),
	}
	return o.jobRepository.CreateJob(ctx, job)
}

// SearchJuror runs a full search synchronously.
// Returns the persisted candidate set, highest confidence first.
func (o *Orchestrator) SearchJuror(ctx context.Context, jurorID string, query *core.SearchQuery) (*core.SearchResult, error) {
	return o.SearchJurorWithMonitor(ctx, jurorID, query, nil)
}

// SearchJurorWithMonitor runs a full search synchronously with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (o *Orchestrator) SearchJurorWithMonitor(ctx context.Context, jurorID string, query *core.SearchQuery, monitor SearchMonitor) (*core.SearchResult, error) {
	job, err := o.CreateJob(ctx, jurorID, query)
	if err != nil {
		return nil, err
	}
	return o.ExecuteWithMonitor(ctx, job, monitor)
}

// Execute runs a previously created search job.
func (o *Orchestrator) Execute(ctx context.Context, job *core.SearchJob) (*core.SearchResult, error) {
	return o.ExecuteWithMonitor(ctx, job, nil)
}

// ExecuteWithMonitor runs a previously created search job with monitoring.
// The job transitions to running immediately and to completed or failed
// when the search settles.
func (o *Orchestrator) ExecuteWithMonitor(ctx context.Context, job *core.SearchJob, monitor SearchMonitor) (*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(job.JurorID, &job.Query)
	start := time.Now()

	// A job runs at most once; completed and failed jobs stay history.
	if !core.CanTransition(job.Status, core.JobRunning) {
		return nil, core.ErrInvalidJobStatus
	}

	job.Status = core.JobRunning
	if _, err := o.jobRepository.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	candidates, queried, err := o.runSearch(ctx, job, monitor)
	if err != nil {
		job.Status = core.JobFailed
		job.Error = err.Error()
		job.FinishedAt = time.Now().UTC()
		if _, updateErr := o.jobRepository.UpdateJob(ctx, job); updateErr != nil {
			o.logger.Error("failed to mark job failed", "jobID", job.Id, "err", updateErr)
		}
		return nil, err
	}

	job.Status = core.JobCompleted
	job.Sources = queried
	job.CandidateCount = len(candidates)
	job.FinishedAt = time.Now().UTC()
	if _, err := o.jobRepository.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	result := &core.SearchResult{
		JurorID:        job.JurorID,
		JobID:          job.Id,
		Candidates:     candidates,
		TotalCount:     len(candidates),
		SourcesQueried: queried,
		DurationMillis: time.Since(start).Milliseconds(),
	}
	monitor.Finish(result)

	o.logger.Info("search completed",
		"jurorID", job.JurorID,
		"jobID", job.Id,
		"sources", len(queried),
		"candidates", len(candidates),
		"durationMillis", result.DurationMillis)
	return result, nil
}

// runSearch performs the fan-out/score/cluster/persist pipeline.
// Returns the persisted candidates and the names of the sources queried.
func (o *Orchestrator) runSearch(ctx context.Context, job *core.SearchJob, monitor SearchMonitor) ([]*core.Candidate, []string, error) {
	matches, queried := o.fanOut(ctx, &job.Query, monitor)

	scored := make([]core.ScoredCandidate, 0, len(matches))
	for i := range matches {
		scored = append(scored, scoring.Score(&job.Query, &matches[i]))
	}
	monitor.AfterScoring(scored)

	clusters := linking.Cluster(scored)
	monitor.AfterClustering(clusters)

	candidates := make([]*core.Candidate, 0, len(clusters))
	for i := range clusters {
		candidate := o.buildCandidate(job, &clusters[i])
		if candidate.ConfidenceScore < o.scoreFloor {
			monitor.BelowFloor(candidate)
			o.logger.Debug("candidate below floor, dropped",
				"jurorID", job.JurorID,
				"candidateID", candidate.Id,
				"score", candidate.ConfidenceScore)
			continue
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ConfidenceScore > candidates[j].ConfidenceScore
	})

	if _, err := o.candidateRepository.ReplaceCandidates(ctx, job.JurorID, candidates...); err != nil {
		return nil, nil, fmt.Errorf("persist candidates: %w", err)
	}
	return candidates, queried, nil
}

// fanOut queries every available source concurrently. A source that errors
// or panics contributes zero matches and never disturbs its siblings.
func (o *Orchestrator) fanOut(ctx context.Context, query *core.SearchQuery, monitor SearchMonitor) ([]core.RawMatch, []string) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		matches []core.RawMatch
		queried []string
	)

	for _, src := range o.sources {
		if !src.Available() {
			o.logger.Warn("source unavailable, skipping", "source", src.Name())
			monitor.SourceSkipped(src.Name())
			continue
		}
		queried = append(queried, src.Name())

		src := src
		wg.Add(1)
		err := o.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("source panicked", "source", src.Name(), "panic", r)
					monitor.SourceFailed(src.Name(), fmt.Errorf("panic: %v", r))
				}
			}()

			found, err := src.Search(ctx, query)
			if err != nil {
				o.logger.Warn("source search failed", "source", src.Name(), "err", err)
				monitor.SourceFailed(src.Name(), err)
				return
			}
			monitor.SourceReturned(src.Name(), len(found))

			mu.Lock()
			matches = append(matches, found...)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			o.logger.Error("failed to submit source search", "source", src.Name(), "err", err)
		}
	}

	wg.Wait()
	return matches, queried
}

// buildCandidate turns one entity cluster into a persistable candidate:
// the primary match's identity enhanced with the corroboration bonus and,
// for multi-source clusters, every member's evidence under linkedSources.
func (o *Orchestrator) buildCandidate(job *core.SearchJob, cluster *core.EntityCluster) *core.Candidate {
	primary := cluster.Primary()

	bonus := scoring.CorroborationBonus(cluster.SourceCount)
	reason := "Single source"
	if cluster.SourceCount > 1 {
		reason = fmt.Sprintf("Confirmed by %d sources", cluster.SourceCount)
	}
	factors := primary.Factors
	factors.SetCorroboration(bonus, reason)

	confidence := cluster.AggregatedScore + bonus
	if confidence > core.MaxTotalScore {
		confidence = core.MaxTotalScore
	}

	profile := make(map[string]any, len(primary.Match.RawData)+1)
	maps.Copy(profile, primary.Match.RawData)
	if cluster.SourceCount > 1 {
		linked := make([]map[string]any, 0, len(cluster.Members))
		for i := range cluster.Members {
			m := &cluster.Members[i].Match
			linked = append(linked, map[string]any{
				"sourceType": m.SourceType,
				"sourceKey":  m.SourceKey,
				"data":       m.RawData,
			})
		}
		profile["linkedSources"] = linked
	}

	m := &primary.Match
	return &core.Candidate{
		Id:              core.IDFromContent(job.JurorID + ":" + m.SourceType + ":" + m.SourceKey),
		JurorID:         job.JurorID,
		JobID:           job.Id,
		FirstName:       m.FirstName,
		MiddleName:      m.MiddleName,
		LastName:        m.LastName,
		Age:             m.Age,
		BirthYear:       m.BirthYear,
		Street:          m.Street,
		City:            m.City,
		State:           m.State,
		ZipCode:         m.ZipCode,
		Occupation:      m.Occupation,
		Employer:        m.Employer,
		Email:           m.Email,
		Phone:           m.Phone,
		SourceType:      m.SourceType,
		SourceCount:     cluster.SourceCount,
		ConfidenceScore: confidence,
		Factors:         factors,
		Profile:         profile,
	}
}

// Confirm records a human confirmation on a persisted candidate.
// Pure metadata write; no re-scoring happens.
func (o *Orchestrator) Confirm(ctx context.Context, id core.ID, actor string) (*core.Candidate, error) {
	return o.candidateRepository.SetReview(ctx, id, core.Review{
		Confirmed:  true,
		Actor:      actor,
		ReviewedAt: time.Now().UTC(),
	})
}

// Reject records a human rejection on a persisted candidate.
func (o *Orchestrator) Reject(ctx context.Context, id core.ID, actor string) (*core.Candidate, error) {
	return o.candidateRepository.SetReview(ctx, id, core.Review{
		Rejected:   true,
		Actor:      actor,
		ReviewedAt: time.Now().UTC(),
	})
}

// Candidates returns the persisted candidate set for a juror.
func (o *Orchestrator) Candidates(ctx context.Context, jurorID string) ([]*core.Candidate, error) {
	return o.candidateRepository.GetCandidates(ctx, jurorID)
}

// Jobs returns the search job history for a juror, most recent first.
func (o *Orchestrator) Jobs(ctx context.Context, jurorID string) ([]*core.SearchJob, error) {
	return o.jobRepository.GetJobs(ctx, jurorID)
}
