package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/sources"
	"github.com/poiesic/jurorlink/sources/mock"
	"github.com/poiesic/jurorlink/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T, srcs ...sources.Source) *Orchestrator {
	t.Helper()

	candidateRepo, jobRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	orchestrator, err := NewOrchestrator(candidateRepo, jobRepo, srcs)
	require.NoError(t, err)
	t.Cleanup(orchestrator.Release)
	return orchestrator
}

// returning builds a mock source whose Search always yields the given matches.
func returning(name string, tier int, matches ...core.RawMatch) *mock.Source {
	src := mock.NewSource(name, tier)
	src.SearchFunc = func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
		return matches, nil
	}
	return src
}

func smithQuery() *core.SearchQuery {
	return &core.SearchQuery{
		FirstName: "John",
		LastName:  "Smith",
		Age:       42,
		City:      "Los Angeles",
	}
}

// voterSmith scores name=40, age=20, location=20 against smithQuery.
func voterSmith() core.RawMatch {
	return core.RawMatch{
		SourceType: "voter_file",
		SourceKey:  "CA-0001",
		FirstName:  "John",
		LastName:   "Smith",
		Age:        42,
		City:       "Los Angeles",
		State:      "CA",
		RawData:    map[string]any{"registered": true},
	}
}

func TestNewOrchestrator_Validation(t *testing.T) {
	candidateRepo, jobRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	src := mock.NewSource("voter_file", 1)

	_, err = NewOrchestrator(nil, jobRepo, []sources.Source{src})
	assert.ErrorIs(t, err, ErrCandidateRepositoryRequired)

	_, err = NewOrchestrator(candidateRepo, nil, []sources.Source{src})
	assert.ErrorIs(t, err, ErrJobRepositoryRequired)

	_, err = NewOrchestrator(candidateRepo, jobRepo, nil)
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = NewOrchestrator(candidateRepo, jobRepo, []sources.Source{src}, WithScoreFloor(101))
	assert.ErrorIs(t, err, ErrInvalidScoreFloor)
}

func TestSearchJuror_RejectsBadInput(t *testing.T) {
	orchestrator := newTestOrchestrator(t, mock.NewSource("voter_file", 1))
	ctx := context.Background()

	_, err := orchestrator.SearchJuror(ctx, "", smithQuery())
	assert.ErrorIs(t, err, core.ErrEmptyJurorID)

	_, err = orchestrator.SearchJuror(ctx, "juror-1", &core.SearchQuery{City: "Los Angeles"})
	assert.ErrorIs(t, err, core.ErrNoNameFields)
}

func TestSearchJuror_ExactMatchSingleSource(t *testing.T) {
	orchestrator := newTestOrchestrator(t, returning("voter_file", 1, voterSmith()))

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)

	c := result.Candidates[0]
	assert.Equal(t, 40, c.Factors.Name.Score)
	assert.Equal(t, 20, c.Factors.Age.Score)
	assert.Equal(t, 20, c.Factors.Location.Score)
	assert.Equal(t, 0, c.Factors.Corroboration.Score)
	assert.Equal(t, "Single source", c.Factors.Corroboration.Reason)
	assert.Equal(t, 80, c.ConfidenceScore)
	assert.Equal(t, 1, c.SourceCount)
	assert.Equal(t, "voter_file", c.SourceType)
	assert.Equal(t, result.JobID, c.JobID)

	// Single-source clusters keep their profile flat.
	assert.Equal(t, true, c.Profile["registered"])
	assert.NotContains(t, c.Profile, "linkedSources")
}

func TestSearchJuror_SharedEmailMergesAcrossSources(t *testing.T) {
	voter := voterSmith()
	voter.Email = "jsmith@example.com"

	// Same person per email, weaker identity agreement otherwise.
	people := core.RawMatch{
		SourceType: "people_search",
		SourceKey:  "p-9001",
		FirstName:  "John",
		LastName:   "Smith",
		Age:        43,
		Email:      "jsmith@example.com",
		RawData:    map[string]any{"aliases": []string{"Johnny"}},
	}

	orchestrator := newTestOrchestrator(t,
		returning("voter_file", 1, voter),
		returning("people_search", 3, people))

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)

	c := result.Candidates[0]
	// Members score 80 and 55; weighted 0.6/0.4 gives 70, plus the
	// two-source corroboration bonus of 3.
	assert.Equal(t, 73, c.ConfidenceScore)
	assert.Equal(t, 2, c.SourceCount)
	assert.Equal(t, 3, c.Factors.Corroboration.Score)
	assert.Equal(t, "Confirmed by 2 sources", c.Factors.Corroboration.Reason)

	// The primary is the voter file match; the people search evidence
	// rides along under linkedSources.
	assert.Equal(t, "voter_file", c.SourceType)
	linked, ok := c.Profile["linkedSources"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, linked, 2)
	assert.Equal(t, "voter_file", linked[0]["sourceType"])
	assert.Equal(t, "people_search", linked[1]["sourceType"])
}

func TestSearchJuror_NameAndAgeAloneDoNotMerge(t *testing.T) {
	voter := voterSmith()

	// Full name +3 and age within 2 +1 stays at strength 4, below the
	// link threshold; these remain separate candidates.
	external := core.RawMatch{
		SourceType: "people_search",
		SourceKey:  "p-9002",
		FirstName:  "John",
		LastName:   "Smith",
		Age:        43,
	}

	orchestrator := newTestOrchestrator(t,
		returning("voter_file", 1, voter),
		returning("people_search", 3, external))

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)

	assert.Equal(t, 80, result.Candidates[0].ConfidenceScore)
	assert.Equal(t, "voter_file", result.Candidates[0].SourceType)
	assert.Equal(t, 55, result.Candidates[1].ConfidenceScore)
	assert.Equal(t, "people_search", result.Candidates[1].SourceType)
	for _, c := range result.Candidates {
		assert.Equal(t, 1, c.SourceCount)
	}
}

func TestSearchJuror_FloorIsInclusive(t *testing.T) {
	// Scores exactly 30: last name 20, state 5, similar occupation 5.
	atFloor := core.RawMatch{
		SourceType: "voter_file",
		SourceKey:  "CA-0030",
		LastName:   "Smith",
		State:      "CA",
		Occupation: "carpentry",
	}
	// Scores exactly 29: last name 20, phonetic first name 9.
	belowFloor := core.RawMatch{
		SourceType: "voter_file",
		SourceKey:  "CA-0029",
		FirstName:  "Jon",
		LastName:   "Smith",
	}

	orchestrator := newTestOrchestrator(t, returning("voter_file", 1, atFloor, belowFloor))

	query := &core.SearchQuery{
		FirstName:  "John",
		LastName:   "Smith",
		State:      "CA",
		Occupation: "carpenter",
	}
	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", query)
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, 30, result.Candidates[0].ConfidenceScore)
	assert.Equal(t, "carpentry", result.Candidates[0].Occupation)
}

func TestSearchJuror_FailingSourceIsIsolated(t *testing.T) {
	flaky := mock.NewSource("fec_donors", 2)
	flaky.SearchFunc = func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
		return nil, errors.New("upstream down")
	}

	orchestrator := newTestOrchestrator(t,
		returning("voter_file", 1, voterSmith()),
		flaky)

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)

	// Both sources were queried even though one failed.
	assert.ElementsMatch(t, []string{"voter_file", "fec_donors"}, result.SourcesQueried)

	job, err := orchestrator.jobRepository.GetJob(context.Background(), result.JobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobCompleted, job.Status)
}

func TestSearchJuror_PanickingSourceIsIsolated(t *testing.T) {
	hostile := mock.NewSource("people_search", 3)
	hostile.SearchFunc = func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
		panic("adapter bug")
	}

	orchestrator := newTestOrchestrator(t,
		returning("voter_file", 1, voterSmith()),
		hostile)

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 1)
}

func TestSearchJuror_UnavailableSourceSkipped(t *testing.T) {
	offline := mock.NewSource("people_search", 3)
	offline.AvailableFunc = func() bool { return false }

	orchestrator := newTestOrchestrator(t,
		returning("voter_file", 1, voterSmith()),
		offline)

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)

	assert.Equal(t, []string{"voter_file"}, result.SourcesQueried)
	assert.Equal(t, 0, offline.CallCount())
}

func TestSearchJuror_RepeatedSearchIsIdempotent(t *testing.T) {
	orchestrator := newTestOrchestrator(t, returning("voter_file", 1, voterSmith()))
	ctx := context.Background()

	first, err := orchestrator.SearchJuror(ctx, "juror-1", smithQuery())
	require.NoError(t, err)
	second, err := orchestrator.SearchJuror(ctx, "juror-1", smithQuery())
	require.NoError(t, err)

	// Replace semantics: the set does not grow and scores are stable.
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, first.Candidates[0].Id, second.Candidates[0].Id)
	assert.Equal(t, first.Candidates[0].ConfidenceScore, second.Candidates[0].ConfidenceScore)

	persisted, err := orchestrator.Candidates(ctx, "juror-1")
	require.NoError(t, err)
	assert.Len(t, persisted, 1)

	// Both runs remain in the job history.
	jobs, err := orchestrator.Jobs(ctx, "juror-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.JobID, jobs[0].Id)
}

func TestSearchJuror_JobLifecycle(t *testing.T) {
	orchestrator := newTestOrchestrator(t, returning("voter_file", 1, voterSmith()))
	ctx := context.Background()

	result, err := orchestrator.SearchJuror(ctx, "juror-1", smithQuery())
	require.NoError(t, err)

	job, err := orchestrator.jobRepository.GetJob(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobCompleted, job.Status)
	assert.Equal(t, 1, job.CandidateCount)
	assert.Equal(t, []string{"voter_file"}, job.Sources)
	assert.Equal(t, "Smith", job.Query.LastName)
	assert.False(t, job.FinishedAt.IsZero())
	assert.Empty(t, job.Error)
}

func TestConfirmAndReject(t *testing.T) {
	orchestrator := newTestOrchestrator(t, returning("voter_file", 1, voterSmith()))
	ctx := context.Background()

	result, err := orchestrator.SearchJuror(ctx, "juror-1", smithQuery())
	require.NoError(t, err)
	id := result.Candidates[0].Id

	confirmed, err := orchestrator.Confirm(ctx, id, "clerk-7")
	require.NoError(t, err)
	assert.True(t, confirmed.Review.Confirmed)
	assert.False(t, confirmed.Review.Rejected)
	assert.Equal(t, "clerk-7", confirmed.Review.Actor)
	assert.False(t, confirmed.Review.ReviewedAt.IsZero())

	// A later rejection overwrites the earlier confirmation.
	rejected, err := orchestrator.Reject(ctx, id, "clerk-8")
	require.NoError(t, err)
	assert.True(t, rejected.Review.Rejected)
	assert.False(t, rejected.Review.Confirmed)

	// Review decisions survive without re-scoring.
	persisted, err := orchestrator.Candidates(ctx, "juror-1")
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, 80, persisted[0].ConfidenceScore)
	assert.True(t, persisted[0].Review.Rejected)
}

func TestSearchJuror_MonitorSeesStages(t *testing.T) {
	orchestrator := newTestOrchestrator(t,
		returning("voter_file", 1, voterSmith()),
		func() *mock.Source {
			offline := mock.NewSource("people_search", 3)
			offline.AvailableFunc = func() bool { return false }
			return offline
		}())

	monitor := &recordingMonitor{}
	result, err := orchestrator.SearchJurorWithMonitor(context.Background(), "juror-1", smithQuery(), monitor)
	require.NoError(t, err)

	assert.Equal(t, "juror-1", monitor.startJuror)
	assert.Equal(t, []string{"people_search"}, monitor.skipped)
	assert.Equal(t, 1, monitor.scoredCount)
	assert.Equal(t, 1, monitor.clusterCount)
	assert.Same(t, result, monitor.finished)
}

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	startJuror   string
	skipped      []string
	scoredCount  int
	clusterCount int
	finished     *core.SearchResult
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(jurorID string, _ *core.SearchQuery) { m.startJuror = jurorID }
func (m *recordingMonitor) SourceSkipped(name string)                 { m.skipped = append(m.skipped, name) }
func (m *recordingMonitor) SourceFailed(_ string, _ error)            {}
func (m *recordingMonitor) SourceReturned(_ string, _ int)            {}
func (m *recordingMonitor) AfterScoring(c []core.ScoredCandidate)     { m.scoredCount = len(c) }
func (m *recordingMonitor) AfterClustering(c []core.EntityCluster)    { m.clusterCount = len(c) }
func (m *recordingMonitor) BelowFloor(_ *core.Candidate)              {}
func (m *recordingMonitor) Finish(r *core.SearchResult)               { m.finished = r }

func TestSearchJuror_NoMatchesCompletesEmpty(t *testing.T) {
	orchestrator := newTestOrchestrator(t, mock.NewSource("voter_file", 1))
	ctx := context.Background()

	result, err := orchestrator.SearchJuror(ctx, "juror-1", smithQuery())
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, 0, result.TotalCount)

	job, err := orchestrator.jobRepository.GetJob(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobCompleted, job.Status)

	// An empty result still replaces whatever was persisted before.
	persisted, err := orchestrator.Candidates(ctx, "juror-1")
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestExecute_CompletedJobCannotRerun(t *testing.T) {
	orchestrator := newTestOrchestrator(t, returning("voter_file", 1, voterSmith()))
	ctx := context.Background()

	job, err := orchestrator.CreateJob(ctx, "juror-1", smithQuery())
	require.NoError(t, err)

	_, err = orchestrator.Execute(ctx, job)
	require.NoError(t, err)

	_, err = orchestrator.Execute(ctx, job)
	assert.ErrorIs(t, err, core.ErrInvalidJobStatus)
}

func TestSearchJuror_SlowSourcesRunConcurrently(t *testing.T) {
	// Two slow sources must overlap: total latency tracks the slowest
	// source, not the sum, even with the default pool.
	slowSource := func(name string, tier int) *mock.Source {
		src := mock.NewSource(name, tier)
		src.SearchFunc = func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
			time.Sleep(300 * time.Millisecond)
			return nil, nil
		}
		return src
	}

	orchestrator := newTestOrchestrator(t,
		slowSource("people_search", 3),
		slowSource("civil_records", 4))

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.DurationMillis, int64(300))
	assert.Less(t, result.DurationMillis, int64(500))
}

func TestSearchJuror_Timing(t *testing.T) {
	slow := mock.NewSource("people_search", 3)
	slow.SearchFunc = func(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
		time.Sleep(10 * time.Millisecond)
		return nil, nil
	}

	orchestrator := newTestOrchestrator(t, slow)
	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", smithQuery())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.DurationMillis, int64(10))
}
