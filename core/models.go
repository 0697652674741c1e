package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so the same record
// always maps to the same identifier across repeated searches.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Score caps for the confidence model. Each factor is capped independently;
// the total is additionally capped at MaxTotalScore.
const (
	MaxNameScore          = 40
	MaxAgeScore           = 20
	MaxLocationScore      = 20
	MaxOccupationScore    = 10
	MaxCorroborationScore = 10
	MaxTotalScore         = 100
)

// SearchQuery is the identifying information known about the search subject.
// All fields are optional; records are sparse. At least one name field must
// be present for scoring to be meaningful (see ValidateSearchQuery).
type SearchQuery struct {
	FullName   string
	FirstName  string
	LastName   string
	Age        int // 0 means unknown
	City       string
	State      string
	ZipCode    string
	Occupation string
}

// RawMatch is one hit returned by exactly one source.
// Immutable once returned by a source.
type RawMatch struct {
	SourceType string // stable source identifier, set by the producing source
	SourceKey  string // source-local record key, used for stable candidate IDs

	FirstName  string
	MiddleName string
	LastName   string
	FullName   string

	Age       int // 0 means unknown
	BirthYear int // 0 means unknown

	Street  string
	City    string
	State   string
	ZipCode string

	Occupation string
	Employer   string

	Email string
	Phone string

	// RawData carries opaque source-specific evidence, e.g. donation history.
	RawData map[string]any
}

// FactorScore is one itemized sub-score with a human-readable reason.
type FactorScore struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// ScoreFactors is the itemized result of scoring one RawMatch against one
// SearchQuery. Produced once per match; mutated afterwards only to update
// the corroboration factor once clustering has settled source counts.
type ScoreFactors struct {
	Name          FactorScore `json:"name"`
	Age           FactorScore `json:"age"`
	Location      FactorScore `json:"location"`
	Occupation    FactorScore `json:"occupation"`
	Corroboration FactorScore `json:"corroboration"`
	TotalScore    int         `json:"totalScore"`
}

// Sum returns the sum of the five sub-scores capped at MaxTotalScore.
func (f *ScoreFactors) Sum() int {
	total := f.Name.Score + f.Age.Score + f.Location.Score +
		f.Occupation.Score + f.Corroboration.Score
	if total > MaxTotalScore {
		total = MaxTotalScore
	}
	return total
}

// SetCorroboration updates the corroboration factor and recomputes TotalScore.
// The factor is capped at MaxCorroborationScore.
func (f *ScoreFactors) SetCorroboration(score int, reason string) {
	if score > MaxCorroborationScore {
		score = MaxCorroborationScore
	}
	if score < 0 {
		score = 0
	}
	f.Corroboration = FactorScore{Score: score, Reason: reason}
	f.TotalScore = f.Sum()
}

// ScoredCandidate is a RawMatch plus its score breakdown.
// Ephemeral, produced per search.
type ScoredCandidate struct {
	Match           RawMatch
	Factors         ScoreFactors
	ConfidenceScore int // equals Factors.TotalScore
}

// EntityCluster is a set of scored candidates judged to represent one person.
// Members are ordered by individual confidence score, highest first; the
// first member is the primary candidate.
type EntityCluster struct {
	Members         []ScoredCandidate
	AggregatedScore int
	SourceCount     int // distinct SourceType values among Members
}

// Primary returns the highest-scoring member of the cluster.
func (c *EntityCluster) Primary() *ScoredCandidate {
	if len(c.Members) == 0 {
		return nil
	}
	return &c.Members[0]
}

// Review records a human reviewer's confirm/reject decision on a candidate.
type Review struct {
	Confirmed  bool      `json:"confirmed"`
	Rejected   bool      `json:"rejected"`
	Actor      string    `json:"actor,omitempty"`
	ReviewedAt time.Time `json:"reviewedAt"`
}

// Candidate is the durable record representing the best answer for one
// entity cluster. Created fresh on every search for a juror (full replace);
// mutated later only by confirm/reject actions.
type Candidate struct {
	Id      ID
	JurorID string
	JobID   string // search job that produced this candidate

	FirstName  string
	MiddleName string
	LastName   string

	Age       int
	BirthYear int

	Street  string
	City    string
	State   string
	ZipCode string

	Occupation string
	Employer   string

	Email string
	Phone string

	SourceType      string // primary match's source
	SourceCount     int
	ConfidenceScore int
	Factors         ScoreFactors

	// Profile is the merged raw evidence. When SourceCount > 1 it carries
	// every linked member's payload under the "linkedSources" key.
	Profile map[string]any

	Review Review

	InsertedAt time.Time
	UpdatedAt  time.Time
}

// JobStatus is the lifecycle state of a search job.
type JobStatus int

const (
	// JobQueued means the search has been accepted but not started.
	JobQueued JobStatus = iota + 1
	// JobRunning means the search is in progress.
	JobRunning
	// JobCompleted means the search finished and its candidates are persisted.
	JobCompleted
	// JobFailed means the search aborted; see SearchJob.Error.
	JobFailed
)

// String returns the lowercase status name.
func (s JobStatus) String() string {
	switch s {
	case JobQueued:
		return "queued"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SearchJob is the persisted record of one orchestrated search invocation.
// Append-only history; jobs are never deleted.
type SearchJob struct {
	Id             string // uuid
	JurorID        string
	Query          SearchQuery
	Status         JobStatus
	Sources        []string // sources actually queried
	CandidateCount int
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// SearchResult is the orchestrator's output for one search.
type SearchResult struct {
	JurorID        string
	JobID          string
	Candidates     []*Candidate
	TotalCount     int
	SourcesQueried []string
	DurationMillis int64
}
