// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

const maxPlausibleAge = 125

// HasName reports whether the query carries any name information.
func (q *SearchQuery) HasName() bool {
	return strings.TrimSpace(q.FullName) != "" ||
		strings.TrimSpace(q.FirstName) != "" ||
		strings.TrimSpace(q.LastName) != ""
}

// ValidateSearchQuery validates a SearchQuery according to domain rules.
//
// Validation rules:
//   - At least one name field must be present (scoring is meaningless otherwise)
//   - Age, if present, must be in [1, 125]
//
// NOT validated: location and occupation fields may hold anything; sources
// normalize their own inputs.
func ValidateSearchQuery(query *SearchQuery) error {
	if query == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	if !query.HasName() {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrNoNameFields)
	}

	if query.Age < 0 || query.Age > maxPlausibleAge {
		return fmt.Errorf("%w: %w: %d", ErrInvalidQuery, ErrInvalidAge, query.Age)
	}

	return nil
}

// ValidateCandidate validates a Candidate according to domain rules.
//
// Validation rules:
//   - JurorID must not be empty
//   - ConfidenceScore must be in [0, 100]
//   - Review flags cannot both be set
//
// NOT validated (populated by the pipeline):
//   - Profile (may be nil until evidence is merged)
//   - ID (derived from content by the orchestrator)
func ValidateCandidate(candidate *Candidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.JurorID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyJurorID)
	}

	if candidate.ConfidenceScore < 0 || candidate.ConfidenceScore > MaxTotalScore {
		return fmt.Errorf("%w: %w: %d", ErrInvalidCandidate, ErrScoreOutOfRange, candidate.ConfidenceScore)
	}

	if candidate.Review.Confirmed && candidate.Review.Rejected {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrConflictingReview)
	}

	return nil
}

// ValidateJobStatus validates that a JobStatus has a valid value.
func ValidateJobStatus(status JobStatus) error {
	switch status {
	case JobQueued, JobRunning, JobCompleted, JobFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidJobStatus, status)
	}
}

// CanTransition reports whether a job status transition is legal.
// Legal transitions: queued -> running, running -> completed, running -> failed.
func CanTransition(from, to JobStatus) bool {
	switch from {
	case JobQueued:
		return to == JobRunning || to == JobFailed
	case JobRunning:
		return to == JobCompleted || to == JobFailed
	default:
		return false
	}
}
