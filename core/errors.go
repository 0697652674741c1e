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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuery indicates a SearchQuery failed validation.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrNoNameFields indicates a query carries no name information at all.
	ErrNoNameFields = errors.New("at least one name field is required")

	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrEmptyJurorID indicates the JurorID field is empty.
	ErrEmptyJurorID = errors.New("juror id cannot be empty")

	// ErrScoreOutOfRange indicates a confidence score outside 0-100.
	ErrScoreOutOfRange = errors.New("confidence score out of range")

	// ErrConflictingReview indicates a candidate marked both confirmed and rejected.
	ErrConflictingReview = errors.New("candidate cannot be both confirmed and rejected")

	// ErrInvalidJobStatus indicates an invalid JobStatus value.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidAge indicates a negative or implausible age value.
	ErrInvalidAge = errors.New("invalid age")
)
