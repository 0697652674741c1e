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


package search

import "errors"

var (
	// ErrCandidateRepositoryRequired is returned when no candidate repository is provided.
	ErrCandidateRepositoryRequired = errors.New("candidate repository is required")

	// ErrJobRepositoryRequired is returned when no job repository is provided.
	ErrJobRepositoryRequired = errors.New("job repository is required")

	// ErrNoSources is returned when the orchestrator is built with no sources.
	ErrNoSources = errors.New("at least one source is required")

	// ErrInvalidScoreFloor is returned for a floor outside the score range.
	ErrInvalidScoreFloor = errors.New("score floor must be between 0 and 100")

	// ErrQueueReleased is returned when enqueueing on a released queue.
	ErrQueueReleased = errors.New("queue has been released")
)
