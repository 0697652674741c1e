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


package sources

import "errors"

var (
	// ErrUnavailable indicates the source cannot currently serve a search.
	ErrUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates the source's request quota is exhausted.
	ErrRateLimited = errors.New("source rate limit exhausted")

	// ErrBadStatus indicates an unexpected HTTP status from a remote API.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
