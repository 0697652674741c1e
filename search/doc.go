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


// Package search orchestrates juror identity searches.
//
// The Orchestrator fans a query out to every registered source
// concurrently, scores each raw match, clusters the scored matches into
// per-person entities, applies a corroboration bonus per cluster, and
// persists the surviving candidates as the juror's new candidate set.
// Each search is tracked by a SearchJob moving through
// queued -> running -> completed|failed.
//
// A source that fails or panics is logged and contributes zero matches;
// it never aborts sibling sources or the search itself.
//
// The Queue wraps the Orchestrator for callers that want searches to run
// in the background; Enqueue returns the job ID immediately and the job
// record tracks progress.
package search
