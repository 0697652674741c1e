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


// Package sources defines the uniform contract for identity data sources.
//
// A Source wraps one public-record provider (a local indexed store or a
// tiered external API) behind a single search interface. Implementations are
// independent variants tagged by their Name; they share no base state, only
// the contract.
//
// # Contract
//
//   - Search returns raw matches for a query. A normal "no results" outcome
//     is an empty slice, not an error; errors are reserved for transport and
//     auth failures. Implementations bound their own external calls with
//     timeouts and degrade to an empty result on timeout rather than
//     propagating it.
//   - Available is a cheap health/configuration check. For rate-limited
//     sources it must reflect the current rate-limit state, not just
//     configuration presence.
//   - Name is the stable identifier recorded as the source type on every
//     match the source returns.
//   - Tier documents expected latency: tier 1 is a local store (<100ms),
//     tiers 2-4 are increasingly slow remote APIs (up to 30s).
//
// # Implementation Packages
//
//   - sources/voterfile: tier-1 local voter registration extract (SQLite)
//   - sources/fec: tier-2 campaign donor records API
//   - sources/pplsearch: tier-3 people-search API, rate-limited
//   - sources/mock: configurable test double
//
// # Thread Safety
//
// A single source instance is shared by every concurrent search, so
// implementations must be safe for concurrent use. RollingLimiter provides
// the shared request accounting for rate-limited sources.
package sources
