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


// Package scoring implements the deterministic confidence model that rates
// how likely a raw source match is to be the subject of a search query.
//
// Score is a pure function: the same (query, match) pair always produces the
// same breakdown. Five factors contribute, each independently capped:
//
//   - name (0-40): split across last name, first name and middle name, with
//     exact, phonetic (Soundex) and edit-distance similarity tiers
//   - age (0-20): direct or derived from birth year
//   - location (0-20): city, then zip5, then zip3 region, then state
//   - occupation (0-10): edit-distance similarity
//   - corroboration (0-10): always zero here; populated after entity
//     linking once cluster source counts are known
//
// Every factor carries a human-readable reason so a reviewer can see why a
// candidate scored the way it did. Missing data scores zero with a "no data"
// reason; it is never a penalty.
package scoring
