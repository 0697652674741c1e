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


// Package linking groups scored candidates that plausibly represent the same
// real person into entity clusters.
//
// Clustering runs union-find over every unordered candidate pair. Each pair
// gets a link strength in [0,10]: strong signals (shared email, shared phone,
// shared birth year plus last name) are worth 5 points and suffice alone;
// moderate signals (name, age proximity, city, zip, street, employer)
// accumulate. Two candidates are merged iff their strength reaches the link
// threshold of 5. The threshold deliberately favors precision: a full-name
// match alone (3) never merges two records without at least one
// corroborating moderate signal.
package linking

import (
	"sort"
	"strings"
	"time"

	"github.com/poiesic/jurorlink/core"
)

// LinkThreshold is the minimum pairwise strength required to merge two
// candidates into one cluster.
const LinkThreshold = 5

const maxLinkStrength = 10

// Weights for the aggregated cluster score: the primary candidate carries
// 60%, the remaining 40% is split evenly across the other members.
const (
	primaryWeight = 0.6
	othersWeight  = 0.4
)

// Cluster partitions scored candidates into entity clusters. Within each
// cluster members are ordered by confidence score descending, so the first
// member is the primary. Cluster order follows the first appearance of each
// cluster's earliest member, keeping the output deterministic.
func Cluster(candidates []core.ScoredCandidate) []core.EntityCluster {
	if len(candidates) == 0 {
		return nil
	}

	uf := newUnionFind(len(candidates))
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if LinkStrength(&candidates[i].Match, &candidates[j].Match) >= LinkThreshold {
				uf.union(i, j)
			}
		}
	}

	// Group indices by set representative, preserving first-seen order.
	groups := make(map[int][]int)
	var order []int
	for i := range candidates {
		root := uf.find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], i)
	}

	clusters := make([]core.EntityCluster, 0, len(order))
	for _, root := range order {
		members := make([]core.ScoredCandidate, 0, len(groups[root]))
		for _, idx := range groups[root] {
			members = append(members, candidates[idx])
		}
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].ConfidenceScore > members[b].ConfidenceScore
		})

		clusters = append(clusters, core.EntityCluster{
			Members:         members,
			AggregatedScore: aggregateScore(members),
			SourceCount:     countSources(members),
		})
	}
	return clusters
}

// LinkStrength computes the pairwise link strength between two raw matches,
// capped at 10.
func LinkStrength(a, b *core.RawMatch) int {
	strength := 0

	// Strong signals, 5 points each, any one sufficient on its own.
	if eq := normalizeEmail(a.Email); eq != "" && eq == normalizeEmail(b.Email) {
		strength += 5
	}
	if pq := normalizePhone(a.Phone); pq != "" && pq == normalizePhone(b.Phone) {
		strength += 5
	}
	// Shared birth year plus shared last name counts as one strong signal.
	birthYearSignal := a.BirthYear != 0 && a.BirthYear == b.BirthYear &&
		fold(a.LastName) != "" && fold(a.LastName) == fold(b.LastName)
	if birthYearSignal {
		strength += 5
	}

	// Moderate signals accumulate.
	if fold(a.FirstName) != "" && fold(a.LastName) != "" &&
		fold(a.FirstName) == fold(b.FirstName) && fold(a.LastName) == fold(b.LastName) {
		strength += 3
	}
	// Age proximity works across sources that report birth years instead of
	// ages, but the same birth years never count twice: when the strong
	// signal above fired, the age evidence is already spent.
	if !birthYearSignal {
		if ageA, ageB := effectiveAge(a), effectiveAge(b); ageA > 0 && ageB > 0 {
			diff := ageA - ageB
			if diff < 0 {
				diff = -diff
			}
			if diff <= 2 {
				strength += 1
			}
		}
	}
	if fold(a.City) != "" && fold(a.City) == fold(b.City) {
		strength += 2
	}
	if zipsMatch(a.ZipCode, b.ZipCode) {
		strength += 2
	}
	if fold(a.Street) != "" && fold(a.Street) == fold(b.Street) {
		strength += 3
	}
	if fold(a.Employer) != "" && fold(a.Employer) == fold(b.Employer) {
		strength += 2
	}

	if strength > maxLinkStrength {
		strength = maxLinkStrength
	}
	return strength
}

// aggregateScore computes the cluster's weighted score: the primary member
// contributes 60%, the rest split the remaining 40% evenly. Members must be
// sorted by confidence descending. Single-member clusters keep their score.
func aggregateScore(members []core.ScoredCandidate) int {
	if len(members) == 0 {
		return 0
	}
	if len(members) == 1 {
		return members[0].ConfidenceScore
	}

	weighted := primaryWeight * float64(members[0].ConfidenceScore)
	share := othersWeight / float64(len(members)-1)
	for _, m := range members[1:] {
		weighted += share * float64(m.ConfidenceScore)
	}
	return int(weighted + 0.5)
}

// countSources returns the number of distinct source types among members.
func countSources(members []core.ScoredCandidate) int {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		seen[m.Match.SourceType] = struct{}{}
	}
	return len(seen)
}

func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizePhone strips everything but digits so formatting noise cannot
// defeat the strongest link signal.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// effectiveAge returns the stated age, deriving it from the birth year when
// a source reports only that (the voter file carries birth years, not ages).
func effectiveAge(m *core.RawMatch) int {
	if m.Age > 0 {
		return m.Age
	}
	if m.BirthYear > 0 {
		return time.Now().Year() - m.BirthYear
	}
	return 0
}

// zipsMatch compares the leading digits of two zip codes. Some sources strip
// leading zeros and emit truncated codes, so the comparison uses the digits
// both sides actually carry, never fewer than three.
func zipsMatch(a, b string) bool {
	da, db := zipDigits(a), zipDigits(b)
	if da == "" || db == "" {
		return false
	}
	n := len(da)
	if len(db) < n {
		n = len(db)
	}
	return da[:n] == db[:n]
}

// zipDigits extracts the leading digits of a zip code, up to five. Codes
// with fewer than three digits come back empty.
func zipDigits(zip string) string {
	zip = strings.TrimSpace(zip)
	digits := make([]byte, 0, 5)
	for i := 0; i < len(zip) && len(digits) < 5; i++ {
		if zip[i] < '0' || zip[i] > '9' {
			break
		}
		digits = append(digits, zip[i])
	}
	if len(digits) < 3 {
		return ""
	}
	return string(digits)
}
