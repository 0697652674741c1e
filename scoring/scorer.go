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


package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/poiesic/jurorlink/core"
)

// Similarity tiers for name parts. A phonetic match is worth 60% of the
// part maximum, a fuzzy match 45%.
const (
	fuzzyNameThreshold = 0.7

	lastNameMax      = 20
	lastNamePhonetic = 12
	lastNameFuzzy    = 9

	firstNameMax      = 15
	firstNamePhonetic = 9
	firstNameFuzzy    = 7
	firstInitialBonus = 4

	middleNameMax      = 5
	middleNamePhonetic = 3
	middleNameFuzzy    = 2
)

// Score rates one raw match against one query and returns the scored
// candidate with its factor breakdown. It never fails: malformed names fall
// back to whole-string similarity and missing data scores zero.
func Score(query *core.SearchQuery, match *core.RawMatch) core.ScoredCandidate {
	factors := core.ScoreFactors{
		Name:          scoreName(query, match),
		Age:           scoreAge(query, match, time.Now().Year()),
		Location:      scoreLocation(query, match),
		Occupation:    scoreOccupation(query, match),
		Corroboration: core.FactorScore{Score: 0, Reason: ""},
	}
	factors.TotalScore = factors.Sum()

	return core.ScoredCandidate{
		Match:           *match,
		Factors:         factors,
		ConfidenceScore: factors.TotalScore,
	}
}

// CorroborationBonus maps a cluster's distinct source count to the extra
// confidence awarded for multi-source agreement.
func CorroborationBonus(sourceCount int) int {
	switch {
	case sourceCount >= 4:
		return 10
	case sourceCount == 3:
		return 6
	case sourceCount == 2:
		return 3
	default:
		return 0
	}
}

func scoreName(query *core.SearchQuery, match *core.RawMatch) core.FactorScore {
	qn, qok := queryName(query)
	mn, mok := matchName(match)
	if !qok || !mok {
		// Structured parsing failed on one side; fall back to overall
		// similarity scaled into the name range.
		sim := similarity(rawQueryName(query), rawMatchName(match))
		score := int(math.Round(sim * core.MaxNameScore))
		return core.FactorScore{
			Score:  score,
			Reason: fmt.Sprintf("overall name similarity %.2f", sim),
		}
	}

	// Full agreement across all parts counts as an exact name match even
	// when neither side carries a middle name.
	if qn == mn && qn.last != "" && qn.first != "" {
		return core.FactorScore{Score: core.MaxNameScore, Reason: "exact name match"}
	}

	var score int
	var reasons []string

	// Last name (0-20)
	if qn.last != "" && mn.last != "" {
		switch {
		case qn.last == mn.last:
			score += lastNameMax
			reasons = append(reasons, "exact last name match")
		case phoneticEqual(qn.last, mn.last):
			score += lastNamePhonetic
			reasons = append(reasons, "phonetic last name match")
		case similarity(qn.last, mn.last) > fuzzyNameThreshold:
			score += lastNameFuzzy
			reasons = append(reasons, "similar last name")
		}
	}

	// First name (0-15)
	if qn.first != "" && mn.first != "" {
		switch {
		case qn.first == mn.first:
			score += firstNameMax
			reasons = append(reasons, "exact first name match")
		case phoneticEqual(qn.first, mn.first):
			score += firstNamePhonetic
			reasons = append(reasons, "phonetic first name match")
		case similarity(qn.first, mn.first) > fuzzyNameThreshold:
			score += firstNameFuzzy
			reasons = append(reasons, "similar first name")
		case isInitialMatch(qn.first, mn.first):
			score += firstInitialBonus
			reasons = append(reasons, "first initial match")
		}
	}

	// Middle name or initial (0-5)
	if qn.middle != "" && mn.middle != "" {
		switch {
		case qn.middle == mn.middle:
			score += middleNameMax
			reasons = append(reasons, "exact middle name match")
		case isInitialMatch(qn.middle, mn.middle):
			score += middleNamePhonetic
			reasons = append(reasons, "middle initial match")
		case phoneticEqual(qn.middle, mn.middle):
			score += middleNamePhonetic
			reasons = append(reasons, "phonetic middle name match")
		case similarity(qn.middle, mn.middle) > fuzzyNameThreshold:
			score += middleNameFuzzy
			reasons = append(reasons, "similar middle name")
		}
	}

	if score > core.MaxNameScore {
		score = core.MaxNameScore
	}
	if len(reasons) == 0 {
		return core.FactorScore{Score: 0, Reason: "no name match"}
	}
	return core.FactorScore{Score: score, Reason: strings.Join(reasons, ", ")}
}

func scoreAge(query *core.SearchQuery, match *core.RawMatch, currentYear int) core.FactorScore {
	matchAge := match.Age
	if matchAge == 0 && match.BirthYear > 0 {
		matchAge = currentYear - match.BirthYear
	}

	if query.Age == 0 || matchAge <= 0 {
		return core.FactorScore{Score: 0, Reason: "no age data"}
	}

	diff := query.Age - matchAge
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return core.FactorScore{Score: core.MaxAgeScore, Reason: "exact age match"}
	case diff <= 2:
		return core.FactorScore{Score: 15, Reason: "age within 2 years"}
	case diff <= 5:
		return core.FactorScore{Score: 8, Reason: "age within 5 years"}
	default:
		return core.FactorScore{Score: 0, Reason: fmt.Sprintf("age differs by %d years", diff)}
	}
}

// scoreLocation short-circuits at the first satisfied rule, strongest first.
func scoreLocation(query *core.SearchQuery, match *core.RawMatch) core.FactorScore {
	qCity, mCity := normalize(query.City), normalize(match.City)
	if qCity != "" && qCity == mCity {
		return core.FactorScore{Score: core.MaxLocationScore, Reason: "exact city match"}
	}

	qZip, mZip := zipDigits(query.ZipCode), zipDigits(match.ZipCode)
	if len(qZip) == 5 && qZip == mZip {
		return core.FactorScore{Score: core.MaxLocationScore, Reason: "exact zip match"}
	}
	if qZip != "" && mZip != "" && qZip[:3] == mZip[:3] {
		return core.FactorScore{Score: 12, Reason: "same zip region"}
	}

	qState := strings.ToUpper(strings.TrimSpace(query.State))
	mState := strings.ToUpper(strings.TrimSpace(match.State))
	if qState != "" && qState == mState {
		return core.FactorScore{Score: 5, Reason: "same state"}
	}

	if qCity == "" && qZip == "" && qState == "" {
		return core.FactorScore{Score: 0, Reason: "no location data"}
	}
	return core.FactorScore{Score: 0, Reason: "no location match"}
}

func scoreOccupation(query *core.SearchQuery, match *core.RawMatch) core.FactorScore {
	qOcc, mOcc := normalize(query.Occupation), normalize(match.Occupation)
	if qOcc == "" || mOcc == "" {
		return core.FactorScore{Score: 0, Reason: "no occupation data"}
	}

	sim := similarity(qOcc, mOcc)
	switch {
	case sim > 0.8:
		return core.FactorScore{Score: core.MaxOccupationScore, Reason: "occupation match"}
	case sim > 0.5:
		return core.FactorScore{Score: 5, Reason: "similar occupation"}
	default:
		return core.FactorScore{Score: 0, Reason: "occupations differ"}
	}
}

// zipDigits extracts the leading digits of a zip code, up to five,
// tolerating zip+4 suffixes. Some sources strip leading zeros and emit
// four-digit codes, so anything with at least three digits is kept;
// shorter codes carry no regional signal and come back empty.
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
