package scoring

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// normalize lowercases, trims and collapses interior whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// similarity returns a 0-1 edit-distance similarity between two normalized
// strings. Empty input on either side yields 0.
func similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	distance := levenshtein.ComputeDistance(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(distance)/float64(longest)
}

// phoneticEqual reports whether two names share the same non-empty Soundex code.
func phoneticEqual(a, b string) bool {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return false
	}
	return smetrics.Soundex(a) == smetrics.Soundex(b)
}

// isInitialMatch reports whether one side is a bare initial matching the
// other's first letter.
func isInitialMatch(a, b string) bool {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return false
	}
	if len(a) == 1 {
		return a[0] == b[0]
	}
	if len(b) == 1 {
		return b[0] == a[0]
	}
	return false
}
