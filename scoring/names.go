package scoring

import (
	"strings"

	"github.com/poiesic/jurorlink/core"
)

// parsedName holds the normalized parts of a personal name.
type parsedName struct {
	first  string
	middle string
	last   string
}

// parseName splits a free-form name into first/middle/last parts.
// Handles "Last, First [Middle]" and "First [Middle...] Last" forms.
// Returns false when no usable part can be extracted.
func parseName(full string) (parsedName, bool) {
	full = normalize(full)
	if full == "" {
		return parsedName{}, false
	}

	// "Smith, John A" form
	if before, after, found := strings.Cut(full, ","); found {
		name := parsedName{last: normalize(before)}
		parts := strings.Fields(normalize(after))
		if len(parts) > 0 {
			name.first = parts[0]
		}
		if len(parts) > 1 {
			name.middle = strings.Join(parts[1:], " ")
		}
		if name.last == "" && name.first == "" {
			return parsedName{}, false
		}
		return name, true
	}

	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return parsedName{}, false
	case 1:
		return parsedName{last: parts[0]}, true
	case 2:
		return parsedName{first: parts[0], last: parts[1]}, true
	default:
		return parsedName{
			first:  parts[0],
			middle: strings.Join(parts[1:len(parts)-1], " "),
			last:   parts[len(parts)-1],
		}, true
	}
}

// queryName builds a parsedName from a query, preferring structured fields
// over the free-form full name.
func queryName(query *core.SearchQuery) (parsedName, bool) {
	if query.FirstName != "" || query.LastName != "" {
		return parsedName{
			first: normalize(query.FirstName),
			last:  normalize(query.LastName),
		}, true
	}
	return parseName(query.FullName)
}

// matchName builds a parsedName from a raw match, preferring structured
// fields over the free-form full name.
func matchName(match *core.RawMatch) (parsedName, bool) {
	if match.FirstName != "" || match.LastName != "" {
		return parsedName{
			first:  normalize(match.FirstName),
			middle: normalize(match.MiddleName),
			last:   normalize(match.LastName),
		}, true
	}
	return parseName(match.FullName)
}

// rawQueryName returns the best free-form rendition of a query's name for
// the fuzzy fallback path.
func rawQueryName(query *core.SearchQuery) string {
	if query.FullName != "" {
		return query.FullName
	}
	return strings.TrimSpace(query.FirstName + " " + query.LastName)
}

// rawMatchName returns the best free-form rendition of a match's name for
// the fuzzy fallback path.
func rawMatchName(match *core.RawMatch) string {
	if match.FullName != "" {
		return match.FullName
	}
	return strings.TrimSpace(strings.Join(strings.Fields(
		match.FirstName+" "+match.MiddleName+" "+match.LastName), " "))
}
