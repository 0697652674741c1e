package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   parsedName
		wantOk bool
	}{
		{
			name:   "first last",
			input:  "John Smith",
			want:   parsedName{first: "john", last: "smith"},
			wantOk: true,
		},
		{
			name:   "first middle last",
			input:  "John Michael Smith",
			want:   parsedName{first: "john", middle: "michael", last: "smith"},
			wantOk: true,
		},
		{
			name:   "multiple middle tokens",
			input:  "Maria del Carmen Lopez",
			want:   parsedName{first: "maria", middle: "del carmen", last: "lopez"},
			wantOk: true,
		},
		{
			name:   "single token treated as last name",
			input:  "Smith",
			want:   parsedName{last: "smith"},
			wantOk: true,
		},
		{
			name:   "comma form",
			input:  "Smith, John",
			want:   parsedName{first: "john", last: "smith"},
			wantOk: true,
		},
		{
			name:   "comma form with middle initial",
			input:  "Smith, John A",
			want:   parsedName{first: "john", middle: "a", last: "smith"},
			wantOk: true,
		},
		{
			name:   "mixed case and extra whitespace",
			input:  "  JOHN   smith  ",
			want:   parsedName{first: "john", last: "smith"},
			wantOk: true,
		},
		{
			name:   "empty",
			input:  "",
			wantOk: false,
		},
		{
			name:   "whitespace only",
			input:  "   ",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseName(tt.input)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("Smith", "smith"))
	assert.Equal(t, 0.0, similarity("", "smith"))
	assert.Equal(t, 0.0, similarity("smith", ""))

	// One substitution across five characters
	assert.InDelta(t, 0.8, similarity("smith", "smyth"), 0.001)

	// Unrelated strings stay low
	assert.Less(t, similarity("smith", "nakamura"), 0.3)
}

func TestPhoneticEqual(t *testing.T) {
	assert.True(t, phoneticEqual("Smith", "Smyth"))
	assert.True(t, phoneticEqual("Robert", "Rupert"))
	assert.False(t, phoneticEqual("Smith", "Jones"))
	assert.False(t, phoneticEqual("", "Smith"))
	assert.False(t, phoneticEqual("Smith", ""))
}

func TestIsInitialMatch(t *testing.T) {
	assert.True(t, isInitialMatch("j", "John"))
	assert.True(t, isInitialMatch("John", "J"))
	assert.False(t, isInitialMatch("j", "Mary"))
	assert.False(t, isInitialMatch("John", "Johnny")) // neither side is an initial
	assert.False(t, isInitialMatch("", "J"))
}
