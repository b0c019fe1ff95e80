package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the default maximum length for descriptions
// in formatted output. Shared across packages so truncation stays consistent.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the minimum maxLen value for TruncateDescription.
// Anything smaller leaves no room for content plus "...".
const MinTruncateLen = 4

// TruncateDescription truncates a string to maxLen characters and ensures
// single-line output. Newlines and runs of whitespace collapse to single
// spaces, and "..." is appended if the string was cut.
//
// Slicing operates on runes rather than bytes so multi-byte characters are
// never split. A maxLen below MinTruncateLen is clamped to MinTruncateLen.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	// Fields splits on any whitespace (\n, \r, \t, repeated spaces);
	// rejoining normalizes everything to single spaces in one pass.
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
