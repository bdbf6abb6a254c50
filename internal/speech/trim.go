package speech

import "strings"

// TrimToWordBudget bounds text to at most maxWords whitespace-separated words.
// When it has to cut, it prefers ending on the last sentence-terminal mark
// (. ! ?) within the kept words so the clip sounds finished; if no boundary
// exists in the kept chunk it returns the raw word cut. Input at or under the
// budget comes back unchanged apart from surrounding whitespace.
func TrimToWordBudget(text string, maxWords int) string {
	trimmed := strings.TrimSpace(text)
	if maxWords <= 0 {
		return trimmed
	}

	words := strings.Fields(trimmed)
	if len(words) <= maxWords {
		return trimmed
	}

	chunk := strings.Join(words[:maxWords], " ")
	if end := lastSentenceEnd(chunk); end >= 0 {
		return strings.TrimSpace(chunk[:end+1])
	}
	return chunk
}

// lastSentenceEnd returns the index of the last . ! or ? that is followed by
// whitespace or ends the string, or -1 when the chunk has no such boundary.
func lastSentenceEnd(chunk string) int {
	for i := len(chunk) - 1; i >= 0; i-- {
		switch chunk[i] {
		case '.', '!', '?':
			if i == len(chunk)-1 || chunk[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}
