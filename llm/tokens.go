package llm

import "unicode/utf8"

// EstimateTokens gives a rough token count for mixed Chinese/English text:
// runes divided by three, never below one for non-empty input.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
