package domain

import "regexp"

var wordExpr = regexp.MustCompile(`\b[\w'-]+\b`)

// WordTokens splits text into word-tokens: maximal runs of alphanumerics,
// apostrophes, and hyphens, bounded by word breaks.
func WordTokens(text string) []string {
	return wordExpr.FindAllString(text, -1)
}

// WordCount returns the number of word-tokens in text.
func WordCount(text string) int {
	return len(WordTokens(text))
}
