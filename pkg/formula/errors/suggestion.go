package errors

import (
	"fmt"
	"strings"
)

// Suggest proposes the closest candidate to an unknown name using
// Levenshtein distance. It returns "" when there are no candidates.
func Suggest(unknown string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, c := range candidates {
		dist := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(c))
		if dist < minDistance {
			minDistance = dist
			bestMatch = c
		}
	}

	// Only suggest if the distance is reasonable
	if minDistance < 3 || (minDistance < 5 && minDistance*2 < len(unknown)) {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(candidates) > 5 {
		return fmt.Sprintf("Valid names include: %s, ...", strings.Join(candidates[:5], ", "))
	}
	return fmt.Sprintf("Valid names: %s", strings.Join(candidates, ", "))
}

// SuggestOperator suggests comparators valid for an operand kind.
func SuggestOperator(kind string) string {
	switch kind {
	case "number":
		return "Valid comparators: ==, !=, <, >, <=, >=, IN"
	case "sequence":
		return "Use the sequence on the right of IN"
	default:
		return "Valid comparators: ==, !=, IN"
	}
}

// levenshteinDistance computes the edit distance between two strings, in runes.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	len1, len2 := len(r1), len(r2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
