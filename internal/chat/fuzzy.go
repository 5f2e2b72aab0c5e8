package chat

import (
	"strings"
	"unicode/utf8"
)

// FuzzyMatcher scores approximate word matches for misspelled queries.
// It holds no state and is safe for concurrent use.
type FuzzyMatcher struct {
	ngram int
}

// NewFuzzyMatcher creates a matcher using character trigrams
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{ngram: 3}
}

// Similarity returns a score in [0,1]: the better of the Levenshtein ratio
// and the trigram Jaccard similarity.
func (fm *FuzzyMatcher) Similarity(s1, s2 string) float64 {
	if strings.EqualFold(s1, s2) {
		return 1.0
	}
	lev := levenshteinRatio(strings.ToLower(s1), strings.ToLower(s2))
	jac := fm.jaccardSimilarity(s1, s2)
	if jac > lev {
		return jac
	}
	return lev
}

// NameSimilarity scores a multi-word name against a same-length run of
// query words. Words that sound alike (same Soundex code) count as close
// matches, which catches transliteration variants such as "panir"/"paneer".
func (fm *FuzzyMatcher) NameSimilarity(words, name []string) float64 {
	if len(words) != len(name) || len(name) == 0 {
		return 0
	}
	total := 0.0
	for i := range name {
		sim := fm.Similarity(words[i], name[i])
		if sim < 0.85 && utf8.RuneCountInString(words[i]) >= 4 && Soundex(words[i]) == Soundex(name[i]) {
			sim = 0.85
		}
		total += sim
	}
	return total / float64(len(name))
}

// generateNGrams creates character n-grams
func (fm *FuzzyMatcher) generateNGrams(s string, n int) []string {
	runes := []rune(strings.ToLower(s))
	if len(runes) < n {
		return []string{string(runes)}
	}

	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i <= len(runes)-n; i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// jaccardSimilarity calculates Jaccard similarity of character n-grams
func (fm *FuzzyMatcher) jaccardSimilarity(s1, s2 string) float64 {
	set1 := make(map[string]bool)
	set2 := make(map[string]bool)
	for _, g := range fm.generateNGrams(s1, fm.ngram) {
		set1[g] = true
	}
	for _, g := range fm.generateNGrams(s2, fm.ngram) {
		set2[g] = true
	}

	intersection := 0
	for g := range set1 {
		if set2[g] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// levenshteinRatio is 1 - editDistance/maxLen over runes
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Soundex implements the Soundex phonetic algorithm
func Soundex(s string) string {
	runes := []rune(strings.ToUpper(s))
	if len(runes) == 0 {
		return "0000"
	}

	// Keep first letter
	result := []rune{runes[0]}

	mapping := map[rune]rune{
		'B': '1', 'F': '1', 'P': '1', 'V': '1',
		'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
		'D': '3', 'T': '3',
		'L': '4',
		'M': '5', 'N': '5',
		'R': '6',
	}

	prevCode := mapping[runes[0]]
	for _, char := range runes[1:] {
		if code, ok := mapping[char]; ok {
			if code != prevCode {
				result = append(result, code)
				prevCode = code
			}
		} else if char != 'H' && char != 'W' {
			prevCode = '0'
		}

		if len(result) >= 4 {
			break
		}
	}

	for len(result) < 4 {
		result = append(result, '0')
	}
	return string(result[:4])
}
