package match

import (
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"yashubustudio/boqmatch/internal/textnorm"
)

const (
	prefixScore      = 0.9
	editRatioFloor   = 0.8
	subsequenceScore = 0.7
	coverageWeight   = 0.8
	minAbbrevLen     = 3
)

// Similarity scores how well a layer name describes a line item, in [0,1].
// Each meaningful layer token is matched against the description words
// (exact, prefix, close edit distance or abbreviation subsequence); the mean
// token coverage is blended with a whole-string edit ratio.
func Similarity(description, layer string) float64 {
	words := textnorm.Words(description)
	tokens := layerTokens(layer)
	if len(words) == 0 || len(tokens) == 0 {
		return 0
	}
	var coverage float64
	for _, tok := range tokens {
		coverage += tokenScore(tok, words)
	}
	coverage /= float64(len(tokens))
	whole := editRatio(strings.Join(words, " "), strings.Join(tokens, " "))
	return clamp01(coverageWeight*coverage + (1-coverageWeight)*whole)
}

// layerTokens drops numeric tokens and single letters, which are usually
// discipline prefixes or sheet numbers.
func layerTokens(layer string) []string {
	var out []string
	for _, tok := range textnorm.Tokens(layer) {
		if utf8.RuneCountInString(tok) < 2 || isNumeric(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func tokenScore(tok string, words []string) float64 {
	best := 0.0
	for _, w := range words {
		var s float64
		switch {
		case w == tok:
			return 1
		case isPrefix(tok, w):
			s = prefixScore
		default:
			if r := editRatio(tok, w); r >= editRatioFloor {
				s = r
			}
		}
		if s > best {
			best = s
		}
	}
	if best < subsequenceScore && utf8.RuneCountInString(tok) >= minAbbrevLen {
		if len(fuzzy.Find(tok, words)) > 0 {
			best = subsequenceScore
		}
	}
	return best
}

func isPrefix(a, b string) bool {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	return utf8.RuneCountInString(short) >= minAbbrevLen && strings.HasPrefix(long, short)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// editRatio is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
func editRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	n := max(len(ra), len(rb))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(n)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
