// Package keywords holds the strong/weak/anti keyword rule sets shared by the
// classifiers and the matcher, together with the containment tests they use.
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"yashubustudio/boqmatch/internal/textnorm"
)

// RuleSet is the editable form of a keyword rule, as stored in rule files.
type RuleSet struct {
	Strong []string `yaml:"strong,omitempty" json:"strong,omitempty"`
	Weak   []string `yaml:"weak,omitempty" json:"weak,omitempty"`
	Anti   []string `yaml:"anti,omitempty" json:"anti,omitempty"`
}

// Compiled is a RuleSet with folded, de-duplicated keyword lists.
type Compiled struct {
	Strong []string
	Weak   []string
	Anti   []string
}

// Hits counts how many keywords of each list occur in folded text.
type Hits struct {
	Strong int
	Weak   int
	Anti   int
}

// Quality ranks how a keyword occurs in a text.
type Quality int

const (
	NoMatch Quality = iota
	// AllWords means every word of a multi-word keyword occurs, not contiguously.
	AllWords
	Substring
	Exact
)

// Compile folds every keyword of set.
func Compile(set RuleSet) Compiled {
	return Compiled{
		Strong: normalizeList(set.Strong),
		Weak:   normalizeList(set.Weak),
		Anti:   normalizeList(set.Anti),
	}
}

// CompileAll compiles a label -> rule set table; labels are folded too.
func CompileAll(raw map[string]RuleSet) map[string]Compiled {
	compiled := make(map[string]Compiled, len(raw))
	for label, set := range raw {
		key := textnorm.Fold(label)
		if key == "" {
			continue
		}
		compiled[key] = Compile(set)
	}
	return compiled
}

// Count returns the hits of set in text. text must already be folded.
func (c Compiled) Count(text string) Hits {
	return Hits{
		Strong: CountHits(text, c.Strong),
		Weak:   CountHits(text, c.Weak),
		Anti:   CountHits(text, c.Anti),
	}
}

// Matched returns the strong and weak keywords found in text, sorted.
func (c Compiled) Matched(text string) []string {
	var out []string
	for _, list := range [][]string{c.Strong, c.Weak} {
		for _, kw := range list {
			if Contains(text, kw) {
				out = append(out, kw)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the set has no positive keywords.
func (c Compiled) Empty() bool {
	return len(c.Strong) == 0 && len(c.Weak) == 0
}

// CountHits counts the keywords of list contained in text.
func CountHits(text string, list []string) int {
	hits := 0
	for _, kw := range list {
		if Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// Contains reports whether kw occurs in text. Short ASCII keywords ("pvc",
// "gl") must stand alone as a word; everything else is a substring test.
func Contains(text, kw string) bool {
	if kw == "" {
		return false
	}
	if useWordBoundary(kw) {
		return ContainsWord(text, kw)
	}
	return strings.Contains(text, kw)
}

// Match grades how kw occurs in text: as a whole word, as a substring, or with
// all of its words present somewhere in text.
func Match(text, kw string) Quality {
	if kw == "" || text == "" {
		return NoMatch
	}
	if ContainsWord(text, kw) {
		return Exact
	}
	if !useWordBoundary(kw) && strings.Contains(text, kw) {
		return Substring
	}
	parts := strings.Fields(kw)
	if len(parts) < 2 {
		return NoMatch
	}
	for _, p := range parts {
		if !Contains(text, p) {
			return NoMatch
		}
	}
	return AllWords
}

// ContainsWord reports whether word occurs in text delimited by non
// alphanumeric runes or the text boundaries.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		var before rune
		if idx > 0 {
			before, _ = utf8.DecodeLastRuneInString(text[:idx])
		}
		var after rune
		if end := idx + len(word); end < len(text) {
			after, _ = utf8.DecodeRuneInString(text[end:])
		}
		if !isAlphaNumRune(before) && !isAlphaNumRune(after) {
			return true
		}
		start = idx + len(word)
	}
	return false
}

// Merge returns base with every label of overrides replacing its counterpart.
func Merge(base, overrides map[string]RuleSet) map[string]RuleSet {
	merged := Clone(base)
	for label, set := range overrides {
		merged[label] = set.Clone()
	}
	return merged
}

// Clone deep-copies a rule table.
func Clone(src map[string]RuleSet) map[string]RuleSet {
	dst := make(map[string]RuleSet, len(src))
	for label, set := range src {
		dst[label] = set.Clone()
	}
	return dst
}

// Clone deep-copies set.
func (set RuleSet) Clone() RuleSet {
	res := RuleSet{}
	if len(set.Strong) > 0 {
		res.Strong = append([]string(nil), set.Strong...)
	}
	if len(set.Weak) > 0 {
		res.Weak = append([]string(nil), set.Weak...)
	}
	if len(set.Anti) > 0 {
		res.Anti = append([]string(nil), set.Anti...)
	}
	return res
}

func normalizeList(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words))
	res := make([]string, 0, len(words))
	for _, w := range words {
		normed := textnorm.Fold(w)
		if normed == "" {
			continue
		}
		if _, ok := seen[normed]; ok {
			continue
		}
		seen[normed] = struct{}{}
		res = append(res, normed)
	}
	return res
}

func useWordBoundary(kw string) bool {
	count := 0
	for _, r := range kw {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		count++
		if count > 3 {
			return false
		}
	}
	return count > 0
}

func isAlphaNumRune(r rune) bool {
	if r == 0 || r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

const (
	strongWeight = 1.0
	weakWeight   = 0.25
	antiWeight   = 1.0
	strongCap    = 3
	weakCap      = 5
	scoreCap     = 4.0
)

// Score weighs hits: strong keywords count fully, weak ones a quarter, anti
// keywords subtract. Counts and the result are capped; the result is >= 0.
func Score(h Hits) float64 {
	s := min(h.Strong, strongCap)
	w := min(h.Weak, weakCap)
	score := strongWeight*float64(s) + weakWeight*float64(w)
	if h.Anti > 0 {
		score -= antiWeight * float64(h.Anti)
	}
	return max(0, min(score, scoreCap))
}
