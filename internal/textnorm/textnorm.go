// Package textnorm folds free text, units and layer names into comparable
// forms. All functions are pure and safe for concurrent use.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize trims, applies NFKC and collapses internal whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// Fold normalizes s, strips diacritics and case-folds it.
func Fold(s string) string {
	normed := Normalize(s)
	if normed == "" {
		return ""
	}
	return cases.Fold().String(stripMarks(normed))
}

// LayerKey is the case-insensitive identity of a drawing layer name.
func LayerKey(s string) string {
	normed := Normalize(s)
	if normed == "" {
		return ""
	}
	return cases.Fold().String(normed)
}

// Unit folds a declared measurement unit: superscripts become digits,
// accents and punctuation are dropped. "M²", "m^2" and "m2." all fold to "m2".
func Unit(s string) string {
	folded := Fold(s)
	if folded == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens splits s into folded word tokens. Boundaries are non-alphanumeric
// runes, lower-to-upper case changes and letter/digit changes, so
// "ElecLum_01" yields ["elec", "lum", "01"].
func Tokens(s string) []string {
	normed := Normalize(s)
	if normed == "" {
		return nil
	}
	normed = stripMarks(normed)
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cases.Fold().String(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range normed {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			prev = 0
			continue
		}
		if prev != 0 {
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsLetter(prev) != unicode.IsLetter(r):
				flush()
			}
		}
		cur = append(cur, r)
		prev = r
	}
	flush()
	return out
}

// Words returns the folded whitespace/punctuation separated words of s without
// case-change splitting. Descriptions use this form.
func Words(s string) []string {
	folded := Fold(s)
	if folded == "" {
		return nil
	}
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Unique returns the non-empty normalized labels of in, first spelling wins,
// duplicates detected by folded key.
func Unique(in []string) []string {
	seen := make(map[string]struct{})
	res := make([]string, 0, len(in))
	for _, lab := range in {
		clean := Normalize(lab)
		if clean == "" {
			continue
		}
		key := Fold(clean)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, clean)
	}
	return res
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
