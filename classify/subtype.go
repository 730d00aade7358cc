package classify

import (
	"sort"
	"strings"

	"yashubustudio/boqmatch/internal/keywords"
	"yashubustudio/boqmatch/internal/textnorm"
)

// GenericSubtype is returned when no subtype keyword matches.
const GenericSubtype = "generic"

const maxAlternatives = 2

// Subtype is the refined category of a line item.
type Subtype struct {
	Name         string        `json:"name"`
	Score        int           `json:"score"`
	Confidence   float64       `json:"confidence"`
	Matched      []string      `json:"matched,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// Alternative is a lower ranked subtype.
type Alternative struct {
	Name       string  `json:"name"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

type compiledSubtype struct {
	name  string
	rules keywords.Compiled
}

func compileSubtypes(raw map[string]keywords.RuleSet) []compiledSubtype {
	out := make([]compiledSubtype, 0, len(raw))
	for name, set := range raw {
		if name == "" || name == GenericSubtype {
			continue
		}
		out = append(out, compiledSubtype{name: name, rules: keywords.Compile(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

type subtypeScore struct {
	name    string
	score   int
	matched []string
}

// Subtype picks the best subtype of kind for description. Each keyword
// contributes its match quality (exact word 3, substring 2, all words 1);
// ties go to the subtype with more matched keywords, then by name.
func (c *Classifier) Subtype(kind MeasureKind, description string) Subtype {
	text := textnorm.Fold(description)
	var scored []subtypeScore
	for _, st := range c.subtypes[kind] {
		if keywords.CountHits(text, st.rules.Anti) > 0 {
			continue
		}
		s := subtypeScore{name: st.name}
		for _, list := range [][]string{st.rules.Strong, st.rules.Weak} {
			for _, kw := range list {
				if q := keywords.Match(text, kw); q != keywords.NoMatch {
					s.score += int(q)
					s.matched = append(s.matched, kw)
				}
			}
		}
		if s.score > 0 {
			scored = append(scored, s)
		}
	}
	if len(scored) == 0 {
		return Subtype{Name: GenericSubtype}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if len(a.matched) != len(b.matched) {
			return len(a.matched) > len(b.matched)
		}
		return a.name < b.name
	})
	total := 0
	for _, s := range scored {
		total += s.score
	}
	top := scored[0]
	res := Subtype{
		Name:       top.name,
		Score:      top.score,
		Confidence: float64(top.score) / float64(total),
		Matched:    top.matched,
	}
	for _, s := range scored[1:] {
		if len(res.Alternatives) == maxAlternatives {
			break
		}
		res.Alternatives = append(res.Alternatives, Alternative{
			Name:       s.name,
			Score:      s.score,
			Confidence: float64(s.score) / float64(total),
		})
	}
	return res
}

// LayerSubtype classifies a layer name against the subtypes of kind. Layer
// names are tokenized first so "A-CIELO_01" reads as "a cielo 01".
func (c *Classifier) LayerSubtype(kind MeasureKind, layer string) string {
	return c.Subtype(kind, strings.Join(textnorm.Tokens(layer), " ")).Name
}
