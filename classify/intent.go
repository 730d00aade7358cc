package classify

import (
	"yashubustudio/boqmatch/internal/keywords"
	"yashubustudio/boqmatch/internal/textnorm"
)

// Intent reasons.
const (
	ReasonUnit      = "unit"
	ReasonKeyword   = "keyword hint, no unit"
	ReasonNoSignals = "no unit and no keyword hint"
)

const (
	strongHintConfidence = 0.85
	weakHintConfidence   = 0.6
)

// Intent is the classification of one line item.
type Intent struct {
	Kind       MeasureKind `json:"kind"`
	Method     CalcMethod  `json:"method"`
	Confidence float64     `json:"confidence"`
	Reason     string      `json:"reason"`
	Unit       string      `json:"unit,omitempty"`
	Keywords   []string    `json:"keywords,omitempty"`
	Ambiguous  bool        `json:"ambiguous,omitempty"`
}

// Classifier holds compiled keyword tables. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	intents     map[MeasureKind]keywords.Compiled
	subtypes    map[MeasureKind][]compiledSubtype
	disciplines []compiledDiscipline
	prefixes    []layerPrefix
}

// NewClassifier compiles rules.
func NewClassifier(rules Rules) *Classifier {
	c := &Classifier{
		intents:  make(map[MeasureKind]keywords.Compiled, len(rules.Intents)),
		subtypes: make(map[MeasureKind][]compiledSubtype, len(rules.Subtypes)),
	}
	for name, set := range rules.Intents {
		if kind := ParseKind(name); kind != Unknown {
			c.intents[kind] = keywords.Compile(set)
		}
	}
	for name, subs := range rules.Subtypes {
		if kind := ParseKind(name); kind != Unknown {
			c.subtypes[kind] = compileSubtypes(subs)
		}
	}
	c.disciplines, c.prefixes = compileDisciplines(rules.Disciplines)
	return c
}

// Intent classifies a line item. A recognized unit always decides the kind
// with confidence 1; description keywords are consulted only without one.
func (c *Classifier) Intent(unit, description string) Intent {
	if kind, ok := UnitKind(unit); ok {
		return Intent{
			Kind:       kind,
			Method:     MethodFor(kind),
			Confidence: 1,
			Reason:     ReasonUnit,
			Unit:       textnorm.Unit(unit),
		}
	}
	return c.hint(textnorm.Fold(description))
}

func (c *Classifier) hint(text string) Intent {
	var (
		best      = Unknown
		bestScore float64
		bestHits  keywords.Hits
		tied      bool
	)
	for _, kind := range kindOrder {
		set, ok := c.intents[kind]
		if !ok {
			continue
		}
		hits := set.Count(text)
		score := keywords.Score(hits)
		switch {
		case score > bestScore:
			best, bestScore, bestHits, tied = kind, score, hits, false
		case score > 0 && score == bestScore:
			tied = true
		}
	}
	if best == Unknown {
		return Intent{Kind: Unknown, Method: MethodUnknown, Reason: ReasonNoSignals}
	}
	conf := weakHintConfidence
	if bestHits.Strong > 0 && !tied {
		conf = strongHintConfidence
	}
	return Intent{
		Kind:       best,
		Method:     MethodFor(best),
		Confidence: conf,
		Reason:     ReasonKeyword,
		Keywords:   c.intents[best].Matched(text),
		Ambiguous:  tied,
	}
}
