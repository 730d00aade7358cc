// Package match ranks drawing layers against a line item description and
// decides whether the best one is good enough to derive a quantity from.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/internal/textnorm"
	"yashubustudio/boqmatch/layers"
)

// Matcher scores layer profiles of one drawing. It only reads the profile set
// and is safe for concurrent use.
type Matcher struct {
	set       *layers.Set
	cls       *classify.Classifier
	mapping   compiledMapping
	scoring   Scoring
	untrusted []string
	log       *zap.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMapping sets the layer keyword mapping.
func WithMapping(m LayerMapping) Option {
	return func(mt *Matcher) { mt.mapping = compileMapping(m) }
}

// WithScoring overrides the scoring constants; zero fields keep defaults.
func WithScoring(s Scoring) Option {
	return func(mt *Matcher) { mt.scoring = s.ApplyDefaults() }
}

// WithLogger sets the logger for per-item decisions.
func WithLogger(log *zap.Logger) Option {
	return func(mt *Matcher) {
		if log != nil {
			mt.log = log
		}
	}
}

// NewMatcher creates a matcher over set. cls supplies subtype and discipline
// lookups for layer names.
func NewMatcher(set *layers.Set, cls *classify.Classifier, opts ...Option) *Matcher {
	m := &Matcher{
		set:     set,
		cls:     cls,
		scoring: DefaultScoring(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.untrusted = foldPatterns(m.scoring.UntrustedPatterns)
	return m
}

// Scoring returns the effective scoring constants.
func (m *Matcher) Scoring() Scoring { return m.scoring }

// Match ranks the layers for q. Layers without geometry of the expected kind
// are dropped before any text scoring; the rest are scored, adjusted and
// ranked, and the best is accepted only above the threshold.
func (m *Matcher) Match(q Query) Result {
	var res Result
	if q.Kind == classify.Service {
		res.RejectionKind = RejectNotApplicable
		return res
	}

	var cands []Candidate
	for _, p := range m.set.Layers() {
		res.Considered++
		if ev := EvidenceFor(q.Kind, p); ev != layers.GeomNone {
			cands = append(cands, newCandidate(p, ViewLayer, ev))
			continue
		}
		res.Rejections = append(res.Rejections, Rejection{
			Layer:  p.Name,
			View:   ViewLayer,
			Reason: fmt.Sprintf("no %s support", q.Kind),
		})
		if bp, ok := m.set.GetBlock(p.Name); ok {
			if ev := EvidenceFor(q.Kind, bp); ev != layers.GeomNone {
				cands = append(cands, newCandidate(bp, ViewBlock, ev))
			}
		}
	}

	names := make([]string, 0, len(cands))
	for _, c := range cands {
		names = append(names, c.Layer)
	}
	if m.cls != nil {
		res.Discipline = m.cls.Discipline(q.Section, q.Description, names)
	} else {
		res.Discipline = classify.DisciplineResult{Discipline: classify.UnknownDiscipline, Source: classify.SourceNone}
	}

	for i := range cands {
		cands[i].Similarity = Similarity(q.Description, cands[i].Layer)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.View == ViewLayer && b.View == ViewBlock
	})

	kept := cands[:0]
	for i, c := range cands {
		c.SimilarityRank = i + 1
		if !hasSupport(c.Evidence, c.Profile) {
			res.Rejections = append(res.Rejections, Rejection{
				Layer:  c.Layer,
				View:   c.View,
				Reason: fmt.Sprintf("no measurable %s", c.Evidence),
			})
			continue
		}
		kept = append(kept, c)
	}
	cands = kept
	if len(cands) == 0 {
		res.RejectionKind = RejectNoCandidates
		m.log.Debug("no compatible layers",
			zap.String("description", q.Description),
			zap.String("kind", string(q.Kind)),
			zap.Int("considered", res.Considered))
		return res
	}

	text := textnorm.Fold(q.Description)
	for i := range cands {
		m.score(&cands[i], q, text, res.Discipline.Discipline)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
	res.Ranked = cands

	top := cands[0]
	n := m.scoring.Suggestions
	if top.Score > m.scoring.AcceptThreshold {
		res.Accepted = &top
		res.Suggestions = head(cands[1:], n)
	} else {
		res.RejectionKind = RejectBelowThreshold
		res.Suggestions = head(cands, n)
	}
	m.log.Debug("matched",
		zap.String("description", q.Description),
		zap.String("top", top.Layer),
		zap.Float64("score", top.Score),
		zap.Bool("accepted", res.Accepted != nil))
	return res
}

func (m *Matcher) score(c *Candidate, q Query, text string, discipline classify.Discipline) {
	s := m.scoring
	score := c.Similarity
	adjust := func(name, op string, v float64, note string) {
		c.Adjustments = append(c.Adjustments, Adjustment{Name: name, Op: op, Value: v, Note: note})
	}

	if n, found := m.mapping.hits(c.Key, text); n > 0 {
		boost := math.Min(float64(n)*s.MappingBoostPerHit, s.MappingBoostCap)
		score += boost
		adjust("layer_mapping", "+", boost, strings.Join(found, ", "))
	}
	if want := expectedGeometry(q.Kind); want != layers.GeomNone && c.Profile.Dominant() == want {
		f := 1 + s.DominantKindBonus
		score *= f
		adjust("dominant_kind", "*", f, string(want))
	}
	if (q.Kind == classify.Area || q.Kind == classify.Volume) && c.Profile.HasArea() {
		if b := math.Min(s.AreaBonusScale*math.Log10(1+c.Profile.TotalArea), s.AreaBonusCap); b > 0 {
			score += b
			adjust("area_size", "+", b, "")
		}
	}
	if m.cls != nil && q.Subtype != "" && q.Subtype != classify.GenericSubtype &&
		m.cls.LayerSubtype(q.Kind, c.Layer) == q.Subtype {
		score += s.SubtypeBonus
		adjust("subtype", "+", s.SubtypeBonus, q.Subtype)
	}
	if m.cls != nil && discipline != classify.UnknownDiscipline {
		if ld := m.cls.DisciplineOfLayer(c.Layer); ld != classify.UnknownDiscipline && ld != discipline {
			score *= s.DisciplinePenalty
			adjust("discipline", "*", s.DisciplinePenalty, fmt.Sprintf("%s layer for %s item", ld, discipline))
		}
	}
	switch {
	case c.Key == DefpointsLayer:
		score *= s.DefpointsPenalty
		adjust("defpoints", "*", s.DefpointsPenalty, "")
	case untrustedLayer(c.Layer, m.untrusted):
		score *= s.UntrustedPenalty
		adjust("untrusted_layer", "*", s.UntrustedPenalty, "")
	case c.Key == DefaultLayer:
		score *= s.DefaultLayerPenalty
		adjust("default_layer", "*", s.DefaultLayerPenalty, "")
	}
	c.Score = score
	c.Confidence = clamp01(score)
}

func newCandidate(p *layers.Profile, view View, ev layers.GeometryKind) Candidate {
	return Candidate{Layer: p.Name, Key: p.Key, View: view, Evidence: ev, Profile: p}
}

func head(cands []Candidate, n int) []Candidate {
	if len(cands) > n {
		cands = cands[:n]
	}
	return append([]Candidate(nil), cands...)
}
