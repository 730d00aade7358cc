package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/layers"
)

func areaOn(layer string, v float64) geometry.Primitive {
	return geometry.Area{Layer: layer, Value: v, SourceKind: geometry.KindHatch}
}

func lengthOn(layer string, v float64) geometry.Primitive {
	return geometry.Length{Layer: layer, Value: v, SourceKind: geometry.KindLine}
}

func instanceOn(layer, block string) geometry.Primitive {
	return geometry.Instance{Layer: layer, BlockName: block}
}

func newTestMatcher(prims []geometry.Primitive, opts ...Option) *Matcher {
	return NewMatcher(layers.Aggregate(prims), classify.NewClassifier(classify.DefaultRules()), opts...)
}

func TestMatchAcceptsBestLayer(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{
		areaOn("A-PISO-CERAMICO", 50),
		areaOn("A-MURO", 20),
	})
	res := m.Match(Query{Description: "Piso cerámico 60x60", Kind: classify.Area, Subtype: "floor"})
	require.NotNil(t, res.Accepted)
	assert.Equal(t, "A-PISO-CERAMICO", res.Accepted.Layer)
	assert.Equal(t, 1, res.Accepted.SimilarityRank)
	assert.Equal(t, layers.GeomArea, res.Accepted.Evidence)
	assert.Greater(t, res.Accepted.Score, 0.4)
	assert.LessOrEqual(t, res.Accepted.Confidence, 1.0)
	assert.Empty(t, res.RejectionKind)

	names := make([]string, 0, len(res.Accepted.Adjustments))
	for _, a := range res.Accepted.Adjustments {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"dominant_kind", "area_size", "subtype"}, names)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "A-MURO", res.Suggestions[0].Layer)
}

func TestMatchTieBreaksBySimilarityRank(t *testing.T) {
	prims := []geometry.Primitive{
		lengthOn("MURO-B", 10),
		lengthOn("MURO-A", 10),
	}
	for i := 0; i < 5; i++ {
		res := newTestMatcher(prims).Match(Query{Description: "Muro tabique", Kind: classify.Length})
		require.NotNil(t, res.Accepted)
		require.Len(t, res.Ranked, 2)
		assert.Equal(t, res.Ranked[0].Score, res.Ranked[1].Score)
		assert.Equal(t, "MURO-A", res.Accepted.Layer)
	}

	boosted := newTestMatcher(prims, WithMapping(LayerMapping{"muro-b": {"tabique"}}))
	res := boosted.Match(Query{Description: "Muro tabique", Kind: classify.Length})
	require.NotNil(t, res.Accepted)
	assert.Equal(t, "MURO-B", res.Accepted.Layer)
	assert.Equal(t, 2, res.Accepted.SimilarityRank)
}

func TestMatchBelowThreshold(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{
		areaOn("A-PISO", 10),
		areaOn("A-CIELO", 10),
		areaOn("A-TECHO", 10),
		areaOn("A-FACHADA", 10),
	})
	res := m.Match(Query{Description: "Partida sin relación", Kind: classify.Area})
	assert.Nil(t, res.Accepted)
	assert.Equal(t, RejectBelowThreshold, res.RejectionKind)
	assert.Len(t, res.Suggestions, 3)
}

func TestMatchNoCandidates(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{lengthOn("E-CABLE", 30)})
	res := m.Match(Query{Description: "Enchufe doble", Kind: classify.Count})
	assert.Nil(t, res.Accepted)
	assert.Equal(t, RejectNoCandidates, res.RejectionKind)
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, "E-CABLE", res.Rejections[0].Layer)
	assert.Equal(t, 1.0, res.RejectionRate())
}

func TestMatchServiceIsNotMatched(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{areaOn("A-PISO", 10)})
	res := m.Match(Query{Description: "Instalación de faena", Kind: classify.Service})
	assert.Equal(t, RejectNotApplicable, res.RejectionKind)
	assert.Zero(t, res.Considered)
}

func TestMatchAreaFallsBackToLength(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{lengthOn("A-TABIQUE", 12)})
	res := m.Match(Query{Description: "Tabique volcanita", Kind: classify.Area})
	require.NotNil(t, res.Accepted)
	assert.Equal(t, layers.GeomLength, res.Accepted.Evidence)
}

func TestMatchBlockView(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{
		geometry.Instance{Layer: "BARANDA", BlockName: "B1"},
		geometry.Length{Layer: "METAL", Value: 6, RootLayer: "BARANDA"},
	})
	res := m.Match(Query{Description: "Baranda metálica", Kind: classify.Length})
	require.NotNil(t, res.Accepted)
	assert.Equal(t, ViewBlock, res.Accepted.View)
	assert.Equal(t, "BARANDA", res.Accepted.Layer)
	assert.InDelta(t, 6.0, res.Accepted.Profile.TotalLength, 1e-9)
}

func TestMatchCountOnRunLayer(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{
		lengthOn("E-CANAL", 5), lengthOn("E-CANAL", 5), lengthOn("E-CANAL", 5),
		instanceOn("E-CANAL", "CAJA"),
	})
	res := m.Match(Query{Description: "Canal de cables", Kind: classify.Count})
	require.Len(t, res.Ranked, 1)
	assert.Equal(t, layers.GeomLength, res.Ranked[0].Evidence)
}

func TestEvidenceForCountTie(t *testing.T) {
	set := layers.Aggregate([]geometry.Primitive{
		lengthOn("E-LUM", 1), lengthOn("E-LUM", 1),
		instanceOn("E-LUM", "LUM"), instanceOn("E-LUM", "LUM"),
	})
	p, ok := set.Get("E-LUM")
	require.True(t, ok)
	assert.Equal(t, layers.GeomCount, EvidenceFor(classify.Count, p))

	set = layers.Aggregate([]geometry.Primitive{
		lengthOn("E-LUM", 1), lengthOn("E-LUM", 1), lengthOn("E-LUM", 1),
		instanceOn("E-LUM", "LUM"), instanceOn("E-LUM", "LUM"),
	})
	p, _ = set.Get("E-LUM")
	assert.Equal(t, layers.GeomLength, EvidenceFor(classify.Count, p))
}

func TestMatchPenalties(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{
		areaOn("Defpoints", 10),
		areaOn("A-PISO-COTAS", 10),
		areaOn("0", 10),
	})
	res := m.Match(Query{Description: "piso", Kind: classify.Area})
	penalties := map[string]string{}
	for _, c := range res.Ranked {
		for _, a := range c.Adjustments {
			if a.Op == "*" && a.Name != "dominant_kind" {
				penalties[c.Layer] = a.Name
			}
		}
	}
	assert.Equal(t, map[string]string{
		"Defpoints":    "defpoints",
		"A-PISO-COTAS": "untrusted_layer",
		"0":            "default_layer",
	}, penalties)
}

func TestMatchDisciplinePenalty(t *testing.T) {
	m := newTestMatcher([]geometry.Primitive{
		lengthOn("E-DUCTO", 10),
		lengthOn("H-DUCTO", 10),
	})
	res := m.Match(Query{Description: "Ducto", Section: "Climatización", Kind: classify.Length})
	assert.Equal(t, classify.HVAC, res.Discipline.Discipline)
	require.NotNil(t, res.Accepted)
	assert.Equal(t, "H-DUCTO", res.Accepted.Layer)
}

func TestSimilarity(t *testing.T) {
	assert.Zero(t, Similarity("", "A-MURO"))
	assert.Zero(t, Similarity("Muro", "0"))
	assert.InDelta(t, 1.0, Similarity("Tubería PVC", "TUBERIA-PVC"), 1e-9)
	assert.Greater(t, Similarity("Luminaria LED embutida", "E-LUM"), 0.6)

	abbrev := Similarity("Tubería PVC", "TBR-PVC")
	assert.Greater(t, abbrev, 0.6)
	assert.Less(t, abbrev, Similarity("Tubería PVC", "TUBERIA-PVC"))
	assert.Less(t, Similarity("Piso cerámico", "A-MURO"), 0.2)
}

func TestEditRatio(t *testing.T) {
	assert.Equal(t, 1.0, editRatio("", ""))
	assert.InDelta(t, 0.875, editRatio("ceramica", "ceramico"), 1e-9)
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
}

func TestUntrustedLayer(t *testing.T) {
	patterns := DefaultScoring().UntrustedPatterns
	assert.True(t, UntrustedLayer("A-DIM", patterns))
	assert.True(t, UntrustedLayer("XREF-BASE", patterns))
	assert.True(t, UntrustedLayer("BASE|A-WALL", patterns))
	assert.True(t, UntrustedLayer("TEXTOS-PLANTA", patterns))
	assert.False(t, UntrustedLayer("A-TEXTURA", patterns))
	assert.False(t, UntrustedLayer("A-MURO", patterns))
}

func TestMappingGlob(t *testing.T) {
	m := compileMapping(LayerMapping{"E-LUM*": {"Luminaria", "foco"}, "A-MURO": {"tabique"}})
	n, found := m.hits("e-lum-01", "luminaria led y foco")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"luminaria", "foco"}, found)
	n, _ = m.hits("a-muro-2", "tabique")
	assert.Zero(t, n)
}
