package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsShortKeywordNeedsWordBoundary(t *testing.T) {
	assert.True(t, Contains("tubo pvc 110mm", "pvc"))
	assert.False(t, Contains("pvcx reforzado", "pvc"))
	assert.True(t, Contains("tuberias de cobre", "tuberia"))
}

func TestMatchQuality(t *testing.T) {
	text := "muro de albanileria confinada"
	assert.Equal(t, Exact, Match(text, "muro"))
	assert.Equal(t, Substring, Match(text, "albanil"))
	assert.Equal(t, AllWords, Match(text, "muro confinada"))
	assert.Equal(t, NoMatch, Match(text, "losa"))
	assert.Equal(t, NoMatch, Match("", "losa"))
}

func TestCompileFoldsAndDeduplicates(t *testing.T) {
	c := Compile(RuleSet{Strong: []string{"Tubería", "tuberia", " "}, Weak: []string{"Cañería"}})
	assert.Equal(t, []string{"tuberia"}, c.Strong)
	assert.Equal(t, []string{"caneria"}, c.Weak)

	hits := c.Count("tuberia y caneria")
	assert.Equal(t, Hits{Strong: 1, Weak: 1}, hits)
	assert.Equal(t, []string{"caneria", "tuberia"}, c.Matched("tuberia y caneria"))
}

func TestMergeReplacesWholeLabel(t *testing.T) {
	base := map[string]RuleSet{
		"length": {Strong: []string{"tuberia"}},
		"count":  {Strong: []string{"tablero"}},
	}
	merged := Merge(base, map[string]RuleSet{"count": {Strong: []string{"enchufe"}}})
	require.Len(t, merged, 2)
	assert.Equal(t, []string{"enchufe"}, merged["count"].Strong)
	assert.Equal(t, []string{"tuberia"}, merged["length"].Strong)

	merged["length"].Strong[0] = "x"
	assert.Equal(t, "tuberia", base["length"].Strong[0])
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, Score(Hits{}))
	assert.Equal(t, 1.25, Score(Hits{Strong: 1, Weak: 1}))
	assert.Equal(t, 4.0, Score(Hits{Strong: 9, Weak: 9}))
	assert.Equal(t, 0.0, Score(Hits{Strong: 1, Anti: 2}))
}
