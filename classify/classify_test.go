package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/boqmatch/internal/keywords"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultRules())
}

func TestUnitAuthority(t *testing.T) {
	c := newTestClassifier()
	descriptions := []string{
		"",
		"Suministro e instalación de luminaria LED",
		"Tubería PVC 110 mm",
		"Pavimento porcelanato 60x60",
		"Hormigón H-30 en losas",
		"Instalación de faena y certificado final",
	}
	for kind, units := range UnitSynonyms() {
		for _, u := range units {
			for _, desc := range descriptions {
				got := c.Intent(u, desc)
				require.Equal(t, kind, got.Kind, "unit %q with %q", u, desc)
				assert.Equal(t, 1.0, got.Confidence)
				assert.Equal(t, ReasonUnit, got.Reason)
			}
		}
	}
}

func TestUnitSynonymsAreDisjoint(t *testing.T) {
	seen := map[string]MeasureKind{}
	for kind, units := range UnitSynonyms() {
		for _, u := range units {
			prev, dup := seen[u]
			assert.False(t, dup, "unit %q listed for %s and %s", u, prev, kind)
			seen[u] = kind
		}
	}
}

func TestUnitNormalization(t *testing.T) {
	tests := map[string]MeasureKind{
		"M²":           Area,
		"m^2":          Area,
		"Mts.":         Length,
		"m³":           Volume,
		" Un. ":        Count,
		"c/u":          Count,
		"Gl.":          Service,
		"Global":       Service,
		"Metro Lineal": Length,
	}
	for unit, want := range tests {
		got, ok := UnitKind(unit)
		assert.True(t, ok, unit)
		assert.Equal(t, want, got, unit)
	}
	_, ok := UnitKind("zz")
	assert.False(t, ok)
	_, ok = UnitKind("")
	assert.False(t, ok)
}

func TestKeywordHint(t *testing.T) {
	c := newTestClassifier()

	got := c.Intent("", "Canalización eléctrica con tubería conduit")
	assert.Equal(t, Length, got.Kind)
	assert.Equal(t, 0.85, got.Confidence)
	assert.Equal(t, ReasonKeyword, got.Reason)
	assert.Contains(t, got.Keywords, "tuberia")

	got = c.Intent("xx", "Tablero de distribución")
	assert.Equal(t, Count, got.Kind)
	assert.Equal(t, ReasonKeyword, got.Reason)

	got = c.Intent("", "Partida sin pistas")
	assert.Equal(t, Unknown, got.Kind)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, ReasonNoSignals, got.Reason)

	got = c.Intent("", "Capacitación y certificado de instalación")
	assert.Equal(t, Service, got.Kind)
	assert.Equal(t, MethodService, got.Method)
}

func TestKeywordHintAmbiguous(t *testing.T) {
	c := NewClassifier(Rules{Intents: map[string]keywords.RuleSet{
		"length": {Strong: []string{"ducto"}},
		"count":  {Strong: []string{"rejilla"}},
	}})
	got := c.Intent("", "ducto con rejilla")
	assert.Equal(t, Length, got.Kind)
	assert.True(t, got.Ambiguous)
	assert.Equal(t, 0.6, got.Confidence)
}

func TestCompatible(t *testing.T) {
	for _, k := range []MeasureKind{Length, Area, Volume, Count} {
		assert.True(t, Compatible(k, k))
		assert.True(t, Compatible(Unknown, k))
		assert.False(t, Compatible(Service, k))
	}
	assert.False(t, Compatible(Count, Length))
	assert.False(t, Compatible(Area, Length))
	assert.False(t, Compatible(Service, Service))
	assert.Equal(t, MethodUnknown, MethodFor(Unknown))
}

func TestSubtype(t *testing.T) {
	c := newTestClassifier()

	got := c.Subtype(Area, "Pintura de cielo raso en baños")
	assert.Equal(t, "ceiling", got.Name)
	assert.Equal(t, 6, got.Score)

	got = c.Subtype(Area, "Revestimiento cerámico de muro y piso")
	assert.Equal(t, "wall", got.Name)
	require.Len(t, got.Alternatives, 1)
	assert.Equal(t, "floor", got.Alternatives[0].Name)

	got = c.Subtype(Area, "Sin categoría")
	assert.Equal(t, GenericSubtype, got.Name)

	assert.Equal(t, "ceiling", c.LayerSubtype(Area, "A-CIELO_01"))
	assert.Equal(t, GenericSubtype, c.Subtype(Service, "cielo").Name)
}

func TestDiscipline(t *testing.T) {
	c := newTestClassifier()

	got := c.Discipline("INSTALACIONES ELÉCTRICAS", "Pintura", nil)
	assert.Equal(t, Electrical, got.Discipline)
	assert.Equal(t, SourceSection, got.Source)

	got = c.Discipline("", "Suministro de luminaria LED", nil)
	assert.Equal(t, Electrical, got.Discipline)
	assert.Equal(t, SourceDescription, got.Source)

	got = c.Discipline("", "Partida genérica", []string{"A-MURO", "A-PISO", "E-LUM", "0", "DEFPOINTS"})
	assert.Equal(t, Architecture, got.Discipline)
	assert.Equal(t, SourceLayers, got.Source)

	got = c.Discipline("", "Partida genérica", []string{"A-MURO", "E-LUM", "S-VIGA"})
	assert.Equal(t, UnknownDiscipline, got.Discipline)
	assert.Equal(t, SourceNone, got.Source)
}

func TestDisciplineOfLayer(t *testing.T) {
	c := newTestClassifier()
	tests := map[string]Discipline{
		"A-WALL":      Architecture,
		"S_BEAM":      Structure,
		"E-LUM":       Electrical,
		"ELECTRICO":   Electrical,
		"IS-AP":       Sanitary,
		"FP-SPRK":     Fire,
		"H-DUCT":      HVAC,
		"BASE|A-DOOR": Architecture,
		"AREA":        UnknownDiscipline,
		"0":           UnknownDiscipline,
		"":            UnknownDiscipline,
	}
	for layer, want := range tests {
		assert.Equal(t, want, c.DisciplineOfLayer(layer), layer)
	}
}

func TestRulesMerge(t *testing.T) {
	base := DefaultRules()
	merged := base.Merge(Rules{
		Intents:  map[string]keywords.RuleSet{"count": {Strong: []string{"bolardo"}}},
		Subtypes: map[string]map[string]keywords.RuleSet{"area": {"deck": {Strong: []string{"deck"}}}},
	})
	assert.Equal(t, []string{"bolardo"}, merged.Intents["count"].Strong)
	assert.NotEqual(t, []string{"bolardo"}, base.Intents["count"].Strong)
	assert.Contains(t, merged.Subtypes["area"], "deck")
	assert.Contains(t, merged.Subtypes["area"], "floor")

	c := NewClassifier(merged)
	assert.Equal(t, Count, c.Intent("", "bolardo de acero").Kind)
}
