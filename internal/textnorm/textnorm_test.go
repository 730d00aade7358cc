package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "tuberia de cobre", Fold("  Tubería   de  COBRE "))
	assert.Equal(t, "instalacion", Fold("Instalación"))
	assert.Equal(t, "", Fold("   "))
}

func TestUnit(t *testing.T) {
	cases := map[string]string{
		"m²":     "m2",
		"M2":     "m2",
		"m^2":    "m2",
		"m³":     "m3",
		"mts.":   "mts",
		"Gl":     "gl",
		"Unidad": "unidad",
		" u. ":   "u",
		"":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Unit(in), "unit %q", in)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"elec", "lum", "01"}, Tokens("ElecLum_01"))
	assert.Equal(t, []string{"a", "muro", "tabique"}, Tokens("A-MURO-TABIQUE"))
	assert.Equal(t, []string{"canalizacion", "pvc"}, Tokens("Canalización PVC"))
	assert.Nil(t, Tokens(""))
}

func TestLayerKey(t *testing.T) {
	assert.Equal(t, LayerKey("A-Muro"), LayerKey("a-muro "))
	assert.Equal(t, "a-muro", LayerKey("A-MURO"))
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"Muro", "muro", " MURO ", "", "Losa"})
	assert.Equal(t, []string{"Muro", "Losa"}, got)
}
