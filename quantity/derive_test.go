package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/layers"
)

func profile(t *testing.T, prims ...geometry.Primitive) *layers.Profile {
	t.Helper()
	p, ok := layers.Aggregate(prims).Get("L")
	require.True(t, ok)
	return p
}

func TestDeriveService(t *testing.T) {
	d := NewDeriver(Options{})
	for _, ev := range []Evidence{{}, {Kind: layers.GeomArea}} {
		got := d.Derive(classify.MethodService, ev, "Instalación de faena")
		require.NotNil(t, got.Quantity)
		assert.Equal(t, 1.0, *got.Quantity)
	}
}

func TestDeriveAreaFromLength(t *testing.T) {
	d := NewDeriver(Options{})
	p := profile(t, geometry.Length{Layer: "L", Value: 10})

	got := d.Derive(classify.MethodArea, Evidence{Kind: layers.GeomLength, Profile: p}, "Tabique h=2,6")
	require.NotNil(t, got.Quantity)
	assert.InDelta(t, 26.0, *got.Quantity, 1e-9)
	require.NotNil(t, got.Height)
	assert.Equal(t, SourceExtracted, got.Height.Source)

	got = d.Derive(classify.MethodArea, Evidence{Kind: layers.GeomLength, Profile: p}, "Tabique volcanita")
	require.NotNil(t, got.Quantity)
	assert.InDelta(t, 24.0, *got.Quantity, 1e-9)
	assert.Equal(t, SourceDefault, got.Height.Source)
	assert.NotEmpty(t, got.Steps)
}

func TestDeriveNoEvidence(t *testing.T) {
	d := NewDeriver(Options{})
	got := d.Derive(classify.MethodArea, Evidence{}, "Piso")
	assert.Nil(t, got.Quantity)

	p := profile(t, geometry.Instance{Layer: "L", BlockName: "B"})
	got = d.Derive(classify.MethodArea, Evidence{Kind: layers.GeomCount, Profile: p}, "Piso")
	assert.Nil(t, got.Quantity)
}

func TestDeriveCount(t *testing.T) {
	d := NewDeriver(Options{})
	p := profile(t,
		geometry.Instance{Layer: "L", BlockName: "B"},
		geometry.Instance{Layer: "L", BlockName: "B"},
	)
	got := d.Derive(classify.MethodCount, Evidence{Kind: layers.GeomCount, Profile: p}, "Enchufe")
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 2.0, *got.Quantity)
	assert.False(t, got.Mismatch)

	got = d.Derive(classify.MethodCount, Evidence{Kind: layers.GeomLength, Profile: p}, "Enchufe")
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 1.0, *got.Quantity)
	assert.True(t, got.Mismatch)
	assert.Equal(t, 0.3, got.ConfidenceCap)
}

func TestDeriveVolume(t *testing.T) {
	d := NewDeriver(Options{})
	area := profile(t, geometry.Area{Layer: "L", Value: 20})
	got := d.Derive(classify.MethodVolume, Evidence{Kind: layers.GeomArea, Profile: area}, "Radier e=10cm")
	require.NotNil(t, got.Quantity)
	assert.InDelta(t, 2.0, *got.Quantity, 1e-9)

	run := profile(t, geometry.Length{Layer: "L", Value: 10})
	got = d.Derive(classify.MethodVolume, Evidence{Kind: layers.GeomLength, Profile: run}, "Muro de hormigón")
	require.NotNil(t, got.Quantity)
	assert.InDelta(t, 10*2.4*0.15, *got.Quantity, 1e-9)
	assert.Equal(t, SourceDefault, got.Thickness.Source)
}

func TestDeriveUnknownUsesEvidence(t *testing.T) {
	d := NewDeriver(Options{})
	p := profile(t, geometry.Length{Layer: "L", Value: 7.5})
	got := d.Derive(classify.MethodUnknown, Evidence{Kind: layers.GeomLength, Profile: p}, "Algo")
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 7.5, *got.Quantity)
	assert.Equal(t, classify.MethodLength, got.Method)
}

func TestHeightPatterns(t *testing.T) {
	d := NewDeriver(Options{})
	tests := map[string]float64{
		"Muro h=2.4":                2.4,
		"Muro h: 2,40":              2.4,
		"Tabique altura 2.5m":       2.5,
		"Revestimiento alto 240 cm": 2.4,
		"Wall height 3 m":           3,
		"Tabique h=240":             2.4,
		"Tabique altura 2.7mts":     2.7,
	}
	for desc, want := range tests {
		got := d.Height(desc)
		assert.Equal(t, SourceExtracted, got.Source, desc)
		assert.InDelta(t, want, got.Value, 1e-9, desc)
	}
	for _, desc := range []string{"Hormigón H30", "Hormigón H-30", "Tabique", "altura 500 m"} {
		got := d.Height(desc)
		assert.Equal(t, SourceDefault, got.Source, desc)
		assert.Equal(t, 2.4, got.Value, desc)
	}
}

func TestThicknessPatterns(t *testing.T) {
	d := NewDeriver(Options{})
	assert.InDelta(t, 0.15, d.Thickness("Losa e=15cm").Value, 1e-9)
	assert.InDelta(t, 0.2, d.Thickness("Radier espesor 0.2").Value, 1e-9)
	assert.InDelta(t, 0.012, d.Thickness("Yeso cartón esp. 12 mm").Value, 1e-9)
	assert.Equal(t, SourceDefault, d.Thickness("Losa").Source)
}
