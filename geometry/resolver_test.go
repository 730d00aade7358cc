package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) *Point { return &Point{X: x, Y: y} }

func closedSquare(layer string, side float64) Polyline {
	vs := make([]Vertex, 0, 4)
	for _, p := range square(side) {
		vs = append(vs, Vertex{Point: p})
	}
	return Polyline{Base: Base{Layer: layer}, Vertices: vs, Closed: true}
}

func primitivesOf[T Primitive](prims []Primitive) []T {
	var out []T
	for _, p := range prims {
		if v, ok := p.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestResolveLayerInheritance(t *testing.T) {
	blocks := map[string]BlockDefinition{
		"DOOR": {
			Name: "DOOR",
			Entities: []Entity{
				Line{Base: Base{Layer: "0"}, Start: pt(0, 0), End: pt(10, 0)},
				closedSquare("WALLS", 10),
			},
		},
	}
	res := NewResolver(blocks).Resolve([]Entity{
		Insert{Base: Base{Layer: "PARENT"}, Block: "DOOR", Position: pt(100, 0)},
	})
	require.Empty(t, res.Warnings)

	inst := primitivesOf[Instance](res.Primitives)
	require.Len(t, inst, 1)
	assert.Equal(t, Instance{BlockName: "DOOR", Layer: "PARENT", Position: Point{X: 100}}, inst[0])

	lengths := primitivesOf[Length](res.Primitives)
	require.Len(t, lengths, 2)
	assert.Equal(t, "PARENT", lengths[0].Layer)
	assert.Equal(t, "PARENT", lengths[0].RootLayer)
	assert.InDelta(t, 10.0, lengths[0].Value, 1e-9)
	assert.Equal(t, "WALLS", lengths[1].Layer)
	assert.Equal(t, "PARENT", lengths[1].RootLayer)
	assert.InDelta(t, 40.0, lengths[1].Value, 1e-9)

	areas := primitivesOf[Area](res.Primitives)
	require.Len(t, areas, 1)
	assert.Equal(t, "WALLS", areas[0].Layer)
	assert.InDelta(t, 100.0, areas[0].Value, 1e-9)

	require.True(t, res.HasBounds)
	assert.Equal(t, 100.0, res.Bounds.Min[0])
	assert.Equal(t, 110.0, res.Bounds.Max[0])
}

func TestResolveRootLayerFixedAtFirstInsert(t *testing.T) {
	blocks := map[string]BlockDefinition{
		"OUTER": {Entities: []Entity{
			Insert{Base: Base{Layer: "MIDDLE"}, Block: "inner", Position: pt(1, 1)},
		}},
		"INNER": {Entities: []Entity{
			Line{Base: Base{Layer: "0"}, Start: pt(0, 0), End: pt(0, 3)},
		}},
	}
	res := NewResolver(blocks).Resolve([]Entity{
		Insert{Base: Base{Layer: "TOP"}, Block: "OUTER", Position: pt(0, 0)},
	})
	require.Empty(t, res.Warnings)

	inst := primitivesOf[Instance](res.Primitives)
	require.Len(t, inst, 2)
	assert.Equal(t, "", inst[0].RootLayer)
	assert.Equal(t, "TOP", inst[1].RootLayer)
	assert.Equal(t, "MIDDLE", inst[1].Layer)

	lengths := primitivesOf[Length](res.Primitives)
	require.Len(t, lengths, 1)
	assert.Equal(t, "MIDDLE", lengths[0].Layer)
	assert.Equal(t, "TOP", lengths[0].RootLayer)
	assert.Equal(t, 2, res.Stats.MaxDepth)
}

func TestResolveTransformsNestedGeometry(t *testing.T) {
	blocks := map[string]BlockDefinition{
		"TICK": {Entities: []Entity{
			Line{Base: Base{Layer: "T"}, Start: pt(0, 0), End: pt(1, 0)},
			Text{Base: Base{Layer: "T"}, Value: "x", Position: pt(1, 0), Height: 0.5},
		}},
	}
	res := NewResolver(blocks).Resolve([]Entity{
		Insert{Base: Base{Layer: "L"}, Block: "TICK", Position: pt(5, 5), Rotation: 90, ScaleX: 2, ScaleY: 2},
	})
	lengths := primitivesOf[Length](res.Primitives)
	require.Len(t, lengths, 1)
	assert.InDelta(t, 2.0, lengths[0].Value, 1e-9)

	texts := primitivesOf[TextAnchor](res.Primitives)
	require.Len(t, texts, 1)
	assert.InDelta(t, 5.0, texts[0].Position.X, 1e-9)
	assert.InDelta(t, 7.0, texts[0].Position.Y, 1e-9)
	assert.InDelta(t, 1.0, texts[0].Height, 1e-9)
}

func TestResolveUnitScale(t *testing.T) {
	r := NewResolver(nil, WithUnitScale(UnitScale{Length: 0.001}))
	res := r.Resolve([]Entity{
		Line{Base: Base{Layer: "A"}, Start: pt(0, 0), End: pt(1000, 0)},
		closedSquare("B", 2000),
	})
	lengths := primitivesOf[Length](res.Primitives)
	require.Len(t, lengths, 2)
	assert.InDelta(t, 1.0, lengths[0].Value, 1e-9)
	assert.InDelta(t, 8.0, lengths[1].Value, 1e-9)
	areas := primitivesOf[Area](res.Primitives)
	require.Len(t, areas, 1)
	assert.InDelta(t, 4.0, areas[0].Value, 1e-9)
}

func TestResolveHatchHoles(t *testing.T) {
	hole := []Point{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}
	res := NewResolver(nil).Resolve([]Entity{
		Hatch{Base: Base{Layer: "FLOOR"}, Loops: [][]Point{square(10), hole}},
		Hatch{Base: Base{Layer: "FLOOR"}, Loops: [][]Point{hole, square(10)}},
	})
	areas := primitivesOf[Area](res.Primitives)
	require.Len(t, areas, 1)
	assert.InDelta(t, 96.0, areas[0].Value, 1e-9)
	assert.Equal(t, KindHatch, areas[0].SourceKind)
}

func TestResolveCurves(t *testing.T) {
	res := NewResolver(nil).Resolve([]Entity{
		Arc{Base: Base{Layer: "A"}, Center: pt(0, 0), Radius: 10, StartAngle: 0, EndAngle: 90},
		Circle{Base: Base{Layer: "C"}, Center: pt(5, 5), Radius: 1},
		Arc{Base: Base{Layer: "Z"}, Radius: 0},
	})
	lengths := primitivesOf[Length](res.Primitives)
	require.Len(t, lengths, 2)
	assert.InDelta(t, 5*math.Pi, lengths[0].Value, 0.01)
	assert.False(t, lengths[0].Closed)
	assert.InDelta(t, 2*math.Pi, lengths[1].Value, 0.01)
	assert.True(t, lengths[1].Closed)

	areas := primitivesOf[Area](res.Primitives)
	require.Len(t, areas, 1)
	assert.InDelta(t, math.Pi, areas[0].Value, 0.01)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnDegenerate, res.Warnings[0].Code)
}

func TestResolveStructuralWarnings(t *testing.T) {
	t.Run("undefined block skipped and counted once per name", func(t *testing.T) {
		res := NewResolver(nil).Resolve([]Entity{
			Insert{Base: Base{Layer: "X"}, Block: "GHOST", Position: pt(0, 0)},
			Insert{Base: Base{Layer: "X"}, Block: "GHOST", Position: pt(1, 0)},
		})
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarnUndefinedBlock, res.Warnings[0].Code)
		assert.Equal(t, 2, res.Warnings[0].Count)
		assert.Empty(t, primitivesOf[Instance](res.Primitives))
		assert.Zero(t, res.Stats.Instances)
		assert.Equal(t, 2, res.Stats.Skipped)
	})

	t.Run("cycle", func(t *testing.T) {
		blocks := map[string]BlockDefinition{
			"LOOP": {Entities: []Entity{
				Line{Base: Base{Layer: "L"}, Start: pt(0, 0), End: pt(1, 0)},
				Insert{Block: "LOOP", Position: pt(0, 0)},
			}},
		}
		res := NewResolver(blocks).Resolve([]Entity{Insert{Base: Base{Layer: "R"}, Block: "LOOP", Position: pt(0, 0)}})
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarnCycle, res.Warnings[0].Code)
		assert.Len(t, primitivesOf[Length](res.Primitives), 1)
		inst := primitivesOf[Instance](res.Primitives)
		require.Len(t, inst, 1)
		assert.Equal(t, "R", inst[0].Layer)
		assert.Equal(t, 1, res.Stats.Instances)
	})

	t.Run("max depth truncates", func(t *testing.T) {
		blocks := map[string]BlockDefinition{
			"B1": {Entities: []Entity{Insert{Block: "B2", Position: pt(0, 0)}}},
			"B2": {Entities: []Entity{Insert{Block: "B3", Position: pt(0, 0)}, Line{Start: pt(0, 0), End: pt(2, 0)}}},
			"B3": {Entities: []Entity{Line{Start: pt(0, 0), End: pt(1, 0)}}},
		}
		res := NewResolver(blocks, WithMaxDepth(2)).Resolve([]Entity{Insert{Base: Base{Layer: "R"}, Block: "B1", Position: pt(0, 0)}})
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarnMaxDepth, res.Warnings[0].Code)
		lengths := primitivesOf[Length](res.Primitives)
		require.Len(t, lengths, 1)
		assert.InDelta(t, 2.0, lengths[0].Value, 1e-9)
		assert.Equal(t, "R", lengths[0].Layer)
	})

	t.Run("missing coordinates and unsupported records", func(t *testing.T) {
		res := NewResolver(nil).Resolve([]Entity{
			Line{Base: Base{Layer: "A"}, End: pt(3, 4)},
			Unsupported{Base: Base{Layer: "A"}, Type: "SPLINE"},
			Annotation{Base: Base{Layer: "DIM"}, Type: KindDimension},
		})
		codes := make([]string, 0, len(res.Warnings))
		for _, w := range res.Warnings {
			codes = append(codes, w.Code)
		}
		assert.ElementsMatch(t, []string{WarnMissingCoords, WarnUnsupported}, codes)
		lengths := primitivesOf[Length](res.Primitives)
		require.Len(t, lengths, 1)
		assert.InDelta(t, 5.0, lengths[0].Value, 1e-9)
		assert.Equal(t, 1, res.Stats.Annotations)
		assert.Equal(t, 1, res.Stats.Skipped)
	})
}

func TestResolveDoesNotMutateBlocks(t *testing.T) {
	blocks := map[string]BlockDefinition{
		"B": {Entities: []Entity{Line{Base: Base{Layer: "0"}, Start: pt(0, 0), End: pt(1, 0)}}},
	}
	before := map[string]BlockDefinition{
		"B": {Entities: []Entity{Line{Base: Base{Layer: "0"}, Start: pt(0, 0), End: pt(1, 0)}}},
	}
	r := NewResolver(blocks)
	first := r.Resolve([]Entity{Insert{Base: Base{Layer: "P"}, Block: "b"}})
	second := r.Resolve([]Entity{Insert{Base: Base{Layer: "P"}, Block: "b"}})

	assert.Empty(t, cmp.Diff(before, blocks))
	assert.Empty(t, cmp.Diff(first.Primitives, second.Primitives))
}

func TestEffectiveLayer(t *testing.T) {
	assert.Equal(t, "OWNER", EffectiveLayer("0", "OWNER"))
	assert.Equal(t, "OWNER", EffectiveLayer(" ", "OWNER"))
	assert.Equal(t, "A-WALL", EffectiveLayer("A-WALL", "OWNER"))
}
