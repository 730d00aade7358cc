package boqio

import (
	"math"

	"github.com/paulmach/orb"

	"yashubustudio/boqmatch/geometry"
)

// ScaleSource tells where a unit scale came from.
type ScaleSource string

const (
	ScaleOverride  ScaleSource = "override"
	ScaleInsUnits  ScaleSource = "insunits"
	ScaleHeuristic ScaleSource = "heuristic"
	ScaleDefault   ScaleSource = "default"
)

// Extents above these raw sizes are read as millimetres or centimetres.
const (
	millimetreExtent = 10000
	centimetreExtent = 1000
)

// DetectUnitScale picks the raw-unit to metre conversion for d. A positive
// override wins, then the declared $INSUNITS code, then a guess from the
// magnitude of the top-level geometry.
func DetectUnitScale(d geometry.Drawing, override geometry.UnitScale) (geometry.UnitScale, ScaleSource) {
	if override.Length > 0 {
		return override.Normalized(), ScaleOverride
	}
	if s, ok := geometry.ScaleFromInsUnits(d.Units); ok {
		return s, ScaleInsUnits
	}
	b, ok := extent(d.Entities)
	if !ok {
		return geometry.Meters, ScaleDefault
	}
	size := math.Max(b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y())
	switch {
	case size >= millimetreExtent:
		return geometry.UnitScale{Length: 0.001, Area: 1e-6}, ScaleHeuristic
	case size >= centimetreExtent:
		return geometry.UnitScale{Length: 0.01, Area: 1e-4}, ScaleHeuristic
	default:
		return geometry.Meters, ScaleHeuristic
	}
}

// extent bounds the raw coordinates of top-level entities. Block contents
// are left out; their insertion points stand in for them.
func extent(entities []geometry.Entity) (orb.Bound, bool) {
	var (
		b  orb.Bound
		ok bool
	)
	add := func(p *geometry.Point) {
		if p == nil {
			return
		}
		pt := orb.Point{p.X, p.Y}
		if !ok {
			b, ok = pt.Bound(), true
			return
		}
		b = b.Extend(pt)
	}
	addRadius := func(c *geometry.Point, r float64) {
		if c == nil {
			return
		}
		add(&geometry.Point{X: c.X - r, Y: c.Y - r})
		add(&geometry.Point{X: c.X + r, Y: c.Y + r})
	}
	for _, e := range entities {
		switch v := e.(type) {
		case geometry.Line:
			add(v.Start)
			add(v.End)
		case geometry.Polyline:
			for i := range v.Vertices {
				add(&v.Vertices[i].Point)
			}
		case geometry.Arc:
			addRadius(v.Center, v.Radius)
		case geometry.Circle:
			addRadius(v.Center, v.Radius)
		case geometry.Ellipse:
			addRadius(v.Center, math.Hypot(v.MajorAxis.X, v.MajorAxis.Y))
		case geometry.Hatch:
			for _, loop := range v.Loops {
				for i := range loop {
					add(&loop[i])
				}
			}
		case geometry.Text:
			add(v.Position)
		case geometry.Insert:
			add(v.Position)
		}
	}
	return b, ok
}
