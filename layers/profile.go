// Package layers folds resolved primitives into one geometric profile per
// drawing layer. A Set is built once per run and is read-only afterwards.
package layers

import (
	"github.com/paulmach/orb"

	"yashubustudio/boqmatch/geometry"
)

// GeometryKind is the kind of evidence a profile can provide.
type GeometryKind string

const (
	GeomNone   GeometryKind = "none"
	GeomArea   GeometryKind = "area"
	GeomLength GeometryKind = "length"
	GeomCount  GeometryKind = "count"
)

// Profile is the aggregated geometry of one normalized layer.
type Profile struct {
	Name                string
	Key                 string
	TotalArea           float64
	TotalLength         float64
	InstanceCount       int
	HatchCount          int
	ClosedPolylineCount int
	TextCount           int
	EntityKinds         map[geometry.EntityKind]bool
	Blocks              map[string]int
	Bounds              orb.Bound
	HasBounds           bool

	directAreas   int
	directLengths int
}

// HasArea reports a nonzero accumulated area.
func (p *Profile) HasArea() bool { return p != nil && p.TotalArea != 0 }

// HasLength reports a nonzero accumulated length.
func (p *Profile) HasLength() bool { return p != nil && p.TotalLength != 0 }

// HasBlock reports at least one placed instance.
func (p *Profile) HasBlock() bool { return p != nil && p.InstanceCount != 0 }

// DirectLengths is the number of runs drawn on the layer itself, interior
// block content excluded.
func (p *Profile) DirectLengths() int {
	if p == nil {
		return 0
	}
	return p.directLengths
}

// Dominant returns the kind of evidence most of the layer's own geometry is
// made of. Interior block content and text do not count. Ties prefer area,
// then length, then count.
func (p *Profile) Dominant() GeometryKind {
	if p == nil {
		return GeomNone
	}
	best, n := GeomNone, 0
	for _, c := range []struct {
		kind  GeometryKind
		count int
	}{
		{GeomArea, p.directAreas},
		{GeomLength, p.directLengths},
		{GeomCount, p.InstanceCount},
	} {
		if c.count > n {
			best, n = c.kind, c.count
		}
	}
	if best == GeomNone {
		switch {
		case p.HasArea():
			return GeomArea
		case p.HasLength():
			return GeomLength
		}
	}
	return best
}

// Kinds returns the present entity kinds in a stable order.
func (p *Profile) Kinds() []geometry.EntityKind {
	var out []geometry.EntityKind
	for _, k := range kindOrder {
		if p.EntityKinds[k] {
			out = append(out, k)
		}
	}
	return out
}

var kindOrder = []geometry.EntityKind{
	geometry.KindLine,
	geometry.KindPolyline,
	geometry.KindArc,
	geometry.KindCircle,
	geometry.KindEllipse,
	geometry.KindHatch,
	geometry.KindText,
	geometry.KindInsert,
}

func newProfile(name, key string) *Profile {
	return &Profile{
		Name:        name,
		Key:         key,
		EntityKinds: map[geometry.EntityKind]bool{},
	}
}

// add folds one primitive. direct is false for content seen only through
// the block (root) view.
func (p *Profile) add(prim geometry.Primitive, direct bool) {
	switch v := prim.(type) {
	case geometry.Area:
		p.TotalArea += v.Value
		p.EntityKinds[v.SourceKind] = true
		if v.SourceKind == geometry.KindHatch {
			p.HatchCount++
		}
		if direct {
			p.directAreas++
		}
		for _, pt := range v.Vertices {
			p.extend(pt)
		}
	case geometry.Length:
		p.TotalLength += v.Value
		p.EntityKinds[v.SourceKind] = true
		if v.Closed && v.SourceKind == geometry.KindPolyline {
			p.ClosedPolylineCount++
		}
		if direct {
			p.directLengths++
		}
		p.extend(v.Centroid)
	case geometry.Instance:
		p.InstanceCount++
		p.EntityKinds[geometry.KindInsert] = true
		if p.Blocks == nil {
			p.Blocks = map[string]int{}
		}
		p.Blocks[v.BlockName]++
		p.extend(v.Position)
	case geometry.TextAnchor:
		p.TextCount++
		p.EntityKinds[geometry.KindText] = true
		p.extend(v.Position)
	}
}

func (p *Profile) extend(pt geometry.Point) {
	op := orb.Point{pt.X, pt.Y}
	if !p.HasBounds {
		p.Bounds = orb.Bound{Min: op, Max: op}
		p.HasBounds = true
		return
	}
	p.Bounds = p.Bounds.Extend(op)
}

// Snapshot is the serializable view of a Profile, derived flags included.
type Snapshot struct {
	Name                string                `json:"name"`
	TotalArea           float64               `json:"total_area"`
	TotalLength         float64               `json:"total_length"`
	InstanceCount       int                   `json:"instance_count"`
	HatchCount          int                   `json:"hatch_count"`
	ClosedPolylineCount int                   `json:"closed_polyline_count"`
	TextCount           int                   `json:"text_count"`
	EntityKinds         []geometry.EntityKind `json:"entity_kinds"`
	Blocks              map[string]int        `json:"blocks,omitempty"`
	HasArea             bool                  `json:"has_area"`
	HasLength           bool                  `json:"has_length"`
	HasBlock            bool                  `json:"has_block"`
	Dominant            GeometryKind          `json:"dominant"`
	Bounds              []float64             `json:"bounds,omitempty"`
}

// Snapshot copies p into its serializable form.
func (p *Profile) Snapshot() Snapshot {
	s := Snapshot{
		Name:                p.Name,
		TotalArea:           p.TotalArea,
		TotalLength:         p.TotalLength,
		InstanceCount:       p.InstanceCount,
		HatchCount:          p.HatchCount,
		ClosedPolylineCount: p.ClosedPolylineCount,
		TextCount:           p.TextCount,
		EntityKinds:         p.Kinds(),
		HasArea:             p.HasArea(),
		HasLength:           p.HasLength(),
		HasBlock:            p.HasBlock(),
		Dominant:            p.Dominant(),
	}
	if len(p.Blocks) > 0 {
		s.Blocks = make(map[string]int, len(p.Blocks))
		for k, v := range p.Blocks {
			s.Blocks[k] = v
		}
	}
	if p.HasBounds {
		s.Bounds = []float64{p.Bounds.Min[0], p.Bounds.Min[1], p.Bounds.Max[0], p.Bounds.Max[1]}
	}
	return s
}

// Snapshots converts a list of profiles.
func Snapshots(ps []*Profile) []Snapshot {
	out := make([]Snapshot, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Snapshot())
	}
	return out
}
