// Package boqio reads the artefacts produced by the external CAD and
// spreadsheet parsers: a JSON drawing dump and a CSV/TSV list of line items.
package boqio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"yashubustudio/boqmatch/geometry"
)

type rawDrawing struct {
	Units    int                 `json:"units"`
	Source   string              `json:"source"`
	Entities []rawEntity         `json:"entities"`
	Blocks   map[string]rawBlock `json:"blocks"`
}

type rawBlock struct {
	Name     string          `json:"name"`
	Base     *geometry.Point `json:"base"`
	Entities []rawEntity     `json:"entities"`
}

type rawVertex struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Bulge float64 `json:"bulge"`
}

type rawEntity struct {
	Type  string `json:"type"`
	Layer string `json:"layer"`

	Start    *geometry.Point `json:"start"`
	End      *geometry.Point `json:"end"`
	Center   *geometry.Point `json:"center"`
	Position *geometry.Point `json:"position"`

	Vertices []rawVertex `json:"vertices"`
	Closed   bool        `json:"closed"`

	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`

	MajorAxis  *geometry.Point `json:"major_axis"`
	Ratio      float64         `json:"ratio"`
	StartParam float64         `json:"start_param"`
	EndParam   float64         `json:"end_param"`

	Loops [][]geometry.Point `json:"loops"`

	Text   string  `json:"text"`
	Height float64 `json:"height"`

	Block    string   `json:"block"`
	Name     string   `json:"name"`
	Rotation float64  `json:"rotation"`
	ScaleX   *float64 `json:"xscale"`
	ScaleY   *float64 `json:"yscale"`
	ScaleZ   *float64 `json:"zscale"`
}

// ReadDrawing loads a drawing dump from path.
func ReadDrawing(path string) (geometry.Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return geometry.Drawing{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	d, err := DecodeDrawing(f)
	if err != nil {
		return geometry.Drawing{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if d.Source == "" {
		d.Source = filepath.Base(path)
	}
	return d, nil
}

// DecodeDrawing parses a drawing dump. Unknown entity types are kept as
// geometry.Unsupported so the resolver can report them.
func DecodeDrawing(r io.Reader) (geometry.Drawing, error) {
	var raw rawDrawing
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return geometry.Drawing{}, fmt.Errorf("decode drawing: %w", err)
	}
	return raw.toDrawing(), nil
}

// UnmarshalJSON lets API payloads embed a drawing dump directly.
func (d *Drawing) UnmarshalJSON(data []byte) error {
	var raw rawDrawing
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Drawing = raw.toDrawing()
	return nil
}

// Drawing wraps geometry.Drawing with the dump's JSON decoding.
type Drawing struct {
	geometry.Drawing
}

func (raw rawDrawing) toDrawing() geometry.Drawing {
	d := geometry.Drawing{
		Units:    raw.Units,
		Source:   raw.Source,
		Entities: convertEntities(raw.Entities),
		Blocks:   make(map[string]geometry.BlockDefinition, len(raw.Blocks)),
	}
	for key, b := range raw.Blocks {
		name := b.Name
		if name == "" {
			name = key
		}
		def := geometry.BlockDefinition{Name: name, Entities: convertEntities(b.Entities)}
		if b.Base != nil {
			def.Base = *b.Base
		}
		d.Blocks[name] = def
	}
	return d
}

func convertEntities(raws []rawEntity) []geometry.Entity {
	out := make([]geometry.Entity, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.entity())
	}
	return out
}

func (r rawEntity) entity() geometry.Entity {
	base := geometry.Base{Layer: r.Layer}
	switch strings.ToUpper(strings.TrimSpace(r.Type)) {
	case "LINE":
		return geometry.Line{Base: base, Start: r.Start, End: r.End}
	case "LWPOLYLINE", "POLYLINE":
		vs := make([]geometry.Vertex, len(r.Vertices))
		for i, v := range r.Vertices {
			vs[i] = geometry.Vertex{Point: geometry.Point{X: v.X, Y: v.Y, Z: v.Z}, Bulge: v.Bulge}
		}
		return geometry.Polyline{Base: base, Vertices: vs, Closed: r.Closed}
	case "ARC":
		return geometry.Arc{Base: base, Center: r.Center, Radius: r.Radius, StartAngle: r.StartAngle, EndAngle: r.EndAngle}
	case "CIRCLE":
		return geometry.Circle{Base: base, Center: r.Center, Radius: r.Radius}
	case "ELLIPSE":
		e := geometry.Ellipse{Base: base, Center: r.Center, Ratio: r.Ratio, StartParam: r.StartParam, EndParam: r.EndParam}
		if r.MajorAxis != nil {
			e.MajorAxis = *r.MajorAxis
		}
		return e
	case "HATCH":
		return geometry.Hatch{Base: base, Loops: r.Loops}
	case "TEXT":
		return geometry.Text{Base: base, Value: r.Text, Position: r.anchor(), Height: r.Height}
	case "MTEXT":
		return geometry.Text{Base: base, Value: r.Text, Position: r.anchor(), Height: r.Height, Multiline: true}
	case "INSERT":
		block := r.Block
		if block == "" {
			block = r.Name
		}
		return geometry.Insert{
			Base:     base,
			Block:    block,
			Position: r.anchor(),
			Rotation: r.Rotation,
			ScaleX:   scaleOr1(r.ScaleX),
			ScaleY:   scaleOr1(r.ScaleY),
			ScaleZ:   scaleOr1(r.ScaleZ),
		}
	case "DIMENSION":
		return geometry.Annotation{Base: base, Type: geometry.KindDimension}
	case "LEADER", "MLEADER":
		return geometry.Annotation{Base: base, Type: geometry.KindLeader}
	case "ATTDEF":
		return geometry.Annotation{Base: base, Type: geometry.KindAttDef}
	case "POINT":
		return geometry.Annotation{Base: base, Type: geometry.KindPoint}
	default:
		return geometry.Unsupported{Base: base, Type: r.Type}
	}
}

// anchor prefers "position" and falls back to "insert" style "start".
func (r rawEntity) anchor() *geometry.Point {
	if r.Position != nil {
		return r.Position
	}
	return r.Start
}

func scaleOr1(v *float64) float64 {
	if v == nil || *v == 0 {
		return 1
	}
	return *v
}
