package geometry

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

const (
	// DefaultMaxDepth bounds block nesting.
	DefaultMaxDepth = 10
	// DefaultArcSegments is the number of chords per full turn of a curve.
	DefaultArcSegments = 64
)

// Warning codes reported by the resolver.
const (
	WarnUndefinedBlock = "undefined_block"
	WarnMaxDepth       = "max_depth"
	WarnCycle          = "block_cycle"
	WarnMissingCoords  = "missing_coordinates"
	WarnUnsupported    = "unsupported_entity"
	WarnEmptyHatch     = "empty_hatch"
	WarnDegenerate     = "degenerate_entity"
)

// Warning is one distinct structural problem with its occurrence count.
type Warning struct {
	Code    string `json:"code"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Stats summarises one resolution pass.
type Stats struct {
	Entities    int `json:"entities"`
	Instances   int `json:"instances"`
	Annotations int `json:"annotations"`
	Skipped     int `json:"skipped"`
	MaxDepth    int `json:"max_depth"`
}

// Result is the flat output of a resolution pass.
type Result struct {
	Primitives []Primitive
	Warnings   []Warning
	Bounds     orb.Bound
	HasBounds  bool
	Stats      Stats
}

// Resolver explodes nested block instances into world-space primitives. It
// holds no per-run state and may be shared between goroutines.
type Resolver struct {
	blocks      map[string]BlockDefinition
	folded      map[string]string
	maxDepth    int
	scale       UnitScale
	arcSegments int
	log         *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth sets the maximum block nesting depth (default 10).
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithUnitScale sets the raw-unit to metre conversion.
func WithUnitScale(scale UnitScale) Option {
	return func(r *Resolver) {
		r.scale = scale.Normalized()
	}
}

// WithArcSegments sets the curve sampling density per full turn.
func WithArcSegments(n int) Option {
	return func(r *Resolver) {
		if n >= 8 {
			r.arcSegments = n
		}
	}
}

// WithLogger sets the logger used for structural warnings.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver over an immutable block table. The map is
// only read.
func NewResolver(blocks map[string]BlockDefinition, opts ...Option) *Resolver {
	r := &Resolver{
		blocks:      blocks,
		folded:      make(map[string]string, len(blocks)),
		maxDepth:    DefaultMaxDepth,
		scale:       Meters,
		arcSegments: DefaultArcSegments,
		log:         zap.NewNop(),
	}
	for name := range blocks {
		r.folded[strings.ToLower(name)] = name
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve walks the root entities and returns every primitive they produce.
func (r *Resolver) Resolve(entities []Entity) Result {
	w := &walker{r: r, warnings: map[string]*Warning{}}
	w.walk(entities, frame{xf: Identity(), owner: "0"})
	res := Result{
		Primitives: w.prims,
		Bounds:     w.bounds,
		HasBounds:  w.hasBounds,
		Stats:      w.stats,
	}
	for _, key := range w.order {
		res.Warnings = append(res.Warnings, *w.warnings[key])
	}
	return res
}

// frame is the descent state for one nesting level.
type frame struct {
	xf    Transform
	owner string
	root  string
	depth int
	path  []string
}

type walker struct {
	r         *Resolver
	prims     []Primitive
	warnings  map[string]*Warning
	order     []string
	bounds    orb.Bound
	hasBounds bool
	stats     Stats
}

// EffectiveLayer resolves CAD layer inheritance: "0" and empty layers take the
// owning insert's layer.
func EffectiveLayer(layer, owner string) string {
	l := strings.TrimSpace(layer)
	if l == "" || l == "0" {
		return owner
	}
	return l
}

func (w *walker) walk(entities []Entity, f frame) {
	if f.depth > w.stats.MaxDepth {
		w.stats.MaxDepth = f.depth
	}
	for _, e := range entities {
		if e == nil {
			w.stats.Skipped++
			continue
		}
		w.stats.Entities++
		layer := EffectiveLayer(e.LayerName(), f.owner)
		switch v := e.(type) {
		case Insert:
			w.insert(v, layer, f)
		case Line:
			w.line(v, layer, f)
		case Polyline:
			w.polyline(v, layer, f)
		case Arc:
			w.arc(v, layer, f)
		case Circle:
			w.circle(v, layer, f)
		case Ellipse:
			w.ellipse(v, layer, f)
		case Hatch:
			w.hatch(v, layer, f)
		case Text:
			w.text(v, layer, f)
		case Annotation:
			w.stats.Annotations++
		case Unsupported:
			w.stats.Skipped++
			w.warn(WarnUnsupported, v.Type, fmt.Sprintf("unsupported entity type %q skipped", v.Type))
		default:
			w.stats.Skipped++
			w.warn(WarnUnsupported, string(e.Kind()), fmt.Sprintf("unhandled entity kind %q skipped", e.Kind()))
		}
	}
}

// insert places a block. Inserts of undefined blocks and inserts that close a
// cycle are skipped entirely and produce no Instance.
func (w *walker) insert(v Insert, layer string, f frame) {
	name := v.Block
	def, ok := w.r.lookup(name)
	if !ok {
		w.stats.Skipped++
		w.warn(WarnUndefinedBlock, name, fmt.Sprintf("insert references undefined block %q", name))
		return
	}
	for _, anc := range f.path {
		if strings.EqualFold(anc, def.Name) {
			w.stats.Skipped++
			w.warn(WarnCycle, def.Name, fmt.Sprintf("block %q references itself through %s", def.Name, strings.Join(f.path, " > ")))
			return
		}
	}
	if v.Position == nil {
		w.warn(WarnMissingCoords, name, fmt.Sprintf("insert of %q has no position; using the parent origin", name))
	}
	local := LocalTransform(v.Position, v.Rotation, v.ScaleX, v.ScaleY, v.ScaleZ, def.Base)
	xf := Compose(f.xf, local)
	pos := xf.Apply(def.Base)
	w.extend(pos)
	w.stats.Instances++
	w.emit(Instance{BlockName: def.Name, Layer: layer, Position: pos, RootLayer: f.root})

	if f.depth+1 > w.r.maxDepth {
		w.warn(WarnMaxDepth, def.Name, fmt.Sprintf("block %q nested deeper than %d levels; contents truncated", def.Name, w.r.maxDepth))
		return
	}
	root := f.root
	if root == "" {
		root = layer
	}
	path := make([]string, len(f.path), len(f.path)+1)
	copy(path, f.path)
	w.walk(def.Entities, frame{
		xf:    xf,
		owner: layer,
		root:  root,
		depth: f.depth + 1,
		path:  append(path, def.Name),
	})
}

func (w *walker) line(v Line, layer string, f frame) {
	if v.Start == nil || v.End == nil {
		w.warn(WarnMissingCoords, layer, "line with a missing endpoint; using the local origin")
	}
	pts := []Point{f.xf.Apply(orOrigin(v.Start)), f.xf.Apply(orOrigin(v.End))}
	w.chain(pts, false, KindLine, layer, f)
}

func (w *walker) polyline(v Polyline, layer string, f frame) {
	if len(v.Vertices) < 2 {
		w.warn(WarnDegenerate, layer, "polyline with fewer than two vertices skipped")
		return
	}
	local := expandBulges(v.Vertices, v.Closed, w.r.arcSegments)
	pts := w.transformAll(local, f.xf)
	closed := v.Closed || (len(pts) >= 3 && samePoint(pts[0], pts[len(pts)-1]))
	w.chain(pts, closed, KindPolyline, layer, f)
}

func (w *walker) arc(v Arc, layer string, f frame) {
	if v.Radius <= 0 {
		w.warn(WarnDegenerate, layer, "arc with non-positive radius skipped")
		return
	}
	if v.Center == nil {
		w.warn(WarnMissingCoords, layer, "arc without centre; using the local origin")
	}
	start := v.StartAngle * math.Pi / 180
	sweep := (v.EndAngle - v.StartAngle) * math.Pi / 180
	if sweep <= 0 {
		sweep += fullTurn
	}
	local := sampleArc(orOrigin(v.Center), v.Radius, start, sweep, w.r.arcSegments)
	w.chain(w.transformAll(local, f.xf), false, KindArc, layer, f)
}

func (w *walker) circle(v Circle, layer string, f frame) {
	if v.Radius <= 0 {
		w.warn(WarnDegenerate, layer, "circle with non-positive radius skipped")
		return
	}
	if v.Center == nil {
		w.warn(WarnMissingCoords, layer, "circle without centre; using the local origin")
	}
	local := sampleCircle(orOrigin(v.Center), v.Radius, w.r.arcSegments)
	w.chain(w.transformAll(local, f.xf), true, KindCircle, layer, f)
}

func (w *walker) ellipse(v Ellipse, layer string, f frame) {
	if v.Center == nil {
		w.warn(WarnMissingCoords, layer, "ellipse without centre; using the local origin")
	}
	local, closed := sampleEllipse(v, orOrigin(v.Center), w.r.arcSegments)
	if len(local) == 0 {
		w.warn(WarnDegenerate, layer, "ellipse with zero major axis skipped")
		return
	}
	w.chain(w.transformAll(local, f.xf), closed, KindEllipse, layer, f)
}

// chain emits the Length of a point chain and, when it encloses a positive
// area with at least three distinct vertices, an Area too.
func (w *walker) chain(pts []Point, closed bool, kind EntityKind, layer string, f frame) {
	raw := PathLength(pts, closed)
	if raw > 0 {
		w.emit(Length{
			Layer:      layer,
			Value:      raw * w.r.scale.Length,
			SourceKind: kind,
			RootLayer:  f.root,
			Centroid:   Centroid(pts),
			Closed:     closed,
		})
	}
	if closed && distinctVertices(pts) >= 3 {
		if a := ShoelaceArea(pts); a > 0 {
			w.emit(Area{
				Layer:      layer,
				Value:      a * w.r.scale.Area,
				Vertices:   pts,
				SourceKind: kind,
				RootLayer:  f.root,
			})
		}
	}
}

func (w *walker) hatch(v Hatch, layer string, f frame) {
	if len(v.Loops) == 0 {
		w.warn(WarnEmptyHatch, layer, "hatch without boundary loops skipped")
		return
	}
	var (
		net   float64
		outer []Point
	)
	for i, loop := range v.Loops {
		pts := w.transformAll(loop, f.xf)
		a := ShoelaceArea(pts)
		if i == 0 {
			outer = pts
			net += a
			continue
		}
		net -= a
	}
	if net <= 0 {
		return
	}
	w.emit(Area{
		Layer:      layer,
		Value:      net * w.r.scale.Area,
		Vertices:   outer,
		SourceKind: KindHatch,
		RootLayer:  f.root,
	})
}

func (w *walker) text(v Text, layer string, f frame) {
	if v.Position == nil {
		w.warn(WarnMissingCoords, layer, "text without anchor; using the local origin")
	}
	pos := f.xf.Apply(orOrigin(v.Position))
	w.extend(pos)
	w.emit(TextAnchor{
		Text:      v.Value,
		Layer:     layer,
		Position:  pos,
		Height:    v.Height * f.xf.UniformScale() * w.r.scale.Length,
		RootLayer: f.root,
	})
}

func (w *walker) transformAll(pts []Point, xf Transform) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = xf.Apply(p)
		w.extend(out[i])
	}
	return out
}

func (w *walker) extend(p Point) {
	op := orb.Point{p.X, p.Y}
	if !w.hasBounds {
		w.bounds = orb.Bound{Min: op, Max: op}
		w.hasBounds = true
		return
	}
	w.bounds = w.bounds.Extend(op)
}

func (w *walker) emit(p Primitive) {
	w.prims = append(w.prims, p)
}

// warn records a warning once per code and subject and logs its first
// occurrence.
func (w *walker) warn(code, subject, msg string) {
	key := code + "\x00" + subject
	if existing, ok := w.warnings[key]; ok {
		existing.Count++
		return
	}
	w.warnings[key] = &Warning{Code: code, Subject: subject, Message: msg, Count: 1}
	w.order = append(w.order, key)
	w.r.log.Warn(msg, zap.String("code", code), zap.String("subject", subject))
}

func (r *Resolver) lookup(name string) (BlockDefinition, bool) {
	if def, ok := r.blocks[name]; ok {
		if def.Name == "" {
			def.Name = name
		}
		return def, true
	}
	if actual, ok := r.folded[strings.ToLower(name)]; ok {
		def := r.blocks[actual]
		if def.Name == "" {
			def.Name = actual
		}
		return def, true
	}
	return BlockDefinition{}, false
}

// SortWarnings orders warnings by descending count, then code and subject.
func SortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Count != ws[j].Count {
			return ws[i].Count > ws[j].Count
		}
		if ws[i].Code != ws[j].Code {
			return ws[i].Code < ws[j].Code
		}
		return ws[i].Subject < ws[j].Subject
	})
}

func orOrigin(p *Point) Point {
	if p == nil {
		return Point{}
	}
	return *p
}
