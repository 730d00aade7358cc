package geometry

// EntityKind names the drawing record kinds the resolver understands.
type EntityKind string

const (
	KindLine        EntityKind = "line"
	KindPolyline    EntityKind = "polyline"
	KindArc         EntityKind = "arc"
	KindCircle      EntityKind = "circle"
	KindEllipse     EntityKind = "ellipse"
	KindHatch       EntityKind = "hatch"
	KindText        EntityKind = "text"
	KindInsert      EntityKind = "insert"
	KindDimension   EntityKind = "dimension"
	KindLeader      EntityKind = "leader"
	KindAttDef      EntityKind = "attdef"
	KindPoint       EntityKind = "point"
	KindUnsupported EntityKind = "unsupported"
)

// Entity is one drawing record. The set of implementations is closed.
type Entity interface {
	Kind() EntityKind
	LayerName() string
	isEntity()
}

// Base carries the fields every entity has.
type Base struct {
	Layer string `json:"layer,omitempty"`
}

// LayerName returns the layer as written in the drawing, possibly "0" or "".
func (b Base) LayerName() string { return b.Layer }

func (Base) isEntity() {}

// Line is a straight segment. Missing endpoints default to the local origin.
type Line struct {
	Base
	Start *Point
	End   *Point
}

// Vertex is a polyline vertex. A non-zero Bulge makes the segment to the next
// vertex an arc with included angle 4*atan(Bulge).
type Vertex struct {
	Point
	Bulge float64
}

// Polyline is an open or closed chain of vertices.
type Polyline struct {
	Base
	Vertices []Vertex
	Closed   bool
}

// Arc is a circular arc; angles are degrees counter-clockwise from +X.
type Arc struct {
	Base
	Center     *Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// Circle is a full circle.
type Circle struct {
	Base
	Center *Point
	Radius float64
}

// Ellipse is an elliptical arc. MajorAxis is relative to Center, Ratio is
// minor/major, parameters are radians. Equal parameters mean a full ellipse.
type Ellipse struct {
	Base
	Center     *Point
	MajorAxis  Point
	Ratio      float64
	StartParam float64
	EndParam   float64
}

// Hatch is a filled region. The first loop is the outer boundary, the rest
// are holes.
type Hatch struct {
	Base
	Loops [][]Point
}

// Text is a single or multi-line text anchor.
type Text struct {
	Base
	Value     string
	Position  *Point
	Height    float64
	Multiline bool
}

// Insert places a block definition.
type Insert struct {
	Base
	Block    string
	Position *Point
	Rotation float64 // degrees
	ScaleX   float64
	ScaleY   float64
	ScaleZ   float64
}

// Annotation covers dimension, leader, attribute definition and point marker
// records. They never produce measurable geometry.
type Annotation struct {
	Base
	Type EntityKind
}

// Unsupported keeps a record whose raw type has no mapping.
type Unsupported struct {
	Base
	Type string
}

func (Line) Kind() EntityKind        { return KindLine }
func (Polyline) Kind() EntityKind    { return KindPolyline }
func (Arc) Kind() EntityKind         { return KindArc }
func (Circle) Kind() EntityKind      { return KindCircle }
func (Ellipse) Kind() EntityKind     { return KindEllipse }
func (Hatch) Kind() EntityKind       { return KindHatch }
func (Text) Kind() EntityKind        { return KindText }
func (Insert) Kind() EntityKind      { return KindInsert }
func (Unsupported) Kind() EntityKind { return KindUnsupported }

// Kind reports the concrete annotation type.
func (a Annotation) Kind() EntityKind { return a.Type }

// BlockDefinition is a named, reusable list of entities.
type BlockDefinition struct {
	Name     string
	Base     Point
	Entities []Entity
}

// Drawing is everything the external CAD parser hands over.
type Drawing struct {
	Entities []Entity
	Blocks   map[string]BlockDefinition
	// Units is the declared $INSUNITS code, 0 when unknown.
	Units  int
	Source string
}
