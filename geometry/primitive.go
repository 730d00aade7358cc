package geometry

// PrimitiveKind tags resolved geometry facts.
type PrimitiveKind string

const (
	PrimArea     PrimitiveKind = "area"
	PrimLength   PrimitiveKind = "length"
	PrimInstance PrimitiveKind = "instance"
	PrimText     PrimitiveKind = "text"
)

// Primitive is one resolved geometry fact in world coordinates. Layer and
// RootLayer are fixed when the primitive is created.
type Primitive interface {
	Kind() PrimitiveKind
	LayerName() string
	Root() string
	isPrimitive()
}

// Area is a measured surface in converted area units.
type Area struct {
	Layer      string
	Value      float64
	Vertices   []Point
	SourceKind EntityKind
	RootLayer  string
}

// Length is a measured run in converted length units.
type Length struct {
	Layer      string
	Value      float64
	SourceKind EntityKind
	RootLayer  string
	Centroid   Point
	Closed     bool
}

// Instance is one placed block.
type Instance struct {
	BlockName string
	Layer     string
	Position  Point
	RootLayer string
}

// TextAnchor is a placed text. It has no measurable length or area.
type TextAnchor struct {
	Text      string
	Layer     string
	Position  Point
	Height    float64
	RootLayer string
}

func (Area) Kind() PrimitiveKind       { return PrimArea }
func (Length) Kind() PrimitiveKind     { return PrimLength }
func (Instance) Kind() PrimitiveKind   { return PrimInstance }
func (TextAnchor) Kind() PrimitiveKind { return PrimText }

func (a Area) LayerName() string       { return a.Layer }
func (l Length) LayerName() string     { return l.Layer }
func (i Instance) LayerName() string   { return i.Layer }
func (t TextAnchor) LayerName() string { return t.Layer }

func (a Area) Root() string       { return a.RootLayer }
func (l Length) Root() string     { return l.RootLayer }
func (i Instance) Root() string   { return i.RootLayer }
func (t TextAnchor) Root() string { return t.RootLayer }

func (Area) isPrimitive()       {}
func (Length) isPrimitive()     {}
func (Instance) isPrimitive()   {}
func (TextAnchor) isPrimitive() {}
