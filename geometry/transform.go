package geometry

import "math"

// Point is a position in drawing units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Add returns p+o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns p-o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Distance is the planar distance between p and o.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Transform places local coordinates in a parent space: scale per axis, then
// rotate (radians, counter-clockwise) about the origin, then translate.
type Transform struct {
	Translation Point   `json:"translation"`
	Rotation    float64 `json:"rotation"`
	ScaleX      float64 `json:"scale_x"`
	ScaleY      float64 `json:"scale_y"`
	ScaleZ      float64 `json:"scale_z"`
}

// Identity returns the transform that leaves every point unchanged.
func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
}

// Apply maps p from local into parent coordinates.
func (t Transform) Apply(p Point) Point {
	return t.linear(p).Add(t.Translation)
}

// linear applies scale and rotation without translation.
func (t Transform) linear(p Point) Point {
	x := p.X * t.ScaleX
	y := p.Y * t.ScaleY
	if t.Rotation == 0 {
		return Point{X: x, Y: y, Z: p.Z * t.ScaleZ}
	}
	sin, cos := math.Sincos(t.Rotation)
	return Point{
		X: x*cos - y*sin,
		Y: x*sin + y*cos,
		Z: p.Z * t.ScaleZ,
	}
}

// UniformScale is the magnitude of the planar scale, sqrt(|sx*sy|).
func (t Transform) UniformScale() float64 {
	return math.Sqrt(math.Abs(t.ScaleX * t.ScaleY))
}

// Compose nests child inside parent. The child's translation is rotated and
// scaled by the parent, then offset by the parent's translation; rotations
// add and scales multiply per axis. For a parent with uniform planar scale,
// Compose(parent, child).Apply(p) == parent.Apply(child.Apply(p)).
func Compose(parent, child Transform) Transform {
	return Transform{
		Translation: parent.Apply(child.Translation),
		Rotation:    parent.Rotation + child.Rotation,
		ScaleX:      parent.ScaleX * child.ScaleX,
		ScaleY:      parent.ScaleY * child.ScaleY,
		ScaleZ:      parent.ScaleZ * child.ScaleZ,
	}
}

// LocalTransform builds the placement of an insert. Zero scales default to 1,
// a nil position to the origin, and rotation is given in degrees. The block
// base point is moved onto the insertion point.
func LocalTransform(position *Point, rotationDeg, sx, sy, sz float64, base Point) Transform {
	t := Transform{
		Rotation: rotationDeg * math.Pi / 180,
		ScaleX:   orOne(sx),
		ScaleY:   orOne(sy),
		ScaleZ:   orOne(sz),
	}
	var pos Point
	if position != nil {
		pos = *position
	}
	t.Translation = pos.Sub(t.linear(base))
	return t
}

func orOne(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}
