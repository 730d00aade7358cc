package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const fullTurn = 2 * math.Pi

// ShoelaceArea returns the unsigned planar area enclosed by pts. The ring is
// closed implicitly; winding direction does not matter.
func ShoelaceArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	return math.Abs(planar.Area(toRing(pts)))
}

// PathLength returns the planar length of the chain through pts, including
// the closing segment when closed is set.
func PathLength(pts []Point, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	ls := make(orb.LineString, 0, len(pts)+1)
	for _, p := range pts {
		ls = append(ls, orb.Point{p.X, p.Y})
	}
	if closed && !samePoint(pts[0], pts[len(pts)-1]) {
		ls = append(ls, ls[0])
	}
	return planar.Length(ls)
}

// Centroid returns the centre of the planar bounds of pts.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	b := boundOf(pts)
	c := b.Center()
	return Point{X: c[0], Y: c[1]}
}

func toRing(pts []Point) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

func boundOf(pts []Point) orb.Bound {
	b := orb.Bound{Min: orb.Point{pts[0].X, pts[0].Y}, Max: orb.Point{pts[0].X, pts[0].Y}}
	for _, p := range pts[1:] {
		b = b.Extend(orb.Point{p.X, p.Y})
	}
	return b
}

func samePoint(a, b Point) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// distinctVertices counts vertices that differ from their predecessor,
// ignoring a repeated closing vertex.
func distinctVertices(pts []Point) int {
	if len(pts) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(pts); i++ {
		if !samePoint(pts[i], pts[i-1]) {
			n++
		}
	}
	if n > 1 && samePoint(pts[0], pts[len(pts)-1]) {
		n--
	}
	return n
}

// segmentsFor returns how many chords approximate a sweep of the given angle.
func segmentsFor(sweep float64, perTurn int) int {
	n := int(math.Ceil(float64(perTurn) * math.Abs(sweep) / fullTurn))
	if n < 2 {
		n = 2
	}
	return n
}

// sampleArc returns points on a circular arc from start sweeping by sweep
// radians (positive is counter-clockwise), both ends included.
func sampleArc(center Point, radius, start, sweep float64, perTurn int) []Point {
	n := segmentsFor(sweep, perTurn)
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		sin, cos := math.Sincos(a)
		pts = append(pts, Point{X: center.X + radius*cos, Y: center.Y + radius*sin, Z: center.Z})
	}
	return pts
}

// sampleCircle returns a closed loop without the repeated closing vertex.
func sampleCircle(center Point, radius float64, perTurn int) []Point {
	pts := sampleArc(center, radius, 0, fullTurn, perTurn)
	return pts[:len(pts)-1]
}

// sampleEllipse samples an elliptical arc between two parameters.
func sampleEllipse(e Ellipse, center Point, perTurn int) ([]Point, bool) {
	major := math.Hypot(e.MajorAxis.X, e.MajorAxis.Y)
	if major == 0 {
		return nil, false
	}
	ratio := e.Ratio
	if ratio <= 0 {
		ratio = 1
	}
	minor := major * ratio
	rot := math.Atan2(e.MajorAxis.Y, e.MajorAxis.X)
	start, end := e.StartParam, e.EndParam
	full := start == end || math.Abs(math.Abs(end-start)-fullTurn) < 1e-9
	sweep := end - start
	if full {
		start, sweep = 0, fullTurn
	} else if sweep < 0 {
		sweep += fullTurn
	}
	n := segmentsFor(sweep, perTurn)
	sinR, cosR := math.Sincos(rot)
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := start + sweep*float64(i)/float64(n)
		sin, cos := math.Sincos(t)
		x := major * cos
		y := minor * sin
		pts = append(pts, Point{
			X: center.X + x*cosR - y*sinR,
			Y: center.Y + x*sinR + y*cosR,
			Z: center.Z,
		})
	}
	if full {
		pts = pts[:len(pts)-1]
	}
	return pts, full
}

// expandBulges turns polyline vertices into a point chain, replacing bulged
// segments with sampled arcs.
func expandBulges(vs []Vertex, closed bool, perTurn int) []Point {
	if len(vs) == 0 {
		return nil
	}
	pts := []Point{vs[0].Point}
	segs := len(vs) - 1
	if closed {
		segs = len(vs)
	}
	for i := 0; i < segs; i++ {
		from := vs[i]
		to := vs[(i+1)%len(vs)]
		if from.Bulge == 0 || samePoint(from.Point, to.Point) {
			pts = append(pts, to.Point)
			continue
		}
		arc := bulgeArc(from.Point, to.Point, from.Bulge, perTurn)
		pts = append(pts, arc[1:]...)
	}
	if closed && len(pts) > 1 && samePoint(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func bulgeArc(p1, p2 Point, bulge float64, perTurn int) []Point {
	theta := 4 * math.Atan(bulge)
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	mid := Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2, Z: p1.Z}
	h := (chord / 2) / math.Tan(theta/2)
	center := Point{X: mid.X - dy/chord*h, Y: mid.Y + dx/chord*h, Z: p1.Z}
	radius := center.Distance(p1)
	start := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	pts := sampleArc(center, radius, start, theta, perTurn)
	pts[len(pts)-1] = p2
	return pts
}
