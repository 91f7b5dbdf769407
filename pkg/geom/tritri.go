package geom

import "math"

// TriTriResult is the outcome of a triangle-triangle test.
type TriTriResult int

const (
	// NoIntersection means the triangles are disjoint.
	NoIntersection TriTriResult = iota
	// Coplanar means the triangles overlap in a shared plane. No segment
	// is computed for this case.
	Coplanar
	// Crossing means the triangles cross and Segment holds the overlap.
	Crossing
)

func (r TriTriResult) String() string {
	switch r {
	case NoIntersection:
		return "none"
	case Coplanar:
		return "coplanar"
	case Crossing:
		return "crossing"
	default:
		return "unknown"
	}
}

// Segment is a line segment between two points.
type Segment struct {
	P, Q Point3
}

// DefaultTriTriEps is the plane tolerance used by IntersectWithTri.
const DefaultTriTriEps = 1e-7

// TriTriIntersect intersects triangles a and b. Vertices within eps of the
// other triangle's plane are snapped onto it. Degenerate triangles have no
// plane and never intersect.
func TriTriIntersect(a, b Triangle, eps float64) (TriTriResult, Segment) {
	planeA, err := a.Plane()
	if err != nil {
		return NoIntersection, Segment{}
	}
	planeB, err := b.Plane()
	if err != nil {
		return NoIntersection, Segment{}
	}

	var da, db [3]float64
	for i := 0; i < 3; i++ {
		da[i] = planeB.Eval(a[i])
		if math.Abs(da[i]) < eps {
			da[i] = 0
			a[i] = planeB.Project(a[i])
		}
	}
	if sameSide(da) {
		return NoIntersection, Segment{}
	}

	for i := 0; i < 3; i++ {
		db[i] = planeA.Eval(b[i])
		if math.Abs(db[i]) < eps {
			db[i] = 0
			b[i] = planeA.Project(b[i])
		}
	}
	if sameSide(db) {
		return NoIntersection, Segment{}
	}

	if da[0] == 0 && da[1] == 0 && da[2] == 0 {
		if coplanarOverlap(a, b, eps) {
			return Coplanar, Segment{}
		}
		return NoIntersection, Segment{}
	}

	// Every vertex of b is off planeA: b crosses the plane along r-s.
	if db[0] != 0 && db[1] != 0 && db[2] != 0 {
		var r, s Point3
		for i0 := 0; i0 < 3; i0++ {
			i1, i2 := (i0+1)%3, (i0+2)%3
			if db[i0]*db[i1] > 0 {
				r = b[i1].Add(b[i2].Sub(b[i1]).Scale(db[i1] / (db[i1] - db[i2])))
				s = b[i2].Add(b[i0].Sub(b[i2]).Scale(db[i2] / (db[i2] - db[i0])))
				break
			}
		}
		return clipSegmentToTri(r, s, a, planeA.N)
	}

	// One or two vertices of b lie on planeA.
	i0 := 2
	if db[0] == 0 {
		i0 = 0
	} else if db[1] == 0 {
		i0 = 1
	}
	i1, i2 := (i0+1)%3, (i0+2)%3
	if db[i1]*db[i2] > 0 {
		return NoIntersection, Segment{}
	}
	r := b[i0]
	s := b[i0]
	if db[i1] != db[i2] {
		s = b[i1].Add(b[i2].Sub(b[i1]).Scale(db[i1] / (db[i1] - db[i2])))
	}
	return clipSegmentToTri(r, s, a, planeA.N)
}

func sameSide(d [3]float64) bool {
	return (d[0] > 0 && d[1] > 0 && d[2] > 0) || (d[0] < 0 && d[1] < 0 && d[2] < 0)
}

// coplanarOverlap decides whether two triangles in one plane overlap.
func coplanarOverlap(a, b Triangle, eps float64) bool {
	c1, c2 := a.Centroid(), b.Centroid()
	r1 := math.Max(c1.Dist(a[0]), math.Max(c1.Dist(a[1]), c1.Dist(a[2])))
	r2 := math.Max(c2.Dist(b[0]), math.Max(c2.Dist(b[1]), c2.Dist(b[2])))
	if r1+r2 < c1.Dist(c2) {
		return false
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if SegmentsIntersect(a[i], a[(i+1)%3], b[j], b[(j+1)%3], eps) {
				return true
			}
		}
	}

	// No edges cross, so one vertex decides containment.
	return insideTri(a[0], b) || insideTri(b[0], a)
}

func insideTri(p Point3, t Triangle) bool {
	u, v, w, err := t.Barycentric(p)
	if err != nil {
		return false
	}
	return u >= 0 && v >= 0 && w >= 0
}

// SegmentsIntersect reports whether segments p0-p1 and q0-q1 come within
// eps of each other.
func SegmentsIntersect(p0, p1, q0, q1 Point3, eps float64) bool {
	d1 := p1.Sub(p0)
	d2 := q1.Sub(q0)
	r := p0.Sub(q0)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < ZeroEps && e < ZeroEps:
		return p0.DistSq(q0) <= eps*eps
	case a < ZeroEps:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e < ZeroEps {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			den := a*e - b*b
			if den > ZeroEps {
				s = clamp01((b*f - c*e) / den)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}
	c1 := p0.Add(d1.Scale(s))
	c2 := q0.Add(d2.Scale(t))
	return c1.DistSq(c2) <= eps*eps
}

// clipSegmentToTri clips r-s, which lies in t's plane, to the triangle.
func clipSegmentToTri(r, s Point3, t Triangle, n Vector3) (TriTriResult, Segment) {
	d := s.Sub(r)
	t0, t1 := 0.0, 1.0
	for i := 0; i < 3; i++ {
		edge := t[(i+1)%3].Sub(t[i])
		in := n.Cross(edge)
		num := in.Dot(r.Sub(t[i]))
		den := in.Dot(d)
		if math.Abs(den) < ZeroEps {
			if num < -ZeroEps {
				return NoIntersection, Segment{}
			}
			continue
		}
		u := -num / den
		if den > 0 {
			t0 = math.Max(t0, u)
		} else {
			t1 = math.Min(t1, u)
		}
		if t0 > t1 {
			return NoIntersection, Segment{}
		}
	}
	return Crossing, Segment{P: r.Add(d.Scale(t0)), Q: r.Add(d.Scale(t1))}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
