package geom

import "math"

// Triangle is three points in counter-clockwise order.
type Triangle [3]Point3

// Tri builds a triangle from three points.
func Tri(a, b, c Point3) Triangle {
	return Triangle{a, b, c}
}

// Normal returns the unit normal of the triangle.
func (t Triangle) Normal() (Vector3, error) {
	// Edges are scaled up to keep very small triangles above ZeroEps.
	e1 := t[1].Sub(t[0]).Scale(1000)
	e2 := t[2].Sub(t[0]).Scale(1000)
	n, err := e1.Cross(e2).Normalize()
	if err != nil {
		return Vector3{}, ErrDegenerate
	}
	return n, nil
}

// RawNormal returns the unnormalized cross product of the two edges at t[0].
func (t Triangle) RawNormal() Vector3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return 0.5 * t.RawNormal().Length()
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() Point3 {
	return Point3{
		(t[0].X + t[1].X + t[2].X) / 3,
		(t[0].Y + t[1].Y + t[2].Y) / 3,
		(t[0].Z + t[1].Z + t[2].Z) / 3,
	}
}

// Bounds returns the triangle's bounding box.
func (t Triangle) Bounds() Box {
	return BoxOf(t[0], t[1], t[2])
}

// Barycentric returns the coordinates (u, v, w) of p's projection onto the
// triangle's plane, so that p ≈ u*t[0] + v*t[1] + w*t[2].
func (t Triangle) Barycentric(p Point3) (u, v, w float64, err error) {
	e0 := t[1].Sub(t[0])
	e1 := t[2].Sub(t[0])
	e2 := p.Sub(t[0])
	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)
	den := d00*d11 - d01*d01
	if math.Abs(den) < ZeroEps*ZeroEps {
		return 0, 0, 0, ErrDegenerate
	}
	v = (d11*d20 - d01*d21) / den
	w = (d00*d21 - d01*d20) / den
	u = 1 - v - w
	return u, v, w, nil
}

// Plane is the set of points p with N·p + D == 0.
type Plane struct {
	N Vector3
	D float64
}

// Plane returns the supporting plane of the triangle.
func (t Triangle) Plane() (Plane, error) {
	n, err := t.Normal()
	if err != nil {
		return Plane{}, err
	}
	return Plane{N: n, D: -n.Dot(t[0].Vector())}, nil
}

// Eval returns the signed distance from p to the plane.
func (pl Plane) Eval(p Point3) float64 {
	return pl.N.Dot(p.Vector()) + pl.D
}

// Project returns the orthogonal projection of p onto the plane.
func (pl Plane) Project(p Point3) Point3 {
	return p.Offset(pl.N.Scale(pl.Eval(p)))
}
