package geom

import "math"

// ClosestKind classifies where on a triangle the nearest point lies.
type ClosestKind int

const (
	ClosestVertex ClosestKind = iota
	ClosestEdge
	ClosestFace
)

func (k ClosestKind) String() string {
	switch k {
	case ClosestVertex:
		return "vertex"
	case ClosestEdge:
		return "edge"
	case ClosestFace:
		return "face"
	default:
		return "unknown"
	}
}

// Closest identifies the feature of a triangle nearest to a query point.
// Index is the local vertex for ClosestVertex, the start vertex of the
// edge (Index, Index+1 mod 3) for ClosestEdge, and -1 for ClosestFace.
type Closest struct {
	Kind  ClosestKind
	Index int
}

// TriDistance is the result of a point-to-triangle query.
type TriDistance struct {
	DistSq  float64
	Point   Point3
	Closest Closest
}

// DistSqToTriangle returns the squared distance from q to t along with the
// closest point and the feature it lies on. Vertex regions are closed so a
// query on a vertex boundary always takes the vertex case.
func DistSqToTriangle(q Point3, t Triangle) (TriDistance, error) {
	p0, p1, p2 := t[0], t[1], t[2]

	v01, err := p1.Sub(p0).Normalize()
	if err != nil {
		return TriDistance{}, ErrDegenerate
	}
	v12, err := p2.Sub(p1).Normalize()
	if err != nil {
		return TriDistance{}, ErrDegenerate
	}
	v20, err := p0.Sub(p2).Normalize()
	if err != nil {
		return TriDistance{}, ErrDegenerate
	}

	d0 := q.Sub(p0)
	d1 := q.Sub(p1)
	d2 := q.Sub(p2)

	p01q := v01.Dot(d0) <= 0
	p02q := v20.Dot(d0) >= 0
	p10q := v01.Dot(d1) >= 0
	p12q := v12.Dot(d1) <= 0
	p20q := v20.Dot(d2) <= 0
	p21q := v12.Dot(d2) >= 0

	switch {
	case p01q && p02q:
		return TriDistance{d0.LengthSq(), p0, Closest{ClosestVertex, 0}}, nil
	case p10q && p12q:
		return TriDistance{d1.LengthSq(), p1, Closest{ClosestVertex, 1}}, nil
	case p20q && p21q:
		return TriDistance{d2.LengthSq(), p2, Closest{ClosestVertex, 2}}, nil
	}

	n, err := v20.Cross(v01).Normalize()
	if err != nil {
		return TriDistance{}, ErrDegenerate
	}

	// Outward edge normals in the triangle's plane.
	e0 := v01.Cross(n)
	e1 := v12.Cross(n)
	e2 := v20.Cross(n)

	switch {
	case !p01q && !p10q && e0.Dot(d0) > 0:
		r := p0.Add(v01.Scale(d0.Dot(v01)))
		return TriDistance{q.DistSq(r), r, Closest{ClosestEdge, 0}}, nil
	case !p12q && !p21q && e1.Dot(d1) > 0:
		r := p1.Add(v12.Scale(d1.Dot(v12)))
		return TriDistance{q.DistSq(r), r, Closest{ClosestEdge, 1}}, nil
	case !p20q && !p02q && e2.Dot(d2) > 0:
		r := p2.Add(v20.Scale(d2.Dot(v20)))
		return TriDistance{q.DistSq(r), r, Closest{ClosestEdge, 2}}, nil
	}

	h := n.Dot(d0)
	return TriDistance{h * h, q.Offset(n.Scale(h)), Closest{ClosestFace, -1}}, nil
}

// DistSqToTriangleOnly is DistSqToTriangle without the closest point.
func DistSqToTriangleOnly(q Point3, t Triangle) (float64, error) {
	r, err := DistSqToTriangle(q, t)
	if err != nil {
		return 0, err
	}
	return r.DistSq, nil
}

// DistSqToVertices returns the squared distance from q to the nearest of
// the triangle's three vertices.
func DistSqToVertices(q Point3, t Triangle) float64 {
	return math.Min(q.DistSq(t[0]), math.Min(q.DistSq(t[1]), q.DistSq(t[2])))
}
