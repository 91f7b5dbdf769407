package bvh

import (
	"math"
	"sort"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/mesh"
)

// minFaceArea is the area below which faces are ignored by distance queries.
const minFaceArea = 1e-7

// ---------------------------------------------------------------------------
// Proximity
// ---------------------------------------------------------------------------

// IsCloserThan reports whether any face lies within maxDist of p. With
// vertexOnly set, only the faces' vertices are measured.
func (b *BVH) IsCloserThan(maxDist float64, p geom.Point3, vertexOnly bool) bool {
	if b.Root == nil || b.Root.empty() {
		return false
	}
	limit := maxDist * maxDist

	q := &nodeQueue{}
	q.push(b.Root, b.Root.lowerBound(p))
	for q.Len() > 0 {
		it := q.pop()
		if it.bound > limit {
			continue
		}
		n := it.node
		if !n.Leaf {
			for _, c := range n.Children {
				if !c.empty() {
					q.push(c, c.lowerBound(p))
				}
			}
			continue
		}
		for _, f := range n.Faces {
			tri := b.Mesh.Triangle(f)
			var d2 float64
			if vertexOnly {
				d2 = geom.DistSqToVertices(p, tri)
			} else {
				var err error
				if d2, err = geom.DistSqToTriangleOnly(p, tri); err != nil {
					d2 = geom.DistSqToVertices(p, tri)
				}
			}
			if d2 < limit {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Nearest point
// ---------------------------------------------------------------------------

// Result is the answer to a nearest-point query.
type Result struct {
	// Distance is negative for signed queries from inside a closed surface.
	Distance float64
	Point    geom.Point3
	Face     int
	Closest  geom.Closest
}

// ComputeDistance finds the face nearest to p. Every leaf whose box could
// still hold a nearer face is visited. With signed set, the sign comes
// from the surface normal at the closest point: the vertex normal, the
// averaged normal of the two faces sharing the edge, or the face normal.
// Points nearest to a face touching the mesh boundary are never negative.
func (b *BVH) ComputeDistance(p geom.Point3, signed bool) (Result, error) {
	if b.Root == nil || b.Root.empty() {
		return Result{}, ErrNoFaces
	}

	best := math.Inf(1)
	res := Result{Face: mesh.Nil}

	q := &nodeQueue{}
	q.push(b.Root, b.Root.lowerBound(p))
	for q.Len() > 0 {
		it := q.pop()
		if it.bound > best {
			continue
		}
		n := it.node
		if !n.Leaf {
			for _, c := range n.Children {
				if c.empty() {
					continue
				}
				if lb := c.lowerBound(p); lb <= best {
					q.push(c, lb)
				}
			}
			continue
		}
		for _, f := range n.Faces {
			tri := b.Mesh.Triangle(f)
			if tri.Area() < minFaceArea {
				continue
			}
			td, err := geom.DistSqToTriangle(p, tri)
			if err != nil {
				continue
			}
			if td.DistSq < best {
				best = td.DistSq
				res.Point = td.Point
				res.Face = f
				res.Closest = td.Closest
			}
		}
	}
	if res.Face == mesh.Nil {
		return Result{}, ErrNoFaces
	}

	res.Distance = math.Sqrt(best)
	if signed && b.inside(p, res) {
		res.Distance = -res.Distance
	}
	return res, nil
}

// inside decides the sign of a nearest-point result.
func (b *BVH) inside(p geom.Point3, r Result) bool {
	m := b.Mesh
	dir, err := p.Sub(r.Point).Normalize()
	if err != nil {
		return false
	}
	if m.IsBoundaryFace(r.Face) {
		return false
	}
	return b.closestNormal(r).Dot(dir) < 0
}

func (b *BVH) closestNormal(r Result) geom.Vector3 {
	m := b.Mesh
	face := m.Faces[r.Face]
	switch r.Closest.Kind {
	case geom.ClosestVertex:
		return m.AvgNormal(face.V[r.Closest.Index], true)
	case geom.ClosestEdge:
		e := m.FaceEdges(r.Face)[r.Closest.Index]
		n, _ := m.FaceNormal(r.Face)
		if mate := m.Edges[e].Mate; mate != mesh.Nil {
			if mn, err := m.FaceNormal(m.Edges[mate].Face); err == nil {
				n = n.Add(mn)
			}
		}
		return n.NormalizeOrZero()
	}
	n, _ := m.FaceNormal(r.Face)
	return n
}

// ---------------------------------------------------------------------------
// Triangle intersection
// ---------------------------------------------------------------------------

// Hit is a mesh face intersected by a query triangle.
type Hit struct {
	Face    int
	Kind    geom.TriTriResult
	Segment geom.Segment
}

// IntersectWithTri returns every face that intersects t, ordered by face
// index. Subtrees whose boxes miss t are pruned.
func (b *BVH) IntersectWithTri(t geom.Triangle) []Hit {
	if b.Root == nil || b.Root.empty() || !geom.TriBoxOverlapBox(t, b.Root.Box) {
		return nil
	}

	var hits []Hit
	queue := []*Node{b.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !n.Leaf {
			for _, c := range n.Children {
				if !c.empty() && geom.TriBoxOverlapBox(t, c.Box) {
					queue = append(queue, c)
				}
			}
			continue
		}
		for _, f := range n.Faces {
			kind, seg := geom.TriTriIntersect(b.Mesh.Triangle(f), t, geom.DefaultTriTriEps)
			if kind != geom.NoIntersection {
				hits = append(hits, Hit{Face: f, Kind: kind, Segment: seg})
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Face < hits[j].Face })
	return hits
}
