package mesh

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfkit/pkg/geom"
)

// ErrNonManifold is wrapped by every NonManifoldError.
var ErrNonManifold = errors.New("mesh: non-manifold vertex")

// NonManifoldError names the vertex whose one-ring could not be walked.
type NonManifoldError struct {
	Vertex int
	Edges  int // outgoing edges at the vertex
	Walked int // edges reached by the ring walk
}

func (e *NonManifoldError) Error() string {
	return fmt.Sprintf("mesh: vertex %d is non-manifold: walked %d of %d edges", e.Vertex, e.Walked, e.Edges)
}

func (e *NonManifoldError) Unwrap() error { return ErrNonManifold }

// ---------------------------------------------------------------------------
// Mate reconstruction
// ---------------------------------------------------------------------------

// UpdateEdgeMate discards every mate link and pairs all half-edges again.
// Two edges are mates when each one's origin is the other's destination.
func (m *Mesh) UpdateEdgeMate() {
	for i := range m.Edges {
		m.Edges[i].Mate = Nil
	}
	for e := range m.Edges {
		if m.Edges[e].Mate == Nil && !m.IsDeleted(m.Edges[e].Face) {
			m.pairEdge(e)
		}
	}
}

// UpdateEdgeMateAround re-pairs the edges of the live faces incident to
// vertex v. Deleted faces are skipped. Calls for different vertices must
// not run concurrently since neighbouring rings share edges.
func (m *Mesh) UpdateEdgeMateAround(v int) {
	var ring []int
	for _, e := range m.Vertices[v].Edges {
		if m.IsDeleted(m.Edges[e].Face) {
			continue
		}
		fe := m.FaceEdges(m.Edges[e].Face)
		ring = append(ring, fe[:]...)
	}
	for _, e := range ring {
		if mate := m.Edges[e].Mate; mate != Nil {
			if m.Edges[mate].Mate == e {
				m.Edges[mate].Mate = Nil
			}
			m.Edges[e].Mate = Nil
		}
	}
	for _, e := range ring {
		if m.Edges[e].Mate == Nil {
			m.pairEdge(e)
		}
	}
}

// pairEdge looks for an unpaired edge running opposite to e and links the
// two symmetrically.
func (m *Mesh) pairEdge(e1 int) {
	origin := m.Edges[e1].Origin
	for _, e2 := range m.Vertices[m.Dest(e1)].Edges {
		if e2 == e1 || m.Edges[e2].Mate != Nil || m.IsDeleted(m.Edges[e2].Face) {
			continue
		}
		if m.Dest(e2) == origin {
			m.Edges[e1].Mate = e2
			m.Edges[e2].Mate = e1
			return
		}
	}
}

// ---------------------------------------------------------------------------
// One-ring traversal
// ---------------------------------------------------------------------------

// liveEdges returns v's outgoing edges on faces that are not deleted.
func (m *Mesh) liveEdges(v int) []int {
	edges := m.Vertices[v].Edges
	out := make([]int, 0, len(edges))
	for _, e := range edges {
		if !m.IsDeleted(m.Edges[e].Face) {
			out = append(out, e)
		}
	}
	return out
}

// VertexEdges returns the outgoing half-edges of vertex v. With ccw false
// they come back in storage order. With ccw true they are ordered
// counter-clockwise around the vertex, starting at the boundary edge for a
// boundary vertex. A vertex whose faces do not form a single fan yields a
// *NonManifoldError.
func (m *Mesh) VertexEdges(v int, ccw bool) ([]int, error) {
	edges := m.liveEdges(v)
	if !ccw || len(edges) == 0 {
		return edges, nil
	}

	n := len(edges)
	start := edges[0]
	ring := []int{start}
	e := start
	closed := false
	for len(ring) <= n {
		mate := m.Edges[e].Mate
		if mate == Nil {
			break
		}
		e = m.Edges[mate].Next
		if e == start {
			closed = true
			break
		}
		ring = append(ring, e)
	}

	if closed && len(ring) == n {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
		return ring, nil
	}
	if closed || len(ring) > n {
		return nil, &NonManifoldError{Vertex: v, Edges: n, Walked: len(ring)}
	}

	// The walk hit a boundary: go the other way from where it stopped.
	first := e
	ring = ring[:0]
	ring = append(ring, first)
	for len(ring) <= n {
		mate := m.Edges[m.Prev(e)].Mate
		if mate == Nil {
			break
		}
		e = mate
		if e == first {
			break
		}
		ring = append(ring, e)
	}
	if len(ring) != n {
		return nil, &NonManifoldError{Vertex: v, Edges: n, Walked: len(ring)}
	}
	return ring, nil
}

// IsBoundaryVertex reports whether any outgoing edge of v lacks a mate.
func (m *Mesh) IsBoundaryVertex(v int) bool {
	for _, e := range m.liveEdges(v) {
		if m.Edges[e].Mate == Nil {
			return true
		}
	}
	return false
}

// IsBoundaryFace reports whether any vertex of face f is a boundary vertex.
func (m *Mesh) IsBoundaryFace(f int) bool {
	for _, v := range m.Faces[f].V {
		if m.IsBoundaryVertex(v) {
			return true
		}
	}
	return false
}

// BoundaryEdges returns the live half-edges without a mate.
func (m *Mesh) BoundaryEdges() []int {
	var out []int
	for e := range m.Edges {
		if m.Edges[e].Mate == Nil && !m.IsDeleted(m.Edges[e].Face) {
			out = append(out, e)
		}
	}
	return out
}

// NonManifoldVertices returns every vertex whose one-ring walk fails.
func (m *Mesh) NonManifoldVertices() []int {
	var out []int
	for v := range m.Vertices {
		if _, err := m.VertexEdges(v, true); err != nil {
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Vertex normals
// ---------------------------------------------------------------------------

// cornerAngle returns the interior angle at the origin of edge e.
func (m *Mesh) cornerAngle(e int) float64 {
	p := m.Vertices[m.Edges[e].Origin].Pos
	a := m.Vertices[m.Dest(e)].Pos.Sub(p)
	b := m.Vertices[m.Edges[m.Prev(e)].Origin].Pos.Sub(p)
	ang, err := a.Angle(b)
	if err != nil {
		return 0
	}
	return ang
}

// AvgNormal averages the normals of the faces around vertex v. When
// weighted, each face counts by its interior angle at v. Degenerate faces
// are ignored and an isolated vertex yields the zero vector.
func (m *Mesh) AvgNormal(v int, weighted bool) geom.Vector3 {
	var sum geom.Vector3
	total := 0.0
	for _, e := range m.liveEdges(v) {
		n, err := m.FaceNormal(m.Edges[e].Face)
		if err != nil {
			continue
		}
		w := 1.0
		if weighted {
			w = m.cornerAngle(e)
		}
		sum = sum.Add(n.Scale(w))
		total += w
	}
	if total == 0 {
		return geom.Vector3{}
	}
	return sum.Scale(1 / total).NormalizeOrZero()
}
