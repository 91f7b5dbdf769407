// Package mesh implements a half-edge triangle mesh stored in flat slices.
//
// Vertices, half-edges and faces are addressed by int handles into the
// Mesh's slices. Nil marks a missing reference: an unpaired mate on a
// boundary edge, an absent texel or normal, or a deleted face.
package mesh

import (
	"fmt"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/samber/lo"
)

// Nil is the null handle.
const Nil = -1

// Vertex is a mesh position and the half-edges that start at it.
type Vertex struct {
	Index int
	Pos   geom.Point3
	Edges []int // every edge here has Origin == Index
}

// HalfEdge is one directed side of a triangle.
type HalfEdge struct {
	Origin int
	Face   int
	Next   int
	Mate   int
	Texel  int
	Normal int
}

// Face is a triangle of three vertex handles.
type Face struct {
	Index    int // Nil once deleted
	V        [3]int
	T        [3]int
	N        [3]int
	Material int
	Edge     int
}

// Texel is a texture coordinate.
type Texel struct {
	U, V float64
}

// Material is a named surface material.
type Material struct {
	Name    string
	Diffuse [3]float64
}

// FaceAttrs carries the optional per-corner attributes of a new face.
type FaceAttrs struct {
	T        [3]int
	N        [3]int
	Material int
}

// NoAttrs is a FaceAttrs with every texel and normal unset.
var NoAttrs = FaceAttrs{T: [3]int{Nil, Nil, Nil}, N: [3]int{Nil, Nil, Nil}}

// Mesh is a half-edge triangle mesh.
type Mesh struct {
	Name       string
	Vertices   []Vertex
	Edges      []HalfEdge
	Faces      []Face
	Normals    []geom.Vector3
	Texels     []Texel
	Materials  []Material
	NormalType NormalType
	Bounds     geom.Box
}

// New returns an empty mesh.
func New(name string) *Mesh {
	return &Mesh{Name: name}
}

// FromArrays builds a mesh from flat xyz positions and triangle indices.
func FromArrays(name string, positions []float64, indices []int) (*Mesh, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("mesh: position count %d is not a multiple of 3", len(positions))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: index count %d is not a multiple of 3", len(indices))
	}
	m := New(name)
	m.Vertices = make([]Vertex, 0, len(positions)/3)
	m.Faces = make([]Face, 0, len(indices)/3)
	m.Edges = make([]HalfEdge, 0, len(indices))
	for i := 0; i < len(positions); i += 3 {
		m.AddVertex(geom.Pt(positions[i], positions[i+1], positions[i+2]))
	}
	for i := 0; i < len(indices); i += 3 {
		if _, err := m.AddFace(indices[i], indices[i+1], indices[i+2]); err != nil {
			return nil, fmt.Errorf("mesh: triangle %d: %w", i/3, err)
		}
	}
	return m, nil
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p geom.Point3) int {
	idx := len(m.Vertices)
	m.Vertices = append(m.Vertices, Vertex{Index: idx, Pos: p})
	return idx
}

// AddFace appends a triangle without texels or normals.
func (m *Mesh) AddFace(v0, v1, v2 int) (int, error) {
	return m.AddFaceAttrs([3]int{v0, v1, v2}, NoAttrs)
}

// AddFaceAttrs appends a triangle and its three half-edges and returns the
// face index. Mates are not updated; call UpdateEdgeMate afterwards.
func (m *Mesh) AddFaceAttrs(v [3]int, attrs FaceAttrs) (int, error) {
	for _, vi := range v {
		if vi < 0 || vi >= len(m.Vertices) {
			return Nil, fmt.Errorf("mesh: vertex index %d out of range [0,%d)", vi, len(m.Vertices))
		}
	}

	fi := len(m.Faces)
	e0 := len(m.Edges)
	for i := 0; i < 3; i++ {
		m.Edges = append(m.Edges, HalfEdge{
			Origin: v[i],
			Face:   fi,
			Next:   e0 + (i+1)%3,
			Mate:   Nil,
			Texel:  attrs.T[i],
			Normal: attrs.N[i],
		})
		m.Vertices[v[i]].Edges = append(m.Vertices[v[i]].Edges, e0+i)
	}
	m.Faces = append(m.Faces, Face{
		Index:    fi,
		V:        v,
		T:        attrs.T,
		N:        attrs.N,
		Material: attrs.Material,
		Edge:     e0,
	})
	return fi, nil
}

// DeleteFace tombstones a face, unlinks its mates and drops its edges from
// their origin vertices.
func (m *Mesh) DeleteFace(f int) {
	face := &m.Faces[f]
	if face.Index == Nil {
		return
	}
	e := face.Edge
	for i := 0; i < 3; i++ {
		he := &m.Edges[e]
		if he.Mate != Nil {
			m.Edges[he.Mate].Mate = Nil
			he.Mate = Nil
		}
		v := &m.Vertices[he.Origin]
		v.Edges = lo.Without(v.Edges, e)
		e = he.Next
	}
	face.Index = Nil
}

// IsDeleted reports whether face f has been tombstoned.
func (m *Mesh) IsDeleted(f int) bool {
	return m.Faces[f].Index == Nil
}

// Dest returns the vertex an edge points to.
func (m *Mesh) Dest(e int) int {
	return m.Edges[m.Edges[e].Next].Origin
}

// Prev returns the edge preceding e in its face.
func (m *Mesh) Prev(e int) int {
	return m.Edges[m.Edges[e].Next].Next
}

// FaceEdges returns the three half-edges of face f in winding order.
func (m *Mesh) FaceEdges(f int) [3]int {
	e0 := m.Faces[f].Edge
	e1 := m.Edges[e0].Next
	return [3]int{e0, e1, m.Edges[e1].Next}
}

// Triangle returns the positions of face f.
func (m *Mesh) Triangle(f int) geom.Triangle {
	v := m.Faces[f].V
	return geom.Tri(m.Vertices[v[0]].Pos, m.Vertices[v[1]].Pos, m.Vertices[v[2]].Pos)
}

// FaceNormal returns the unit normal of face f.
func (m *Mesh) FaceNormal(f int) (geom.Vector3, error) {
	n, err := m.Triangle(f).Normal()
	if err != nil {
		return geom.Vector3{}, fmt.Errorf("mesh: face %d: %w", f, err)
	}
	return n, nil
}

// LiveFaces returns the indices of faces that are not deleted.
func (m *Mesh) LiveFaces() []int {
	out := make([]int, 0, len(m.Faces))
	for i := range m.Faces {
		if m.Faces[i].Index != Nil {
			out = append(out, i)
		}
	}
	return out
}

// UpdateBndBox recomputes Bounds from the vertex positions. An empty mesh
// gets a box collapsed onto the origin.
func (m *Mesh) UpdateBndBox() {
	if len(m.Vertices) == 0 {
		m.Bounds = geom.Box{}
		return
	}
	b := geom.EmptyBox()
	for i := range m.Vertices {
		b.Extend(m.Vertices[i].Pos)
	}
	m.Bounds = b
}

// EnsureMaterial adds a default material when the mesh has none.
func (m *Mesh) EnsureMaterial() {
	if len(m.Materials) == 0 {
		m.Materials = append(m.Materials, Material{Name: "default", Diffuse: [3]float64{0.8, 0.8, 0.8}})
	}
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = make([]Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		v.Edges = append([]int(nil), v.Edges...)
		c.Vertices[i] = v
	}
	c.Edges = append([]HalfEdge(nil), m.Edges...)
	c.Faces = append([]Face(nil), m.Faces...)
	c.Normals = append([]geom.Vector3(nil), m.Normals...)
	c.Texels = append([]Texel(nil), m.Texels...)
	c.Materials = append([]Material(nil), m.Materials...)
	return &c
}
