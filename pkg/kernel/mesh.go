package kernel

import (
	"github.com/chazu/sdfkit/pkg/mesh"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene volume this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the per-axis minimum and maximum vertex coordinates.
// Both are zero for an empty mesh.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	copy(min[:], m.Vertices[:3])
	copy(max[:], m.Vertices[:3])
	for i := 3; i < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := m.Vertices[i+a]
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}
	return min, max
}

// FromHalfEdge flattens the live faces of a half-edge mesh. Vertices are
// shared between faces and carry the angle-weighted vertex normal.
func FromHalfEdge(hm *mesh.Mesh) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, 0, len(hm.Vertices)*3),
		Normals:  make([]float32, 0, len(hm.Vertices)*3),
		PartName: hm.Name,
	}
	for v := range hm.Vertices {
		p := hm.Vertices[v].Pos
		n := hm.AvgNormal(v, true)
		out.Vertices = append(out.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, f := range hm.LiveFaces() {
		for _, v := range hm.Faces[f].V {
			out.Indices = append(out.Indices, uint32(v))
		}
	}
	return out
}
