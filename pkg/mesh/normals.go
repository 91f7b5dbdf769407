package mesh

import (
	"context"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/parallel"
)

// NormalType selects how UpdateNormal assigns normals.
type NormalType int

const (
	// NormalAsIs recomputes using the mesh's current NormalType.
	NormalAsIs NormalType = iota
	// NormalFace stores one normal per face on all three of its edges.
	NormalFace
	// NormalVertex stores one accumulated normal per vertex.
	NormalVertex
)

func (t NormalType) String() string {
	switch t {
	case NormalAsIs:
		return "as-is"
	case NormalFace:
		return "face"
	case NormalVertex:
		return "vertex"
	default:
		return "unknown"
	}
}

// NormalReport lists the faces whose normal could not be computed. Those
// faces receive a zero normal and processing continues.
type NormalReport struct {
	Degenerate []int
}

// UpdateNormal discards the current normals and recomputes them. Faces
// and vertices are processed in parallel.
func (m *Mesh) UpdateNormal(t NormalType) NormalReport {
	if t == NormalAsIs {
		t = m.NormalType
	}
	if t == NormalAsIs {
		t = NormalFace
	}
	m.NormalType = t
	m.Normals = nil

	faceNormals := make([]geom.Vector3, len(m.Faces))
	bad := make([]bool, len(m.Faces))
	_ = parallel.For(context.Background(), len(m.Faces), 0, func(f int) error {
		if m.IsDeleted(f) {
			return nil
		}
		n, err := m.FaceNormal(f)
		if err != nil {
			bad[f] = true
			return nil
		}
		faceNormals[f] = n
		return nil
	})

	var report NormalReport
	for f, b := range bad {
		if b {
			report.Degenerate = append(report.Degenerate, f)
		}
	}

	switch t {
	case NormalFace:
		m.Normals = faceNormals
		for f := range m.Faces {
			m.Faces[f].N = [3]int{f, f, f}
			for _, e := range m.FaceEdges(f) {
				m.Edges[e].Normal = f
			}
		}
	case NormalVertex:
		m.Normals = make([]geom.Vector3, len(m.Vertices))
		_ = parallel.For(context.Background(), len(m.Vertices), 0, func(v int) error {
			var sum geom.Vector3
			for _, e := range m.Vertices[v].Edges {
				f := m.Edges[e].Face
				if m.IsDeleted(f) || bad[f] {
					continue
				}
				sum = sum.Add(m.Triangle(f).RawNormal())
			}
			m.Normals[v] = sum.NormalizeOrZero()
			return nil
		})
		for f := range m.Faces {
			m.Faces[f].N = m.Faces[f].V
			for _, e := range m.FaceEdges(f) {
				m.Edges[e].Normal = m.Edges[e].Origin
			}
		}
	}
	return report
}
