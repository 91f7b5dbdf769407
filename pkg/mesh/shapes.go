package mesh

import (
	"math"

	"github.com/chazu/sdfkit/pkg/geom"
)

// Cube returns a closed, outward-facing cube of 8 vertices and 12 faces.
func Cube(center geom.Point3, size float64) *Mesh {
	h := size / 2
	m := New("cube")
	for _, c := range [8][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	} {
		m.AddVertex(geom.Pt(center.X+c[0]*h, center.Y+c[1]*h, center.Z+c[2]*h))
	}
	for _, f := range [12][3]int{
		{0, 2, 1}, {0, 3, 2}, // -z
		{4, 5, 6}, {4, 6, 7}, // +z
		{0, 1, 5}, {0, 5, 4}, // -y
		{3, 7, 6}, {3, 6, 2}, // +y
		{0, 4, 7}, {0, 7, 3}, // -x
		{1, 2, 6}, {1, 6, 5}, // +x
	} {
		m.AddFace(f[0], f[1], f[2])
	}
	m.finish()
	return m
}

// UVSphere returns a closed, outward-facing latitude/longitude sphere.
func UVSphere(center geom.Point3, radius float64, slices, stacks int) *Mesh {
	slices = max(slices, 3)
	stacks = max(stacks, 2)
	m := New("sphere")

	north := m.AddVertex(center.Add(geom.Vec(0, 0, radius)))
	for i := 1; i < stacks; i++ {
		theta := math.Pi * float64(i) / float64(stacks)
		z := radius * math.Cos(theta)
		r := radius * math.Sin(theta)
		for j := 0; j < slices; j++ {
			phi := 2 * math.Pi * float64(j) / float64(slices)
			m.AddVertex(center.Add(geom.Vec(r*math.Cos(phi), r*math.Sin(phi), z)))
		}
	}
	south := m.AddVertex(center.Add(geom.Vec(0, 0, -radius)))

	ring := func(i, j int) int { return 1 + (i-1)*slices + j%slices }
	for j := 0; j < slices; j++ {
		m.AddFace(north, ring(1, j), ring(1, j+1))
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < slices; j++ {
			m.AddFace(ring(i, j), ring(i+1, j), ring(i+1, j+1))
			m.AddFace(ring(i, j), ring(i+1, j+1), ring(i, j+1))
		}
	}
	for j := 0; j < slices; j++ {
		m.AddFace(south, ring(stacks-1, j+1), ring(stacks-1, j))
	}
	m.finish()
	return m
}

// Grid returns an open square sheet in the z=0 plane spanning [0,size]²
// with n×n cells, facing +z.
func Grid(size float64, n int) *Mesh {
	n = max(n, 1)
	m := New("grid")
	step := size / float64(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			m.AddVertex(geom.Pt(float64(i)*step, float64(j)*step, 0))
		}
	}
	idx := func(i, j int) int { return j*(n+1) + i }
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			m.AddFace(idx(i, j), idx(i+1, j), idx(i+1, j+1))
			m.AddFace(idx(i, j), idx(i+1, j+1), idx(i, j+1))
		}
	}
	m.finish()
	return m
}

func (m *Mesh) finish() {
	m.EnsureMaterial()
	m.UpdateEdgeMate()
	m.UpdateBndBox()
	m.UpdateNormal(NormalFace)
}
