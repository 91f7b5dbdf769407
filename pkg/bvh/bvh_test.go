package bvh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func randomSoup(t *testing.T, r *rand.Rand, n int) *mesh.Mesh {
	t.Helper()
	pos := make([]float64, 0, n*9)
	idx := make([]int, 0, n*3)
	for i := 0; i < n; i++ {
		c := geom.Pt(r.Float64()*4-2, r.Float64()*4-2, r.Float64()*4-2)
		for k := 0; k < 3; k++ {
			pos = append(pos,
				c.X+r.Float64()*0.6-0.3,
				c.Y+r.Float64()*0.6-0.3,
				c.Z+r.Float64()*0.6-0.3)
			idx = append(idx, i*3+k)
		}
	}
	m, err := mesh.FromArrays("soup", pos, idx)
	require.NoError(t, err)
	m.UpdateEdgeMate()
	return m
}

func bruteForce(m *mesh.Mesh, p geom.Point3) float64 {
	best := math.Inf(1)
	for f := range m.Faces {
		tri := m.Triangle(f)
		if tri.Area() < minFaceArea {
			continue
		}
		d, err := geom.DistSqToTriangleOnly(p, tri)
		if err == nil && d < best {
			best = d
		}
	}
	return math.Sqrt(best)
}

func checkNode(t *testing.T, m *mesh.Mesh, n *Node) {
	t.Helper()
	if n.empty() {
		assert.True(t, n.Leaf)
		return
	}
	want := geom.EmptyBox()
	for _, f := range n.Faces {
		for _, v := range m.Faces[f].V {
			want.Extend(m.Vertices[v].Pos)
		}
	}
	assert.Equal(t, want, n.Box)
	assert.Equal(t, n.Depth >= MaxDepth || len(n.Faces) < MinFaces, n.Leaf)
	if n.Leaf {
		return
	}
	var union []int
	for _, c := range n.Children {
		require.NotNil(t, c)
		assert.Equal(t, n.Depth+1, c.Depth)
		union = append(union, c.Faces...)
		checkNode(t, m, c)
	}
	assert.ElementsMatch(t, n.Faces, union)
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestTreeInvariants(t *testing.T) {
	m := mesh.UVSphere(geom.Pt(0, 0, 0), 1, 32, 16)
	b, err := New(m)
	require.NoError(t, err)
	checkNode(t, m, b.Root)

	s := b.Stats()
	assert.Greater(t, s.Leaves, 1)
	assert.LessOrEqual(t, s.MaxDepth, MaxDepth)
	assert.False(t, b.OwnsMesh)
}

func TestSplitAxes(t *testing.T) {
	tests := []struct {
		size   geom.Vector3
		a0, a1 int
	}{
		{geom.Vec(1, 2, 3), 1, 2},
		{geom.Vec(2, 1, 3), 2, 0},
		{geom.Vec(2, 3, 1), 0, 1},
		{geom.Vec(1, 1, 1), 1, 2},
	}
	for _, tt := range tests {
		a0, a1 := splitAxes(tt.size)
		assert.Equal(t, [2]int{tt.a0, tt.a1}, [2]int{a0, a1}, "size %v", tt.size)
	}
}

func TestMalformedSplit(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	m := randomSoup(t, r, 10)
	nan := math.NaN()
	m.Vertices[0].Pos = geom.Pt(nan, nan, nan)
	_, err := New(m)
	assert.ErrorIs(t, err, ErrMalformedSplit)
}

func TestNewFromArrays(t *testing.T) {
	c := mesh.Cube(geom.Pt(0, 0, 0), 1)
	var pos []float64
	for _, v := range c.Vertices {
		pos = append(pos, v.Pos.X, v.Pos.Y, v.Pos.Z)
	}
	var idx []int
	for _, f := range c.Faces {
		idx = append(idx, f.V[:]...)
	}
	b, err := NewFromArrays(pos, idx)
	require.NoError(t, err)
	assert.True(t, b.OwnsMesh)
	assert.Len(t, b.Mesh.Normals, 12)
	assert.Empty(t, b.Mesh.BoundaryEdges())
}

func TestEmptyTree(t *testing.T) {
	b, err := New(mesh.New("empty"))
	require.NoError(t, err)
	_, err = b.ComputeDistance(geom.Pt(0, 0, 0), false)
	assert.ErrorIs(t, err, ErrNoFaces)
	assert.False(t, b.IsCloserThan(10, geom.Pt(0, 0, 0), false))
	assert.Nil(t, b.IntersectWithTri(geom.Tri(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), geom.Pt(0, 1, 0))))
}

// ---------------------------------------------------------------------------
// Nearest point
// ---------------------------------------------------------------------------

func TestCubeDistance(t *testing.T) {
	unit, err := New(mesh.Cube(geom.Pt(0, 0, 0), 1))
	require.NoError(t, err)

	r, err := unit.ComputeDistance(geom.Pt(0, 0, 2), false)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, r.Distance, 1e-6)
	assert.InDelta(t, 0.5, r.Point.Z, 1e-6)

	r, err = unit.ComputeDistance(geom.Pt(0, 0, 1.5), false)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Distance, 1e-6)

	r, err = unit.ComputeDistance(geom.Pt(0, 0, 0), true)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, r.Distance, 1e-6)

	two, err := New(mesh.Cube(geom.Pt(0, 0, 0), 2))
	require.NoError(t, err)
	r, err = two.ComputeDistance(geom.Pt(0, 0, 2), true)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Distance, 1e-6)
}

func TestSignedAtFeatures(t *testing.T) {
	b, err := New(mesh.Cube(geom.Pt(0, 0, 0), 2))
	require.NoError(t, err)

	tests := []struct {
		name string
		p    geom.Point3
		want float64
		kind geom.ClosestKind
	}{
		{"outside corner", geom.Pt(2, 2, 2), math.Sqrt(3), geom.ClosestVertex},
		{"outside edge", geom.Pt(2, 2, 0.3), math.Sqrt(2), geom.ClosestEdge},
		{"inside near face", geom.Pt(0.2, 0.1, 0.9), -0.1, geom.ClosestFace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := b.ComputeDistance(tt.p, true)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, r.Distance, 1e-9)
			assert.Equal(t, tt.kind, r.Closest.Kind)
		})
	}
}

func TestSignedOpenBoundary(t *testing.T) {
	b, err := New(mesh.Grid(1, 4))
	require.NoError(t, err)

	// Below a face touching the rim: never negative.
	r, err := b.ComputeDistance(geom.Pt(0.1, 0.05, -1), true)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Distance, 1e-9)

	// Below the interior: the normal faces +z so the point is behind it.
	r, err = b.ComputeDistance(geom.Pt(0.45, 0.55, -1), true)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r.Distance, 1e-9)
}

func TestComputeDistanceMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	m := randomSoup(t, r, 400)
	b, err := New(m)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		p := geom.Pt(r.Float64()*6-3, r.Float64()*6-3, r.Float64()*6-3)
		res, err := b.ComputeDistance(p, false)
		require.NoError(t, err)
		assert.InDelta(t, bruteForce(m, p), res.Distance, 1e-9, "point %v", p)
	}
}

func TestIsCloserThan(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	m := randomSoup(t, r, 200)
	b, err := New(m)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		p := geom.Pt(r.Float64()*6-3, r.Float64()*6-3, r.Float64()*6-3)
		d := bruteForce(m, p)
		assert.True(t, b.IsCloserThan(d*1.01+1e-9, p, false))
		assert.False(t, b.IsCloserThan(d*0.99, p, false))
	}
}

func TestIsCloserThanVertexOnly(t *testing.T) {
	b, err := New(mesh.Grid(10, 1))
	require.NoError(t, err)
	p := geom.Pt(5, 5, 0.1)
	assert.True(t, b.IsCloserThan(0.5, p, false))
	assert.False(t, b.IsCloserThan(0.5, p, true))
	assert.True(t, b.IsCloserThan(7.1, p, true))
}

// ---------------------------------------------------------------------------
// Triangle intersection
// ---------------------------------------------------------------------------

func TestIntersectWithTri(t *testing.T) {
	m := mesh.UVSphere(geom.Pt(0, 0, 0), 1, 24, 12)
	b, err := New(m)
	require.NoError(t, err)

	cut := geom.Tri(geom.Pt(-3, -3, 0.1), geom.Pt(3, -3, 0.1), geom.Pt(0, 4, 0.1))
	hits := b.IntersectWithTri(cut)
	require.NotEmpty(t, hits)

	var want []int
	for f := range m.Faces {
		if k, _ := geom.TriTriIntersect(m.Triangle(f), cut, geom.DefaultTriTriEps); k != geom.NoIntersection {
			want = append(want, f)
		}
	}
	got := make([]int, len(hits))
	for i, h := range hits {
		got[i] = h.Face
		assert.Equal(t, geom.Crossing, h.Kind)
		assert.InDelta(t, 0.1, h.Segment.P.Z, 1e-9)
	}
	assert.Equal(t, want, got)

	far := geom.Tri(geom.Pt(5, 5, 5), geom.Pt(6, 5, 5), geom.Pt(5, 6, 5))
	assert.Empty(t, b.IntersectWithTri(far))
}
