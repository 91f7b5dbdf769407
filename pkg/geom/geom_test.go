package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Vector and point arithmetic
// ---------------------------------------------------------------------------

func TestVectorBasics(t *testing.T) {
	a := Vec(1, 2, 3)
	b := Vec(4, 5, 6)

	assert.Equal(t, Vec(5, 7, 9), a.Add(b))
	assert.Equal(t, Vec(-3, -3, -3), a.Sub(b))
	assert.InDelta(t, 32.0, a.Dot(b), 1e-12)
	assert.Equal(t, Vec(-3, 6, -3), a.Cross(b))
	assert.InDelta(t, math.Sqrt(14), a.Length(), 1e-12)
}

func TestNormalizeZero(t *testing.T) {
	_, err := Vec(0, 0, 0).Normalize()
	require.ErrorIs(t, err, ErrZeroVector)
	assert.Equal(t, Vector3{}, Vec(0, 0, 0).NormalizeOrZero())

	n, err := Vec(3, 0, 4).Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, n.Length(), 1e-12)
}

func TestProjectAndAngle(t *testing.T) {
	p, err := Vec(2, 3, 0).Project(Vec(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, Vec(2, 0, 0), p)

	_, err = Vec(1, 1, 1).Project(Vec(0, 0, 0))
	assert.ErrorIs(t, err, ErrZeroVector)

	ang, err := Vec(1, 0, 0).Angle(Vec(0, 1, 0))
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, ang, 1e-12)
}

func TestPointEpsilonCompare(t *testing.T) {
	p := Pt(1, 2, 3)
	q := Pt(1+1e-8, 2, 3-1e-8)
	assert.True(t, p.Equal(q))
	assert.False(t, p.Less(q))
	assert.False(t, q.Less(p))
	assert.True(t, p.Less(Pt(1, 2.1, 0)))
	assert.Equal(t, Vec(1, 1, 1), Pt(2, 3, 4).Sub(Pt(1, 2, 3)))
}

// ---------------------------------------------------------------------------
// Box
// ---------------------------------------------------------------------------

func TestBoxLowerBound(t *testing.T) {
	b := Box{Min: Pt(-1, -1, -1), Max: Pt(1, 1, 1)}

	assert.Zero(t, b.SqDistLowerBound(Pt(0.5, 0, -0.5)))
	assert.InDelta(t, 4.0, b.SqDistLowerBound(Pt(0, 0, 3)), 1e-12)
	assert.InDelta(t, 3.0, b.SqDistLowerBound(Pt(2, 2, 2)), 1e-12)
}

func TestBoxPadIsPerAxis(t *testing.T) {
	b := Box{Min: Pt(0, 0, 0), Max: Pt(10, 2, 1)}.Pad(0.1)
	assert.InDelta(t, -1.0, b.Min.X, 1e-12)
	assert.InDelta(t, -0.2, b.Min.Y, 1e-12)
	assert.InDelta(t, 1.1, b.Max.Z, 1e-12)
}

func TestEmptyBox(t *testing.T) {
	b := EmptyBox()
	assert.True(t, b.IsEmpty())
	b.Extend(Pt(1, 2, 3))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, Pt(1, 2, 3), b.Min)

	disjoint := Box{Min: Pt(0, 0, 0), Max: Pt(1, 1, 1)}.Intersect(Box{Min: Pt(2, 2, 2), Max: Pt(3, 3, 3)})
	assert.True(t, disjoint.IsEmpty())
}

// ---------------------------------------------------------------------------
// Point to triangle distance
// ---------------------------------------------------------------------------

var unitTri = Tri(Pt(0, 0, 0), Pt(1, 0, 0), Pt(0, 1, 0))

func TestDistSqToTriangleCases(t *testing.T) {
	tests := []struct {
		name  string
		q     Point3
		dist2 float64
		kind  ClosestKind
		index int
	}{
		{"above face", Pt(0.25, 0.25, 2), 4, ClosestFace, -1},
		{"below face", Pt(0.25, 0.25, -1), 1, ClosestFace, -1},
		{"past vertex 0", Pt(-1, -1, 0), 2, ClosestVertex, 0},
		{"past vertex 1", Pt(2, -1, 0), 2, ClosestVertex, 1},
		{"past vertex 2", Pt(-1, 2, 0), 2, ClosestVertex, 2},
		{"on vertex 0", Pt(0, 0, 0), 0, ClosestVertex, 0},
		{"outside edge 01", Pt(0.5, -2, 0), 4, ClosestEdge, 0},
		{"outside edge 12", Pt(1, 1, 0), 0.5, ClosestEdge, 1},
		{"outside edge 20", Pt(-3, 0.5, 1), 10, ClosestEdge, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DistSqToTriangle(tt.q, unitTri)
			require.NoError(t, err)
			assert.InDelta(t, tt.dist2, r.DistSq, 1e-9)
			assert.Equal(t, tt.kind, r.Closest.Kind)
			assert.Equal(t, tt.index, r.Closest.Index)
		})
	}
}

func TestDistSqToTriangleDegenerate(t *testing.T) {
	_, err := DistSqToTriangle(Pt(0, 0, 1), Tri(Pt(0, 0, 0), Pt(0, 0, 0), Pt(1, 0, 0)))
	assert.ErrorIs(t, err, ErrDegenerate)
}

// closestPtReference is the textbook region walk used to cross-check
// DistSqToTriangle.
func closestPtReference(p Point3, t Triangle) Point3 {
	a, b, c := t[0], t[1], t[2]
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}
	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Scale(d1 / (d1 - d3)))
	}
	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Scale(d2 / (d2 - d6)))
	}
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).Scale((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}
	den := 1 / (va + vb + vc)
	return a.Add(ab.Scale(vb * den)).Add(ac.Scale(vc * den))
}

func randPt(r *rand.Rand, s float64) Point3 {
	return Pt((r.Float64()*2-1)*s, (r.Float64()*2-1)*s, (r.Float64()*2-1)*s)
}

func TestDistSqToTriangleRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		tri := Tri(randPt(r, 1), randPt(r, 1), randPt(r, 1))
		if tri.Area() < 1e-3 {
			continue
		}
		q := randPt(r, 3)

		res, err := DistSqToTriangle(q, tri)
		require.NoError(t, err)

		// The returned point must be consistent with the distance.
		assert.InDelta(t, q.DistSq(res.Point), res.DistSq, 1e-9)

		// The returned point must lie on the triangle.
		u, v, w, err := tri.Barycentric(res.Point)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, u+v+w, 1e-9)
		assert.GreaterOrEqual(t, u, -1e-6)
		assert.GreaterOrEqual(t, v, -1e-6)
		assert.GreaterOrEqual(t, w, -1e-6)

		ref := closestPtReference(q, tri)
		assert.InDelta(t, q.DistSq(ref), res.DistSq, 1e-9, "iteration %d", i)
	}
}

func TestDistSqToVertices(t *testing.T) {
	d := DistSqToVertices(Pt(0.25, 0.25, 0), unitTri)
	assert.InDelta(t, 0.125, d, 1e-12)

	f, err := DistSqToTriangleOnly(Pt(0.25, 0.25, 0), unitTri)
	require.NoError(t, err)
	assert.Zero(t, f)
}

// ---------------------------------------------------------------------------
// Triangle vs box
// ---------------------------------------------------------------------------

func TestTriBoxOverlap(t *testing.T) {
	center := Pt(0, 0, 0)
	half := Vec(1, 1, 1)

	tests := []struct {
		name string
		tri  Triangle
		want bool
	}{
		{"inside", Tri(Pt(-0.5, -0.5, 0), Pt(0.5, -0.5, 0), Pt(0, 0.5, 0)), true},
		{"enclosing", Tri(Pt(-10, -10, 0), Pt(10, -10, 0), Pt(0, 10, 0)), true},
		{"crossing face", Tri(Pt(0.5, 0, 0), Pt(3, 0, 0), Pt(3, 1, 0)), true},
		{"outside along x", Tri(Pt(2, -1, -1), Pt(3, 1, 0), Pt(2.5, 0, 1)), false},
		{"off the corner", Tri(Pt(3.1, 0, 0), Pt(0, 3.1, 0), Pt(0, 0, 3.1)), false},
		{"cuts the corner", Tri(Pt(2.9, 0, 0), Pt(0, 2.9, 0), Pt(0, 0, 2.9)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TriBoxOverlap(tt.tri, center, half))
		})
	}
}

func TestTriBoxRejectsBeforePlane(t *testing.T) {
	tri := Tri(Pt(1.5, -5, -5), Pt(4, 5, 0), Pt(2, 0, 5))
	stage := triBoxSeparation(tri, Pt(0, 0, 0), Vec(1, 1, 1))
	assert.NotEqual(t, satOverlap, stage)
	assert.NotEqual(t, satPlane, stage)
}

// ---------------------------------------------------------------------------
// Triangle vs triangle
// ---------------------------------------------------------------------------

func TestTriTriIntersect(t *testing.T) {
	a := Tri(Pt(0, 0, 0), Pt(2, 0, 0), Pt(0, 2, 0))

	t.Run("crossing", func(t *testing.T) {
		b := Tri(Pt(0.25, 0.5, -1), Pt(0.25, 0.5, 1), Pt(1, 0.5, 1))
		res, seg := TriTriIntersect(a, b, DefaultTriTriEps)
		require.Equal(t, Crossing, res)
		lo := math.Min(seg.P.X, seg.Q.X)
		hi := math.Max(seg.P.X, seg.Q.X)
		assert.InDelta(t, 0.25, lo, 1e-9)
		assert.InDelta(t, 0.625, hi, 1e-9)
		assert.InDelta(t, 0.5, seg.P.Y, 1e-9)
		assert.InDelta(t, 0.0, seg.P.Z, 1e-9)
	})

	t.Run("separated above", func(t *testing.T) {
		b := Tri(Pt(0, 0, 1), Pt(1, 0, 2), Pt(0, 1, 1.5))
		res, _ := TriTriIntersect(a, b, DefaultTriTriEps)
		assert.Equal(t, NoIntersection, res)
	})

	t.Run("plane crossing outside", func(t *testing.T) {
		b := Tri(Pt(5, 5, -1), Pt(5, 5, 1), Pt(6, 5, 1))
		res, _ := TriTriIntersect(a, b, DefaultTriTriEps)
		assert.Equal(t, NoIntersection, res)
	})

	t.Run("coplanar overlapping", func(t *testing.T) {
		b := Tri(Pt(1, 1, 0), Pt(3, 1, 0), Pt(1, 3, 0))
		res, _ := TriTriIntersect(a, b, DefaultTriTriEps)
		assert.Equal(t, Coplanar, res)
	})

	t.Run("coplanar contained", func(t *testing.T) {
		b := Tri(Pt(0.1, 0.1, 0), Pt(0.3, 0.1, 0), Pt(0.1, 0.3, 0))
		res, _ := TriTriIntersect(a, b, DefaultTriTriEps)
		assert.Equal(t, Coplanar, res)
	})

	t.Run("coplanar disjoint", func(t *testing.T) {
		b := Tri(Pt(10, 10, 0), Pt(11, 10, 0), Pt(10, 11, 0))
		res, _ := TriTriIntersect(a, b, DefaultTriTriEps)
		assert.Equal(t, NoIntersection, res)
	})

	t.Run("single vertex touching", func(t *testing.T) {
		b := Tri(Pt(0.5, 0.5, 0), Pt(0.5, 0.5, 1), Pt(1, 0.5, 1))
		res, _ := TriTriIntersect(a, b, DefaultTriTriEps)
		assert.Equal(t, NoIntersection, res)
	})

	t.Run("vertex on plane with crossing edge", func(t *testing.T) {
		b := Tri(Pt(0.5, 0.5, 0), Pt(0.5, 0.5, 1), Pt(1, 0.5, -1))
		res, seg := TriTriIntersect(a, b, DefaultTriTriEps)
		require.Equal(t, Crossing, res)
		assert.True(t, seg.P.Equal(Pt(0.5, 0.5, 0)))
		assert.True(t, seg.Q.Equal(Pt(0.75, 0.5, 0)))
	})
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(Pt(0, 0, 0), Pt(2, 2, 0), Pt(0, 2, 0), Pt(2, 0, 0), 1e-9))
	assert.False(t, SegmentsIntersect(Pt(0, 0, 0), Pt(1, 0, 0), Pt(0, 1, 0), Pt(1, 1, 0), 1e-9))
	assert.True(t, SegmentsIntersect(Pt(0, 0, 0), Pt(1, 0, 0), Pt(1, 0, 0), Pt(1, 1, 0), 1e-9))
}

// ---------------------------------------------------------------------------
// Quaternions
// ---------------------------------------------------------------------------

func TestQuatRotate(t *testing.T) {
	q, err := QuatAxisAngle(Vec(0, 0, 2), math.Pi/2)
	require.NoError(t, err)
	assert.True(t, q.Rotate(Vec(1, 0, 0)).Equal(Vec(0, 1, 0)))

	// The sdfx matrix agrees with the quaternion.
	p := q.M44().MulPosition(Pt(1, 2, 3).V3())
	assert.True(t, FromV3(p).Equal(Pt(-2, 1, 3)))

	assert.Equal(t, IdentityQuat(), QuatEuler(0, 0, 0))
	assert.True(t, FromV3(IdentityQuat().M44().MulPosition(Pt(1, 2, 3).V3())).Equal(Pt(1, 2, 3)))

	_, err = QuatAxisAngle(Vector3{}, 1)
	assert.ErrorIs(t, err, ErrZeroVector)
}

func TestQuatAxisAngle(t *testing.T) {
	q, err := QuatAxisAngle(Vec(1, 1, 0), 0.7)
	require.NoError(t, err)
	axis, angle := q.AxisAngle()
	assert.InDelta(t, 0.7, angle, 1e-12)
	assert.True(t, axis.Equal(Vec(1, 1, 0).NormalizeOrZero()))

	// The negated quaternion is the same rotation.
	_, angle = Quat{-q.W, -q.X, -q.Y, -q.Z}.AxisAngle()
	assert.InDelta(t, 0.7, angle, 1e-12)
}

func TestSlerp(t *testing.T) {
	a := IdentityQuat()
	b, _ := QuatAxisAngle(Vec(0, 0, 1), math.Pi/2)

	mid := Slerp(a, b, 0.5)
	_, angle := mid.AxisAngle()
	assert.InDelta(t, math.Pi/4, angle, 1e-12)
	assert.InDelta(t, 1.0, mid.Length(), 1e-12)

	assert.InDelta(t, 1.0, Slerp(a, b, 0).Dot(a), 1e-12)
	assert.InDelta(t, 1.0, Slerp(a, b, 1).Dot(b), 1e-12)
	assert.InDelta(t, 1.0, Slerp(a, a, 0.3).Dot(a), 1e-12)
}
