package geom

import "math"

// satStage names the separating-axis group that rejected a triangle.
type satStage int

const (
	satOverlap satStage = iota
	satEdgeCross
	satBoxFace
	satPlane
)

// TriBoxOverlap reports whether triangle t intersects the axis-aligned box
// with the given center and half extents. It tests the 13 separating axes
// of the pair: nine edge/axis cross products, the three box normals and
// finally the triangle's plane.
func TriBoxOverlap(t Triangle, center Point3, half Vector3) bool {
	return triBoxSeparation(t, center, half) == satOverlap
}

// TriBoxOverlapBox is TriBoxOverlap for a Box value.
func TriBoxOverlapBox(t Triangle, b Box) bool {
	return TriBoxOverlap(t, b.Center(), b.HalfSize())
}

func triBoxSeparation(t Triangle, center Point3, half Vector3) satStage {
	v0 := t[0].Sub(center)
	v1 := t[1].Sub(center)
	v2 := t[2].Sub(center)

	f0 := v1.Sub(v0)
	f1 := v2.Sub(v1)
	f2 := v0.Sub(v2)

	for _, f := range [3]Vector3{f0, f1, f2} {
		axes := [3]Vector3{
			{0, -f.Z, f.Y},
			{f.Z, 0, -f.X},
			{-f.Y, f.X, 0},
		}
		for _, a := range axes {
			if separated(a, v0, v1, v2, half) {
				return satEdgeCross
			}
		}
	}

	for q := 0; q < 3; q++ {
		lo := math.Min(v0.Axis(q), math.Min(v1.Axis(q), v2.Axis(q)))
		hi := math.Max(v0.Axis(q), math.Max(v1.Axis(q), v2.Axis(q)))
		if lo > half.Axis(q) || hi < -half.Axis(q) {
			return satBoxFace
		}
	}

	if !planeBoxOverlap(f0.Cross(f1), v0, half) {
		return satPlane
	}
	return satOverlap
}

// separated projects the triangle and box onto axis and reports a gap.
// Zero axes, from parallel edges, never separate.
func separated(axis, v0, v1, v2, half Vector3) bool {
	if axis.LengthSq() < ZeroEps*ZeroEps {
		return false
	}
	p0 := v0.Dot(axis)
	p1 := v1.Dot(axis)
	p2 := v2.Dot(axis)
	lo := math.Min(p0, math.Min(p1, p2))
	hi := math.Max(p0, math.Max(p1, p2))
	r := math.Abs(half.X*axis.X) + math.Abs(half.Y*axis.Y) + math.Abs(half.Z*axis.Z)
	return lo > r || hi < -r
}

// planeBoxOverlap tests the plane through v with normal n against a box
// centered at the origin.
func planeBoxOverlap(n, v, half Vector3) bool {
	var vmin, vmax Vector3
	for q := 0; q < 3; q++ {
		h, x := half.Axis(q), v.Axis(q)
		lo, hi := -h-x, h-x
		if n.Axis(q) <= 0 {
			lo, hi = hi, lo
		}
		setAxis(&vmin, q, lo)
		setAxis(&vmax, q, hi)
	}
	if n.Dot(vmin) > 0 {
		return false
	}
	return n.Dot(vmax) >= 0
}

func setAxis(v *Vector3, a int, x float64) {
	switch a {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
}
