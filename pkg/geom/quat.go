package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Quat is a rotation quaternion, W being the scalar part.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat returns the quaternion of no rotation.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatAxisAngle returns the rotation by angle radians about axis.
func QuatAxisAngle(axis Vector3, angle float64) (Quat, error) {
	a, err := axis.Normalize()
	if err != nil {
		return Quat{}, err
	}
	s, c := math.Sincos(angle / 2)
	return Quat{W: c, X: a.X * s, Y: a.Y * s, Z: a.Z * s}, nil
}

// QuatEuler returns the rotation by x, then y, then z radians about the
// fixed world axes.
func QuatEuler(x, y, z float64) Quat {
	qx, _ := QuatAxisAngle(Vec(1, 0, 0), x)
	qy, _ := QuatAxisAngle(Vec(0, 1, 0), y)
	qz, _ := QuatAxisAngle(Vec(0, 0, 1), z)
	return qz.Mul(qy).Mul(qx)
}

// Mul returns the rotation q applied after o.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

func (q Quat) Dot(o Quat) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

func (q Quat) Length() float64 {
	return math.Sqrt(q.Dot(q))
}

// Normalize returns the unit quaternion, or the identity for a zero one.
func (q Quat) Normalize() Quat {
	l := q.Length()
	if l < ZeroEps {
		return IdentityQuat()
	}
	return Quat{q.W / l, q.X / l, q.Y / l, q.Z / l}
}

// Conj returns the inverse rotation of a unit quaternion.
func (q Quat) Conj() Quat {
	return Quat{q.W, -q.X, -q.Y, -q.Z}
}

// AxisAngle decomposes a unit quaternion. The axis is zero when the
// rotation angle is zero.
func (q Quat) AxisAngle() (Vector3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = Quat{-q.W, -q.X, -q.Y, -q.Z}
	}
	s := math.Sqrt(math.Max(0, 1-q.W*q.W))
	angle := 2 * math.Acos(math.Min(1, q.W))
	if s < ZeroEps {
		return Vector3{}, 0
	}
	return Vec(q.X/s, q.Y/s, q.Z/s), angle
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vector3) Vector3 {
	u := Vec(q.X, q.Y, q.Z)
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// M44 returns the rotation as an sdfx transform.
func (q Quat) M44() sdf.M44 {
	axis, angle := q.AxisAngle()
	if angle == 0 {
		return sdf.Identity3d()
	}
	return sdf.Rotate3d(axis.V3(), angle)
}

// Slerp interpolates along the shortest arc between two unit
// quaternions. Nearly parallel inputs fall back to a normalized lerp.
func Slerp(a, b Quat, t float64) Quat {
	d := a.Dot(b)
	if d < 0 {
		b = Quat{-b.W, -b.X, -b.Y, -b.Z}
		d = -d
	}
	if d > 1-Eps {
		return Quat{
			a.W + (b.W-a.W)*t,
			a.X + (b.X-a.X)*t,
			a.Y + (b.Y-a.Y)*t,
			a.Z + (b.Z-a.Z)*t,
		}.Normalize()
	}
	theta := math.Acos(d)
	sa := math.Sin((1-t)*theta) / math.Sin(theta)
	sb := math.Sin(t*theta) / math.Sin(theta)
	return Quat{
		a.W*sa + b.W*sb,
		a.X*sa + b.X*sb,
		a.Y*sa + b.Y*sb,
		a.Z*sa + b.Z*sb,
	}
}
