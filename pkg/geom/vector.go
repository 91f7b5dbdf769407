// Package geom provides the point, vector, box and triangle value types
// shared by the mesh, BVH and volume packages, together with the
// primitive distance and intersection tests built on them.
package geom

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Eps is the tolerance used for point equality and ordering.
const Eps = 1e-6

// ZeroEps is the magnitude below which a vector is treated as zero.
const ZeroEps = 1e-9

// ErrZeroVector is returned when a zero-length vector would be normalized
// or divided by.
var ErrZeroVector = errors.New("geom: zero-length vector")

// ErrDegenerate is returned for triangles with no usable area or plane.
var ErrDegenerate = errors.New("geom: degenerate triangle")

// Vector3 is a displacement or direction in 3D space.
type Vector3 struct {
	X, Y, Z float64
}

// Point3 is a position in 3D space.
type Point3 struct {
	X, Y, Z float64
}

// Vec returns a vector with the given components.
func Vec(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Pt returns a point with the given coordinates.
func Pt(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// ---------------------------------------------------------------------------
// Vector3
// ---------------------------------------------------------------------------

// Add returns the sum of two vectors.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the difference of two vectors.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale multiplies the vector by a scalar.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns the opposite vector.
func (v Vector3) Neg() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// LengthSq returns the squared magnitude.
func (v Vector3) LengthSq() float64 {
	return v.Dot(v)
}

// Length returns the magnitude.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// IsZero reports whether the vector's magnitude is below ZeroEps.
func (v Vector3) IsZero() bool {
	return v.Length() < ZeroEps
}

// Normalize returns the unit vector in the same direction.
func (v Vector3) Normalize() (Vector3, error) {
	l := v.Length()
	if l < ZeroEps {
		return Vector3{}, ErrZeroVector
	}
	return v.Scale(1 / l), nil
}

// NormalizeOrZero is Normalize with the zero vector passed through.
func (v Vector3) NormalizeOrZero() Vector3 {
	n, err := v.Normalize()
	if err != nil {
		return Vector3{}
	}
	return n
}

// Project returns the component of v along onto.
func (v Vector3) Project(onto Vector3) (Vector3, error) {
	d := onto.LengthSq()
	if d < ZeroEps*ZeroEps {
		return Vector3{}, ErrZeroVector
	}
	return onto.Scale(v.Dot(onto) / d), nil
}

// Angle returns the angle between v and o in radians.
func (v Vector3) Angle(o Vector3) (float64, error) {
	l := v.Length() * o.Length()
	if l < ZeroEps {
		return 0, ErrZeroVector
	}
	c := v.Dot(o) / l
	return math.Acos(math.Max(-1, math.Min(1, c))), nil
}

// Equal compares two vectors component-wise within Eps.
func (v Vector3) Equal(o Vector3) bool {
	return math.Abs(v.X-o.X) < Eps && math.Abs(v.Y-o.Y) < Eps && math.Abs(v.Z-o.Z) < Eps
}

// Axis returns the component along axis 0, 1 or 2.
func (v Vector3) Axis(a int) float64 {
	switch a {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// MaxComponent returns the largest component.
func (v Vector3) MaxComponent() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// V3 converts to the sdfx vector type.
func (v Vector3) V3() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// ---------------------------------------------------------------------------
// Point3
// ---------------------------------------------------------------------------

// Add offsets the point by a vector.
func (p Point3) Add(v Vector3) Point3 {
	return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Sub returns the vector from q to p.
func (p Point3) Sub(q Point3) Vector3 {
	return Vector3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Offset moves the point back along a vector.
func (p Point3) Offset(v Vector3) Point3 {
	return Point3{p.X - v.X, p.Y - v.Y, p.Z - v.Z}
}

// DistSq returns the squared distance between two points.
func (p Point3) DistSq(q Point3) float64 {
	return p.Sub(q).LengthSq()
}

// Dist returns the distance between two points.
func (p Point3) Dist(q Point3) float64 {
	return math.Sqrt(p.DistSq(q))
}

// Lerp interpolates linearly from p towards q.
func (p Point3) Lerp(q Point3, t float64) Point3 {
	return p.Add(q.Sub(p).Scale(t))
}

// Vector returns the position vector of the point.
func (p Point3) Vector() Vector3 {
	return Vector3{p.X, p.Y, p.Z}
}

// Axis returns the coordinate along axis 0, 1 or 2.
func (p Point3) Axis(a int) float64 {
	switch a {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

// Equal compares two points within Eps.
func (p Point3) Equal(q Point3) bool {
	return p.Vector().Equal(q.Vector())
}

// Less orders points lexicographically, treating coordinates within Eps as equal.
func (p Point3) Less(q Point3) bool {
	if math.Abs(p.X-q.X) >= Eps {
		return p.X < q.X
	}
	if math.Abs(p.Y-q.Y) >= Eps {
		return p.Y < q.Y
	}
	if math.Abs(p.Z-q.Z) >= Eps {
		return p.Z < q.Z
	}
	return false
}

// Min returns the component-wise minimum.
func (p Point3) Min(q Point3) Point3 {
	return Point3{math.Min(p.X, q.X), math.Min(p.Y, q.Y), math.Min(p.Z, q.Z)}
}

// Max returns the component-wise maximum.
func (p Point3) Max(q Point3) Point3 {
	return Point3{math.Max(p.X, q.X), math.Max(p.Y, q.Y), math.Max(p.Z, q.Z)}
}

// V3 converts to the sdfx vector type.
func (p Point3) V3() v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// FromV3 converts an sdfx vector to a point.
func FromV3(v v3.Vec) Point3 {
	return Point3{v.X, v.Y, v.Z}
}

// VectorFromV3 converts an sdfx vector to a Vector3.
func VectorFromV3(v v3.Vec) Vector3 {
	return Vector3{v.X, v.Y, v.Z}
}
