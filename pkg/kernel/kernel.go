// Package kernel defines the abstract geometry kernel interface.
// Implementations turn catalogue shapes and sampled volumes into solids,
// combine and place them, and extract render meshes. The kernel
// abstraction allows swapping backends without changing the rest of the
// system.
package kernel

import (
	"math"

	"github.com/chazu/sdfkit/pkg/volume"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Shape(name string, params []float64) (Solid, error)
	Volume(v *volume.Volume) Solid // the grid in its own frame

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, axis [3]float64, degrees float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Place applies a volume's rotation and then its position to s.
func Place(k Kernel, s Solid, v *volume.Volume) Solid {
	if axis, angle := v.Rotation.AxisAngle(); angle != 0 {
		s = k.Rotate(s, [3]float64{axis.X, axis.Y, axis.Z}, angle*180/math.Pi)
	}
	p := v.Position
	if p.X != 0 || p.Y != 0 || p.Z != 0 {
		s = k.Translate(s, p.X, p.Y, p.Z)
	}
	return s
}
