// Package volume stores signed distance fields sampled on regular grids.
//
// A Volume holds its samples in a flat []float32 in x + y*dimX +
// z*dimX*dimY order, the grid's local min and max corners, and a model
// transform (position and rotation) placing the grid in the world. Grids
// are filled from a mesh through the BVH's signed distance query, from any
// sdfx shape, or by the boolean and sweep packages through Fill.
package volume

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/logging"
	"github.com/chazu/sdfkit/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
)

var log = logging.NamedLogger("volume")

// ErrBadDim is returned when a grid axis has fewer than two samples.
var ErrBadDim = errors.New("volume: every grid dimension must be at least 2")

// ErrNoMesh is returned when a mesh-backed operation has no usable mesh.
var ErrNoMesh = errors.New("volume: no source mesh")

// Volume is a signed distance field sampled on a regular grid.
type Volume struct {
	ID   uuid.UUID
	Name string

	// Mesh is the surface the field was computed from. Volumes produced by
	// boolean combination or sweeping have none.
	Mesh *mesh.Mesh

	Dim      [3]int
	Min, Max geom.Point3
	Spacing  [3]float64
	Data     []float32

	Position geom.Point3
	Rotation geom.Quat
	Selected bool

	// Workers bounds the goroutines used to fill the grid. Zero means
	// GOMAXPROCS.
	Workers int
}

// New returns a volume with a zeroed dim[0]×dim[1]×dim[2] grid spanning
// the unit cube.
func New(name string, dim [3]int) (*Volume, error) {
	for a, d := range dim {
		if d < 2 {
			return nil, fmt.Errorf("%w: axis %d has %d", ErrBadDim, a, d)
		}
	}
	v := &Volume{
		ID:       uuid.New(),
		Name:     name,
		Dim:      dim,
		Data:     make([]float32, dim[0]*dim[1]*dim[2]),
		Rotation: geom.IdentityQuat(),
	}
	v.SetBounds(geom.Box{Max: geom.Pt(1, 1, 1)})
	return v, nil
}

// Cubic returns New(name, [3]int{n, n, n}).
func Cubic(name string, n int) (*Volume, error) {
	return New(name, [3]int{n, n, n})
}

// FromMesh returns a volume whose grid encloses m padded by padding, ready
// for ComputeSDF.
func FromMesh(name string, m *mesh.Mesh, dim [3]int, padding float64) (*Volume, error) {
	v, err := New(name, dim)
	if err != nil {
		return nil, err
	}
	if err := v.SetGridSpace(m, padding); err != nil {
		return nil, err
	}
	return v, nil
}

// SetGridSpace fits the grid to the vertex bounds of m. Each axis is
// padded by padding times its own extent.
func (v *Volume) SetGridSpace(m *mesh.Mesh, padding float64) error {
	if m == nil || len(m.Vertices) == 0 {
		return ErrNoMesh
	}
	for a, d := range v.Dim {
		if d < 2 {
			return fmt.Errorf("%w: axis %d has %d", ErrBadDim, a, d)
		}
	}
	b := geom.EmptyBox()
	for i := range m.Vertices {
		b.Extend(m.Vertices[i].Pos)
	}
	v.Mesh = m
	v.SetBounds(b.Pad(padding))
	return nil
}

// SetBounds places the grid corners at b and derives the spacing.
func (v *Volume) SetBounds(b geom.Box) {
	v.Min, v.Max = b.Min, b.Max
	size := b.Size()
	for a := 0; a < 3; a++ {
		v.Spacing[a] = size.Axis(a) / float64(v.Dim[a]-1)
	}
}

// ---------------------------------------------------------------------------
// Grid addressing
// ---------------------------------------------------------------------------

// Len returns the number of samples.
func (v *Volume) Len() int {
	return v.Dim[0] * v.Dim[1] * v.Dim[2]
}

// Index returns the position of sample (i, j, k) in Data.
func (v *Volume) Index(i, j, k int) int {
	return i + j*v.Dim[0] + k*v.Dim[0]*v.Dim[1]
}

// Cell is the inverse of Index.
func (v *Volume) Cell(idx int) (i, j, k int) {
	plane := v.Dim[0] * v.Dim[1]
	k = idx / plane
	idx -= k * plane
	j = idx / v.Dim[0]
	i = idx - j*v.Dim[0]
	return i, j, k
}

func (v *Volume) At(i, j, k int) float32 {
	return v.Data[v.Index(i, j, k)]
}

func (v *Volume) Set(i, j, k int, d float32) {
	v.Data[v.Index(i, j, k)] = d
}

// CellPos returns the local position of sample (i, j, k).
func (v *Volume) CellPos(i, j, k int) geom.Point3 {
	return geom.Pt(
		v.Min.X+float64(i)*v.Spacing[0],
		v.Min.Y+float64(j)*v.Spacing[1],
		v.Min.Z+float64(k)*v.Spacing[2],
	)
}

// ---------------------------------------------------------------------------
// Placement
// ---------------------------------------------------------------------------

// Model returns the local-to-world transform: translation after rotation.
func (v *Volume) Model() sdf.M44 {
	return sdf.Translate3d(v.Position.V3()).Mul(v.Rotation.M44())
}

// InvModel returns the world-to-local transform.
func (v *Volume) InvModel() sdf.M44 {
	return v.Model().Inverse()
}

// LocalBox returns the grid corners in the volume's own frame.
func (v *Volume) LocalBox() geom.Box {
	return geom.Box{Min: v.Min, Max: v.Max}
}

// WorldBox returns the world bound of all eight transformed grid corners.
func (v *Volume) WorldBox() geom.Box {
	m := v.Model()
	b := geom.EmptyBox()
	for _, c := range v.LocalBox().Corners() {
		b.Extend(geom.FromV3(m.MulPosition(c.V3())))
	}
	return b
}

// Translate moves the volume by d.
func (v *Volume) Translate(d geom.Vector3) {
	v.Position = v.Position.Add(d)
}

// Rotate applies q after the current rotation.
func (v *Volume) Rotate(q geom.Quat) {
	v.Rotation = q.Mul(v.Rotation).Normalize()
}

// Clone returns a copy of the volume with its own sample slice and a new
// ID. The source mesh is shared.
func (v *Volume) Clone(name string) *Volume {
	c := *v
	c.ID = uuid.New()
	c.Name = name
	c.Data = append([]float32(nil), v.Data...)
	return &c
}

func (v *Volume) String() string {
	return fmt.Sprintf("%s[%dx%dx%d]", v.Name, v.Dim[0], v.Dim[1], v.Dim[2])
}
