package volume

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrUnknownShape is returned by Shape for names not in the catalogue.
var ErrUnknownShape = errors.New("volume: unknown shape")

// ErrShapeParams is returned by Shape for a bad parameter list.
var ErrShapeParams = errors.New("volume: bad shape parameters")

type shapeSpec struct {
	min, max int
	make     func(p []float64) (sdf.SDF3, error)
}

// opt returns p[i], or def when the list is shorter.
func opt(p []float64, i int, def float64) float64 {
	if i < len(p) {
		return p[i]
	}
	return def
}

// positive rejects sizes sdfx would accept but render inside out.
func positive(p ...float64) error {
	for _, x := range p {
		if !(x > 0) {
			return fmt.Errorf("size %g must be positive", x)
		}
	}
	return nil
}

var shapes = map[string]shapeSpec{
	// radius
	"sphere": {1, 1, func(p []float64) (sdf.SDF3, error) {
		return sdf.Sphere3D(p[0])
	}},
	// size x y z, optional corner radius
	"box": {3, 4, func(p []float64) (sdf.SDF3, error) {
		if err := positive(p[:3]...); err != nil {
			return nil, err
		}
		return sdf.Box3D(v3.Vec{X: p[0], Y: p[1], Z: p[2]}, opt(p, 3, 0))
	}},
	// height, radius, optional edge radius
	"cylinder": {2, 3, func(p []float64) (sdf.SDF3, error) {
		if err := positive(p[:2]...); err != nil {
			return nil, err
		}
		return sdf.Cylinder3D(p[0], p[1], opt(p, 2, 0))
	}},
	// height, base radius, top radius, optional edge radius
	"cone": {3, 4, func(p []float64) (sdf.SDF3, error) {
		return sdf.Cone3D(p[0], p[1], p[2], opt(p, 3, 0))
	}},
	// height, radius
	"capsule": {2, 2, func(p []float64) (sdf.SDF3, error) {
		return sdf.Capsule3D(p[0], p[1])
	}},
	// major radius, minor radius
	"torus": {2, 2, func(p []float64) (sdf.SDF3, error) {
		return NewTorus(p[0], p[1])
	}},
	// size x y z, bar thickness
	"box-frame": {4, 4, func(p []float64) (sdf.SDF3, error) {
		return NewBoxFrame(v3.Vec{X: p[0], Y: p[1], Z: p[2]}, p[3])
	}},
	// half length, ring radius, tube radius
	"link": {3, 3, func(p []float64) (sdf.SDF3, error) {
		return NewLink(p[0], p[1], p[2])
	}},
}

// Shape builds a catalogue shape from its name and parameters. Every
// shape is centred on the origin.
func Shape(name string, params []float64) (sdf.SDF3, error) {
	sh, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	if len(params) < sh.min || len(params) > sh.max {
		return nil, fmt.Errorf("%w: %s takes %d to %d values, got %d", ErrShapeParams, name, sh.min, sh.max, len(params))
	}
	s, err := sh.make(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShapeParams, name, err)
	}
	return s, nil
}

// ShapeNames lists the catalogue.
func ShapeNames() []string {
	names := make([]string, 0, len(shapes))
	for n := range shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Shapes sdfx lacks
// ---------------------------------------------------------------------------

// Torus is a ring around the y axis.
type Torus struct {
	Major, Minor float64
}

func NewTorus(major, minor float64) (*Torus, error) {
	if minor <= 0 || major < minor {
		return nil, fmt.Errorf("torus radii %g, %g", major, minor)
	}
	return &Torus{Major: major, Minor: minor}, nil
}

func (t *Torus) Evaluate(p v3.Vec) float64 {
	qx := math.Hypot(p.X, p.Z) - t.Major
	return math.Hypot(qx, p.Y) - t.Minor
}

func (t *Torus) BoundingBox() sdf.Box3 {
	r := t.Major + t.Minor
	return sdf.Box3{
		Min: v3.Vec{X: -r, Y: -t.Minor, Z: -r},
		Max: v3.Vec{X: r, Y: t.Minor, Z: r},
	}
}

// BoxFrame is the edge skeleton of a box with square bars.
type BoxFrame struct {
	Half      v3.Vec
	Thickness float64
}

func NewBoxFrame(size v3.Vec, thickness float64) (*BoxFrame, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 || thickness <= 0 {
		return nil, fmt.Errorf("box frame size %v thickness %g", size, thickness)
	}
	return &BoxFrame{Half: v3.Vec{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}, Thickness: thickness}, nil
}

func (b *BoxFrame) Evaluate(p v3.Vec) float64 {
	e := b.Thickness
	px, py, pz := math.Abs(p.X)-b.Half.X, math.Abs(p.Y)-b.Half.Y, math.Abs(p.Z)-b.Half.Z
	qx, qy, qz := math.Abs(px+e)-e, math.Abs(py+e)-e, math.Abs(pz+e)-e
	return math.Min(math.Min(
		boxTerm(px, qy, qz),
		boxTerm(qx, py, qz)),
		boxTerm(qx, qy, pz))
}

// boxTerm is the distance to a box given the per-axis signed excess.
func boxTerm(x, y, z float64) float64 {
	outside := math.Sqrt(sq(math.Max(x, 0)) + sq(math.Max(y, 0)) + sq(math.Max(z, 0)))
	return outside + math.Min(math.Max(x, math.Max(y, z)), 0)
}

func (b *BoxFrame) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -b.Half.X, Y: -b.Half.Y, Z: -b.Half.Z},
		Max: b.Half,
	}
}

// Link is a chain link: a torus stretched along y by 2*HalfLength.
type Link struct {
	HalfLength, Ring, Tube float64
}

func NewLink(halfLength, ring, tube float64) (*Link, error) {
	if halfLength < 0 || tube <= 0 || ring < tube {
		return nil, fmt.Errorf("link %g, %g, %g", halfLength, ring, tube)
	}
	return &Link{HalfLength: halfLength, Ring: ring, Tube: tube}, nil
}

func (l *Link) Evaluate(p v3.Vec) float64 {
	qy := math.Max(math.Abs(p.Y)-l.HalfLength, 0)
	return math.Hypot(math.Hypot(p.X, qy)-l.Ring, p.Z) - l.Tube
}

func (l *Link) BoundingBox() sdf.Box3 {
	r := l.Ring + l.Tube
	return sdf.Box3{
		Min: v3.Vec{X: -r, Y: -(l.HalfLength + r), Z: -l.Tube},
		Max: v3.Vec{X: r, Y: l.HalfLength + r, Z: l.Tube},
	}
}

func sq(x float64) float64 { return x * x }
