package engine

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/chazu/sdfkit/pkg/boolean"
	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/scene"
	"github.com/chazu/sdfkit/pkg/stl"
	"github.com/chazu/sdfkit/pkg/sweep"
	"github.com/chazu/sdfkit/pkg/volume"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vector3.
type sexpVec3 struct {
	vec geom.Vector3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpQuat wraps a unit geom.Quat.
type sexpQuat struct {
	q geom.Quat
}

func (q *sexpQuat) SexpString(ps *zygo.PrintState) string {
	axis, angle := q.q.AxisAngle()
	return fmt.Sprintf("(quat (vec3 %g %g %g) %g)", axis.X, axis.Y, axis.Z, angle*180/math.Pi)
}
func (q *sexpQuat) Type() *zygo.RegisteredType { return nil }

// sexpFrame wraps one sweep.Frame so trajectories can be built in source.
type sexpFrame struct {
	frame sweep.Frame
}

func (f *sexpFrame) SexpString(ps *zygo.PrintState) string {
	p := f.frame.Position
	return fmt.Sprintf("(frame (vec3 %g %g %g))", p.X, p.Y, p.Z)
}
func (f *sexpFrame) Type() *zygo.RegisteredType { return nil }

// sexpVolume wraps a sampled volume. Volumes are treated as immutable by
// the builtins: placement changes return a copy.
type sexpVolume struct {
	v *volume.Volume
}

func (v *sexpVolume) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(volume %q)", v.v.String())
}
func (v *sexpVolume) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toVec3 extracts a Vector3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vector3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toQuat extracts a Quat from a sexpQuat.
func toQuat(s zygo.Sexp) (geom.Quat, error) {
	if q, ok := s.(*sexpQuat); ok {
		return q.q, nil
	}
	return geom.Quat{}, fmt.Errorf("expected quat, got %T (%s)", s, s.SexpString(nil))
}

// toVolume extracts a Volume from a sexpVolume.
func toVolume(s zygo.Sexp) (*volume.Volume, error) {
	if v, ok := s.(*sexpVolume); ok {
		return v.v, nil
	}
	return nil, fmt.Errorf("expected volume, got %T (%s)", s, s.SexpString(nil))
}

// toFrame accepts a frame, or a bare vec3 as a frame without rotation.
func toFrame(s zygo.Sexp) (sweep.Frame, error) {
	switch v := s.(type) {
	case *sexpFrame:
		return v.frame, nil
	case *sexpVec3:
		return sweep.Frame{Position: geom.Pt(v.vec.X, v.vec.Y, v.vec.Z), Rotation: geom.IdentityQuat()}, nil
	}
	return sweep.Frame{}, fmt.Errorf("expected frame or vec3, got %T (%s)", s, s.SexpString(nil))
}

// axisAngleQuat builds a rotation of degrees about axis.
func axisAngleQuat(axis geom.Vector3, degrees float64) (geom.Quat, error) {
	return geom.QuatAxisAngle(axis, degrees*math.Pi/180)
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// build carries what the builtins of one evaluation share.
type build struct {
	ctx   context.Context
	opts  Options
	scene *scene.Scene
	namer boolean.Namer
}

// grid reads the optional :dim and :padding keywords.
func (b *build) grid(pa kwArgs) ([3]int, float64, error) {
	n := b.opts.Dim
	if v, ok := pa.kw["dim"]; ok {
		d, err := toInt(v)
		if err != nil {
			return [3]int{}, 0, fmt.Errorf("dim: %w", err)
		}
		n = d
	}
	padding := b.opts.Padding
	if v, ok := pa.kw["padding"]; ok {
		p, err := toFloat64(v)
		if err != nil {
			return [3]int{}, 0, fmt.Errorf("padding: %w", err)
		}
		padding = p
	}
	return [3]int{n, n, n}, padding, nil
}

// resolution reads the optional :resolution keyword.
func (b *build) resolution(pa kwArgs) (int, error) {
	if v, ok := pa.kw["resolution"]; ok {
		return toInt(v)
	}
	return b.opts.Resolution, nil
}

// shape samples a catalogue shape on a new grid.
func (b *build) shape(name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	params, err := toFloats(pa.positional)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	s, err := volume.Shape(name, params)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	dim, padding, err := b.grid(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	v, err := volume.FromSDF3(b.ctx, name, s, dim, padding)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	v.Workers = b.opts.Workers
	return &sexpVolume{v: v}, nil
}

// loadMesh reads an STL file below LoadRoot and computes its distance
// field.
func (b *build) loadMesh(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return zygo.SexpNull, fmt.Errorf("load-mesh requires a file name")
	}
	rel, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("load-mesh: path: %w", err)
	}
	if b.opts.LoadRoot == "" {
		return zygo.SexpNull, fmt.Errorf("load-mesh: no load root configured")
	}
	if !filepath.IsLocal(rel) {
		return zygo.SexpNull, fmt.Errorf("load-mesh: %q is outside the load root", rel)
	}
	dim, padding, err := b.grid(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("load-mesh: %w", err)
	}

	m, err := stl.Parse(filepath.Join(b.opts.LoadRoot, rel))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("load-mesh: %w", err)
	}
	v, err := volume.FromMesh(m.Name, m, dim, padding)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("load-mesh: %w", err)
	}
	v.Workers = b.opts.Workers
	if err := v.ComputeSDF(b.ctx); err != nil {
		return zygo.SexpNull, fmt.Errorf("load-mesh: %w", err)
	}
	return &sexpVolume{v: v}, nil
}

// combine folds every positional volume with mode.
func (b *build) combine(mode boolean.Mode, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	vols := make([]*volume.Volume, 0, len(pa.positional))
	for i, a := range pa.positional {
		v, err := toVolume(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", mode, i+1, err)
		}
		vols = append(vols, v)
	}
	res, err := b.resolution(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: resolution: %w", mode, err)
	}
	out, err := boolean.Combine(b.ctx, vols, mode, res)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", mode, err)
	}
	out.Name = b.namer.Next(mode)
	return &sexpVolume{v: out}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// shapeBuiltins maps DSL names (after kebab-case conversion) to catalogue
// shape names.
var shapeBuiltins = map[string]string{
	"sphere":    "sphere",
	"box":       "box",
	"cylinder":  "cylinder",
	"cone":      "cone",
	"capsule":   "capsule",
	"torus":     "torus",
	"box_frame": "box-frame",
	"link":      "link",
}

// registerBuiltins installs all scene DSL builtins into a zygomys environment.
// The builtins operate on b.scene, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *build) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		xyz, err := toFloats(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: geom.Vec(xyz[0], xyz[1], xyz[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (quat)                          identity
	// (quat (vec3 0 0 1) 90)          axis and angle in degrees
	// (quat :euler (vec3 0 90 0))     x, then y, then z, in degrees
	// -----------------------------------------------------------------------
	env.AddFunction("quat", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["euler"]; ok {
			e, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quat: euler: %w", err)
			}
			d := math.Pi / 180
			return &sexpQuat{q: geom.QuatEuler(e.X*d, e.Y*d, e.Z*d)}, nil
		}
		switch len(pa.positional) {
		case 0:
			return &sexpQuat{q: geom.IdentityQuat()}, nil
		case 2:
			axis, err := toVec3(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quat: axis: %w", err)
			}
			deg, err := toFloat64(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quat: angle: %w", err)
			}
			q, err := axisAngleQuat(axis, deg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("quat: %w", err)
			}
			return &sexpQuat{q: q}, nil
		}
		return zygo.SexpNull, fmt.Errorf("quat takes no arguments, an axis and an angle, or :euler")
	})

	// -----------------------------------------------------------------------
	// (frame (vec3 1 0 0) (quat (vec3 0 0 1) 90))
	// -----------------------------------------------------------------------
	env.AddFunction("frame", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("frame requires a position and an optional rotation")
		}
		p, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("frame: position: %w", err)
		}
		f := sweep.Frame{Position: geom.Pt(p.X, p.Y, p.Z), Rotation: geom.IdentityQuat()}
		if len(args) == 2 {
			q, err := toQuat(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("frame: rotation: %w", err)
			}
			f.Rotation = q
		}
		return &sexpFrame{frame: f}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere 1 :dim 48 :padding 0.2), (box 1 2 3), (box-frame 2 2 2 0.1) ...
	// -----------------------------------------------------------------------
	for fn, shape := range shapeBuiltins {
		shape := shape
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return b.shape(shape, args)
		})
	}

	// -----------------------------------------------------------------------
	// (load-mesh "parts/bracket.stl" :dim 64)
	// -----------------------------------------------------------------------
	env.AddFunction("load_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.loadMesh(args)
	})

	// -----------------------------------------------------------------------
	// (translate v (vec3 1 0 0)) or (translate v 1 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires a volume and an offset")
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		var d geom.Vector3
		if len(args) == 2 {
			d, err = toVec3(args[1])
		} else {
			var xyz []float64
			xyz, err = toFloats(args[1:])
			if err == nil {
				d = geom.Vec(xyz[0], xyz[1], xyz[2])
			}
		}
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		out := v.Clone(v.Name)
		out.Translate(d)
		return &sexpVolume{v: out}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate v (quat ...)) or (rotate v :axis :z :angle 90)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a volume")
		}
		v, err := toVolume(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}

		var q geom.Quat
		switch {
		case len(pa.positional) == 2:
			q, err = toQuat(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
			}
		default:
			axisArg, ok := pa.kw["axis"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("rotate requires a quat or :axis and :angle")
			}
			axis, err := toAxis(axisArg)
			if err != nil {
				if axis, err = toVec3(axisArg); err != nil {
					return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
				}
			}
			deg := 0.0
			if a, ok := pa.kw["angle"]; ok {
				if deg, err = toFloat64(a); err != nil {
					return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
				}
			}
			if q, err = axisAngleQuat(axis, deg); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
			}
		}
		out := v.Clone(v.Name)
		out.Rotate(q)
		return &sexpVolume{v: out}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b c :resolution 64), (intersection ...), (difference ...)
	// -----------------------------------------------------------------------
	for _, mode := range []boolean.Mode{boolean.Union, boolean.Intersection, boolean.Difference} {
		mode := mode
		env.AddFunction(mode.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return b.combine(mode, args)
		})
	}

	// -----------------------------------------------------------------------
	// (sweep brush (list (frame ...) (vec3 ...)) :resolution 64 :steps 100)
	// -----------------------------------------------------------------------
	env.AddFunction("sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("sweep requires a brush and a trajectory")
		}
		brush, err := toVolume(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: brush: %w", err)
		}
		items, err := sexpListToSlice(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: trajectory: %w", err)
		}
		traj := &sweep.Trajectory{}
		for i, item := range items {
			f, err := toFrame(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: frame %d: %w", i+1, err)
			}
			traj.AddFrame(f.Position, f.Rotation)
		}
		res, err := b.resolution(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: resolution: %w", err)
		}
		steps := b.opts.TimeSteps
		if v, ok := pa.kw["steps"]; ok {
			if steps, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: steps: %w", err)
			}
		}
		out, err := sweep.Generate(b.ctx, brush, traj, res, steps)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
		}
		out.Workers = b.opts.Workers
		return &sexpVolume{v: out}, nil
	})

	// -----------------------------------------------------------------------
	// (defvolume "name" expr :selected true)
	// -----------------------------------------------------------------------
	env.AddFunction("defvolume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defvolume requires a name and a body expression")
		}
		volName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defvolume: name: %w", err)
		}
		v, err := toVolume(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defvolume: %w", err)
		}
		// A volume already registered under another name gets its own copy.
		if b.scene.Get(v.ID) != nil {
			v = v.Clone(volName)
		}
		v.Name = volName
		if s, ok := pa.kw["selected"]; ok {
			if v.Selected, err = toBool(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("defvolume: selected: %w", err)
			}
		}
		if err := b.scene.Add(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("defvolume: %w", err)
		}
		return &sexpVolume{v: v}, nil
	})

	// -----------------------------------------------------------------------
	// (volume "name")
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("volume requires a name argument")
		}
		volName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: name: %w", err)
		}
		v := b.scene.Lookup(volName)
		if v == nil {
			return zygo.SexpNull, fmt.Errorf("volume: no volume named %q (have %v)", volName, b.scene.Names())
		}
		return &sexpVolume{v: v}, nil
	})

	// -----------------------------------------------------------------------
	// (volumes) lists the defined names.
	// -----------------------------------------------------------------------
	env.AddFunction("volumes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		names := lo.Map(b.scene.Names(), func(n string, _ int) zygo.Sexp {
			return &zygo.SexpStr{S: n}
		})
		return zygo.MakeList(names), nil
	})
}
