package sweep

import (
	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// Frame is one placement of the brush.
type Frame struct {
	Position geom.Point3
	Rotation geom.Quat
}

// Matrix returns the frame as a translate·rotate transform.
func (f Frame) Matrix() sdf.M44 {
	return sdf.Translate3d(f.Position.V3()).Mul(f.Rotation.M44())
}

// Trajectory is a sequence of frames spread evenly over t in [0, 1].
type Trajectory struct {
	Frames []Frame
}

// AddFrame appends a placement.
func (tr *Trajectory) AddFrame(pos geom.Point3, rot geom.Quat) {
	tr.Frames = append(tr.Frames, Frame{Position: pos, Rotation: rot.Normalize()})
}

func (tr *Trajectory) Len() int {
	return len(tr.Frames)
}

// Interpolate returns the frame at t. Positions are blended linearly and
// rotations along the shortest arc between the two bracketing frames. t is
// clamped to [0, 1].
func (tr *Trajectory) Interpolate(t float64) Frame {
	n := len(tr.Frames)
	switch {
	case n == 0:
		return Frame{Rotation: geom.IdentityQuat()}
	case n == 1 || t <= 0:
		return tr.Frames[0]
	case t >= 1:
		return tr.Frames[n-1]
	}
	scaled := t * float64(n-1)
	i0 := int(scaled)
	i1 := min(i0+1, n-1)
	local := scaled - float64(i0)

	a, b := tr.Frames[i0], tr.Frames[i1]
	return Frame{
		Position: a.Position.Lerp(b.Position, local),
		Rotation: geom.Slerp(a.Rotation, b.Rotation, local),
	}
}

// TransformAt returns the brush transform at t.
func (tr *Trajectory) TransformAt(t float64) sdf.M44 {
	return tr.Interpolate(t).Matrix()
}
