// Package sweep stamps a brush volume along a trajectory to build the
// volume it sweeps out.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/logging"
	"github.com/chazu/sdfkit/pkg/volume"
	"github.com/chewxy/math32"
	"github.com/deadsy/sdfx/sdf"
	"github.com/sirupsen/logrus"
)

var log = logging.NamedLogger("sweep")

// Name is given to every swept volume.
const Name = "Swept Volume"

const (
	DefaultResolution = 64
	DefaultTimeSteps  = 100
)

var (
	// ErrShortTrajectory is returned for trajectories of fewer than two
	// frames.
	ErrShortTrajectory = errors.New("sweep: trajectory needs at least two frames")
	// ErrNoBrush is returned when the brush is nil.
	ErrNoBrush = errors.New("sweep: no brush volume")
)

// Bounds returns the world box the sweep covers: the path of the brush's
// local centre over every time step, padded by the brush's radius.
func Bounds(brush *volume.Volume, traj *Trajectory, timeSteps int) geom.Box {
	center := brush.LocalBox().Center()
	b := geom.EmptyBox()
	for step := 0; step <= timeSteps; step++ {
		m := traj.TransformAt(float64(step) / float64(timeSteps))
		b.Extend(geom.FromV3(m.MulPosition(center.V3())))
	}
	radius := brush.Max.Sub(center).Length()
	return b.PadUniform(radius)
}

// Generate returns the union of the brush placed at timeSteps+1 evenly
// spaced points of traj, sampled on a resolution³ grid. The brush's own
// Position and Rotation are ignored; the trajectory places it.
func Generate(ctx context.Context, brush *volume.Volume, traj *Trajectory, resolution, timeSteps int) (*volume.Volume, error) {
	if brush == nil {
		return nil, ErrNoBrush
	}
	if traj == nil || traj.Len() < 2 {
		return nil, ErrShortTrajectory
	}
	if timeSteps < 1 {
		return nil, fmt.Errorf("sweep: time steps must be positive, got %d", timeSteps)
	}

	out, err := volume.Cubic(Name, resolution)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	out.SetBounds(Bounds(brush, traj, timeSteps))
	out.Workers = brush.Workers

	invs := make([]sdf.M44, timeSteps+1)
	for step := range invs {
		invs[step] = traj.TransformAt(float64(step) / float64(timeSteps)).Inverse()
	}

	start := time.Now()
	err = out.Fill(ctx, func(p geom.Point3) (float32, error) {
		d := float32(math32.MaxFloat32)
		for _, inv := range invs {
			d = math32.Min(d, volume.Resample(brush, inv, p))
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	log.WithFields(logrus.Fields{
		"brush":      brush.Name,
		"frames":     traj.Len(),
		"steps":      timeSteps,
		"resolution": resolution,
		"elapsed":    time.Since(start),
	}).Debug("swept volume")
	return out, nil
}
