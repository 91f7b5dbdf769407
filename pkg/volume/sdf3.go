package volume

import (
	"context"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ sdf.SDF3 = (*Volume)(nil)
	_ sdf.SDF3 = (*sampler)(nil)
)

// Evaluate returns the distance at a world position.
func (v *Volume) Evaluate(p v3.Vec) float64 {
	return float64(v.Sample(geom.FromV3(p)))
}

// BoundingBox returns the world box of the grid.
func (v *Volume) BoundingBox() sdf.Box3 {
	return v.WorldBox().Box3()
}

// sampler is a Volume frozen at its current placement.
type sampler struct {
	v   *Volume
	inv sdf.M44
	box sdf.Box3
}

// SDF3 returns the volume as an sdfx shape with its transform computed
// once. Later changes to Position or Rotation are not seen by it.
func (v *Volume) SDF3() sdf.SDF3 {
	return &sampler{v: v, inv: v.InvModel(), box: v.BoundingBox()}
}

// LocalSDF3 returns the grid as an sdfx shape in its own frame, ignoring
// Position and Rotation.
func (v *Volume) LocalSDF3() sdf.SDF3 {
	return &sampler{v: v, inv: sdf.Identity3d(), box: v.LocalBox().Box3()}
}

func (s *sampler) Evaluate(p v3.Vec) float64 {
	return float64(Resample(s.v, s.inv, geom.FromV3(p)))
}

func (s *sampler) BoundingBox() sdf.Box3 {
	return s.box
}

// FromSDF3 samples an sdfx shape on a grid covering its bounding box,
// padded on each axis by padding times that axis's extent.
func FromSDF3(ctx context.Context, name string, s sdf.SDF3, dim [3]int, padding float64) (*Volume, error) {
	v, err := New(name, dim)
	if err != nil {
		return nil, err
	}
	v.SetBounds(geom.FromBox3(s.BoundingBox()).Pad(padding))
	err = v.Fill(ctx, func(p geom.Point3) (float32, error) {
		return float32(s.Evaluate(p.V3())), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
