package volume

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/sdfkit/pkg/bvh"
	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/parallel"
	"github.com/chewxy/math32"
	"github.com/sirupsen/logrus"
)

// Fill sets every sample to fn of its local grid position. Samples are
// computed in parallel, so fn must be safe for concurrent use.
func (v *Volume) Fill(ctx context.Context, fn func(p geom.Point3) (float32, error)) error {
	return parallel.For(ctx, v.Len(), v.Workers, func(idx int) error {
		i, j, k := v.Cell(idx)
		d, err := fn(v.CellPos(i, j, k))
		if err != nil {
			return fmt.Errorf("volume: cell (%d,%d,%d): %w", i, j, k, err)
		}
		v.Data[idx] = d
		return nil
	})
}

// ComputeSDF samples the signed distance to the source mesh at every grid
// point. The sign comes from the BVH's adjacency-aware normal test, so the
// mesh needs its edge mates built.
func (v *Volume) ComputeSDF(ctx context.Context) error {
	if v.Mesh == nil {
		return ErrNoMesh
	}
	start := time.Now()
	tree, err := bvh.New(v.Mesh)
	if err != nil {
		return fmt.Errorf("volume: %w", err)
	}
	err = v.Fill(ctx, func(p geom.Point3) (float32, error) {
		r, err := tree.ComputeDistance(p, true)
		if err != nil {
			return 0, err
		}
		return float32(r.Distance), nil
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"volume":  v.Name,
		"samples": v.Len(),
		"faces":   len(tree.Root.Faces),
		"elapsed": time.Since(start),
	}).Debug("computed sdf")
	return nil
}

// Range returns the smallest and largest sample.
func (v *Volume) Range() (lo, hi float32) {
	lo, hi = math32.Inf(1), math32.Inf(-1)
	for _, d := range v.Data {
		lo = math32.Min(lo, d)
		hi = math32.Max(hi, d)
	}
	return lo, hi
}

// Inside counts the samples with a negative distance.
func (v *Volume) Inside() int {
	n := 0
	for _, d := range v.Data {
		if d < 0 {
			n++
		}
	}
	return n
}
