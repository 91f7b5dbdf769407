package volume

import (
	"math"

	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// DegenerateExtent is the axis extent below which a grid cannot be
// resampled.
const DegenerateExtent = 1e-4

// DegenerateDistance is returned when resampling a degenerate grid.
const DegenerateDistance float32 = 1.0

// latticeSnap pulls grid coordinates this close to an integer onto it.
const latticeSnap = 1e-9

// Resample returns vol's distance at world, with inv taking world
// positions into vol's local frame. Positions outside the grid are
// clamped to it and the world-unit distance from the clamped position is
// added to the result.
func Resample(vol *Volume, inv sdf.M44, world geom.Point3) float32 {
	local := geom.FromV3(inv.MulPosition(world.V3()))
	ext := vol.Max.Sub(vol.Min)
	if ext.X < DegenerateExtent || ext.Y < DegenerateExtent || ext.Z < DegenerateExtent {
		return DegenerateDistance
	}

	uvw := geom.Vec(
		(local.X-vol.Min.X)/ext.X,
		(local.Y-vol.Min.Y)/ext.Y,
		(local.Z-vol.Min.Z)/ext.Z,
	)
	clamped := geom.Vec(clamp01(uvw.X), clamp01(uvw.Y), clamp01(uvw.Z))
	penalty := geom.Vec(
		(uvw.X-clamped.X)*ext.X,
		(uvw.Y-clamped.Y)*ext.Y,
		(uvw.Z-clamped.Z)*ext.Z,
	).Length()

	return TrilinearInterpolate(vol.Data, vol.Dim, clamped) + float32(penalty)
}

// Sample resamples v at a world position through its own model transform.
func (v *Volume) Sample(world geom.Point3) float32 {
	return Resample(v, v.InvModel(), world)
}

// TrilinearInterpolate blends the eight samples around uvw, given in
// [0,1]³ over a grid of dim samples. Corner indices are clamped to the
// grid, and the blend runs along x, then y, then z.
func TrilinearInterpolate(data []float32, dim [3]int, uvw geom.Vector3) float32 {
	var i0, i1 [3]int
	var f [3]float64
	for a := 0; a < 3; a++ {
		g := uvw.Axis(a) * float64(dim[a]-1)
		if r := math.Round(g); math.Abs(g-r) < latticeSnap {
			g = r
		}
		fl := math.Floor(g)
		f[a] = g - fl
		i0[a] = clampIndex(int(fl), dim[a])
		i1[a] = clampIndex(int(fl)+1, dim[a])
	}

	at := func(i, j, k int) float64 {
		return float64(data[i+j*dim[0]+k*dim[0]*dim[1]])
	}
	lerp := func(a, b, t float64) float64 {
		if t == 0 {
			return a
		}
		return a + (b-a)*t
	}

	c00 := lerp(at(i0[0], i0[1], i0[2]), at(i1[0], i0[1], i0[2]), f[0])
	c10 := lerp(at(i0[0], i1[1], i0[2]), at(i1[0], i1[1], i0[2]), f[0])
	c01 := lerp(at(i0[0], i0[1], i1[2]), at(i1[0], i0[1], i1[2]), f[0])
	c11 := lerp(at(i0[0], i1[1], i1[2]), at(i1[0], i1[1], i1[2]), f[0])

	c0 := lerp(c00, c10, f[1])
	c1 := lerp(c01, c11, f[1])
	return float32(lerp(c0, c1, f[2]))
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
