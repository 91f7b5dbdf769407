package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Point3
}

// EmptyBox returns an inverted box that any Extend call will replace.
func EmptyBox() Box {
	return Box{
		Min: Point3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: Point3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// BoxOf returns the tight bound of the given points.
func BoxOf(pts ...Point3) Box {
	b := EmptyBox()
	for _, p := range pts {
		b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box is inverted on any axis.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to include p.
func (b *Box) Extend(p Point3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Intersect returns the overlap of both boxes. The result may be empty.
func (b Box) Intersect(o Box) Box {
	return Box{Min: b.Min.Max(o.Min), Max: b.Max.Min(o.Max)}
}

// Size returns the extent along each axis.
func (b Box) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() Point3 {
	return b.Min.Lerp(b.Max, 0.5)
}

// HalfSize returns half of the extent along each axis.
func (b Box) HalfSize() Vector3 {
	return b.Size().Scale(0.5)
}

// MaxExtent returns the largest axis extent.
func (b Box) MaxExtent() float64 {
	return b.Size().MaxComponent()
}

// Pad expands each axis by frac of that axis's own extent on both sides.
func (b Box) Pad(frac float64) Box {
	d := b.Size().Scale(frac)
	return Box{Min: b.Min.Offset(d), Max: b.Max.Add(d)}
}

// PadUniform expands every axis by d on both sides.
func (b Box) PadUniform(d float64) Box {
	v := Vector3{d, d, d}
	return Box{Min: b.Min.Offset(v), Max: b.Max.Add(v)}
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Corners returns the eight corners of the box.
func (b Box) Corners() [8]Point3 {
	return [8]Point3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// SqDistLowerBound returns the squared distance from p to the nearest
// point of the box, zero when p is inside.
func (b Box) SqDistLowerBound(p Point3) float64 {
	c := b.Center()
	h := b.HalfSize()
	dx := math.Max(math.Abs(p.X-c.X)-h.X, 0)
	dy := math.Max(math.Abs(p.Y-c.Y)-h.Y, 0)
	dz := math.Max(math.Abs(p.Z-c.Z)-h.Z, 0)
	return dx*dx + dy*dy + dz*dz
}

// Box3 converts to the sdfx box type.
func (b Box) Box3() sdf.Box3 {
	return sdf.Box3{Min: b.Min.V3(), Max: b.Max.V3()}
}

// FromBox3 converts an sdfx box.
func FromBox3(b sdf.Box3) Box {
	return Box{Min: FromV3(b.Min), Max: FromV3(b.Max)}
}
