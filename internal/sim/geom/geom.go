package geom

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// DistXZ is the planar distance ignoring height. Tile culling and the
// generation thresholds only care about the ground plane.
func DistXZ(a, b Vec3) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Bounds is an axis-aligned box described by its center and full size.
type Bounds struct {
	Center Vec3
	Size   Vec3
}

// Top returns the Y coordinate of the upper face. Objects sit on top of a
// tile, so zone planes are built there.
func (b Bounds) Top() float64 {
	return b.Center.Y + b.Size.Y/2
}

func AbsFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
