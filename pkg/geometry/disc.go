package geometry

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// parallelEpsilon is the |n·d| below which a ray is treated as parallel to a
// plane
const parallelEpsilon = 1e-12

// Disc represents a flat circular disc. It is visible from both sides.
type Disc struct {
	Center   core.Vec3
	Normal   core.Vec3 // Unit normal of the disc's plane
	Radius   float64
	Material core.Material
	right    core.Vec3 // In-plane basis used for UVs
	up       core.Vec3
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64, material core.Material) *Disc {
	n := normal.Normalize()
	right, up := orthonormalBasis(n)
	return &Disc{
		Center:   center,
		Normal:   n,
		Radius:   radius,
		Material: material,
		right:    right,
		up:       up,
	}
}

// Intersect hits the disc's plane inside the radius. The normal faces the
// ray origin.
func (d *Disc) Intersect(ray core.Ray) (core.Intersection, bool) {
	t, ok := capHit(ray, d.Center, d.Normal, d.Radius)
	if !ok {
		return core.Miss(), false
	}
	return core.Intersection{
		T:        t,
		Normal:   facing(d.Normal, ray.Direction),
		UV:       polarUV(ray.At(t).Subtract(d.Center), d.right, d.up, d.Radius),
		Surface:  d,
		Material: d.Material,
	}, true
}

// BoundingBox returns the tight axis-aligned box around the circle
func (d *Disc) BoundingBox() core.AABB {
	return discBounds(d.Center, d.Normal, d.Radius)
}

// orthonormalBasis returns two unit vectors perpendicular to n and to each other
func orthonormalBasis(n core.Vec3) (core.Vec3, core.Vec3) {
	var right core.Vec3
	if math.Abs(n.X) > 0.1 {
		right = core.NewVec3(0, 1, 0)
	} else {
		right = core.NewVec3(1, 0, 0)
	}
	right = right.Cross(n).Normalize()
	up := n.Cross(right).Normalize()
	return right, up
}

// capHit intersects the ray with the circle of radius around center in the
// plane with normal n, returning t > core.RayEpsilon
func capHit(ray core.Ray, center, n core.Vec3, radius float64) (float64, bool) {
	denom := n.Dot(ray.Direction)
	if math.Abs(denom) < parallelEpsilon {
		return 0, false
	}
	t := n.Dot(center.Subtract(ray.Origin)) / denom
	if t <= core.RayEpsilon {
		return 0, false
	}
	if ray.At(t).Subtract(center).LengthSquared() > radius*radius {
		return 0, false
	}
	return t, true
}

// discBounds returns the box around a circle: along each world axis the
// circle extends radius·sqrt(1 - n_i²)
func discBounds(center, n core.Vec3, radius float64) core.AABB {
	extent := core.NewVec3(
		radius*math.Sqrt(math.Max(0, 1-n.X*n.X)),
		radius*math.Sqrt(math.Max(0, 1-n.Y*n.Y)),
		radius*math.Sqrt(math.Max(0, 1-n.Z*n.Z)),
	)
	return core.NewAABB(center.Subtract(extent), center.Add(extent))
}

// polarUV maps an in-plane offset within radius to [0, 1]²
func polarUV(offset, right, up core.Vec3, radius float64) core.Vec2 {
	return core.NewVec2(
		(offset.Dot(right)/radius+1)/2,
		(offset.Dot(up)/radius+1)/2,
	)
}

// facing flips n so that it points against direction
func facing(n, direction core.Vec3) core.Vec3 {
	if n.Dot(direction) > 0 {
		return n.Negate()
	}
	return n
}
