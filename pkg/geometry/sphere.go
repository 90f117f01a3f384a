package geometry

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material core.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Intersect returns the nearest hit with t > core.RayEpsilon. A ray starting
// inside the sphere hits the far side. The reported normal always points
// outward; the integrator decides entering versus exiting from its sign.
func (s *Sphere) Intersect(ray core.Ray) (core.Intersection, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return core.Miss(), false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return core.Miss(), false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first, then the farther one
	root := (-halfB - sqrtD) / a
	if root <= core.RayEpsilon {
		root = (-halfB + sqrtD) / a
		if root <= core.RayEpsilon {
			return core.Miss(), false
		}
	}

	point := ray.At(root)
	outwardNormal := point.Subtract(s.Center).Normalize()

	return core.Intersection{
		T:        root,
		Normal:   outwardNormal,
		UV:       sphereUV(outwardNormal),
		Surface:  s,
		Material: s.Material,
	}, true
}

// sphereUV maps a point on the unit sphere to (u, v) in [0, 1]
func sphereUV(p core.Vec3) core.Vec2 {
	theta := math.Acos(math.Max(-1, math.Min(1, -p.Y)))
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}
