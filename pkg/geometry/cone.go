package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Cone represents a finite cone or frustum shape
type Cone struct {
	BaseCenter core.Vec3
	BaseRadius float64
	TopCenter  core.Vec3
	TopRadius  float64 // 0 for pointed cone, >0 for frustum
	Capped     bool    // Whether to include circular end cap(s)
	Material   core.Material

	axis     core.Vec3 // Unit vector from base to top
	height   float64
	tanAngle float64   // (BaseRadius - TopRadius) / height
	apex     core.Vec3 // Apex of the infinite cone the frustum is cut from
	right    core.Vec3
	up       core.Vec3
}

// NewCone creates a new cone or frustum. The base must be the wider end.
func NewCone(baseCenter core.Vec3, baseRadius float64, topCenter core.Vec3, topRadius float64, capped bool, material core.Material) (*Cone, error) {
	if baseRadius <= 0 {
		return nil, fmt.Errorf("cone base radius must be positive, got %g: %w", baseRadius, ErrInvalidShape)
	}
	if topRadius < 0 {
		return nil, fmt.Errorf("cone top radius must be non-negative, got %g: %w", topRadius, ErrInvalidShape)
	}
	if baseRadius <= topRadius {
		return nil, fmt.Errorf("cone base radius %g must exceed top radius %g: %w", baseRadius, topRadius, ErrInvalidShape)
	}

	axisVector := topCenter.Subtract(baseCenter)
	height := axisVector.Length()
	if height <= 0 {
		return nil, fmt.Errorf("cone base and top centers coincide: %w", ErrInvalidShape)
	}
	axis := axisVector.Normalize()

	// The apex lies beyond the top where the radius shrinks to zero
	apex := topCenter.Add(axis.Multiply(topRadius * height / (baseRadius - topRadius)))

	right, up := orthonormalBasis(axis)
	return &Cone{
		BaseCenter: baseCenter,
		BaseRadius: baseRadius,
		TopCenter:  topCenter,
		TopRadius:  topRadius,
		Capped:     capped,
		Material:   material,
		axis:       axis,
		height:     height,
		tanAngle:   (baseRadius - topRadius) / height,
		apex:       apex,
		right:      right,
		up:         up,
	}, nil
}

// BoundingBox returns the union of the boxes of the two end circles
func (c *Cone) BoundingBox() core.AABB {
	return discBounds(c.BaseCenter, c.axis, c.BaseRadius).Merge(discBounds(c.TopCenter, c.axis, c.TopRadius))
}

// Intersect returns the nearest hit on the body or, when capped, the caps.
// Normals point outward.
func (c *Cone) Intersect(ray core.Ray) (core.Intersection, bool) {
	best, part := math.Inf(1), -1

	// Body: the double cone through the apex, cut to 0 <= h <= height. The
	// other nappe lies beyond the apex, so the height test discards it.
	co := ray.Origin.Subtract(c.apex)
	dv := ray.Direction.Dot(c.axis)
	cov := co.Dot(c.axis)
	k := 1 + c.tanAngle*c.tanAngle

	a := ray.Direction.LengthSquared() - k*dv*dv
	b := 2.0 * (ray.Direction.Dot(co) - k*dv*cov)
	cc := co.LengthSquared() - k*cov*cov

	var roots []float64
	switch {
	case math.Abs(a) > parallelEpsilon:
		if discriminant := b*b - 4*a*cc; discriminant >= 0 {
			sqrtD := math.Sqrt(discriminant)
			roots = []float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)}
		}
	case math.Abs(b) > parallelEpsilon:
		// Ray parallel to a generating line crosses the cone once
		roots = []float64{-cc / b}
	}
	for _, t := range roots {
		if t <= core.RayEpsilon || t >= best {
			continue
		}
		h := ray.At(t).Subtract(c.BaseCenter).Dot(c.axis)
		if h >= 0 && h <= c.height {
			best, part = t, partBody
		}
	}

	if c.Capped {
		if t, ok := capHit(ray, c.BaseCenter, c.axis, c.BaseRadius); ok && t < best {
			best, part = t, partBase
		}
		if c.TopRadius > 0 {
			if t, ok := capHit(ray, c.TopCenter, c.axis, c.TopRadius); ok && t < best {
				best, part = t, partTop
			}
		}
	}
	if part < 0 {
		return core.Miss(), false
	}

	point := ray.At(best)
	h := point.Subtract(c.BaseCenter).Dot(c.axis)
	radial := point.Subtract(c.BaseCenter.Add(c.axis.Multiply(h)))

	var normal core.Vec3
	var uv core.Vec2
	switch part {
	case partBase:
		normal = c.axis.Negate()
		uv = polarUV(radial, c.right, c.up, c.BaseRadius)
	case partTop:
		normal = c.axis
		uv = polarUV(radial, c.right, c.up, c.TopRadius)
	default:
		// The slope tilts the radial direction toward the axis
		normal = radial.Normalize().Add(c.axis.Multiply(c.tanAngle)).Normalize()
		uv = core.NewVec2(aroundAxisU(radial, c.right, c.up), h/c.height)
	}

	return core.Intersection{
		T:        best,
		Normal:   normal,
		UV:       uv,
		Surface:  c,
		Material: c.Material,
	}, true
}
