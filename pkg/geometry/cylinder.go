package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// ErrInvalidShape is returned when primitive parameters describe no solid
var ErrInvalidShape = errors.New("invalid shape")

// Parts of a cylinder or cone a ray can hit
const (
	partBody = iota
	partBase
	partTop
)

// Cylinder represents a finite cylinder between two end centers, optionally
// closed by caps
type Cylinder struct {
	BaseCenter core.Vec3
	TopCenter  core.Vec3
	Radius     float64
	Capped     bool
	Material   core.Material

	axis   core.Vec3 // Unit vector from base to top
	height float64
	right  core.Vec3 // Basis perpendicular to axis, used for UVs
	up     core.Vec3
}

// NewCylinder creates a new cylinder
func NewCylinder(baseCenter, topCenter core.Vec3, radius float64, capped bool, material core.Material) (*Cylinder, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("cylinder radius must be positive, got %g: %w", radius, ErrInvalidShape)
	}
	axisVector := topCenter.Subtract(baseCenter)
	height := axisVector.Length()
	if height <= 0 {
		return nil, fmt.Errorf("cylinder base and top centers coincide: %w", ErrInvalidShape)
	}

	axis := axisVector.Normalize()
	right, up := orthonormalBasis(axis)
	return &Cylinder{
		BaseCenter: baseCenter,
		TopCenter:  topCenter,
		Radius:     radius,
		Capped:     capped,
		Material:   material,
		axis:       axis,
		height:     height,
		right:      right,
		up:         up,
	}, nil
}

// BoundingBox returns the union of the boxes of the two end circles
func (c *Cylinder) BoundingBox() core.AABB {
	return discBounds(c.BaseCenter, c.axis, c.Radius).Merge(discBounds(c.TopCenter, c.axis, c.Radius))
}

// Intersect returns the nearest hit on the side or, when capped, the end
// caps. Normals point outward.
func (c *Cylinder) Intersect(ray core.Ray) (core.Intersection, bool) {
	best, part := math.Inf(1), -1

	// Side: |Δ + tD|² - ((Δ + tD)·V)² = r²
	delta := ray.Origin.Subtract(c.BaseCenter)
	dv := ray.Direction.Dot(c.axis)
	deltaV := delta.Dot(c.axis)

	a := ray.Direction.LengthSquared() - dv*dv
	if a > parallelEpsilon {
		b := 2.0 * (delta.Dot(ray.Direction) - deltaV*dv)
		cc := delta.LengthSquared() - deltaV*deltaV - c.Radius*c.Radius
		if discriminant := b*b - 4*a*cc; discriminant >= 0 {
			sqrtD := math.Sqrt(discriminant)
			for _, t := range [2]float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
				if t <= core.RayEpsilon || t >= best {
					continue
				}
				if h := deltaV + t*dv; h >= 0 && h <= c.height {
					best, part = t, partBody
				}
			}
		}
	}

	if c.Capped {
		if t, ok := capHit(ray, c.BaseCenter, c.axis, c.Radius); ok && t < best {
			best, part = t, partBase
		}
		if t, ok := capHit(ray, c.TopCenter, c.axis, c.Radius); ok && t < best {
			best, part = t, partTop
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
		uv = polarUV(radial, c.right, c.up, c.Radius)
	case partTop:
		normal = c.axis
		uv = polarUV(radial, c.right, c.up, c.Radius)
	default:
		normal = radial.Normalize()
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

// aroundAxisU maps the angle of radial around the axis to [0, 1]
func aroundAxisU(radial, right, up core.Vec3) float64 {
	return (math.Atan2(radial.Dot(up), radial.Dot(right)) + math.Pi) / (2 * math.Pi)
}
