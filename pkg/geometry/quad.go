package geometry

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Quad represents a parallelogram defined by a corner and two edge vectors.
// It is visible from both sides.
type Quad struct {
	Corner   core.Vec3 // One corner of the quad
	U        core.Vec3 // First edge vector
	V        core.Vec3 // Second edge vector
	Material core.Material
	normal   core.Vec3 // U × V, normalized
	d        float64   // Plane equation constant: normal · p = d
	w        core.Vec3 // normal / (normal · (U × V)), used for edge coordinates
	bbox     core.AABB
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, material core.Material) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	q := &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Material: material,
		normal:   normal,
		d:        normal.Dot(corner),
		bbox:     core.NewAABBFromPoints(corner, corner.Add(u), corner.Add(v), corner.Add(u).Add(v)),
	}
	if !normal.IsZero() {
		q.w = normal.Multiply(1.0 / normal.Dot(cross))
	}
	return q
}

// NewSquare creates the square of half-size (sx, sy) centered on center in
// the local XY plane, rotated by rotation (radians)
func NewSquare(center core.Vec3, sx, sy float64, rotation core.Vec3, material core.Material) *Quad {
	corner := center.Add(core.NewVec3(-sx, -sy, 0).Rotate(rotation))
	u := core.NewVec3(2*sx, 0, 0).Rotate(rotation)
	v := core.NewVec3(0, 2*sy, 0).Rotate(rotation)
	return NewQuad(corner, u, v, material)
}

// Normal returns the unit normal U × V
func (q *Quad) Normal() core.Vec3 {
	return q.normal
}

// Intersect hits the quad's plane and keeps points whose edge coordinates
// both lie in [0, 1]. The normal faces the ray origin.
func (q *Quad) Intersect(ray core.Ray) (core.Intersection, bool) {
	if q.normal.IsZero() {
		return core.Miss(), false
	}
	denominator := ray.Direction.Dot(q.normal)
	if math.Abs(denominator) < parallelEpsilon {
		return core.Miss(), false
	}

	t := (q.d - ray.Origin.Dot(q.normal)) / denominator
	if t <= core.RayEpsilon {
		return core.Miss(), false
	}

	hitVector := ray.At(t).Subtract(q.Corner)
	alpha := q.w.Dot(hitVector.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return core.Miss(), false
	}

	return core.Intersection{
		T:        t,
		Normal:   facing(q.normal, ray.Direction),
		UV:       core.NewVec2(alpha, beta),
		Surface:  q,
		Material: q.Material,
	}, true
}

// BoundingBox returns the box around the four corners
func (q *Quad) BoundingBox() core.AABB {
	return q.bbox
}
