package geometry

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Box represents a solid rectangular box with optional rotation
type Box struct {
	Center   core.Vec3     // Center point of the box
	Size     core.Vec3     // Half-extents along each local axis
	Rotation core.Vec3     // Rotation angles in radians (X, Y, Z)
	Material core.Material // Material for all faces
	bbox     core.AABB     // Cached bounding box
}

// NewBox creates a new box with the given center, size, rotation, and material
// Size represents half-extents (so a size of (1,1,1) creates a 2x2x2 box)
// Rotation is in radians around X, Y, Z axes (applied in that order)
func NewBox(center, size, rotation core.Vec3, material core.Material) *Box {
	box := &Box{
		Center:   center,
		Size:     core.NewVec3(math.Abs(size.X), math.Abs(size.Y), math.Abs(size.Z)),
		Rotation: rotation,
		Material: material,
	}

	box.bbox = core.EmptyAABB()
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				corner := core.NewVec3(sx*box.Size.X, sy*box.Size.Y, sz*box.Size.Z)
				box.bbox = box.bbox.MergePoint(corner.Rotate(rotation).Add(center))
			}
		}
	}
	return box
}

// NewAxisAlignedBox creates a new axis-aligned box (no rotation)
func NewAxisAlignedBox(center, size core.Vec3, material core.Material) *Box {
	return NewBox(center, size, core.NewVec3(0, 0, 0), material)
}

// Intersect transforms the ray into the box's local frame and runs a slab
// test. The entry face is reported unless the origin is inside, in which case
// the exit face is.
func (b *Box) Intersect(ray core.Ray) (core.Intersection, bool) {
	origin := inverseRotate(ray.Origin.Subtract(b.Center), b.Rotation)
	direction := inverseRotate(ray.Direction, b.Rotation)

	tNear, tFar := math.Inf(-1), math.Inf(1)
	nearAxis, farAxis := -1, -1
	for axis := 0; axis < 3; axis++ {
		o := origin.Axis(axis)
		d := direction.Axis(axis)
		half := b.Size.Axis(axis)

		if d == 0 {
			if o < -half || o > half {
				return core.Miss(), false
			}
			continue
		}

		t1 := (-half - o) / d
		t2 := (half - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear, nearAxis = t1, axis
		}
		if t2 < tFar {
			tFar, farAxis = t2, axis
		}
		if tNear > tFar {
			return core.Miss(), false
		}
	}

	t, axis := tNear, nearAxis
	if t <= core.RayEpsilon {
		t, axis = tFar, farAxis
		if t <= core.RayEpsilon {
			return core.Miss(), false
		}
	}
	if axis < 0 {
		return core.Miss(), false
	}

	// Outward normal of the face containing the local hit point
	local := origin.Add(direction.Multiply(t))
	var normal core.Vec3
	switch axis {
	case 0:
		normal = core.NewVec3(math.Copysign(1, local.X), 0, 0)
	case 1:
		normal = core.NewVec3(0, math.Copysign(1, local.Y), 0)
	default:
		normal = core.NewVec3(0, 0, math.Copysign(1, local.Z))
	}

	return core.Intersection{
		T:        t,
		Normal:   normal.Rotate(b.Rotation),
		UV:       boxUV(local, b.Size, axis),
		Surface:  b,
		Material: b.Material,
	}, true
}

// boxUV maps the hit point to [0, 1]² on the face perpendicular to axis
func boxUV(local, size core.Vec3, axis int) core.Vec2 {
	u := (local.Axis((axis+1)%3)/nonZero(size.Axis((axis+1)%3)) + 1) / 2
	v := (local.Axis((axis+2)%3)/nonZero(size.Axis((axis+2)%3)) + 1) / 2
	return core.NewVec2(u, v)
}

func nonZero(x float64) float64 {
	if x == 0 {
		return 1
	}
	return x
}

// inverseRotate undoes Vec3.Rotate by applying negated angles in reverse order
func inverseRotate(v, rotation core.Vec3) core.Vec3 {
	v = v.Rotate(core.NewVec3(0, 0, -rotation.Z))
	v = v.Rotate(core.NewVec3(0, -rotation.Y, 0))
	return v.Rotate(core.NewVec3(-rotation.X, 0, 0))
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}
