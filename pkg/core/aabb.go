package core

import "math"

// parallelEpsilon is the direction magnitude below which a ray is treated as
// parallel to a slab.
const parallelEpsilon = 1e-12

// AABB represents an axis-aligned bounding box.
// The zero value is the empty box: it contains nothing and is never hit.
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner

	nonEmpty bool
}

// NewAABB creates a new AABB from min and max points. The corners are sorted
// per axis so that Min <= Max always holds.
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b), nonEmpty: true}
}

// EmptyAABB returns a box that no geometry has been merged into
func EmptyAABB() AABB {
	return AABB{}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.MergePoint(point)
	}
	return box
}

// IsEmpty reports whether nothing has been merged into the box
func (aabb AABB) IsEmpty() bool {
	return !aabb.nonEmpty
}

// Merge returns the union of this box and other. Merging with an empty box
// is a no-op.
func (aabb AABB) Merge(other AABB) AABB {
	if other.IsEmpty() {
		return aabb
	}
	if aabb.IsEmpty() {
		return other
	}
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max), nonEmpty: true}
}

// MergePoint returns the box expanded to contain point
func (aabb AABB) MergePoint(point Vec3) AABB {
	if aabb.IsEmpty() {
		return AABB{Min: point, Max: point, nonEmpty: true}
	}
	return AABB{Min: aabb.Min.Min(point), Max: aabb.Max.Max(point), nonEmpty: true}
}

// Contains reports whether other lies entirely inside this box
func (aabb AABB) Contains(other AABB) bool {
	if other.IsEmpty() {
		return true
	}
	if aabb.IsEmpty() {
		return false
	}
	return aabb.Min.X <= other.Min.X && aabb.Min.Y <= other.Min.Y && aabb.Min.Z <= other.Min.Z &&
		aabb.Max.X >= other.Max.X && aabb.Max.Y >= other.Max.Y && aabb.Max.Z >= other.Max.Z
}

// Intersect tests the ray against the box using the slab method. On a hit it
// returns the entry and exit parameters along the ray; tMin is negative when
// the origin is inside the box. A box entirely behind the origin is a miss.
func (aabb AABB) Intersect(ray Ray) (hit bool, tMin, tMax float64) {
	if aabb.IsEmpty() {
		return false, 0, 0
	}

	tMin = math.Inf(-1)
	tMax = math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo := aabb.Min.Axis(axis)
		hi := aabb.Max.Axis(axis)
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)

		// Parallel to this slab: only the origin decides
		if math.Abs(direction) < parallelEpsilon {
			if origin < lo || origin > hi {
				return false, 0, 0
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false, 0, 0
		}
	}

	if tMax < 0 {
		return false, 0, 0
	}
	return true, tMin, tMax
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	if aabb.IsEmpty() {
		return Vec3{}
	}
	return aabb.Max.Subtract(aabb.Min)
}

// Area returns the surface area of the box. Empty boxes and boxes that are
// flat in two or more dimensions have zero area.
func (aabb AABB) Area() float64 {
	if aabb.IsEmpty() {
		return 0
	}
	size := aabb.Size()
	flat := 0
	for axis := 0; axis < 3; axis++ {
		if size.Axis(axis) <= 0 {
			flat++
		}
	}
	if flat >= 2 {
		return 0
	}
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}
