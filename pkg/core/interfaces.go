package core

// RayEpsilon is the minimum hit distance accepted by surfaces. Hits closer
// than this are treated as the ray re-hitting the surface it left.
const RayEpsilon = 1e-5

// NoHitT is the distance written into an Intersection when a query misses.
// It is only a fallback radius; the boolean returned next to the record is
// what tells a hit from a miss.
const NoHitT = 1000.0

// Intersection contains information about a ray-surface intersection.
// It is passed by value so a child query never modifies a parent's record.
type Intersection struct {
	T        float64  // Parameter t along the ray
	Normal   Vec3     // Unit surface normal at the hit point (world space)
	Bary     Vec3     // Barycentric weights for the triangle corners (triangle hits only)
	UV       Vec2     // Surface coordinates
	Surface  Surface  // Surface that was hit
	Material Material // Material of the hit surface
}

// Miss returns the record used for a query that hit nothing
func Miss() Intersection {
	return Intersection{T: NoHitT}
}

// Surface is implemented by everything a ray can hit: implicit primitives and
// mesh faces alike.
type Surface interface {
	// BoundingBox returns a box that fully contains the surface
	BoundingBox() AABB
	// Intersect returns the nearest hit with t > RayEpsilon
	Intersect(ray Ray) (Intersection, bool)
}

// Aggregate is a surface made of individually intersectable faces. The BVH
// can replace an aggregate with its faces to prune inside it.
type Aggregate interface {
	Surface
	Faces() []Surface
}

// Material computes the local color at a hit and the coefficients that drive
// recursive reflection and refraction.
type Material interface {
	Shade(scene Scene, ray Ray, isect Intersection) Vec3
	// Kr returns the reflective coefficient
	Kr(isect Intersection) Vec3
	// Kt returns the transmissive coefficient
	Kt(isect Intersection) Vec3
	// Index returns the refractive index
	Index(isect Intersection) float64
}

// Light is a source of direct illumination used by materials when shading
type Light interface {
	Color() Vec3
	// Direction returns the unit direction from point toward the light
	Direction(point Vec3) Vec3
	DistanceAttenuation(point Vec3) float64
	ShadowAttenuation(scene Scene, point Vec3) Vec3
}

// Scene is the read-only view of the world used while tracing
type Scene interface {
	Intersect(ray Ray) (Intersection, bool)
	Lights() []Light
	Ambient() Vec3
}

// Camera generates primary rays from normalized image coordinates
type Camera interface {
	// RayThrough returns the ray through (x, y), both in [0, 1], with y up
	RayThrough(x, y float64) Ray
	AspectRatio() float64
}

// Environment supplies a color for rays that leave the scene
type Environment interface {
	Color(ray Ray) Vec3
}

// Logger interface for raytracer logging
type Logger interface {
	Debugf(format string, args ...interface{})
}
