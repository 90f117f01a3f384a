package integrator

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// DefaultThresholdFraction scales the termination threshold into the minimum
// branch weight worth following
const DefaultThresholdFraction = 0.001

// Config controls recursion and termination
type Config struct {
	MaxDepth          int     // Recursion budget for primary rays
	Threshold         float64 // Termination threshold
	ThresholdFraction float64 // Fraction of Threshold below which a branch is dropped

	// Environment is queried for rays that leave the scene. Nil means black.
	Environment core.Environment
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		MaxDepth:          5,
		Threshold:         0,
		ThresholdFraction: DefaultThresholdFraction,
	}
}

// WhittedIntegrator implements classic recursive ray tracing: local shading
// plus mirror reflection and Snell refraction. It holds no mutable state, so
// one instance is shared by every render worker.
type WhittedIntegrator struct {
	scene  core.Scene
	config Config
}

// NewWhittedIntegrator creates a new Whitted integrator over scene
func NewWhittedIntegrator(scene core.Scene, config Config) *WhittedIntegrator {
	if config.ThresholdFraction <= 0 {
		config.ThresholdFraction = DefaultThresholdFraction
	}
	return &WhittedIntegrator{scene: scene, config: config}
}

// Config returns the integrator configuration
func (w *WhittedIntegrator) Config() Config {
	return w.config
}

// minWeight is the branch weight magnitude below which recursion stops
func (w *WhittedIntegrator) minWeight() float64 {
	return w.config.Threshold * w.config.ThresholdFraction
}

// TraceRay returns the color seen along ray. The result is not clamped.
func (w *WhittedIntegrator) TraceRay(ray core.Ray, depth int, weight core.Vec3) core.Vec3 {
	if depth < 0 {
		return core.Vec3{}
	}

	hit, isHit := w.scene.Intersect(ray)
	if !isHit {
		return w.background(ray)
	}
	if hit.Material == nil {
		return core.Vec3{}
	}

	material := hit.Material
	color := material.Shade(w.scene, ray, hit)

	point := ray.At(hit.T)
	normal := hit.Normal
	view := ray.Direction.Normalize().Negate()

	if kr := material.Kr(hit); !kr.IsZero() {
		color = color.Add(w.reflect(point, normal, view, kr, depth, weight))
	}

	if kt := material.Kt(hit); !kt.IsZero() {
		color = color.Add(w.refract(point, normal, view, kt, material.Index(hit), depth, weight))
	}

	return color
}

// reflect follows the mirror direction R = 2N(N·V) − V
func (w *WhittedIntegrator) reflect(point, normal, view, kr core.Vec3, depth int, weight core.Vec3) core.Vec3 {
	branchWeight := kr.MultiplyVec(weight)
	if branchWeight.Length() < w.minWeight() {
		return core.Vec3{}
	}

	direction := normal.Multiply(2 * normal.Dot(view)).Subtract(view)
	reflected := core.NewRayOfKind(point, direction, core.RayReflection)
	return kr.MultiplyVec(w.TraceRay(reflected, depth-1, branchWeight))
}

// refract follows the transmitted direction from Snell's law. Total internal
// reflection contributes nothing; no internal reflection ray is spawned.
func (w *WhittedIntegrator) refract(point, normal, view, kt core.Vec3, index float64, depth int, weight core.Vec3) core.Vec3 {
	// Entering when the view vector is on the normal's side
	eta := index
	if view.Dot(normal) > 0 {
		eta = 1.0 / index
	} else {
		normal = normal.Negate()
	}

	tangential := normal.Multiply(normal.Dot(view)).Subtract(view)
	transmittedTangential := tangential.Multiply(eta)
	discriminant := 1.0 - transmittedTangential.Dot(transmittedTangential)
	if discriminant <= 0 || math.IsNaN(discriminant) {
		return core.Vec3{}
	}

	branchWeight := kt.MultiplyVec(weight)
	if branchWeight.Length() < w.minWeight() {
		return core.Vec3{}
	}

	direction := transmittedTangential.Subtract(normal.Multiply(math.Sqrt(discriminant)))
	refracted := core.NewRayOfKind(point, direction, core.RayRefraction)
	return kt.MultiplyVec(w.TraceRay(refracted, depth-1, branchWeight))
}

// background returns the color for a ray that hit nothing
func (w *WhittedIntegrator) background(ray core.Ray) core.Vec3 {
	if w.config.Environment != nil {
		return w.config.Environment.Color(ray)
	}
	return core.Vec3{}
}
