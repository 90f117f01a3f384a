package lights

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// PointLight emits from a single position with polynomial distance falloff
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3

	// Falloff is min(1, 1/(Constant + Linear·d + Quadratic·d²))
	Constant  float64
	Linear    float64
	Quadratic float64
}

// NewPointLight creates a point light with no distance falloff
func NewPointLight(position, color core.Vec3) *PointLight {
	return &PointLight{
		Position:  position,
		Intensity: color,
		Constant:  1,
	}
}

// Type returns the light type
func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Color returns the light color
func (pl *PointLight) Color() core.Vec3 {
	return pl.Intensity
}

// Direction returns the unit direction from point toward the light
func (pl *PointLight) Direction(point core.Vec3) core.Vec3 {
	return pl.Position.Subtract(point).Normalize()
}

// DistanceAttenuation returns the falloff factor at point, never above 1
func (pl *PointLight) DistanceAttenuation(point core.Vec3) float64 {
	d := pl.Position.Subtract(point).Length()
	denominator := pl.Constant + pl.Linear*d + pl.Quadratic*d*d
	if denominator <= 0 {
		return 1
	}
	return math.Min(1, 1/denominator)
}

// ShadowAttenuation casts a shadow ray toward the light. A blocker between
// point and the light lets through its transmissive coefficient; a hit beyond
// the light does not shadow.
func (pl *PointLight) ShadowAttenuation(scene core.Scene, point core.Vec3) core.Vec3 {
	ray := core.NewRayOfKind(point, pl.Direction(point), core.RayShadow)
	hit, ok := scene.Intersect(ray)
	if !ok {
		return core.NewVec3(1, 1, 1)
	}

	if hit.T < pl.Position.Subtract(point).Length() {
		return blockerTransmission(hit)
	}
	return core.NewVec3(1, 1, 1)
}
