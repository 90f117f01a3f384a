package lights

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// DirectionalLight is infinitely far away and shines along a fixed direction
type DirectionalLight struct {
	Orientation core.Vec3 // Unit direction the light travels
	Intensity   core.Vec3
}

// NewDirectionalLight creates a light travelling along orientation
func NewDirectionalLight(orientation, color core.Vec3) *DirectionalLight {
	return &DirectionalLight{
		Orientation: orientation.Normalize(),
		Intensity:   color,
	}
}

// Type returns the light type
func (dl *DirectionalLight) Type() LightType {
	return LightTypeDirectional
}

// Color returns the light color
func (dl *DirectionalLight) Color() core.Vec3 {
	return dl.Intensity
}

// Direction returns the direction toward the light, the same everywhere
func (dl *DirectionalLight) Direction(point core.Vec3) core.Vec3 {
	return dl.Orientation.Negate()
}

// DistanceAttenuation is always 1 for a light at infinity
func (dl *DirectionalLight) DistanceAttenuation(point core.Vec3) float64 {
	return 1
}

// ShadowAttenuation returns the transmissive coefficient of any blocker
// toward the light, or white when nothing is in the way
func (dl *DirectionalLight) ShadowAttenuation(scene core.Scene, point core.Vec3) core.Vec3 {
	ray := core.NewRayOfKind(point, dl.Direction(point), core.RayShadow)
	if hit, ok := scene.Intersect(ray); ok {
		return blockerTransmission(hit)
	}
	return core.NewVec3(1, 1, 1)
}
