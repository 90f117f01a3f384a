package lights

import "github.com/df07/go-recursive-raytracer/pkg/core"

type LightType string

const (
	LightTypePoint       LightType = "point"
	LightTypeDirectional LightType = "directional"
)

// Light is a core.Light that also reports its kind, used when describing
// scenes
type Light interface {
	core.Light
	Type() LightType
}

// blockerTransmission returns how much light passes a blocker: its
// transmissive coefficient, or black for a blocker without a material
func blockerTransmission(hit core.Intersection) core.Vec3 {
	if hit.Material == nil {
		return core.Vec3{}
	}
	return hit.Material.Kt(hit)
}
