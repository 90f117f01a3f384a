package lights

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

type tintedMaterial struct{ kt core.Vec3 }

func (m *tintedMaterial) Shade(core.Scene, core.Ray, core.Intersection) core.Vec3 { return core.Vec3{} }
func (m *tintedMaterial) Kr(core.Intersection) core.Vec3 { return core.Vec3{} }
func (m *tintedMaterial) Kt(core.Intersection) core.Vec3 { return m.kt }
func (m *tintedMaterial) Index(core.Intersection) float64 { return 1 }

// blockerScene reports a hit at distance t for every ray, or nothing if t is 0
type blockerScene struct {
	t        float64
	material core.Material
	rays     []core.Ray
}

func (s *blockerScene) Intersect(ray core.Ray) (core.Intersection, bool) {
	s.rays = append(s.rays, ray)
	if s.t == 0 {
		return core.Miss(), false
	}
	return core.Intersection{T: s.t, Material: s.material}, true
}
func (s *blockerScene) Lights() []core.Light { return nil }
func (s *blockerScene) Ambient() core.Vec3 { return core.Vec3{} }

var white = core.NewVec3(1, 1, 1)

func TestPointLight_DistanceAttenuation(t *testing.T) {
	tests := []struct {
		name                        string
		constant, linear, quadratic float64
		expected                    float64
	}{
		{"No falloff", 1, 0, 0, 1},
		{"Linear", 0, 0.5, 0, 0.5},
		{"Quadratic", 0, 0, 0.25, 0.25},
		{"Mixed", 1, 1, 1, 1.0 / 7.0},
		{"Capped at one", 0.1, 0, 0, 1},
		{"Zero terms", 0, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			light := NewPointLight(core.NewVec3(0, 2, 0), white)
			light.Constant, light.Linear, light.Quadratic = tt.constant, tt.linear, tt.quadratic
			assert.InDelta(t, tt.expected, light.DistanceAttenuation(core.Vec3{}), 1e-12)
		})
	}
}

func TestPointLight_Direction(t *testing.T) {
	light := NewPointLight(core.NewVec3(3, 4, 0), white)
	direction := light.Direction(core.Vec3{})
	assert.InDelta(t, 0.6, direction.X, 1e-12)
	assert.InDelta(t, 0.8, direction.Y, 1e-12)
	assert.Equal(t, LightTypePoint, light.Type())
}

func TestPointLight_ShadowAttenuation(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 10, 0), white)
	glass := &tintedMaterial{kt: core.NewVec3(0.5, 0.6, 0.7)}

	tests := []struct {
		name     string
		scene    *blockerScene
		expected core.Vec3
	}{
		{"Unblocked", &blockerScene{}, white},
		{"Opaque blocker before the light", &blockerScene{t: 4, material: &tintedMaterial{}}, core.Vec3{}},
		{"Transparent blocker before the light", &blockerScene{t: 4, material: glass}, glass.kt},
		{"Blocker beyond the light", &blockerScene{t: 12, material: &tintedMaterial{}}, white},
		{"Blocker without material", &blockerScene{t: 4}, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, light.ShadowAttenuation(tt.scene, core.Vec3{}))
			assert.Len(t, tt.scene.rays, 1)
			assert.Equal(t, core.RayShadow, tt.scene.rays[0].Kind)
			assert.Equal(t, core.NewVec3(0, 1, 0), tt.scene.rays[0].Direction)
		})
	}
}

func TestDirectionalLight(t *testing.T) {
	light := NewDirectionalLight(core.NewVec3(0, -2, 0), core.NewVec3(1, 0.9, 0.8))

	assert.Equal(t, core.NewVec3(0, 1, 0), light.Direction(core.NewVec3(5, 5, 5)))
	assert.Equal(t, 1.0, light.DistanceAttenuation(core.NewVec3(1e6, 0, 0)))
	assert.Equal(t, core.NewVec3(1, 0.9, 0.8), light.Color())
	assert.Equal(t, LightTypeDirectional, light.Type())

	glass := &tintedMaterial{kt: core.NewVec3(0.2, 0.2, 0.2)}
	assert.Equal(t, white, light.ShadowAttenuation(&blockerScene{}, core.Vec3{}))
	assert.Equal(t, glass.kt, light.ShadowAttenuation(&blockerScene{t: math.MaxFloat64, material: glass}, core.Vec3{}))
}
