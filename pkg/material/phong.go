package material

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Phong is the classic local illumination model with ideal mirror and
// refraction coefficients driving the recursive integrator
type Phong struct {
	Emissive        core.Vec3   // ke
	Ambient         core.Vec3   // ka
	Diffuse         ColorSource // kd, possibly textured
	Specular        core.Vec3   // ks
	Reflective      core.Vec3   // kr
	Transmissive    core.Vec3   // kt
	Shininess       float64
	RefractiveIndex float64
}

// NewPhong creates a diffuse-only Phong material
func NewPhong(diffuse core.Vec3) *Phong {
	return &Phong{
		Diffuse:         NewSolidColor(diffuse),
		Shininess:       1,
		RefractiveIndex: 1,
	}
}

// NewMirror creates a material that reflects everything
func NewMirror(reflective core.Vec3) *Phong {
	return &Phong{
		Diffuse:         NewSolidColor(core.Vec3{}),
		Reflective:      reflective,
		Shininess:       1,
		RefractiveIndex: 1,
	}
}

// NewGlass creates a transmissive material with a small specular highlight
func NewGlass(transmissive core.Vec3, index float64) *Phong {
	return &Phong{
		Diffuse:         NewSolidColor(core.Vec3{}),
		Specular:        core.NewVec3(0.3, 0.3, 0.3),
		Transmissive:    transmissive,
		Shininess:       64,
		RefractiveIndex: index,
	}
}

// Shade returns ke + ka⊙ambient plus, for each light,
// color·distance·shadow ⊙ (kd·max(N·L, 0) + ks·max(R·V, 0)^shininess)
func (p *Phong) Shade(scene core.Scene, ray core.Ray, isect core.Intersection) core.Vec3 {
	color := p.Emissive.Add(p.Ambient.MultiplyVec(scene.Ambient()))

	point := ray.At(isect.T)
	normal := isect.Normal
	view := ray.Direction.Normalize().Negate()
	diffuse := p.diffuse(isect)

	for _, light := range scene.Lights() {
		toLight := light.Direction(point)
		nDotL := normal.Dot(toLight)

		reflected := normal.Multiply(2 * nDotL).Subtract(toLight)
		specular := math.Pow(math.Max(reflected.Dot(view), 0), p.Shininess)

		local := diffuse.Multiply(math.Max(nDotL, 0)).Add(p.Specular.Multiply(specular))
		if local.IsZero() {
			continue
		}

		attenuation := light.ShadowAttenuation(scene, point).Multiply(light.DistanceAttenuation(point))
		color = color.Add(light.Color().MultiplyVec(attenuation).MultiplyVec(local))
	}
	return color
}

func (p *Phong) diffuse(isect core.Intersection) core.Vec3 {
	if p.Diffuse == nil {
		return core.Vec3{}
	}
	return p.Diffuse.Evaluate(isect.UV)
}

// Kr returns the reflective coefficient
func (p *Phong) Kr(isect core.Intersection) core.Vec3 {
	return p.Reflective
}

// Kt returns the transmissive coefficient
func (p *Phong) Kt(isect core.Intersection) core.Vec3 {
	return p.Transmissive
}

// Index returns the refractive index
func (p *Phong) Index(isect core.Intersection) float64 {
	return p.RefractiveIndex
}
