package scene

import (
	"math"
	"sort"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

type builtin struct {
	info  SceneInfo
	build func() (*Scene, error)
}

var builtins = map[string]builtin{
	"default": {
		info:  SceneInfo{DisplayName: "Default Scene", Description: "Diffuse, mirror and glass spheres on a ground slab"},
		build: NewDefaultScene,
	},
	"cornell": {
		info:  SceneInfo{DisplayName: "Cornell Box", Description: "Cornell box with a mirror sphere and a glass sphere"},
		build: NewCornellScene,
	},
	"sphere-grid": {
		info:  SceneInfo{DisplayName: "Sphere Grid", Description: "10x10 grid of glossy spheres in OKLCH colors"},
		build: NewSphereGridScene,
	},
	"meshes": {
		info:  SceneInfo{DisplayName: "Triangle Meshes", Description: "Box, pyramid and smooth icosahedron meshes"},
		build: NewMeshScene,
	},
	"primitives": {
		info:  SceneInfo{DisplayName: "Primitives", Description: "Cylinders, cones, discs and quads on a disc floor"},
		build: NewPrimitivesScene,
	},
}

// Builtins lists the built-in scenes sorted by ID
func Builtins() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for id, b := range builtins {
		info := b.info
		info.ID = id
		info.Type = TypeBuiltin
		scenes = append(scenes, info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// newGroundSlab creates a thin box whose top face lies at y = height
func newGroundSlab(center core.Vec3, halfSize float64, m core.Material) *geometry.Box {
	return geometry.NewAxisAlignedBox(center.Subtract(core.NewVec3(0, 0.5, 0)), core.NewVec3(halfSize, 0.5, halfSize), m)
}

// addAll adds surfaces, stopping at the first rejected one
func (s *Scene) addAll(surfaces ...core.Surface) error {
	for _, surface := range surfaces {
		if err := s.Add(surface); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene() (*Scene, error) {
	s := New("default")
	s.CameraConfig = renderer.CameraConfig{
		Center:      core.NewVec3(0, 0.75, 2),
		LookAt:      core.NewVec3(0, 0.5, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 16.0 / 9.0,
	}
	s.SetAmbient(core.NewVec3(0.2, 0.2, 0.25))

	ground := material.NewPhong(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	ground.Ambient = core.NewVec3(0.3, 0.3, 0.3)

	red := material.NewPhong(core.NewVec3(0.65, 0.25, 0.2))
	red.Ambient = core.NewVec3(0.2, 0.1, 0.1)
	red.Specular = core.NewVec3(0.5, 0.5, 0.5)
	red.Shininess = 32
	red.Reflective = core.NewVec3(0.1, 0.1, 0.1)

	blue := material.NewPhong(core.NewVec3(0.1, 0.2, 0.5))
	blue.Ambient = core.NewVec3(0.05, 0.1, 0.2)

	gold := material.NewPhong(core.NewVec3(0.4, 0.3, 0.1))
	gold.Specular = core.NewVec3(0.8, 0.6, 0.2)
	gold.Shininess = 64
	gold.Reflective = core.NewVec3(0.5, 0.4, 0.15)

	silver := material.NewMirror(core.NewVec3(0.8, 0.8, 0.8))
	glass := material.NewGlass(core.NewVec3(0.9, 0.9, 0.9), 1.5)

	err := s.addAll(
		newGroundSlab(core.Vec3{}, 50, ground),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),
		// Glass shell around a small blue sphere
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.15, blue),
	)
	if err != nil {
		return nil, err
	}

	sun := lights.NewPointLight(core.NewVec3(30, 30.5, 15), core.NewVec3(0.9, 0.85, 0.8))
	s.AddLight(sun)
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(-1, -1, -0.5), core.NewVec3(0.3, 0.3, 0.35)))
	return s, nil
}

// NewCornellScene creates a classic Cornell box with box walls and a
// ceiling point light
func NewCornellScene() (*Scene, error) {
	s := New("cornell")
	s.CameraConfig = renderer.CameraConfig{
		Center:      core.NewVec3(278, 278, -800),
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 1,
	}
	s.SetAmbient(core.NewVec3(0.1, 0.1, 0.1))

	wall := func(diffuse core.Vec3) *material.Phong {
		m := material.NewPhong(diffuse)
		m.Ambient = diffuse
		return m
	}
	white := wall(core.NewVec3(0.73, 0.73, 0.73))
	red := wall(core.NewVec3(0.65, 0.05, 0.05))
	green := wall(core.NewVec3(0.12, 0.45, 0.15))

	// Standard 555 unit box built from 5 unit thick slabs
	const size = 555.0
	const half = size / 2
	const thickness = 5.0
	err := s.addAll(
		geometry.NewAxisAlignedBox(core.NewVec3(half, -thickness, half), core.NewVec3(half, thickness, half), white),
		geometry.NewAxisAlignedBox(core.NewVec3(half, size+thickness, half), core.NewVec3(half, thickness, half), white),
		geometry.NewAxisAlignedBox(core.NewVec3(half, half, size+thickness), core.NewVec3(half, half, thickness), white),
		geometry.NewAxisAlignedBox(core.NewVec3(-thickness, half, half), core.NewVec3(thickness, half, half), red),
		geometry.NewAxisAlignedBox(core.NewVec3(size+thickness, half, half), core.NewVec3(thickness, half, half), green),
		geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, material.NewMirror(core.NewVec3(0.8, 0.8, 0.9))),
		geometry.NewSphere(core.NewVec3(370, 90, 351), 90, material.NewGlass(core.NewVec3(0.95, 0.95, 0.95), 1.5)),
		geometry.NewBox(core.NewVec3(400, 40, 150), core.NewVec3(40, 40, 40), core.NewVec3(0, math.Pi/8, 0), white),
	)
	if err != nil {
		return nil, err
	}

	light := lights.NewPointLight(core.NewVec3(half, size-20, half), core.NewVec3(1, 1, 1))
	light.Linear = 0.001
	s.AddLight(light)
	return s, nil
}

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, cubed
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b
	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a scene with a 10x10 grid of spheres. The
// surface count makes it a useful tree benchmark.
func NewSphereGridScene() (*Scene, error) {
	s := New("sphere-grid")
	s.CameraConfig = renderer.CameraConfig{
		Center:      core.NewVec3(4.5, 6, 18),
		LookAt:      core.NewVec3(4.5, 0.8, 4.5),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 16.0 / 9.0,
	}
	s.SetAmbient(core.NewVec3(0.15, 0.15, 0.15))

	ground := material.NewPhong(core.NewVec3(0.5, 0.5, 0.5))
	ground.Ambient = core.NewVec3(0.5, 0.5, 0.5)
	ground.Reflective = core.NewVec3(0.2, 0.2, 0.2)
	if err := s.Add(newGroundSlab(core.NewVec3(4.5, 0, 4.5), 30, ground)); err != nil {
		return nil, err
	}

	const gridSize = 10
	const targetArea = 9.0
	spacing := targetArea / float64(gridSize-1)
	radius := spacing * 0.35

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			// Hue varies across X, chroma across Z
			hue := float64(i) / float64(gridSize-1) * 360.0
			chroma := 0.05 + float64(j)/float64(gridSize-1)*0.2
			lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			m := material.NewPhong(color)
			m.Ambient = color.Multiply(0.3)
			m.Specular = core.NewVec3(0.6, 0.6, 0.6)
			m.Shininess = 48
			m.Reflective = color.Multiply(0.1 + 0.1*float64((i+j)%3))

			if err := s.Add(geometry.NewSphere(core.NewVec3(x, radius, z), radius, m)); err != nil {
				return nil, err
			}
		}
	}

	s.AddLight(lights.NewPointLight(core.NewVec3(20, 25, 20), core.NewVec3(1, 0.96, 0.9)))
	return s, nil
}

// NewMeshScene creates a scene showcasing triangle mesh geometry
func NewMeshScene() (*Scene, error) {
	s := New("meshes")
	s.CameraConfig = renderer.CameraConfig{
		Center:      core.NewVec3(0, 2, 6),
		LookAt:      core.NewVec3(0, 1, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        45,
		AspectRatio: 16.0 / 9.0,
	}
	s.SetAmbient(core.NewVec3(0.2, 0.2, 0.2))

	ground := material.NewPhong(core.NewVec3(0.8, 0.8, 0.8))
	ground.Ambient = core.NewVec3(0.4, 0.4, 0.4)

	red := material.NewPhong(core.NewVec3(0.8, 0.2, 0.2))
	red.Specular = core.NewVec3(0.4, 0.4, 0.4)
	red.Shininess = 16
	red.Reflective = core.NewVec3(0.2, 0.05, 0.05)

	blue := material.NewPhong(core.NewVec3(0.2, 0.3, 0.8))
	blue.Ambient = core.NewVec3(0.1, 0.1, 0.3)

	gold := material.NewPhong(core.NewVec3(0.5, 0.35, 0.1))
	gold.Specular = core.NewVec3(0.9, 0.7, 0.3)
	gold.Shininess = 64
	gold.Reflective = core.NewVec3(0.4, 0.3, 0.1)

	meshes := []struct {
		data    *loaders.MeshData
		options loaders.MeshOptions
		mat     core.Material
	}{
		{boxMeshData(core.NewVec3(1, 1, 1)), loaders.MeshOptions{Rotation: core.NewVec3(0, math.Pi/6, 0), Translation: core.NewVec3(-2, 0.5, 0)}, red},
		{pyramidMeshData(1.5, 2.0), loaders.MeshOptions{Rotation: core.NewVec3(0, math.Pi/4, 0), Translation: core.NewVec3(0, 1, 0)}, blue},
		{icosahedronMeshData(0.8), loaders.MeshOptions{Rotation: core.NewVec3(0, math.Pi/3, 0), Translation: core.NewVec3(2, 0.8, 0), SmoothNormals: true}, gold},
	}

	if err := s.Add(newGroundSlab(core.Vec3{}, 20, ground)); err != nil {
		return nil, err
	}
	for _, m := range meshes {
		mesh, err := loaders.BuildMesh(m.data, m.mat, m.options)
		if err != nil {
			return nil, err
		}
		if err := s.Add(mesh); err != nil {
			return nil, err
		}
	}

	s.AddLight(lights.NewPointLight(core.NewVec3(2, 6, 3), core.NewVec3(0.8, 0.75, 0.7)))
	s.AddLight(lights.NewPointLight(core.NewVec3(-3, 4, 2), core.NewVec3(0.3, 0.35, 0.4)))
	return s, nil
}

// NewPrimitivesScene creates a scene with capped and open cylinders, a cone,
// a glass frustum, a mirror quad and a disc floor
func NewPrimitivesScene() (*Scene, error) {
	s := New("primitives")
	s.CameraConfig = renderer.CameraConfig{
		Center:      core.NewVec3(0, 1.5, 4),
		LookAt:      core.NewVec3(0, 0.8, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        50,
		AspectRatio: 16.0 / 9.0,
	}
	s.SetAmbient(core.NewVec3(0.2, 0.2, 0.2))

	gray := material.NewPhong(core.NewVec3(0.5, 0.5, 0.5))
	gray.Ambient = core.NewVec3(0.3, 0.3, 0.3)

	red := material.NewPhong(core.NewVec3(0.8, 0.2, 0.2))
	red.Specular = core.NewVec3(0.5, 0.5, 0.5)
	red.Shininess = 32

	blue := material.NewPhong(core.NewVec3(0.2, 0.2, 0.8))
	blue.Ambient = core.NewVec3(0.05, 0.05, 0.2)

	gold := material.NewPhong(core.NewVec3(0.4, 0.3, 0.1))
	gold.Specular = core.NewVec3(0.8, 0.6, 0.2)
	gold.Shininess = 64
	gold.Reflective = core.NewVec3(0.5, 0.4, 0.15)

	mirror := material.NewMirror(core.NewVec3(0.85, 0.85, 0.9))
	glass := material.NewGlass(core.NewVec3(0.95, 0.95, 0.95), 1.5)

	// Right: tall capped cylinder
	tower, err := geometry.NewCylinder(core.NewVec3(1.8, 0, 0), core.NewVec3(1.8, 2, 0), 0.5, true, red)
	if err != nil {
		return nil, err
	}
	// Left: open gold tube lying on its side, angled toward the camera
	tube, err := geometry.NewCylinder(core.NewVec3(-2.2, 0.35, -0.8), core.NewVec3(-1.4, 0.35, 0.6), 0.35, false, gold)
	if err != nil {
		return nil, err
	}
	// Center: pointed cone and a glass frustum in front of it
	cone, err := geometry.NewCone(core.NewVec3(0, 0, -0.5), 0.8, core.NewVec3(0, 1.6, -0.5), 0, true, blue)
	if err != nil {
		return nil, err
	}
	frustum, err := geometry.NewCone(core.NewVec3(0.6, 0, 1), 0.35, core.NewVec3(0.6, 0.5, 1), 0.2, true, glass)
	if err != nil {
		return nil, err
	}

	err = s.addAll(
		geometry.NewDisc(core.Vec3{}, core.NewVec3(0, 1, 0), 20, gray),
		tower,
		tube,
		cone,
		frustum,
		// Mirror panel behind the shapes
		geometry.NewSquare(core.NewVec3(0, 1.2, -2.5), 2.5, 1.2, core.NewVec3(0, 0, 0), mirror),
		// Red tile leaning against the tower
		geometry.NewQuad(core.NewVec3(0.9, 0, 0.6), core.NewVec3(0.6, 0, 0), core.NewVec3(0, 0.6, -0.25), red),
		// Floating disc facing the camera
		geometry.NewDisc(core.NewVec3(-1.2, 1.6, 0), core.NewVec3(0.3, 0, 1), 0.3, gold),
	)
	if err != nil {
		return nil, err
	}

	s.AddLight(lights.NewPointLight(core.NewVec3(4, 6, 4), core.NewVec3(0.9, 0.85, 0.8)))
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(1, -1, -0.5), core.NewVec3(0.25, 0.25, 0.3)))
	return s, nil
}

// Mesh builders wind faces counterclockwise seen from outside, so flat
// normals point outward.

// boxMeshData creates a box of the given full size centered at the origin
func boxMeshData(size core.Vec3) *loaders.MeshData {
	h := size.Multiply(0.5)
	return &loaders.MeshData{
		Name: "box",
		Vertices: []core.Vec3{
			core.NewVec3(-h.X, -h.Y, -h.Z), // 0: left-bottom-back
			core.NewVec3(+h.X, -h.Y, -h.Z), // 1: right-bottom-back
			core.NewVec3(+h.X, +h.Y, -h.Z), // 2: right-top-back
			core.NewVec3(-h.X, +h.Y, -h.Z), // 3: left-top-back
			core.NewVec3(-h.X, -h.Y, +h.Z), // 4: left-bottom-front
			core.NewVec3(+h.X, -h.Y, +h.Z), // 5: right-bottom-front
			core.NewVec3(+h.X, +h.Y, +h.Z), // 6: right-top-front
			core.NewVec3(-h.X, +h.Y, +h.Z), // 7: left-top-front
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // back
			{4, 5, 6}, {4, 6, 7}, // front
			{0, 7, 3}, {0, 4, 7}, // left
			{1, 6, 5}, {1, 2, 6}, // right
			{0, 5, 4}, {0, 1, 5}, // bottom
			{3, 6, 2}, {3, 7, 6}, // top
		},
	}
}

// pyramidMeshData creates a square pyramid centered at the origin
func pyramidMeshData(baseSize, height float64) *loaders.MeshData {
	b := baseSize * 0.5
	h := height * 0.5
	return &loaders.MeshData{
		Name: "pyramid",
		Vertices: []core.Vec3{
			core.NewVec3(-b, -h, -b), // 0: left-back
			core.NewVec3(+b, -h, -b), // 1: right-back
			core.NewVec3(+b, -h, +b), // 2: right-front
			core.NewVec3(-b, -h, +b), // 3: left-front
			core.NewVec3(0, +h, 0),   // 4: apex
		},
		Faces: [][3]int{
			{0, 1, 2}, {0, 2, 3},
			{0, 4, 1}, {1, 4, 2}, {2, 4, 3}, {3, 4, 0},
		},
	}
}

// icosahedronMeshData creates a 20-sided polyhedron with the given
// circumradius
func icosahedronMeshData(radius float64) *loaders.MeshData {
	phi := (1.0 + math.Sqrt(5)) / 2.0
	scale := radius / math.Sqrt(1+phi*phi)

	raw := []core.Vec3{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	vertices := make([]core.Vec3, len(raw))
	for i, v := range raw {
		vertices[i] = v.Multiply(scale)
	}

	return &loaders.MeshData{
		Name:     "icosahedron",
		Vertices: vertices,
		Faces: [][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
	}
}
