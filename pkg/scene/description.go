package scene

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

var (
	// ErrInvalidDescription is wrapped by every structural problem in a scene file
	ErrInvalidDescription = errors.New("invalid scene description")
	// ErrUnknownMaterial is returned for an object naming an undefined material
	ErrUnknownMaterial = errors.New("unknown material")
)

// Description is the YAML form of a scene
type Description struct {
	Name        string                         `yaml:"name"`
	Description string                         `yaml:"description"`
	Camera      *CameraDescription             `yaml:"camera"`
	Ambient     vector                         `yaml:"ambient"`
	Materials   map[string]MaterialDescription `yaml:"materials"`
	Objects     []ObjectDescription            `yaml:"objects"`
	Lights      []LightDescription             `yaml:"lights"`
}

// CameraDescription mirrors renderer.CameraConfig
type CameraDescription struct {
	Center      vector  `yaml:"center"`
	LookAt      vector  `yaml:"look_at"`
	Up          vector  `yaml:"up"`
	VFov        float64 `yaml:"vfov"`
	AspectRatio float64 `yaml:"aspect_ratio"`
}

// MaterialDescription describes a Phong material
type MaterialDescription struct {
	Emissive     vector  `yaml:"emissive"`
	Ambient      vector  `yaml:"ambient"`
	Diffuse      vector  `yaml:"diffuse"`
	Texture      string  `yaml:"texture"` // Image replacing the diffuse color
	Bilinear     bool    `yaml:"bilinear"`
	Specular     vector  `yaml:"specular"`
	Reflective   vector  `yaml:"reflective"`
	Transmissive vector  `yaml:"transmissive"`
	Shininess    float64 `yaml:"shininess"`
	Index        float64 `yaml:"index"`
}

// ObjectDescription describes a sphere, box, quad, square, disc, cylinder,
// cone or mesh. Angles are in degrees.
type ObjectDescription struct {
	Type     string `yaml:"type"`
	Material string `yaml:"material"`

	Center   vector  `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Size     vector  `yaml:"size"` // Box half-extents; square uses X and Y
	Rotation vector  `yaml:"rotation"`

	// Quads are a corner and two edges; discs a center, normal and radius
	Corner vector `yaml:"corner"`
	U      vector `yaml:"u"`
	V      vector `yaml:"v"`
	Normal vector `yaml:"normal"`

	// Cylinders and cones run from base to top. Radius is the base radius.
	Base      vector  `yaml:"base"`
	Top       vector  `yaml:"top"`
	TopRadius float64 `yaml:"top_radius"`
	Capped    bool    `yaml:"capped"`

	// Meshes come from a PLY or STL file, or inline data
	File        string   `yaml:"file"`
	Scale       vector   `yaml:"scale"`
	Translation vector   `yaml:"translation"`
	Smooth      bool     `yaml:"smooth"`
	Vertices    []vector `yaml:"vertices"`
	Normals     []vector `yaml:"normals"`
	Materials   []string `yaml:"materials"` // Per-vertex material names
	Faces       [][]int  `yaml:"faces"`
}

// LightDescription describes a point or directional light
type LightDescription struct {
	Type      string   `yaml:"type"`
	Color     vector   `yaml:"color"`
	Position  vector   `yaml:"position"`
	Direction vector   `yaml:"direction"`
	Constant  *float64 `yaml:"constant"`
	Linear    float64  `yaml:"linear"`
	Quadratic float64  `yaml:"quadratic"`
}

// vector accepts either [x, y, z] or a single number repeated on every axis
type vector core.Vec3

func (v *vector) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value float64
		if err := node.Decode(&value); err != nil {
			return err
		}
		*v = vector{value, value, value}
		return nil
	case yaml.SequenceNode:
		var values []float64
		if err := node.Decode(&values); err != nil {
			return err
		}
		if len(values) != 3 {
			return fmt.Errorf("line %d: vector needs 3 components, got %d: %w", node.Line, len(values), ErrInvalidDescription)
		}
		*v = vector{values[0], values[1], values[2]}
		return nil
	default:
		return fmt.Errorf("line %d: vector must be a number or a list: %w", node.Line, ErrInvalidDescription)
	}
}

func (v vector) vec3() core.Vec3 {
	return core.Vec3(v)
}

func radians(degrees vector) core.Vec3 {
	return degrees.vec3().Multiply(math.Pi / 180)
}

// LoadDescription reads a YAML scene file. Relative mesh and texture paths
// are resolved against the file's directory.
func LoadDescription(path string) (*Scene, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	s, err := ParseDescription(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	logger.Infof("loaded scene %s: %d surfaces, %d lights in %v", path, len(s.surfaces), len(s.lights), time.Since(start))
	return s, nil
}

// ParseDescription builds a scene from YAML data. Unknown keys are rejected.
func ParseDescription(data []byte, baseDir string) (*Scene, error) {
	var desc Description
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return desc.Build(baseDir)
}

// Build creates the scene the description names
func (d *Description) Build(baseDir string) (*Scene, error) {
	s := New(d.Name)
	s.SetAmbient(d.Ambient.vec3())

	if d.Camera != nil {
		s.CameraConfig = renderer.CameraConfig{
			Center:      d.Camera.Center.vec3(),
			LookAt:      d.Camera.LookAt.vec3(),
			Up:          d.Camera.Up.vec3(),
			VFov:        d.Camera.VFov,
			AspectRatio: d.Camera.AspectRatio,
		}
	}

	materials := make(map[string]core.Material, len(d.Materials))
	for name, md := range d.Materials {
		m, err := md.build(baseDir)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}

	for i, od := range d.Objects {
		surface, err := od.build(materials, baseDir)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, od.Type, err)
		}
		if err := s.Add(surface); err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, od.Type, err)
		}
	}

	for i, ld := range d.Lights {
		light, err := ld.build()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.AddLight(light)
	}
	return s, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func (md MaterialDescription) build(baseDir string) (*material.Phong, error) {
	m := &material.Phong{
		Emissive:        md.Emissive.vec3(),
		Ambient:         md.Ambient.vec3(),
		Diffuse:         material.NewSolidColor(md.Diffuse.vec3()),
		Specular:        md.Specular.vec3(),
		Reflective:      md.Reflective.vec3(),
		Transmissive:    md.Transmissive.vec3(),
		Shininess:       md.Shininess,
		RefractiveIndex: md.Index,
	}
	if m.Shininess <= 0 {
		m.Shininess = 1
	}
	if m.RefractiveIndex <= 0 {
		m.RefractiveIndex = 1
	}

	if md.Texture != "" {
		texture, err := loaders.LoadImage(resolvePath(baseDir, md.Texture))
		if err != nil {
			return nil, err
		}
		texture.Bilinear = md.Bilinear
		m.Diffuse = texture
	}
	return m, nil
}

// defaultMaterial shades objects that name no material
var defaultMaterial = material.NewPhong(core.NewVec3(0.7, 0.7, 0.7))

func (od ObjectDescription) build(materials map[string]core.Material, baseDir string) (core.Surface, error) {
	var mat core.Material = defaultMaterial
	if od.Material != "" {
		m, ok := materials[od.Material]
		if !ok {
			return nil, fmt.Errorf("%q: %w", od.Material, ErrUnknownMaterial)
		}
		mat = m
	}

	switch od.Type {
	case "sphere":
		if od.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive: %w", ErrInvalidDescription)
		}
		return geometry.NewSphere(od.Center.vec3(), od.Radius, mat), nil

	case "box":
		size := od.Size.vec3()
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, fmt.Errorf("box size must be positive: %w", ErrInvalidDescription)
		}
		return geometry.NewBox(od.Center.vec3(), size, radians(od.Rotation), mat), nil

	case "quad":
		quad := geometry.NewQuad(od.Corner.vec3(), od.U.vec3(), od.V.vec3(), mat)
		if quad.Normal().IsZero() {
			return nil, fmt.Errorf("quad edges must not be parallel: %w", ErrInvalidDescription)
		}
		return quad, nil

	case "square":
		if od.Size.X <= 0 || od.Size.Y <= 0 {
			return nil, fmt.Errorf("square size must be positive: %w", ErrInvalidDescription)
		}
		return geometry.NewSquare(od.Center.vec3(), od.Size.X, od.Size.Y, radians(od.Rotation), mat), nil

	case "disc":
		if od.Radius <= 0 || od.Normal.vec3().IsZero() {
			return nil, fmt.Errorf("disc needs a positive radius and a normal: %w", ErrInvalidDescription)
		}
		return geometry.NewDisc(od.Center.vec3(), od.Normal.vec3(), od.Radius, mat), nil

	case "cylinder":
		cylinder, err := geometry.NewCylinder(od.Base.vec3(), od.Top.vec3(), od.Radius, od.Capped, mat)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDescription, err)
		}
		return cylinder, nil

	case "cone":
		cone, err := geometry.NewCone(od.Base.vec3(), od.Radius, od.Top.vec3(), od.TopRadius, od.Capped, mat)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDescription, err)
		}
		return cone, nil

	case "mesh":
		data, err := od.meshData(baseDir)
		if err != nil {
			return nil, err
		}
		for _, name := range od.Materials {
			m, ok := materials[name]
			if !ok {
				return nil, fmt.Errorf("vertex material %q: %w", name, ErrUnknownMaterial)
			}
			data.Materials = append(data.Materials, m)
		}
		return loaders.BuildMesh(data, mat, loaders.MeshOptions{
			Scale:         od.Scale.vec3(),
			Rotation:      radians(od.Rotation),
			Translation:   od.Translation.vec3(),
			SmoothNormals: od.Smooth,
		})

	default:
		return nil, fmt.Errorf("unknown object type %q: %w", od.Type, ErrInvalidDescription)
	}
}

// meshData loads the mesh file or converts the inline data. Inline polygons
// with more than three corners are fanned.
func (od ObjectDescription) meshData(baseDir string) (*loaders.MeshData, error) {
	if od.File != "" {
		path := resolvePath(baseDir, od.File)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ply":
			return loaders.LoadPLY(path)
		case ".stl":
			return loaders.LoadSTL(path)
		default:
			return nil, fmt.Errorf("unsupported mesh file %q: %w", od.File, ErrInvalidDescription)
		}
	}

	data := &loaders.MeshData{}
	for _, v := range od.Vertices {
		data.Vertices = append(data.Vertices, v.vec3())
	}
	for _, n := range od.Normals {
		data.Normals = append(data.Normals, n.vec3())
	}
	for i, face := range od.Faces {
		if len(face) < 3 {
			return nil, fmt.Errorf("face %d has %d corners: %w", i, len(face), ErrInvalidDescription)
		}
		for k := 1; k+1 < len(face); k++ {
			data.Faces = append(data.Faces, [3]int{face[0], face[k], face[k+1]})
		}
	}
	if len(data.Faces) == 0 {
		return nil, fmt.Errorf("mesh has no file and no faces: %w", ErrInvalidDescription)
	}
	return data, nil
}

func (ld LightDescription) build() (lights.Light, error) {
	switch lights.LightType(ld.Type) {
	case lights.LightTypePoint:
		light := lights.NewPointLight(ld.Position.vec3(), ld.Color.vec3())
		if ld.Constant != nil {
			light.Constant = *ld.Constant
		}
		light.Linear = ld.Linear
		light.Quadratic = ld.Quadratic
		return light, nil

	case lights.LightTypeDirectional:
		if ld.Direction.vec3().IsZero() {
			return nil, fmt.Errorf("directional light needs a direction: %w", ErrInvalidDescription)
		}
		return lights.NewDirectionalLight(ld.Direction.vec3(), ld.Color.vec3()), nil

	default:
		return nil, fmt.Errorf("unknown light type %q: %w", ld.Type, ErrInvalidDescription)
	}
}

// DescriptionFiles returns path followed by every mesh and texture file the
// scene references. Watch mode re-renders when any of them changes.
func DescriptionFiles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse scene: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	files := []string{path}
	for _, md := range desc.Materials {
		if md.Texture != "" {
			files = append(files, resolvePath(baseDir, md.Texture))
		}
	}
	for _, od := range desc.Objects {
		if od.File != "" {
			files = append(files, resolvePath(baseDir, od.File))
		}
	}
	return files, nil
}
