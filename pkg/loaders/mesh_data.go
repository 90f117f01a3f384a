package loaders

import (
	"errors"
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/log"
)

var logger = log.New("loaders")

// ErrMalformed is wrapped by every parse error caused by bad file contents
var ErrMalformed = errors.New("malformed mesh file")

// MeshData is the format-independent result of loading a mesh file
type MeshData struct {
	Name     string
	Vertices []core.Vec3
	Normals  []core.Vec3 // Per-vertex normals, empty if the file has none
	Faces    [][3]int    // Triangles as vertex indices

	// Materials holds optional per-vertex materials
	Materials []core.Material
}

// MeshOptions controls how MeshData becomes a geometry.Mesh
type MeshOptions struct {
	Scale       core.Vec3 // Per-axis scale; zero means 1
	Rotation    core.Vec3 // Radians around X, Y, Z applied after scaling
	Translation core.Vec3 // Applied last

	// SmoothNormals generates averaged vertex normals when the file has none
	SmoothNormals bool
}

// transform applies scale, rotation and translation to a vertex
func (o MeshOptions) transform(v core.Vec3) core.Vec3 {
	scale := o.Scale
	if scale.IsZero() {
		scale = core.NewVec3(1, 1, 1)
	}
	return v.MultiplyVec(scale).Rotate(o.Rotation).Add(o.Translation)
}

// transformNormal rotates a normal and corrects it for non-uniform scale
func (o MeshOptions) transformNormal(n core.Vec3) core.Vec3 {
	scale := o.Scale
	if scale.IsZero() {
		scale = core.NewVec3(1, 1, 1)
	}
	inverse := core.NewVec3(safeInverse(scale.X), safeInverse(scale.Y), safeInverse(scale.Z))
	return n.MultiplyVec(inverse).Rotate(o.Rotation).Normalize()
}

func safeInverse(x float64) float64 {
	if x == 0 {
		return 1
	}
	return 1 / x
}

// BuildMesh feeds data through the mesh construction API and validates the
// result. Degenerate faces are dropped by the mesh itself.
func BuildMesh(data *MeshData, material core.Material, options MeshOptions) (*geometry.Mesh, error) {
	mesh := geometry.NewMesh(material)
	for _, v := range data.Vertices {
		mesh.AddVertex(options.transform(v))
	}
	for _, n := range data.Normals {
		mesh.AddNormal(options.transformNormal(n))
	}
	for _, m := range data.Materials {
		mesh.AddMaterial(m)
	}
	for i, face := range data.Faces {
		if err := mesh.AddFace(face[0], face[1], face[2]); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	if len(data.Normals) == 0 && options.SmoothNormals {
		mesh.GenerateNormals()
	}

	if dropped := len(data.Faces) - mesh.FaceCount(); dropped > 0 {
		logger.Debugf("mesh %q: dropped %d degenerate faces", data.Name, dropped)
	}
	return mesh, nil
}
