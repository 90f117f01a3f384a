package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

var (
	// ErrFaceIndexOutOfRange is returned by AddFace for an index that does not
	// reference an existing vertex
	ErrFaceIndexOutOfRange = errors.New("face vertex index out of range")
	// ErrNormalCount is returned by Validate when normals exist but their count
	// differs from the vertex count
	ErrNormalCount = errors.New("normal count does not match vertex count")
	// ErrMaterialCount is the per-vertex material equivalent of ErrNormalCount
	ErrMaterialCount = errors.New("material count does not match vertex count")
)

// degenerateArea is the cross product magnitude below which a face is
// considered to have zero area
const degenerateArea = 1e-12

// Mesh is a triangle mesh sharing vertex positions between its faces.
// Vertices, normals and materials are append-only; callers add them in their
// final order before adding faces.
type Mesh struct {
	vertices  []core.Vec3
	normals   []core.Vec3     // Empty, or one per vertex
	materials []core.Material // Empty, or one per vertex
	faces     []*Face
	material  core.Material // Material used by every face
	bbox      core.AABB     // Union of face bounding boxes
}

// NewMesh creates an empty mesh whose faces are shaded with material
func NewMesh(material core.Material) *Mesh {
	return &Mesh{material: material}
}

// AddVertex appends a vertex position and returns its index
func (m *Mesh) AddVertex(v core.Vec3) int {
	m.vertices = append(m.vertices, v)
	return len(m.vertices) - 1
}

// AddNormal appends a per-vertex normal. It is stored as given; faces
// normalize the blended normal at each hit.
func (m *Mesh) AddNormal(n core.Vec3) {
	m.normals = append(m.normals, n)
}

// AddMaterial appends a per-vertex material. Once any are added, a face hit
// takes the material of its nearest corner.
func (m *Mesh) AddMaterial(material core.Material) {
	m.materials = append(m.materials, material)
}

// AddFace adds the triangle (a, b, c). Indices must reference existing
// vertices. A zero-area face is silently discarded.
func (m *Mesh) AddFace(a, b, c int) error {
	for _, index := range [3]int{a, b, c} {
		if index < 0 || index >= len(m.vertices) {
			return fmt.Errorf("face (%d, %d, %d) with %d vertices: %w", a, b, c, len(m.vertices), ErrFaceIndexOutOfRange)
		}
	}

	face, ok := newFace(m, a, b, c)
	if !ok {
		return nil
	}
	m.faces = append(m.faces, face)
	m.bbox = m.bbox.Merge(face.bbox)
	return nil
}

// Validate checks that optional per-vertex data matches the vertex count. An
// invalid mesh must not be rendered.
func (m *Mesh) Validate() error {
	if len(m.normals) != 0 && len(m.normals) != len(m.vertices) {
		return fmt.Errorf("%d normals for %d vertices: %w", len(m.normals), len(m.vertices), ErrNormalCount)
	}
	if len(m.materials) != 0 && len(m.materials) != len(m.vertices) {
		return fmt.Errorf("%d materials for %d vertices: %w", len(m.materials), len(m.vertices), ErrMaterialCount)
	}
	return nil
}

// GenerateNormals replaces the per-vertex normals with the unweighted average
// of the flat normals of the faces touching each vertex. The average is not
// renormalized, so a vertex on a sharp fold gets a shorter normal and weighs
// less in the blend. A vertex used by no face gets a zero normal.
func (m *Mesh) GenerateNormals() {
	sums := make([]core.Vec3, len(m.vertices))
	counts := make([]int, len(m.vertices))

	for _, face := range m.faces {
		for _, index := range face.ids {
			sums[index] = sums[index].Add(face.normal)
			counts[index]++
		}
	}

	m.normals = make([]core.Vec3, len(m.vertices))
	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		m.normals[i] = sums[i].Multiply(1.0 / float64(counts[i]))
	}
}

// hasVertexNormals reports whether faces should interpolate vertex normals
func (m *Mesh) hasVertexNormals() bool {
	return len(m.normals) > 0 && len(m.normals) == len(m.vertices)
}

// Faces returns the faces as independent surfaces, used by the BVH to explode
// the mesh
func (m *Mesh) Faces() []core.Surface {
	surfaces := make([]core.Surface, len(m.faces))
	for i, face := range m.faces {
		surfaces[i] = face
	}
	return surfaces
}

// FaceCount returns the number of non-degenerate faces
func (m *Mesh) FaceCount() int {
	return len(m.faces)
}

// Vertices returns the vertex positions
func (m *Mesh) Vertices() []core.Vec3 {
	return m.vertices
}

// Normals returns the per-vertex normals (may be empty)
func (m *Mesh) Normals() []core.Vec3 {
	return m.normals
}

// Materials returns the per-vertex materials (may be empty)
func (m *Mesh) Materials() []core.Material {
	return m.materials
}

// Material returns the material shared by all faces
func (m *Mesh) Material() core.Material {
	return m.material
}

// BoundingBox returns the union of the face bounding boxes
func (m *Mesh) BoundingBox() core.AABB {
	return m.bbox
}

// Intersect scans every face and returns the nearest hit. The BVH is the
// fast path; this serves meshes that were not exploded.
func (m *Mesh) Intersect(ray core.Ray) (core.Intersection, bool) {
	closest := core.Miss()
	hitAnything := false
	for _, face := range m.faces {
		if hit, ok := face.Intersect(ray); ok && (!hitAnything || hit.T < closest.T) {
			closest, hitAnything = hit, true
		}
	}
	return closest, hitAnything
}
