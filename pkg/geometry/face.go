package geometry

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Face is one triangle of a Mesh. It references its corners by index into the
// mesh's shared vertex arrays.
type Face struct {
	mesh   *Mesh
	ids    [3]int
	normal core.Vec3 // Flat unit normal (A−C)×(B−C)
	bbox   core.AABB
}

// newFace builds the face (a, b, c) of mesh, reporting false when it is
// degenerate
func newFace(mesh *Mesh, a, b, c int) (*Face, bool) {
	va, vb, vc := mesh.vertices[a], mesh.vertices[b], mesh.vertices[c]
	cross := va.Subtract(vc).Cross(vb.Subtract(vc))
	if cross.Length() <= degenerateArea {
		return nil, false
	}
	return &Face{
		mesh:   mesh,
		ids:    [3]int{a, b, c},
		normal: cross.Normalize(),
		bbox:   core.NewAABBFromPoints(va, vb, vc),
	}, true
}

// Indices returns the three vertex indices of the face
func (f *Face) Indices() [3]int {
	return f.ids
}

// Normal returns the flat face normal
func (f *Face) Normal() core.Vec3 {
	return f.normal
}

// BoundingBox returns the bounding box of the three corners
func (f *Face) BoundingBox() core.AABB {
	return f.bbox
}

// Intersect intersects the ray with the face's plane and keeps the hit only if
// all three barycentric weights are non-negative
func (f *Face) Intersect(ray core.Ray) (core.Intersection, bool) {
	a := f.mesh.vertices[f.ids[0]]
	b := f.mesh.vertices[f.ids[1]]
	c := f.mesh.vertices[f.ids[2]]
	n := f.normal

	nd := n.Dot(ray.Direction)
	if nd == 0 {
		return core.Miss(), false
	}

	t := n.Dot(a.Subtract(ray.Origin)) / nd
	if t <= core.RayEpsilon {
		return core.Miss(), false
	}
	q := ray.At(t)

	// Each weight is the signed doubled area of the sub-triangle opposite its corner
	gamma := n.Dot(b.Subtract(a).Cross(q.Subtract(a)))
	if gamma < 0 {
		return core.Miss(), false
	}
	alpha := n.Dot(c.Subtract(b).Cross(q.Subtract(b)))
	if alpha < 0 {
		return core.Miss(), false
	}
	beta := n.Dot(a.Subtract(c).Cross(q.Subtract(c)))
	if beta < 0 {
		return core.Miss(), false
	}

	sum := alpha + beta + gamma
	if sum == 0 {
		return core.Miss(), false
	}
	alpha, beta, gamma = alpha/sum, beta/sum, gamma/sum

	normal := n
	if f.mesh.hasVertexNormals() {
		blended := f.mesh.normals[f.ids[0]].Multiply(alpha).
			Add(f.mesh.normals[f.ids[1]].Multiply(beta)).
			Add(f.mesh.normals[f.ids[2]].Multiply(gamma))
		if !blended.IsZero() {
			normal = blended.Normalize()
		}
	}

	return core.Intersection{
		T:        t,
		Normal:   normal,
		Bary:     core.NewVec3(alpha, beta, gamma),
		UV:       core.NewVec2(alpha, beta),
		Surface:  f,
		Material: f.materialAt(alpha, beta, gamma),
	}, true
}

// materialAt returns the mesh material, or with per-vertex materials the one
// belonging to the corner with the largest weight
func (f *Face) materialAt(alpha, beta, gamma float64) core.Material {
	if len(f.mesh.materials) == 0 {
		return f.mesh.material
	}
	corner := 0
	if beta > alpha {
		corner = 1
	}
	if gamma > alpha && gamma > beta {
		corner = 2
	}
	return f.mesh.materials[f.ids[corner]]
}
