package material

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Cube map face order
const (
	FacePositiveX = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

// FaceNames lists the face suffixes in face order
var FaceNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

// CubeMap is an environment made of six images around the scene. Faces that
// are nil render black.
type CubeMap struct {
	Faces [6]ColorSource
}

// NewCubeMap creates a cube map from faces in +x, -x, +y, -y, +z, -z order
func NewCubeMap(faces [6]ColorSource) *CubeMap {
	return &CubeMap{Faces: faces}
}

// Color returns the environment color seen along the ray direction
func (c *CubeMap) Color(ray core.Ray) core.Vec3 {
	face, uv, ok := cubeFace(ray.Direction)
	if !ok || c.Faces[face] == nil {
		return core.Vec3{}
	}
	return c.Faces[face].Evaluate(uv)
}

// cubeFace selects the face by the direction's major axis and returns the
// face coordinates with v = 0 at the bottom of the face image
func cubeFace(d core.Vec3) (int, core.Vec2, bool) {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)

	var face int
	var sc, tc, ma float64
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if d.X > 0 {
			face, sc, tc = FacePositiveX, -d.Z, -d.Y
		} else {
			face, sc, tc = FaceNegativeX, d.Z, -d.Y
		}
	case ay >= az:
		ma = ay
		if d.Y > 0 {
			face, sc, tc = FacePositiveY, d.X, d.Z
		} else {
			face, sc, tc = FaceNegativeY, d.X, -d.Z
		}
	default:
		ma = az
		if d.Z > 0 {
			face, sc, tc = FacePositiveZ, d.X, -d.Y
		} else {
			face, sc, tc = FaceNegativeZ, -d.X, -d.Y
		}
	}
	if ma == 0 {
		return 0, core.Vec2{}, false
	}

	u := (sc/ma + 1) / 2
	t := (tc/ma + 1) / 2
	return face, core.NewVec2(u, 1-t), true
}
