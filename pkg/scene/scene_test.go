package scene

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

func triangleMesh(m core.Material) *geometry.Mesh {
	mesh := geometry.NewMesh(m)
	a := mesh.AddVertex(core.NewVec3(-1, -1, -3))
	b := mesh.AddVertex(core.NewVec3(1, -1, -3))
	c := mesh.AddVertex(core.NewVec3(0, 1, -3))
	_ = mesh.AddFace(a, b, c)
	return mesh
}

func TestScene_AddRejectsInvalidMesh(t *testing.T) {
	s := New("test")

	mesh := triangleMesh(nil)
	mesh.AddNormal(core.NewVec3(0, 0, 1))

	err := s.Add(mesh)
	assert.ErrorIs(t, err, geometry.ErrNormalCount)
	assert.Empty(t, s.Surfaces())

	assert.ErrorIs(t, s.Add(nil), ErrNilSurface)
}

func TestScene_IntersectBeforeAndAfterBuild(t *testing.T) {
	s := New("test")
	red := material.NewPhong(core.NewVec3(1, 0, 0))
	require.NoError(t, s.Add(geometry.NewSphere(core.NewVec3(0, 0, -10), 1, red)))
	require.NoError(t, s.Add(triangleMesh(red)))

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	// Linear scan before Build
	hit, ok := s.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, 3.0, hit.T, 1e-9)
	assert.Nil(t, s.BVH())

	for _, useBVH := range []bool{true, false} {
		s.Build(core.DefaultBVHConfig(), useBVH)
		require.NotNil(t, s.BVH())

		hit, ok = s.Intersect(ray)
		require.True(t, ok)
		assert.InDelta(t, 3.0, hit.T, 1e-9)
		assert.Same(t, red, hit.Material)
		assert.Equal(t, useBVH, s.Stats().UsesBVH)
	}

	// Adding after Build drops the stale tree
	require.NoError(t, s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, red)))
	assert.Nil(t, s.BVH())
	hit, ok = s.Intersect(ray)
	require.True(t, ok)
	assert.InDelta(t, 0.5, hit.T, 1e-9)
}

func TestScene_TreeAgreesWithLinearScan(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	m := material.NewPhong(core.NewVec3(0.5, 0.5, 0.5))

	s := New("random")
	for i := 0; i < 60; i++ {
		center := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		require.NoError(t, s.Add(geometry.NewSphere(center, 0.2+random.Float64(), m)))
	}
	for _, build := range []func() (*Scene, error){NewMeshScene, NewPrimitivesScene} {
		other, err := build()
		require.NoError(t, err)
		for _, surface := range other.Surfaces() {
			require.NoError(t, s.Add(surface))
		}
	}
	s.Build(core.BVHConfig{MaxObjNum: 3, ExplodeMeshes: true}, true)

	for i := 0; i < 500; i++ {
		origin := core.NewVec3(random.Float64()*30-15, random.Float64()*30-15, random.Float64()*30-15)
		direction := core.NewVec3(random.NormFloat64(), random.NormFloat64(), random.NormFloat64())
		ray := core.NewRay(origin, direction)

		want, wantOK := core.IntersectLinear(s.Surfaces(), ray)
		got, gotOK := s.Intersect(ray)
		require.Equal(t, wantOK, gotOK, "ray %d", i)
		if wantOK {
			assert.InDelta(t, want.T, got.T, 1e-9, "ray %d", i)
		}
	}
}

func TestScene_Stats(t *testing.T) {
	s := New("stats")
	require.NoError(t, s.Add(geometry.NewSphere(core.NewVec3(0, 0, -10), 1, nil)))
	require.NoError(t, s.Add(triangleMesh(nil)))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1)))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 5, 5), core.NewVec3(1, 1, 1)))
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1)))
	s.SetAmbient(core.NewVec3(0.1, 0.2, 0.3))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Surfaces)
	assert.Equal(t, 1, stats.Faces)
	assert.Equal(t, 3, stats.Lights)
	assert.Equal(t, 2, stats.LightsBy[lights.LightTypePoint])
	assert.Equal(t, 1, stats.LightsBy[lights.LightTypeDirectional])
	assert.False(t, stats.UsesBVH)
	assert.True(t, stats.Bounds.Contains(core.NewAABB(core.NewVec3(-1, -1, -11), core.NewVec3(1, 1, -3))))
	assert.Equal(t, core.NewVec3(0.1, 0.2, 0.3), s.Ambient())

	s.Build(core.DefaultBVHConfig(), true)
	stats = s.Stats()
	assert.True(t, stats.UsesBVH)
	assert.Equal(t, 2, stats.BVH.TotalSurfaces)
}

func TestScene_CameraAspectOverride(t *testing.T) {
	s := New("camera")
	assert.Equal(t, 1.0, s.Camera(0).AspectRatio())
	assert.Equal(t, 2.0, s.Camera(2).AspectRatio())
}
