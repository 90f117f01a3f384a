package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// primitiveCase is one ray against one surface
type primitiveCase struct {
	name           string
	ray            core.Ray
	expectHit      bool
	expectedT      float64
	expectedNormal core.Vec3
}

func runPrimitiveCases(t *testing.T, surface core.Surface, tests []primitiveCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := surface.Intersect(tt.ray)
			require.Equal(t, tt.expectHit, ok)
			if !ok {
				assert.Equal(t, core.NoHitT, hit.T)
				return
			}
			assert.InDelta(t, tt.expectedT, hit.T, 1e-9)
			assertVecNear(t, tt.expectedNormal, hit.Normal)
			assert.Same(t, surface, hit.Surface)
			assert.GreaterOrEqual(t, hit.UV.X, 0.0)
			assert.LessOrEqual(t, hit.UV.X, 1.0)
			assert.GreaterOrEqual(t, hit.UV.Y, 0.0)
			assert.LessOrEqual(t, hit.UV.Y, 1.0)
		})
	}
}

func TestQuad_Intersect(t *testing.T) {
	quad := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), &stubMaterial{})
	assertVecNear(t, core.NewVec3(0, 0, 1), quad.Normal())

	runPrimitiveCases(t, quad, []primitiveCase{
		{"Front", core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), true, 5, core.NewVec3(0, 0, 1)},
		{"Back faces the ray", core.NewRay(core.NewVec3(0.5, 0.5, -5), core.NewVec3(0, 0, 1)), true, 5, core.NewVec3(0, 0, -1)},
		{"Outside edge", core.NewRay(core.NewVec3(1.5, 0, 5), core.NewVec3(0, 0, -1)), false, 0, core.Vec3{}},
		{"Parallel", core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0)), false, 0, core.Vec3{}},
		{"Behind", core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)), false, 0, core.Vec3{}},
	})

	center, ok := quad.Intersect(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 0.5, center.UV.X, 1e-9)
	assert.InDelta(t, 0.5, center.UV.Y, 1e-9)
}

func TestQuad_Degenerate(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0), nil)
	_, ok := quad.Intersect(core.NewRay(core.NewVec3(0.5, 0, 5), core.NewVec3(0, 0, -1)))
	assert.False(t, ok)
}

func TestSquare_Rotated(t *testing.T) {
	// Tipping the XY square about X lays it in the y = 0 plane
	square := NewSquare(core.NewVec3(0, 0, 0), 1, 1, core.NewVec3(math.Pi/2, 0, 0), nil)

	runPrimitiveCases(t, square, []primitiveCase{
		{"From above", core.NewRay(core.NewVec3(0.5, 5, 0.5), core.NewVec3(0, -1, 0)), true, 5, core.NewVec3(0, 1, 0)},
		{"From below", core.NewRay(core.NewVec3(-0.5, -3, -0.5), core.NewVec3(0, 1, 0)), true, 3, core.NewVec3(0, -1, 0)},
		{"Outside", core.NewRay(core.NewVec3(1.5, 5, 0), core.NewVec3(0, -1, 0)), false, 0, core.Vec3{}},
	})

	bbox := square.BoundingBox()
	assert.InDelta(t, -1.0, bbox.Min.X, 1e-9)
	assert.InDelta(t, 1.0, bbox.Max.Z, 1e-9)
	assert.InDelta(t, 0.0, bbox.Size().Y, 1e-9)
}

func TestDisc_Intersect(t *testing.T) {
	disc := NewDisc(core.NewVec3(0, 1, 0), core.NewVec3(0, 2, 0), 1, &stubMaterial{})
	assertVecNear(t, core.NewVec3(0, 1, 0), disc.Normal)

	runPrimitiveCases(t, disc, []primitiveCase{
		{"From above", core.NewRay(core.NewVec3(0.5, 5, 0), core.NewVec3(0, -1, 0)), true, 4, core.NewVec3(0, 1, 0)},
		{"From below", core.NewRay(core.NewVec3(0.5, -5, 0), core.NewVec3(0, 1, 0)), true, 6, core.NewVec3(0, -1, 0)},
		{"Beyond radius", core.NewRay(core.NewVec3(1.5, 5, 0), core.NewVec3(0, -1, 0)), false, 0, core.Vec3{}},
		{"Parallel", core.NewRay(core.NewVec3(-5, 1, 0), core.NewVec3(1, 0, 0)), false, 0, core.Vec3{}},
	})

	bbox := disc.BoundingBox()
	assertVecNear(t, core.NewVec3(-1, 1, -1), bbox.Min)
	assertVecNear(t, core.NewVec3(1, 1, 1), bbox.Max)
}

func TestCylinder_Intersect(t *testing.T) {
	open, err := NewCylinder(core.NewVec3(0, 0, 0), core.NewVec3(0, 2, 0), 1, false, &stubMaterial{})
	require.NoError(t, err)
	closed, err := NewCylinder(core.NewVec3(0, 0, 0), core.NewVec3(0, 2, 0), 1, true, &stubMaterial{})
	require.NoError(t, err)

	t.Run("open", func(t *testing.T) {
		runPrimitiveCases(t, open, []primitiveCase{
			{"Side", core.NewRay(core.NewVec3(5, 1, 0), core.NewVec3(-1, 0, 0)), true, 4, core.NewVec3(1, 0, 0)},
			{"Inside exits with outward normal", core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)), true, 1, core.NewVec3(0, 0, 1)},
			{"Above the top", core.NewRay(core.NewVec3(5, 3, 0), core.NewVec3(-1, 0, 0)), false, 0, core.Vec3{}},
			{"Down the open axis", core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), false, 0, core.Vec3{}},
		})
	})
	t.Run("capped", func(t *testing.T) {
		runPrimitiveCases(t, closed, []primitiveCase{
			{"Top cap", core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), true, 3, core.NewVec3(0, 1, 0)},
			{"Base cap", core.NewRay(core.NewVec3(0.5, -5, 0), core.NewVec3(0, 1, 0)), true, 5, core.NewVec3(0, -1, 0)},
			{"Side still nearest", core.NewRay(core.NewVec3(5, 1, 0), core.NewVec3(-1, 0, 0)), true, 4, core.NewVec3(1, 0, 0)},
		})
	})

	side, ok := open.Intersect(core.NewRay(core.NewVec3(5, 1, 0), core.NewVec3(-1, 0, 0)))
	require.True(t, ok)
	assert.InDelta(t, 0.5, side.UV.Y, 1e-9)

	bbox := open.BoundingBox()
	assertVecNear(t, core.NewVec3(-1, 0, -1), bbox.Min)
	assertVecNear(t, core.NewVec3(1, 2, 1), bbox.Max)
}

func TestCylinder_InvalidParameters(t *testing.T) {
	_, err := NewCylinder(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 0, false, nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = NewCylinder(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 1, false, nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestCone_Intersect(t *testing.T) {
	pointed, err := NewCone(core.NewVec3(0, 0, 0), 1, core.NewVec3(0, 1, 0), 0, false, &stubMaterial{})
	require.NoError(t, err)
	capped, err := NewCone(core.NewVec3(0, 0, 0), 1, core.NewVec3(0, 1, 0), 0, true, &stubMaterial{})
	require.NoError(t, err)
	frustum, err := NewCone(core.NewVec3(0, 0, 0), 2, core.NewVec3(0, 2, 0), 1, true, &stubMaterial{})
	require.NoError(t, err)

	slope := core.NewVec3(1, 1, 0).Normalize()
	t.Run("pointed", func(t *testing.T) {
		runPrimitiveCases(t, pointed, []primitiveCase{
			{"Body", core.NewRay(core.NewVec3(5, 0.5, 0), core.NewVec3(-1, 0, 0)), true, 4.5, slope},
			// The mirrored nappe above the apex is not part of the cone
			{"Above the apex", core.NewRay(core.NewVec3(5, 1.5, 0), core.NewVec3(-1, 0, 0)), false, 0, core.Vec3{}},
			{"Wide miss", core.NewRay(core.NewVec3(5, 0.5, 3), core.NewVec3(-1, 0, 0)), false, 0, core.Vec3{}},
		})
	})
	t.Run("capped", func(t *testing.T) {
		runPrimitiveCases(t, capped, []primitiveCase{
			{"Base cap", core.NewRay(core.NewVec3(0, -5, 0), core.NewVec3(0, 1, 0)), true, 5, core.NewVec3(0, -1, 0)},
			{"Body", core.NewRay(core.NewVec3(5, 0.5, 0), core.NewVec3(-1, 0, 0)), true, 4.5, slope},
		})
	})
	t.Run("frustum", func(t *testing.T) {
		runPrimitiveCases(t, frustum, []primitiveCase{
			{"Top cap", core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), true, 3, core.NewVec3(0, 1, 0)},
			{"Body", core.NewRay(core.NewVec3(5, 1, 0), core.NewVec3(-1, 0, 0)), true, 3.5, core.NewVec3(1, 0.5, 0).Normalize()},
		})
	})

	bbox := frustum.BoundingBox()
	assertVecNear(t, core.NewVec3(-2, 0, -2), bbox.Min)
	assertVecNear(t, core.NewVec3(2, 2, 2), bbox.Max)
}

func TestCone_InvalidParameters(t *testing.T) {
	origin, up := core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)
	for name, build := range map[string]func() (*Cone, error){
		"zero base radius":    func() (*Cone, error) { return NewCone(origin, 0, up, 0, false, nil) },
		"negative top radius": func() (*Cone, error) { return NewCone(origin, 1, up, -1, false, nil) },
		"top wider than base": func() (*Cone, error) { return NewCone(origin, 1, up, 2, false, nil) },
		"coincident centers":  func() (*Cone, error) { return NewCone(origin, 1, origin, 0, false, nil) },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := build()
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}
