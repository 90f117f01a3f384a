package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

func TestSphere_Intersect(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, &stubMaterial{})

	tests := []struct {
		name           string
		ray            core.Ray
		expectHit      bool
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{
			name:           "Front hit",
			ray:            core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)),
			expectHit:      true,
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "Origin inside hits far side with outward normal",
			ray:            core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)),
			expectHit:      true,
			expectedT:      1.0,
			expectedNormal: core.NewVec3(1, 0, 0),
		},
		{
			name:           "Unnormalized direction",
			ray:            core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -2, 0)),
			expectHit:      true,
			expectedT:      2.0,
			expectedNormal: core.NewVec3(0, 1, 0),
		},
		{
			name: "Miss",
			ray:  core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0)),
		},
		{
			name: "Sphere behind origin",
			ray:  core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 1)),
		},
		{
			name:           "Origin on surface heading in",
			ray:            core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)),
			expectHit:      true,
			expectedT:      2.0,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name: "Origin on surface heading out",
			ray:  core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1)),
		},
		{
			name: "Zero direction",
			ray:  core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := sphere.Intersect(tt.ray)
			require.Equal(t, tt.expectHit, ok)
			if !ok {
				assert.Equal(t, core.NoHitT, hit.T)
				return
			}
			assert.InDelta(t, tt.expectedT, hit.T, 1e-9)
			assertVecNear(t, tt.expectedNormal, hit.Normal)
			assert.Same(t, sphere, hit.Surface)
			assert.Same(t, sphere.Material, hit.Material)
		})
	}
}

func TestSphere_UV(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 2.0, nil)

	for _, direction := range []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, -1), core.NewVec3(-1, -1, 1),
	} {
		origin := sphere.Center.Add(direction.Normalize().Multiply(5))
		hit, ok := sphere.Intersect(core.NewRay(origin, direction.Negate()))
		require.True(t, ok)
		assert.GreaterOrEqual(t, hit.UV.X, 0.0)
		assert.LessOrEqual(t, hit.UV.X, 1.0)
		assert.GreaterOrEqual(t, hit.UV.Y, 0.0)
		assert.LessOrEqual(t, hit.UV.Y, 1.0)
	}

	// The top pole maps to v = 1
	top, ok := sphere.Intersect(core.NewRay(core.NewVec3(1, 10, 3), core.NewVec3(0, -1, 0)))
	require.True(t, ok)
	assert.InDelta(t, 1.0, top.UV.Y, 1e-9)
}

func TestSphere_BoundingBox(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 0.5, nil)
	box := sphere.BoundingBox()
	assert.Equal(t, core.NewVec3(0.5, 1.5, 2.5), box.Min)
	assert.Equal(t, core.NewVec3(1.5, 2.5, 3.5), box.Max)
}

func TestBox_Intersect(t *testing.T) {
	box := NewAxisAlignedBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 2, 3), &stubMaterial{})

	tests := []struct {
		name           string
		ray            core.Ray
		expectHit      bool
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{"Hit +X face", core.NewRay(core.NewVec3(5, 0, 0), core.NewVec3(-1, 0, 0)), true, 4, core.NewVec3(1, 0, 0)},
		{"Hit -Y face", core.NewRay(core.NewVec3(0.5, -5, 1), core.NewVec3(0, 1, 0)), true, 3, core.NewVec3(0, -1, 0)},
		{"Hit +Z face", core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -2)), true, 3.5, core.NewVec3(0, 0, 1)},
		{"Inside exits", core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), true, 3, core.NewVec3(0, 0, 1)},
		{"Miss", core.NewRay(core.NewVec3(5, 5, 0), core.NewVec3(-1, 0, 0)), false, 0, core.Vec3{}},
		{"Behind", core.NewRay(core.NewVec3(5, 0, 0), core.NewVec3(1, 0, 0)), false, 0, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := box.Intersect(tt.ray)
			require.Equal(t, tt.expectHit, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.expectedT, hit.T, 1e-9)
			assertVecNear(t, tt.expectedNormal, hit.Normal)
			assert.GreaterOrEqual(t, hit.UV.X, 0.0)
			assert.LessOrEqual(t, hit.UV.Y, 1.0)
		})
	}
}

func TestBox_Rotated(t *testing.T) {
	box := NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), core.NewVec3(0, math.Pi/4, 0), nil)

	hit, ok := box.Intersect(core.NewRay(core.NewVec3(0.2, 0, 5), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 5-(math.Sqrt2-0.2), hit.T, 1e-9)
	assertVecNear(t, core.NewVec3(math.Sqrt2/2, 0, math.Sqrt2/2), hit.Normal)

	// The rotated corners reach sqrt(2) along X and Z
	bbox := box.BoundingBox()
	assert.InDelta(t, math.Sqrt2, bbox.Max.X, 1e-9)
	assert.InDelta(t, math.Sqrt2, bbox.Max.Z, 1e-9)
	assert.InDelta(t, 1.0, bbox.Max.Y, 1e-9)
}
