package core

import (
	"math"
	"testing"
)

func TestVec3_Rotate(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		rotation Vec3
		expected Vec3
	}{
		{
			name:     "No rotation",
			vector:   NewVec3(1, 0, 0),
			rotation: NewVec3(0, 0, 0),
			expected: NewVec3(1, 0, 0),
		},
		{
			name:     "90 degree rotation around Z axis",
			vector:   NewVec3(1, 0, 0),
			rotation: NewVec3(0, 0, math.Pi/2),
			expected: NewVec3(0, 1, 0),
		},
		{
			name:     "90 degree rotation around Y axis",
			vector:   NewVec3(1, 0, 0),
			rotation: NewVec3(0, math.Pi/2, 0),
			expected: NewVec3(0, 0, -1),
		},
		{
			name:     "90 degree rotation around X axis",
			vector:   NewVec3(0, 1, 0),
			rotation: NewVec3(math.Pi/2, 0, 0),
			expected: NewVec3(0, 0, 1),
		},
		{
			name:     "180 degree rotation around Y axis",
			vector:   NewVec3(1, 0, 0),
			rotation: NewVec3(0, math.Pi, 0),
			expected: NewVec3(-1, 0, 0),
		},
		{
			name:     "Combined rotations",
			vector:   NewVec3(1, 0, 0),
			rotation: NewVec3(0, math.Pi/2, math.Pi/2), // 90° Y then 90° Z
			expected: NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.vector.Rotate(tt.rotation)

			const tolerance = 1e-9
			if result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	zero := Vec3{}
	if !zero.Normalize().IsZero() {
		t.Errorf("Expected zero vector to stay zero, got %v", zero.Normalize())
	}
}

func TestVec3_Axis(t *testing.T) {
	v := NewVec3(1, 2, 3)
	for axis, expected := range []float64{1, 2, 3} {
		if v.Axis(axis) != expected {
			t.Errorf("Axis(%d): expected %v, got %v", axis, expected, v.Axis(axis))
		}
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRayOfKind(NewVec3(1, 0, 0), NewVec3(0, 2, 0), RayReflection)
	if got := ray.At(1.5); got != NewVec3(1, 3, 0) {
		t.Errorf("Expected (1,3,0), got %v", got)
	}
	if ray.Kind.String() != "reflection" {
		t.Errorf("Expected reflection kind, got %s", ray.Kind)
	}
}
