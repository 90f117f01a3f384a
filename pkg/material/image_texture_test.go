package material

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

var (
	white = core.NewVec3(1, 1, 1)
	black = core.NewVec3(0, 0, 0)
)

// checkerboard returns a 2x2 texture:
//
//	white black
//	black white
func checkerboard() *ImageTexture {
	return NewImageTexture(2, 2, []core.Vec3{
		white, black, // Row 0 (top in image coords)
		black, white, // Row 1 (bottom in image coords)
	})
}

func TestImageTexture_Evaluate(t *testing.T) {
	texture := checkerboard()

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"Bottom left", core.NewVec2(0.1, 0.1), black},
		{"Bottom right", core.NewVec2(0.9, 0.1), white},
		{"Top left", core.NewVec2(0.1, 0.9), white},
		{"Top right", core.NewVec2(0.9, 0.9), black},
		{"Wraps above one", core.NewVec2(1.1, 1.9), white},
		{"Wraps below zero", core.NewVec2(-0.1, -0.9), white},
		{"Exact upper edge clamps", core.NewVec2(0.999999, 0.999999), black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, texture.Evaluate(tt.uv))
		})
	}
}

func TestImageTexture_Bilinear(t *testing.T) {
	texture := NewImageTexture(2, 1, []core.Vec3{black, white})
	texture.Bilinear = true

	// Halfway between the two texel centers
	mid := texture.Evaluate(core.NewVec2(0.5, 0.5))
	assert.InDelta(t, 0.5, mid.X, 1e-12)

	// At a texel center the texel itself is returned
	left := texture.Evaluate(core.NewVec2(0.25, 0.5))
	assert.InDelta(t, 0.0, left.X, 1e-12)
	right := texture.Evaluate(core.NewVec2(0.75, 0.5))
	assert.InDelta(t, 1.0, right.X, 1e-12)
}

func TestImageTexture_Empty(t *testing.T) {
	texture := NewImageTexture(0, 0, nil)
	assert.Equal(t, core.Vec3{}, texture.Evaluate(core.NewVec2(0.5, 0.5)))
}

func TestImageTexture_FromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})

	texture := NewImageTextureFromImage(img)
	assert.Equal(t, 2, texture.Width)
	assert.Equal(t, 1, texture.Height)
	assert.Equal(t, core.NewVec3(1, 0, 0), texture.Pixels[0])
	assert.Equal(t, core.NewVec3(0, 0, 1), texture.Pixels[1])
}

func TestSolidColor_Evaluate(t *testing.T) {
	solid := NewSolidColor(core.NewVec3(0.2, 0.3, 0.4))
	assert.Equal(t, core.NewVec3(0.2, 0.3, 0.4), solid.Evaluate(core.NewVec2(0.7, 0.1)))
}
