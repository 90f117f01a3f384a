package material

import (
	"image"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width    int
	Height   int
	Pixels   []core.Vec3 // Row-major, top row first: Pixels[y*Width + x]
	Bilinear bool        // Blend the four nearest texels instead of picking one
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// NewImageTextureFromImage converts a decoded image into a texture with
// channels in [0, 1]
func NewImageTextureFromImage(img image.Image) *ImageTexture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Vec3, 0, width*height)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, core.NewVec3(float64(r)/65535.0, float64(g)/65535.0, float64(b)/65535.0))
		}
	}
	return NewImageTexture(width, height, pixels)
}

// Evaluate samples the texture at uv. Coordinates wrap, and v = 0 is the
// bottom row of the image.
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	if t.Width <= 0 || t.Height <= 0 || len(t.Pixels) < t.Width*t.Height {
		return core.Vec3{}
	}

	u := wrap(uv.X)
	v := wrap(uv.Y)

	// Continuous texel coordinates with the origin at the top-left
	fx := u * float64(t.Width)
	fy := (1.0 - v) * float64(t.Height)

	if !t.Bilinear {
		return t.texel(int(fx), int(fy))
	}

	// Texel centers sit at half-integer coordinates
	fx -= 0.5
	fy -= 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	dx, dy := fx-float64(x0), fy-float64(y0)

	top := t.texel(x0, y0).Multiply(1 - dx).Add(t.texel(x0+1, y0).Multiply(dx))
	bottom := t.texel(x0, y0+1).Multiply(1 - dx).Add(t.texel(x0+1, y0+1).Multiply(dx))
	return top.Multiply(1 - dy).Add(bottom.Multiply(dy))
}

// texel returns the pixel at (x, y), clamped to the image bounds
func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x = max(0, min(t.Width-1, x))
	y = max(0, min(t.Height-1, y))
	return t.Pixels[y*t.Width+x]
}

// wrap maps a coordinate into [0, 1)
func wrap(c float64) float64 {
	c -= math.Floor(c)
	if c >= 1 {
		c = 0
	}
	return c
}
