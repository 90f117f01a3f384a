package renderer

import (
	"image"
	"image/color"
	"math/rand"
	"sync/atomic"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
)

// BytesPerPixel is the size of one RGB pixel in the buffer
const BytesPerPixel = 3

// SamplingConfig contains per-pixel sampling settings
type SamplingConfig struct {
	MaxDepth     int // Recursion budget handed to the integrator
	SuperSamples int // Jittered samples per pixel; 1 samples the pixel corner only
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		MaxDepth:     5,
		SuperSamples: 1,
	}
}

// Raytracer owns the pixel buffer and turns pixel coordinates into traced
// colors. TracePixel may be called concurrently for distinct pixels.
type Raytracer struct {
	camera     core.Camera
	integrator integrator.Integrator
	config     SamplingConfig

	width  int
	height int
	buffer []byte // Row j holds normalized y = j/height (bottom-up)

	samples atomic.Int64
}

// NewRaytracer creates a raytracer with a width x height buffer
func NewRaytracer(camera core.Camera, integrator integrator.Integrator, config SamplingConfig, width, height int) *Raytracer {
	if config.SuperSamples < 1 {
		config.SuperSamples = 1
	}
	rt := &Raytracer{
		camera:     camera,
		integrator: integrator,
		config:     config,
	}
	rt.ResizeBuffer(width, height)
	return rt
}

// ResizeBuffer reallocates the pixel buffer, clearing it to black
func (rt *Raytracer) ResizeBuffer(width, height int) {
	rt.width = max(0, width)
	rt.height = max(0, height)
	rt.buffer = make([]byte, rt.width*rt.height*BytesPerPixel)
}

// Buffer returns the raw RGB buffer and its dimensions
func (rt *Raytracer) Buffer() ([]byte, int, int) {
	return rt.buffer, rt.width, rt.height
}

// Width returns the buffer width in pixels
func (rt *Raytracer) Width() int {
	return rt.width
}

// Height returns the buffer height in pixels
func (rt *Raytracer) Height() int {
	return rt.height
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// Samples returns the number of primary rays traced so far
func (rt *Raytracer) Samples() int64 {
	return rt.samples.Load()
}

// Trace returns the clamped color seen through normalized coordinates (x, y)
func (rt *Raytracer) Trace(x, y float64) core.Vec3 {
	rt.samples.Add(1)
	ray := rt.camera.RayThrough(x, y)
	color := rt.integrator.TraceRay(ray, rt.config.MaxDepth, core.NewVec3(1, 1, 1))
	return color.Clamp(0, 1)
}

// TracePixel traces pixel (i, j), writes it into the buffer and returns its
// color. With super-sampling, samples are jittered uniformly within half a
// pixel of (i/width, j/height) using random, which must not be shared between
// goroutines. A nil random is replaced by a source seeded with the pixel
// index. Pixels outside the buffer are black and not written.
func (rt *Raytracer) TracePixel(i, j int, random *rand.Rand) core.Vec3 {
	if i < 0 || j < 0 || i >= rt.width || j >= rt.height {
		return core.Vec3{}
	}

	x := float64(i) / float64(rt.width)
	y := float64(j) / float64(rt.height)

	var col core.Vec3
	if rt.config.SuperSamples <= 1 {
		col = rt.Trace(x, y)
	} else {
		if random == nil {
			random = rand.New(rand.NewSource(int64(i + j*rt.width)))
		}
		dx := 0.5 / float64(rt.width)
		dy := 0.5 / float64(rt.height)
		for s := 0; s < rt.config.SuperSamples; s++ {
			sx := x - dx + random.Float64()*2*dx
			sy := y - dy + random.Float64()*2*dy
			col = col.Add(rt.Trace(sx, sy))
		}
		col = col.Multiply(1.0 / float64(rt.config.SuperSamples))
	}

	offset := (i + j*rt.width) * BytesPerPixel
	rt.buffer[offset] = toByte(col.X)
	rt.buffer[offset+1] = toByte(col.Y)
	rt.buffer[offset+2] = toByte(col.Z)
	return col
}

// toByte converts a channel in [0, 1] to 0..255
func toByte(c float64) byte {
	return byte(255.0 * max(0, min(1, c)))
}

// Image converts the buffer to an RGBA image with the top row first
func (rt *Raytracer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	for j := 0; j < rt.height; j++ {
		row := rt.height - 1 - j
		for i := 0; i < rt.width; i++ {
			offset := (i + j*rt.width) * BytesPerPixel
			img.SetRGBA(i, row, color.RGBA{
				R: rt.buffer[offset],
				G: rt.buffer[offset+1],
				B: rt.buffer[offset+2],
				A: 255,
			})
		}
	}
	return img
}
