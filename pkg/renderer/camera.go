package renderer

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera is looking at
	Up          core.Vec3 // Up direction (usually (0,1,0))
	VFov        float64   // Vertical field of view in degrees
	AspectRatio float64   // Width / height
}

// DefaultCameraConfig returns a camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        45,
		AspectRatio: 1,
	}
}

// Camera is a pinhole camera mapping normalized image coordinates to rays
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	forward         core.Vec3
}

// NewCamera creates a camera from config. Degenerate values fall back to the
// defaults.
func NewCamera(config CameraConfig) *Camera {
	defaults := DefaultCameraConfig()
	if config.AspectRatio <= 0 {
		config.AspectRatio = defaults.AspectRatio
	}
	if config.VFov <= 0 || config.VFov >= 180 {
		config.VFov = defaults.VFov
	}
	if config.Up.IsZero() {
		config.Up = defaults.Up
	}
	if config.LookAt == config.Center {
		config.LookAt = config.Center.Add(defaults.LookAt)
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal basis: w points backward, u right, v up
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	if u.IsZero() {
		// Up is parallel to the view direction; pick any perpendicular
		u = core.NewVec3(1, 0, 0).Cross(w).Normalize()
		if u.IsZero() {
			u = core.NewVec3(0, 0, 1).Cross(w).Normalize()
		}
	}
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		config:          config,
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		forward:         w.Negate(),
	}
}

// RayThrough returns the unit-direction ray through (x, y), where (0, 0) is
// the bottom-left of the image and (1, 1) the top-right
func (c *Camera) RayThrough(x, y float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(x)).
		Add(c.vertical.Multiply(y)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction.Normalize())
}

// AspectRatio returns width / height
func (c *Camera) AspectRatio() float64 {
	return c.config.AspectRatio
}

// Forward returns the unit viewing direction
func (c *Camera) Forward() core.Vec3 {
	return c.forward
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
