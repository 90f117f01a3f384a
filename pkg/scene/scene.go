package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/log"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

var logger = log.New("scene")

// ErrNilSurface is returned when adding a nil surface
var ErrNilSurface = errors.New("nil surface")

// validator is implemented by surfaces that can be structurally invalid
type validator interface {
	Validate() error
}

// Scene contains all the elements needed for rendering. Surfaces and lights
// are added first, then Build prepares the spatial tree; after that the
// scene is read-only and safe for concurrent Intersect calls.
type Scene struct {
	Name         string
	CameraConfig renderer.CameraConfig

	surfaces []core.Surface
	lights   []core.Light
	ambient  core.Vec3

	bvh       *core.BVH
	useBVH    bool
	buildTime time.Duration
}

// Stats summarizes the scene contents
type Stats struct {
	Surfaces  int // Top-level surfaces
	Faces     int // Mesh faces across every aggregate
	Lights    int
	LightsBy  map[lights.LightType]int
	Bounds    core.AABB
	BVH       core.BVHStats
	UsesBVH   bool
	BuildTime time.Duration
}

// New creates an empty scene with the default camera
func New(name string) *Scene {
	return &Scene{
		Name:         name,
		CameraConfig: renderer.DefaultCameraConfig(),
	}
}

// Add appends a surface. Surfaces that can validate themselves (meshes) are
// checked first and rejected when invalid.
func (s *Scene) Add(surface core.Surface) error {
	if surface == nil {
		return ErrNilSurface
	}
	if v, ok := surface.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("scene %q rejected surface: %w", s.Name, err)
		}
	}
	s.surfaces = append(s.surfaces, surface)
	s.bvh = nil
	return nil
}

// AddLight appends a light source
func (s *Scene) AddLight(light core.Light) {
	s.lights = append(s.lights, light)
}

// SetAmbient sets the ambient light color
func (s *Scene) SetAmbient(ambient core.Vec3) {
	s.ambient = ambient
}

// Camera creates the camera described by CameraConfig. aspect overrides
// the configured aspect ratio when positive.
func (s *Scene) Camera(aspect float64) *renderer.Camera {
	config := s.CameraConfig
	if aspect > 0 {
		config.AspectRatio = aspect
	}
	return renderer.NewCamera(config)
}

// Build prepares the scene for rendering. With useBVH false the tree is
// still built for statistics but queries scan every surface.
func (s *Scene) Build(config core.BVHConfig, useBVH bool) {
	start := time.Now()
	s.bvh = core.NewBVH(s.surfaces, config)
	s.useBVH = useBVH
	s.buildTime = time.Since(start)

	stats := s.bvh.Stats()
	logger.Infof("scene %q: built BVH over %d surfaces (%d leaves, depth %d) in %v",
		s.Name, len(s.surfaces), stats.LeafNodes, stats.MaxDepth, s.buildTime)
}

// Intersect returns the nearest hit along ray. Before Build, or with the
// tree disabled, every surface is tested.
func (s *Scene) Intersect(ray core.Ray) (core.Intersection, bool) {
	if s.useBVH && s.bvh != nil {
		return s.bvh.Intersect(ray)
	}
	return core.IntersectLinear(s.surfaces, ray)
}

// Lights returns the light sources
func (s *Scene) Lights() []core.Light {
	return s.lights
}

// Ambient returns the ambient light color
func (s *Scene) Ambient() core.Vec3 {
	return s.ambient
}

// Surfaces returns the top-level surfaces in insertion order
func (s *Scene) Surfaces() []core.Surface {
	return s.surfaces
}

// BVH returns the spatial tree, or nil before Build
func (s *Scene) BVH() *core.BVH {
	return s.bvh
}

// Stats returns counts describing the scene
func (s *Scene) Stats() Stats {
	stats := Stats{
		Surfaces: len(s.surfaces),
		Lights:   len(s.lights),
		LightsBy: make(map[lights.LightType]int),
		Bounds:   core.EmptyAABB(),
		UsesBVH:  s.useBVH && s.bvh != nil,
	}
	for _, surface := range s.surfaces {
		if aggregate, ok := surface.(core.Aggregate); ok {
			stats.Faces += len(aggregate.Faces())
		}
		stats.Bounds = stats.Bounds.Merge(surface.BoundingBox())
	}
	for _, light := range s.lights {
		if typed, ok := light.(lights.Light); ok {
			stats.LightsBy[typed.Type()]++
		}
	}
	if s.bvh != nil {
		stats.BVH = s.bvh.Stats()
		stats.BuildTime = s.buildTime
	}
	return stats
}
