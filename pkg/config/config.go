package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig holds every setting of a render that is not part of the scene
type RenderConfig struct {
	Width             int      `yaml:"width"`
	Height            int      `yaml:"height"` // 0 derives the height from the camera aspect ratio
	MaxDepth          int      `yaml:"max_depth"`
	SuperSamples      int      `yaml:"super_samples"`
	TermThreshold     float64  `yaml:"term_threshold"`
	ThresholdFraction float64  `yaml:"threshold_fraction"`
	Workers           int      `yaml:"workers"` // 0 uses every CPU
	Seed              int64    `yaml:"seed"`
	MaxObjNum         int      `yaml:"max_obj_num"`
	ExplodeMeshes     bool     `yaml:"explode_meshes"`
	UseBVH            bool     `yaml:"use_bvh"`
	UseCubeMap        bool     `yaml:"use_cube_map"`
	CubeMap           []string `yaml:"cube_map,omitempty"` // +x, -x, +y, -y, +z, -z
	Output            string   `yaml:"output"`
}

// Default returns the configuration used when no file is given
func Default() RenderConfig {
	return RenderConfig{
		Width:             512,
		Height:            0,
		MaxDepth:          5,
		SuperSamples:      1,
		TermThreshold:     0,
		ThresholdFraction: integrator.DefaultThresholdFraction,
		Workers:           0,
		Seed:              1,
		MaxObjNum:         core.DefaultBVHConfig().MaxObjNum,
		ExplodeMeshes:     true,
		UseBVH:            true,
		Output:            "output/render.png",
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (RenderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (RenderConfig, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RenderConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return RenderConfig{}, err
	}
	return cfg, nil
}

// Validate checks ranges of every field
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("width must be positive, got %d: %w", c.Width, ErrInvalidConfig)
	case c.Height < 0:
		return fmt.Errorf("height must not be negative, got %d: %w", c.Height, ErrInvalidConfig)
	case c.MaxDepth < 0:
		return fmt.Errorf("max_depth must not be negative, got %d: %w", c.MaxDepth, ErrInvalidConfig)
	case c.SuperSamples < 1:
		return fmt.Errorf("super_samples must be at least 1, got %d: %w", c.SuperSamples, ErrInvalidConfig)
	case c.TermThreshold < 0:
		return fmt.Errorf("term_threshold must not be negative, got %g: %w", c.TermThreshold, ErrInvalidConfig)
	case c.ThresholdFraction <= 0:
		return fmt.Errorf("threshold_fraction must be positive, got %g: %w", c.ThresholdFraction, ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d: %w", c.Workers, ErrInvalidConfig)
	case c.MaxObjNum < 1:
		return fmt.Errorf("max_obj_num must be at least 1, got %d: %w", c.MaxObjNum, ErrInvalidConfig)
	case c.UseCubeMap && len(c.CubeMap) != 6:
		return fmt.Errorf("use_cube_map needs 6 cube_map faces, got %d: %w", len(c.CubeMap), ErrInvalidConfig)
	}
	return nil
}

// ResolveHeight returns the image height, deriving it from aspect when the
// height is unset
func (c RenderConfig) ResolveHeight(aspect float64) int {
	if c.Height > 0 {
		return c.Height
	}
	if aspect <= 0 {
		return c.Width
	}
	return max(1, int(float64(c.Width)/aspect+0.5))
}

// BVHConfig returns the tree construction settings
func (c RenderConfig) BVHConfig(logger core.Logger) core.BVHConfig {
	return core.BVHConfig{
		MaxObjNum:     c.MaxObjNum,
		ExplodeMeshes: c.ExplodeMeshes,
		Logger:        logger,
	}
}

// IntegratorConfig returns the recursion settings. environment may be nil.
func (c RenderConfig) IntegratorConfig(environment core.Environment) integrator.Config {
	return integrator.Config{
		MaxDepth:          c.MaxDepth,
		Threshold:         c.TermThreshold,
		ThresholdFraction: c.ThresholdFraction,
		Environment:       environment,
	}
}

// SamplingConfig returns the per-pixel settings
func (c RenderConfig) SamplingConfig() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		MaxDepth:     c.MaxDepth,
		SuperSamples: c.SuperSamples,
	}
}

// CubeMapFaces returns the face paths in +x, -x, +y, -y, +z, -z order
func (c RenderConfig) CubeMapFaces() [6]string {
	var faces [6]string
	copy(faces[:], c.CubeMap)
	return faces
}
