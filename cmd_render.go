package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/df07/go-recursive-raytracer/pkg/config"
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
	"github.com/df07/go-recursive-raytracer/pkg/watcher"
)

// renderOptions holds the render flags. Only flags the user set override the
// config file.
type renderOptions struct {
	configPath   string
	width        int
	height       int
	maxDepth     int
	superSamples int
	threshold    float64
	workers      int
	seed         int64
	maxObjNum    int
	noBVH        bool
	noExplode    bool
	cubeMap      []string
	output       string
	watch        bool
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a built-in scene or a YAML scene file",
		Long: `Render a scene to an image. The scene is either the ID of a built-in scene
(see "raytracer scenes") or the path of a .yaml scene file. The output format
follows the file extension: .png, .bmp, .tif or .jpg.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneName := "default"
			if len(args) == 1 {
				sceneName = args[0]
			}

			cfg, err := loadRenderConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if opts.watch {
				return watchAndRender(ctx, cfg, sceneName, opts.configPath, cmd.OutOrStdout())
			}
			_, err = renderOnce(ctx, cfg, sceneName, cmd.OutOrStdout())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML render config file")
	flags.IntVarP(&opts.width, "width", "W", defaults.Width, "image width in pixels")
	flags.IntVarP(&opts.height, "height", "H", defaults.Height, "image height in pixels (0 derives it from the camera aspect ratio)")
	flags.IntVarP(&opts.maxDepth, "depth", "d", defaults.MaxDepth, "maximum recursion depth")
	flags.IntVarP(&opts.superSamples, "samples", "s", defaults.SuperSamples, "samples per pixel")
	flags.Float64Var(&opts.threshold, "threshold", defaults.TermThreshold, "termination threshold for reflected and refracted rays")
	flags.IntVarP(&opts.workers, "workers", "j", defaults.Workers, "render threads (0 uses every CPU)")
	flags.Int64Var(&opts.seed, "seed", defaults.Seed, "seed for sample jitter")
	flags.IntVar(&opts.maxObjNum, "max-obj-num", defaults.MaxObjNum, "BVH leaf size threshold")
	flags.BoolVar(&opts.noBVH, "no-bvh", false, "intersect by scanning every surface")
	flags.BoolVar(&opts.noExplode, "no-explode", false, "keep meshes whole in BVH leaves")
	flags.StringSliceVar(&opts.cubeMap, "cube-map", nil, "six environment images: +x,-x,+y,-y,+z,-z")
	flags.StringVarP(&opts.output, "output", "o", defaults.Output, "output image path")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-render when the scene or config file changes")

	return cmd
}

// loadRenderConfig reads the config file, if any, and applies the flags the
// user set on top of it
func loadRenderConfig(cmd *cobra.Command, opts *renderOptions) (config.RenderConfig, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.RenderConfig{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Height = opts.height
	}
	if flags.Changed("depth") {
		cfg.MaxDepth = opts.maxDepth
	}
	if flags.Changed("samples") {
		cfg.SuperSamples = opts.superSamples
	}
	if flags.Changed("threshold") {
		cfg.TermThreshold = opts.threshold
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("max-obj-num") {
		cfg.MaxObjNum = opts.maxObjNum
	}
	if flags.Changed("no-bvh") {
		cfg.UseBVH = !opts.noBVH
	}
	if flags.Changed("no-explode") {
		cfg.ExplodeMeshes = !opts.noExplode
	}
	if flags.Changed("cube-map") {
		cfg.CubeMap = opts.cubeMap
		cfg.UseCubeMap = len(opts.cubeMap) > 0
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}

	if err := cfg.Validate(); err != nil {
		return config.RenderConfig{}, err
	}
	return cfg, nil
}

// renderOnce loads, builds and renders the scene, then saves the image. A
// canceled render still saves the partial image before returning the error.
func renderOnce(ctx context.Context, cfg config.RenderConfig, sceneName string, out io.Writer) (renderer.RenderStats, error) {
	start := time.Now()
	s, err := scene.Load(sceneName)
	if err != nil {
		return renderer.RenderStats{}, err
	}
	s.Build(cfg.BVHConfig(logger), cfg.UseBVH)

	var environment core.Environment
	if cfg.UseCubeMap {
		cubeMap, err := loaders.LoadCubeMap(cfg.CubeMapFaces())
		if err != nil {
			return renderer.RenderStats{}, err
		}
		environment = cubeMap
	}
	logger.Infof("scene %q ready in %v", s.Name, time.Since(start))

	width := cfg.Width
	height := cfg.ResolveHeight(s.CameraConfig.AspectRatio)
	camera := s.Camera(float64(width) / float64(height))

	whitted := integrator.NewWhittedIntegrator(s, cfg.IntegratorConfig(environment))
	raytracer := renderer.NewRaytracer(camera, whitted, cfg.SamplingConfig(), width, height)
	pool := renderer.NewWorkerPool(raytracer, cfg.Workers, cfg.Seed)

	logger.Noticef("rendering %q at %dx%d with %d workers", s.Name, width, height, pool.NumWorkers())
	stats, renderErr := pool.Render(ctx)

	if err := renderer.SaveImage(cfg.Output, raytracer.Image()); err != nil {
		return stats, err
	}
	logger.Noticef("saved %s", cfg.Output)

	writeRenderStats(out, s, stats)
	if renderErr != nil {
		return stats, fmt.Errorf("render interrupted at %.1f%%: %w", 100*stats.Completion(), renderErr)
	}
	return stats, nil
}

// watchAndRender renders, then renders again whenever a watched file
// changes, until ctx is done
func watchAndRender(ctx context.Context, cfg config.RenderConfig, sceneName, configPath string, out io.Writer) error {
	files := []string{}
	switch strings.ToLower(filepath.Ext(sceneName)) {
	case ".yaml", ".yml":
		sceneFiles, err := scene.DescriptionFiles(sceneName)
		if err != nil {
			return err
		}
		files = append(files, sceneFiles...)
	}
	if configPath != "" {
		files = append(files, configPath)
	}
	if len(files) == 0 {
		return errors.New("--watch needs a scene file or a config file")
	}

	fw, err := watcher.NewFileWatcher(200 * time.Millisecond)
	if err != nil {
		return err
	}
	defer fw.Close()

	changes := make(chan string, 1)
	if err := fw.Watch(files, func(path string) {
		select {
		case changes <- path:
		default:
		}
	}); err != nil {
		return err
	}
	fw.Start(ctx)

	for {
		if _, err := renderOnce(ctx, cfg, sceneName, out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Errorf("render failed: %v", err)
		}
		logger.Noticef("watching %d files for changes", fw.Watched())

		next, ok := waitForChange(ctx, changes, cfg, configPath)
		if !ok {
			return nil
		}
		cfg = next
	}
}

// waitForChange blocks until a watched file changes and returns the config
// for the next render. A config file that fails to load keeps the previous
// config and the wait goes on. ok is false once ctx is done.
func waitForChange(ctx context.Context, changes <-chan string, cfg config.RenderConfig, configPath string) (config.RenderConfig, bool) {
	for {
		select {
		case <-ctx.Done():
			return cfg, false
		case path := <-changes:
			if configPath == "" || path != mustAbs(configPath) {
				return cfg, true
			}
			reloaded, err := config.Load(configPath)
			if err != nil {
				logger.Errorf("keeping previous config: %v", err)
				continue
			}
			return reloaded, true
		}
	}
}

func mustAbs(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func writeRenderStats(out io.Writer, s *scene.Scene, stats renderer.RenderStats) {
	sceneStats := s.Stats()

	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Resolution", "Workers", "Samples/pixel", "Pixels/s", "Render time"})
	table.Append([]string{
		s.Name,
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.Workers),
		fmt.Sprintf("%.1f", stats.SamplesPerPixel()),
		fmt.Sprintf("%.0f", stats.PixelsPerSecond()),
		stats.Elapsed.Round(time.Millisecond).String(),
	})
	table.SetFooter([]string{
		fmt.Sprintf("%d surfaces", sceneStats.Surfaces),
		fmt.Sprintf("%d faces", sceneStats.Faces),
		fmt.Sprintf("%d lights", sceneStats.Lights),
		"", "DONE", fmt.Sprintf("%.1f %%", 100*stats.Completion()),
	})
	table.Render()
}
