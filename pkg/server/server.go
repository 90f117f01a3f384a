package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/config"
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/log"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

var logger = log.New("server")

// Request size limits
const (
	maxImageSize    = 2000
	maxSuperSamples = 64
	maxDepthLimit   = 20
)

// Server renders and inspects scenes over HTTP
type Server struct {
	addr        string
	sceneDir    string
	config      config.RenderConfig
	environment core.Environment // Cube map shared by every request, or nil
	mux         *http.ServeMux
}

// NewServer creates a server listening on addr. Scene files are served from
// sceneDir; cfg supplies the defaults for request parameters. A configured
// cube map is loaded once here.
func NewServer(addr, sceneDir string, cfg config.RenderConfig) (*Server, error) {
	s := &Server{
		addr:     addr,
		sceneDir: sceneDir,
		config:   cfg,
		mux:      http.NewServeMux(),
	}
	if cfg.UseCubeMap {
		cubeMap, err := loaders.LoadCubeMap(cfg.CubeMapFaces())
		if err != nil {
			return nil, err
		}
		s.environment = cubeMap
	}
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s, nil
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warningf("shutdown: %v", err)
		}
	}()

	logger.Noticef("starting web server on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RenderRequest holds the parsed parameters shared by render and inspect
type RenderRequest struct {
	Scene        string
	Width        int
	Height       int // 0 derives the height from the camera aspect ratio
	MaxDepth     int
	SuperSamples int
}

// SceneSummary describes one scene in the /api/scenes listing
type SceneSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAll(s.sceneDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]SceneSummary, 0, len(scenes))
	for _, info := range scenes {
		id := info.ID
		if info.Type == scene.TypeYAML {
			id = fileID(info.FilePath)
		}
		summaries = append(summaries, SceneSummary{
			ID:          id,
			Name:        info.DisplayName,
			Type:        info.Type,
			Description: info.Description,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleRender renders the requested scene and responds with the image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	format := renderer.FormatPNG
	if name := r.URL.Query().Get("format"); name != "" {
		if format, err = renderer.FormatFromPath("image." + name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sc, err := s.loadScene(req.Scene)
	if err != nil {
		writeError(w, sceneStatus(err), err.Error())
		return
	}

	cfg := s.requestConfig(req)
	height := cfg.ResolveHeight(sc.CameraConfig.AspectRatio)
	camera := sc.Camera(float64(cfg.Width) / float64(height))

	whitted := integrator.NewWhittedIntegrator(sc, cfg.IntegratorConfig(s.environment))
	raytracer := renderer.NewRaytracer(camera, whitted, cfg.SamplingConfig(), cfg.Width, height)
	pool := renderer.NewWorkerPool(raytracer, cfg.Workers, cfg.Seed)

	// A disconnected client cancels the render
	stats, err := pool.Render(r.Context())
	if err != nil {
		logger.Infof("render of %q canceled: %v", req.Scene, err)
		return
	}
	logger.Infof("rendered %q at %dx%d in %v", req.Scene, stats.Width, stats.Height, stats.Elapsed)

	w.Header().Set("Content-Type", "image/"+string(format))
	w.Header().Set("X-Render-Time", stats.Elapsed.String())
	if err := renderer.Encode(w, raytracer.Image(), format); err != nil {
		logger.Errorf("failed to encode image: %v", err)
	}
}

// parseRenderRequest parses and validates the query parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 0, maxImageSize); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", s.config.MaxDepth, 0, maxDepthLimit); err != nil {
		return nil, err
	}
	if req.SuperSamples, err = parseIntParam(values, "samples", s.config.SuperSamples, 1, maxSuperSamples); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func (s *Server) requestConfig(req *RenderRequest) config.RenderConfig {
	cfg := s.config
	cfg.Width = req.Width
	cfg.Height = req.Height
	cfg.MaxDepth = req.MaxDepth
	cfg.SuperSamples = req.SuperSamples
	return cfg
}

// loadScene resolves a built-in scene ID or the base name of a file in the
// scene directory, then builds its tree. Arbitrary paths are never opened.
func (s *Server) loadScene(id string) (*scene.Scene, error) {
	var sc *scene.Scene
	var err error
	if strings.ContainsAny(id, `/\`) || filepath.Ext(id) != "" {
		return nil, fmt.Errorf("%q: %w", id, scene.ErrUnknownScene)
	}

	files, listErr := scene.ListDescriptions(s.sceneDir)
	if listErr != nil {
		return nil, listErr
	}
	for _, info := range files {
		if fileID(info.FilePath) == id {
			sc, err = scene.LoadDescription(info.FilePath)
			break
		}
	}
	if sc == nil && err == nil {
		sc, err = scene.Load(id)
	}
	if err != nil {
		return nil, err
	}

	sc.Build(s.config.BVHConfig(logger), s.config.UseBVH)
	return sc, nil
}

func fileID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func sceneStatus(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
