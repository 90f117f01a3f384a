package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for a pixel inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	SurfaceType  string                 `json:"surfaceType,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Entering     bool                   `json:"entering"`
	Color        [3]float64             `json:"color"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vecJSON(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes a material for the inspector
func extractMaterialInfo(mat core.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	m, ok := mat.(*material.Phong)
	if !ok {
		return "unknown", properties
	}

	switch diffuse := m.Diffuse.(type) {
	case *material.SolidColor:
		properties["diffuse"] = vecJSON(diffuse.Color)
		properties["color"] = hexColor(diffuse.Color)
	case *material.ImageTexture:
		properties["texture"] = fmt.Sprintf("%dx%d", diffuse.Width, diffuse.Height)
		properties["bilinear"] = diffuse.Bilinear
	}
	properties["emissive"] = vecJSON(m.Emissive)
	properties["specular"] = vecJSON(m.Specular)
	properties["reflective"] = vecJSON(m.Reflective)
	properties["transmissive"] = vecJSON(m.Transmissive)
	properties["shininess"] = m.Shininess
	properties["refractiveIndex"] = m.RefractiveIndex

	switch {
	case !m.Transmissive.IsZero():
		return "transmissive", properties
	case !m.Reflective.IsZero():
		return "reflective", properties
	default:
		return "phong", properties
	}
}

// extractSurfaceInfo describes the surface that was hit
func extractSurfaceInfo(surface core.Surface) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := surface.(type) {
	case *geometry.Sphere:
		properties["center"] = vecJSON(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Box:
		properties["center"] = vecJSON(geom.Center)
		properties["size"] = vecJSON(geom.Size)
		properties["rotation"] = vecJSON(geom.Rotation)
		return "box", properties

	case *geometry.Quad:
		properties["corner"] = vecJSON(geom.Corner)
		properties["u"] = vecJSON(geom.U)
		properties["v"] = vecJSON(geom.V)
		properties["normal"] = vecJSON(geom.Normal())
		return "quad", properties

	case *geometry.Disc:
		properties["center"] = vecJSON(geom.Center)
		properties["normal"] = vecJSON(geom.Normal)
		properties["radius"] = geom.Radius
		return "disc", properties

	case *geometry.Cylinder:
		properties["baseCenter"] = vecJSON(geom.BaseCenter)
		properties["topCenter"] = vecJSON(geom.TopCenter)
		properties["radius"] = geom.Radius
		properties["capped"] = geom.Capped
		return "cylinder", properties

	case *geometry.Cone:
		properties["baseCenter"] = vecJSON(geom.BaseCenter)
		properties["baseRadius"] = geom.BaseRadius
		properties["topCenter"] = vecJSON(geom.TopCenter)
		properties["topRadius"] = geom.TopRadius
		properties["capped"] = geom.Capped
		return "cone", properties

	case *geometry.Face:
		properties["indices"] = geom.Indices()
		properties["faceNormal"] = vecJSON(geom.Normal())
		return "face", properties

	case *geometry.Mesh:
		properties["faceCount"] = geom.FaceCount()
		bbox := geom.BoundingBox()
		properties["boundingBox"] = map[string]interface{}{
			"min": vecJSON(bbox.Min),
			"max": vecJSON(bbox.Max),
		}
		return "mesh", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel traces the center ray of image pixel (px, py), counted from
// the top-left corner, and reports the nearest hit and the traced color
func inspectPixel(sc *scene.Scene, config integrator.Config, width, height, px, py int) InspectResponse {
	camera := sc.Camera(float64(width) / float64(height))
	// The image is stored bottom-up
	ray := camera.RayThrough(float64(px)/float64(width), float64(height-1-py)/float64(height))

	whitted := integrator.NewWhittedIntegrator(sc, config)
	color := whitted.TraceRay(ray, config.MaxDepth, core.NewVec3(1, 1, 1))

	isect, ok := sc.Intersect(ray)
	if !ok {
		return InspectResponse{Color: vecJSON(color)}
	}

	materialType, materialProps := extractMaterialInfo(isect.Material)
	surfaceType, surfaceProps := extractSurfaceInfo(isect.Surface)

	return InspectResponse{
		Hit:          true,
		SurfaceType:  surfaceType,
		MaterialType: materialType,
		Point:        vecJSON(ray.At(isect.T)),
		Normal:       vecJSON(isect.Normal),
		Distance:     isect.T,
		Entering:     isect.Normal.Dot(ray.Direction) < 0,
		Color:        vecJSON(color),
		Properties: map[string]interface{}{
			"material": materialProps,
			"surface":  surfaceProps,
		},
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid y coordinate")
		return
	}

	sc, err := s.loadScene(req.Scene)
	if err != nil {
		writeError(w, sceneStatus(err), err.Error())
		return
	}

	cfg := s.requestConfig(req)
	height := cfg.ResolveHeight(sc.CameraConfig.AspectRatio)
	if pixelX < 0 || pixelX >= cfg.Width || pixelY < 0 || pixelY >= height {
		writeError(w, http.StatusBadRequest, "pixel coordinates out of bounds")
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sc, cfg.IntegratorConfig(s.environment), cfg.Width, height, pixelX, pixelY))
}
