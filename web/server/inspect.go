package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// InspectRequest selects a pixel of a scene rendered at the given width
type InspectRequest struct {
	Scene string `query:"scene"`
	Width int    `query:"width"`
	Seed  int64  `query:"seed"`
	X     int    `query:"x"` // Pixel column, 0 at the left
	Y     int    `query:"y"` // Pixel row, 0 at the top
}

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
	Camera       CameraInfo             `json:"camera"`
}

// CameraInfo describes the lens the inspection ray left from
type CameraInfo struct {
	Origin     [3]float64 `json:"origin"`
	Right      [3]float64 `json:"right"`   // u
	Up         [3]float64 `json:"up"`      // v
	Forward    [3]float64 `json:"forward"` // -w, the viewing direction
	LensRadius float64    `json:"lensRadius"`
}

func newCameraInfo(camera *geometry.Camera) CameraInfo {
	u, v, w := camera.Basis()
	return CameraInfo{
		Origin:     vecArray(camera.Origin()),
		Right:      vecArray(u),
		Up:         vecArray(v),
		Forward:    vecArray(w.Negate()),
		LensRadius: camera.LensRadius(),
	}
}

// lensCenterSampler always returns 0.5, so camera rays leave from the center of the lens
type lensCenterSampler struct{}

func (lensCenterSampler) Get1D() float64 { return 0.5 }
func (lensCenterSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }
func (lensCenterSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }

// handleInspect reports what the center ray of a pixel hits first
func (s *Server) handleInspect(c echo.Context) error {
	defaults := defaultRenderRequest()
	req := InspectRequest{Scene: defaults.Scene, Width: defaults.Width}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
	}
	if err := checkRange("width", req.Width, minWidth, maxWidth); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sceneObj, err := s.createScene(RenderRequest{Scene: req.Scene, Width: req.Width, Seed: req.Seed,
		Samples: defaults.Samples, MaxDepth: defaults.MaxDepth})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	if req.X < 0 || req.X >= width || req.Y < 0 || req.Y >= height {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("pixel (%d, %d) outside %dx%d image", req.X, req.Y, width, height))
	}

	return c.JSON(http.StatusOK, inspectPixel(sceneObj, width, height, req.X, req.Y))
}

// inspectPixel casts the center ray of a pixel and describes the closest sphere it hits
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResponse {
	u := (float64(pixelX) + 0.5) / float64(width)
	v := (float64(height-1-pixelY) + 0.5) / float64(height)
	ray := sceneObj.Camera.GetRay(u, v, lensCenterSampler{})

	cameraInfo := newCameraInfo(sceneObj.Camera)

	closest, shape, ok := sceneObj.World.HitShape(ray, 0.001, math.Inf(1))
	if !ok {
		return InspectResponse{Hit: false, Camera: cameraInfo}
	}

	materialType, properties := extractMaterialInfo(closest.Material)
	geometryType := "unknown"
	if sphere, ok := shape.(*geometry.Sphere); ok {
		geometryType = "sphere"
		properties["center"] = vecArray(sphere.Center)
		properties["radius"] = sphere.Radius
	}

	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(closest.Point),
		Normal:       vecArray(closest.Normal),
		Distance:     closest.T * ray.Direction.Length(),
		FrontFace:    closest.FrontFace,
		Properties:   properties,
		Camera:       cameraInfo,
	}
}

// extractMaterialInfo names a material and lists its parameters
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	case nil:
		return "none", properties

	default:
		return "unknown", properties
	}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}
