package scene

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	SamplingConfig SamplingConfig
	Background     integrator.Background
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int `json:"width"`           // Image width
	Height          int `json:"height"`          // Image height, derived from width and aspect ratio
	SamplesPerPixel int `json:"samplesPerPixel"` // Number of rays per pixel
	MaxDepth        int `json:"maxDepth"`        // Maximum ray bounce depth
}

// New creates an empty scene with the given camera. The image height follows the camera aspect ratio.
func New(cameraConfig geometry.CameraConfig, sampling SamplingConfig) (*Scene, error) {
	s := &Scene{
		World:          geometry.NewHittableList(),
		SamplingConfig: sampling,
		Background:     integrator.DefaultBackground(),
	}
	if err := s.SetCamera(cameraConfig); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCamera rebuilds the camera from config and recomputes the image height
func (s *Scene) SetCamera(config geometry.CameraConfig) error {
	camera, err := geometry.NewCamera(config)
	if err != nil {
		return err
	}
	s.Camera = camera
	s.CameraConfig = config
	if s.SamplingConfig.Width > 0 {
		s.SamplingConfig.Height = imageHeight(s.SamplingConfig.Width, config.AspectRatio)
	}
	return nil
}

// SetWidth changes the image width, keeping the camera aspect ratio
func (s *Scene) SetWidth(width int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = imageHeight(width, s.CameraConfig.AspectRatio)
}

func imageHeight(width int, aspectRatio float64) int {
	return max(1, int(float64(width)/aspectRatio))
}

// Add validates shape and appends it to the world. Not safe during a render.
func (s *Scene) Add(shape geometry.Shape) error {
	if v, ok := shape.(geometry.Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("adding shape %d: %w", s.World.Len(), err)
		}
	}
	s.World.Add(shape)
	return nil
}

// Clear removes every shape
func (s *Scene) Clear() {
	s.World.Clear()
}

// Len returns the number of top-level shapes
func (s *Scene) Len() int {
	return s.World.Len()
}

// Integrator returns a path tracer using the scene's depth and background
func (s *Scene) Integrator() *integrator.PathTracingIntegrator {
	config := integrator.DefaultConfig()
	config.MaxDepth = s.SamplingConfig.MaxDepth
	config.Background = s.Background
	return integrator.NewPathTracingIntegrator(config)
}

// RenderConfig returns renderer settings matching the scene's sampling config
func (s *Scene) RenderConfig() renderer.Config {
	config := renderer.DefaultConfig()
	config.Width = s.SamplingConfig.Width
	config.Height = s.SamplingConfig.Height
	config.SamplesPerPixel = s.SamplingConfig.SamplesPerPixel
	config.MaxDepth = s.SamplingConfig.MaxDepth
	return config
}
