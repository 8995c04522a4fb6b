package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// ErrInvalidConfig is returned for render settings that cannot produce an image
var ErrInvalidConfig = errors.New("renderer: invalid configuration")

// Config contains the settings of a single-pass render
type Config struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	TileSize        int   // Edge length of a square work tile
	NumWorkers      int   // Number of parallel workers (0 = use CPU count)
	Seed            int64 // Base seed; equal seeds give identical images
}

// DefaultConfig returns the classic 1200x800, 500 samples per pixel settings
func DefaultConfig() Config {
	return Config{
		Width:           1200,
		Height:          800,
		SamplesPerPixel: 500,
		MaxDepth:        50,
		TileSize:        32,
		NumWorkers:      0,
		Seed:            0,
	}
}

// Validate rejects settings that cannot produce an image
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}

// Progressive converts the settings into a progressive configuration with the given pass count
func (c Config) Progressive(passes int) ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           c.TileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: c.SamplesPerPixel,
		MaxPasses:          passes,
		NumWorkers:         c.NumWorkers,
		Seed:               c.Seed,
	}
}

// Integrator returns the path tracer configured with the settings' depth and the default sky
func (c Config) Integrator() *integrator.PathTracingIntegrator {
	integratorConfig := integrator.DefaultConfig()
	integratorConfig.MaxDepth = c.MaxDepth
	return integrator.NewPathTracingIntegrator(integratorConfig)
}

// Render draws the world through the camera in one pass of SamplesPerPixel samples.
// It returns ctx.Err() if cancelled before every tile finished.
func Render(ctx context.Context, world geometry.Shape, camera *geometry.Camera, config Config, logger core.Logger) (*Framebuffer, RenderStats, error) {
	return RenderWith(ctx, world, camera, config.Integrator(), config, logger)
}

// RenderWith is Render with a caller-supplied integrator
func RenderWith(ctx context.Context, world geometry.Shape, camera *geometry.Camera, integratorInst integrator.Integrator, config Config, logger core.Logger) (*Framebuffer, RenderStats, error) {
	if err := config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}
	if logger == nil {
		logger = NopLogger{}
	}

	pr, err := NewProgressiveRaytracer(world, camera, integratorInst, config.Width, config.Height, config.Progressive(1), logger)
	if err != nil {
		return nil, RenderStats{}, err
	}

	startTime := time.Now()
	logger.Printf("Rendering %dx%d at %d samples per pixel, depth %d\n",
		config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth)

	fb, stats, err := pr.RenderPass(ctx, 1)
	if err != nil {
		return nil, RenderStats{}, err
	}

	logger.Printf("Render completed in %v (%d samples)\n", time.Since(startTime), stats.TotalSamples)
	return fb, stats, nil
}
