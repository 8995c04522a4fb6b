package integrator

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// Background is a vertical sky gradient seen by rays that escape the scene
type Background struct {
	Top    core.Vec3 // Color straight up
	Bottom core.Vec3 // Color straight down
}

// DefaultBackground is white at the horizon line blending to a light blue sky
func DefaultBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Config holds the path tracer parameters
type Config struct {
	MaxDepth   int     // Maximum number of surface interactions per path
	TMin       float64 // Minimum hit distance, avoids self-intersection
	Background Background
}

// DefaultConfig returns the standard path tracer parameters
func DefaultConfig() Config {
	return Config{
		MaxDepth:   50,
		TMin:       0.001,
		Background: DefaultBackground(),
	}
}

// PathTracingIntegrator implements unidirectional path tracing without light sampling.
// The only light source is the background gradient.
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	return &PathTracingIntegrator{config: config}
}

// Config returns the integrator parameters
func (pt *PathTracingIntegrator) Config() Config {
	return pt.config
}

// RayColor follows the path bounce by bounce, accumulating the product of
// attenuations as throughput until the path escapes, is absorbed, or runs out of depth.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)

	for depth := pt.config.MaxDepth; depth > 0; depth-- {
		hit, isHit := world.Hit(ray, pt.config.TMin, math.Inf(1))
		if !isHit || hit.Material == nil {
			return throughput.MultiplyVec(pt.BackgroundGradient(ray))
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Bounce limit exceeded, no more light is gathered
	return core.Vec3{}
}

// BackgroundGradient returns the sky color for a ray that hits nothing
func (pt *PathTracingIntegrator) BackgroundGradient(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	bg := pt.config.Background
	return bg.Bottom.Multiply(1.0 - t).Add(bg.Top.Multiply(t))
}
