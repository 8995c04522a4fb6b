package renderer

import (
	"image"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	world         geometry.Shape
	camera        *geometry.Camera
	integrator    integrator.Integrator
	width, height int
}

// NewTileRenderer creates a tile renderer for an image of the given size
func NewTileRenderer(world geometry.Shape, camera *geometry.Camera, integratorInst integrator.Integrator, width, height int) *TileRenderer {
	return &TileRenderer{
		world:      world,
		camera:     camera,
		integrator: integratorInst,
		width:      width,
		height:     height,
	}
}

// RenderTileBounds brings every pixel within bounds up to targetSamples.
// Bounds are in image coordinates with row 0 at the top.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples,
	}

	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			samplesUsed := tr.samplePixel(x, row, &pixelStats[row][x], sampler, targetSamples)
			stats.TotalSamples += samplesUsed
			stats.MinSamples = min(stats.MinSamples, samplesUsed)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats
}

// samplePixel takes jittered samples until the pixel reaches targetSamples
func (tr *TileRenderer) samplePixel(x, row int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	initialSampleCount := ps.SampleCount

	// Camera t runs bottom to top, image rows top to bottom
	flippedRow := float64(tr.height - 1 - row)

	for ps.SampleCount < targetSamples {
		s := (float64(x) + sampler.Get1D()) / float64(tr.width)
		t := (flippedRow + sampler.Get1D()) / float64(tr.height)

		ray := tr.camera.GetRay(s, t, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.world, sampler))
	}

	return ps.SampleCount - initialSampleCount
}
