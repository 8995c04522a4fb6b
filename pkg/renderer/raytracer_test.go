package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

func smallConfig() Config {
	return Config{
		Width:           24,
		Height:          16,
		SamplesPerPixel: 4,
		MaxDepth:        10,
		TileSize:        8,
		NumWorkers:      2,
		Seed:            7,
	}
}

func TestRender_DeterministicAcrossWorkerCounts(t *testing.T) {
	world := createTestWorld()
	camera := createTestCamera(t, 1.5)

	var reference *Framebuffer
	for _, workers := range []int{1, 2, 5} {
		config := smallConfig()
		config.NumWorkers = workers

		fb, _, err := Render(context.Background(), world, camera, config, NopLogger{})
		if err != nil {
			t.Fatalf("Render with %d workers failed: %v", workers, err)
		}
		if reference == nil {
			reference = fb
			continue
		}
		for i := range fb.Pix {
			if fb.Pix[i] != reference.Pix[i] {
				t.Fatalf("Workers=%d: pixel %d differs (%v vs %v)", workers, i, fb.Pix[i], reference.Pix[i])
			}
		}
	}
}

func TestRender_SeedChangesNoise(t *testing.T) {
	world := createTestWorld()
	camera := createTestCamera(t, 1.5)

	configA := smallConfig()
	configB := smallConfig()
	configB.Seed = configA.Seed + 1000

	fbA, _, errA := Render(context.Background(), world, camera, configA, nil)
	fbB, _, errB := Render(context.Background(), world, camera, configB, nil)
	if errA != nil || errB != nil {
		t.Fatalf("Render failed: %v %v", errA, errB)
	}

	differs := false
	for i := range fbA.Pix {
		if fbA.Pix[i] != fbB.Pix[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("Different seeds should give different sample noise")
	}
}

func TestRender_Stats(t *testing.T) {
	config := smallConfig()
	fb, stats, err := Render(context.Background(), createTestWorld(), createTestCamera(t, 1.5), config, NopLogger{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if fb.Width != config.Width || fb.Height != config.Height || len(fb.Pix) != config.Width*config.Height {
		t.Fatalf("Unexpected framebuffer size %dx%d (%d pixels)", fb.Width, fb.Height, len(fb.Pix))
	}
	if stats.TotalPixels != config.Width*config.Height {
		t.Errorf("Expected %d pixels, got %d", config.Width*config.Height, stats.TotalPixels)
	}
	if stats.TotalSamples != config.Width*config.Height*config.SamplesPerPixel {
		t.Errorf("Expected %d samples, got %d", config.Width*config.Height*config.SamplesPerPixel, stats.TotalSamples)
	}
	if stats.MinSamples != config.SamplesPerPixel {
		t.Errorf("Every pixel should have %d samples, min was %d", config.SamplesPerPixel, stats.MinSamples)
	}
}

func TestRender_EmptyWorldShowsSky(t *testing.T) {
	config := smallConfig()
	fb, _, err := Render(context.Background(), geometry.NewHittableList(), createTestCamera(t, 1.5), config, NopLogger{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	top := fb.At(config.Width/2, 0)
	bottom := fb.At(config.Width/2, config.Height-1)

	// The sky gets bluer toward the top: red falls while blue stays saturated
	if top.R >= bottom.R {
		t.Errorf("Top row should be less red than bottom row, got top %v bottom %v", top, bottom)
	}
	if top.B != 255 || bottom.B != 255 {
		t.Errorf("Blue channel should be saturated everywhere, got top %v bottom %v", top, bottom)
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb, _, err := Render(ctx, createTestWorld(), createTestCamera(t, 1.5), smallConfig(), NopLogger{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if fb != nil {
		t.Error("Cancelled render should not return a framebuffer")
	}
}

func TestRender_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero samples", func(c *Config) { c.SamplesPerPixel = 0 }},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"negative workers", func(c *Config) { c.NumWorkers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := smallConfig()
			tt.modify(&config)
			_, _, err := Render(context.Background(), createTestWorld(), createTestCamera(t, 1.5), config, nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRender_ZeroDepthIsBlack(t *testing.T) {
	config := smallConfig()
	config.MaxDepth = 0

	fb, _, err := Render(context.Background(), createTestWorld(), createTestCamera(t, 1.5), config, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i, p := range fb.Pix {
		if p != (RGB8{}) {
			t.Fatalf("Pixel %d should be black with no bounces, got %v", i, p)
		}
	}
}

func TestRenderWith_MockIntegrator(t *testing.T) {
	config := smallConfig()
	mockIntegrator := &MockIntegrator{returnColor: core.NewVec3(1, 1, 1)}
	config.NumWorkers = 1

	fb, _, err := RenderWith(context.Background(), createTestWorld(), createTestCamera(t, 1.5), mockIntegrator, config, nil)
	if err != nil {
		t.Fatalf("RenderWith failed: %v", err)
	}
	for i, p := range fb.Pix {
		if p != (RGB8{255, 255, 255}) {
			t.Fatalf("Pixel %d: expected white, got %v", i, p)
		}
	}
	if mockIntegrator.callCount != config.Width*config.Height*config.SamplesPerPixel {
		t.Errorf("Unexpected integrator call count %d", mockIntegrator.callCount)
	}
}
