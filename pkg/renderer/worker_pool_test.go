package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestWorkerPool_RendersAllTiles(t *testing.T) {
	width, height := 20, 12
	tr := NewTileRenderer(createTestWorld(), createTestCamera(t, 1), &MockIntegrator{returnColor: core.NewVec3(1, 1, 1)}, width, height)
	tiles := NewTileGrid(width, height, 8, 0)
	pixelStats := newPixelStatsGrid(width, height)

	pool := NewWorkerPool(tr, len(tiles), 1)
	pool.Start(context.Background())
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, PassNumber: 1, TargetSamples: 2, TaskID: i, PixelStats: pixelStats})
	}

	seen := make(map[int]bool)
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("Result queue closed early")
		}
		if result.Error != nil {
			t.Fatalf("Tile %d failed: %v", result.TaskID, result.Error)
		}
		seen[result.TaskID] = true
	}
	pool.Stop()

	if len(seen) != len(tiles) {
		t.Errorf("Expected %d distinct results, got %d", len(tiles), len(seen))
	}
	for row := range pixelStats {
		for x := range pixelStats[row] {
			if pixelStats[row][x].SampleCount != 2 {
				t.Fatalf("Pixel (%d,%d) has %d samples", x, row, pixelStats[row][x].SampleCount)
			}
		}
	}
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	width, height := 16, 16
	mockIntegrator := &MockIntegrator{returnColor: core.NewVec3(1, 1, 1)}
	tr := NewTileRenderer(createTestWorld(), createTestCamera(t, 1), mockIntegrator, width, height)
	tiles := NewTileGrid(width, height, 8, 0)
	pixelStats := newPixelStatsGrid(width, height)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(tr, len(tiles), 2)
	if pool.GetNumWorkers() != 2 {
		t.Errorf("Expected 2 workers, got %d", pool.GetNumWorkers())
	}
	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TargetSamples: 1, TaskID: i, PixelStats: pixelStats})
	}
	pool.Stop()

	count := 0
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		count++
		if !errors.Is(result.Error, context.Canceled) {
			t.Errorf("Tile %d: expected context.Canceled, got %v", result.TaskID, result.Error)
		}
	}
	if count != len(tiles) {
		t.Errorf("Every submitted tile should be answered, got %d of %d", count, len(tiles))
	}
	if mockIntegrator.callCount != 0 {
		t.Errorf("No samples should be taken after cancellation, got %d", mockIntegrator.callCount)
	}
}
