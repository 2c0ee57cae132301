package renderer

import (
	"context"
	"image"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// MockIntegrator returns a fixed color and records the rays it is asked about
type MockIntegrator struct {
	returnColor core.Vec3
	rays        []core.Ray
}

func (m *MockIntegrator) RayColor(ray core.Ray, world integrator.World, sampler core.Sampler) core.Vec3 {
	m.rays = append(m.rays, ray)
	return m.returnColor
}

func createTileRenderer(t *testing.T, width, height int, integ integrator.Integrator) *TileRenderer {
	t.Helper()
	config := pinholeCamera()
	config.AspectRatio = float64(width) / float64(height)
	camera, err := geometry.NewCamera(config)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return NewTileRenderer(createTestScene(t), camera, integ, width, height)
}

func newPixelStats(width, height int) [][]PixelStats {
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}
	return pixelStats
}

func TestTileRenderer_SamplesToTarget(t *testing.T) {
	mock := &MockIntegrator{returnColor: core.NewVec3(0.5, 0.25, 1)}
	tr := createTileRenderer(t, 8, 8, mock)
	pixelStats := newPixelStats(8, 8)
	bounds := image.Rect(2, 2, 6, 5)

	stats := tr.RenderTileBounds(bounds, pixelStats, core.NewSeededSampler(1), 3)

	if stats.TotalPixels != 12 || stats.TotalSamples != 36 {
		t.Errorf("Expected 12 pixels and 36 samples, got %+v", stats)
	}
	if len(mock.rays) != 36 {
		t.Errorf("Expected 36 integrator calls, got %d", len(mock.rays))
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inside := image.Pt(x, y).In(bounds)
			ps := pixelStats[y][x]
			if inside && (ps.SampleCount != 3 || !ps.GetColor().Equals(mock.returnColor)) {
				t.Errorf("Pixel (%d,%d) inside tile: got %d samples, color %v", x, y, ps.SampleCount, ps.GetColor())
			}
			if !inside && ps.SampleCount != 0 {
				t.Errorf("Pixel (%d,%d) outside tile was sampled", x, y)
			}
		}
	}

	// A second pass with the same target adds nothing
	again := tr.RenderTileBounds(bounds, pixelStats, core.NewSeededSampler(1), 3)
	if again.TotalSamples != 0 {
		t.Errorf("Expected no additional samples, got %d", again.TotalSamples)
	}
}

func TestTileRenderer_RowsCountFromBottom(t *testing.T) {
	mock := &MockIntegrator{}
	tr := createTileRenderer(t, 4, 2, mock)
	pixelStats := newPixelStats(4, 2)

	// Centered jitter puts every ray through its pixel center
	tr.RenderTileBounds(image.Rect(0, 0, 4, 2), pixelStats, core.NewSequenceSampler(0.5), 1)

	if len(mock.rays) != 8 {
		t.Fatalf("Expected 8 rays, got %d", len(mock.rays))
	}

	// First ray is the top-left pixel, last is the bottom-right
	first, last := mock.rays[0].Direction, mock.rays[7].Direction
	if first.X >= 0 || first.Y <= 0 {
		t.Errorf("First ray should point up and left, got %v", first)
	}
	if last.X <= 0 || last.Y >= 0 {
		t.Errorf("Last ray should point down and right, got %v", last)
	}

	// Left to right within the top row
	for i := 1; i < 4; i++ {
		if mock.rays[i].Direction.X <= mock.rays[i-1].Direction.X {
			t.Errorf("Ray %d should be right of ray %d", i, i-1)
		}
	}
}

// cancellingIntegrator cancels its context on the first ray
type cancellingIntegrator struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingIntegrator) RayColor(ray core.Ray, world integrator.World, sampler core.Sampler) core.Vec3 {
	c.calls++
	c.cancel()
	return core.Vec3{}
}

func TestWorkerPool_SkipsTilesAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	integ := &cancellingIntegrator{cancel: cancel}
	tr := createTileRenderer(t, 8, 8, integ)
	tiles := NewTileGrid(8, 8, 4, 1)
	pixelStats := newPixelStats(8, 8)

	pool := NewWorkerPool(tr, len(tiles), 1)
	pool.Start()
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Ctx: ctx, Tile: tile, TargetSamples: 2, TaskID: i, PixelStats: pixelStats})
	}

	skipped := 0
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("Result queue closed early")
		}
		if result.Skipped {
			skipped++
		}
	}
	pool.Stop()

	// The tile in progress finishes; every later tile is skipped
	if skipped != len(tiles)-1 {
		t.Errorf("Expected %d skipped tiles, got %d", len(tiles)-1, skipped)
	}
	if integ.calls != 4*4*2 {
		t.Errorf("Expected one tile of samples (32), got %d", integ.calls)
	}
}
