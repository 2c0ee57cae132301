package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/log"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize           int   // Size of each tile (64x64 recommended)
	InitialSamples     int   // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int   // Maximum total samples per pixel, 0 = scene setting
	MaxPasses          int   // Maximum number of passes
	NumWorkers         int   // Number of parallel workers (0 = use CPU count)
	Seed               int64 // Base seed for the per-tile samplers
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           64,
		InitialSamples:     1,
		MaxSamplesPerPixel: 0, // Use the scene's samples per pixel
		MaxPasses:          7,
		NumWorkers:         0, // Auto-detect CPU count
		Seed:               42,
	}
}

// ProgressiveRaytracer renders in passes of increasing sample counts so a
// preview is available early. Each pass fans tiles out to a worker pool.
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile        // Tile management
	pixelStats    [][]PixelStats // Shared pixel statistics array (global image coordinates)
	workerPool    *WorkerPool    // Worker pool for parallel processing
	started       bool
	logger        log.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer. Image size and
// bounce limit come from samplingConfig; a nil logger uses the package logger.
func NewProgressiveRaytracer(sc *scene.Scene, samplingConfig scene.SamplingConfig, config ProgressiveConfig, logger log.Logger) (*ProgressiveRaytracer, error) {
	width, height := samplingConfig.Width, samplingConfig.Height
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := samplingConfig.Validate(); err != nil {
		return nil, err
	}

	if config.MaxSamplesPerPixel == 0 {
		config.MaxSamplesPerPixel = samplingConfig.SamplesPerPixel
	}
	if err := validateProgressiveConfig(config); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.New("renderer")
	}

	camera, err := sc.NewCamera(width, height)
	if err != nil {
		return nil, err
	}
	tileRenderer := NewTileRenderer(sc, camera, integrator.NewPathTracingIntegrator(samplingConfig), width, height)

	tiles := NewTileGrid(width, height, config.TileSize, config.Seed)

	// Initialize shared pixel statistics array (global image coordinates)
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	return &ProgressiveRaytracer{
		width:      width,
		height:     height,
		config:     config,
		tiles:      tiles,
		pixelStats: pixelStats,
		workerPool: NewWorkerPool(tileRenderer, len(tiles), config.NumWorkers),
		logger:     logger,
	}, nil
}

func validateProgressiveConfig(config ProgressiveConfig) error {
	switch {
	case config.TileSize <= 0:
		return fmt.Errorf("%w: tile size must be positive, got %d", ErrInvalidConfig, config.TileSize)
	case config.MaxPasses <= 0:
		return fmt.Errorf("%w: max passes must be positive, got %d", ErrInvalidConfig, config.MaxPasses)
	case config.MaxSamplesPerPixel <= 0:
		return fmt.Errorf("%w: max samples must be positive, got %d", ErrInvalidConfig, config.MaxSamplesPerPixel)
	case config.InitialSamples <= 0 || config.InitialSamples > config.MaxSamplesPerPixel:
		return fmt.Errorf("%w: initial samples must be in [1, %d], got %d", ErrInvalidConfig, config.MaxSamplesPerPixel, config.InitialSamples)
	}
	return nil
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		return pr.config.MaxSamplesPerPixel
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	return pr.config.InitialSamples + (passNumber-1)*samplesPerPass
}

// RenderPass renders a single progressive pass using parallel processing.
// Passes must be rendered in order; Close releases the workers afterwards.
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (*image.RGBA, RenderStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	startTime := time.Now()
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Infof("Pass %d: target %d samples per pixel (using %d workers)",
		passNumber, targetSamples, pr.workerPool.GetNumWorkers())

	if !pr.started {
		pr.workerPool.Start()
		pr.started = true
	}

	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Ctx:           ctx,
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        taskID,
			PixelStats:    pr.pixelStats,
		})
	}

	// Every submitted tile must be collected before the pixel stats are read
	skipped := 0
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}

		if result.Skipped {
			skipped++
			continue
		}

		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++
		pr.logger.Debugf("Pass %d: tile %d (%v) took %d samples", passNumber, tile.ID, tile.Bounds, result.Stats.TotalSamples)
	}

	if skipped > 0 {
		pr.logger.Debugf("Pass %d: %d of %d tiles skipped", passNumber, skipped, len(pr.tiles))
		return nil, RenderStats{}, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	stats.Duration = time.Since(startTime)
	return img, stats, nil
}

// Close stops the worker pool. The raytracer cannot render after Close.
func (pr *ProgressiveRaytracer) Close() {
	if pr.started {
		pr.workerPool.Stop()
		pr.started = false
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// RenderProgressive renders all passes on a background goroutine and streams
// each pass on the returned channel. Both channels are closed when rendering
// stops; a cancelled context yields an ErrInterrupted error.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)
		defer pr.Close()

		pr.logger.Infof("Starting progressive rendering with %d passes...", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			img, stats, err := pr.RenderPass(ctx, pass)
			if err != nil {
				pr.logger.Warningf("Rendering stopped before pass %d: %v", pass, err)
				errChan <- err
				return
			}

			pr.logger.Infof("Pass %d completed in %v (average %.1f samples/pixel)",
				pass, stats.Duration, stats.AverageSamples)

			isLast := pass == pr.config.MaxPasses || stats.MinSamples >= pr.config.MaxSamplesPerPixel
			result := PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}

			// A finished pass goes out whenever the consumer has room, even after cancellation
			select {
			case passChan <- result:
			default:
				select {
				case passChan <- result:
				case <-ctx.Done():
					errChan <- fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
					return
				}
			}

			if isLast {
				break
			}
		}
	}()

	return passChan, errChan
}

// assembleCurrentImage creates an image from the current state of the shared pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))
	stats := newRenderStats(pr.width*pr.height, targetSamples)

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y][x]
			img.SetRGBA(x, y, vec3ToColor(pixel.GetColor()))
			stats.update(pixel.SampleCount)
		}
	}

	stats.finalize()
	return img, stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-specific sampler, so results do not depend on scheduling
}

// NewTile creates a new tile whose sampler is seeded from seed and the tile ID
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
