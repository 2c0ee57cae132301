package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Raytracer renders a whole image on the calling goroutine with one sampler.
// Pixels are visited from the top row to the bottom row, left to right, so a
// given sampler sequence always produces the same image.
type Raytracer struct {
	tileRenderer  *TileRenderer
	width, height int
	config        scene.SamplingConfig
}

// NewRaytracer creates a raytracer for sc using config for image size,
// samples per pixel and bounce limit.
func NewRaytracer(sc *scene.Scene, config scene.SamplingConfig) (*Raytracer, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, config.Width, config.Height)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	camera, err := sc.NewCamera(config.Width, config.Height)
	if err != nil {
		return nil, err
	}

	return &Raytracer{
		tileRenderer: NewTileRenderer(sc, camera, integrator.NewPathTracingIntegrator(config), config.Width, config.Height),
		width:        config.Width,
		height:       config.Height,
		config:       config,
	}, nil
}

// Render produces the image. Cancellation is checked between rows; a
// cancelled render returns an error matching both ErrInterrupted and ctx.Err().
func (rt *Raytracer) Render(ctx context.Context, sampler core.Sampler) (*image.RGBA, RenderStats, error) {
	start := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	stats := newRenderStats(rt.width*rt.height, rt.config.SamplesPerPixel)

	for y := 0; y < rt.height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, RenderStats{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		for x := 0; x < rt.width; x++ {
			var ps PixelStats
			stats.update(rt.tileRenderer.samplePixel(x, y, &ps, sampler, rt.config.SamplesPerPixel))
			img.SetRGBA(x, y, vec3ToColor(ps.GetColor()))
		}
	}

	stats.finalize()
	stats.Duration = time.Since(start)
	return img, stats, nil
}

// vec3ToColor clamps a linear color to [0, 1], applies gamma 2 and
// quantizes each channel as int(255.99 * c)
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0).Sqrt()

	return color.RGBA{
		R: uint8(255.99 * colorVec.X),
		G: uint8(255.99 * colorVec.Y),
		B: uint8(255.99 * colorVec.Z),
		A: 255,
	}
}
