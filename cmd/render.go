package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/imageio"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := scene.LoadScene(ctx.String("scene"), ctx.GlobalString("scenes-dir"))
	if err != nil {
		return err
	}

	samplingConfig := scene.MergeSamplingConfig(sc.SamplingConfig, scene.SamplingConfig{
		Width:           ctx.Int("width"),
		Height:          ctx.Int("height"),
		SamplesPerPixel: ctx.Int("spp"),
		MaxDepth:        ctx.Int("depth"),
	})
	if err := samplingConfig.Validate(); err != nil {
		return err
	}

	out := ctx.String("out")
	format, err := outputFormat(out, ctx.String("format"))
	if err != nil {
		return err
	}

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering scene %q at %dx%d, %d samples per pixel, max depth %d",
		sc.Name, samplingConfig.Width, samplingConfig.Height, samplingConfig.SamplesPerPixel, samplingConfig.MaxDepth)

	var (
		img    *image.RGBA
		stats  renderer.RenderStats
		passes = 1
	)
	if ctx.Bool("sequential") {
		img, stats, err = renderSequential(renderCtx, sc, samplingConfig, ctx.Int64("seed"))
	} else {
		img, stats, passes, err = renderProgressive(renderCtx, sc, samplingConfig, progressiveConfig(ctx))
	}

	switch {
	case err == nil:
	case errors.Is(err, renderer.ErrInterrupted) && img != nil:
		logger.Warningf("render interrupted; writing the last completed pass (%d)", passes)
	default:
		return err
	}

	if err := writeImage(ctx, img, out, format); err != nil {
		return err
	}

	displayFrameStats(sc.Name, img, stats, passes)
	return nil
}

func progressiveConfig(ctx *cli.Context) renderer.ProgressiveConfig {
	config := renderer.DefaultProgressiveConfig()
	if passes := ctx.Int("passes"); passes > 0 {
		config.MaxPasses = passes
	}
	if tileSize := ctx.Int("tile-size"); tileSize > 0 {
		config.TileSize = tileSize
	}
	config.NumWorkers = ctx.Int("workers")
	config.Seed = ctx.Int64("seed")
	return config
}

func renderSequential(ctx context.Context, sc *scene.Scene, samplingConfig scene.SamplingConfig, seed int64) (*image.RGBA, renderer.RenderStats, error) {
	rt, err := renderer.NewRaytracer(sc, samplingConfig)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	return rt.Render(ctx, core.NewSeededSampler(seed))
}

// renderProgressive runs every pass and returns the most recent one. On
// interruption the last completed pass is returned along with the error.
func renderProgressive(ctx context.Context, sc *scene.Scene, samplingConfig scene.SamplingConfig, config renderer.ProgressiveConfig) (*image.RGBA, renderer.RenderStats, int, error) {
	pr, err := renderer.NewProgressiveRaytracer(sc, samplingConfig, config, logger)
	if err != nil {
		return nil, renderer.RenderStats{}, 0, err
	}

	passChan, errChan := pr.RenderProgressive(ctx)

	var last renderer.PassResult
	for result := range passChan {
		last = result
		logger.Infof("pass %d: %.1f samples/pixel", result.PassNumber, result.Stats.AverageSamples)
	}
	if err := <-errChan; err != nil {
		return last.Image, last.Stats, last.PassNumber, err
	}
	return last.Image, last.Stats, last.PassNumber, nil
}

// outputFormat resolves the format flag, falling back to the output extension.
// Standard output defaults to PPM.
func outputFormat(out, name string) (imageio.Format, error) {
	switch {
	case name != "":
		return imageio.ParseFormat(name)
	case out == "" || out == "-":
		return imageio.FormatPPM, nil
	default:
		return imageio.FormatFromPath(out)
	}
}

func writeImage(ctx *cli.Context, img image.Image, out string, format imageio.Format) error {
	if out == "" || out == "-" {
		return imageio.Encode(ctx.App.Writer, img, format)
	}

	if err := imageio.WriteFile(out, img, format); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Noticef("wrote %s image to %s", format, out)
	return nil
}

func displayFrameStats(sceneName string, img image.Image, stats renderer.RenderStats, passes int) {
	bounds := img.Bounds()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Resolution", "Passes", "Samples/pixel", "Samples/sec", "Avg luminance", "Render time"})
	table.Append([]string{
		sceneName,
		fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		fmt.Sprintf("%d", passes),
		fmt.Sprintf("%.1f (min %d, max %d)", stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed),
		fmt.Sprintf("%.0f", stats.SamplesPerSecond()),
		fmt.Sprintf("%.3f", renderer.CalculateAverageLuminance(img)),
		stats.Duration.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL SAMPLES", fmt.Sprintf("%d", stats.TotalSamples)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
