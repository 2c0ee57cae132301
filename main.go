package main

import (
	"fmt"
	"os"

	"github.com/df07/go-weekend-raytracer/cmd"
	"github.com/df07/go-weekend-raytracer/pkg/log"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	// The default version flag also claims -v, which is the verbosity flag here
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "weekend-raytracer"
	app.Usage = "render sphere scenes with a recursive stochastic ray tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "scenes-dir",
			Value: "scenes",
			Usage: "directory searched for JSON scene files",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a still frame",
			Description: `
Render a scene to an image. Without --out the frame is written to standard
output as a plain text PPM (P3) image, top row first.

Scene defaults for size, samples and bounce depth apply unless overridden.
By default the frame is rendered progressively in passes on a tile grid;
--sequential renders it with a single sampler in scanline order instead.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "ring",
					Usage: "built-in scene name, scene file name or path to a .json scene",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width (default: scene setting)",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height (default: scene setting)",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "samples per pixel (default: scene setting)",
				},
				cli.IntFlag{
					Name:  "depth",
					Usage: "maximum bounce depth (default: scene setting)",
				},
				cli.IntFlag{
					Name:  "passes",
					Usage: "maximum number of progressive passes (default 7)",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of render workers (default: CPU count)",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: 64,
					Usage: "tile edge length in pixels",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "random seed",
				},
				cli.BoolFlag{
					Name:  "sequential",
					Usage: "render in a single scanline pass with one sampler",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "-",
					Usage: "image filename for the rendered frame, - for standard output",
				},
				cli.StringFlag{
					Name:  "format, f",
					Usage: "output format: ppm, png, bmp or tiff (default: from the file extension)",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list available scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:  "serve",
			Usage: "serve the web preview",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port, p",
					Value: 8080,
					Usage: "port to listen on",
				},
			},
			Action: cmd.Serve,
		},
	}

	return app
}

func main() {
	// Keep standard output free for image data
	log.SetSink(os.Stderr)

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
