package cmd

import (
	"github.com/df07/go-weekend-raytracer/web/server"
	"github.com/urfave/cli"
)

// Serve the web preview UI and its render API.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	srv := server.NewServer(ctx.Int("port"), ctx.GlobalString("scenes-dir"), logger)
	return srv.Start()
}
