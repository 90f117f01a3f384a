package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/df07/go-recursive-raytracer/pkg/config"
	"github.com/df07/go-recursive-raytracer/pkg/server"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		dir        string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders and pixel inspection over HTTP",
		Long: `Start an HTTP server with the endpoints:

  /api/health              liveness check
  /api/scenes              built-in scenes and the scene files in --dir
  /api/render?scene=ID     render a scene (width, height, depth, samples, format)
  /api/inspect?scene=ID    trace one pixel (x, y, width, height) and describe the hit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			srv, err := server.NewServer(fmt.Sprintf(":%d", port), dir, cfg)
			if err != nil {
				return err
			}

			logger.Noticef("visit http://localhost:%d/api/scenes", port)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to serve on")
	cmd.Flags().StringVar(&dir, "dir", "scenes", "directory searched for .yaml scene files")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML render config with the request defaults")
	return cmd
}
