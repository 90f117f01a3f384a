package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/df07/go-recursive-raytracer/pkg/log"
)

var logger = log.New("raytracer")

// newRootCmd builds the command tree. Each call returns fresh commands so
// tests can run them in isolation.
func newRootCmd() *cobra.Command {
	var verbose, veryVerbose bool

	root := &cobra.Command{
		Use:   "raytracer",
		Short: "Whitted-style recursive ray tracer",
		Long: `raytracer renders scenes of spheres, boxes and triangle meshes with
Phong shading, mirror reflection and refraction, using a bounding volume
hierarchy to accelerate ray queries.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose, veryVerbose)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress information")
	root.PersistentFlags().BoolVar(&veryVerbose, "vv", false, "log debug information")

	root.AddCommand(newRenderCmd(), newInfoCmd(), newScenesCmd(), newServeCmd())
	return root
}

func setupLogging(verbose, veryVerbose bool) {
	switch {
	case veryVerbose:
		log.SetLevel(log.Debug)
	case verbose:
		log.SetLevel(log.Info)
	default:
		log.SetLevel(log.Notice)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
