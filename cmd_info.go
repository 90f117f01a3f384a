package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/df07/go-recursive-raytracer/pkg/config"
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

func newInfoCmd() *cobra.Command {
	var (
		configPath string
		maxObjNum  int
		noExplode  bool
	)

	cmd := &cobra.Command{
		Use:   "info [scene]",
		Short: "Load a scene, build its BVH and print statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("max-obj-num") {
				cfg.MaxObjNum = maxObjNum
			}
			if cmd.Flags().Changed("no-explode") {
				cfg.ExplodeMeshes = !noExplode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			s.Build(cfg.BVHConfig(logger), true)
			writeSceneInfo(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML render config file")
	cmd.Flags().IntVar(&maxObjNum, "max-obj-num", config.Default().MaxObjNum, "BVH leaf size threshold")
	cmd.Flags().BoolVar(&noExplode, "no-explode", false, "keep meshes whole in BVH leaves")
	return cmd
}

func formatVec(v core.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

func writeSceneInfo(out io.Writer, s *scene.Scene) {
	stats := s.Stats()

	fmt.Fprintf(out, "Scene: %s\n\n", s.Name)

	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Surfaces", fmt.Sprintf("%d", stats.Surfaces)})
	table.Append([]string{"Mesh faces", fmt.Sprintf("%d", stats.Faces)})
	table.Append([]string{"Point lights", fmt.Sprintf("%d", stats.LightsBy[lights.LightTypePoint])})
	table.Append([]string{"Directional lights", fmt.Sprintf("%d", stats.LightsBy[lights.LightTypeDirectional])})
	table.Append([]string{"Bounds min", formatVec(stats.Bounds.Min)})
	table.Append([]string{"Bounds max", formatVec(stats.Bounds.Max)})
	table.Append([]string{"Camera", formatVec(s.CameraConfig.Center) + " -> " + formatVec(s.CameraConfig.LookAt)})
	table.Render()

	fmt.Fprintln(out)

	bvh := tablewriter.NewWriter(out)
	bvh.SetAutoFormatHeaders(false)
	bvh.SetHeader([]string{"Nodes", "Leaves", "Max depth", "Avg leaf depth", "Leaf surfaces", "Build time"})
	bvh.Append([]string{
		fmt.Sprintf("%d", stats.BVH.TotalNodes),
		fmt.Sprintf("%d", stats.BVH.LeafNodes),
		fmt.Sprintf("%d", stats.BVH.MaxDepth),
		fmt.Sprintf("%.2f", stats.BVH.AvgDepth),
		fmt.Sprintf("%d", stats.BVH.TotalSurfaces),
		stats.BuildTime.String(),
	})
	bvh.Render()
}
