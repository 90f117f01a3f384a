package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

func newScenesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes and the scene files in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenes, err := scene.ListAll(dir)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"ID", "Name", "Type", "Description"})
			for _, info := range scenes {
				table.Append([]string{info.ID, info.DisplayName, info.Type, info.Description})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "scenes", "directory searched for .yaml scene files")
	return cmd
}
