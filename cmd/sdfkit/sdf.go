package main

import (
	"fmt"
	"path/filepath"

	"github.com/chazu/sdfkit/pkg/stl"
	"github.com/chazu/sdfkit/pkg/volume"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (a *app) sdfCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sdf <mesh.stl>",
		Short: "Voxelize a mesh into a distance grid and extract it again",
		Long: `Sample the signed distance of a mesh on a --dim³ grid padded by
--padding, then run marching cubes over the grid and write the result.
The output defaults to <out-dir>/<name>-sdf.stl.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := stl.Parse(args[0])
			if err != nil {
				return err
			}

			n := a.cfg.Dim
			v, err := volume.FromMesh(m.Name, m, [3]int{n, n, n}, a.cfg.Padding)
			if err != nil {
				return err
			}
			v.Workers = a.cfg.Workers
			if err := v.ComputeSDF(cmd.Context()); err != nil {
				return err
			}
			lo, hi := v.Range()
			log.WithFields(logrus.Fields{
				"volume": v.Name,
				"min":    lo,
				"max":    hi,
				"inside": v.Inside(),
			}).Debug("computed distance grid")

			k := a.newKernel()
			out, err := k.ToMesh(k.Volume(v))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out.PartName = v.Name

			if output == "" {
				output = filepath.Join(a.cfg.OutDir, v.Name+"-sdf.stl")
			}
			if err := stl.Write(output, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d triangles\n", output, out.TriangleCount())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output STL path")
	return cmd
}
