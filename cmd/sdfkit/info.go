package main

import (
	"fmt"

	"github.com/chazu/sdfkit/pkg/mesh"
	"github.com/spf13/cobra"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <mesh.stl>",
		Short: "Display counts, bounds and topology of an STL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			report := m.UpdateNormal(mesh.NormalFace)
			boundary := m.BoundaryEdges()
			nonManifold := m.NonManifoldVertices()
			stats := tree.Stats()
			size := m.Bounds.Size()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "STL File Information")
			fmt.Fprintln(out, "====================")
			fmt.Fprintf(out, "Name: %s\n", m.Name)
			fmt.Fprintf(out, "File: %s\n\n", args[0])

			fmt.Fprintln(out, "Mesh:")
			fmt.Fprintf(out, "  Vertices: %d\n", len(m.Vertices))
			fmt.Fprintf(out, "  Faces: %d\n", len(m.LiveFaces()))
			fmt.Fprintf(out, "  Degenerate faces: %d\n\n", len(report.Degenerate))

			fmt.Fprintln(out, "Bounding Box:")
			fmt.Fprintf(out, "  Min: %s\n", formatPoint(m.Bounds.Min))
			fmt.Fprintf(out, "  Max: %s\n", formatPoint(m.Bounds.Max))
			fmt.Fprintf(out, "  Size: %.6f x %.6f x %.6f\n\n", size.X, size.Y, size.Z)

			fmt.Fprintln(out, "Topology:")
			fmt.Fprintf(out, "  Boundary edges: %d\n", len(boundary))
			fmt.Fprintf(out, "  Non-manifold vertices: %d\n", len(nonManifold))
			fmt.Fprintf(out, "  Closed: %t\n\n", len(boundary) == 0 && len(nonManifold) == 0)

			fmt.Fprintln(out, "BVH:")
			fmt.Fprintf(out, "  Nodes: %d (%d leaves, %d empty)\n", stats.Nodes, stats.Leaves, stats.Empty)
			fmt.Fprintf(out, "  Depth: %d\n", stats.MaxDepth)
			fmt.Fprintf(out, "  Largest leaf: %d faces\n", stats.MaxLeaf)
			return nil
		},
	}
}
