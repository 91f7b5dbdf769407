package main

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/chazu/sdfkit/pkg/bvh"
	"github.com/chazu/sdfkit/pkg/geom"
	"github.com/chazu/sdfkit/pkg/mesh"
	"github.com/chazu/sdfkit/pkg/parallel"
	"github.com/chazu/sdfkit/pkg/stl"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// loadTree parses an STL file and builds its BVH.
func loadTree(filename string) (*mesh.Mesh, *bvh.BVH, error) {
	m, err := stl.Parse(filename)
	if err != nil {
		return nil, nil, err
	}
	tree, err := bvh.New(m)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, tree, nil
}

// parsePoint reads x y z from the command arguments.
func parsePoint(args []string) (geom.Point3, error) {
	var c [3]float64
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return geom.Point3{}, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		c[i] = f
	}
	return geom.Pt(c[0], c[1], c[2]), nil
}

func formatPoint(p geom.Point3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", p.X, p.Y, p.Z)
}

func (a *app) distanceCmd() *cobra.Command {
	var signed bool
	cmd := &cobra.Command{
		Use:   "distance <mesh.stl> <x> <y> <z>",
		Short: "Distance from a point to the nearest face of a mesh",
		Long: `Report the distance from a point to a mesh, the closest point and the
feature it lies on. With --signed, points inside a closed mesh are negative.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1:])
			if err != nil {
				return err
			}
			m, tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			r, err := tree.ComputeDistance(p, signed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Distance: %.6f\n", r.Distance)
			fmt.Fprintf(out, "Closest:  %s\n", formatPoint(r.Point))
			fmt.Fprintf(out, "Face:     %d (%s %d)\n", r.Face, r.Closest.Kind, r.Closest.Index)
			log.WithFields(logrus.Fields{"mesh": m.Name, "faces": len(m.LiveFaces())}).Debug("distance query")
			return nil
		},
	}
	cmd.Flags().BoolVar(&signed, "signed", false, "negative distance inside a closed mesh")
	return cmd
}

func (a *app) nearCmd() *cobra.Command {
	var (
		maxDist    float64
		vertexOnly bool
	)
	cmd := &cobra.Command{
		Use:   "near <mesh.stl> <x> <y> <z> --max <d>",
		Short: "Check whether a point is closer than a distance to a mesh",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1:])
			if err != nil {
				return err
			}
			_, tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tree.IsCloserThan(maxDist, p, vertexOnly))
			return nil
		},
	}
	cmd.Flags().Float64Var(&maxDist, "max", 0, "distance threshold")
	cmd.Flags().BoolVar(&vertexOnly, "vertex-only", false, "only consider mesh vertices")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func (a *app) intersectCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "intersect <a.stl> <b.stl>",
		Short: "Count intersecting face pairs between two meshes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ma, err := stl.Parse(args[0])
			if err != nil {
				return err
			}
			_, tree, err := loadTree(args[1])
			if err != nil {
				return err
			}

			faces := ma.LiveFaces()
			hits := make([][]bvh.Hit, len(faces))
			var crossing atomic.Int64
			err = parallel.For(cmd.Context(), len(faces), a.cfg.Workers, func(i int) error {
				hits[i] = tree.IntersectWithTri(ma.Triangle(faces[i]))
				crossing.Add(int64(lo.CountBy(hits[i], func(h bvh.Hit) bool {
					return h.Kind == geom.Crossing
				})))
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pairs := lo.SumBy(hits, func(h []bvh.Hit) int { return len(h) })
			if list {
				for i, hs := range hits {
					for _, h := range hs {
						fmt.Fprintf(out, "%d\t%d\t%s\n", faces[i], h.Face, h.Kind)
					}
				}
			}
			fmt.Fprintf(out, "Intersecting pairs: %d (%d crossing, %d coplanar)\n",
				pairs, crossing.Load(), int64(pairs)-crossing.Load())
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print every intersecting face pair")
	return cmd
}
