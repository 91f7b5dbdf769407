package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/sdfkit/pkg/engine"
	"github.com/chazu/sdfkit/pkg/kernel"
	"github.com/chazu/sdfkit/pkg/kernel/sdfx"
	"github.com/chazu/sdfkit/pkg/stl"
	"github.com/chazu/sdfkit/pkg/tessellate"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ErrEvaluation is returned when a script has parse, runtime or
// tessellation errors.
var ErrEvaluation = errors.New("script has errors")

// scriptOptions selects how eval and watch export a script.
type scriptOptions struct {
	merged bool
	json   bool
}

func (o *scriptOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.merged, "merged", false, "union every volume into a single "+tessellate.MergedName+".stl")
	cmd.Flags().BoolVar(&o.json, "json", false, "print the result as JSON")
}

func (a *app) evalCmd() *cobra.Command {
	var opts scriptOptions
	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a scene script and export one STL per volume",
		Long: `Evaluate a scene script and write every volume it defines to
<out-dir>/<name>.stl. Meshes loaded with load-mesh resolve relative to the
script's directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := a.newEngine(args[0])
			_, err := a.runScript(cmd.Context(), eng, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

func (a *app) newEngine(script string) *engine.Engine {
	return engine.NewEngineWithOptions(engine.Options{
		Dim:        a.cfg.Dim,
		Padding:    a.cfg.Padding,
		Resolution: a.cfg.Resolution,
		Workers:    a.cfg.Workers,
		LoadRoot:   filepath.Dir(script),
	})
}

func (a *app) newKernel() kernel.Kernel {
	return &sdfx.SdfxKernel{Cells: a.cfg.Cells}
}

// runScript evaluates script and exports its meshes into the output
// directory.
func (a *app) runScript(ctx context.Context, eng *engine.Engine, script string, opts scriptOptions, stdout, stderr io.Writer) (EvalResult, error) {
	source, err := os.ReadFile(script)
	if err != nil {
		return EvalResult{}, err
	}

	result, err := evaluate(ctx, eng, a.newKernel(), string(source), opts.merged)
	if err != nil {
		return result, err
	}

	if len(result.Errors) == 0 {
		if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
			return result, err
		}
		for i := range result.Meshes {
			md := &result.Meshes[i]
			md.Path = filepath.Join(a.cfg.OutDir, md.PartName+".stl")
			if err := stl.Write(md.Path, md.mesh); err != nil {
				return result, err
			}
			log.WithFields(logrus.Fields{
				"path":      md.Path,
				"triangles": md.Triangles,
			}).Debug("wrote mesh")
		}
	}

	if opts.json {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return result, err
		}
		fmt.Fprintf(stdout, "%s\n", data)
	} else {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "%s:%d: %s\n", script, e.Line, e.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", script, e.Message)
			}
		}
		for _, md := range result.Meshes {
			fmt.Fprintf(stdout, "%s\t%d triangles\n", md.Path, md.Triangles)
		}
		if len(result.Errors) == 0 && len(result.Meshes) == 0 {
			fmt.Fprintf(stdout, "%s: no volumes defined\n", script)
		}
	}

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("%s: %w (%d)", script, ErrEvaluation, len(result.Errors))
	}
	return result, nil
}
