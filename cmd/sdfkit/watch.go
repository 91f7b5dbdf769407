package main

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfkit/pkg/engine"
	"github.com/chazu/sdfkit/pkg/watcher"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	var opts scriptOptions
	cmd := &cobra.Command{
		Use:   "watch <script>",
		Short: "Re-run eval whenever the script changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			script := args[0]
			eng := a.newEngine(script)
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

			run := func() {
				_, err := a.runScript(ctx, eng, script, opts, stdout, stderr)
				switch {
				case err == nil:
				case errors.Is(err, engine.ErrSuperseded):
					log.Debug("evaluation superseded by a newer change")
				default:
					fmt.Fprintf(stderr, "Error: %v\n", err)
				}
			}

			fw, err := watcher.NewFileWatcher(watcher.DefaultDebounce)
			if err != nil {
				return err
			}
			defer fw.Close()
			if err := fw.Watch([]string{script}, func(string) { run() }); err != nil {
				return err
			}

			run()
			log.WithField("script", script).Info("watching for changes")
			if err := fw.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}
