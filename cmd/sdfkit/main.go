package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/chazu/sdfkit/pkg/config"
	"github.com/chazu/sdfkit/pkg/logging"
	"github.com/chazu/sdfkit/version"
	"github.com/spf13/cobra"
)

var log = logging.NamedLogger("sdfkit")

// app carries the resolved configuration to every subcommand.
type app struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "sdfkit",
		Short: "Signed distance volumes, mesh queries and scene scripts",
		Long: `sdfkit samples meshes and analytic shapes into signed distance grids,
combines them with booleans and sweeps, and exports the result as STL.
It also answers distance and intersection queries against STL meshes.`,
		Version:           version.GetFullVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.evalCmd(),
		a.watchCmd(),
		a.distanceCmd(),
		a.nearCmd(),
		a.intersectCmd(),
		a.sdfCmd(),
		a.infoCmd(),
		versionCmd(),
	)
	return rootCmd
}

// setup resolves the configuration and applies the log level.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.SetOutput(cmd.ErrOrStderr())
	return logging.SetLevel(cfg.LogLevel)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
