// Package cli implements the wfviz command line.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/wfviz/internal/config"
	"github.com/example/wfviz/internal/log"
)

// app carries the configuration shared by every subcommand of one
// invocation.
type app struct {
	v          *viper.Viper
	configFile string
	noColor    bool
	cfg        *config.Config
}

// NewRootCommand builds the wfviz command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "wfviz",
		Short: "Inspect stored workflow trees",
		Long: `wfviz renders the status of a nested workflow of tasks, as recorded by
the orchestrator, as a tree or a table.

The tree is read from one of three sources:
  db    relational store, one row per step        (default file orchestrator.db)
  json  text snapshot of the whole tree           (default file status.json)
  pkl   binary snapshot of the whole tree         (default file status.pkl)

Settings are read from wfviz.yaml in the working directory (or --config),
then WFVIZ_* environment variables, then flags.

EXAMPLES:
  # Show the whole tree stored in ./orchestrator.db
  wfviz tree

  # Show one sub-workflow of a JSON snapshot
  wfviz tree --source json --path /scratch/run/main/model_b

  # Tabulate a subtree by id
  wfviz table --uuid 0f8e5c1d2b3a4e6f9a8b7c6d5e4f3a2b --columns name,status,uuid

  # Write a demo tree to every source
  wfviz demo --dir /tmp/demo`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./wfviz.yaml)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newTreeCmd(a),
		newTableCmd(a),
		newLegendCmd(a),
		newDemoCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"source":    "source",
	"fname":     "fname",
	"columns":   "columns",
	"log-level": "log_level",
}

func (a *app) load(cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if a.noColor {
		a.v.Set("color", false)
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)
	a.cfg = cfg
	return nil
}
