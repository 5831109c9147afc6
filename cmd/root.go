// Package cmd implements the rowexec command line: inspecting the function
// registry and running demonstration plans over fixture tables.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rowexec/pkg/config"
	"rowexec/pkg/logging"
)

var (
	version = "0.1.0"
	cfgFile string
	cfg     *config.Config
)

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rowexec",
		Short: "rowexec - a row-oriented query execution engine",
		Long: `rowexec runs physical query plans over in-memory, YAML and Parquet
tables and prints the results.

Run the demonstration plans:
  rowexec run --fixtures tables.yaml

Browse the same results interactively:
  rowexec browse`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			// A logger may already exist from package init paths; replace it.
			_ = logging.Close()
			return logging.Init(logging.Config{
				Level:      logging.LogLevel(cfg.Log.Level),
				OutputPath: cfg.Log.Output,
				Format:     cfg.Log.Format,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rowexec %s\n", version)
		},
	})
	root.AddCommand(newFunctionsCommand())
	root.AddCommand(newCastCostCommand())
	root.AddCommand(newRunCommand())
	root.AddCommand(newBrowseCommand())
	root.AddCommand(newBenchCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
