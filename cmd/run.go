package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rowexec/pkg/database"
	"rowexec/pkg/ui"
)

type demoFlags struct {
	fixtures string
	parquet  string
}

func (f *demoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fixtures, "fixtures", "", "YAML fixture file (defaults to the built-in demo tables)")
	cmd.Flags().StringVar(&f.parquet, "parquet", "", "Parquet file to scan as an extra demo")
}

// open applies config defaults for flags left empty.
func (f *demoFlags) open() (*demoSession, error) {
	fixtures, parquet := f.fixtures, f.parquet
	if fixtures == "" {
		fixtures = cfg.Fixtures.Path
	}
	if parquet == "" {
		parquet = cfg.Fixtures.Parquet
	}
	return openDemoSession(fixtures, parquet)
}

func newRunCommand() *cobra.Command {
	var (
		flags    demoFlags
		parallel bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demonstration plans and print their results",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if parallel {
				return runParallel(cmd.Context(), s, out)
			}
			for _, p := range runDemos(s.db, s.demos) {
				fmt.Fprintln(out, ui.RenderSection(p))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&parallel, "parallel", false, "run every plan concurrently on its own connection")
	return cmd
}

func runParallel(ctx context.Context, s *demoSession, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	builders := make([]database.PlanBuilder, len(s.demos))
	for i, d := range s.demos {
		builders[i] = d.build
	}
	results, err := s.db.QueryAll(ctx, builders...)
	if err != nil {
		return err
	}
	for i, res := range results {
		fmt.Fprintln(out, ui.RenderSection(ui.Panel{Title: s.demos[i].title, Result: res}))
		fmt.Fprintln(out)
	}
	return nil
}

func newBrowseCommand() *cobra.Command {
	var flags demoFlags
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the demonstration results interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()
			panels := runDemos(s.db, s.demos)
			return ui.RunBrowser(panels, s.db.Info())
		},
	}
	flags.register(cmd)
	return cmd
}
