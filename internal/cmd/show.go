package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/teamforge/internal/config"
	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/report"
	"github.com/Iron-Ham/teamforge/internal/tui"
)

func newShowCmd(a *app) *cobra.Command {
	var input, format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Report a saved run again",
		Long: `Print the report of a saved run. The registrant sheet the run was formed
from is read again to rebuild team details; if it has moved use --input.
When it can no longer be read, only the stored assignments are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			log, err := a.openLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			if format == "" {
				format = cfg.Output.Format
			}
			run, d, err := storedDiagnostics(cmd.Context(), cfg, args[0], input, log)
			if err != nil {
				if run.ID == "" {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; showing assignments only\n", err)
				writeAssignments(cmd.OutOrStdout(), run)
				return nil
			}
			return report.Write(cmd.OutOrStdout(), format, d)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "registrant sheet to use instead of the stored path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+strings.Join(config.ValidOutputFormats(), ", "))
	return cmd
}

func newBrowseCmd(a *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "browse <run-id | registrants.csv>",
		Short: "Browse teams interactively",
		Long: `Open an interactive browser on a saved run, or on teams formed from a
registrant sheet on the fly.

Keys: j/k or arrows move, / finds the team holding a cluster, n repeats the
search, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			log, err := a.openLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			var d report.Diagnostics
			if info, statErr := os.Stat(args[0]); statErr == nil && !info.IsDir() {
				_, d, err = formTeams(cmd.Context(), cfg, args[0], log, event.NewBus(event.WithBusLogger(log)))
			} else {
				_, d, err = storedDiagnostics(cmd.Context(), cfg, args[0], input, log)
			}
			if err != nil {
				return err
			}
			return tui.Run(d)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "registrant sheet to use instead of the stored path of a run")
	return cmd
}
