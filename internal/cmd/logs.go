package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/teamforge/internal/logging"
)

func newLogsCmd(a *app) *cobra.Command {
	var (
		filter logging.Filter
		tail   int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the teamforge log",
		Long: `View and filter teamforge.log in the configured logging.dir.

Examples:
  # Last 50 lines
  teamforge logs --log-dir ~/.local/state/teamforge

  # Everything one run did in the size stage
  teamforge logs --run 3f2a9c1e-... --stage sizes -n 0

  # Warnings and errors only
  teamforge logs --level warn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			if cfg.Logging.Dir == "" {
				return fmt.Errorf("logging.dir is not set; logs went to stderr")
			}

			entries, err := logging.ReadEntries(cfg.Logging.Dir)
			if err != nil {
				return err
			}
			entries = logging.FilterEntries(entries, filter)
			if tail > 0 && len(entries) > tail {
				entries = entries[len(entries)-tail:]
			}
			return logging.WriteEntries(cmd.OutOrStdout(), entries)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&tail, "tail", "n", 50, "number of entries to show (0 for all)")
	f.StringVar(&filter.Level, "level", "", "minimum level (debug/info/warn/error)")
	f.StringVar(&filter.RunID, "run", "", "only entries of this run")
	f.StringVar(&filter.Stage, "stage", "", "only entries of this stage")
	f.StringVar(&filter.Contains, "grep", "", "only entries whose message contains this text")
	return cmd
}
