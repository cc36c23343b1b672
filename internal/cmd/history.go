package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/teamforge/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Long: `List runs recorded with 'form --save', newest first. Use 'show <id>' or
'browse <id>' with a listed ID (or a unique prefix of at least four
characters) to look at one again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			writeHistory(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list (0 for all)")
	return cmd
}

func writeHistory(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No saved runs.")
		_, _ = fmt.Fprintln(w, "Run 'teamforge form <registrants.csv> --save' to record one.")
		return
	}
	_, _ = fmt.Fprintf(w, "%-8s  %-16s  %5s  %6s  %10s  %7s  %s\n",
		"ID", "CREATED", "TEAMS", "SPREAD", "LEADERLESS", "MISSING", "INPUT")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%-8s  %-16s  %5d  %6d  %10d  %7d  %s\n",
			shortID(r.ID),
			r.CreatedAt.Local().Format(time.DateOnly+" 15:04"),
			r.Teams, r.Spread, r.Leaderless, r.Missing, r.Input)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
