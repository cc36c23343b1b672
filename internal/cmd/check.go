package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/ingest"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <registrants.csv>",
		Short: "Read a registrant sheet and report what would be formed",
		Long: `Read a registrant sheet without forming teams. Shows which header each
field was matched to, how many rows were dropped for lacking a cluster
code and how the clusters split across categories.`,
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

			catalog, summary, err := readCatalog(cmd.Context(), cfg, args[0], log)
			if err != nil {
				return err
			}
			writeCheck(cmd.OutOrStdout(), catalog, summary, cfg.Teams.Count)
			return nil
		},
	}
}

func writeCheck(w io.Writer, catalog *cluster.Catalog, s *ingest.Summary, teams int) {
	_, _ = fmt.Fprintf(w, "%s\n", s.Path)
	_, _ = fmt.Fprintf(w, "  rows:      %d (%d without a cluster code)\n", s.Rows, s.Dropped)
	_, _ = fmt.Fprintf(w, "  clusters:  %d\n", s.Clusters)
	_, _ = fmt.Fprintf(w, "  headcount: %d\n", s.Headcount)
	if teams > 0 {
		_, _ = fmt.Fprintf(w, "  per team:  %.1f registrants, %.1f clusters over %d teams\n",
			float64(s.Headcount)/float64(teams), float64(s.Clusters)/float64(teams), teams)
	}

	_, _ = fmt.Fprintln(w, "columns:")
	fields := make([]string, 0, len(s.Columns))
	for f := range s.Columns {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", f, s.Columns[f])
	}
	if len(s.Unmatched) > 0 {
		_, _ = fmt.Fprintf(w, "  unmatched: %s\n", strings.Join(s.Unmatched, ", "))
	}

	counts := make(map[cluster.Category]int)
	other, leaders := 0, 0
	for _, r := range catalog.Records() {
		if id, ok := cluster.Classify(r.ID); ok {
			counts[id.Category]++
		} else {
			other++
		}
		if r.HasLeader() {
			leaders++
		}
	}
	_, _ = fmt.Fprintln(w, "categories:")
	for _, c := range cluster.Categories() {
		_, _ = fmt.Fprintf(w, "  %s %d\n", c, counts[c])
	}
	if other > 0 {
		_, _ = fmt.Fprintf(w, "  ?? %d\n", other)
	}
	_, _ = fmt.Fprintf(w, "clusters with a potential leader: %d\n", leaders)
}
