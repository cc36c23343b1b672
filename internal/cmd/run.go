package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/config"
	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/ingest"
	"github.com/Iron-Ham/teamforge/internal/logging"
	"github.com/Iron-Ham/teamforge/internal/partition"
	"github.com/Iron-Ham/teamforge/internal/pipeline"
	"github.com/Iron-Ham/teamforge/internal/report"
	"github.com/Iron-Ham/teamforge/internal/store"
)

func columns(c config.ColumnsConfig) ingest.Columns {
	return ingest.Columns{
		Cluster:    c.Cluster,
		Name:       c.Name,
		Languages:  c.Languages,
		English:    c.English,
		Translator: c.Translator,
		Leader:     c.Leader,
		StatusA:    c.StatusA,
		StatusB:    c.StatusB,
	}
}

// readCatalog ingests the registrant file at path.
func readCatalog(ctx context.Context, cfg *config.Config, path string, log *logging.Logger) (*cluster.Catalog, *ingest.Summary, error) {
	catalog, summary, err := ingest.Read(ctx, path, columns(cfg.Columns), ingest.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	if len(summary.Unmatched) > 0 {
		log.Warn("column patterns matched no header", "fields", summary.Unmatched)
	}
	return catalog, summary, nil
}

// formTeams ingests path and runs the pipeline over it.
func formTeams(ctx context.Context, cfg *config.Config, path string, log *logging.Logger, bus *event.Bus) (*pipeline.Result, report.Diagnostics, error) {
	catalog, _, err := readCatalog(ctx, cfg, path, log)
	if err != nil {
		return nil, report.Diagnostics{}, err
	}

	p, err := pipeline.New(cfg.PipelineConfig(), pipeline.WithBus(bus), pipeline.WithLogger(log))
	if err != nil {
		return nil, report.Diagnostics{}, err
	}
	result, err := p.Run(catalog)
	if err != nil {
		return nil, report.Diagnostics{}, err
	}

	d := report.Diagnose(result.Partition, catalog)
	d.RunID = result.RunID
	return result, d, nil
}

// writeReport writes d to out.Dir when set, otherwise to w.
func writeReport(w io.Writer, out config.OutputConfig, d report.Diagnostics) error {
	if out.Dir == "" {
		return report.Write(w, out.Format, d)
	}
	paths, err := report.Export(out.Dir, out.Format, d, out.Summary)
	if err != nil {
		return err
	}
	for _, p := range paths {
		_, _ = fmt.Fprintf(w, "wrote %s\n", p)
	}
	return nil
}

// saveRun records result in st and returns the stored ID.
func saveRun(ctx context.Context, st *store.Store, cfg *config.Config, input string, result *pipeline.Result, d report.Diagnostics) (string, error) {
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	return st.SaveRun(ctx, store.Run{
		ID:          result.RunID,
		CreatedAt:   result.StartedAt,
		Input:       input,
		Teams:       result.Teams,
		Seed:        cfg.Balance.Seed,
		Spread:      d.Spread,
		Leaderless:  len(d.LeaderlessTeams),
		Missing:     len(d.TeamsMissingLanguages),
		Duration:    result.Duration,
		Assignments: result.Partition.Teams(),
	})
}

// openStore opens the run history named by cfg.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return store.Open(ctx, cfg.Store.ResolvePath())
}

// storedDiagnostics rebuilds the diagnostics of a stored run by re-reading
// its input, or input when set. The run is returned even when the input
// can no longer be read or no longer matches the stored assignments, in
// which case err explains why.
func storedDiagnostics(ctx context.Context, cfg *config.Config, id, input string, log *logging.Logger) (store.Run, report.Diagnostics, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return store.Run{}, report.Diagnostics{}, err
	}
	defer func() { _ = st.Close() }()

	run, err := st.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, report.Diagnostics{}, err
	}
	if input == "" {
		input = run.Input
	}

	catalog, _, err := readCatalog(ctx, cfg, input, log)
	if err != nil {
		return run, report.Diagnostics{}, fmt.Errorf("re-reading input: %w", err)
	}
	p, err := partition.FromTeams(run.Assignments)
	if err != nil {
		return run, report.Diagnostics{}, err
	}
	if err := p.Validate(catalog); err != nil {
		return run, report.Diagnostics{}, fmt.Errorf("input %s changed since the run: %w", input, err)
	}

	d := report.Diagnose(p, catalog)
	d.RunID = run.ID
	return run, d, nil
}

// writeAssignments lists a stored run's teams without diagnostics.
func writeAssignments(w io.Writer, run store.Run) {
	_, _ = fmt.Fprintf(w, "run %s · %d teams · %s\n", run.ID, run.Teams, run.Input)
	for i, ids := range run.Assignments {
		_, _ = fmt.Fprintf(w, "Team %3d  %v\n", i+1, ids)
	}
}
