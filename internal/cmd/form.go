package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/teamforge/internal/config"
	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/metrics"
	"github.com/Iron-Ham/teamforge/internal/pipeline"
	"github.com/Iron-Ham/teamforge/internal/store"
	"github.com/Iron-Ham/teamforge/internal/tui"
	"github.com/Iron-Ham/teamforge/internal/watch"
)

func newFormCmd(a *app) *cobra.Command {
	var (
		pins      []string
		watchMode bool
		browse    bool
	)
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "form <registrants.csv>",
		Short: "Form teams from a registrant sheet",
		Long: `Read a registrant sheet, assign its clusters to teams and report the
result.

Examples:
  # Form 42 teams and print the report
  teamforge form roster.csv

  # Write teams.csv and summary.csv to ./out and keep the run in history
  teamforge form roster.csv --format csv --out out --save

  # Keep soBR8 in the same team as byUS1
  teamforge form roster.csv --pin soBR8=byUS1

  # Re-form whenever roster.csv is saved
  teamforge form roster.csv --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parsePins(pins)
			if err != nil {
				return err
			}
			return runForm(cmd, a, args[0], extra, watchMode, browse)
		},
	}

	f := cmd.Flags()
	f.IntP("teams", "t", defaults.Teams.Count, "number of teams")
	f.Uint64("seed", defaults.Balance.Seed, "seed for category cleanup relocation (0 = deterministic)")
	f.StringP("format", "f", defaults.Output.Format, "output format: "+strings.Join(config.ValidOutputFormats(), ", "))
	f.StringP("out", "o", "", "write the report into this directory instead of stdout")
	f.String("pins-file", "", "YAML file of pins to apply")
	f.StringArrayVar(&pins, "pin", nil, "keep CLUSTER in the same team as WITH, as CLUSTER=WITH (repeatable)")
	f.Bool("save", defaults.Store.Enabled, "record the run in history")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile after each run")
	f.BoolVarP(&watchMode, "watch", "w", false, "re-form whenever the registrant sheet changes")
	f.BoolVar(&browse, "browse", false, "open the interactive browser on the result")
	cmd.MarkFlagsMutuallyExclusive("watch", "browse")

	a.bindFlags(f, map[string]string{
		"teams.count":   "teams",
		"balance.seed":  "seed",
		"output.format": "format",
		"output.dir":    "out",
		"pins_file":     "pins-file",
		"store.enabled": "save",
		"metrics.file":  "metrics-file",
	})
	return cmd
}

// parsePins parses CLUSTER=WITH flag values.
func parsePins(values []string) ([]pipeline.Pin, error) {
	pins := make([]pipeline.Pin, 0, len(values))
	for _, v := range values {
		clusterID, with, ok := strings.Cut(v, "=")
		clusterID, with = strings.TrimSpace(clusterID), strings.TrimSpace(with)
		if !ok || clusterID == "" || with == "" {
			return nil, tferrors.NewValidationError("pin must be CLUSTER=WITH").WithField("pin").WithValue(v)
		}
		pins = append(pins, pipeline.Pin{Cluster: clusterID, With: with})
	}
	return pins, nil
}

func runForm(cmd *cobra.Command, a *app, path string, extraPins []pipeline.Pin, watchMode, browse bool) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if len(extraPins) > 0 {
		cfg.Pins = append(cfg.Pins, extraPins...)
		if errs := cfg.Validate(); len(errs) > 0 {
			return fmt.Errorf("%w: %w", tferrors.ErrInvalidConfig, config.ValidationErrors(errs))
		}
	}

	log, err := a.openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	ctx := cmd.Context()

	bus := event.NewBus(event.WithBusLogger(log))
	var rec *metrics.Recorder
	if cfg.Metrics.File != "" {
		rec = metrics.New()
		rec.Attach(bus)
		defer rec.Detach()
	}
	var st *store.Store
	if cfg.Store.Enabled {
		st, err = openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
	}

	once := func(ctx context.Context) error {
		result, d, err := formTeams(ctx, cfg, path, log, bus)
		if err != nil {
			return err
		}
		if st != nil {
			id, err := saveRun(ctx, st, cfg, path, result, d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s\n", id)
		}
		if rec != nil {
			if err := rec.WriteTextfile(cfg.Metrics.File); err != nil {
				return err
			}
		}
		if browse {
			return tui.Run(d)
		}
		return writeReport(cmd.OutOrStdout(), cfg.Output, d)
	}

	if !watchMode {
		return once(ctx)
	}

	if err := once(ctx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(path, cfg.Watch.Debounce(), watch.WithBus(bus), watch.WithLogger(log))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c to stop)\n", path)
	return w.Run(ctx, func(ctx context.Context) error {
		err := once(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
		return err
	})
}
