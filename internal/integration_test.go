// Package internal contains integration tests that run a registrant sheet
// through ingestion, the pipeline, reporting and run history together, with
// the event bus wiring metrics the way the CLI does.
package internal

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/ingest"
	"github.com/Iron-Ham/teamforge/internal/metrics"
	"github.com/Iron-Ham/teamforge/internal/partition"
	"github.com/Iron-Ham/teamforge/internal/pipeline"
	"github.com/Iron-Ham/teamforge/internal/report"
	"github.com/Iron-Ham/teamforge/internal/store"
	"github.com/Iron-Ham/teamforge/internal/testutil"
)

var columns = ingest.Columns{
	Cluster:    "*cluster*",
	Name:       "*name*",
	Languages:  "*language*",
	English:    "*english*",
	Translator: "*translat*",
	Leader:     "*leader*",
}

func roster(t *testing.T) string {
	t.Helper()
	return testutil.WriteRoster(t,
		testutil.Registrant{Name: "Ana", Cluster: "byUS1", Languages: "English", English: "native", Leader: "yes"},
		testutil.Registrant{Name: "Ben", Cluster: "byUS1", Languages: "English"},
		testutil.Registrant{Name: "Dia", Cluster: "syUS2", Languages: "Spanish", English: "none"},
		testutil.Registrant{Name: "Bo", Cluster: "boDE3", Languages: "German", English: "good", Leader: "x"},
		testutil.Registrant{Name: "Gil", Cluster: "soDE4", Languages: "German, Spanish", English: "fair"},
		testutil.Registrant{Name: "Hal", Cluster: "byFR5", Languages: "French", English: "good"},
		testutil.Registrant{Name: "Cy", Cluster: "syFR6", Languages: "French", English: "good", Leader: "y"},
		testutil.Registrant{Name: "Ivy", Cluster: "boBR7", Languages: "Portuguese", English: "good"},
		testutil.Registrant{Name: "Jo", Cluster: "soBR8", Languages: "Portuguese", English: "good"},
		testutil.Registrant{Name: "Kim", Cluster: "n/a"},
	)
}

// TestEndToEnd runs the full flow and checks each hand-off.
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	path := roster(t)

	catalog, summary, err := ingest.Read(ctx, path, columns)
	if err != nil {
		t.Fatalf("ingest.Read: %v", err)
	}
	if summary.Dropped != 1 || catalog.Len() != 8 || catalog.TotalHeadcount() != 9 {
		t.Fatalf("summary = %+v, catalog len %d headcount %d", summary, catalog.Len(), catalog.TotalHeadcount())
	}

	bus := event.NewBus()
	rec := metrics.New()
	rec.Attach(bus)
	defer rec.Detach()

	var (
		mu     sync.Mutex
		stages []string
	)
	bus.Subscribe(event.TypeStageCompleted, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		stages = append(stages, e.(event.StageCompletedEvent).Stage)
	})

	cfg := pipeline.DefaultConfig()
	cfg.Teams = 3
	cfg.Pins = []pipeline.Pin{{Cluster: "soBR8", With: "byUS1"}}
	p, err := pipeline.New(cfg, pipeline.WithBus(bus))
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	result, err := p.Run(catalog)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := result.Partition.Validate(catalog); err != nil {
		t.Fatalf("partition invalid: %v", err)
	}

	wantStages := []string{"place", "categories", "sizes", "languages", "leadership", "pins"}
	if diff := cmp.Diff(wantStages, stages); diff != "" {
		t.Errorf("stage events (-want +got):\n%s", diff)
	}

	anchor, _ := result.Partition.TeamOf("byUS1")
	mover, _ := result.Partition.TeamOf("soBR8")
	if anchor != mover {
		t.Errorf("pin not honoured: byUS1 in %d, soBR8 in %d", anchor, mover)
	}

	d := report.Diagnose(result.Partition, catalog)
	d.RunID = result.RunID
	if d.Clusters != 8 || d.Headcount != 9 {
		t.Errorf("diagnostics clusters %d headcount %d", d.Clusters, d.Headcount)
	}

	// The metrics recorder saw the same run.
	var text bytes.Buffer
	if err := rec.WriteText(&text); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "teamforge_runs_total 1") {
		t.Errorf("metrics missing run:\n%s", text.String())
	}

	// Store the run and read it back as the CLI's show command does.
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = st.Close() }()

	id, err := st.SaveRun(ctx, store.Run{
		ID:          result.RunID,
		CreatedAt:   result.StartedAt,
		Input:       path,
		Teams:       result.Teams,
		Spread:      d.Spread,
		Leaderless:  len(d.LeaderlessTeams),
		Missing:     len(d.TeamsMissingLanguages),
		Duration:    result.Duration,
		Assignments: result.Partition.Teams(),
	})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	run, err := st.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if diff := cmp.Diff(result.Partition.Teams(), run.Assignments); diff != "" {
		t.Errorf("stored assignments (-want +got):\n%s", diff)
	}

	restored, err := partition.FromTeams(run.Assignments)
	if err != nil {
		t.Fatal(err)
	}
	again := report.Diagnose(restored, catalog)
	again.RunID = run.ID
	if diff := cmp.Diff(d, again); diff != "" {
		t.Errorf("diagnostics of the stored run differ (-want +got):\n%s", diff)
	}
}

// TestEndToEnd_Deterministic checks that two runs over the same input with
// the default seed produce the same partition.
func TestEndToEnd_Deterministic(t *testing.T) {
	ctx := context.Background()
	path := roster(t)

	var runs [][][]string
	for range 2 {
		catalog, _, err := ingest.Read(ctx, path, columns)
		if err != nil {
			t.Fatal(err)
		}
		cfg := pipeline.DefaultConfig()
		cfg.Teams = 4
		p, err := pipeline.New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		result, err := p.Run(catalog)
		if err != nil {
			t.Fatal(err)
		}
		runs = append(runs, result.Partition.Teams())
	}
	if diff := cmp.Diff(runs[0], runs[1]); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

// TestEventBusIntegration checks that stage events reach both a metrics
// recorder and an ordinary subscriber, and that detaching the recorder
// leaves the other subscriber in place.
func TestEventBusIntegration(t *testing.T) {
	bus := event.NewBus()
	rec := metrics.New()
	rec.Attach(bus)

	var seen int
	bus.Subscribe(event.TypeRunCompleted, func(event.Event) { seen++ })

	catalog := testutil.SampleCatalog(t)
	p, err := pipeline.New(pipeline.Config{Teams: 3}, pipeline.WithBus(bus))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(catalog); err != nil {
		t.Fatal(err)
	}

	rec.Detach()
	if _, err := p.Run(catalog); err != nil {
		t.Fatal(err)
	}
	if seen != 2 {
		t.Errorf("subscriber saw %d runs, want 2", seen)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}

	var text bytes.Buffer
	if err := rec.WriteText(&text); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "teamforge_runs_total 1") {
		t.Errorf("detached recorder kept counting:\n%s", text.String())
	}
}
