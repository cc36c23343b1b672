package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
	"github.com/Iron-Ham/teamforge/internal/pipeline"
	"github.com/Iron-Ham/teamforge/internal/testutil"
)

// executeCommand runs a fresh root command with args and returns captured
// stdout and stderr.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

// setupTestEnvironment isolates config and data directories.
func setupTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func sampleRoster(t *testing.T) string {
	t.Helper()
	return testutil.WriteRoster(t,
		testutil.Registrant{Name: "Ana", Cluster: "byUS1", Languages: "English", English: "native", Leader: "yes"},
		testutil.Registrant{Name: "Ben", Cluster: "byUS1", Languages: "English"},
		testutil.Registrant{Name: "Cam", Cluster: "byUS1", Languages: "English"},
		testutil.Registrant{Name: "Dia", Cluster: "syUS2", Languages: "Spanish", English: "none"},
		testutil.Registrant{Name: "Eve", Cluster: "syUS2", Languages: "Spanish, English", English: "fluent"},
		testutil.Registrant{Name: "Bo", Cluster: "boDE3", Languages: "German", English: "good", Leader: "x"},
		testutil.Registrant{Name: "Fay", Cluster: "boDE3", Languages: "German", English: "good"},
		testutil.Registrant{Name: "Gil", Cluster: "soDE4", Languages: "German", English: "fair"},
		testutil.Registrant{Name: "Hal", Cluster: "byFR5", Languages: "French", English: "good"},
		testutil.Registrant{Name: "Cy", Cluster: "syFR6", Languages: "French", English: "good", Leader: "y"},
		testutil.Registrant{Name: "Ivy", Cluster: "boBR7", Languages: "Portuguese", English: "good"},
		testutil.Registrant{Name: "Jo", Cluster: "soBR8", Languages: "Portuguese", English: "good"},
		testutil.Registrant{Name: "Kim", Cluster: "unassigned", Languages: "English"},
	)
}

var savedRun = regexp.MustCompile(`saved run (\S+)`)

func TestRootCommand(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "teamforge" {
		t.Errorf("root.Use = %q, want teamforge", root.Use)
	}

	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, want := range []string{"form", "check", "history", "show", "browse", "config", "logs"} {
		found := false
		for _, name := range got {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q not found in %v", want, got)
		}
	}
}

func TestForm_Text(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)

	out, _, err := executeCommand(t, "form", roster, "--teams", "3", "--log-level", "error")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	for _, want := range []string{"3 teams", "12 registrants in 8 clusters", "byUS1(3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestForm_CSVToDir(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, _, err := executeCommand(t, "form", roster, "-t", "3", "-f", "csv", "-o", outDir, "--log-level", "error")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	for _, name := range []string{"teams.csv", "summary.csv"} {
		path := filepath.Join(outDir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
		if !strings.Contains(out, path) {
			t.Errorf("output does not mention %s:\n%s", path, out)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "teams.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "team,cluster,headcount\n") {
		t.Errorf("teams.csv header:\n%s", data)
	}
	if n := strings.Count(string(data), "\n"); n != 9 {
		t.Errorf("teams.csv has %d lines, want 9 (header + 8 clusters)", n)
	}
}

func TestForm_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(roster string) []string
		wantErr error
	}{
		{
			name:    "missing input",
			args:    func(string) []string { return []string{"form", "missing.csv"} },
			wantErr: tferrors.ErrInputUnreadable,
		},
		{
			name:    "malformed pin",
			args:    func(r string) []string { return []string{"form", r, "--pin", "soBR8"} },
			wantErr: tferrors.ErrInvalidInput,
		},
		{
			name:    "self pin",
			args:    func(r string) []string { return []string{"form", r, "--pin", "soBR8=soBR8"} },
			wantErr: tferrors.ErrInvalidConfig,
		},
		{
			name:    "bad format",
			args:    func(r string) []string { return []string{"form", r, "--format", "xml"} },
			wantErr: tferrors.ErrInvalidConfig,
		},
		{
			name:    "zero teams",
			args:    func(r string) []string { return []string{"form", r, "--teams", "0"} },
			wantErr: tferrors.ErrInvalidConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t)
			roster := sampleRoster(t)
			_, _, err := executeCommand(t, append(tt.args(roster), "--log-level", "error")...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestForm_Pin(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)
	outDir := t.TempDir()

	_, _, err := executeCommand(t, "form", roster, "-t", "3", "-f", "csv", "-o", outDir,
		"--pin", "soBR8=byUS1", "--log-level", "error")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "teams.csv"))
	if err != nil {
		t.Fatal(err)
	}
	teamOf := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n")[1:] {
		fields := strings.Split(line, ",")
		teamOf[fields[1]] = fields[0]
	}
	if teamOf["soBR8"] != teamOf["byUS1"] {
		t.Errorf("soBR8 in team %s, byUS1 in team %s", teamOf["soBR8"], teamOf["byUS1"])
	}
}

func TestForm_MetricsFile(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)
	metricsFile := filepath.Join(t.TempDir(), "teamforge.prom")

	if _, _, err := executeCommand(t, "form", roster, "-t", "3", "--metrics-file", metricsFile, "--log-level", "error"); err != nil {
		t.Fatalf("form: %v", err)
	}
	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(data), "teamforge_runs_total 1") {
		t.Errorf("metrics file missing runs_total:\n%s", data)
	}
}

func TestForm_SaveHistoryShow(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)

	out, _, err := executeCommand(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No saved runs.") {
		t.Errorf("empty history output:\n%s", out)
	}

	_, errOut, err := executeCommand(t, "form", roster, "-t", "3", "--save", "--log-level", "error")
	if err != nil {
		t.Fatalf("form --save: %v", err)
	}
	m := savedRun.FindStringSubmatch(errOut)
	if m == nil {
		t.Fatalf("no saved run id in stderr:\n%s", errOut)
	}
	id := m[1]

	out, _, err = executeCommand(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, shortID(id)) || !strings.Contains(out, roster) {
		t.Errorf("history output missing run %s:\n%s", id, out)
	}

	out, _, err = executeCommand(t, "show", id[:8], "--format", "csv", "--log-level", "error")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, c := range []string{"byUS1", "syUS2", "boDE3", "soDE4", "byFR5", "syFR6", "boBR7", "soBR8"} {
		if !strings.Contains(out, c) {
			t.Errorf("show output missing %s:\n%s", c, out)
		}
	}

	// Without the input only the stored assignments can be listed.
	if err := os.Remove(roster); err != nil {
		t.Fatal(err)
	}
	out, errOut, err = executeCommand(t, "show", id, "--log-level", "error")
	if err != nil {
		t.Fatalf("show without input: %v", err)
	}
	if !strings.Contains(errOut, "showing assignments only") {
		t.Errorf("stderr missing warning:\n%s", errOut)
	}
	if !strings.Contains(out, "Team   1") {
		t.Errorf("assignments output:\n%s", out)
	}

	_, _, err = executeCommand(t, "show", "nope-not-a-run", "--log-level", "error")
	if !errors.Is(err, tferrors.ErrRunNotFound) {
		t.Errorf("show unknown err = %v, want ErrRunNotFound", err)
	}
}

func TestCheck(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)

	out, _, err := executeCommand(t, "check", roster, "--log-level", "error")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{
		"rows:      13 (1 without a cluster code)",
		"clusters:  8",
		"headcount: 12",
		"cluster    Cluster",
		"by 2",
		"clusters with a potential leader: 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_EnvOverride(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("TEAMFORGE_TEAMS_COUNT", "7")

	out, _, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "count: 7") {
		t.Errorf("config show missing env override:\n%s", out)
	}
	if !strings.Contains(out, "(none - using defaults)") {
		t.Errorf("config show should report no config file:\n%s", out)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	setupTestEnvironment(t)

	out, _, err := executeCommand(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "teamforge.yaml") {
		t.Errorf("config init output:\n%s", out)
	}
	if _, _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("second config init should fail")
	}

	out, _, err = executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	want := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "teamforge", "teamforge.yaml")
	if strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), want)
	}

	// The generated file must load and validate.
	if _, _, err := executeCommand(t, "config", "show"); err != nil {
		t.Errorf("config show with generated file: %v", err)
	}
}

func TestConfigFileFlag(t *testing.T) {
	setupTestEnvironment(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("teams:\n  count: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := executeCommand(t, "config", "show", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "count: 5") || !strings.Contains(out, cfgPath) {
		t.Errorf("config show with --config:\n%s", out)
	}

	_, _, err = executeCommand(t, "config", "show", "--config", filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, tferrors.ErrInvalidConfig) {
		t.Errorf("missing --config err = %v, want ErrInvalidConfig", err)
	}
}

func TestLogs(t *testing.T) {
	setupTestEnvironment(t)
	roster := sampleRoster(t)
	logDir := t.TempDir()

	if _, _, err := executeCommand(t, "logs"); err == nil {
		t.Error("logs without logging.dir should fail")
	}

	if _, _, err := executeCommand(t, "form", roster, "-t", "3", "--log-dir", logDir, "--log-level", "debug"); err != nil {
		t.Fatalf("form: %v", err)
	}
	out, _, err := executeCommand(t, "logs", "--log-dir", logDir, "-n", "0")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "INFO") {
		t.Errorf("logs output has no INFO entries:\n%s", out)
	}

	out, _, err = executeCommand(t, "logs", "--log-dir", logDir, "-n", "1")
	if err != nil {
		t.Fatalf("logs -n 1: %v", err)
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("logs -n 1 printed %d lines:\n%s", n, out)
	}
}

func TestParsePins(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []pipeline.Pin
		wantErr bool
	}{
		{"none", nil, []pipeline.Pin{}, false},
		{"one", []string{"soBR8=byUS1"}, []pipeline.Pin{{Cluster: "soBR8", With: "byUS1"}}, false},
		{"spaces", []string{" soBR8 = byUS1 "}, []pipeline.Pin{{Cluster: "soBR8", With: "byUS1"}}, false},
		{"two", []string{"a=b", "c=d"}, []pipeline.Pin{{Cluster: "a", With: "b"}, {Cluster: "c", With: "d"}}, false},
		{"no separator", []string{"soBR8"}, nil, true},
		{"empty side", []string{"soBR8="}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePins(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePins(%v) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePins(%v): %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pins mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
