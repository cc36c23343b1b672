package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(id string, created time.Time) Run {
	return Run{
		ID:         id,
		CreatedAt:  created,
		Input:      "roster.csv",
		Teams:      3,
		Seed:       1<<63 + 5,
		Spread:     2,
		Leaderless: 1,
		Missing:    0,
		Duration:   1500 * time.Millisecond,
		Assignments: [][]string{
			{"byUS1", "soDE4"},
			{"syUS2"},
			{},
		},
	}
}

func TestSaveRun_GetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	id, err := s.SaveRun(ctx, sampleRun("run-alpha", created))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id != "run-alpha" {
		t.Errorf("SaveRun id = %q, want run-alpha", id)
	}

	got, err := s.GetRun(ctx, "run-alpha")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if diff := cmp.Diff(sampleRun("run-alpha", created), got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRun_GeneratesIDAndTime(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	run := sampleRun("", time.Time{})
	id, err := s.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("generated id %q is not a UUID", id)
	}
	got, err := s.GetRun(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixed)
	}
}

func TestSaveRun_Duplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run := sampleRun("dup-run", time.Now())
	if _, err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	_, err := s.SaveRun(ctx, run)
	if !errors.Is(err, tferrors.ErrInvalidInput) {
		t.Errorf("second SaveRun err = %v, want ErrInvalidInput", err)
	}
}

func TestGetRun_Prefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"abcd1111", "abcd2222", "ef001234"} {
		if _, err := s.SaveRun(ctx, sampleRun(id, now)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{"exact", "abcd1111", "abcd1111", nil},
		{"unique prefix", "ef00", "ef001234", nil},
		{"ambiguous prefix", "abcd", "", tferrors.ErrInvalidInput},
		{"short prefix", "ef0", "", tferrors.ErrRunNotFound},
		{"unknown", "zzzz9999", "", tferrors.ErrRunNotFound},
		{"empty", "", "", tferrors.ErrRunNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetRun(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GetRun(%q) err = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetRun(%q): %v", tt.id, err)
			}
			if got.ID != tt.want {
				t.Errorf("GetRun(%q).ID = %q, want %q", tt.id, got.ID, tt.want)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if _, err := s.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	var ids []string
	for _, r := range all {
		ids = append(ids, r.ID)
		if r.Assignments != nil {
			t.Errorf("ListRuns should not load assignments, got %v", r.Assignments)
		}
	}
	if diff := cmp.Diff([]string{"third", "second", "first"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	two, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("ListRuns(2) returned %d runs", len(two))
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveRun(ctx, sampleRun("kept", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, err := s.GetRun(ctx, "kept"); err != nil {
		t.Errorf("GetRun after reopen: %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	s := openTestStore(t)
	_ = s.Close()

	if _, err := s.ListRuns(context.Background(), 1); !errors.Is(err, tferrors.ErrStoreUnavailable) {
		t.Errorf("ListRuns on closed store err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := Open(context.Background(), " "); !errors.Is(err, tferrors.ErrStoreUnavailable) {
		t.Errorf("Open(blank) err = %v, want ErrStoreUnavailable", err)
	}
}

func TestUpSection(t *testing.T) {
	in := "-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;\n"
	if got := upSection(in); got != "\nCREATE TABLE a (x);\n" {
		t.Errorf("upSection() = %q", got)
	}
	if got := upSection("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("upSection() without markers = %q", got)
	}
}
