package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
)

// minPrefix is the shortest run ID prefix GetRun will resolve.
const minPrefix = 4

// Run is one stored pipeline result.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Input      string // path of the registrant file
	Teams      int
	Seed       uint64
	Spread     int
	Leaderless int
	Missing    int // teams with a language nobody can translate
	Duration   time.Duration
	// Assignments lists cluster IDs per team in team order. ListRuns
	// leaves it nil.
	Assignments [][]string
}

// Store persists runs in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, tferrors.NewStoreError("open store", tferrors.ErrStoreUnavailable)
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, tferrors.NewStoreError("create store dir", err)
	}

	dsn := clean + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, tferrors.NewStoreError("open sqlite db", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, tferrors.NewStoreError("ping sqlite db", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, tferrors.NewStoreError("run migrations", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return tferrors.NewStoreError("store is closed", tferrors.ErrStoreUnavailable)
	}
	return nil
}

// SaveRun stores run and its assignments in one transaction. An empty ID
// gets a fresh UUID and a zero CreatedAt the current time. The stored ID
// is returned.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	run.Teams = max(run.Teams, len(run.Assignments))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", tferrors.NewStoreError("begin save", err).WithRunID(run.ID)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, input, teams, seed, spread, leaderless, missing, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().UnixMilli(),
		run.Input,
		run.Teams,
		int64(run.Seed), // bit pattern preserved; read back as uint64
		run.Spread,
		run.Leaderless,
		run.Missing,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", tferrors.NewStoreError("run already stored",
				tferrors.NewValidationError("duplicate run id").WithField("id").WithValue(run.ID)).WithRunID(run.ID)
		}
		return "", tferrors.NewStoreError("insert run", err).WithRunID(run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (run_id, team, position, cluster) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", tferrors.NewStoreError("prepare assignments", err).WithRunID(run.ID)
	}
	defer func() { _ = stmt.Close() }()
	for team, ids := range run.Assignments {
		for pos, id := range ids {
			if _, err := stmt.ExecContext(ctx, run.ID, team, pos, id); err != nil {
				return "", tferrors.NewStoreError("insert assignment", err).WithRunID(run.ID)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", tferrors.NewStoreError("commit save", err).WithRunID(run.ID)
	}
	return run.ID, nil
}

// GetRun returns the run with the given ID, or with the only ID starting
// with it when at least four characters are given.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	if err := s.ready(); err != nil {
		return Run{}, err
	}
	full, err := s.resolveID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Run{}, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, full))
	if err != nil {
		return Run{}, tferrors.NewStoreError("get run", err).WithRunID(full)
	}

	run.Assignments = make([][]string, run.Teams)
	rows, err := s.db.QueryContext(ctx,
		`SELECT team, cluster FROM assignments WHERE run_id = ? ORDER BY team, position`, full)
	if err != nil {
		return Run{}, tferrors.NewStoreError("get assignments", err).WithRunID(full)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var team int
		var cluster string
		if err := rows.Scan(&team, &cluster); err != nil {
			return Run{}, tferrors.NewStoreError("scan assignment", err).WithRunID(full)
		}
		if team < 0 || team >= len(run.Assignments) {
			return Run{}, tferrors.NewStoreError(fmt.Sprintf("assignment team %d out of range", team), nil).WithRunID(full)
		}
		run.Assignments[team] = append(run.Assignments[team], cluster)
	}
	if err := rows.Err(); err != nil {
		return Run{}, tferrors.NewStoreError("read assignments", err).WithRunID(full)
	}
	for i := range run.Assignments {
		if run.Assignments[i] == nil {
			run.Assignments[i] = []string{}
		}
	}
	return run, nil
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	notFound := tferrors.NewNotFoundError("run", id).WithCause(tferrors.ErrRunNotFound)
	if id == "" {
		return "", notFound
	}

	var exact string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, id).Scan(&exact)
	if err == nil {
		return exact, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", tferrors.NewStoreError("look up run", err).WithRunID(id)
	}
	if len(id) < minPrefix {
		return "", notFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return "", tferrors.NewStoreError("look up run prefix", err).WithRunID(id)
	}
	defer func() { _ = rows.Close() }()
	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", tferrors.NewStoreError("scan run id", err).WithRunID(id)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", tferrors.NewStoreError("look up run prefix", err).WithRunID(id)
	}
	switch len(matches) {
	case 0:
		return "", notFound
	case 1:
		return matches[0], nil
	default:
		return "", tferrors.NewValidationError("run id prefix is ambiguous").WithField("id").WithValue(id)
	}
}

// ListRuns returns up to limit runs, newest first, without assignments.
// A limit of 0 or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, tferrors.NewStoreError("list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, tferrors.NewStoreError("scan run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, tferrors.NewStoreError("list runs", err)
	}
	return runs, nil
}

const selectRun = `SELECT id, created_at, input, teams, seed, spread, leaderless, missing, duration_ms FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		createdAt  int64
		seed       int64
		durationMs int64
	)
	if err := row.Scan(&run.ID, &createdAt, &run.Input, &run.Teams, &seed,
		&run.Spread, &run.Leaderless, &run.Missing, &durationMs); err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	run.Seed = uint64(seed)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
