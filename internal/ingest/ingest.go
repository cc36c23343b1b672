package ingest

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
	"github.com/Iron-Ham/teamforge/internal/logging"
)

// Field keys, as used in Summary.Columns and error context.
const (
	FieldCluster    = "cluster"
	FieldName       = "name"
	FieldLanguages  = "languages"
	FieldEnglish    = "english"
	FieldTranslator = "translator"
	FieldLeader     = "leader"
	FieldStatusA    = "status_a"
	FieldStatusB    = "status_b"
)

// clusterCode finds a cluster identifier anywhere in a cell.
var clusterCode = regexp.MustCompile(`\b[bs][yo][A-Za-z]{2}\d+[ab]?\b`)

// Columns maps fields to header glob patterns. Patterns are matched
// case-insensitively; an empty pattern disables the field.
type Columns struct {
	Cluster    string
	Name       string
	Languages  string
	English    string
	Translator string
	Leader     string
	StatusA    string
	StatusB    string
}

func (c Columns) patterns() []struct{ field, pattern string } {
	return []struct{ field, pattern string }{
		{FieldCluster, c.Cluster},
		{FieldName, c.Name},
		{FieldLanguages, c.Languages},
		{FieldEnglish, c.English},
		{FieldTranslator, c.Translator},
		{FieldLeader, c.Leader},
		{FieldStatusA, c.StatusA},
		{FieldStatusB, c.StatusB},
	}
}

// Summary describes what Read consumed.
type Summary struct {
	Path      string
	Rows      int               // data rows read, excluding the header
	Dropped   int               // rows without a cluster code
	Clusters  int               // distinct clusters
	Headcount int               // rows mapped to a cluster
	Columns   map[string]string // field -> matched header
	Unmatched []string          // fields whose pattern matched no header
}

// Option configures Read.
type Option func(*reader)

// WithLogger sets the logger used for per-row debug output.
func WithLogger(l *logging.Logger) Option {
	return func(r *reader) {
		r.logger = l
	}
}

type reader struct {
	logger *logging.Logger
}

// Read loads a registrant CSV file and aggregates it into a Catalog.
func Read(ctx context.Context, path string, cols Columns, opts ...Option) (*cluster.Catalog, *Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, tferrors.NewIngestError("open registrant file",
			fmt.Errorf("%w: %w", tferrors.ErrInputUnreadable, err)).WithPath(path)
	}
	defer func() { _ = f.Close() }()

	catalog, summary, err := Parse(ctx, f, cols, opts...)
	if err != nil {
		var ie *tferrors.IngestError
		if stderrors.As(err, &ie) {
			ie.WithPath(path)
		}
		return nil, nil, err
	}
	summary.Path = path
	return catalog, summary, nil
}

// Parse is Read over an already opened stream. Catalog order is the order
// in which cluster codes first appear.
func Parse(ctx context.Context, in io.Reader, cols Columns, opts ...Option) (*cluster.Catalog, *Summary, error) {
	r := &reader{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NopLogger()
	}

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, nil, tferrors.NewIngestError("read header", tferrors.ErrEmptyInput)
	}
	if err != nil {
		return nil, nil, readError("read header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index, summary, err := resolveColumns(header, cols)
	if err != nil {
		return nil, nil, err
	}

	agg := newAggregator(index)
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		row, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, readError("read row", err)
		}
		summary.Rows++
		line, _ := cr.FieldPos(0)
		if id, ok := agg.add(row, line); ok {
			summary.Headcount++
			r.logger.Debug("row mapped", "line", line, "cluster", id)
		} else {
			summary.Dropped++
			r.logger.Debug("row dropped: no cluster code", "line", line)
		}
	}

	catalog, err := cluster.NewCatalog(agg.records()...)
	if err != nil {
		return nil, nil, tferrors.NewIngestError("build catalog", err)
	}
	summary.Clusters = catalog.Len()
	return catalog, summary, nil
}

// readError wraps a csv read failure, keeping the line when csv reports one.
func readError(msg string, err error) error {
	ie := tferrors.NewIngestError(msg, fmt.Errorf("%w: %w", tferrors.ErrInputUnreadable, err))
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		ie.WithLine(pe.Line)
	}
	return ie
}

// resolveColumns maps each configured field to the index of the first
// header its pattern matches. The cluster field is required.
func resolveColumns(header []string, cols Columns) (map[string]int, *Summary, error) {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	index := make(map[string]int)
	summary := &Summary{Columns: make(map[string]string)}
	for _, p := range cols.patterns() {
		if p.pattern == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(strings.TrimSpace(p.pattern)))
		if err != nil {
			return nil, nil, tferrors.NewIngestError("compile column pattern",
				fmt.Errorf("%w: %w", tferrors.ErrInvalidConfig, err)).WithColumn(p.field)
		}
		i := slices.IndexFunc(lower, g.Match)
		if i < 0 {
			summary.Unmatched = append(summary.Unmatched, p.field)
			continue
		}
		index[p.field] = i
		summary.Columns[p.field] = header[i]
	}

	if _, ok := index[FieldCluster]; !ok {
		return nil, nil, tferrors.NewIngestError(
			fmt.Sprintf("no header matches %q", cols.Cluster),
			tferrors.ErrColumnNotFound,
		).WithColumn(FieldCluster)
	}
	return index, summary, nil
}
