package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/teamforge/internal/cluster"
)

// Output formats.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Write renders d in the named format.
func Write(w io.Writer, format string, d Diagnostics) error {
	switch format {
	case FormatText, "":
		return WriteText(w, d)
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatYAML:
		return WriteYAML(w, d)
	case FormatJSON:
		return WriteJSON(w, d)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteCSV writes one row per cluster: team, cluster, headcount. Teams are
// numbered from 1.
func WriteCSV(w io.Writer, d Diagnostics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"team", "cluster", "headcount"}); err != nil {
		return err
	}
	for _, t := range d.Teams {
		for _, m := range t.Clusters {
			row := []string{strconv.Itoa(t.Label()), m.ID, strconv.Itoa(m.Headcount)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per team with its size, per-category
// counts, leaders, missing languages and status totals.
func WriteSummaryCSV(w io.Writer, d Diagnostics) error {
	header := []string{"team", "clusters", "size"}
	for _, c := range cluster.Categories() {
		header = append(header, c.String())
	}
	header = append(header, "leaders", "missing", "status_a", "status_b")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range d.Teams {
		row := []string{
			strconv.Itoa(t.Label()),
			strconv.Itoa(len(t.Clusters)),
			strconv.Itoa(t.Size),
		}
		for _, c := range cluster.Categories() {
			row = append(row, strconv.Itoa(t.Categories[c.String()]))
		}
		row = append(row,
			strings.Join(t.Leaders, "; "),
			strings.Join(t.Missing, "; "),
			strconv.Itoa(t.StatusA),
			strconv.Itoa(t.StatusB),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYAML writes d as a YAML document.
func WriteYAML(w io.Writer, d Diagnostics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// WriteJSON writes d as indented JSON.
func WriteJSON(w io.Writer, d Diagnostics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Export writes teams.<ext> into dir, plus summary.csv for the csv format
// when summary is set. It returns the written paths.
func Export(dir, format string, d Diagnostics, summary bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	ext := format
	if format == FormatText || format == "" {
		ext = "txt"
	}

	var paths []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}

	if err := write("teams."+ext, func(w io.Writer) error { return Write(w, format, d) }); err != nil {
		return paths, err
	}
	if summary && format == FormatCSV {
		if err := write("summary.csv", func(w io.Writer) error { return WriteSummaryCSV(w, d) }); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
