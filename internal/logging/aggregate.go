package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	RunID   string         `json:"run_id,omitempty"`
	Stage   string         `json:"stage,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Filter selects entries. Zero-valued fields match everything; set fields
// are combined with AND.
type Filter struct {
	Level    string // minimum level
	RunID    string
	Stage    string
	Contains string // substring of the message
}

var levelRank = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ReadEntries parses {dir}/teamforge.log. Lines that are not JSON are
// skipped. Entries are returned in time order.
func ReadEntries(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseEntries(f)
}

// ParseEntries parses JSON log lines from r.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Time.Compare(b.Time)
	})
	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	str := func(key string) string {
		s, _ := raw[key].(string)
		delete(raw, key)
		return s
	}

	entry := Entry{
		Level:   str("level"),
		Message: str("msg"),
		RunID:   str(KeyRunID),
		Stage:   str(KeyStage),
	}
	if t, err := time.Parse(time.RFC3339Nano, str("time")); err == nil {
		entry.Time = t
	}
	if len(raw) > 0 {
		entry.Attrs = raw
	}
	return entry, nil
}

// Match reports whether e satisfies f.
func (f Filter) Match(e Entry) bool {
	if f.Level != "" {
		want, ok1 := levelRank[strings.ToUpper(f.Level)]
		got, ok2 := levelRank[e.Level]
		if ok1 && ok2 && got < want {
			return false
		}
	}
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	if f.Stage != "" && e.Stage != f.Stage {
		return false
	}
	if f.Contains != "" && !strings.Contains(e.Message, f.Contains) {
		return false
	}
	return true
}

// FilterEntries returns the entries matching f.
func FilterEntries(entries []Entry, f Filter) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// WriteEntries renders entries one per line:
//
//	[15:04:05.000] INFO  stage complete (stage=sizes) {"swaps":3}
func WriteEntries(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %-5s %s", e.Time.Format("15:04:05.000"), e.Level, e.Message)
		if e.Stage != "" {
			fmt.Fprintf(&b, " (stage=%s)", e.Stage)
		}
		if len(e.Attrs) > 0 {
			if attrs, err := json.Marshal(e.Attrs); err == nil {
				b.WriteString(" ")
				b.Write(attrs)
			}
		}
		b.WriteString("\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("failed to write log entry: %w", err)
		}
	}
	return nil
}
