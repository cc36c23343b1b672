package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/teamforge/internal/partition"
	"github.com/Iron-Ham/teamforge/internal/report"
	"github.com/Iron-Ham/teamforge/internal/testutil"
)

func sampleModel(t *testing.T) Model {
	t.Helper()
	p, err := partition.FromTeams([][]string{
		{"byUS1", "syUS2", "byFR5"},
		{"boDE3", "soDE4", "syFR6"},
		{"boBR7", "soBR8"},
	})
	if err != nil {
		t.Fatalf("FromTeams: %v", err)
	}
	d := report.Diagnose(p, testutil.SampleCatalog(t))
	d.RunID = "0123456789abcdef"
	return New(d)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T, want Model", next)
		}
	}
	return m
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want int
	}{
		{"starts at first team", nil, 0},
		{"down", []tea.Msg{runes("j")}, 1},
		{"arrow down twice", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}}, 2},
		{"clamped at bottom", []tea.Msg{runes("j"), runes("j"), runes("j"), runes("j")}, 2},
		{"clamped at top", []tea.Msg{runes("k")}, 0},
		{"last", []tea.Msg{runes("G")}, 2},
		{"last then first", []tea.Msg{runes("G"), runes("g")}, 0},
		{"up after down", []tea.Msg{runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyUp}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := send(t, sampleModel(t), tt.keys...)
			if got := m.Selected(); got != tt.want {
				t.Errorf("Selected() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSearchJumpsToTeam(t *testing.T) {
	m := sampleModel(t)
	m = send(t, m, runes("/"))
	if !m.editing {
		t.Fatal("/ should start editing the search")
	}
	m = send(t, m, runes("so"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("enter should stop editing")
	}
	if m.Query() != "so" {
		t.Errorf("Query() = %q, want so", m.Query())
	}
	if got := m.Selected(); got != 1 {
		t.Errorf("after search Selected() = %d, want 1 (soDE4)", got)
	}
	if !strings.Contains(m.infoMsg, "soDE4") {
		t.Errorf("infoMsg = %q, want it to name soDE4", m.infoMsg)
	}

	m = send(t, m, runes("n"))
	if got := m.Selected(); got != 2 {
		t.Errorf("after n Selected() = %d, want 2 (soBR8)", got)
	}
	m = send(t, m, runes("n"))
	if got := m.Selected(); got != 1 {
		t.Errorf("n should wrap, Selected() = %d, want 1", got)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	m := send(t, sampleModel(t), runes("/"), runes("BOBR"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Selected(); got != 2 {
		t.Errorf("Selected() = %d, want 2", got)
	}
}

func TestSearchNoMatch(t *testing.T) {
	m := send(t, sampleModel(t), runes("j"), runes("/"), runes("zz"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Selected(); got != 1 {
		t.Errorf("cursor moved on a failed search: %d", got)
	}
	if !strings.Contains(m.errorMsg, "zz") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestSearchCancel(t *testing.T) {
	m := send(t, sampleModel(t), runes("/"), runes("so"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing {
		t.Error("esc should stop editing")
	}
	if m.Query() != "" || m.Selected() != 0 {
		t.Errorf("cancelled search changed state: query %q, selected %d", m.Query(), m.Selected())
	}
}

func TestNextWithoutQuery(t *testing.T) {
	m := send(t, sampleModel(t), runes("n"))
	if m.infoMsg == "" {
		t.Error("n without a query should explain how to search")
	}
}

func TestQuit(t *testing.T) {
	m := sampleModel(t)
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if v := next.View(); v != "" {
		t.Errorf("View() after quit = %q, want empty", v)
	}
}

func TestView(t *testing.T) {
	m := sampleModel(t)
	if v := m.View(); v != "Loading..." {
		t.Errorf("View() before size = %q", v)
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}, runes("j"))
	v := m.View()
	for _, want := range []string{"3 teams", "run 01234567", "Team   2", "boDE3(3)", "Bo, Cy", "find cluster"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q:\n%s", want, v)
		}
	}

	m = send(t, m, runes("k"))
	v = m.View()
	for _, want := range []string{"missing", "spanish"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() of team 1 missing %q:\n%s", want, v)
		}
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m := sampleModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: chromeHeight + 1}) // one row
	m = send(t, m, runes("G"))
	if m.offset != 2 {
		t.Errorf("offset = %d, want 2", m.offset)
	}
	m = send(t, m, runes("g"))
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0", m.offset)
	}
}

func TestEmptyDiagnostics(t *testing.T) {
	m := send(t, New(report.Diagnostics{}), tea.WindowSizeMsg{Width: 80, Height: 20}, runes("j"))
	if m.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1", m.Selected())
	}
	if !strings.Contains(m.View(), "no teams") {
		t.Error("empty view should say no teams")
	}
}
