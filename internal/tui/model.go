// Package tui is an interactive browser for a finished partition: a team
// list on the left, the selected team's details on the right and a
// cluster search that jumps to the team holding a matching cluster.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/teamforge/internal/report"
)

// Model is the Bubbletea model for the team browser.
type Model struct {
	diag     report.Diagnostics
	cursor   int
	offset   int // first team row shown in the list
	width    int
	height   int
	search   textinput.Model
	editing  bool
	query    string // last submitted search
	errorMsg string
	infoMsg  string
	quitting bool
}

// New creates a browser over d.
func New(d report.Diagnostics) Model {
	ti := textinput.New()
	ti.Placeholder = "cluster id"
	ti.CharLimit = 40
	ti.Width = 30
	ti.Prompt = "/"

	return Model{
		diag:   d,
		search: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the 0-based index of the highlighted team, or -1 when
// there are no teams.
func (m Model) Selected() int {
	if len(m.diag.Teams) == 0 {
		return -1
	}
	return m.cursor
}

// Query returns the last submitted search.
func (m Model) Query() string {
	return m.query
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleSearchKeypress(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.moveTo(m.cursor - 1)

		case "down", "j":
			m.moveTo(m.cursor + 1)

		case "pgup", "ctrl+u":
			m.moveTo(m.cursor - m.listHeight())

		case "pgdown", "ctrl+d":
			m.moveTo(m.cursor + m.listHeight())

		case "home", "g":
			m.moveTo(0)

		case "end", "G":
			m.moveTo(len(m.diag.Teams) - 1)

		case "/":
			m.editing = true
			m.search.SetValue("")
			cmd := m.search.Focus()
			return m, cmd

		case "n":
			if m.query == "" {
				m.infoMsg = "press / to search for a cluster"
				return m, nil
			}
			m.jump(m.query, m.cursor+1)

		case "esc":
			m.query = ""
		}
	}
	return m, nil
}

func (m Model) handleSearchKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.editing = false
		m.search.Blur()
		return m, nil

	case "enter":
		m.editing = false
		m.search.Blur()
		q := strings.TrimSpace(m.search.Value())
		if q == "" {
			m.query = ""
			return m, nil
		}
		m.query = q
		m.jump(q, m.cursor)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// jump moves the cursor to the first team at or after from (wrapping)
// that holds a cluster whose ID contains q, ignoring case.
func (m *Model) jump(q string, from int) {
	n := len(m.diag.Teams)
	if n == 0 {
		m.errorMsg = "no teams"
		return
	}
	for step := range n {
		i := ((from+step)%n + n) % n
		if member, ok := matchTeam(m.diag.Teams[i], q); ok {
			m.moveTo(i)
			m.infoMsg = fmt.Sprintf("%s is in team %d", member, m.diag.Teams[i].Label())
			return
		}
	}
	m.errorMsg = fmt.Sprintf("no team holds a cluster matching %q", q)
}

// matchTeam returns the first cluster of t whose ID contains q.
func matchTeam(t report.TeamSummary, q string) (string, bool) {
	q = strings.ToLower(q)
	for _, c := range t.Clusters {
		if strings.Contains(strings.ToLower(c.ID), q) {
			return c.ID, true
		}
	}
	return "", false
}

func (m *Model) moveTo(i int) {
	n := len(m.diag.Teams)
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(i, n-1))
	m.clampOffset()
}

// clampOffset keeps the cursor inside the visible part of the list.
func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(0, min(m.offset, len(m.diag.Teams)-h))
}

// listHeight is the number of team rows that fit between the header and
// the help bar.
func (m Model) listHeight() int {
	if m.height == 0 {
		return max(1, len(m.diag.Teams))
	}
	return max(1, m.height-chromeHeight)
}
