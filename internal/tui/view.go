package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/report"
	"github.com/Iron-Ham/teamforge/internal/tui/styles"
)

// chromeHeight is the number of lines used by everything except team rows:
// title and subtitle, list borders, the status line and the help bar.
const chromeHeight = 8

const listWidth = 22

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.subtitle()))
	b.WriteString("\n")

	if len(m.diag.Teams) == 0 {
		b.WriteString(styles.Muted.Render("no teams"))
	} else {
		detailWidth := max(20, m.width-listWidth-6)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			styles.Sidebar.Width(listWidth).Render(m.renderList()),
			styles.ContentBox.Width(detailWidth).Render(m.renderDetail(detailWidth-2)),
		))
	}
	b.WriteString("\n")

	switch {
	case m.editing:
		b.WriteString(styles.FilterBar.Render(m.search.View()))
	case m.errorMsg != "":
		b.WriteString(styles.ErrorMsg.Render(m.errorMsg))
	case m.infoMsg != "":
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) title() string {
	t := fmt.Sprintf("%d teams", len(m.diag.Teams))
	if m.diag.RunID != "" {
		t += " · run " + shortID(m.diag.RunID)
	}
	return t
}

func (m Model) subtitle() string {
	return fmt.Sprintf("%d registrants in %d clusters · size %d-%d (spread %d) · %d leaderless · %d missing a translator",
		m.diag.Headcount, m.diag.Clusters, m.diag.MinSize, m.diag.MaxSize, m.diag.Spread,
		len(m.diag.LeaderlessTeams), len(m.diag.TeamsMissingLanguages))
}

func (m Model) renderList() string {
	h := m.listHeight()
	end := min(len(m.diag.Teams), m.offset+h)

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		t := m.diag.Teams[i]
		health := t.Health()
		icon := lipgloss.NewStyle().Foreground(styles.HealthColor(health)).Render(styles.HealthIcon(health))
		label := fmt.Sprintf("Team %3d %4d", t.Label(), t.Size)
		if i == m.cursor {
			lines = append(lines, styles.SidebarItemActive.Render(label)+" "+icon)
			continue
		}
		if _, ok := matchTeam(t, m.query); m.query != "" && ok {
			label = styles.Primary.Render(label)
		}
		lines = append(lines, styles.SidebarItem.Render(label)+" "+icon)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail(width int) string {
	t := m.diag.Teams[m.cursor]

	var b strings.Builder
	fmt.Fprintf(&b, "%s  size %d\n\n", styles.Primary.Bold(true).Render(fmt.Sprintf("Team %d", t.Label())), t.Size)

	words := make([]string, len(t.Clusters))
	for i, c := range t.Clusters {
		word := fmt.Sprintf("%s(%d)", c.ID, c.Headcount)
		if id, ok := cluster.Classify(c.ID); ok {
			word = lipgloss.NewStyle().Foreground(styles.CategoryColor(id.Category.String())).Render(word)
		}
		words[i] = word
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Render(strings.Join(words, " ")))
	b.WriteString("\n\n")

	var cats []string
	for _, c := range cluster.Categories() {
		n := t.Categories[c.String()]
		s := fmt.Sprintf("%s %d", c, n)
		if n > 1 {
			s = styles.Warning.Render(s)
		}
		cats = append(cats, s)
	}
	b.WriteString(styles.Muted.Render("categories ") + strings.Join(cats, "  "))
	b.WriteString("\n")

	if len(t.Leaders) == 0 {
		b.WriteString(styles.WarningMsg.Render("no leader"))
	} else {
		b.WriteString(styles.Muted.Render("leaders    ") + strings.Join(t.Leaders, ", "))
	}
	b.WriteString("\n")

	if len(t.Missing) > 0 {
		b.WriteString(styles.ErrorMsg.Render("missing    " + strings.Join(t.Missing, ", ")))
		b.WriteString("\n")
	}
	if t.StatusA > 0 || t.StatusB > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("status     a %d  b %d", t.StatusA, t.StatusB)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderHelp() string {
	key := styles.HelpKey.Render
	if m.editing {
		return styles.HelpBar.Render(key("enter") + " jump  " + key("esc") + " cancel")
	}
	return styles.HelpBar.Render(
		key("j/k") + " navigate  " +
			key("g/G") + " first/last  " +
			key("/") + " find cluster  " +
			key("n") + " next match  " +
			key("q") + " quit",
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run starts the browser on the alternate screen and blocks until the
// user quits.
func Run(d report.Diagnostics) error {
	p := tea.NewProgram(New(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
