package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Iron-Ham/teamforge/internal/tui/styles"
)

const (
	defaultWidth = 100
	minWidth     = 40
	indent       = 21 // width of the team heading
)

// Health classifies a team for display: a language nobody can translate
// is a problem; a missing leader or a doubled category is a warning.
func (t TeamSummary) Health() string {
	switch {
	case len(t.Missing) > 0:
		return styles.HealthProblem
	case len(t.Leaders) == 0:
		return styles.HealthWarning
	}
	for _, n := range t.Categories {
		if n > 1 {
			return styles.HealthWarning
		}
	}
	return styles.HealthOK
}

// textStyles binds the shared palette to one output's renderer so that
// color is dropped when the output is not a terminal.
type textStyles struct {
	title, muted, label, warn, problem lipgloss.Style
	health                             func(string) lipgloss.Style
	category                           func(string) lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	return textStyles{
		title:   r.NewStyle().Bold(true).Foreground(styles.PrimaryColor),
		muted:   r.NewStyle().Foreground(styles.MutedColor),
		label:   r.NewStyle().Bold(true),
		warn:    r.NewStyle().Foreground(styles.WarningColor),
		problem: r.NewStyle().Foreground(styles.ErrorColor).Bold(true),
		health: func(h string) lipgloss.Style {
			return r.NewStyle().Foreground(styles.HealthColor(h))
		},
		category: func(c string) lipgloss.Style {
			return r.NewStyle().Foreground(styles.CategoryColor(c))
		},
	}
}

// WriteText renders d as a console report, wrapped to the terminal width
// when w is a terminal.
func WriteText(w io.Writer, d Diagnostics) error {
	return writeText(w, d, terminalWidth(w))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < minWidth {
		return defaultWidth
	}
	return width
}

func writeText(w io.Writer, d Diagnostics, width int) error {
	st := newTextStyles(lipgloss.NewRenderer(w))
	var b strings.Builder

	title := fmt.Sprintf("%d teams · %d registrants in %d clusters", len(d.Teams), d.Headcount, d.Clusters)
	if d.RunID != "" {
		title += st.muted.Render("  run " + d.RunID)
	}
	b.WriteString(st.title.Render(title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "size %d-%d (spread %d) · mean %.2f · stddev %.2f\n\n",
		d.MinSize, d.MaxSize, d.Spread, d.MeanSize, d.StdDevSize)

	for _, t := range d.Teams {
		writeTeam(&b, st, t, width)
	}

	b.WriteString("\n")
	writeFindings(&b, st, d)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTeam(b *strings.Builder, st textStyles, t TeamSummary, width int) {
	health := t.Health()
	head := fmt.Sprintf("Team %3d  size %3d %s ", t.Label(), t.Size,
		st.health(health).Render(styles.HealthIcon(health)))

	words := make([]string, len(t.Clusters))
	for i, m := range t.Clusters {
		word := fmt.Sprintf("%s(%d)", m.ID, m.Headcount)
		if len(m.ID) >= 2 {
			word = st.category(m.ID[:2]).Render(word)
		}
		words[i] = word
	}
	lines := wrap(words, width-indent)
	if len(lines) == 0 {
		lines = []string{st.muted.Render("(empty)")}
	}
	b.WriteString(st.label.Render(head))
	b.WriteString(lines[0])
	b.WriteString("\n")
	pad := strings.Repeat(" ", indent)
	for _, line := range lines[1:] {
		b.WriteString(pad + line + "\n")
	}

	if len(t.Leaders) > 0 {
		b.WriteString(pad + st.muted.Render("leaders: "+strings.Join(t.Leaders, ", ")) + "\n")
	} else {
		b.WriteString(pad + st.warn.Render("no leader") + "\n")
	}
	if len(t.Missing) > 0 {
		b.WriteString(pad + st.problem.Render("missing: "+strings.Join(t.Missing, ", ")) + "\n")
	}
}

func writeFindings(b *strings.Builder, st textStyles, d Diagnostics) {
	if len(d.LeaderlessTeams) == 0 && len(d.TeamsMissingLanguages) == 0 && len(d.CategoryCollisions) == 0 {
		b.WriteString(st.health(styles.HealthOK).Render("no unmet goals"))
		b.WriteString("\n")
		return
	}
	if n := len(d.LeaderlessTeams); n > 0 {
		b.WriteString(st.warn.Render(fmt.Sprintf("%d team(s) without a leader: %s", n, labels(d.LeaderlessTeams))))
		b.WriteString("\n")
	}
	if n := len(d.TeamsMissingLanguages); n > 0 {
		b.WriteString(st.problem.Render(fmt.Sprintf("%d team(s) missing a translator: %s", n, labels(d.TeamsMissingLanguages))))
		b.WriteString("\n")
	}
	if n := len(d.CategoryCollisions); n > 0 {
		b.WriteString(st.warn.Render(fmt.Sprintf("%d category collision(s)", n)))
		b.WriteString("\n")
	}
}

// labels renders 0-based team indexes as 1-based labels.
func labels(idx []int) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = fmt.Sprint(n + 1)
	}
	return strings.Join(parts, ", ")
}

// wrap joins words with single spaces into lines no wider than width.
// Widths are measured without ANSI sequences.
func wrap(words []string, width int) []string {
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		ww := lipgloss.Width(word)
		if lineWidth > 0 && lineWidth+1+ww > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(" ")
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += ww
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
