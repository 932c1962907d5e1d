package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/memtrace/verify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// row is a line of the browser: a file header when violation is -1.
type row struct {
	file      int
	violation int
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
	stateDetail
)

type interactiveModel struct {
	results  []verify.BatchResult
	rows     []row
	filter   textinput.Model
	selected int
	height   int
	state    modelState
}

func newInteractiveModel(results []verify.BatchResult) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "address, kind or path"
	ti.Prompt = "/"
	ti.Width = 40

	m := &interactiveModel{
		results: results,
		filter:  ti,
		height:  24,
		state:   stateBrowse,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.rows) > 0 {
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateBrowse
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
			}
		}
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.filter.Blur()
		m.state = stateBrowse
		return m, nil
	case "esc":
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		m.state = stateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter rebuilds the visible rows. A file is shown when its path
// matches or any of its violations match.
func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.rows = m.rows[:0]

	for fi, br := range m.results {
		pathMatch := q == "" || strings.Contains(strings.ToLower(br.Path), q)
		var vrows []row
		if br.Result != nil {
			for vi, v := range br.Result.Report.Violations {
				if pathMatch || violationMatches(v, q) {
					vrows = append(vrows, row{file: fi, violation: vi})
				}
			}
		}
		if pathMatch || len(vrows) > 0 {
			m.rows = append(m.rows, row{file: fi, violation: -1})
			m.rows = append(m.rows, vrows...)
		}
	}

	if m.selected >= len(m.rows) {
		m.selected = max(len(m.rows)-1, 0)
	}
}

func violationMatches(v verify.Violation, q string) bool {
	return strings.Contains(fmt.Sprintf("%#x", v.Address), q) ||
		strings.Contains(v.Kind.String(), q)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Trace Verifier"))
	b.WriteString(" ")
	b.WriteString(m.summary())
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.rows) == 0 {
			b.WriteString(noteStyle.Render("No matching traces."))
			b.WriteString("\n")
		}
		start, end := m.window()
		for i := start; i < end; i++ {
			line := m.formatRow(m.rows[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))
		}

	case stateDetail:
		b.WriteString(m.detail(m.rows[m.selected]))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

// window returns the range of rows that fits the terminal around the selection.
func (m *interactiveModel) window() (int, int) {
	visible := max(m.height-8, 3)
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	return start, min(start+visible, len(m.rows))
}

func (m *interactiveModel) summary() string {
	var valid, invalid, failed int
	for _, br := range m.results {
		switch {
		case br.Err != nil:
			failed++
		case br.Result.Valid():
			valid++
		default:
			invalid++
		}
	}
	return fmt.Sprintf("%d valid, %d invalid, %d unreadable", valid, invalid, failed)
}

func (m *interactiveModel) formatRow(r row) string {
	br := m.results[r.file]
	if r.violation < 0 {
		switch {
		case br.Err != nil:
			return invalidStyle.Render("! " + br.Path)
		case br.Result.Valid():
			return validStyle.Render("✓ "+br.Path) + noteStyle.Render(fmt.Sprintf(" (%d entries)", br.Result.Entries))
		default:
			return invalidStyle.Render("✗ "+br.Path) + noteStyle.Render(fmt.Sprintf(" (%d violations)", len(br.Result.Report.Violations)))
		}
	}
	v := br.Result.Report.Violations[r.violation]
	status := ""
	if v.Repaired() {
		status = validStyle.Render(" repaired")
	}
	return fmt.Sprintf("    line %-6d %s %s%s", v.Line, violationStyle.Render(v.Kind.String()), entryStyle.Render(fmt.Sprintf("%#x", v.Address)), status)
}

func (m *interactiveModel) detail(r row) string {
	br := m.results[r.file]
	var b strings.Builder
	b.WriteString(headerStyle.Render(br.Path))
	b.WriteString("\n\n")

	if br.Err != nil {
		b.WriteString(invalidStyle.Render(br.Err.Error()))
		return b.String()
	}

	fr := br.Result
	if r.violation < 0 {
		fmt.Fprintf(&b, "Format:     %s\n", fr.Format)
		fmt.Fprintf(&b, "Entries:    %d\n", fr.Entries)
		fmt.Fprintf(&b, "Violations: %d (%d repaired)\n", len(fr.Report.Violations), fr.Report.Repairs())
		if fr.RepairPath != "" {
			fmt.Fprintf(&b, "Repaired:   %s\n", fr.RepairPath)
		}
		if fr.RepairErr != nil {
			b.WriteString(invalidStyle.Render("Repair failed: " + fr.RepairErr.Error()))
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	single := verify.Report{
		Violations:      []verify.Violation{fr.Report.Violations[r.violation]},
		RepairRequested: fr.Report.RepairRequested,
	}
	for _, line := range single.Lines() {
		b.WriteString(lineStyle(line).Render(line))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func runInteractive(results []verify.BatchResult) error {
	p := tea.NewProgram(newInteractiveModel(results), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
