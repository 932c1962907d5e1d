package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/memtrace/verify"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	violationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	validStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	invalidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// printer writes verification results in the traditional verify_trace layout.
type printer struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
}

func newPrinter(out io.Writer, styled bool) *printer {
	return &printer{out: out, styled: styled}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) println(s lipgloss.Style, text string) {
	fmt.Fprintln(p.out, p.render(s, text))
}

// result prints one file's outcome. It is safe for concurrent use.
func (p *printer) result(br verify.BatchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.println(headerStyle, "Checking "+br.Path)
	if br.Err != nil {
		p.println(invalidStyle, fmt.Sprintf("Failed to read %s: %v", br.Path, br.Err))
		return
	}

	fr := br.Result
	for _, line := range fr.Report.Lines() {
		p.println(lineStyle(line), line)
	}

	if fr.Valid() {
		p.println(validStyle, fmt.Sprintf("Trace %s is valid.", fr.Path))
		return
	}
	p.println(invalidStyle, fmt.Sprintf("Trace %s is not valid.", fr.Path))

	if !fr.Report.RepairRequested {
		return
	}
	if !fr.Report.Repaired {
		p.println(invalidStyle, "Attempt to repair trace has failed.")
		return
	}
	fmt.Fprintf(p.out, "Attempting to repair trace_file %s\n", fr.Path)
	if fr.RepairErr != nil {
		p.println(invalidStyle, fmt.Sprintf("Failed to write repaired entries to a file: %v", fr.RepairErr))
		return
	}
	p.println(validStyle, fmt.Sprintf("Attempt to repair trace has succeeded, new trace %s", fr.RepairPath))
}

func (p *printer) watching(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(noteStyle, "Watching "+strings.Join(paths, ", ")+" for changes (Ctrl+C to stop)")
}

func lineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "  Line "):
		return violationStyle
	case strings.HasPrefix(line, "  Unable"):
		return invalidStyle
	case strings.HasPrefix(line, "  Repaired"):
		return validStyle
	case strings.HasPrefix(line, "    "):
		return entryStyle
	}
	return noteStyle
}
