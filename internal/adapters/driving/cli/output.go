package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/skycat/internal/core/ports/driving"
)

// palette mirrors the colours used across skycat's output.
var palette = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
}{
	Primary: lipgloss.Color("#7C3AED"),
	Muted:   lipgloss.Color("#6C7086"),
	Success: lipgloss.Color("#A6E3A1"),
	Error:   lipgloss.Color("#F38BA8"),
}

// styles renders text for one writer. Colours are dropped when the writer
// is not a terminal.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(palette.Primary),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(palette.Muted),
		Success: r.NewStyle().Foreground(palette.Success),
		Error:   r.NewStyle().Foreground(palette.Error),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressInterval is the minimum time between two progress lines.
const progressInterval = 500 * time.Millisecond

// progressPrinter prints a running row count at most once per interval.
type progressPrinter struct {
	mu        sync.Mutex
	w         io.Writer
	sometimes rate.Sometimes
	last      driving.Progress
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{
		w:         w,
		sometimes: rate.Sometimes{First: 1, Interval: progressInterval},
	}
}

// Report records p and prints it if the interval has passed.
func (p *progressPrinter) Report(pr driving.Progress) {
	p.mu.Lock()
	p.last = pr
	p.mu.Unlock()

	p.sometimes.Do(func() {
		fmt.Fprintf(p.w, "  group %d: %d rows written\n", pr.Group+1, pr.Rows)
	})
}

// Last returns the most recent progress report.
func (p *progressPrinter) Last() driving.Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
