package view

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hpungsan/linkgrab/internal/session"
)

// LinkMarker prefixes every rendered link row.
const LinkMarker = "🔗"

var (
	indicatorBase = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#333333"))

	indicatorStyles = map[session.State]lipgloss.Style{
		session.StateIdle:       indicatorBase.Background(lipgloss.Color("#eeeeee")),
		session.StateInProgress: indicatorBase.Background(lipgloss.Color("#fff3b0")),
		session.StateSuccess:    indicatorBase.Background(lipgloss.Color("#c8f7c5")),
		// Error reuses the inactive treatment
		session.StateError: indicatorBase.Background(lipgloss.Color("#eeeeee")),
	}
)

// Console renders the panel to a terminal.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	spinner *spinner.Spinner
}

// NewConsole creates a Console writing rows to out and alerts to errOut.
// A spinner runs while a fetch is in progress when out is a terminal.
func NewConsole(out, errOut io.Writer) *Console {
	c := &Console{out: out, errOut: errOut}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
		c.spinner.Suffix = " Fetching..."
	}
	return c
}

// SetInput is a no-op: the terminal has no input field to restore.
func (c *Console) SetInput(string) {}

func (c *Console) RenderLinks(links []string) {
	if len(links) == 0 {
		fmt.Fprintln(c.out, Placeholder)
		return
	}
	for _, l := range links {
		fmt.Fprintf(c.out, "%s %s\n", LinkMarker, l)
	}
}

func (c *Console) SetIndicator(status session.Status) {
	if status.State == session.StateInProgress {
		if c.spinner != nil {
			c.spinner.Start()
			return
		}
	} else if c.spinner != nil {
		c.spinner.Stop()
	}

	style, ok := indicatorStyles[status.State]
	if !ok {
		style = indicatorStyles[session.StateIdle]
	}
	fmt.Fprintln(c.out, style.Render(status.Text()))
}

func (c *Console) Alert(message string) {
	fmt.Fprintln(c.errOut, message)
}

var _ session.ViewSink = (*Console)(nil)
