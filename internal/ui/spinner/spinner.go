package spinner

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

type doneMsg struct{}

type model struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newModel(title string) model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return model{spinner: s, title: title}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run calls fn while animating a spinner titled title on out. When out is not a terminal fn runs without any output.
// An interrupt cancels the context passed to fn.
func Run(ctx context.Context, out *os.File, title string, fn func(ctx context.Context) error) error {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title), tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))

	result := make(chan error, 1)
	go func() {
		result <- fn(ctx)
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		if fnErr := <-result; fnErr != nil {
			return fnErr
		}
		return err
	}
	return <-result
}
