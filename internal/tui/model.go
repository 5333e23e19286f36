// Package tui is the interactive chat front end. It renders the
// conversation owned by the chat controller; all state transitions happen
// in the controller, the TUI only issues commands and repaints.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/novahuman/compass/internal/chat"
)

// Model represents the chat application state.
type Model struct {
	ctrl *chat.Controller

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	loading bool
	sending bool
	errMsg  string

	quitting bool
}

// New creates the chat TUI around an existing controller. When the
// controller already has a session id, the initial load kicks off on Init.
func New(ctrl *chat.Controller) Model {
	ta := textarea.New()
	ta.Placeholder = "Stuck? Talk it through... (enter to send, ctrl+j for a new line)"
	ta.Prompt = "> "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return Model{
		ctrl:     ctrl,
		textarea: ta,
		spinner:  sp,
		loading:  ctrl.SessionID() != "",
	}
}

// Init starts the spinner and, when a session exists, the history load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.loading {
		cmds = append(cmds, loadHistory(m.ctrl))
	}
	return tea.Batch(cmds...)
}

// Run starts the program.
func Run(ctrl *chat.Controller) error {
	_, err := tea.NewProgram(New(ctrl), tea.WithAltScreen()).Run()
	return err
}
