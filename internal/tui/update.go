package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all application messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := m.textarea.Height() + 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refreshConversation()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "ctrl+l":
			return m, clearChat(m.ctrl)

		case "enter":
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" || m.sending {
				// Empty input and mid-flight sends are both no-ops.
				return m, nil
			}
			m.sending = true
			m.errMsg = ""
			m.textarea.Reset()
			// Return before the textarea sees the key, or it inserts a
			// newline into the freshly cleared input.
			return m, tea.Batch(sendMessage(m.ctrl, text), m.spinner.Tick)

		case "ctrl+j":
			m.textarea.InsertString("\n")
		}

	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = m.ctrl.LastError()
		}
		m.refreshConversation()

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.errMsg = m.ctrl.LastError()
		}
		m.refreshConversation()

	case clearedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		m.refreshConversation()

	case spinner.TickMsg:
		if m.loading || m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			// The controller appends the user turn optimistically in the
			// background, so repaint while the request is in flight.
			m.refreshConversation()
		}
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, taCmd, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) refreshConversation() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}
