package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/novahuman/compass/internal/models"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
			BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238"))
)

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Starting..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s waking backend...\n", m.spinner.View()))
	} else if m.sending {
		b.WriteString(fmt.Sprintf("%s thinking...\n", m.spinner.View()))
	} else if m.errMsg != "" {
		b.WriteString(errorStyle.Render("error: "+m.errMsg) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Width(m.width).Render(m.statusLine()))
	return b.String()
}

func (m Model) statusLine() string {
	sid := m.ctrl.SessionID()
	if sid == "" {
		sid = "not created yet"
	}
	return fmt.Sprintf("session: %s  •  enter send  •  ctrl+l clear  •  esc quit", sid)
}

func (m Model) renderConversation() string {
	turns := m.ctrl.Turns()
	if len(turns) == 0 {
		return labelStyle.Render("\n  Say the problem you're avoiding. We'll work from there.")
	}

	width := m.viewport.Width - 10
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for _, turn := range turns {
		if turn.Role == models.RoleUser {
			b.WriteString(userStyle.Render("you"))
		} else {
			b.WriteString(assistantStyle.Render("compass"))
		}
		if turn.Timestamp != "" {
			b.WriteString(labelStyle.Render("  " + turn.Timestamp))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(turn.Content))
		b.WriteString("\n\n")
	}
	return b.String()
}
