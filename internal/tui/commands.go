package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/novahuman/compass/internal/chat"
)

func loadHistory(ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{err: ctrl.Load(context.Background())}
	}
}

func sendMessage(ctrl *chat.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: ctrl.Send(context.Background(), text)}
	}
}

func clearChat(ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: ctrl.Clear(context.Background())}
	}
}
