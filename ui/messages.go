package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"duochat/config"
)

// configConfirmedMsg is sent by the setup screen when the user starts chatting.
type configConfirmedMsg struct {
	cfg config.Config
}

// resetConfigMsg asks the app to discard the conversation and return to setup.
type resetConfigMsg struct{}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
