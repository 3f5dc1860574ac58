package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"duochat/config"
)

type screen int

const (
	screenSetup screen = iota
	screenChat
)

// App switches between the setup screen and the chat screen.
// Confirming setup starts a fresh conversation; resetting discards it.
type App struct {
	screen   screen
	settings *config.Settings
	services Services

	setup SetupModel
	chat  ChatModel

	width  int
	height int
}

func NewApp(settings *config.Settings, services Services) App {
	return App{
		screen:   screenSetup,
		settings: settings,
		services: services,
		setup:    NewSetupModel(settings.Draft(), services.Models),
	}
}

func (a App) Init() tea.Cmd {
	return a.setup.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if a.screen == screenChat {
				a.chat.Close()
			}
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case configConfirmedMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[App] Starting chat with %s", msg.cfg.Provider)
		}
		a.chat = NewChatModel(msg.cfg, a.services)
		a.chat, _ = a.chat.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.screen = screenChat
		return a, a.chat.Init()

	case resetConfigMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[App] Conversation reset")
		}
		draft := a.chat.cfg
		a.chat.Close()
		a.chat = ChatModel{}
		a.setup = NewSetupModel(draft, a.services.Models)
		a.setup, _ = a.setup.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.screen = screenSetup
		return a, a.setup.Init()
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenChat:
		a.chat, cmd = a.chat.Update(msg)
	default:
		a.setup, cmd = a.setup.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.screen == screenChat {
		return a.chat.View()
	}
	return a.setup.View()
}
