package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duochat/config"
	"duochat/model"
	"duochat/provider/testutil"
)

func TestAppConfirmStartsChat(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Gemini.APIKey = "g-key"
	app := NewApp(settings, Services{Providers: model.Providers{Gemini: testutil.NewMockGemini("hi")}})

	m, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, cmd := m.Update(configConfirmedMsg{cfg: settings.Draft()})
	require.NotNil(t, cmd)

	a := m.(App)
	require.Equal(t, screenChat, a.screen)
	t.Cleanup(a.chat.Close)
	assert.Equal(t, config.ProviderGemini, a.chat.Conversation().Config().Provider)
	assert.Contains(t, a.View(), "Gemini Chat")
}

func TestAppResetReturnsToSetup(t *testing.T) {
	settings := config.DefaultSettings()
	app := NewApp(settings, Services{Providers: model.Providers{Gemini: testutil.NewMockGemini("hi")}})

	cfg := config.Config{Provider: config.ProviderGemini, GeminiAPIKey: "typed-key"}
	m, _ := app.Update(configConfirmedMsg{cfg: cfg})
	a := m.(App)
	chat := a.chat

	chat.send("hello", nil)()
	require.Len(t, chat.Conversation().Messages(), 2)

	m, _ = a.Update(resetConfigMsg{})
	a = m.(App)
	assert.Equal(t, screenSetup, a.screen)
	assert.Equal(t, "typed-key", a.setup.Draft().GeminiAPIKey, "setup is prefilled with the last config")

	// the old chat is closed
	assert.Nil(t, chat.waitForEvent()())

	// a new session starts with an empty log
	m, _ = a.Update(configConfirmedMsg{cfg: cfg})
	a = m.(App)
	t.Cleanup(a.chat.Close)
	assert.Empty(t, a.chat.Conversation().Messages())
}

func TestAppCtrlCQuits(t *testing.T) {
	app := NewApp(config.DefaultSettings(), Services{})
	_, cmd := app.Update(keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
