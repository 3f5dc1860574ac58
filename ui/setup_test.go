package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duochat/config"
	"duochat/model"
)

type fakeLister struct {
	models []config.ModelOption
	err    error
	keys   []string
}

func (f *fakeLister) ListModels(ctx context.Context, apiKey string) ([]config.ModelOption, error) {
	f.keys = append(f.keys, apiKey)
	return f.models, f.err
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func alt(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func TestSetupCanConfirm(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderGemini}, nil)
	assert.False(t, m.CanConfirm())

	m = NewSetupModel(config.Config{Provider: config.ProviderGemini, GeminiAPIKey: "g-key"}, nil)
	assert.True(t, m.CanConfirm())

	// the other provider's key does not count
	m = NewSetupModel(config.Config{Provider: config.ProviderOpenRouter, GeminiAPIKey: "g-key"}, nil)
	assert.False(t, m.CanConfirm())
}

func TestSetupDraftDefaultsModel(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter, OpenRouterAPIKey: "k"}, nil)
	assert.Equal(t, config.FreeOpenRouterModels[0].ID, m.Draft().OpenRouterModel)
}

func TestSetupKeepsUnknownSavedModel(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter, OpenRouterModel: "acme/custom"}, nil)
	assert.Equal(t, "acme/custom", m.Draft().OpenRouterModel)
	assert.True(t, m.hasModel("acme/custom"))
}

func TestSetupToggleProvider(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderGemini}, nil)
	require.Equal(t, focusKey, m.focus)

	m, _ = m.Update(keyMsg(tea.KeyShiftTab))
	require.Equal(t, focusProvider, m.focus)

	m, _ = m.Update(keyMsg(tea.KeyRight))
	assert.Equal(t, config.ProviderOpenRouter, m.Draft().Provider)

	m, _ = m.Update(runes("g"))
	assert.Equal(t, config.ProviderGemini, m.Draft().Provider)
}

func TestSetupTypingKey(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderGemini}, nil)
	m, _ = m.Update(runes("abc"))
	assert.Equal(t, "abc", m.Draft().GeminiAPIKey)
	assert.Empty(t, m.Draft().OpenRouterAPIKey)
}

func TestSetupConfirm(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderGemini, GeminiAPIKey: " g-key "}, nil)

	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg, ok := cmd().(configConfirmedMsg)
	require.True(t, ok)
	assert.Equal(t, config.ProviderGemini, msg.cfg.Provider)
	assert.Equal(t, "g-key", msg.cfg.GeminiAPIKey)
}

func TestSetupConfirmWithoutKey(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter}, nil)

	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, "Enter your OpenRouter API key to continue.", m.err)
}

func TestFilterModels(t *testing.T) {
	got := filterModels(config.FreeOpenRouterModels, "gemma")
	require.NotEmpty(t, got)
	assert.Equal(t, "google/gemma-7b-it:free", got[0].ID)

	assert.Empty(t, filterModels(config.FreeOpenRouterModels, "zzzz"))
}

func TestSetupModelsListMerge(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter}, nil)
	before := len(m.models)

	m, _ = m.Update(model.ModelsListMsg{Models: []config.ModelOption{
		{ID: config.FreeOpenRouterModels[1].ID, Name: "dup"},
		{ID: "meta/llama:free", Name: "Llama"},
	}})

	assert.Len(t, m.models, before+1)
	assert.True(t, m.hasModel("meta/llama:free"))
	assert.Empty(t, m.err)
}

func TestSetupModelsListError(t *testing.T) {
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter}, nil)
	m, _ = m.Update(model.ModelsListMsg{Err: errors.New("boom")})
	assert.Contains(t, m.err, "boom")
	assert.False(t, m.loading)
}

func TestSetupFetchModels(t *testing.T) {
	lister := &fakeLister{models: []config.ModelOption{{ID: "a/b:free", Name: "B"}}}
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter, OpenRouterAPIKey: "or-key"}, lister)

	m, cmd := m.fetchModels()
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)

	// the last command in the batch is the fetch; the first is the spinner tick
	msg := batch[len(batch)-1]()
	list, ok := msg.(model.ModelsListMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"or-key"}, lister.keys)

	m, _ = m.Update(list)
	assert.True(t, m.hasModel("a/b:free"))
}

func TestSetupFetchModelsNeedsKey(t *testing.T) {
	lister := &fakeLister{}
	m := NewSetupModel(config.Config{Provider: config.ProviderOpenRouter}, lister)

	m, cmd := m.fetchModels()
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.err)
	assert.Empty(t, lister.keys)
}
