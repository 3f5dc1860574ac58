package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"duochat/config"
	"duochat/model"
)

// ModelLister fetches the OpenRouter model catalogue.
type ModelLister interface {
	ListModels(ctx context.Context, apiKey string) ([]config.ModelOption, error)
}

type setupFocus int

const (
	focusProvider setupFocus = iota
	focusKey
	focusModel
	focusConfirm
)

const modelListRows = 6

// SetupModel is the screen where the user picks a provider and enters credentials.
type SetupModel struct {
	provider config.Provider

	geminiKey     textinput.Model
	openRouterKey textinput.Model

	models        []config.ModelOption
	filtered      []config.ModelOption
	filterInput   textinput.Model
	filtering     bool
	selectedModel int
	modelID       string

	lister  ModelLister
	loading bool
	spinner spinner.Model

	focus  setupFocus
	err    string
	width  int
	height int
}

func newKeyInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(value)
	return ti
}

// NewSetupModel prefills the form from draft.
func NewSetupModel(draft config.Config, lister ModelLister) SetupModel {
	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := SetupModel{
		provider:      draft.Provider,
		geminiKey:     newKeyInput("Enter your Gemini API Key", draft.GeminiAPIKey),
		openRouterKey: newKeyInput("Enter your OpenRouter API Key", draft.OpenRouterAPIKey),
		models:        append([]config.ModelOption(nil), config.FreeOpenRouterModels...),
		filterInput:   filterInput,
		modelID:       draft.OpenRouterModel,
		lister:        lister,
		spinner:       sp,
		focus:         focusKey,
	}
	if m.modelID == "" {
		m.modelID = config.FreeOpenRouterModels[0].ID
	}
	if !m.hasModel(m.modelID) {
		m.models = append(m.models, config.ModelOption{ID: m.modelID, Name: m.modelID})
	}
	m.filtered = m.models
	m.selectedModel = m.indexOf(m.modelID)
	m.syncFocus()
	return m
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Draft returns the Config the form currently describes.
func (m SetupModel) Draft() config.Config {
	return config.Config{
		Provider:         m.provider,
		GeminiAPIKey:     strings.TrimSpace(m.geminiKey.Value()),
		OpenRouterAPIKey: strings.TrimSpace(m.openRouterKey.Value()),
		OpenRouterModel:  m.modelID,
	}
}

// CanConfirm reports whether the active provider's key has been entered.
func (m SetupModel) CanConfirm() bool {
	return m.Draft().Validate() == nil
}

func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case model.ModelsListMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = fmt.Sprintf("Could not load models: %v", msg.Err)
			return m, nil
		}
		m.err = ""
		m.mergeModels(msg.Models)
		m.applyFilter()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m SetupModel) handleKey(msg tea.KeyMsg) (SetupModel, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "esc":
			m.filtering = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.applyFilter()
			return m, nil
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
			m.pickSelected()
			return m, nil
		case "up", "down":
			m.moveSelection(msg.String())
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch msg.String() {
	case "tab", "down":
		if msg.String() == "down" && m.focus == focusModel {
			m.moveSelection("down")
			return m, nil
		}
		m.focus = m.nextFocus(1)
		m.syncFocus()
		return m, nil

	case "shift+tab", "up":
		if msg.String() == "up" && m.focus == focusModel {
			m.moveSelection("up")
			return m, nil
		}
		m.focus = m.nextFocus(-1)
		m.syncFocus()
		return m, nil

	case "left", "right":
		if m.focus == focusProvider {
			m.toggleProvider()
			return m, nil
		}

	case "/":
		if m.focus == focusModel {
			m.filtering = true
			m.filterInput.SetValue("")
			m.applyFilter()
			return m, m.filterInput.Focus()
		}

	case "ctrl+l":
		if m.provider == config.ProviderOpenRouter {
			return m.fetchModels()
		}

	case "enter":
		if m.focus == focusModel {
			m.pickSelected()
		}
		return m.confirm()
	}

	if m.focus == focusProvider {
		switch msg.String() {
		case "g":
			m.provider = config.ProviderGemini
		case "o":
			m.provider = config.ProviderOpenRouter
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m SetupModel) updateInputs(msg tea.Msg) (SetupModel, tea.Cmd) {
	if m.focus != focusKey {
		return m, nil
	}
	var cmd tea.Cmd
	if m.provider == config.ProviderGemini {
		m.geminiKey, cmd = m.geminiKey.Update(msg)
	} else {
		m.openRouterKey, cmd = m.openRouterKey.Update(msg)
	}
	m.err = ""
	return m, cmd
}

func (m SetupModel) confirm() (SetupModel, tea.Cmd) {
	cfg := m.Draft()
	if err := cfg.Validate(); err != nil {
		switch {
		case errors.Is(err, config.ErrMissingCredential):
			m.err = fmt.Sprintf("Enter your %s API key to continue.", cfg.Provider)
		default:
			m.err = err.Error()
		}
		return m, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Setup] Confirmed provider=%s model=%s", cfg.Provider, cfg.OpenRouterModel)
	}
	return m, msgCmd(configConfirmedMsg{cfg: cfg})
}

func (m SetupModel) fetchModels() (SetupModel, tea.Cmd) {
	key := strings.TrimSpace(m.openRouterKey.Value())
	if key == "" {
		m.err = "Enter your OpenRouter API key to load the model list."
		return m, nil
	}
	if m.lister == nil || m.loading {
		return m, nil
	}

	m.loading = true
	m.err = ""
	lister := m.lister
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		models, err := lister.ListModels(ctx, key)
		return model.ModelsListMsg{Models: models, Err: err}
	}
	return m, tea.Batch(m.spinner.Tick, fetch)
}

func (m *SetupModel) toggleProvider() {
	if m.provider == config.ProviderGemini {
		m.provider = config.ProviderOpenRouter
	} else {
		m.provider = config.ProviderGemini
	}
	m.err = ""
}

// focusOrder lists the fields shown for the active provider.
func (m SetupModel) focusOrder() []setupFocus {
	if m.provider == config.ProviderOpenRouter {
		return []setupFocus{focusProvider, focusKey, focusModel, focusConfirm}
	}
	return []setupFocus{focusProvider, focusKey, focusConfirm}
}

func (m SetupModel) nextFocus(step int) setupFocus {
	order := m.focusOrder()
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(order)) % len(order)
	return order[idx]
}

func (m *SetupModel) syncFocus() {
	m.geminiKey.Blur()
	m.openRouterKey.Blur()
	if m.focus != focusKey {
		return
	}
	if m.provider == config.ProviderGemini {
		m.geminiKey.Focus()
	} else {
		m.openRouterKey.Focus()
	}
}

func (m *SetupModel) moveSelection(dir string) {
	if len(m.filtered) == 0 {
		return
	}
	switch dir {
	case "up":
		if m.selectedModel > 0 {
			m.selectedModel--
		}
	case "down":
		if m.selectedModel < len(m.filtered)-1 {
			m.selectedModel++
		}
	}
	if !m.filtering {
		m.pickSelected()
	}
}

func (m *SetupModel) pickSelected() {
	if m.selectedModel >= 0 && m.selectedModel < len(m.filtered) {
		m.modelID = m.filtered[m.selectedModel].ID
	}
}

func (m *SetupModel) applyFilter() {
	query := m.filterInput.Value()
	if query == "" {
		m.filtered = m.models
		m.selectedModel = max(m.indexOf(m.modelID), 0)
		return
	}

	m.filtered = filterModels(m.models, query)
	m.selectedModel = 0
}

// filterModels fuzzy-matches query against model names and ids, best match first.
func filterModels(models []config.ModelOption, query string) []config.ModelOption {
	targets := make([]string, len(models))
	for i, opt := range models {
		targets[i] = opt.Name + " " + opt.ID
	}

	matches := fuzzy.Find(query, targets)
	out := make([]config.ModelOption, len(matches))
	for i, match := range matches {
		out[i] = models[match.Index]
	}
	return out
}

// mergeModels appends fetched models not already offered.
func (m *SetupModel) mergeModels(fetched []config.ModelOption) {
	for _, opt := range fetched {
		if !m.hasModel(opt.ID) {
			m.models = append(m.models, opt)
		}
	}
}

func (m SetupModel) hasModel(id string) bool {
	for _, opt := range m.models {
		if opt.ID == id {
			return true
		}
	}
	return false
}

func (m SetupModel) indexOf(id string) int {
	for i, opt := range m.filtered {
		if opt.ID == id {
			return i
		}
	}
	return -1
}

func (m SetupModel) View() string {
	if m.width < 40 || m.height < 16 {
		return "Terminal too small"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Multi-Modal AI Chat") + "\n")
	b.WriteString(DimStyle.Render("Configure your AI provider to begin.") + "\n\n")

	gemini, openRouter := buttonStyle, buttonStyle
	if m.provider == config.ProviderGemini {
		gemini = selectedButtonStyle
	} else {
		openRouter = selectedButtonStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		gemini.Render(config.ProviderGemini.String()),
		"  ",
		openRouter.Render(config.ProviderOpenRouter.String()),
	)
	b.WriteString(m.label(focusProvider, "Provider") + "\n" + buttons + "\n\n")

	keyInput := m.geminiKey
	if m.provider == config.ProviderOpenRouter {
		keyInput = m.openRouterKey
	}
	style := inputStyle
	if m.focus == focusKey {
		style = focusedInputStyle
	}
	b.WriteString(m.label(focusKey, "API key") + "\n" + style.Render(keyInput.View()) + "\n\n")

	if m.provider == config.ProviderOpenRouter {
		b.WriteString(m.label(focusModel, "Model") + "\n" + m.renderModelList() + "\n\n")
	}

	confirm := disabledButtonStyle
	if m.CanConfirm() {
		confirm = buttonStyle
		if m.focus == focusConfirm {
			confirm = selectedButtonStyle
		}
	}
	b.WriteString(confirm.Render("Start Chatting →") + "\n")

	if m.err != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.err) + "\n")
	}

	footer := FormatFooter("Tab", "Next", "←/→", "Provider", "Enter", "Start", "Ctrl+C", "Quit")
	if m.provider == config.ProviderOpenRouter {
		footer = FormatFooter("Tab", "Next", "/", "Filter", "Ctrl+L", "Load models", "Enter", "Start", "Ctrl+C", "Quit")
	}

	content := lipgloss.NewStyle().Width(60).Render(b.String())
	page := lipgloss.JoinVertical(lipgloss.Center, content, "", DimStyle.Render(footer))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, page)
}

func (m SetupModel) label(f setupFocus, text string) string {
	if m.focus == f {
		return SelectedStyle.Render("› " + text)
	}
	return DimStyle.Render("  " + text)
}

func (m SetupModel) renderModelList() string {
	var lines []string
	if m.filtering {
		lines = append(lines, m.filterInput.View())
	}
	if m.loading {
		lines = append(lines, m.spinner.View()+" Loading models...")
	}
	if len(m.filtered) == 0 {
		lines = append(lines, DimStyle.Render("No matching models"))
		return strings.Join(lines, "\n")
	}

	// keep the selection inside a fixed window of rows
	start := 0
	if m.selectedModel >= modelListRows {
		start = m.selectedModel - modelListRows + 1
	}
	end := min(start+modelListRows, len(m.filtered))

	for i := start; i < end; i++ {
		opt := m.filtered[i]
		name := runewidth.Truncate(opt.Name, 26, "…")
		id := runewidth.Truncate(opt.ID, 28, "…")
		line := fmt.Sprintf("%-26s %s", name, DimStyle.Render(id))

		switch {
		case i == m.selectedModel && m.focus == focusModel:
			line = SelectedStyle.Render("▸ ") + line
		case opt.ID == m.modelID:
			line = "• " + line
		default:
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if len(m.filtered) > modelListRows {
		lines = append(lines, DimStyle.Render(fmt.Sprintf("  %d of %d", m.selectedModel+1, len(m.filtered))))
	}
	return strings.Join(lines, "\n")
}
