package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the title color of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

// RenderThreeSectionModal renders a borderless modal: title, content with a top
// border, footer with a top border. messageLines are pre-formatted.
// desiredWidth 0 means the default width of 60.
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	modalWidth := desiredWidth
	if modalWidth == 0 {
		modalWidth = 60
	}
	if width < modalWidth+10 {
		modalWidth = max(width-10, 10)
	}

	var titleColor lipgloss.Color
	switch modalType {
	case ModalTypeInfo:
		titleColor = accentColor
	case ModalTypeWarning:
		titleColor = warningColor
	case ModalTypeError:
		titleColor = dangerColor
	}

	// centered by hand so wide runes in titles line up
	titleWidth := runewidth.StringWidth(title)
	leftPad := max((modalWidth-titleWidth)/2, 0)
	rightPad := max(modalWidth-titleWidth-leftPad, 0)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(titleColor).
		Render(strings.Repeat(" ", leftPad) + title + strings.Repeat(" ", rightPad))

	contentLines := make([]string, 0, len(messageLines)+2)
	contentLines = append(contentLines, "")
	contentLines = append(contentLines, messageLines...)
	contentLines = append(contentLines, "")

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(contentLines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// ErrorModal is a standalone program for errors that stop startup
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{title: title, message: message}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	lineStyle := lipgloss.NewStyle().Width(60).Align(lipgloss.Center)
	var lines []string
	for _, line := range strings.Split(m.message, "\n") {
		lines = append(lines, lineStyle.Render(line))
	}
	return RenderThreeSectionModal(m.title, lines, "Press Enter to quit", ModalTypeError, 60, m.width, m.height)
}
