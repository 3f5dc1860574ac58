package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"duochat/config"
	"duochat/model"
)

// ImagePicker browses the filesystem for an image to attach.
type ImagePicker struct {
	Active bool
	Picker filepicker.Model
}

func NewImagePicker(startDir string) ImagePicker {
	fp := filepicker.New()
	fp.AllowedTypes = model.ImageExtensions
	fp.Height = 10
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.ShowHidden = false

	if startDir == "" {
		startDir = config.GetHomeDir()
	}
	fp.CurrentDirectory = startDir

	fp.Styles.Directory = lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)
	fp.Styles.Selected = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)
	fp.Styles.Cursor = lipgloss.NewStyle().
		Foreground(successColor)

	return ImagePicker{Picker: fp}
}

func (p *ImagePicker) Open() tea.Cmd {
	p.Active = true
	return p.Picker.Init()
}

func (p *ImagePicker) Close() {
	p.Active = false
}

// Update forwards msg to the file picker and returns the chosen path, if any.
func (p ImagePicker) Update(msg tea.Msg) (ImagePicker, tea.Cmd, string) {
	var cmd tea.Cmd
	p.Picker, cmd = p.Picker.Update(msg)

	if ok, path := p.Picker.DidSelectFile(msg); ok {
		p.Active = false
		return p, cmd, path
	}
	return p, cmd, ""
}

func (p ImagePicker) View(width, height int) string {
	var lines []string
	for _, line := range strings.Split(p.Picker.View(), "\n") {
		lines = append(lines, "  "+strings.TrimRight(line, " "))
	}
	lines = append(lines, "", DimStyle.Render("  "+p.Picker.CurrentDirectory))

	footer := FormatFooter("j/k", "Navigate", "h/l", "Back/Open", "Enter", "Attach", "Esc", "Cancel")
	return RenderThreeSectionModal("Attach Image", lines, footer, ModalTypeInfo, 80, width, height)
}

// loadImage reads the picked file off the UI goroutine.
func loadImage(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := model.LoadImage(path)
		if err == nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Loaded image %s (%s)", filepath.Base(path), img.MimeType)
		}
		return model.ImageLoadedMsg{Image: img, Err: err}
	}
}
