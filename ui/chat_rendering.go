package ui

import (
	"path/filepath"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"duochat/config"
	"duochat/model"
)

const streamCursor = "▋"

// layout sizes the viewport and input to the window.
func (c *ChatModel) layout() {
	inputWidth := max(c.width-4, 10)
	c.textarea.SetWidth(inputWidth)

	// header + tabs (3) + status line + input box (textarea + border) + footer
	chrome := 1 + 3 + 1 + c.textarea.Height() + 2 + 1
	c.viewport.Width = c.width
	c.viewport.Height = max(c.height-chrome, 3)
}

func (c ChatModel) markdownWidth() int {
	return max(c.width-4, 20)
}

// refresh redraws the transcript into the viewport, optionally following the tail.
func (c *ChatModel) refresh(follow bool) {
	if !c.ready {
		return
	}
	atBottom := c.viewport.AtBottom()
	c.viewport.SetContent(c.renderTranscript())
	if follow || atBottom {
		c.viewport.GotoBottom()
	}
}

func (c ChatModel) renderTranscript() string {
	msgs := c.conv.Messages()
	if len(msgs) == 0 {
		return DimStyle.Render("\n  Start a conversation with " + c.cfg.Provider.String() + ".")
	}

	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(c.renderMessage(m))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (c ChatModel) renderMessage(m model.Message) string {
	stamp := DimStyle.Render(m.Timestamp.Format(time.Kitchen))
	width := c.markdownWidth()

	switch m.Author {
	case model.AuthorUser:
		var lines []string
		lines = append(lines, UserStyle.Render("You")+" "+stamp)
		if m.Image != nil {
			lines = append(lines, DimStyle.Render("  [image] "+filepath.Base(m.Image.Preview)))
		}
		if m.Text != "" {
			lines = append(lines, indent(lipgloss.NewStyle().Width(width).Render(m.Text)))
		}
		return strings.Join(lines, "\n")

	case model.AuthorAI:
		header := AssistantStyle.Render(c.cfg.Provider.String()) + " " + stamp
		if m.IsStreaming {
			if m.Text == "" {
				return header + "\n  " + c.spinner.View()
			}
			return header + "\n" + indent(lipgloss.NewStyle().Width(width).Render(m.Text+streamCursor))
		}
		if strings.HasPrefix(m.Text, "Error: ") && !strings.Contains(strings.TrimPrefix(m.Text, "Error: "), "\n") {
			return header + "\n" + indent(ErrorStyle.Width(width).Render(m.Text))
		}
		if rendered, ok := c.rendered[m.ID]; ok {
			return header + "\n" + rendered
		}
		return header + "\n" + indent(lipgloss.NewStyle().Width(width).Render(m.Text))

	default:
		return NoticeStyle.Render(m.Text)
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func renderMarkdown(id, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		// plain URLs stay plain so the terminal can linkify them
		p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
		r := markdown.NewRenderer(width, 2)
		rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Markdown for %s rendered in %v", id, time.Since(start))
		}
		return model.MarkdownRenderedMsg{
			MessageID: id,
			Rendered:  strings.TrimRight(string(rendered), "\n"),
		}
	}
}

func (c ChatModel) View() string {
	if !c.ready {
		return "Loading..."
	}
	if c.picker.Active {
		return c.picker.View(c.width, c.height)
	}

	title := c.cfg.Provider.String() + " Chat"
	if c.cfg.Provider == config.ProviderOpenRouter {
		title += DimStyle.Render("  " + c.cfg.OpenRouterModel)
	}
	header := TitleStyle.Render(title)
	if c.conv.Sending() {
		header += "  " + c.spinner.View()
	}

	sections := []string{
		lipgloss.NewStyle().MaxWidth(c.width).Render(header),
		c.renderTabs(),
		c.viewport.View(),
		c.renderStatus(),
		focusedInputStyle.Render(c.textarea.View()),
		c.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

func (c ChatModel) renderTabs() string {
	var tabs []string
	for i, name := range modeNames {
		mode := inputMode(i)
		switch {
		case mode == modeImage && !c.cfg.SupportsImages():
			tabs = append(tabs, DisabledTabStyle.Render(name))
		case mode == c.mode:
			tabs = append(tabs, ActiveTabStyle.Render(name))
		default:
			tabs = append(tabs, TabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (c ChatModel) renderStatus() string {
	var parts []string
	if img := c.conv.Attachment(); img != nil {
		parts = append(parts, SelectedStyle.Render("[image] "+filepath.Base(img.Preview)))
	}
	if c.listening {
		parts = append(parts, ErrorStyle.Render("● listening"))
	}
	if c.notice != "" {
		parts = append(parts, NoticeStyle.Render(c.notice))
	}
	return strings.Join(parts, "  ")
}

func (c ChatModel) renderFooter() string {
	parts := []string{"Enter", "Send", "Tab", "Mode", "Alt+V", "Voice"}
	if c.cfg.SupportsImages() {
		parts = append(parts, "Alt+O", "Image", "Alt+D", "Remove")
	}
	parts = append(parts, "Alt+S", "Speak", "Alt+Y", "Copy", "Ctrl+R", "Setup", "Ctrl+C", "Quit")
	return DimStyle.Render(FormatFooter(parts...))
}
