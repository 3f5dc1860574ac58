package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"duochat/config"
	"duochat/model"
	"duochat/speech"
)

func (c ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.ready = true
		c.layout()
		c.refresh(true)
		return c, nil

	case model.MessageUpdatedMsg:
		c.refresh(true)
		return c, c.waitForEvent()

	case model.SendDoneMsg:
		c.refresh(true)
		if !msg.Started {
			return c, nil
		}
		if reply, ok := c.lastReply(); ok {
			return c, renderMarkdown(reply.ID, reply.Text, c.markdownWidth())
		}
		return c, nil

	case model.MarkdownRenderedMsg:
		c.rendered[msg.MessageID] = msg.Rendered
		c.refresh(false)
		return c, nil

	case model.TranscriptMsg:
		c.listening = msg.Listening
		c.updatePlaceholder()
		if msg.Transcript != "" {
			c.textarea.SetValue(msg.Transcript)
		}
		return c, c.waitForEvent()

	case model.ImageLoadedMsg:
		if msg.Err != nil {
			c.notice = fmt.Sprintf("Could not attach image: %v", msg.Err)
			return c, nil
		}
		if err := c.conv.Attach(msg.Image); err != nil {
			c.notice = attachError(err)
			return c, nil
		}
		c.mode = modeImage
		c.notice = "Attached " + filepath.Base(msg.Image.Preview)
		return c, nil

	case spinner.TickMsg:
		if !c.conv.Sending() {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		c.refresh(false)
		return c, cmd

	case tea.KeyMsg:
		if c.picker.Active {
			return c.updatePicker(msg)
		}
		return c.handleKey(msg)
	}

	if c.picker.Active {
		return c.updatePicker(msg)
	}
	return c, nil
}

func (c ChatModel) handleKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		return c, msgCmd(resetConfigMsg{})

	case "tab":
		c.switchMode(1)
		return c, nil

	case "shift+tab":
		c.switchMode(-1)
		return c, nil

	case "enter":
		return c.submit()

	case "alt+v":
		c.mode = modeVoice
		return c, c.toggleListening()

	case "alt+o":
		if !c.cfg.SupportsImages() {
			c.notice = imageUnavailableNotice
			return c, nil
		}
		c.mode = modeImage
		return c, c.picker.Open()

	case "alt+d":
		if c.conv.Attachment() != nil {
			c.conv.ClearAttachment()
			c.notice = "Image removed"
		}
		return c, nil

	case "alt+s":
		c.speakLastReply()
		return c, nil

	case "alt+x":
		if c.speaker != nil {
			c.speaker.Cancel()
		}
		return c, nil

	case "alt+y":
		c.copyLastReply()
		return c, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return c, cmd
}

// submit sends the prompt, plus the pending image when the image tab is active.
func (c ChatModel) submit() (ChatModel, tea.Cmd) {
	prompt := c.textarea.Value()
	var image *model.Image
	if c.mode == modeImage {
		image = c.conv.Attachment()
	}

	if c.conv.Sending() || (strings.TrimSpace(prompt) == "" && image == nil) {
		return c, nil
	}

	c.textarea.Reset()
	c.notice = ""
	return c, tea.Batch(c.send(prompt, image), c.spinner.Tick)
}

func (c *ChatModel) switchMode(step int) {
	next := inputMode((int(c.mode) + step + len(modeNames)) % len(modeNames))
	if next == modeImage && !c.cfg.SupportsImages() {
		c.notice = imageUnavailableNotice
		next = inputMode((int(next) + step + len(modeNames)) % len(modeNames))
	} else {
		c.notice = ""
	}
	c.mode = next
	c.updatePlaceholder()
}

func (c *ChatModel) updatePlaceholder() {
	switch c.mode {
	case modeVoice:
		if c.listening {
			c.textarea.Placeholder = "Listening..."
		} else {
			c.textarea.Placeholder = "Press Alt+V and start speaking..."
		}
	case modeImage:
		c.textarea.Placeholder = "Ask a question about the image..."
	default:
		c.textarea.Placeholder = "Type your message..."
	}
}

// toggleListening starts capture in place. Stopping runs as a command because
// the recognizer's final update waits for room in the event queue.
func (c *ChatModel) toggleListening() tea.Cmd {
	defer c.updatePlaceholder()

	if c.listener == nil {
		c.notice = "Voice input is not configured (set DUOCHAT_STT_COMMAND)."
		return nil
	}
	if c.listener.Listening() {
		c.listening = false
		listener := c.listener
		return func() tea.Msg {
			listener.Stop()
			return nil
		}
	}

	if err := c.listener.Start(); err != nil {
		if errors.Is(err, speech.ErrNotConfigured) {
			c.notice = "Voice input is not configured (set DUOCHAT_STT_COMMAND)."
		} else {
			c.notice = fmt.Sprintf("Could not start voice input: %v", err)
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Voice start failed: %v", err)
		}
		return nil
	}
	c.listening = true
	c.notice = ""
	return nil
}

func (c *ChatModel) speakLastReply() {
	reply, ok := c.lastReply()
	if !ok {
		return
	}
	if c.speaker == nil {
		c.notice = "Read aloud is not configured (set DUOCHAT_TTS_COMMAND)."
		return
	}
	if err := c.speaker.Speak(reply.Text); err != nil {
		if errors.Is(err, speech.ErrNotConfigured) {
			c.notice = "Read aloud is not configured (set DUOCHAT_TTS_COMMAND)."
		} else {
			c.notice = fmt.Sprintf("Could not read aloud: %v", err)
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] Speak failed: %v", err)
		}
	}
}

func (c *ChatModel) copyLastReply() {
	reply, ok := c.lastReply()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(reply.Text); err != nil {
		c.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	c.notice = "Copied reply to clipboard"
}

func (c ChatModel) updatePicker(msg tea.Msg) (ChatModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		c.picker.Close()
		return c, nil
	}

	var cmd tea.Cmd
	var path string
	c.picker, cmd, path = c.picker.Update(msg)
	if path != "" {
		return c, tea.Batch(cmd, loadImage(path))
	}
	return c, cmd
}

func attachError(err error) string {
	if errors.Is(err, model.ErrImageUnsupported) {
		return imageUnavailableNotice
	}
	return fmt.Sprintf("Could not attach image: %v", err)
}
