package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"duochat/config"
	"duochat/model"
	"duochat/speech"
)

type inputMode int

const (
	modeText inputMode = iota
	modeVoice
	modeImage
)

var modeNames = [...]string{"Text", "Voice", "Image"}

const imageUnavailableNotice = "Image input is only available with Gemini."

// Services are the collaborators shared by every chat the app opens.
type Services struct {
	Providers model.Providers
	Models    ModelLister

	// NewListener creates a speech-to-text session reporting through onUpdate.
	// Nil disables voice input.
	NewListener func(onUpdate func(transcript string, listening bool)) speech.Listener
	Speaker     speech.Speaker
}

// ChatModel is the conversation screen for one confirmed Config.
type ChatModel struct {
	cfg      config.Config
	conv     *model.Conversation
	listener speech.Listener
	speaker  speech.Speaker

	// events carries conversation and recognizer callbacks into the update loop
	events chan tea.Msg
	done   chan struct{}

	// ctx is cancelled on Close so an abandoned turn stops streaming
	ctx    context.Context
	cancel context.CancelFunc

	mode      inputMode
	listening bool
	notice    string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	picker   ImagePicker

	// rendered markdown of finished AI messages, by message id
	rendered map[string]string

	width  int
	height int
	ready  bool
}

func NewChatModel(cfg config.Config, services Services) ChatModel {
	events := make(chan tea.Msg, 64)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	c := ChatModel{
		cfg:      cfg,
		speaker:  services.Speaker,
		events:   events,
		done:     done,
		ctx:      ctx,
		cancel:   cancel,
		rendered: make(map[string]string),
	}

	opts := []model.Option{
		model.WithObserver(func(msg model.Message) {
			select {
			case events <- model.MessageUpdatedMsg{Message: msg}:
			case <-done:
			}
		}),
	}
	if services.NewListener != nil {
		c.listener = services.NewListener(func(transcript string, listening bool) {
			msg := model.TranscriptMsg{Transcript: transcript, Listening: listening}
			if !listening {
				// the final update must land or the chat keeps showing "Listening..."
				select {
				case events <- msg:
				case <-done:
				}
				return
			}
			// interim updates may be dropped; the next one carries the full transcript
			select {
			case events <- msg:
			case <-done:
			default:
			}
		})
		if c.listener != nil {
			opts = append(opts, model.WithVoiceCapture(c.listener))
		}
	}
	c.conv = model.NewConversation(cfg, services.Providers, opts...)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})
	c.textarea = ta

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle
	c.spinner = sp

	c.viewport = viewport.New(0, 0)
	c.picker = NewImagePicker("")

	return c
}

func (c ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, c.waitForEvent())
}

// Conversation exposes the underlying conversation.
func (c ChatModel) Conversation() *model.Conversation {
	return c.conv
}

// Close stops background work tied to this chat. The chat must not be used afterwards.
func (c ChatModel) Close() {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	c.cancel()
	if c.listener != nil {
		c.listener.Stop()
	}
	if c.speaker != nil {
		c.speaker.Cancel()
	}
}

func (c ChatModel) waitForEvent() tea.Cmd {
	events, done := c.events, c.done
	return func() tea.Msg {
		// a closed chat drops whatever is still queued
		select {
		case <-done:
			return nil
		default:
		}
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

// send starts a turn on a background goroutine. The conversation itself
// rejects the call when a turn is already running.
func (c ChatModel) send(prompt string, image *model.Image) tea.Cmd {
	conv, ctx := c.conv, c.ctx
	return func() tea.Msg {
		started := conv.Send(ctx, prompt, image)
		return model.SendDoneMsg{Started: started}
	}
}

// lastReply returns the most recent finished AI message with text.
func (c ChatModel) lastReply() (model.Message, bool) {
	msgs := c.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Author == model.AuthorAI && !m.IsStreaming && strings.TrimSpace(m.Text) != "" {
			return m, true
		}
	}
	return model.Message{}, false
}
