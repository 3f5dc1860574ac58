package model

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"duochat/config"
)

// ErrImageUnsupported is returned when attaching an image while the active
// provider cannot take image input.
var ErrImageUnsupported = errors.New("image input is only available with Gemini")

// Conversation owns the message log for one configured session and drives sends.
//
// Only one send runs at a time. A send appends the user message and an empty
// streaming AI message, then folds every fragment from the selected adapter
// into that AI message in order. The mutex guards the log so the UI goroutine
// can take snapshots while a send goroutine writes.
type Conversation struct {
	cfg       config.Config
	providers Providers
	voice     VoiceCapture
	observer  func(Message)
	now       func() time.Time

	mu         sync.Mutex
	log        []Message
	sending    bool
	attachment *Image
}

type Option func(*Conversation)

// WithVoiceCapture registers the speech-to-text session stopped after every send.
func WithVoiceCapture(v VoiceCapture) Option {
	return func(c *Conversation) {
		c.voice = v
	}
}

// WithObserver registers a callback invoked with a copy of every message the
// conversation appends or changes, in the order the changes happen.
// It is called without the lock held.
func WithObserver(fn func(Message)) Option {
	return func(c *Conversation) {
		c.observer = fn
	}
}

func NewConversation(cfg config.Config, providers Providers, opts ...Option) *Conversation {
	c := &Conversation{
		cfg:       cfg,
		providers: providers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) Config() config.Config {
	return c.cfg
}

// Messages returns a copy of the log in insertion order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.log)
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.log)
}

// Sending reports whether a send is in flight.
func (c *Conversation) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Attach sets the pending image for the next send.
func (c *Conversation) Attach(img *Image) error {
	if !c.cfg.SupportsImages() {
		return ErrImageUnsupported
	}
	c.mu.Lock()
	c.attachment = img
	c.mu.Unlock()
	return nil
}

func (c *Conversation) Attachment() *Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachment
}

func (c *Conversation) ClearAttachment() {
	c.mu.Lock()
	c.attachment = nil
	c.mu.Unlock()
}

// Send runs one turn to completion and reports whether it started.
//
// It is a no-op returning false when prompt is blank and image is nil, or when
// another send is still in flight. Send blocks until the adapter's sequence is
// exhausted; adapter failures arrive as "Error: ..." text, so there is no error
// return. Cleanup (ending the stream flag, dropping the pending attachment,
// stopping voice capture) runs however the turn ends.
func (c *Conversation) Send(ctx context.Context, prompt string, image *Image) bool {
	c.mu.Lock()
	if c.sending || (strings.TrimSpace(prompt) == "" && image == nil) {
		c.mu.Unlock()
		return false
	}
	c.sending = true

	// history is everything before this turn; the new entries never project into their own request
	prior := slices.Clone(c.log)

	now := c.now()
	user := Message{
		ID:        newMessageID(),
		Author:    AuthorUser,
		Text:      prompt,
		Image:     image,
		Timestamp: now,
	}
	reply := Message{
		ID:          newMessageID(),
		Author:      AuthorAI,
		IsStreaming: true,
		Timestamp:   now,
	}
	c.log = append(c.log, user, reply)
	idx := len(c.log) - 1
	c.mu.Unlock()

	c.emit(user)
	c.emit(reply)

	defer c.finish(idx)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Conversation] Send started: provider=%s history=%d image=%v", c.cfg.Provider, len(prior), image != nil)
	}

	for frag := range c.stream(ctx, prompt, image, prior) {
		if frag.Err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Conversation] Stream ended with error: %v", frag.Err)
		}

		c.mu.Lock()
		c.log[idx].Text += frag.Text
		snapshot := c.log[idx]
		c.mu.Unlock()

		c.emit(snapshot)
	}

	return true
}

// finish closes out the AI message at idx and returns the conversation to idle.
func (c *Conversation) finish(idx int) {
	c.mu.Lock()
	c.log[idx].IsStreaming = false
	snapshot := c.log[idx]
	c.sending = false
	c.attachment = nil
	c.mu.Unlock()

	if c.voice != nil {
		c.voice.Stop()
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Conversation] Send finished: %d chars", len(snapshot.Text))
	}

	c.emit(snapshot)
}

// stream dispatches on the provider tag. This is the only place that knows
// which adapter serves which provider.
func (c *Conversation) stream(ctx context.Context, prompt string, image *Image, prior []Message) iter.Seq[Fragment] {
	switch c.cfg.Provider {
	case config.ProviderGemini:
		if c.providers.Gemini == nil {
			return Fragments(ErrorFragment(fmt.Errorf("%s provider is not available", c.cfg.Provider)))
		}
		return c.providers.Gemini.Stream(ctx, c.cfg.GeminiAPIKey, prompt, ProjectGemini(prior), image)

	case config.ProviderOpenRouter:
		if c.providers.OpenRouter == nil {
			return Fragments(ErrorFragment(fmt.Errorf("%s provider is not available", c.cfg.Provider)))
		}
		return c.providers.OpenRouter.Stream(ctx, c.cfg.OpenRouterAPIKey, c.cfg.OpenRouterModel, prompt, ProjectOpenRouter(prior))

	default:
		return Fragments(ErrorFragment(fmt.Errorf("%w: %s", config.ErrUnknownProvider, c.cfg.Provider)))
	}
}

func (c *Conversation) emit(msg Message) {
	if c.observer != nil {
		c.observer(msg)
	}
}
