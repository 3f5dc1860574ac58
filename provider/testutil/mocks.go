package testutil

import (
	"context"
	"iter"
	"sync"

	"duochat/model"
)

// GeminiCall records the arguments of one MockGemini.Stream call.
type GeminiCall struct {
	APIKey  string
	Prompt  string
	History []model.GeminiContent
	Image   *model.Image
}

// MockGemini implements model.GeminiStreamer for testing
type MockGemini struct {
	StreamFunc func(ctx context.Context, apiKey, prompt string, history []model.GeminiContent, image *model.Image) iter.Seq[model.Fragment]

	mu    sync.Mutex
	calls []GeminiCall
}

// NewMockGemini creates a mock that yields each chunk as one text fragment
func NewMockGemini(chunks ...string) *MockGemini {
	return &MockGemini{
		StreamFunc: func(context.Context, string, string, []model.GeminiContent, *model.Image) iter.Seq[model.Fragment] {
			return TextStream(chunks...)
		},
	}
}

func (m *MockGemini) Stream(ctx context.Context, apiKey, prompt string, history []model.GeminiContent, image *model.Image) iter.Seq[model.Fragment] {
	m.mu.Lock()
	m.calls = append(m.calls, GeminiCall{APIKey: apiKey, Prompt: prompt, History: history, Image: image})
	m.mu.Unlock()
	return m.StreamFunc(ctx, apiKey, prompt, history, image)
}

func (m *MockGemini) Calls() []GeminiCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GeminiCall(nil), m.calls...)
}

// OpenRouterCall records the arguments of one MockOpenRouter.Stream call.
type OpenRouterCall struct {
	APIKey  string
	ModelID string
	Prompt  string
	History []model.ChatTurn
}

// MockOpenRouter implements model.OpenRouterStreamer for testing
type MockOpenRouter struct {
	StreamFunc func(ctx context.Context, apiKey, modelID, prompt string, history []model.ChatTurn) iter.Seq[model.Fragment]

	mu    sync.Mutex
	calls []OpenRouterCall
}

func NewMockOpenRouter(chunks ...string) *MockOpenRouter {
	return &MockOpenRouter{
		StreamFunc: func(context.Context, string, string, string, []model.ChatTurn) iter.Seq[model.Fragment] {
			return TextStream(chunks...)
		},
	}
}

func (m *MockOpenRouter) Stream(ctx context.Context, apiKey, modelID, prompt string, history []model.ChatTurn) iter.Seq[model.Fragment] {
	m.mu.Lock()
	m.calls = append(m.calls, OpenRouterCall{APIKey: apiKey, ModelID: modelID, Prompt: prompt, History: history})
	m.mu.Unlock()
	return m.StreamFunc(ctx, apiKey, modelID, prompt, history)
}

func (m *MockOpenRouter) Calls() []OpenRouterCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpenRouterCall(nil), m.calls...)
}

// TextStream yields each chunk as a text fragment.
func TextStream(chunks ...string) iter.Seq[model.Fragment] {
	frags := make([]model.Fragment, len(chunks))
	for i, c := range chunks {
		frags[i] = model.Fragment{Text: c}
	}
	return model.Fragments(frags...)
}

// GatedStream signals started when the consumer begins iterating, then waits
// for release before yielding chunks. It lets a test hold a send in flight.
func GatedStream(started chan<- struct{}, release <-chan struct{}, chunks ...string) iter.Seq[model.Fragment] {
	return func(yield func(model.Fragment) bool) {
		close(started)
		<-release
		for _, c := range chunks {
			if !yield(model.Fragment{Text: c}) {
				return
			}
		}
	}
}

// MockVoice implements model.VoiceCapture and counts Stop calls
type MockVoice struct {
	mu    sync.Mutex
	stops int
}

func (v *MockVoice) Stop() {
	v.mu.Lock()
	v.stops++
	v.mu.Unlock()
}

func (v *MockVoice) Stops() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stops
}

// Recorder collects observer callbacks from a conversation
type Recorder struct {
	mu   sync.Mutex
	msgs []model.Message
}

func (r *Recorder) Observe(msg model.Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// For returns the recorded snapshots of the message with the given id, in order.
func (r *Recorder) For(id string) []model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for _, m := range r.msgs {
		if m.ID == id {
			out = append(out, m)
		}
	}
	return out
}
