package model

import (
	"context"
	"iter"
)

// Fragment is one piece of a streamed reply.
//
// Adapters report every failure in-band: the last fragment of a failed stream
// has Text "Error: <message>" and Err set to the underlying error. Consumers
// that only care about the transcript can ignore Err.
type Fragment struct {
	Text string
	Err  error
}

// ErrorFragment builds the terminal fragment for a failed stream.
func ErrorFragment(err error) Fragment {
	return Fragment{Text: "Error: " + err.Error(), Err: err}
}

// Fragments returns a sequence yielding the given fragments in order.
func Fragments(frags ...Fragment) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		for _, f := range frags {
			if !yield(f) {
				return
			}
		}
	}
}

// GeminiStreamer streams a Gemini reply. history must already be in
// Gemini shape (see ProjectGemini). image may be nil.
type GeminiStreamer interface {
	Stream(ctx context.Context, apiKey, prompt string, history []GeminiContent, image *Image) iter.Seq[Fragment]
}

// OpenRouterStreamer streams an OpenRouter chat completion. history must
// already be in chat shape (see ProjectOpenRouter).
type OpenRouterStreamer interface {
	Stream(ctx context.Context, apiKey, modelID, prompt string, history []ChatTurn) iter.Seq[Fragment]
}

// Providers holds one adapter per provider. The conversation picks one by
// the Config's provider tag on every send.
type Providers struct {
	Gemini     GeminiStreamer
	OpenRouter OpenRouterStreamer
}

// VoiceCapture is the part of speech-to-text the conversation needs:
// a finished send always stops an active capture.
type VoiceCapture interface {
	Stop()
}
