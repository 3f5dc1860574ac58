package model_test

import (
	"context"
	"iter"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duochat/config"
	"duochat/model"
	"duochat/provider"
	"duochat/provider/testutil"
)

func geminiConfig() config.Config {
	return config.Config{Provider: config.ProviderGemini, GeminiAPIKey: "g-key"}
}

func openRouterConfig() config.Config {
	return config.Config{
		Provider:         config.ProviderOpenRouter,
		OpenRouterAPIKey: "or-key",
		OpenRouterModel:  "google/gemma-7b-it:free",
	}
}

func TestSendConcatenatesFragmentsInOrder(t *testing.T) {
	chunks := []string{"The", " quick", " brown", " fox"}
	rec := &testutil.Recorder{}
	conv := model.NewConversation(geminiConfig(),
		model.Providers{Gemini: testutil.NewMockGemini(chunks...)},
		model.WithObserver(rec.Observe))

	require.True(t, conv.Send(context.Background(), "tell me", nil))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	reply := msgs[1]
	assert.Equal(t, strings.Join(chunks, ""), reply.Text)
	assert.False(t, reply.IsStreaming)

	// placeholder, one snapshot per fragment, then the finalized message
	snaps := rec.For(reply.ID)
	require.Len(t, snaps, len(chunks)+2)
	for i, snap := range snaps[:len(snaps)-1] {
		assert.True(t, snap.IsStreaming, "snapshot %d should still be streaming", i)
		assert.Equal(t, strings.Join(chunks[:i], ""), snap.Text)
	}
	assert.False(t, snaps[len(snaps)-1].IsStreaming)
}

func TestSendGeminiArithmetic(t *testing.T) {
	gemini := testutil.NewMockGemini("2+2", " = 4")
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: gemini})

	require.True(t, conv.Send(context.Background(), "2+2?", nil))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.AuthorUser, msgs[0].Author)
	assert.Equal(t, "2+2?", msgs[0].Text)
	assert.Equal(t, model.AuthorAI, msgs[1].Author)
	assert.Equal(t, "2+2 = 4", msgs[1].Text)
	assert.False(t, msgs[1].IsStreaming)
	assert.False(t, conv.Sending())

	calls := gemini.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "g-key", calls[0].APIKey)
	assert.Equal(t, "2+2?", calls[0].Prompt)
	assert.Empty(t, calls[0].History, "the current turn is never part of its own history")
}

func TestSendOpenRouterMissingKey(t *testing.T) {
	cfg := openRouterConfig()
	cfg.OpenRouterAPIKey = ""
	providers := model.Providers{
		OpenRouter: provider.NewOpenRouterProvider(config.OpenRouterBaseURL, http.DefaultClient),
	}
	conv := model.NewConversation(cfg, providers)

	require.True(t, conv.Send(context.Background(), "hi", nil))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Error: OpenRouter API key is not configured.", msgs[1].Text)
	assert.False(t, msgs[1].IsStreaming)
}

func TestSendGeminiMissingKey(t *testing.T) {
	cfg := geminiConfig()
	cfg.GeminiAPIKey = ""
	rec := &testutil.Recorder{}
	providers := model.Providers{
		Gemini: provider.NewGeminiProvider(config.GeminiBaseURL, http.DefaultClient),
	}
	conv := model.NewConversation(cfg, providers, model.WithObserver(rec.Observe))

	require.True(t, conv.Send(context.Background(), "hi", nil))

	reply := conv.Messages()[1]
	assert.Equal(t, "Error: Gemini API key is not configured.", reply.Text)
	// placeholder, the single error fragment, finalize
	assert.Len(t, rec.For(reply.ID), 3)
}

func TestSendIgnoredWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gemini := &testutil.MockGemini{
		StreamFunc: func(context.Context, string, string, []model.GeminiContent, *model.Image) iter.Seq[model.Fragment] {
			return testutil.GatedStream(started, release, "done")
		},
	}
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: gemini})

	finished := make(chan bool)
	go func() {
		finished <- conv.Send(context.Background(), "first", nil)
	}()

	<-started
	assert.True(t, conv.Sending())
	assert.False(t, conv.Send(context.Background(), "second", nil))
	assert.Equal(t, 2, conv.Len(), "no second placeholder appended")

	close(release)
	assert.True(t, <-finished)
	assert.False(t, conv.Sending())
	assert.Len(t, gemini.Calls(), 1)

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "done", msgs[1].Text)
}

func TestSendRejectsEmptyInput(t *testing.T) {
	gemini := testutil.NewMockGemini("unused")
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: gemini})

	assert.False(t, conv.Send(context.Background(), "", nil))
	assert.False(t, conv.Send(context.Background(), "   \n", nil))
	assert.Equal(t, 0, conv.Len())
	assert.Empty(t, gemini.Calls())
}

func TestSendImageOnly(t *testing.T) {
	gemini := testutil.NewMockGemini("A cat.")
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: gemini})
	img := testutil.TestImage()

	require.True(t, conv.Send(context.Background(), "", img))

	calls := gemini.Calls()
	require.Len(t, calls, 1)
	assert.Same(t, img, calls[0].Image)
	assert.Same(t, img, conv.Messages()[0].Image)
}

func TestSendProjectsPriorHistory(t *testing.T) {
	gemini := testutil.NewMockGemini("ok")
	openRouter := testutil.NewMockOpenRouter("ok")

	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: gemini, OpenRouter: openRouter})
	require.True(t, conv.Send(context.Background(), "look", testutil.TestImage()))
	require.True(t, conv.Send(context.Background(), "and now?", nil))

	calls := gemini.Calls()
	require.Len(t, calls, 2)
	history := calls[1].History
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	require.Len(t, history[0].Parts, 2)
	assert.NotNil(t, history[0].Parts[0].InlineData)
	assert.Equal(t, "look", history[0].Parts[1].Text)
	assert.Equal(t, "model", history[1].Role)

	orConv := model.NewConversation(openRouterConfig(), model.Providers{Gemini: gemini, OpenRouter: openRouter})
	require.True(t, orConv.Send(context.Background(), "one", nil))
	require.True(t, orConv.Send(context.Background(), "two", nil))

	orCalls := openRouter.Calls()
	require.Len(t, orCalls, 2)
	assert.Equal(t, "google/gemma-7b-it:free", orCalls[1].ModelID)
	assert.Equal(t, []model.ChatTurn{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "ok"},
	}, orCalls[1].History)
}

func TestSendCleansUpAfterFailure(t *testing.T) {
	voice := &testutil.MockVoice{}
	gemini := testutil.NewMockGemini()
	gemini.StreamFunc = func(context.Context, string, string, []model.GeminiContent, *model.Image) iter.Seq[model.Fragment] {
		return model.Fragments(
			model.Fragment{Text: "partial"},
			model.ErrorFragment(assert.AnError),
		)
	}
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: gemini}, model.WithVoiceCapture(voice))

	img := testutil.TestImage()
	require.NoError(t, conv.Attach(img))
	require.True(t, conv.Send(context.Background(), "describe", conv.Attachment()))

	reply := conv.Messages()[1]
	assert.Equal(t, "partial"+"Error: "+assert.AnError.Error(), reply.Text, "already-yielded text is kept")
	assert.False(t, reply.IsStreaming)
	assert.Nil(t, conv.Attachment())
	assert.Equal(t, 1, voice.Stops())
	assert.False(t, conv.Sending())
}

func TestSendMissingAdapter(t *testing.T) {
	conv := model.NewConversation(openRouterConfig(), model.Providers{})

	require.True(t, conv.Send(context.Background(), "hi", nil))
	assert.Equal(t, "Error: OpenRouter provider is not available", conv.Messages()[1].Text)
}

func TestSendUnknownProvider(t *testing.T) {
	conv := model.NewConversation(config.Config{Provider: config.Provider(9)}, model.Providers{})

	require.True(t, conv.Send(context.Background(), "hi", nil))
	assert.True(t, strings.HasPrefix(conv.Messages()[1].Text, "Error: unknown provider"))
}

func TestAttachRejectedForOpenRouter(t *testing.T) {
	conv := model.NewConversation(openRouterConfig(), model.Providers{})

	err := conv.Attach(testutil.TestImage())
	assert.ErrorIs(t, err, model.ErrImageUnsupported)
	assert.Nil(t, conv.Attachment())
}

func TestAttachAndClear(t *testing.T) {
	conv := model.NewConversation(geminiConfig(), model.Providers{})
	img := testutil.TestImage()

	require.NoError(t, conv.Attach(img))
	assert.Same(t, img, conv.Attachment())

	conv.ClearAttachment()
	assert.Nil(t, conv.Attachment())
}

func TestMessagesReturnsCopy(t *testing.T) {
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: testutil.NewMockGemini("x")})
	require.True(t, conv.Send(context.Background(), "hi", nil))

	msgs := conv.Messages()
	msgs[1].Text = "tampered"
	assert.Equal(t, "x", conv.Messages()[1].Text)
}

func TestMessageIDsUniqueAndOrdered(t *testing.T) {
	conv := model.NewConversation(geminiConfig(), model.Providers{Gemini: testutil.NewMockGemini("x")})
	for range 3 {
		require.True(t, conv.Send(context.Background(), "hi", nil))
	}

	seen := map[string]bool{}
	var prev string
	for _, m := range conv.Messages() {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
		assert.Greater(t, m.ID, prev)
		prev = m.ID
	}
}
