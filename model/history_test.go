package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duochat/model"
	"duochat/provider/testutil"
)

func TestProjectGemini(t *testing.T) {
	history := model.ProjectGemini(testutil.TestLog())
	require.Len(t, history, 4)

	assert.Equal(t, []string{"user", "model", "user", "model"},
		[]string{history[0].Role, history[1].Role, history[2].Role, history[3].Role})

	parts := history[2].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData, "image part comes first")
	assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
	assert.Equal(t, "What is in this picture?", parts[1].Text)
}

func TestProjectGeminiImageBeforeText(t *testing.T) {
	for _, text := range []string{"a", "describe this", "\n"} {
		log := []model.Message{{Author: model.AuthorUser, Text: text, Image: testutil.TestImage()}}
		parts := model.ProjectGemini(log)[0].Parts
		require.Len(t, parts, 2)
		assert.NotNil(t, parts[0].InlineData)
		assert.Nil(t, parts[1].InlineData)
		assert.Equal(t, text, parts[1].Text)
	}
}

func TestProjectGeminiDropsEmptyTurns(t *testing.T) {
	log := []model.Message{
		{Author: model.AuthorUser, Text: "hi"},
		{Author: model.AuthorAI, Text: ""},
		{Author: model.AuthorUser, Text: "still there?"},
		{Author: model.AuthorAI, Text: "", IsStreaming: true},
	}

	history := model.ProjectGemini(log)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Parts[0].Text)
	assert.Equal(t, "still there?", history[1].Parts[0].Text)
}

func TestProjectGeminiImageOnlyUserTurn(t *testing.T) {
	log := []model.Message{{Author: model.AuthorUser, Image: testutil.TestImage()}}

	history := model.ProjectGemini(log)
	require.Len(t, history, 1)
	require.Len(t, history[0].Parts, 1)
	assert.NotNil(t, history[0].Parts[0].InlineData)
}

func TestProjectGeminiSystemIsUser(t *testing.T) {
	log := []model.Message{{Author: model.AuthorSystem, Text: "be brief"}}
	assert.Equal(t, "user", model.ProjectGemini(log)[0].Role)
}

func TestProjectOpenRouter(t *testing.T) {
	log := append(testutil.TestLog(), model.Message{Author: model.AuthorSystem, Text: "note"})

	history := model.ProjectOpenRouter(log)
	assert.LessOrEqual(t, len(history), len(log))
	assert.Equal(t, []model.ChatTurn{
		{Role: "user", Content: "Hello, how are you?"},
		{Role: "assistant", Content: "I'm doing well, thank you!"},
		{Role: "assistant", Content: "A cat."},
		{Role: "system", Content: "note"},
	}, history)
}

func TestProjectOpenRouterExcludesImages(t *testing.T) {
	log := []model.Message{
		{Author: model.AuthorUser, Text: "one", Image: testutil.TestImage()},
		{Author: model.AuthorUser, Text: "", Image: testutil.TestImage()},
		{Author: model.AuthorAI, Text: "two"},
	}

	history := model.ProjectOpenRouter(log)
	require.Len(t, history, 1)
	assert.Equal(t, "two", history[0].Content)
}

func TestProjectEmptyLog(t *testing.T) {
	assert.Empty(t, model.ProjectGemini(nil))
	assert.Empty(t, model.ProjectOpenRouter(nil))
}
