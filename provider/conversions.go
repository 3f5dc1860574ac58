package provider

import "duochat/model"

func toGeminiContents(history []model.GeminiContent) []geminiContent {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		parts := make([]geminiPart, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			if part.InlineData != nil {
				parts = append(parts, geminiPart{InlineData: toGeminiInlineData(part.InlineData)})
				continue
			}
			parts = append(parts, geminiPart{Text: part.Text})
		}
		contents = append(contents, geminiContent{Role: turn.Role, Parts: parts})
	}
	return contents
}

func toGeminiInlineData(img *model.Image) *geminiInlineData {
	return &geminiInlineData{MimeType: img.MimeType, Data: img.Data}
}

func toChatMessages(history []model.ChatTurn, prompt string) []chatMessage {
	messages := make([]chatMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, chatMessage{Role: "user", Content: prompt})
}
