package model

// GeminiPart is either inline image data or text.
type GeminiPart struct {
	Text       string
	InlineData *Image
}

// GeminiContent is one turn in Gemini's request shape.
type GeminiContent struct {
	Role  string // "user" or "model"
	Parts []GeminiPart
}

// ChatTurn is one turn in the OpenAI-style chat-completion shape.
type ChatTurn struct {
	Role    string
	Content string
}

// ProjectGemini maps the log to Gemini turns. AI messages become "model"
// turns, everything else "user". A user image goes before its text, and
// turns with no parts (an AI message with empty text) are dropped.
func ProjectGemini(log []Message) []GeminiContent {
	history := make([]GeminiContent, 0, len(log))
	for _, msg := range log {
		var parts []GeminiPart
		if msg.Author == AuthorUser && msg.Image != nil {
			parts = append(parts, GeminiPart{InlineData: msg.Image})
		}
		if msg.Text != "" {
			parts = append(parts, GeminiPart{Text: msg.Text})
		}
		if len(parts) == 0 {
			continue
		}

		role := "user"
		if msg.Author == AuthorAI {
			role = "model"
		}
		history = append(history, GeminiContent{Role: role, Parts: parts})
	}
	return history
}

// ProjectOpenRouter maps the log to chat turns. Messages carrying an image
// are left out entirely: the chat-completion request has no image history.
func ProjectOpenRouter(log []Message) []ChatTurn {
	history := make([]ChatTurn, 0, len(log))
	for _, msg := range log {
		if msg.Image != nil {
			continue
		}
		history = append(history, ChatTurn{Role: chatRole(msg.Author), Content: msg.Text})
	}
	return history
}

func chatRole(a Author) string {
	switch a {
	case AuthorAI:
		return "assistant"
	case AuthorSystem:
		return "system"
	default:
		return "user"
	}
}
