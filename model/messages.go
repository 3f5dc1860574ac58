package model

import "duochat/config"

// MessageUpdatedMsg carries a copy of a message the conversation appended or changed.
type MessageUpdatedMsg struct {
	Message Message
}

// SendDoneMsg is returned by the send command once the turn has finished.
type SendDoneMsg struct {
	Started bool
}

type TranscriptMsg struct {
	Transcript string
	Listening  bool
}

type ImageLoadedMsg struct {
	Image *Image
	Err   error
}

type ModelsListMsg struct {
	Models []config.ModelOption
	Err    error
}

type MarkdownRenderedMsg struct {
	MessageID string
	Rendered  string
}
