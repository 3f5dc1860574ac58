package model

import (
	"time"

	"github.com/google/uuid"
)

// Author identifies who wrote a message in the conversation log.
type Author int

const (
	AuthorUser Author = iota
	AuthorAI
	AuthorSystem
)

func (a Author) String() string {
	switch a {
	case AuthorUser:
		return "user"
	case AuthorAI:
		return "ai"
	case AuthorSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Image is an attachment carried by a user message.
type Image struct {
	Data     string // base64, no data: URL prefix
	MimeType string
	Preview  string // where the image came from (file path), shown in the transcript
}

// Message is one entry in the conversation log.
// The Text of the most recent AI message grows while IsStreaming is true.
type Message struct {
	ID          string
	Author      Author
	Text        string
	Image       *Image
	IsStreaming bool
	Timestamp   time.Time
}

// newMessageID returns a time-ordered id so ids sort in insertion order.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
