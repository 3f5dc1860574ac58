package testutil

import (
	"time"

	"duochat/model"
)

// TestImage returns a small attachment for testing
func TestImage() *model.Image {
	return &model.Image{
		Data:     "iVBORw0KGgo=",
		MimeType: "image/png",
		Preview:  "/tmp/cat.png",
	}
}

// TestLog returns a finished exchange followed by an image question and its answer
func TestLog() []model.Message {
	now := time.Now()
	return []model.Message{
		{ID: "1", Author: model.AuthorUser, Text: "Hello, how are you?", Timestamp: now},
		{ID: "2", Author: model.AuthorAI, Text: "I'm doing well, thank you!", Timestamp: now},
		{ID: "3", Author: model.AuthorUser, Text: "What is in this picture?", Image: TestImage(), Timestamp: now},
		{ID: "4", Author: model.AuthorAI, Text: "A cat.", Timestamp: now},
	}
}
