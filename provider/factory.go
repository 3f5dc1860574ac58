package provider

import (
	"net/http"

	"duochat/config"
	"duochat/model"
)

// NewProviders builds both adapters from the startup settings.
// The streaming client has no timeout: a reply runs until the server ends it.
func NewProviders(s *config.Settings) model.Providers {
	client := &http.Client{}
	return model.Providers{
		Gemini:     NewGeminiProvider(s.Gemini.BaseURL, client),
		OpenRouter: NewOpenRouterProvider(s.OpenRouter.BaseURL, client),
	}
}
