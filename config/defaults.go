package config

const (
	GeminiModel          = "gemini-2.5-flash"
	GeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	OpenRouterBaseURL    = "https://openrouter.ai/api/v1"
	OpenRouterCompletion = "/chat/completions"
)

// ModelOption is an entry in the OpenRouter model picker.
type ModelOption struct {
	ID   string
	Name string
}

// FreeOpenRouterModels is offered before the live catalogue is fetched.
// The first entry is the default selection.
var FreeOpenRouterModels = []ModelOption{
	{ID: "mistralai/mistral-7b-instruct-free", Name: "Mistral 7B Instruct"},
	{ID: "google/gemma-7b-it:free", Name: "Google Gemma 7B"},
	{ID: "openrouter/cinematika-7b:free", Name: "Cinematika 7B"},
	{ID: "nousresearch/nous-capybara-7b:free", Name: "Nous Capybara 7B"},
}

func DefaultSettings() *Settings {
	return &Settings{
		Provider: "gemini",
		Gemini: GeminiSettings{
			BaseURL: GeminiBaseURL,
		},
		OpenRouter: OpenRouterSettings{
			BaseURL: OpenRouterBaseURL,
			Model:   FreeOpenRouterModels[0].ID,
		},
	}
}
