package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type GeminiSettings struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url,omitempty"`
}

type OpenRouterSettings struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url,omitempty"`
}

type SpeechSettings struct {
	RecognizerCommand  string `toml:"recognizer_command"`
	SynthesizerCommand string `toml:"synthesizer_command"`
}

// Settings are startup defaults read from settings.toml, .env and the environment.
// They prefill the setup screen and choose the endpoints and speech commands.
type Settings struct {
	Provider   string             `toml:"provider"`
	Gemini     GeminiSettings     `toml:"gemini"`
	OpenRouter OpenRouterSettings `toml:"openrouter"`
	Speech     SpeechSettings     `toml:"speech"`
}

// Load reads settings.toml (if present), then .env (if present), then applies
// DUOCHAT_* environment overrides. A missing file is not an error.
func Load() (*Settings, error) {
	s, err := LoadSettingsFile(GetSettingsFilePath())
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if DebugLog != nil {
			DebugLog.Printf("[Config] Ignoring unreadable .env: %v", err)
		}
	}

	s.applyEnvOverrides()
	s.expandCommands()
	return s, nil
}

// LoadSettingsFile decodes a settings file over the defaults.
func LoadSettingsFile(path string) (*Settings, error) {
	s := DefaultSettings()
	if !FileExists(path) {
		return s, nil
	}

	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.fillEmptyDefaults()
	return s, nil
}

func (s *Settings) fillEmptyDefaults() {
	def := DefaultSettings()
	if s.Gemini.BaseURL == "" {
		s.Gemini.BaseURL = def.Gemini.BaseURL
	}
	if s.OpenRouter.BaseURL == "" {
		s.OpenRouter.BaseURL = def.OpenRouter.BaseURL
	}
	if s.OpenRouter.Model == "" {
		s.OpenRouter.Model = def.OpenRouter.Model
	}
}

func (s *Settings) applyEnvOverrides() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"DUOCHAT_PROVIDER", &s.Provider},
		{"DUOCHAT_GEMINI_API_KEY", &s.Gemini.APIKey},
		{"DUOCHAT_GEMINI_BASE_URL", &s.Gemini.BaseURL},
		{"DUOCHAT_OPENROUTER_API_KEY", &s.OpenRouter.APIKey},
		{"DUOCHAT_OPENROUTER_MODEL", &s.OpenRouter.Model},
		{"DUOCHAT_OPENROUTER_BASE_URL", &s.OpenRouter.BaseURL},
		{"DUOCHAT_STT_COMMAND", &s.Speech.RecognizerCommand},
		{"DUOCHAT_TTS_COMMAND", &s.Speech.SynthesizerCommand},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.name)); v != "" {
			*o.target = v
		}
	}
}

// expandCommands resolves ~ and $VARS in the program part of the speech commands.
// Arguments are left untouched.
func (s *Settings) expandCommands() {
	for _, cmd := range []*string{&s.Speech.RecognizerCommand, &s.Speech.SynthesizerCommand} {
		fields := strings.Fields(*cmd)
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "~/") || strings.Contains(fields[0], "$") {
			fields[0] = ExpandPath(fields[0])
			*cmd = strings.Join(fields, " ")
		}
	}
}

// Draft returns the Config the setup screen starts from.
// An unparseable provider falls back to Gemini.
func (s *Settings) Draft() Config {
	p, err := ParseProvider(s.Provider)
	if err != nil && DebugLog != nil {
		DebugLog.Printf("[Config] %v, defaulting to Gemini", err)
	}
	return Config{
		Provider:         p,
		GeminiAPIKey:     s.Gemini.APIKey,
		OpenRouterAPIKey: s.OpenRouter.APIKey,
		OpenRouterModel:  s.OpenRouter.Model,
	}
}
