package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Provider identifies which LLM backend a session talks to.
type Provider int

const (
	ProviderGemini Provider = iota
	ProviderOpenRouter
)

func (p Provider) String() string {
	switch p {
	case ProviderGemini:
		return "Gemini"
	case ProviderOpenRouter:
		return "OpenRouter"
	default:
		return fmt.Sprintf("Provider(%d)", int(p))
	}
}

// ParseProvider maps a settings/env value ("gemini", "openrouter") to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "":
		return ProviderGemini, nil
	case "openrouter":
		return ProviderOpenRouter, nil
	default:
		return ProviderGemini, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrMissingCredential = errors.New("API key is required")
	ErrMissingModel      = errors.New("OpenRouter model is required")
)

// Config is the per-session provider selection and credentials.
//
// It is chosen once on the setup screen and handed to a conversation by value.
// Resetting the configuration builds a new Config; fields are never edited in place.
type Config struct {
	Provider         Provider
	GeminiAPIKey     string
	OpenRouterAPIKey string
	OpenRouterModel  string
}

// Validate checks that the credential required by the selected provider is present.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini: %w", ErrMissingCredential)
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("openrouter: %w", ErrMissingCredential)
		}
		if c.OpenRouterModel == "" {
			return ErrMissingModel
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
	return nil
}

// SupportsImages reports whether the selected provider accepts image input.
func (c Config) SupportsImages() bool {
	return c.Provider == ProviderGemini
}

var Debug = false
var DebugLog *log.Logger

func CheckDebug() bool {
	debug := os.Getenv("DUOCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dir string) {
	if !CheckDebug() {
		return
	}

	if err := EnsureDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create log directory %s: %v\n", dir, err)
		return
	}

	Debug = true
	logPath := filepath.Join(dir, "debug.log")

	// 0600: the log may contain prompts and provider error bodies
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DUOCHAT_DEBUG=%s) ===", os.Getenv("DUOCHAT_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}
