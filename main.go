package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"duochat/config"
	"duochat/provider"
	"duochat/speech"
	"duochat/ui"
)

const (
	Version = "v0.01.00"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println("duochat", Version)
		return
	}

	settings, err := config.Load()
	if err != nil {
		errorModal := ui.NewErrorModal("Configuration Error", fmt.Sprintf(
			"%v\n\nFix or remove %s and try again.", err, config.GetSettingsFilePath()))
		p := tea.NewProgram(errorModal, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	config.InitDebugLog(config.GetCacheDir())
	if config.DebugLog != nil {
		config.DebugLog.Printf("duochat %s starting, provider default=%s", Version, settings.Provider)
	}

	providers := provider.NewProviders(settings)

	var models ui.ModelLister
	if orp, ok := providers.OpenRouter.(*provider.OpenRouterProvider); ok {
		models = orp
	}

	services := ui.Services{
		Providers: providers,
		Models:    models,
		NewListener: func(onUpdate func(string, bool)) speech.Listener {
			r := speech.NewRecognizer(settings.Speech.RecognizerCommand, onUpdate)
			if !r.Available() {
				return nil
			}
			return r
		},
	}
	if synth := speech.NewSynthesizer(settings.Speech.SynthesizerCommand); synth.Available() {
		services.Speaker = synth
	}

	p := tea.NewProgram(ui.NewApp(settings, services), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
