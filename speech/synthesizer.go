package speech

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"duochat/config"
)

// Synthesizer is a Speaker that pipes each utterance to a fresh command.
type Synthesizer struct {
	command string

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    int
}

func NewSynthesizer(command string) *Synthesizer {
	return &Synthesizer{command: command}
}

func (s *Synthesizer) Available() bool {
	return strings.TrimSpace(s.command) != ""
}

// Speak cancels any utterance in progress and starts speaking text.
// It returns once the command has started.
func (s *Synthesizer) Speak(text string) error {
	name, args, err := splitCommand(s.command)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(text)

	if err := cmd.Start(); err != nil {
		cancel()
		return commandError(s.command, err)
	}

	s.gen++
	gen := s.gen
	s.cancel = cancel

	go func() {
		err := cmd.Wait()
		if err != nil && ctx.Err() == nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Speech] Synthesizer exited: %v", err)
		}
		cancel()

		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	return nil
}

// Cancel stops the current utterance, if any.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Speaking reports whether an utterance is still running.
func (s *Synthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
