package speech

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"duochat/config"
)

// Recognizer is a Listener backed by a long-running command.
//
// Each line the command prints is appended to the transcript. onUpdate is
// called from a background goroutine after every change, and once more with
// listening=false when the command exits.
type Recognizer struct {
	command  string
	onUpdate func(transcript string, listening bool)

	mu         sync.Mutex
	session    *recognition
	transcript string
}

type recognition struct {
	cancel context.CancelFunc
}

func NewRecognizer(command string, onUpdate func(transcript string, listening bool)) *Recognizer {
	return &Recognizer{command: command, onUpdate: onUpdate}
}

// Available reports whether a recognizer command is configured.
func (r *Recognizer) Available() bool {
	return strings.TrimSpace(r.command) != ""
}

// Start launches the recognizer with an empty transcript. It is a no-op while
// already listening.
func (r *Recognizer) Start() error {
	name, args, err := splitCommand(r.command)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	pr, pw := io.Pipe()
	cmd.Stdout = pw

	if err := cmd.Start(); err != nil {
		cancel()
		return commandError(r.command, err)
	}

	s := &recognition{cancel: cancel}
	r.session = s
	r.transcript = ""

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Speech] Recognizer started: %s", r.command)
	}

	go func() {
		err := cmd.Wait()
		pw.CloseWithError(err)
		if err != nil && ctx.Err() == nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Speech] Recognizer exited: %v", err)
		}
	}()
	go r.read(s, pr)

	return nil
}

func (r *Recognizer) read(s *recognition, out io.Reader) {
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		phrase := strings.TrimSpace(scanner.Text())
		if phrase == "" {
			continue
		}

		r.mu.Lock()
		if r.session != s {
			r.mu.Unlock()
			continue
		}
		if r.transcript != "" {
			r.transcript += " "
		}
		r.transcript += phrase
		transcript := r.transcript
		r.mu.Unlock()

		r.notify(transcript, true)
	}

	r.mu.Lock()
	current := r.session == s
	if current {
		r.session = nil
	}
	transcript := r.transcript
	r.mu.Unlock()

	s.cancel()
	if current {
		r.notify(transcript, false)
	}
}

// Stop ends the current capture. The transcript is kept until the next Start.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	s := r.session
	r.session = nil
	transcript := r.transcript
	r.mu.Unlock()

	if s == nil {
		return
	}
	s.cancel()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Speech] Recognizer stopped (%d chars)", len(transcript))
	}
	r.notify(transcript, false)
}

func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

func (r *Recognizer) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript
}

func (r *Recognizer) notify(transcript string, listening bool) {
	if r.onUpdate != nil {
		r.onUpdate(transcript, listening)
	}
}
