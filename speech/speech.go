// Package speech runs external commands for speech-to-text and text-to-speech.
//
// A recognizer command prints recognized phrases on stdout, one per line, until
// it is stopped. A synthesizer command reads the text to speak on stdin.
// Either command may be left unset, in which case the service reports
// ErrNotConfigured.
package speech

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("speech command is not configured")

// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
const waitDelay = time.Second

// Listener is speech-to-text with an explicit start/stop lifecycle.
type Listener interface {
	Start() error
	Stop()
	Listening() bool
	Transcript() string
}

// Speaker is text-to-speech. A new utterance cancels the previous one.
type Speaker interface {
	Speak(text string) error
	Cancel()
}

// splitCommand splits a configured command line on whitespace.
// No shell is involved, so quoting is not supported.
func splitCommand(command string) (name string, args []string, err error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, ErrNotConfigured
	}
	return fields[0], fields[1:], nil
}

func commandError(command string, err error) error {
	return fmt.Errorf("speech command %q: %w", command, err)
}
