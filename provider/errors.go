package provider

import "fmt"

// ConfigurationError is reported when a stream is requested without a credential.
type ConfigurationError struct {
	Provider string
}

func (e *ConfigurationError) Error() string {
	return e.Provider + " API key is not configured."
}

// TransportError covers network failures and non-2xx responses.
// Message holds the server's own error message when the body carried one.
type TransportError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Provider + " request failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FrameParseError is a stream line whose JSON payload could not be decoded.
type FrameParseError struct {
	Line string
	Err  error
}

func (e *FrameParseError) Error() string {
	return fmt.Sprintf("failed to parse stream chunk: %v", e.Err)
}

func (e *FrameParseError) Unwrap() error {
	return e.Err
}
