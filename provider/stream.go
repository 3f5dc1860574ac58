package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"duochat/config"
)

// maxErrorBodySize caps how much of a failed response is read for its message.
const maxErrorBodySize int64 = 1 << 20

const dataPrefix = "data:"

// postStream sends a JSON body and returns the response of a streaming endpoint.
// Non-2xx responses are consumed and returned as *TransportError.
func postStream(ctx context.Context, client *http.Client, provider, url string, body any, headers map[string]string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &TransportError{Provider: provider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[%s] POST %s (%d bytes)", provider, url, len(jsonBody))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: provider, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if config.DebugLog != nil {
			config.DebugLog.Printf("[%s] HTTP %d: %s", provider, resp.StatusCode, errorBody)
		}
		return nil, &TransportError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(errorBody),
		}
	}

	return resp, nil
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts error.message from a failed response body.
// Gemini sometimes wraps the object in a one-element array.
func errorMessage(body []byte) string {
	var single apiError
	if err := json.Unmarshal(body, &single); err == nil {
		return single.Error.Message
	}
	var list []apiError
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].Error.Message
	}
	return ""
}

// lineReader yields complete lines from a streaming body.
//
// A read may end mid-line; the partial line stays buffered until its newline
// arrives. A final line without a newline is returned once the body ends.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// Next returns the next line without its line ending, or io.EOF.
func (lr *lineReader) Next() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// dataPayload returns the payload of a "data:" line. Other SSE fields,
// comments and blank lines report ok=false.
func dataPayload(line string) (payload string, ok bool) {
	rest, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(rest, " "), true
}
