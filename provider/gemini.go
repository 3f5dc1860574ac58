package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"duochat/config"
	"duochat/model"
)

// GeminiProvider streams replies from the Gemini generateContent API over SSE.
type GeminiProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewGeminiProvider creates a Gemini adapter. An empty baseURL uses the public endpoint.
func NewGeminiProvider(baseURL string, client *http.Client) *GeminiProvider {
	if baseURL == "" {
		baseURL = config.GeminiBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   config.GeminiModel,
		client:  client,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiChunk struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text    string `json:"text"`
				Thought bool   `json:"thought,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`

	// set when the server aborts the stream after the 200 response
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// text joins the non-thought text parts of the first candidate.
func (c *geminiChunk) text() string {
	if len(c.Candidates) == 0 || c.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Candidates[0].Content.Parts {
		if !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Stream implements model.GeminiStreamer.
//
// The current turn puts the image part (if any) before the prompt text and is
// appended to history. Every failure ends the sequence with one error fragment.
func (p *GeminiProvider) Stream(ctx context.Context, apiKey, prompt string, history []model.GeminiContent, image *model.Image) iter.Seq[model.Fragment] {
	return func(yield func(model.Fragment) bool) {
		if apiKey == "" {
			yield(model.ErrorFragment(&ConfigurationError{Provider: config.ProviderGemini.String()}))
			return
		}

		req := geminiRequest{
			Contents: append(toGeminiContents(history), currentGeminiTurn(prompt, image)),
		}
		url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, p.model)

		resp, err := postStream(ctx, p.client, config.ProviderGemini.String(), url, req, map[string]string{
			"x-goog-api-key": apiKey,
		})
		if err != nil {
			yield(model.ErrorFragment(err))
			return
		}
		defer resp.Body.Close()

		lines := newLineReader(resp.Body)
		for {
			line, err := lines.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.ErrorFragment(&TransportError{Provider: config.ProviderGemini.String(), Err: err}))
				return
			}

			payload, ok := dataPayload(line)
			if !ok || payload == "" {
				continue
			}

			var chunk geminiChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				perr := &FrameParseError{Line: line, Err: err}
				if config.DebugLog != nil {
					config.DebugLog.Printf("[Gemini] %v: %q", perr, line)
				}
				yield(model.ErrorFragment(perr))
				return
			}

			if chunk.Error != nil {
				terr := &TransportError{
					Provider:   config.ProviderGemini.String(),
					StatusCode: chunk.Error.Code,
					Message:    chunk.Error.Message,
				}
				if terr.Message == "" {
					terr.Message = chunk.Error.Status
				}
				if config.DebugLog != nil {
					config.DebugLog.Printf("[Gemini] Stream error event: code=%d status=%s", chunk.Error.Code, chunk.Error.Status)
				}
				yield(model.ErrorFragment(terr))
				return
			}

			if text := chunk.text(); text != "" {
				if !yield(model.Fragment{Text: text}) {
					return
				}
			}
		}
	}
}

// currentGeminiTurn builds the outgoing user turn. An image-only turn sends no text part.
func currentGeminiTurn(prompt string, image *model.Image) geminiContent {
	turn := geminiContent{Role: "user"}
	if image != nil {
		turn.Parts = append(turn.Parts, geminiPart{InlineData: toGeminiInlineData(image)})
	}
	if prompt != "" || image == nil {
		turn.Parts = append(turn.Parts, geminiPart{Text: prompt})
	}
	return turn
}
