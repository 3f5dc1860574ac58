package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sort"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"duochat/config"
	"duochat/model"
)

const doneSentinel = "[DONE]"

// OpenRouterProvider streams chat completions from OpenRouter.
//
// Streaming reads the event stream line by line itself: malformed frames are
// skipped rather than ending the reply. The model catalogue goes through the
// OpenAI SDK, since OpenRouter's /models endpoint is OpenAI-compatible.
type OpenRouterProvider struct {
	baseURL string
	client  *http.Client
}

// NewOpenRouterProvider creates an OpenRouter adapter. An empty baseURL uses the public endpoint.
func NewOpenRouterProvider(baseURL string, client *http.Client) *OpenRouterProvider {
	if baseURL == "" {
		baseURL = config.OpenRouterBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenRouterProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream implements model.OpenRouterStreamer.
func (p *OpenRouterProvider) Stream(ctx context.Context, apiKey, modelID, prompt string, history []model.ChatTurn) iter.Seq[model.Fragment] {
	return func(yield func(model.Fragment) bool) {
		name := config.ProviderOpenRouter.String()
		if apiKey == "" {
			yield(model.ErrorFragment(&ConfigurationError{Provider: name}))
			return
		}

		req := chatRequest{
			Model:    modelID,
			Messages: toChatMessages(history, prompt),
			Stream:   true,
		}
		resp, err := postStream(ctx, p.client, name, p.baseURL+config.OpenRouterCompletion, req, map[string]string{
			"Authorization": "Bearer " + apiKey,
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
				yield(model.ErrorFragment(&TransportError{Provider: name, Err: err}))
				return
			}

			payload, ok := dataPayload(line)
			if !ok {
				continue
			}
			if payload == doneSentinel {
				return
			}

			var chunk chatChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[OpenRouter] Skipping frame: %v", &FrameParseError{Line: line, Err: err})
				}
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(model.Fragment{Text: chunk.Choices[0].Delta.Content}) {
				return
			}
		}
	}
}

// ListModels fetches the model catalogue, sorted with free models first.
func (p *OpenRouterProvider) ListModels(ctx context.Context, apiKey string) ([]config.ModelOption, error) {
	client := openai.NewClient(
		option.WithBaseURL(p.baseURL),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(p.client),
	)

	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenRouter models: %w", err)
	}

	models := make([]config.ModelOption, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, config.ModelOption{
			ID:   m.ID,
			Name: stripProviderPrefix(m.ID),
		})
	}
	sort.SliceStable(models, func(i, j int) bool {
		fi, fj := isFree(models[i].ID), isFree(models[j].ID)
		if fi != fj {
			return fi
		}
		return models[i].ID < models[j].ID
	})

	if config.DebugLog != nil {
		config.DebugLog.Printf("[OpenRouter] Listed %d models", len(models))
	}
	return models, nil
}

// stripProviderPrefix removes the vendor prefix from an OpenRouter model id.
// "meta-llama/llama-3.2-90b-instruct" → "llama-3.2-90b-instruct"
func stripProviderPrefix(id string) string {
	if _, name, ok := strings.Cut(id, "/"); ok {
		return name
	}
	return id
}

func isFree(id string) bool {
	return strings.HasSuffix(id, ":free")
}
