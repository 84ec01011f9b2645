package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sandevgo/factbot/internal/core"
)

// OpenAI talks to any server speaking the OpenAI chat completions API:
// OpenAI itself, OpenRouter, Ollama and self-hosted gateways.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int
}

type OpenAIOptions struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Headers   map[string]string
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	reqOpts := []option.RequestOption{
		option.WithBaseURL(opts.BaseURL),
		option.WithAPIKey(opts.APIKey),
		option.WithHeader("User-Agent", core.BotUserAgent),
		// Retrying owns the retry policy
		option.WithMaxRetries(0),
	}
	for k, v := range opts.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}

	return &OpenAI{
		client:    openai.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

func NewOpenRouter(apiKey, model string, maxTokens int) *OpenAI {
	return NewOpenAI(OpenAIOptions{
		BaseURL:   "https://openrouter.ai/api/v1",
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: maxTokens,
		Headers: map[string]string{
			"HTTP-Referer": core.BotRepositoryURL,
			"X-Title":      core.BotName,
		},
	})
}

// NewOllama uses Ollama's OpenAI-compatible endpoint. The API key is optional.
func NewOllama(baseURL, apiKey, model string, maxTokens int) *OpenAI {
	return NewCustomOpenAI(baseURL, apiKey, model, maxTokens)
}

// NewCustomOpenAI targets a server root such as http://localhost:8000; /v1 is appended.
func NewCustomOpenAI(baseURL, apiKey, model string, maxTokens int) *OpenAI {
	return NewOpenAI(OpenAIOptions{
		BaseURL:   strings.TrimRight(baseURL, "/") + "/v1/",
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: maxTokens,
	})
}

func (o *OpenAI) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: toOpenAIMessages(history),
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return core.Message{}, &StatusError{Code: apiErr.StatusCode, Body: apiErr.Message}
		}
		return core.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, fmt.Errorf("empty choices from %s", o.model)
	}

	return core.Message{Role: core.RoleAssistant, Content: resp.Choices[0].Message.Content}, nil
}

func toOpenAIMessages(history []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
