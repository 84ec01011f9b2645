package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sandevgo/factbot/internal/config"
)

// OpenAI computes embeddings through any OpenAI-compatible /embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	dims   int
}

func NewOpenAI(cfg *config.EmbeddingConfig) *OpenAI {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(2),
	)
	return &OpenAI{
		client: &client,
		model:  cfg.Model,
		dims:   cfg.Dims,
	}
}

func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	}
	// Only the v3 models accept a reduced output size
	if strings.HasPrefix(e.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(e.dims))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings: empty response")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dims {
		return nil, fmt.Errorf("embeddings: got %d dimensions, want %d", len(vec), e.dims)
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out, nil
}

func (e *OpenAI) Dims() int {
	return e.dims
}
