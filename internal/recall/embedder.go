package recall

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultEmbedModel = "models/text-embedding-004"

	// Dimensionality of the embedding model's output.
	VectorSize = 768
)

// Embedder maps text to a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type GenaiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenaiEmbedder(client *genai.Client, model string) *GenaiEmbedder {
	if model == "" {
		model = defaultEmbedModel
	}
	return &GenaiEmbedder{
		client: client,
		model:  model,
	}
}

func (e *GenaiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("recall: embed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("recall: empty embedding")
	}
	return result.Embeddings[0].Values, nil
}
